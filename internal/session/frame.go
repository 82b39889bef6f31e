package session

import (
	"fmt"

	"github.com/example/xrayview/internal/filters"
	"github.com/example/xrayview/internal/render"
	"github.com/example/xrayview/internal/tool"
)

// Frame returns the most recently published frame. It is safe to call from
// the render goroutine; the returned frame must not be modified.
func (s *Session) Frame() *render.Frame {
	p := s.published.Load()
	if p == nil {
		return nil
	}
	if p.frame.Message != "" && !s.now().Before(p.until) {
		f := *p.frame
		f.Message = ""
		if s.published.CompareAndSwap(p, &published{frame: &f}) {
			return &f
		}
		return s.published.Load().frame
	}
	return p.frame
}

// Help returns the keyboard reference shown by the help overlay.
func (s *Session) Help() []render.HelpLine { return s.keys.help() }

// publish replaces the shared frame with a fresh snapshot of the session.
func (s *Session) publish() {
	f := s.buildFrame()
	s.published.Store(&published{frame: f, until: s.messageUntil})
}

func (s *Session) buildFrame() *render.Frame {
	rec := s.records[s.index]
	ms, as := s.store.ListFor(rec.ID)
	f := &render.Frame{
		Window:       s.window,
		Chrome:       !s.fullscreen,
		Theme:        s.theme,
		Image:        s.img,
		ImageKey:     string(rec.ID),
		Filters:      s.filters,
		Projection:   s.view.Projection(),
		Measurements: ms,
		Annotations:  as,
		Preview:      s.machine.Preview(),
		Status:       s.status(),
		ShowHelp:     s.showHelp,
	}
	if s.messageUntil.After(s.now()) {
		f.Message = s.message
	}
	if s.showHelp {
		f.Help = s.keys.help()
	}
	return f
}

// exportFrame is the current image with its committed overlay and nothing
// else, sized to the canvas.
func (s *Session) exportFrame() *render.Frame {
	f := s.buildFrame()
	f.Window = s.Canvas().Size()
	f.Chrome = false
	f.Message = ""
	f.ShowHelp = false
	f.Help = nil
	f.Preview = tool.Preview{Tool: f.Preview.Tool, Calibration: f.Preview.Calibration}
	return f
}

func (s *Session) status() render.Status {
	rec := s.records[s.index]
	t := s.view.Transform()
	st := render.Status{
		Title:       rec.FileName,
		Index:       s.index,
		Count:       len(s.records),
		Category:    rec.Category,
		Notes:       rec.Notes,
		Zoom:        t.Scale,
		Rotation:    t.Rotation,
		Calibration: s.machine.Calibration().String(),
		Filters:     s.filters.String(),
	}
	if p := filters.Presets[s.preset]; p.Filters == s.filters && s.preset != 0 {
		st.Preset = p.Name
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	if rec.FileSizeBytes > 0 {
		st.Title = fmt.Sprintf("%s (%s)", rec.FileName, humanSize(rec.FileSizeBytes))
	}
	return st
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
