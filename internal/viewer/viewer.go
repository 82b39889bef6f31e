// Package viewer hosts a session in a shiny window and performs the side
// effects the session delegates to its host: export, copy and delete.
package viewer

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/clipboard"
	"github.com/example/xrayview/internal/imagesource"
	"github.com/example/xrayview/internal/notify"
	"github.com/example/xrayview/internal/render"
	"github.com/example/xrayview/internal/session"
	"github.com/example/xrayview/internal/theme"
)

// DefaultWindowSize is used when Settings.Size is zero.
var DefaultWindowSize = image.Pt(1280, 800)

// Settings configures a Viewer.
type Settings struct {
	Title       string
	Size        image.Point
	Start       int
	ExportDir   string
	FrameRate   int
	ZoomStep    float64
	Preset      string
	Calibration calibration.Data
	Theme       *theme.Theme
	Fullscreen  bool
}

// Viewer owns the window, the session and the host callbacks.
type Viewer struct {
	settings Settings
	records  []session.Record
	sess     *session.Session
	cache    *imagesource.Cache
	notifier *notify.Notifier
	painter  *render.Painter
	exporter *render.Painter
	now      func() time.Time

	writeClipboard func(image.Image) error
}

// Option modifies a Viewer during creation.
type Option func(*Viewer)

// WithNotifier sends desktop notifications for exports, copies and deletes.
func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.notifier = n } }

// WithCache shares an image cache between viewers.
func WithCache(c *imagesource.Cache) Option { return func(v *Viewer) { v.cache = c } }

// WithClock replaces time.Now for export file names.
func WithClock(now func() time.Time) Option { return func(v *Viewer) { v.now = now } }

// New prepares a viewer over records. The window opens in Run.
func New(records []session.Record, st Settings, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		settings:       st,
		records:        slices.Clone(records),
		now:            time.Now,
		writeClipboard: clipboard.WriteImage,
	}
	for _, o := range opts {
		o(v)
	}
	if v.cache == nil {
		v.cache = imagesource.NewCache()
	}
	var err error
	if v.painter, err = render.NewPainter(); err != nil {
		return nil, err
	}
	// Exports are painted on the event goroutine while the render loop
	// uses painter, and font faces are not safe for concurrent use.
	if v.exporter, err = render.NewPainter(); err != nil {
		return nil, err
	}

	sopts := []session.Option{
		session.WithStartIndex(st.Start),
		session.WithLoader(v.cache),
		session.WithOnExport(v.export),
		session.WithOnCopy(v.copy),
		session.WithOnDelete(v.delete),
		session.WithFullscreen(st.Fullscreen),
	}
	if st.Calibration.PixelsPerMm > 0 {
		sopts = append(sopts, session.WithCalibration(st.Calibration))
	}
	if st.ZoomStep > 1 {
		sopts = append(sopts, session.WithZoomStep(st.ZoomStep))
	}
	if st.Preset != "" {
		sopts = append(sopts, session.WithPreset(st.Preset))
	}
	if st.Theme != nil {
		sopts = append(sopts, session.WithTheme(st.Theme))
	}
	if v.sess, err = session.New(v.records, sopts...); err != nil {
		return nil, err
	}
	return v, nil
}

// Session returns the session driven by the viewer.
func (v *Viewer) Session() *session.Session { return v.sess }

// Run executes the UI loop using shiny's driver.
func (v *Viewer) Run() { driver.Main(v.Main) }

// Main runs the window until the session closes or the window is destroyed.
func (v *Viewer) Main(s screen.Screen) {
	sz := v.settings.Size
	if sz.X <= 0 || sz.Y <= 0 {
		sz = DefaultWindowSize
	}
	title := v.settings.Title
	if title == "" {
		title = "xrayview"
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v.renderLoop(ctx, s, w)
	}()
	defer wg.Wait()
	defer cancel()

	v.sess.Resize(sz)
	for !v.sess.Closed() {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				v.sess.Close()
				return
			}
		case size.Event:
			v.sess.Resize(image.Pt(e.WidthPx, e.HeightPx))
		case key.Event:
			v.sess.HandleKey(e)
		case mouse.Event:
			v.sess.HandleMouse(e)
		case paint.Event:
			// The render loop repaints the whole window on its next tick.
		case error:
			log.Print(e)
		}
	}
}

// renderLoop paints the current frame into a window buffer on every tick
// until ctx ends, so exposes and compositor damage are repaired within one
// tick even when nothing was published.
func (v *Viewer) renderLoop(ctx context.Context, s screen.Screen, w screen.Window) {
	var buf screen.Buffer
	defer func() {
		if buf != nil {
			buf.Release()
		}
	}()
	l := render.Loop{
		Interval: render.Interval(v.settings.FrameRate),
		Frame:    v.sess.Frame,
		Paint: func(ctx context.Context, f *render.Frame) error {
			if f.Window.X <= 0 || f.Window.Y <= 0 {
				return nil
			}
			if buf == nil || buf.Size() != f.Window {
				if buf != nil {
					buf.Release()
					buf = nil
				}
				b, err := s.NewBuffer(f.Window)
				if err != nil {
					return fmt.Errorf("new buffer: %w", err)
				}
				buf = b
			}
			if ctx.Err() != nil {
				return nil
			}
			v.painter.Paint(buf.RGBA(), f)
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()
			return nil
		},
	}
	_ = l.Run(ctx)
}

func (v *Viewer) export(rec session.Record, f *render.Frame) {
	if f.Window.X <= 0 || f.Window.Y <= 0 {
		v.sess.Flash("nothing to export")
		return
	}
	img := v.exporter.Snapshot(f)
	path := ExportPath(v.exportDir(), rec.FileName, v.now())
	if err := writePNG(path, img); err != nil {
		log.Printf("export: %v", err)
		v.sess.Flash("export failed: " + err.Error())
		return
	}
	v.sess.Flash("exported " + filepath.Base(path))
	v.notifier.Export(path)
}

func (v *Viewer) copy(rec session.Record, f *render.Frame) {
	if f.Window.X <= 0 || f.Window.Y <= 0 {
		v.sess.Flash("nothing to copy")
		return
	}
	img := v.exporter.Snapshot(f)
	if err := v.writeClipboard(img); err != nil {
		log.Printf("copy: %v", err)
		v.sess.Flash("copy failed: " + err.Error())
		return
	}
	v.sess.Flash("copied to clipboard")
	v.notifier.Copy(rec.FileName, img)
}

// delete drops rec from the list shown by the session. Files on disk are
// left alone.
func (v *Viewer) delete(rec session.Record) {
	v.records = slices.DeleteFunc(v.records, func(r session.Record) bool { return r.ID == rec.ID })
	v.cache.Forget(rec.DisplayURL)
	v.notifier.Delete(rec.FileName)
	if len(v.records) > 0 {
		v.sess.Flash("removed " + rec.FileName)
	}
	v.sess.SetImages(v.records)
}

// Records returns the images still in the viewer.
func (v *Viewer) Records() []session.Record { return slices.Clone(v.records) }

func (v *Viewer) exportDir() string {
	if v.settings.ExportDir != "" {
		return v.settings.ExportDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ExportPath names the export of fileName taken at t inside dir.
func ExportPath(dir, fileName string, t time.Time) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-annotated-%s.png", base, t.Format("20060102-150405")))
}
