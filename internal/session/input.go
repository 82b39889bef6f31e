package session

import (
	"fmt"
	"image"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/xrayview/internal/filters"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/tool"
)

// Step sizes of the filter shortcuts.
const (
	levelStep = 5
	gammaStep = 0.1
)

func (s *Session) registerShortcuts() {
	k := s.keys
	for i, t := range tool.All {
		t := t
		k.register("tool."+t.String(), t.String()+" tool", runes(rune('1'+i)), func() {
			s.report(s.machine.SelectTool(t))
		})
	}
	k.register("calibrate", "calibrate against a known distance", runes('c'), func() {
		s.report(s.machine.BeginCalibration())
	})
	k.register("zoomin", "zoom in", runes('+', '='), func() { s.view.ZoomIn() })
	k.register("zoomout", "zoom out", runes('-'), func() { s.view.ZoomOut() })
	k.register("fit", "fit to window", runes('0', 'f'), func() { s.view.FitToWindow() })
	k.register("rotate", "rotate 90° clockwise", runes('r'), func() { s.view.Rotate90() })
	k.register("invert", "invert", runes('i'), func() { s.filters.Invert = !s.filters.Invert })
	k.register("sharpen", "sharpen", runes('s'), func() { s.filters.Sharpen = !s.filters.Sharpen })
	k.register("preset", "next filter preset", runes('p'), func() {
		s.preset = filters.NextPreset(s.preset)
		p := filters.Presets[s.preset]
		s.filters = p.Filters
		s.Flash("preset: " + p.Name)
	})
	k.register("darker", "brightness down", runes('['), func() { s.filters.AdjustBrightness(-levelStep) })
	k.register("brighter", "brightness up", runes(']'), func() { s.filters.AdjustBrightness(levelStep) })
	k.register("flatter", "contrast down", runes('{'), func() { s.filters.AdjustContrast(-levelStep) })
	k.register("steeper", "contrast up", runes('}'), func() { s.filters.AdjustContrast(levelStep) })
	k.register("gammadown", "gamma down", runes('g'), func() { s.filters.AdjustGamma(-gammaStep) })
	k.register("gammaup", "gamma up", runes('G'), func() { s.filters.AdjustGamma(gammaStep) })
	k.register("undo", "undo last measurement or annotation", ctrl(key.CodeZ), func() {
		s.machine.DropPending()
		if e, ok := s.store.Undo(); ok {
			s.Flash(fmt.Sprintf("undid %s", e.Kind))
		}
	})
	k.register("prev", "previous image", codes(key.CodeLeftArrow, key.CodePageUp), s.Prev)
	k.register("next", "next image", codes(key.CodeRightArrow, key.CodePageDown), s.Next)
	k.register("cancel", "cancel, or close the viewer", codes(key.CodeEscape), func() {
		if s.showHelp {
			s.showHelp = false
			return
		}
		if s.machine.Cancel() == tool.None {
			s.Close()
		}
	})
	k.register("close", "close the viewer", runes('q'), s.Close)
	k.register("help", "toggle this help", runes('h', '?'), func() { s.showHelp = !s.showHelp })
	k.register("fullscreen", "toggle full screen", codes(key.CodeF11), func() { s.setFullscreen(!s.fullscreen) })
	k.register("delete", "delete image (press twice)", codes(key.CodeDeleteForward), s.requestDelete)
	k.register("export", "export annotated image", ctrl(key.CodeS), func() {
		if s.onExport == nil {
			s.Flash("export is not available")
			return
		}
		s.onExport(s.Current(), s.exportFrame())
	})
	k.register("copy", "copy annotated image", ctrl(key.CodeC), func() {
		if s.onCopy == nil {
			s.Flash("copy is not available")
			return
		}
		s.onCopy(s.Current(), s.exportFrame())
	})
}

func (s *Session) requestDelete() {
	if s.onDelete == nil {
		s.Flash("deleting images is not available")
		return
	}
	if !s.confirmDelete {
		s.confirmDelete = true
		msg := "press Delete again to remove " + s.Current().FileName
		if s.store.Has(s.Current().ID) {
			msg += " and its measurements"
		}
		s.Flash(msg)
		return
	}
	s.confirmDelete = false
	s.onDelete(s.Current())
}

// HandleKey processes a keyboard event.
func (s *Session) HandleKey(e key.Event) {
	if s.closed {
		return
	}
	defer s.publish()

	if s.trackModifier(e) {
		return
	}
	if e.Code == key.CodeDeleteForward {
		// Auto-repeat must not confirm a delete: the key has to come up
		// between the two presses.
		if e.Direction == key.DirRelease {
			s.deleteHeld = false
			return
		}
		if e.Direction == key.DirNone || s.deleteHeld {
			return
		}
		s.deleteHeld = true
	}
	if e.Direction == key.DirRelease {
		return
	}

	if s.machine.TextActive() {
		switch e.Code {
		case key.CodeReturnEnter, key.CodeKeypadEnter:
			s.report(s.machine.Submit())
		case key.CodeEscape:
			s.report(s.machine.Cancel())
		case key.CodeDeleteBackspace:
			s.machine.Backspace()
		default:
			if e.Rune > 0 && unicode.IsPrint(e.Rune) {
				s.machine.TypeRune(e.Rune)
			}
		}
		return
	}

	a, ok := s.keys.lookup(e)
	if !ok {
		return
	}
	if a.name != "delete" {
		s.confirmDelete = false
	}
	a.fn()
}

// trackModifier follows the keys that hold the pan override. It reports
// whether e was consumed.
func (s *Session) trackModifier(e key.Event) bool {
	down := e.Direction != key.DirRelease
	switch e.Code {
	case key.CodeSpacebar:
		if s.machine.TextActive() {
			return false
		}
		s.spaceHeld = down
	case key.CodeLeftAlt, key.CodeRightAlt:
		s.altHeld = down
	default:
		return false
	}
	s.updateOverride()
	return true
}

// HandleMouse processes a pointer event given in window pixels.
func (s *Session) HandleMouse(e mouse.Event) {
	if s.closed {
		return
	}
	defer s.publish()

	canvas := s.Canvas()
	p := geometry.ScreenPoint{X: float64(e.X) - float64(canvas.Min.X), Y: float64(e.Y) - float64(canvas.Min.Y)}

	if e.Direction == mouse.DirPress && s.showHelp {
		s.showHelp = false
		return
	}

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		step := 1
		if e.Button == mouse.ButtonWheelDown {
			step = -1
		}
		switch {
		case e.Modifiers&key.ModControl != 0:
			s.filters.AdjustBrightness(step * levelStep)
		case e.Modifiers&key.ModShift != 0:
			s.filters.AdjustContrast(step * levelStep)
		default:
			s.view.ZoomStepAt(step, p)
		}
		return
	case mouse.ButtonMiddle:
		switch e.Direction {
		case mouse.DirPress:
			s.middleHeld = true
			s.updateOverride()
			s.machine.PointerDown(p)
		case mouse.DirRelease:
			s.machine.PointerUp(p)
			s.middleHeld = false
			s.updateOverride()
		}
		return
	case mouse.ButtonLeft:
		switch e.Direction {
		case mouse.DirPress:
			if !canvasContains(canvas, e) {
				return
			}
			if s.messageUntil.After(s.now()) {
				s.messageUntil = s.now()
			}
			s.report(s.machine.PointerDown(p))
		case mouse.DirRelease:
			s.report(s.machine.PointerUp(p))
		default:
			s.machine.PointerMove(p)
		}
		return
	}
	if e.Direction == mouse.DirNone {
		s.machine.PointerMove(p)
	}
}

func canvasContains(c image.Rectangle, e mouse.Event) bool {
	return image.Pt(int(e.X), int(e.Y)).In(c)
}
