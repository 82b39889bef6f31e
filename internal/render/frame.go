package render

import (
	"image"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/filters"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/theme"
	"github.com/example/xrayview/internal/tool"
)

// Frame is an immutable snapshot of everything needed to paint one tick.
// Producers build a fresh Frame for every change and never modify one that
// has been handed to a painter.
type Frame struct {
	Window image.Point
	Chrome bool
	Theme  *theme.Theme

	Image    image.Image
	ImageKey string
	Filters  filters.Filters

	// Projection maps image space onto the canvas; its viewport is the size
	// of CanvasRect(Window, Chrome).
	Projection geometry.Projection

	Measurements []annotation.Measurement
	Annotations  []annotation.Annotation
	Preview      tool.Preview

	Status   Status
	Message  string
	ShowHelp bool
	Help     []HelpLine
}

// Status is the text shown in the chrome bars.
type Status struct {
	Title       string
	Index       int // zero based
	Count       int
	Category    string
	Notes       string
	Zoom        float64
	Rotation    geometry.Rotation
	Calibration string
	Filters     string
	Preset      string
	LoadError   string
}

// HelpLine is one row of the help overlay.
type HelpLine struct {
	Keys   string
	Action string
}
