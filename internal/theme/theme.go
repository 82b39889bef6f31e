// Package theme holds the colours of the viewer chrome and overlay.
package theme

import (
	"image/color"
)

// Theme defines the colour palette for the viewer.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background behind the canvas
	Foreground color.RGBA // Text on bars and panels

	// Top and bottom bars
	BarBackground color.RGBA
	BarText       color.RGBA
	Accent        color.RGBA // Selected tool in the bottom bar

	// Canvas
	CanvasBackground color.RGBA

	// Overlay
	Measurement color.RGBA // Committed rulers and angles
	Preview     color.RGBA // Rubber-band shapes still being drawn
	Marker      color.RGBA // Vertex dots
	Calibration color.RGBA // Calibration span and prompt border
	Annotation  color.RGBA // Default colour for new annotations
	Crosshair   color.RGBA

	// Panels
	HelpBackground    color.RGBA
	MessageBackground color.RGBA
	MessageText       color.RGBA
}

// Default returns the hardcoded dark theme used when nothing else loads.
func Default() *Theme {
	return &Theme{
		Name:              "Dark",
		Background:        color.RGBA{24, 24, 24, 255},
		Foreground:        color.RGBA{230, 230, 230, 255},
		BarBackground:     color.RGBA{40, 40, 40, 255},
		BarText:           color.RGBA{220, 220, 220, 255},
		Accent:            color.RGBA{255, 196, 0, 255},
		CanvasBackground:  color.RGBA{0, 0, 0, 255},
		Measurement:       color.RGBA{255, 221, 0, 255},
		Preview:           color.RGBA{0, 200, 255, 255},
		Marker:            color.RGBA{255, 80, 80, 255},
		Calibration:       color.RGBA{0, 255, 128, 255},
		Annotation:        color.RGBA{255, 64, 64, 255},
		Crosshair:         color.RGBA{255, 255, 255, 96},
		HelpBackground:    color.RGBA{0, 0, 0, 210},
		MessageBackground: color.RGBA{32, 32, 32, 230},
		MessageText:       color.RGBA{255, 255, 255, 255},
	}
}
