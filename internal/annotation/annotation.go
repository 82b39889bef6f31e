// Package annotation holds the measurements and free annotations drawn on
// each image of a viewing session, together with the undo history.
package annotation

import (
	"fmt"
	"image/color"

	"github.com/example/xrayview/internal/geometry"
)

// ImageID identifies an image record supplied by the host.
type ImageID string

// ID identifies one committed shape within a Store.
type ID uint64

// MeasurementKind distinguishes the two measurement shapes.
type MeasurementKind int

const (
	Ruler MeasurementKind = iota
	Angle
)

func (k MeasurementKind) String() string {
	switch k {
	case Ruler:
		return "ruler"
	case Angle:
		return "angle"
	}
	return fmt.Sprintf("measurement(%d)", int(k))
}

// Measurement is a committed ruler (two points) or angle (three points, the
// middle one being the vertex) with its display label.
type Measurement struct {
	ID     ID
	Kind   MeasurementKind
	Points []geometry.ImagePoint
	Value  string
}

// Kind distinguishes the free annotation shapes.
type Kind int

const (
	Arrow Kind = iota
	Text
	Freehand
)

func (k Kind) String() string {
	switch k {
	case Arrow:
		return "arrow"
	case Text:
		return "text"
	case Freehand:
		return "freehand"
	}
	return fmt.Sprintf("annotation(%d)", int(k))
}

// Annotation is a committed arrow (start and tip), text label (one anchor
// point) or freehand stroke.
type Annotation struct {
	ID     ID
	Kind   Kind
	Points []geometry.ImagePoint
	Text   string
	Color  color.RGBA
}

// FormatAngle renders an angle in degrees as shown next to an angle measurement.
func FormatAngle(deg float64) string {
	return fmt.Sprintf("%.1f°", deg)
}
