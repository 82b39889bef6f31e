// Package calibration maps pixel distances in an image to millimetres.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/xrayview/internal/geometry"
)

// DefaultPixelsPerMm approximates a typical intraoral sensor until the
// operator calibrates against a known distance.
const DefaultPixelsPerMm = 10.0

var (
	// ErrInvalidDistance reports a real-world distance that is not a positive number.
	ErrInvalidDistance = errors.New("real distance must be a positive number of millimetres")
	// ErrNoPixelDistance reports a calibration span with no length.
	ErrNoPixelDistance = errors.New("calibration points must be apart")
)

// Data relates a measured pixel span to its real length.
type Data struct {
	PixelDistance  float64
	RealDistanceMm float64
	PixelsPerMm    float64
}

// Default returns the estimate used before any explicit calibration.
func Default() Data {
	d, _ := FromPixelsPerMm(DefaultPixelsPerMm)
	return d
}

// New builds calibration data from a pixel span and its length in millimetres.
func New(pixelDistance, realDistanceMm float64) (Data, error) {
	if !(realDistanceMm > 0) || math.IsInf(realDistanceMm, 0) {
		return Data{}, ErrInvalidDistance
	}
	if !(pixelDistance > 0) || math.IsInf(pixelDistance, 0) {
		return Data{}, ErrNoPixelDistance
	}
	return Data{
		PixelDistance:  pixelDistance,
		RealDistanceMm: realDistanceMm,
		PixelsPerMm:    pixelDistance / realDistanceMm,
	}, nil
}

// FromPixelsPerMm builds calibration data from a known density, as stored in
// configuration.
func FromPixelsPerMm(ppm float64) (Data, error) {
	if !(ppm > 0) || math.IsInf(ppm, 0) {
		return Data{}, fmt.Errorf("pixels per mm %v: %w", ppm, ErrInvalidDistance)
	}
	return New(ppm*10, 10)
}

// Millimetres converts a pixel distance using d, falling back to the default
// density if d was never initialised.
func (d Data) Millimetres(pixels float64) float64 {
	ppm := d.PixelsPerMm
	if !(ppm > 0) {
		ppm = DefaultPixelsPerMm
	}
	return pixels / ppm
}

// Format renders a pixel distance as the label shown next to a ruler.
func (d Data) Format(pixels float64) string {
	return fmt.Sprintf("%.1f mm", d.Millimetres(pixels))
}

func (d Data) String() string {
	return fmt.Sprintf("%.2f px/mm", d.PixelsPerMm)
}

// ParseMillimetres reads an operator supplied length. Commas are accepted as
// the decimal separator.
func ParseMillimetres(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "mm"))
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, ErrInvalidDistance)
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, ErrInvalidDistance
	}
	return v, nil
}

// Capture collects the two clicks of a calibration and the length that the
// operator assigns to them. The zero value is ready for the first click.
type Capture struct {
	points []geometry.ImagePoint
}

// Click records p. It reports true once both points are present and the
// capture is waiting for a length. Clicks after that are ignored.
func (c *Capture) Click(p geometry.ImagePoint) bool {
	if len(c.points) < 2 {
		c.points = append(c.points, p)
	}
	return c.AwaitingValue()
}

// Points returns a copy of the clicks recorded so far.
func (c *Capture) Points() []geometry.ImagePoint {
	return append([]geometry.ImagePoint(nil), c.points...)
}

// AwaitingValue reports whether both points have been clicked.
func (c *Capture) AwaitingValue() bool { return len(c.points) == 2 }

// PixelDistance returns the span between the two clicks, or 0 before both exist.
func (c *Capture) PixelDistance() float64 {
	if !c.AwaitingValue() {
		return 0
	}
	return geometry.Distance(c.points[0], c.points[1])
}

// Confirm converts the operator's input into new calibration data. On error
// the caller keeps its previous calibration.
func (c *Capture) Confirm(input string) (Data, error) {
	if !c.AwaitingValue() {
		return Data{}, ErrNoPixelDistance
	}
	mm, err := ParseMillimetres(input)
	if err != nil {
		return Data{}, err
	}
	return New(c.PixelDistance(), mm)
}
