// Package geometry converts points between the viewport a user sees and the
// natural pixel grid of the image being inspected.
//
// Screen and image coordinates use distinct types so the two spaces can only
// be mixed through ScreenToImage and ImageToScreen.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Scale limits applied to every Transform.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// ScreenPoint is a location in viewport pixels, origin at the top-left of the canvas.
type ScreenPoint r2.Vec

// ImagePoint is a location in the natural pixel grid of the image.
type ImagePoint r2.Vec

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Center returns the midpoint of a rectangle of size s anchored at the origin.
func (s Size) Center() r2.Vec { return r2.Vec{X: s.W / 2, Y: s.H / 2} }

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return !(s.W > 0 && s.H > 0) }

// Rotation is a clockwise quarter turn expressed in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// NormalizeRotation snaps deg to the nearest quarter turn in [0, 360).
func NormalizeRotation(deg int) Rotation {
	d := ((deg % 360) + 360) % 360
	q := ((d + 45) / 90) % 4
	return Rotation(q * 90)
}

// Next returns the rotation a quarter turn further clockwise.
func (r Rotation) Next() Rotation { return NormalizeRotation(int(r) + 90) }

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation { return NormalizeRotation(360 - int(r)) }

// SwapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool {
	r = NormalizeRotation(int(r))
	return r == Rotate90 || r == Rotate270
}

// apply rotates v clockwise on a y-down grid. Quarter turns are exact.
func (r Rotation) apply(v r2.Vec) r2.Vec {
	switch NormalizeRotation(int(r)) {
	case Rotate90:
		return r2.Vec{X: -v.Y, Y: v.X}
	case Rotate180:
		return r2.Vec{X: -v.X, Y: -v.Y}
	case Rotate270:
		return r2.Vec{X: v.Y, Y: -v.X}
	}
	return v
}

// Transform is the view state that maps image space onto the viewport.
type Transform struct {
	Scale    float64
	Rotation Rotation
	Pan      r2.Vec
}

// Identity returns a transform with unit scale, no rotation and no pan.
func Identity() Transform { return Transform{Scale: 1} }

// ClampScale limits s to [MinScale, MaxScale]. Non-finite or non-positive
// values collapse to MinScale.
func ClampScale(s float64) float64 {
	switch {
	case math.IsNaN(s) || s <= MinScale:
		return MinScale
	case s >= MaxScale:
		return MaxScale
	}
	return s
}

// Sanitized returns t with its scale clamped, its rotation snapped to a
// quarter turn and any non-finite pan component zeroed.
func (t Transform) Sanitized() Transform {
	t.Scale = ClampScale(t.Scale)
	t.Rotation = NormalizeRotation(int(t.Rotation))
	if math.IsNaN(t.Pan.X) || math.IsInf(t.Pan.X, 0) {
		t.Pan.X = 0
	}
	if math.IsNaN(t.Pan.Y) || math.IsInf(t.Pan.Y, 0) {
		t.Pan.Y = 0
	}
	return t
}

// ImageToScreen maps p onto the viewport: the image is centred, scaled,
// rotated about its centre and then shifted by the pan offset relative to the
// viewport centre.
func ImageToScreen(p ImagePoint, t Transform, viewport, natural Size) ScreenPoint {
	t = t.Sanitized()
	v := r2.Sub(r2.Vec(p), natural.Center())
	v = r2.Scale(t.Scale, v)
	v = t.Rotation.apply(v)
	v = r2.Add(v, viewport.Center())
	return ScreenPoint(r2.Add(v, t.Pan))
}

// ScreenToImage is the inverse of ImageToScreen.
func ScreenToImage(s ScreenPoint, t Transform, viewport, natural Size) ImagePoint {
	t = t.Sanitized()
	v := r2.Sub(r2.Vec(s), t.Pan)
	v = r2.Sub(v, viewport.Center())
	v = t.Rotation.Inverse().apply(v)
	v = r2.Scale(1/t.Scale, v)
	return ImagePoint(r2.Add(v, natural.Center()))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b ImagePoint) float64 {
	return r2.Norm(r2.Sub(r2.Vec(b), r2.Vec(a)))
}

// ScreenDistance returns the Euclidean distance between two viewport points.
func ScreenDistance(a, b ScreenPoint) float64 {
	return r2.Norm(r2.Sub(r2.Vec(b), r2.Vec(a)))
}

// AngleBetween returns the angle at vertex between the rays towards p1 and
// p2, in degrees within [0, 180].
func AngleBetween(p1, vertex, p2 ImagePoint) float64 {
	a1 := math.Atan2(p1.Y-vertex.Y, p1.X-vertex.X)
	a2 := math.Atan2(p2.Y-vertex.Y, p2.X-vertex.X)
	deg := math.Abs(a1-a2) * 180 / math.Pi
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}
