package geometry

import (
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"
)

// Projection bundles a transform with the viewport and image sizes it is
// evaluated against.
type Projection struct {
	Transform Transform
	Viewport  Size
	Natural   Size
}

// ToScreen maps an image point onto the viewport.
func (p Projection) ToScreen(ip ImagePoint) ScreenPoint {
	return ImageToScreen(ip, p.Transform, p.Viewport, p.Natural)
}

// ToImage maps a viewport point into image space.
func (p Projection) ToImage(sp ScreenPoint) ImagePoint {
	return ScreenToImage(sp, p.Transform, p.Viewport, p.Natural)
}

// Affine returns the image-to-screen mapping as a matrix suitable for
// golang.org/x/image/draw transformers. offset shifts the result, for example
// to place the viewport inside a larger window buffer.
func (p Projection) Affine(offset r2.Vec) f64.Aff3 {
	t := p.Transform.Sanitized()
	ex := t.Rotation.apply(r2.Vec{X: t.Scale})
	ey := t.Rotation.apply(r2.Vec{Y: t.Scale})
	origin := p.ToScreen(ImagePoint{})
	return f64.Aff3{
		ex.X, ey.X, origin.X + offset.X,
		ex.Y, ey.Y, origin.Y + offset.Y,
	}
}

// ScreenBounds returns the axis aligned box covering the projected image.
func (p Projection) ScreenBounds() (min, max ScreenPoint) {
	corners := [4]ImagePoint{
		{},
		{X: p.Natural.W},
		{Y: p.Natural.H},
		{X: p.Natural.W, Y: p.Natural.H},
	}
	for i, c := range corners {
		s := p.ToScreen(c)
		if i == 0 {
			min, max = s, s
			continue
		}
		if s.X < min.X {
			min.X = s.X
		}
		if s.Y < min.Y {
			min.Y = s.Y
		}
		if s.X > max.X {
			max.X = s.X
		}
		if s.Y > max.Y {
			max.Y = s.Y
		}
	}
	return min, max
}
