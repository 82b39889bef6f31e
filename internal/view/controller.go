// Package view owns the zoom, rotation and pan of the displayed image.
package view

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/xrayview/internal/geometry"
)

// DefaultZoomStep is the factor applied by one zoom in or out step.
const DefaultZoomStep = 1.25

// FitMargin leaves a small border around an image fitted to the window.
const FitMargin = 0.98

// Controller mutates a geometry.Transform. Every mutation keeps the scale
// within [geometry.MinScale, geometry.MaxScale].
type Controller struct {
	t        geometry.Transform
	viewport geometry.Size
	natural  geometry.Size
	step     float64
}

// New returns a controller with an identity transform.
func New(viewport, natural geometry.Size) *Controller {
	return &Controller{
		t:        geometry.Identity(),
		viewport: viewport,
		natural:  natural,
		step:     DefaultZoomStep,
	}
}

// SetZoomStep changes the factor used by ZoomIn and ZoomOut. Steps not above 1 are ignored.
func (c *Controller) SetZoomStep(step float64) {
	if step > 1 && !math.IsInf(step, 0) {
		c.step = step
	}
}

// Transform returns the current transform by value.
func (c *Controller) Transform() geometry.Transform { return c.t }

// Viewport returns the viewport size.
func (c *Controller) Viewport() geometry.Size { return c.viewport }

// Natural returns the natural size of the current image.
func (c *Controller) Natural() geometry.Size { return c.natural }

// Projection returns the transform together with the sizes it applies to.
func (c *Controller) Projection() geometry.Projection {
	return geometry.Projection{Transform: c.t, Viewport: c.viewport, Natural: c.natural}
}

// SetViewport records a new viewport size without changing the transform.
func (c *Controller) SetViewport(s geometry.Size) { c.viewport = s }

// Reset switches to an image of the given natural size, returning to an
// unrotated identity view.
func (c *Controller) Reset(natural geometry.Size) {
	c.natural = natural
	c.t = geometry.Identity()
}

// ZoomTo sets the scale, clamped to the supported range.
func (c *Controller) ZoomTo(scale float64) { c.t.Scale = geometry.ClampScale(scale) }

// ZoomIn multiplies the scale by the zoom step.
func (c *Controller) ZoomIn() { c.ZoomTo(c.t.Scale * c.step) }

// ZoomOut divides the scale by the zoom step.
func (c *Controller) ZoomOut() { c.ZoomTo(c.t.Scale / c.step) }

// ZoomStepAt zooms in (steps > 0) or out (steps < 0) keeping the image point
// under anchor stationary on screen.
func (c *Controller) ZoomStepAt(steps int, anchor geometry.ScreenPoint) {
	if steps == 0 {
		return
	}
	c.ZoomAt(c.t.Scale*math.Pow(c.step, float64(steps)), anchor)
}

// ZoomAt sets the scale while keeping the image point under anchor fixed.
func (c *Controller) ZoomAt(scale float64, anchor geometry.ScreenPoint) {
	p := c.Projection()
	target := p.ToImage(anchor)
	c.ZoomTo(scale)
	moved := c.Projection().ToScreen(target)
	c.t.Pan = r2.Add(c.t.Pan, r2.Sub(r2.Vec(anchor), r2.Vec(moved)))
}

// Rotate90 turns the image a quarter turn clockwise.
func (c *Controller) Rotate90() { c.t.Rotation = c.t.Rotation.Next() }

// FitToWindow scales the image so that it fits the viewport with a small
// margin, honouring rotation, and recentres it.
func (c *Controller) FitToWindow() {
	c.t.Pan = r2.Vec{}
	w, h := c.natural.W, c.natural.H
	if c.t.Rotation.SwapsAxes() {
		w, h = h, w
	}
	if !(w > 0 && h > 0) || c.viewport.Empty() {
		return
	}
	c.ZoomTo(math.Min(c.viewport.W/w, c.viewport.H/h) * FitMargin)
}

// Pan returns the current pan offset in screen pixels.
func (c *Controller) Pan() r2.Vec { return c.t.Pan }

// SetPan replaces the pan offset. Panning is unbounded.
func (c *Controller) SetPan(p r2.Vec) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return
	}
	c.t.Pan = p
}

// PanBy shifts the pan offset by d screen pixels.
func (c *Controller) PanBy(d r2.Vec) { c.SetPan(r2.Add(c.t.Pan, d)) }
