package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/theme"
	"github.com/example/xrayview/internal/tool"
)

const (
	strokeWidth  = 2.0
	markerRadius = 3.0
	arcRadius    = 24.0
	arcSteps     = 24
	labelOffset  = 8
)

// overlay draws shapes in canvas coordinates. dst is clipped to the canvas
// and origin is the canvas position inside dst.
type overlay struct {
	pen    *pen
	dst    draw.Image
	origin image.Point
	proj   geometry.Projection
	th     *theme.Theme
	label  font.Face
	text   font.Face
}

func (o *overlay) screen(p geometry.ImagePoint) r2.Vec { return r2.Vec(o.proj.ToScreen(p)) }

func (o *overlay) screens(pts []geometry.ImagePoint) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = o.screen(p)
	}
	return out
}

func (o *overlay) labelAt(face font.Face, v r2.Vec, s string, c color.RGBA) {
	if math.Abs(v.X) > 1e6 || math.Abs(v.Y) > 1e6 {
		return
	}
	drawLabel(o.dst, face, o.origin.X+int(math.Round(v.X)), o.origin.Y+int(math.Round(v.Y)), s, c)
}

func (o *overlay) markers(pts []r2.Vec, c color.RGBA) {
	for _, p := range pts {
		o.pen.dot(p, markerRadius, c)
	}
}

func (o *overlay) measurement(m annotation.Measurement) {
	pts := o.screens(m.Points)
	c := o.th.Measurement
	switch m.Kind {
	case annotation.Ruler:
		if len(pts) != 2 {
			return
		}
		o.pen.stroke(pts, strokeWidth, c, nil)
		o.markers(pts, o.th.Marker)
		mid := r2.Scale(0.5, r2.Add(pts[0], pts[1]))
		o.labelAt(o.label, r2.Add(mid, r2.Vec{X: labelOffset, Y: -labelOffset}), m.Value, c)
	case annotation.Angle:
		if len(pts) != 3 {
			return
		}
		o.pen.stroke(pts, strokeWidth, c, nil)
		o.arc(pts[1], pts[0], pts[2], c, nil)
		o.markers(pts, o.th.Marker)
		o.labelAt(o.label, r2.Add(pts[1], r2.Vec{X: labelOffset, Y: -labelOffset}), m.Value, c)
	}
}

func (o *overlay) annotation(a annotation.Annotation) {
	pts := o.screens(a.Points)
	switch a.Kind {
	case annotation.Arrow:
		if len(pts) == 2 {
			o.arrow(pts[0], pts[1], a.Color, nil)
		}
	case annotation.Text:
		if len(pts) == 1 {
			o.labelAt(o.text, pts[0], a.Text, a.Color)
		}
	case annotation.Freehand:
		o.path(pts, a.Color, nil)
	}
}

// path strokes a freehand path. A path that never moved is shown as a dot.
func (o *overlay) path(pts []r2.Vec, c color.RGBA, dashes []float64) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts[1:] {
		if p != pts[0] {
			o.pen.stroke(pts, strokeWidth, c, dashes)
			return
		}
	}
	o.pen.dot(pts[0], strokeWidth, c)
}

// arrow draws a shaft from a to b with a filled head at b.
func (o *overlay) arrow(a, b r2.Vec, c color.RGBA, dashes []float64) {
	o.pen.stroke([]r2.Vec{a, b}, strokeWidth, c, dashes)
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	size := 6 + strokeWidth*2
	a1 := angle + math.Pi/6
	a2 := angle - math.Pi/6
	o.pen.fill([]r2.Vec{
		b,
		{X: b.X - math.Cos(a1)*size, Y: b.Y - math.Sin(a1)*size},
		{X: b.X - math.Cos(a2)*size, Y: b.Y - math.Sin(a2)*size},
	}, c)
}

// arc marks the angle at vertex between the rays to p1 and p2, sweeping the
// shorter way round.
func (o *overlay) arc(vertex, p1, p2 r2.Vec, c color.RGBA, dashes []float64) {
	l1 := r2.Norm(r2.Sub(p1, vertex))
	l2 := r2.Norm(r2.Sub(p2, vertex))
	if l1 == 0 || l2 == 0 {
		return
	}
	radius := math.Min(arcRadius, 0.5*math.Min(l1, l2))
	from := math.Atan2(p1.Y-vertex.Y, p1.X-vertex.X)
	to := math.Atan2(p2.Y-vertex.Y, p2.X-vertex.X)
	sweep := math.Remainder(to-from, 2*math.Pi)
	pts := make([]r2.Vec, arcSteps+1)
	for i := range pts {
		a := from + sweep*float64(i)/arcSteps
		pts[i] = r2.Vec{X: vertex.X + radius*math.Cos(a), Y: vertex.Y + radius*math.Sin(a)}
	}
	o.pen.stroke(pts, strokeWidth/2, c, dashes)
}

func (o *overlay) crosshair(at r2.Vec) {
	w, h := o.pen.max.X-clipMargin, o.pen.max.Y-clipMargin
	o.pen.stroke([]r2.Vec{{X: 0, Y: at.Y}, {X: w, Y: at.Y}}, 1, o.th.Crosshair, nil)
	o.pen.stroke([]r2.Vec{{X: at.X, Y: 0}, {X: at.X, Y: h}}, 1, o.th.Crosshair, nil)
}

// preview draws the gesture in progress against the live pointer.
func (o *overlay) preview(pv tool.Preview) {
	if pv.Calibrating {
		o.calibration(pv)
		return
	}
	pts := o.screens(pv.Points)
	pointer := r2.Vec(pv.Pointer)
	c := o.th.Preview
	// While the pan override is held the pointer drags the view, so pending
	// points are drawn without rubber bands towards it.
	live := pv.HasPointer && !pv.Override

	if live && (pv.Tool == tool.Ruler || pv.Tool == tool.Angle) {
		o.crosshair(pointer)
	}

	switch pv.Tool {
	case tool.Ruler:
		if len(pts) == 1 && live {
			o.pen.stroke([]r2.Vec{pts[0], pointer}, strokeWidth, c, previewDashes)
			d := geometry.Distance(pv.Points[0], o.proj.ToImage(pv.Pointer))
			o.labelAt(o.label, r2.Add(pointer, r2.Vec{X: labelOffset, Y: -labelOffset}), pv.Calibration.Format(d), c)
		}
		o.markers(pts, o.th.Marker)
	case tool.Angle:
		if len(pts) == 2 && !live {
			o.pen.stroke(pts, strokeWidth, c, previewDashes)
		}
		if live {
			switch len(pts) {
			case 1:
				o.pen.stroke([]r2.Vec{pts[0], pointer}, strokeWidth, c, previewDashes)
			case 2:
				o.pen.stroke([]r2.Vec{pts[0], pts[1], pointer}, strokeWidth, c, previewDashes)
				o.arc(pts[1], pts[0], pointer, c, nil)
				deg := geometry.AngleBetween(pv.Points[0], pv.Points[1], o.proj.ToImage(pv.Pointer))
				o.labelAt(o.label, r2.Add(pts[1], r2.Vec{X: labelOffset, Y: -labelOffset}), annotation.FormatAngle(deg), c)
			}
		}
		o.markers(pts, o.th.Marker)
	case tool.Arrow:
		if pv.Dragging && live && len(pts) == 1 {
			o.arrow(pts[0], pointer, pv.Color, previewDashes)
		}
	case tool.Freehand:
		switch {
		case pv.Dragging && live && len(pts) > 0:
			o.path(append(pts, pointer), pv.Color, previewDashes)
		case len(pts) > 1:
			o.path(pts, pv.Color, previewDashes)
		}
	}

	if pv.Text != nil {
		o.labelAt(o.text, o.screen(pv.Text.At), pv.Text.Value+"|", pv.Color)
	}
}

func (o *overlay) calibration(pv tool.Preview) {
	c := o.th.Calibration
	pts := o.screens(pv.CalibrationPoints)
	pointer := r2.Vec(pv.Pointer)
	if pv.HasPointer && !pv.PromptOpen {
		o.crosshair(pointer)
	}
	switch len(pts) {
	case 1:
		if pv.HasPointer {
			o.pen.stroke([]r2.Vec{pts[0], pointer}, strokeWidth, c, previewDashes)
			d := geometry.Distance(pv.CalibrationPoints[0], o.proj.ToImage(pv.Pointer))
			o.labelAt(o.label, r2.Add(pointer, r2.Vec{X: labelOffset, Y: -labelOffset}), fmt.Sprintf("%.0f px", d), c)
		}
	case 2:
		o.pen.stroke(pts, strokeWidth, c, nil)
		d := geometry.Distance(pv.CalibrationPoints[0], pv.CalibrationPoints[1])
		mid := r2.Scale(0.5, r2.Add(pts[0], pts[1]))
		o.labelAt(o.label, r2.Add(mid, r2.Vec{X: labelOffset, Y: -labelOffset}), fmt.Sprintf("%.0f px", d), c)
	}
	o.markers(pts, c)
}
