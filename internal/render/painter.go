// Package render paints viewer frames: the filtered radiograph under its
// view transform, the measurement and annotation overlay, and the HUD.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/xrayview/internal/filters"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/theme"
)

// Painter turns Frames into pixels. Paint only reads the frame; the filtered
// bitmap is cached between calls.
type Painter struct {
	cache   filters.Cache
	label   font.Face
	text    font.Face
	message font.Face
}

// NewPainter loads the fonts used for labels and messages.
func NewPainter() (*Painter, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	p := &Painter{}
	for _, fc := range []struct {
		face *font.Face
		size float64
	}{
		{&p.label, 14},
		{&p.text, 18},
		{&p.message, 28},
	} {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: fc.size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("font face: %w", err)
		}
		*fc.face = face
	}
	return p, nil
}

// Paint draws f over the whole of dst.
func (p *Painter) Paint(dst *image.RGBA, f *Frame) {
	th := f.Theme
	if th == nil {
		th = theme.Default()
	}
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(th.Background), image.Point{}, draw.Src)

	canvas := CanvasRect(b.Size(), f.Chrome).Add(b.Min)
	if !canvas.Empty() {
		draw.Draw(dst, canvas, image.NewUniform(th.CanvasBackground), image.Point{}, draw.Src)
		cv := dst.SubImage(canvas).(*image.RGBA)
		switch {
		case f.Image != nil:
			p.drawBitmap(cv, canvas.Min, f)
		case f.Status.LoadError != "":
			drawMessage(cv, canvas, p.label, "Cannot display image: "+f.Status.LoadError, th)
		}

		o := &overlay{
			pen:    newPen(dst, canvas),
			dst:    cv,
			origin: canvas.Min,
			proj:   f.Projection,
			th:     th,
			label:  p.label,
			text:   p.text,
		}
		for _, m := range f.Measurements {
			o.measurement(m)
		}
		for _, a := range f.Annotations {
			o.annotation(a)
		}
		o.preview(f.Preview)
		if f.Preview.Calibrating {
			drawPrompt(cv, canvas, p.label, promptText(f.Preview), th)
		}
	}

	if f.Chrome {
		drawTopBar(dst, b.Dx(), f.Status, th)
		drawBottomBar(dst, b.Dx(), b.Dy(), f.Preview.Active(), f.Status, th)
	}
	if f.Message != "" {
		drawMessage(dst, b, p.message, f.Message, th)
	}
	if f.ShowHelp {
		drawHelp(dst, b, p.label, f.Help, th)
	}
}

func (p *Painter) drawBitmap(dst *image.RGBA, origin image.Point, f *Frame) {
	if !onCanvas(f.Projection, dst.Bounds().Size()) {
		return
	}
	src := p.cache.Get(f.ImageKey, f.Image, f.Filters)
	sb := src.Bounds()
	aff := f.Projection.Affine(r2.Vec{X: float64(origin.X), Y: float64(origin.Y)})
	// Image point (0, 0) is the top-left corner of src, wherever its bounds start.
	aff[2] -= aff[0]*float64(sb.Min.X) + aff[1]*float64(sb.Min.Y)
	aff[5] -= aff[3]*float64(sb.Min.X) + aff[4]*float64(sb.Min.Y)

	var interp xdraw.Interpolator = xdraw.ApproxBiLinear
	if f.Projection.Transform.Sanitized().Scale >= 1 {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(dst, aff, src, sb, draw.Over, nil)
}

// onCanvas reports whether any of the projected image falls inside a canvas
// of the given size. Images panned fully out of view are neither filtered
// nor composited.
func onCanvas(proj geometry.Projection, canvas image.Point) bool {
	min, max := proj.ScreenBounds()
	visible := image.Rect(
		int(math.Floor(min.X)), int(math.Floor(min.Y)),
		int(math.Ceil(max.X)), int(math.Ceil(max.Y)),
	)
	return visible.Overlaps(image.Rectangle{Max: canvas})
}

// Snapshot paints f into a new image the size of f.Window.
func (p *Painter) Snapshot(f *Frame) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: f.Window})
	p.Paint(img, f)
	return img
}
