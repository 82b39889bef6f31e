package geometry

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func TestRoundTrip(t *testing.T) {
	viewport := Size{W: 800, H: 600}
	natural := Size{W: 1200, H: 900}
	scales := []float64{MinScale, 0.25, 1, 1.96, 3.3, MaxScale}
	rotations := []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}
	pans := []r2.Vec{{}, {X: 37.5, Y: -12}, {X: -4000, Y: 2500}}
	points := []ImagePoint{{}, {X: 600, Y: 450}, {X: 1199.5, Y: 3.25}, {X: -50, Y: 2000}}

	for _, s := range scales {
		for _, rot := range rotations {
			for _, pan := range pans {
				tr := Transform{Scale: s, Rotation: rot, Pan: pan}
				for _, p := range points {
					got := ScreenToImage(ImageToScreen(p, tr, viewport, natural), tr, viewport, natural)
					if !scalar.EqualWithinAbs(got.X, p.X, tol) || !scalar.EqualWithinAbs(got.Y, p.Y, tol) {
						t.Fatalf("round trip %+v under %+v: got %+v", p, tr, got)
					}
				}
			}
		}
	}
}

func TestImageCentreLandsOnViewportCentrePlusPan(t *testing.T) {
	viewport := Size{W: 400, H: 300}
	natural := Size{W: 200, H: 100}
	for _, rot := range []Rotation{Rotate0, Rotate90, Rotate180, Rotate270} {
		tr := Transform{Scale: 2.5, Rotation: rot, Pan: r2.Vec{X: 10, Y: -20}}
		got := ImageToScreen(ImagePoint{X: 100, Y: 50}, tr, viewport, natural)
		if !scalar.EqualWithinAbs(got.X, 210, tol) || !scalar.EqualWithinAbs(got.Y, 130, tol) {
			t.Errorf("rotation %d: centre mapped to %+v", rot, got)
		}
	}
}

func TestQuarterTurnIsClockwise(t *testing.T) {
	viewport := Size{W: 100, H: 100}
	natural := Size{W: 100, H: 100}
	tr := Transform{Scale: 1, Rotation: Rotate90}
	// The right edge of the image should end up at the bottom of the screen.
	got := ImageToScreen(ImagePoint{X: 100, Y: 50}, tr, viewport, natural)
	if !scalar.EqualWithinAbs(got.X, 50, tol) || !scalar.EqualWithinAbs(got.Y, 100, tol) {
		t.Fatalf("got %+v, want (50,100)", got)
	}
}

func TestDegenerateTransformIsClamped(t *testing.T) {
	viewport := Size{W: 100, H: 100}
	natural := Size{W: 50, H: 50}
	for _, s := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		tr := Transform{Scale: s, Rotation: 45, Pan: r2.Vec{X: math.NaN()}}
		got := ScreenToImage(ScreenPoint{X: 10, Y: 10}, tr, viewport, natural)
		if math.IsNaN(got.X) || math.IsNaN(got.Y) || math.IsInf(got.X, 0) || math.IsInf(got.Y, 0) {
			t.Errorf("scale %v produced %+v", s, got)
		}
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   int
		want Rotation
	}{
		{0, Rotate0},
		{90, Rotate90},
		{450, Rotate90},
		{-90, Rotate270},
		{180, Rotate180},
		{44, Rotate0},
		{46, Rotate90},
		{359, Rotate0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := NormalizeRotation(tt.in); got != tt.want {
				t.Errorf("NormalizeRotation(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRotationNextCycles(t *testing.T) {
	r := Rotate0
	for i := 0; i < 4; i++ {
		r = r.Next()
	}
	if r != Rotate0 {
		t.Fatalf("four quarter turns ended at %d", r)
	}
	if !Rotate270.SwapsAxes() || Rotate180.SwapsAxes() {
		t.Fatal("SwapsAxes mismatch")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(ImagePoint{X: 0, Y: 0}, ImagePoint{X: 30, Y: 40}); d != 50 {
		t.Fatalf("Distance = %v, want 50", d)
	}
	if d := ScreenDistance(ScreenPoint{X: 1, Y: 1}, ScreenPoint{X: 1, Y: 1}); d != 0 {
		t.Fatalf("ScreenDistance = %v, want 0", d)
	}
}

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name      string
		p1, v, p2 ImagePoint
		want      float64
	}{
		{"right", ImagePoint{X: 10}, ImagePoint{}, ImagePoint{Y: 10}, 90},
		{"straight", ImagePoint{X: 10}, ImagePoint{}, ImagePoint{X: -10}, 180},
		{"reflex folds back", ImagePoint{X: -10, Y: 1}, ImagePoint{}, ImagePoint{X: -10, Y: -1}, 2 * math.Atan2(1, 10) * 180 / math.Pi},
		{"zero", ImagePoint{X: 5, Y: 5}, ImagePoint{}, ImagePoint{X: 10, Y: 10}, 0},
		{"offset vertex", ImagePoint{X: 20, Y: 10}, ImagePoint{X: 10, Y: 10}, ImagePoint{X: 10, Y: 0}, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleBetween(tt.p1, tt.v, tt.p2)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("AngleBetween = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 180 {
				t.Errorf("angle %v out of range", got)
			}
		})
	}
}

func TestAffineMatchesImageToScreen(t *testing.T) {
	p := Projection{
		Transform: Transform{Scale: 1.5, Rotation: Rotate270, Pan: r2.Vec{X: 12, Y: 7}},
		Viewport:  Size{W: 640, H: 480},
		Natural:   Size{W: 300, H: 200},
	}
	offset := r2.Vec{X: 0, Y: 24}
	m := p.Affine(offset)
	for _, ip := range []ImagePoint{{}, {X: 300, Y: 200}, {X: 17, Y: 123}} {
		want := p.ToScreen(ip)
		gx := m[0]*ip.X + m[1]*ip.Y + m[2]
		gy := m[3]*ip.X + m[4]*ip.Y + m[5]
		if !scalar.EqualWithinAbs(gx, want.X+offset.X, tol) || !scalar.EqualWithinAbs(gy, want.Y+offset.Y, tol) {
			t.Errorf("affine(%+v) = (%v,%v), want %+v", ip, gx, gy, want)
		}
	}
}

func TestScreenBounds(t *testing.T) {
	p := Projection{
		Transform: Transform{Scale: 2, Rotation: Rotate90},
		Viewport:  Size{W: 400, H: 400},
		Natural:   Size{W: 100, H: 50},
	}
	min, max := p.ScreenBounds()
	if !scalar.EqualWithinAbs(max.X-min.X, 100, tol) || !scalar.EqualWithinAbs(max.Y-min.Y, 200, tol) {
		t.Fatalf("bounds %+v..%+v", min, max)
	}
}
