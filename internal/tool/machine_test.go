package tool

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/view"
)

// newMachine returns a machine whose screen and image coordinates coincide.
func newMachine(t *testing.T) (*Machine, *annotation.Store, *view.Controller) {
	t.Helper()
	store := annotation.NewStore()
	v := view.New(geometry.Size{W: 100, H: 100}, geometry.Size{W: 100, H: 100})
	return New(store, v, "a", calibration.Default()), store, v
}

func sp(x, y float64) geometry.ScreenPoint { return geometry.ScreenPoint{X: x, Y: y} }

func click(m *Machine, x, y float64) Result {
	r := m.PointerDown(sp(x, y))
	if up := m.PointerUp(sp(x, y)); r == None {
		r = up
	}
	return r
}

func TestRulerCommitsAtTwoPoints(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Ruler)
	if r := click(m, 10, 10); r != None {
		t.Fatalf("first click = %v", r)
	}
	if r := click(m, 40, 50); r != Committed {
		t.Fatalf("second click = %v", r)
	}
	ms, _ := store.ListFor("a")
	if len(ms) != 1 || ms[0].Kind != annotation.Ruler || ms[0].Value != "5.0 mm" {
		t.Fatalf("measurements = %+v", ms)
	}
	if len(m.Pending()) != 0 {
		t.Fatal("pending not cleared after commit")
	}
}

func TestAngleCommitsAtThreePoints(t *testing.T) {
	tests := []struct {
		name   string
		points [3][2]float64
		want   string
	}{
		{"right", [3][2]float64{{60, 50}, {50, 50}, {50, 40}}, "90.0°"},
		{"straight", [3][2]float64{{40, 50}, {50, 50}, {60, 50}}, "180.0°"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store, _ := newMachine(t)
			m.SelectTool(Angle)
			var r Result
			for _, p := range tt.points {
				r = click(m, p[0], p[1])
			}
			if r != Committed {
				t.Fatalf("last click = %v", r)
			}
			ms, _ := store.ListFor("a")
			if len(ms) != 1 || ms[0].Value != tt.want || len(ms[0].Points) != 3 {
				t.Fatalf("measurements = %+v", ms)
			}
		})
	}
}

func TestSwitchingToolClearsPending(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Angle)
	click(m, 1, 1)
	click(m, 2, 2)
	m.SelectTool(Ruler)
	if len(m.Pending()) != 0 {
		t.Fatalf("pending = %v", m.Pending())
	}
	click(m, 10, 10)
	if ms, _ := store.ListFor("a"); len(ms) != 0 {
		t.Fatalf("unexpected commit %+v", ms)
	}
	if r := click(m, 40, 50); r != Committed {
		t.Fatalf("second ruler click = %v", r)
	}
	ms, _ := store.ListFor("a")
	if len(ms) != 1 || ms[0].Kind != annotation.Ruler {
		t.Fatalf("measurements = %+v", ms)
	}
	want := []geometry.ImagePoint{{X: 10, Y: 10}, {X: 40, Y: 50}}
	if len(ms[0].Points) != 2 || ms[0].Points[0] != want[0] || ms[0].Points[1] != want[1] {
		t.Fatalf("ruler points = %v, want %v", ms[0].Points, want)
	}
	if ms[0].Value != "5.0 mm" {
		t.Fatalf("ruler value = %q", ms[0].Value)
	}
}

func TestCommitsGoToCurrentImage(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Ruler)
	click(m, 0, 0)
	m.SetImage("b")
	click(m, 10, 0)
	click(m, 20, 0)
	if ms, _ := store.ListFor("a"); len(ms) != 0 {
		t.Fatalf("image a got %+v", ms)
	}
	ms, _ := store.ListFor("b")
	if len(ms) != 1 || ms[0].Value != "1.0 mm" {
		t.Fatalf("image b got %+v", ms)
	}
}

func TestMalformedSequencesAreIgnored(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Arrow)
	if r := m.PointerUp(sp(5, 5)); r != None {
		t.Fatalf("stray release = %v", r)
	}
	m.SelectTool(Freehand)
	m.PointerMove(sp(1, 1))
	if r := m.PointerUp(sp(2, 2)); r != None {
		t.Fatalf("stray release = %v", r)
	}
	if _, as := store.ListFor("a"); len(as) != 0 {
		t.Fatalf("unexpected annotations %+v", as)
	}
}

func TestArrowAllowsZeroLength(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Arrow)
	m.PointerDown(sp(30, 30))
	if r := m.PointerUp(sp(30, 30)); r != Committed {
		t.Fatalf("release = %v", r)
	}
	_, as := store.ListFor("a")
	if len(as) != 1 || as[0].Kind != annotation.Arrow || as[0].Points[0] != as[0].Points[1] {
		t.Fatalf("annotations = %+v", as)
	}
}

func TestFreehandRecordsPath(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Freehand)
	m.PointerDown(sp(1, 1))
	m.PointerMove(sp(2, 2))
	m.PointerMove(sp(3, 3))
	m.PointerUp(sp(4, 4))

	m.PointerDown(sp(9, 9))
	m.PointerUp(sp(9, 9))

	_, as := store.ListFor("a")
	if len(as) != 2 {
		t.Fatalf("annotations = %+v", as)
	}
	if n := len(as[0].Points); n != 4 {
		t.Errorf("first path has %d points, want 4", n)
	}
	if n := len(as[1].Points); n < 2 {
		t.Errorf("click path has %d points, want at least 2", n)
	}
}

func TestFreehandIgnoresStationaryMoves(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Freehand)
	m.PointerDown(sp(1, 1))
	m.PointerMove(sp(1, 1))
	m.PointerMove(sp(2, 2))
	m.PointerMove(sp(2, 2))
	m.PointerMove(sp(2.2, 2.1))
	m.PointerMove(sp(3, 3))
	m.PointerUp(sp(4, 4))
	_, as := store.ListFor("a")
	if len(as) != 1 {
		t.Fatalf("annotations = %+v", as)
	}
	want := []geometry.ImagePoint{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}
	if len(as[0].Points) != len(want) {
		t.Fatalf("points = %v, want %v", as[0].Points, want)
	}
	for i, p := range want {
		if as[0].Points[i] != p {
			t.Fatalf("points = %v, want %v", as[0].Points, want)
		}
	}
}

func TestTextEntry(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		m, store, _ := newMachine(t)
		m.SelectTool(Text)
		click(m, 20, 30)
		if !m.TextActive() {
			t.Fatal("text entry not open")
		}
		for _, r := range "caries!" {
			m.TypeRune(r)
		}
		m.Backspace()
		if r := m.Submit(); r != Committed {
			t.Fatalf("Submit = %v", r)
		}
		_, as := store.ListFor("a")
		if len(as) != 1 || as[0].Text != "caries" || as[0].Points[0] != (geometry.ImagePoint{X: 20, Y: 30}) {
			t.Fatalf("annotations = %+v", as)
		}
	})
	t.Run("empty is discarded", func(t *testing.T) {
		m, store, _ := newMachine(t)
		m.SelectTool(Text)
		click(m, 20, 30)
		m.TypeRune(' ')
		if r := m.Submit(); r != Cancelled {
			t.Fatalf("Submit = %v", r)
		}
		if _, as := store.ListFor("a"); len(as) != 0 {
			t.Fatalf("annotations = %+v", as)
		}
	})
	t.Run("escape discards", func(t *testing.T) {
		m, store, _ := newMachine(t)
		m.SelectTool(Text)
		click(m, 20, 30)
		m.TypeRune('x')
		if r := m.Cancel(); r != Cancelled {
			t.Fatalf("Cancel = %v", r)
		}
		if _, as := store.ListFor("a"); len(as) != 0 {
			t.Fatalf("annotations = %+v", as)
		}
	})
	t.Run("defocus commits", func(t *testing.T) {
		m, store, _ := newMachine(t)
		m.SelectTool(Text)
		click(m, 20, 30)
		m.TypeRune('x')
		if r := click(m, 60, 60); r != Committed {
			t.Fatalf("click away = %v", r)
		}
		if _, as := store.ListFor("a"); len(as) != 1 {
			t.Fatalf("annotations = %+v", as)
		}
	})
}

func TestCalibrationFlow(t *testing.T) {
	m, store, _ := newMachine(t)
	m.SelectTool(Ruler)
	m.BeginCalibration()
	if r := click(m, 0, 0); r != None {
		t.Fatalf("first calibration click = %v", r)
	}
	if r := click(m, 0, 40); r != PromptOpened {
		t.Fatalf("second calibration click = %v", r)
	}
	for _, r := range "2" {
		m.TypeRune(r)
	}
	if r := m.Submit(); r != Calibrated {
		t.Fatalf("Submit = %v", r)
	}
	if got := m.Calibration().PixelsPerMm; got != 20 {
		t.Fatalf("pixels per mm = %v, want 20", got)
	}
	if ms, _ := store.ListFor("a"); len(ms) != 0 {
		t.Fatal("calibration clicks must not create measurements")
	}
	click(m, 0, 0)
	click(m, 100, 0)
	ms, _ := store.ListFor("a")
	if len(ms) != 1 || ms[0].Value != "5.0 mm" {
		t.Fatalf("measurements = %+v", ms)
	}
}

func TestCalibrationDiscarded(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"zero", "0"},
		{"negative", "-3"},
		{"garbage", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newMachine(t)
			before := m.Calibration()
			m.BeginCalibration()
			click(m, 0, 0)
			click(m, 10, 0)
			for _, r := range tt.input {
				m.TypeRune(r)
			}
			if r := m.Submit(); r != CalibrationDiscarded {
				t.Fatalf("Submit = %v", r)
			}
			if m.Calibration() != before || m.Calibrating() {
				t.Fatalf("calibration = %+v, calibrating %v", m.Calibration(), m.Calibrating())
			}
		})
	}
	t.Run("escape", func(t *testing.T) {
		m, _, _ := newMachine(t)
		m.BeginCalibration()
		click(m, 0, 0)
		if r := m.Cancel(); r != CalibrationDiscarded || m.Calibrating() {
			t.Fatalf("Cancel = %v", r)
		}
	})
}

func TestPanDrag(t *testing.T) {
	m, _, v := newMachine(t)
	m.PointerDown(sp(10, 10))
	m.PointerMove(sp(15, 20))
	m.PointerUp(sp(20, 30))
	if got := v.Pan(); got != (r2.Vec{X: 10, Y: 20}) {
		t.Fatalf("pan = %v", got)
	}
}

func TestPanOverrideKeepsPending(t *testing.T) {
	m, store, v := newMachine(t)
	m.SelectTool(Ruler)
	click(m, 10, 10)
	m.SetPanOverride(true)
	if m.Active() != Pan {
		t.Fatalf("Active = %v", m.Active())
	}
	m.PointerDown(sp(50, 50))
	m.PointerUp(sp(55, 50))
	m.SetPanOverride(false)
	if got := v.Pan(); got != (r2.Vec{X: 5}) {
		t.Fatalf("pan = %v", got)
	}
	if len(m.Pending()) != 1 {
		t.Fatalf("pending = %v", m.Pending())
	}
	m.SetPanOverride(true)
	pv := m.Preview()
	if pv.Tool != Ruler || !pv.Override || pv.Active() != Pan || len(pv.Points) != 1 {
		t.Fatalf("preview during override = %+v", pv)
	}
	m.SetPanOverride(false)
	if pv := m.Preview(); pv.Override || pv.Active() != Ruler {
		t.Fatalf("preview after override = %+v", pv)
	}
	// The pan shifted the image, so screen x 65 is image x 60.
	if r := click(m, 65, 10); r != Committed {
		t.Fatalf("click = %v", r)
	}
	ms, _ := store.ListFor("a")
	if len(ms) != 1 || ms[0].Value != "5.0 mm" {
		t.Fatalf("measurements = %+v", ms)
	}
}

func TestCancelPrecedence(t *testing.T) {
	m, _, _ := newMachine(t)
	if r := m.Cancel(); r != None {
		t.Fatalf("idle Cancel = %v", r)
	}
	m.SelectTool(Angle)
	click(m, 1, 1)
	if r := m.Cancel(); r != Cancelled || len(m.Pending()) != 0 {
		t.Fatalf("Cancel = %v, pending %v", r, m.Pending())
	}
}

func TestPreviewIsACopy(t *testing.T) {
	m, _, _ := newMachine(t)
	m.SelectTool(Ruler)
	click(m, 1, 1)
	p := m.Preview()
	if p.Tool != Ruler || len(p.Points) != 1 || !p.HasPointer {
		t.Fatalf("preview = %+v", p)
	}
	p.Points[0] = geometry.ImagePoint{X: 99}
	if m.Pending()[0] == p.Points[0] {
		t.Fatal("preview aliases pending points")
	}
}

func TestParse(t *testing.T) {
	for _, tt := range All {
		got, err := Parse(" " + tt.String() + " ")
		if err != nil || got != tt {
			t.Errorf("Parse(%q) = %v, %v", tt.String(), got, err)
		}
	}
	if _, err := Parse("laser"); err == nil {
		t.Error("expected error")
	}
}
