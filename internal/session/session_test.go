package session

import (
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/render"
	"github.com/example/xrayview/internal/tool"
)

type fakeLoader map[string]image.Image

func (f fakeLoader) Load(url string) (image.Image, error) {
	if img, ok := f[url]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

func records(ids ...string) []Record {
	var out []Record
	for _, id := range ids {
		out = append(out, Record{ID: annotation.ImageID(id), DisplayURL: id, FileName: id + ".png"})
	}
	return out
}

// newSession opens a session over three 100x100 images in a window whose
// canvas is exactly 100x100 and shows the image at scale 1.
func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	l := fakeLoader{}
	for _, id := range []string{"a", "b", "c"} {
		l[id] = image.NewRGBA(image.Rect(0, 0, 100, 100))
	}
	s, err := New(records("a", "b", "c"), append([]Option{WithLoader(l)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Resize(image.Pt(100, 100+render.TopBarHeight+render.BottomBarHeight))
	s.View().ZoomTo(1)
	return s
}

func press(s *Session, r rune) {
	s.HandleKey(key.Event{Rune: r, Direction: key.DirPress})
}

func pressCode(s *Session, c key.Code, mods key.Modifiers) {
	s.HandleKey(key.Event{Rune: -1, Code: c, Modifiers: mods, Direction: key.DirPress})
	s.HandleKey(key.Event{Rune: -1, Code: c, Modifiers: mods, Direction: key.DirRelease})
}

// click presses and releases the left button at canvas coordinates x, y.
func click(s *Session, x, y float32) {
	y += render.TopBarHeight
	s.HandleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	s.HandleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

func TestNewRequiresImages(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoImages) {
		t.Fatalf("err = %v, want ErrNoImages", err)
	}
}

func TestStartIndexIsClamped(t *testing.T) {
	tests := []struct {
		name  string
		start int
		want  int
	}{
		{"in range", 1, 1},
		{"negative", -4, 0},
		{"past end", 9, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, WithStartIndex(tt.start))
			if s.Index() != tt.want {
				t.Fatalf("Index = %d, want %d", s.Index(), tt.want)
			}
		})
	}
}

func TestRulerThroughInput(t *testing.T) {
	s := newSession(t)
	press(s, '2')
	if s.Machine().Selected() != tool.Ruler {
		t.Fatalf("Selected = %v", s.Machine().Selected())
	}
	click(s, 10, 10)
	click(s, 40, 50)
	f := s.Frame()
	if len(f.Measurements) != 1 || f.Measurements[0].Value != "5.0 mm" {
		t.Fatalf("measurements = %+v", f.Measurements)
	}
	if f.ImageKey != "a" || f.Status.Count != 3 {
		t.Fatalf("frame = %q %+v", f.ImageKey, f.Status)
	}
}

func TestClicksOutsideCanvasAreIgnored(t *testing.T) {
	s := newSession(t)
	press(s, '2')
	s.HandleMouse(mouse.Event{X: 10, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if len(s.Machine().Pending()) != 0 {
		t.Fatal("click on the top bar reached the tool")
	}
}

func TestNavigation(t *testing.T) {
	s := newSession(t)
	s.Prev()
	if s.Index() != 0 {
		t.Fatalf("Prev at start moved to %d", s.Index())
	}
	pressCode(s, key.CodeRightArrow, 0)
	pressCode(s, key.CodePageDown, 0)
	pressCode(s, key.CodeRightArrow, 0)
	if s.Index() != 2 {
		t.Fatalf("Index = %d, want 2", s.Index())
	}
	if err := s.Goto(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Goto(3) = %v", err)
	}
	if err := s.Goto(0); err != nil || s.Current().ID != "a" {
		t.Fatalf("Goto(0) = %v, current %v", err, s.Current().ID)
	}
}

func TestImageChangeResetsFiltersAndPending(t *testing.T) {
	s := newSession(t)
	press(s, 'i')
	press(s, ']')
	if !s.Filters().Invert || s.Filters().Brightness != levelStep {
		t.Fatalf("filters = %+v", s.Filters())
	}
	press(s, '3')
	click(s, 5, 5)
	s.Next()
	if s.Filters().Invert || s.Filters().Brightness != 0 {
		t.Fatalf("filters after navigation = %+v", s.Filters())
	}
	if len(s.Machine().Pending()) != 0 {
		t.Fatal("pending points survived navigation")
	}
	if s.Machine().Image() != "b" {
		t.Fatalf("machine image = %v", s.Machine().Image())
	}
}

func TestBasePresetAppliesToEveryImage(t *testing.T) {
	s := newSession(t, WithPreset("inverted"))
	if !s.Filters().Invert {
		t.Fatalf("filters = %+v", s.Filters())
	}
	press(s, 'i')
	s.Next()
	if !s.Filters().Invert {
		t.Fatal("base preset not restored on navigation")
	}
	if p := s.Frame().Status.Preset; p != "Inverted" {
		t.Fatalf("preset = %q", p)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	var deleted []Record
	s := newSession(t, WithOnDelete(func(r Record) { deleted = append(deleted, r) }))
	pressCode(s, key.CodeDeleteForward, 0)
	if len(deleted) != 0 {
		t.Fatal("deleted on first press")
	}
	press(s, 'r')
	pressCode(s, key.CodeDeleteForward, 0)
	if len(deleted) != 0 {
		t.Fatal("another key must reset the confirmation")
	}
	pressCode(s, key.CodeDeleteForward, 0)
	if len(deleted) != 1 || deleted[0].ID != "a" {
		t.Fatalf("deleted = %+v", deleted)
	}
	s.SetImages(records("b", "c"))
	if s.Current().ID != "b" || s.Len() != 2 {
		t.Fatalf("after SetImages current = %v, len %d", s.Current().ID, s.Len())
	}
}

func TestDeleteIgnoresAutoRepeat(t *testing.T) {
	var deleted []Record
	s := newSession(t, WithOnDelete(func(r Record) { deleted = append(deleted, r) }))
	down := key.Event{Rune: -1, Code: key.CodeDeleteForward, Direction: key.DirPress}
	for i := 0; i < 5; i++ {
		s.HandleKey(down)
	}
	s.HandleKey(key.Event{Rune: -1, Code: key.CodeDeleteForward, Direction: key.DirNone})
	if len(deleted) != 0 {
		t.Fatalf("held Delete removed %+v", deleted)
	}
	s.HandleKey(key.Event{Rune: -1, Code: key.CodeDeleteForward, Direction: key.DirRelease})
	s.HandleKey(down)
	if len(deleted) != 1 {
		t.Fatalf("deleted = %+v after release and second press", deleted)
	}
}

func TestDeleteWarnsAboutMeasurements(t *testing.T) {
	s := newSession(t, WithOnDelete(func(Record) {}))
	pressCode(s, key.CodeDeleteForward, 0)
	if msg := s.Frame().Message; strings.Contains(msg, "measurements") {
		t.Fatalf("message = %q for an image without edits", msg)
	}
	press(s, '2')
	click(s, 10, 10)
	click(s, 40, 50)
	pressCode(s, key.CodeDeleteForward, 0)
	if msg := s.Frame().Message; !strings.HasSuffix(msg, "and its measurements") {
		t.Fatalf("message = %q", msg)
	}
}

func TestEscapePrecedence(t *testing.T) {
	closed := 0
	s := newSession(t, WithOnClose(func() { closed++ }))
	press(s, '2')
	click(s, 10, 10)
	pressCode(s, key.CodeEscape, 0)
	if closed != 0 || len(s.Machine().Pending()) != 0 {
		t.Fatalf("first Esc: closed %d, pending %v", closed, s.Machine().Pending())
	}
	press(s, '?')
	pressCode(s, key.CodeEscape, 0)
	if closed != 0 || s.HelpVisible() {
		t.Fatalf("second Esc: closed %d, help %v", closed, s.HelpVisible())
	}
	pressCode(s, key.CodeEscape, 0)
	s.Close()
	if closed != 1 || !s.Closed() {
		t.Fatalf("closed = %d", closed)
	}
}

func TestTextEntryCapturesShortcuts(t *testing.T) {
	s := newSession(t)
	press(s, '5')
	click(s, 20, 20)
	for _, r := range "q1 " {
		press(s, r)
	}
	if s.Closed() || s.Machine().Selected() != tool.Text {
		t.Fatal("shortcut fired during text entry")
	}
	pressCode(s, key.CodeReturnEnter, 0)
	_, as := s.Store().ListFor("a")
	if len(as) != 1 || as[0].Text != "q1" {
		t.Fatalf("annotations = %+v", as)
	}
}

func TestUndo(t *testing.T) {
	s := newSession(t)
	press(s, '2')
	click(s, 0, 0)
	click(s, 10, 0)
	press(s, '4')
	s.HandleMouse(mouse.Event{X: 5, Y: 30, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	s.HandleMouse(mouse.Event{X: 50, Y: 30, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	pressCode(s, key.CodeZ, key.ModControl)
	ms, as := s.Store().ListFor("a")
	if len(ms) != 1 || len(as) != 0 {
		t.Fatalf("after one undo: %d measurements, %d annotations", len(ms), len(as))
	}
	if got := s.Frame().Message; got != "undid annotation" {
		t.Fatalf("message = %q", got)
	}
}

func TestPanOverrideWithSpace(t *testing.T) {
	s := newSession(t)
	press(s, '2')
	s.HandleKey(key.Event{Rune: ' ', Code: key.CodeSpacebar, Direction: key.DirPress})
	if s.Machine().Active() != tool.Pan {
		t.Fatalf("Active = %v", s.Machine().Active())
	}
	s.HandleKey(key.Event{Rune: ' ', Code: key.CodeSpacebar, Direction: key.DirRelease})
	if s.Machine().Active() != tool.Ruler {
		t.Fatalf("Active after release = %v", s.Machine().Active())
	}
}

func TestWheel(t *testing.T) {
	s := newSession(t)
	before := s.View().Transform().Scale
	s.HandleMouse(mouse.Event{X: 50, Y: 74, Button: mouse.ButtonWheelUp, Direction: mouse.DirStep})
	if s.View().Transform().Scale <= before {
		t.Fatal("wheel up did not zoom in")
	}
	s.HandleMouse(mouse.Event{X: 50, Y: 74, Button: mouse.ButtonWheelUp, Modifiers: key.ModControl, Direction: mouse.DirStep})
	if s.Filters().Brightness != levelStep {
		t.Fatalf("Ctrl+wheel brightness = %d", s.Filters().Brightness)
	}
}

func TestMessageExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newSession(t, WithClock(func() time.Time { return now }))
	s.Flash("hello")
	if got := s.Frame().Message; got != "hello" {
		t.Fatalf("message = %q", got)
	}
	now = now.Add(3 * time.Second)
	if got := s.Frame().Message; got != "" {
		t.Fatalf("expired message = %q", got)
	}
}

func TestExportFrame(t *testing.T) {
	var got *render.Frame
	s := newSession(t, WithOnExport(func(_ Record, f *render.Frame) { got = f }))
	press(s, '2')
	click(s, 10, 10)
	press(s, '?')
	pressCode(s, key.CodeS, key.ModControl)
	if got == nil {
		t.Fatal("export handler not called")
	}
	if got.Chrome || got.ShowHelp || got.Message != "" || got.Window != image.Pt(100, 100) {
		t.Fatalf("export frame = %+v", got)
	}
	if len(got.Preview.Points) != 0 {
		t.Fatal("export frame includes the rubber band")
	}
}

func TestExportUnavailable(t *testing.T) {
	s := newSession(t)
	pressCode(s, key.CodeC, key.ModControl)
	if got := s.Frame().Message; !strings.Contains(got, "not available") {
		t.Fatalf("message = %q", got)
	}
}

func TestFullscreenDropsChrome(t *testing.T) {
	s := newSession(t)
	pressCode(s, key.CodeF11, 0)
	f := s.Frame()
	if f.Chrome || !s.Fullscreen() {
		t.Fatal("F11 did not hide chrome")
	}
	if s.Canvas() != image.Rect(0, 0, 100, 148) {
		t.Fatalf("canvas = %v", s.Canvas())
	}
}

func TestHelpListsShortcuts(t *testing.T) {
	s := newSession(t)
	var keys []string
	for _, l := range s.Help() {
		keys = append(keys, l.Keys)
	}
	joined := strings.Join(keys, "|")
	for _, want := range []string{"Ctrl+Z", "Esc", "Left, PgUp", "h, ?"} {
		if !strings.Contains(joined, want) {
			t.Errorf("help missing %q in %s", want, joined)
		}
	}
}

func TestLoadFailureIsReported(t *testing.T) {
	s, err := New(records("missing"), WithLoader(fakeLoader{}))
	if err != nil {
		t.Fatal(err)
	}
	if f := s.Frame(); f.Image != nil || f.Status.LoadError == "" {
		t.Fatalf("frame = %+v", f.Status)
	}
}

func TestExpiredFrameIsStable(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newSession(t, WithClock(func() time.Time { return now }))
	s.Flash("saved")
	now = now.Add(time.Minute)
	a, b := s.Frame(), s.Frame()
	if a != b || a.Message != "" {
		t.Fatalf("frames differ after expiry: %p %p %q", a, b, a.Message)
	}
}
