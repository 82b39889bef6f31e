package tool

import (
	"image/color"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/geometry"
)

// minStrokeStep is the screen distance, in pixels, the pointer must travel
// before a freehand stroke records another point.
const minStrokeStep = 0.5

// View is the part of the view controller the machine reads and pans.
type View interface {
	Projection() geometry.Projection
	Pan() r2.Vec
	SetPan(r2.Vec)
}

// TextEntry is an open text capture anchored in image space.
type TextEntry struct {
	At    geometry.ImagePoint
	Value string
}

// Machine is the input state machine of the overlay. It is not safe for
// concurrent use; callers publish Preview snapshots to other goroutines.
type Machine struct {
	store    *annotation.Store
	view     View
	image    annotation.ImageID
	cal      calibration.Data
	selected Tool
	mode     Mode
	override bool
	color    color.RGBA

	pending []geometry.ImagePoint
	held    bool
	gesture Tool

	panning  bool
	dragFrom geometry.ScreenPoint
	dragPan  r2.Vec

	text   *TextEntry
	prompt string

	pointer    geometry.ScreenPoint
	hasPointer bool
}

// New returns a machine editing img with the pan tool selected.
func New(store *annotation.Store, view View, img annotation.ImageID, cal calibration.Data) *Machine {
	return &Machine{
		store:    store,
		view:     view,
		image:    img,
		cal:      cal,
		selected: Pan,
		mode:     Normal{Tool: Pan},
		color:    annotation.DefaultColor(),
	}
}

// Selected returns the tool chosen by the operator.
func (m *Machine) Selected() Tool { return m.selected }

// Active returns the tool that pointer input is dispatched to, taking the
// pan override into account.
func (m *Machine) Active() Tool {
	if m.override {
		return Pan
	}
	return m.selected
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Calibrating reports whether the calibration flow is open.
func (m *Machine) Calibrating() bool {
	_, ok := m.mode.(Calibrating)
	return ok
}

// Image returns the image receiving commits.
func (m *Machine) Image() annotation.ImageID { return m.image }

// Calibration returns the calibration used for ruler labels.
func (m *Machine) Calibration() calibration.Data { return m.cal }

// SetCalibration replaces the calibration used for future ruler labels.
func (m *Machine) SetCalibration(d calibration.Data) { m.cal = d }

// Color returns the colour given to new annotations.
func (m *Machine) Color() color.RGBA { return m.color }

// SetColor changes the colour given to new annotations.
func (m *Machine) SetColor(c color.RGBA) { m.color = c }

// Pending returns a copy of the uncommitted points of the current gesture.
func (m *Machine) Pending() []geometry.ImagePoint {
	return append([]geometry.ImagePoint(nil), m.pending...)
}

// SelectTool switches tools. Any open calibration or partial gesture is
// dropped and an open text entry is confirmed as if it lost focus.
func (m *Machine) SelectTool(t Tool) Result {
	res := m.defocusText()
	m.clearGesture()
	m.selected = t
	m.mode = Normal{Tool: t}
	m.prompt = ""
	return res
}

// SetImage directs future commits to img. Partial gestures, open text and an
// unfinished calibration are discarded.
func (m *Machine) SetImage(img annotation.ImageID) {
	m.text = nil
	m.clearGesture()
	m.mode = Normal{Tool: m.selected}
	m.prompt = ""
	m.image = img
}

// BeginCalibration opens the two-click calibration flow.
func (m *Machine) BeginCalibration() Result {
	res := m.defocusText()
	m.clearGesture()
	m.mode = Calibrating{Capture: &calibration.Capture{}}
	m.prompt = ""
	return res
}

// SetPanOverride forces the pan tool while on is true. Pending points of the
// selected tool are kept for when the override ends.
func (m *Machine) SetPanOverride(on bool) {
	if on == m.override {
		return
	}
	if !on && m.panning {
		m.panning = false
	}
	m.override = on
}

// PanOverride reports whether the pan override is held.
func (m *Machine) PanOverride() bool { return m.override }

// PointerDown handles a primary button press at s.
func (m *Machine) PointerDown(s geometry.ScreenPoint) Result {
	m.track(s)
	if m.override {
		m.startPan(s)
		return None
	}
	if c, ok := m.mode.(Calibrating); ok {
		if c.Capture.AwaitingValue() {
			return m.discardCalibration()
		}
		if c.Capture.Click(m.toImage(s)) {
			m.prompt = ""
			return PromptOpened
		}
		return None
	}
	if m.text != nil {
		return m.defocusText()
	}

	p := m.toImage(s)
	switch m.selected {
	case Pan:
		m.startPan(s)
	case Ruler:
		m.pending = append(m.pending, p)
		if len(m.pending) == 2 {
			m.commitMeasurement(annotation.Ruler, m.cal.Format(geometry.Distance(m.pending[0], m.pending[1])))
			return Committed
		}
	case Angle:
		m.pending = append(m.pending, p)
		if len(m.pending) == 3 {
			deg := geometry.AngleBetween(m.pending[0], m.pending[1], m.pending[2])
			m.commitMeasurement(annotation.Angle, annotation.FormatAngle(deg))
			return Committed
		}
	case Arrow, Freehand:
		m.pending = []geometry.ImagePoint{p}
		m.held = true
		m.gesture = m.selected
	case Text:
		m.text = &TextEntry{At: p}
	}
	return None
}

// PointerMove handles pointer motion to s, with or without a button held.
func (m *Machine) PointerMove(s geometry.ScreenPoint) Result {
	moved := !m.hasPointer || geometry.ScreenDistance(m.pointer, s) >= minStrokeStep
	m.track(s)
	if m.panning {
		m.view.SetPan(r2.Add(m.dragPan, r2.Sub(r2.Vec(s), r2.Vec(m.dragFrom))))
		return None
	}
	if m.held && m.gesture == Freehand && moved {
		m.pending = append(m.pending, m.toImage(s))
	}
	return None
}

// PointerUp handles a primary button release at s. A release without a
// matching press does nothing.
func (m *Machine) PointerUp(s geometry.ScreenPoint) Result {
	m.track(s)
	if m.panning {
		m.view.SetPan(r2.Add(m.dragPan, r2.Sub(r2.Vec(s), r2.Vec(m.dragFrom))))
		m.panning = false
		return None
	}
	if !m.held || len(m.pending) == 0 {
		return None
	}
	m.held = false
	p := m.toImage(s)
	switch m.gesture {
	case Arrow:
		m.pending = []geometry.ImagePoint{m.pending[0], p}
		m.commitAnnotation(annotation.Arrow, "")
		return Committed
	case Freehand:
		m.pending = append(m.pending, p)
		m.commitAnnotation(annotation.Freehand, "")
		return Committed
	}
	m.pending = nil
	return None
}

// TextActive reports whether keyboard input is captured by a text entry or
// the calibration prompt.
func (m *Machine) TextActive() bool { return m.text != nil || m.promptOpen() }

// TypeRune appends r to the open text entry or calibration prompt.
func (m *Machine) TypeRune(r rune) {
	if r < ' ' {
		return
	}
	switch {
	case m.promptOpen():
		m.prompt += string(r)
	case m.text != nil:
		m.text.Value += string(r)
	}
}

// Backspace removes the last rune of the open text entry or prompt.
func (m *Machine) Backspace() {
	switch {
	case m.promptOpen():
		m.prompt = dropLastRune(m.prompt)
	case m.text != nil:
		m.text.Value = dropLastRune(m.text.Value)
	}
}

// Submit confirms the open text entry or calibration prompt.
func (m *Machine) Submit() Result {
	if m.promptOpen() {
		c := m.mode.(Calibrating)
		d, err := c.Capture.Confirm(m.prompt)
		if err != nil {
			return m.discardCalibration()
		}
		m.cal = d
		m.mode = Normal{Tool: m.selected}
		m.prompt = ""
		return Calibrated
	}
	return m.defocusText()
}

// Cancel abandons, in order of precedence, the calibration flow, an open
// text entry or a partial gesture. It returns None when nothing was open.
func (m *Machine) Cancel() Result {
	if m.Calibrating() {
		return m.discardCalibration()
	}
	if m.text != nil {
		m.text = nil
		return Cancelled
	}
	if len(m.pending) > 0 || m.held || m.panning {
		m.clearGesture()
		return Cancelled
	}
	return None
}

// DropPending abandons a partial gesture but leaves text entry and
// calibration alone.
func (m *Machine) DropPending() { m.clearGesture() }

func (m *Machine) promptOpen() bool {
	c, ok := m.mode.(Calibrating)
	return ok && c.Capture.AwaitingValue()
}

func (m *Machine) discardCalibration() Result {
	m.mode = Normal{Tool: m.selected}
	m.prompt = ""
	return CalibrationDiscarded
}

// defocusText commits non-blank text and drops the entry otherwise.
func (m *Machine) defocusText() Result {
	if m.text == nil {
		return None
	}
	t := m.text
	m.text = nil
	value := strings.TrimSpace(t.Value)
	if value == "" {
		return Cancelled
	}
	m.store.AddAnnotation(m.image, annotation.Annotation{
		Kind:   annotation.Text,
		Points: []geometry.ImagePoint{t.At},
		Text:   value,
		Color:  m.color,
	})
	return Committed
}

func (m *Machine) commitMeasurement(kind annotation.MeasurementKind, value string) {
	m.store.AddMeasurement(m.image, annotation.Measurement{Kind: kind, Points: m.pending, Value: value})
	m.pending = nil
}

func (m *Machine) commitAnnotation(kind annotation.Kind, text string) {
	m.store.AddAnnotation(m.image, annotation.Annotation{Kind: kind, Points: m.pending, Text: text, Color: m.color})
	m.pending = nil
}

func (m *Machine) startPan(s geometry.ScreenPoint) {
	m.panning = true
	m.dragFrom = s
	m.dragPan = m.view.Pan()
}

func (m *Machine) clearGesture() {
	m.pending = nil
	m.held = false
	m.panning = false
}

func (m *Machine) track(s geometry.ScreenPoint) {
	m.pointer = s
	m.hasPointer = true
}

func (m *Machine) toImage(s geometry.ScreenPoint) geometry.ImagePoint {
	return m.view.Projection().ToImage(s)
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// Preview is a copy of the in-progress state that a renderer needs to draw
// rubber-band shapes, the text caret and the calibration prompt.
type Preview struct {
	// Tool owns Points. It stays the selected tool while the pan override
	// is held so buffered points keep being drawn.
	Tool Tool
	// Override is set while the pan override takes pointer input.
	Override   bool
	Points     []geometry.ImagePoint
	Dragging   bool
	Pointer    geometry.ScreenPoint
	HasPointer bool
	Color      color.RGBA

	Text *TextEntry

	Calibrating       bool
	CalibrationPoints []geometry.ImagePoint
	PromptOpen        bool
	Prompt            string
	Calibration       calibration.Data
}

// Active returns the tool pointer input goes to when p was taken.
func (p Preview) Active() Tool {
	if p.Override {
		return Pan
	}
	return p.Tool
}

// Preview snapshots the machine. The result shares no memory with it.
func (m *Machine) Preview() Preview {
	p := Preview{
		Tool:        m.selected,
		Override:    m.override,
		Points:      m.Pending(),
		Dragging:    m.held || m.panning,
		Pointer:     m.pointer,
		HasPointer:  m.hasPointer,
		Color:       m.color,
		Calibration: m.cal,
	}
	if m.held {
		p.Tool = m.gesture
	}
	if m.text != nil {
		t := *m.text
		p.Text = &t
	}
	if c, ok := m.mode.(Calibrating); ok {
		p.Calibrating = true
		p.CalibrationPoints = c.Capture.Points()
		p.PromptOpen = c.Capture.AwaitingValue()
		p.Prompt = m.prompt
	}
	return p
}
