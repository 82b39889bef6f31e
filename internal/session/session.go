// Package session is the viewing session around the measurement overlay:
// the list of image records, navigation, keyboard and pointer dispatch, and
// publication of immutable render frames.
package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync/atomic"
	"time"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/filters"
	"github.com/example/xrayview/internal/geometry"
	"github.com/example/xrayview/internal/render"
	"github.com/example/xrayview/internal/theme"
	"github.com/example/xrayview/internal/tool"
	"github.com/example/xrayview/internal/view"
)

var (
	// ErrNoImages is returned when a session is opened without records.
	ErrNoImages = errors.New("session: no images")
	// ErrIndexOutOfRange reports an image index outside the record list.
	ErrIndexOutOfRange = errors.New("session: image index out of range")
)

// messageDuration is how long a flashed message stays on screen.
const messageDuration = 2 * time.Second

// Record is an image supplied by the host.
type Record struct {
	ID            annotation.ImageID
	DisplayURL    string
	FileName      string
	FileSizeBytes int64
	MimeType      string
	Category      string
	Notes         string
}

// ImageLoader decodes the bitmap behind a display URL.
type ImageLoader interface {
	Load(url string) (image.Image, error)
}

// Session owns all mutable overlay state. Its methods must be called from a
// single goroutine; Frame may be called from any goroutine.
type Session struct {
	records []Record
	index   int
	loader  ImageLoader
	img     image.Image
	loadErr error

	store   *annotation.Store
	view    *view.Controller
	machine *tool.Machine

	filters    filters.Filters
	basePreset int
	preset     int

	window     image.Point
	fullscreen bool
	needFit    bool
	showHelp   bool

	spaceHeld, altHeld, middleHeld bool

	confirmDelete bool
	deleteHeld    bool
	closed        bool
	message       string
	messageUntil  time.Time
	now           func() time.Time

	theme     *theme.Theme
	startCal  calibration.Data
	zoomStep  float64
	start     int
	onClose   func()
	onDelete  func(Record)
	onExport  func(Record, *render.Frame)
	onCopy    func(Record, *render.Frame)
	keys      *keymap
	published atomic.Pointer[published]
}

type published struct {
	frame *render.Frame
	until time.Time
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithStartIndex selects the first image shown. Out of range values are clamped.
func WithStartIndex(i int) Option { return func(s *Session) { s.start = i } }

// WithOnClose sets the callback invoked once when the session closes.
func WithOnClose(fn func()) Option { return func(s *Session) { s.onClose = fn } }

// WithOnDelete sets the callback invoked after the operator confirms deletion.
// The session does not drop the record itself; the host calls SetImages.
func WithOnDelete(fn func(Record)) Option { return func(s *Session) { s.onDelete = fn } }

// WithOnExport sets the handler for the export shortcut. It receives a
// chrome-less frame of the current image with its overlay.
func WithOnExport(fn func(Record, *render.Frame)) Option {
	return func(s *Session) { s.onExport = fn }
}

// WithOnCopy sets the handler for the copy shortcut.
func WithOnCopy(fn func(Record, *render.Frame)) Option { return func(s *Session) { s.onCopy = fn } }

// WithCalibration sets the calibration used until the operator calibrates.
func WithCalibration(d calibration.Data) Option { return func(s *Session) { s.startCal = d } }

// WithZoomStep sets the factor of one zoom step.
func WithZoomStep(step float64) Option { return func(s *Session) { s.zoomStep = step } }

// WithPreset selects the filter preset applied to every newly shown image.
func WithPreset(name string) Option {
	return func(s *Session) {
		if i, ok := filters.PresetIndex(name); ok {
			s.basePreset = i
		}
	}
}

// WithLoader sets how display URLs are turned into bitmaps.
func WithLoader(l ImageLoader) Option { return func(s *Session) { s.loader = l } }

// WithTheme sets the colours of frames.
func WithTheme(t *theme.Theme) Option { return func(s *Session) { s.theme = t } }

// WithFullscreen starts without chrome bars.
func WithFullscreen(on bool) Option { return func(s *Session) { s.fullscreen = on } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New opens a session over records.
func New(records []Record, opts ...Option) (*Session, error) {
	if len(records) == 0 {
		return nil, ErrNoImages
	}
	s := &Session{
		records:  append([]Record(nil), records...),
		startCal: calibration.Default(),
		zoomStep: view.DefaultZoomStep,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.theme == nil {
		s.theme = theme.Default()
	}
	if s.start < 0 || s.start >= len(s.records) {
		log.Printf("%v: %d of %d, showing the nearest image", ErrIndexOutOfRange, s.start, len(s.records))
		s.start = max(0, min(s.start, len(s.records)-1))
	}

	s.store = annotation.NewStore()
	s.view = view.New(geometry.Size{}, geometry.Size{})
	s.view.SetZoomStep(s.zoomStep)
	s.machine = tool.New(s.store, s.view, s.records[s.start].ID, s.startCal)
	s.machine.SetColor(s.theme.Annotation)
	s.keys = newKeymap()
	s.registerShortcuts()
	s.activate(s.start)
	s.publish()
	return s, nil
}

// Store exposes the annotation store, mainly for hosts that summarise a session.
func (s *Session) Store() *annotation.Store { return s.store }

// Machine exposes the tool state machine.
func (s *Session) Machine() *tool.Machine { return s.machine }

// View exposes the view controller.
func (s *Session) View() *view.Controller { return s.view }

// Current returns the record being shown.
func (s *Session) Current() Record { return s.records[s.index] }

// Index returns the position of the current record.
func (s *Session) Index() int { return s.index }

// Len returns the number of records.
func (s *Session) Len() int { return len(s.records) }

// Filters returns the filters applied to the current image.
func (s *Session) Filters() filters.Filters { return s.filters }

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool { return s.closed }

// Fullscreen reports whether chrome bars are hidden.
func (s *Session) Fullscreen() bool { return s.fullscreen }

// HelpVisible reports whether the help overlay is shown.
func (s *Session) HelpVisible() bool { return s.showHelp }

// Close ends the session and calls the close callback once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.onClose != nil {
		s.onClose()
	}
}

// Flash shows msg for a short time and logs it.
func (s *Session) Flash(msg string) {
	s.message = msg
	s.messageUntil = s.now().Add(messageDuration)
	log.Print(msg)
	s.publish()
}

// Resize records a new window size in pixels.
func (s *Session) Resize(window image.Point) {
	s.window = window
	s.layout()
	s.publish()
}

func (s *Session) layout() {
	c := render.CanvasRect(s.window, !s.fullscreen)
	s.view.SetViewport(geometry.Size{W: float64(c.Dx()), H: float64(c.Dy())})
	if s.needFit && !s.view.Viewport().Empty() {
		s.view.FitToWindow()
		s.needFit = false
	}
}

// Canvas returns the window rectangle the image is shown in.
func (s *Session) Canvas() image.Rectangle { return render.CanvasRect(s.window, !s.fullscreen) }

// activate shows record i with a fresh view and neutral filters.
func (s *Session) activate(i int) {
	s.index = i
	rec := s.records[i]
	s.img, s.loadErr = nil, nil
	if s.loader == nil {
		s.loadErr = errors.New("no image loader")
	} else {
		s.img, s.loadErr = s.loader.Load(rec.DisplayURL)
	}
	var natural geometry.Size
	if s.loadErr != nil {
		log.Printf("load %s: %v", rec.FileName, s.loadErr)
	} else {
		b := s.img.Bounds()
		natural = geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}
	s.view.Reset(natural)
	s.needFit = true
	s.layout()
	s.preset = s.basePreset
	s.filters = filters.Presets[s.preset].Filters
	s.machine.SetImage(rec.ID)
	s.confirmDelete = false
}

// Goto shows record i.
func (s *Session) Goto(i int) error {
	if i < 0 || i >= len(s.records) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.records))
	}
	if i != s.index {
		s.activate(i)
	}
	s.publish()
	return nil
}

// Next shows the following record, staying on the last one.
func (s *Session) Next() { _ = s.Goto(min(s.index+1, len(s.records)-1)) }

// Prev shows the preceding record, staying on the first one.
func (s *Session) Prev() { _ = s.Goto(max(s.index-1, 0)) }

// SetImages replaces the record list, as a host does after deleting an
// image. The current record stays selected when it is still present. An
// empty list closes the session.
func (s *Session) SetImages(records []Record) {
	if len(records) == 0 {
		s.Close()
		return
	}
	cur := s.records[s.index].ID
	s.records = append([]Record(nil), records...)
	for i, r := range s.records {
		if r.ID == cur {
			s.index = i
			s.publish()
			return
		}
	}
	s.activate(min(s.index, len(s.records)-1))
	s.publish()
}

// SetFilters replaces the filters of the current image, clamping them.
func (s *Session) SetFilters(f filters.Filters) {
	s.filters = f.Clamped()
	s.publish()
}

func (s *Session) setFullscreen(on bool) {
	s.fullscreen = on
	s.needFit = true
	s.layout()
}

func (s *Session) report(res tool.Result) {
	switch res {
	case tool.Calibrated:
		s.Flash("calibrated: " + s.machine.Calibration().String())
	case tool.CalibrationDiscarded:
		s.Flash("calibration cancelled")
	}
}

func (s *Session) updateOverride() {
	s.machine.SetPanOverride(s.spaceHeld || s.altHeld || s.middleHeld)
}
