// Package notify raises desktop notifications when the viewer exports,
// copies or deletes an image.
package notify

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/example/xrayview/internal/imagesource"
	"github.com/example/xrayview/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	EventExport Event = "export"
	EventCopy   Event = "copy"
	EventDelete Event = "delete"
)

// Events lists every event in a stable order.
var Events = []Event{EventExport, EventCopy, EventDelete}

const (
	envTitle = "XRAYVIEW_NOTIFY_TITLE"
	// previewSize bounds the icon attached to copy notifications.
	previewSize = 256
)

// send delivers a notification; tests replace it.
var send = platform.Notify

// envKey names the variable overriding the body template of e.
func envKey(e Event) string {
	return "XRAYVIEW_NOTIFY_" + strings.ToUpper(string(e)) + "_TEXT"
}

// Preferences holds the notification title and one body template per
// event. A template contains a single %s for the file or value involved.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "X-ray viewer",
		Templates: map[Event]string{
			EventExport: "Exported %s",
			EventCopy:   "Copied %s to clipboard",
			EventDelete: "Removed %s from the session",
		},
	}
}

// LoadPreferences returns the defaults overridden by XRAYVIEW_NOTIFY_*
// variables. A nil getenv reads the process environment.
func LoadPreferences(getenv func(string) string) Preferences {
	if getenv == nil {
		getenv = os.Getenv
	}
	p := DefaultPreferences()
	if v := strings.TrimSpace(getenv(envTitle)); v != "" {
		p.Title = v
	}
	for _, e := range Events {
		if v := strings.TrimSpace(getenv(envKey(e))); v != "" {
			p.Templates[e] = v
		}
	}
	return p
}

// Notifier sends notifications for the events switched on with Enable. The
// zero value and a nil *Notifier send nothing.
type Notifier struct {
	title     string
	templates map[Event]string
	enabled   map[Event]bool
}

// New returns a notifier with every event switched off.
func New(p Preferences) *Notifier {
	n := &Notifier{
		title:     p.Title,
		templates: make(map[Event]string, len(p.Templates)),
		enabled:   make(map[Event]bool),
	}
	for e, t := range p.Templates {
		n.templates[e] = t
	}
	return n
}

// Enable switches notifications for e on or off.
func (n *Notifier) Enable(e Event, on bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[e] = on
}

// Enabled reports whether e raises a notification.
func (n *Notifier) Enabled(e Event) bool {
	return n != nil && n.enabled[e]
}

// Export announces an exported file, using the file itself as the icon.
func (n *Notifier) Export(path string) {
	if !n.Enabled(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	var opts platform.Options
	if abs, err := filepath.Abs(detail); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy announces a clipboard write. When img is non-nil a thumbnail of it
// is attached for the duration of the call.
func (n *Notifier) Copy(detail string, img image.Image) {
	if !n.Enabled(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	var opts platform.Options
	if img != nil {
		path, err := writePreview(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer removePreview(path)
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

// Delete announces that fileName was dropped from the session.
func (n *Notifier) Delete(fileName string) {
	if !n.Enabled(EventDelete) {
		return
	}
	n.dispatch(EventDelete, fileName, platform.Options{})
}

func (n *Notifier) dispatch(e Event, detail string, opts platform.Options) {
	body := n.body(e, detail)
	if body == "" {
		return
	}
	if err := send(n.title, body, opts); err != nil {
		log.Printf("notification %s: %v", e, err)
	}
}

func (n *Notifier) body(e Event, detail string) string {
	tmpl := strings.TrimSpace(n.templates[e])
	if tmpl == "" {
		return ""
	}
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
}

func writePreview(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "xrayview-preview-*.png")
	if err != nil {
		return "", err
	}
	path := f.Name()
	err = imaging.Encode(f, imagesource.Thumbnail(img, previewSize), imaging.PNG)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		removePreview(path)
		return "", err
	}
	return path, nil
}

func removePreview(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove preview: %v", err)
	}
}
