package imagesource

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/session"
)

// Manifest is the JSON document a host passes to the viewer.
//
//	{"start": 1, "images": [{"id": "7", "displayUrl": "a.png", "fileName": "a.png"}]}
type Manifest struct {
	Start  int     `json:"start"`
	Images []Entry `json:"images"`
}

// Entry is one image of a manifest.
type Entry struct {
	ID            string `json:"id"`
	DisplayURL    string `json:"displayUrl"`
	FileName      string `json:"fileName"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	MimeType      string `json:"mimeType"`
	Category      string `json:"category"`
	Notes         string `json:"notes"`
}

// ReadManifest decodes a manifest and fills in missing IDs and file names.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	for i := range m.Images {
		e := &m.Images[i]
		if strings.TrimSpace(e.DisplayURL) == "" {
			return nil, fmt.Errorf("read manifest: image %d has no displayUrl", i)
		}
		if e.ID == "" {
			e.ID = e.DisplayURL
		}
		if e.FileName == "" {
			e.FileName = baseName(e.DisplayURL)
		}
	}
	return &m, nil
}

// LoadManifest reads the manifest file at path. Relative display URLs are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadManifest(f)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range m.Images {
		u := m.Images[i].DisplayURL
		if !strings.Contains(u, "://") && !filepath.IsAbs(u) {
			m.Images[i].DisplayURL = filepath.Join(dir, u)
		}
	}
	return m, nil
}

// Records converts the manifest into session records.
func (m *Manifest) Records() []session.Record {
	out := make([]session.Record, 0, len(m.Images))
	for _, e := range m.Images {
		out = append(out, session.Record{
			ID:            annotation.ImageID(e.ID),
			DisplayURL:    e.DisplayURL,
			FileName:      e.FileName,
			FileSizeBytes: e.FileSizeBytes,
			MimeType:      e.MimeType,
			Category:      e.Category,
			Notes:         e.Notes,
		})
	}
	return out
}

// FromPaths builds records for local files given on the command line.
func FromPaths(paths []string) ([]session.Record, error) {
	out := make([]session.Record, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		out = append(out, session.Record{
			ID:            annotation.ImageID(abs),
			DisplayURL:    abs,
			FileName:      filepath.Base(abs),
			FileSizeBytes: fi.Size(),
			MimeType:      mime.TypeByExtension(strings.ToLower(filepath.Ext(abs))),
		})
	}
	return out, nil
}

func baseName(displayURL string) string {
	if p, err := ResolvePath(displayURL); err == nil {
		return filepath.Base(p)
	}
	return displayURL
}
