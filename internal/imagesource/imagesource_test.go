package imagesource

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "/tmp/a.png", want: "/tmp/a.png"},
		{in: "file:///tmp/b%20c.png", want: "/tmp/b c.png"},
		{in: "file://localhost/tmp/d.png", want: "/tmp/d.png"},
		{in: "https://example.com/x.png", wantErr: true},
		{in: "file://server/x.png", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedURL) {
					t.Fatalf("err = %v, want ErrUnsupportedURL", err)
				}
				return
			}
			if err != nil || got != filepath.FromSlash(tt.want) {
				t.Fatalf("ResolvePath(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 8, 4)
	c := NewCache()
	decodes := 0
	c.decode = func(p string) (image.Image, error) {
		decodes++
		return Decode(p)
	}
	a, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.Bounds().Dx() != 8 || a.Bounds().Dy() != 4 {
		t.Fatalf("bounds = %v", a.Bounds())
	}
	b, err := c.Load("file://" + filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Load via file url: %v", err)
	}
	if a != b || decodes != 1 || c.Len() != 1 {
		t.Fatalf("decodes = %d, len = %d, same = %v", decodes, c.Len(), a == b)
	}
	c.Forget(path)
	if c.Len() != 0 {
		t.Fatal("Forget kept the bitmap")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewCache()
	if _, err := c.Load(bad); err == nil || !strings.Contains(err.Error(), "failed to open image") {
		t.Fatalf("err = %v", err)
	}
	if _, err := c.Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := c.Load("ftp://x/y.png"); !errors.Is(err, ErrUnsupportedURL) {
		t.Fatalf("err = %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 400, 200))
	th := Thumbnail(big, 100)
	if b := th.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("thumbnail bounds = %v", b)
	}
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if Thumbnail(small, 100) != image.Image(small) {
		t.Fatal("small images should be returned unchanged")
	}
}

func TestReadManifest(t *testing.T) {
	const doc = `{"start": 1, "images": [
		{"id": "7", "displayUrl": "file:///x/a.png", "category": "bitewing"},
		{"displayUrl": "/x/b.jpg", "fileSizeBytes": 2048}
	]}`
	m, err := ReadManifest(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Start != 1 || len(m.Images) != 2 {
		t.Fatalf("manifest = %+v", m)
	}
	recs := m.Records()
	if recs[0].ID != "7" || recs[0].FileName != "a.png" || recs[0].Category != "bitewing" {
		t.Fatalf("first record = %+v", recs[0])
	}
	if recs[1].ID != "/x/b.jpg" || recs[1].FileName != "b.jpg" || recs[1].FileSizeBytes != 2048 {
		t.Fatalf("second record = %+v", recs[1])
	}

	for _, bad := range []string{`{"images": [{"id": "1"}]}`, `{"imgs": []}`, `nope`} {
		if _, err := ReadManifest(strings.NewReader(bad)); err == nil {
			t.Errorf("ReadManifest(%q) succeeded", bad)
		}
	}
}

func TestLoadManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.json")
	if err := os.WriteFile(path, []byte(`{"images": [{"displayUrl": "pa.png"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Images[0].DisplayURL; got != filepath.Join(dir, "pa.png") {
		t.Fatalf("DisplayURL = %q", got)
	}
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "pano.png", 4, 4)
	recs, err := FromPaths([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].FileName != "pano.png" || recs[0].MimeType != "image/png" || recs[0].FileSizeBytes == 0 {
		t.Fatalf("records = %+v", recs)
	}
	if _, err := FromPaths([]string{dir}); err == nil {
		t.Fatal("directories must be rejected")
	}
}
