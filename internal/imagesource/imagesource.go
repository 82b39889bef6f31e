// Package imagesource turns the display URLs of image records into decoded
// bitmaps and reads the manifests a host hands to the viewer.
package imagesource

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedURL is returned for display URLs that are neither local
// paths nor file:// URLs.
var ErrUnsupportedURL = errors.New("imagesource: unsupported display url")

// ResolvePath returns the local file behind a display URL.
func ResolvePath(displayURL string) (string, error) {
	s := strings.TrimSpace(displayURL)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedURL)
	}
	if !strings.Contains(s, "://") {
		return filepath.Clean(s), nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "file" || (u.Host != "" && u.Host != "localhost") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, s)
	}
	return filepath.FromSlash(u.Path), nil
}

// Decode opens and decodes the image at path. EXIF orientation of JPEG
// files is honoured.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Cache loads images once and hands out the same bitmap afterwards. It is
// safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	decode func(string) (image.Image, error)
}

// NewCache returns an empty cache reading from the local filesystem.
func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image), decode: Decode}
}

// Load returns the bitmap behind displayURL.
func (c *Cache) Load(displayURL string) (image.Image, error) {
	path, err := ResolvePath(displayURL)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	img, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err = c.decode(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.images[path]; ok {
		return cached, nil
	}
	c.images[path] = img
	return img, nil
}

// Forget drops a cached bitmap, for example after the file was deleted.
func (c *Cache) Forget(displayURL string) {
	path, err := ResolvePath(displayURL)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many bitmaps are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Thumbnail scales img to fit within a size x size box.
func Thumbnail(img image.Image, size int) image.Image {
	if img == nil || size <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	return imaging.Fit(img, size, size, imaging.Lanczos)
}
