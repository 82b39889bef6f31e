package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// writePNG encodes img to path, creating the directory if needed. A partial
// file is removed on failure.
func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
