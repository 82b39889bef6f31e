// Package filters applies presentational adjustments to the displayed image.
// Filters never change the image used for measurements.
package filters

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Limits of the adjustable parameters.
const (
	MinLevel = -100
	MaxLevel = 100
	MinGamma = 0.2
	MaxGamma = 5.0

	sharpenSigma = 1.0
)

// Filters describes the brightness, contrast, gamma, invert and sharpen
// settings for the active image.
type Filters struct {
	Brightness int
	Contrast   int
	Gamma      float64
	Invert     bool
	Sharpen    bool
}

// Default returns neutral settings.
func Default() Filters { return Filters{Gamma: 1} }

// Clamped returns f with every parameter inside its allowed range.
func (f Filters) Clamped() Filters {
	f.Brightness = clampInt(f.Brightness, MinLevel, MaxLevel)
	f.Contrast = clampInt(f.Contrast, MinLevel, MaxLevel)
	switch {
	case math.IsNaN(f.Gamma):
		f.Gamma = 1
	case f.Gamma < MinGamma:
		f.Gamma = MinGamma
	case f.Gamma > MaxGamma:
		f.Gamma = MaxGamma
	}
	return f
}

// AdjustBrightness adds delta to the brightness, clamped.
func (f *Filters) AdjustBrightness(delta int) { f.Brightness = clampInt(f.Brightness+delta, MinLevel, MaxLevel) }

// AdjustContrast adds delta to the contrast, clamped.
func (f *Filters) AdjustContrast(delta int) { f.Contrast = clampInt(f.Contrast+delta, MinLevel, MaxLevel) }

// AdjustGamma adds delta to gamma, clamped and rounded to one decimal.
func (f *Filters) AdjustGamma(delta float64) {
	f.Gamma = math.Round((f.Gamma+delta)*10) / 10
	*f = f.Clamped()
}

// IsIdentity reports whether applying f would leave the image unchanged.
func (f Filters) IsIdentity() bool {
	f = f.Clamped()
	return f.Brightness == 0 && f.Contrast == 0 && f.Gamma == 1 && !f.Invert && !f.Sharpen
}

// Apply returns a filtered copy of img, or img itself when f is neutral.
func (f Filters) Apply(img image.Image) image.Image {
	if img == nil || f.IsIdentity() {
		return img
	}
	f = f.Clamped()
	var out image.Image = img
	if f.Brightness != 0 {
		out = imaging.AdjustBrightness(out, float64(f.Brightness))
	}
	if f.Contrast != 0 {
		out = imaging.AdjustContrast(out, float64(f.Contrast))
	}
	if f.Gamma != 1 {
		out = imaging.AdjustGamma(out, f.Gamma)
	}
	if f.Invert {
		out = imaging.Invert(out)
	}
	if f.Sharpen {
		out = imaging.Sharpen(out, sharpenSigma)
	}
	return out
}

// String summarises the non-neutral settings, for example "B+10 C-5 γ1.4 inv".
func (f Filters) String() string {
	f = f.Clamped()
	var parts []string
	if f.Brightness != 0 {
		parts = append(parts, fmt.Sprintf("B%+d", f.Brightness))
	}
	if f.Contrast != 0 {
		parts = append(parts, fmt.Sprintf("C%+d", f.Contrast))
	}
	if f.Gamma != 1 {
		parts = append(parts, fmt.Sprintf("γ%.1f", f.Gamma))
	}
	if f.Invert {
		parts = append(parts, "inv")
	}
	if f.Sharpen {
		parts = append(parts, "sharp")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
