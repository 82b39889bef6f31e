package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/render"
	"github.com/example/xrayview/internal/theme"
	"github.com/example/xrayview/internal/view"
)

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
	Delete bool
}

// View holds viewing defaults.
type View struct {
	ZoomStep     float64
	FrameRate    int
	FilterPreset string
}

// Config holds the application configuration.
type Config struct {
	Theme       string
	ExportDir   string
	PixelsPerMm float64
	View        View
	Notify      Notify
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:       "", // Default to empty to allow fallback to Env/Default
		PixelsPerMm: calibration.Default().PixelsPerMm,
		View: View{
			ZoomStep:  view.DefaultZoomStep,
			FrameRate: render.DefaultFrameRate,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Calibration returns the configured default calibration.
func (c *Config) Calibration() calibration.Data {
	d, err := calibration.FromPixelsPerMm(c.PixelsPerMm)
	if err != nil {
		return calibration.Default()
	}
	return d
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.ExportDir != "" {
		fmt.Fprintf(&sb, "export_dir = %s\n", c.ExportDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[calibration]\n")
	fmt.Fprintf(&sb, "pixels_per_mm = %s\n", formatFloat(c.PixelsPerMm))
	sb.WriteString("\n")

	sb.WriteString("[view]\n")
	fmt.Fprintf(&sb, "zoom_step = %s\n", formatFloat(c.View.ZoomStep))
	fmt.Fprintf(&sb, "frame_rate = %d\n", c.View.FrameRate)
	if c.View.FilterPreset != "" {
		fmt.Fprintf(&sb, "filter_preset = %s\n", c.View.FilterPreset)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "delete = %v\n", c.Notify.Delete)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		sb.WriteString(c.Themes[name].String())
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
