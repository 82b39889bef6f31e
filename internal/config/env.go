package config

import (
	"log"
	"os"
	"strings"

	"github.com/example/xrayview/internal/theme"
)

// Environment variables read by ApplyEnv and ThemeName.
const (
	EnvTheme     = "XRAYVIEW_THEME"
	EnvExportDir = "XRAYVIEW_EXPORT_DIR"
)

// ApplyEnv overrides config values with environment variables. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvTheme)); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(getenv(EnvExportDir)); v != "" {
		c.ExportDir = v
	}
}

// ResolveTheme picks the theme named by flag, falling back to the configured
// name. Themes defined in the config win over files and embedded themes.
// An unknown name logs a warning and yields the default theme.
func (c *Config) ResolveTheme(flag string, loader *theme.Loader) *theme.Theme {
	name := strings.TrimSpace(flag)
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[strings.ToLower(name)]; ok {
		return t
	}
	if loader == nil {
		loader = theme.NewLoader()
	}
	t, err := loader.Load(name)
	if err != nil {
		if name != "default" {
			log.Printf("warning: failed to load theme %q: %v. using default.", name, err)
		}
		return theme.Default()
	}
	return t
}

// ExportDirOrDefault returns the directory exports are written to, defaulting to the
// working directory.
func (c *Config) ExportDirOrDefault() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
