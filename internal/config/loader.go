package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDir   = "xrayview"
	rcName   = "config.rc"
	localRC  = ".xrayviewrc"
	legacyRC = "xrayview.rc"
)

// Loader finds, reads and writes the configuration file.
type Loader struct {
	Version      string // "dev" builds also look in the working directory
	OverridePath string // set at build time with -ldflags
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Candidates lists the files Load considers, most specific first.
func (l *Loader) Candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, localRC))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, appDir, rcName),
			filepath.Join(dir, appDir, legacyRC),
		)
	}
	return paths
}

// Path returns the first existing candidate, or "" when there is none.
func (l *Loader) Path() string {
	for _, p := range l.Candidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the configuration file. Defaults are returned when no file
// exists.
func (l *Loader) Load() (*Config, error) {
	path := l.Path()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// DefaultPath is where Save writes when no config file exists yet.
func (l *Loader) DefaultPath() string {
	if l.OverridePath != "" {
		return l.OverridePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDir, rcName)
}

// Save writes cfg to the file Load would read, creating directories as needed.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.OverridePath
	if path == "" {
		path = l.Path()
	}
	if path == "" {
		path = l.DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(cfg.String()), 0o644)
}
