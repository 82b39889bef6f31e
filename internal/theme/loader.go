package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ext = ".theme"

// Loader resolves theme names against the embedded themes, then the user
// theme directory, then the system one.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader using the per-user config directory.
func NewLoader() *Loader {
	l := &Loader{SystemDir: "/usr/share/xrayview/themes"}
	if dir, err := os.UserConfigDir(); err == nil {
		l.ConfigDir = filepath.Join(dir, "xrayview", "themes")
	}
	return l
}

// Source is where a theme was found.
type Source struct {
	Name string
	From string // "embedded", "user" or "system"
}

type origin struct {
	from string
	fsys fs.FS
}

func (l *Loader) origins() []origin {
	out := []origin{{"embedded", embeddedDefaults()}}
	if l.ConfigDir != "" {
		out = append(out, origin{"user", os.DirFS(l.ConfigDir)})
	}
	if l.SystemDir != "" {
		out = append(out, origin{"system", os.DirFS(l.SystemDir)})
	}
	return out
}

func embeddedDefaults() fs.FS {
	sub, err := fs.Sub(EmbeddedThemes, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// fileName maps "High Contrast" to "high_contrast.theme".
func fileName(name string) string {
	n := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	if !strings.HasSuffix(n, ext) {
		n += ext
	}
	return n
}

// Load returns the theme called name. A name that is an existing file path
// is parsed directly, and an empty name returns Default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}
	file := fileName(name)
	for _, o := range l.origins() {
		t, err := parseFile(o.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return t, err
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

// Available lists every theme the loader can see. A name found in more than
// one place is reported once, from the source Load would use.
func (l *Loader) Available() []Source {
	seen := map[string]bool{}
	var out []Source
	for _, o := range l.origins() {
		matches, _ := fs.Glob(o.fsys, "*"+ext)
		sort.Strings(matches)
		for _, m := range matches {
			n := strings.TrimSuffix(m, ext)
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, Source{Name: n, From: o.from})
		}
	}
	return out
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}
