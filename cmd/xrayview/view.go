package main

import (
	"errors"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/imagesource"
	"github.com/example/xrayview/internal/notify"
	"github.com/example/xrayview/internal/session"
	"github.com/example/xrayview/internal/viewer"
)

type viewCmd struct {
	*root
	manifest     string
	start        int
	themeName    string
	exportDir    string
	pixelsPerMm  float64
	preset       string
	fullscreen   bool
	width        int
	height       int
	exportAlerts bool
	copyAlerts   bool
	deleteAlerts bool
}

// runViewer opens the window; tests replace it.
var runViewer = (*viewer.Viewer).Run

func (r *root) viewCommand() *cobra.Command {
	c := &viewCmd{root: r}
	cfg := r.config
	cmd := &cobra.Command{
		Use:   "view [flags] <image>...",
		Short: "Open images in the measurement viewer",
		Long: `Open one or more radiographs, given as paths or file:// URLs, or a JSON
manifest describing the image records and the one to show first.`,
		Args: usageArgs(func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && c.manifest == "" {
				return errors.New("no images given")
			}
			if len(args) > 0 && c.manifest != "" {
				return errors.New("images and --manifest are mutually exclusive")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error { return c.run(args) },
	}
	f := cmd.Flags()
	f.StringVar(&c.manifest, "manifest", "", "JSON manifest listing the images")
	f.IntVar(&c.start, "start", 0, "index of the first image shown")
	// Precedence: CLI > Env > Config > Default. Env was folded into cfg at load.
	f.StringVar(&c.themeName, "theme", cfg.Theme, "colour theme name or .theme file (see xrayview themes)")
	f.StringVar(&c.exportDir, "export-dir", cfg.ExportDir, "directory annotated exports are written to")
	f.Float64Var(&c.pixelsPerMm, "ppm", cfg.PixelsPerMm, "pixels per millimetre before calibration")
	f.StringVar(&c.preset, "preset", cfg.View.FilterPreset, "filter preset applied to every image")
	f.BoolVar(&c.fullscreen, "fullscreen", false, "start without the status bars")
	f.IntVar(&c.width, "width", viewer.DefaultWindowSize.X, "window width")
	f.IntVar(&c.height, "height", viewer.DefaultWindowSize.Y, "window height")
	f.BoolVar(&c.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting")
	f.BoolVar(&c.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	f.BoolVar(&c.deleteAlerts, "notify-delete", cfg.Notify.Delete, "show a desktop notification after removing an image")
	return cmd
}

func (c *viewCmd) records(args []string) ([]session.Record, int, error) {
	if c.manifest != "" {
		m, err := imagesource.LoadManifest(c.manifest)
		if err != nil {
			return nil, 0, err
		}
		start := m.Start
		if c.start != 0 {
			start = c.start
		}
		return m.Records(), start, nil
	}
	recs, err := imagesource.FromPaths(args)
	return recs, c.start, err
}

func (c *viewCmd) settings(start int) (viewer.Settings, error) {
	cal, err := calibration.FromPixelsPerMm(c.pixelsPerMm)
	if err != nil {
		return viewer.Settings{}, fmt.Errorf("--ppm: %w", err)
	}
	return viewer.Settings{
		Title:       "xrayview",
		Size:        image.Pt(c.width, c.height),
		Start:       start,
		ExportDir:   c.exportDir,
		FrameRate:   c.config.View.FrameRate,
		ZoomStep:    c.config.View.ZoomStep,
		Preset:      c.preset,
		Calibration: cal,
		Theme:       c.config.ResolveTheme(c.themeName, nil),
		Fullscreen:  c.fullscreen,
	}, nil
}

func (c *viewCmd) run(args []string) error {
	recs, start, err := c.records(args)
	if err != nil {
		return err
	}
	st, err := c.settings(start)
	if err != nil {
		return err
	}
	c.notifier.Enable(notify.EventExport, c.exportAlerts)
	c.notifier.Enable(notify.EventCopy, c.copyAlerts)
	c.notifier.Enable(notify.EventDelete, c.deleteAlerts)

	v, err := viewer.New(recs, st, viewer.WithNotifier(c.notifier))
	if err != nil {
		return err
	}
	runViewer(v)
	return nil
}
