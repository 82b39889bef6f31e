package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/xrayview/internal/config"
	"github.com/example/xrayview/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// root carries what every command shares: the loaded configuration and the
// notifier.
type root struct {
	config   *config.Config
	loader   *config.Loader
	notifier *notify.Notifier
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		log.Printf("warning: failed to load config: %v", err)
		cfg = config.New()
	}
	cfg.ApplyEnv(os.Getenv)
	n := notify.New(notify.LoadPreferences(os.Getenv))
	n.Enable(notify.EventExport, cfg.Notify.Export)
	n.Enable(notify.EventCopy, cfg.Notify.Copy)
	n.Enable(notify.EventDelete, cfg.Notify.Delete)
	return &root{
		config:   cfg,
		loader:   loader,
		notifier: n,
	}
}

func (r *root) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xrayview",
		Short: "Dental radiograph viewer with measurement and annotation overlay",
		Long: `xrayview shows dental radiographs in a window and lets the operator
measure distances and angles, calibrate against a known length and annotate
images with arrows, text and freehand strokes.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{cmd: c, err: err}
	})
	cmd.AddCommand(
		r.viewCommand(),
		r.measureCommand(),
		r.configCommand(),
		r.themesCommand(),
		r.versionCommand(),
	)
	return cmd
}

func versionString() string {
	v := version
	if commit != "" {
		v += " (" + commit
		if date != "" {
			v += ", " + date
		}
		v += ")"
	}
	return v
}

// UsageError reports a problem with the command line. main prints the
// command's usage along with it.
type UsageError struct {
	cmd *cobra.Command
	err error
}

func (e *UsageError) Error() string { return e.err.Error() }

func (e *UsageError) Unwrap() error { return e.err }

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &UsageError{cmd: cmd, err: err}
		}
		return nil
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRoot().command()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var uerr *UsageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "Error: %v\n", uerr)
		if uerr.cmd != nil {
			fmt.Fprint(stderr, uerr.cmd.UsageString())
		}
		return 2
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
