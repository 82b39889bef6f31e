package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/calibration"
	"github.com/example/xrayview/internal/clipboard"
	"github.com/example/xrayview/internal/geometry"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteText

type measureCmd struct {
	*root
	pixelsPerMm float64
	copy        bool
}

func (r *root) measureCommand() *cobra.Command {
	c := &measureCmd{root: r}
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Compute the labels the overlay shows, without a window",
	}
	cmd.PersistentFlags().Float64Var(&c.pixelsPerMm, "ppm", r.config.PixelsPerMm, "pixels per millimetre")
	cmd.PersistentFlags().BoolVar(&c.copy, "copy", false, "also copy the label to the clipboard")

	cmd.AddCommand(&cobra.Command{
		Use:   "ruler x1 y1 x2 y2",
		Short: "Distance between two image points in millimetres",
		Args:  usageArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(cmd, args)
			if err != nil {
				return err
			}
			cal, err := calibration.FromPixelsPerMm(c.pixelsPerMm)
			if err != nil {
				return &UsageError{cmd: cmd, err: fmt.Errorf("--ppm: %w", err)}
			}
			return c.print(cmd, cal.Format(geometry.Distance(pts[0], pts[1])))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "angle x1 y1 vx vy x2 y2",
		Short: "Angle at the vertex (vx, vy) between the two arms in degrees",
		Args:  usageArgs(cobra.ExactArgs(6)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(cmd, args)
			if err != nil {
				return err
			}
			return c.print(cmd, annotation.FormatAngle(geometry.AngleBetween(pts[0], pts[1], pts[2])))
		},
	})

	var mm float64
	calibrate := &cobra.Command{
		Use:   "calibrate x1 y1 x2 y2",
		Short: "Pixels per millimetre for a span of known length",
		Args:  usageArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(cmd, args)
			if err != nil {
				return err
			}
			d, err := calibration.New(geometry.Distance(pts[0], pts[1]), mm)
			if err != nil {
				return &UsageError{cmd: cmd, err: err}
			}
			return c.print(cmd, d.String())
		},
	}
	calibrate.Flags().Float64Var(&mm, "mm", 0, "real length of the span in millimetres")
	_ = calibrate.MarkFlagRequired("mm")
	cmd.AddCommand(calibrate)
	return cmd
}

func (c *measureCmd) print(cmd *cobra.Command, label string) error {
	fmt.Fprintln(cmd.OutOrStdout(), label)
	if !c.copy {
		return nil
	}
	if err := writeClipboard(label); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	c.notifier.Copy(label, nil)
	return nil
}

func parsePoints(cmd *cobra.Command, args []string) ([]geometry.ImagePoint, error) {
	pts := make([]geometry.ImagePoint, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		x, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, &UsageError{cmd: cmd, err: fmt.Errorf("coordinate %q is not a number", args[i])}
		}
		y, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return nil, &UsageError{cmd: cmd, err: fmt.Errorf("coordinate %q is not a number", args[i+1])}
		}
		pts = append(pts, geometry.ImagePoint{X: x, Y: y})
	}
	return pts, nil
}
