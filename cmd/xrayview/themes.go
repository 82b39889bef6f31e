package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/xrayview/internal/theme"
)

func (r *root) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes [name]",
		Short: "List the available themes, or print one",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				fmt.Fprint(out, r.config.ResolveTheme(args[0], nil).String())
				return nil
			}
			for _, src := range theme.NewLoader().Available() {
				if src.From == "embedded" {
					fmt.Fprintln(out, src.Name)
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", src.Name, src.From)
			}
			var custom []string
			for n := range r.config.Themes {
				custom = append(custom, n)
			}
			sort.Strings(custom)
			for _, n := range custom {
				fmt.Fprintf(out, "%s (config)\n", n)
			}
			return nil
		},
	}
}
