package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPathCommands returns the commands of the path algebra. They only
// compute strings; nothing is checked against the filesystem.
func newPathCommands() []*cobra.Command {
	var ext string

	base := &cobra.Command{
		Use:   "base PATH",
		Short: "Print the last segment of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLine(cmd, fsys.Base(args[0], ext))
		},
	}
	base.Flags().StringVar(&ext, "ext", "", "Extension to strip from the segment")

	return []*cobra.Command{
		{
			Use:   "resolve PATH...",
			Short: "Resolve paths left to right",
			Long: `Resolve each path against the previous result. An absolute path restarts
resolution, ".." climbs and "." is dropped.`,
			Args: cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printLine(cmd, fsys.Resolve(args...))
			},
		},
		{
			Use:   "relative SOURCE [TARGET]",
			Short: "Print the path leading from SOURCE to TARGET",
			Long: `Print the path leading from SOURCE to TARGET, both taken relative to the
working directory. With only SOURCE, print the path from the working directory to it.`,
			Args: cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				rel, err := fsys.Relative(args[0], args[1:]...)
				if err != nil {
					return err
				}
				return printLine(cmd, rel)
			},
		},
		{
			Use:   "normal PATH",
			Short: "Print a path with . and .. collapsed",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printLine(cmd, fsys.Normal(args[0]))
			},
		},
		base,
		{
			Use:   "dir PATH",
			Short: "Print a path without its last segment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printLine(cmd, fsys.Directory(args[0]))
			},
		},
		{
			Use:   "ext PATH",
			Short: "Print the extension of a path, dot included",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printLine(cmd, fsys.Extension(args[0]))
			},
		},
	}
}

func printLine(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}
