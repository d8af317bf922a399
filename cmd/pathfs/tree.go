package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathfs/pkg/pathfs/tree"
)

func newTreeCommands() []*cobra.Command {
	return []*cobra.Command{
		newListTreeCommand(),
		{
			Use:   "mk-tree PATH...",
			Short: "Create directories and their missing parents",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, p := range args {
					if err := fsys.MakeTree(p); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Use:   "cp-tree FROM TO",
			Short: "Copy a tree, recreating symbolic links instead of following them",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return fsys.CopyTree(args[0], args[1])
			},
		},
		{
			Use:   "rm-tree PATH...",
			Short: "Remove trees; symbolic links are removed, never followed",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, p := range args {
					if err := fsys.RemoveTree(p); err != nil {
						return err
					}
				}
				return nil
			},
		},
		newSummaryCommand(),
	}
}

func newListTreeCommand() *cobra.Command {
	var (
		dirs    bool
		kinds   bool
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "ls-tree [ROOT]",
		Short: "List a tree in lexical order",
		Long: `List every entry below ROOT (default: the working directory) relative to it,
ROOT itself first as ".". Symbolic links to directories are listed but not entered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}

			var (
				list []string
				err  error
			)
			switch {
			case kinds:
				var entries []tree.Entry
				if entries, err = fsys.Entries(root); err != nil {
					return err
				}
				for _, e := range entries {
					if dirs && e.Kind == tree.File {
						continue
					}
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", e.Kind, display(e.Path)); err != nil {
						return err
					}
				}
				return nil
			case pattern != "":
				list, err = fsys.Match(root, pattern)
			case dirs:
				list, err = fsys.ListDirectoryTree(root)
			default:
				list, err = fsys.ListTree(root)
			}
			if err != nil {
				return err
			}
			for _, p := range list {
				if err := printLine(cmd, display(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dirs, "dirs", false, "List directories and links to directories only")
	cmd.Flags().BoolVar(&kinds, "kinds", false, "Print the kind of each entry")
	cmd.Flags().StringVar(&pattern, "match", "", "List entries matching a doublestar pattern such as '**/*.go'")
	cmd.MarkFlagsMutuallyExclusive("kinds", "match")

	return cmd
}

func display(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func newSummaryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary [ROOT]",
		Short: "Count the files, directories and links of a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			s, err := tree.Summarize(cmd.Context(), root)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "files: %d\ndirectories: %d\nsymlinks: %d\nbytes: %d\n",
				s.Files, s.Directories, s.Symlinks, s.Bytes)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}
