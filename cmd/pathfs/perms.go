package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

func newPermsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perms",
		Short: "Show and change permission bits",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show PATH...",
		Short: "Print the permissions, owner and group of paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				perm, err := fsys.Permissions(p)
				if err != nil {
					return err
				}
				owner, err := fsys.Owner(p)
				if err != nil {
					return err
				}
				group, err := fsys.Group(p)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n",
					perm, perm.Octal(), owner, group, p); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set MODE PATH...",
		Short: "Replace the permission bits of paths",
		Long: `Replace the permission bits of paths with MODE, given in octal (0750) or
symbolic (rwxr-x---) form. setuid, setgid and sticky bits are kept.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := permissions.Parse(args[0])
			if err != nil {
				return err
			}
			for _, p := range args[1:] {
				if err := fsys.ChangePermissions(p, perm); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the permissions new directories receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := fsys.DefaultPermissions()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d, d.Octal())
			return err
		},
	})

	return cmd
}
