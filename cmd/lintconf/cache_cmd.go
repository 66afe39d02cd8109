package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached resolution result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, ".")
			if err != nil {
				return err
			}
			dc, err := s.openCache()
			if err != nil {
				return err
			}
			if err := dc.DropAll(); err != nil {
				return err
			}
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cleared %s\n", dc.Dir())
			}
			return nil
		},
	})
	return cmd
}
