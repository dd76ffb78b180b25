package main

import (
	"fmt"

	"github.com/odvcencio/surveyor/pkg/repo"
	"github.com/spf13/cobra"
)

func newPackRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack-refs",
		Short: "Move loose refs into the packed-refs file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if err := r.PackRefs(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "refs packed")
			return nil
		},
	}
}
