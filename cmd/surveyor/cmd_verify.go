package main

import (
	"fmt"

	"github.com/odvcencio/surveyor/pkg/repo"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify loose and packed object integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			summary, err := r.Verify()
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"verified %d loose object(s), %d packed object(s) in %d pack(s)\n",
				summary.LooseObjects,
				summary.PackObjects,
				summary.PackFiles,
			)
			return nil
		},
	}
}
