package main

import (
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/seed"
)

func (a *App) seedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample vehicles, shipments and telemetry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			return seed.Seed(cmd.Context(), store, seed.Options{Reset: reset})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing documents first")
	return cmd
}
