package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/snapshot"
)

func (a *App) snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot FILE",
		Short: "Copy the fleet collections into a SQLite file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			snap, err := snapshot.Capture(ctx, store)
			if err != nil {
				return err
			}

			file, err := snapshot.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			if err := file.Save(ctx, snap); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"path":      args[0],
				"vehicles":  len(snap.Vehicles),
				"shipments": len(snap.Shipments),
				"telemetry": len(snap.Telemetry),
			}).Info("Snapshot saved")
			return nil
		},
	}
}
