package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/report"
	"github.com/ukydev/fleet-tracking/internal/snapshot"
)

// The find commands push filters down to MongoDB, or apply the same filters
// in memory when reading a snapshot.

func (a *App) findCmd() *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List vehicles, shipments or telemetry matching a filter",
	}
	cmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "read from a SQLite snapshot instead of MongoDB")
	cmd.AddCommand(
		a.findVehiclesCmd(&snapshotPath),
		a.findShipmentsCmd(&snapshotPath),
		a.findTelemetryCmd(&snapshotPath),
	)
	return cmd
}

// fromSnapshot opens the snapshot at path and applies filter to it.
func fromSnapshot[T any](ctx context.Context, path string, filter func(context.Context, report.Source) ([]T, error)) ([]T, error) {
	snap, err := snapshot.OpenExisting(path)
	if err != nil {
		return nil, err
	}
	defer snap.Close()
	return filter(ctx, snap)
}

func (a *App) findVehiclesCmd(snapshotPath *string) *cobra.Command {
	var capacity float64
	var makePattern string
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Vehicles by minimum capacity or make",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCapacity := cmd.Flags().Changed("capacity-above")
			if byCapacity == (makePattern != "") {
				return errors.New("exactly one of --capacity-above or --make is required")
			}
			ctx := cmd.Context()

			var vehicles []models.Vehicle
			var err error
			if *snapshotPath != "" {
				vehicles, err = fromSnapshot(ctx, *snapshotPath, func(ctx context.Context, src report.Source) ([]models.Vehicle, error) {
					all, err := src.LoadVehicles(ctx)
					if err != nil {
						return nil, err
					}
					if byCapacity {
						return report.VehiclesAboveCapacity(all, capacity), nil
					}
					return report.VehiclesByMake(all, makePattern)
				})
			} else {
				filter := db.MakeMatches(makePattern)
				if byCapacity {
					filter = db.CapacityAbove(capacity)
				}
				var store *db.Store
				if store, err = a.store(ctx); err == nil {
					vehicles, err = store.Vehicles.FindVehicles(ctx, filter)
				}
			}
			if err != nil {
				return err
			}
			printVehicles(cmd.OutOrStdout(), vehicles)
			return nil
		},
	}
	cmd.Flags().Float64Var(&capacity, "capacity-above", 0, "minimum load capacity in tons (exclusive)")
	cmd.Flags().StringVar(&makePattern, "make", "", "regular expression matched against the make")
	return cmd
}

func (a *App) findShipmentsCmd(snapshotPath *string) *cobra.Command {
	var heavier float64
	var priorities []string
	cmd := &cobra.Command{
		Use:   "shipments",
		Short: "In-transit shipments above a weight, or shipments by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byWeight := cmd.Flags().Changed("in-transit-above")
			if byWeight == (len(priorities) > 0) {
				return errors.New("exactly one of --in-transit-above or --priority is required")
			}
			ctx := cmd.Context()

			var shipments []models.Shipment
			var err error
			if *snapshotPath != "" {
				shipments, err = fromSnapshot(ctx, *snapshotPath, func(ctx context.Context, src report.Source) ([]models.Shipment, error) {
					all, err := src.LoadShipments(ctx)
					if err != nil {
						return nil, err
					}
					if byWeight {
						return report.HeavyInTransit(all, heavier), nil
					}
					return report.ShipmentsWithPriority(all, priorities...), nil
				})
			} else {
				filter := db.PriorityIn(priorities...)
				if byWeight {
					filter = db.HeavyInTransit(heavier)
				}
				var store *db.Store
				if store, err = a.store(ctx); err == nil {
					shipments, err = store.Shipments.FindShipments(ctx, filter)
				}
			}
			if err != nil {
				return err
			}
			printShipments(cmd.OutOrStdout(), shipments)
			return nil
		},
	}
	cmd.Flags().Float64Var(&heavier, "in-transit-above", 0, "minimum weight in tons (exclusive) of in-transit shipments")
	cmd.Flags().StringSliceVar(&priorities, "priority", nil, "priorities to include, comma separated")
	return cmd
}

func (a *App) findTelemetryCmd(snapshotPath *string) *cobra.Command {
	var fuel []float64
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Telemetry samples within a fuel level range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fuel) != 2 || fuel[0] > fuel[1] {
				return fmt.Errorf("--fuel-between needs LO,HI with LO <= HI, got %v", fuel)
			}
			ctx := cmd.Context()

			var records []models.Telemetry
			var err error
			if *snapshotPath != "" {
				records, err = fromSnapshot(ctx, *snapshotPath, func(ctx context.Context, src report.Source) ([]models.Telemetry, error) {
					all, err := src.LoadTelemetry(ctx)
					if err != nil {
						return nil, err
					}
					return report.TelemetryInFuelRange(all, fuel[0], fuel[1]), nil
				})
			} else {
				var store *db.Store
				if store, err = a.store(ctx); err == nil {
					records, err = store.Telemetry.FindTelemetry(ctx, db.FuelLevelBetween(fuel[0], fuel[1]))
				}
			}
			if err != nil {
				return err
			}
			printTelemetry(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&fuel, "fuel-between", nil, "inclusive fuel level range LO,HI in percent")
	return cmd
}
