// Package seed holds the sample fleet dataset and loads it into a store.
package seed

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// Target is the store the fixtures are written to.
type Target interface {
	InsertVehicles(ctx context.Context, vehicles []models.Vehicle) error
	InsertShipments(ctx context.Context, shipments []models.Shipment) error
	InsertTelemetryBatch(ctx context.Context, records []models.Telemetry) error
	Clear(ctx context.Context) error
}

// Options controls Seed.
type Options struct {
	// Reset deletes existing documents before inserting.
	Reset bool
}

// Seed inserts the sample vehicles, shipments and telemetry.
func Seed(ctx context.Context, target Target, opts Options) error {
	if opts.Reset {
		log.Info("Clearing existing fleet data")
		if err := target.Clear(ctx); err != nil {
			return fmt.Errorf("clear collections: %w", err)
		}
	}

	vehicles := Vehicles()
	if err := target.InsertVehicles(ctx, vehicles); err != nil {
		return fmt.Errorf("seed vehicles: %w", err)
	}
	log.WithField("count", len(vehicles)).Info("Vehicles seeded")

	shipments := Shipments()
	if err := target.InsertShipments(ctx, shipments); err != nil {
		return fmt.Errorf("seed shipments: %w", err)
	}
	log.WithField("count", len(shipments)).Info("Shipments seeded")

	telemetry := Telemetry()
	if err := target.InsertTelemetryBatch(ctx, telemetry); err != nil {
		return fmt.Errorf("seed telemetry: %w", err)
	}
	log.WithField("count", len(telemetry)).Info("Telemetry seeded")

	return nil
}
