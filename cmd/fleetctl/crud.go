package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Records created by the demonstration and removed again at its end.
const (
	demoVehicleID  = "V011"
	demoShipmentID = "S016"
)

var (
	demoSampleTime = time.Date(2023, 10, 15, 8, 0, 0, 0, time.UTC)
	staleCutoff    = time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC)
)

// crudRun walks through create, read, update and delete operations on the
// three fleet collections.
type crudRun struct {
	out       io.Writer
	vehicles  db.VehicleCollection
	shipments db.ShipmentCollection
	telemetry db.TelemetryCollection
	now       func() time.Time
}

func (a *App) crudCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crud",
		Short: "Demonstrate create, read, update and delete operations",
		Long: "Creates a demo vehicle, shipment and telemetry sample, runs the filtered " +
			"reads and updates against the seeded data, then deletes the demo records " +
			"and telemetry older than 2023-10-05.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			run := crudRun{
				out:       cmd.OutOrStdout(),
				vehicles:  store.Vehicles,
				shipments: store.Shipments,
				telemetry: store.Telemetry,
				now:       time.Now,
			}
			return run.all(cmd.Context())
		},
	}
}

func (c crudRun) all(ctx context.Context) error {
	steps := []struct {
		title string
		fn    func(context.Context) error
	}{
		{"CREATE", c.create},
		{"READ", c.read},
		{"UPDATE", c.update},
		{"DELETE", c.delete},
	}
	for _, step := range steps {
		fmt.Fprintf(c.out, "\n=== %s OPERATIONS ===\n", step.title)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
	}
	return nil
}

func (c crudRun) create(ctx context.Context) error {
	vehicle := models.Vehicle{
		ID: demoVehicleID, Make: "Tesla", Model: "Semi", Year: 2023,
		LoadCapacity: models.Float(36), FuelType: "electric", Status: models.VehicleActive,
		MaintenanceHistory: []models.MaintenanceEntry{},
	}
	if err := c.vehicles.InsertVehicle(ctx, vehicle); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Created vehicle:", vehicle.ID)

	shipment := models.Shipment{
		ID: demoShipmentID, Origin: "Sofia", Destination: "Varna", Weight: models.Float(25),
		Priority: models.PriorityHigh, AssignedVehicleID: demoVehicleID, Status: models.ShipmentPending,
		EstimatedArrival: time.Date(2023, 10, 16, 12, 0, 0, 0, time.UTC),
	}
	if err := c.shipments.InsertShipment(ctx, shipment); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Created shipment:", shipment.ID)

	sample := models.Telemetry{
		VehicleID: demoVehicleID,
		Timestamp: demoSampleTime,
		GPS:       models.GPS{Lat: 42.6977, Lng: 23.3219},
		Metrics:   models.Metrics{Speed: models.Float(0), FuelLevel: models.Float(100), EngineTemp: models.Float(25)},
	}
	if err := c.telemetry.InsertTelemetry(ctx, sample); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Created telemetry for", sample.VehicleID)
	return nil
}

func (c crudRun) read(ctx context.Context) error {
	fmt.Fprintln(c.out, "Vehicles with capacity > 20 tons:")
	vehicles, err := c.vehicles.FindVehicles(ctx, db.CapacityAbove(20))
	if err != nil {
		return err
	}
	printVehicles(c.out, vehicles)

	fmt.Fprintln(c.out, "\nShipments in-transit with weight > 10 tons:")
	shipments, err := c.shipments.FindShipments(ctx, db.HeavyInTransit(10))
	if err != nil {
		return err
	}
	printShipments(c.out, shipments)

	fmt.Fprintln(c.out, "\nVehicles from Mercedes-Benz:")
	if vehicles, err = c.vehicles.FindVehicles(ctx, db.MakeMatches("Mercedes")); err != nil {
		return err
	}
	printVehicles(c.out, vehicles)

	fmt.Fprintln(c.out, "\nHigh or medium priority shipments:")
	if shipments, err = c.shipments.FindShipments(ctx, db.PriorityIn(models.PriorityHigh, models.PriorityMedium)); err != nil {
		return err
	}
	printShipments(c.out, shipments)

	fmt.Fprintln(c.out, "\nTelemetry with fuel level 80-90%:")
	records, err := c.telemetry.FindTelemetry(ctx, db.FuelLevelBetween(80, 90))
	if err != nil {
		return err
	}
	printTelemetry(c.out, records)
	return nil
}

func (c crudRun) update(ctx context.Context) error {
	n, err := c.shipments.UpdateShipment(ctx, demoShipmentID, bson.M{"status": models.ShipmentInTransit})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated shipment %s status: %d\n", demoShipmentID, n)

	if n, err = c.shipments.UpdateShipments(ctx, db.PendingFrom("Sofia"), bson.M{"status": models.ShipmentInTransit}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated pending Sofia shipments: %d\n", n)

	if n, err = c.telemetry.IncEngineTemp(ctx, demoVehicleID, demoSampleTime, 10); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Increased engine temp for %s: %d\n", demoVehicleID, n)

	entry := models.MaintenanceEntry{Date: c.now().UTC(), Description: "Initial inspection"}
	if n, err = c.vehicles.PushMaintenance(ctx, demoVehicleID, entry); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added maintenance record to %s: %d\n", demoVehicleID, n)

	if n, err = c.vehicles.PullMaintenance(ctx, "V001", "Oil change"); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed oil change record from V001: %d\n", n)
	return nil
}

func (c crudRun) delete(ctx context.Context) error {
	n, err := c.telemetry.DeleteTelemetry(ctx, demoVehicleID, demoSampleTime)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted telemetry record: %d\n", n)

	if n, err = c.telemetry.DeleteTelemetryBefore(ctx, staleCutoff); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted old telemetry records: %d\n", n)

	if n, err = c.vehicles.DeleteVehicle(ctx, demoVehicleID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted test vehicle: %d\n", n)

	if n, err = c.shipments.DeleteShipment(ctx, demoShipmentID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted test shipment: %d\n", n)
	return nil
}
