package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	InsertVehicles(ctx context.Context, vehicles []models.Vehicle) error
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, fields bson.M) (int64, error)
	PushMaintenance(ctx context.Context, id string, entry models.MaintenanceEntry) (int64, error)
	PullMaintenance(ctx context.Context, id, description string) (int64, error)
	DeleteVehicle(ctx context.Context, id string) (int64, error)
}

// ShipmentCollection defines the interface for shipment data operations.
type ShipmentCollection interface {
	InsertShipment(ctx context.Context, shipment models.Shipment) error
	InsertShipments(ctx context.Context, shipments []models.Shipment) error
	FindShipments(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Shipment, error)
	UpdateShipment(ctx context.Context, id string, fields bson.M) (int64, error)
	UpdateShipments(ctx context.Context, filter interface{}, fields bson.M) (int64, error)
	DeleteShipment(ctx context.Context, id string) (int64, error)
}

// TelemetryCollection defines the interface for telemetry data operations.
type TelemetryCollection interface {
	InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error
	InsertTelemetryBatch(ctx context.Context, records []models.Telemetry) error
	FindTelemetry(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Telemetry, error)
	IncEngineTemp(ctx context.Context, vehicleID string, at time.Time, delta float64) (int64, error)
	DeleteTelemetry(ctx context.Context, vehicleID string, at time.Time) (int64, error)
	DeleteTelemetryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
