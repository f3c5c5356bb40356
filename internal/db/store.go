package db

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names in the fleet database.
const (
	CollVehicles  = "vehicles"
	CollShipments = "shipments"
	CollTelemetry = "telemetry"
)

// Store bundles the fleet collections of one database. It is the report
// source and seed target backed by MongoDB.
type Store struct {
	Vehicles  *MongoCollection
	Shipments *MongoCollection
	Telemetry *MongoCollection
}

// NewStore returns a Store over the standard collections of database.
func NewStore(database *mongo.Database) *Store {
	return &Store{
		Vehicles:  &MongoCollection{Collection: database.Collection(CollVehicles)},
		Shipments: &MongoCollection{Collection: database.Collection(CollShipments)},
		Telemetry: &MongoCollection{Collection: database.Collection(CollTelemetry)},
	}
}

// LoadVehicles returns every vehicle document.
func (s *Store) LoadVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.Vehicles.FindVehicles(ctx, nil)
}

// LoadShipments returns every shipment document.
func (s *Store) LoadShipments(ctx context.Context) ([]models.Shipment, error) {
	return s.Shipments.FindShipments(ctx, nil)
}

// LoadTelemetry returns every telemetry document.
func (s *Store) LoadTelemetry(ctx context.Context) ([]models.Telemetry, error) {
	return s.Telemetry.FindTelemetry(ctx, nil)
}

// Documents returns every document of the named collection as stored, with
// fields the models do not know about left intact.
func (s *Store) Documents(ctx context.Context, collection string) ([]bson.M, error) {
	var c *MongoCollection
	switch collection {
	case CollVehicles:
		c = s.Vehicles
	case CollShipments:
		c = s.Shipments
	case CollTelemetry:
		c = s.Telemetry
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return c.FindRaw(ctx, nil)
}

func (s *Store) InsertVehicles(ctx context.Context, vehicles []models.Vehicle) error {
	return s.Vehicles.InsertVehicles(ctx, vehicles)
}

func (s *Store) InsertShipments(ctx context.Context, shipments []models.Shipment) error {
	return s.Shipments.InsertShipments(ctx, shipments)
}

func (s *Store) InsertTelemetry(ctx context.Context, record models.Telemetry) error {
	return s.Telemetry.InsertTelemetry(ctx, record)
}

func (s *Store) InsertTelemetryBatch(ctx context.Context, records []models.Telemetry) error {
	return s.Telemetry.InsertTelemetryBatch(ctx, records)
}

// Clear deletes every document from the three collections.
func (s *Store) Clear(ctx context.Context) error {
	colls := []struct {
		name string
		c    *MongoCollection
	}{
		{CollVehicles, s.Vehicles},
		{CollShipments, s.Shipments},
		{CollTelemetry, s.Telemetry},
	}
	for _, coll := range colls {
		if err := coll.c.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", coll.name, err)
		}
	}
	return nil
}
