package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNilCollection is returned when a MongoCollection has no backing collection.
	ErrNilCollection = errors.New("mongo collection is nil")
	// ErrNotFound is returned by lookups that match no document.
	ErrNotFound = errors.New("document not found")
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection. One value serves whichever
// entity the collection holds.
type MongoCollection struct {
	Collection *mongo.Collection
}

func (c *MongoCollection) check() error {
	if c == nil || c.Collection == nil {
		return ErrNilCollection
	}
	return nil
}

func (c *MongoCollection) insertMany(ctx context.Context, docs []interface{}) error {
	if err := c.check(); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

func (c *MongoCollection) updateOne(ctx context.Context, filter, update interface{}) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	res, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (c *MongoCollection) deleteOne(ctx context.Context, filter interface{}) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	res, err := c.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// find decodes every matching document into out, which must be a pointer
// to a slice.
func (c *MongoCollection) find(ctx context.Context, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	if err := c.check(); err != nil {
		return err
	}
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// FindRaw returns the matching documents as stored, without mapping them
// onto a model.
func (c *MongoCollection) FindRaw(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]bson.M, error) {
	docs := make([]bson.M, 0)
	if err := c.find(ctx, filter, &docs, opts...); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteAll deletes every document in the collection.
func (c *MongoCollection) DeleteAll(ctx context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if err := c.check(); err != nil {
		return err
	}
	if vehicle.MaintenanceHistory == nil {
		vehicle.MaintenanceHistory = []models.MaintenanceEntry{}
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// InsertVehicles inserts vehicle records in one round trip.
func (c *MongoCollection) InsertVehicles(ctx context.Context, vehicles []models.Vehicle) error {
	docs := make([]interface{}, len(vehicles))
	for i, v := range vehicles {
		if v.MaintenanceHistory == nil {
			v.MaintenanceHistory = []models.MaintenanceEntry{}
		}
		docs[i] = v
	}
	return c.insertMany(ctx, docs)
}

// FindVehicles queries vehicle records from the collection.
func (c *MongoCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vehicle, error) {
	vehicles := make([]models.Vehicle, 0)
	if err := c.find(ctx, filter, &vehicles, opts...); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle sets the given fields on a vehicle and returns the number of
// modified documents.
func (c *MongoCollection) UpdateVehicle(ctx context.Context, id string, fields bson.M) (int64, error) {
	return c.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
}

// PushMaintenance appends an entry to a vehicle's maintenance history.
func (c *MongoCollection) PushMaintenance(ctx context.Context, id string, entry models.MaintenanceEntry) (int64, error) {
	return c.updateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"maintenance_history": entry}})
}

// PullMaintenance removes every maintenance entry with the given
// description. Removing an absent entry is not an error.
func (c *MongoCollection) PullMaintenance(ctx context.Context, id, description string) (int64, error) {
	return c.updateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"maintenance_history": bson.M{"description": description}}})
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoCollection) DeleteVehicle(ctx context.Context, id string) (int64, error) {
	return c.deleteOne(ctx, bson.M{"_id": id})
}

// InsertShipment inserts a shipment record into the collection.
func (c *MongoCollection) InsertShipment(ctx context.Context, shipment models.Shipment) error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := c.Collection.InsertOne(ctx, shipment)
	return err
}

// InsertShipments inserts shipment records in one round trip.
func (c *MongoCollection) InsertShipments(ctx context.Context, shipments []models.Shipment) error {
	docs := make([]interface{}, len(shipments))
	for i, s := range shipments {
		docs[i] = s
	}
	return c.insertMany(ctx, docs)
}

// FindShipments queries shipment records from the collection.
func (c *MongoCollection) FindShipments(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Shipment, error) {
	shipments := make([]models.Shipment, 0)
	if err := c.find(ctx, filter, &shipments, opts...); err != nil {
		return nil, err
	}
	return shipments, nil
}

// UpdateShipment sets the given fields on one shipment.
func (c *MongoCollection) UpdateShipment(ctx context.Context, id string, fields bson.M) (int64, error) {
	return c.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
}

// UpdateShipments sets the given fields on every shipment matching filter.
func (c *MongoCollection) UpdateShipments(ctx context.Context, filter interface{}, fields bson.M) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	res, err := c.Collection.UpdateMany(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteShipment deletes a shipment by its ID.
func (c *MongoCollection) DeleteShipment(ctx context.Context, id string) (int64, error) {
	return c.deleteOne(ctx, bson.M{"_id": id})
}

// InsertTelemetry inserts a telemetry record into the collection.
func (c *MongoCollection) InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error {
	if err := c.check(); err != nil {
		return err
	}
	_, err := c.Collection.InsertOne(ctx, telemetry)
	return err
}

// InsertTelemetryBatch inserts telemetry records in one round trip.
func (c *MongoCollection) InsertTelemetryBatch(ctx context.Context, records []models.Telemetry) error {
	docs := make([]interface{}, len(records))
	for i, t := range records {
		docs[i] = t
	}
	return c.insertMany(ctx, docs)
}

// FindTelemetry queries telemetry records from the collection.
func (c *MongoCollection) FindTelemetry(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Telemetry, error) {
	records := make([]models.Telemetry, 0)
	if err := c.find(ctx, filter, &records, opts...); err != nil {
		return nil, err
	}
	return records, nil
}

// IncEngineTemp adds delta to the engine temperature of the sample taken by
// vehicleID at the given time.
func (c *MongoCollection) IncEngineTemp(ctx context.Context, vehicleID string, at time.Time, delta float64) (int64, error) {
	return c.updateOne(ctx,
		bson.M{"vehicle_id": vehicleID, "timestamp": at},
		bson.M{"$inc": bson.M{"metrics.engine_temp": delta}},
	)
}

// DeleteTelemetry deletes the sample taken by vehicleID at the given time.
func (c *MongoCollection) DeleteTelemetry(ctx context.Context, vehicleID string, at time.Time) (int64, error) {
	return c.deleteOne(ctx, bson.M{"vehicle_id": vehicleID, "timestamp": at})
}

// DeleteTelemetryBefore deletes every sample older than cutoff.
func (c *MongoCollection) DeleteTelemetryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	res, err := c.Collection.DeleteMany(ctx, OlderThan(cutoff))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
