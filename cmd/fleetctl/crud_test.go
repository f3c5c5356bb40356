package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/seed"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockVehicles struct{ mock.Mock }

func (m *MockVehicles) InsertVehicle(ctx context.Context, v models.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVehicles) InsertVehicles(ctx context.Context, v []models.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVehicles) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vehicle, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]models.Vehicle)
	return v, args.Error(1)
}

func (m *MockVehicles) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Vehicle)
	return v, args.Error(1)
}

func (m *MockVehicles) UpdateVehicle(ctx context.Context, id string, fields bson.M) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicles) PushMaintenance(ctx context.Context, id string, entry models.MaintenanceEntry) (int64, error) {
	args := m.Called(ctx, id, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicles) PullMaintenance(ctx context.Context, id, description string) (int64, error) {
	args := m.Called(ctx, id, description)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicles) DeleteVehicle(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockShipments struct{ mock.Mock }

func (m *MockShipments) InsertShipment(ctx context.Context, s models.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShipments) InsertShipments(ctx context.Context, s []models.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShipments) FindShipments(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Shipment, error) {
	args := m.Called(ctx, filter)
	s, _ := args.Get(0).([]models.Shipment)
	return s, args.Error(1)
}

func (m *MockShipments) UpdateShipment(ctx context.Context, id string, fields bson.M) (int64, error) {
	args := m.Called(ctx, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipments) UpdateShipments(ctx context.Context, filter interface{}, fields bson.M) (int64, error) {
	args := m.Called(ctx, filter, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipments) DeleteShipment(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockTelemetry struct{ mock.Mock }

func (m *MockTelemetry) InsertTelemetry(ctx context.Context, t models.Telemetry) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTelemetry) InsertTelemetryBatch(ctx context.Context, t []models.Telemetry) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTelemetry) FindTelemetry(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Telemetry, error) {
	args := m.Called(ctx, filter)
	t, _ := args.Get(0).([]models.Telemetry)
	return t, args.Error(1)
}

func (m *MockTelemetry) IncEngineTemp(ctx context.Context, vehicleID string, at time.Time, delta float64) (int64, error) {
	args := m.Called(ctx, vehicleID, at, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTelemetry) DeleteTelemetry(ctx context.Context, vehicleID string, at time.Time) (int64, error) {
	args := m.Called(ctx, vehicleID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTelemetry) DeleteTelemetryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ db.VehicleCollection   = (*MockVehicles)(nil)
	_ db.ShipmentCollection  = (*MockShipments)(nil)
	_ db.TelemetryCollection = (*MockTelemetry)(nil)
)

func TestCrudRun(t *testing.T) {
	ctx := context.Background()
	vehicles, shipments, telemetry := new(MockVehicles), new(MockShipments), new(MockTelemetry)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	vehicles.On("InsertVehicle", ctx, mock.MatchedBy(func(v models.Vehicle) bool {
		return v.ID == "V011" && v.Make == "Tesla" && v.Capacity() == 36
	})).Return(nil)
	shipments.On("InsertShipment", ctx, mock.MatchedBy(func(s models.Shipment) bool {
		return s.ID == "S016" && s.AssignedVehicleID == "V011" && s.Status == models.ShipmentPending
	})).Return(nil)
	telemetry.On("InsertTelemetry", ctx, mock.MatchedBy(func(r models.Telemetry) bool {
		return r.VehicleID == "V011" && r.Timestamp.Equal(demoSampleTime)
	})).Return(nil)

	vehicles.On("FindVehicles", ctx, db.CapacityAbove(20)).Return(seed.Vehicles()[:3], nil)
	vehicles.On("FindVehicles", ctx, db.MakeMatches("Mercedes")).Return(seed.Vehicles()[:1], nil)
	shipments.On("FindShipments", ctx, db.HeavyInTransit(10)).Return(seed.Shipments()[7:8], nil)
	shipments.On("FindShipments", ctx, db.PriorityIn("high", "medium")).Return(seed.Shipments()[:2], nil)
	telemetry.On("FindTelemetry", ctx, db.FuelLevelBetween(80, 90)).Return(seed.Telemetry()[:1], nil)

	shipments.On("UpdateShipment", ctx, "S016", bson.M{"status": models.ShipmentInTransit}).Return(int64(1), nil)
	shipments.On("UpdateShipments", ctx, db.PendingFrom("Sofia"), bson.M{"status": models.ShipmentInTransit}).Return(int64(1), nil)
	telemetry.On("IncEngineTemp", ctx, "V011", demoSampleTime, 10.0).Return(int64(1), nil)
	vehicles.On("PushMaintenance", ctx, "V011", models.MaintenanceEntry{Date: now, Description: "Initial inspection"}).Return(int64(1), nil)
	vehicles.On("PullMaintenance", ctx, "V001", "Oil change").Return(int64(1), nil)

	telemetry.On("DeleteTelemetry", ctx, "V011", demoSampleTime).Return(int64(1), nil)
	telemetry.On("DeleteTelemetryBefore", ctx, staleCutoff).Return(int64(7), nil)
	vehicles.On("DeleteVehicle", ctx, "V011").Return(int64(1), nil)
	shipments.On("DeleteShipment", ctx, "S016").Return(int64(1), nil)

	var out bytes.Buffer
	run := crudRun{out: &out, vehicles: vehicles, shipments: shipments, telemetry: telemetry, now: func() time.Time { return now }}
	require.NoError(t, run.all(ctx))

	vehicles.AssertExpectations(t)
	shipments.AssertExpectations(t)
	telemetry.AssertExpectations(t)

	text := out.String()
	for _, want := range []string{
		"=== CREATE OPERATIONS ===",
		"Created vehicle: V011",
		"S008: Blagoevgrad -> Kyustendil (22t, medium, in-transit)",
		"Vehicle V001 at 2023-10-01 08:00: 85.5% fuel, 80 km/h",
		"Updated pending Sofia shipments: 1",
		"Deleted old telemetry records: 7",
		"Deleted test shipment: 1",
	} {
		assert.Contains(t, text, want)
	}
}

func TestCrudRun_StopsOnError(t *testing.T) {
	ctx := context.Background()
	vehicles := new(MockVehicles)
	vehicles.On("InsertVehicle", ctx, mock.Anything).Return(errors.New("duplicate key"))

	run := crudRun{out: new(bytes.Buffer), vehicles: vehicles, shipments: new(MockShipments), telemetry: new(MockTelemetry), now: time.Now}
	err := run.all(ctx)
	assert.ErrorContains(t, err, "CREATE: duplicate key")
}
