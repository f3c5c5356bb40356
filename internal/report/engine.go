// Package report computes the fleet dashboard reports. Every report is a
// pure function over full collection snapshots; Engine only wires those
// functions to a Source.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/fleet-tracking/internal/models"
)

var (
	// ErrSourceUnavailable wraps any failure to load an input collection.
	ErrSourceUnavailable = errors.New("report source unavailable")
	// ErrMalformedRecord is returned when a record lacks a field a report reads.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnknownReport is returned by Run for names not in the registry.
	ErrUnknownReport = errors.New("unknown report")
)

// Source loads the current contents of each collection.
type Source interface {
	LoadVehicles(ctx context.Context) ([]models.Vehicle, error)
	LoadShipments(ctx context.Context) ([]models.Shipment, error)
	LoadTelemetry(ctx context.Context) ([]models.Telemetry, error)
}

// Snapshot is an in-memory Source.
type Snapshot struct {
	Vehicles  []models.Vehicle   `json:"vehicles"`
	Shipments []models.Shipment  `json:"shipments"`
	Telemetry []models.Telemetry `json:"telemetry"`
}

func (s Snapshot) LoadVehicles(context.Context) ([]models.Vehicle, error)   { return s.Vehicles, nil }
func (s Snapshot) LoadShipments(context.Context) ([]models.Shipment, error) { return s.Shipments, nil }
func (s Snapshot) LoadTelemetry(context.Context) ([]models.Telemetry, error) {
	return s.Telemetry, nil
}

// Engine runs reports against a Source. It holds no other state and is safe
// for concurrent use.
type Engine struct {
	src Source
}

// NewEngine returns an Engine reading from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

func (e *Engine) vehicles(ctx context.Context) ([]models.Vehicle, error) {
	v, err := e.src.LoadVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicles: %w", ErrSourceUnavailable, err)
	}
	return v, nil
}

func (e *Engine) shipments(ctx context.Context) ([]models.Shipment, error) {
	s, err := e.src.LoadShipments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: shipments: %w", ErrSourceUnavailable, err)
	}
	return s, nil
}

func (e *Engine) telemetry(ctx context.Context) ([]models.Telemetry, error) {
	t, err := e.src.LoadTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: telemetry: %w", ErrSourceUnavailable, err)
	}
	return t, nil
}

// FuelConsumption runs R1 against the source.
func (e *Engine) FuelConsumption(ctx context.Context) ([]FuelConsumptionRow, error) {
	t, err := e.telemetry(ctx)
	if err != nil {
		return nil, err
	}
	return FuelConsumption(t)
}

// ShipmentWeightByStatus runs R2 against the source.
func (e *Engine) ShipmentWeightByStatus(ctx context.Context) ([]ShipmentWeightRow, error) {
	s, err := e.shipments(ctx)
	if err != nil {
		return nil, err
	}
	return ShipmentWeightByStatus(s)
}

// VehiclesWithMaintenance runs R3 against the source.
func (e *Engine) VehiclesWithMaintenance(ctx context.Context) ([]MaintenanceRow, error) {
	v, err := e.vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return VehiclesWithMaintenance(v)
}

// InTransitShipments runs R4 against the source.
func (e *Engine) InTransitShipments(ctx context.Context) ([]InTransitRow, error) {
	s, err := e.shipments(ctx)
	if err != nil {
		return nil, err
	}
	v, err := e.vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return InTransitShipments(s, v)
}

// VehiclePerformance runs R5 against the source.
func (e *Engine) VehiclePerformance(ctx context.Context) ([]PerformanceRow, error) {
	t, err := e.telemetry(ctx)
	if err != nil {
		return nil, err
	}
	v, err := e.vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return VehiclePerformance(t, v)
}

// HighPriorityByDestination runs R6 against the source.
func (e *Engine) HighPriorityByDestination(ctx context.Context) ([]DestinationRow, error) {
	s, err := e.shipments(ctx)
	if err != nil {
		return nil, err
	}
	return HighPriorityByDestination(s)
}

func malformed(kind, id string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrMalformedRecord, kind, id, err)
}
