package report

import (
	"fmt"
	"regexp"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// The filters below are in-memory equivalents of the read queries the CLI
// pushes down to the database. A missing numeric field never matches.

// VehiclesAboveCapacity returns vehicles whose load capacity exceeds min tons.
func VehiclesAboveCapacity(vehicles []models.Vehicle, min float64) []models.Vehicle {
	out := make([]models.Vehicle, 0)
	for _, v := range vehicles {
		if v.LoadCapacity != nil && *v.LoadCapacity > min {
			out = append(out, v)
		}
	}
	return out
}

// HeavyInTransit returns in-transit shipments heavier than min tons.
func HeavyInTransit(shipments []models.Shipment, min float64) []models.Shipment {
	out := make([]models.Shipment, 0)
	for _, s := range shipments {
		if s.Status == models.ShipmentInTransit && s.Weight != nil && *s.Weight > min {
			out = append(out, s)
		}
	}
	return out
}

// VehiclesByMake returns vehicles whose make matches the regular expression.
func VehiclesByMake(vehicles []models.Vehicle, pattern string) ([]models.Vehicle, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid make pattern: %w", err)
	}
	out := make([]models.Vehicle, 0)
	for _, v := range vehicles {
		if re.MatchString(v.Make) {
			out = append(out, v)
		}
	}
	return out, nil
}

// ShipmentsWithPriority returns shipments whose priority is one of priorities.
func ShipmentsWithPriority(shipments []models.Shipment, priorities ...string) []models.Shipment {
	set := make(map[string]struct{}, len(priorities))
	for _, p := range priorities {
		set[p] = struct{}{}
	}
	out := make([]models.Shipment, 0)
	for _, s := range shipments {
		if _, ok := set[s.Priority]; ok {
			out = append(out, s)
		}
	}
	return out
}

// TelemetryInFuelRange returns samples with lo <= fuel level <= hi.
func TelemetryInFuelRange(records []models.Telemetry, lo, hi float64) []models.Telemetry {
	out := make([]models.Telemetry, 0)
	for _, t := range records {
		f := t.Metrics.FuelLevel
		if f != nil && *f >= lo && *f <= hi {
			out = append(out, t)
		}
	}
	return out
}
