package report

import (
	"sort"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// FuelConsumptionRow is one vehicle in the average fuel consumption report (R1).
type FuelConsumptionRow struct {
	VehicleID    string  `json:"vehicle_id"`
	AvgFuelLevel float64 `json:"avgFuelLevel"`
	Count        int     `json:"count"`
	MinFuel      float64 `json:"minFuel"`
	MaxFuel      float64 `json:"maxFuel"`
}

// ShipmentWeightRow is one status in the shipment weight report (R2).
type ShipmentWeightRow struct {
	Status      string  `json:"status"`
	TotalWeight float64 `json:"totalWeight"`
	Count       int     `json:"count"`
	AvgWeight   float64 `json:"avgWeight"`
}

// MaintenanceRow is one vehicle in the maintenance history report (R3).
type MaintenanceRow struct {
	VehicleID        string    `json:"vehicle_id"`
	Make             string    `json:"make"`
	Model            string    `json:"model"`
	MaintenanceCount int       `json:"maintenanceCount"`
	LastMaintenance  time.Time `json:"lastMaintenance"`
}

// InTransitRow is one shipment joined with its vehicle (R4).
type InTransitRow struct {
	ShipmentID      string  `json:"_id"`
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	Weight          float64 `json:"weight"`
	Priority        string  `json:"priority"`
	Status          string  `json:"status"`
	VehicleMake     string  `json:"vehicle_make"`
	VehicleModel    string  `json:"vehicle_model"`
	VehicleCapacity float64 `json:"vehicle_capacity"`
}

// PerformanceRow aggregates the telemetry of one vehicle (R5).
type PerformanceRow struct {
	VehicleID     string  `json:"vehicle_id"`
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	AvgSpeed      float64 `json:"avgSpeed"`
	AvgFuelLevel  float64 `json:"avgFuelLevel"`
	AvgEngineTemp float64 `json:"avgEngineTemp"`
	DataPoints    int     `json:"dataPoints"`
}

// DestinationRow aggregates open high-priority shipments per destination (R6).
type DestinationRow struct {
	Destination string  `json:"destination"`
	Count       int     `json:"count"`
	TotalWeight float64 `json:"totalWeight"`
	AvgWeight   float64 `json:"avgWeight"`
}

// MinDataPoints is the smallest telemetry group kept by VehiclePerformance.
const MinDataPoints = 2

// FuelConsumption groups telemetry by vehicle and reports the mean, minimum
// and maximum fuel level, highest mean first.
func FuelConsumption(records []models.Telemetry) ([]FuelConsumptionRow, error) {
	g := newGroups[string, stats]()
	for _, t := range records {
		if err := checkSample(t, "VehicleID", "Metrics.FuelLevel"); err != nil {
			return nil, err
		}
		g.get(t.VehicleID).add(*t.Metrics.FuelLevel)
	}
	rows := make([]FuelConsumptionRow, 0, len(g.keys))
	g.each(func(id string, s *stats) {
		rows = append(rows, FuelConsumptionRow{
			VehicleID:    id,
			AvgFuelLevel: s.mean(),
			Count:        s.n,
			MinFuel:      s.min,
			MaxFuel:      s.max,
		})
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AvgFuelLevel > rows[j].AvgFuelLevel })
	return rows, nil
}

// ShipmentWeightByStatus sums shipment weight per status, heaviest first.
func ShipmentWeightByStatus(shipments []models.Shipment) ([]ShipmentWeightRow, error) {
	g := newGroups[string, stats]()
	for _, s := range shipments {
		if err := checkShipment(s, "Status", "Weight"); err != nil {
			return nil, err
		}
		g.get(s.Status).add(*s.Weight)
	}
	rows := make([]ShipmentWeightRow, 0, len(g.keys))
	g.each(func(status string, s *stats) {
		rows = append(rows, ShipmentWeightRow{
			Status:      status,
			TotalWeight: s.sum,
			Count:       s.n,
			AvgWeight:   s.mean(),
		})
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalWeight > rows[j].TotalWeight })
	return rows, nil
}

// VehiclesWithMaintenance flattens every vehicle's maintenance history and
// regroups it per vehicle. Vehicles with no entries do not appear.
func VehiclesWithMaintenance(vehicles []models.Vehicle) ([]MaintenanceRow, error) {
	g := newGroups[string, MaintenanceRow]()
	for _, v := range vehicles {
		if len(v.MaintenanceHistory) == 0 {
			continue
		}
		if err := checkVehicle(v, "ID", "Make", "Model"); err != nil {
			return nil, err
		}
		for _, entry := range v.MaintenanceHistory {
			if err := models.Validate(entry); err != nil {
				return nil, malformed("vehicle", v.ID, err)
			}
			row := g.get(v.ID)
			if row.MaintenanceCount == 0 {
				row.VehicleID, row.Make, row.Model = v.ID, v.Make, v.Model
			}
			row.MaintenanceCount++
			if entry.Date.After(row.LastMaintenance) {
				row.LastMaintenance = entry.Date
			}
		}
	}
	rows := make([]MaintenanceRow, 0, len(g.keys))
	g.each(func(_ string, row *MaintenanceRow) {
		rows = append(rows, *row)
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].MaintenanceCount > rows[j].MaintenanceCount })
	return rows, nil
}

// indexVehicles builds the lookup side of a hash join on vehicle ID. IDs are
// expected to be unique but duplicates yield one match each.
func indexVehicles(vehicles []models.Vehicle) map[string][]models.Vehicle {
	idx := make(map[string][]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		idx[v.ID] = append(idx[v.ID], v)
	}
	return idx
}

// InTransitShipments joins in-transit shipments with their assigned vehicle,
// heaviest first. Shipments whose vehicle does not exist are left out.
func InTransitShipments(shipments []models.Shipment, vehicles []models.Vehicle) ([]InTransitRow, error) {
	idx := indexVehicles(vehicles)
	rows := make([]InTransitRow, 0)
	for _, s := range shipments {
		if s.Status != models.ShipmentInTransit {
			continue
		}
		matches := idx[s.AssignedVehicleID]
		if len(matches) == 0 {
			continue
		}
		if err := checkShipment(s, "ID", "Destination", "Priority", "Weight"); err != nil {
			return nil, err
		}
		for _, v := range matches {
			if err := checkVehicle(v, "Make", "Model", "LoadCapacity"); err != nil {
				return nil, err
			}
			rows = append(rows, InTransitRow{
				ShipmentID:      s.ID,
				Origin:          s.Origin,
				Destination:     s.Destination,
				Weight:          *s.Weight,
				Priority:        s.Priority,
				Status:          s.Status,
				VehicleMake:     v.Make,
				VehicleModel:    v.Model,
				VehicleCapacity: *v.LoadCapacity,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Weight > rows[j].Weight })
	return rows, nil
}

type vehicleKey struct {
	id, make, model string
}

type performance struct {
	speed, fuel, temp stats
}

// VehiclePerformance joins telemetry with vehicles and averages speed, fuel
// level and engine temperature per vehicle. Vehicles with fewer than
// MinDataPoints samples, or without a vehicle record, are left out.
func VehiclePerformance(records []models.Telemetry, vehicles []models.Vehicle) ([]PerformanceRow, error) {
	idx := indexVehicles(vehicles)
	g := newGroups[vehicleKey, performance]()
	for _, t := range records {
		matches := idx[t.VehicleID]
		if len(matches) == 0 {
			continue
		}
		if err := checkSample(t, "Metrics.Speed", "Metrics.FuelLevel", "Metrics.EngineTemp"); err != nil {
			return nil, err
		}
		for _, v := range matches {
			if err := checkVehicle(v, "Make", "Model"); err != nil {
				return nil, err
			}
			p := g.get(vehicleKey{id: t.VehicleID, make: v.Make, model: v.Model})
			p.speed.add(*t.Metrics.Speed)
			p.fuel.add(*t.Metrics.FuelLevel)
			p.temp.add(*t.Metrics.EngineTemp)
		}
	}
	rows := make([]PerformanceRow, 0, len(g.keys))
	g.each(func(k vehicleKey, p *performance) {
		if p.speed.n < MinDataPoints {
			return
		}
		rows = append(rows, PerformanceRow{
			VehicleID:     k.id,
			Make:          k.make,
			Model:         k.model,
			AvgSpeed:      p.speed.mean(),
			AvgFuelLevel:  p.fuel.mean(),
			AvgEngineTemp: p.temp.mean(),
			DataPoints:    p.speed.n,
		})
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AvgSpeed > rows[j].AvgSpeed })
	return rows, nil
}

// HighPriorityByDestination groups high-priority shipments that are not yet
// delivered by destination, busiest destination first.
func HighPriorityByDestination(shipments []models.Shipment) ([]DestinationRow, error) {
	g := newGroups[string, stats]()
	for _, s := range shipments {
		if s.Priority != models.PriorityHigh || s.Status == models.ShipmentDelivered {
			continue
		}
		if err := checkShipment(s, "Destination", "Weight"); err != nil {
			return nil, err
		}
		g.get(s.Destination).add(*s.Weight)
	}
	rows := make([]DestinationRow, 0, len(g.keys))
	g.each(func(dest string, s *stats) {
		rows = append(rows, DestinationRow{
			Destination: dest,
			Count:       s.n,
			TotalWeight: s.sum,
			AvgWeight:   s.mean(),
		})
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows, nil
}
