package main

import (
	"fmt"
	"io"

	"github.com/ukydev/fleet-tracking/internal/models"
)

func value(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

func printVehicles(w io.Writer, vehicles []models.Vehicle) {
	for _, v := range vehicles {
		fmt.Fprintf(w, "%s: %s %s - %st\n", v.ID, v.Make, v.Model, value(v.LoadCapacity))
	}
	fmt.Fprintf(w, "(%d vehicles)\n", len(vehicles))
}

func printShipments(w io.Writer, shipments []models.Shipment) {
	for _, s := range shipments {
		fmt.Fprintf(w, "%s: %s -> %s (%st, %s, %s)\n", s.ID, s.Origin, s.Destination, value(s.Weight), s.Priority, s.Status)
	}
	fmt.Fprintf(w, "(%d shipments)\n", len(shipments))
}

func printTelemetry(w io.Writer, records []models.Telemetry) {
	for _, t := range records {
		fmt.Fprintf(w, "Vehicle %s at %s: %s%% fuel, %s km/h\n",
			t.VehicleID, t.Timestamp.UTC().Format("2006-01-02 15:04"), value(t.Metrics.FuelLevel), value(t.Metrics.Speed))
	}
	fmt.Fprintf(w, "(%d samples)\n", len(records))
}
