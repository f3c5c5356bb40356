package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Table is a report result with its presentation metadata. Rows holds the
// typed rows for JSON; Cells holds the same data column by column.
type Table struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Columns []string        `json:"columns"`
	Rows    interface{}     `json:"rows"`
	Cells   [][]interface{} `json:"-"`
}

// Info describes a registered report.
type Info struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type row interface {
	cells() []interface{}
}

type runner func(ctx context.Context, e *Engine) (interface{}, [][]interface{}, error)

type definition struct {
	name    string
	title   string
	columns []string
	run     runner
}

func collect[R row](fn func(*Engine, context.Context) ([]R, error)) runner {
	return func(ctx context.Context, e *Engine) (interface{}, [][]interface{}, error) {
		rows, err := fn(e, ctx)
		if err != nil {
			return nil, nil, err
		}
		cells := make([][]interface{}, len(rows))
		for i, r := range rows {
			cells[i] = r.cells()
		}
		return rows, cells, nil
	}
}

var registry = []definition{
	{
		name:    "fuel-consumption",
		title:   "Average Fuel Consumption per Vehicle",
		columns: []string{"Vehicle", "Avg Fuel %", "Count", "Min Fuel %", "Max Fuel %"},
		run:     collect((*Engine).FuelConsumption),
	},
	{
		name:    "shipment-weight",
		title:   "Total Shipment Weight by Status",
		columns: []string{"Status", "Total Weight (t)", "Count", "Avg Weight (t)"},
		run:     collect((*Engine).ShipmentWeightByStatus),
	},
	{
		name:    "maintenance",
		title:   "Vehicles with Maintenance History",
		columns: []string{"Vehicle", "Make", "Model", "Maintenance Count", "Last Maintenance"},
		run:     collect((*Engine).VehiclesWithMaintenance),
	},
	{
		name:    "in-transit",
		title:   "In-Transit Shipments with Vehicle Details",
		columns: []string{"Shipment", "Origin", "Destination", "Weight (t)", "Priority", "Status", "Vehicle Make", "Vehicle Model", "Capacity (t)"},
		run:     collect((*Engine).InTransitShipments),
	},
	{
		name:    "vehicle-performance",
		title:   "Vehicle Performance Analysis",
		columns: []string{"Vehicle", "Make", "Model", "Avg Speed (km/h)", "Avg Fuel %", "Avg Engine Temp (°C)", "Data Points"},
		run:     collect((*Engine).VehiclePerformance),
	},
	{
		name:    "high-priority",
		title:   "High Priority Shipments by Destination",
		columns: []string{"Destination", "Count", "Total Weight (t)", "Avg Weight (t)"},
		run:     collect((*Engine).HighPriorityByDestination),
	},
}

// Names lists the registered report names in presentation order.
func Names() []string {
	names := make([]string, len(registry))
	for i, d := range registry {
		names[i] = d.name
	}
	return names
}

// List describes the registered reports.
func List() []Info {
	infos := make([]Info, len(registry))
	for i, d := range registry {
		infos[i] = Info{Name: d.name, Title: d.title}
	}
	return infos
}

// Run executes the named report.
func (e *Engine) Run(ctx context.Context, name string) (Table, error) {
	for _, d := range registry {
		if d.name != name {
			continue
		}
		rows, cells, err := d.run(ctx, e)
		if err != nil {
			return Table{}, fmt.Errorf("%s: %w", name, err)
		}
		return Table{Name: d.name, Title: d.title, Columns: d.columns, Rows: rows, Cells: cells}, nil
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}

// RunAll executes every registered report, stopping at the first failure.
func (e *Engine) RunAll(ctx context.Context) ([]Table, error) {
	tables := make([]Table, 0, len(registry))
	for _, d := range registry {
		t, err := e.Run(ctx, d.name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// WriteText renders the table as aligned plain text.
func (t Table) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n=== %s ===\n", t.Title); err != nil {
		return err
	}
	if len(t.Cells) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, r := range t.Cells {
		vals := make([]string, len(r))
		for i, c := range r {
			vals[i] = formatCell(c)
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}

func formatCell(v interface{}) string {
	switch c := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", c)
	case time.Time:
		return c.UTC().Format("2006-01-02")
	default:
		return fmt.Sprint(c)
	}
}

func (r FuelConsumptionRow) cells() []interface{} {
	return []interface{}{r.VehicleID, r.AvgFuelLevel, r.Count, r.MinFuel, r.MaxFuel}
}

func (r ShipmentWeightRow) cells() []interface{} {
	return []interface{}{r.Status, r.TotalWeight, r.Count, r.AvgWeight}
}

func (r MaintenanceRow) cells() []interface{} {
	return []interface{}{r.VehicleID, r.Make, r.Model, r.MaintenanceCount, r.LastMaintenance}
}

func (r InTransitRow) cells() []interface{} {
	return []interface{}{r.ShipmentID, r.Origin, r.Destination, r.Weight, r.Priority, r.Status, r.VehicleMake, r.VehicleModel, r.VehicleCapacity}
}

func (r PerformanceRow) cells() []interface{} {
	return []interface{}{r.VehicleID, r.Make, r.Model, r.AvgSpeed, r.AvgFuelLevel, r.AvgEngineTemp, r.DataPoints}
}

func (r DestinationRow) cells() []interface{} {
	return []interface{}{r.Destination, r.Count, r.TotalWeight, r.AvgWeight}
}
