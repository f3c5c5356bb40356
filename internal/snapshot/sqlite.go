// Package snapshot keeps an offline copy of the fleet collections in a
// SQLite file so reports can run without a database server.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/report"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store is a SQLite snapshot file. Each row holds one document as JSON.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot: %w", err)
	}
	return s, nil
}

// OpenExisting opens the snapshot at path for reading. Unlike Open it fails
// when the file does not exist, so a mistyped path is not silently read as
// an empty fleet.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return Open(path)
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS telemetry (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		doc TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_telemetry_vehicle ON telemetry(vehicle_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot contents with snap in one transaction.
func (s *Store) Save(ctx context.Context, snap report.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"vehicles", "shipments", "telemetry"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, v := range snap.Vehicles {
		if err := insertDoc(ctx, tx, `INSERT INTO vehicles (id, doc) VALUES (?, ?)`, v, v.ID); err != nil {
			return fmt.Errorf("failed to insert vehicle %s: %w", v.ID, err)
		}
	}
	for _, sh := range snap.Shipments {
		if err := insertDoc(ctx, tx, `INSERT INTO shipments (id, doc) VALUES (?, ?)`, sh, sh.ID); err != nil {
			return fmt.Errorf("failed to insert shipment %s: %w", sh.ID, err)
		}
	}
	for i, t := range snap.Telemetry {
		err := insertDoc(ctx, tx, `INSERT INTO telemetry (vehicle_id, ts, doc) VALUES (?, ?, ?)`,
			t, t.VehicleID, t.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"))
		if err != nil {
			return fmt.Errorf("failed to insert telemetry #%d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertDoc runs query with args followed by doc encoded as JSON.
func insertDoc(ctx context.Context, tx *sql.Tx, query string, doc interface{}, args ...interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, append(args, string(raw))...)
	return err
}

func loadDocs[T any](ctx context.Context, db *sql.DB, table, order string) ([]T, error) {
	rows, err := db.QueryContext(ctx, "SELECT doc FROM "+table+" ORDER BY "+order)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	docs := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		var doc T
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// LoadVehicles returns the saved vehicles in insertion order.
func (s *Store) LoadVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return loadDocs[models.Vehicle](ctx, s.db, "vehicles", "rowid")
}

// LoadShipments returns the saved shipments in insertion order.
func (s *Store) LoadShipments(ctx context.Context) ([]models.Shipment, error) {
	return loadDocs[models.Shipment](ctx, s.db, "shipments", "rowid")
}

// LoadTelemetry returns the saved telemetry in insertion order.
func (s *Store) LoadTelemetry(ctx context.Context) ([]models.Telemetry, error) {
	return loadDocs[models.Telemetry](ctx, s.db, "telemetry", "seq")
}

// Capture reads every collection from source.
func Capture(ctx context.Context, source report.Source) (report.Snapshot, error) {
	var snap report.Snapshot
	var err error
	if snap.Vehicles, err = source.LoadVehicles(ctx); err != nil {
		return snap, fmt.Errorf("load vehicles: %w", err)
	}
	if snap.Shipments, err = source.LoadShipments(ctx); err != nil {
		return snap, fmt.Errorf("load shipments: %w", err)
	}
	if snap.Telemetry, err = source.LoadTelemetry(ctx); err != nil {
		return snap, fmt.Errorf("load telemetry: %w", err)
	}
	return snap, nil
}
