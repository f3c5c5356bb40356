package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-tracking/internal/report"
	"github.com/ukydev/fleet-tracking/internal/seed"
	"github.com/ukydev/fleet-tracking/internal/snapshot"
	"github.com/xuri/excelize/v2"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.db")
	s, err := snapshot.Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(context.Background(), report.Snapshot{
		Vehicles: seed.Vehicles(), Shipments: seed.Shipments(), Telemetry: seed.Telemetry(),
	}))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	app := New()
	var out bytes.Buffer
	app.cmd.SetOut(&out)
	app.cmd.SetErr(&out)
	app.cmd.SetArgs(args)
	err := app.Execute()
	return out.String(), err
}

func TestReportCmd(t *testing.T) {
	path := writeSnapshot(t)

	t.Run("named report", func(t *testing.T) {
		out, err := run(t, "report", "shipment-weight", "--snapshot", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Total Shipment Weight by Status")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.True(t, strings.HasPrefix(lines[2], "delivered"))
		assert.Contains(t, lines[2], "70.00")
	})

	t.Run("all reports to workbook", func(t *testing.T) {
		xlsx := filepath.Join(t.TempDir(), "reports.xlsx")
		out, err := run(t, "report", "--snapshot", path, "--xlsx", xlsx)
		require.NoError(t, err)
		for _, info := range report.List() {
			assert.Contains(t, out, info.Title)
		}

		f, err := excelize.OpenFile(xlsx)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, report.Names(), f.GetSheetList())
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := run(t, "report", "fuel", "--snapshot", path)
		assert.ErrorIs(t, err, report.ErrUnknownReport)
	})
}

func TestSnapshotFlag_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "typo.db")

	_, err := run(t, "report", "--snapshot", missing)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = run(t, "find", "vehicles", "--capacity-above", "20", "--snapshot", missing)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(missing)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "the missing snapshot must not be created")
}

func TestFindCmd_Snapshot(t *testing.T) {
	path := writeSnapshot(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"capacity", []string{"find", "vehicles", "--capacity-above", "20"}, "(8 vehicles)"},
		{"make", []string{"find", "vehicles", "--make", "Mercedes"}, "(2 vehicles)"},
		{"heavy in transit", []string{"find", "shipments", "--in-transit-above", "10"}, "(2 shipments)"},
		{"priority", []string{"find", "shipments", "--priority", "high,medium"}, "(10 shipments)"},
		{"fuel range", []string{"find", "telemetry", "--fuel-between", "75,80"}, "(5 samples)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(tt.args, "--snapshot", path)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	t.Run("heavy in transit lists S008 first", func(t *testing.T) {
		out, err := run(t, "find", "shipments", "--in-transit-above", "10", "--snapshot", path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "S008: Blagoevgrad -> Kyustendil (22t"), out)
	})
}

func TestFindCmd_FlagErrors(t *testing.T) {
	path := writeSnapshot(t)

	_, err := run(t, "find", "vehicles", "--snapshot", path)
	assert.ErrorContains(t, err, "exactly one of")

	_, err = run(t, "find", "vehicles", "--make", "Volvo", "--capacity-above", "1", "--snapshot", path)
	assert.ErrorContains(t, err, "exactly one of")

	_, err = run(t, "find", "telemetry", "--fuel-between", "90,80", "--snapshot", path)
	assert.ErrorContains(t, err, "LO <= HI")

	_, err = run(t, "find", "vehicles", "--make", "(", "--snapshot", path)
	assert.ErrorContains(t, err, "invalid make pattern")
}
