package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/report"
	"github.com/ukydev/fleet-tracking/internal/seed"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) LoadVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]models.Vehicle)
	return v, args.Error(1)
}

func (m *MockSource) LoadShipments(ctx context.Context) ([]models.Shipment, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]models.Shipment)
	return s, args.Error(1)
}

func (m *MockSource) LoadTelemetry(ctx context.Context) ([]models.Telemetry, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).([]models.Telemetry)
	return t, args.Error(1)
}

type MockDocumentSource struct {
	MockSource
}

func (m *MockDocumentSource) Documents(ctx context.Context, collection string) ([]bson.M, error) {
	args := m.Called(ctx, collection)
	docs, _ := args.Get(0).([]bson.M)
	return docs, args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error {
	args := m.Called(ctx, telemetry)
	return args.Error(0)
}

func seededHandler() *FleetHandler {
	snap := report.Snapshot{Vehicles: seed.Vehicles(), Shipments: seed.Shipments(), Telemetry: seed.Telemetry()}
	return NewFleetHandler(snap, new(MockSink), testLogger())
}

func TestFleetHandler_Lists(t *testing.T) {
	h := seededHandler()

	tests := []struct {
		path    string
		handler http.HandlerFunc
		want    int
	}{
		{"/vehicles", h.Vehicles, 10},
		{"/shipments", h.Shipments, 15},
		{"/telemetry", h.Telemetry, 20},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var docs []map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
			assert.Len(t, docs, tt.want)
		})
	}

	t.Run("vehicle document shape", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Vehicles(w, httptest.NewRequest(http.MethodGet, "/vehicles", nil))
		var docs []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
		assert.Equal(t, "V001", docs[0]["_id"])
		assert.Equal(t, 25.0, docs[0]["load_capacity"])
		assert.Len(t, docs[0]["maintenance_history"], 2)
	})
}

func TestFleetHandler_StorageFailure(t *testing.T) {
	src := new(MockSource)
	src.On("LoadShipments", mock.Anything).Return(nil, errors.New("server selection timeout"))
	h := NewFleetHandler(src, new(MockSink), testLogger())

	w := httptest.NewRecorder()
	h.Shipments(w, httptest.NewRequest(http.MethodGet, "/shipments", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"server selection timeout"}`, w.Body.String())
}

func TestFleetHandler_ListsStoredDocuments(t *testing.T) {
	src := new(MockDocumentSource)
	src.On("Documents", mock.Anything, "vehicles").Return([]bson.M{{
		"_id": "V1", "make": "Scania", "model": "R450", "load_capacity": 20.0,
		"vin": "ABC123", "driver": "Ivan",
	}}, nil)
	src.On("Documents", mock.Anything, "telemetry").Return(nil, errors.New("cursor killed"))
	h := NewFleetHandler(src, new(MockSink), testLogger())

	w := httptest.NewRecorder()
	h.Vehicles(w, httptest.NewRequest(http.MethodGet, "/vehicles", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"_id":"V1","make":"Scania","model":"R450","load_capacity":20,"vin":"ABC123","driver":"Ivan"}]`, w.Body.String())

	w = httptest.NewRecorder()
	h.Telemetry(w, httptest.NewRequest(http.MethodGet, "/telemetry", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"cursor killed"}`, w.Body.String())

	src.AssertExpectations(t)
	src.AssertNotCalled(t, "LoadVehicles", mock.Anything)
}

func TestFleetHandler_MethodNotAllowed(t *testing.T) {
	h := seededHandler()
	w := httptest.NewRecorder()
	h.Vehicles(w, httptest.NewRequest(http.MethodDelete, "/vehicles", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestFleetHandler_PostTelemetry(t *testing.T) {
	valid := `{"vehicle_id":"V001","timestamp":"2023-10-15T08:00:00Z","gps":{"lat":42.6977,"lng":23.3219},"metrics":{"speed":0,"fuel_level":100,"engine_temp":25}}`

	t.Run("stores valid record", func(t *testing.T) {
		sink := new(MockSink)
		sink.On("InsertTelemetry", mock.Anything, mock.MatchedBy(func(rec models.Telemetry) bool {
			return rec.VehicleID == "V001" && !rec.ID.IsZero() &&
				rec.Timestamp.Equal(time.Date(2023, 10, 15, 8, 0, 0, 0, time.UTC)) &&
				*rec.Metrics.FuelLevel == 100
		})).Return(nil)
		h := NewFleetHandler(report.Snapshot{}, sink, testLogger())

		w := httptest.NewRecorder()
		h.Telemetry(w, httptest.NewRequest(http.MethodPost, "/telemetry", strings.NewReader(valid)))

		assert.Equal(t, http.StatusCreated, w.Code)
		sink.AssertExpectations(t)
	})

	t.Run("rejects missing metrics", func(t *testing.T) {
		sink := new(MockSink)
		h := NewFleetHandler(report.Snapshot{}, sink, testLogger())

		w := httptest.NewRecorder()
		body := `{"vehicle_id":"V001","timestamp":"2023-10-15T08:00:00Z","metrics":{"speed":10}}`
		h.Telemetry(w, httptest.NewRequest(http.MethodPost, "/telemetry", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "FuelLevel")
		sink.AssertNotCalled(t, "InsertTelemetry", mock.Anything, mock.Anything)
	})

	t.Run("rejects bad json", func(t *testing.T) {
		h := NewFleetHandler(report.Snapshot{}, new(MockSink), testLogger())
		w := httptest.NewRecorder()
		h.Telemetry(w, httptest.NewRequest(http.MethodPost, "/telemetry", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		sink := new(MockSink)
		h := NewFleetHandler(report.Snapshot{}, sink, testLogger())
		padded := `{"vehicle_id":"V001","note":"` + strings.Repeat("x", maxBodyBytes) + `"}`

		w := httptest.NewRecorder()
		h.Telemetry(w, httptest.NewRequest(http.MethodPost, "/telemetry", strings.NewReader(padded)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())
		sink.AssertNotCalled(t, "InsertTelemetry", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		sink := new(MockSink)
		sink.On("InsertTelemetry", mock.Anything, mock.Anything).Return(errors.New("not primary"))
		h := NewFleetHandler(report.Snapshot{}, sink, testLogger())

		w := httptest.NewRecorder()
		h.Telemetry(w, httptest.NewRequest(http.MethodPost, "/telemetry", strings.NewReader(valid)))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestFleetHandler_Reports(t *testing.T) {
	h := seededHandler()

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Reports(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var infos []report.Info
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
		assert.Len(t, infos, 6)
	})

	t.Run("one report", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Report(w, httptest.NewRequest(http.MethodGet, "/reports/shipment-weight", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var table struct {
			Name    string                   `json:"name"`
			Columns []string                 `json:"columns"`
			Rows    []map[string]interface{} `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
		assert.Equal(t, "shipment-weight", table.Name)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, "delivered", table.Rows[0]["status"])
		assert.Equal(t, 70.0, table.Rows[0]["totalWeight"])
		assert.Equal(t, 14.0, table.Rows[0]["avgWeight"])
	})

	t.Run("unknown report", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Report(w, httptest.NewRequest(http.MethodGet, "/reports/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Report(w, httptest.NewRequest(http.MethodGet, "/reports/maintenance?format=pdf", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("xlsx download", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Report(w, httptest.NewRequest(http.MethodGet, "/reports/in-transit?format=xlsx", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "in-transit.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("in-transit")
		require.NoError(t, err)
		assert.Len(t, rows, 6)
		assert.Equal(t, "S008", rows[1][0])
	})

	t.Run("all reports as xlsx", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Reports(w, httptest.NewRequest(http.MethodGet, "/reports?format=xlsx", nil))
		require.Equal(t, http.StatusOK, w.Code)

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, report.Names(), f.GetSheetList())
	})

	t.Run("source failure", func(t *testing.T) {
		src := new(MockSource)
		src.On("LoadTelemetry", mock.Anything).Return(nil, errors.New("timeout"))
		h := NewFleetHandler(src, new(MockSink), testLogger())

		w := httptest.NewRecorder()
		h.Report(w, httptest.NewRequest(http.MethodGet, "/reports/fuel-consumption", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "report source unavailable")
	})
}
