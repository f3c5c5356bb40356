package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/report"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TelemetrySink stores one telemetry record.
type TelemetrySink interface {
	InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error
}

// DocumentSource returns the documents of a collection as stored. When the
// report source also implements it, the list endpoints serve raw documents
// instead of re-encoded models.
type DocumentSource interface {
	Documents(ctx context.Context, collection string) ([]bson.M, error)
}

// FleetHandler serves the collection read endpoints, telemetry ingest and
// the reports.
type FleetHandler struct {
	source report.Source
	sink   TelemetrySink
	engine *report.Engine
	log    *logrus.Entry
}

// NewFleetHandler returns a handler reading from source and writing
// telemetry to sink.
func NewFleetHandler(source report.Source, sink TelemetrySink, logger *logrus.Entry) *FleetHandler {
	return &FleetHandler{
		source: source,
		sink:   sink,
		engine: report.NewEngine(source),
		log:    logger,
	}
}

// Vehicles lists every vehicle.
func (h *FleetHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	h.list(w, r, "vehicles", func(ctx context.Context) (interface{}, error) {
		return h.source.LoadVehicles(ctx)
	})
}

// Shipments lists every shipment.
func (h *FleetHandler) Shipments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	h.list(w, r, "shipments", func(ctx context.Context) (interface{}, error) {
		return h.source.LoadShipments(ctx)
	})
}

// Telemetry lists telemetry on GET and stores one record on POST.
func (h *FleetHandler) Telemetry(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, "telemetry", func(ctx context.Context) (interface{}, error) {
			return h.source.LoadTelemetry(ctx)
		})
	case http.MethodPost:
		h.ingestTelemetry(w, r)
	default:
		methodNotAllowed(w)
	}
}

// list writes the documents of collection, falling back to the typed
// loader when the source cannot return raw documents.
func (h *FleetHandler) list(w http.ResponseWriter, r *http.Request, collection string, typed func(context.Context) (interface{}, error)) {
	var (
		docs interface{}
		err  error
	)
	if raw, ok := h.source.(DocumentSource); ok {
		docs, err = raw.Documents(r.Context(), collection)
	} else {
		docs, err = typed(r.Context())
	}
	if err != nil {
		h.storageError(w, collection, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *FleetHandler) ingestTelemetry(w http.ResponseWriter, r *http.Request) {
	var record models.Telemetry
	if err := decodeJSON(w, r, &record); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := models.Validate(record); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record.ID = primitive.NewObjectID()
	if err := h.sink.InsertTelemetry(r.Context(), record); err != nil {
		h.storageError(w, "telemetry", err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"vehicle_id": record.VehicleID,
		"timestamp":  record.Timestamp,
	}).Debug("Telemetry stored")
	writeJSON(w, http.StatusCreated, record)
}

// Reports lists the available reports, or on ?format=xlsx downloads all of
// them as one workbook.
func (h *FleetHandler) Reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if r.URL.Query().Get("format") != "xlsx" {
		writeJSON(w, http.StatusOK, report.List())
		return
	}
	tables, err := h.engine.RunAll(r.Context())
	if err != nil {
		h.reportError(w, "all", err)
		return
	}
	h.writeWorkbook(w, "fleet-reports", tables)
}

// Report runs the report named by the path suffix after /reports/.
func (h *FleetHandler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/reports/"), "/")
	table, err := h.engine.Run(r.Context(), name)
	if err != nil {
		h.reportError(w, name, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, table)
	case "xlsx":
		h.writeWorkbook(w, name, []report.Table{table})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}

func (h *FleetHandler) writeWorkbook(w http.ResponseWriter, filename string, tables []report.Table) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, tables...); err != nil {
		h.log.WithError(err).Error("Failed to build workbook")
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *FleetHandler) storageError(w http.ResponseWriter, collection string, err error) {
	h.log.WithError(err).WithField("collection", collection).Error("Storage request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *FleetHandler) reportError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, report.ErrUnknownReport) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.WithError(err).WithField("report", name).Error("Report failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
