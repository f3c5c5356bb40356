package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Fleet *FleetHandler
	// Auth serves the /api/auth endpoints; nil leaves them unmounted.
	Auth    *AuthHandler
	AuthMW  *middleware.AuthMiddleware
	Limiter *middleware.RateLimitMiddleware
	Static  http.Handler
	Page    []byte
	Health  func(context.Context) error
	Logger  *logrus.Entry
	Timeout time.Duration
	// RateLimit is the number of requests allowed per client per minute.
	RateLimit int
}

// NewRouter builds the dashboard's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	guard := func(permission string, h http.HandlerFunc) http.Handler {
		return cfg.AuthMW.RequirePermission(permission)(h)
	}

	mux.HandleFunc("/", Root)
	mux.Handle("/dashboard", Dashboard(cfg.Page))
	mux.Handle("/static/", http.StripPrefix("/static/", cfg.Static))
	mux.HandleFunc("/api", Index)
	mux.Handle("/health", Health(cfg.Health))

	mux.Handle("/vehicles", guard(models.PermViewVehicles, cfg.Fleet.Vehicles))
	mux.Handle("/shipments", guard(models.PermViewShipments, cfg.Fleet.Shipments))
	mux.Handle("/telemetry", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		permission := models.PermViewTelemetry
		if r.Method == http.MethodPost {
			permission = models.PermIngestTelemetry
		}
		guard(permission, cfg.Fleet.Telemetry).ServeHTTP(w, r)
	}))
	mux.Handle("/reports", guard(models.PermViewReports, cfg.Fleet.Reports))
	mux.Handle("/reports/", guard(models.PermViewReports, cfg.Fleet.Report))

	if cfg.Auth != nil {
		mux.HandleFunc("/api/auth/login", cfg.Auth.Login)
		mux.HandleFunc("/api/auth/register", cfg.Auth.Register)
		mux.HandleFunc("/api/auth/profile", cfg.Auth.GetProfile)
	}

	var h http.Handler = mux
	if cfg.Timeout > 0 {
		h = http.TimeoutHandler(h, cfg.Timeout, `{"error":"request timed out"}`)
	}
	mws := []func(http.Handler) http.Handler{middleware.RequestLogger(cfg.Logger)}
	if cfg.Limiter != nil && cfg.RateLimit > 0 {
		mws = append(mws, cfg.Limiter.RateLimit(cfg.RateLimit, time.Minute))
	}
	mws = append(mws, cfg.AuthMW.Authenticate)
	return middleware.Chain(h, mws...)
}
