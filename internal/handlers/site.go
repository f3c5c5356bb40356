package handlers

import (
	"context"
	"net/http"
	"time"
)

// Index describes the API.
func Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "IoT Fleet Tracking API",
		"endpoints": map[string]string{
			"vehicles":  "/vehicles",
			"shipments": "/shipments",
			"telemetry": "/telemetry",
			"reports":   "/reports",
			"dashboard": "/dashboard",
			"health":    "/health",
		},
	})
}

// Health reports whether the storage backend answers within two seconds.
// A nil check always reports ok.
func Health(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Dashboard serves the dashboard page.
func Dashboard(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

// Root redirects to the dashboard; any other unmatched path is a 404.
func Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
