package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/auth"
	"github.com/ukydev/fleet-tracking/internal/config"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/handlers"
	"github.com/ukydev/fleet-tracking/internal/ingest"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/report"
	"github.com/ukydev/fleet-tracking/web"
)

// backend is the storage the server reads from and writes telemetry to.
type backend interface {
	report.Source
	handlers.TelemetrySink
}

// buildHandler wires the HTTP stack. users may be nil when auth is off.
func buildHandler(cfg config.Config, store backend, users db.UserCollection, health func(context.Context) error, logger *log.Entry) (http.Handler, error) {
	page, err := web.Index()
	if err != nil {
		return nil, err
	}

	var authService *auth.Service
	var authHandler *handlers.AuthHandler
	if cfg.AuthEnabled {
		authService, err = auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			return nil, err
		}
		authHandler = handlers.NewAuthHandler(authService, users, logger)
	}

	return handlers.NewRouter(handlers.RouterConfig{
		Fleet:     handlers.NewFleetHandler(store, store, logger),
		Auth:      authHandler,
		AuthMW:    middleware.NewAuthMiddleware(authService),
		Limiter:   middleware.NewRateLimitMiddleware(),
		Static:    web.Static(),
		Page:      page,
		Health:    health,
		Logger:    logger,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	}), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}
	logger := log.WithField("service", "fleet-tracking")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	store := db.NewStore(database)

	var users db.UserCollection
	if cfg.AuthEnabled {
		userColl := &db.MongoUserCollection{Collection: database.Collection(db.CollUsers)}
		if err := userColl.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create user indexes")
		}
		users = userColl
	}

	handler, err := buildHandler(cfg, store, users, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}, logger)
	if err != nil {
		log.WithError(err).Fatal("Failed to build HTTP handler")
	}

	if cfg.MQTTBroker != "" {
		sub := ingest.NewSubscriber(cfg.MQTTBroker, cfg.MQTTTopic, store.Telemetry, logger)
		if err := sub.Start(ctx); err != nil {
			log.WithError(err).Fatal("Failed to start MQTT ingest")
		}
		defer sub.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":         cfg.Port,
			"auth_enabled": cfg.AuthEnabled,
			"mqtt":         cfg.MQTTBroker != "",
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
}
