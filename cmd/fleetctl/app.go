package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/config"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/report"
	"github.com/ukydev/fleet-tracking/internal/snapshot"
	"go.mongodb.org/mongo-driver/mongo"
)

// App is the fleetctl command tree and the connections it opens.
type App struct {
	cmd    *cobra.Command
	cfg    config.Config
	client *mongo.Client
}

// New builds the fleetctl command tree.
func New() *App {
	a := &App{}
	var mongoURI, database string

	a.cmd = &cobra.Command{
		Use:           "fleetctl",
		Short:         "Fleet tracking database tool",
		Long:          "Seed, query, snapshot and report on the fleet tracking database.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if mongoURI != "" {
				cfg.MongoURI = mongoURI
			}
			if database != "" {
				cfg.MongoDB = database
			}
			a.cfg = cfg
			return cfg.ConfigureLogging()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	a.cmd.CompletionOptions.HiddenDefaultCmd = true
	a.cmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string (default $MONGO_URI)")
	a.cmd.PersistentFlags().StringVar(&database, "db", "", "fleet database name (default $MONGO_DB)")

	a.cmd.AddCommand(
		a.seedCmd(),
		a.reportCmd(),
		a.findCmd(),
		a.crudCmd(),
		a.accessCmd(),
		a.snapshotCmd(),
	)
	return a
}

// Execute runs the command selected by the process arguments.
func (a *App) Execute() error {
	return a.cmd.Execute()
}

// database connects on first use and returns the fleet database.
func (a *App) database(ctx context.Context) (*mongo.Database, error) {
	if a.client == nil {
		client, err := db.ConnectMongo(ctx, a.cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		a.client = client
		log.WithField("database", a.cfg.MongoDB).Debug("Connected to MongoDB")
	}
	return a.client.Database(a.cfg.MongoDB), nil
}

func (a *App) store(ctx context.Context) (*db.Store, error) {
	database, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	return db.NewStore(database), nil
}

// source returns the snapshot file at path, or the Mongo store when path
// is empty. The returned function releases it.
func (a *App) source(ctx context.Context, path string) (report.Source, func(), error) {
	if path == "" {
		store, err := a.store(ctx)
		return store, func() {}, err
	}
	snap, err := snapshot.OpenExisting(path)
	if err != nil {
		return nil, nil, err
	}
	return snap, func() { snap.Close() }, nil
}

func (a *App) close() error {
	if a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.client.Disconnect(ctx)
	a.client = nil
	return err
}
