package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nerrad567/homehub-core/internal/api"
	"github.com/nerrad567/homehub-core/internal/audit"
	"github.com/nerrad567/homehub-core/internal/auth"
	"github.com/nerrad567/homehub-core/internal/infrastructure/config"
	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
	"github.com/nerrad567/homehub-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/homehub-core/internal/infrastructure/logging"
	"github.com/nerrad567/homehub-core/internal/light"
	"github.com/nerrad567/homehub-core/internal/location"
	_ "github.com/nerrad567/homehub-core/migrations"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Load configuration, apply pending migrations and serve the API
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return run(cmd.Context(), resolveConfigPath())
}

// run is the actual application logic, separated from the command for
// testability. It returns nil on a clean shutdown.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting HomeHub Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Key problems surface before anything is opened.
	access, refresh, err := newTokenServices(cfg.Auth)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		MemoryKiB:   cfg.Auth.Password.MemoryKiB,
		Iterations:  cfg.Auth.Password.Iterations,
		Parallelism: cfg.Auth.Password.Parallelism,
	}, cfg.Auth.Password.MaxConcurrent)
	manager := auth.NewManager(auth.NewUserRepository(db.DB), hasher, access, refresh, log)

	lightOpts := []light.ServiceOption{light.WithLogger(log)}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		lightOpts = append(lightOpts, light.WithStateRecorder(influxClient))
	} else {
		log.Info("InfluxDB disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "homehub"),
	)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Auth:      manager,
		Lights:    light.NewService(light.NewSQLiteRepository(db.DB), lightOpts...),
		Locations: location.NewSQLiteRepository(db.DB),
		DB:        db,
		Audit:     audit.NewSQLiteRepository(db.DB),
		Registry:  registry,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := healthCheck(ctx, db, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests)
	// 2. InfluxDB (if enabled, flushes pending points)
	// 3. Database

	log.Info("HomeHub Core stopped")
	return nil
}

// newTokenServices builds the access and refresh token services. Either
// key pair failing to parse or match stops startup, as does both scopes
// using the same key.
func newTokenServices(cfg config.AuthConfig) (access, refresh *auth.TokenService, err error) {
	access, err = auth.NewTokenService(auth.TokenConfig{
		PrivateKeyPEM: cfg.AccessToken.PrivateKey,
		PublicKeyPEM:  cfg.AccessToken.PublicKey,
		Lifetime:      cfg.AccessToken.Lifetime(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("access token keys: %w", err)
	}

	refresh, err = auth.NewTokenService(auth.TokenConfig{
		PrivateKeyPEM: cfg.RefreshToken.PrivateKey,
		PublicKeyPEM:  cfg.RefreshToken.PublicKey,
		Lifetime:      cfg.RefreshToken.Lifetime(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("refresh token keys: %w", err)
	}

	// Validate compares the raw strings; this catches one key encoded two ways.
	if access.SharesKeyWith(refresh) {
		return nil, nil, fmt.Errorf("access and refresh token keys: %w", auth.ErrSharedKey)
	}

	return access, refresh, nil
}

// openDatabase opens the SQLite store described by cfg.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when InfluxDB is disabled.
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
