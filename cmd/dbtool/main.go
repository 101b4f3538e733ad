package main

import (
	"context"
	"database/sql"
	"fmt"
	"kr-eta-service/internal/adapters/repositories"
	"kr-eta-service/internal/config"
	"kr-eta-service/internal/platform/db"
	"kr-eta-service/internal/platform/obs"
	"kr-eta-service/internal/ports"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the entries schema and imports seed entries.
// It reads the same environment variables as the server.
func main() {
	envErr := godotenv.Load()

	logger, err := obs.NewLogger(config.Get(config.EnvName(config.LogEnvKey), "development"), "dbtool")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	driver := config.Get(config.EnvName(config.PersistenceDriverKey), string(config.DefaultPersistenceDriver))
	dsn := config.Get(config.EnvName(config.PersistenceDatabaseKey), config.DefaultPersistenceDatabase)

	conn, err := db.Open(driver, dsn)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/entries.json")
	if err := initAndSeed(context.Background(), conn, driver, seedPath, logger); err != nil {
		logger.Fatal("init and seed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver, seedPath string, logger *zap.Logger) error {
	logger.Info("initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logger.Info("schema ready")

	var store ports.RouteStore = repositories.NewSqliteRouteStore(conn, logger)
	if driver == db.DriverPostgres {
		store = repositories.NewSQLRouteStore(conn, logger)
	}

	logger.Info("seeding database", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(ctx, store, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Info("seeding complete")

	return nil
}
