package main

import (
	"courier-route-service/internal/adapters/repositories"
	"courier-route-service/internal/config"
	"courier-route-service/internal/platform/db"
	"courier-route-service/internal/platform/obs"
	"database/sql"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	seedOnly := flag.Bool("seed-only", false, "skip schema creation")
	schemaOnly := flag.Bool("schema-only", false, "skip seeding")
	flag.Parse()

	envErr := godotenv.Load()

	logger := obs.NewLogger(config.Get("LOG_LEVEL", "info"), true)
	if envErr != nil {
		logger.Info().Msg("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/snapshot.json")
	if err := initAndSeed(db, seedPath, !*seedOnly, !*schemaOnly, logger); err != nil {
		logger.Fatal().Err(err).Msg("dbtool")
	}
}

func initAndSeed(db *sql.DB, seedPath string, schema, seed bool, logger zerolog.Logger) error {
	if schema {
		logger.Info().Msg("Initializing database schema...")
		if err := repositories.InitSchema(db); err != nil {
			return err
		}
		logger.Info().Msg("Schema ready.")
	}

	if seed {
		logger.Info().Str("path", seedPath).Msg("Seeding database...")
		if err := repositories.SeedFromJSON(db, seedPath); err != nil {
			return err
		}
		logger.Info().Msg("Seeding complete.")
	}

	return nil
}
