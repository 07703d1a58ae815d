// migrate applies pending SQL migrations to DATABASE_URL.
//
// Usage: go run ./cmd/migrate [-dir migrations]
package main

import (
	"context"
	"flag"
	"os"

	"bookkeeping/internal/config"
	"bookkeeping/internal/db"
	"bookkeeping/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding NNN_description.sql files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, logging.FormatPretty)

	migrations, err := db.DiscoverMigrations(os.DirFS(*dir))
	if err != nil {
		logger.Fatal().Err(err).Msg("discover")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect")
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, migrations, logger)
	if err != nil {
		logger.Error().Err(err).Int("applied", applied).Msg("migration failed")
		pool.Close()
		os.Exit(1)
	}
	logger.Info().Int("applied", applied).Int("total", len(migrations)).Msg("all migrations processed")
}
