package migrations

import (
	"github.com/gemnet/bidengine/internal/shared/db"
	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// RunMigrations applies any pending schema migrations from the sql
// directory next to this package.
func RunMigrations() error {
	dbURL := db.BuildPostgresDSN()
	log.Info("Running migrations", zap.String("source", "internal/shared/db/migrations/sql"))
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		dbURL,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
