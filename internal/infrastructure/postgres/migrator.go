package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// RunMigrations brings the schema in migrationsPath up to date. A schema that is already
// current is not an error.
func RunMigrations(databaseURL, migrationsPath string) error {
	return withMigrator(databaseURL, migrationsPath, "up", func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// RunMigrationsDown rolls back exactly one migration.
func RunMigrationsDown(databaseURL, migrationsPath string) error {
	return withMigrator(databaseURL, migrationsPath, "down", func(m *migrate.Migrate) error {
		return m.Steps(-1)
	})
}

func withMigrator(databaseURL, migrationsPath, direction string, step func(*migrate.Migrate) error) error {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations %s: %w", migrationsPath, err)
	}
	defer m.Close()

	logger := log.With().Str("direction", direction).Str("path", migrationsPath).Logger()

	err = step(m)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info().Msg("schema already current")
		return nil
	case err != nil:
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	if version, dirty, verr := m.Version(); verr == nil {
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema migrated")
	}

	return nil
}
