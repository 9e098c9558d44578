package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator binds the embedded migrations for the handle's driver to db.
// Closing the returned migrator also closes db.
func NewMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	driverName := db.DriverName()
	src, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return nil, fmt.Errorf("database: migrations source: %w", err)
	}

	var drv migratedb.Driver
	switch driverName {
	case "mysql":
		drv, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case "postgres":
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case "sqlite3":
		drv, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("database: no migrations for driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("database: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, drv)
	if err != nil {
		return nil, fmt.Errorf("database: migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.  The handle stays open.
func Migrate(db *sqlx.DB) error {
	m, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database: migrate up: %w", err)
	}
	return nil
}
