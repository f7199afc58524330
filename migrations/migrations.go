// Package migrations holds the database schema, embedded into the binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
)

//go:embed *.sql
var migrations embed.FS

type embedFSDriver struct {
	httpfs.PartialDriver
}

func init() {
	source.Register("embed", &embedFSDriver{})
}

func (d *embedFSDriver) Open(rawURL string) (source.Driver, error) {
	err := d.PartialDriver.Init(http.FS(migrations), ".")
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Migrate applies every pending up migration over its own connection and
// reports the resulting schema version.
func Migrate(dsn string) (version uint, err error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return 0, fmt.Errorf("open DB: %w", err)
	}

	d, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		sqlDB.Close()
		return 0, fmt.Errorf("create driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("embed://", "postgres", d)
	if err != nil {
		d.Close()
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}
