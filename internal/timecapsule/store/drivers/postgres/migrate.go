package postgres

import (
	"context"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations applies any pending goose migrations embedded in the binary.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(context.Background(), s.db, ".")
}
