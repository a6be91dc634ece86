package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func prepare(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}

// Migrate applies all pending migrations.
func Migrate(pool *pgxpool.Pool) error {
	sqlDB, err := prepare(pool)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := goose.Up(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrationStatus describes one embedded migration.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lists embedded migrations and whether each one is applied.
func Status(pool *pgxpool.Pool) ([]MigrationStatus, error) {
	sqlDB, err := prepare(pool)
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()

	current, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("read db version: %w", err)
	}

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}

	out := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, MigrationStatus{
			Version: m.Version,
			Source:  m.Source,
			Applied: m.Version <= current,
		})
	}
	return out, nil
}
