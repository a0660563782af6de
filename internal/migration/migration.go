package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	donationdomain "github.com/smallbiznis/charity/internal/donation/domain"
	"gorm.io/gorm"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var embeddedMigrations embed.FS

var errNilDatabase = errors.New("migration_database_required")

// Schema models for dialects the SQL migrations do not target.
var models = []any{
	&campaigndomain.Campaign{},
	&donationdomain.Donation{},
	&donationdomain.PaymentNotification{},
}

// Result describes the schema version after Up.
type Result struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Up applies the embedded PostgreSQL migrations. The migrator is left
// open: closing it would close the shared *sql.DB.
func Up(db *sql.DB) (Result, error) {
	if db == nil {
		return Result{}, errNilDatabase
	}

	m, err := newMigrator(db)
	if err != nil {
		return Result{}, err
	}

	res := Result{Changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return Result{}, fmt.Errorf("apply migrations: %w", err)
		}
		res.Changed = false
	}

	res.Version, res.Dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Result{}, fmt.Errorf("read schema version: %w", err)
	}
	return res, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "charity_schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

// AutoMigrate creates the schema from the gorm models. Used for SQLite and
// MySQL.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errNilDatabase
	}
	return db.AutoMigrate(models...)
}
