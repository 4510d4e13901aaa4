package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/smallbiznis/gsttally/pkg/db"
	"gorm.io/gorm"
)

//go:embed sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// Run creates the master-data tables. Postgres and MySQL apply the embedded
// SQL migrations; SQLite, used for local runs and tests, is auto-migrated.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	kind := strings.ToLower(strings.TrimSpace(dbType))
	if kind == db.TypeSQLite {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB, kind)
}

// AutoMigrate creates the master-data tables from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&jurisdictiondomain.Company{},
		&taxdomain.ItemTaxTemplate{},
		&taxdomain.Item{},
		&taxdomain.ItemTax{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded SQL migrations for dbType.
func RunMigrations(sqlDB *sql.DB, dbType string) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir+"/"+dbType)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch dbType {
	case db.TypePostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	case db.TypeMySQL:
		driver, err = mysql.WithInstance(sqlDB, &mysql.Config{})
	default:
		return fmt.Errorf("unsupported migration database %q", dbType)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dbType, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
