package main

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
)

// databaseDependency connects to Postgres and brings the schema up to date.
type databaseDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
}

func (d *databaseDependency) GetName() string {
	return "database"
}

func (d *databaseDependency) DependsOn() []string {
	return nil
}

func (d *databaseDependency) Start(ctx context.Context) error {
	if d.db == nil {
		db, err := database.Connect(ctx, "postgres", d.cfg.DatabaseDSN(), database.PoolConfig{
			MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
			MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
			ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
		}, d.logger)
		if err != nil {
			return err
		}
		d.db = db
	}
	return d.db.PingContext(ctx)
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// migrationDependency applies db/pg migrations once the database is reachable.
type migrationDependency struct {
	cfg      *config.Config
	logger   ectologger.Logger
	database *databaseDependency
}

func (m *migrationDependency) GetName() string {
	return "migrations"
}

func (m *migrationDependency) DependsOn() []string {
	return []string{"database"}
}

func (m *migrationDependency) Start(ctx context.Context) error {
	instance, ok := m.database.db.(*database.DatabaseInstance)
	if !ok {
		return nil
	}

	driver, err := database.PostgresDriver(instance.DB.DB, m.cfg.DatabaseName)
	if err != nil {
		return err
	}

	svc := database.NewMigrationService(m.logger, &database.MigrationConfig{
		MigrationFolderPath: m.cfg.DatabaseMigrationFolderPath,
		Version:             m.cfg.DatabaseMigrationVersion,
		Force:               m.cfg.DatabaseMigrationForce,
		AutoRollback:        m.cfg.DatabaseMigrationAutoRollback,
	})
	return svc.Migrate(m.cfg.DatabaseName, driver)
}

func (m *migrationDependency) Stop(ctx context.Context) error {
	return nil
}
