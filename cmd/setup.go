package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the audit database and runs migrations.
//
// With --rollback it reverts the latest migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Database
	if cfg.Path == "" {
		return fmt.Errorf("%w: database path is empty", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", cfg.Path)

	db, err := shared.OpenAuditDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
	}

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", cfg.Path)
	if !cfg.Enabled {
		r.printer.Warning("Auditing is disabled; set database.enabled = true or DATABASE_PATH to record exchanges")
	}
	r.printer.Success("Database ready at %s", cfg.Path)
	return r.printer.Field("Schema", version)
}
