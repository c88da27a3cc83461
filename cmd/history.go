package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tokenrelay/internal/formatter"
	"github.com/desertthunder/tokenrelay/internal/repositories"
	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// withHistory opens the audit database regardless of database.enabled and runs fn against it.
func (r *Runner) withHistory(fn func(*repositories.ExchangeRepository) error) error {
	db, err := shared.OpenAuditDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	defer db.Close()

	return fn(repositories.NewExchangeRepository(db))
}

// History lists recent exchange attempts.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	criteria := map[string]any{
		"limit":   cmd.Int("limit"),
		"outcome": cmd.String("outcome"),
	}

	return r.withHistory(func(repo *repositories.ExchangeRepository) error {
		records, err := repo.List(criteria)
		if err != nil {
			return err
		}

		if path := cmd.String("output"); path != "" {
			if err := formatter.WriteExport(records, format, path); err != nil {
				return err
			}
			return r.printer.Success("Exported %d records to %s", len(records), path)
		}

		data, err := formatter.Format(records, format)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		return r.writePlain("%s", data)
	})
}

// HistoryStats prints counts by outcome and error kind.
func (r *Runner) HistoryStats(ctx context.Context, cmd *cli.Command) error {
	return r.withHistory(func(repo *repositories.ExchangeRepository) error {
		stats, err := repo.Stats()
		if err != nil {
			return err
		}
		return r.writePlain("%s", formatter.StatsToText(stats))
	})
}

// HistoryPrune deletes records older than --older-than.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrInvalidArgument)
	}

	return r.withHistory(func(repo *repositories.ExchangeRepository) error {
		removed, err := repo.Prune(time.Now().Add(-age))
		if err != nil {
			return err
		}
		r.logger.Info("pruned exchange records", "removed", removed, "older_than", age)
		return r.printer.Success("Removed %d records", removed)
	})
}
