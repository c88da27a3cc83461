package main

import (
	"context"
	"os"

	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tokenrelay",
		Usage:    "Exchange Meta OAuth authorization codes for long-lived access tokens",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   runner.Prepare,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
