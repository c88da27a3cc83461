package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigShow prints the effective configuration as TOML with the secret redacted.
//
// With --remote it prints the public config of a running relay instead.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if remote := cmd.String("remote"); remote != "" {
		cfg, err := r.relay(remote).Config(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		return r.writeJSON(cfg, true)
	}

	redacted := r.config.Redacted()
	if err := toml.NewEncoder(r.output).Encode(redacted); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := r.config.Validate(); err != nil {
		r.printer.Warning("%v", err)
	}
	return nil
}

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.printer.Success("Config written to %s", path)
}

// ConfigAuthURL prints the login dialog URL for the configured app.
func (r *Runner) ConfigAuthURL(ctx context.Context, cmd *cli.Command) error {
	graph, err := r.graph()
	if err != nil {
		return err
	}

	state := cmd.String("state")
	if state == "" {
		state = shared.GenerateID()
	}

	return r.writePlain("%s\n", graph.AuthCodeURL(state))
}
