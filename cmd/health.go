package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Health calls GET /api/health on a running relay.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("url")
	r.logger.Debug("checking relay health", "url", baseURL)

	status, err := r.relay(baseURL).Health(ctx)
	if err != nil {
		r.printer.Failure("Relay unreachable at %s", baseURL)
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if status.Status != "OK" {
		r.printer.Warning("Relay reported status %q", status.Status)
		return fmt.Errorf("%w: status %s", shared.ErrServiceUnavailable, status.Status)
	}

	r.printer.Success("Service is healthy")
	r.printer.Field("Status", status.Status)
	r.printer.Field("Message", status.Message)
	r.printer.Field("Timestamp", status.Timestamp)
	return nil
}
