package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tokenrelay/internal/exchange"
	"github.com/desertthunder/tokenrelay/internal/server"
	"github.com/desertthunder/tokenrelay/internal/services"
	"github.com/urfave/cli/v3"
)

// Exchange runs a single code exchange and prints the long-lived token as JSON.
//
// With --remote the code is sent to a running relay instead of the Graph API.
func (r *Runner) Exchange(ctx context.Context, cmd *cli.Command) error {
	code := cmd.String("code")
	pretty := cmd.Bool("pretty")

	if remote := cmd.String("remote"); remote != "" {
		r.logger.Info("exchanging code through relay", "url", remote)

		resp, err := r.relay(remote).ExchangeToken(ctx, code)
		if err != nil {
			return fmt.Errorf("relay exchange failed: %w", err)
		}
		return r.writeJSON(resp, pretty)
	}

	db, repo, err := r.openAudit()
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	var recorder exchange.Recorder
	if repo != nil {
		recorder = repo
	}

	svc, err := r.exchangeService(recorder)
	if err != nil {
		return err
	}

	result, err := svc.Exchange(ctx, code)
	if err != nil {
		return err
	}

	return r.writeJSON(services.ExchangeResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
		Message:     server.SuccessMessage,
	}, pretty)
}
