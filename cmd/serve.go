package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/tokenrelay/internal/exchange"
	"github.com/desertthunder/tokenrelay/internal/server"
	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve starts the relay and blocks until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}
	if mode := cmd.String("mode"); mode != "" {
		r.config.Server.Mode = mode
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", r.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.config.Addr(), err)
	}

	return r.serve(ctx, ln)
}

// serve runs the relay on ln until ctx is cancelled.
func (r *Runner) serve(ctx context.Context, ln net.Listener) error {
	db, repo, err := r.openAudit()
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to open audit database: %w", err)
	}

	var recorder exchange.Recorder
	if db != nil {
		defer db.Close()
		recorder = repo
		r.logger.Info("recording exchange attempts", "database", r.config.Database.Path)
	}

	svc, err := r.exchangeService(recorder)
	if err != nil {
		ln.Close()
		return err
	}

	router := server.NewRouter(server.Options{
		Config:   r.config,
		Exchange: svc,
		Logger:   r.logger,
	})

	r.banner(ln.Addr())

	return server.New(r.config, router, r.logger).Serve(ctx, ln)
}

// banner logs where the relay listens. The app secret only appears redacted.
func (r *Runner) banner(addr net.Addr) {
	port := strconv.Itoa(r.config.Server.Port)
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
	}

	r.logger.Info("token exchange server running",
		"addr", addr.String(),
		"mode", r.config.Server.Mode,
		"app_id", r.config.App.ID,
		"app_secret", shared.Redact(r.config.App.Secret),
		"redirect_uri", r.config.App.RedirectURI,
		"health", "http://localhost:"+port+"/api/health",
	)
}
