package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/tokenrelay/internal/formatter"
	"github.com/desertthunder/tokenrelay/internal/server"
	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login opens the login dialog, waits for the redirect on a local server and exchanges the code.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	graph, err := r.graph()
	if err != nil {
		return err
	}

	addr, path, err := callbackAddr(r.config.App.RedirectURI)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	state := shared.GenerateID()
	return r.login(ctx, ln, path, graph.AuthCodeURL(state), state, !cmd.Bool("no-browser"), cmd.Duration("timeout"))
}

// login serves the callback on ln and blocks until the redirect arrives or timeout passes.
func (r *Runner) login(ctx context.Context, ln net.Listener, path, authURL, state string, browser bool, timeout time.Duration) error {
	svc, err := r.exchangeService(nil)
	if err != nil {
		ln.Close()
		return err
	}

	callback := server.NewCallbackHandler(svc, state, path)
	router := server.NewBasicRouter()
	router.Use(server.RequestID())
	router.Handler(callback)

	httpServer := &http.Server{Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting login callback server", "addr", ln.Addr().String(), "path", path)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.printer.Step("Opening the Facebook login dialog...")
	opened := false
	if browser {
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
		} else {
			opened = true
		}
	}
	if !opened {
		r.printer.Warning("Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.printer.Step("Waiting for authorization (%s timeout)...", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.CallbackResult
	select {
	case result = <-callback.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Error() != nil {
		r.printer.Failure("Login failed")
		return fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	r.printer.Success("Long-lived access token obtained")
	r.printer.Field("Access Token", result.Token.AccessToken)
	r.printer.Field("Token Type", result.Token.TokenType)
	r.printer.Field("Expires In", formatter.FormatExpiry(result.Token.ExpiresIn))
	return nil
}

// callbackAddr derives the local listen address and callback path from the redirect URI.
func callbackAddr(redirectURI string) (string, string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: redirect_uri %q is not an absolute URL", shared.ErrInvalidConfig, redirectURI)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return net.JoinHostPort(host, port), path, nil
}
