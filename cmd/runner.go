package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tokenrelay/internal/exchange"
	"github.com/desertthunder/tokenrelay/internal/repositories"
	"github.com/desertthunder/tokenrelay/internal/services"
	"github.com/desertthunder/tokenrelay/internal/shared"
	"github.com/desertthunder/tokenrelay/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	provider    services.TokenProvider
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	printer     *ui.Printer
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Provider    services.TokenProvider // built from Config when nil
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		provider:    opts.Provider,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		printer:     ui.NewPrinter(opts.Output, nil),
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, exchangeCommand, loginCommand, healthCommand, configCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Prepare loads the config file named by --config, overlays the environment and configures the logger.
//
// A missing file is only an error when --config was given explicitly.
func (r *Runner) Prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	if err := r.config.ApplyEnv(); err != nil {
		return ctx, err
	}
	if level := cmd.String("log-level"); level != "" {
		r.config.Logging.Level = level
	}

	return ctx, shared.ConfigureLogger(r.logger, r.config.Logging)
}

// graph builds the Graph API client from the loaded configuration.
func (r *Runner) graph() (*services.GraphService, error) {
	return services.NewGraphService(services.GraphOptions{
		AppID:       r.config.App.ID,
		AppSecret:   r.config.App.Secret,
		RedirectURI: r.config.App.RedirectURI,
		BaseURL:     r.config.Provider.BaseURL,
		DialogURL:   r.config.Provider.DialogURL,
		APIVersion:  r.config.Provider.APIVersion,
		Scopes:      r.config.Provider.Scopes,
		Timeout:     r.config.ProviderTimeout(),
	})
}

func (r *Runner) tokenProvider() (services.TokenProvider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return r.graph()
}

// exchangeService wires the provider and, when given, the audit recorder into an [exchange.Service].
func (r *Runner) exchangeService(recorder exchange.Recorder) (*exchange.Service, error) {
	provider, err := r.tokenProvider()
	if err != nil {
		return nil, err
	}

	return exchange.NewService(exchange.Options{Provider: provider, Recorder: recorder, Logger: r.logger})
}

// openAudit opens the audit database when it is enabled. A nil database means auditing is off.
func (r *Runner) openAudit() (*sql.DB, *repositories.ExchangeRepository, error) {
	if !r.config.Database.Enabled {
		return nil, nil, nil
	}

	db, err := shared.OpenAuditDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, repositories.NewExchangeRepository(db), nil
}

func (r *Runner) relay(baseURL string) *services.RelayClient {
	return services.NewRelayClient(baseURL, r.httpClient)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
