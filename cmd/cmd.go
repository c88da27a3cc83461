// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

// serveCommand runs the HTTP relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the token exchange server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config and PORT)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Run mode: development or production",
			},
		},
		Action: r.Serve,
	}
}

// exchangeCommand runs one exchange from the terminal
func exchangeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "exchange",
		Usage: "Exchange an authorization code for a long-lived token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "code",
				Usage:    "Authorization code returned to the redirect URI",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Base URL of a running relay to call instead of the Graph API",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Exchange,
	}
}

// loginCommand performs the browser login flow
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in through the Facebook dialog and print a long-lived token",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the redirect",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the login URL instead of opening a browser",
			},
		},
		Action: r.Login,
	}
}

// healthCommand checks a running relay
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check a running relay's health endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the relay",
				Value: "http://localhost:3000",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Health,
	}
}

// configCommand inspects and creates configuration
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and create configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration with the secret redacted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "remote",
						Usage: "Print the public config of a running relay instead",
					},
				},
				Action: r.ConfigShow,
			},
			{
				Name:   "init",
				Usage:  "Write the example configuration to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:  "auth-url",
				Usage: "Print the login dialog URL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "state",
						Usage: "State value to embed (random when empty)",
					},
				},
				Action: r.ConfigAuthURL,
			},
		},
	}
}

// setupCommand prepares local resources
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Prepare local resources",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the audit database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent schema migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand reads the audit trail
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent exchange attempts from the audit database",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to return",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, json, csv or markdown",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "outcome",
				Usage: "Only show success or failure",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Count attempts by outcome and error kind",
				Action: r.HistoryStats,
			},
			{
				Name:  "prune",
				Usage: "Delete records older than a duration",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age of the records to delete",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}
