package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	"pppoed/cmd/client"
	"pppoed/cmd/router"
	"pppoed/cmd/server"
	"pppoed/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "pppoed",
		Version:     version,
		Usage:       "PPPoE subscriber and router management with MCP server support",
		Description: "Manage PPPoE subscribers and their routers via HTTP API, MCP server, and CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"PPPOED_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"PPPOED_LOG_FORMAT"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "server",
				Usage:        "Server URL for remote commands",
				DefaultValue: "http://localhost:8080",
				EnvVars:      []string{"PPPOED_SERVER_URL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for the remote server",
				EnvVars: []string{"PPPOED_TOKEN"},
				Global:  true,
			},
			&cli.BoolFlag{
				Name:   "local",
				Usage:  "Operate on local storage instead of a remote server",
				Global: true,
			},
			&cli.StringFlag{
				Name:         "data-dir",
				Usage:        "Data directory for local storage",
				DefaultValue: "./data",
				EnvVars:      []string{"PPPOED_DATA_DIR"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			{
				Name:        "client",
				Usage:       "Client management commands",
				Description: "Manage PPPoE clients",
				Commands:    client.Commands(),
			},
			{
				Name:        "router",
				Usage:       "Router management commands",
				Description: "Manage routers and trigger health syncs",
				Commands:    router.Commands(),
			},
			loginCommand(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
