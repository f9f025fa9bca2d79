package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vault/cmd/app/commands"
	"github.com/allisson/vault/internal/app"
	"github.com/allisson/vault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Unseal the vault and start the HTTP API server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply storage schema migrations (sqlite driver)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container)
			},
		},
	}
}
