package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vault/cmd/app/commands"
	"github.com/allisson/vault/internal/app"
	"github.com/allisson/vault/internal/config"
	secretsUseCase "github.com/allisson/vault/internal/secrets/usecase"
)

// secretRun is the body of a secret command, run against an unsealed vault.
type secretRun func(
	ctx context.Context,
	cmd *cli.Command,
	container *app.Container,
	useCase secretsUseCase.SecretUseCase,
	identity string,
) error

// identityFlags select the caller identity of a secret command.
func identityFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "cert",
			Aliases: []string{"c"},
			Usage:   "Client certificate whose fingerprint is the caller identity (defaults to VAULT_CERT_PATH)",
		},
		&cli.StringFlag{
			Name:    "identity",
			Aliases: []string{"i"},
			Usage:   "Caller identity (certificate fingerprint); overrides --cert",
		},
	}
	return append(flags, extra...)
}

func pathFlag(required bool, usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "path",
		Aliases:  []string{"p"},
		Required: required,
		Usage:    usage,
	}
}

// secretAction loads the configuration, resolves the caller identity, unseals the vault and
// runs fn. The vault is sealed again when fn returns.
func secretAction(fn secretRun) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}

		certPath := cmd.String("cert")
		if certPath == "" {
			certPath = cfg.CertPath
		}
		identity, err := commands.ResolveIdentity(cmd.String("identity"), certPath)
		if err != nil {
			return err
		}

		container := app.NewContainer(cfg)
		defer func() { _ = container.Shutdown(ctx) }()

		useCase, err := container.SecretUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}
		if err := container.Unseal(ctx); err != nil {
			return err
		}

		return fn(ctx, cmd, container, useCase, identity)
	}
}

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "put",
			Usage: "Encrypt and store a secret",
			Flags: identityFlags(
				pathFlag(true, "Secret path (e.g., db/prod)"),
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Secret value; '-' reads it from stdin",
				},
				&cli.IntFlag{
					Name:  "cas",
					Value: commands.NoCAS,
					Usage: "Only write if the current version equals this value (0: path must not exist)",
				},
				formatFlag(),
			),
			Action: secretAction(func(
				ctx context.Context,
				cmd *cli.Command,
				container *app.Container,
				useCase secretsUseCase.SecretUseCase,
				identity string,
			) error {
				return commands.RunPut(
					ctx,
					useCase,
					container.Logger(),
					identity,
					cmd.String("path"),
					cmd.String("value"),
					cmd.Int("cas"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "get",
			Usage: "Decrypt and print a secret",
			Flags: identityFlags(pathFlag(true, "Secret path"), formatFlag()),
			Action: secretAction(func(
				ctx context.Context,
				cmd *cli.Command,
				container *app.Container,
				useCase secretsUseCase.SecretUseCase,
				identity string,
			) error {
				return commands.RunGet(
					ctx,
					useCase,
					identity,
					cmd.String("path"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "delete",
			Usage: "Delete a secret",
			Flags: identityFlags(pathFlag(true, "Secret path")),
			Action: secretAction(func(
				ctx context.Context,
				cmd *cli.Command,
				container *app.Container,
				useCase secretsUseCase.SecretUseCase,
				identity string,
			) error {
				return commands.RunDelete(
					ctx,
					useCase,
					container.Logger(),
					identity,
					cmd.String("path"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "list",
			Usage: "List the readable secret paths starting with a prefix",
			Flags: identityFlags(
				&cli.StringFlag{
					Name:  "prefix",
					Usage: "Literal path prefix (empty lists everything readable)",
				},
				formatFlag(),
			),
			Action: secretAction(func(
				ctx context.Context,
				cmd *cli.Command,
				container *app.Container,
				useCase secretsUseCase.SecretUseCase,
				identity string,
			) error {
				return commands.RunList(
					ctx,
					useCase,
					identity,
					cmd.String("prefix"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "keys",
			Usage: "List the visible children of a directory",
			Flags: identityFlags(pathFlag(false, "Directory (empty for the root)"), formatFlag()),
			Action: secretAction(func(
				ctx context.Context,
				cmd *cli.Command,
				container *app.Container,
				useCase secretsUseCase.SecretUseCase,
				identity string,
			) error {
				return commands.RunKeys(
					ctx,
					useCase,
					identity,
					cmd.String("path"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
	}
}
