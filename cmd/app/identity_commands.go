package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vault/cmd/app/commands"
	"github.com/allisson/vault/internal/app"
	"github.com/allisson/vault/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "fingerprint",
			Usage: "Print the identity (SHA-256 fingerprint) of a PEM certificate",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "cert",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Path to the PEM certificate",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunFingerprint(cmd.String("cert"), commands.DefaultIO())
			},
		},
		{
			Name:  "policies",
			Usage: "Inspect the policy file",
			Commands: []*cli.Command{
				{
					Name:  "validate",
					Usage: "Parse and compile the policy file, reporting the first error",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:    "path",
							Aliases: []string{"p"},
							Usage:   "Policy file (defaults to VAULT_POLICIES_PATH)",
						},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						path := cmd.String("path")
						if path == "" {
							path = config.Load().PoliciesPath
						}
						return commands.RunValidatePolicies(path, cmd.String("format"), commands.DefaultIO())
					},
				},
			},
		},
		{
			Name:  "encrypt-passphrase",
			Usage: "Encrypt the unseal passphrase (read from stdin) with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...); defaults to KMS_KEY_URI",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cmd.String("kms-key-uri")
				if keyURI == "" {
					keyURI = cfg.KMSKeyURI
				}

				return commands.RunEncryptPassphrase(
					ctx,
					container.KMSService(),
					container.Logger(),
					keyURI,
					commands.DefaultIO(),
				)
			},
		},
	}
}
