package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sentinel/cmd/app/commands"
	"github.com/allisson/sentinel/internal/app"
	"github.com/allisson/sentinel/internal/config"
)

func getAdminCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "review-due",
			Usage: "List clearances whose periodic review falls due soon",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   30,
					Usage:   "Look-ahead window in days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				clearanceUseCase, err := container.ClearanceUseCase()
				if err != nil {
					return err
				}

				return commands.RunReviewDue(
					ctx,
					clearanceUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "seed-catalog",
			Usage: "Create roles, policies, context rules and holidays from a YAML file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Path to the catalog YAML file",
				},
				&cli.StringFlag{
					Name:     "actor-id",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "User ID (UUID) recorded as the actor in the audit log",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				file, err := os.Open(cmd.String("file"))
				if err != nil {
					return fmt.Errorf("failed to open catalog: %w", err)
				}
				defer func() { _ = file.Close() }()

				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rbacUseCase, err := container.RBACUseCase()
				if err != nil {
					return err
				}
				abacUseCase, err := container.ABACUseCase()
				if err != nil {
					return err
				}
				rubacUseCase, err := container.RuBACUseCase()
				if err != nil {
					return err
				}

				return commands.RunSeedCatalog(
					ctx,
					rbacUseCase,
					abacUseCase,
					rubacUseCase,
					container.Logger(),
					file,
					commands.DefaultIO().Writer,
					cmd.String("actor-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "issue-token",
			Usage: "Issue a bearer token for a subject asserted by the operator",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Subject user ID (UUID)",
				},
				&cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "Subject email",
				},
				&cli.StringFlag{
					Name:    "trust-level",
					Aliases: []string{"t"},
					Value:   "standard",
					Usage:   "Trust level: 'standard', 'elevated' or 'super_admin'",
				},
				&cli.BoolFlag{
					Name:  "admin",
					Usage: "Grant administrative rights",
				},
				&cli.BoolFlag{
					Name:  "mfa",
					Usage: "Mark the session as MFA verified",
				},
				&cli.DurationFlag{
					Name:  "ttl",
					Value: 0,
					Usage: "Token lifetime (defaults to AUTH_TOKEN_EXPIRATION_SECONDS)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				authUseCase, err := container.AuthUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueToken(
					ctx,
					authUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.IssueTokenParams{
						UserID:      cmd.String("user-id"),
						Email:       cmd.String("email"),
						TrustLevel:  cmd.String("trust-level"),
						IsAdmin:     cmd.Bool("admin"),
						MFAVerified: cmd.Bool("mfa"),
						TTL:         cmd.Duration("ttl"),
					},
					cmd.String("format"),
				)
			},
		},
	}
}
