// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(ctx, cmd, func(runner *migration.Runner) error {
				status, err := runner.Up()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", status.Version)
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(ctx, cmd, func(runner *migration.Runner) error {
				status, err := runner.Status()
				if err != nil {
					return err
				}
				state := "clean"
				if status.Dirty {
					state = "dirty"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (%s)\n", status.Version, state)
				return nil
			})
		},
	})

	return cmd
}

// withRunner opens a migration runner for the postgres store. Other stores
// have nothing to migrate.
func withRunner(ctx *commandContext, cmd *cobra.Command, run func(*migration.Runner) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing to migrate for the %s store\n", cfg.StoreDriver)
		return nil
	}

	runner, err := migration.Open(cfg.DatabaseURL, cfg.MigrationPath, ctx.log())
	if err != nil {
		return err
	}
	defer runner.Close()

	return run(runner)
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id> <username>",
		Short: "Sign an access token for local testing",
		Long:  "Sign an access token with JWT_PRIVATE_KEY_PATH. Production tokens come from the identity service.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.JWTPrivKeyPath == "" {
				return errors.New("JWT_PRIVATE_KEY_PATH is required to sign tokens")
			}
			if !sec.UserRole(role).IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}

			tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
			if err != nil {
				return err
			}

			token, err := tokens.GenerateAccessToken(args[0], args[1], role, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(sec.RoleAuthor), "Role claim (admin, moderator, author, member)")
	cmd.Flags().DurationVar(&ttl, "ttl", constants.DefaultTokenTTL, "Token lifetime")
	return cmd
}
