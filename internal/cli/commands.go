package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/seed"
)

var (
	okLabel   = color.New(color.FgGreen).Sprint("OK")
	skipLabel = color.New(color.FgYellow).Sprint("SKIP")
)

// MigrateCmd applies the SQL migrations.
func MigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply every .sql file in the migrations directory in name order.

Examples:
  helpdeskctl migrate
  helpdeskctl migrate --dir ./migrations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if dir == "" {
				dir = e.cfg.Postgres.MigrationsDir
			}
			applied, err := persistence.RunMigrations(ctx, e.pg.PoolHandle(), dir, e.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s applied %d migration file(s) from %s\n", okLabel, applied, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default POSTGRES_MIGRATIONS_DIR)")
	return cmd
}

// SeedCmd loads default categories and bootstrap users.
func SeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create default categories and bootstrap accounts",
		Long: `Create the categories and users listed in a YAML seed file. Records
that already exist (categories by name, users by email) are skipped. With
APP_ENV=production the built-in accounts are never created; pass --file to
seed real ones.

Examples:
  helpdeskctl seed
  helpdeskctl seed --file ./seed.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if file == "" {
				file = e.cfg.Seed.File
			}
			data, err := seed.Load(file)
			if err != nil {
				return err
			}
			opts := seed.Options{
				BcryptCost: e.cfg.Auth.BcryptCost,
				SkipUsers:  !seed.UsersAllowed(e.cfg.App.IsProduction(), file),
			}
			result, err := seed.Apply(ctx, e.store, data, opts, e.logger)
			if err != nil {
				return err
			}
			printSeedResult(cmd.OutOrStdout(), data, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file (default SEED_FILE, then built-in data)")
	return cmd
}

// SetRoleCmd changes a user's role directly, bypassing the promotion workflow.
func SetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Set a user's role (end-user, agent or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			user, previous, err := setRole(ctx, e.store, args[0], domain.Role(args[1]))
			if err != nil {
				return err
			}
			if previous == user.Role {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is already %s\n", skipLabel, user.Email, user.Role)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s -> %s\n", okLabel, user.Email, previous, user.Role)
			return nil
		},
	}
}

func setRole(ctx context.Context, store repository.Store, email string, role domain.Role) (*domain.User, domain.Role, error) {
	if !role.Valid() {
		return nil, "", fmt.Errorf("invalid role %q: want end-user, agent or admin", role)
	}
	var (
		user     *domain.User
		previous domain.Role
	)
	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user with email %q", email)
			}
			return err
		}
		previous = user.Role
		if previous == role {
			return nil
		}
		user.Role = role
		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, "", err
	}
	return user, previous, nil
}

func printSeedResult(w io.Writer, data *seed.Data, result seed.Result) {
	fmt.Fprintf(w, "%s categories: %d created, %d already present\n",
		okLabel, result.CategoriesCreated, len(data.Categories)-result.CategoriesCreated)
	if result.UsersSkipped {
		fmt.Fprintf(w, "%s users: built-in accounts are not created in production\n", skipLabel)
		return
	}
	fmt.Fprintf(w, "%s users: %d created, %d already present\n",
		okLabel, result.UsersCreated, len(data.Users)-result.UsersCreated)
}
