package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dafibh/tally/tally-backend/internal/config"
	"github.com/dafibh/tally/tally-backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	rootCmd     = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the tally database schema",
		Long:  `Apply, roll back and inspect the schema migrations embedded in the tally backend.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database connection string (default: $DATABASE_URL)")

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withMigrator connects to --database-url or DATABASE_URL and runs fn
func withMigrator(ctx context.Context, fn func(mg *postgres.Migrator) error) error {
	url := databaseURL
	if url == "" {
		var err error
		if url, err = config.DatabaseURL(); err != nil {
			return err
		}
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	mg, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer mg.Close()

	return fn(mg)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(mg *postgres.Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				version, _, err := mg.Version()
				if err != nil {
					return err
				}
				log.Info().Uint("version", version).Msg("Schema up to date")
				return nil
			})
		},
	}
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			return withMigrator(cmd.Context(), func(mg *postgres.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				log.Info().Int("steps", steps).Msg("Migrations rolled back")
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(mg *postgres.Migrator) error {
				version, dirty, err := mg.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}
}
