// Package cli provides the command-line interface for rentalctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rentalctl/rentalctl-go/internal/config"
	"github.com/rentalctl/rentalctl-go/internal/ctxlog"
	"github.com/rentalctl/rentalctl-go/internal/database"
	"github.com/rentalctl/rentalctl-go/internal/dispatch"
	"github.com/rentalctl/rentalctl-go/internal/store"
)

var warnColor = color.New(color.FgYellow)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rentalctl [flags] <command> [args...]",
		Short: "Manage the movies, customers and rentals tables",
		Long: `rentalctl - movie rental database helper

Ensures the movies, customers and rentals tables exist, then runs one
command against them.

Commands:
  insert <title> <year> <genre> <director>   Insert a movie
  show                                       Show all movies
  update <customer_id> <new_email>           Update a customer's email
  remove <customer_id>                       Remove a customer and their rentals

Connection settings come from RENTALCTL_DB_* environment variables, an
optional .env file, and the flags below, in increasing order of precedence.
The password is read from RENTALCTL_DB_PASSWORD only.`,
		Example: `  # Add a movie to the default local PostgreSQL database
  rentalctl insert "Inception" 2010 "Sci-Fi" "Christopher Nolan"

  # List movies from a SQLite file
  rentalctl --driver sqlite --db rentals.db show

  # Change a customer's email on MySQL
  RENTALCTL_DB_PASSWORD=secret rentalctl --driver mysql update 1 new@example.com`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCommand,
	}

	// Everything after the first positional argument belongs to the command,
	// so values such as negative years are not read as flags.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().String("env-file", config.DefaultEnvFile, "dotenv file to load before reading RENTALCTL_DB_* variables")
	cmd.Flags().String("driver", "", "Database driver: 'postgres', 'mysql', or 'sqlite' (default: postgres)")
	cmd.Flags().String("host", "", "Database host (default: localhost)")
	cmd.Flags().String("port", "", "Database port (default: 5432 for postgres, 3306 for mysql)")
	cmd.Flags().String("db-name", "", "Database name (default: postgres)")
	cmd.Flags().String("user", "", "Database user (default: postgres)")
	cmd.Flags().String("sslmode", "", "PostgreSQL sslmode (default: disable)")
	cmd.Flags().StringP("db", "d", "", "SQLite database path (default: temporary file, deleted after execution)")
	cmd.Flags().BoolP("verbose", "v", false, "Log connection and statement details to stderr")
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCommand(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := ctxlog.New(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	return run(ctx, cfg, args, cmd.OutOrStdout())
}

// applyFlags overrides cfg with every flag set on the command line. A port
// left unset stays empty so it follows whichever driver wins.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("driver") {
		s, _ := flags.GetString("driver")
		driver, err := config.ParseDriver(s)
		if err != nil {
			return err
		}
		cfg.Driver = driver
	}

	for name, dst := range map[string]*string{
		"host":    &cfg.Host,
		"port":    &cfg.Port,
		"db-name": &cfg.Name,
		"user":    &cfg.User,
		"sslmode": &cfg.SSLMode,
		"db":      &cfg.Path,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	cfg.Verbose, _ = flags.GetBool("verbose")
	return nil
}

// run opens the pool, provisions the schema and dispatches args. The pool is
// released before returning.
func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	log := ctxlog.FromContext(ctx)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			warnColor.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		} else if db.ShouldCleanup {
			log.Debug("cleaned up temporary database", "path", db.Path)
		}
	}()

	if db.IsTemp {
		log.Info("using temporary database; data is discarded on exit", "path", db.Path)
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to provision schema: %w", err)
	}

	return dispatch.New(store.New(db), out).Run(ctx, args)
}
