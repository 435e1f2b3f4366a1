package command

// root.go defines the root command for the yamdb management tool and the
// shared setup its subcommands use.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"

	"github.com/spf13/cobra"
)

var verbose bool // Global flag forcing debug logging

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "manage - YaMDb administration commands",
	Long: `manage runs one-off administration tasks against the YaMDb database:
- Apply schema migrations
- Create a superuser account
- Import catalog fixtures from CSV files

Configuration is read from the same environment variables (and .env file) as the API server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	e.db.Close()
}
