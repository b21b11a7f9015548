// Command logiscore runs maintenance tasks against the LogiScore database:
// schema migrations, question catalog imports and company seeding.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"logiscore/internal/config"
	"logiscore/internal/database"
	"logiscore/internal/logger"

	"github.com/spf13/cobra"
)

var version = "dev"

type globalFlags struct {
	envFiles []string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "logiscore",
		Short:         "Maintain the LogiScore database",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(logger.Config{Level: g.logLevel, Format: "text", Output: cmd.ErrOrStderr()})
		},
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&g.envFiles, "env-file", nil, "Extra .env files loaded before the defaults (may be repeated)")
	flags.StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	root.AddCommand(
		newMigrateCmd(g),
		newQuestionsCmd(g),
		newCompaniesCmd(g),
	)
	return root
}

// connect loads the configuration and opens the database
func connect(ctx context.Context, g *globalFlags) (*database.Database, error) {
	cfg, err := config.Load(g.envFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Debug("Database connection established", "host", cfg.Database.Host, "name", cfg.Database.Name)
	return db, nil
}

func closeDB(db *database.Database) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}
}
