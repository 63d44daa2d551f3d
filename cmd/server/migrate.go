package main

import (
	"context"

	"github.com/UkralStul/socialgraph/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded migrations to the configured postgres or sqlite database.

Example:
  socialgraph migrate --storage sqlite --dsn ./socialgraph.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rootOpts)
		},
	}
}

func runMigrate(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverInMemory {
		return errors.New("in-memory storage has no schema to migrate")
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Open применяет миграции при подключении
	store, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("storage", cfg.Storage.Driver))
	return store.Close()
}
