package main

import (
	"context"
	"fmt"
	"os"

	"github.com/UkralStul/socialgraph/internal/config"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/UkralStul/socialgraph/internal/storage"
	"github.com/UkralStul/socialgraph/internal/storage/gormstore"
	"github.com/UkralStul/socialgraph/internal/storage/inmemory"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions - глобальные флаги для всех команд.
type rootOptions struct {
	ConfigPath string
	Storage    string
	DSN        string
	LogLevel   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "socialgraph",
		Short:         "Social graph and feed service",
		Long:          "Accounts, follow graph, posts, likes, comments and reverse-chronological feeds over REST and websocket.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "storage type (in-memory, postgres or sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "postgres connection string or sqlite file path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))

	return cmd
}

// loadConfig собирает конфигурацию: файл, окружение, затем флаги.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, os.Getenv)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Storage != "" {
		cfg.Storage.Driver = opts.Storage
	}
	if opts.DSN != "" {
		if cfg.Storage.Driver == config.DriverSQLite {
			cfg.Storage.SQLitePath = opts.DSN
		} else {
			cfg.Storage.DSN = opts.DSN
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}
	zcfg.Level = level
	return zcfg.Build()
}

func openStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		return gormstore.Open(ctx, gormstore.Options{
			Driver:   cfg.Driver,
			DSN:      cfg.ConnString(),
			LogLevel: cfg.LogLevel,
		}, log.Named("gorm"))
	default:
		return inmemory.New(), nil
	}
}

func serviceConfig(cfg config.Config, notifier service.Notifier, log *zap.Logger) service.Config {
	return service.Config{
		Notifier: notifier,
		Logger:   log,
		Limits: service.Limits{
			FeedLimit:       cfg.Pagination.FeedLimit,
			AccountLimit:    cfg.Pagination.AccountLimit,
			SuggestionLimit: cfg.Pagination.SuggestionLimit,
			MaxLimit:        cfg.Pagination.MaxLimit,
		},
	}
}
