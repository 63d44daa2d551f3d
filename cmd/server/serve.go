package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/socialgraph/internal/config"
	"github.com/UkralStul/socialgraph/internal/httpapi"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/UkralStul/socialgraph/internal/service"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	*rootOptions
	Addr string
	Seed bool
}

func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the REST and websocket server.

Example:
  socialgraph serve --storage in-memory
  DATABASE_URL=postgres://... socialgraph serve --storage postgres`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides PORT")
	cmd.Flags().BoolVar(&opts.Seed, "seed", true, "fill in-memory storage with demo data")

	return cmd
}

func runServer(ctx context.Context, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts.rootOptions)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server", zap.String("storage", cfg.Storage.Driver), zap.String("addr", cfg.HTTP.Addr))
	store, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	hub := realtime.NewHub(0, log.Named("realtime"))
	svc := service.New(store, serviceConfig(cfg, hub, log.Named("service")))

	if cfg.Storage.Driver == config.DriverInMemory && opts.Seed {
		// Заполним данными для тестов
		if err := fillWithMockData(ctx, svc, seedOptions{Accounts: 5, PostsPerAccount: 3}, log); err != nil {
			return err
		}
	}

	api := httpapi.NewServer(httpapi.Options{
		Services:     svc,
		Accounts:     store,
		Hub:          hub,
		Logger:       log.Named("http"),
		PingInterval: cfg.HTTP.WSPingInterval,
	})
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: api.Routes(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
