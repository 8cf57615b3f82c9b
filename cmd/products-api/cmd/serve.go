package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-products-api/internal/config"
	httpapi "github.com/tbourn/go-products-api/internal/http"
	"github.com/tbourn/go-products-api/internal/observability"
	"github.com/tbourn/go-products-api/internal/repo"
	"github.com/tbourn/go-products-api/internal/services"
	"github.com/tbourn/go-products-api/internal/sysutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stdout, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Version: Version, Env: cfg.AppEnv})
	if err != nil {
		return errors.Wrap(err, "setup tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := newServer(cfg, store)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", srv.Addr)
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("env", cfg.AppEnv).
		Str("store", cfg.StoreDriver).
		Str("version", Version).
		Msg("server listening")

	return serve(ctx, srv, ln, cfg)
}

// loadConfig merges the env file into the environment, reads the config
// and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, errors.Wrapf(err, "load %s", envFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, errors.Wrap(err, "load config")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}
	return cfg, nil
}

// openStore builds the configured product store, seeding it when enabled.
// The returned close func is never nil.
func openStore(ctx context.Context, cfg config.Config) (services.ProductRepo, func(), error) {
	var (
		store     services.ProductRepo
		closeFunc = func() {}
	)
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, closeFunc, errors.Wrapf(err, "open %s", cfg.DBPath)
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, closeFunc, errors.Wrap(err, "migrate")
		}
		if sqlDB, err := db.DB(); err == nil {
			closeFunc = func() { _ = sqlDB.Close() }
		}
		store = repo.NewSQLStore(db)
	default:
		store = repo.NewMemoryStore()
	}

	if cfg.SeedData {
		// a persistent store keeps its rows across restarts
		existing, err := store.List(ctx)
		if err != nil {
			closeFunc()
			return nil, func() {}, errors.Wrap(err, "inspect store")
		}
		if len(existing) == 0 {
			if err := repo.Seed(ctx, store); err != nil {
				closeFunc()
				return nil, func() {}, err
			}
			log.Info().Int("products", len(repo.SampleProducts())).Msg("store seeded")
		}
	}
	return store, closeFunc, nil
}

func newServer(cfg config.Config, store services.ProductRepo) *http.Server {
	r := gin.New()
	httpapi.RegisterRoutes(r, services.NewProductService(store), cfg)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// serve runs srv on ln until ctx is done, then drains in-flight requests
// for at most cfg.ShutdownTimeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, cfg config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
