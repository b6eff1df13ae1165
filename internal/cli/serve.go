package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pabloleguizamon/dragon-challenge/internal/db"
	gqlapi "github.com/pabloleguizamon/dragon-challenge/internal/graphql"
	httpapi "github.com/pabloleguizamon/dragon-challenge/internal/http"
	"github.com/pabloleguizamon/dragon-challenge/internal/seed"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server exposing POST /graphql, the REST API under /api/v1,
Swagger UI and /healthz.

The store is chosen by DB_DRIVER (postgres, sqlite or memory). Startup seeding
follows SEED_DEFAULT_USER and SEED_CATALOG.

Example:
  dragon serve
  DB_DRIVER=memory SEED_CATALOG=true dragon serve -v`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, opts)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("close store", "err", err)
		}
	}()

	svc, err := buildServices(cfg, stores, log)
	if err != nil {
		return err
	}
	seed.Run(ctx, svc, cfg.Seed, log)

	api := httpapi.NewServer(svc, httpapi.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		Schema:     gqlapi.NewSchema(svc, log),
		Health:     stores.Health,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr,
			"graphql", "/graphql", "swagger", "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
