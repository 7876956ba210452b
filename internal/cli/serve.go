package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/playgraph/playgraph/internal/api"
	"github.com/playgraph/playgraph/internal/config"
	"github.com/playgraph/playgraph/pkg/cache"
	"github.com/playgraph/playgraph/pkg/pipeline"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath, listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the playgraph HTTP API server",
		Long: `Serve exposes the scan and generate operations over HTTP. The cache
backend, listen address and rendering defaults come from a TOML config
file; flags override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "playgraph.toml", "path to the config file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides the config file)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	store, err := c.newServerCache(ctx, cfg)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(runner, cfg, c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Listen, "cache", cfg.Cache.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newServerCache builds the cache backend selected by the config file.
func (c *CLI) newServerCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}
