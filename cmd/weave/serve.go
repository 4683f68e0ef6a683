package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/demo"
	httpAdapter "github.com/aretw0/weave/pkg/adapters/http"
	redisAdapter "github.com/aretw0/weave/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo store over HTTP",
	Long: `Starts the demo store and exposes its state, a command endpoint, a
server-sent event stream and Prometheus metrics. With redis.addr set, commands
published on redis.channel are dispatched as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Metrics.Addr = addr
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		stream := httpAdapter.NewStream(demo.Initial(), logger)
		opts := []demo.Option{demo.WithLayers(stream.Middleware())}
		if cfg.Redis.Addr != "" {
			ch := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel,
				redisAdapter.WithLogger(logger))
			defer ch.Close()
			opts = append(opts, demo.WithCommands(ch))
			logger.Info("Bridging redis channel", "addr", cfg.Redis.Addr, "channel", ch.Name())
		}

		rt, err := demo.New(cfg, logger, reg, opts...)
		if err != nil {
			return fmt.Errorf("failed to start store: %w", err)
		}
		defer rt.Close()

		handler := httpAdapter.NewHandler(rt.Ref(), demo.ParseCommand, stream,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(weave.Version),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		)

		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting Weave Server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Weave Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to metrics.addr)")
}
