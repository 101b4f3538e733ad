package main

import (
	"context"
	"errors"
	"fmt"
	"kr-eta-service/internal/config"
	"kr-eta-service/internal/platform/obs"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func NewCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kr-eta-server",
		Short:   "Route ETA service backed by VWorld geocoding and Kakao Mobility directions",
		Version: version,
		Annotations: map[string]string{
			"version": version,
		},
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	// Values from .env become environment variables and are picked up as flag overrides.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := obs.NewLogger(cfg.Log.Env, "kr-eta")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	logger.Info("kr-eta-server", zap.String("version", cmd.Annotations["version"]))

	a, err := buildApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if a.sweeper != nil {
		g.Go(func() error {
			a.sweepSessions(gctx, time.Minute)
			return nil
		})
	}

	stop := func(sig os.Signal) {
		logger.Info("shutting down", zap.Stringer("signal", sig))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		cancel()
	}
	shutdown.AddWithParam(stop)
	go shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
