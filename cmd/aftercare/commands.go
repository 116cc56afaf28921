package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/config"
	"github.com/axgrid/aftercare/internal/database"
	"github.com/axgrid/aftercare/internal/logging"
	"github.com/axgrid/aftercare/internal/metrics"
	"github.com/axgrid/aftercare/internal/server"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "aftercare",
		Short:        "after-care case back office",
		SilenceUsage: true,
	}
	cmd.AddCommand(serveCmd(), migrateCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "migrate schema before start (same as DB_AUTO_MIGRATE=true)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update tables and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.AutoMigrate(cmd.Context(), db, log)
		},
	}
}

func bootstrap() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Log)
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}

func serve(ctx context.Context, migrate bool) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if migrate || cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			return err
		}
	}

	c, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		// без redis отчёты считаются каждый раз
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("report cache disabled")
		c = cache.Nop{}
	}
	defer c.Close()

	srv := server.New(cfg, log, db, c, metrics.New())
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("http server stopped")
		return err
	}
	log.Info().Msg("bye")
	return nil
}
