// Package server собирает gin-движок со всеми модулями и держит HTTP-сервер.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare/internal/aca1001"
	"github.com/axgrid/aftercare/internal/aca1002"
	"github.com/axgrid/aftercare/internal/aca2003"
	"github.com/axgrid/aftercare/internal/aca3001"
	"github.com/axgrid/aftercare/internal/aca4001"
	"github.com/axgrid/aftercare/internal/auth"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/config"
	"github.com/axgrid/aftercare/internal/database"
	"github.com/axgrid/aftercare/internal/health"
	"github.com/axgrid/aftercare/internal/logging"
	"github.com/axgrid/aftercare/internal/metrics"
	"github.com/axgrid/aftercare/internal/report01"
	"github.com/axgrid/aftercare/internal/report02"
)

type registrar interface {
	Register(r gin.IRouter)
}

type Server struct {
	cfg    config.HTTPConfig
	engine *gin.Engine
	log    zerolog.Logger
}

// New связывает хранилище, кэш и метрики с контроллерами модулей.
func New(cfg *config.Config, log zerolog.Logger, db *gorm.DB, c cache.Cache, m *metrics.Metrics) *Server {
	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), logging.RequestID(), logging.AccessLog(log), m.Middleware())

	health.NewController(func(ctx context.Context) error { return database.Ping(ctx, db) }, log).Register(engine)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/", auth.New(cfg.Auth.Secret).Middleware())

	cards := aca1001.NewRepository(db)
	modules := []registrar{
		aca1001.NewController(aca1001.NewService(cards, log)),
		aca1002.NewController(aca1002.NewService(aca1002.NewRepository(db), c, log)),
		aca2003.NewController(aca2003.NewService(aca2003.NewRepository(db), log)),
		aca3001.NewController(aca3001.NewService(aca3001.NewRepository(db), cards, c, log)),
		aca4001.NewController(aca4001.NewService(aca4001.NewRepository(db), log)),
		report01.NewController(report01.NewService(
			report01.NewRepository(db), report01.NewPrintLogger(db), report01.CSVRenderer{}, m.PrintedRows, log)),
		report02.NewController(report02.NewService(report02.NewRepository(db), c, m.CacheHits, log)),
	}
	for _, mod := range modules {
		mod.Register(api)
	}
	registerLookups(api, db)
	api.Any("/admin/*path", gin.WrapH(adminHandler(db, c, log)))

	return &Server{cfg: cfg.HTTP, engine: engine, log: log}
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run слушает до отмены ctx, затем ждёт завершения запросов не дольше ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down http server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
