package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"tripline/internal/modkit/repokit"
	"tripline/internal/platform/config"
	"tripline/internal/platform/logger"
	"tripline/internal/platform/net/httpx"
	"tripline/internal/platform/store"

	"tripline/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (API_*)
	root := config.New()
	apiCfg := root.Prefix("API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	srv := httpx.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", []string{"*"}),
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		m.Use(httpx.AccessLog(apiCfg.MayDuration("SLOW_REQUEST", time.Second)))
	})

	api.Mount(srv.Mux(), api.Options{
		Config: root,
		Store:  st,
		Logger: l,
	})

	// stop on SIGINT/SIGTERM, then drain in-flight requests
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
