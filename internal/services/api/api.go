// Package api provides the HTTP API for the application
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tripline/internal/core/version"
	"tripline/internal/modkit"
	"tripline/internal/modkit/module"
	"tripline/internal/platform/config"
	"tripline/internal/platform/logger"
	"tripline/internal/platform/net/httpx"
	"tripline/internal/platform/store"

	pathttp "tripline/internal/services/api/patterns/http"
	patmod "tripline/internal/services/patterns/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
}

// Mount mounts the API service onto the given router
func Mount(r chi.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	pm := patmod.New(deps)
	module.Register(pm.Name(), pm.Ports())

	startedAt := time.Now().UTC()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		info := version.Info()
		httpx.RespondOK(w, req, map[string]any{
			"ok":      true,
			"service": info.Service,
			"version": info.Version,
			"started": startedAt.Format(time.RFC3339),
			"now":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	pathttp.Register(r, module.MustPortsOf[patmod.Ports](pm).Reader)
}
