// Package module provides the incidents module
package module

import (
	"tripline/internal/modkit"
	"tripline/internal/modkit/repokit"
	"tripline/internal/services/incidents/domain"
	"tripline/internal/services/incidents/repo"
	"tripline/internal/services/incidents/service"
)

// Ports exposed by the incidents module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new incidents module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, service.Config{
		HardLimit: opts.HardLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Reader: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "incidents" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
