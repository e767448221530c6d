// Package module provides the patterns module
package module

import (
	"tripline/internal/modkit"
	"tripline/internal/modkit/repokit"
	"tripline/internal/services/patterns/domain"
	"tripline/internal/services/patterns/repo"
	"tripline/internal/services/patterns/service"
)

// Ports exposed by the patterns module
type Ports struct {
	Writer domain.WriterPort
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new patterns module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, service.Config{
		HardLimit: opts.HardLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Writer: svc, Reader: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "patterns" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
