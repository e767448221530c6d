// Package module provides the history module
package module

import (
	"tripline/internal/modkit"
	"tripline/internal/services/history/domain"
	"tripline/internal/services/history/service"
)

// Ports exposed by the history module
type Ports struct {
	Archiver domain.ArchiverPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new history module. When ClickHouse is not configured
// the archiver port stays nil and consumers skip archiving
func New(deps modkit.Deps) *Module {
	m := &Module{deps: deps}
	if deps.CH != nil {
		m.ports = Ports{Archiver: service.New(deps.CH)}
	}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "history" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
