// Package module provides the sweep module
package module

import (
	"tripline/internal/modkit"
	histdom "tripline/internal/services/history/domain"
	incdom "tripline/internal/services/incidents/domain"
	patdom "tripline/internal/services/patterns/domain"
	"tripline/internal/services/sweep/domain"
	"tripline/internal/services/sweep/service"
)

// PortsIn are the cross-module ports the sweep consumes
type PortsIn struct {
	Incidents incdom.ReaderPort
	Patterns  patdom.WriterPort
	Archiver  histdom.ArchiverPort // optional
}

// Ports exposed by the sweep module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new sweep module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("sweep"),
	}, opts...)...)

	in, ok := b.Ports.(PortsIn)
	if !ok {
		panic("sweep module: expected WithPorts(sweep/module.PortsIn)")
	}
	if in.Incidents == nil || in.Patterns == nil {
		panic("sweep module: PortsIn missing Incidents or Patterns")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.DormancyDays != 0 {
		cfg.DormancyDays = overrides.DormancyDays
	}
	if overrides.SampleLimit != 0 {
		cfg.SampleLimit = overrides.SampleLimit
	}
	if overrides.CandidateCap != 0 {
		cfg.CandidateCap = overrides.CandidateCap
	}
	// the flag can only force a dry run on; it never overrides an
	// environment-configured dry run back off
	if overrides.DryRun {
		cfg.DryRun = true
	}

	svc := service.New(in.Incidents, in.Patterns, in.Archiver, service.Config{
		DormancyDays:     cfg.DormancyDays,
		ReactivationDays: cfg.ReactivationDays,
		SampleLimit:      cfg.SampleLimit,
		CandidateCap:     cfg.CandidateCap,
		QueryTimeout:     cfg.QueryTimeout,
		DryRun:           cfg.DryRun,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "sweep" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
