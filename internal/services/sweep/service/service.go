// Package service implements the sweep orchestrator and its three detectors
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripline/internal/core/signal"
	"tripline/internal/platform/logger"
	histdom "tripline/internal/services/history/domain"
	incdom "tripline/internal/services/incidents/domain"
	patdom "tripline/internal/services/patterns/domain"
	"tripline/internal/services/sweep/domain"
)

// Config for the sweep service
type Config struct {
	// DormancyDays is the minimum silent stretch before an actor counts as
	// dormant; shared by the reactivation and dormancy detectors
	DormancyDays int

	// ReactivationDays is the trailing window that decides "currently active"
	ReactivationDays int

	// SampleLimit bounds the previously-active actor scan. Actors active only
	// outside the sampled window can never be flagged dormant; the cap trades
	// completeness for per-run cost and is configurable for that reason
	SampleLimit int

	// CandidateCap bounds per-run dormancy candidates after the set difference
	CandidateCap int

	// QueryTimeout bounds each event-store read
	QueryTimeout time.Duration

	// DryRun computes and reports but skips all writes
	DryRun bool
}

// Service implements domain.RunnerPort
type Service struct {
	Incidents incdom.ReaderPort
	Patterns  patdom.WriterPort
	Archive   histdom.ArchiverPort // optional
	Cfg       Config
}

// New constructs a new sweep service
func New(inc incdom.ReaderPort, pat patdom.WriterPort, arch histdom.ArchiverPort, cfg Config) *Service {
	if cfg.DormancyDays <= 0 {
		cfg.DormancyDays = 90
	}
	if cfg.ReactivationDays <= 0 {
		cfg.ReactivationDays = 7
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = 500
	}
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = 50
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return &Service{Incidents: inc, Patterns: pat, Archive: arch, Cfg: cfg}
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context, now time.Time) (domain.Summary, error) {
	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRun(ctx, runID, "sweep")
	}
	log := logger.C(ctx)
	log.Info().Time("as_of", now).Bool("dry_run", s.Cfg.DryRun).Msg("sweep starting")

	// detectors only read and have no data dependency on each other
	var (
		wg                       sync.WaitGroup
		reacts, dormants, spikes []patdom.DetectedPattern
	)
	wg.Add(3)
	go func() { defer wg.Done(); reacts = s.detectReactivations(ctx, now) }()
	go func() { defer wg.Done(); dormants = s.detectDormancies(ctx, now) }()
	go func() { defer wg.Done(); spikes = s.detectSpikes(ctx, now) }()
	wg.Wait()

	all := make([]patdom.DetectedPattern, 0, len(reacts)+len(dormants)+len(spikes))
	all = append(all, reacts...)
	all = append(all, dormants...)
	all = append(all, spikes...)

	sum := domain.Summary{
		RunID:  runID,
		RunAt:  now,
		DryRun: s.Cfg.DryRun,
		Counts: map[signal.Type]int{},
	}
	for _, x := range all {
		sum.Counts[x.Type]++
	}
	for _, x := range reacts {
		sum.Reactivated = append(sum.Reactivated, x.Data.ActorID)
	}
	for _, x := range spikes {
		sum.Spikes = append(sum.Spikes, x.Data.Description)
	}

	if s.Cfg.DryRun {
		log.Info().Int("patterns", len(all)).Msg("dry run, skipping writes")
		return sum, nil
	}

	rep, err := s.Patterns.Reconcile(ctx, now, all)
	if err != nil {
		// persistence shortfall, not a fatal condition for the run
		log.Error().Err(err).Msg("pattern reconcile failed")
	}
	sum.Report = rep

	if s.Archive != nil && len(all) > 0 {
		if err := s.Archive.Append(ctx, runID, now, all); err != nil {
			log.Warn().Err(err).Msg("pattern history append failed")
		}
	}

	log.Info().
		Int("patterns", len(all)).
		Int("inserted", rep.Inserted).
		Int("updated", rep.Updated).
		Int("failed", rep.Failed).
		Int("rejected", rep.Rejected).
		Msg("sweep complete")
	return sum, nil
}

// query bounds one event-store read with the configured timeout
func (s *Service) query(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Cfg.QueryTimeout)
}
