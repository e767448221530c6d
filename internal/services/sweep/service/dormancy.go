package service

import (
	"context"
	"fmt"
	"time"

	"tripline/internal/core/signal"
	"tripline/internal/platform/logger"
	patdom "tripline/internal/services/patterns/domain"
)

// detectDormancies flags actors active before the cutoff with nothing since.
// The population overlaps the reactivation detector's skip cases on purpose;
// pattern keys namespace by type so the duplication is harmless
func (s *Service) detectDormancies(ctx context.Context, now time.Time) []patdom.DetectedPattern {
	log := logger.C(ctx).With().Str("detector", "dormancy").Logger()

	dormancyCutoff := now.AddDate(0, 0, -s.Cfg.DormancyDays)

	qctx, cancel := s.query(ctx)
	previous, err := s.Incidents.ActiveActors(qctx, time.Time{}, dormancyCutoff, s.Cfg.SampleLimit)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("previously active scan failed, emitting nothing")
		return nil
	}
	if len(previous) == 0 {
		return nil
	}

	qctx, cancel = s.query(ctx)
	recent, err := s.Incidents.ActiveActors(qctx, dormancyCutoff, now, s.Cfg.SampleLimit)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("recently active scan failed, emitting nothing")
		return nil
	}

	active := make(map[string]struct{}, len(recent))
	for _, a := range recent {
		active[a] = struct{}{}
	}

	candidates := make([]string, 0, s.Cfg.CandidateCap)
	for _, a := range previous {
		if _, ok := active[a]; ok {
			continue
		}
		candidates = append(candidates, a)
		if len(candidates) >= s.Cfg.CandidateCap {
			break
		}
	}

	var out []patdom.DetectedPattern
	for _, actor := range candidates {
		qctx, cancel := s.query(ctx)
		lastSeen, ok, err := s.Incidents.LastActorIncident(qctx, actor)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("actor", actor).Msg("last incident lookup failed, skipping actor")
			continue
		}
		if !ok {
			continue
		}

		dormantDays := signal.DaysBetween(lastSeen, now)
		seen := lastSeen
		out = append(out, patdom.DetectedPattern{
			Type:       signal.TypeDormantActor,
			Key:        signal.DormantActorKey{ActorID: actor, Date: now},
			Confidence: signal.DormancyConfidence(dormantDays),
			Data: patdom.Payload{
				ActorID:     actor,
				DormantDays: dormantDays,
				LastSeen:    &seen,
				Description: fmt.Sprintf("actor %s has been silent for %d days", actor, dormantDays),
			},
		})
	}
	log.Debug().Int("candidates", len(candidates)).Int("patterns", len(out)).Msg("dormancy pass done")
	return out
}
