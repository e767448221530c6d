package service

import (
	"context"
	"fmt"
	"time"

	"tripline/internal/core/signal"
	"tripline/internal/platform/logger"
	patdom "tripline/internal/services/patterns/domain"
)

// detectReactivations flags actors silent for at least DormancyDays who
// resumed activity inside the trailing reactivation window. Read failures
// degrade to an empty result; per-actor failures skip that actor only
func (s *Service) detectReactivations(ctx context.Context, now time.Time) []patdom.DetectedPattern {
	log := logger.C(ctx).With().Str("detector", "reactivation").Logger()

	reactivationCutoff := now.AddDate(0, 0, -s.Cfg.ReactivationDays)
	dormancyCutoff := now.AddDate(0, 0, -s.Cfg.DormancyDays)

	qctx, cancel := s.query(ctx)
	recent, err := s.Incidents.ActiveActors(qctx, reactivationCutoff, now, s.Cfg.SampleLimit)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("recently active scan failed, emitting nothing")
		return nil
	}
	if len(recent) == 0 {
		return nil
	}

	var out []patdom.DetectedPattern
	for _, actor := range recent {
		p, ok := s.checkReactivation(ctx, actor, now, reactivationCutoff, dormancyCutoff)
		if ok {
			out = append(out, p)
		}
	}
	log.Debug().Int("recent_actors", len(recent)).Int("patterns", len(out)).Msg("reactivation pass done")
	return out
}

// checkReactivation evaluates one actor independently of all others
func (s *Service) checkReactivation(
	ctx context.Context,
	actor string,
	now, reactivationCutoff, dormancyCutoff time.Time,
) (patdom.DetectedPattern, bool) {
	log := logger.C(ctx).With().Str("detector", "reactivation").Str("actor", actor).Logger()

	qctx, cancel := s.query(ctx)
	lastPrior, ok, err := s.Incidents.LastActorIncidentBefore(qctx, actor, dormancyCutoff)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("history lookup failed, skipping actor")
		return patdom.DetectedPattern{}, false
	}
	if !ok {
		// new actor, not a reactivation
		return patdom.DetectedPattern{}, false
	}

	qctx, cancel = s.query(ctx)
	gapped, err := s.Incidents.AnyActorIncidentBetween(qctx, actor, lastPrior, reactivationCutoff)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("gap check failed, skipping actor")
		return patdom.DetectedPattern{}, false
	}
	if gapped {
		// activity inside the would-be dormant stretch, never actually dormant
		return patdom.DetectedPattern{}, false
	}

	// the gap check guarantees silence but the cutoff is a fixed moment,
	// so the boundary still has to hold numerically
	dormantDays := signal.DaysBetween(lastPrior, reactivationCutoff)
	if dormantDays < s.Cfg.DormancyDays {
		return patdom.DetectedPattern{}, false
	}

	return patdom.DetectedPattern{
		Type:       signal.TypeReactivatedActor,
		Key:        signal.ReactivatedActorKey{ActorID: actor, Date: now},
		Confidence: signal.DormancyConfidence(dormantDays),
		Data: patdom.Payload{
			ActorID:     actor,
			DormantDays: dormantDays,
			Description: fmt.Sprintf("actor %s resumed activity after %d days dormant", actor, dormantDays),
		},
	}, true
}
