package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"tripline/internal/core/signal"
	"tripline/internal/platform/logger"
	patdom "tripline/internal/services/patterns/domain"
)

// spike thresholds are inclusive; the dead zone between them is normal variance
const (
	spikeIncreaseRatio = 1.5
	spikeDecreaseRatio = 0.5
)

// detectSpikes compares the trailing week's incident rate against the
// 21-day baseline before it. Global, not per-actor; at most one increase
// and one decrease can come out of a single run
func (s *Service) detectSpikes(ctx context.Context, now time.Time) []patdom.DetectedPattern {
	log := logger.C(ctx).With().Str("detector", "spike").Logger()

	w := signal.SpikeWindows(now)

	qctx, cancel := s.query(ctx)
	recent, err := s.Incidents.CountRange(qctx, w.RecentStart, w.RecentEnd)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("recent count failed, emitting nothing")
		return nil
	}

	qctx, cancel = s.query(ctx)
	baseline, err := s.Incidents.CountRange(qctx, w.BaselineStart, w.BaselineEnd)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("baseline count failed, emitting nothing")
		return nil
	}

	recentRate := float64(recent) / float64(signal.RecentWindowDays)
	baselineRate := float64(baseline) / float64(signal.BaselineWindowDays)
	if baselineRate == 0 {
		// no ratio on a sparse baseline
		return nil
	}

	ratio := recentRate / baselineRate

	var dir signal.Direction
	switch {
	case ratio >= spikeIncreaseRatio:
		dir = signal.DirectionIncrease
	case ratio <= spikeDecreaseRatio:
		dir = signal.DirectionDecrease
	default:
		return nil
	}

	pct := int(math.Round(math.Abs(ratio-1) * 100))
	var desc string
	if dir == signal.DirectionIncrease {
		desc = fmt.Sprintf("incident volume up %d%% versus the trailing baseline", pct)
	} else {
		desc = fmt.Sprintf("incident volume down %d%% versus the trailing baseline", pct)
	}

	log.Debug().Float64("ratio", ratio).Str("direction", string(dir)).Msg("spike detected")
	return []patdom.DetectedPattern{{
		Type:       signal.TypeActivitySpike,
		Key:        signal.ActivitySpikeKey{Direction: dir, Date: now},
		Confidence: signal.SpikeConfidence(dir, ratio),
		Data: patdom.Payload{
			Direction:    string(dir),
			Ratio:        ratio,
			RecentRate:   recentRate,
			BaselineRate: baselineRate,
			Description:  desc,
		},
	}}
}
