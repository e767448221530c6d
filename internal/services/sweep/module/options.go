package module

import (
	"time"

	"tripline/internal/platform/config"
)

// Options holds configuration settings for the sweep module.
// CLI flag overrides win over environment values
type Options struct {
	DormancyDays     int
	ReactivationDays int
	SampleLimit      int
	CandidateCap     int
	QueryTimeout     time.Duration
	DryRun           bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sw := cfg.Prefix("CORE_SWEEP_")
	return Options{
		DormancyDays:     sw.MayInt("DORMANCY_DAYS", 90),
		ReactivationDays: sw.MayInt("REACTIVATION_DAYS", 7),
		SampleLimit:      sw.MayInt("SAMPLE_LIMIT", 500),
		CandidateCap:     sw.MayInt("CANDIDATE_CAP", 50),
		QueryTimeout:     sw.MayDuration("QUERY_TIMEOUT", 10*time.Second),
		DryRun:           sw.MayBool("DRY_RUN", false),
	}
}
