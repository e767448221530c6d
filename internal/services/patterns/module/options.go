package module

import "tripline/internal/platform/config"

// Options holds configuration settings for the patterns module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	pf := cfg.Prefix("CORE_PATTERNS_")
	return Options{
		HardLimit: pf.MayInt("HARD_LIMIT", 200),
	}
}
