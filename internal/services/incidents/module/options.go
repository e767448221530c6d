package module

import "tripline/internal/platform/config"

// Options holds configuration settings for the incidents module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	inc := cfg.Prefix("CORE_INCIDENTS_")
	return Options{
		HardLimit: inc.MayInt("HARD_LIMIT", 500),
	}
}
