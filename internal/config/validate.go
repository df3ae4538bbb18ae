package config

import (
	"otrpipe/internal/services"
)

// Validate checks structural invariants. Credential and binary availability
// are stage preflight concerns, not config validity.
func (c *Config) Validate() error {
	if c.Paths.WorkingDir == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "paths.working_dir is required", nil)
	}
	switch c.Cutter.Backend {
	case "mkvmerge", "ffmpeg":
	default:
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			"cutter.backend must be \"mkvmerge\" or \"ffmpeg\"", nil)
	}
	if c.Cutter.FrameRate <= 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "cutter.frame_rate must be positive", nil)
	}
	if c.Cutlist.MinRating < 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "cutlist.min_rating must not be negative", nil)
	}
	if c.Workers.Decode < 0 || c.Workers.Cut < 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "worker counts must not be negative", nil)
	}
	if c.Cutlist.Submit && c.Cutlist.AccessToken == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			"cutlist.access_token is required when submission is enabled", nil)
	}
	if c.Cutlist.SubmitRating < 0 || c.Cutlist.SubmitRating > 5 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "cutlist.submit_rating must be 0-5", nil)
	}
	return nil
}
