package retry

import (
	"time"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/rs/zerolog"
)

// FromConfig creates retry options from the retry section of cfg. Retry
// decisions are logged at debug level on logger.
func FromConfig(cfg *config.Config, logger zerolog.Logger) Options {
	if !cfg.Retry.Enabled {
		return Options{Logger: logger}
	}

	return Options{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialDelay:    time.Duration(cfg.Retry.InitialDelay) * time.Millisecond,
		MaxDelay:        time.Duration(cfg.Retry.MaxDelay) * time.Millisecond,
		BackoffFactor:   cfg.Retry.BackoffFactor,
		JitterFactor:    cfg.Retry.JitterFactor,
		RetryableErrors: append([]string(nil), cfg.Retry.RetryableErrors...),
		Logger:          logger,
	}
}
