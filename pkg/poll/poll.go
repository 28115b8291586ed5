package poll

import (
	"time"

	"wifiphoto/pkg/errors"
	"wifiphoto/pkg/logger"
)

// Check reports whether the awaited condition holds. A returned error aborts
// polling immediately.
type Check func() (bool, error)

// Config holds polling configuration
type Config struct {
	// MaxAttempts is the number of checks before giving up
	MaxAttempts int
	// Interval is the fixed pause separating attempts
	Interval time.Duration
	// Sleep is the blocking pause implementation (nil means time.Sleep),
	// injectable for tests
	Sleep func(time.Duration)
	// Logger for poll attempts
	Logger logger.Logger
}

// DefaultConfig returns the vendor server's poll bounds: five attempts two
// seconds apart
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Interval:    2 * time.Second,
		Logger:      logger.GetLogger(),
	}
}

// Do runs check up to cfg.MaxAttempts times with a fixed blocking pause
// between attempts. It returns nil as soon as a check reports true, the
// check's error if one fails, or a compression_timeout error once all
// attempts are exhausted.
func Do(check Check, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			sleep(cfg.Interval)
		}

		ready, err := check()
		if err != nil {
			return err
		}
		if ready {
			if cfg.Logger != nil {
				cfg.Logger.DebugWithFields("poll condition met", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if cfg.Logger != nil {
			cfg.Logger.DebugWithFields("not ready yet", map[string]interface{}{
				"attempt":      attempt,
				"max_attempts": cfg.MaxAttempts,
				"interval_ms":  cfg.Interval.Milliseconds(),
			})
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.ErrorWithFields("poll attempts exhausted", map[string]interface{}{
			"max_attempts": cfg.MaxAttempts,
		})
	}
	return errors.New(errors.ErrorTypeTimeout,
		"server took too long to prepare download (%d checks %s apart)", cfg.MaxAttempts, cfg.Interval)
}
