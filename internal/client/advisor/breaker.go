package advisor

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker in front of the generator.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// ConsecutiveQuotaFailures trips the breaker once reached.
	ConsecutiveQuotaFailures uint32
	// FailureThreshold and MinRequests trip on the overall failure ratio.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the settings used by the CLI and server.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                     "gemini",
		MaxRequests:              1,
		Interval:                 time.Minute,
		Timeout:                  30 * time.Second,
		ConsecutiveQuotaFailures: 2,
		FailureThreshold:         0.8,
		MinRequests:              5,
	}
}

func newBreaker(cfg BreakerConfig, logger logging.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveQuotaFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveQuotaFailures {
				return true
			}
			if cfg.MinRequests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
		// Only upstream refusals count against the service; cancelled calls
		// and malformed prompts do not.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true
			}
			return !IsQuotaError(err)
		},
	})
}
