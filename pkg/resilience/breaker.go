// Package resilience holds circuit breaker settings shared by outbound calls.
package resilience

import (
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultHalfOpenRequests = 3
	defaultOpenTimeout      = 5 * time.Second
)

// NewSettings builds gobreaker settings from configuration. The breaker trips after more than
// ConsecutiveFailures failures in a row, or once the failure ratio exceeds ErrorRatePercent
// with more than ConsecutiveFailures requests observed.
// isSuccessful decides which errors count against the breaker; nil counts every error.
func NewSettings(name string, cfg config.CircuitBreakerConfig, isSuccessful func(error) bool) gobreaker.Settings {
	halfOpen := cfg.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = defaultHalfOpenRequests
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpen,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return ReadyToTrip(cfg, counts)
		},
		IsSuccessful: isSuccessful,
	}
}

// ReadyToTrip reports whether the counts collected in the closed state should open the breaker.
func ReadyToTrip(cfg config.CircuitBreakerConfig, counts gobreaker.Counts) bool {
	if counts.ConsecutiveFailures > cfg.ConsecutiveFailures {
		return true
	}
	total := counts.TotalSuccesses + counts.TotalFailures
	if total <= cfg.ConsecutiveFailures || cfg.ErrorRatePercent == 0 {
		return false
	}
	return float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent)
}
