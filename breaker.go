package ftp

import (
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"
)

// peerBreaker guards the sessions of one peer host.
type peerBreaker = gobreaker.CircuitBreaker[struct{}]

// newPeerBreakerFunc returns a constructor for per-host breakers.
// Only sessions ending with errAbusivePeer count as failures; I/O errors and
// a full session pool do not.
func newPeerBreakerFunc(cfg BreakerConfig, logger *slog.Logger) func(host string) *peerBreaker {
	return func(host string) *peerBreaker {
		settings := gobreaker.Settings{
			Name:        host,
			MaxRequests: cfg.HalfOpenSessions,
			Interval:    cfg.Interval,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				return !errors.Is(err, errAbusivePeer)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("peer breaker state changed", "peer", name, "from", from.String(), "to", to.String())
			},
		}
		return gobreaker.NewCircuitBreaker[struct{}](settings)
	}
}

// isRefused reports whether err comes from a breaker that did not let the session run.
func isRefused(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
