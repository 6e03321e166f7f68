package service

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/domainsuffixes/internal/logging"
)

// Run reloads the registry every RefreshInterval until ctx is done. Failed
// reloads are retried with exponential backoff instead of waiting a full
// interval. It returns immediately when the interval is zero.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.RefreshInterval <= 0 {
		return nil
	}

	wait := s.cfg.RefreshInterval
	var failures int
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logging.Info("registry refresh stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := s.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			wait = calcBackoff(s.cfg.InitialBackoff, s.cfg.MaxBackoff, failures)
			logging.Warn("registry refresh failed",
				logging.Err(err),
				slog.Int("attempt", failures),
				logging.Duration("backoff", wait))
			continue
		}

		if failures > 0 {
			logging.Info("registry refresh recovered", slog.Int("failures", failures))
		}
		failures = 0
		wait = s.cfg.RefreshInterval
	}
}

// calcBackoff doubles initial per failure up to max, with +/-20% jitter.
func calcBackoff(initial, max time.Duration, failures int) time.Duration {
	backoff := max
	if f := float64(initial) * math.Pow(2, float64(failures-1)); f < float64(max) {
		backoff = time.Duration(f)
	}

	const jitterFrac = 0.2
	jitter := time.Duration(rand.Float64()*2*jitterFrac*float64(backoff)) -
		time.Duration(jitterFrac*float64(backoff))
	return backoff + jitter
}
