package client

import (
	"time"

	"github.com/cenkalti/backoff"
)

// ReconnectPolicy governs automatic retry delays. It is immutable for the
// lifetime of a session.
type ReconnectPolicy struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultReconnectPolicy mirrors the server's recommended retry schedule.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 5,
	}
}

// newBackOff builds the delay schedule delay(k) = min(base * mult^k, max).
// Randomization is disabled so the schedule is deterministic, and elapsed
// time never stops it; the attempt cap is enforced by the client.
func newBackOff(p ReconnectPolicy) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
