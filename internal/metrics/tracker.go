// Package metrics derives rolling stream statistics from frame arrivals.
package metrics

import (
	"math"
	"time"
)

const (
	fpsWindow       = 10
	bandwidthWindow = 5

	captureSlowMs = 1000
	captureOKMs   = 500
)

// Tier classifies server-side capture duration into link quality buckets.
type Tier string

const (
	// TierGood is a capture duration under 500 ms.
	TierGood Tier = "good"
	// TierOK is a capture duration between 500 and 1000 ms.
	TierOK Tier = "ok"
	// TierSlow is a capture duration above 1000 ms.
	TierSlow Tier = "slow"
)

// ClassifyCapture buckets a capture duration in milliseconds.
func ClassifyCapture(ms int) Tier {
	switch {
	case ms > captureSlowMs:
		return TierSlow
	case ms >= captureOKMs:
		return TierOK
	default:
		return TierGood
	}
}

// Snapshot is one published metrics sample.
type Snapshot struct {
	FPS              int
	BandwidthKBps    float64
	CaptureLatencyMs int
	FrameCount       int
	CaptureTier      Tier
}

// Tracker keeps bounded rolling windows over frame arrival events. It is
// driven from the session's message loop and is not safe for concurrent use.
type Tracker struct {
	now func() time.Time

	deltas    []float64
	lastFrame time.Time

	windowStart time.Time
	windowBytes int
	bwSamples   []float64

	frameCount int
	latencyMs  int
	tier       Tier

	slowWarned    bool
	onSlowCapture func(ms int)
}

// NewTracker returns a tracker with an empty history.
func NewTracker(onSlowCapture func(ms int)) *Tracker {
	return &Tracker{now: time.Now, tier: TierGood, onSlowCapture: onSlowCapture}
}

// SetNowFunc overrides the clock used for windowing.
func (t *Tracker) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		t.now = fn
	}
}

// Reset clears all rolling state for a fresh connection.
func (t *Tracker) Reset() {
	t.deltas = nil
	t.lastFrame = time.Time{}
	t.windowStart = time.Time{}
	t.windowBytes = 0
	t.bwSamples = nil
	t.frameCount = 0
	t.latencyMs = 0
	t.tier = TierGood
	t.slowWarned = false
}

// RecordFrame folds one frame arrival into the windows and returns the
// updated snapshot. timestamp is the server capture time in epoch seconds,
// or zero when the transport does not report one.
func (t *Tracker) RecordFrame(bytes, captureMs int, timestamp float64) Snapshot {
	now := t.now()
	t.frameCount++

	if !t.lastFrame.IsZero() {
		deltaMs := float64(now.Sub(t.lastFrame)) / float64(time.Millisecond)
		t.deltas = append(t.deltas, deltaMs)
		if len(t.deltas) > fpsWindow {
			t.deltas = t.deltas[1:]
		}
	}
	t.lastFrame = now

	t.recordBytes(now, bytes)

	if timestamp > 0 {
		t.latencyMs = int(math.Round(float64(now.UnixMilli()) - timestamp*1000))
	}

	if captureMs > 0 {
		t.tier = ClassifyCapture(captureMs)
		if t.tier == TierSlow && !t.slowWarned {
			t.slowWarned = true
			if t.onSlowCapture != nil {
				t.onSlowCapture(captureMs)
			}
		}
	}

	return t.Snapshot()
}

// Snapshot returns the current rolling averages.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		FPS:              t.fps(),
		BandwidthKBps:    mean(t.bwSamples),
		CaptureLatencyMs: t.latencyMs,
		FrameCount:       t.frameCount,
		CaptureTier:      t.tier,
	}
}

// recordBytes accumulates payload bytes into one-second wall-clock windows.
func (t *Tracker) recordBytes(now time.Time, bytes int) {
	if t.windowStart.IsZero() {
		t.windowStart = now
	}
	for now.Sub(t.windowStart) >= time.Second {
		t.bwSamples = append(t.bwSamples, float64(t.windowBytes)/1024)
		if len(t.bwSamples) > bandwidthWindow {
			t.bwSamples = t.bwSamples[1:]
		}
		t.windowBytes = 0
		t.windowStart = t.windowStart.Add(time.Second)
	}
	t.windowBytes += bytes
}

// fps derives the rolling frame rate from inter-frame deltas.
func (t *Tracker) fps() int {
	m := mean(t.deltas)
	if m <= 0 {
		return 0
	}
	return int(math.Round(1000 / m))
}

// mean returns the arithmetic mean of a sample window.
func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
