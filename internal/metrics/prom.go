package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors exports stream counters and gauges to a Prometheus registry.
type Collectors struct {
	FramesTotal    prometheus.Counter
	BytesTotal     prometheus.Counter
	DecodeFailures prometheus.Counter
	Reconnects     prometheus.Counter
	Disconnects    prometheus.Counter

	FPS              prometheus.Gauge
	BandwidthKBps    prometheus.Gauge
	CaptureLatencyMs prometheus.Gauge
}

// NewCollectors registers all stream metrics with the given registerer.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		FramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "miroview_frames_total",
			Help: "Total decoded frames shown",
		}),
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "miroview_stream_bytes_total",
			Help: "Total wire payload bytes received",
		}),
		DecodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "miroview_decode_failures_total",
			Help: "Messages dropped because they failed to decode",
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "miroview_reconnects_total",
			Help: "Automatic reconnect attempts",
		}),
		Disconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "miroview_disconnects_total",
			Help: "Transport closures, expected or not",
		}),
		FPS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "miroview_fps",
			Help: "Rolling frames per second",
		}),
		BandwidthKBps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "miroview_bandwidth_kbps",
			Help: "Rolling bandwidth in KB/s",
		}),
		CaptureLatencyMs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "miroview_capture_latency_ms",
			Help: "Capture-to-receipt latency in milliseconds",
		}),
	}
}

// ObserveFrame records one frame arrival and the resulting snapshot.
func (c *Collectors) ObserveFrame(bytes int, snap Snapshot) {
	if c == nil {
		return
	}
	c.FramesTotal.Inc()
	c.BytesTotal.Add(float64(bytes))
	c.FPS.Set(float64(snap.FPS))
	c.BandwidthKBps.Set(snap.BandwidthKBps)
	c.CaptureLatencyMs.Set(float64(snap.CaptureLatencyMs))
}
