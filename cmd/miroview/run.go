// Package main starts the miroview streaming client.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miroview/miroview/internal/client"
	"github.com/miroview/miroview/internal/config"
	"github.com/miroview/miroview/internal/decode"
	"github.com/miroview/miroview/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// run wires the streaming client and blocks until shutdown.
func run(ctx context.Context, f flags) error {
	log := newLogger(f.debug)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(&cfg, f)

	mode := cfg.Transport
	if f.mode != "" {
		mode, err = decode.ParseMode(f.mode)
		if err != nil {
			return err
		}
	}

	filters, err := config.LoadOverlayPreset(cfg.OverlayPreset)
	if err != nil {
		return err
	}

	var col *metrics.Collectors
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		col = metrics.NewCollectors(reg)
		metricsSrv = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
	}

	c, err := client.New(client.Options{
		Dialer:        &client.WebSocketDialer{BaseURL: cfg.ServerURL},
		APIBaseURL:    cfg.APIBaseURL,
		Policy:        cfg.Reconnect,
		Collectors:    col,
		DialTimeout:   cfg.DialTimeout,
		SwipeSteps:    cfg.SwipeSteps,
		SwipeDuration: cfg.SwipeDuration,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	c.SetOverlayFilters(filters)

	terminal := make(chan struct{}, 1)
	c.Subscribe(&logSink{log: log, terminal: terminal})

	if err := c.Start(f.deviceID, mode, cfg.Quality); err != nil {
		return err
	}
	defer c.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case <-terminal:
		log.Warn().Msg("session ended")
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// applyFlags overlays non-empty command-line values onto the config.
func applyFlags(cfg *config.Config, f flags) {
	if f.serverURL != "" {
		cfg.ServerURL = f.serverURL
	}
	if f.apiBaseURL != "" {
		cfg.APIBaseURL = f.apiBaseURL
	}
	if f.quality != "" {
		cfg.Quality = f.quality
	}
	if f.metricsAddr != "" {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.overlayPreset != "" {
		cfg.OverlayPreset = f.overlayPreset
	}
}

// newLogger builds the console logger.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// logSink logs lifecycle events and signals terminal disconnection.
type logSink struct {
	client.NoopSink
	log      zerolog.Logger
	terminal chan struct{}
}

func (s *logSink) OnConnect() {
	s.log.Info().Msg("stream connected")
}

func (s *logSink) OnStateChange(state client.ConnectionState, attempts int) {
	s.log.Info().Stringer("state", state).Int("attempts", attempts).Msg("connection state changed")
	if state == client.StateDisconnected {
		select {
		case s.terminal <- struct{}{}:
		default:
		}
	}
}

func (s *logSink) OnMetrics(snap metrics.Snapshot) {
	s.log.Debug().Int("fps", snap.FPS).
		Float64("bandwidth_kbps", snap.BandwidthKBps).
		Int("latency_ms", snap.CaptureLatencyMs).
		Str("tier", string(snap.CaptureTier)).
		Msg("stream metrics")
}

func (s *logSink) OnError(err error) {
	s.log.Warn().Err(err).Msg("stream error")
}
