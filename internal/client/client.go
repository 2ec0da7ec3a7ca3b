// Package client owns the stream connection lifecycle: transport setup,
// reconnection backoff, decode fan-out, and the gesture surface.
package client

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/miroview/miroview/internal/decode"
	"github.com/miroview/miroview/internal/device"
	"github.com/miroview/miroview/internal/input"
	"github.com/miroview/miroview/internal/mapper"
	"github.com/miroview/miroview/internal/metrics"
	"github.com/miroview/miroview/internal/overlay"
	"github.com/rs/zerolog"
)

const defaultDialTimeout = 10 * time.Second

// ErrNotConnected is returned by gesture calls while no session is streaming.
var ErrNotConnected = errors.New("no active stream session")

// Options configures a Client.
type Options struct {
	// Dialer opens stream transports. Required.
	Dialer Dialer
	// APIBaseURL is the device-control API root used for the REST gesture
	// fallback on transports without a control channel.
	APIBaseURL string
	// HTTPClient serves the REST fallback; nil uses a default client.
	HTTPClient *http.Client
	// Policy governs automatic reconnects; the zero value selects
	// DefaultReconnectPolicy.
	Policy ReconnectPolicy
	// Collectors exports stream counters; nil disables the export.
	Collectors *metrics.Collectors
	// DialTimeout bounds connection establishment. Zero selects a default.
	DialTimeout time.Duration
	// SwipeSteps overrides the number of interpolated move events per swipe
	// on control-channel transports. Zero keeps the forwarder default.
	SwipeSteps int
	// SwipeDuration backs Swipe calls made with a non-positive duration.
	SwipeDuration time.Duration
	// Logger receives structured session logs.
	Logger zerolog.Logger
}

// Client drives one stream session at a time. Starting a new session fully
// tears down any previous transport first; there are never two concurrent
// sockets.
type Client struct {
	dial        Dialer
	apiBase     string
	httpClient  *http.Client
	policy      ReconnectPolicy
	collectors  *metrics.Collectors
	dialTimeout time.Duration
	swipeSteps  int
	swipeDur    time.Duration
	log         zerolog.Logger
	events      *sinkSet

	mu         sync.Mutex
	gen        uint64
	state      ConnectionState
	attempts   int
	manualStop bool
	backoff    *backoff.ExponentialBackOff
	retryTimer *time.Timer

	transport Transport
	decoder   *decode.Decoder
	forwarder input.Forwarder

	session  *Session
	mapper   *mapper.Mapper
	renderer *overlay.Renderer
	tracker  *metrics.Tracker

	// frameMu orders tracker updates; decode completions may otherwise race.
	frameMu sync.Mutex

	filters overlay.Filters
}

// New creates a client. Sessions are started with Start.
func New(opts Options) (*Client, error) {
	if opts.Dialer == nil {
		return nil, errors.New("dialer is required")
	}
	policy := opts.Policy
	if policy.BaseDelay <= 0 {
		policy = DefaultReconnectPolicy()
	}
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &Client{
		dial:        opts.Dialer,
		apiBase:     opts.APIBaseURL,
		httpClient:  opts.HTTPClient,
		policy:      policy,
		collectors:  opts.Collectors,
		dialTimeout: timeout,
		swipeSteps:  opts.SwipeSteps,
		swipeDur:    opts.SwipeDuration,
		log:         opts.Logger,
		events:      newSinkSet(),
		state:       StateDisconnected,
		filters:     overlay.DefaultFilters(),
	}, nil
}

// Subscribe registers an event sink and returns its removal func. Multiple
// subscribers may observe the same session.
func (c *Client) Subscribe(sink EventSink) func() {
	return c.events.add(sink)
}

// Start opens a stream session for a device. Any previous session is fully
// torn down first, so at most one transport is ever open.
func (c *Client) Start(deviceID string, mode decode.Mode, quality string) error {
	if deviceID == "" {
		return errors.New("device id is required")
	}

	c.mu.Lock()
	c.teardownLocked()
	c.gen++
	gen := c.gen
	c.manualStop = false
	c.attempts = 0
	c.backoff = newBackOff(c.policy)
	c.session = newSession(deviceID, mode, quality)
	c.mapper = mapper.New()
	c.renderer = overlay.NewRenderer(c.mapper)
	c.renderer.SetFilters(c.filters)
	c.tracker = metrics.NewTracker(func(ms int) {
		c.log.Warn().Int("capture_ms", ms).Msg("capture duration slow, link may be degraded")
	})
	c.state = StateConnecting
	c.mu.Unlock()

	c.log.Info().Str("device", deviceID).Str("mode", string(mode)).
		Str("quality", quality).Msg("starting stream session")
	c.events.OnStateChange(StateConnecting, 0)
	go c.connect(gen)
	return nil
}

// Stop ends the session. The manual-stop flag suppresses automatic retries;
// the pending reconnect timer, if any, is cancelled before the transport is
// closed, and the final state is Disconnected.
func (c *Client) Stop() {
	c.mu.Lock()
	c.gen++
	c.manualStop = true
	c.cancelRetryLocked()
	t := c.transport
	c.transport = nil
	dec := c.decoder
	c.decoder = nil
	c.forwarder = nil
	c.attempts = 0
	changed := c.state != StateDisconnected
	c.state = StateDisconnected
	c.mu.Unlock()

	if t != nil {
		_ = t.Close()
	}
	if dec != nil {
		dec.Close()
	}
	if changed {
		c.events.OnStateChange(StateDisconnected, 0)
		c.events.OnDisconnect()
	}
}

// IsActive reports whether a session is connected or trying to connect.
func (c *Client) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Active()
}

// ConnectionState returns the current lifecycle state.
func (c *Client) ConnectionState() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the current session state, or nil before the first Start.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetOverlayFilters replaces the active overlay filter set.
func (c *Client) SetOverlayFilters(f overlay.Filters) {
	c.mu.Lock()
	c.filters = f
	r := c.renderer
	c.mu.Unlock()
	if r != nil {
		r.SetFilters(f)
	}
}

// SetDisplaySize records the rendered viewport size for coordinate mapping.
func (c *Client) SetDisplaySize(w, h float64) {
	c.mu.Lock()
	m := c.mapper
	c.mu.Unlock()
	if m != nil {
		m.SetDisplaySize(w, h)
	}
}

// CanvasToDevice converts a viewport point into device pixel coordinates.
func (c *Client) CanvasToDevice(x, y float64) (int, int) {
	c.mu.Lock()
	m := c.mapper
	c.mu.Unlock()
	if m == nil {
		return 0, 0
	}
	return m.DisplayToDevicePixel(x, y)
}

// FindElementAt hit-tests the current element list at a viewport point.
func (c *Client) FindElementAt(x, y float64) *device.UIElement {
	c.mu.Lock()
	m, r, sess := c.mapper, c.renderer, c.session
	c.mu.Unlock()
	if m == nil || r == nil || sess == nil {
		return nil
	}
	dx, dy := m.DisplayToDevicePixel(x, y)
	return r.FindElementAt(sess.Elements(), dx, dy)
}

// RenderOverlay composes the current frame with filtered element hitboxes.
// It returns nil when no frame has been decoded yet.
func (c *Client) RenderOverlay() *image.RGBA {
	c.mu.Lock()
	r, sess := c.renderer, c.session
	c.mu.Unlock()
	if r == nil || sess == nil {
		return nil
	}
	return r.Render(sess.Frame().Raster, sess.Elements())
}

// Tap dispatches a tap at a viewport point.
func (c *Client) Tap(ctx context.Context, x, y float64) error {
	fwd, dx, dy, err := c.gestureTarget(x, y)
	if err != nil {
		return err
	}
	return fwd.Tap(ctx, dx, dy)
}

// Swipe dispatches a swipe between two viewport points. The returned task
// can be cancelled mid-swipe.
func (c *Client) Swipe(ctx context.Context, x0, y0, x1, y1 float64, duration time.Duration) (*input.SwipeTask, error) {
	if duration <= 0 {
		duration = c.swipeDur
	}
	fwd, dx0, dy0, err := c.gestureTarget(x0, y0)
	if err != nil {
		return nil, err
	}
	_, dx1, dy1, err := c.gestureTarget(x1, y1)
	if err != nil {
		return nil, err
	}
	return fwd.Swipe(ctx, dx0, dy0, dx1, dy1, duration)
}

// PressBack sends the device back key.
func (c *Client) PressBack(ctx context.Context) error {
	return c.pressKey(ctx, input.KeycodeBack)
}

// PressHome sends the device home key.
func (c *Client) PressHome(ctx context.Context) error {
	return c.pressKey(ctx, input.KeycodeHome)
}

func (c *Client) pressKey(ctx context.Context, keycode int) error {
	c.mu.Lock()
	fwd := c.forwarder
	c.mu.Unlock()
	if fwd == nil {
		return ErrNotConnected
	}
	return fwd.PressKey(ctx, keycode)
}

// gestureTarget resolves the forwarder and converts a viewport point into
// device pixels.
func (c *Client) gestureTarget(x, y float64) (input.Forwarder, int, int, error) {
	c.mu.Lock()
	fwd, m := c.forwarder, c.mapper
	c.mu.Unlock()
	if fwd == nil || m == nil {
		return nil, 0, 0, ErrNotConnected
	}
	dx, dy := m.DisplayToDevicePixel(x, y)
	return fwd, dx, dy, nil
}

// connect dials the transport for the current session generation.
func (c *Client) connect(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.session == nil {
		c.mu.Unlock()
		return
	}
	sess, m, tr := c.session, c.mapper, c.tracker
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()
	t, err := c.dial.Dial(ctx, sess.DeviceID(), sess.Mode(), sess.Quality())
	if err != nil {
		c.log.Warn().Err(err).Msg("stream dial failed")
		c.onTransportClosed(gen, err)
		return
	}

	c.mu.Lock()
	if gen != c.gen || c.manualStop {
		c.mu.Unlock()
		_ = t.Close()
		return
	}
	c.transport = t
	c.attempts = 0
	c.backoff.Reset()
	dec := decode.New(sess.Mode(), nil, c.buildSink(gen, sess, m, tr), c.log)
	c.decoder = dec
	if ctrl := t.Control(); ctrl != nil {
		fwd := input.NewControlForwarder(ctrl, func() (int, int) {
			w, h, _ := m.DeviceSize()
			return w, h
		})
		if c.swipeSteps > 0 {
			fwd.SetSwipeSteps(c.swipeSteps)
		}
		c.forwarder = fwd
	} else {
		c.forwarder = input.NewRESTForwarder(c.httpClient, c.apiBase, sess.DeviceID())
	}
	c.state = StateConnected
	c.mu.Unlock()

	c.log.Info().Str("device", sess.DeviceID()).Msg("stream connected")
	c.events.OnStateChange(StateConnected, 0)
	c.events.OnConnect()
	go c.readLoop(gen, t, dec)
}

// readLoop pumps transport messages into the decoder until the connection
// closes.
func (c *Client) readLoop(gen uint64, t Transport, dec *decode.Decoder) {
	for {
		msg, err := t.Receive()
		if err != nil {
			c.onTransportClosed(gen, err)
			return
		}
		if msg.Binary {
			dec.HandleBinary(msg.Data)
		} else {
			dec.HandleText(msg.Data)
		}
	}
}

// onTransportClosed reacts to a dial failure or connection loss. Errors do
// not drive state transitions themselves; this close path does.
func (c *Client) onTransportClosed(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	t := c.transport
	c.transport = nil
	dec := c.decoder
	c.decoder = nil
	c.forwarder = nil

	if c.manualStop {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.closeQuiet(t, dec)
		return
	}

	if c.attempts >= c.policy.MaxAttempts {
		// Terminal: a further start() is required to resume.
		c.state = StateDisconnected
		attempts := c.attempts
		c.mu.Unlock()
		c.closeQuiet(t, dec)

		c.log.Error().Int("attempts", attempts).Msg("reconnect attempts exhausted")
		if c.collectors != nil {
			c.collectors.Disconnects.Inc()
		}
		c.events.OnError(fmt.Errorf("reconnect attempts exhausted after %d tries", attempts))
		c.events.OnStateChange(StateDisconnected, attempts)
		c.events.OnDisconnect()
		return
	}

	delay := c.backoff.NextBackOff()
	c.attempts++
	attempts := c.attempts
	c.state = StateReconnecting
	c.cancelRetryLocked()
	c.retryTimer = time.AfterFunc(delay, func() { c.retry(gen) })
	c.mu.Unlock()
	c.closeQuiet(t, dec)

	c.log.Warn().Err(cause).Int("attempt", attempts).Dur("delay", delay).
		Msg("stream closed, scheduling reconnect")
	if c.collectors != nil {
		c.collectors.Disconnects.Inc()
		c.collectors.Reconnects.Inc()
	}
	if cause != nil {
		c.events.OnError(cause)
	}
	c.events.OnStateChange(StateReconnecting, attempts)
	c.events.OnDisconnect()
}

// retry fires when the reconnect timer elapses.
func (c *Client) retry(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.manualStop {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	c.mu.Unlock()
	c.connect(gen)
}

// terminate ends the session without retrying, for unrecoverable remote
// conditions such as a missing device.
func (c *Client) terminate(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.cancelRetryLocked()
	t := c.transport
	c.transport = nil
	dec := c.decoder
	c.decoder = nil
	c.forwarder = nil
	changed := c.state != StateDisconnected
	c.state = StateDisconnected
	c.mu.Unlock()
	c.closeQuiet(t, dec)

	c.log.Error().Err(cause).Msg("terminating stream session")
	c.events.OnError(cause)
	if changed {
		c.events.OnStateChange(StateDisconnected, 0)
		c.events.OnDisconnect()
	}
}

// buildSink wires decoder output into session state, coordinate mapping,
// metrics, and subscribers. The session, mapper, and tracker are captured so
// decode completions outlasting the session never touch a successor's state;
// emissions are additionally gated on the session generation.
func (c *Client) buildSink(gen uint64, sess *Session, m *mapper.Mapper, tr *metrics.Tracker) decode.Sink {
	return decode.Sink{
		OnFrame: func(f decode.Frame) {
			if !c.sessionLive(gen) {
				return
			}
			if f.Width > 0 && f.Height > 0 {
				m.SetStreamSize(f.Width, f.Height)
			}
			if sess.SetFrame(f) {
				m.AdoptDeviceSize(f.Width, f.Height)
				c.log.Info().Int("width", f.Width).Int("height", f.Height).
					Msg("raster dimensions changed, cached elements cleared")
			} else if _, _, known := m.DeviceSize(); !known && f.Width > 0 {
				m.AdoptDeviceSize(f.Width, f.Height)
			}

			c.frameMu.Lock()
			snap := tr.RecordFrame(f.Bytes, f.CaptureMs, f.Timestamp)
			c.frameMu.Unlock()

			c.collectors.ObserveFrame(f.Bytes, snap)
			c.events.OnFrame(FrameMeta{
				Seq:       f.Seq,
				Width:     f.Width,
				Height:    f.Height,
				CaptureMs: f.CaptureMs,
			})
			c.events.OnMetrics(snap)
		},
		OnElements: func(els []device.UIElement) {
			if !c.sessionLive(gen) {
				return
			}
			sess.SetElements(els)
			if _, _, known := m.DeviceSize(); !known {
				m.InferDeviceSize(els)
			}
		},
		OnDescriptor: func(d device.Descriptor) {
			if !c.sessionLive(gen) {
				return
			}
			sess.SetDescriptor(d)
			m.SetDeviceSize(d.Width, d.Height)
		},
		OnClipboard: func(text string) {
			if c.sessionLive(gen) {
				sess.SetClipboard(text)
			}
		},
		OnRemoteErr: func(msg string) {
			if !c.sessionLive(gen) {
				return
			}
			if strings.Contains(strings.ToLower(msg), "device not found") {
				c.terminate(gen, fmt.Errorf("remote: %s", msg))
				return
			}
			c.events.OnError(fmt.Errorf("remote: %s", msg))
		},
		OnError: func(err error) {
			if !c.sessionLive(gen) {
				return
			}
			if c.collectors != nil {
				c.collectors.DecodeFailures.Inc()
			}
			c.events.OnError(err)
		},
	}
}

// sessionLive reports whether a sink generation still belongs to the current
// session.
func (c *Client) sessionLive(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// teardownLocked releases the current transport and timer. Callers hold mu.
func (c *Client) teardownLocked() {
	c.cancelRetryLocked()
	if c.transport != nil {
		_ = c.transport.Close()
		c.transport = nil
	}
	if c.decoder != nil {
		c.decoder.Close()
		c.decoder = nil
	}
	c.forwarder = nil
}

// cancelRetryLocked stops the single pending reconnect timer, if any.
func (c *Client) cancelRetryLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

// closeQuiet releases a transport and decoder outside the client lock.
func (c *Client) closeQuiet(t Transport, dec *decode.Decoder) {
	if t != nil {
		_ = t.Close()
	}
	if dec != nil {
		dec.Close()
	}
}
