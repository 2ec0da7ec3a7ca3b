package client

import (
	"sync"

	"github.com/miroview/miroview/internal/metrics"
)

// FrameMeta describes one rendered frame for subscribers.
type FrameMeta struct {
	Seq       int
	Width     int
	Height    int
	CaptureMs int
}

// EventSink observes session lifecycle and stream events. Implementations
// must not block; callbacks run on the session's message loop.
type EventSink interface {
	// OnConnect fires after a transport opens.
	OnConnect()
	// OnDisconnect fires after a transport closes, expectedly or not.
	OnDisconnect()
	// OnStateChange fires on every connection state transition with the
	// current automatic retry count.
	OnStateChange(state ConnectionState, attempts int)
	// OnFrame fires when a newly decoded frame becomes current.
	OnFrame(meta FrameMeta)
	// OnMetrics fires with updated rolling statistics after each frame.
	OnMetrics(snap metrics.Snapshot)
	// OnError surfaces transport and decode errors. Errors never drive state
	// transitions themselves; the subsequent close event does.
	OnError(err error)
}

// NoopSink implements EventSink with empty methods, for embedding when a
// subscriber only cares about a subset of events.
type NoopSink struct{}

func (NoopSink) OnConnect()                         {}
func (NoopSink) OnDisconnect()                      {}
func (NoopSink) OnStateChange(ConnectionState, int) {}
func (NoopSink) OnFrame(FrameMeta)                  {}
func (NoopSink) OnMetrics(metrics.Snapshot)         {}
func (NoopSink) OnError(error)                      {}

// sinkSet fans events out to any number of subscribers.
type sinkSet struct {
	mu    sync.RWMutex
	next  int
	sinks map[int]EventSink
}

func newSinkSet() *sinkSet {
	return &sinkSet{sinks: make(map[int]EventSink)}
}

// add registers a subscriber and returns its removal func.
func (s *sinkSet) add(sink EventSink) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.sinks[id] = sink
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.sinks, id)
		s.mu.Unlock()
	}
}

// each invokes fn for every registered subscriber.
func (s *sinkSet) each(fn func(EventSink)) {
	s.mu.RLock()
	sinks := make([]EventSink, 0, len(s.sinks))
	for _, sink := range s.sinks {
		sinks = append(sinks, sink)
	}
	s.mu.RUnlock()
	for _, sink := range sinks {
		fn(sink)
	}
}

func (s *sinkSet) OnConnect()    { s.each(func(e EventSink) { e.OnConnect() }) }
func (s *sinkSet) OnDisconnect() { s.each(func(e EventSink) { e.OnDisconnect() }) }

func (s *sinkSet) OnStateChange(state ConnectionState, attempts int) {
	s.each(func(e EventSink) { e.OnStateChange(state, attempts) })
}

func (s *sinkSet) OnFrame(meta FrameMeta) {
	s.each(func(e EventSink) { e.OnFrame(meta) })
}

func (s *sinkSet) OnMetrics(snap metrics.Snapshot) {
	s.each(func(e EventSink) { e.OnMetrics(snap) })
}

func (s *sinkSet) OnError(err error) {
	s.each(func(e EventSink) { e.OnError(err) })
}
