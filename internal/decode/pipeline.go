package decode

import (
	"sync"
	"time"

	"github.com/miroview/miroview/internal/wire"
)

// Chunk is one timestamped encoded video payload submitted to a pipeline.
type Chunk struct {
	Data []byte
	PTS  time.Duration
	Key  bool
}

// Pipeline consumes encoded video chunks and emits decoded frames
// asynchronously through the callback given at construction. Implementations
// must not buffer frames: each emitted frame is rendered once and its
// resources released immediately afterwards.
type Pipeline interface {
	Submit(Chunk) error
	Close() error
}

// ProbePipeline tracks an H.264 stream without materializing pixels: it
// classifies key versus delta access units, recovers stream dimensions from
// SPS units, and emits pixel-less frames. Hosts with a hardware or software
// codec plug their own Pipeline in instead; the decoded pixel output is the
// only observable contract.
type ProbePipeline struct {
	mu      sync.Mutex
	onFrame func(Frame)
	seq     int
	width   int
	height  int
	closed  bool
}

// NewProbePipeline returns a pipeline that emits metadata-only frames.
func NewProbePipeline(onFrame func(Frame)) *ProbePipeline {
	return &ProbePipeline{onFrame: onFrame}
}

// Submit classifies a chunk and emits a frame for every slice payload.
// Config-only payloads (SPS/PPS without a slice) update dimensions silently.
func (p *ProbePipeline) Submit(c Chunk) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if w, h, ok := wire.PayloadDimensions(c.Data); ok {
		p.width, p.height = w, h
	}
	if !hasSlice(c.Data) {
		p.mu.Unlock()
		return nil
	}
	p.seq++
	frame := Frame{
		Seq:    p.seq,
		Width:  p.width,
		Height: p.height,
		Key:    c.Key,
		Bytes:  len(c.Data),
	}
	onFrame := p.onFrame
	p.mu.Unlock()

	if onFrame != nil {
		onFrame(frame)
	}
	return nil
}

// Close stops frame emission.
func (p *ProbePipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// hasSlice reports whether the payload contains a coded slice unit.
func hasSlice(payload []byte) bool {
	for _, nal := range wire.SplitNALUnits(payload) {
		switch wire.NALType(nal) {
		case wire.NALTypeSlice, wire.NALTypeIDR:
			return true
		}
	}
	return false
}
