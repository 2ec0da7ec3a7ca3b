package decode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // raster payloads are JPEG on every transport
	_ "image/png"  // json transport may also carry PNG
	"time"

	"github.com/miroview/miroview/internal/device"
	"github.com/miroview/miroview/internal/wire"
	"github.com/rs/zerolog"
)

// Sink receives decoder output. Nil callbacks are skipped. Decode failures
// are reported through OnError and the offending message dropped; the caller
// keeps showing the previous raster.
type Sink struct {
	OnFrame      func(Frame)
	OnElements   func([]device.UIElement)
	OnDescriptor func(device.Descriptor)
	OnClipboard  func(string)
	OnRemoteErr  func(message string)
	OnError      func(error)
}

// Decoder parses inbound transport messages for one session.
type Decoder struct {
	mode     Mode
	sink     Sink
	pipeline Pipeline
	gate     latestGate
	log      zerolog.Logger
	started  time.Time
}

// New creates a decoder for the given transport mode. For ModeH264 a nil
// pipeline defaults to the metadata-only probe pipeline.
func New(mode Mode, pipeline Pipeline, sink Sink, log zerolog.Logger) *Decoder {
	d := &Decoder{
		mode:    mode,
		sink:    sink,
		log:     log,
		started: time.Now(),
	}
	if mode == ModeH264 {
		if pipeline == nil {
			pipeline = NewProbePipeline(d.deliverFrame)
		}
		d.pipeline = pipeline
	}
	return d
}

// HandleText processes a text message. Only the json transport and the mjpeg
// config channel carry text; framing (text versus binary) is what separates
// control messages from frame data, never content sniffing.
func (d *Decoder) HandleText(data []byte) {
	env, err := wire.DecodeEnvelope(data)
	if err != nil {
		d.fail(err)
		return
	}

	switch env.Type {
	case wire.TypeFrame:
		if d.mode != ModeJSON {
			d.log.Debug().Str("mode", string(d.mode)).Msg("ignoring frame envelope on non-json transport")
			return
		}
		d.handleJSONFrame(env)
	case wire.TypeError:
		d.log.Warn().Str("message", env.Message).Msg("remote error envelope")
		if d.sink.OnRemoteErr != nil {
			d.sink.OnRemoteErr(env.Message)
		}
	case wire.TypeConfig:
		desc := env.Config()
		if !desc.Valid() {
			d.fail(fmt.Errorf("config envelope with invalid dimensions %dx%d", desc.Width, desc.Height))
			return
		}
		if d.sink.OnDescriptor != nil {
			d.sink.OnDescriptor(desc)
		}
	default:
		d.log.Debug().Str("type", env.Type).Msg("ignoring unknown envelope type")
	}
}

// HandleBinary processes a binary message according to the transport mode.
func (d *Decoder) HandleBinary(data []byte) {
	switch d.mode {
	case ModeMJPEG:
		d.handleMJPEG(data)
	case ModeH264:
		d.handleVideo(data)
	default:
		d.log.Debug().Int("bytes", len(data)).Msg("ignoring binary message on json transport")
	}
}

// Close releases the video pipeline, if any.
func (d *Decoder) Close() {
	if d.pipeline != nil {
		_ = d.pipeline.Close()
	}
}

// handleJSONFrame replaces the element list wholesale and schedules the
// raster decode.
func (d *Decoder) handleJSONFrame(env wire.Envelope) {
	if d.sink.OnElements != nil {
		d.sink.OnElements(env.Elements)
	}

	raw, err := env.ImageBytes()
	if err != nil {
		d.fail(err)
		return
	}
	d.decodeRaster(raw, Frame{
		Seq:       env.FrameNumber,
		CaptureMs: env.CaptureMs,
		Timestamp: env.Timestamp,
		Bytes:     len(raw),
	})
}

// handleMJPEG parses the fixed header and schedules the JPEG decode.
func (d *Decoder) handleMJPEG(data []byte) {
	frame, err := wire.ParseMJPEGFrame(data)
	if err != nil {
		d.fail(err)
		return
	}
	d.decodeRaster(frame.JPEG, Frame{
		Seq:       int(frame.FrameNumber),
		CaptureMs: int(frame.CaptureMs),
		Bytes:     len(data),
	})
}

// handleVideo classifies the mirroring-transport payload and feeds video
// data to the pipeline.
func (d *Decoder) handleVideo(data []byte) {
	rec, err := wire.ClassifyRecord(data)
	if err != nil {
		d.fail(err)
		return
	}
	switch rec.Kind {
	case wire.RecordInitial:
		d.log.Info().Str("device", rec.Descriptor.Name).
			Int("width", rec.Descriptor.Width).Int("height", rec.Descriptor.Height).
			Msg("device descriptor received")
		if d.sink.OnDescriptor != nil {
			d.sink.OnDescriptor(rec.Descriptor)
		}
	case wire.RecordMessage:
		if text, ok := rec.Message.Clipboard(); ok && d.sink.OnClipboard != nil {
			d.sink.OnClipboard(text)
		}
	case wire.RecordVideo:
		if err := d.pipeline.Submit(Chunk{
			Data: rec.Video,
			PTS:  time.Since(d.started),
			Key:  wire.IsKeyPayload(rec.Video),
		}); err != nil {
			d.fail(fmt.Errorf("video pipeline: %w", err))
		}
	}
}

// decodeRaster decodes pixels off the message loop. If a newer decode
// completes first the result is discarded, bounding latency on slow links.
func (d *Decoder) decodeRaster(raw []byte, meta Frame) {
	gen := d.gate.next()
	go func() {
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			d.fail(fmt.Errorf("frame %d raster: %w", meta.Seq, err))
			return
		}
		bounds := img.Bounds()
		meta.Raster = img
		meta.Width = bounds.Dx()
		meta.Height = bounds.Dy()
		if !d.gate.deliver(gen, func() { d.emit(meta) }) {
			d.log.Debug().Int("seq", meta.Seq).Msg("discarding stale decode")
		}
	}()
}

// deliverFrame forwards pipeline output through the latest-wins gate.
func (d *Decoder) deliverFrame(f Frame) {
	gen := d.gate.next()
	d.gate.deliver(gen, func() { d.emit(f) })
}

// emit hands a completed frame to the sink.
func (d *Decoder) emit(f Frame) {
	if d.sink.OnFrame != nil {
		d.sink.OnFrame(f)
	}
}

// fail logs a per-message decode failure and drops the message.
func (d *Decoder) fail(err error) {
	d.log.Warn().Err(err).Msg("dropping undecodable message")
	if d.sink.OnError != nil {
		d.sink.OnError(err)
	}
}
