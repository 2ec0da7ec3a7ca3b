package decode

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/miroview/miroview/internal/device"
	"github.com/rs/zerolog"
)

// testJPEG returns an encoded JPEG of the given size.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

// TestLatestGate_DiscardsStaleCompletions verifies only the most recently
// submitted decode may deliver, regardless of completion order.
func TestLatestGate_DiscardsStaleCompletions(t *testing.T) {
	var g latestGate
	first := g.next()
	second := g.next()

	delivered := 0
	if !g.deliver(second, func() { delivered = 2 }) {
		t.Fatalf("newest completion must deliver")
	}
	if g.deliver(first, func() { delivered = 1 }) {
		t.Fatalf("stale completion must be discarded")
	}
	if delivered != 2 {
		t.Fatalf("expected delivery from generation 2, got %d", delivered)
	}
}

// TestDecoder_JSONFrame verifies element replacement and async raster decode.
func TestDecoder_JSONFrame(t *testing.T) {
	frames := make(chan Frame, 1)
	var elements []device.UIElement
	d := New(ModeJSON, nil, Sink{
		OnFrame:    func(f Frame) { frames <- f },
		OnElements: func(els []device.UIElement) { elements = els },
	}, zerolog.Nop())

	img := base64.StdEncoding.EncodeToString(testJPEG(t, 12, 24))
	d.HandleText([]byte(`{"type":"frame","image":"` + img + `",` +
		`"elements":[{"class":"android.widget.Button","clickable":true,` +
		`"bounds":{"x":1,"y":2,"width":3,"height":4}}],` +
		`"capture_ms":120,"frame_number":9}`))

	select {
	case f := <-frames:
		if f.Seq != 9 || f.CaptureMs != 120 || f.Width != 12 || f.Height != 24 || f.Raster == nil {
			t.Fatalf("unexpected frame: %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for decoded frame")
	}
	if len(elements) != 1 || !elements[0].Clickable {
		t.Fatalf("unexpected elements: %+v", elements)
	}
}

// TestDecoder_ErrorEnvelopeDropped verifies error envelopes never touch the
// current frame and surface through the remote-error callback.
func TestDecoder_ErrorEnvelopeDropped(t *testing.T) {
	var remote string
	frameSeen := false
	d := New(ModeJSON, nil, Sink{
		OnFrame:     func(Frame) { frameSeen = true },
		OnRemoteErr: func(msg string) { remote = msg },
	}, zerolog.Nop())

	d.HandleText([]byte(`{"type":"error","message":"device busy"}`))
	if remote != "device busy" {
		t.Fatalf("expected remote error surfaced, got %q", remote)
	}
	if frameSeen {
		t.Fatalf("error envelope must not produce a frame")
	}

	// Unknown types are ignored outright.
	d.HandleText([]byte(`{"type":"heartbeat"}`))
	if frameSeen {
		t.Fatalf("unknown envelope must not produce a frame")
	}
}

// TestDecoder_MJPEGBinaryAndConfig verifies the binary-mjpeg split between
// text config and binary frame messages.
func TestDecoder_MJPEGBinaryAndConfig(t *testing.T) {
	frames := make(chan Frame, 1)
	var desc device.Descriptor
	d := New(ModeMJPEG, nil, Sink{
		OnFrame:      func(f Frame) { frames <- f },
		OnDescriptor: func(dd device.Descriptor) { desc = dd },
	}, zerolog.Nop())

	d.HandleText([]byte(`{"type":"config","width":720,"height":1480}`))
	if desc.Width != 720 || desc.Height != 1480 {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}

	payload := append([]byte{0, 0, 0, 5, 0, 0, 1, 244}, testJPEG(t, 8, 8)...)
	d.HandleBinary(payload)

	select {
	case f := <-frames:
		if f.Seq != 5 || f.CaptureMs != 500 || f.Width != 8 {
			t.Fatalf("unexpected frame: %+v", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for decoded frame")
	}
}

// TestDecoder_MalformedDropped verifies undecodable messages are dropped
// without producing frames.
func TestDecoder_MalformedDropped(t *testing.T) {
	var decodeErr error
	frameSeen := false
	d := New(ModeMJPEG, nil, Sink{
		OnFrame: func(Frame) { frameSeen = true },
		OnError: func(err error) { decodeErr = err },
	}, zerolog.Nop())

	d.HandleBinary([]byte{0, 0, 0, 1})
	if decodeErr == nil {
		t.Fatalf("expected error for truncated mjpeg frame")
	}
	if frameSeen {
		t.Fatalf("malformed message must not produce a frame")
	}
}
