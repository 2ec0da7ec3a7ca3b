package wire

import (
	"bytes"
	"testing"
)

// TestParseMJPEGFrame_HeaderFields verifies the fixed 8-byte header split.
func TestParseMJPEGFrame_HeaderFields(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	data := append([]byte{0, 0, 0, 5, 0, 0, 1, 244}, jpeg...)

	frame, err := ParseMJPEGFrame(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.FrameNumber != 5 {
		t.Fatalf("expected frame_number 5, got %d", frame.FrameNumber)
	}
	if frame.CaptureMs != 500 {
		t.Fatalf("expected capture_ms 500, got %d", frame.CaptureMs)
	}
	if !bytes.Equal(frame.JPEG, jpeg) {
		t.Fatalf("jpeg payload mismatch: %v", frame.JPEG)
	}
}

// TestParseMJPEGFrame_TooShort verifies header-only messages are rejected.
func TestParseMJPEGFrame_TooShort(t *testing.T) {
	if _, err := ParseMJPEGFrame([]byte{0, 0, 0, 1, 0, 0, 0, 2}); err == nil {
		t.Fatalf("expected error for payload without jpeg bytes")
	}
}
