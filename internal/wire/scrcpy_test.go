package wire

import (
	"testing"

	"github.com/miroview/miroview/internal/device"
)

// TestClassifyRecord_Initial verifies the device descriptor round trip
// including null padding of the 64-byte name field.
func TestClassifyRecord_Initial(t *testing.T) {
	desc := device.Descriptor{Name: "Pixel 8", Width: 1080, Height: 2400}
	rec, err := ClassifyRecord(EncodeInitial(desc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != RecordInitial {
		t.Fatalf("expected initial record, got kind %d", rec.Kind)
	}
	if rec.Descriptor != desc {
		t.Fatalf("descriptor mismatch: %+v", rec.Descriptor)
	}
}

// TestClassifyRecord_ClipboardMessage verifies clipboard sync payloads
// surface as text and other message types stay opaque.
func TestClassifyRecord_ClipboardMessage(t *testing.T) {
	rec, err := ClassifyRecord(EncodeMessage(MessageClipboard, []byte("copied text")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != RecordMessage {
		t.Fatalf("expected message record, got kind %d", rec.Kind)
	}
	text, ok := rec.Message.Clipboard()
	if !ok || text != "copied text" {
		t.Fatalf("expected clipboard text, got %q (ok=%v)", text, ok)
	}

	rec, err = ClassifyRecord(EncodeMessage(9, []byte{0x01}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rec.Message.Clipboard(); ok {
		t.Fatalf("non-clipboard message must not surface clipboard text")
	}
}

// TestClassifyRecord_VideoFallthrough verifies unprefixed payloads pass
// through as raw video data.
func TestClassifyRecord_VideoFallthrough(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x88}
	rec, err := ClassifyRecord(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != RecordVideo || len(rec.Video) != len(payload) {
		t.Fatalf("expected video record, got %+v", rec)
	}
}

// TestEncodeTouch_Layout verifies the documented 28-byte field layout.
func TestEncodeTouch_Layout(t *testing.T) {
	buf := EncodeTouch(TouchEvent{
		Action:       ActionDown,
		PointerID:    0xAABB,
		X:            540,
		Y:            1200,
		ScreenWidth:  1080,
		ScreenHeight: 2400,
		Pressure:     0xFFFF,
		Buttons:      1,
	})
	if len(buf) != 28 {
		t.Fatalf("expected 28-byte record, got %d", len(buf))
	}
	if buf[0] != ControlInjectTouch || buf[1] != ActionDown {
		t.Fatalf("unexpected type/action bytes: %v", buf[:2])
	}
	if buf[9] != 0xBB || buf[8] != 0xAA {
		t.Fatalf("pointer id not big-endian: %v", buf[2:10])
	}
	if got := uint32(buf[10])<<24 | uint32(buf[11])<<16 | uint32(buf[12])<<8 | uint32(buf[13]); got != 540 {
		t.Fatalf("expected X=540, got %d", got)
	}
	if got := uint16(buf[18])<<8 | uint16(buf[19]); got != 1080 {
		t.Fatalf("expected screen width 1080, got %d", got)
	}
	if got := uint32(buf[24])<<24 | uint32(buf[25])<<16 | uint32(buf[26])<<8 | uint32(buf[27]); got != 1 {
		t.Fatalf("expected buttons=1, got %d", got)
	}
}

// TestEncodeKeyScroll_Lengths verifies the fixed record sizes.
func TestEncodeKeyScroll_Lengths(t *testing.T) {
	if got := len(EncodeKey(KeyEvent{Action: ActionUp, Keycode: 4})); got != 14 {
		t.Fatalf("expected 14-byte key record, got %d", got)
	}
	if got := len(EncodeScroll(ScrollEvent{VScroll: -1})); got != 21 {
		t.Fatalf("expected 21-byte scroll record, got %d", got)
	}
}
