// Package decode turns wire payloads into raster frames and element lists.
package decode

import (
	"fmt"
	"image"
)

// Mode selects the transport-specific wire format.
type Mode string

const (
	// ModeJSON is the text transport: base64 raster plus element list.
	ModeJSON Mode = "json"
	// ModeMJPEG is the binary transport: 8-byte header plus raw JPEG.
	ModeMJPEG Mode = "binary-mjpeg"
	// ModeH264 is the mirroring transport: raw Annex-B video.
	ModeH264 Mode = "h264"
)

// ParseMode validates a transport mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeJSON, ModeMJPEG, ModeH264:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown transport mode %q", s)
	}
}

// Frame is one decoded wire frame. Only the most recently completed decode is
// ever retained or shown; frames are never queued.
type Frame struct {
	// Seq is the transport-assigned sequence number, or a local counter for
	// transports that do not number frames.
	Seq int
	// CaptureMs is the server-side capture duration when reported.
	CaptureMs int
	// Timestamp is the server capture timestamp (seconds since epoch), json
	// transport only.
	Timestamp float64
	// Raster is the decoded pixel payload. It is nil when the active video
	// pipeline tracks frames without materializing pixels.
	Raster image.Image
	// Width and Height are the raster dimensions in stream space.
	Width  int
	Height int
	// Key reports whether the frame is independently decodable.
	Key bool
	// Bytes is the wire payload size, used for bandwidth accounting.
	Bytes int
}
