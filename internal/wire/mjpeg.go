package wire

import (
	"encoding/binary"
	"fmt"
)

// mjpegHeaderLen is the fixed binary prefix on every mjpeg frame:
// [frame_number:u32 BE][capture_ms:u32 BE].
const mjpegHeaderLen = 8

// MJPEGFrame is one binary message on the binary-mjpeg transport.
type MJPEGFrame struct {
	FrameNumber uint32
	CaptureMs   uint32
	JPEG        []byte
}

// ParseMJPEGFrame splits the fixed header from the raw JPEG payload.
func ParseMJPEGFrame(data []byte) (MJPEGFrame, error) {
	if len(data) <= mjpegHeaderLen {
		return MJPEGFrame{}, fmt.Errorf("mjpeg frame too short: %d bytes", len(data))
	}
	return MJPEGFrame{
		FrameNumber: binary.BigEndian.Uint32(data[0:4]),
		CaptureMs:   binary.BigEndian.Uint32(data[4:8]),
		JPEG:        data[mjpegHeaderLen:],
	}, nil
}
