package wire

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/avc"
)

// NAL unit types relevant to frame classification.
const (
	NALTypeSlice = 1
	NALTypeIDR   = 5
	NALTypeSEI   = 6
	NALTypeSPS   = 7
	NALTypePPS   = 8
)

var (
	startCode3 = []byte{0x00, 0x00, 0x01}
	startCode4 = []byte{0x00, 0x00, 0x00, 0x01}
)

// NALType returns the low five bits of a NAL header byte.
func NALType(nal []byte) int {
	if len(nal) == 0 {
		return -1
	}
	return int(nal[0] & 0x1F)
}

// SplitNALUnits splits an Annex-B payload into raw NAL units without start
// codes. Both three- and four-byte start codes are accepted. The returned
// slices alias the input.
func SplitNALUnits(payload []byte) [][]byte {
	var units [][]byte
	pos := nextStartCodeEnd(payload, 0)
	if pos < 0 {
		return nil
	}
	for pos < len(payload) {
		next := bytes.Index(payload[pos:], startCode3)
		var end int
		if next < 0 {
			end = len(payload)
		} else {
			end = pos + next
			// A four-byte start code ends with the same three bytes; trim
			// the leading zero off the current unit.
			if end > pos && payload[end-1] == 0x00 {
				end--
			}
		}
		if end > pos {
			units = append(units, payload[pos:end])
		}
		if next < 0 {
			break
		}
		pos = nextStartCodeEnd(payload, pos+next)
		if pos < 0 {
			break
		}
	}
	return units
}

// IsKeyPayload reports whether an Annex-B payload contains a key frame. IDR
// slices and SPS units both mark an independently decodable access unit.
func IsKeyPayload(payload []byte) bool {
	for _, nal := range SplitNALUnits(payload) {
		switch NALType(nal) {
		case NALTypeIDR, NALTypeSPS:
			return true
		}
	}
	return false
}

// PayloadDimensions parses the first SPS in an Annex-B payload and returns
// the coded stream dimensions, or ok=false when the payload carries none.
func PayloadDimensions(payload []byte) (width, height int, ok bool) {
	for _, nal := range SplitNALUnits(payload) {
		if NALType(nal) != NALTypeSPS {
			continue
		}
		sps, err := avc.ParseSPSNALUnit(nal, false)
		if err != nil {
			return 0, 0, false
		}
		return int(sps.Width), int(sps.Height), true
	}
	return 0, 0, false
}

// nextStartCodeEnd returns the index just past the start code beginning at or
// after from, or -1 when none exists.
func nextStartCodeEnd(payload []byte, from int) int {
	idx := bytes.Index(payload[from:], startCode3)
	if idx < 0 {
		return -1
	}
	return from + idx + len(startCode3)
}
