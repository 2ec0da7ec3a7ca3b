package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/miroview/miroview/internal/device"
)

// Out-of-band records on the mirroring transport are prefixed with a 14-byte
// ASCII magic; everything else on the video socket is raw Annex-B data.
const (
	magicInitial = "scrcpy_initial"
	magicMessage = "scrcpy_message"
	magicLen     = 14

	deviceNameLen = 64
)

// Message types carried by a scrcpy_message record.
const (
	MessageClipboard = 0
)

// RecordKind tags the variants of a classified mirroring-transport payload.
type RecordKind int

const (
	// RecordVideo is raw Annex-B video data.
	RecordVideo RecordKind = iota
	// RecordInitial is the device descriptor sent once after connect.
	RecordInitial
	// RecordMessage is an out-of-band device message.
	RecordMessage
)

// Record is a tagged variant decoded from one mirroring-transport payload.
type Record struct {
	Kind       RecordKind
	Descriptor device.Descriptor
	Message    DeviceMessage
	Video      []byte
}

// DeviceMessage is the payload of a scrcpy_message record. Only clipboard
// sync is interpreted; other types pass through untouched.
type DeviceMessage struct {
	Type    byte
	Payload []byte
}

// Clipboard returns the clipboard text of a clipboard-sync message.
func (m DeviceMessage) Clipboard() (string, bool) {
	if m.Type != MessageClipboard {
		return "", false
	}
	return string(m.Payload), true
}

// ClassifyRecord decodes one payload from the mirroring transport into its
// tagged variant.
func ClassifyRecord(data []byte) (Record, error) {
	switch {
	case bytes.HasPrefix(data, []byte(magicInitial)):
		desc, err := parseInitial(data[magicLen:])
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: RecordInitial, Descriptor: desc}, nil
	case bytes.HasPrefix(data, []byte(magicMessage)):
		if len(data) <= magicLen {
			return Record{}, fmt.Errorf("device message record too short: %d bytes", len(data))
		}
		return Record{Kind: RecordMessage, Message: DeviceMessage{
			Type:    data[magicLen],
			Payload: data[magicLen+1:],
		}}, nil
	default:
		return Record{Kind: RecordVideo, Video: data}, nil
	}
}

// parseInitial reads the device descriptor: a 64-byte null-padded name
// followed by the native width and height as u32 BE.
func parseInitial(data []byte) (device.Descriptor, error) {
	if len(data) < deviceNameLen+8 {
		return device.Descriptor{}, fmt.Errorf("device descriptor too short: %d bytes", len(data))
	}
	name := string(bytes.TrimRight(data[:deviceNameLen], "\x00"))
	return device.Descriptor{
		Name:   name,
		Width:  int(binary.BigEndian.Uint32(data[deviceNameLen : deviceNameLen+4])),
		Height: int(binary.BigEndian.Uint32(data[deviceNameLen+4 : deviceNameLen+8])),
	}, nil
}

// EncodeInitial builds a device descriptor record. The client only parses
// these, but the encoder keeps tests and fakes honest about the layout.
func EncodeInitial(desc device.Descriptor) []byte {
	buf := make([]byte, magicLen+deviceNameLen+8)
	copy(buf, magicInitial)
	copy(buf[magicLen:], desc.Name)
	binary.BigEndian.PutUint32(buf[magicLen+deviceNameLen:], uint32(desc.Width))
	binary.BigEndian.PutUint32(buf[magicLen+deviceNameLen+4:], uint32(desc.Height))
	return buf
}

// EncodeMessage builds an out-of-band device message record.
func EncodeMessage(msgType byte, payload []byte) []byte {
	buf := make([]byte, 0, magicLen+1+len(payload))
	buf = append(buf, magicMessage...)
	buf = append(buf, msgType)
	return append(buf, payload...)
}
