package wire

import "encoding/binary"

// Control record types on the mirroring transport's control channel.
const (
	ControlInjectKeycode byte = 0
	ControlInjectTouch   byte = 2
	ControlInjectScroll  byte = 3
)

// Pointer actions inside a touch record.
const (
	ActionDown byte = 0
	ActionUp   byte = 1
	ActionMove byte = 2
)

// touchRecordLen is the documented field layout: 1 type + 1 action +
// 8 pointer id + 4 X + 4 Y + 2 width + 2 height + 2 pressure + 4 buttons.
const touchRecordLen = 28

// TouchEvent is one pointer event destined for the control channel.
// Coordinates are device-space pixels; ScreenWidth/ScreenHeight carry the
// device resolution the coordinates are relative to.
type TouchEvent struct {
	Action       byte
	PointerID    uint64
	X            uint32
	Y            uint32
	ScreenWidth  uint16
	ScreenHeight uint16
	Pressure     uint16
	Buttons      uint32
}

// EncodeTouch serializes a pointer event as a fixed binary control record.
func EncodeTouch(e TouchEvent) []byte {
	buf := make([]byte, touchRecordLen)
	buf[0] = ControlInjectTouch
	buf[1] = e.Action
	binary.BigEndian.PutUint64(buf[2:10], e.PointerID)
	binary.BigEndian.PutUint32(buf[10:14], e.X)
	binary.BigEndian.PutUint32(buf[14:18], e.Y)
	binary.BigEndian.PutUint16(buf[18:20], e.ScreenWidth)
	binary.BigEndian.PutUint16(buf[20:22], e.ScreenHeight)
	binary.BigEndian.PutUint16(buf[22:24], e.Pressure)
	binary.BigEndian.PutUint32(buf[24:28], e.Buttons)
	return buf
}

// KeyEvent is one key press or release destined for the control channel.
type KeyEvent struct {
	Action  byte
	Keycode uint32
	Repeat  uint32
	Meta    uint32
}

// EncodeKey serializes a key event control record.
func EncodeKey(e KeyEvent) []byte {
	buf := make([]byte, 14)
	buf[0] = ControlInjectKeycode
	buf[1] = e.Action
	binary.BigEndian.PutUint32(buf[2:6], e.Keycode)
	binary.BigEndian.PutUint32(buf[6:10], e.Repeat)
	binary.BigEndian.PutUint32(buf[10:14], e.Meta)
	return buf
}

// ScrollEvent is one scroll tick destined for the control channel.
type ScrollEvent struct {
	X            uint32
	Y            uint32
	ScreenWidth  uint16
	ScreenHeight uint16
	HScroll      int16
	VScroll      int16
	Buttons      uint32
}

// EncodeScroll serializes a scroll event control record.
func EncodeScroll(e ScrollEvent) []byte {
	buf := make([]byte, 21)
	buf[0] = ControlInjectScroll
	binary.BigEndian.PutUint32(buf[1:5], e.X)
	binary.BigEndian.PutUint32(buf[5:9], e.Y)
	binary.BigEndian.PutUint16(buf[9:11], e.ScreenWidth)
	binary.BigEndian.PutUint16(buf[11:13], e.ScreenHeight)
	binary.BigEndian.PutUint16(buf[13:15], uint16(e.HScroll))
	binary.BigEndian.PutUint16(buf[15:17], uint16(e.VScroll))
	binary.BigEndian.PutUint32(buf[17:21], e.Buttons)
	return buf
}
