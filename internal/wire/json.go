// Package wire defines the transport wire formats consumed by the client.
package wire

import (
	"encoding/base64"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/miroview/miroview/internal/device"
)

// Text envelope types used by the json transport and the mjpeg control channel.
const (
	TypeFrame  = "frame"
	TypeError  = "error"
	TypeConfig = "config"
)

// Envelope is a text message on the json transport.
type Envelope struct {
	Type        string             `json:"type"`
	Image       string             `json:"image"`
	Elements    []device.UIElement `json:"elements"`
	Timestamp   float64            `json:"timestamp"`
	CaptureMs   int                `json:"capture_ms"`
	FrameNumber int                `json:"frame_number"`
	Message     string             `json:"message"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
}

// DecodeEnvelope parses a text message into an envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// ImageBytes decodes the base64 raster payload of a frame envelope.
func (e Envelope) ImageBytes() ([]byte, error) {
	if e.Image == "" {
		return nil, fmt.Errorf("frame %d carries no image payload", e.FrameNumber)
	}
	raw, err := base64.StdEncoding.DecodeString(e.Image)
	if err != nil {
		return nil, fmt.Errorf("frame %d image payload: %w", e.FrameNumber, err)
	}
	return raw, nil
}

// Config returns the device descriptor carried by a config envelope.
func (e Envelope) Config() device.Descriptor {
	return device.Descriptor{Width: e.Width, Height: e.Height}
}
