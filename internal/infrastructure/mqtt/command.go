package mqtt

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nerrad567/huestream/internal/hue"
)

// ColorPayload is the JSON body of a colour command.
//
// Either chromaticity or RGB must be present:
//
//	{"x": 0.675, "y": 0.322, "bri": 0.8}
//	{"r": 255, "g": 128, "b": 0}
//
// bri is optional in both forms. For RGB it scales the luminance derived
// from the colour; for xy it defaults to full brightness.
type ColorPayload struct {
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	R          *int     `json:"r,omitempty"`
	G          *int     `json:"g,omitempty"`
	B          *int     `json:"b,omitempty"`
	Brightness *float64 `json:"bri,omitempty"`
}

// ParseColorCommand decodes a colour command payload.
//
// Returns:
//   - hue.Color: The requested colour
//   - error: ErrInvalidCommand wrapping the reason
func ParseColorCommand(payload []byte) (hue.Color, error) {
	var p ColorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return hue.Color{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	if p.Brightness != nil && (*p.Brightness < 0 || *p.Brightness > 1) {
		return hue.Color{}, fmt.Errorf("%w: bri %v outside [0, 1]", ErrInvalidCommand, *p.Brightness)
	}

	switch {
	case p.X != nil && p.Y != nil:
		if *p.X < 0 || *p.X > 1 || *p.Y < 0 || *p.Y > 1 {
			return hue.Color{}, fmt.Errorf("%w: xy (%v, %v) outside [0, 1]", ErrInvalidCommand, *p.X, *p.Y)
		}
		bri := 1.0
		if p.Brightness != nil {
			bri = *p.Brightness
		}
		return hue.FromXYFloat(*p.X, *p.Y, bri), nil

	case p.R != nil && p.G != nil && p.B != nil:
		for _, v := range []int{*p.R, *p.G, *p.B} {
			if v < 0 || v > 255 {
				return hue.Color{}, fmt.Errorf("%w: rgb component %d outside [0, 255]", ErrInvalidCommand, v)
			}
		}
		c := hue.FromRGB(uint8(*p.R), uint8(*p.G), uint8(*p.B))
		if p.Brightness != nil {
			_, _, lum := c.XYFloat()
			c = c.WithBrightness(lum * *p.Brightness)
		}
		return c, nil
	}

	return hue.Color{}, fmt.Errorf("%w: need x and y, or r, g and b", ErrInvalidCommand)
}

// ElementWriter receives encoded colour elements. *ringbuf.Shared satisfies it.
type ElementWriter interface {
	Write(p []byte) int
}

// Subscriber is the part of Client a CommandProducer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Unsubscribe(topic string) error
}

// CommandProducer turns colour commands received over MQTT into ring buffer
// elements. It is the only writer of the buffer while subscribed.
//
// Thread Safety:
//   - Handle may be called from the paho callback goroutine while Stats is
//     read elsewhere.
type CommandProducer struct {
	sub    Subscriber
	topic  string
	qos    byte
	writer ElementWriter

	accepted atomic.Uint64
	rejected atomic.Uint64
}

// NewCommandProducer creates a producer for topic that writes into writer.
func NewCommandProducer(sub Subscriber, topic string, qos byte, writer ElementWriter) *CommandProducer {
	return &CommandProducer{
		sub:    sub,
		topic:  topic,
		qos:    qos,
		writer: writer,
	}
}

// Start subscribes to the command topic.
func (p *CommandProducer) Start() error {
	return p.sub.Subscribe(p.topic, p.qos, p.Handle)
}

// Stop unsubscribes from the command topic.
func (p *CommandProducer) Stop() error {
	return p.sub.Unsubscribe(p.topic)
}

// Handle parses one payload and writes the resulting element.
// Invalid payloads are counted and the error returned to the handler
// wrapper, which logs it.
func (p *CommandProducer) Handle(_ string, payload []byte) error {
	c, err := ParseColorCommand(payload)
	if err != nil {
		p.rejected.Add(1)
		return err
	}
	var elem [hue.ElementSize]byte
	p.writer.Write(c.AppendElement(elem[:0]))
	p.accepted.Add(1)
	return nil
}

// CommandStats holds counters for a CommandProducer.
type CommandStats struct {
	Accepted uint64
	Rejected uint64
}

// Stats returns a snapshot of the command counters.
func (p *CommandProducer) Stats() CommandStats {
	return CommandStats{
		Accepted: p.accepted.Load(),
		Rejected: p.rejected.Load(),
	}
}
