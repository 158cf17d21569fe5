package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/huestream/internal/hue"
	"github.com/nerrad567/huestream/internal/ringbuf"
)

// DefaultSequenceStep is how long SequenceSource shows each colour.
const DefaultSequenceStep = 650 * time.Millisecond

// Origin identifies where a colour came from.
type Origin int

const (
	// OriginBuffer is a fresh colour read from the ring buffer.
	OriginBuffer Origin = iota

	// OriginHeld is the previous buffer colour, repeated because the buffer
	// was empty.
	OriginHeld

	// OriginFallback is a colour from the fallback source.
	OriginFallback
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginBuffer:
		return "buffer"
	case OriginHeld:
		return "held"
	case OriginFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Sample is one colour together with its origin.
type Sample struct {
	Color  hue.Color
	Origin Origin
}

// Source provides the colour for each logical update.
//
// Next is only called from the loop goroutine.
type Source interface {
	Next() Sample
}

// SequenceSource cycles through a fixed list of colours, showing each one
// for Step.
type SequenceSource struct {
	colors []hue.Color
	step   time.Duration
	clock  Clock
	start  time.Time
}

// NewSequenceSource creates a sequence over colors (hue.FallbackSet when
// empty). A non-positive step selects DefaultSequenceStep. A nil clock
// selects the system clock.
func NewSequenceSource(colors []hue.Color, step time.Duration, clock Clock) *SequenceSource {
	if len(colors) == 0 {
		colors = hue.FallbackSet
	}
	if step <= 0 {
		step = DefaultSequenceStep
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &SequenceSource{
		colors: append([]hue.Color(nil), colors...),
		step:   step,
		clock:  clock,
		start:  clock.Now(),
	}
}

// Next returns the colour for the current point in the sequence.
func (s *SequenceSource) Next() Sample {
	elapsed := s.clock.Now().Sub(s.start)
	if elapsed < 0 {
		elapsed = 0
	}
	idx := int(elapsed/s.step) % len(s.colors)
	return Sample{Color: s.colors[idx], Origin: OriginFallback}
}

// BufferSource reads the newest colour element from a shared ring buffer.
//
// Older unread elements are skipped; the stream is real time and only the
// latest value matters.
type BufferSource struct {
	buf      *ringbuf.Shared
	fallback Source
	element  []byte
	last     hue.Color
	haveLast bool
}

// NewBufferSource wraps buf, whose element size must be hue.ElementSize.
// fallback serves colours until the producer has written (nil selects a
// default SequenceSource).
func NewBufferSource(buf *ringbuf.Shared, fallback Source) (*BufferSource, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil ring buffer", ErrInvalidConfig)
	}
	if buf.ElementSize() != hue.ElementSize {
		return nil, fmt.Errorf("%w: element size %d, want %d", ErrInvalidConfig, buf.ElementSize(), hue.ElementSize)
	}
	if fallback == nil {
		fallback = NewSequenceSource(nil, 0, nil)
	}
	return &BufferSource{
		buf:      buf,
		fallback: fallback,
		element:  make([]byte, hue.ElementSize),
	}, nil
}

// Next returns the newest buffered colour, the last colour when the buffer
// is drained, or a fallback colour before the first write.
func (s *BufferSource) Next() Sample {
	ok, err := s.buf.Latest(s.element)
	switch {
	case errors.Is(err, ringbuf.ErrNeverWritten):
		return s.fallback.Next()
	case ok:
		c, parseErr := hue.ParseElement(s.element)
		if parseErr == nil {
			s.last, s.haveLast = c, true
			return Sample{Color: c, Origin: OriginBuffer}
		}
	}
	if s.haveLast {
		return Sample{Color: s.last, Origin: OriginHeld}
	}
	return s.fallback.Next()
}
