package ringbuf

import (
	"fmt"
	"math"
)

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, args ...any)
}

// Buffer is a fixed-capacity circular buffer of fixed-size elements.
//
// Thread Safety:
//   - Not safe for concurrent use. Wrap with Shared for one producer and
//     one consumer goroutine.
type Buffer struct {
	elementSize int
	capacity    int
	data        []byte

	readIndex  int
	writeIndex int

	// written is false until the first Write after New or Clear.
	written bool
	// full is set when a write leaves both cursors on the same element and
	// cleared once anything is consumed.
	full bool

	logger Logger
}

// New allocates a buffer holding capacity elements of elementSize bytes.
//
// Parameters:
//   - elementSize: Size of one element in bytes
//   - capacity: Number of elements the buffer holds
//
// Returns:
//   - *Buffer: Empty buffer with both cursors at 0
//   - error: ErrAllocation if the sizes are invalid or memory cannot be obtained
func New(elementSize, capacity int) (b *Buffer, err error) {
	if elementSize <= 0 || capacity <= 0 {
		return nil, fmt.Errorf("%w: element size %d, capacity %d", ErrAllocation, elementSize, capacity)
	}
	if capacity > math.MaxInt/elementSize {
		return nil, fmt.Errorf("%w: %d elements of %d bytes overflows", ErrAllocation, capacity, elementSize)
	}

	// make panics when the runtime cannot satisfy the request.
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	return &Buffer{
		elementSize: elementSize,
		capacity:    capacity,
		data:        make([]byte, elementSize*capacity),
	}, nil
}

// SetLogger sets a logger for diagnostic messages.
func (b *Buffer) SetLogger(logger Logger) {
	b.logger = logger
}

// ElementSize returns the size of one element in bytes.
func (b *Buffer) ElementSize() int {
	return b.elementSize
}

// Capacity returns the number of elements the buffer holds.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Write stores the elements contained in p.
//
// len(p) is interpreted as a whole number of elements; a trailing partial
// element is ignored. If p holds more than Capacity() elements only the most
// recent Capacity() are kept. Unread elements that get overrun are discarded
// and the read cursor moves to the new write position.
//
// Returns:
//   - int: Number of elements written, always min(len(p)/ElementSize(), Capacity())
func (b *Buffer) Write(p []byte) int {
	count := len(p) / b.elementSize
	n := min(count, b.capacity)
	if n == 0 {
		return 0
	}

	available := b.Available()
	src := p[(count-n)*b.elementSize : count*b.elementSize]

	// Up to two copies: from the write cursor to the end of storage, then
	// from the start of storage.
	first := min(n, b.capacity-b.writeIndex)
	copy(b.data[b.writeIndex*b.elementSize:], src[:first*b.elementSize])
	copy(b.data, src[first*b.elementSize:])

	b.writeIndex = (b.writeIndex + n) % b.capacity
	if available+n >= b.capacity {
		b.readIndex = b.writeIndex
		b.full = true
	}
	b.written = true

	return n
}

// Read copies unread elements into dest, oldest first.
//
// At most len(dest)/ElementSize() elements are copied. The read cursor
// advances by the number of elements copied.
//
// Returns:
//   - int: Number of elements read (0 when drained)
//   - error: ErrNeverWritten if nothing has been written yet
func (b *Buffer) Read(dest []byte) (int, error) {
	if !b.written {
		return 0, ErrNeverWritten
	}

	available := b.Available()
	n := len(dest) / b.elementSize
	if n < available {
		if b.logger != nil {
			b.logger.Debug("more data buffered than requested",
				"available", available,
				"requested", n,
			)
		}
	} else {
		n = available
	}
	if n == 0 {
		return 0, nil
	}

	first := min(n, b.capacity-b.readIndex)
	copy(dest, b.data[b.readIndex*b.elementSize:(b.readIndex+first)*b.elementSize])
	copy(dest[first*b.elementSize:], b.data[:(n-first)*b.elementSize])

	b.readIndex = (b.readIndex + n) % b.capacity
	b.full = false

	return n, nil
}

// Skip discards up to n unread elements without copying them.
//
// n is clamped to Available(), so the read cursor never passes the write
// cursor.
func (b *Buffer) Skip(n int) {
	n = min(n, b.Available())
	if n <= 0 {
		return
	}
	b.readIndex = (b.readIndex + n) % b.capacity
	b.full = false
}

// Available returns the number of unread elements.
func (b *Buffer) Available() int {
	if !b.written {
		return 0
	}
	if b.readIndex == b.writeIndex {
		if b.full {
			return b.capacity
		}
		return 0
	}
	if b.readIndex > b.writeIndex {
		// the write cursor has wrapped around
		return b.capacity - b.readIndex + b.writeIndex
	}
	return b.writeIndex - b.readIndex
}

// Written reports whether the buffer has been written since New or Clear.
func (b *Buffer) Written() bool {
	return b.written
}

// Clear resets both cursors, zeroes the storage and marks the buffer as
// never written.
func (b *Buffer) Clear() {
	b.readIndex = 0
	b.writeIndex = 0
	clear(b.data)
	b.written = false
	b.full = false
}
