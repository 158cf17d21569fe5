package ringbuf

import (
	"sync"
	"sync/atomic"
)

// Shared guards a Buffer for one producer and one consumer goroutine.
//
// The producer calls Write; the consumer calls Read, Latest and Skip. Cursor
// and storage updates happen under a mutex, so neither side observes a torn
// write. The critical sections are bounded by a single copy of at most
// Capacity() elements.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Shared struct {
	mu  sync.Mutex
	buf *Buffer

	// Statistics (atomic for lock-free reads)
	elementsIn  atomic.Uint64
	elementsOut atomic.Uint64
	dropped     atomic.Uint64
}

// NewShared allocates a Buffer and wraps it.
//
// Returns:
//   - *Shared: Empty shared buffer
//   - error: ErrAllocation if the buffer cannot be allocated
func NewShared(elementSize, capacity int) (*Shared, error) {
	buf, err := New(elementSize, capacity)
	if err != nil {
		return nil, err
	}
	return &Shared{buf: buf}, nil
}

// SetLogger sets a logger on the wrapped buffer.
func (s *Shared) SetLogger(logger Logger) {
	s.mu.Lock()
	s.buf.SetLogger(logger)
	s.mu.Unlock()
}

// ElementSize returns the size of one element in bytes.
func (s *Shared) ElementSize() int {
	return s.buf.elementSize
}

// Capacity returns the number of elements the buffer holds.
func (s *Shared) Capacity() int {
	return s.buf.capacity
}

// Write stores elements, discarding the oldest unread data on overflow.
// See Buffer.Write.
func (s *Shared) Write(p []byte) int {
	count := len(p) / s.buf.elementSize

	s.mu.Lock()
	before := s.buf.Available()
	n := s.buf.Write(p)
	s.mu.Unlock()

	// Elements lost to the overflow window plus unread elements overrun.
	lost := count - n
	if over := before + n - s.buf.capacity; over > 0 {
		lost += over
	}
	s.elementsIn.Add(uint64(n))
	if lost > 0 {
		s.dropped.Add(uint64(lost))
	}
	return n
}

// Read copies unread elements into dest. See Buffer.Read.
func (s *Shared) Read(dest []byte) (int, error) {
	s.mu.Lock()
	n, err := s.buf.Read(dest)
	s.mu.Unlock()

	if n > 0 {
		s.elementsOut.Add(uint64(n))
	}
	return n, err
}

// Latest discards everything but the newest unread element and reads it
// into dest.
//
// A dest shorter than one element copies nothing and leaves the buffer
// untouched, as Buffer.Read does.
//
// Returns:
//   - bool: true if an element was copied
//   - error: ErrNeverWritten if nothing has been written yet
func (s *Shared) Latest(dest []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.buf.written {
		return false, ErrNeverWritten
	}
	if len(dest) < s.buf.elementSize {
		return false, nil
	}
	available := s.buf.Available()
	if available == 0 {
		return false, nil
	}
	if available > 1 {
		s.buf.Skip(available - 1)
		s.dropped.Add(uint64(available - 1))
	}
	n, err := s.buf.Read(dest[:s.buf.elementSize])
	if n > 0 {
		s.elementsOut.Add(uint64(n))
	}
	return n > 0, err
}

// Skip discards up to n unread elements. See Buffer.Skip.
func (s *Shared) Skip(n int) {
	s.mu.Lock()
	s.buf.Skip(n)
	s.mu.Unlock()
}

// Available returns the number of unread elements.
func (s *Shared) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Available()
}

// Clear resets the wrapped buffer. See Buffer.Clear.
func (s *Shared) Clear() {
	s.mu.Lock()
	s.buf.Clear()
	s.mu.Unlock()
}

// SharedStats holds element accounting for a Shared buffer.
type SharedStats struct {
	ElementsIn  uint64 // Elements accepted by Write
	ElementsOut uint64 // Elements handed to the consumer
	Dropped     uint64 // Elements discarded by overflow or Latest
}

// Stats returns a snapshot of the element accounting.
func (s *Shared) Stats() SharedStats {
	return SharedStats{
		ElementsIn:  s.elementsIn.Load(),
		ElementsOut: s.elementsOut.Load(),
		Dropped:     s.dropped.Load(),
	}
}
