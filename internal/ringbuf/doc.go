// Package ringbuf provides a fixed-capacity circular store of fixed-size
// elements for absorbing bursty, time-critical producer input.
//
// # Overflow Policy
//
// The buffer never blocks and never grows. When a write would overrun
// unread data, the oldest unread elements are discarded and the read cursor
// is moved forward to the new write position (producer wins). A single write
// larger than the capacity keeps only its most recent Capacity() elements.
//
// # Accounting
//
// Available reports the number of unread elements:
//   - 0 if the buffer has never been written
//   - Capacity() if a write left the cursors coinciding (full)
//   - otherwise the forward distance from the read cursor to the write cursor
//
// Read distinguishes "never written" (ErrNeverWritten) from "drained"
// (zero elements, nil error), so consumers can fall back to another source
// until the producer has delivered anything at all.
//
// # Thread Safety
//
// Buffer performs no locking. Use Shared when one producer goroutine and one
// consumer goroutine access the same buffer.
//
// # Usage
//
//	buf, err := ringbuf.New(6, 64) // 64 elements of 6 bytes
//	if err != nil {
//	    return err
//	}
//	buf.Write(elements)
//	n, err := buf.Read(dest)
package ringbuf
