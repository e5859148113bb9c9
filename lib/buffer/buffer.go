package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrFull is returned by all write methods once the buffer capacity is
// exhausted. The encoding driver reacts by retrying with a larger buffer.
var ErrFull = errors.New("buffer: capacity exhausted")

// Buffer is a fixed-capacity byte buffer. Unlike bytes.Buffer it never grows:
// writes beyond the capacity fail with ErrFull so that the caller stays in
// control of allocation.
type Buffer struct {
	data []byte
	n    int
}

// New allocates a fresh buffer with the given capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Cap returns the buffer capacity in bytes.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.n }

// Bytes returns the written prefix. The slice aliases the buffer's backing
// array and is invalidated by Reset or by releasing the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// Reset discards all written bytes but keeps the backing array.
func (b *Buffer) Reset() { b.n = 0 }

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	if b.n+1 > len(b.data) {
		return ErrFull
	}
	b.data[b.n] = c
	b.n++
	return nil
}

// Write appends p in full or not at all.
func (b *Buffer) Write(p []byte) error {
	if b.n+len(p) > len(b.data) {
		return ErrFull
	}
	copy(b.data[b.n:], p)
	b.n += len(p)
	return nil
}

// WriteUint16 appends v in big-endian byte order.
func (b *Buffer) WriteUint16(v uint16) error {
	if b.n+2 > len(b.data) {
		return ErrFull
	}
	binary.BigEndian.PutUint16(b.data[b.n:], v)
	b.n += 2
	return nil
}

// WriteUint32 appends v in big-endian byte order.
func (b *Buffer) WriteUint32(v uint32) error {
	if b.n+4 > len(b.data) {
		return ErrFull
	}
	binary.BigEndian.PutUint32(b.data[b.n:], v)
	b.n += 4
	return nil
}

// WriteUint64 appends v in big-endian byte order.
func (b *Buffer) WriteUint64(v uint64) error {
	if b.n+8 > len(b.data) {
		return ErrFull
	}
	binary.BigEndian.PutUint64(b.data[b.n:], v)
	b.n += 8
	return nil
}
