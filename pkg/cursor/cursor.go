// Package cursor provides positional reads over an in-memory byte buffer.
//
// A Cursor never copies the buffer it wraps: Raw returns sub-slices of the
// original data, so callers must treat them as read-only. Primitive reads are
// little endian. Reads that would run past the end of the buffer fail with
// ErrTruncated and leave the offset where it was.
package cursor

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// ErrTruncated is returned when a read needs more bytes than remain.
var ErrTruncated = errors.New("truncated input")

// Cursor reads primitives from a byte buffer at a movable offset.
type Cursor struct {
	data   []byte
	offset int
	depth  int
}

// New creates a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read offset
func (c *Cursor) Offset() int {
	return c.offset
}

// Size returns the length of the underlying buffer
func (c *Cursor) Size() int {
	return len(c.data)
}

// Remaining returns the number of bytes between the offset and the end of the buffer.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.offset
}

// Seek moves the offset to an absolute position. Seeking to Size() is allowed.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		return errors.Wrapf(ErrTruncated, "seek to %d outside buffer of %d bytes", offset, len(c.data))
	}
	c.offset = offset
	return nil
}

// span returns the next n bytes without moving the offset.
func (c *Cursor) span(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, have %d", n, c.offset, c.Remaining())
	}
	return c.data[c.offset : c.offset+n], nil
}

// Raw returns the next n bytes and advances past them.
func (c *Cursor) Raw(n int) ([]byte, error) {
	b, err := c.span(n)
	if err != nil {
		return nil, err
	}
	c.offset += n
	return b, nil
}

// Skip advances the offset by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.Raw(n)
	return err
}

// PeekUint8 returns the next byte without consuming it.
func (c *Cursor) PeekUint8() (uint8, error) {
	b, err := c.span(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.Raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Int16 reads a little-endian two's complement int16.
func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Float32 reads a little-endian IEEE 754 float32.
func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// CString reads a zero-terminated byte run that must end before limit.
// The terminator is consumed but not returned. When no terminator is found
// before limit the offset is left unchanged.
func (c *Cursor) CString(limit int) (string, error) {
	if limit > len(c.data) {
		limit = len(c.data)
	}
	for i := c.offset; i < limit; i++ {
		if c.data[i] == 0 {
			s := string(c.data[c.offset:i])
			c.offset = i + 1
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrTruncated, "unterminated string at offset %d", c.offset)
}
