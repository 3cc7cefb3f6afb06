// Package field provides fixed-offset big-endian accessors over an in-memory buffer.
//
// A Buffer is the payload store of a leaf atom: every header field and table entry of the
// atom is read and written through it at a known byte offset. Out of range offsets panic
// exactly like slice indexing, so callers validate the layout once when the buffer is filled.
package field

import (
	"math"

	"github.com/deepch/vdk/utils/bits/pio"
)

type Buffer struct {
	b []byte
}

// New returns a zero filled buffer of size bytes.
func New(size int) *Buffer {
	return &Buffer{b: make([]byte, size)}
}

// Wrap takes ownership of b.
func Wrap(b []byte) *Buffer {
	return &Buffer{b: b}
}

func (buf *Buffer) Len() int {
	if buf == nil {
		return 0
	}
	return len(buf.b)
}

// Raw returns the backing slice. It is meant for serialization only.
func (buf *Buffer) Raw() []byte {
	if buf == nil {
		return nil
	}
	return buf.b
}

// Clone returns a deep copy.
func (buf *Buffer) Clone() *Buffer {
	if buf == nil {
		return nil
	}
	b := make([]byte, len(buf.b))
	copy(b, buf.b)
	return &Buffer{b: b}
}

// Has reports whether n bytes starting at off are inside the buffer.
func (buf *Buffer) Has(off, n int) bool {
	return off >= 0 && n >= 0 && off+n <= buf.Len()
}

func (buf *Buffer) U8(off int) uint8 {
	return pio.U8(buf.b[off:])
}

func (buf *Buffer) PutU8(off int, v uint8) {
	pio.PutU8(buf.b[off:], v)
}

func (buf *Buffer) U16(off int) uint16 {
	return pio.U16BE(buf.b[off:])
}

func (buf *Buffer) PutU16(off int, v uint16) {
	pio.PutU16BE(buf.b[off:], v)
}

func (buf *Buffer) I16(off int) int16 {
	return pio.I16BE(buf.b[off:])
}

func (buf *Buffer) U24(off int) uint32 {
	return pio.U24BE(buf.b[off:])
}

func (buf *Buffer) PutU24(off int, v uint32) {
	pio.PutU24BE(buf.b[off:], v)
}

func (buf *Buffer) U32(off int) uint32 {
	return pio.U32BE(buf.b[off:])
}

func (buf *Buffer) PutU32(off int, v uint32) {
	pio.PutU32BE(buf.b[off:], v)
}

func (buf *Buffer) I32(off int) int32 {
	return pio.I32BE(buf.b[off:])
}

func (buf *Buffer) PutI32(off int, v int32) {
	pio.PutI32BE(buf.b[off:], v)
}

func (buf *Buffer) U64(off int) uint64 {
	return pio.U64BE(buf.b[off:])
}

func (buf *Buffer) PutU64(off int, v uint64) {
	pio.PutU64BE(buf.b[off:], v)
}

func (buf *Buffer) I64(off int) int64 {
	return pio.I64BE(buf.b[off:])
}

func (buf *Buffer) PutI64(off int, v int64) {
	pio.PutI64BE(buf.b[off:], v)
}

// Fixed32 reads a signed 16.16 fixed point value.
func (buf *Buffer) Fixed32(off int) float64 {
	return float64(buf.I32(off)) / 65536.0
}

func (buf *Buffer) PutFixed32(off int, f float64) {
	buf.PutI32(off, int32(math.Round(f*65536.0)))
}

// Fixed16 reads a signed 8.8 fixed point value.
func (buf *Buffer) Fixed16(off int) float64 {
	return float64(buf.I16(off)) / 256.0
}

func (buf *Buffer) PutFixed16(off int, f float64) {
	buf.PutU16(off, uint16(int16(math.Round(f*256.0))))
}

// Bytes returns a copy of n bytes starting at off.
func (buf *Buffer) Bytes(off, n int) []byte {
	b := make([]byte, n)
	copy(b, buf.b[off:off+n])
	return b
}

// PutBytes copies src into the buffer starting at off.
func (buf *Buffer) PutBytes(off int, src []byte) {
	copy(buf.b[off:off+len(src)], src)
}
