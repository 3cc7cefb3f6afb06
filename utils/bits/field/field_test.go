package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegers(t *testing.T) {
	t.Parallel()

	buf := New(24)
	buf.PutU8(0, 0xab)
	buf.PutU16(1, 0x1234)
	buf.PutU24(3, 0x56789a)
	buf.PutU32(6, 0xdeadbeef)
	buf.PutU64(10, 0x0102030405060708)
	buf.PutI32(18, -2)

	require.Equal(t, uint8(0xab), buf.U8(0))
	require.Equal(t, uint16(0x1234), buf.U16(1))
	require.Equal(t, uint32(0x56789a), buf.U24(3))
	require.Equal(t, uint32(0xdeadbeef), buf.U32(6))
	require.Equal(t, uint64(0x0102030405060708), buf.U64(10))
	require.Equal(t, int32(-2), buf.I32(18))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, buf.Bytes(6, 4))
}

func TestBigEndianLayout(t *testing.T) {
	t.Parallel()

	buf := Wrap([]byte{0, 0, 0x01, 0x00})
	require.Equal(t, uint32(256), buf.U32(0))

	buf.PutU32(0, 0x11223344)
	require.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, buf.Raw())
}

func TestFixedPoint(t *testing.T) {
	t.Parallel()

	buf := New(6)
	buf.PutFixed32(0, 1.5)
	require.Equal(t, []byte{0x00, 0x01, 0x80, 0x00}, buf.Bytes(0, 4))
	require.InDelta(t, 1.5, buf.Fixed32(0), 1e-9)

	buf.PutFixed32(0, -1)
	require.InDelta(t, -1.0, buf.Fixed32(0), 1e-9)

	buf.PutFixed16(4, 1.0)
	require.Equal(t, []byte{0x01, 0x00}, buf.Bytes(4, 2))
	require.InDelta(t, 1.0, buf.Fixed16(4), 1e-9)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	buf := Wrap([]byte{1, 2, 3, 4})
	cp := buf.Clone()
	cp.PutU8(0, 9)

	require.Equal(t, uint8(1), buf.U8(0))
	require.Equal(t, uint8(9), cp.U8(0))
}

func TestHas(t *testing.T) {
	t.Parallel()

	buf := New(8)
	require.True(t, buf.Has(0, 8))
	require.True(t, buf.Has(4, 4))
	require.False(t, buf.Has(5, 4))
	require.False(t, buf.Has(-1, 1))

	var empty *Buffer
	require.Equal(t, 0, empty.Len())
	require.Nil(t, empty.Clone())
}
