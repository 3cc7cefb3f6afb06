package mp4io

import "github.com/ugparu/mp4split/utils/bits/field"

// Run-length tables ('stts', 'ctts', 'sbgp') start every entry with a sample count.

// cutRuns returns a copy of a run-length table that starts with sample n (1-based).
// The run holding n keeps its value with the samples before n removed, earlier runs are
// dropped and later runs are copied unchanged. A sample past the end yields an empty table.
func cutRuns(buf *field.Buffer, countOff, tableOff, stride int, n uint64) *field.Buffer {
	if n < 1 {
		n = 1
	}
	count := int(buf.U32(countOff))
	var upper uint64
	i := 0
	for ; i < count; i++ {
		upper += uint64(buf.U32(tableOff + i*stride))
		if n <= upper {
			break
		}
	}

	kept := count - i
	out := field.New(tableOff + kept*stride)
	out.PutBytes(0, buf.Bytes(0, tableOff))
	out.PutU32(countOff, uint32(kept))
	if kept == 0 {
		return out
	}
	out.PutBytes(tableOff, buf.Bytes(tableOff+i*stride, kept*stride))
	out.PutU32(tableOff, uint32(upper-n+1))
	return out
}

func runSamples(buf *field.Buffer, countOff, tableOff, stride int) (n uint64) {
	count := int(buf.U32(countOff))
	for i := 0; i < count; i++ {
		n += uint64(buf.U32(tableOff + i*stride))
	}
	return
}
