// Package mp4iotest builds small, well formed MP4 files for tests.
package mp4iotest

import (
	"github.com/deepch/vdk/utils/bits/pio"
)

func U16(v ...uint16) []byte {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		pio.PutU16BE(b[2*i:], x)
	}
	return b
}

func U32(v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		pio.PutU32BE(b[4*i:], x)
	}
	return b
}

func U64(v ...uint64) []byte {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		pio.PutU64BE(b[8*i:], x)
	}
	return b
}

func Zeros(n int) []byte {
	return make([]byte, n)
}

func join(parts [][]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

// Box returns an atom with a 32-bit size.
func Box(tag string, payload ...[]byte) []byte {
	body := join(payload)
	b := make([]byte, 8, 8+len(body))
	pio.PutU32BE(b[0:], uint32(8+len(body)))
	copy(b[4:], tag)
	return append(b, body...)
}

// FullBox returns an atom whose payload starts with version and flags.
func FullBox(tag string, version uint8, flags uint32, payload ...[]byte) []byte {
	vf := make([]byte, 4)
	pio.PutU8(vf, version)
	pio.PutU24BE(vf[1:], flags)
	return Box(tag, append([][]byte{vf}, payload...)...)
}

// Track describes one track. Chunk offsets are relative to the first media data byte.
type Track struct {
	ID          uint32
	TimeScale   uint32
	Audio       bool
	Edit        bool
	STTS        [][2]uint32
	CTTS        [][2]uint32
	STSS        []uint32
	STSC        [][3]uint32
	Sizes       []uint32
	UniformSize uint32
	Chunks      []uint32
	CO64        bool
}

func (t Track) MediaDuration() (d uint64) {
	for _, e := range t.STTS {
		d += uint64(e[0]) * uint64(e[1])
	}
	return
}

func (t Track) SampleCount() (n uint32) {
	for _, e := range t.STTS {
		n += e[0]
	}
	return
}

// File describes a file laid out as ftyp, moov, an optional free atom and mdat.
type File struct {
	TimeScale  uint32
	Tracks     []Track
	Data       []byte
	NoFileType bool
	Free       int
}

func (f File) FileType() []byte {
	if f.NoFileType {
		return nil
	}
	return Box("ftyp", []byte("isom"), U32(512), []byte("isomiso2avc1mp41"))
}

// Movie returns the moov atom with chunk offsets shifted by base.
func (f File) Movie(base uint32) []byte {
	var d uint64
	var traks [][]byte
	for _, t := range f.Tracks {
		td := t.MediaDuration() * uint64(f.TimeScale) / uint64(t.TimeScale)
		d = max(d, td)
		traks = append(traks, t.trak(uint32(td), base))
	}
	mvhd := FullBox("mvhd", 0, 0,
		U32(0, 0, f.TimeScale, uint32(d), 0x00010000), U16(0x0100), Zeros(10),
		matrix(), Zeros(24), U32(uint32(len(f.Tracks)+1)))
	return Box("moov", append([][]byte{mvhd}, traks...)...)
}

func (f File) Bytes() []byte {
	ftyp := f.FileType()
	var free []byte
	if f.Free > 0 {
		free = Box("free", Zeros(f.Free))
	}
	size := len(f.Movie(0))
	base := uint32(len(ftyp) + size + len(free) + 8)
	return join([][]byte{ftyp, f.Movie(base), free, Box("mdat", f.Data)})
}

// DataStart is the file position of the first media data byte.
func (f File) DataStart() int {
	free := 0
	if f.Free > 0 {
		free = 8 + f.Free
	}
	return len(f.FileType()) + len(f.Movie(0)) + free + 8
}

func matrix() []byte {
	return U32(0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000)
}

func (t Track) trak(duration uint32, base uint32) []byte {
	var volume uint16
	var width, height uint32
	if t.Audio {
		volume = 0x0100
	} else {
		width, height = 1920<<16, 1080<<16
	}
	tkhd := FullBox("tkhd", 0, 3,
		U32(0, 0, t.ID, 0, duration), Zeros(8), U16(0, 0, volume, 0), matrix(), U32(width, height))

	parts := [][]byte{tkhd}
	if t.Edit {
		parts = append(parts, Box("edts", FullBox("elst", 0, 0, U32(1, duration, 0, 0x00010000))))
	}
	return Box("trak", append(parts, t.mdia(base))...)
}

func (t Track) mdia(base uint32) []byte {
	mdhd := FullBox("mdhd", 0, 0, U32(0, 0, t.TimeScale, uint32(t.MediaDuration())), U16(0x55c4, 0))
	handler, mhd, entry := "vide", FullBox("vmhd", 0, 1, Zeros(8)), visualEntry()
	if t.Audio {
		handler, mhd, entry = "soun", FullBox("smhd", 0, 0, Zeros(4)), audioEntry()
	}
	hdlr := FullBox("hdlr", 0, 0, U32(0), []byte(handler), Zeros(12), []byte("handler\x00"))
	dinf := Box("dinf", FullBox("dref", 0, 0, U32(1), FullBox("url ", 0, 1)))
	minf := Box("minf", mhd, dinf, t.stbl(entry, base))
	return Box("mdia", mdhd, hdlr, minf)
}

func (t Track) stbl(entry []byte, base uint32) []byte {
	parts := [][]byte{FullBox("stsd", 0, 0, U32(1), entry)}

	var stts [][]byte
	for _, e := range t.STTS {
		stts = append(stts, U32(e[0], e[1]))
	}
	parts = append(parts, FullBox("stts", 0, 0, append([][]byte{U32(uint32(len(t.STTS)))}, stts...)...))

	if t.CTTS != nil {
		var ctts [][]byte
		for _, e := range t.CTTS {
			ctts = append(ctts, U32(e[0], e[1]))
		}
		parts = append(parts, FullBox("ctts", 0, 0, append([][]byte{U32(uint32(len(t.CTTS)))}, ctts...)...))
	}
	if t.STSS != nil {
		parts = append(parts, FullBox("stss", 0, 0, U32(uint32(len(t.STSS))), U32(t.STSS...)))
	}

	var stsc [][]byte
	for _, e := range t.STSC {
		stsc = append(stsc, U32(e[0], e[1], e[2]))
	}
	parts = append(parts, FullBox("stsc", 0, 0, append([][]byte{U32(uint32(len(t.STSC)))}, stsc...)...))

	if t.UniformSize != 0 {
		parts = append(parts, FullBox("stsz", 0, 0, U32(t.UniformSize, t.SampleCount())))
	} else {
		parts = append(parts, FullBox("stsz", 0, 0, U32(0, uint32(len(t.Sizes))), U32(t.Sizes...)))
	}

	if t.CO64 {
		offsets := make([]uint64, len(t.Chunks))
		for i, c := range t.Chunks {
			offsets[i] = uint64(base) + uint64(c)
		}
		parts = append(parts, FullBox("co64", 0, 0, U32(uint32(len(offsets))), U64(offsets...)))
	} else {
		offsets := make([]uint32, len(t.Chunks))
		for i, c := range t.Chunks {
			offsets[i] = base + c
		}
		parts = append(parts, FullBox("stco", 0, 0, U32(uint32(len(offsets))), U32(offsets...)))
	}
	return Box("stbl", parts...)
}

func visualEntry() []byte {
	return Box("avc1", Zeros(6), U16(1), Zeros(16), U16(1920, 1080),
		U32(0x00480000, 0x00480000, 0), U16(1), Zeros(32), U16(0x18, 0xffff))
}

func audioEntry() []byte {
	return Box("mp4a", Zeros(6), U16(1), Zeros(8), U16(2, 16, 0, 0), U32(48000<<16))
}

func (t Track) sizeOf(n uint32) uint32 {
	if t.UniformSize != 0 {
		return t.UniformSize
	}
	return t.Sizes[n-1]
}

// chunkSamples lists the sample numbers of every chunk. The last run of the
// sample-to-chunk table repeats until every sample is placed.
func (t Track) chunkSamples() (chunks [][]uint32) {
	total := t.SampleCount()
	n := uint32(1)
	for chunk := uint32(1); n <= total; chunk++ {
		var spc uint32
		for _, e := range t.STSC {
			if e[0] <= chunk {
				spc = e[1]
			}
		}
		if spc == 0 {
			break
		}
		var samples []uint32
		for j := uint32(0); j < spc && n <= total; j++ {
			samples = append(samples, n)
			n++
		}
		chunks = append(chunks, samples)
	}
	return
}

// Marker is the value of every byte of sample n of the track at index track.
func Marker(track int, n uint32) byte {
	return byte(track<<6) | byte(n&0x3f)
}

// Interleave places chunk k of every track before chunk k+1 of any track and fills the
// Chunks of every track and the media data.
func Interleave(timescale uint32, tracks ...Track) File {
	layout := make([][][]uint32, len(tracks))
	for i := range tracks {
		layout[i] = tracks[i].chunkSamples()
		tracks[i].Chunks = nil
	}
	var data []byte
	for k := 0; ; k++ {
		placed := false
		for i, t := range tracks {
			if k >= len(layout[i]) {
				continue
			}
			placed = true
			tracks[i].Chunks = append(tracks[i].Chunks, uint32(len(data)))
			for _, n := range layout[i][k] {
				for j := uint32(0); j < t.sizeOf(n); j++ {
					data = append(data, Marker(i, n))
				}
			}
		}
		if !placed {
			break
		}
	}
	return File{TimeScale: timescale, Tracks: tracks, Data: data}
}
