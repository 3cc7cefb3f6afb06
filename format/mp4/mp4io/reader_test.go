package mp4io

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/deepch/vdk/utils/bits/pio"
	"github.com/stretchr/testify/require"
	mt "github.com/ugparu/mp4split/format/mp4/mp4io/mp4iotest"
)

func videoTrack() mt.Track {
	return mt.Track{
		ID:        1,
		TimeScale: 90000,
		Edit:      true,
		STTS:      [][2]uint32{{6, 3000}},
		CTTS:      [][2]uint32{{6, 3000}},
		STSS:      []uint32{1, 4},
		STSC:      [][3]uint32{{1, 3, 1}},
		Sizes:     []uint32{10, 11, 12, 13, 14, 15},
		Chunks:    []uint32{0, 49},
	}
}

func audioTrack() mt.Track {
	return mt.Track{
		ID:          2,
		TimeScale:   48000,
		Audio:       true,
		STTS:        [][2]uint32{{4, 1024}},
		STSC:        [][3]uint32{{1, 2, 1}},
		UniformSize: 8,
		Chunks:      []uint32{33, 91},
	}
}

func testFile() mt.File {
	return mt.File{
		TimeScale: 600,
		Tracks:    []mt.Track{videoTrack(), audioTrack()},
		Data:      make([]byte, 107),
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	src := testFile()
	raw := src.Bytes()
	f, err := ReadFile(bytes.NewReader(raw))
	require.NoError(t, err)

	require.NotNil(t, f.FileType)
	require.Equal(t, StringToTag("isom"), f.FileType.MajorBrand())
	require.Equal(t, uint32(600), f.Movie.Header.TimeScale())
	require.Len(t, f.Movie.Tracks, 2)

	video := f.Movie.Tracks[0]
	require.Equal(t, uint32(1), video.Header.TrackID())
	require.Equal(t, StringToTag("vide"), video.Media.Handler.HandlerType())
	require.Equal(t, uint32(90000), video.Media.Header.TimeScale())
	require.Equal(t, uint64(18000), video.Media.Header.Duration())
	require.Equal(t, uint64(120), video.Header.Duration())
	require.Equal(t, uint64(120), video.Edit.List.Duration())
	require.NotNil(t, video.Media.Info.Video)
	require.Equal(t, []SampleEntry{{Format: AVC1, Width: 1920, Height: 1080}}, video.SampleTable().SampleDesc.Entries())

	audio := f.Movie.Tracks[1]
	require.NotNil(t, audio.Media.Info.Sound)
	require.Nil(t, audio.Edit)
	entries := audio.SampleTable().SampleDesc.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, uint16(2), entries[0].Channels)
	require.InDelta(t, 48000.0, entries[0].SampleRate, 1e-9)

	require.Equal(t, int64(src.DataStart()), f.MediaData.DataOffset())
	require.Equal(t, uint64(107), f.MediaData.DataLen())

	first, ok := f.Movie.FirstDataOffset()
	require.True(t, ok)
	require.Equal(t, uint64(src.DataStart()), first)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	src := testFile()
	for i := range src.Data {
		src.Data[i] = byte(i)
	}
	raw := src.Bytes()
	f, err := ReadFile(bytes.NewReader(raw))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteFile(&out, f))
	require.Equal(t, raw, out.Bytes())
}

func TestRoundTripClone(t *testing.T) {
	t.Parallel()

	raw := testFile().Bytes()
	f, err := ReadFile(bytes.NewReader(raw))
	require.NoError(t, err)

	clone := &File{FileType: f.FileType.Clone(), Movie: f.Movie.Clone(), MediaData: f.MediaData}
	require.NoError(t, clone.Movie.Tracks[0].FixupOffsets(-7))

	var out bytes.Buffer
	require.NoError(t, WriteFile(&out, f))
	require.Equal(t, raw, out.Bytes(), "clone shares no buffers with the source tree")
	require.Equal(t, f.Movie.Len(), clone.Movie.Len())
}

func TestSizeInvariant(t *testing.T) {
	t.Parallel()

	atoms, err := ReadFileAtoms(bytes.NewReader(testFile().Bytes()))
	require.NoError(t, err)
	require.Len(t, atoms, 3)

	for _, root := range atoms {
		err = Walk(root, func(atom Atom, _ int) error {
			_, size := atom.Pos()
			require.Equal(t, size, atom.Len(), "'%s'", atom.Tag())

			var b bytes.Buffer
			if atom.Tag() != MDAT {
				require.NoError(t, atom.Marshal(&b))
				require.Equal(t, atom.Len(), uint64(b.Len()), "'%s'", atom.Tag())
			}
			return nil
		})
		require.NoError(t, err)
	}
}

func TestFreeAtomsAreDropped(t *testing.T) {
	t.Parallel()

	src := testFile()
	src.Free = 16
	f, err := ReadFile(bytes.NewReader(src.Bytes()))
	require.NoError(t, err)
	require.Len(t, f.Free, 1)
	require.Len(t, f.Atoms(), 3)
	require.Equal(t, int64(src.DataStart()), f.MediaData.DataOffset())
}

func TestFileTypeIsOptional(t *testing.T) {
	t.Parallel()

	src := testFile()
	src.NoFileType = true
	f, err := ReadFile(bytes.NewReader(src.Bytes()))
	require.NoError(t, err)
	require.Nil(t, f.FileType)
	require.Equal(t, f.Movie.Len()+HeaderSize, f.DataOffset())
}

func TestLargeMediaData(t *testing.T) {
	t.Parallel()

	payload := []byte("0123456789")
	mdat := append(mt.U32(1), []byte("mdat")...)
	mdat = append(mdat, mt.U64(uint64(16+len(payload)))...)
	mdat = append(mdat, payload...)

	atoms, err := ReadFileAtoms(bytes.NewReader(mdat))
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	md := atoms[0].(*MediaData)
	require.Equal(t, uint64(LargeHeaderSize), md.HeaderLen())
	require.Equal(t, int64(16), md.DataOffset())
	require.Equal(t, uint64(26), md.Len())

	var out bytes.Buffer
	require.NoError(t, md.Marshal(&out))
	require.Equal(t, mdat, out.Bytes())

	cut, err := md.Cut(4)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, cut.Marshal(&out))
	require.Equal(t, []byte("456789"), out.Bytes()[LargeHeaderSize:])
	require.Equal(t, uint64(22), pio.U64BE(out.Bytes()[8:]))

	_, err = md.Cut(11)
	require.ErrorIs(t, err, ErrOutOfRange)
}

// patch returns a copy of b with the 32-bit size of the first atom tagged tag replaced.
func patch(t *testing.T, b []byte, tag string, size uint32) []byte {
	t.Helper()
	i := bytes.Index(b, []byte(tag))
	require.GreaterOrEqual(t, i, 4)
	out := append([]byte(nil), b...)
	pio.PutU32BE(out[i-4:], size)
	return out
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	raw := testFile().Bytes()
	moovSize := pio.U32BE(raw[bytes.Index(raw, []byte("moov"))-4:])
	stbl := bytes.Index(raw, []byte("stbl"))

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"partial header", raw[:4], ErrTruncatedInput},
		{"children short of declared size", patch(t, raw, "moov", moovSize+8), ErrBoxSizeMismatch},
		{"child past the end of its parent", patch(t, raw, "mvhd", moovSize), ErrBoxSizeMismatch},
		{"source ends inside an atom", raw[:len(raw)-1], ErrTruncatedInput},
		{"unknown atom", append(append([]byte(nil), raw...), mt.Box("abcd")...), ErrUnknownBoxType},
		{"zero size", append(append([]byte(nil), raw...), mt.U32(0, 0x66726565)...), ErrUnsupportedBoxSize},
		{"largesize on a container", append(mt.U32(1), []byte("moov")...), ErrUnsupportedBoxSize},
		{"size below the header", patch(t, raw, "ftyp", 4), ErrBoxSizeMismatch},
		{"leaf shorter than its layout", append(append([]byte(nil), raw[:stbl]...),
			bytes.Replace(raw[stbl:], []byte("stss"), []byte("mvhd"), 1)...), ErrTruncatedInput},
		{"top level leaf out of place", append(append([]byte(nil), raw...), mt.FullBox("stss", 0, 0, mt.U32(0))...), ErrInvalidChildType},
		{"missing movie", mt.Box("mdat", []byte{1, 2, 3}), ErrMissingBox},
		{"missing media data", raw[:bytes.Index(raw, []byte("mdat"))-4], ErrMissingBox},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadFile(bytes.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInvalidChildType(t *testing.T) {
	t.Parallel()

	moov := mt.Box("moov",
		mt.FullBox("mvhd", 0, 0, mt.Zeros(96)),
		mt.FullBox("stts", 0, 0, mt.U32(0)))
	_, err := ReadFileAtoms(bytes.NewReader(moov))
	require.ErrorIs(t, err, ErrInvalidChildType)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "moov", perr.Debug)
	require.Equal(t, int64(0), perr.Offset)
	require.Contains(t, err.Error(), "mp4io: parse error: moov:0")
}

func TestMissingRequiredChild(t *testing.T) {
	t.Parallel()

	_, err := ReadFileAtoms(bytes.NewReader(mt.Box("moov")))
	require.ErrorIs(t, err, ErrMissingBox)

	_, err = ReadFileAtoms(bytes.NewReader(mt.Box("edts")))
	require.ErrorIs(t, err, ErrMissingBox)
}

func TestParseErrorPath(t *testing.T) {
	t.Parallel()

	raw := testFile().Bytes()
	at := bytes.Index(raw, []byte("stts"))
	// declare two entries where the table holds one
	bad := append([]byte(nil), raw...)
	pio.PutU32BE(bad[at+8:], 2)

	_, err := ReadFile(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrTruncatedInput)
	require.Contains(t, err.Error(), "moov:")
	require.Contains(t, err.Error(), ",stts:")
}

func TestCleanEOF(t *testing.T) {
	t.Parallel()

	atoms, err := ReadFileAtoms(bytes.NewReader(nil))
	require.NoError(t, err)
	require.Empty(t, atoms)

	atoms, err = ReadFileAtoms(bytes.NewReader(mt.Box("free", mt.Zeros(3))))
	require.NoError(t, err)
	require.Len(t, atoms, 1)
}

type failWriter struct{ after int }

func (w *failWriter) Write(b []byte) (int, error) {
	if w.after < len(b) {
		return 0, io.ErrShortWrite
	}
	w.after -= len(b)
	return len(b), nil
}

func TestWriteErrors(t *testing.T) {
	t.Parallel()

	raw := testFile().Bytes()
	f, err := ReadFile(bytes.NewReader(raw))
	require.NoError(t, err)

	for _, after := range []int{0, 40, len(raw) - 20} {
		err = WriteFile(&failWriter{after: after}, f)
		require.ErrorIs(t, err, ErrWriteIO)
		require.ErrorIs(t, err, io.ErrShortWrite)
	}
}

func TestMediaDataSourceErrors(t *testing.T) {
	t.Parallel()

	md := NewMediaData(bytes.NewReader([]byte("abc")), 0, 10)
	var out bytes.Buffer
	require.ErrorIs(t, md.Marshal(&out), ErrTruncatedInput)
}

func TestFprintAtom(t *testing.T) {
	t.Parallel()

	f, err := ReadFile(bytes.NewReader(testFile().Bytes()))
	require.NoError(t, err)

	var out bytes.Buffer
	FprintAtom(&out, f.Movie)
	dump := out.String()
	require.Contains(t, dump, "moov offset=")
	require.Contains(t, dump, "\n  trak offset=")
	require.Contains(t, dump, " id=1")
	require.Contains(t, dump, " rate=1.00 volume=1.00 created=1904-01-01 next_track_id=")
	require.Contains(t, dump, " lang=und created=1904-01-01")
	require.Contains(t, dump, "smhd offset=")
	require.Contains(t, dump, " balance=0.00")
	require.Contains(t, dump, "\n          stts offset=")
	require.Nil(t, FindChildrenByName(f.Movie, "co64"))
	require.Equal(t, SMHD, FindChildren(f.Movie, SMHD).Tag())
}
