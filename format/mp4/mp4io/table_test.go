package mp4io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/mp4split/format/mp4/mp4io/mp4iotest"
)

func TestTimeToSample(t *testing.T) {
	t.Parallel()

	stts := NewTimeToSample([]TimeToSampleEntry{{3, 10}, {2, 20}})
	require.Equal(t, uint64(70), stts.ComputeDuration())
	require.Equal(t, uint64(5), stts.SampleCount())

	tests := []struct {
		tm   uint64
		want uint64
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{25, 2},
		{30, 3},
		{35, 3},
		{69, 4},
	}
	for _, tt := range tests {
		got, err := stts.TimeToSample(tt.tm)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "time %d", tt.tm)
	}

	_, err := stts.TimeToSample(70)
	require.ErrorIs(t, err, ErrOutOfRange)

	for n, want := range map[uint64]uint64{1: 0, 2: 10, 3: 20, 4: 30, 5: 50, 6: 70} {
		require.Equal(t, want, stts.SampleTime(n), "sample %d", n)
	}
}

func TestTimeToSampleCut(t *testing.T) {
	t.Parallel()

	stts := NewTimeToSample([]TimeToSampleEntry{{3, 10}, {2, 20}})
	tests := []struct {
		name string
		n    uint64
		want []TimeToSampleEntry
	}{
		{"first sample", 1, []TimeToSampleEntry{{3, 10}, {2, 20}}},
		{"inside first run", 2, []TimeToSampleEntry{{2, 10}, {2, 20}}},
		{"second run", 4, []TimeToSampleEntry{{2, 20}}},
		{"last sample", 5, []TimeToSampleEntry{{1, 20}}},
		{"past the end", 6, []TimeToSampleEntry{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cut := stts.Cut(tt.n)
			require.Equal(t, tt.want, cut.Entries())
			require.Equal(t, uint64(16+8*len(tt.want)), cut.Len())
		})
	}

	require.Equal(t, uint64(40), stts.Cut(4).ComputeDuration())
	// the source table is not modified
	require.Equal(t, uint64(70), stts.ComputeDuration())
}

func TestCompositionOffsetCut(t *testing.T) {
	t.Parallel()

	ctts := NewCompositionOffset([]CompositionOffsetEntry{{1, 0}, {2, 1024}, {1, 512}})
	require.Equal(t, []CompositionOffsetEntry{{1, 1024}, {1, 512}}, ctts.Cut(3).Entries())
	require.Equal(t, CTTS, ctts.Cut(3).Tag())
}

func compositionShift(t *testing.T, payload []byte) *CompositionShift {
	t.Helper()
	cslg := &CompositionShift{leaf: leaf{tag: CSLG}}
	require.NoError(t, cslg.Unmarshal(payload))
	return cslg
}

func requireBounds(t *testing.T, cslg *CompositionShift, want [5]int64) {
	t.Helper()
	require.Equal(t, want, [5]int64{
		cslg.CompositionToDTSShift(),
		cslg.LeastDecodeToDisplayDelta(),
		cslg.GreatestDecodeToDisplayDelta(),
		cslg.CompositionStartTime(),
		cslg.CompositionEndTime(),
	})
}

func TestCompositionShiftRecompute(t *testing.T) {
	t.Parallel()

	stts := NewTimeToSample([]TimeToSampleEntry{{4, 10}})
	ctts := NewCompositionOffset([]CompositionOffsetEntry{{1, 0}, {1, 30}, {2, 10}})
	cslg := compositionShift(t, mp4iotest.U32(0, 0, 0, 30, 0, 50))

	full, err := cslg.Recompute(stts, ctts)
	require.NoError(t, err)
	requireBounds(t, full, [5]int64{0, 0, 30, 0, 50})

	cut, err := cslg.Recompute(stts.Cut(2), ctts.Cut(2))
	require.NoError(t, err)
	requireBounds(t, cut, [5]int64{0, 10, 30, 20, 40})
	require.Equal(t, cslg.Len(), cut.Len())
	requireBounds(t, cslg, [5]int64{0, 0, 30, 0, 50})

	// samples past the composition table have no offset
	short, err := cslg.Recompute(stts, NewCompositionOffset([]CompositionOffsetEntry{{1, 30}}))
	require.NoError(t, err)
	requireBounds(t, short, [5]int64{0, 0, 30, 10, 40})
}

func TestCompositionShiftSigned(t *testing.T) {
	t.Parallel()

	stts := NewTimeToSample([]TimeToSampleEntry{{2, 10}})
	ctts := NewCompositionOffset([]CompositionOffsetEntry{{2, uint32(0xfffffff6)}})
	ctts.data.PutU8(0, 1)
	cslg := compositionShift(t, append([]byte{1, 0, 0, 0}, mp4iotest.U64(0, 0, 0, 0, 0)...))

	got, err := cslg.Recompute(stts, ctts)
	require.NoError(t, err)
	requireBounds(t, got, [5]int64{10, -10, -10, -10, 10})

	v0 := compositionShift(t, mp4iotest.U32(0, 0, 0, 0, 0, 0))
	_, err = v0.Recompute(NewTimeToSample([]TimeToSampleEntry{{2, 1 << 31}}), NewCompositionOffset(nil))
	require.ErrorIs(t, err, ErrOutOfRange)

	require.ErrorIs(t, v0.Unmarshal(mp4iotest.U32(0, 0, 0)), ErrTruncatedInput)
	require.ErrorIs(t, cslg.Unmarshal(append([]byte{1, 0, 0, 0}, mp4iotest.U64(0, 0)...)), ErrTruncatedInput)
}

func TestSampleToGroupCut(t *testing.T) {
	t.Parallel()

	sbgp := &SampleToGroup{leaf: leaf{tag: SBGP}}
	payload := append(mp4iotest.U32(0, 0x726f6c6c, 2), mp4iotest.U32(3, 1, 2, 0)...)
	require.NoError(t, sbgp.Unmarshal(payload))
	require.Equal(t, StringToTag("roll"), sbgp.GroupingType())

	cut := sbgp.Cut(2)
	require.Equal(t, 2, cut.EntryCount())
	require.Equal(t, uint64(4), cut.SampleCount())
	require.Equal(t, StringToTag("roll"), cut.GroupingType())

	require.ErrorIs(t, sbgp.Unmarshal(payload[:len(payload)-4]), ErrTruncatedInput)
}

func TestSyncSample(t *testing.T) {
	t.Parallel()

	stss := NewSyncSample([]uint32{1, 11, 21})
	require.Equal(t, uint64(1), stss.SyncBefore(1))
	require.Equal(t, uint64(1), stss.SyncBefore(10))
	require.Equal(t, uint64(11), stss.SyncBefore(11))
	require.Equal(t, uint64(11), stss.SyncBefore(15))
	require.Equal(t, uint64(21), stss.SyncBefore(30))

	require.Equal(t, []uint32{1, 11}, stss.Cut(11).Entries())
	require.Equal(t, []uint32{5, 15}, stss.Cut(7).Entries())
	require.Empty(t, stss.Cut(22).Entries())

	require.Equal(t, uint64(5), NewSyncSample([]uint32{5}).SyncBefore(2))
	require.Equal(t, uint64(7), NewSyncSample(nil).SyncBefore(7))
}

func TestSampleSize(t *testing.T) {
	t.Parallel()

	stsz := NewSampleSize(0, []uint32{10, 20, 30, 40})
	require.Equal(t, uint64(4), stsz.SampleCount())
	require.Equal(t, uint32(30), stsz.SizeOf(3))
	require.Equal(t, uint64(50), stsz.BytesBetween(2, 4))
	require.Equal(t, uint64(0), stsz.BytesBetween(3, 3))

	cut := stsz.Cut(3)
	require.Equal(t, uint64(2), cut.SampleCount())
	require.Equal(t, uint32(30), cut.SizeOf(1))
	require.Equal(t, uint64(8+12+8), cut.Len())

	uniform := NewSampleSize(8, nil)
	uniform.data.PutU32(8, 4)
	require.Equal(t, uint64(16), uniform.BytesBetween(1, 3))
	require.Equal(t, uint64(3), uniform.Cut(2).SampleCount())
	require.Equal(t, uint32(8), uniform.Cut(2).SizeOf(3))
	require.Equal(t, uint64(0), uniform.Cut(9).SampleCount())
}

func TestSampleDependencyCut(t *testing.T) {
	t.Parallel()

	sdtp := &SampleDependency{leaf: leaf{tag: SDTP}}
	require.NoError(t, sdtp.Unmarshal([]byte{0, 0, 0, 0, 0x20, 0x10, 0x18, 0x14}))
	require.Equal(t, uint64(4), sdtp.SampleCount())

	cut := sdtp.Cut(3)
	require.Equal(t, uint64(2), cut.SampleCount())
	require.Equal(t, uint8(0x18), cut.Flags(1))
	require.Equal(t, uint64(0), sdtp.Cut(5).SampleCount())
}

func TestSampleToChunkLocate(t *testing.T) {
	t.Parallel()

	// chunks 1-2 hold 2 samples, chunks 3-4 hold 3
	stsc := NewSampleToChunk([]SampleToChunkEntry{{1, 2, 1}, {3, 3, 1}})
	tests := []struct {
		sample uint64
		chunk  uint32
		first  uint64
	}{
		{1, 1, 1},
		{2, 1, 1},
		{4, 2, 3},
		{6, 3, 5},
		{8, 4, 8},
		{10, 4, 8},
	}
	for _, tt := range tests {
		chunk, first, err := stsc.Locate(tt.sample, 4)
		require.NoError(t, err)
		require.Equal(t, tt.chunk, chunk, "sample %d", tt.sample)
		require.Equal(t, tt.first, first, "sample %d", tt.sample)
	}

	_, _, err := stsc.Locate(11, 4)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestSampleToChunkCut(t *testing.T) {
	t.Parallel()

	stsc := NewSampleToChunk([]SampleToChunkEntry{{1, 2, 1}, {3, 3, 1}})
	tests := []struct {
		name    string
		chunk   uint32
		skipped uint32
		want    []SampleToChunkEntry
	}{
		{"chunk boundary", 2, 0, []SampleToChunkEntry{{1, 2, 1}, {2, 3, 1}}},
		{"split chunk of a longer run", 3, 1, []SampleToChunkEntry{{1, 2, 1}, {2, 3, 1}}},
		{"split last chunk", 4, 2, []SampleToChunkEntry{{1, 1, 1}}},
		{"split before a new run", 2, 1, []SampleToChunkEntry{{1, 1, 1}, {2, 3, 1}}},
		{"past the end", 5, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cut := stsc.Cut(tt.chunk, tt.skipped, 4)
			require.Len(t, cut.Entries(), len(tt.want))
			for i, e := range tt.want {
				require.Equal(t, e, cut.Entry(i))
			}
		})
	}
}

func TestChunkOffsetFixup(t *testing.T) {
	t.Parallel()

	stco := NewChunkOffset([]uint32{1000, 2000, 3000})
	require.NoError(t, stco.FixupOffsets(-150))
	require.Equal(t, []uint64{1150, 2150, 3150}, stco.Offsets())

	require.NoError(t, stco.FixupOffsets(150))
	require.Equal(t, []uint64{1000, 2000, 3000}, stco.Offsets())

	require.ErrorIs(t, stco.FixupOffsets(1001), ErrOutOfRange)
	require.Equal(t, []uint64{1000, 2000, 3000}, stco.Offsets())

	high := NewChunkOffset([]uint32{0xfffffff0})
	require.ErrorIs(t, high.FixupOffsets(-100), ErrOutOfRange)

	co64 := NewChunkOffset64([]uint64{0xfffffff0})
	require.NoError(t, co64.FixupOffsets(-100))
	require.Equal(t, []uint64{0xfffffff0 + 100}, co64.Offsets())
}

func TestChunkOffsetCut(t *testing.T) {
	t.Parallel()

	stco := NewChunkOffset([]uint32{3000, 1000, 2000})
	lo, ok := stco.MinOffset()
	require.True(t, ok)
	require.Equal(t, uint64(1000), lo)

	cut, err := stco.Cut(2, 1100)
	require.NoError(t, err)
	require.Equal(t, []uint64{1100, 2000}, cut.Offsets())
	require.Equal(t, uint32(2), cut.ChunkCount())

	empty, err := stco.Cut(4, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(0), empty.ChunkCount())
	_, ok = empty.MinOffset()
	require.False(t, ok)

	_, err = stco.Cut(1, 1<<32)
	require.ErrorIs(t, err, ErrOutOfRange)

	co64, err := NewChunkOffset64([]uint64{10, 20}).Cut(1, 1<<32)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<32), co64.ChunkOffsetAt(1))
}

func TestEditList(t *testing.T) {
	t.Parallel()

	elst := NewEditList(0, []EditListEntry{
		{SegmentDuration: 1000, MediaTime: -1, MediaRate: 1},
		{SegmentDuration: 5000, MediaTime: 512, MediaRate: 1},
	})
	require.Equal(t, uint64(6000), elst.Duration())

	cut := elst.Cut()
	require.NoError(t, cut.SetDuration(600))
	require.Equal(t, []EditListEntry{{SegmentDuration: 600, MediaTime: 512, MediaRate: 1}}, cut.Entries())
	require.Equal(t, uint64(8+8+12), cut.Len())
	require.Equal(t, 2, elst.EntryCount())

	require.ErrorIs(t, cut.SetDuration(1<<33), ErrOutOfRange)

	wide := NewEditList(1, []EditListEntry{{SegmentDuration: 1, MediaTime: 0, MediaRate: 1}})
	require.NoError(t, wide.SetDuration(1<<33))
	require.Equal(t, uint64(1<<33), wide.Duration())
	require.Equal(t, uint64(8+8+20), wide.Len())
}

func TestTableValidation(t *testing.T) {
	t.Parallel()

	stts := &TimeToSample{runTable{leaf: leaf{tag: STTS}}}
	short := mp4iotest.U32(0, 2, 1, 10)
	require.ErrorIs(t, stts.Unmarshal(short), ErrTruncatedInput)

	long := mp4iotest.U32(0, 1, 1, 10, 0)
	require.ErrorIs(t, stts.Unmarshal(long), ErrBoxSizeMismatch)

	require.NoError(t, stts.Unmarshal(mp4iotest.U32(0, 1, 1, 10)))

	var b bytes.Buffer
	require.NoError(t, stts.Marshal(&b))
	require.Equal(t, mp4iotest.FullBox("stts", 0, 0, mp4iotest.U32(1, 1, 10)), b.Bytes())
}
