package mp4io

const (
	AVC1 = Tag(0x61766331)
	AVC3 = Tag(0x61766333)
	HEV1 = Tag(0x68657631)
	HVC1 = Tag(0x68766331)
	MJPG = Tag(0x6d6a7067)
	MP4V = Tag(0x6d703476)
	MP4A = Tag(0x6d703461)
	OPUS = Tag(0x4f707573)
	AC3  = Tag(0x61632d33)
	EC3  = Tag(0x65632d33)
)

// Sample entry layouts, offsets from the start of the entry header.
const (
	visualWidthOff     = 32
	visualEntrySize    = 86
	audioChannelsOff   = 24
	audioSampleSizeOff = 26
	audioSampleRateOff = 32
	audioEntrySize     = 36
)

// SampleEntry is the summary of one sample description. Width and Height are set for
// video formats, Channels, SampleSize and SampleRate for audio formats.
type SampleEntry struct {
	Format     Tag
	Width      uint16
	Height     uint16
	Channels   uint16
	SampleSize uint16
	SampleRate float64
}

func (e SampleEntry) IsVideo() bool {
	switch e.Format {
	case AVC1, AVC3, HEV1, HVC1, MJPG, MP4V:
		return true
	}
	return false
}

func (e SampleEntry) IsAudio() bool {
	switch e.Format {
	case MP4A, OPUS, AC3, EC3:
		return true
	}
	return false
}

// Entries decodes the fixed part of every sample entry. Codec configuration atoms are
// left in the payload.
func (stsd *SampleDesc) Entries() (entries []SampleEntry) {
	off := stsdSize
	for i := uint32(0); i < stsd.EntryCount() && stsd.data.Has(off, HeaderSize); i++ {
		size := int(stsd.data.U32(off))
		e := SampleEntry{Format: Tag(stsd.data.U32(off + 4))}
		switch {
		case e.IsVideo() && size >= visualEntrySize && stsd.data.Has(off, visualEntrySize):
			e.Width = stsd.data.U16(off + visualWidthOff)
			e.Height = stsd.data.U16(off + visualWidthOff + 2)
		case e.IsAudio() && size >= audioEntrySize && stsd.data.Has(off, audioEntrySize):
			e.Channels = stsd.data.U16(off + audioChannelsOff)
			e.SampleSize = stsd.data.U16(off + audioSampleSizeOff)
			e.SampleRate = float64(stsd.data.U32(off+audioSampleRateOff)) / 65536.0
		}
		entries = append(entries, e)
		if size < HeaderSize {
			break
		}
		off += size
	}
	return
}
