package mp4io

import (
	"fmt"
	"strings"
)

const (
	HDLR     = Tag(0x68646c72)
	hdlrSize = 24

	VIDE = Tag(0x76696465)
)

// HandlerRefer declares the media type of a track ('vide', 'soun', ...).
type HandlerRefer struct {
	leaf
}

func (hdlr *HandlerRefer) Unmarshal(payload []byte) error {
	if err := requireLen(HDLR, payload, hdlrSize); err != nil {
		return err
	}
	return hdlr.leaf.Unmarshal(payload)
}

func (hdlr *HandlerRefer) HandlerType() Tag {
	return Tag(hdlr.data.U32(8))
}

// Name is the null terminated (ISO) or counted (QuickTime) component name.
func (hdlr *HandlerRefer) Name() string {
	b := hdlr.data.Bytes(hdlrSize, hdlr.data.Len()-hdlrSize)
	if len(b) > 0 && int(b[0]) == len(b)-1 {
		b = b[1:]
	}
	return strings.TrimRight(string(b), "\x00")
}

func (hdlr *HandlerRefer) Clone() *HandlerRefer {
	return &HandlerRefer{leaf: hdlr.clone()}
}

func (hdlr *HandlerRefer) String() string {
	return fmt.Sprintf("type=%s name=%q", hdlr.HandlerType(), hdlr.Name())
}
