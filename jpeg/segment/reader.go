package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// Reader walks the marker segments of an in-memory JPEG stream.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current offset.
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the reader to offset pos, typically the end of an
// entropy-coded segment.
func (r *Reader) SetPos(pos int) {
	r.pos = max(0, min(pos, len(r.data)))
}

// Remaining returns the unread bytes.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// ReadMarker reads the next marker. Bytes that do not start a marker are
// skipped, as are 0xFF fill bytes and stuffed 0xFF00 pairs, so extraneous
// data between segments is tolerated. The returned value includes the 0xFF
// prefix.
func (r *Reader) ReadMarker() (uint16, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: missing EOI", common.ErrTruncatedStream)
	}
	for p := r.pos; p+1 < len(r.data); p++ {
		if r.data[p] != 0xFF {
			continue
		}
		// Skip any padding 0xFF bytes
		for p+1 < len(r.data) && r.data[p+1] == 0xFF {
			p++
		}
		if p+1 >= len(r.data) {
			break
		}
		// 0x00 is a stuffed byte (escaped 0xFF in data), not a marker
		if code := r.data[p+1]; code != 0x00 {
			r.pos = p + 2
			return 0xFF00 | uint16(code), nil
		}
	}
	return 0, fmt.Errorf("%w: no marker after offset %d", common.ErrTruncatedStream, r.pos)
}

// ReadSegment reads a length-prefixed segment and returns its payload
// (without the length field).
func (r *Reader) ReadSegment() ([]byte, error) {
	if r.pos+2 > len(r.data) {
		return nil, fmt.Errorf("%w: stream ends inside a segment length", common.ErrTruncatedStream)
	}
	length := int(binary.BigEndian.Uint16(r.data[r.pos:]))

	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, fmt.Errorf("%w: segment length %d", common.ErrMalformedSegment, length)
	}
	if r.pos+length > len(r.data) {
		return nil, fmt.Errorf("%w: segment needs %d bytes, %d remain", common.ErrTruncatedStream, length, len(r.data)-r.pos)
	}
	payload := r.data[r.pos+2 : r.pos+length]
	r.pos += length
	return payload, nil
}

// CheckSupported reports whether a marker belongs to the supported
// Huffman-coded DCT profile.
func CheckSupported(marker uint16) error {
	switch {
	case marker == common.MarkerSOF0, marker == common.MarkerSOF1, marker == common.MarkerSOF2:
		return nil
	case marker == common.MarkerSOF3,
		marker >= common.MarkerSOF5 && marker <= common.MarkerSOF7:
		return fmt.Errorf("%w: %s (lossless or hierarchical)", common.ErrUnsupportedMarker, common.MarkerName(marker))
	case marker == common.MarkerDAC,
		marker >= common.MarkerSOF9 && marker <= common.MarkerSOF11,
		marker >= common.MarkerSOF13 && marker <= common.MarkerSOF15:
		return fmt.Errorf("%w: %s (arithmetic coding)", common.ErrUnsupportedMarker, common.MarkerName(marker))
	case marker == common.MarkerDHP, marker == common.MarkerEXP:
		return fmt.Errorf("%w: %s (hierarchical)", common.ErrUnsupportedMarker, common.MarkerName(marker))
	case marker == common.MarkerSOI, marker == common.MarkerEOI,
		marker == common.MarkerDHT, marker == common.MarkerDQT,
		marker == common.MarkerDRI, marker == common.MarkerSOS,
		marker == common.MarkerDNL, marker == common.MarkerCOM,
		common.IsAPP(marker), common.IsRST(marker):
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrUnsupportedMarker, common.MarkerName(marker))
}
