package common

import "fmt"

// BitReader reads MSB-first bits from entropy-coded data, removing 0xFF00 byte
// stuffing. It stops in front of the first marker without consuming it; reads
// that need bits beyond that point fail with *MarkerError.
type BitReader struct {
	data []byte
	pos  int // next byte to load

	acc uint64 // low n bits are valid
	n   int

	marker    byte // pending marker code, 0 when none has been seen
	markerPos int  // offset of the first 0xFF of the pending marker
}

// NewBitReader creates a reader over data, which starts with the first byte
// of entropy-coded data.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Reset points the reader at new data and clears all state.
func (br *BitReader) Reset(data []byte) {
	*br = BitReader{data: data}
}

// refill loads whole bytes into the accumulator until it holds more than 56
// bits, a marker is found, or the input is exhausted.
func (br *BitReader) refill() {
	for br.n <= 56 && br.marker == 0 && br.pos < len(br.data) {
		b := br.data[br.pos]
		if b != 0xFF {
			br.pos++
			br.acc = br.acc<<8 | uint64(b)
			br.n += 8
			continue
		}
		// Skip fill bytes to find what follows the 0xFF.
		j := br.pos + 1
		for j < len(br.data) && br.data[j] == 0xFF {
			j++
		}
		if j >= len(br.data) {
			return
		}
		if br.data[j] != 0x00 {
			br.marker = br.data[j]
			br.markerPos = br.pos
			return
		}
		br.pos = j + 1
		br.acc = br.acc<<8 | 0xFF
		br.n += 8
	}
}

func (br *BitReader) stopError() error {
	if br.marker != 0 {
		return &MarkerError{Marker: br.marker}
	}
	return fmt.Errorf("%w: entropy-coded data ends without a marker", ErrTruncatedStream)
}

func (br *BitReader) ensure(n int) error {
	if br.n < n {
		br.refill()
		if br.n < n {
			return br.stopError()
		}
	}
	return nil
}

// NextBit returns the next bit.
func (br *BitReader) NextBit() (uint32, error) {
	if err := br.ensure(1); err != nil {
		return 0, err
	}
	br.n--
	return uint32(br.acc>>uint(br.n)) & 1, nil
}

// NextBits returns the next n bits (0 <= n <= 32) as an unsigned value.
func (br *BitReader) NextBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := br.ensure(n); err != nil {
		return 0, err
	}
	br.n -= n
	return uint32(br.acc>>uint(br.n)) & (1<<uint(n) - 1), nil
}

// peek returns the next n bits without consuming them. ok is false when fewer
// than n bits remain before the next marker or the end of data.
func (br *BitReader) peek(n int) (v uint32, ok bool) {
	if br.n < n {
		br.refill()
		if br.n < n {
			return 0, false
		}
	}
	return uint32(br.acc>>uint(br.n-n)) & (1<<uint(n) - 1), true
}

func (br *BitReader) skip(n int) {
	br.n -= n
}

// ReceiveExtend reads s magnitude bits and sign-extends them (F.2.2.1).
func (br *BitReader) ReceiveExtend(s uint8) (int32, error) {
	if s == 0 {
		return 0, nil
	}
	if s > 16 {
		return 0, fmt.Errorf("%w: magnitude category %d", ErrInvalidHuffmanCode, s)
	}
	v, err := br.NextBits(int(s))
	if err != nil {
		return 0, err
	}
	if v < 1<<(s-1) {
		return int32(v) - (1 << s) + 1, nil
	}
	return int32(v), nil
}

// Align discards the unconsumed bits of the current byte.
func (br *BitReader) Align() {
	br.n -= br.n % 8
}

// Restart consumes the restart marker RSTn expected at the current byte
// boundary and clears the bit buffer.
func (br *BitReader) Restart(n int) error {
	br.Align()
	if br.n == 0 && br.marker == 0 {
		br.refill()
	}
	if br.n > 0 {
		return fmt.Errorf("%w: %d bytes of entropy data before RST%d", ErrMalformedSegment, br.n/8, n)
	}
	if br.marker == 0 {
		return fmt.Errorf("%w: missing RST%d", ErrTruncatedStream, n)
	}
	want := byte(0xD0 + n%8)
	if br.marker != want {
		return fmt.Errorf("%w: expected RST%d, found %s", ErrMalformedSegment, n%8, MarkerName(0xFF00|uint16(br.marker)))
	}
	j := br.markerPos
	for br.data[j] == 0xFF {
		j++
	}
	br.pos = j + 1
	br.acc, br.n = 0, 0
	br.marker, br.markerPos = 0, 0
	return nil
}

// SkipToMarker drops any buffered bits and locates the marker that ends the
// entropy-coded segment, skipping stray restart markers. It returns the offset
// of that marker in the reader's data.
func (br *BitReader) SkipToMarker() (int, error) {
	br.acc, br.n = 0, 0
	for br.marker == 0 || IsRST(0xFF00|uint16(br.marker)) {
		if br.marker != 0 {
			j := br.markerPos
			for br.data[j] == 0xFF {
				j++
			}
			br.pos = j + 1
			br.marker = 0
		}
		start := br.pos
		br.refill()
		br.acc, br.n = 0, 0
		if br.marker == 0 && br.pos == start {
			return 0, fmt.Errorf("%w: no marker after entropy-coded data", ErrTruncatedStream)
		}
	}
	return br.markerPos, nil
}

// Marker returns the pending marker code, or 0 if none has been reached yet.
func (br *BitReader) Marker() byte {
	return br.marker
}

// MarkerOffset returns the offset of the pending marker.
func (br *BitReader) MarkerOffset() int {
	return br.markerPos
}
