package common

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMalformedSegment is returned when a segment's declared length or contents
	// do not match what was parsed, or when segments appear out of order.
	ErrMalformedSegment = errors.New("jpeg: malformed segment")

	// ErrUnsupportedMarker is returned for markers outside the supported
	// baseline/extended/progressive Huffman profile.
	ErrUnsupportedMarker = errors.New("jpeg: unsupported marker")

	// ErrInvalidHuffmanCode is returned when no code matches within 16 bits.
	ErrInvalidHuffmanCode = errors.New("jpeg: invalid Huffman code")

	// ErrUnsupportedSamplingFactor is returned for sampling ratios other than 1, 2 or 4.
	ErrUnsupportedSamplingFactor = errors.New("jpeg: unsupported sampling factor")

	// ErrTruncatedStream is returned when input ends before EOI or inside a segment.
	ErrTruncatedStream = errors.New("jpeg: truncated stream")

	// ErrInvalidParameter is returned for invalid encoder or decoder arguments.
	ErrInvalidParameter = errors.New("jpeg: invalid parameter")

	// ErrMarkerEncountered is wrapped by MarkerError.
	ErrMarkerEncountered = errors.New("jpeg: marker encountered in entropy-coded data")
)

// MarkerError reports that the bit reader stopped at a marker. The marker bytes
// are left unconsumed.
type MarkerError struct {
	// Marker is the second marker byte, e.g. 0xD9 for EOI.
	Marker byte
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("jpeg: marker %s encountered in entropy-coded data", MarkerName(0xFF00|uint16(e.Marker)))
}

// Unwrap lets errors.Is match ErrMarkerEncountered.
func (e *MarkerError) Unwrap() error {
	return ErrMarkerEncountered
}

// IsEOI reports whether the marker is EOI.
func (e *MarkerError) IsEOI() bool {
	return 0xFF00|uint16(e.Marker) == MarkerEOI
}
