package codec

import "errors"

// Sentinels returned by the JPEG codecs and the registry. Errors from the
// JPEG stream itself come from jpeg/common and are passed through wrapped.
var (
	// ErrCodecNotFound is returned by Get when no codec is registered under
	// the given name or transfer syntax UID.
	ErrCodecNotFound = errors.New("codec not found")
	// ErrInvalidParameter is returned for EncodeParams or codec options the
	// JPEG encoders cannot honor, such as a wrong sample count or an unknown
	// subsampling mode.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidQuality is returned when a quality outside 1-100 is set.
	ErrInvalidQuality = errors.New("invalid quality (must be 1-100)")
	// ErrUnsupportedFormat is returned for sample layouts outside 8-bit
	// baseline and progressive JPEG.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
