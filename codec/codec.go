package codec

// Codec is the interface shared by the JPEG codecs in this module
type Codec interface {
	// Encode compresses interleaved 8-bit samples
	Encode(params EncodeParams) ([]byte, error)

	// Decode decompresses a JPEG stream to interleaved 8-bit samples
	Decode(data []byte) (*DecodeResult, error)

	// UID returns the DICOM Transfer Syntax UID of the coding process
	UID() string

	// Name returns a human-readable name
	Name() string
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	PixelData  []byte  // Interleaved samples, row-major
	Width      int     // Image width
	Height     int     // Image height
	Components int     // 1=grayscale, 3=RGB, 4=CMYK
	BitDepth   int     // Bits per sample; only 8 is supported
	Options    Options // Codec-specific options, nil for defaults
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	PixelData  []byte // Interleaved samples, row-major
	Width      int    // Image width
	Height     int    // Image height
	Components int    // Number of color components
	BitDepth   int    // Bits per sample
	ColorModel string // Color model of PixelData, e.g. "RGB" or "Grayscale"
}

// BaseOptions holds the options every JPEG codec understands
type BaseOptions struct {
	// Quality is the IJG quality factor (1-100, higher is better).
	// 0 selects the codec default.
	Quality int

	// RestartInterval is the number of MCUs between restart markers,
	// 0 disables them
	RestartInterval int

	// OptimizeHuffman builds Huffman tables from the image statistics
	OptimizeHuffman bool
}

// Validate validates base options
func (o *BaseOptions) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return ErrInvalidQuality
	}
	if o.RestartInterval < 0 || o.RestartInterval > 0xFFFF {
		return ErrInvalidParameter
	}
	return nil
}

// QualityOr returns Quality, or def when Quality is unset
func (o *BaseOptions) QualityOr(def int) int {
	if o.Quality == 0 {
		return def
	}
	return o.Quality
}
