package baseline

import (
	"github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-jpeg-codec/jpeg"
)

// Ensure JPEGBaselineParameters implements codec.Parameters
var _ codec.Parameters = (*JPEGBaselineParameters)(nil)

// JPEGBaselineParameters contains parameters for JPEG Baseline compression
type JPEGBaselineParameters struct {
	// Quality controls the JPEG compression quality (1-100)
	// - 100: Best quality, minimal compression
	// - 85:  High quality (default)
	// - 75:  Medium quality, good balance
	// - 50:  Lower quality, higher compression
	Quality int

	// Subsampling is the chroma subsampling of color frames ("444", "422",
	// "420", "411", "440"). Empty selects 4:2:0.
	Subsampling string

	// RestartInterval is the number of MCUs between restart markers
	RestartInterval int

	// OptimizeHuffman writes image-specific Huffman tables
	OptimizeHuffman bool

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewBaselineParameters creates a new JPEGBaselineParameters with default values
func NewBaselineParameters() *JPEGBaselineParameters {
	return &JPEGBaselineParameters{
		Quality: DefaultQuality,
		params:  make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *JPEGBaselineParameters) GetParameter(name string) interface{} {
	switch name {
	case "quality":
		return p.Quality
	case "subsampling":
		return p.Subsampling
	case "restartInterval":
		return p.RestartInterval
	case "optimizeHuffman":
		return p.OptimizeHuffman
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *JPEGBaselineParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "quality":
		if v, ok := value.(int); ok {
			p.Quality = v
		}
	case "subsampling":
		if v, ok := value.(string); ok {
			p.Subsampling = v
		}
	case "restartInterval":
		if v, ok := value.(int); ok {
			p.RestartInterval = v
		}
	case "optimizeHuffman":
		if v, ok := value.(bool); ok {
			p.OptimizeHuffman = v
		}
	default:
		p.params[name] = value
	}
}

// Validate replaces out-of-range values with their defaults
func (p *JPEGBaselineParameters) Validate() error {
	if p.Quality < 1 || p.Quality > 100 {
		p.Quality = DefaultQuality
	}
	if p.Subsampling != "" {
		if _, err := jpeg.ParseSubsampling(p.Subsampling); err != nil {
			p.Subsampling = ""
		}
	}
	if p.RestartInterval < 0 || p.RestartInterval > 0xFFFF {
		p.RestartInterval = 0
	}
	return nil
}

// WithQuality sets the quality and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithQuality(quality int) *JPEGBaselineParameters {
	p.Quality = quality
	return p
}

// WithSubsampling sets the chroma subsampling and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithSubsampling(subsampling string) *JPEGBaselineParameters {
	p.Subsampling = subsampling
	return p
}

// WithRestartInterval sets the restart interval and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithRestartInterval(interval int) *JPEGBaselineParameters {
	p.RestartInterval = interval
	return p
}

// WithOptimizeHuffman enables optimized Huffman tables and returns the parameters for chaining
func (p *JPEGBaselineParameters) WithOptimizeHuffman(optimize bool) *JPEGBaselineParameters {
	p.OptimizeHuffman = optimize
	return p
}
