package baseline

import (
	"github.com/cocosip/go-jpeg-codec/codec"
	"github.com/cocosip/go-jpeg-codec/jpeg"
)

// UID is the DICOM Transfer Syntax UID for JPEG Baseline
const UID = "1.2.840.10008.1.2.4.50"

// Codec implements the codec.Codec interface for JPEG Baseline
type Codec struct{}

// NewCodec creates a new JPEG Baseline codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes pixel data using JPEG Baseline
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if params.BitDepth != 0 && params.BitDepth != 8 {
		return nil, codec.ErrUnsupportedFormat
	}

	opts := &Options{}
	if params.Options != nil {
		o, ok := params.Options.(*Options)
		if !ok {
			return nil, codec.ErrInvalidParameter
		}
		opts = o
	}
	return EncodeWithOptions(params.PixelData, params.Width, params.Height, params.Components, opts, false)
}

// Decode decodes JPEG Baseline data
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := jpeg.Decode(data, nil)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  img.Pix,
		Width:      img.Width,
		Height:     img.Height,
		Components: img.Components,
		BitDepth:   8, // Baseline is always 8-bit
		ColorModel: img.ColorModel.String(),
	}, nil
}

// UID returns the DICOM Transfer Syntax UID for JPEG Baseline
func (c *Codec) UID() string {
	return UID
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-baseline"
}

// Options contains encoding options for JPEG Baseline
type Options struct {
	codec.BaseOptions

	// Subsampling of the chroma components as "444", "422", "420", "411"
	// or "440". Empty selects 4:2:0.
	Subsampling string
}

// Validate validates the options
func (o *Options) Validate() error {
	if err := o.BaseOptions.Validate(); err != nil {
		return err
	}
	if o.Subsampling != "" {
		if _, err := jpeg.ParseSubsampling(o.Subsampling); err != nil {
			return codec.ErrInvalidParameter
		}
	}
	return nil
}

// encodeOptions assumes a validated o
func (o *Options) encodeOptions() *jpeg.EncodeOptions {
	opts := jpeg.DefaultEncodeOptions()
	opts.Quality = o.QualityOr(DefaultQuality)
	if o.Subsampling != "" {
		opts.Subsampling, _ = jpeg.ParseSubsampling(o.Subsampling)
	}
	opts.RestartInterval = o.RestartInterval
	opts.OptimizeHuffman = o.OptimizeHuffman
	return opts
}

// baselineOptions converts validated go-dicom parameters to encoder options
func baselineOptions(p *JPEGBaselineParameters) *Options {
	return &Options{
		BaseOptions: codec.BaseOptions{
			Quality:         p.Quality,
			RestartInterval: p.RestartInterval,
			OptimizeHuffman: p.OptimizeHuffman,
		},
		Subsampling: p.Subsampling,
	}
}

// Register registers this codec with the local registry
func init() {
	codec.Register(NewCodec())
}
