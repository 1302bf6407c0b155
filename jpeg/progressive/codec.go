package progressive

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/codec"
	"github.com/cocosip/go-jpeg-codec/jpeg"
)

// UID is the DICOM Transfer Syntax UID for JPEG full progression
const UID = "1.2.840.10008.1.2.4.55"

// Codec implements the codec.Codec interface for progressive JPEG
type Codec struct{}

// NewCodec creates a new progressive JPEG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes pixel data as a progressive JPEG
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
	return EncodeWithOptions(params.PixelData, params.Width, params.Height, params.Components, opts)
}

// Decode decodes progressive (or sequential) JPEG data
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
		BitDepth:   8,
		ColorModel: img.ColorModel.String(),
	}, nil
}

// UID returns the DICOM Transfer Syntax UID for JPEG full progression
func (c *Codec) UID() string {
	return UID
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "jpeg-progressive"
}

// Options contains encoding options for progressive JPEG
type Options struct {
	codec.BaseOptions

	// Subsampling of the chroma components, "420" when empty
	Subsampling string

	// Scans overrides the default scan script
	Scans []jpeg.ScanSpec
}

// Validate validates the options. Scan scripts are checked against the
// frame when encoding.
func (o *Options) Validate() error {
	if err := o.BaseOptions.Validate(); err != nil {
		return err
	}
	if o.Subsampling != "" {
		if _, err := jpeg.ParseSubsampling(o.Subsampling); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrInvalidParameter, err)
		}
	}
	for i, s := range o.Scans {
		if len(s.Components) == 0 {
			return fmt.Errorf("%w: scan %d has no components", codec.ErrInvalidParameter, i)
		}
	}
	return nil
}

// encodeOptions assumes a validated o
func (o *Options) encodeOptions() *jpeg.EncodeOptions {
	opts := jpeg.DefaultEncodeOptions()
	opts.Quality = o.QualityOr(DefaultQuality)
	opts.Progressive = true
	if o.Subsampling != "" {
		opts.Subsampling, _ = jpeg.ParseSubsampling(o.Subsampling)
	}
	opts.ScanScript = o.Scans
	opts.RestartInterval = o.RestartInterval
	opts.OptimizeHuffman = o.OptimizeHuffman
	return opts
}

// Register registers this codec with the local registry
func init() {
	codec.Register(NewCodec())
}
