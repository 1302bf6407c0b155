// Package baseline implements JPEG Baseline (Process 1): 8-bit sequential
// DCT with Huffman coding, as used by DICOM transfer syntax 1.2.840.10008.1.2.4.50.
package baseline

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// DefaultQuality is the quality factor used when none is given
const DefaultQuality = 85

// Encode compresses interleaved 8-bit samples at the given quality with
// 4:2:0 chroma. Three-component input is RGB and four-component input is CMYK.
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	opts := jpeg.DefaultEncodeOptions()
	opts.Quality = quality
	return jpeg.Encode(pixelData, width, height, components, opts)
}

// EncodeWithOptions compresses with the full set of baseline options.
// raw marks three-component input that is already YCbCr.
func EncodeWithOptions(pixelData []byte, width, height, components int, o *Options, raw bool) ([]byte, error) {
	if o == nil {
		o = &Options{}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	opts := o.encodeOptions()
	if raw {
		if components != 3 {
			return nil, fmt.Errorf("%w: raw YCbCr input needs 3 components, have %d", common.ErrInvalidParameter, components)
		}
		opts.ColorModel = common.ColorYCbCr
		opts.RawInput = true
	}
	return jpeg.Encode(pixelData, width, height, components, opts)
}

// Decode decompresses a JPEG stream. Color frames are converted to RGB
// (or CMYK for four-component frames).
func Decode(data []byte) (pixelData []byte, width, height, components int, err error) {
	img, err := jpeg.Decode(data, nil)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return img.Pix, img.Width, img.Height, img.Components, nil
}

// DecodeRaw decompresses a JPEG stream without color conversion, so YCbCr
// frames stay YCbCr.
func DecodeRaw(data []byte) (*jpeg.Image, error) {
	return jpeg.Decode(data, &jpeg.DecodeOptions{RawComponents: true})
}
