// Package progressive implements JPEG full progression (Process 10, SOF2)
// with Huffman coding, DICOM transfer syntax 1.2.840.10008.1.2.4.55.
package progressive

import (
	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// DefaultQuality is the quality factor used when none is given
const DefaultQuality = 85

// Encode compresses interleaved 8-bit samples as a progressive frame using
// the default scan script.
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	opts := jpeg.DefaultEncodeOptions()
	opts.Quality = quality
	opts.Progressive = true
	return jpeg.Encode(pixelData, width, height, components, opts)
}

// EncodeWithOptions compresses with an explicit scan script, subsampling,
// restart interval or Huffman optimization.
func EncodeWithOptions(pixelData []byte, width, height, components int, o *Options) ([]byte, error) {
	if o == nil {
		o = &Options{}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return jpeg.Encode(pixelData, width, height, components, o.encodeOptions())
}

// Decode decompresses a JPEG stream, progressive or sequential.
func Decode(data []byte) (pixelData []byte, width, height, components int, err error) {
	img, err := jpeg.Decode(data, nil)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return img.Pix, img.Width, img.Height, img.Components, nil
}

// DefaultScript returns the scan script Encode uses for frames coded as model.
func DefaultScript(model common.ColorModel) []jpeg.ScanSpec {
	return jpeg.DefaultScanScript(model)
}
