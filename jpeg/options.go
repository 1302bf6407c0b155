package jpeg

import (
	"fmt"
	"strings"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// Subsampling selects the chroma sampling of color frames on encode.
type Subsampling uint8

const (
	Subsampling444 Subsampling = iota // No subsampling
	Subsampling422                    // Half horizontal chroma resolution
	Subsampling420                    // Half horizontal and vertical chroma resolution
	Subsampling411                    // Quarter horizontal chroma resolution
	Subsampling440                    // Half vertical chroma resolution
)

// LumaFactors returns the sampling factors of the first component; chroma
// components are always 1x1.
func (s Subsampling) LumaFactors() (h, v int) {
	switch s {
	case Subsampling422:
		return 2, 1
	case Subsampling420:
		return 2, 2
	case Subsampling411:
		return 4, 1
	case Subsampling440:
		return 1, 2
	}
	return 1, 1
}

func (s Subsampling) String() string {
	switch s {
	case Subsampling444:
		return "4:4:4"
	case Subsampling422:
		return "4:2:2"
	case Subsampling420:
		return "4:2:0"
	case Subsampling411:
		return "4:1:1"
	case Subsampling440:
		return "4:4:0"
	}
	return fmt.Sprintf("Subsampling(%d)", uint8(s))
}

// ParseSubsampling accepts "444", "4:2:0" and similar spellings.
func ParseSubsampling(s string) (Subsampling, error) {
	switch strings.ReplaceAll(s, ":", "") {
	case "444":
		return Subsampling444, nil
	case "422":
		return Subsampling422, nil
	case "420":
		return Subsampling420, nil
	case "411":
		return Subsampling411, nil
	case "440":
		return Subsampling440, nil
	}
	return 0, fmt.Errorf("%w: chroma subsampling %q", common.ErrInvalidParameter, s)
}

// ScanSpec describes one scan of a progressive encode.
type ScanSpec struct {
	// Components are indices into the frame's components, in frame order.
	Components []int
	Ss, Se     uint8 // Spectral selection
	Ah, Al     uint8 // Successive approximation
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Quality is the IJG quality factor in [1,100].
	Quality int
	// Subsampling applies to YCbCr and YCCK frames.
	Subsampling Subsampling
	// Progressive writes an SOF2 frame using ScanScript, or a default script
	// when ScanScript is empty.
	Progressive bool
	ScanScript  []ScanSpec
	// RestartInterval is the number of MCUs between restart markers; 0
	// disables them.
	RestartInterval int
	// OptimizeHuffman derives Huffman tables from the image statistics
	// instead of using the standard tables.
	OptimizeHuffman bool
	// ColorModel is the coded color model. ColorUnknown chooses from the
	// component count: gray for 1, YCbCr for 3 and CMYK for 4.
	ColorModel common.ColorModel
	// RawInput means the samples are already in the coded color space
	// (YCbCr or YCCK) and are written without conversion.
	RawInput bool
}

// DefaultEncodeOptions returns quality 85 with 4:2:0 chroma.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Quality:     85,
		Subsampling: Subsampling420,
	}
}

// Validate checks the options for an image with the given component count.
func (o *EncodeOptions) Validate(components int) error {
	if err := common.ValidateQuality(o.Quality); err != nil {
		return err
	}
	if o.Subsampling > Subsampling440 {
		return fmt.Errorf("%w: chroma subsampling %d", common.ErrInvalidParameter, o.Subsampling)
	}
	if o.RestartInterval < 0 || o.RestartInterval > 0xFFFF {
		return fmt.Errorf("%w: restart interval %d", common.ErrInvalidParameter, o.RestartInterval)
	}
	model, err := o.colorModel(components)
	if err != nil {
		return err
	}
	if o.RawInput && model != common.ColorYCbCr && model != common.ColorYCCK {
		return fmt.Errorf("%w: raw input requires YCbCr or YCCK, not %v", common.ErrInvalidParameter, model)
	}
	if len(o.ScanScript) > 0 && !o.Progressive {
		return fmt.Errorf("%w: scan script given for a sequential encode", common.ErrInvalidParameter)
	}
	return nil
}

// colorModel resolves ColorUnknown and checks the model against the
// component count.
func (o *EncodeOptions) colorModel(components int) (common.ColorModel, error) {
	model := o.ColorModel
	if model == common.ColorUnknown {
		switch components {
		case 1:
			model = common.ColorGrayscale
		case 3:
			model = common.ColorYCbCr
		case 4:
			model = common.ColorCMYK
		default:
			return common.ColorUnknown, fmt.Errorf("%w: %d components", common.ErrInvalidParameter, components)
		}
	}
	if model.Components() != components {
		return common.ColorUnknown, fmt.Errorf("%w: %v needs %d components, have %d", common.ErrInvalidParameter, model, model.Components(), components)
	}
	return model, nil
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Upsampling selects how subsampled components are expanded.
	Upsampling common.UpsampleMethod
	// RawComponents delivers the coded components without color conversion.
	RawComponents bool
	// Concurrency > 1 decodes restart intervals and reconstructs components
	// on up to that many goroutines.
	Concurrency int
	// Tables supplies quantization and Huffman tables for abbreviated
	// streams. Tables defined in the stream replace them for that stream.
	Tables *Tables
	// MaxPixels rejects frames whose width times height exceeds it before
	// any sample memory is allocated. Zero means no limit.
	MaxPixels int
}

// Validate checks the options.
func (o *DecodeOptions) Validate() error {
	if o.Upsampling > common.UpsampleNearest {
		return fmt.Errorf("%w: upsampling method %d", common.ErrInvalidParameter, o.Upsampling)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency %d", common.ErrInvalidParameter, o.Concurrency)
	}
	if o.MaxPixels < 0 {
		return fmt.Errorf("%w: pixel limit %d", common.ErrInvalidParameter, o.MaxPixels)
	}
	return nil
}
