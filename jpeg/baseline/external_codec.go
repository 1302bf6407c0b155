package baseline

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-jpeg-codec/jpeg"
)

var _ codec.Codec = (*BaselineCodec)(nil)

// BaselineCodec implements the external codec.Codec interface for JPEG Baseline (Process 1)
type BaselineCodec struct {
	transferSyntax *transfer.Syntax
	quality        int
}

// NewBaselineCodec creates a new JPEG Baseline codec with the given default quality
func NewBaselineCodec(quality int) *BaselineCodec {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &BaselineCodec{
		transferSyntax: transfer.JPEGBaseline8Bit,
		quality:        quality,
	}
}

// Name returns the codec name
func (c *BaselineCodec) Name() string {
	return fmt.Sprintf("JPEG Baseline (Quality %d)", c.quality)
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *BaselineCodec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// GetDefaultParameters returns the default codec parameters
func (c *BaselineCodec) GetDefaultParameters() codec.Parameters {
	return NewBaselineParameters().WithQuality(c.quality)
}

// parameters resolves typed or generic parameters
func (c *BaselineCodec) parameters(parameters codec.Parameters) *JPEGBaselineParameters {
	if parameters == nil {
		return NewBaselineParameters().WithQuality(c.quality)
	}
	if bp, ok := parameters.(*JPEGBaselineParameters); ok {
		return bp
	}

	// Fallback: copy known names from generic parameters
	p := NewBaselineParameters().WithQuality(c.quality)
	for _, name := range []string{"quality", "subsampling", "restartInterval", "optimizeHuffman"} {
		if v := parameters.GetParameter(name); v != nil {
			p.SetParameter(name, v)
		}
	}
	return p
}

// Encode encodes uncompressed pixel data to JPEG Baseline format
func (c *BaselineCodec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	if err := checkFrameInfo(frameInfo); err != nil {
		return err
	}
	raw, err := rawYCbCr(frameInfo.PhotometricInterpretation, int(frameInfo.SamplesPerPixel))
	if err != nil {
		return err
	}

	params := c.parameters(parameters)
	params.Validate()
	opts := baselineOptions(params)

	samples := int(frameInfo.SamplesPerPixel)
	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}

		if frameInfo.PlanarConfiguration == 1 && samples > 1 {
			frameData = interleave(frameData, samples)
		}
		// JPEG codes unsigned samples; signed frames are offset by half the range
		if frameInfo.PixelRepresentation != 0 {
			frameData = shiftSignedToUnsigned(frameData, int(frameInfo.BitsStored))
		}

		jpegData, err := EncodeWithOptions(
			frameData,
			int(frameInfo.Width),
			int(frameInfo.Height),
			samples,
			opts,
			raw,
		)
		if err != nil {
			return fmt.Errorf("JPEG Baseline encode failed for frame %d: %w", frameIndex, err)
		}

		if err := newPixelData.AddFrame(jpegData); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// Decode decodes JPEG Baseline data to uncompressed pixel data
func (c *BaselineCodec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}

	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	if err := checkFrameInfo(frameInfo); err != nil {
		return err
	}
	raw, err := rawYCbCr(frameInfo.PhotometricInterpretation, int(frameInfo.SamplesPerPixel))
	if err != nil {
		return err
	}
	opts := &jpeg.DecodeOptions{RawComponents: raw}

	samples := int(frameInfo.SamplesPerPixel)
	frameCount := oldPixelData.FrameCount()
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}

		img, err := jpeg.Decode(frameData, opts)
		if err != nil {
			return fmt.Errorf("JPEG Baseline decode failed for frame %d: %w", frameIndex, err)
		}

		if img.Width != int(frameInfo.Width) || img.Height != int(frameInfo.Height) {
			return fmt.Errorf("decoded dimensions (%dx%d) don't match expected (%dx%d)",
				img.Width, img.Height, frameInfo.Width, frameInfo.Height)
		}
		if img.Components != samples {
			return fmt.Errorf("decoded components (%d) don't match expected (%d)",
				img.Components, samples)
		}

		pixelData := img.Pix
		if frameInfo.PixelRepresentation != 0 {
			shiftUnsignedToSigned(pixelData, int(frameInfo.BitsStored))
		}
		if frameInfo.PlanarConfiguration == 1 && samples > 1 {
			pixelData = deinterleave(pixelData, samples)
		}

		if err := newPixelData.AddFrame(pixelData); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}

	return nil
}

// checkFrameInfo rejects frames JPEG Baseline cannot carry
func checkFrameInfo(info *imagetypes.FrameInfo) error {
	if info.BitsAllocated != 8 {
		return fmt.Errorf("JPEG Baseline requires 8 bits allocated, got %d", info.BitsAllocated)
	}
	if info.BitsStored < 1 || info.BitsStored > 8 {
		return fmt.Errorf("JPEG Baseline requires 1-8 bits stored, got %d", info.BitsStored)
	}
	if info.SamplesPerPixel != 1 && info.SamplesPerPixel != 3 {
		return fmt.Errorf("JPEG Baseline supports 1 or 3 samples per pixel, got %d", info.SamplesPerPixel)
	}
	return nil
}

// rawYCbCr reports whether samples described by photometric are coded
// without color conversion
func rawYCbCr(photometric string, samples int) (bool, error) {
	switch photometric {
	case "", "MONOCHROME1", "MONOCHROME2", "RGB":
		return false, nil
	case "YBR_FULL", "YBR_FULL_422":
		if samples != 3 {
			return false, fmt.Errorf("photometric interpretation %s needs 3 samples, got %d", photometric, samples)
		}
		return true, nil
	}
	return false, fmt.Errorf("JPEG Baseline does not support photometric interpretation %q", photometric)
}

// RegisterBaselineCodec registers the JPEG Baseline codec with the global registry
func RegisterBaselineCodec(quality int) {
	registry := codec.GetGlobalRegistry()
	baselineCodec := NewBaselineCodec(quality)
	registry.RegisterCodec(transfer.JPEGBaseline8Bit, baselineCodec)
}

func init() {
	RegisterBaselineCodec(DefaultQuality)
}
