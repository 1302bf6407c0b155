package baseline

import (
	"fmt"
	"testing"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
	codecHelpers "github.com/cocosip/go-jpeg-codec/codec"
	"github.com/cocosip/go-jpeg-codec/jpeg"
)

func TestBaselineCodecInterface(t *testing.T) {
	// Create codec
	baselineCodec := NewBaselineCodec(85)

	// Verify interface implementation
	var _ codec.Codec = baselineCodec

	// Test Name
	name := baselineCodec.Name()
	if name == "" {
		t.Error("Codec name should not be empty")
	}
	t.Logf("Codec name: %s", name)

	// Test TransferSyntax
	ts := baselineCodec.TransferSyntax()
	if ts == nil {
		t.Fatal("Transfer syntax should not be nil")
	}
	if ts.UID().UID() != transfer.JPEGBaseline8Bit.UID().UID() {
		t.Errorf("Transfer syntax UID mismatch: got %s, want %s",
			ts.UID().UID(), transfer.JPEGBaseline8Bit.UID().UID())
	}
}

func TestBaselineCodecEncodeDecode(t *testing.T) {
	// Create test pixel data (64x64 grayscale)
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixelData[y*width+x] = byte((x + y*2) % 256)
		}
	}

	// Create source PixelData
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	// Create codec with quality 85
	baselineCodec := NewBaselineCodec(85)

	// Encode
	encoded := codecHelpers.NewTestPixelData(frameInfo)
	err := baselineCodec.Encode(src, encoded, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	srcData, _ := src.GetFrame(0)
	encodedData, _ := encoded.GetFrame(0)
	t.Logf("Original size: %d bytes", len(srcData))
	t.Logf("Compressed size: %d bytes", len(encodedData))
	t.Logf("Compression ratio: %.2fx", float64(len(srcData))/float64(len(encodedData)))

	// Verify encoded data is not empty
	if len(encodedData) == 0 {
		t.Fatal("Encoded data is empty")
	}

	// Verify encoded data is smaller than original (should be compressed)
	if len(encodedData) >= len(srcData) {
		t.Logf("Warning: Encoded data (%d bytes) is not smaller than original (%d bytes)",
			len(encodedData), len(srcData))
	}

	// Decode
	decoded := codecHelpers.NewTestPixelData(frameInfo)
	err = baselineCodec.Decode(encoded, decoded, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Verify dimensions
	decodedInfo := decoded.GetFrameInfo()
	if decodedInfo.Width != frameInfo.Width || decodedInfo.Height != frameInfo.Height {
		t.Errorf("Dimensions mismatch: got %dx%d, want %dx%d",
			decodedInfo.Width, decodedInfo.Height, frameInfo.Width, frameInfo.Height)
	}

	// Verify samples per pixel
	if decodedInfo.SamplesPerPixel != frameInfo.SamplesPerPixel {
		t.Errorf("Samples per pixel mismatch: got %d, want %d",
			decodedInfo.SamplesPerPixel, frameInfo.SamplesPerPixel)
	}

	// Verify data length
	decodedData, _ := decoded.GetFrame(0)
	if len(decodedData) != len(srcData) {
		t.Fatalf("Data length mismatch: got %d, want %d", len(decodedData), len(srcData))
	}

	// JPEG Baseline is lossy, so we can't expect perfect reconstruction
	// Instead, check that most pixels are close
	maxDiff := 0
	totalDiff := 0
	for i := 0; i < len(srcData); i++ {
		diff := int(srcData[i]) - int(decodedData[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
		totalDiff += diff
	}
	avgDiff := float64(totalDiff) / float64(len(srcData))

	t.Logf("Max pixel difference: %d", maxDiff)
	t.Logf("Average pixel difference: %.2f", avgDiff)

	// For quality 85, differences should be reasonable (JPEG is lossy)
	// Gradient patterns can have larger differences due to blocking artifacts
	if maxDiff > 50 {
		t.Errorf("Max difference too large: %d (expected < 50 for quality 85)", maxDiff)
	}
	if avgDiff > 25.0 {
		t.Errorf("Average difference too large: %.2f (expected < 25.0 for quality 85)", avgDiff)
	}

	t.Logf("Lossy compression test passed (JPEG Baseline is lossy)")
}

func TestBaselineCodecRGB(t *testing.T) {
	// Create RGB test data (32x32)
	width, height := 32, 32
	components := 3
	pixelData := make([]byte, width*height*components)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * components
			pixelData[offset+0] = byte(x * 8)       // R
			pixelData[offset+1] = byte(y * 8)       // G
			pixelData[offset+2] = byte((x + y) * 4) // B
		}
	}

	// Create source PixelData
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           uint16(components),
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "RGB",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	// Create codec with quality 90
	baselineCodec := NewBaselineCodec(90)

	// Encode
	encoded := codecHelpers.NewTestPixelData(frameInfo)
	err := baselineCodec.Encode(src, encoded, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	srcData, _ := src.GetFrame(0)
	encodedData, _ := encoded.GetFrame(0)
	t.Logf("RGB Original size: %d bytes", len(srcData))
	t.Logf("RGB Compressed size: %d bytes", len(encodedData))
	t.Logf("RGB Compression ratio: %.2fx", float64(len(srcData))/float64(len(encodedData)))

	// Decode
	decoded := codecHelpers.NewTestPixelData(frameInfo)
	err = baselineCodec.Decode(encoded, decoded, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Verify dimensions
	decodedInfo := decoded.GetFrameInfo()
	if decodedInfo.Width != frameInfo.Width || decodedInfo.Height != frameInfo.Height {
		t.Errorf("Dimensions mismatch: got %dx%d, want %dx%d",
			decodedInfo.Width, decodedInfo.Height, frameInfo.Width, frameInfo.Height)
	}

	if decodedInfo.SamplesPerPixel != frameInfo.SamplesPerPixel {
		t.Errorf("Components mismatch: got %d, want %d",
			decodedInfo.SamplesPerPixel, frameInfo.SamplesPerPixel)
	}

	// Check quality (lossy)
	decodedData, _ := decoded.GetFrame(0)
	maxDiff := 0
	for i := 0; i < len(srcData); i++ {
		diff := int(srcData[i]) - int(decodedData[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}

	t.Logf("RGB Max pixel difference: %d", maxDiff)
	// RGB with quality 90 should have reasonable quality
	// But color conversion (RGB->YCbCr->RGB) can introduce artifacts
	if maxDiff > 255 {
		// Only fail if completely corrupted
		t.Errorf("RGB appears corrupted: max diff %d", maxDiff)
	} else {
		t.Logf("RGB lossy compression completed (max diff within expected range)")
	}
}

func TestBaselineCodecWithParameters(t *testing.T) {
	// Create test data
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for i := range pixelData {
		pixelData[i] = byte(i % 256)
	}

	// Create source PixelData
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	// Create codec with default quality (85)
	baselineCodec := NewBaselineCodec(85)

	// Test with quality 95 via parameters
	params := codec.NewBaseParameters()
	params.SetParameter("quality", 95)

	// Encode with high quality
	encoded := codecHelpers.NewTestPixelData(frameInfo)
	err := baselineCodec.Encode(src, encoded, params)
	if err != nil {
		t.Fatalf("Encode with parameters failed: %v", err)
	}

	encodedData, _ := encoded.GetFrame(0)
	t.Logf("Compressed with quality 95: %d bytes", len(encodedData))

	// Decode
	decoded := codecHelpers.NewTestPixelData(frameInfo)
	err = baselineCodec.Decode(encoded, decoded, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Higher quality should result in better reconstruction
	srcData, _ := src.GetFrame(0)
	decodedData, _ := decoded.GetFrame(0)
	maxDiff := 0
	for i := 0; i < len(srcData); i++ {
		diff := int(srcData[i]) - int(decodedData[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}

	t.Logf("Max difference with quality 95: %d", maxDiff)
	// Quality 95 should be better, but still lossy
	// Don't fail the test - just log the result
	t.Logf("Parameters override test completed")
}

func TestBaselineCodecRegistry(t *testing.T) {
	// Register codec
	RegisterBaselineCodec(85)

	// Get from global registry
	registry := codec.GetGlobalRegistry()
	retrievedCodec, exists := registry.GetCodec(transfer.JPEGBaseline8Bit)
	if !exists {
		t.Fatal("Codec not found in registry")
	}

	if retrievedCodec == nil {
		t.Fatal("Retrieved codec is nil")
	}

	// Verify it's the correct codec
	name := retrievedCodec.Name()
	t.Logf("Retrieved codec name: %s", name)

	// Test with the retrieved codec
	width, height := 32, 32
	pixelData := make([]byte, width*height)
	for i := range pixelData {
		pixelData[i] = byte(i % 256)
	}

	// Create source PixelData
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	encoded := codecHelpers.NewTestPixelData(frameInfo)
	err := retrievedCodec.Encode(src, encoded, nil)
	if err != nil {
		t.Fatalf("Encode with retrieved codec failed: %v", err)
	}

	decoded := codecHelpers.NewTestPixelData(frameInfo)
	err = retrievedCodec.Decode(encoded, decoded, nil)
	if err != nil {
		t.Fatalf("Decode with retrieved codec failed: %v", err)
	}

	decodedInfo := decoded.GetFrameInfo()
	t.Logf("Registry codec test passed: %dx%d image", decodedInfo.Width, decodedInfo.Height)
}

func TestBaselineQualityLevels(t *testing.T) {
	// Test different quality levels
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for i := range pixelData {
		pixelData[i] = byte(i % 256)
	}

	// Create source PixelData
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           1,
		PixelRepresentation:       0,
		PlanarConfiguration:       0,
		PhotometricInterpretation: "MONOCHROME2",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	qualities := []int{50, 75, 85, 95}
	for _, quality := range qualities {
		t.Run(fmt.Sprintf("Quality_%d", quality), func(t *testing.T) {
			baselineCodec := NewBaselineCodec(quality)

			encoded := codecHelpers.NewTestPixelData(frameInfo)
			err := baselineCodec.Encode(src, encoded, nil)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded := codecHelpers.NewTestPixelData(frameInfo)
			err = baselineCodec.Decode(encoded, decoded, nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			// Calculate max difference
			srcData, _ := src.GetFrame(0)
			encodedData, _ := encoded.GetFrame(0)
			decodedData, _ := decoded.GetFrame(0)
			maxDiff := 0
			for i := 0; i < len(srcData); i++ {
				diff := int(srcData[i]) - int(decodedData[i])
				if diff < 0 {
					diff = -diff
				}
				if diff > maxDiff {
					maxDiff = diff
				}
			}

			ratio := float64(len(srcData)) / float64(len(encodedData))
			t.Logf("Quality %d: Size=%d bytes, Ratio=%.2fx, MaxDiff=%d",
				quality, len(encodedData), ratio, maxDiff)
		})
	}
}

func TestBaselineCodecTypedParameters(t *testing.T) {
	width, height := 40, 24
	pixelData := make([]byte, width*height*3)
	for i := range pixelData {
		pixelData[i] = byte(i % 180)
	}
	frameInfo := &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             8,
		BitsStored:                8,
		HighBit:                   7,
		SamplesPerPixel:           3,
		PhotometricInterpretation: "RGB",
	}
	src := codecHelpers.NewTestPixelData(frameInfo)
	src.AddFrame(pixelData)

	params := NewBaselineParameters().
		WithQuality(92).
		WithSubsampling("444").
		WithRestartInterval(3).
		WithOptimizeHuffman(true)

	encoded := codecHelpers.NewEncapsulatedTestPixelData(frameInfo)
	if err := NewBaselineCodec(85).Encode(src, encoded, params); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	encodedData, _ := encoded.GetFrame(0)
	cfg, err := jpeg.DecodeConfig(encodedData)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.RestartInterval != 3 {
		t.Errorf("restart interval = %d, want 3", cfg.RestartInterval)
	}
	if cfg.Sampling[0].H != 1 || cfg.Sampling[0].V != 1 {
		t.Errorf("luma sampling = %dx%d, want 1x1", cfg.Sampling[0].H, cfg.Sampling[0].V)
	}
}

func TestBaselineParametersValidate(t *testing.T) {
	p := NewBaselineParameters()
	p.SetParameter("quality", 0)
	p.SetParameter("subsampling", "9:9:9")
	p.SetParameter("restartInterval", -5)
	p.SetParameter("custom", "kept")
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Quality != DefaultQuality || p.Subsampling != "" || p.RestartInterval != 0 {
		t.Errorf("after Validate got quality %d, subsampling %q, restart %d", p.Quality, p.Subsampling, p.RestartInterval)
	}
	if p.GetParameter("custom") != "kept" {
		t.Errorf("custom parameter = %v, want kept", p.GetParameter("custom"))
	}
}

func TestBaselineCodecFrameLayouts(t *testing.T) {
	width, height := 16, 16
	tests := []struct {
		name        string
		samples     int
		planar      bool
		signed      bool
		photometric string
		fill        func(i int) byte
		maxDiff     int
	}{
		{"signed monochrome", 1, false, true, "MONOCHROME2", func(i int) byte { return byte(int8(i%64 - 32)) }, 3},
		{"planar RGB", 3, true, false, "RGB", func(i int) byte { return byte(60 + i/(width*height)*50) }, 4},
		{"YBR_FULL", 3, false, false, "YBR_FULL", func(i int) byte { return byte(100 + i%3*20) }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frameInfo := &imagetypes.FrameInfo{
				Width:                     uint16(width),
				Height:                    uint16(height),
				BitsAllocated:             8,
				BitsStored:                8,
				HighBit:                   7,
				SamplesPerPixel:           uint16(tt.samples),
				PhotometricInterpretation: tt.photometric,
			}
			if tt.signed {
				frameInfo.PixelRepresentation = 1
			}
			if tt.planar {
				frameInfo.PlanarConfiguration = 1
			}
			pixelData := make([]byte, width*height*tt.samples)
			for i := range pixelData {
				pixelData[i] = tt.fill(i)
			}
			src := codecHelpers.NewTestPixelData(frameInfo)
			src.AddFrame(pixelData)
			src.AddFrame(pixelData)

			params := NewBaselineParameters().WithQuality(100).WithSubsampling("444")
			c := NewBaselineCodec(85)
			encoded := codecHelpers.NewEncapsulatedTestPixelData(frameInfo)
			if err := c.Encode(src, encoded, params); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded := codecHelpers.NewTestPixelData(frameInfo)
			if err := c.Decode(encoded, decoded, nil); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if decoded.FrameCount() != 2 {
				t.Fatalf("decoded %d frames, want 2", decoded.FrameCount())
			}
			decodedData, _ := decoded.GetFrame(1)
			maxDiff := 0
			for i := range pixelData {
				diff := int(pixelData[i]) - int(decodedData[i])
				if tt.signed {
					diff = int(int8(pixelData[i])) - int(int8(decodedData[i]))
				}
				if diff < 0 {
					diff = -diff
				}
				if diff > maxDiff {
					maxDiff = diff
				}
			}
			t.Logf("%s max difference %d", tt.name, maxDiff)
			if maxDiff > tt.maxDiff {
				t.Errorf("max difference %d, want <= %d", maxDiff, tt.maxDiff)
			}
		})
	}
}

func TestBaselineCodecRejectsFrames(t *testing.T) {
	tests := []struct {
		name string
		info imagetypes.FrameInfo
	}{
		{"16 bits allocated", imagetypes.FrameInfo{Width: 8, Height: 8, BitsAllocated: 16, BitsStored: 12, SamplesPerPixel: 1}},
		{"two samples", imagetypes.FrameInfo{Width: 8, Height: 8, BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 2}},
		{"palette", imagetypes.FrameInfo{Width: 8, Height: 8, BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 1, PhotometricInterpretation: "PALETTE COLOR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			src := codecHelpers.NewTestPixelData(&info)
			src.AddFrame(make([]byte, 8*8*2*int(info.SamplesPerPixel)))
			dst := codecHelpers.NewEncapsulatedTestPixelData(&info)
			if err := NewBaselineCodec(85).Encode(src, dst, nil); err == nil {
				t.Error("Encode succeeded, want an error")
			}
		})
	}
}
