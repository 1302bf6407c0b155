package baseline

import (
	"errors"
	"testing"

	"github.com/cocosip/go-jpeg-codec/codec"
	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

func maxAbsDiff(a, b []byte) int {
	maxDiff := 0
	for i := range a {
		diff := int(a[i]) - int(b[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	return maxDiff
}

func TestEncodeDecodeGrayscale(t *testing.T) {
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixelData[y*width+x] = byte((x + y) % 256)
		}
	}

	jpegData, err := Encode(pixelData, width, height, 1, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	t.Logf("Encoded size: %d bytes (compression ratio: %.2fx)",
		len(jpegData), float64(len(pixelData))/float64(len(jpegData)))

	cfg, err := jpeg.DecodeConfig(jpegData)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Progressive {
		t.Error("baseline encode produced a progressive frame")
	}

	decodedData, w, h, components, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || components != 1 {
		t.Fatalf("got %dx%d with %d components, want %dx%d with 1", w, h, components, width, height)
	}

	maxError := maxAbsDiff(pixelData, decodedData)
	t.Logf("Maximum pixel error: %d", maxError)
	if maxError > 12 {
		t.Errorf("Maximum error too large: %d (expected <= 12)", maxError)
	}
}

func TestEncodeDecodeRGB(t *testing.T) {
	width, height := 64, 64
	pixelData := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			pixelData[offset+0] = byte(x * 4)       // R
			pixelData[offset+1] = byte(y * 4)       // G
			pixelData[offset+2] = byte((x + y) * 2) // B
		}
	}

	jpegData, err := Encode(pixelData, width, height, 3, 85)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decodedData, w, h, components, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if w != width || h != height || components != 3 {
		t.Fatalf("got %dx%d with %d components, want %dx%d with 3", w, h, components, width, height)
	}

	// 4:2:0 chroma adds error at color edges
	maxError := maxAbsDiff(pixelData, decodedData)
	t.Logf("Maximum pixel error: %d", maxError)
	if maxError > 40 {
		t.Errorf("Maximum error too large: %d (expected <= 40)", maxError)
	}
}

func TestEncodeRawYCbCr(t *testing.T) {
	width, height := 16, 16
	pixelData := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		pixelData[i*3], pixelData[i*3+1], pixelData[i*3+2] = 90, 110, 150
	}

	jpegData, err := EncodeWithOptions(pixelData, width, height, 3,
		&Options{BaseOptions: codec.BaseOptions{Quality: 100}, Subsampling: "444"}, true)
	if err != nil {
		t.Fatalf("EncodeWithOptions failed: %v", err)
	}
	img, err := DecodeRaw(jpegData)
	if err != nil {
		t.Fatalf("DecodeRaw failed: %v", err)
	}
	if d := maxAbsDiff(pixelData, img.Pix); d > 1 {
		t.Errorf("raw YCbCr max difference %d, want <= 1", d)
	}

	if _, err := EncodeWithOptions(pixelData[:width*height], width, height, 1, nil, true); !errors.Is(err, common.ErrInvalidParameter) {
		t.Errorf("raw grayscale: error = %v, want ErrInvalidParameter", err)
	}
}

func TestEncodeInvalidParameters(t *testing.T) {
	pixelData := make([]byte, 64*64)

	tests := []struct {
		name       string
		width      int
		height     int
		components int
		quality    int
		wantErr    bool
	}{
		{"Invalid width", 0, 64, 1, 85, true},
		{"Invalid height", 64, 0, 1, 85, true},
		{"Invalid components", 64, 64, 2, 85, true},
		{"Invalid quality low", 64, 64, 1, 0, true},
		{"Invalid quality high", 64, 64, 1, 101, true},
		{"Valid", 64, 64, 1, 85, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(pixelData, tt.width, tt.height, tt.components, tt.quality)
			if (err != nil) != tt.wantErr {
				t.Errorf("Encode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"defaults", Options{}, nil},
		{"full", Options{BaseOptions: codec.BaseOptions{Quality: 95, RestartInterval: 4, OptimizeHuffman: true}, Subsampling: "4:2:2"}, nil},
		{"quality", Options{BaseOptions: codec.BaseOptions{Quality: 101}}, codec.ErrInvalidQuality},
		{"restart", Options{BaseOptions: codec.BaseOptions{RestartInterval: -1}}, codec.ErrInvalidParameter},
		{"subsampling", Options{Subsampling: "4:3:3"}, codec.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocalCodecOptions(t *testing.T) {
	c, err := codec.Get(UID)
	if err != nil {
		t.Fatalf("codec.Get: %v", err)
	}

	width, height := 48, 32
	pixelData := make([]byte, width*height*3)
	for i := range pixelData {
		pixelData[i] = byte(i / 3 % 200)
	}
	compressed, err := c.Encode(codec.EncodeParams{
		PixelData:  pixelData,
		Width:      width,
		Height:     height,
		Components: 3,
		BitDepth:   8,
		Options: &Options{
			BaseOptions: codec.BaseOptions{Quality: 90, RestartInterval: 2, OptimizeHuffman: true},
			Subsampling: "422",
		},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(compressed)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.RestartInterval != 2 {
		t.Errorf("restart interval = %d, want 2", cfg.RestartInterval)
	}
	if cfg.Sampling[0].H != 2 || cfg.Sampling[0].V != 1 {
		t.Errorf("luma sampling = %dx%d, want 2x1", cfg.Sampling[0].H, cfg.Sampling[0].V)
	}

	result, err := c.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.ColorModel != "RGB" || result.Components != 3 {
		t.Errorf("decoded %d components as %s, want 3 as RGB", result.Components, result.ColorModel)
	}

	if _, err := c.Encode(codec.EncodeParams{PixelData: pixelData, Width: width, Height: height, Components: 3, BitDepth: 12}); err != codec.ErrUnsupportedFormat {
		t.Errorf("12-bit encode: error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestQualityLevels(t *testing.T) {
	width, height := 32, 32
	pixelData := make([]byte, width*height)
	for i := 0; i < len(pixelData); i++ {
		pixelData[i] = byte(i * 37 % 256)
	}

	var prevSize int
	for _, quality := range []int{10, 50, 90} {
		jpegData, err := Encode(pixelData, width, height, 1, quality)
		if err != nil {
			t.Fatalf("Encode at quality %d failed: %v", quality, err)
		}
		t.Logf("Quality %d: size = %d bytes", quality, len(jpegData))
		if prevSize > 0 && len(jpegData) <= prevSize {
			t.Errorf("quality %d produced %d bytes, not more than %d", quality, len(jpegData), prevSize)
		}
		prevSize = len(jpegData)
	}
}

func TestSignedShift(t *testing.T) {
	data := []byte{0x80, 0xFF, 0x00, 0x7F}
	unsigned := shiftSignedToUnsigned(data, 8)
	want := []byte{0, 127, 128, 255}
	for i := range want {
		if unsigned[i] != want[i] {
			t.Errorf("sample %d: %d, want %d", i, unsigned[i], want[i])
		}
	}
	shiftUnsignedToSigned(unsigned, 8)
	for i := range data {
		if unsigned[i] != data[i] {
			t.Errorf("sample %d: reversed to %#x, want %#x", i, unsigned[i], data[i])
		}
	}

	// 6 bits stored: -32 and 31, then an out-of-range decoded value clamps
	six := shiftSignedToUnsigned([]byte{0xE0, 0x1F}, 6)
	if six[0] != 0 || six[1] != 63 {
		t.Errorf("6-bit shift = %v, want [0 63]", six)
	}
	over := []byte{70}
	shiftUnsignedToSigned(over, 6)
	if int8(over[0]) != 31 {
		t.Errorf("clamped value = %d, want 31", int8(over[0]))
	}
}

func TestPlanarConversion(t *testing.T) {
	planar := []byte{1, 2, 3, 10, 20, 30, 100, 200, 250}
	pixels := interleave(planar, 3)
	want := []byte{1, 10, 100, 2, 20, 200, 3, 30, 250}
	for i := range want {
		if pixels[i] != want[i] {
			t.Fatalf("interleave = %v, want %v", pixels, want)
		}
	}
	back := deinterleave(pixels, 3)
	for i := range planar {
		if back[i] != planar[i] {
			t.Fatalf("deinterleave = %v, want %v", back, planar)
		}
	}
}

func BenchmarkEncodeGrayscale(b *testing.B) {
	width, height := 512, 512
	pixelData := make([]byte, width*height)
	for i := 0; i < len(pixelData); i++ {
		pixelData[i] = byte(i % 256)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(pixelData, width, height, 1, 85); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeRGB(b *testing.B) {
	width, height := 512, 512
	pixelData := make([]byte, width*height*3)
	for i := 0; i < len(pixelData); i++ {
		pixelData[i] = byte(i % 256)
	}
	jpegData, err := Encode(pixelData, width, height, 3, 85)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, _, err := Decode(jpegData); err != nil {
			b.Fatal(err)
		}
	}
}
