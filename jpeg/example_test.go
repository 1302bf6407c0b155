package jpeg_test

import (
	"fmt"
	"log"

	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// ExampleEncode demonstrates encoding and decoding a grayscale image
func ExampleEncode() {
	width, height := 32, 16
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = byte(i % width * 8)
	}

	data, err := jpeg.Encode(pix, width, height, 1, &jpeg.EncodeOptions{Quality: 90})
	if err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}

	img, err := jpeg.Decode(data, nil)
	if err != nil {
		log.Fatalf("Decoding failed: %v", err)
	}
	fmt.Printf("Decoded %dx%d %v\n", img.Width, img.Height, img.ColorModel)
	// Output: Decoded 32x16 Grayscale
}

// ExampleDecodeConfig demonstrates reading the frame header only
func ExampleDecodeConfig() {
	width, height := 40, 24
	pix := make([]byte, width*height*3)
	for i := range pix {
		pix[i] = byte(i)
	}

	opts := jpeg.DefaultEncodeOptions()
	opts.Progressive = true
	data, err := jpeg.Encode(pix, width, height, 3, opts)
	if err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(data)
	if err != nil {
		log.Fatalf("Reading header failed: %v", err)
	}
	fmt.Printf("%dx%d %v progressive=%v luma sampling %dx%d\n",
		cfg.Width, cfg.Height, cfg.ColorModel, cfg.Progressive, cfg.Sampling[0].H, cfg.Sampling[0].V)
	// Output: 40x24 YCbCr progressive=true luma sampling 2x2
}

// ExampleDecode_rawComponents demonstrates decoding without color conversion
func ExampleDecode_rawComponents() {
	width, height := 8, 8
	pix := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		pix[i*3], pix[i*3+1], pix[i*3+2] = 100, 128, 128
	}

	data, err := jpeg.Encode(pix, width, height, 3, &jpeg.EncodeOptions{
		Quality:     100,
		Subsampling: jpeg.Subsampling444,
		ColorModel:  common.ColorYCbCr,
		RawInput:    true,
	})
	if err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}

	img, err := jpeg.Decode(data, &jpeg.DecodeOptions{RawComponents: true})
	if err != nil {
		log.Fatalf("Decoding failed: %v", err)
	}
	fmt.Println(img.ColorModel, img.Pix[:3])
	// Output: YCbCr [100 128 128]
}
