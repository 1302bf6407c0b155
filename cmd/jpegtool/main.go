// Command jpegtool inspects, decodes and encodes JPEG files.
//
//	jpegtool info -in photo.jpg
//	jpegtool decode -in photo.jpg -out photo.png
//	jpegtool decode -in photo.jpg -raw photo.zst -ycc
//	jpegtool encode -in photo.png -out photo.jpg -quality 90 -progressive
//	jpegtool encode -raw photo.zst -out photo.jpg
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <info|decode|encode> [flags]\n", filepath.Base(os.Args[0]))
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "Input JPEG file")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("input file is required, use -in")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	cfg, err := jpeg.DecodeConfig(data)
	if err != nil {
		return err
	}
	fmt.Print(describe(cfg))
	return nil
}

// describe renders a frame configuration for info.
func describe(cfg *jpeg.Config) string {
	var b strings.Builder
	process := "sequential"
	if cfg.Progressive {
		process = "progressive"
	}
	fmt.Fprintf(&b, "%dx%d, %d-bit %s, %s\n", cfg.Width, cfg.Height, cfg.Precision, process, cfg.ColorModel)
	for i, c := range cfg.Sampling {
		fmt.Fprintf(&b, "  component %d: id %d, sampling %dx%d, quant table %d\n", i, c.ID, c.H, c.V, c.Tq)
	}
	if cfg.RestartInterval > 0 {
		fmt.Fprintf(&b, "  restart interval %d MCUs\n", cfg.RestartInterval)
	}
	return b.String()
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "Input JPEG file")
	out := fs.String("out", "", "Output PNG file (defaults to the input name with .png)")
	raw := fs.String("raw", "", "Write zstd-compressed raw samples here instead of PNG")
	ycc := fs.Bool("ycc", false, "Keep YCbCr/YCCK components without color conversion")
	nearest := fs.Bool("nearest", false, "Use nearest-neighbor chroma upsampling")
	workers := fs.Int("j", 0, "Decode restart intervals on this many goroutines")
	tolerant := fs.Bool("best-effort", false, "Write whatever decodes from a damaged stream")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("input file is required, use -in")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	opts := &jpeg.DecodeOptions{RawComponents: *ycc, Concurrency: *workers}
	if *nearest {
		opts.Upsampling = common.UpsampleNearest
	}

	var img *jpeg.Image
	if *tolerant {
		img, err = jpeg.DecodeBestEffort(data, opts)
		if err != nil && img == nil {
			return err
		}
		if err != nil {
			log.Printf("Decoding stopped early: %v", err)
		}
	} else if img, err = jpeg.Decode(data, opts); err != nil {
		return err
	}
	log.Printf("Decoded %dx%d %v image", img.Width, img.Height, img.ColorModel)

	if *raw != "" {
		f, err := os.Create(*raw)
		if err != nil {
			return err
		}
		if err := writeRaw(f, img); err != nil {
			f.Close()
			return err
		}
		log.Printf("Wrote raw samples to %s", *raw)
		return f.Close()
	}

	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".png"
	}
	m, err := img.ToImage()
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	log.Printf("Wrote %s", dst)
	return f.Close()
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	in := fs.String("in", "", "Input PNG or JPEG image")
	raw := fs.String("raw", "", "Input zstd-compressed raw samples written by decode -raw")
	out := fs.String("out", "", "Output JPEG file")
	quality := fs.Int("quality", 85, "Quality factor (1-100)")
	subsampling := fs.String("subsampling", "420", "Chroma subsampling: 444, 422, 420, 411 or 440")
	progressive := fs.Bool("progressive", false, "Write a progressive frame")
	optimize := fs.Bool("optimize", false, "Build optimal Huffman tables")
	restart := fs.Int("restart", 0, "Restart interval in MCUs")
	fs.Parse(args)
	if (*in == "") == (*raw == "") {
		return fmt.Errorf("exactly one of -in and -raw is required")
	}
	if *out == "" {
		return fmt.Errorf("output file is required, use -out")
	}

	ss, err := jpeg.ParseSubsampling(*subsampling)
	if err != nil {
		return err
	}
	opts := &jpeg.EncodeOptions{
		Quality:         *quality,
		Subsampling:     ss,
		Progressive:     *progressive,
		OptimizeHuffman: *optimize,
		RestartInterval: *restart,
	}

	var data []byte
	if *raw != "" {
		data, err = encodeRaw(*raw, opts)
	} else {
		data, err = encodeImageFile(*in, opts)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	log.Printf("Wrote %s (%d bytes)", *out, len(data))
	return nil
}

func encodeImageFile(path string, opts *jpeg.EncodeOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, format, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	log.Printf("Read %s image %v", format, m.Bounds().Size())
	return jpeg.EncodeImage(m, opts)
}

func encodeRaw(path string, opts *jpeg.EncodeOptions) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := readRaw(f)
	if err != nil {
		return nil, err
	}
	opts.ColorModel, opts.RawInput = rawColorModel(img.ColorModel)
	log.Printf("Read %dx%d %v raw samples", img.Width, img.Height, img.ColorModel)
	return jpeg.Encode(img.Pix, img.Width, img.Height, img.Components, opts)
}

// rawColorModel maps the model of dumped samples to encoder settings.
// RGB samples are coded as YCbCr; YCbCr and YCCK samples are written as-is.
func rawColorModel(m common.ColorModel) (common.ColorModel, bool) {
	switch m {
	case common.ColorYCbCr, common.ColorYCCK:
		return m, true
	case common.ColorRGB:
		return common.ColorYCbCr, false
	}
	return m, false
}
