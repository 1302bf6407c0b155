package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

func TestRawRoundTrip(t *testing.T) {
	img := &jpeg.Image{Width: 5, Height: 3, Components: 3, ColorModel: common.ColorYCbCr}
	img.Pix = make([]byte, 5*3*3)
	for i := range img.Pix {
		img.Pix[i] = byte(i * 7)
	}

	var buf bytes.Buffer
	if err := writeRaw(&buf, img); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	got, err := readRaw(&buf)
	if err != nil {
		t.Fatalf("readRaw: %v", err)
	}
	if got.Width != img.Width || got.Height != img.Height || got.Components != img.Components || got.ColorModel != img.ColorModel {
		t.Fatalf("header = %dx%dx%d %v", got.Width, got.Height, got.Components, got.ColorModel)
	}
	if !bytes.Equal(got.Pix, img.Pix) {
		t.Error("samples differ after round trip")
	}
}

func TestReadRawRejectsTruncated(t *testing.T) {
	img := &jpeg.Image{Width: 4, Height: 4, Components: 1, ColorModel: common.ColorGrayscale, Pix: make([]byte, 12)}
	var buf bytes.Buffer
	if err := writeRaw(&buf, img); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}
	if _, err := readRaw(&buf); err == nil {
		t.Error("readRaw accepted a dump with missing samples")
	}
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	img := &jpeg.Image{Width: 24, Height: 16, Components: 3, ColorModel: common.ColorRGB}
	img.Pix = make([]byte, 24*16*3)
	for i := range img.Pix {
		img.Pix[i] = byte(i / 3 % 24 * 10)
	}
	rawIn := filepath.Join(dir, "in.zst")
	f, err := os.Create(rawIn)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeRaw(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	jpg := filepath.Join(dir, "out.jpg")
	if err := runEncode([]string{"-raw", rawIn, "-out", jpg, "-quality", "95", "-progressive", "-optimize"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := os.ReadFile(jpg)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(data)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if !cfg.Progressive || cfg.ColorModel != common.ColorYCbCr {
		t.Errorf("encoded progressive=%v model %v", cfg.Progressive, cfg.ColorModel)
	}
	if desc := describe(cfg); !strings.Contains(desc, "24x16, 8-bit progressive, YCbCr") {
		t.Errorf("describe = %q", desc)
	}

	pngOut := filepath.Join(dir, "out.png")
	if err := runDecode([]string{"-in", jpg, "-out", pngOut}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	jpg2 := filepath.Join(dir, "again.jpg")
	if err := runEncode([]string{"-in", pngOut, "-out", jpg2, "-subsampling", "444"}); err != nil {
		t.Fatalf("encode from PNG: %v", err)
	}

	rawOut := filepath.Join(dir, "out.zst")
	if err := runDecode([]string{"-in", jpg2, "-raw", rawOut, "-ycc", "-j", "2"}); err != nil {
		t.Fatalf("decode -raw: %v", err)
	}
	rf, err := os.Open(rawOut)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	dumped, err := readRaw(rf)
	if err != nil {
		t.Fatalf("readRaw: %v", err)
	}
	if dumped.ColorModel != common.ColorYCbCr || dumped.Width != 24 {
		t.Errorf("dump is %dx%d %v", dumped.Width, dumped.Height, dumped.ColorModel)
	}
}

func TestEncodeFlagErrors(t *testing.T) {
	if err := runEncode([]string{"-out", "x.jpg"}); err == nil {
		t.Error("encode without input succeeded")
	}
	if err := runEncode([]string{"-in", "a.png", "-raw", "a.zst", "-out", "x.jpg"}); err == nil {
		t.Error("encode with two inputs succeeded")
	}
	if err := runEncode([]string{"-in", "a.png", "-out", "x.jpg", "-subsampling", "123"}); err == nil {
		t.Error("encode with bad subsampling succeeded")
	}
}

func TestRawColorModel(t *testing.T) {
	tests := []struct {
		in   common.ColorModel
		want common.ColorModel
		raw  bool
	}{
		{common.ColorRGB, common.ColorYCbCr, false},
		{common.ColorYCbCr, common.ColorYCbCr, true},
		{common.ColorYCCK, common.ColorYCCK, true},
		{common.ColorCMYK, common.ColorCMYK, false},
		{common.ColorGrayscale, common.ColorGrayscale, false},
	}
	for _, tt := range tests {
		got, raw := rawColorModel(tt.in)
		if got != tt.want || raw != tt.raw {
			t.Errorf("rawColorModel(%v) = %v, %v; want %v, %v", tt.in, got, raw, tt.want, tt.raw)
		}
	}
}
