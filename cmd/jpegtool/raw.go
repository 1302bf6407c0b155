package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/cocosip/go-jpeg-codec/jpeg"
	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// rawMagic starts every raw sample dump, before zstd compression.
var rawMagic = [4]byte{'J', 'R', 'A', 'W'}

// rawHeader precedes the interleaved samples.
type rawHeader struct {
	Magic      [4]byte
	Width      uint32
	Height     uint32
	Components uint8
	ColorModel uint8
}

// writeRaw writes img as a zstd-compressed raw dump.
func writeRaw(w io.Writer, img *jpeg.Image) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	h := rawHeader{
		Magic:      rawMagic,
		Width:      uint32(img.Width),
		Height:     uint32(img.Height),
		Components: uint8(img.Components),
		ColorModel: uint8(img.ColorModel),
	}
	if err := binary.Write(enc, binary.BigEndian, &h); err != nil {
		enc.Close()
		return err
	}
	if _, err := enc.Write(img.Pix); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// readRaw reads a dump written by writeRaw.
func readRaw(r io.Reader) (*jpeg.Image, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var h rawHeader
	if err := binary.Read(dec, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("raw header: %w", err)
	}
	if h.Magic != rawMagic {
		return nil, errors.New("not a raw sample dump")
	}
	if h.Width == 0 || h.Height == 0 || h.Width > 0xFFFF || h.Height > 0xFFFF || h.Components == 0 || h.Components > 4 {
		return nil, fmt.Errorf("raw header: bad geometry %dx%dx%d", h.Width, h.Height, h.Components)
	}
	img := &jpeg.Image{
		Width:      int(h.Width),
		Height:     int(h.Height),
		Components: int(h.Components),
		ColorModel: common.ColorModel(h.ColorModel),
		Pix:        make([]byte, int(h.Width)*int(h.Height)*int(h.Components)),
	}
	if _, err := io.ReadFull(dec, img.Pix); err != nil {
		return nil, fmt.Errorf("raw samples: %w", err)
	}
	return img, nil
}
