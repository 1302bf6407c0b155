package jpeg

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// Image is a decoded frame with interleaved samples in row-major order.
type Image struct {
	Width      int
	Height     int
	Components int // Samples per pixel in Pix
	// ColorModel describes the samples in Pix: decoded YCbCr frames are
	// delivered as ColorRGB and YCCK frames as ColorCMYK unless raw
	// components were requested.
	ColorModel common.ColorModel
	Pix        []byte
}

// Stride returns the number of bytes per row.
func (img *Image) Stride() int {
	return img.Width * img.Components
}

// ToImage wraps the samples in a standard library image. Gray, RGB, CMYK and
// raw YCbCr samples are supported.
func (img *Image) ToImage() (image.Image, error) {
	r := image.Rect(0, 0, img.Width, img.Height)
	switch img.ColorModel {
	case common.ColorGrayscale:
		return &image.Gray{Pix: img.Pix, Stride: img.Width, Rect: r}, nil
	case common.ColorRGB:
		out := image.NewRGBA(r)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
			out.Pix[j] = img.Pix[i]
			out.Pix[j+1] = img.Pix[i+1]
			out.Pix[j+2] = img.Pix[i+2]
			out.Pix[j+3] = 0xFF
		}
		return out, nil
	case common.ColorCMYK:
		return &image.CMYK{Pix: img.Pix, Stride: img.Width * 4, Rect: r}, nil
	case common.ColorYCbCr:
		out := image.NewYCbCr(r, image.YCbCrSubsampleRatio444)
		for i := 0; i < img.Width*img.Height; i++ {
			out.Y[i] = img.Pix[3*i]
			out.Cb[i] = img.Pix[3*i+1]
			out.Cr[i] = img.Pix[3*i+2]
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no standard image for %v samples", common.ErrInvalidParameter, img.ColorModel)
}

// Config describes a frame without decoding its entropy-coded data.
type Config struct {
	Width, Height int
	// ColorModel is the coded color model of the frame.
	ColorModel  common.ColorModel
	Progressive bool
	Precision   int
	// Sampling lists the components in frame order.
	Sampling        []segment.ComponentSpec
	RestartInterval int
}

// Components returns the number of coded components.
func (c *Config) Components() int {
	return len(c.Sampling)
}

// EncodeImage encodes a standard library image. Gray images are written as
// grayscale, CMYK images as CMYK and everything else as YCbCr. opts may be
// nil for the defaults.
func EncodeImage(m image.Image, opts *EncodeOptions) ([]byte, error) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src := m.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return Encode(pix, w, h, 1, opts)
	case *image.CMYK:
		pix := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			copy(pix[y*w*4:(y+1)*w*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return Encode(pix, w, h, 4, opts)
	}

	rgba, ok := m.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), m, b.Min, draw.Src)
	} else {
		rgba = rgba.SubImage(b).(*image.RGBA)
	}
	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[rgba.PixOffset(rgba.Rect.Min.X, rgba.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			pix = append(pix, row[4*x], row[4*x+1], row[4*x+2])
		}
	}
	return Encode(pix, w, h, 3, opts)
}
