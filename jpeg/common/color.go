package common

import "fmt"

// ColorModel identifies how the components of a frame map to output channels.
// It is chosen once per frame.
type ColorModel uint8

const (
	// ColorUnknown is the zero value; encoders treat it as "choose from the component count".
	ColorUnknown ColorModel = iota
	// ColorGrayscale is a single luminance component.
	ColorGrayscale
	// ColorYCbCr is stored as YCbCr and delivered as RGB.
	ColorYCbCr
	// ColorRGB is stored and delivered as RGB without a transform.
	ColorRGB
	// ColorCMYK is four components passed through as CMYK.
	ColorCMYK
	// ColorYCCK is stored as YCbCr plus K and delivered as CMYK.
	ColorYCCK
)

// Adobe APP14 transform flag values.
const (
	AdobeTransformNone  = 0
	AdobeTransformYCbCr = 1
	AdobeTransformYCCK  = 2
)

// String returns the model name.
func (m ColorModel) String() string {
	switch m {
	case ColorGrayscale:
		return "Grayscale"
	case ColorYCbCr:
		return "YCbCr"
	case ColorRGB:
		return "RGB"
	case ColorCMYK:
		return "CMYK"
	case ColorYCCK:
		return "YCCK"
	}
	return "Unknown"
}

// Components returns the number of coded components for the model.
func (m ColorModel) Components() int {
	switch m {
	case ColorGrayscale:
		return 1
	case ColorYCbCr, ColorRGB:
		return 3
	case ColorCMYK, ColorYCCK:
		return 4
	}
	return 0
}

// DetectColorModel selects the color model of a frame from its component
// count, the Adobe APP14 transform flag (if a marker was present) and the
// component identifiers.
func DetectColorModel(components int, adobe bool, transform uint8, ids []uint8) (ColorModel, error) {
	switch components {
	case 1:
		return ColorGrayscale, nil
	case 3:
		if adobe {
			if transform == AdobeTransformNone {
				return ColorRGB, nil
			}
			return ColorYCbCr, nil
		}
		if len(ids) == 3 && ids[0] == 'R' && ids[1] == 'G' && ids[2] == 'B' {
			return ColorRGB, nil
		}
		return ColorYCbCr, nil
	case 4:
		if adobe && transform == AdobeTransformYCCK {
			return ColorYCCK, nil
		}
		return ColorCMYK, nil
	}
	return ColorUnknown, fmt.Errorf("%w: %d components", ErrMalformedSegment, components)
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// YCbCrToRGB converts one pixel with 16-bit fixed-point coefficients,
// rounding to nearest.
//
//	R = Y + 1.402 (Cr-128)
//	G = Y - 0.344136 (Cb-128) - 0.714136 (Cr-128)
//	B = Y + 1.772 (Cb-128)
func YCbCrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yy := int32(y)<<16 + 1<<15
	cb1 := int32(cb) - 128
	cr1 := int32(cr) - 128
	r = clampByte((yy + 91881*cr1) >> 16)
	g = clampByte((yy - 22554*cb1 - 46802*cr1) >> 16)
	b = clampByte((yy + 116130*cb1) >> 16)
	return r, g, b
}

// RGBToYCbCr converts one pixel (JFIF full range), rounding to nearest.
func RGBToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	r1 := int32(r)
	g1 := int32(g)
	b1 := int32(b)
	y = clampByte((19595*r1 + 38470*g1 + 7471*b1 + 1<<15) >> 16)
	cb = clampByte((-11056*r1 - 21712*g1 + 32768*b1 + 257<<15) >> 16)
	cr = clampByte((32768*r1 - 27440*g1 - 5328*b1 + 257<<15) >> 16)
	return y, cb, cr
}

// YCbCrToRGBRow converts a row of planar YCbCr samples into interleaved RGB.
func YCbCrToRGBRow(dst, y, cb, cr []byte) {
	for i := range y {
		dst[3*i], dst[3*i+1], dst[3*i+2] = YCbCrToRGB(y[i], cb[i], cr[i])
	}
}

// YCCKToCMYKRow converts a row of planar Adobe YCCK samples into interleaved
// CMYK. The YCC triple decodes to inverted CMY and K is stored inverted.
func YCCKToCMYKRow(dst, y, cb, cr, k []byte) {
	for i := range y {
		r, g, b := YCbCrToRGB(y[i], cb[i], cr[i])
		dst[4*i] = 255 - r
		dst[4*i+1] = 255 - g
		dst[4*i+2] = 255 - b
		dst[4*i+3] = 255 - k[i]
	}
}
