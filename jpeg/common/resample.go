package common

import "fmt"

// UpsampleMethod selects how subsampled chroma is expanded on decode.
type UpsampleMethod uint8

const (
	// UpsampleLinear interpolates linearly between chroma sample centres
	// (the 3:1 triangle filter for a factor of 2).
	UpsampleLinear UpsampleMethod = iota
	// UpsampleNearest replicates each chroma sample over its footprint.
	UpsampleNearest
)

// String returns the method name.
func (m UpsampleMethod) String() string {
	switch m {
	case UpsampleLinear:
		return "linear"
	case UpsampleNearest:
		return "nearest"
	}
	return fmt.Sprintf("UpsampleMethod(%d)", uint8(m))
}

// ValidateSampling checks a component's sampling factors against the frame
// maxima. Each ratio must be exactly 1, 2 or 4.
func ValidateSampling(h, v, hmax, vmax int) error {
	if h < 1 || h > 4 || v < 1 || v > 4 {
		return fmt.Errorf("%w: %dx%d", ErrUnsupportedSamplingFactor, h, v)
	}
	if hmax%h != 0 || vmax%v != 0 {
		return fmt.Errorf("%w: %dx%d within %dx%d", ErrUnsupportedSamplingFactor, h, v, hmax, vmax)
	}
	for _, r := range [2]int{hmax / h, vmax / v} {
		if r != 1 && r != 2 && r != 4 {
			return fmt.Errorf("%w: %dx%d within %dx%d", ErrUnsupportedSamplingFactor, h, v, hmax, vmax)
		}
	}
	return nil
}

// Upsample expands a srcW x srcH plane by fx horizontally and fy vertically
// into a dstW x dstH plane. Reads past the source edge are clamped.
func Upsample(dst []byte, dstStride, dstW, dstH int, src []byte, srcStride, srcW, srcH, fx, fy int, method UpsampleMethod) {
	if fx == 1 && fy == 1 {
		for y := 0; y < dstH; y++ {
			sy := min(y, srcH-1)
			copy(dst[y*dstStride:y*dstStride+dstW], src[sy*srcStride:sy*srcStride+dstW])
		}
		return
	}
	if method == UpsampleNearest {
		upsampleNearest(dst, dstStride, dstW, dstH, src, srcStride, srcW, srcH, fx, fy)
		return
	}
	upsampleLinear(dst, dstStride, dstW, dstH, src, srcStride, srcW, srcH, fx, fy)
}

func upsampleNearest(dst []byte, dstStride, dstW, dstH int, src []byte, srcStride, srcW, srcH, fx, fy int) {
	for y := 0; y < dstH; y++ {
		sRow := src[min(y/fy, srcH-1)*srcStride:]
		dRow := dst[y*dstStride : y*dstStride+dstW]
		for x := range dRow {
			dRow[x] = sRow[min(x/fx, srcW-1)]
		}
	}
}

// taps returns the two source indices and the weight of the second one, in
// units of 1/(2f), for output position i. Output sample centres map to
// (i+0.5)/f-0.5 in source coordinates.
func taps(i, f, n int) (i0, i1, w int) {
	p := 2*i + 1 - f
	d := 2 * f
	i0 = p / d
	if p < 0 {
		i0 = (p - d + 1) / d
	}
	w = p - i0*d
	i1 = i0 + 1
	i0 = max(0, min(i0, n-1))
	i1 = max(0, min(i1, n-1))
	return i0, i1, w
}

func upsampleLinear(dst []byte, dstStride, dstW, dstH int, src []byte, srcStride, srcW, srcH, fx, fy int) {
	// Horizontal pass into rows scaled by 2*fx.
	tmp := make([]int32, dstW*srcH)
	for y := 0; y < srcH; y++ {
		sRow := src[y*srcStride:]
		tRow := tmp[y*dstW : y*dstW+dstW]
		for x := range tRow {
			x0, x1, w := taps(x, fx, srcW)
			tRow[x] = int32(sRow[x0])*int32(2*fx-w) + int32(sRow[x1])*int32(w)
		}
	}

	// Vertical pass and normalisation by (2*fx)*(2*fy).
	scale := int32(4 * fx * fy)
	half := scale / 2
	for y := 0; y < dstH; y++ {
		y0, y1, w := taps(y, fy, srcH)
		r0 := tmp[y0*dstW:]
		r1 := tmp[y1*dstW:]
		w0 := int32(2*fy - w)
		w1 := int32(w)
		dRow := dst[y*dstStride : y*dstStride+dstW]
		for x := range dRow {
			dRow[x] = uint8((r0[x]*w0 + r1[x]*w1 + half) / scale)
		}
	}
}

// Subsample reduces a srcW x srcH plane by fx horizontally and fy vertically
// with a box average over each footprint, filling a dstW x dstH plane.
// Footprints that run past the source edge repeat the last row or column.
func Subsample(dst []byte, dstStride, dstW, dstH int, src []byte, srcStride, srcW, srcH, fx, fy int) {
	n := int32(fx * fy)
	for y := 0; y < dstH; y++ {
		dRow := dst[y*dstStride : y*dstStride+dstW]
		for x := range dRow {
			var sum int32
			for j := 0; j < fy; j++ {
				sRow := src[min(y*fy+j, srcH-1)*srcStride:]
				for i := 0; i < fx; i++ {
					sum += int32(sRow[min(x*fx+i, srcW-1)])
				}
			}
			dRow[x] = uint8((sum + n/2) / n)
		}
	}
}
