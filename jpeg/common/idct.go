package common

// Constants for the fixed-point IDCT (scaled by 2048)
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	w1pw7 = w1 + w7
	w1mw7 = w1 - w7
	w2pw6 = w2 + w6
	w2mw6 = w2 - w6
	w3pw5 = w3 + w5
	w3mw5 = w3 - w5

	r2 = 181 // 256/sqrt(2)
)

// InverseDCT transforms 64 dequantized coefficients in natural order into
// samples, adding the +128 level shift and clamping to [0,255]. Rows are
// transformed first, then columns. out receives 8 rows of 8 samples, stride
// bytes apart.
func InverseDCT(coef *[64]int32, out []byte, stride int) {
	tmp := *coef

	// 1D IDCT on rows
	for y := 0; y < 8; y++ {
		s := tmp[y*8 : y*8+8 : y*8+8]

		// Check if AC coefficients are all zero (optimization)
		if s[1] == 0 && s[2] == 0 && s[3] == 0 &&
			s[4] == 0 && s[5] == 0 && s[6] == 0 && s[7] == 0 {
			dc := s[0] << 3
			s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7] = dc, dc, dc, dc, dc, dc, dc, dc
			continue
		}

		x0 := (s[0] << 11) + 128
		x1 := s[4] << 11
		x2 := s[6]
		x3 := s[2]
		x4 := s[1]
		x5 := s[7]
		x6 := s[5]
		x7 := s[3]

		// First stage
		x8 := w7 * (x4 + x5)
		x4 = x8 + w1mw7*x4
		x5 = x8 - w1pw7*x5
		x8 = w3 * (x6 + x7)
		x6 = x8 - w3mw5*x6
		x7 = x8 - w3pw5*x7

		// Second stage
		x8 = x0 + x1
		x0 -= x1
		x1 = w6 * (x3 + x2)
		x2 = x1 - w2pw6*x2
		x3 = x1 + w2mw6*x3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		// Third stage
		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2*(x4+x5) + 128) >> 8
		x4 = (r2*(x4-x5) + 128) >> 8

		s[0] = (x7 + x1) >> 8
		s[1] = (x3 + x2) >> 8
		s[2] = (x0 + x4) >> 8
		s[3] = (x8 + x6) >> 8
		s[4] = (x8 - x6) >> 8
		s[5] = (x0 - x4) >> 8
		s[6] = (x3 - x2) >> 8
		s[7] = (x7 - x1) >> 8
	}

	// 1D IDCT on columns
	for x := 0; x < 8; x++ {
		s := tmp[x : x+57 : x+57]

		y0 := (s[0] << 8) + 8192
		y1 := s[32] << 8
		y2 := s[48]
		y3 := s[16]
		y4 := s[8]
		y5 := s[56]
		y6 := s[40]
		y7 := s[24]

		// First stage
		y8 := w7*(y4+y5) + 4
		y4 = (y8 + w1mw7*y4) >> 3
		y5 = (y8 - w1pw7*y5) >> 3
		y8 = w3*(y6+y7) + 4
		y6 = (y8 - w3mw5*y6) >> 3
		y7 = (y8 - w3pw5*y7) >> 3

		// Second stage
		y8 = y0 + y1
		y0 -= y1
		y1 = w6*(y3+y2) + 4
		y2 = (y1 - w2pw6*y2) >> 3
		y3 = (y1 + w2mw6*y3) >> 3
		y1 = y4 + y6
		y4 -= y6
		y6 = y5 + y7
		y5 -= y7

		// Third stage
		y7 = y8 + y3
		y8 -= y3
		y3 = y0 + y2
		y0 -= y2
		y2 = (r2*(y4+y5) + 128) >> 8
		y4 = (r2*(y4-y5) + 128) >> 8

		// Output with range limiting and level shift
		out[0*stride+x] = clampSample((y7 + y1) >> 14)
		out[1*stride+x] = clampSample((y3 + y2) >> 14)
		out[2*stride+x] = clampSample((y0 + y4) >> 14)
		out[3*stride+x] = clampSample((y8 + y6) >> 14)
		out[4*stride+x] = clampSample((y8 - y6) >> 14)
		out[5*stride+x] = clampSample((y0 - y4) >> 14)
		out[6*stride+x] = clampSample((y3 - y2) >> 14)
		out[7*stride+x] = clampSample((y7 - y1) >> 14)
	}
}

// clampSample level-shifts an IDCT output into [0,255].
func clampSample(v int32) byte {
	v += 128
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
