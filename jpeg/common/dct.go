package common

// Fixed-point constants for the forward DCT (scaled by 2^13)
const (
	fix0298631336 = 2446
	fix0390180644 = 3196
	fix0541196100 = 4433
	fix0765366865 = 6270
	fix0899976223 = 7373
	fix1175875602 = 9633
	fix1501321110 = 12299
	fix1847759065 = 15137
	fix1961570560 = 16069
	fix2053119869 = 16819
	fix2562915447 = 20995
	fix3072711026 = 25172
)

const (
	constBits = 13
	pass1Bits = 2
)

// ForwardDCT transforms 64 level-shifted samples (natural order, range
// [-128,127]) into DCT coefficients. It uses the separable Loeffler-Ligtenberg-
// Moschytz factorisation, rows first, and rounds the result to the nearest
// integer with ties away from zero.
func ForwardDCT(in *[64]int32, out *[64]int32) {
	b := *in

	// Pass 1: process rows. Results are scaled up by 2^pass1Bits.
	for y := 0; y < 8; y++ {
		s := b[y*8 : y*8+8 : y*8+8]

		tmp0 := s[0] + s[7]
		tmp1 := s[1] + s[6]
		tmp2 := s[2] + s[5]
		tmp3 := s[3] + s[4]

		tmp10 := tmp0 + tmp3
		tmp12 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp13 := tmp1 - tmp2

		tmp0 = s[0] - s[7]
		tmp1 = s[1] - s[6]
		tmp2 = s[2] - s[5]
		tmp3 = s[3] - s[4]

		s[0] = (tmp10 + tmp11) << pass1Bits
		s[4] = (tmp10 - tmp11) << pass1Bits
		z1 := (tmp12 + tmp13) * fix0541196100
		z1 += 1 << (constBits - pass1Bits - 1)
		s[2] = (z1 + tmp12*fix0765366865) >> (constBits - pass1Bits)
		s[6] = (z1 - tmp13*fix1847759065) >> (constBits - pass1Bits)

		// Odd part
		tmp10 = tmp0 + tmp3
		tmp11 = tmp1 + tmp2
		tmp12 = tmp0 + tmp2
		tmp13 = tmp1 + tmp3
		z1 = (tmp12 + tmp13) * fix1175875602
		z1 += 1 << (constBits - pass1Bits - 1)

		tmp0 *= fix1501321110
		tmp1 *= fix3072711026
		tmp2 *= fix2053119869
		tmp3 *= fix0298631336
		tmp10 *= -fix0899976223
		tmp11 *= -fix2562915447
		tmp12 *= -fix0390180644
		tmp13 *= -fix1961570560

		tmp12 += z1
		tmp13 += z1

		s[1] = (tmp0 + tmp10 + tmp12) >> (constBits - pass1Bits)
		s[3] = (tmp1 + tmp11 + tmp13) >> (constBits - pass1Bits)
		s[5] = (tmp2 + tmp11 + tmp12) >> (constBits - pass1Bits)
		s[7] = (tmp3 + tmp10 + tmp13) >> (constBits - pass1Bits)
	}

	// Pass 2: process columns. Results are 8 times the true coefficients.
	for x := 0; x < 8; x++ {
		tmp0 := b[0*8+x] + b[7*8+x]
		tmp1 := b[1*8+x] + b[6*8+x]
		tmp2 := b[2*8+x] + b[5*8+x]
		tmp3 := b[3*8+x] + b[4*8+x]

		tmp10 := tmp0 + tmp3 + 1<<(pass1Bits-1)
		tmp12 := tmp0 - tmp3
		tmp11 := tmp1 + tmp2
		tmp13 := tmp1 - tmp2

		tmp0 = b[0*8+x] - b[7*8+x]
		tmp1 = b[1*8+x] - b[6*8+x]
		tmp2 = b[2*8+x] - b[5*8+x]
		tmp3 = b[3*8+x] - b[4*8+x]

		b[0*8+x] = (tmp10 + tmp11) >> pass1Bits
		b[4*8+x] = (tmp10 - tmp11) >> pass1Bits

		z1 := (tmp12 + tmp13) * fix0541196100
		z1 += 1 << (constBits + pass1Bits - 1)
		b[2*8+x] = (z1 + tmp12*fix0765366865) >> (constBits + pass1Bits)
		b[6*8+x] = (z1 - tmp13*fix1847759065) >> (constBits + pass1Bits)

		// Odd part
		tmp10 = tmp0 + tmp3
		tmp11 = tmp1 + tmp2
		tmp12 = tmp0 + tmp2
		tmp13 = tmp1 + tmp3
		z1 = (tmp12 + tmp13) * fix1175875602
		z1 += 1 << (constBits + pass1Bits - 1)

		tmp0 *= fix1501321110
		tmp1 *= fix3072711026
		tmp2 *= fix2053119869
		tmp3 *= fix0298631336
		tmp10 *= -fix0899976223
		tmp11 *= -fix2562915447
		tmp12 *= -fix0390180644
		tmp13 *= -fix1961570560

		tmp12 += z1
		tmp13 += z1

		b[1*8+x] = (tmp0 + tmp10 + tmp12) >> (constBits + pass1Bits)
		b[3*8+x] = (tmp1 + tmp11 + tmp13) >> (constBits + pass1Bits)
		b[5*8+x] = (tmp2 + tmp11 + tmp12) >> (constBits + pass1Bits)
		b[7*8+x] = (tmp3 + tmp10 + tmp13) >> (constBits + pass1Bits)
	}

	for i, v := range b {
		if v < 0 {
			out[i] = -((-v + 4) >> 3)
		} else {
			out[i] = (v + 4) >> 3
		}
	}
}

// LevelShift loads an 8x8 block of samples from a strided plane and subtracts 128.
func LevelShift(src []byte, stride int, dst *[64]int32) {
	for y := 0; y < 8; y++ {
		row := src[y*stride : y*stride+8]
		for x, v := range row {
			dst[y*8+x] = int32(v) - 128
		}
	}
}
