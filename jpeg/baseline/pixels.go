package baseline

// interleave converts a planar (color-by-plane) frame to color-by-pixel.
func interleave(planar []byte, samples int) []byte {
	n := len(planar) / samples
	out := make([]byte, len(planar))
	for s := 0; s < samples; s++ {
		plane := planar[s*n : (s+1)*n]
		for i, v := range plane {
			out[i*samples+s] = v
		}
	}
	return out
}

// deinterleave is the inverse of interleave.
func deinterleave(pixels []byte, samples int) []byte {
	n := len(pixels) / samples
	out := make([]byte, len(pixels))
	for i := 0; i < n; i++ {
		for s := 0; s < samples; s++ {
			out[s*n+i] = pixels[i*samples+s]
		}
	}
	return out
}

// shiftSignedToUnsigned moves two's complement samples of bitsStored bits
// into the unsigned range JPEG codes: v + 2^(bitsStored-1).
func shiftSignedToUnsigned(data []byte, bitsStored int) []byte {
	shift := uint(8 - bitsStored)
	offset := 1 << (bitsStored - 1)
	out := make([]byte, len(data))
	for i, b := range data {
		v := int(int8(b<<shift)) >> shift
		out[i] = byte(v + offset)
	}
	return out
}

// shiftUnsignedToSigned reverses shiftSignedToUnsigned in place, clamping
// to the signed range of bitsStored bits.
func shiftUnsignedToSigned(data []byte, bitsStored int) {
	offset := 1 << (bitsStored - 1)
	for i, b := range data {
		v := int(b) - offset
		if v >= offset {
			v = offset - 1
		}
		data[i] = byte(int8(v))
	}
}
