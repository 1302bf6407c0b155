package common

// HuffmanFrequencies counts symbol occurrences for one table.
type HuffmanFrequencies [256]int64

// Add counts one occurrence of sym.
func (f *HuffmanFrequencies) Add(sym byte) {
	f[sym]++
}

// Empty reports whether no symbol was counted.
func (f *HuffmanFrequencies) Empty() bool {
	for _, n := range f {
		if n != 0 {
			return false
		}
	}
	return true
}

// BuildOptimalHuffmanSpec builds a length-limited (16 bit) canonical table for
// the observed frequencies, following Annex K.2. A reserved 257th symbol keeps
// any real code from being all ones. Symbols that never occur get no code.
func BuildOptimalHuffmanSpec(class HuffmanClass, id uint8, freq *HuffmanFrequencies) HuffmanSpec {
	const reserved = 256
	var (
		f        [257]int64
		codeSize [257]int
		others   [257]int
	)
	copy(f[:], freq[:])
	f[reserved] = 1
	for i := range others {
		others[i] = -1
	}

	for {
		// c1 is the least frequent symbol, c2 the next least; ties go to the
		// larger symbol value.
		c1, c2 := -1, -1
		var v1, v2 int64
		for i := 0; i <= reserved; i++ {
			if f[i] == 0 {
				continue
			}
			if c1 < 0 || f[i] <= v1 {
				c2, v2 = c1, v1
				c1, v1 = i, f[i]
			} else if c2 < 0 || f[i] <= v2 {
				c2, v2 = i, f[i]
			}
		}
		if c2 < 0 {
			break
		}
		// Merge the two trees, lengthening every code in both by one bit.
		f[c1] += f[c2]
		f[c2] = 0
		codeSize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codeSize[c1]++
		}
		others[c1] = c2
		codeSize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codeSize[c2]++
		}
	}

	// Code lengths can reach 256 in degenerate distributions.
	var bits [258]int
	maxLen := 0
	for i := 0; i <= reserved; i++ {
		if codeSize[i] > 0 {
			bits[codeSize[i]]++
			if codeSize[i] > maxLen {
				maxLen = codeSize[i]
			}
		}
	}

	// Limit lengths to 16 bits: move pairs of codes up and split a shorter code.
	for i := maxLen; i > 16; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}

	// Drop the reserved code, which is always one of the longest.
	i := 16
	for i > 0 && bits[i] == 0 {
		i--
	}
	if i > 0 {
		bits[i]--
	}

	spec := HuffmanSpec{Class: class, ID: id}
	for l := 1; l <= 16; l++ {
		spec.Bits[l-1] = uint8(bits[l])
	}
	// Symbols are listed by their unadjusted code size, then by value.
	for size := 1; size <= maxLen; size++ {
		for sym := 0; sym < reserved; sym++ {
			if codeSize[sym] == size {
				spec.Values = append(spec.Values, byte(sym))
			}
		}
	}
	return spec
}
