package common

import "fmt"

// HuffmanCode represents a Huffman code
type HuffmanCode struct {
	Code uint16 // The Huffman code
	Len  uint8  // Code length in bits, 0 if the symbol has no code
}

// HuffmanCodes maps every symbol to its canonical code.
type HuffmanCodes [256]HuffmanCode

// BuildHuffmanCodes assigns canonical codes: increasing length, then the
// order the symbols appear in the spec.
func BuildHuffmanCodes(spec *HuffmanSpec) (*HuffmanCodes, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	codes := new(HuffmanCodes)
	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < int(spec.Bits[l]); i++ {
			codes[spec.Values[p]] = HuffmanCode{Code: code, Len: uint8(l + 1)}
			code++
			p++
		}
		code <<= 1
	}
	return codes, nil
}

// WriteSymbol writes the code for sym.
func (w *BitWriter) WriteSymbol(codes *HuffmanCodes, sym byte) error {
	c := codes[sym]
	if c.Len == 0 {
		return fmt.Errorf("%w: symbol 0x%02X has no code", ErrInvalidHuffmanCode, sym)
	}
	w.WriteBits(uint32(c.Code), int(c.Len))
	return nil
}

// EncodeCategory returns the magnitude category of val and the bits that
// represent it (the inverse of ReceiveExtend).
func EncodeCategory(val int32) (cat uint8, bits uint32) {
	if val == 0 {
		return 0, 0
	}
	abs := val
	if abs < 0 {
		abs = -abs
	}
	for abs > 0 {
		cat++
		abs >>= 1
	}
	if val > 0 {
		return cat, uint32(val)
	}
	return cat, uint32(val + (1 << cat) - 1)
}
