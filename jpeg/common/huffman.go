package common

import "fmt"

// HuffmanClass selects the DC or AC table namespace.
type HuffmanClass uint8

const (
	// ClassDC tables code DC difference categories.
	ClassDC HuffmanClass = 0
	// ClassAC tables code run/size pairs.
	ClassAC HuffmanClass = 1
)

// HuffmanSpec is a canonical Huffman table as carried by a DHT segment.
type HuffmanSpec struct {
	Class HuffmanClass
	ID    uint8
	// Number of codes of each length (1-16 bits)
	Bits [16]uint8
	// Values for each code, in order of code length
	Values []byte
}

// Validate checks that the counts describe a realisable canonical code.
func (s *HuffmanSpec) Validate() error {
	if s.Class > ClassAC {
		return fmt.Errorf("%w: Huffman table class %d", ErrMalformedSegment, s.Class)
	}
	if s.ID > 3 {
		return fmt.Errorf("%w: Huffman table id %d", ErrMalformedSegment, s.ID)
	}
	total := 0
	code := 0
	for l := 0; l < 16; l++ {
		total += int(s.Bits[l])
		code += int(s.Bits[l])
		if code > 1<<uint(l+1) {
			return fmt.Errorf("%w: Huffman code space overflows at length %d", ErrMalformedSegment, l+1)
		}
		code <<= 1
	}
	if total > 256 {
		return fmt.Errorf("%w: Huffman table has %d codes", ErrMalformedSegment, total)
	}
	if total != len(s.Values) {
		return fmt.Errorf("%w: Huffman table counts %d codes but has %d values", ErrMalformedSegment, total, len(s.Values))
	}
	if s.Class == ClassDC {
		for _, v := range s.Values {
			if v > 15 {
				return fmt.Errorf("%w: DC Huffman symbol %d", ErrMalformedSegment, v)
			}
		}
	}
	return nil
}

// Equal reports whether two specs describe the same table.
func (s *HuffmanSpec) Equal(o *HuffmanSpec) bool {
	if s.Class != o.Class || s.ID != o.ID || s.Bits != o.Bits || len(s.Values) != len(o.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

const lutBits = 8

// HuffmanTable is a decoding table built from a HuffmanSpec. It is immutable
// and safe for concurrent use.
type HuffmanTable struct {
	class  HuffmanClass
	values []byte
	// Lookup tables for fast decoding
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// value<<8 | length for codes up to 8 bits, 0 if the prefix is longer
	lut [1 << lutBits]uint16
}

// NewHuffmanTable validates the spec and builds decoding tables.
func NewHuffmanTable(spec *HuffmanSpec) (*HuffmanTable, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	h := &HuffmanTable{
		class:  spec.Class,
		values: append([]byte(nil), spec.Values...),
	}

	code := int32(0)
	p := 0
	for l := 0; l < 16; l++ {
		n := int(spec.Bits[l])
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code
			if l < lutBits {
				// Every 8-bit prefix that starts with this code maps to it.
				shift := uint(lutBits - 1 - l)
				for i := 0; i < n; i++ {
					base := int(code+int32(i)) << shift
					entry := uint16(h.values[p+i])<<8 | uint16(l+1)
					for j := 0; j < 1<<shift; j++ {
						h.lut[base+j] = entry
					}
				}
			}
			p += n
			code += int32(n)
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}
	return h, nil
}

// MustHuffmanTable is like NewHuffmanTable but panics on error. It is meant for
// the built-in tables.
func MustHuffmanTable(spec *HuffmanSpec) *HuffmanTable {
	h, err := NewHuffmanTable(spec)
	if err != nil {
		panic(err)
	}
	return h
}

// Class returns the table class.
func (h *HuffmanTable) Class() HuffmanClass {
	return h.class
}

// Decode reads one symbol. It never consumes more than 16 bits.
func (h *HuffmanTable) Decode(br *BitReader) (byte, error) {
	// Fast path for codes up to 8 bits
	if peek, ok := br.peek(lutBits); ok {
		if e := h.lut[peek]; e != 0 {
			br.skip(int(e & 0xFF))
			return byte(e >> 8), nil
		}
	}

	// Slow path: decode bit by bit
	code := int32(0)
	for l := 0; l < 16; l++ {
		bit, err := br.NextBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(bit)
		if code <= h.maxCode[l] {
			return h.values[h.valPtr[l]+code-h.minCode[l]], nil
		}
	}
	return 0, ErrInvalidHuffmanCode
}
