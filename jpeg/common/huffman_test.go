package common

import (
	"errors"
	"math/rand"
	"testing"
)

func standardSpecs() []*HuffmanSpec {
	return []*HuffmanSpec{&StandardDCLuminance, &StandardDCChrominance, &StandardACLuminance, &StandardACChrominance}
}

// checkPrefixFree verifies no code is a prefix of another.
func checkPrefixFree(t *testing.T, codes *HuffmanCodes) {
	t.Helper()
	for a := 0; a < 256; a++ {
		ca := codes[a]
		if ca.Len == 0 {
			continue
		}
		for b := 0; b < 256; b++ {
			cb := codes[b]
			if a == b || cb.Len == 0 || cb.Len < ca.Len {
				continue
			}
			if cb.Code>>(cb.Len-ca.Len) == ca.Code {
				t.Fatalf("code for 0x%02X (%0*b) is a prefix of 0x%02X (%0*b)",
					a, int(ca.Len), ca.Code, b, int(cb.Len), cb.Code)
			}
		}
	}
}

func roundTripSymbols(t *testing.T, spec *HuffmanSpec, symbols []byte) {
	t.Helper()
	codes, err := BuildHuffmanCodes(spec)
	if err != nil {
		t.Fatalf("BuildHuffmanCodes: %v", err)
	}
	table, err := NewHuffmanTable(spec)
	if err != nil {
		t.Fatalf("NewHuffmanTable: %v", err)
	}

	w := NewBitWriter(nil)
	for _, s := range symbols {
		if err := w.WriteSymbol(codes, s); err != nil {
			t.Fatalf("WriteSymbol: %v", err)
		}
	}
	w.Flush()

	br := NewBitReader(w.Bytes())
	for i, want := range symbols {
		got, err := table.Decode(br)
		if err != nil {
			t.Fatalf("Decode symbol %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("symbol %d = 0x%02X, want 0x%02X", i, got, want)
		}
	}
}

func TestStandardTablesCanonical(t *testing.T) {
	for _, spec := range standardSpecs() {
		codes, err := BuildHuffmanCodes(spec)
		if err != nil {
			t.Fatalf("class %d id %d: %v", spec.Class, spec.ID, err)
		}
		checkPrefixFree(t, codes)
		roundTripSymbols(t, spec, spec.Values)
	}
}

func TestHuffmanNoAllOnesCode(t *testing.T) {
	for _, spec := range standardSpecs() {
		codes, _ := BuildHuffmanCodes(spec)
		for s, c := range codes {
			if c.Len > 0 && c.Code == 1<<c.Len-1 {
				t.Errorf("class %d id %d: symbol 0x%02X has the all-ones code", spec.Class, spec.ID, s)
			}
		}
	}
}

func TestHuffmanSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec HuffmanSpec
	}{
		{"overflow", HuffmanSpec{Bits: [16]uint8{3}, Values: []byte{0, 1, 2}}},
		{"count mismatch", HuffmanSpec{Bits: [16]uint8{0, 2}, Values: []byte{0}}},
		{"dc symbol too large", HuffmanSpec{Class: ClassDC, Bits: [16]uint8{1}, Values: []byte{16}}},
		{"bad id", HuffmanSpec{ID: 4, Bits: [16]uint8{1}, Values: []byte{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHuffmanTable(&tt.spec); !errors.Is(err, ErrMalformedSegment) {
				t.Errorf("expected ErrMalformedSegment, got %v", err)
			}
		})
	}
}

func TestHuffmanInvalidCode(t *testing.T) {
	// One code of length 1 ("0"); a stream of ones never matches.
	spec := HuffmanSpec{Class: ClassAC, Bits: [16]uint8{1}, Values: []byte{0x42}}
	table, err := NewHuffmanTable(&spec)
	if err != nil {
		t.Fatalf("NewHuffmanTable: %v", err)
	}
	br := NewBitReader([]byte{0xFE, 0xFE, 0xFE})
	if _, err := table.Decode(br); !errors.Is(err, ErrInvalidHuffmanCode) {
		t.Errorf("expected ErrInvalidHuffmanCode, got %v", err)
	}
}

func TestOptimalHuffmanSpec(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name string
		freq func() *HuffmanFrequencies
	}{
		{"single symbol", func() *HuffmanFrequencies {
			f := new(HuffmanFrequencies)
			f[7] = 100
			return f
		}},
		{"uniform", func() *HuffmanFrequencies {
			f := new(HuffmanFrequencies)
			for i := range f {
				f[i] = 10
			}
			return f
		}},
		{"random", func() *HuffmanFrequencies {
			f := new(HuffmanFrequencies)
			for i := range f {
				if rng.Intn(3) > 0 {
					f[i] = int64(rng.Intn(10000))
				}
			}
			return f
		}},
		{"fibonacci", func() *HuffmanFrequencies {
			// Unlimited Huffman would need codes far longer than 16 bits.
			f := new(HuffmanFrequencies)
			a, b := int64(1), int64(1)
			for i := 0; i < 40; i++ {
				f[i] = a
				a, b = b, a+b
			}
			return f
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq := tt.freq()
			spec := BuildOptimalHuffmanSpec(ClassAC, 1, freq)
			if err := spec.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}

			var symbols []byte
			for s, n := range freq {
				if n > 0 {
					symbols = append(symbols, byte(s))
				}
			}
			if len(spec.Values) != len(symbols) {
				t.Fatalf("spec has %d symbols, want %d", len(spec.Values), len(symbols))
			}

			codes, err := BuildHuffmanCodes(&spec)
			if err != nil {
				t.Fatalf("BuildHuffmanCodes: %v", err)
			}
			checkPrefixFree(t, codes)
			for _, s := range symbols {
				c := codes[s]
				if c.Len == 0 || c.Len > 16 {
					t.Fatalf("symbol 0x%02X has length %d", s, c.Len)
				}
				if c.Code == 1<<c.Len-1 {
					t.Fatalf("symbol 0x%02X has the all-ones code", s)
				}
			}
			roundTripSymbols(t, &spec, symbols)
		})
	}
}

func TestOptimalHuffmanShorterForFrequentSymbols(t *testing.T) {
	freq := new(HuffmanFrequencies)
	freq[0] = 1000
	freq[1] = 10
	freq[2] = 10
	freq[3] = 1
	spec := BuildOptimalHuffmanSpec(ClassDC, 0, freq)
	codes, err := BuildHuffmanCodes(&spec)
	if err != nil {
		t.Fatalf("BuildHuffmanCodes: %v", err)
	}
	if codes[0].Len >= codes[3].Len {
		t.Errorf("frequent symbol length %d not shorter than rare symbol length %d", codes[0].Len, codes[3].Len)
	}
}
