package common

import "fmt"

// ZigZag maps a zig-zag coefficient index to its natural (row-major) position.
var ZigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// QuantTable holds 64 quantization steps in zig-zag order.
type QuantTable struct {
	ID uint8
	// Precision is 0 for 8-bit entries and 1 for 16-bit entries.
	Precision uint8
	Values    [64]uint16
}

// Validate rejects zero steps and out of range ids.
func (q *QuantTable) Validate() error {
	if q.ID > 3 {
		return fmt.Errorf("%w: quantization table id %d", ErrMalformedSegment, q.ID)
	}
	if q.Precision > 1 {
		return fmt.Errorf("%w: quantization table precision %d", ErrMalformedSegment, q.Precision)
	}
	for i, v := range q.Values {
		if v == 0 {
			return fmt.Errorf("%w: quantization table %d has a zero step at %d", ErrMalformedSegment, q.ID, i)
		}
		if q.Precision == 0 && v > 255 {
			return fmt.Errorf("%w: 8-bit quantization table %d has step %d", ErrMalformedSegment, q.ID, v)
		}
	}
	return nil
}

// Dequantize multiplies zig-zag ordered coefficients by the table and writes
// them to their natural positions.
func (q *QuantTable) Dequantize(zz []int32, natural *[64]int32) {
	_ = zz[63]
	for i := 0; i < 64; i++ {
		natural[ZigZag[i]] = zz[i] * int32(q.Values[i])
	}
}

// Quantize divides natural-order coefficients by the table, rounding to
// nearest with ties away from zero, and writes them in zig-zag order.
func (q *QuantTable) Quantize(natural *[64]int32, zz []int32) {
	_ = zz[63]
	for i := 0; i < 64; i++ {
		c := natural[ZigZag[i]]
		step := int32(q.Values[i])
		if c < 0 {
			zz[i] = -((-c + step/2) / step)
		} else {
			zz[i] = (c + step/2) / step
		}
	}
}

// ValidateQuality checks that quality is within [1,100].
func ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("%w: quality %d outside [1,100]", ErrInvalidParameter, quality)
	}
	return nil
}

// ScaleQuantTable scales a natural-order base table by an IJG quality factor
// (1-100) and returns it in zig-zag order.
func ScaleQuantTable(baseTable *[64]uint16, quality int, id uint8) (*QuantTable, error) {
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}

	// Quality 50 = no scaling
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}

	q := &QuantTable{ID: id}
	for i := 0; i < 64; i++ {
		val := (int(baseTable[ZigZag[i]])*scale + 50) / 100
		if val < 1 {
			val = 1
		}
		if val > 255 {
			val = 255
		}
		q.Values[i] = uint16(val)
	}
	return q, nil
}
