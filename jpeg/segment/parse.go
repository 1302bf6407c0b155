package segment

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// ParseDQT parses a Define Quantization Table payload. A segment may carry
// several tables back to back.
func ParseDQT(data []byte) ([]common.QuantTable, error) {
	var tables []common.QuantTable
	offset := 0
	for offset < len(data) {
		pqTq := data[offset]
		q := common.QuantTable{
			Precision: pqTq >> 4,   // 0=8-bit, 1=16-bit
			ID:        pqTq & 0x0F, // Table ID
		}
		offset++
		if q.Precision > 1 {
			return nil, fmt.Errorf("%w: DQT table %d precision %d", common.ErrMalformedSegment, q.ID, q.Precision)
		}

		size := 64
		if q.Precision == 1 {
			size = 128
		}
		if offset+size > len(data) {
			return nil, fmt.Errorf("%w: DQT table %d needs %d bytes, %d remain", common.ErrMalformedSegment, q.ID, size, len(data)-offset)
		}
		for i := 0; i < 64; i++ {
			if q.Precision == 0 {
				q.Values[i] = uint16(data[offset+i])
			} else {
				q.Values[i] = binary.BigEndian.Uint16(data[offset+2*i:])
			}
		}
		offset += size

		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("DQT: %w", err)
		}
		tables = append(tables, q)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: empty DQT", common.ErrMalformedSegment)
	}
	return tables, nil
}

// ParseDHT parses a Define Huffman Table payload. A segment may carry
// several tables back to back.
func ParseDHT(data []byte) ([]common.HuffmanSpec, error) {
	var specs []common.HuffmanSpec
	offset := 0
	for offset < len(data) {
		if offset+17 > len(data) {
			return nil, fmt.Errorf("%w: DHT table header needs 17 bytes, %d remain", common.ErrMalformedSegment, len(data)-offset)
		}
		tcTh := data[offset]
		spec := common.HuffmanSpec{
			Class: common.HuffmanClass(tcTh >> 4),
			ID:    tcTh & 0x0F,
		}
		offset++

		total := 0
		for i := 0; i < 16; i++ {
			spec.Bits[i] = data[offset+i]
			total += int(spec.Bits[i])
		}
		offset += 16

		if offset+total > len(data) {
			return nil, fmt.Errorf("%w: DHT table declares %d symbols, %d bytes remain", common.ErrMalformedSegment, total, len(data)-offset)
		}
		spec.Values = bytes.Clone(data[offset : offset+total])
		offset += total

		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("DHT: %w", err)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: empty DHT", common.ErrMalformedSegment)
	}
	return specs, nil
}

// ParseSOF parses a frame header. marker selects the frame type and must be
// SOF0, SOF1 or SOF2.
func ParseSOF(marker uint16, data []byte) (*FrameHeader, error) {
	if err := CheckSupported(marker); err != nil {
		return nil, err
	}
	if !common.IsSOF(marker) {
		return nil, fmt.Errorf("%w: %s is not a frame header", common.ErrMalformedSegment, common.MarkerName(marker))
	}
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: %s length %d", common.ErrMalformedSegment, common.MarkerName(marker), len(data))
	}

	f := &FrameHeader{
		Marker:    marker,
		Precision: data[0],
		Height:    binary.BigEndian.Uint16(data[1:]),
		Width:     binary.BigEndian.Uint16(data[3:]),
	}
	switch f.Precision {
	case 8:
	case 12:
		if marker != common.MarkerSOF0 {
			return nil, fmt.Errorf("%w: 12-bit %s", common.ErrUnsupportedMarker, common.MarkerName(marker))
		}
		fallthrough
	default:
		return nil, fmt.Errorf("%w: %s precision %d", common.ErrMalformedSegment, common.MarkerName(marker), f.Precision)
	}
	if f.Width == 0 {
		return nil, fmt.Errorf("%w: zero frame width", common.ErrMalformedSegment)
	}

	nf := int(data[5])
	if nf == 0 || nf > 4 {
		return nil, fmt.Errorf("%w: %d frame components", common.ErrMalformedSegment, nf)
	}
	if len(data) != 6+3*nf {
		return nil, fmt.Errorf("%w: %s length %d for %d components", common.ErrMalformedSegment, common.MarkerName(marker), len(data), nf)
	}

	f.Components = make([]ComponentSpec, nf)
	for i := range f.Components {
		p := 6 + 3*i
		c := ComponentSpec{
			ID: data[p],
			H:  data[p+1] >> 4,
			V:  data[p+1] & 0x0F,
			Tq: data[p+2],
		}
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return nil, fmt.Errorf("%w: component %d sampling %dx%d", common.ErrUnsupportedSamplingFactor, c.ID, c.H, c.V)
		}
		if c.Tq > 3 {
			return nil, fmt.Errorf("%w: component %d quantization table %d", common.ErrMalformedSegment, c.ID, c.Tq)
		}
		if f.ComponentIndex(c.ID) >= 0 && f.ComponentIndex(c.ID) < i {
			return nil, fmt.Errorf("%w: duplicate component id %d", common.ErrMalformedSegment, c.ID)
		}
		f.Components[i] = c
	}

	hmax, vmax := f.MaxSampling()
	for _, c := range f.Components {
		if err := common.ValidateSampling(int(c.H), int(c.V), hmax, vmax); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseSOS parses a scan header. The payload length must match the declared
// component count exactly.
func ParseSOS(data []byte) (*ScanHeader, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty SOS", common.ErrMalformedSegment)
	}
	ns := int(data[0]) // Number of components in scan
	if ns < 1 || ns > 4 {
		return nil, fmt.Errorf("%w: %d scan components", common.ErrMalformedSegment, ns)
	}
	if len(data) != 1+2*ns+3 {
		return nil, fmt.Errorf("%w: SOS length %d for %d components", common.ErrMalformedSegment, len(data), ns)
	}

	s := &ScanHeader{Components: make([]ScanComponent, ns)}
	for i := range s.Components {
		cs := data[1+2*i]     // Component selector
		tdTa := data[1+2*i+1] // DC and AC table selectors
		s.Components[i] = ScanComponent{ID: cs, Td: tdTa >> 4, Ta: tdTa & 0x0F}
		if s.Components[i].Td > 3 || s.Components[i].Ta > 3 {
			return nil, fmt.Errorf("%w: scan component %d table selectors %d/%d", common.ErrMalformedSegment, cs, s.Components[i].Td, s.Components[i].Ta)
		}
		for j := 0; j < i; j++ {
			if s.Components[j].ID == cs {
				return nil, fmt.Errorf("%w: component %d appears twice in scan", common.ErrMalformedSegment, cs)
			}
		}
	}
	p := 1 + 2*ns
	s.Ss = data[p]
	s.Se = data[p+1]
	s.Ah = data[p+2] >> 4
	s.Al = data[p+2] & 0x0F
	return s, nil
}

// ParseDRI parses a restart interval definition.
func ParseDRI(data []byte) (uint16, error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("%w: DRI length %d", common.ErrMalformedSegment, len(data))
	}
	return binary.BigEndian.Uint16(data), nil
}

// ParseDNL parses a define-number-of-lines segment.
func ParseDNL(data []byte) (uint16, error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("%w: DNL length %d", common.ErrMalformedSegment, len(data))
	}
	lines := binary.BigEndian.Uint16(data)
	if lines == 0 {
		return 0, fmt.Errorf("%w: DNL defines zero lines", common.ErrMalformedSegment)
	}
	return lines, nil
}

var (
	adobeID = []byte("Adobe")
	jfifID  = []byte("JFIF\x00")
)

// ParseAdobe parses an APP14 payload. ok is false when the segment is not an
// Adobe marker; such segments are opaque.
func ParseAdobe(data []byte) (info AdobeInfo, ok bool) {
	if len(data) < 12 || !bytes.HasPrefix(data, adobeID) {
		return AdobeInfo{}, false
	}
	return AdobeInfo{
		Version:   binary.BigEndian.Uint16(data[5:]),
		Flags0:    binary.BigEndian.Uint16(data[7:]),
		Flags1:    binary.BigEndian.Uint16(data[9:]),
		Transform: data[11],
	}, true
}

// ParseJFIF parses an APP0 payload. ok is false when the segment is not a
// JFIF marker.
func ParseJFIF(data []byte) (j JFIF, ok bool) {
	if len(data) < 12 || !bytes.HasPrefix(data, jfifID) {
		return JFIF{}, false
	}
	return JFIF{
		Major:    data[5],
		Minor:    data[6],
		Units:    data[7],
		XDensity: binary.BigEndian.Uint16(data[8:]),
		YDensity: binary.BigEndian.Uint16(data[10:]),
	}, true
}
