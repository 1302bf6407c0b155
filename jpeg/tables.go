package jpeg

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// Tables is an immutable set of quantization and Huffman tables. It is safe
// to share between goroutines.
type Tables struct {
	quant [4]*common.QuantTable
	dc    [4]*common.HuffmanTable
	ac    [4]*common.HuffmanTable
}

// tableSet is the mutable per-session view of the active tables. Slots point
// at immutable tables; a DQT or DHT segment replaces the pointer.
type tableSet Tables

func (t *tableSet) addQuant(tables []common.QuantTable) {
	for i := range tables {
		q := tables[i]
		t.quant[q.ID] = &q
	}
}

func (t *tableSet) addHuffman(specs []common.HuffmanSpec) error {
	for i := range specs {
		h, err := common.NewHuffmanTable(&specs[i])
		if err != nil {
			return err
		}
		if specs[i].Class == common.ClassDC {
			t.dc[specs[i].ID] = h
		} else {
			t.ac[specs[i].ID] = h
		}
	}
	return nil
}

// ParseTables reads an abbreviated table-specification stream: SOI, any
// number of DQT, DHT, APPn and COM segments, then EOI.
func ParseTables(data []byte) (*Tables, error) {
	r := segment.NewReader(data)
	marker, err := r.ReadMarker()
	if err != nil {
		return nil, err
	}
	if marker != common.MarkerSOI {
		return nil, fmt.Errorf("%w: table stream starts with %s", common.ErrMalformedSegment, common.MarkerName(marker))
	}
	if r.Pos() != 2 {
		return nil, fmt.Errorf("%w: %d bytes precede SOI", common.ErrMalformedSegment, r.Pos()-2)
	}

	var t tableSet
	for {
		marker, err := r.ReadMarker()
		if err != nil {
			return nil, err
		}
		if marker == common.MarkerEOI {
			out := Tables(t)
			return &out, nil
		}
		if err := segment.CheckSupported(marker); err != nil {
			return nil, err
		}
		if !common.HasLength(marker) {
			return nil, fmt.Errorf("%w: %s in table stream", common.ErrMalformedSegment, common.MarkerName(marker))
		}
		payload, err := r.ReadSegment()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == common.MarkerDQT:
			q, err := segment.ParseDQT(payload)
			if err != nil {
				return nil, err
			}
			t.addQuant(q)
		case marker == common.MarkerDHT:
			specs, err := segment.ParseDHT(payload)
			if err != nil {
				return nil, err
			}
			if err := t.addHuffman(specs); err != nil {
				return nil, err
			}
		case common.IsAPP(marker), marker == common.MarkerCOM:
		default:
			return nil, fmt.Errorf("%w: %s in table stream", common.ErrMalformedSegment, common.MarkerName(marker))
		}
	}
}

// WriteTables writes the standard tables for the given quality as an
// abbreviated table-specification stream.
func WriteTables(quality int) ([]byte, error) {
	luma, err := common.ScaleQuantTable(&common.DefaultLuminanceQuantTable, quality, 0)
	if err != nil {
		return nil, err
	}
	chroma, err := common.ScaleQuantTable(&common.DefaultChrominanceQuantTable, quality, 1)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := segment.NewWriter(&buf)
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := w.WriteDQT(luma, chroma); err != nil {
		return nil, err
	}
	if err := w.WriteDHT(&common.StandardDCLuminance, &common.StandardACLuminance,
		&common.StandardDCChrominance, &common.StandardACChrominance); err != nil {
		return nil, err
	}
	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
