package segment

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// Writer emits JPEG marker segments.
type Writer struct {
	w   io.Writer
	buf [2]byte
}

// NewWriter creates a new segment writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteUint16 writes a 16-bit big-endian value
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteMarker writes a bare marker such as SOI or EOI.
func (w *Writer) WriteMarker(marker uint16) error {
	return w.WriteUint16(marker)
}

// WriteSegment writes a segment with length
// The length field is automatically calculated and includes itself (2 bytes)
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if len(data)+2 > 0xFFFF {
		return fmt.Errorf("%w: %s payload of %d bytes", common.ErrInvalidParameter, common.MarkerName(marker), len(data))
	}
	if err := w.WriteMarker(marker); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(data) + 2)); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}

// Write writes raw bytes, used for entropy-coded data.
func (w *Writer) Write(data []byte) (int, error) {
	return w.w.Write(data)
}

// WriteDQT writes the tables in a single DQT segment.
func (w *Writer) WriteDQT(tables ...*common.QuantTable) error {
	var data []byte
	for _, q := range tables {
		if err := q.Validate(); err != nil {
			return err
		}
		data = append(data, q.Precision<<4|q.ID)
		for _, v := range q.Values {
			if q.Precision == 0 {
				data = append(data, byte(v))
			} else {
				data = binary.BigEndian.AppendUint16(data, v)
			}
		}
	}
	return w.WriteSegment(common.MarkerDQT, data)
}

// WriteDHT writes the tables in a single DHT segment.
func (w *Writer) WriteDHT(specs ...*common.HuffmanSpec) error {
	var data []byte
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		data = append(data, byte(s.Class)<<4|s.ID)
		data = append(data, s.Bits[:]...)
		data = append(data, s.Values...)
	}
	return w.WriteSegment(common.MarkerDHT, data)
}

// WriteSOF writes a frame header.
func (w *Writer) WriteSOF(f *FrameHeader) error {
	data := make([]byte, 0, 6+3*len(f.Components))
	data = append(data, f.Precision)
	data = binary.BigEndian.AppendUint16(data, f.Height)
	data = binary.BigEndian.AppendUint16(data, f.Width)
	data = append(data, byte(len(f.Components)))
	for _, c := range f.Components {
		data = append(data, c.ID, c.H<<4|c.V, c.Tq)
	}
	return w.WriteSegment(f.Marker, data)
}

// WriteSOS writes a scan header.
func (w *Writer) WriteSOS(s *ScanHeader) error {
	data := make([]byte, 0, 4+2*len(s.Components))
	data = append(data, byte(len(s.Components)))
	for _, c := range s.Components {
		data = append(data, c.ID, c.Td<<4|c.Ta)
	}
	data = append(data, s.Ss, s.Se, s.Ah<<4|s.Al)
	return w.WriteSegment(common.MarkerSOS, data)
}

// WriteDRI writes a restart interval definition.
func (w *Writer) WriteDRI(interval uint16) error {
	return w.WriteSegment(common.MarkerDRI, binary.BigEndian.AppendUint16(nil, interval))
}

// WriteDNL writes a define-number-of-lines segment.
func (w *Writer) WriteDNL(lines uint16) error {
	return w.WriteSegment(common.MarkerDNL, binary.BigEndian.AppendUint16(nil, lines))
}

// WriteJFIF writes a JFIF APP0 segment without a thumbnail.
func (w *Writer) WriteJFIF(j JFIF) error {
	data := append([]byte(nil), jfifID...)
	data = append(data, j.Major, j.Minor, j.Units)
	data = binary.BigEndian.AppendUint16(data, j.XDensity)
	data = binary.BigEndian.AppendUint16(data, j.YDensity)
	data = append(data, 0, 0)
	return w.WriteSegment(common.MarkerAPP0, data)
}

// WriteAdobe writes an Adobe APP14 segment.
func (w *Writer) WriteAdobe(a AdobeInfo) error {
	data := append([]byte(nil), adobeID...)
	data = binary.BigEndian.AppendUint16(data, a.Version)
	data = binary.BigEndian.AppendUint16(data, a.Flags0)
	data = binary.BigEndian.AppendUint16(data, a.Flags1)
	data = append(data, a.Transform)
	return w.WriteSegment(common.MarkerAPP14, data)
}

// DefaultJFIF is the APP0 written by the encoder: version 1.01, 1:1 aspect.
var DefaultJFIF = JFIF{Major: 1, Minor: 1, Units: 0, XDensity: 1, YDensity: 1}
