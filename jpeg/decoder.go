package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// decodeState is the position of the decoder in the marker grammar.
type decodeState uint8

const (
	stateExpectSOI decodeState = iota
	stateReadingTables
	stateReadingFrameHeader
	stateReadingScanHeader
	stateDecodingEntropyData
	stateEOI
)

func (s decodeState) String() string {
	switch s {
	case stateExpectSOI:
		return "expecting SOI"
	case stateReadingTables:
		return "reading tables"
	case stateReadingFrameHeader:
		return "reading frame header"
	case stateReadingScanHeader:
		return "reading scan header"
	case stateDecodingEntropyData:
		return "decoding entropy-coded data"
	case stateEOI:
		return "after EOI"
	}
	return fmt.Sprintf("decodeState(%d)", uint8(s))
}

// decoder holds all state of one decode session.
type decoder struct {
	opts DecodeOptions
	data []byte
	r    *segment.Reader

	state           decodeState
	tables          tableSet
	restartInterval int
	adobe           *segment.AdobeInfo
	jfif            *segment.JFIF

	header *segment.FrameHeader
	height int // From the frame header, or from DNL when the header has 0
	frame  *frame
	scans  int
	dnl    bool

	// covered marks components coded by a sequential scan.
	covered []bool
	progress progression
}

func newDecoder(data []byte, opts *DecodeOptions) (*decoder, error) {
	d := &decoder{data: data, r: segment.NewReader(data)}
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		d.opts = *opts
		if opts.Tables != nil {
			d.tables = tableSet(*opts.Tables)
		}
	}
	return d, nil
}

// Decode decodes a baseline, extended sequential or progressive JPEG stream.
// opts may be nil. Any error aborts the decode and no image is returned.
func Decode(data []byte, opts *DecodeOptions) (*Image, error) {
	d, err := newDecoder(data, opts)
	if err != nil {
		return nil, err
	}
	if err := d.decode(false); err != nil {
		return nil, err
	}
	return d.reconstruct(nil)
}

// DecodeInto decodes like Decode but writes the samples into dst, which must
// hold at least Width*Height*Components bytes. The returned image's Pix
// aliases dst.
func DecodeInto(data []byte, dst []byte, opts *DecodeOptions) (*Image, error) {
	d, err := newDecoder(data, opts)
	if err != nil {
		return nil, err
	}
	if err := d.decode(false); err != nil {
		return nil, err
	}
	if dst == nil {
		return nil, fmt.Errorf("%w: nil destination buffer", common.ErrInvalidParameter)
	}
	return d.reconstruct(dst)
}

// DecodeBestEffort decodes as much of the stream as it can. It returns the
// image reconstructed from every coefficient decoded before the first error,
// together with that error. The image is nil only when the stream fails
// before the frame dimensions are known.
func DecodeBestEffort(data []byte, opts *DecodeOptions) (*Image, error) {
	d, err := newDecoder(data, opts)
	if err != nil {
		return nil, err
	}
	decodeErr := d.decode(false)
	if d.header == nil {
		return nil, decodeErr
	}
	if d.frame == nil {
		if d.frame, err = newFrame(d.header, d.height); err != nil {
			// The height was to come from a DNL that could not be found.
			return nil, decodeErr
		}
	}
	img, err := d.reconstruct(nil)
	if err != nil {
		return nil, err
	}
	return img, decodeErr
}

// DecodeConfig reads the frame header without decoding any scan.
func DecodeConfig(data []byte) (*Config, error) {
	d, err := newDecoder(data, nil)
	if err != nil {
		return nil, err
	}
	if err := d.decode(true); err != nil {
		return nil, err
	}
	model, err := d.colorModel()
	if err != nil {
		return nil, err
	}
	return &Config{
		Width:           int(d.header.Width),
		Height:          d.height,
		ColorModel:      model,
		Progressive:     d.header.Progressive(),
		Precision:       int(d.header.Precision),
		Sampling:        append([]segment.ComponentSpec(nil), d.header.Components...),
		RestartInterval: d.restartInterval,
	}, nil
}

// decode runs the marker state machine until EOI. With headerOnly set it
// stops at the first scan header, so tables and DRI between SOF and SOS are
// still seen.
func (d *decoder) decode(headerOnly bool) error {
	for d.state != stateEOI {
		marker, err := d.r.ReadMarker()
		if err != nil {
			if headerOnly && d.header != nil {
				return nil
			}
			return err
		}
		if headerOnly && d.header != nil && marker == common.MarkerSOS {
			return nil
		}
		if err := d.handleMarker(marker); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) unexpected(marker uint16) error {
	return fmt.Errorf("%w: %s while %s", common.ErrMalformedSegment, common.MarkerName(marker), d.state)
}

func (d *decoder) handleMarker(marker uint16) error {
	if d.state == stateExpectSOI {
		if marker != common.MarkerSOI {
			return fmt.Errorf("%w: stream starts with %s instead of SOI", common.ErrMalformedSegment, common.MarkerName(marker))
		}
		if d.r.Pos() != 2 {
			return fmt.Errorf("%w: %d bytes precede SOI", common.ErrMalformedSegment, d.r.Pos()-2)
		}
		d.state = stateReadingTables
		return nil
	}
	if err := segment.CheckSupported(marker); err != nil {
		return err
	}

	switch {
	case marker == common.MarkerEOI:
		return d.handleEOI()
	case marker == common.MarkerSOI, common.IsRST(marker):
		return d.unexpected(marker)
	}

	payload, err := d.r.ReadSegment()
	if err != nil {
		return fmt.Errorf("%s: %w", common.MarkerName(marker), err)
	}

	switch {
	case marker == common.MarkerDQT:
		tables, err := segment.ParseDQT(payload)
		if err != nil {
			return err
		}
		d.tables.addQuant(tables)
	case marker == common.MarkerDHT:
		specs, err := segment.ParseDHT(payload)
		if err != nil {
			return err
		}
		if err := d.tables.addHuffman(specs); err != nil {
			return fmt.Errorf("DHT: %w", err)
		}
	case marker == common.MarkerDRI:
		ri, err := segment.ParseDRI(payload)
		if err != nil {
			return err
		}
		d.restartInterval = int(ri)
	case common.IsSOF(marker):
		return d.handleSOF(marker, payload)
	case marker == common.MarkerSOS:
		return d.handleSOS(payload)
	case marker == common.MarkerDNL:
		return d.handleDNL(payload)
	case marker == common.MarkerAPP14:
		if info, ok := segment.ParseAdobe(payload); ok {
			d.adobe = &info
		}
	case marker == common.MarkerAPP0:
		if j, ok := segment.ParseJFIF(payload); ok {
			d.jfif = &j
		}
	}
	// Other APPn and COM segments are skipped.
	return nil
}

func (d *decoder) handleSOF(marker uint16, payload []byte) error {
	if d.state != stateReadingTables {
		return d.unexpected(marker)
	}
	d.state = stateReadingFrameHeader
	h, err := segment.ParseSOF(marker, payload)
	if err != nil {
		return err
	}
	height := int(h.Height)
	if height == 0 {
		if height, err = findDNL(d.data, d.r.Pos()); err != nil {
			d.header = h
			return err
		}
	}
	if limit := d.opts.MaxPixels; limit > 0 && int(h.Width)*height > limit {
		return fmt.Errorf("%w: %dx%d frame exceeds the %d pixel limit", common.ErrInvalidParameter, h.Width, height, limit)
	}
	d.header = h
	d.height = height
	d.state = stateReadingScanHeader
	return nil
}

func (d *decoder) handleSOS(payload []byte) error {
	if d.state != stateReadingScanHeader {
		return d.unexpected(common.MarkerSOS)
	}
	if d.frame == nil {
		f, err := newFrame(d.header, d.height)
		if err != nil {
			return err
		}
		d.frame = f
		d.covered = make([]bool, len(f.comps))
		d.progress = newProgression(len(f.comps))
	}

	h, err := segment.ParseSOS(payload)
	if err != nil {
		return err
	}
	s, err := d.setupScan(h)
	if err != nil {
		return fmt.Errorf("scan %d: %w", d.scans, err)
	}

	d.state = stateDecodingEntropyData
	end, err := d.decodeScan(s, d.r.Pos())
	if err != nil {
		return fmt.Errorf("scan %d: %w", d.scans, err)
	}
	d.r.SetPos(end)
	d.scans++
	d.state = stateReadingScanHeader
	return nil
}

func (d *decoder) handleDNL(payload []byte) error {
	if d.state != stateReadingScanHeader || d.scans != 1 || d.dnl {
		return d.unexpected(common.MarkerDNL)
	}
	lines, err := segment.ParseDNL(payload)
	if err != nil {
		return err
	}
	if d.header.Height == 0 && int(lines) != d.height {
		return fmt.Errorf("%w: DNL defines %d lines, expected %d", common.ErrMalformedSegment, lines, d.height)
	}
	d.dnl = true
	return nil
}

func (d *decoder) handleEOI() error {
	if d.state != stateReadingScanHeader || d.scans == 0 {
		return d.unexpected(common.MarkerEOI)
	}
	for _, c := range d.frame.comps {
		if c.quant == nil {
			return fmt.Errorf("%w: component %d is not coded by any scan", common.ErrMalformedSegment, c.id)
		}
	}
	d.state = stateEOI
	return nil
}

// colorModel chooses the color model from the frame header and markers.
func (d *decoder) colorModel() (common.ColorModel, error) {
	var transform uint8
	if d.adobe != nil {
		transform = d.adobe.Transform
	}
	return common.DetectColorModel(len(d.header.Components), d.adobe != nil, transform, d.header.IDs())
}
