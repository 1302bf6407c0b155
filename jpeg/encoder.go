package jpeg

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// encoder holds all state of one encode session.
type encoder struct {
	opts   EncodeOptions
	model  common.ColorModel
	header *segment.FrameHeader
	frame  *frame
	quant  [2]*common.QuantTable
	// standard holds the codes of the standard tables, by class and id.
	standard [2][2]*common.HuffmanCodes
}

// Encode encodes 8-bit interleaved samples, row-major with a stride of
// width*components. opts may be nil, meaning DefaultEncodeOptions.
//
// Grayscale and YCbCr output carries a JFIF marker. RGB, CMYK and YCCK
// output carries an Adobe marker naming the transform, so that decoders
// pick the same color model.
func Encode(pix []byte, width, height, components int, opts *EncodeOptions) ([]byte, error) {
	enc, err := newEncoder(pix, width, height, components, opts)
	if err != nil {
		return nil, err
	}
	script, err := enc.scanScript()
	if err != nil {
		return nil, err
	}
	return enc.encode(pix, script)
}

func newEncoder(pix []byte, width, height, components int, opts *EncodeOptions) (*encoder, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(components); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, fmt.Errorf("%w: image size %dx%d", common.ErrInvalidParameter, width, height)
	}
	if len(pix) < width*height*components {
		return nil, fmt.Errorf("%w: %d bytes of samples, need %d", common.ErrInvalidParameter, len(pix), width*height*components)
	}
	model, err := opts.colorModel(components)
	if err != nil {
		return nil, err
	}

	enc := &encoder{opts: *opts, model: model}
	if err := enc.setup(width, height); err != nil {
		return nil, err
	}
	return enc, nil
}

// encode transforms the samples and writes the stream with the given scans.
func (e *encoder) encode(pix []byte, script []ScanSpec) ([]byte, error) {
	planes := e.colorPlanes(pix)
	comps := e.frame.comps
	parallel(len(comps), len(comps), func(i int) {
		e.transform(comps[i], planes[i])
	})

	var buf bytes.Buffer
	w := segment.NewWriter(&buf)

	// Write SOI
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}

	// Write JFIF or Adobe
	if err := e.writeColorMarker(w); err != nil {
		return nil, err
	}

	// Write DQT
	tables := []*common.QuantTable{e.quant[0]}
	if e.quant[1] != nil {
		tables = append(tables, e.quant[1])
	}
	if err := w.WriteDQT(tables...); err != nil {
		return nil, err
	}

	// Write SOF0 or SOF2
	if err := w.WriteSOF(e.header); err != nil {
		return nil, err
	}

	// Write DHT, once for the standard tables
	if !e.opts.OptimizeHuffman {
		if err := w.WriteDHT(e.standardSpecs()...); err != nil {
			return nil, err
		}
	}

	// Write DRI
	if e.opts.RestartInterval > 0 {
		if err := w.WriteDRI(uint16(e.opts.RestartInterval)); err != nil {
			return nil, err
		}
	}

	// Write the scans
	for i, spec := range script {
		if err := e.writeScan(w, spec); err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
	}

	// Write EOI
	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// setup builds the frame header, the component planes and the tables.
func (e *encoder) setup(width, height int) error {
	h := &segment.FrameHeader{
		Marker:    common.MarkerSOF0,
		Precision: 8,
		Height:    uint16(height),
		Width:     uint16(width),
	}
	if e.opts.Progressive {
		h.Marker = common.MarkerSOF2
	}

	lh, lv := e.opts.Subsampling.LumaFactors()
	luma := segment.ComponentSpec{ID: 1, H: uint8(lh), V: uint8(lv), Tq: 0}
	switch e.model {
	case common.ColorGrayscale:
		h.Components = []segment.ComponentSpec{{ID: 1, H: 1, V: 1, Tq: 0}}
	case common.ColorYCbCr:
		h.Components = []segment.ComponentSpec{
			luma,
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
		}
	case common.ColorYCCK:
		// K keeps full resolution, like Y.
		h.Components = []segment.ComponentSpec{
			luma,
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
			{ID: 4, H: uint8(lh), V: uint8(lv), Tq: 0},
		}
	case common.ColorRGB:
		h.Components = []segment.ComponentSpec{
			{ID: 'R', H: 1, V: 1, Tq: 0},
			{ID: 'G', H: 1, V: 1, Tq: 0},
			{ID: 'B', H: 1, V: 1, Tq: 0},
		}
	case common.ColorCMYK:
		h.Components = []segment.ComponentSpec{
			{ID: 'C', H: 1, V: 1, Tq: 0},
			{ID: 'M', H: 1, V: 1, Tq: 0},
			{ID: 'Y', H: 1, V: 1, Tq: 0},
			{ID: 'K', H: 1, V: 1, Tq: 0},
		}
	default:
		return fmt.Errorf("%w: color model %v", common.ErrInvalidParameter, e.model)
	}
	e.header = h

	f, err := newFrame(h, height)
	if err != nil {
		return err
	}
	e.frame = f

	if e.quant[0], err = common.ScaleQuantTable(&common.DefaultLuminanceQuantTable, e.opts.Quality, 0); err != nil {
		return err
	}
	for _, c := range h.Components {
		if c.Tq == 1 {
			if e.quant[1], err = common.ScaleQuantTable(&common.DefaultChrominanceQuantTable, e.opts.Quality, 1); err != nil {
				return err
			}
			break
		}
	}

	if !e.opts.OptimizeHuffman {
		for _, spec := range e.standardSpecs() {
			codes, err := common.BuildHuffmanCodes(spec)
			if err != nil {
				return err
			}
			e.standard[spec.Class][spec.ID] = codes
		}
	}
	return nil
}

// standardSpecs returns the standard tables the frame's components select.
func (e *encoder) standardSpecs() []*common.HuffmanSpec {
	specs := []*common.HuffmanSpec{&common.StandardDCLuminance, &common.StandardACLuminance}
	if e.quant[1] != nil {
		specs = append(specs, &common.StandardDCChrominance, &common.StandardACChrominance)
	}
	return specs
}

func (e *encoder) writeColorMarker(w *segment.Writer) error {
	switch e.model {
	case common.ColorGrayscale, common.ColorYCbCr:
		return w.WriteJFIF(segment.DefaultJFIF)
	case common.ColorYCCK:
		return w.WriteAdobe(segment.AdobeInfo{Version: 100, Transform: common.AdobeTransformYCCK})
	}
	return w.WriteAdobe(segment.AdobeInfo{Version: 100, Transform: common.AdobeTransformNone})
}

// colorPlanes splits the interleaved input into full-resolution planes in
// the coded color space. CMYK and the K of YCCK are stored inverted, as
// Adobe writes them.
func (e *encoder) colorPlanes(pix []byte) [][]byte {
	f := e.frame
	n := len(f.comps)
	size := f.width * f.height
	planes := make([][]byte, n)
	for i := range planes {
		planes[i] = make([]byte, size)
	}

	switch {
	case n == 1:
		copy(planes[0], pix[:size])
	case e.model == common.ColorYCbCr && !e.opts.RawInput:
		for i := 0; i < size; i++ {
			p := pix[i*3 : i*3+3]
			planes[0][i], planes[1][i], planes[2][i] = common.RGBToYCbCr(p[0], p[1], p[2])
		}
	case e.model == common.ColorYCCK && !e.opts.RawInput:
		for i := 0; i < size; i++ {
			p := pix[i*4 : i*4+4]
			planes[0][i], planes[1][i], planes[2][i] = common.RGBToYCbCr(255-p[0], 255-p[1], 255-p[2])
			planes[3][i] = 255 - p[3]
		}
	default:
		invert := e.model == common.ColorCMYK
		for i := 0; i < size; i++ {
			for c := 0; c < n; c++ {
				v := pix[i*n+c]
				if invert {
					v = 255 - v
				}
				planes[c][i] = v
			}
		}
	}
	return planes
}

// transform subsamples a full-resolution plane to the component's size and
// fills its coefficient store with quantized DCT blocks. Blocks past the
// edge of the samples repeat the last row and column.
func (e *encoder) transform(c *component, plane []byte) {
	f := e.frame
	src, sw, sh := plane, f.width, f.height
	if fx, fy := f.hmax/c.h, f.vmax/c.v; fx > 1 || fy > 1 {
		sub := make([]byte, c.width*c.height)
		common.Subsample(sub, c.width, c.width, c.height, plane, f.width, f.width, f.height, fx, fy)
		src, sw, sh = sub, c.width, c.height
	}

	q := e.quant[c.tq]
	c.quant = q
	var (
		samples [64]byte
		shifted [64]int32
		coef    [64]int32
	)
	for by := 0; by < c.gridH; by++ {
		for bx := 0; bx < c.gridW; bx++ {
			for y := 0; y < 8; y++ {
				row := src[min(by*8+y, sh-1)*sw:]
				for x := 0; x < 8; x++ {
					samples[y*8+x] = row[min(bx*8+x, sw-1)]
				}
			}
			common.LevelShift(samples[:], 8, &shifted)
			common.ForwardDCT(&shifted, &coef)
			q.Quantize(&coef, c.block(bx, by))
		}
	}
}

// writeScan writes one SOS segment and its entropy-coded data, preceded by
// the scan's own DHT when tables are optimized.
func (e *encoder) writeScan(w *segment.Writer, spec ScanSpec) error {
	s := e.planScan(spec)
	enc := &entropyEncoder{maxEOBRun: 1, eobTable: s.ac[0]}

	if e.opts.OptimizeHuffman {
		enc.maxEOBRun = maxEOBRun
		for class := range enc.freq {
			for id := range enc.freq[class] {
				enc.freq[class][id] = new(common.HuffmanFrequencies)
			}
		}
		e.encodeScan(s, enc)
		if enc.err != nil {
			return enc.err
		}

		var specs []*common.HuffmanSpec
		for class := range enc.freq {
			for id, freq := range enc.freq[class] {
				if freq.Empty() {
					continue
				}
				hs := common.BuildOptimalHuffmanSpec(common.HuffmanClass(class), uint8(id), freq)
				codes, err := common.BuildHuffmanCodes(&hs)
				if err != nil {
					return err
				}
				enc.codes[class][id] = codes
				specs = append(specs, &hs)
			}
		}
		if len(specs) > 0 {
			if err := w.WriteDHT(specs...); err != nil {
				return err
			}
		}
		enc.reset()
	} else {
		for class := range e.standard {
			for id, codes := range e.standard[class] {
				enc.codes[class][id] = codes
			}
		}
	}

	if err := w.WriteSOS(s.header); err != nil {
		return err
	}
	enc.w = common.NewBitWriter(nil)
	e.encodeScan(s, enc)
	if enc.err != nil {
		return enc.err
	}
	_, err := w.Write(enc.w.Bytes())
	return err
}
