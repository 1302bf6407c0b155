package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

const (
	// maxEOBRun is the longest EOB run an EOBn symbol can express.
	maxEOBRun = 0x7FFF
	// maxCorrectionBits bounds the refinement bits buffered during an EOB
	// run.
	maxCorrectionBits = 1000
)

// scanPlan is one scan of an encode bound to the frame's components.
type scanPlan struct {
	spec         ScanSpec
	header       *segment.ScanHeader
	comps        []*component
	dc, ac       []uint8 // Table ids per scan component
	mcusX, mcusY int
}

func (e *encoder) planScan(spec ScanSpec) *scanPlan {
	s := &scanPlan{
		spec:   spec,
		header: &segment.ScanHeader{Ss: spec.Ss, Se: spec.Se, Ah: spec.Ah, Al: spec.Al},
	}
	for _, ci := range spec.Components {
		c := e.frame.comps[ci]
		s.comps = append(s.comps, c)
		s.dc = append(s.dc, c.tq)
		s.ac = append(s.ac, c.tq)
		s.header.Components = append(s.header.Components, segment.ScanComponent{ID: c.id, Td: c.tq, Ta: c.tq})
	}
	if len(s.comps) == 1 {
		s.mcusX, s.mcusY = s.comps[0].blocksW, s.comps[0].blocksH
	} else {
		s.mcusX, s.mcusY = e.frame.mcusX, e.frame.mcusY
	}
	return s
}

// scanScript returns the scans to write: one interleaved scan for a
// sequential frame, otherwise the configured or default progression.
func (e *encoder) scanScript() ([]ScanSpec, error) {
	n := len(e.frame.comps)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	if !e.opts.Progressive {
		return []ScanSpec{{Components: all, Ss: 0, Se: 63}}, nil
	}

	script := e.opts.ScanScript
	if len(script) == 0 {
		script = defaultScript(e.model, all)
	}
	p := newProgression(n)
	for i, s := range script {
		if err := e.checkScanSpec(s); err != nil {
			return nil, fmt.Errorf("%w: scan %d: %v", common.ErrInvalidParameter, i, err)
		}
		if err := p.advance(s.Components, s.Ss, s.Se, s.Ah, s.Al); err != nil {
			return nil, fmt.Errorf("%w: scan %d: %v", common.ErrInvalidParameter, i, err)
		}
	}
	for ci := range p {
		if p[ci][0] < 0 {
			return nil, fmt.Errorf("%w: scan script never codes the DC of component %d", common.ErrInvalidParameter, ci)
		}
	}
	return script, nil
}

func (e *encoder) checkScanSpec(s ScanSpec) error {
	if len(s.Components) == 0 || len(s.Components) > 4 {
		return fmt.Errorf("%d components", len(s.Components))
	}
	prev := -1
	comps := make([]*component, 0, len(s.Components))
	for _, ci := range s.Components {
		if ci <= prev || ci >= len(e.frame.comps) {
			return fmt.Errorf("component index %d out of range or order", ci)
		}
		prev = ci
		comps = append(comps, e.frame.comps[ci])
	}
	if len(comps) > 1 && blocksPerMCU(comps) > 10 {
		return fmt.Errorf("%d blocks per MCU", blocksPerMCU(comps))
	}
	return nil
}

// DefaultScanScript returns the progressive script Encode uses for model
// when EncodeOptions.ScanScript is empty.
func DefaultScanScript(model common.ColorModel) []ScanSpec {
	all := make([]int, model.Components())
	for i := range all {
		all[i] = i
	}
	return defaultScript(model, all)
}

// defaultScript returns the libjpeg progression: the simple progression for
// YCbCr and a generic one for other models.
func defaultScript(model common.ColorModel, all []int) []ScanSpec {
	if model == common.ColorYCbCr {
		return []ScanSpec{
			{Components: all, Ss: 0, Se: 0, Ah: 0, Al: 1},
			{Components: []int{0}, Ss: 1, Se: 5, Ah: 0, Al: 2},
			{Components: []int{2}, Ss: 1, Se: 63, Ah: 0, Al: 1},
			{Components: []int{1}, Ss: 1, Se: 63, Ah: 0, Al: 1},
			{Components: []int{0}, Ss: 6, Se: 63, Ah: 0, Al: 2},
			{Components: []int{0}, Ss: 1, Se: 63, Ah: 2, Al: 1},
			{Components: all, Ss: 0, Se: 0, Ah: 1, Al: 0},
			{Components: []int{2}, Ss: 1, Se: 63, Ah: 1, Al: 0},
			{Components: []int{1}, Ss: 1, Se: 63, Ah: 1, Al: 0},
			{Components: []int{0}, Ss: 1, Se: 63, Ah: 1, Al: 0},
		}
	}

	script := []ScanSpec{{Components: all, Ss: 0, Se: 0, Ah: 0, Al: 1}}
	for _, ci := range all {
		script = append(script,
			ScanSpec{Components: []int{ci}, Ss: 1, Se: 5, Ah: 0, Al: 2},
			ScanSpec{Components: []int{ci}, Ss: 6, Se: 63, Ah: 0, Al: 2})
	}
	for _, ci := range all {
		script = append(script, ScanSpec{Components: []int{ci}, Ss: 1, Se: 63, Ah: 2, Al: 1})
	}
	script = append(script, ScanSpec{Components: all, Ss: 0, Se: 0, Ah: 1, Al: 0})
	for _, ci := range all {
		script = append(script, ScanSpec{Components: []int{ci}, Ss: 1, Se: 63, Ah: 1, Al: 0})
	}
	return script
}

// entropyEncoder writes Huffman-coded scan data. Without a bit writer it
// only counts symbols, which is the first pass of table optimization.
type entropyEncoder struct {
	w     *common.BitWriter
	codes [2][4]*common.HuffmanCodes
	freq  [2][4]*common.HuffmanFrequencies
	err   error // First symbol without a code

	preds     [4]int32 // DC predictors, indexed by scan component
	maxEOBRun int
	eobrun    int
	eobTable  uint8
	pending   []byte // Correction bits owed after the EOB run
}

// reset clears the coding state between the counting and writing passes.
func (ee *entropyEncoder) reset() {
	ee.preds = [4]int32{}
	ee.eobrun = 0
	ee.pending = ee.pending[:0]
}

func (ee *entropyEncoder) emit(class common.HuffmanClass, id uint8, sym byte) {
	if ee.w == nil {
		ee.freq[class][id].Add(sym)
		return
	}
	if err := ee.w.WriteSymbol(ee.codes[class][id], sym); err != nil && ee.err == nil {
		ee.err = err
	}
}

func (ee *entropyEncoder) bits(v uint32, n int) {
	if ee.w != nil {
		ee.w.WriteBits(v, n)
	}
}

// value writes a run/size symbol followed by the magnitude bits of v.
func (ee *entropyEncoder) value(class common.HuffmanClass, id uint8, run int, v int32) {
	cat, bits := common.EncodeCategory(v)
	ee.emit(class, id, byte(run<<4)|cat)
	ee.bits(bits, int(cat))
}

// encodeScan codes every MCU of the scan, inserting restart markers.
func (e *encoder) encodeScan(s *scanPlan, ee *entropyEncoder) {
	var block func(ee *entropyEncoder, s *scanPlan, i int, blk []int32)
	h := s.header
	switch {
	case !e.opts.Progressive:
		block = encodeSequential
	case h.Ss == 0 && h.Ah == 0:
		block = encodeDCFirst
	case h.Ss == 0:
		block = encodeDCRefine
	case h.Ah == 0:
		block = encodeACFirst
	default:
		block = encodeACRefine
	}

	total := s.mcusX * s.mcusY
	ri := e.opts.RestartInterval
	for m := 0; m < total; m++ {
		if ri > 0 && m > 0 && m%ri == 0 {
			ee.flushEOBRun()
			if ee.w != nil {
				ee.w.Restart(m/ri - 1)
			}
			ee.preds = [4]int32{}
		}
		mx, my := m%s.mcusX, m/s.mcusX
		if len(s.comps) == 1 {
			block(ee, s, 0, s.comps[0].block(mx, my))
			continue
		}
		for i, c := range s.comps {
			for y := 0; y < c.v; y++ {
				for x := 0; x < c.h; x++ {
					block(ee, s, i, c.block(mx*c.h+x, my*c.v+y))
				}
			}
		}
	}
	ee.flushEOBRun()
	if ee.w != nil {
		ee.w.Flush()
	}
}

// encodeSequential codes one block of a sequential scan.
func encodeSequential(ee *entropyEncoder, s *scanPlan, i int, blk []int32) {
	diff := blk[0] - ee.preds[i]
	ee.preds[i] = blk[0]
	ee.value(common.ClassDC, s.dc[i], 0, diff)

	id := s.ac[i]
	run := 0
	for k := 1; k < 64; k++ {
		if blk[k] == 0 {
			run++
			continue
		}
		for run > 15 {
			ee.emit(common.ClassAC, id, 0xF0) // ZRL
			run -= 16
		}
		ee.value(common.ClassAC, id, run, blk[k])
		run = 0
	}
	if run > 0 {
		ee.emit(common.ClassAC, id, 0x00) // EOB
	}
}
