package jpeg

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// scan is a validated scan header bound to the frame's components and the
// active Huffman tables.
type scan struct {
	header       *segment.ScanHeader
	comps        []*component
	dc, ac       []*common.HuffmanTable
	mcusX, mcusY int
}

// entropyState is the per-interval decoding state. Parallel restart-interval
// decoding gives every goroutine its own.
type entropyState struct {
	br     *common.BitReader
	preds  [4]int32 // DC predictors, indexed by scan component
	eobrun int
}

func (st *entropyState) resetPredictors() {
	st.preds = [4]int32{}
	st.eobrun = 0
}

func (d *decoder) setupScan(h *segment.ScanHeader) (*scan, error) {
	f := d.frame
	s := &scan{
		header: h,
		comps:  make([]*component, len(h.Components)),
		dc:     make([]*common.HuffmanTable, len(h.Components)),
		ac:     make([]*common.HuffmanTable, len(h.Components)),
	}
	prev := -1
	for i, sc := range h.Components {
		c := f.component(sc.ID)
		if c == nil {
			return nil, fmt.Errorf("%w: scan references unknown component %d", common.ErrMalformedSegment, sc.ID)
		}
		if c.index <= prev {
			return nil, fmt.Errorf("%w: scan components out of frame order", common.ErrMalformedSegment)
		}
		prev = c.index
		s.comps[i] = c
	}
	if len(s.comps) > 1 && blocksPerMCU(s.comps) > 10 {
		return nil, fmt.Errorf("%w: %d blocks per MCU", common.ErrMalformedSegment, blocksPerMCU(s.comps))
	}

	// A non-interleaved scan codes the blocks covering the component's
	// samples; an interleaved scan codes whole MCUs.
	if len(s.comps) == 1 {
		s.mcusX, s.mcusY = s.comps[0].blocksW, s.comps[0].blocksH
	} else {
		s.mcusX, s.mcusY = f.mcusX, f.mcusY
	}

	var needDC, needAC bool
	var err error
	if d.header.Progressive() {
		needDC, needAC, err = d.checkProgression(s)
	} else {
		needDC, needAC, err = d.checkSequential(s)
	}
	if err != nil {
		return nil, err
	}

	for i, sc := range h.Components {
		c := s.comps[i]
		if needDC {
			if s.dc[i] = d.tables.dc[sc.Td]; s.dc[i] == nil {
				return nil, fmt.Errorf("%w: component %d uses undefined DC table %d", common.ErrMalformedSegment, c.id, sc.Td)
			}
		}
		if needAC {
			if s.ac[i] = d.tables.ac[sc.Ta]; s.ac[i] == nil {
				return nil, fmt.Errorf("%w: component %d uses undefined AC table %d", common.ErrMalformedSegment, c.id, sc.Ta)
			}
		}
		if c.quant == nil {
			if c.quant = d.tables.quant[c.tq]; c.quant == nil {
				return nil, fmt.Errorf("%w: component %d uses undefined quantization table %d", common.ErrMalformedSegment, c.id, c.tq)
			}
		}
	}
	return s, nil
}

func (d *decoder) checkSequential(s *scan) (needDC, needAC bool, err error) {
	h := s.header
	if h.Ss != 0 || h.Se != 63 || h.Ah != 0 || h.Al != 0 {
		return false, false, fmt.Errorf("%w: sequential scan with Ss=%d Se=%d Ah=%d Al=%d", common.ErrMalformedSegment, h.Ss, h.Se, h.Ah, h.Al)
	}
	for _, c := range s.comps {
		if d.covered[c.index] {
			return false, false, fmt.Errorf("%w: component %d coded by two scans", common.ErrMalformedSegment, c.id)
		}
		d.covered[c.index] = true
	}
	return true, true, nil
}

// decodeScan decodes the entropy-coded segment starting at offset start and
// returns the offset of the marker that ends it.
func (d *decoder) decodeScan(s *scan, start int) (int, error) {
	if d.opts.Concurrency > 1 && d.restartInterval > 0 && !d.header.Progressive() {
		if end, ok, err := d.decodeParallel(s, start); ok {
			return end, err
		}
	}

	st := &entropyState{br: common.NewBitReader(d.data[start:])}
	total := s.mcusX * s.mcusY
	var err error
	if d.header.Progressive() {
		err = d.decodeProgressive(s, st, total)
	} else {
		err = d.decodeMCUs(s, st, 0, total)
	}
	if err != nil {
		return 0, err
	}

	// Bytes between the last MCU and the next marker are skipped.
	off, err := st.br.SkipToMarker()
	if err != nil {
		return 0, err
	}
	return start + off, nil
}

// entropyError classifies a failure inside MCU m. Running into a marker in
// the middle of an MCU means the entropy-coded data was cut short.
func entropyError(m int, err error) error {
	if errors.Is(err, common.ErrMarkerEncountered) {
		return fmt.Errorf("%w: MCU %d: %w", common.ErrTruncatedStream, m, err)
	}
	return fmt.Errorf("MCU %d: %w", m, err)
}

// restart consumes the restart marker that precedes MCU m.
func (d *decoder) restart(st *entropyState, m int) error {
	if err := st.br.Restart((m/d.restartInterval - 1) % 8); err != nil {
		return fmt.Errorf("before MCU %d: %w", m, err)
	}
	st.resetPredictors()
	return nil
}

// decodeMCUs decodes MCUs [first, last) of a sequential scan. first is 0 or
// the first MCU of a restart interval.
func (d *decoder) decodeMCUs(s *scan, st *entropyState, first, last int) error {
	ri := d.restartInterval
	for m := first; m < last; m++ {
		if ri > 0 && m > first && m%ri == 0 {
			if err := d.restart(st, m); err != nil {
				return err
			}
		}
		if err := s.decodeMCU(st, m); err != nil {
			return entropyError(m, err)
		}
	}
	return nil
}

func (s *scan) decodeMCU(st *entropyState, m int) error {
	mx, my := m%s.mcusX, m/s.mcusX
	if len(s.comps) == 1 {
		return s.decodeBlock(st, 0, s.comps[0].block(mx, my))
	}
	for i, c := range s.comps {
		for y := 0; y < c.v; y++ {
			for x := 0; x < c.h; x++ {
				if err := s.decodeBlock(st, i, c.block(mx*c.h+x, my*c.v+y)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// decodeBlock decodes one sequential block into zig-zag order.
func (s *scan) decodeBlock(st *entropyState, i int, blk []int32) error {
	t, err := s.dc[i].Decode(st.br)
	if err != nil {
		return err
	}
	if t > 11 {
		return fmt.Errorf("%w: DC magnitude category %d", common.ErrInvalidHuffmanCode, t)
	}
	diff, err := st.br.ReceiveExtend(t)
	if err != nil {
		return err
	}
	st.preds[i] += diff
	blk[0] = st.preds[i]

	ac := s.ac[i]
	for k := 1; k < 64; {
		rs, err := ac.Decode(st.br)
		if err != nil {
			return err
		}
		r, size := int(rs>>4), rs&0x0F
		if size == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16 // ZRL
			continue
		}
		k += r // Skip run of zeros
		if k > 63 {
			return fmt.Errorf("%w: AC coefficient index %d past the end of the block", common.ErrInvalidHuffmanCode, k)
		}
		v, err := st.br.ReceiveExtend(size)
		if err != nil {
			return err
		}
		blk[k] = v
		k++
	}
	return nil
}

// span is one restart interval of entropy-coded data, excluding markers.
type span struct {
	start, end int
}

// findRestarts splits the entropy-coded segment at start into intervals at
// its restart markers. It returns the intervals and the offset of the marker
// ending the segment; ok is false if the segment does not contain exactly
// want intervals with correctly numbered markers.
func findRestarts(data []byte, start, want int) (spans []span, end int, ok bool) {
	spans = make([]span, 0, want)
	segStart := start
	lastEnd := -1
	for p := start; p < len(data); p++ {
		if data[p] != 0xFF {
			continue
		}
		q := p + 1
		for q < len(data) && data[q] == 0xFF {
			q++
		}
		if q >= len(data) {
			return nil, 0, false
		}
		m := data[q]
		switch {
		case m == 0x00:
		case common.IsRST(0xFF00 | uint16(m)):
			if len(spans) == want-1 && lastEnd < 0 {
				// A marker after the last interval; the sequential path
				// skips it too.
				lastEnd = p
				break
			}
			if lastEnd >= 0 || m != byte(0xD0+len(spans)%8) {
				return nil, 0, false
			}
			spans = append(spans, span{segStart, p})
			segStart = q + 1
		default:
			if len(spans) != want-1 {
				return nil, 0, false
			}
			if lastEnd < 0 {
				lastEnd = p
			}
			return append(spans, span{segStart, lastEnd}), p, true
		}
		p = q
	}
	return nil, 0, false
}

// decodeParallel decodes the restart intervals of a sequential scan on
// several goroutines. ok is false when the segment cannot be split, in which
// case the caller decodes it sequentially.
func (d *decoder) decodeParallel(s *scan, start int) (end int, ok bool, err error) {
	total := s.mcusX * s.mcusY
	ri := d.restartInterval
	n := ceilDiv(total, ri)
	spans, end, ok := findRestarts(d.data, start, n)
	if !ok {
		return 0, false, nil
	}

	errs := make([]error, n)
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(d.opts.Concurrency, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				st := &entropyState{br: common.NewBitReader(d.data[spans[i].start:spans[i].end])}
				first := i * ri
				errs[i] = d.decodeMCUs(s, st, first, min(first+ri, total))
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, true, err
		}
	}
	return end, true, nil
}
