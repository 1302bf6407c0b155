package jpeg

import (
	"math/bits"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// flushEOBRun writes the pending EOB run and the correction bits that
// belong to it.
func (ee *entropyEncoder) flushEOBRun() {
	if ee.eobrun == 0 {
		return
	}
	n := bits.Len(uint(ee.eobrun)) - 1
	ee.emit(common.ClassAC, ee.eobTable, byte(n<<4))
	if n > 0 {
		ee.bits(uint32(ee.eobrun)&(1<<n-1), n)
	}
	ee.eobrun = 0
	ee.correction(ee.pending)
	ee.pending = ee.pending[:0]
}

func (ee *entropyEncoder) correction(cb []byte) {
	for _, b := range cb {
		ee.bits(uint32(b), 1)
	}
}

func encodeDCFirst(ee *entropyEncoder, s *scanPlan, i int, blk []int32) {
	v := blk[0] >> s.header.Al
	diff := v - ee.preds[i]
	ee.preds[i] = v
	ee.value(common.ClassDC, s.dc[i], 0, diff)
}

func encodeDCRefine(ee *entropyEncoder, s *scanPlan, _ int, blk []int32) {
	ee.bits(uint32(blk[0]>>s.header.Al)&1, 1)
}

// pointTransform returns the magnitude of v shifted right by al.
func pointTransform(v int32, al uint8) int32 {
	if v < 0 {
		v = -v
	}
	return v >> al
}

func encodeACFirst(ee *entropyEncoder, s *scanPlan, i int, blk []int32) {
	h := s.header
	id := s.ac[i]
	run := 0
	for k := int(h.Ss); k <= int(h.Se); k++ {
		m := pointTransform(blk[k], h.Al)
		if m == 0 {
			run++
			continue
		}
		if blk[k] < 0 {
			m = -m
		}
		ee.flushEOBRun()
		for run > 15 {
			ee.emit(common.ClassAC, id, 0xF0)
			run -= 16
		}
		ee.value(common.ClassAC, id, run, m)
		run = 0
	}
	if run > 0 {
		ee.eobrun++
		if ee.eobrun == ee.maxEOBRun {
			ee.flushEOBRun()
		}
	}
}

// encodeACRefine adds bit Al to the AC coefficients of one block. Newly
// nonzero coefficients are coded as run/1 symbols with a sign bit; already
// nonzero ones get a correction bit, sent after the next symbol.
func encodeACRefine(ee *entropyEncoder, s *scanPlan, i int, blk []int32) {
	h := s.header
	id := s.ac[i]
	ss, se := int(h.Ss), int(h.Se)

	var abs [64]int32
	eob := 0 // Last newly nonzero coefficient
	for k := ss; k <= se; k++ {
		abs[k] = pointTransform(blk[k], h.Al)
		if abs[k] == 1 {
			eob = k
		}
	}

	var corr [64]byte
	nc := 0
	run := 0
	for k := ss; k <= se; k++ {
		a := abs[k]
		if a == 0 {
			run++
			continue
		}
		// Zero runs after the last new coefficient fold into the EOB.
		for run > 15 && k <= eob {
			ee.flushEOBRun()
			ee.emit(common.ClassAC, id, 0xF0)
			run -= 16
			ee.correction(corr[:nc])
			nc = 0
		}
		if a > 1 {
			corr[nc] = byte(a & 1)
			nc++
			continue
		}
		ee.flushEOBRun()
		ee.emit(common.ClassAC, id, byte(run<<4|1))
		sign := uint32(1)
		if blk[k] < 0 {
			sign = 0
		}
		ee.bits(sign, 1)
		ee.correction(corr[:nc])
		nc = 0
		run = 0
	}

	if run > 0 || nc > 0 {
		ee.eobrun++
		ee.pending = append(ee.pending, corr[:nc]...)
		if ee.eobrun == ee.maxEOBRun || len(ee.pending) > maxCorrectionBits-63 {
			ee.flushEOBRun()
		}
	}
}
