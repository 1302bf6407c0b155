package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// checkProgression validates a progressive scan header against the
// coefficients already coded and records the new state.
func (d *decoder) checkProgression(s *scan) (needDC, needAC bool, err error) {
	h := s.header
	indices := make([]int, len(s.comps))
	for i, c := range s.comps {
		indices[i] = c.index
	}
	if err := d.progress.advance(indices, h.Ss, h.Se, h.Ah, h.Al); err != nil {
		return false, false, err
	}
	return h.Ss == 0 && h.Ah == 0, h.Ss > 0, nil
}

// decodeProgressive decodes all MCUs of one progressive scan into the
// coefficient store.
func (d *decoder) decodeProgressive(s *scan, st *entropyState, total int) error {
	h := s.header
	var decode func(st *entropyState, i int, blk []int32) error
	switch {
	case h.Ss == 0 && h.Ah == 0:
		decode = s.decodeDCFirst
	case h.Ss == 0:
		decode = s.decodeDCRefine
	case h.Ah == 0:
		decode = s.decodeACFirst
	default:
		decode = s.decodeACRefine
	}

	ri := d.restartInterval
	for m := 0; m < total; m++ {
		if ri > 0 && m > 0 && m%ri == 0 {
			if err := d.restart(st, m); err != nil {
				return err
			}
		}
		mx, my := m%s.mcusX, m/s.mcusX
		if len(s.comps) == 1 {
			if err := decode(st, 0, s.comps[0].block(mx, my)); err != nil {
				return entropyError(m, err)
			}
			continue
		}
		for i, c := range s.comps {
			for y := 0; y < c.v; y++ {
				for x := 0; x < c.h; x++ {
					if err := decode(st, i, c.block(mx*c.h+x, my*c.v+y)); err != nil {
						return entropyError(m, err)
					}
				}
			}
		}
	}
	return nil
}

func (s *scan) decodeDCFirst(st *entropyState, i int, blk []int32) error {
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
	blk[0] = st.preds[i] << s.header.Al
	return nil
}

func (s *scan) decodeDCRefine(st *entropyState, _ int, blk []int32) error {
	bit, err := st.br.NextBit()
	if err != nil {
		return err
	}
	if bit != 0 {
		blk[0] |= 1 << s.header.Al
	}
	return nil
}

func (s *scan) decodeACFirst(st *entropyState, i int, blk []int32) error {
	if st.eobrun > 0 {
		st.eobrun--
		return nil
	}
	h := s.header
	ac := s.ac[i]
	for k := int(h.Ss); k <= int(h.Se); {
		rs, err := ac.Decode(st.br)
		if err != nil {
			return err
		}
		r, size := int(rs>>4), rs&0x0F
		if size == 0 {
			if r == 15 {
				k += 16 // ZRL
				continue
			}
			// EOBr: this block plus 2^r - 1 + appended bits more.
			run := 1<<r - 1
			if r > 0 {
				bits, err := st.br.NextBits(r)
				if err != nil {
					return err
				}
				run += int(bits)
			}
			st.eobrun = run
			return nil
		}
		k += r
		if k > int(h.Se) {
			return fmt.Errorf("%w: AC coefficient index %d past spectral end %d", common.ErrInvalidHuffmanCode, k, h.Se)
		}
		v, err := st.br.ReceiveExtend(size)
		if err != nil {
			return err
		}
		blk[k] = v << h.Al
		k++
	}
	return nil
}

// refine appends one correction bit to a nonzero coefficient.
func refine(br *common.BitReader, c *int32, p1 int32) error {
	bit, err := br.NextBit()
	if err != nil {
		return err
	}
	if bit != 0 && *c&p1 == 0 {
		if *c >= 0 {
			*c += p1
		} else {
			*c -= p1
		}
	}
	return nil
}

func (s *scan) decodeACRefine(st *entropyState, i int, blk []int32) error {
	h := s.header
	se := int(h.Se)
	p1 := int32(1) << h.Al
	k := int(h.Ss)

	if st.eobrun == 0 {
		ac := s.ac[i]
		for ; k <= se; k++ {
			rs, err := ac.Decode(st.br)
			if err != nil {
				return err
			}
			r, size := int(rs>>4), rs&0x0F
			var z int32
			switch size {
			case 0:
				if r != 15 {
					st.eobrun = 1 << r
					if r > 0 {
						bits, err := st.br.NextBits(r)
						if err != nil {
							return err
						}
						st.eobrun += int(bits)
					}
				}
				// ZRL skips 16 zero coefficients, refining nonzero ones.
			case 1:
				bit, err := st.br.NextBit()
				if err != nil {
					return err
				}
				z = -p1
				if bit != 0 {
					z = p1
				}
			default:
				return fmt.Errorf("%w: refinement symbol 0x%02X", common.ErrInvalidHuffmanCode, rs)
			}
			if st.eobrun > 0 {
				break
			}

			// Advance over nonzero coefficients, appending correction bits,
			// and over r zero coefficients.
			for ; k <= se; k++ {
				if blk[k] != 0 {
					if err := refine(st.br, &blk[k], p1); err != nil {
						return err
					}
					continue
				}
				if r == 0 {
					break
				}
				r--
			}
			if z != 0 {
				if k > se {
					return fmt.Errorf("%w: new coefficient past spectral end %d", common.ErrInvalidHuffmanCode, se)
				}
				blk[k] = z
			}
		}
	}

	if st.eobrun > 0 {
		for ; k <= se; k++ {
			if blk[k] != 0 {
				if err := refine(st.br, &blk[k], p1); err != nil {
					return err
				}
			}
		}
		st.eobrun--
	}
	return nil
}
