package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// progression tracks, per component and zig-zag index, the Al of the last
// progressive scan that coded the coefficient, or -1.
type progression [][64]int8

func newProgression(components int) progression {
	p := make(progression, components)
	for i := range p {
		for k := range p[i] {
			p[i][k] = -1
		}
	}
	return p
}

// advance validates a progressive scan over the components with the given
// frame indices and records it. Refinement scans must lower the point
// transform by one bit; first scans may not recode a coefficient.
func (p progression) advance(comps []int, ss, se, ah, al uint8) error {
	if ss == 0 {
		if se != 0 {
			return fmt.Errorf("%w: DC scan with Se=%d", common.ErrMalformedSegment, se)
		}
	} else {
		if se < ss || se > 63 {
			return fmt.Errorf("%w: spectral selection %d..%d", common.ErrMalformedSegment, ss, se)
		}
		if len(comps) != 1 {
			return fmt.Errorf("%w: AC scan with %d components", common.ErrMalformedSegment, len(comps))
		}
	}
	if ah > 13 || al > 13 {
		return fmt.Errorf("%w: successive approximation Ah=%d Al=%d", common.ErrMalformedSegment, ah, al)
	}
	if ah != 0 && al != ah-1 {
		return fmt.Errorf("%w: refinement from bit %d to %d", common.ErrMalformedSegment, ah, al)
	}

	for _, ci := range comps {
		bits := &p[ci]
		if ss > 0 && bits[0] < 0 {
			return fmt.Errorf("%w: AC scan of component %d before its DC scan", common.ErrMalformedSegment, ci)
		}
		for k := ss; k <= se; k++ {
			prev := bits[k]
			if ah == 0 && prev >= 0 {
				return fmt.Errorf("%w: coefficient %d of component %d coded twice", common.ErrMalformedSegment, k, ci)
			}
			if ah != 0 && prev != int8(ah) {
				return fmt.Errorf("%w: refinement of coefficient %d of component %d does not continue from bit %d", common.ErrMalformedSegment, k, ci, ah)
			}
		}
	}
	for _, ci := range comps {
		for k := ss; k <= se; k++ {
			p[ci][k] = int8(al)
		}
	}
	return nil
}
