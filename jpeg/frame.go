package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// component tracks one component's geometry and coefficient store.
type component struct {
	id    uint8
	index int // Position in the frame
	h, v  int // Sampling factors
	tq    uint8

	width, height    int // Size in samples: ceil(frame size * factor / max factor)
	blocksW, blocksH int // Blocks covering the samples, visited by non-interleaved scans
	gridW, gridH     int // Blocks covering whole MCUs, visited by interleaved scans

	// coeffs holds quantized coefficients in zig-zag order, 64 per block,
	// row-major over the block grid.
	coeffs []int32

	// quant is latched by the first scan that codes the component, so a later
	// DQT for the same slot does not affect it.
	quant *common.QuantTable
}

// block returns the coefficients of block (bx, by).
func (c *component) block(bx, by int) []int32 {
	off := (by*c.gridW + bx) * 64
	return c.coeffs[off : off+64 : off+64]
}

// frame is the component plane manager for one decode or encode session.
type frame struct {
	header       *segment.FrameHeader
	width        int
	height       int
	hmax, vmax   int
	mcusX, mcusY int
	comps        []*component
}

func newFrame(h *segment.FrameHeader, height int) (*frame, error) {
	if height <= 0 {
		return nil, fmt.Errorf("%w: frame height %d", common.ErrMalformedSegment, height)
	}
	f := &frame{
		header: h,
		width:  int(h.Width),
		height: height,
	}
	f.hmax, f.vmax = h.MaxSampling()
	f.mcusX = ceilDiv(f.width, 8*f.hmax)
	f.mcusY = ceilDiv(f.height, 8*f.vmax)

	f.comps = make([]*component, len(h.Components))
	for i, spec := range h.Components {
		c := &component{
			id:    spec.ID,
			index: i,
			h:     int(spec.H),
			v:     int(spec.V),
			tq:    spec.Tq,
		}
		if err := common.ValidateSampling(c.h, c.v, f.hmax, f.vmax); err != nil {
			return nil, err
		}
		c.width = ceilDiv(f.width*c.h, f.hmax)
		c.height = ceilDiv(f.height*c.v, f.vmax)
		c.blocksW = ceilDiv(c.width, 8)
		c.blocksH = ceilDiv(c.height, 8)
		c.gridW = f.mcusX * c.h
		c.gridH = f.mcusY * c.v
		c.coeffs = make([]int32, c.gridW*c.gridH*64)
		f.comps[i] = c
	}
	return f, nil
}

// component returns the component with the given id, or nil.
func (f *frame) component(id uint8) *component {
	for _, c := range f.comps {
		if c.id == id {
			return c
		}
	}
	return nil
}

// blocksPerMCU returns the number of blocks in one MCU of an interleaved
// scan over comps.
func blocksPerMCU(comps []*component) int {
	n := 0
	for _, c := range comps {
		n += c.h * c.v
	}
	return n
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
