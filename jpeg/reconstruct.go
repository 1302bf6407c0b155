package jpeg

import (
	"fmt"
	"sync"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
)

// parallel runs fn(0..n-1) on up to workers goroutines.
func parallel(n, workers int, fn func(i int)) {
	if workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}

// outputModel returns the color model of the delivered samples.
func outputModel(model common.ColorModel, raw bool) common.ColorModel {
	if raw {
		return model
	}
	switch model {
	case common.ColorYCbCr:
		return common.ColorRGB
	case common.ColorYCCK:
		return common.ColorCMYK
	}
	return model
}

// reconstruct dequantizes and inverse transforms the coefficient store,
// upsamples every component to full resolution and converts the result to
// interleaved output samples. dst is optional.
func (d *decoder) reconstruct(dst []byte) (*Image, error) {
	f := d.frame
	model, err := d.colorModel()
	if err != nil {
		return nil, err
	}
	nc := len(f.comps)
	size := f.width * f.height * nc
	if dst == nil {
		dst = make([]byte, size)
	} else if len(dst) < size {
		return nil, fmt.Errorf("%w: destination holds %d bytes, need %d", common.ErrInvalidParameter, len(dst), size)
	}
	dst = dst[:size]

	planes := make([][]byte, nc)
	parallel(nc, d.opts.Concurrency, func(i int) {
		planes[i] = d.componentPlane(f.comps[i])
	})

	raw := d.opts.RawComponents
	invert := model == common.ColorCMYK && d.adobe != nil && d.adobe.Transform == common.AdobeTransformNone && !raw
	rows := 1
	if d.opts.Concurrency > 1 {
		rows = ceilDiv(f.height, d.opts.Concurrency)
	}
	parallel(ceilDiv(f.height, rows), d.opts.Concurrency, func(band int) {
		for y := band * rows; y < min((band+1)*rows, f.height); y++ {
			convertRow(dst[y*f.width*nc:(y+1)*f.width*nc], planes, y*f.width, f.width, model, raw, invert)
		}
	})

	return &Image{
		Width:      f.width,
		Height:     f.height,
		Components: nc,
		ColorModel: outputModel(model, raw),
		Pix:        dst,
	}, nil
}

// componentPlane returns the component's samples at frame resolution with a
// stride of the frame width.
func (d *decoder) componentPlane(c *component) []byte {
	f := d.frame
	stride := c.blocksW * 8
	plane := make([]byte, stride*c.blocksH*8)
	if c.quant == nil {
		// Never coded; only reachable through DecodeBestEffort.
		for i := range plane {
			plane[i] = 128
		}
	} else {
		var natural [64]int32
		for by := 0; by < c.blocksH; by++ {
			for bx := 0; bx < c.blocksW; bx++ {
				c.quant.Dequantize(c.block(bx, by), &natural)
				common.InverseDCT(&natural, plane[by*8*stride+bx*8:], stride)
			}
		}
	}

	out := make([]byte, f.width*f.height)
	common.Upsample(out, f.width, f.width, f.height, plane, stride, c.width, c.height,
		f.hmax/c.h, f.vmax/c.v, d.opts.Upsampling)
	return out
}

// convertRow writes one row of interleaved output samples from the planes,
// starting at plane offset off.
func convertRow(out []byte, planes [][]byte, off, width int, model common.ColorModel, raw, invert bool) {
	switch {
	case len(planes) == 1:
		copy(out, planes[0][off:off+width])
	case model == common.ColorYCbCr && !raw:
		common.YCbCrToRGBRow(out, planes[0][off:off+width], planes[1][off:off+width], planes[2][off:off+width])
	case model == common.ColorYCCK && !raw:
		common.YCCKToCMYKRow(out, planes[0][off:off+width], planes[1][off:off+width], planes[2][off:off+width], planes[3][off:off+width])
	default:
		n := len(planes)
		for i, p := range planes {
			src := p[off : off+width]
			for x, v := range src {
				if invert {
					v = 255 - v
				}
				out[x*n+i] = v
			}
		}
	}
}
