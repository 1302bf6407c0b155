package jpeg

import (
	"fmt"

	"github.com/cocosip/go-jpeg-codec/jpeg/common"
	"github.com/cocosip/go-jpeg-codec/jpeg/segment"
)

// findDNL returns the number of lines defined by the DNL segment that ends
// the first scan. pos is the offset just after a frame header whose height
// is zero. The height is not guessed when there is no DNL.
func findDNL(data []byte, pos int) (int, error) {
	r := segment.NewReader(data)
	r.SetPos(pos)
	for {
		marker, err := r.ReadMarker()
		if err != nil {
			return 0, err
		}
		if !common.HasLength(marker) || common.IsSOF(marker) {
			return 0, fmt.Errorf("%w: frame height is zero and %s precedes the first scan", common.ErrMalformedSegment, common.MarkerName(marker))
		}
		if _, err := r.ReadSegment(); err != nil {
			return 0, err
		}
		if marker != common.MarkerSOS {
			continue
		}

		br := common.NewBitReader(r.Remaining())
		off, err := br.SkipToMarker()
		if err != nil {
			return 0, err
		}
		r.SetPos(r.Pos() + off)
		if marker, err = r.ReadMarker(); err != nil {
			return 0, err
		}
		if marker != common.MarkerDNL {
			return 0, fmt.Errorf("%w: frame height is zero and the first scan ends with %s instead of DNL", common.ErrMalformedSegment, common.MarkerName(marker))
		}
		payload, err := r.ReadSegment()
		if err != nil {
			return 0, err
		}
		lines, err := segment.ParseDNL(payload)
		if err != nil {
			return 0, err
		}
		return int(lines), nil
	}
}
