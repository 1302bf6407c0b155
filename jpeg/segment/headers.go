// Package segment reads and writes JPEG marker segments.
//
// It knows the layout of every header segment used by baseline, extended
// sequential and progressive Huffman-coded JPEG. It does not interpret
// entropy-coded data; that is left to the bit reader in package common.
package segment

import "github.com/cocosip/go-jpeg-codec/jpeg/common"

// ComponentSpec is one component entry of a frame header.
type ComponentSpec struct {
	ID uint8
	H  uint8 // Horizontal sampling factor
	V  uint8 // Vertical sampling factor
	Tq uint8 // Quantization table selector
}

// FrameHeader is the content of an SOFn segment.
type FrameHeader struct {
	Marker     uint16
	Precision  uint8
	Height     uint16 // 0 means the height is defined by a DNL segment
	Width      uint16
	Components []ComponentSpec
}

// Progressive reports whether the frame uses progressive DCT.
func (f *FrameHeader) Progressive() bool {
	return f.Marker == common.MarkerSOF2
}

// MaxSampling returns the largest horizontal and vertical sampling factors.
func (f *FrameHeader) MaxSampling() (hmax, vmax int) {
	hmax, vmax = 1, 1
	for _, c := range f.Components {
		hmax = max(hmax, int(c.H))
		vmax = max(vmax, int(c.V))
	}
	return hmax, vmax
}

// ComponentIndex returns the position of the component with the given id,
// or -1.
func (f *FrameHeader) ComponentIndex(id uint8) int {
	for i, c := range f.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the component identifiers in frame order.
func (f *FrameHeader) IDs() []uint8 {
	ids := make([]uint8, len(f.Components))
	for i, c := range f.Components {
		ids[i] = c.ID
	}
	return ids
}

// ScanComponent is one component entry of a scan header.
type ScanComponent struct {
	ID uint8
	Td uint8 // DC table selector
	Ta uint8 // AC table selector
}

// ScanHeader is the content of an SOS segment.
type ScanHeader struct {
	Components []ScanComponent
	Ss, Se     uint8 // Spectral selection
	Ah, Al     uint8 // Successive approximation
}

// AdobeInfo is the content of an Adobe APP14 segment.
type AdobeInfo struct {
	Version   uint16
	Flags0    uint16
	Flags1    uint16
	Transform uint8
}

// JFIF is the content of a JFIF APP0 segment.
type JFIF struct {
	Major, Minor uint8
	Units        uint8
	XDensity     uint16
	YDensity     uint16
}
