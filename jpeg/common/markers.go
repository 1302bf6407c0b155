package common

import "fmt"

// JPEG marker constants
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Frame markers
	MarkerSOF0  = 0xFFC0 // Baseline DCT
	MarkerSOF1  = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2  = 0xFFC2 // Progressive DCT
	MarkerSOF3  = 0xFFC3 // Lossless (Sequential)
	MarkerSOF5  = 0xFFC5 // Differential Sequential DCT
	MarkerSOF6  = 0xFFC6 // Differential Progressive DCT
	MarkerSOF7  = 0xFFC7 // Differential Lossless
	MarkerJPG   = 0xFFC8 // Reserved for JPEG extensions
	MarkerSOF9  = 0xFFC9 // Extended Sequential DCT, Arithmetic coding
	MarkerSOF10 = 0xFFCA // Progressive DCT, Arithmetic coding
	MarkerSOF11 = 0xFFCB // Lossless, Arithmetic coding
	MarkerDAC   = 0xFFCC // Define Arithmetic Coding conditioning
	MarkerSOF13 = 0xFFCD // Differential Sequential DCT, Arithmetic coding
	MarkerSOF14 = 0xFFCE // Differential Progressive DCT, Arithmetic coding
	MarkerSOF15 = 0xFFCF // Differential Lossless, Arithmetic coding

	// Define Huffman Table
	MarkerDHT = 0xFFC4

	// Define Quantization Table
	MarkerDQT = 0xFFDB

	// Define Number of Lines
	MarkerDNL = 0xFFDC

	// Define Restart Interval
	MarkerDRI = 0xFFDD

	// Hierarchical progression
	MarkerDHP = 0xFFDE
	MarkerEXP = 0xFFDF

	// Start of Scan
	MarkerSOS = 0xFFDA

	// Application segments (APP1..APP13 are only ever skipped)
	MarkerAPP0  = 0xFFE0
	MarkerAPP14 = 0xFFEE
	MarkerAPP15 = 0xFFEF

	// JPEG extensions
	MarkerJPG0  = 0xFFF0
	MarkerJPG13 = 0xFFFD

	// Comment
	MarkerCOM = 0xFFFE

	// Temporary private use in arithmetic coding
	MarkerTEM = 0xFF01

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsSOF returns true if the marker is a Start of Frame marker
func IsSOF(marker uint16) bool {
	return (marker >= MarkerSOF0 && marker <= MarkerSOF3) ||
		(marker >= MarkerSOF5 && marker <= MarkerSOF7) ||
		(marker >= MarkerSOF9 && marker <= MarkerSOF11) ||
		(marker >= MarkerSOF13 && marker <= MarkerSOF15)
}

// IsRST returns true if the marker is a Restart marker
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// IsAPP returns true for APP0..APP15.
func IsAPP(marker uint16) bool {
	return marker >= MarkerAPP0 && marker <= MarkerAPP15
}

// HasLength returns true if the marker is followed by a length field
func HasLength(marker uint16) bool {
	// Markers without length: SOI, EOI, RSTn and TEM
	if marker == MarkerSOI || marker == MarkerEOI || marker == MarkerTEM {
		return false
	}
	if IsRST(marker) {
		return false
	}
	return true
}

// MarkerName returns a short human readable name for a marker, used in error messages.
func MarkerName(marker uint16) string {
	switch {
	case marker == MarkerSOI:
		return "SOI"
	case marker == MarkerEOI:
		return "EOI"
	case marker == MarkerDHT:
		return "DHT"
	case marker == MarkerDQT:
		return "DQT"
	case marker == MarkerDNL:
		return "DNL"
	case marker == MarkerDRI:
		return "DRI"
	case marker == MarkerSOS:
		return "SOS"
	case marker == MarkerCOM:
		return "COM"
	case marker == MarkerDAC:
		return "DAC"
	case IsSOF(marker):
		return fmt.Sprintf("SOF%d", marker-MarkerSOF0)
	case IsRST(marker):
		return fmt.Sprintf("RST%d", marker-MarkerRST0)
	case IsAPP(marker):
		return fmt.Sprintf("APP%d", marker-MarkerAPP0)
	}
	return fmt.Sprintf("0x%04X", marker)
}
