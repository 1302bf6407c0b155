package common

// BitWriter packs MSB-first bits into an in-memory buffer, inserting a 0x00
// after every 0xFF data byte.
type BitWriter struct {
	buf   []byte
	bits  uint64 // Bit buffer
	nBits int    // Number of bits in buffer
}

// NewBitWriter creates a writer that appends to buf.
func NewBitWriter(buf []byte) *BitWriter {
	return &BitWriter{buf: buf}
}

// WriteBits writes the low n bits of bits, 0 <= n <= 32.
func (w *BitWriter) WriteBits(bits uint32, n int) {
	if n == 0 {
		return
	}
	w.bits = w.bits<<uint(n) | uint64(bits&(1<<uint(n)-1))
	w.nBits += n
	for w.nBits >= 8 {
		w.writeByte(byte(w.bits >> uint(w.nBits-8)))
		w.nBits -= 8
	}
}

// writeByte writes a byte with byte stuffing
func (w *BitWriter) writeByte(b byte) {
	w.buf = append(w.buf, b)
	if b == 0xFF {
		w.buf = append(w.buf, 0x00)
	}
}

// Flush pads the final partial byte with 1 bits.
func (w *BitWriter) Flush() {
	if w.nBits > 0 {
		pad := 8 - w.nBits
		w.WriteBits(1<<uint(pad)-1, pad)
	}
	w.bits = 0
}

// Restart flushes pending bits and emits the restart marker RSTn (n mod 8).
func (w *BitWriter) Restart(n int) {
	w.Flush()
	w.buf = append(w.buf, 0xFF, byte(0xD0+n%8))
}

// Bytes returns the bytes written so far. Pending bits are not included
// until Flush is called.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *BitWriter) Len() int {
	return len(w.buf)
}
