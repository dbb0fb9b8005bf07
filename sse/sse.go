// Package sse implements the wire level of the assistant's streaming
// protocol: reassembly of blank-line-delimited frames from arbitrarily
// chunked transport reads, and decoding of a frame's data payload into a
// typed [ateneo.Event].
package sse

import "bytes"

// Frame boundaries. CRLF-framed streams use \r\n\r\n; the decoder likewise
// tolerates \r at line ends inside a frame.
var (
	frameBoundaryLF   = []byte("\n\n")
	frameBoundaryCRLF = []byte("\r\n\r\n")
)

// Assembler turns raw transport chunks into complete frames. The transport
// may deliver chunks of any size: a frame split across two chunks, or several
// frames in one chunk. A partial frame at the tail of a chunk is retained and
// prefixed onto the next chunk before re-scanning. Bytes are never dropped or
// reordered.
type Assembler struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and returns all complete frames
// now available, in order. Returned frames do not include the boundary
// marker. Empty frames (consecutive boundaries) are skipped.
func (a *Assembler) Feed(chunk []byte) [][]byte {
	a.buf = append(a.buf, chunk...)

	var frames [][]byte
	for {
		i, n := boundary(a.buf)
		if i < 0 {
			return frames
		}
		frame := a.buf[:i]
		a.buf = append([]byte(nil), a.buf[i+n:]...)
		if len(bytes.TrimSpace(frame)) == 0 {
			continue
		}
		frames = append(frames, append([]byte(nil), frame...))
	}
}

// boundary finds the earliest frame boundary in buf and returns its offset
// and length, or (-1, 0) when no complete boundary is buffered yet.
func boundary(buf []byte) (int, int) {
	i := bytes.Index(buf, frameBoundaryLF)
	j := bytes.Index(buf, frameBoundaryCRLF)
	switch {
	case j >= 0 && (i < 0 || j < i):
		return j, len(frameBoundaryCRLF)
	case i >= 0:
		return i, len(frameBoundaryLF)
	default:
		return -1, 0
	}
}

// Remainder returns the buffered unterminated tail, if any. On transport end
// a non-empty remainder is not a frame and is deliberately discarded by the
// caller.
func (a *Assembler) Remainder() []byte {
	return a.buf
}
