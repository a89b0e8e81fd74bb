package proto

import "encoding/binary"

// Parser picks frames out of a byte stream.
// Bytes not belonging to a valid frame are skipped.
type Parser struct {
	// Dropped counts bytes skipped while searching for frames.
	Dropped int

	state parseState
	buf   []byte
	want  int
}

type parseState int

const (
	stateStart  parseState = iota // waiting for FrameStart
	stateLenHi                    // waiting for high byte of length
	stateLenLo                    // waiting for low byte of length
	stateBody                     // collecting until length reached
)

// Reset drops any partially received frame.
func (p *Parser) Reset() {
	p.state, p.buf, p.want = stateStart, p.buf[:0], 0
}

// Pending returns the number of bytes held for an incomplete frame.
func (p *Parser) Pending() int {
	return len(p.buf)
}

// Parse consumes data and returns the frames completed by it.
func (p *Parser) Parse(data []byte) (frames []*Frame) {
	in := data
	for len(in) > 0 {
		b := in[0]
		in = in[1:]
		switch p.state {
		case stateStart:
			if b != FrameStart {
				p.Dropped++
				continue
			}
			p.buf = append(p.buf[:0], b)
			p.state = stateLenHi
		case stateLenHi:
			p.buf = append(p.buf, b)
			p.state = stateLenLo
		case stateLenLo:
			p.buf = append(p.buf, b)
			p.want = int(binary.BigEndian.Uint16(p.buf[1:3]))
			if p.want < FrameOverhead {
				in = p.resync(in)
				continue
			}
			p.state = stateBody
		case stateBody:
			p.buf = append(p.buf, b)
			if len(p.buf) < p.want {
				continue
			}
			f, err := Decode(p.buf)
			if err != nil {
				in = p.resync(in)
				continue
			}
			frames = append(frames, f)
			p.Reset()
		}
	}
	return
}

// resync skips the start byte of a broken frame and rescans the bytes after it.
func (p *Parser) resync(in []byte) []byte {
	p.Dropped++
	rest := make([]byte, 0, len(p.buf)-1+len(in))
	rest = append(append(rest, p.buf[1:]...), in...)
	p.Reset()
	return rest
}
