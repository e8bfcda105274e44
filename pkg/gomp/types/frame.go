package types

import (
	"encoding/binary"
	"io"
)

// HeaderSize is the fixed wire header: source rank, tag, payload length,
// reserved, each a little-endian int32.
const HeaderSize = 16

// MaxFrameLength caps a single frame's payload. The spec allows up to
// 2^31-1; this implementation additionally enforces a tighter sanity
// ceiling before allocating the payload buffer, the same guard the
// grounding raft transport applies to an attacker- or bug-controlled
// length field.
const MaxFrameLength = 64 * 1024 * 1024

// Frame is the unit of the wire protocol: a 16-byte header followed by a
// raw byte copy of the sender's buffer.
type Frame struct {
	Source  int32
	Tag     int32
	Length  int32
	payload []byte
}

// Payload returns the frame's payload bytes.
func (f *Frame) Payload() []byte { return f.payload }

// NewFrame builds a frame ready to be encoded onto the wire.
func NewFrame(source, tag int32, payload []byte) *Frame {
	return &Frame{Source: source, Tag: tag, Length: int32(len(payload)), payload: payload}
}

// EncodeHeader writes the 16-byte header into buf, which must be at least
// HeaderSize bytes. Reserved bytes are always zeroed on send.
func (f *Frame) EncodeHeader(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.Source))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.Tag))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(f.Length))
	binary.LittleEndian.PutUint32(buf[12:16], 0)
}

// WriteTo serializes the header and payload to w as a single logical
// write sequence. Callers are responsible for ensuring no other writer
// interleaves with this sequence on the same io.Writer.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	header := make([]byte, HeaderSize)
	f.EncodeHeader(header)
	n, err := w.Write(header)
	if err != nil {
		return int64(n), err
	}
	if len(f.payload) == 0 {
		return int64(n), nil
	}
	m, err := w.Write(f.payload)
	return int64(n + m), err
}

// ReadFrame reads one frame from r: a full header, validates the declared
// length, then reads exactly that many payload bytes. Partial reads are
// absorbed by io.ReadFull.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	f := &Frame{
		Source: int32(binary.LittleEndian.Uint32(header[0:4])),
		Tag:    int32(binary.LittleEndian.Uint32(header[4:8])),
		Length: int32(binary.LittleEndian.Uint32(header[8:12])),
	}
	// header[12:16] is reserved and ignored on receive.

	if f.Length < 0 || f.Length > MaxFrameLength {
		return nil, NewError(KindCommunication, "frame length %d out of bounds", f.Length)
	}

	if f.Length == 0 {
		f.payload = nil
		return f, nil
	}

	payload := make([]byte, f.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	f.payload = payload
	return f, nil
}
