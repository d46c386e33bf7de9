package face

import (
	"bufio"
	"errors"
	"io"

	"github.com/ndn-tools/nrd/internal/wire"
)

// errShortRead is returned internally when the stream closes mid-frame.
var errShortRead = errors.New("face: short read")

// tlNumLen reports how many bytes a TLNum occupies given the value of its
// first byte, mirroring the marker scheme in internal/wire.ParseTLNum.
func tlNumLen(first byte) int {
	switch first {
	case 0xfd:
		return 3
	case 0xfe:
		return 5
	case 0xff:
		return 9
	default:
		return 1
	}
}

// readTLNum reads one TLNum directly off r without requiring the whole
// value to already be buffered, returning both its decoded value and the
// raw bytes read (the raw bytes are reused when reassembling the frame).
func readTLNum(r *bufio.Reader) (wire.TLNum, []byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	n := tlNumLen(first)
	buf := make([]byte, n)
	buf[0] = first
	if n > 1 {
		if _, err := io.ReadFull(r, buf[1:]); err != nil {
			return 0, nil, errShortRead
		}
	}
	val, consumed, ok := wire.ParseTLNum(buf)
	if !ok || consumed != n {
		return 0, nil, errShortRead
	}
	return val, buf, nil
}

// readFrame reads one complete TLV packet (Type, Length, Value) from r,
// returning the packet's full encoded bytes. This is how stream-oriented
// transports (TCP, WebSocket byte streams) recover packet boundaries
// without a length prefix of their own: NDN TLV is self-delimiting.
func readFrame(r *bufio.Reader) ([]byte, error) {
	_, typBytes, err := readTLNum(r)
	if err != nil {
		return nil, err
	}
	length, lenBytes, err := readTLNum(r)
	if err != nil {
		return nil, err
	}
	value := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, errShortRead
		}
	}
	frame := make([]byte, 0, len(typBytes)+len(lenBytes)+len(value))
	frame = append(frame, typBytes...)
	frame = append(frame, lenBytes...)
	frame = append(frame, value...)
	return frame, nil
}
