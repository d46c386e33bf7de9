// Package wire implements the small subset of NDN TLV encoding the router
// needs to parse and build Interest/Data packets and Name components.
//
// The variable-length integer scheme (TLNum) is adapted from
// std/encoding/primitives.go in github.com/named-data/ndnd: 1/3/5/9-byte
// big-endian values selected by a leading marker byte, exactly as specified
// by the NDN TLV wire format.
package wire

import "encoding/binary"

// TLNum is an NDN TLV Type or Length number.
type TLNum uint64

// EncodingLength returns the number of bytes v takes to encode.
func (v TLNum) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xfc:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// EncodeInto writes v into buf using the NDN variable-length encoding,
// returning the number of bytes written. buf must be at least
// v.EncodingLength() bytes long.
func (v TLNum) EncodeInto(buf []byte) int {
	switch x := uint64(v); {
	case x <= 0xfc:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(x))
		return 3
	case x <= 0xffffffff:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(x))
		return 5
	default:
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], uint64(x))
		return 9
	}
}

// ParseTLNum reads a TLNum from the start of buf, returning the value and
// the number of bytes consumed. It returns ok=false if buf does not contain
// a complete encoding.
func ParseTLNum(buf []byte) (val TLNum, n int, ok bool) {
	if len(buf) < 1 {
		return 0, 0, false
	}
	switch x := buf[0]; {
	case x <= 0xfc:
		return TLNum(x), 1, true
	case x == 0xfd:
		if len(buf) < 3 {
			return 0, 0, false
		}
		return TLNum(binary.BigEndian.Uint16(buf[1:3])), 3, true
	case x == 0xfe:
		if len(buf) < 5 {
			return 0, 0, false
		}
		return TLNum(binary.BigEndian.Uint32(buf[1:5])), 5, true
	default:
		if len(buf) < 9 {
			return 0, 0, false
		}
		return TLNum(binary.BigEndian.Uint64(buf[1:9])), 9, true
	}
}
