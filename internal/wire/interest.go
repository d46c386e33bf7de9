package wire

import (
	"encoding/binary"
	"errors"
	"time"
)

// TLV type numbers for the packets this router exchanges. These are a
// deliberately reduced subset of the real NDN packet format (std/ndn/
// spec_2022 in the teacher repo) sufficient for this forwarder's own faces
// to frame and exchange Interest/Data; spec.md treats the codec as an
// external, assumed-available collaborator, so only what the router itself
// inspects is modeled.
const (
	TypeInterest         TLNum = 0x05
	TypeData             TLNum = 0x06
	TypeNonce            TLNum = 0x0a
	TypeInterestLifetime TLNum = 0x0c
	TypeMetaInfo         TLNum = 0x14
	TypeContent          TLNum = 0x15
	TypeSignatureInfo    TLNum = 0x16
	TypeSignatureValue   TLNum = 0x17
	TypeFreshnessPeriod  TLNum = 0x19
)

// ErrMalformed is returned by Decode functions when a buffer does not hold a
// well-formed packet of the expected type.
var ErrMalformed = errors.New("wire: malformed packet")

// DefaultInterestLifetime is used when an Interest carries no explicit
// lifetime, per spec.md §3 ("default 250 ms if the Interest carries no
// lifetime" describes the PIT entry; NDN convention otherwise defaults an
// unset Interest lifetime to 4s, kept here for the wire-level default).
const DefaultInterestLifetime = 4 * time.Second

// Interest is the reduced Interest representation spec.md §3 requires:
// Name, Nonce, Lifetime. Any other field on the wire, selectors included,
// is skipped on decode and never inspected by the forwarder.
type Interest struct {
	NameV     Name
	Nonce     [4]byte
	LifetimeV time.Duration
}

// Name returns the Interest's name.
func (i *Interest) Name() Name { return i.NameV }

// Lifetime returns the Interest's lifetime, or DefaultInterestLifetime if
// none was set on the wire.
func (i *Interest) Lifetime() time.Duration {
	if i.LifetimeV <= 0 {
		return DefaultInterestLifetime
	}
	return i.LifetimeV
}

// Encode serializes the Interest to its TLV wire form.
func (i *Interest) Encode() []byte {
	nameBytes := i.NameV.Bytes()

	nonceInner := 4
	lifetimeMs := uint64(i.LifetimeV / time.Millisecond)
	lifetimeBytes := encodeNat(lifetimeMs)
	lifetimeInner := len(lifetimeBytes)

	inner := len(nameBytes) +
		TypeNonce.EncodingLength() + TLNum(nonceInner).EncodingLength() + nonceInner +
		TypeInterestLifetime.EncodingLength() + TLNum(lifetimeInner).EncodingLength() + lifetimeInner

	buf := make([]byte, TypeInterest.EncodingLength()+TLNum(inner).EncodingLength()+inner)
	p := TypeInterest.EncodeInto(buf)
	p += TLNum(inner).EncodeInto(buf[p:])

	copy(buf[p:], nameBytes)
	p += len(nameBytes)

	p += TypeNonce.EncodeInto(buf[p:])
	p += TLNum(nonceInner).EncodeInto(buf[p:])
	copy(buf[p:], i.Nonce[:])
	p += nonceInner

	p += TypeInterestLifetime.EncodeInto(buf[p:])
	p += TLNum(lifetimeInner).EncodeInto(buf[p:])
	copy(buf[p:], lifetimeBytes)

	return buf
}

// DecodeInterest parses a complete Interest TLV block from buf.
func DecodeInterest(buf []byte) (*Interest, error) {
	typ, p1, ok := ParseTLNum(buf)
	if !ok || typ != TypeInterest {
		return nil, ErrMalformed
	}
	l, p2, ok := ParseTLNum(buf[p1:])
	if !ok {
		return nil, ErrMalformed
	}
	start := p1 + p2
	end := start + int(l)
	if end > len(buf) {
		return nil, ErrMalformed
	}
	body := buf[start:end]

	name, consumed, ok := ParseNameBlock(body)
	if !ok {
		return nil, ErrMalformed
	}
	body = body[consumed:]

	it := &Interest{NameV: name}
	for len(body) > 0 {
		ftyp, fp1, ok := ParseTLNum(body)
		if !ok {
			return nil, ErrMalformed
		}
		fl, fp2, ok := ParseTLNum(body[fp1:])
		if !ok {
			return nil, ErrMalformed
		}
		fstart := fp1 + fp2
		fend := fstart + int(fl)
		if fend > len(body) {
			return nil, ErrMalformed
		}
		val := body[fstart:fend]
		switch ftyp {
		case TypeNonce:
			if len(val) != 4 {
				return nil, ErrMalformed
			}
			copy(it.Nonce[:], val)
		case TypeInterestLifetime:
			ms, _, ok := parseNat(val)
			if !ok {
				return nil, ErrMalformed
			}
			it.LifetimeV = time.Duration(ms) * time.Millisecond
		}
		body = body[fend:]
	}
	return it, nil
}

// parseNat decodes a big-endian natural number of 1, 2, 4 or 8 bytes, the
// encoding NDN TLV uses for fixed-width fields (std/encoding/primitives.go's
// Nat). Any other length is malformed.
func parseNat(buf []byte) (uint64, int, bool) {
	switch len(buf) {
	case 1:
		return uint64(buf[0]), 1, true
	case 2:
		return uint64(binary.BigEndian.Uint16(buf)), 2, true
	case 4:
		return uint64(binary.BigEndian.Uint32(buf)), 4, true
	case 8:
		return binary.BigEndian.Uint64(buf), 8, true
	default:
		return 0, 0, false
	}
}

func encodeNat(v uint64) []byte {
	switch {
	case v <= 0xff:
		return []byte{byte(v)}
	case v <= 0xffff:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v))
		return b
	case v <= 0xffffffff:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		return b
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, v)
		return b
	}
}
