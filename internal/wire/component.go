package wire

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// NDN name component type numbers (std/encoding/component.go).
const (
	TypeInvalidComponent                TLNum = 0x00
	TypeImplicitSha256DigestComponent   TLNum = 0x01
	TypeParametersSha256DigestComponent TLNum = 0x02
	TypeGenericNameComponent            TLNum = 0x08
	TypeKeywordNameComponent            TLNum = 0x20
)

// Component is a single element of a hierarchical Name: a TLV type plus an
// opaque value. Most application names use TypeGenericNameComponent.
type Component struct {
	Typ TLNum
	Val []byte
}

// NewGenericComponent builds a generic name component from a UTF-8 string.
func NewGenericComponent(s string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(s)}
}

// String renders the component the way a Name.String() expects to join
// components with "/": "value" for generic components, "type=value"
// otherwise.
func (c Component) String() string {
	if c.Typ == TypeGenericNameComponent {
		return string(c.Val)
	}
	return strconv.FormatUint(uint64(c.Typ), 10) + "=" + string(c.Val)
}

// DisplayString renders the component's value for the FIB's JSON tree dump
// (spec.md §4.3 `toJSON()`: "<bytes-hex-or-utf8>"): the bytes themselves
// when they form valid UTF-8 (printable or not), otherwise their hex encoding, so
// the dump is always safe to embed as a JSON string.
func (c Component) DisplayString() string {
	if utf8.Valid(c.Val) {
		return string(c.Val)
	}
	return hex.EncodeToString(c.Val)
}

// EncodingLength returns the number of wire bytes this component occupies,
// including its own TLV type and length header.
func (c Component) EncodingLength() int {
	l := len(c.Val)
	return c.Typ.EncodingLength() + TLNum(l).EncodingLength() + l
}

// EncodeInto writes the component's TLV encoding into buf, returning the
// number of bytes written.
func (c Component) EncodeInto(buf []byte) int {
	p1 := c.Typ.EncodeInto(buf)
	p2 := TLNum(len(c.Val)).EncodeInto(buf[p1:])
	copy(buf[p1+p2:], c.Val)
	return p1 + p2 + len(c.Val)
}

// ParseComponent reads one component from the start of buf, returning the
// component and the number of bytes consumed.
func ParseComponent(buf []byte) (c Component, n int, ok bool) {
	typ, p1, ok := ParseTLNum(buf)
	if !ok {
		return Component{}, 0, false
	}
	l, p2, ok := ParseTLNum(buf[p1:])
	if !ok {
		return Component{}, 0, false
	}
	start := p1 + p2
	end := start + int(l)
	if end > len(buf) {
		return Component{}, 0, false
	}
	return Component{Typ: typ, Val: buf[start:end]}, end, true
}

// Equal reports whether two components have the same type and value.
func (c Component) Equal(rhs Component) bool {
	return c.Typ == rhs.Typ && bytes.Equal(c.Val, rhs.Val)
}

// Compare orders components first by type, then lexicographically by value
// bytes. Used to produce the canonical,
// deterministic child ordering FIB.ToJSON requires.
func (c Component) Compare(rhs Component) int {
	if c.Typ != rhs.Typ {
		if c.Typ < rhs.Typ {
			return -1
		}
		return 1
	}
	return bytes.Compare(c.Val, rhs.Val)
}

// Hash returns a fast, non-cryptographic hash of the component, used as the
// FIB trie's child-map key.
func (c Component) Hash() uint64 {
	h := xxhash.New()
	var typBuf [9]byte
	n := c.Typ.EncodeInto(typBuf[:])
	h.Write(typBuf[:n])
	h.Write(c.Val)
	return h.Sum64()
}

// componentFromStr parses a single "/"-delimited segment of a Name string
// literal into a generic name component. Percent-encoding and typed
// components ("type=value") are not supported; every component produced by
// the control-plane and test-literal paths in this router is generic.
func componentFromStr(s string) Component {
	return NewGenericComponent(s)
}

func componentsToString(comps []Component) string {
	if len(comps) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, c := range comps {
		sb.WriteByte('/')
		sb.WriteString(c.String())
	}
	return sb.String()
}
