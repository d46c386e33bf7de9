package wire

import "strings"

// TypeName is the TLV type of an NDN Name block.
const TypeName TLNum = 0x07

// Name is a hierarchical sequence of opaque components.
type Name []Component

// ParseName parses a URI-style Name literal such as "/app/x" into a Name.
// An empty string or "/" yields the empty (root) Name.
func ParseName(s string) Name {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return Name{}
	}
	parts := strings.Split(s, "/")
	n := make(Name, 0, len(parts))
	for _, p := range parts {
		n = append(n, componentFromStr(p))
	}
	return n
}

// String renders the Name in URI form, e.g. "/app/x".
func (n Name) String() string {
	return componentsToString(n)
}

// At returns the component at index i. Negative indices count from the end
// (-1 is the last component), matching the convention used throughout
// basic_router.cpp (interest.getName().get(-1)).
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	return n[i]
}

// Prefix returns the first n components. Negative n drops |n| components
// from the end (n.Prefix(-1) is "all but the last component").
func (n Name) Prefix(k int) Name {
	if k < 0 {
		k += len(n)
	}
	if k < 0 {
		k = 0
	}
	if k > len(n) {
		k = len(n)
	}
	out := make(Name, k)
	copy(out, n[:k])
	return out
}

// IsPrefixOf reports whether n is a prefix of other (every component of n
// matches the corresponding component of other, in order).
func (n Name) IsPrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i, c := range n {
		if !c.Equal(other[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether n and rhs have identical components.
func (n Name) Equal(rhs Name) bool {
	if len(n) != len(rhs) {
		return false
	}
	for i, c := range n {
		if !c.Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of n.
func (n Name) Clone() Name {
	out := make(Name, len(n))
	copy(out, n)
	return out
}

// Append returns a new Name with comps appended to n.
func (n Name) Append(comps ...Component) Name {
	out := make(Name, 0, len(n)+len(comps))
	out = append(out, n...)
	out = append(out, comps...)
	return out
}

// EncodingLength returns the number of wire bytes of the Name block
// (including its own TLV type/length header).
func (n Name) EncodingLength() int {
	l := 0
	for _, c := range n {
		l += c.EncodingLength()
	}
	return TypeName.EncodingLength() + TLNum(l).EncodingLength() + l
}

// Bytes encodes the Name as a complete TLV block (Type, Length, Components).
func (n Name) Bytes() []byte {
	inner := 0
	for _, c := range n {
		inner += c.EncodingLength()
	}
	buf := make([]byte, TypeName.EncodingLength()+TLNum(inner).EncodingLength()+inner)
	p := TypeName.EncodeInto(buf)
	p += TLNum(inner).EncodeInto(buf[p:])
	for _, c := range n {
		p += c.EncodeInto(buf[p:])
	}
	return buf
}

// NameFromBlockValue decodes a Name from the *value* of a previously parsed
// TLV block (i.e. buf holds only the concatenated components, no outer
// Name Type/Length header). This is how the registration workflow decodes
// the parameter-block component at index 4 of a rib/register Interest: the
// component's own value is itself a wire-encoded Name (spec.md §4.5).
func NameFromBlockValue(buf []byte) (Name, bool) {
	var n Name
	for len(buf) > 0 {
		c, consumed, ok := ParseComponent(buf)
		if !ok {
			return nil, false
		}
		n = append(n, c)
		buf = buf[consumed:]
	}
	return n, true
}

// ParseNameBlock decodes a complete Name TLV block (Type, Length,
// Components) from the start of buf, returning the Name and the number of
// bytes consumed.
func ParseNameBlock(buf []byte) (Name, int, bool) {
	typ, p1, ok := ParseTLNum(buf)
	if !ok || typ != TypeName {
		return nil, 0, false
	}
	l, p2, ok := ParseTLNum(buf[p1:])
	if !ok {
		return nil, 0, false
	}
	start := p1 + p2
	end := start + int(l)
	if end > len(buf) {
		return nil, 0, false
	}
	n, ok := NameFromBlockValue(buf[start:end])
	if !ok {
		return nil, 0, false
	}
	return n, end, true
}
