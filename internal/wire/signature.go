package wire

// Signature types recognized by the local keychain (internal/security).
const (
	SignatureTypeDigestSha256  uint64 = 0
	SignatureTypeSha256WithRSA uint64 = 1
	SignatureTypeSha256WithEd  uint64 = 3
)

// Signature is the (type, key locator, value) triple NDN attaches to signed
// packets. The forwarder never validates signatures itself (spec.md §1, §4.5
// delegate that to the manager and to the local keychain respectively) — it
// only needs to carry and re-serialize them.
type Signature struct {
	Type    uint64
	KeyName Name
	Value   []byte
}

// EncodeInfoComponent serializes the (Type, KeyName) pair into the opaque
// byte value used for the "signed info" name component of a registration
// Interest (spec.md §4.5: name component at index -2).
func (s Signature) EncodeInfoComponent() []byte {
	keyBytes := s.KeyName.Bytes()
	buf := make([]byte, TLNum(s.Type).EncodingLength()+len(keyBytes))
	p := TLNum(s.Type).EncodeInto(buf)
	copy(buf[p:], keyBytes)
	return buf
}

// DecodeInfoComponent parses a value previously produced by
// EncodeInfoComponent back into a signature type and key-locator name.
func DecodeInfoComponent(val []byte) (sigType uint64, keyName Name, ok bool) {
	t, p, ok := ParseTLNum(val)
	if !ok {
		return 0, nil, false
	}
	name, _, ok := ParseNameBlock(val[p:])
	if !ok {
		return 0, nil, false
	}
	return uint64(t), name, true
}

// ExtractRegistrationSignature decodes the trailing two components of a
// rib/register command Interest name (signed-info, signature-value) into a
// Signature, per spec.md §4.5's "Registration Interests ... <signed-info>/
// <signature>" layout.
func ExtractRegistrationSignature(n Name) (Signature, bool) {
	if len(n) < 2 {
		return Signature{}, false
	}
	sigType, keyName, ok := DecodeInfoComponent(n.At(-2).Val)
	if !ok {
		return Signature{}, false
	}
	return Signature{
		Type:    sigType,
		KeyName: keyName,
		Value:   n.At(-1).Val,
	}, true
}
