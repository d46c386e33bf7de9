// Package security provides the opaque local signing keychain spec.md §1
// treats as an external collaborator ("The signing keychain (opaque
// sign(Data) operation)"). No cryptographic validation of registration
// signatures happens here or anywhere in the router — that is delegated to
// the manager (spec.md §1, §4.5) — so this package only needs to produce a
// signature the router can attach to outgoing Data, not verify one.
package security

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/ndn-tools/nrd/internal/wire"
)

// Keychain signs outgoing Data packets with a single process-local identity.
type Keychain struct {
	keyName wire.Name
	priv    ed25519.PrivateKey
}

// NewKeychain generates a fresh ed25519 identity whose key name is
// routerName/KEY/<hex of the public key's first 4 bytes>. Real
// deployments would load a persisted key from a PIB (std/security/pib in
// the teacher repo); this router keeps no persisted state (spec.md §6), so
// a fresh identity per process run is sufficient for signing its own
// registration-acceptance replies.
func NewKeychain(routerName string) (*Keychain, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	keyName := wire.ParseName(routerName).Append(
		wire.NewGenericComponent("KEY"),
		wire.NewGenericComponent(fmt8(pub)),
	)
	return &Keychain{keyName: keyName, priv: priv}, nil
}

// Sign signs data in place, attaching a Signature carrying the keychain's
// key name and an ed25519 signature over the Data's Name and Content.
func (k *Keychain) Sign(d *wire.Data) {
	msg := append(d.NameV.Bytes(), d.ContentV...)
	sig := ed25519.Sign(k.priv, msg)
	d.SignatureV = &wire.Signature{
		Type:    wire.SignatureTypeSha256WithEd,
		KeyName: k.keyName,
		Value:   sig,
	}
}

// KeyName returns the identity name this keychain signs with.
func (k *Keychain) KeyName() wire.Name { return k.keyName }

func fmt8(b []byte) string {
	const hex = "0123456789abcdef"
	if len(b) > 4 {
		b = b[:4]
	}
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, hex[c>>4], hex[c&0xf])
	}
	return string(out)
}
