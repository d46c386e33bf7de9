package security

import (
	"crypto/ed25519"
	"testing"

	"github.com/ndn-tools/nrd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeychainKeyNameUnderRouterPrefix(t *testing.T) {
	k, err := NewKeychain("/router")
	require.NoError(t, err)
	assert.True(t, wire.ParseName("/router").IsPrefixOf(k.KeyName()))
	assert.Equal(t, "KEY", k.KeyName().At(-2).String())
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	k, err := NewKeychain("/router")
	require.NoError(t, err)

	d := &wire.Data{NameV: wire.ParseName("/router/a"), ContentV: []byte("payload")}
	k.Sign(d)

	require.NotNil(t, d.SignatureV)
	assert.Equal(t, wire.SignatureTypeSha256WithEd, d.SignatureV.Type)
	assert.True(t, k.KeyName().Equal(d.SignatureV.KeyName))

	pub := k.priv.Public().(ed25519.PublicKey)
	msg := append(append([]byte{}, d.NameV.Bytes()...), d.ContentV...)
	assert.True(t, ed25519.Verify(pub, msg, d.SignatureV.Value))
}

func TestSignedDataRoundTripsThroughWireEncoding(t *testing.T) {
	k, err := NewKeychain("/router")
	require.NoError(t, err)

	d := &wire.Data{NameV: wire.ParseName("/router/a"), ContentV: []byte("payload")}
	k.Sign(d)

	got, err := wire.DecodeData(d.Encode())
	require.NoError(t, err)
	require.NotNil(t, got.SignatureV)
	assert.Equal(t, d.SignatureV.Value, got.SignatureV.Value)
	assert.True(t, d.SignatureV.KeyName.Equal(got.SignatureV.KeyName))
}

func TestTwoKeychainsHaveDistinctKeyNames(t *testing.T) {
	a, err := NewKeychain("/router")
	require.NoError(t, err)
	b, err := NewKeychain("/router")
	require.NoError(t, err)
	assert.False(t, a.KeyName().Equal(b.KeyName()))
}
