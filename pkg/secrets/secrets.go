package secrets

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/curve25519"

	dErrors "credrelay/pkg/domain-errors"
)

// KeyPair holds raw 32-byte X25519 key material used for envelope encryption.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// GenerateKeyPair creates a fresh X25519 keypair.
func GenerateKeyPair() (KeyPair, error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return KeyPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate private key")
	}
	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive public key")
	}
	return KeyPair{Public: public, Private: private}, nil
}

// PublicKeyOf derives the X25519 public key for a raw private key.
func PublicKeyOf(private []byte) ([]byte, error) {
	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "could not derive public key")
	}
	return public, nil
}

// GenerateSigningKey creates a fresh Ed25519 keypair for VC proofs.
func GenerateSigningKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate signing key")
	}
	return pub, priv, nil
}

// EncodeKey renders raw key bytes as lowercase hex, the format DID
// documents publish key material in.
func EncodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

// DecodeKey parses hex key material and enforces the expected length.
func DecodeKey(encoded string, wantLen int) ([]byte, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "key material is not valid hex")
	}
	if len(raw) != wantLen {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "key material has unexpected length")
	}
	return raw, nil
}

// Zero overwrites key material in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
