// Package envelope implements the asymmetric envelope format credential
// payloads travel and rest in. Every payload is JSON encrypted to the
// recipient's X25519 public key: an ephemeral ECDH exchange, HKDF-SHA256
// key derivation, then AES-256-GCM.
//
// Wire layout (before base64):
//
//	bytes 0-31   ephemeral X25519 public key
//	bytes 32-43  AES-GCM nonce
//	bytes 44+    ciphertext with 16-byte auth tag
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	dErrors "credrelay/pkg/domain-errors"
	"credrelay/pkg/secrets"
)

const (
	publicKeySize = 32
	nonceSize     = 12
	tagSize       = 16

	// MinCiphertextLen is the structural minimum of a valid envelope:
	// header plus the tag of an empty plaintext. Deployments facing
	// legacy envelopes may raise it through configuration.
	MinCiphertextLen = publicKeySize + nonceSize + tagSize
)

// kdfInfo provides domain separation for the derived AES key; the
// ephemeral public key is appended per encryption.
var kdfInfo = []byte("credrelay-envelope-v1")

// Codec encrypts and decrypts JSON payloads as recipient-addressed envelopes.
type Codec struct {
	minLen int
}

// New returns a Codec enforcing the structural minimum ciphertext length.
func New() *Codec {
	return &Codec{minLen: MinCiphertextLen}
}

// NewWithMinLen returns a Codec with a configured minimum ciphertext
// length. Values below the structural minimum are raised to it.
func NewWithMinLen(minLen int) *Codec {
	if minLen < MinCiphertextLen {
		minLen = MinCiphertextLen
	}
	return &Codec{minLen: minLen}
}

// EncryptFor marshals v as JSON and encrypts it to the recipient's
// X25519 public key. The returned envelope is base64 so it can travel
// inside JSON request bodies and rest in text columns.
func (c *Codec) EncryptFor(v any, recipientPublic []byte) (string, error) {
	if len(recipientPublic) != publicKeySize {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient public key must be 32 bytes")
	}
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not marshal payload")
	}

	ephemeralPrivate := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(ephemeralPrivate); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate ephemeral key")
	}
	defer secrets.Zero(ephemeralPrivate)

	ephemeralPublic, err := curve25519.X25519(ephemeralPrivate, curve25519.Basepoint)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not derive ephemeral public key")
	}

	shared, err := curve25519.X25519(ephemeralPrivate, recipientPublic)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "key exchange failed")
	}
	defer secrets.Zero(shared)

	aead, aesKey, err := deriveAEAD(shared, ephemeralPublic)
	if err != nil {
		return "", err
	}
	defer secrets.Zero(aesKey)

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}

	out := make([]byte, 0, publicKeySize+nonceSize+len(plaintext)+tagSize)
	out = append(out, ephemeralPublic...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptWith decrypts an envelope with the recipient's private key and
// unmarshals the plaintext into out. Every failure path returns
// CodeUndecryptable: callers processing batches skip the item and log,
// so foreign or legacy envelopes never abort a sync.
func (c *Codec) DecryptWith(envelope string, recipientPrivate []byte, out any) error {
	if len(recipientPrivate) != curve25519.ScalarSize {
		return dErrors.New(dErrors.CodePrecondition, "private key must be 32 bytes")
	}
	if envelope == "" {
		return dErrors.New(dErrors.CodeUndecryptable, "envelope is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUndecryptable, "envelope is not valid base64")
	}
	if len(raw) < c.minLen {
		return dErrors.New(dErrors.CodeUndecryptable, "envelope shorter than minimum ciphertext length")
	}

	ephemeralPublic := raw[:publicKeySize]
	nonce := raw[publicKeySize : publicKeySize+nonceSize]
	ciphertext := raw[publicKeySize+nonceSize:]

	shared, err := curve25519.X25519(recipientPrivate, ephemeralPublic)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUndecryptable, "key exchange failed")
	}
	defer secrets.Zero(shared)

	aead, aesKey, err := deriveAEAD(shared, ephemeralPublic)
	if err != nil {
		return err
	}
	defer secrets.Zero(aesKey)

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUndecryptable, "envelope authentication failed")
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUndecryptable, "envelope payload is not valid JSON")
	}
	return nil
}

func deriveAEAD(shared, ephemeralPublic []byte) (cipher.AEAD, []byte, error) {
	info := append(append([]byte{}, kdfInfo...), ephemeralPublic...)
	reader := hkdf.New(sha256.New, shared, nil, info)
	aesKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, aesKey); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "key derivation failed")
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "cipher creation failed")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "GCM creation failed")
	}
	return aead, aesKey, nil
}
