// Package sign produces and checks credential proofs. The proof is a
// compact EdDSA JWS over the credential hash, carried in a linked-data
// style proof block.
package sign

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"credrelay/internal/credential/models"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
)

const proofType = "JsonWebSignature2020"

// Hash returns the SHA-256 of the canonical credential JSON. Proof and
// claim-cycle bookkeeping are excluded so the hash is stable across
// delivery and re-encryption.
func Hash(vc models.VerifiableCredential) (string, error) {
	canonical := vc.Canonical()
	canonical.Proof = nil
	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not marshal credential for hashing")
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Signer signs credentials on behalf of one issuer key.
type Signer struct {
	issuer             id.DID
	key                ed25519.PrivateKey
	verificationMethod string
}

// New creates a signer for the issuer DID. The verification
// method fragment follows the DID document's first assertion key.
func New(issuer id.DID, key ed25519.PrivateKey) (*Signer, error) {
	if issuer.IsZero() {
		return nil, dErrors.New(dErrors.CodePrecondition, "issuer DID required")
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, dErrors.New(dErrors.CodePrecondition, "issuer signing key required")
	}
	return &Signer{
		issuer:             issuer,
		key:                key,
		verificationMethod: issuer.String() + "#key-1",
	}, nil
}

// Sign attaches a proof to a copy of the credential and returns it.
// The input credential is left untouched.
func (s *Signer) Sign(vc models.VerifiableCredential, now time.Time) (models.VerifiableCredential, error) {
	signed := vc.Canonical()
	signed.Proof = nil

	hash, err := Hash(signed)
	if err != nil {
		return models.VerifiableCredential{}, err
	}

	claims := jwt.MapClaims{
		"iss":     s.issuer.String(),
		"sub":     signed.HolderDID().String(),
		"iat":     now.Unix(),
		"vc_id":   signed.ID,
		"vc_hash": hash,
	}
	jws, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
	if err != nil {
		return models.VerifiableCredential{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign credential")
	}

	signed.Proof = &models.Proof{
		Type:               proofType,
		Created:            now.UTC().Format(time.RFC3339),
		VerificationMethod: s.verificationMethod,
		ProofPurpose:       "assertionMethod",
		JWS:                jws,
	}
	return signed, nil
}

// Verify checks a credential's proof against the issuer public key:
// the JWS must validate and its embedded hash must match the credential
// content as received.
func Verify(vc models.VerifiableCredential, issuerPublic ed25519.PublicKey) error {
	if vc.Proof == nil || vc.Proof.JWS == "" {
		return dErrors.New(dErrors.CodeValidation, "credential carries no proof")
	}

	token, err := jwt.Parse(vc.Proof.JWS, func(t *jwt.Token) (any, error) {
		return issuerPublic, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "proof signature invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "proof claims malformed")
	}

	hash, err := Hash(vc)
	if err != nil {
		return err
	}
	if claims["vc_hash"] != hash {
		return dErrors.New(dErrors.CodeValidation, "credential content does not match its proof")
	}
	if claims["vc_id"] != vc.ID {
		return dErrors.New(dErrors.CodeValidation, "credential id does not match its proof")
	}
	return nil
}

// KeySource resolves an issuer DID to its proof verification key.
// Satisfied by the did resolver.
type KeySource interface {
	SigningKey(ctx context.Context, did id.DID) ([]byte, error)
}

// Checker verifies credential proofs against issuer keys resolved on
// demand.
type Checker struct {
	keys KeySource
}

// NewChecker creates a checker over the given key source.
func NewChecker(keys KeySource) *Checker {
	return &Checker{keys: keys}
}

// CheckProof resolves the credential issuer's signing key and verifies
// the proof with it.
func (c *Checker) CheckProof(ctx context.Context, vc models.VerifiableCredential) error {
	key, err := c.keys.SigningKey(ctx, vc.Issuer)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBoundary, "could not resolve issuer signing key")
	}
	return Verify(vc, ed25519.PublicKey(key))
}
