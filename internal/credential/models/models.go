package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	id "credrelay/pkg/domain"
)

// Proof is the linked-data signature envelope attached to a signed
// credential. The signature itself travels as a compact JWS.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	JWS                string `json:"jws,omitempty"`
}

// VerifiableCredential is immutable once signed. A change to its
// content always produces a new credential appended to the issuer-side
// history; nothing ever mutates a signed credential in place.
type VerifiableCredential struct {
	ID                string         `json:"id"`
	Type              []string       `json:"type"`
	Issuer            id.DID         `json:"issuer"`
	IssuerName        string         `json:"issuerName,omitempty"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	ValidFrom         time.Time      `json:"validFrom"`
	ExpiredAt         *time.Time     `json:"expiredAt,omitempty"`
	CredentialStatus  map[string]any `json:"credentialStatus,omitempty"`
	Proof             *Proof         `json:"proof,omitempty"`
	ImageLink         string         `json:"imageLink,omitempty"`
	FileID            string         `json:"fileId,omitempty"`
	FileURL           string         `json:"fileUrl,omitempty"`

	// Claim-cycle bookkeeping attached between claim and confirm.
	// Never part of the signed, presented, or hashed credential.
	ClaimID string `json:"claimId,omitempty"`
	Source  string `json:"source,omitempty"`
}

// HolderDID returns the credential subject's DID, or "" when absent.
func (vc VerifiableCredential) HolderDID() id.DID {
	if vc.CredentialSubject == nil {
		return ""
	}
	if s, ok := vc.CredentialSubject["id"].(string); ok {
		return id.DID(s)
	}
	return ""
}

// Canonical strips claim-cycle bookkeeping so the credential can be
// signed, hashed, or presented.
func (vc VerifiableCredential) Canonical() VerifiableCredential {
	vc.ClaimID = ""
	vc.Source = ""
	return vc
}

// RecordStatus is the issuer-side lifecycle state of a credential lineage.
type RecordStatus string

const (
	StatusApproved RecordStatus = "APPROVED"
	StatusRevoked  RecordStatus = "REVOKED"
	StatusExpired  RecordStatus = "EXPIRED"
)

// LifetimeSentinel is the ActiveUntil value for credentials without expiry.
const LifetimeSentinel = "-"

// IssuedCredentialRecord is the issuer-owned record of one credential
// lineage: the current head plus every prior version, newest first.
// Revocation flips status and the vc_status flag inside the issuer's
// own encrypted snapshot; history is never deleted.
type IssuedCredentialRecord struct {
	ID            string                 `json:"id"`
	VCID          string                 `json:"vcId"`
	VCHistory     []VerifiableCredential `json:"vcHistory"`
	Status        RecordStatus           `json:"status"`
	ActiveUntil   string                 `json:"activeUntil"`
	HolderDID     id.DID                 `json:"holderDid"`
	IssuerDID     id.DID                 `json:"issuerDid"`
	SchemaID      string                 `json:"schemaId"`
	SchemaVersion int                    `json:"schemaVersion"`
	EncryptedBody string                 `json:"encryptedBody"`
}

// NewRecordID generates an opaque issued-record identifier.
func NewRecordID() string {
	return "rec_" + uuid.NewString()
}

// Head returns the current head credential, if any.
func (r IssuedCredentialRecord) Head() *VerifiableCredential {
	if len(r.VCHistory) == 0 {
		return nil
	}
	return &r.VCHistory[0]
}

// Prepend returns a copy of the record with vc as the new head. The
// caller applies it only after the boundary call reported success.
func (r IssuedCredentialRecord) Prepend(vc VerifiableCredential) IssuedCredentialRecord {
	history := make([]VerifiableCredential, 0, len(r.VCHistory)+1)
	history = append(history, vc.Canonical())
	history = append(history, r.VCHistory...)
	r.VCHistory = history
	r.VCID = vc.ID
	if vc.ExpiredAt != nil {
		r.ActiveUntil = vc.ExpiredAt.UTC().Format(time.RFC3339)
	} else {
		r.ActiveUntil = LifetimeSentinel
	}
	return r
}

// RequestType enumerates lifecycle request kinds.
type RequestType string

const (
	TypeIssuance RequestType = "ISSUANCE"
	TypeRenewal  RequestType = "RENEWAL"
	TypeUpdate   RequestType = "UPDATE"
	TypeRevoke   RequestType = "REVOKE"
)

// RequestTypes lists every lifecycle request kind, in fetch order.
var RequestTypes = []RequestType{TypeIssuance, TypeRenewal, TypeUpdate, TypeRevoke}

// RequestStatus enumerates lifecycle request states. A request is
// consumed exactly once: terminal once non-PENDING.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusDecided  RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Decision is the reviewer's verdict applied to a pending request.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// LifecycleRequest is a pending ask awaiting issuer review. The body is
// an envelope addressed to the issuer; its decrypted shape depends on Type.
type LifecycleRequest struct {
	ID            string        `json:"id"`
	EncryptedBody string        `json:"encrypted_body"`
	IssuerDID     id.DID        `json:"issuer_did"`
	HolderDID     id.DID        `json:"holder_did"`
	Type          RequestType   `json:"type"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Schema identity derived locally from the decrypted body during
	// listing. Best effort: empty when the body cannot be opened, so a
	// legacy or foreign request still lists.
	SchemaID      string `json:"schema_id,omitempty"`
	SchemaVersion int    `json:"schema_version,omitempty"`
}

// ClaimItem is one undelivered credential waiting in the holder's
// server-side queue. It exists only between claim and confirm.
type ClaimItem struct {
	ClaimID       string `json:"claimId"`
	Source        string `json:"source"`
	EncryptedBody string `json:"encrypted_body"`
}

// Schema describes a credential schema as published by the issuer.
// ExpiredIn is in years; zero means the credential never expires.
type Schema struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	ExpiredIn int    `json:"expired_in"`
}

var trailingVersion = regexp.MustCompile(`\s*[vV]?\d+$`)

// VCType derives the credential type tag from a schema name by
// stripping any trailing version suffix ("Diploma V2" -> "Diploma").
func VCType(schemaName string) string {
	return strings.TrimSpace(trailingVersion.ReplaceAllString(schemaName, ""))
}

// ExpiryFrom computes the expiry for a schema issued at the given time.
// Calendar-year arithmetic is applied uniformly; nil means lifetime.
func ExpiryFrom(schema Schema, issuedAt time.Time) *time.Time {
	if schema.ExpiredIn <= 0 {
		return nil
	}
	t := issuedAt.UTC().AddDate(schema.ExpiredIn, 0, 0)
	return &t
}

// ActiveUntilDisplay renders the ActiveUntil column for display
// surfaces: the lifetime sentinel becomes the word operators expect.
func ActiveUntilDisplay(activeUntil string) string {
	if activeUntil == "" || activeUntil == LifetimeSentinel {
		return "Lifetime"
	}
	return activeUntil
}
