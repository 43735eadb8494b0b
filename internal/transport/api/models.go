package api

import (
	"time"

	"credrelay/internal/credential/models"
)

// ClaimBatchResult is one page of the claim boundary's response.
type ClaimBatchResult struct {
	ClaimedVCs     []models.ClaimItem `json:"claimed_vcs"`
	ClaimedCount   int                `json:"claimed_count"`
	RemainingCount int                `json:"remaining_count"`
	HasMore        bool               `json:"has_more"`
}

// ConfirmItem acknowledges one delivered claim.
type ConfirmItem struct {
	ClaimID string `json:"claimId"`
	Source  string `json:"source"`
}

// ConfirmResult reports how many acknowledgements the server accepted.
// Only ConfirmedCount == RequestedCount counts as success.
type ConfirmResult struct {
	ConfirmedCount int `json:"confirmed_count"`
	RequestedCount int `json:"requested_count"`
}

// IssuanceDecision is the approval payload for the issuance boundary.
type IssuanceDecision struct {
	RequestID     string          `json:"request_id"`
	Action        models.Decision `json:"action"`
	VCID          string          `json:"vc_id,omitempty"`
	SchemaID      string          `json:"schema_id,omitempty"`
	SchemaVersion int             `json:"schema_version,omitempty"`
	VCHash        string          `json:"vc_hash,omitempty"`
	EncryptedBody string          `json:"encrypted_body,omitempty"`
	ExpiredAt     *time.Time      `json:"expired_at,omitempty"`
}

// UpdateDecision carries the superseding credential id plus the id it
// replaces; vc_type is the schema name with its version suffix stripped.
type UpdateDecision struct {
	RequestID     string          `json:"request_id"`
	Action        models.Decision `json:"action"`
	VCID          string          `json:"vc_id,omitempty"`
	OldVCID       string          `json:"old_vc_id,omitempty"`
	VCType        string          `json:"vc_type,omitempty"`
	VCHash        string          `json:"vc_hash,omitempty"`
	EncryptedBody string          `json:"encrypted_body,omitempty"`
	ExpiredAt     *time.Time      `json:"expired_at,omitempty"`
}

// RenewalDecision keeps the credential id unchanged; renewal preserves
// identity, so there is no old/new id distinction.
type RenewalDecision struct {
	RequestID     string          `json:"request_id"`
	Action        models.Decision `json:"action"`
	VCID          string          `json:"vc_id,omitempty"`
	VCHash        string          `json:"vc_hash,omitempty"`
	EncryptedBody string          `json:"encrypted_body,omitempty"`
	ExpiredAt     *time.Time      `json:"expired_at,omitempty"`
}

// RevokeDecision carries no new credential, only the id being revoked
// and the minimal holder-addressed envelope.
type RevokeDecision struct {
	RequestID     string          `json:"request_id"`
	Action        models.Decision `json:"action"`
	VCID          string          `json:"vc_id,omitempty"`
	EncryptedBody string          `json:"encrypted_body,omitempty"`
}

// RecordUpdate replaces the issuer-side encrypted history snapshot for
// one issued record after a lifecycle transition.
type RecordUpdate struct {
	RecordID      string `json:"record_id"`
	VCID          string `json:"vc_id"`
	EncryptedBody string `json:"encrypted_body"`
}

// DIDDocument is the raw key material section of a resolved DID
// document: keyId names the active key, and the document carries the
// hex-encoded key under that id alongside other metadata.
type DIDDocument map[string]any

// KeyID returns the active key id, or "".
func (d DIDDocument) KeyID() string {
	if s, ok := d["keyId"].(string); ok {
		return s
	}
	return ""
}

// PublicKeyHex returns the hex key material named by keyId, or "".
func (d DIDDocument) PublicKeyHex() string {
	keyID := d.KeyID()
	if keyID == "" {
		return ""
	}
	if s, ok := d[keyID].(string); ok {
		return s
	}
	return ""
}
