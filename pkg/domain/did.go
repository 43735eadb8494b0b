package domain

import (
	"strings"

	dErrors "credrelay/pkg/domain-errors"
)

// DID is a decentralized identifier naming an issuer or a holder.
// The engine treats it as opaque beyond structural validation; key
// material is resolved through the DID document boundary.
type DID string

// ParseDID validates the did:<method>:<identifier> structure.
func ParseDID(value string) (DID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "did is required")
	}
	parts := strings.SplitN(trimmed, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "did must have the form did:<method>:<identifier>")
	}
	return DID(trimmed), nil
}

// String returns the DID as a string.
func (d DID) String() string {
	return string(d)
}

// IsZero reports whether the DID is unset.
func (d DID) IsZero() bool {
	return d == ""
}

// Method returns the DID method, or "" when the DID is malformed.
func (d DID) Method() string {
	parts := strings.SplitN(string(d), ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
