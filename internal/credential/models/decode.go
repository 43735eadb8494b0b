package models

import (
	"github.com/mitchellh/mapstructure"

	"credrelay/internal/vcid"
	dErrors "credrelay/pkg/domain-errors"
)

// RequestPayload is the decrypted body of a lifecycle request. The
// concrete variant is selected by the request type; ad hoc optional
// field probing is deliberately avoided.
type RequestPayload interface {
	// SchemaRef resolves the schema identity the request acts under
	// and, for non-issuance types, the credential id being acted on.
	SchemaRef() (schemaID string, schemaVersion int, currentVCID string, err error)
}

// IssuancePayload asks for a brand new credential under a schema.
type IssuancePayload struct {
	SchemaID      string         `mapstructure:"schema_id"`
	SchemaVersion int            `mapstructure:"schema_version"`
	Attributes    map[string]any `mapstructure:"attributes"`
}

func (p IssuancePayload) SchemaRef() (string, int, string, error) {
	if p.SchemaID == "" || p.SchemaVersion <= 0 {
		return "", 0, "", dErrors.New(dErrors.CodeInvalidInput, "issuance request missing schema_id or schema_version")
	}
	return p.SchemaID, p.SchemaVersion, "", nil
}

// RenewalPayload asks to extend an existing credential. The credential
// id is preserved across renewal.
type RenewalPayload struct {
	VCID string `mapstructure:"vc_id"`
}

func (p RenewalPayload) SchemaRef() (string, int, string, error) {
	return refFromVCID(p.VCID)
}

// UpdatePayload asks to replace the attribute content of an existing
// credential; the result supersedes the old credential id.
type UpdatePayload struct {
	VCID       string         `mapstructure:"vc_id"`
	Attributes map[string]any `mapstructure:"attributes"`
}

func (p UpdatePayload) SchemaRef() (string, int, string, error) {
	return refFromVCID(p.VCID)
}

// RevokePayload asks to revoke an existing credential.
type RevokePayload struct {
	VCID string `mapstructure:"vc_id"`
}

func (p RevokePayload) SchemaRef() (string, int, string, error) {
	return refFromVCID(p.VCID)
}

func refFromVCID(vcID string) (string, int, string, error) {
	if vcID == "" {
		return "", 0, "", dErrors.New(dErrors.CodeInvalidInput, "request missing vc_id")
	}
	parsed, ok := vcid.Parse(vcID)
	if !ok {
		return "", 0, "", dErrors.New(dErrors.CodeInvalidInput, "vc_id does not parse as a credential identifier")
	}
	return parsed.SchemaID, parsed.SchemaVersion, vcID, nil
}

// DecodeRequestBody maps a decrypted request body onto the payload
// variant for the request type. Unknown keys are tolerated so legacy
// bodies decode; missing required fields surface through SchemaRef.
func DecodeRequestBody(t RequestType, body map[string]any) (RequestPayload, error) {
	var payload RequestPayload
	var target any
	switch t {
	case TypeIssuance:
		p := &IssuancePayload{}
		payload, target = p, p
	case TypeRenewal:
		p := &RenewalPayload{}
		payload, target = p, p
	case TypeUpdate:
		p := &UpdatePayload{}
		payload, target = p, p
	case TypeRevoke:
		p := &RevokePayload{}
		payload, target = p, p
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown lifecycle request type")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not build request decoder")
	}
	if err := decoder.Decode(body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "request body does not match its type")
	}
	return payload, nil
}
