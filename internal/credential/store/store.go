package store

import (
	"context"

	"credrelay/internal/credential/models"
	pkgerrors "credrelay/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
)

// HolderStore persists claimed credentials on the holder side.
// PutVC is an idempotent upsert keyed by credential id: the claim
// protocol can redeliver the same item after a crash before confirm,
// and two independent syncs of one holder must converge.
type HolderStore interface {
	PutVC(ctx context.Context, vc models.VerifiableCredential) error
	GetVCByID(ctx context.Context, vcID string) (models.VerifiableCredential, error)
	ListVCs(ctx context.Context) ([]models.VerifiableCredential, error)
}

// IssuerStore persists issued-credential records on the issuer side,
// keyed by an opaque record id with a secondary lookup by the current
// head credential id. PutRecord is an idempotent upsert.
type IssuerStore interface {
	PutRecord(ctx context.Context, record models.IssuedCredentialRecord) error
	GetRecord(ctx context.Context, recordID string) (models.IssuedCredentialRecord, error)
	FindByVCID(ctx context.Context, vcID string) ([]models.IssuedCredentialRecord, error)
	UpdateRecord(ctx context.Context, record models.IssuedCredentialRecord) error
	ListRecords(ctx context.Context) ([]models.IssuedCredentialRecord, error)
}

// Store combines both sides for deployments running holder and issuer
// roles against one local database.
type Store interface {
	HolderStore
	IssuerStore
	Close() error
}
