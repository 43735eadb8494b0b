package store

import (
	"context"
	"sync"

	"credrelay/internal/credential/models"
	dErrors "credrelay/pkg/domain-errors"
)

// InMemoryStore is an in-memory implementation of Store for tests or
// single-run tooling. It is safe for concurrent access but does not
// persist across process restarts.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]models.VerifiableCredential
	records     map[string]models.IssuedCredentialRecord
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		credentials: make(map[string]models.VerifiableCredential),
		records:     make(map[string]models.IssuedCredentialRecord),
	}
}

// PutVC stores or overwrites a credential by id.
func (s *InMemoryStore) PutVC(_ context.Context, vc models.VerifiableCredential) error {
	if vc.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credential id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[vc.ID] = vc
	return nil
}

// GetVCByID retrieves a credential by id or returns ErrNotFound.
func (s *InMemoryStore) GetVCByID(_ context.Context, vcID string) (models.VerifiableCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vc, ok := s.credentials[vcID]; ok {
		return vc, nil
	}
	return models.VerifiableCredential{}, ErrNotFound
}

// ListVCs returns a snapshot of every stored credential.
func (s *InMemoryStore) ListVCs(_ context.Context) ([]models.VerifiableCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.VerifiableCredential, 0, len(s.credentials))
	for _, vc := range s.credentials {
		out = append(out, vc)
	}
	return out, nil
}

// PutRecord stores or overwrites an issued-credential record by id.
func (s *InMemoryStore) PutRecord(_ context.Context, record models.IssuedCredentialRecord) error {
	if record.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "record id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// GetRecord retrieves an issued-credential record or returns ErrNotFound.
func (s *InMemoryStore) GetRecord(_ context.Context, recordID string) (models.IssuedCredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[recordID]; ok {
		return record, nil
	}
	return models.IssuedCredentialRecord{}, ErrNotFound
}

// FindByVCID returns every record whose current head is vcID.
func (s *InMemoryStore) FindByVCID(_ context.Context, vcID string) ([]models.IssuedCredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.IssuedCredentialRecord
	for _, record := range s.records {
		if record.VCID == vcID {
			out = append(out, record)
		}
	}
	return out, nil
}

// UpdateRecord overwrites an existing record; the record must exist.
func (s *InMemoryStore) UpdateRecord(_ context.Context, record models.IssuedCredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return ErrNotFound
	}
	s.records[record.ID] = record
	return nil
}

// ListRecords returns a snapshot of every issued-credential record.
func (s *InMemoryStore) ListRecords(_ context.Context) ([]models.IssuedCredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.IssuedCredentialRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

var _ Store = (*InMemoryStore)(nil)
