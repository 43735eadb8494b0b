// Package did resolves DID documents to raw public key material.
package did

import (
	"context"
	"log/slog"
	"time"

	"github.com/bluele/gcache"

	"credrelay/internal/transport/api"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
	"credrelay/pkg/secrets"
)

const (
	cacheSize = 256

	// X25519 public keys as published in DID documents.
	encryptionKeyLen = 32
	// Ed25519 public keys used for proof verification.
	signingKeyLen = 32
)

// DocumentSource fetches DID documents; satisfied by the api client.
type DocumentSource interface {
	ResolveDIDDocument(ctx context.Context, did id.DID) (api.DIDDocument, error)
}

// Option configures the Resolver.
type Option func(*Resolver)

// Resolver resolves and caches public keys for DIDs. Documents are
// cached with a TTL so repeated lifecycle processing for one holder
// does not hammer the resolution boundary.
type Resolver struct {
	source DocumentSource
	cache  gcache.Cache
	logger *slog.Logger
}

// New creates a resolver over the given document source.
func New(source DocumentSource, ttl time.Duration, opts ...Option) *Resolver {
	r := &Resolver{source: source}
	r.cache = gcache.New(cacheSize).LRU().Expiration(ttl).Build()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithLogger configures a logger for the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// EncryptionKey resolves the DID's active public key for envelope
// encryption. Failure is fatal for the operation needing the key.
func (r *Resolver) EncryptionKey(ctx context.Context, did id.DID) ([]byte, error) {
	return r.key(ctx, did, encryptionKeyLen)
}

// SigningKey resolves the DID's active public key for proof checking.
func (r *Resolver) SigningKey(ctx context.Context, did id.DID) ([]byte, error) {
	return r.key(ctx, did, signingKeyLen)
}

func (r *Resolver) key(ctx context.Context, did id.DID, wantLen int) ([]byte, error) {
	if did.IsZero() {
		return nil, dErrors.New(dErrors.CodePrecondition, "did required for key resolution")
	}

	doc, err := r.document(ctx, did)
	if err != nil {
		return nil, err
	}

	hexKey := doc.PublicKeyHex()
	if hexKey == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "did document carries no usable key")
	}
	raw, err := secrets.DecodeKey(hexKey, wantLen)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "did document key material malformed")
	}
	return raw, nil
}

func (r *Resolver) document(ctx context.Context, did id.DID) (api.DIDDocument, error) {
	if cached, err := r.cache.Get(did.String()); err == nil {
		if doc, ok := cached.(api.DIDDocument); ok {
			return doc, nil
		}
	}

	doc, err := r.source.ResolveDIDDocument(ctx, did)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBoundary, "could not resolve did document")
	}
	if err := r.cache.Set(did.String(), doc); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "did document cache write failed", "did", did.String(), "error", err)
	}
	return doc, nil
}
