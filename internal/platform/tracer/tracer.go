// Package tracer provides a lightweight tracing abstraction for the
// credential engine.
//
// It defines an internal tracer interface that doesn't depend directly
// on OpenTelemetry APIs, so the synchronizer and request processor can
// emit distributed traces while remaining decoupled from specific
// tracing implementations.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// If err is non-nil, the span is marked as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed
	// to child operations. The span must be ended via Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashDID returns a short SHA-256 hash of a DID for safe correlation
// in traces without exposing the identifier itself.
func HashDID(did string) string {
	if did == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(did))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the credential engine.
const (
	SpanSyncRun           = "claimsync.run"
	SpanSyncPage          = "claimsync.page"
	SpanLifecycleProcess  = "lifecycle.process"
	SpanLifecyclePending  = "lifecycle.pending"
	SpanLifecycleReject   = "lifecycle.reject"
	SpanRecordHistorySync = "lifecycle.record_history"
)

// Attribute keys used by the credential engine.
const (
	AttrHolderDID      = "holder_did_hash"
	AttrRequestType    = "request_type"
	AttrRequestID      = "request_id"
	AttrPage           = "page"
	AttrClaimedCount   = "claimed_count"
	AttrStoredCount    = "stored_count"
	AttrSkippedCount   = "skipped_count"
	AttrConfirmedCount = "confirmed_count"
	AttrRemainingCount = "remaining_count"
)
