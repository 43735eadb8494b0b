// Package vcid derives and parses the canonical credential identifier
// "<schemaId>:<schemaVersion>:<holderDid>:<timestampMillis>".
package vcid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parsed holds the fields recovered from a credential identifier.
// SchemaID and SchemaVersion are always present on a successful parse;
// HolderDID and Timestamp are best effort because the DID itself
// contains the separator.
type Parsed struct {
	SchemaID      string
	SchemaVersion int
	HolderDID     string
	Timestamp     int64
}

// Derive builds the canonical identifier for a credential issued to
// holderDID under the given schema at ts.
func Derive(schemaID string, schemaVersion int, holderDID string, ts time.Time) string {
	return fmt.Sprintf("%s:%d:%s:%d", schemaID, schemaVersion, holderDID, ts.UnixMilli())
}

// Parse splits an identifier on ":". It requires at least the schema id
// and a positive integer schema version; everything after those is the
// holder DID, with the final segment taken as the issuance timestamp
// when it is numeric.
func Parse(id string) (*Parsed, bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 2 {
		return nil, false
	}
	if strings.TrimSpace(parts[0]) == "" {
		return nil, false
	}
	version, err := strconv.Atoi(parts[1])
	if err != nil || version <= 0 {
		return nil, false
	}

	parsed := &Parsed{SchemaID: parts[0], SchemaVersion: version}
	rest := parts[2:]
	if len(rest) == 0 {
		return parsed, true
	}

	if ts, err := strconv.ParseInt(rest[len(rest)-1], 10, 64); err == nil && len(rest) > 1 {
		parsed.Timestamp = ts
		rest = rest[:len(rest)-1]
	}
	parsed.HolderDID = strings.Join(rest, ":")
	return parsed, true
}
