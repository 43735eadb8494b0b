package config

import (
	"os"
	"strconv"
	"time"
)

// Engine captures configuration shared by the holder and issuer binaries.
type Engine struct {
	APIBaseURL     string
	OpsAddr        string
	ReviewAddr     string
	StorePath      string
	HolderDID      string
	IssuerDID      string
	IssuerName     string
	AccessToken    string
	PrivateKeyHex  string
	SigningKeyHex  string
	ClaimPageSize  int
	MinEnvelopeLen int
	RequestTimeout time.Duration
	DIDCacheTTL    time.Duration
	SyncInterval   time.Duration
	Environment    string
}

// Defaults chosen for local development; production deployments override
// everything through the environment.
const (
	defaultAPIBaseURL = "http://localhost:8090"
	defaultOpsAddr    = ":9090"
	defaultReviewAddr = ":8080"
	defaultStorePath  = "credrelay.db"
	defaultPageSize   = 20

	// Structural minimum of the envelope format: ephemeral public key,
	// GCM nonce, and auth tag with an empty plaintext.
	defaultMinEnvelopeLen = 60
)

// FromEnv builds an Engine config from environment variables so main stays lean.
func FromEnv() Engine {
	cfg := Engine{
		APIBaseURL:     envOr("CREDRELAY_API_URL", defaultAPIBaseURL),
		OpsAddr:        envOr("CREDRELAY_OPS_ADDR", defaultOpsAddr),
		ReviewAddr:     envOr("CREDRELAY_REVIEW_ADDR", defaultReviewAddr),
		StorePath:      envOr("CREDRELAY_STORE_PATH", defaultStorePath),
		HolderDID:      os.Getenv("CREDRELAY_HOLDER_DID"),
		IssuerDID:      os.Getenv("CREDRELAY_ISSUER_DID"),
		IssuerName:     envOr("CREDRELAY_ISSUER_NAME", "credrelay"),
		AccessToken:    os.Getenv("CREDRELAY_ACCESS_TOKEN"),
		PrivateKeyHex:  os.Getenv("CREDRELAY_PRIVATE_KEY"),
		SigningKeyHex:  os.Getenv("CREDRELAY_SIGNING_KEY"),
		ClaimPageSize:  envIntOr("CREDRELAY_CLAIM_PAGE_SIZE", defaultPageSize),
		MinEnvelopeLen: envIntOr("CREDRELAY_MIN_ENVELOPE_LEN", defaultMinEnvelopeLen),
		RequestTimeout: envDurationOr("CREDRELAY_REQUEST_TIMEOUT", 30*time.Second),
		DIDCacheTTL:    envDurationOr("CREDRELAY_DID_CACHE_TTL", 5*time.Minute),
		SyncInterval:   envDurationOr("CREDRELAY_SYNC_INTERVAL", time.Minute),
		Environment:    envOr("CREDRELAY_ENV", "development"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
