// Package api is the HTTP boundary client for the credential ledger:
// claim and confirm batches, lifecycle decisions, issued-record
// maintenance, and DID document resolution.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"credrelay/internal/credential/models"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
	"credrelay/pkg/platform/circuit"
)

// Option configures the Client.
type Option func(*Client)

// Client talks to the credential ledger API. All methods take a
// context and surface non-success responses as domain errors carrying
// the server-provided message when one is present.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *slog.Logger
	maxRetries uint64
	breaker    *circuit.Breaker
}

// New creates a boundary client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		breaker:    circuit.New("ledger"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger configures a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMaxRetries bounds transient-failure retries per call.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBreaker overrides the circuit breaker guarding the retry budget.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// ClaimBatch pulls up to limit undelivered credentials for the holder.
func (c *Client) ClaimBatch(ctx context.Context, holderDID id.DID, limit int) (*ClaimBatchResult, error) {
	body := map[string]any{"holder_did": holderDID.String(), "limit": limit}
	var result ClaimBatchResult
	if err := c.do(ctx, http.MethodPost, "/v1/vc/claim", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmBatch acknowledges delivered claims. Confirmation permanently
// removes items from the server queue, so callers invoke it only after
// local durability has been verified.
func (c *Client) ConfirmBatch(ctx context.Context, holderDID id.DID, items []ConfirmItem) (*ConfirmResult, error) {
	body := map[string]any{"items": items, "holder_did": holderDID.String()}
	var result ConfirmResult
	if err := c.do(ctx, http.MethodPost, "/v1/vc/claim/confirm", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PendingRequests lists lifecycle requests of one type awaiting review.
func (c *Client) PendingRequests(ctx context.Context, t models.RequestType) ([]models.LifecycleRequest, error) {
	path := "/v1/requests?status=PENDING&type=" + url.QueryEscape(string(t))
	var result struct {
		Requests []models.LifecycleRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Requests, nil
}

// SubmitIssuance posts an issuance decision.
func (c *Client) SubmitIssuance(ctx context.Context, decision IssuanceDecision) error {
	return c.do(ctx, http.MethodPost, "/v1/requests/issue", decision, nil)
}

// SubmitUpdate posts an update decision.
func (c *Client) SubmitUpdate(ctx context.Context, decision UpdateDecision) error {
	return c.do(ctx, http.MethodPost, "/v1/requests/update", decision, nil)
}

// SubmitRenewal posts a renewal decision. A not-found from the ledger
// here means the credential being renewed is unknown to it, which has
// a specific operator remedy; the error message says so.
func (c *Client) SubmitRenewal(ctx context.Context, decision RenewalDecision) error {
	err := c.do(ctx, http.MethodPost, "/v1/requests/renew", decision, nil)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound,
			fmt.Sprintf("credential %s not found on the ledger; it may never have been anchored — ask the holder to request issuance instead of renewal", decision.VCID))
	}
	return err
}

// SubmitRevoke posts a revoke decision.
func (c *Client) SubmitRevoke(ctx context.Context, decision RevokeDecision) error {
	return c.do(ctx, http.MethodPost, "/v1/requests/revoke", decision, nil)
}

// RejectRequest posts a rejection to the boundary for the request type.
func (c *Client) RejectRequest(ctx context.Context, t models.RequestType, requestID string) error {
	body := map[string]any{"request_id": requestID, "action": models.DecisionRejected}
	switch t {
	case models.TypeIssuance:
		return c.do(ctx, http.MethodPost, "/v1/requests/issue", body, nil)
	case models.TypeRenewal:
		return c.do(ctx, http.MethodPost, "/v1/requests/renew", body, nil)
	case models.TypeUpdate:
		return c.do(ctx, http.MethodPost, "/v1/requests/update", body, nil)
	case models.TypeRevoke:
		return c.do(ctx, http.MethodPost, "/v1/requests/revoke", body, nil)
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown lifecycle request type")
	}
}

// UpdateIssuedRecord replaces the issuer-side encrypted history
// snapshot for one record.
func (c *Client) UpdateIssuedRecord(ctx context.Context, update RecordUpdate) error {
	return c.do(ctx, http.MethodPut, "/v1/issued-records/"+url.PathEscape(update.RecordID), update, nil)
}

// GetSchema fetches one credential schema version.
func (c *Client) GetSchema(ctx context.Context, schemaID string, version int) (models.Schema, error) {
	path := fmt.Sprintf("/v1/schemas/%s?version=%d", url.PathEscape(schemaID), version)
	var schema models.Schema
	if err := c.do(ctx, http.MethodGet, path, nil, &schema); err != nil {
		return models.Schema{}, err
	}
	return schema, nil
}

// ResolveDIDDocument fetches the DID document for key resolution.
func (c *Client) ResolveDIDDocument(ctx context.Context, did id.DID) (DIDDocument, error) {
	var doc DIDDocument
	if err := c.do(ctx, http.MethodGet, "/v1/did/"+url.PathEscape(did.String()), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// apiEnvelope is the common response wrapper the ledger uses.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do runs one request with capped exponential backoff on transient
// failures (network errors and 5xx responses). 4xx responses and
// success=false bodies are permanent. While the circuit is open the
// retry budget drops to a single attempt so a down ledger does not
// multiply every call by the full backoff schedule.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not marshal request body")
		}
	}

	retries := c.maxRetries
	if c.breaker != nil && c.breaker.IsOpen() {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	attempt := 0
	operation := func() error {
		attempt++
		err := c.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		if c.logger != nil {
			c.logger.WarnContext(ctx, "boundary call failed, retrying",
				"method", method,
				"path", path,
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	}

	err := backoff.Retry(operation, policy)
	c.recordOutcome(ctx, err)
	return err
}

// recordOutcome feeds the breaker. Permanent 4xx answers are the
// ledger working as intended, so only transient failures count.
func (c *Client) recordOutcome(ctx context.Context, err error) {
	if c.breaker == nil {
		return
	}
	if err == nil || isPermanent(err) {
		if change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
			c.logger.InfoContext(ctx, "boundary circuit closed", "breaker", c.breaker.Name())
		}
		return
	}
	if change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "boundary circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBoundary, "boundary request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBoundary, "could not read boundary response")
	}

	var env apiEnvelope
	if len(raw) > 0 {
		// Tolerate non-JSON error bodies; the status code still drives
		// the outcome below.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return boundaryError(resp.StatusCode, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return dErrors.Wrap(err, dErrors.CodeBoundary, "boundary response data malformed")
		}
	}
	return nil
}

func boundaryError(status int, message string) error {
	// 5xx stays CodeBoundary and is retried; everything else, including
	// an application-level success=false, is a permanent rejection.
	code := dErrors.CodeBadRequest
	switch {
	case status == http.StatusNotFound:
		code = dErrors.CodeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = dErrors.CodeUnauthorized
	case status >= 500:
		code = dErrors.CodeBoundary
	}
	if message != "" {
		return dErrors.New(code, message)
	}
	return dErrors.New(code, fmt.Sprintf("boundary request failed with status %d", status))
}

func isPermanent(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound) ||
		dErrors.HasCode(err, dErrors.CodeUnauthorized) ||
		dErrors.HasCode(err, dErrors.CodeBadRequest) ||
		dErrors.HasCode(err, dErrors.CodeInvalidInput) ||
		dErrors.HasCode(err, dErrors.CodeInternal)
}
