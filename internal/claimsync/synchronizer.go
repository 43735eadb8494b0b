// Package claimsync implements the holder-side claim protocol: claim a
// page of deliveries, decrypt, store, verify local durability, then
// confirm. Confirmation is the only action that removes an item from
// the server queue, so it happens strictly after the verify step; a
// crash at any point leaves unconfirmed items to be redelivered, and
// the idempotent store makes redelivery harmless.
package claimsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"credrelay/internal/claimsync/metrics"
	"credrelay/internal/credential/models"
	"credrelay/internal/credential/store"
	"credrelay/internal/platform/tracer"
	"credrelay/internal/transport/api"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
)

// Boundary is the claim/confirm side of the ledger API.
type Boundary interface {
	ClaimBatch(ctx context.Context, holderDID id.DID, limit int) (*api.ClaimBatchResult, error)
	ConfirmBatch(ctx context.Context, holderDID id.DID, items []api.ConfirmItem) (*api.ConfirmResult, error)
}

// Decryptor opens envelopes addressed to the holder.
type Decryptor interface {
	DecryptWith(envelope string, recipientPrivate []byte, out any) error
}

// ProofChecker validates a credential's proof before it is stored.
type ProofChecker interface {
	CheckProof(ctx context.Context, vc models.VerifiableCredential) error
}

// Config carries the holder identity and claim tuning.
type Config struct {
	HolderDID   id.DID
	PrivateKey  []byte
	AccessToken string
	PageSize    int
}

// Option configures the Synchronizer.
type Option func(*Synchronizer)

// Synchronizer runs the claim protocol for one holder.
type Synchronizer struct {
	boundary Boundary
	codec    Decryptor
	proofs   ProofChecker
	store    store.HolderStore
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
}

// New creates a synchronizer with the required dependencies.
func New(boundary Boundary, codec Decryptor, holderStore store.HolderStore, cfg Config, opts ...Option) *Synchronizer {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	s := &Synchronizer{
		boundary: boundary,
		codec:    codec,
		store:    holderStore,
		cfg:      cfg,
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger configures a logger for the synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger }
}

// WithProofChecker enables proof verification between decrypt and
// store. A credential whose proof does not check out is skipped like
// an undecryptable one.
func WithProofChecker(checker ProofChecker) Option {
	return func(s *Synchronizer) { s.proofs = checker }
}

// WithMetrics configures Prometheus collectors for the synchronizer.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithTracer configures a tracer for the synchronizer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Synchronizer) { s.tracer = t }
}

// Result summarizes one synchronization run. Credentials holds the
// full local store contents after the run, so a no-op sync still
// returns everything already claimed.
type Result struct {
	Pages       int
	Claimed     int
	Stored      int
	Skipped     int
	Confirmed   int
	Credentials []models.VerifiableCredential
}

// pageState names the per-page protocol steps. Transitions are typed
// functions so resume and failure behavior is testable in isolation.
type pageState int

const (
	stateClaim pageState = iota
	stateDecrypt
	stateStore
	stateVerify
	stateConfirm
	statePageDone
)

// pageRun carries one page through the state machine.
type pageRun struct {
	batch     *api.ClaimBatchResult
	decrypted []models.VerifiableCredential
	skipped   int
	verified  []api.ConfirmItem
	missing   []string
}

// Run executes the claim protocol until the server queue is drained or
// an unrecoverable failure occurs. It is safe to abandon between pages:
// confirmed items are gone from the queue, unconfirmed items are simply
// claimed again on the next run.
func (s *Synchronizer) Run(ctx context.Context) (result *Result, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSyncRun,
		tracer.String(tracer.AttrHolderDID, tracer.HashDID(s.cfg.HolderDID.String())),
	)
	defer func() {
		span.End(err)
		s.observeRun(started, err)
	}()

	if err = s.checkPreconditions(); err != nil {
		return nil, err
	}

	result = &Result{}
	for {
		page, pageErr := s.runPage(ctx, result)
		if pageErr != nil {
			err = pageErr
			return nil, err
		}
		if page == nil || !s.shouldContinue(page) {
			break
		}
	}

	credentials, listErr := s.store.ListVCs(ctx)
	if listErr != nil {
		err = dErrors.Wrap(listErr, dErrors.CodeInternal, "could not load local credentials")
		return nil, err
	}
	result.Credentials = credentials
	return result, nil
}

// checkPreconditions enforces the fatal preconditions: without an
// identity, a session token, and key material there is nothing to run.
func (s *Synchronizer) checkPreconditions() error {
	if s.cfg.HolderDID.IsZero() {
		return dErrors.New(dErrors.CodePrecondition, "holder DID is missing")
	}
	if s.cfg.AccessToken == "" {
		return dErrors.New(dErrors.CodePrecondition, "access token is missing")
	}
	if len(s.cfg.PrivateKey) != 32 {
		return dErrors.New(dErrors.CodePrecondition, "holder private key is missing")
	}
	if s.store == nil {
		return dErrors.New(dErrors.CodePrecondition, "credential store is not open")
	}
	return nil
}

// runPage drives one page through claim -> decrypt -> store -> verify
// -> confirm, accumulating counts into result.
func (s *Synchronizer) runPage(ctx context.Context, result *Result) (*pageRun, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSyncPage, tracer.Int(tracer.AttrPage, result.Pages+1))

	page := &pageRun{}
	state := stateClaim
	var err error
	for state != statePageDone {
		switch state {
		case stateClaim:
			state, err = s.claim(ctx, page)
		case stateDecrypt:
			state, err = s.decrypt(ctx, page)
		case stateStore:
			state, err = s.storePage(ctx, page)
		case stateVerify:
			state, err = s.verify(ctx, page)
		case stateConfirm:
			state, err = s.confirm(ctx, page)
		}
		if err != nil {
			span.End(err)
			return nil, err
		}
	}

	result.Pages++
	result.Claimed += len(page.batch.ClaimedVCs)
	result.Stored += len(page.decrypted)
	result.Skipped += page.skipped
	result.Confirmed += len(page.verified)
	span.SetAttributes(
		tracer.Int(tracer.AttrClaimedCount, len(page.batch.ClaimedVCs)),
		tracer.Int(tracer.AttrStoredCount, len(page.decrypted)),
		tracer.Int(tracer.AttrSkippedCount, page.skipped),
		tracer.Int(tracer.AttrConfirmedCount, len(page.verified)),
		tracer.Int(tracer.AttrRemainingCount, page.batch.RemainingCount),
	)
	span.End(nil)
	s.observePage(page)
	return page, nil
}

func (s *Synchronizer) claim(ctx context.Context, page *pageRun) (pageState, error) {
	batch, err := s.boundary.ClaimBatch(ctx, s.cfg.HolderDID, s.cfg.PageSize)
	if err != nil {
		return stateClaim, dErrors.Wrap(err, dErrors.CodeBoundary, "claim request failed")
	}
	page.batch = batch
	if len(batch.ClaimedVCs) == 0 {
		return statePageDone, nil
	}
	return stateDecrypt, nil
}

// decrypt opens each claimed envelope. Items that fail to decrypt, are
// not JSON objects, or lack a non-empty id are skipped, never aborting
// the batch: foreign and legacy envelopes are expected in the queue.
// When a proof checker is configured, a credential whose proof does
// not verify against the issuer's published key is skipped the same
// way, before it reaches the store.
func (s *Synchronizer) decrypt(ctx context.Context, page *pageRun) (pageState, error) {
	for _, item := range page.batch.ClaimedVCs {
		vc, err := s.decryptItem(item)
		if err != nil {
			page.skipped++
			if s.logger != nil {
				s.logger.DebugContext(ctx, "skipping undeliverable claim item",
					"claim_id", item.ClaimID,
					"source", item.Source,
					"error", err,
				)
			}
			continue
		}
		if s.proofs != nil {
			if err := s.proofs.CheckProof(ctx, vc); err != nil {
				page.skipped++
				if s.logger != nil {
					s.logger.WarnContext(ctx, "skipping credential with unverifiable proof",
						"claim_id", item.ClaimID,
						"vc_id", vc.ID,
						"error", err,
					)
				}
				continue
			}
		}
		page.decrypted = append(page.decrypted, vc)
	}
	if len(page.decrypted) == 0 {
		// Nothing usable on this page; leave the items unconfirmed.
		return statePageDone, nil
	}
	return stateStore, nil
}

func (s *Synchronizer) decryptItem(item models.ClaimItem) (models.VerifiableCredential, error) {
	var raw map[string]any
	if err := s.codec.DecryptWith(item.EncryptedBody, s.cfg.PrivateKey, &raw); err != nil {
		return models.VerifiableCredential{}, err
	}
	vcID, ok := raw["id"].(string)
	if !ok || vcID == "" {
		return models.VerifiableCredential{}, dErrors.New(dErrors.CodeUndecryptable, "payload lacks a credential id")
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return models.VerifiableCredential{}, dErrors.Wrap(err, dErrors.CodeUndecryptable, "payload not re-encodable")
	}
	var vc models.VerifiableCredential
	if err := json.Unmarshal(payload, &vc); err != nil {
		return models.VerifiableCredential{}, dErrors.Wrap(err, dErrors.CodeUndecryptable, "payload does not decode as a credential")
	}

	vc.ClaimID = item.ClaimID
	vc.Source = item.Source
	return vc, nil
}

func (s *Synchronizer) storePage(ctx context.Context, page *pageRun) (pageState, error) {
	for _, vc := range page.decrypted {
		if err := s.store.PutVC(ctx, vc); err != nil {
			return stateStore, dErrors.Wrap(err, dErrors.CodeInternal, "could not store claimed credential")
		}
	}
	return stateVerify, nil
}

// verify re-reads every credential just written. Items missing after a
// successful write indicate a storage fault; confirm is withheld for
// the page so the server redelivers them.
func (s *Synchronizer) verify(ctx context.Context, page *pageRun) (pageState, error) {
	for _, vc := range page.decrypted {
		stored, err := s.store.GetVCByID(ctx, vc.ID)
		if err != nil || stored.ID != vc.ID {
			page.missing = append(page.missing, vc.ClaimID)
			continue
		}
		page.verified = append(page.verified, api.ConfirmItem{ClaimID: vc.ClaimID, Source: vc.Source})
	}
	if len(page.missing) > 0 {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "claimed credentials missing after store",
				"missing_claim_ids", page.missing,
			)
		}
		return stateVerify, dErrors.New(dErrors.CodeStorageFault, "stored credentials could not be read back; confirm withheld")
	}
	return stateConfirm, nil
}

func (s *Synchronizer) confirm(ctx context.Context, page *pageRun) (pageState, error) {
	result, err := s.boundary.ConfirmBatch(ctx, s.cfg.HolderDID, page.verified)
	if err != nil {
		return stateConfirm, dErrors.Wrap(err, dErrors.CodeBoundary, "confirm request failed")
	}
	if result.ConfirmedCount != result.RequestedCount || result.RequestedCount != len(page.verified) {
		return stateConfirm, dErrors.New(dErrors.CodeBoundary, "server confirmed fewer items than requested")
	}
	return statePageDone, nil
}

// shouldContinue decides whether to claim another page. A page where
// nothing could be stored must not loop: the same undeliverable items
// would be claimed again immediately.
func (s *Synchronizer) shouldContinue(page *pageRun) bool {
	if page.batch == nil || len(page.batch.ClaimedVCs) == 0 {
		return false
	}
	if len(page.decrypted) == 0 {
		return false
	}
	return page.batch.HasMore && page.batch.RemainingCount > 0
}

func (s *Synchronizer) observeRun(started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.SyncRuns.WithLabelValues(outcome).Inc()
	s.metrics.SyncDuration.Observe(time.Since(started).Seconds())
}

func (s *Synchronizer) observePage(page *pageRun) {
	if s.metrics == nil {
		return
	}
	s.metrics.ItemsClaimed.Add(float64(len(page.batch.ClaimedVCs)))
	s.metrics.ItemsStored.Add(float64(len(page.decrypted)))
	s.metrics.ItemsSkipped.Add(float64(page.skipped))
	s.metrics.ItemsConfirmed.Add(float64(len(page.verified)))
}
