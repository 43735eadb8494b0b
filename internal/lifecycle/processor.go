// Package lifecycle implements the issuer-side request processor: a
// reviewed pending request becomes an approved or rejected outcome,
// producing and persisting a new signed credential where applicable.
//
// All issuer-side history mutation happens strictly after the boundary
// call reports success; a failed decision call never leaves a
// half-updated issued record. Conversely, a failed history update
// after a successful decision is only a warning: the credential
// transition itself already happened.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"credrelay/internal/credential/models"
	"credrelay/internal/credential/sign"
	"credrelay/internal/credential/store"
	"credrelay/internal/lifecycle/metrics"
	"credrelay/internal/platform/tracer"
	"credrelay/internal/transport/api"
	"credrelay/internal/vcid"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
)

// Boundary is the decision side of the ledger API.
type Boundary interface {
	SubmitIssuance(ctx context.Context, decision api.IssuanceDecision) error
	SubmitUpdate(ctx context.Context, decision api.UpdateDecision) error
	SubmitRenewal(ctx context.Context, decision api.RenewalDecision) error
	SubmitRevoke(ctx context.Context, decision api.RevokeDecision) error
	RejectRequest(ctx context.Context, t models.RequestType, requestID string) error
	PendingRequests(ctx context.Context, t models.RequestType) ([]models.LifecycleRequest, error)
	UpdateIssuedRecord(ctx context.Context, update api.RecordUpdate) error
	GetSchema(ctx context.Context, schemaID string, version int) (models.Schema, error)
}

// Codec seals and opens envelopes.
type Codec interface {
	EncryptFor(v any, recipientPublic []byte) (string, error)
	DecryptWith(envelope string, recipientPrivate []byte, out any) error
}

// KeyResolver resolves a DID to its active encryption public key.
type KeyResolver interface {
	EncryptionKey(ctx context.Context, did id.DID) ([]byte, error)
}

// Config carries the issuer identity and key material.
type Config struct {
	IssuerDID  id.DID
	IssuerName string
	// PrivateKey opens request envelopes addressed to the issuer;
	// PublicKey seals the issuer's own store snapshots.
	PrivateKey []byte
	PublicKey  []byte
}

// Option configures the Processor.
type Option func(*Processor)

// Processor reviews lifecycle requests for one issuer.
type Processor struct {
	boundary Boundary
	codec    Codec
	keys     KeyResolver
	store    store.IssuerStore
	signer   *sign.Signer
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	now      func() time.Time
}

// New creates a processor with the required dependencies.
func New(boundary Boundary, codec Codec, keys KeyResolver, issuerStore store.IssuerStore, signer *sign.Signer, cfg Config, opts ...Option) *Processor {
	p := &Processor{
		boundary: boundary,
		codec:    codec,
		keys:     keys,
		store:    issuerStore,
		signer:   signer,
		cfg:      cfg,
		tracer:   tracer.NewNoop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithLogger configures a logger for the processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithMetrics configures Prometheus collectors for the processor.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithTracer configures a tracer for the processor.
func WithTracer(t tracer.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

// WithClock overrides the clock, making derived ids and expiry
// deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// Outcome reports what one processed request did. Warning carries a
// non-fatal issuer-side cache failure after a successful transition.
type Outcome struct {
	RequestID string
	Type      models.RequestType
	Decision  models.Decision
	VCID      string
	OldVCID   string
	Warning   string
}

// Process consumes one pending request with the reviewer's decision.
func (p *Processor) Process(ctx context.Context, req models.LifecycleRequest, decision models.Decision) (outcome *Outcome, err error) {
	ctx, span := p.tracer.Start(ctx, tracer.SpanLifecycleProcess,
		tracer.String(tracer.AttrRequestID, req.ID),
		tracer.String(tracer.AttrRequestType, string(req.Type)),
	)
	started := p.now()
	defer func() {
		span.End(err)
		p.observe(req.Type, decision, started, err)
	}()

	if req.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeConflict, "request has already been decided")
	}

	if decision == models.DecisionRejected {
		if err = p.boundary.RejectRequest(ctx, req.Type, req.ID); err != nil {
			return nil, err
		}
		return &Outcome{RequestID: req.ID, Type: req.Type, Decision: decision}, nil
	}

	if len(p.cfg.PrivateKey) != 32 {
		return nil, dErrors.New(dErrors.CodePrecondition, "issuer private key is missing")
	}

	var raw map[string]any
	if err = p.codec.DecryptWith(req.EncryptedBody, p.cfg.PrivateKey, &raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUndecryptable, "could not decrypt request body")
	}
	payload, err := models.DecodeRequestBody(req.Type, raw)
	if err != nil {
		return nil, err
	}
	schemaID, schemaVersion, currentVCID, err := payload.SchemaRef()
	if err != nil {
		return nil, err
	}

	holderKey, err := p.keys.EncryptionKey(ctx, req.HolderDID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBoundary, "could not resolve holder public key")
	}

	switch req.Type {
	case models.TypeRevoke:
		return p.approveRevoke(ctx, req, currentVCID, holderKey)
	case models.TypeIssuance:
		attrs := payload.(*models.IssuancePayload).Attributes
		return p.approveIssuance(ctx, req, schemaID, schemaVersion, attrs, holderKey)
	case models.TypeUpdate:
		attrs := payload.(*models.UpdatePayload).Attributes
		return p.approveUpdate(ctx, req, schemaID, schemaVersion, currentVCID, attrs, holderKey)
	case models.TypeRenewal:
		return p.approveRenewal(ctx, req, schemaID, schemaVersion, currentVCID, holderKey)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown lifecycle request type")
	}
}

// approveRevoke submits the minimal revocation payload. No new
// credential is created; the issuer's own record keeps its full
// history and is flagged vc_status=false instead of being deleted.
func (p *Processor) approveRevoke(ctx context.Context, req models.LifecycleRequest, currentVCID string, holderKey []byte) (*Outcome, error) {
	body := map[string]any{
		"verifiable_credential": map[string]any{"id": currentVCID},
	}
	env, err := p.codec.EncryptFor(body, holderKey)
	if err != nil {
		return nil, err
	}

	if err := p.boundary.SubmitRevoke(ctx, api.RevokeDecision{
		RequestID:     req.ID,
		Action:        models.DecisionApproved,
		VCID:          currentVCID,
		EncryptedBody: env,
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{RequestID: req.ID, Type: req.Type, Decision: models.DecisionApproved, VCID: currentVCID}
	outcome.Warning = p.flagRecordRevoked(ctx, currentVCID)
	return outcome, nil
}

// flagRecordRevoked marks the issuer-side record revoked. Failure is a
// warning only: the revocation itself already succeeded upstream.
func (p *Processor) flagRecordRevoked(ctx context.Context, vcID string) string {
	records, err := p.store.FindByVCID(ctx, vcID)
	if err != nil || len(records) == 0 {
		return p.historyWarning(ctx, vcID, "revoked record not found locally", err)
	}
	record := records[0]

	env, err := p.codec.EncryptFor(map[string]any{
		"vc_status":              false,
		"verifiable_credentials": record.VCHistory,
	}, p.cfg.PublicKey)
	if err != nil {
		return p.historyWarning(ctx, vcID, "could not seal revoked record snapshot", err)
	}

	if err := p.boundary.UpdateIssuedRecord(ctx, api.RecordUpdate{
		RecordID:      record.ID,
		VCID:          record.VCID,
		EncryptedBody: env,
	}); err != nil {
		return p.historyWarning(ctx, vcID, "could not push revoked record snapshot", err)
	}

	record.Status = models.StatusRevoked
	record.EncryptedBody = env
	if err := p.store.UpdateRecord(ctx, record); err != nil {
		return p.historyWarning(ctx, vcID, "could not persist revoked record", err)
	}
	return ""
}

// approveIssuance derives a fresh credential id, signs, and submits.
func (p *Processor) approveIssuance(ctx context.Context, req models.LifecycleRequest, schemaID string, schemaVersion int, attrs map[string]any, holderKey []byte) (*Outcome, error) {
	schema, err := p.boundary.GetSchema(ctx, schemaID, schemaVersion)
	if err != nil {
		return nil, err
	}

	now := p.now()
	newID := vcid.Derive(schemaID, schemaVersion, req.HolderDID.String(), now)
	signed, hash, err := p.buildSigned(newID, schema, req.HolderDID, attrs, now)
	if err != nil {
		return nil, err
	}

	holderEnv, err := p.codec.EncryptFor(map[string]any{"verifiable_credential": signed}, holderKey)
	if err != nil {
		return nil, err
	}

	if err := p.boundary.SubmitIssuance(ctx, api.IssuanceDecision{
		RequestID:     req.ID,
		Action:        models.DecisionApproved,
		VCID:          newID,
		SchemaID:      schemaID,
		SchemaVersion: schemaVersion,
		VCHash:        hash,
		EncryptedBody: holderEnv,
		ExpiredAt:     signed.ExpiredAt,
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{RequestID: req.ID, Type: req.Type, Decision: models.DecisionApproved, VCID: newID}
	outcome.Warning = p.createRecord(ctx, req, schema, signed)
	return outcome, nil
}

// createRecord seeds the issuer-side record for a first issuance.
func (p *Processor) createRecord(ctx context.Context, req models.LifecycleRequest, schema models.Schema, signed models.VerifiableCredential) string {
	env, err := p.codec.EncryptFor(map[string]any{
		"vc_status":              true,
		"verifiable_credentials": []models.VerifiableCredential{signed},
	}, p.cfg.PublicKey)
	if err != nil {
		return p.historyWarning(ctx, signed.ID, "could not seal issued record snapshot", err)
	}

	record := models.IssuedCredentialRecord{
		ID:            models.NewRecordID(),
		Status:        models.StatusApproved,
		HolderDID:     req.HolderDID,
		IssuerDID:     p.cfg.IssuerDID,
		SchemaID:      schema.ID,
		SchemaVersion: schema.Version,
		EncryptedBody: env,
	}
	record = record.Prepend(signed)
	if err := p.store.PutRecord(ctx, record); err != nil {
		return p.historyWarning(ctx, signed.ID, "could not persist issued record", err)
	}
	return ""
}

// approveUpdate supersedes the current credential id with a freshly
// derived one and prepends the new credential to the record history.
func (p *Processor) approveUpdate(ctx context.Context, req models.LifecycleRequest, schemaID string, schemaVersion int, currentVCID string, attrs map[string]any, holderKey []byte) (*Outcome, error) {
	schema, err := p.boundary.GetSchema(ctx, schemaID, schemaVersion)
	if err != nil {
		return nil, err
	}

	now := p.now()
	newID := vcid.Derive(schemaID, schemaVersion, req.HolderDID.String(), now)
	signed, hash, err := p.buildSigned(newID, schema, req.HolderDID, attrs, now)
	if err != nil {
		return nil, err
	}

	holderEnv, err := p.codec.EncryptFor(map[string]any{"verifiable_credential": signed}, holderKey)
	if err != nil {
		return nil, err
	}

	if err := p.boundary.SubmitUpdate(ctx, api.UpdateDecision{
		RequestID:     req.ID,
		Action:        models.DecisionApproved,
		VCID:          newID,
		OldVCID:       currentVCID,
		VCType:        models.VCType(schema.Name),
		VCHash:        hash,
		EncryptedBody: holderEnv,
		ExpiredAt:     signed.ExpiredAt,
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{RequestID: req.ID, Type: req.Type, Decision: models.DecisionApproved, VCID: newID, OldVCID: currentVCID}
	outcome.Warning = p.advanceRecord(ctx, currentVCID, signed)
	return outcome, nil
}

// approveRenewal re-signs the current head with a fresh validity
// window. The credential id is preserved: renewal extends identity, it
// does not replace it.
func (p *Processor) approveRenewal(ctx context.Context, req models.LifecycleRequest, schemaID string, schemaVersion int, currentVCID string, holderKey []byte) (*Outcome, error) {
	schema, err := p.boundary.GetSchema(ctx, schemaID, schemaVersion)
	if err != nil {
		return nil, err
	}

	records, err := p.store.FindByVCID(ctx, currentVCID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not look up record for renewal")
	}
	if len(records) == 0 || records[0].Head() == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no issued record for the credential being renewed")
	}
	head := *records[0].Head()

	now := p.now()
	signed, hash, err := p.buildSigned(currentVCID, schema, req.HolderDID, subjectAttributes(head), now)
	if err != nil {
		return nil, err
	}

	holderEnv, err := p.codec.EncryptFor(map[string]any{"verifiable_credential": signed}, holderKey)
	if err != nil {
		return nil, err
	}

	if err := p.boundary.SubmitRenewal(ctx, api.RenewalDecision{
		RequestID:     req.ID,
		Action:        models.DecisionApproved,
		VCID:          currentVCID,
		VCHash:        hash,
		EncryptedBody: holderEnv,
		ExpiredAt:     signed.ExpiredAt,
	}); err != nil {
		return nil, err
	}

	outcome := &Outcome{RequestID: req.ID, Type: req.Type, Decision: models.DecisionApproved, VCID: currentVCID}
	outcome.Warning = p.advanceRecord(ctx, currentVCID, signed)
	return outcome, nil
}

// advanceRecord prepends the new head to the issuer-side history and
// pushes the re-sealed snapshot. Called only after boundary success.
func (p *Processor) advanceRecord(ctx context.Context, currentVCID string, signed models.VerifiableCredential) string {
	records, err := p.store.FindByVCID(ctx, currentVCID)
	if err != nil || len(records) == 0 {
		return p.historyWarning(ctx, currentVCID, "record not found for history advance", err)
	}
	updated := records[0].Prepend(signed)
	updated.Status = models.StatusApproved

	env, err := p.codec.EncryptFor(map[string]any{
		"vc_status":              true,
		"verifiable_credentials": updated.VCHistory,
	}, p.cfg.PublicKey)
	if err != nil {
		return p.historyWarning(ctx, currentVCID, "could not seal record snapshot", err)
	}
	updated.EncryptedBody = env

	if err := p.boundary.UpdateIssuedRecord(ctx, api.RecordUpdate{
		RecordID:      updated.ID,
		VCID:          updated.VCID,
		EncryptedBody: env,
	}); err != nil {
		return p.historyWarning(ctx, currentVCID, "could not push record snapshot", err)
	}
	if err := p.store.UpdateRecord(ctx, updated); err != nil {
		return p.historyWarning(ctx, currentVCID, "could not persist record", err)
	}
	return ""
}

// buildSigned assembles and signs a credential under the schema.
func (p *Processor) buildSigned(vcID string, schema models.Schema, holder id.DID, attrs map[string]any, now time.Time) (models.VerifiableCredential, string, error) {
	subject := map[string]any{"id": holder.String()}
	for k, v := range attrs {
		if k == "id" {
			continue
		}
		subject[k] = v
	}

	vc := models.VerifiableCredential{
		ID:                vcID,
		Type:              []string{"VerifiableCredential", models.VCType(schema.Name)},
		Issuer:            p.cfg.IssuerDID,
		IssuerName:        p.cfg.IssuerName,
		CredentialSubject: subject,
		ValidFrom:         now.UTC(),
		ExpiredAt:         models.ExpiryFrom(schema, now),
	}

	signed, err := p.signer.Sign(vc, now)
	if err != nil {
		return models.VerifiableCredential{}, "", err
	}
	hash, err := sign.Hash(signed)
	if err != nil {
		return models.VerifiableCredential{}, "", err
	}
	return signed, hash, nil
}

// subjectAttributes extracts the non-id subject attributes of a head
// credential so renewal can re-issue the same content.
func subjectAttributes(vc models.VerifiableCredential) map[string]any {
	attrs := make(map[string]any, len(vc.CredentialSubject))
	for k, v := range vc.CredentialSubject {
		if k == "id" {
			continue
		}
		attrs[k] = v
	}
	return attrs
}

func (p *Processor) historyWarning(ctx context.Context, vcID, msg string, err error) string {
	if p.logger != nil {
		p.logger.WarnContext(ctx, "issuer-side history update failed",
			"vc_id", vcID,
			"reason", msg,
			"error", err,
		)
	}
	if p.metrics != nil {
		p.metrics.HistoryWarnings.Inc()
	}
	return msg
}

func (p *Processor) observe(t models.RequestType, decision models.Decision, started time.Time, err error) {
	if p.metrics == nil {
		return
	}
	if err != nil {
		p.metrics.ProcessingFailures.WithLabelValues(string(t)).Inc()
		return
	}
	p.metrics.RequestsProcessed.WithLabelValues(string(t), string(decision)).Inc()
	p.metrics.ProcessingDuration.Observe(time.Since(started).Seconds())
}
