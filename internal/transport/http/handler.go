// Package httptransport exposes the issuer review API. Handlers stay
// thin and delegate to the lifecycle processor; transport concerns do
// not leak into the domain packages.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credrelay/internal/credential/models"
	"credrelay/internal/credential/store"
	"credrelay/internal/lifecycle"
	"credrelay/internal/transport/httputil"
	dErrors "credrelay/pkg/domain-errors"
	"credrelay/pkg/validation"
)

// ReviewService is the slice of the lifecycle processor the review API needs.
type ReviewService interface {
	FetchPending(ctx context.Context) ([]models.LifecycleRequest, error)
	Process(ctx context.Context, req models.LifecycleRequest, decision models.Decision) (*lifecycle.Outcome, error)
	RejectAll(ctx context.Context, requests []models.LifecycleRequest) lifecycle.BulkOutcome
}

// Handler handles issuer review endpoints.
type Handler struct {
	logger  *slog.Logger
	review  ReviewService
	records store.IssuerStore
}

// NewHandler creates the review handler.
func NewHandler(review ReviewService, records store.IssuerStore, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		review:  review,
		records: records,
	}
}

// handlePending lists every request awaiting review across all types.
func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.review.FetchPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"requests": requests,
		"count":    len(requests),
	})
}

type decisionBody struct {
	Decision models.Decision `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
}

// handleDecision applies the reviewer's verdict to one pending request.
// The request is re-fetched by id so a stale listing cannot decide an
// already consumed request.
func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}
	if err := validation.Validate(body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	pending, err := h.review.FetchPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var target *models.LifecycleRequest
	for i := range pending {
		if pending[i].ID == requestID {
			target = &pending[i]
			break
		}
	}
	if target == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no pending request with that id"))
		return
	}

	outcome, err := h.review.Process(r.Context(), *target, body.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// handleRejectAll sweeps every pending request with a rejection.
func (h *Handler) handleRejectAll(w http.ResponseWriter, r *http.Request) {
	pending, err := h.review.FetchPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome := h.review.RejectAll(r.Context(), pending)

	status := http.StatusOK
	if outcome.Failed > 0 {
		status = http.StatusMultiStatus
	}
	httputil.WriteJSON(w, status, map[string]int{
		"rejected": outcome.Rejected,
		"failed":   outcome.Failed,
	})
}

// recordView is the list rendering of an issued record; expiry uses
// the operator-facing display form.
type recordView struct {
	ID          string              `json:"id"`
	VCID        string              `json:"vc_id"`
	Status      models.RecordStatus `json:"status"`
	ActiveUntil string              `json:"active_until"`
	HolderDID   string              `json:"holder_did"`
	SchemaID    string              `json:"schema_id"`
	Versions    int                 `json:"versions"`
}

// handleRecords lists the issuer's issued records.
func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.ListRecords(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	views := make([]recordView, 0, len(records))
	for _, record := range records {
		views = append(views, recordView{
			ID:          record.ID,
			VCID:        record.VCID,
			Status:      record.Status,
			ActiveUntil: models.ActiveUntilDisplay(record.ActiveUntil),
			HolderDID:   record.HolderDID.String(),
			SchemaID:    record.SchemaID,
			Versions:    len(record.VCHistory),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"records": views,
		"count":   len(views),
	})
}
