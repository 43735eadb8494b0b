package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"credrelay/internal/credential/models"
	"credrelay/internal/credential/store"
	"credrelay/internal/lifecycle"
	dErrors "credrelay/pkg/domain-errors"
)

// fakeReview scripts the review service without a real processor.
type fakeReview struct {
	pending    []models.LifecycleRequest
	pendingErr error

	processed   []string
	processErr  error
	lastVerdict models.Decision

	rejectOutcome lifecycle.BulkOutcome
}

func (f *fakeReview) FetchPending(context.Context) ([]models.LifecycleRequest, error) {
	return f.pending, f.pendingErr
}

func (f *fakeReview) Process(_ context.Context, req models.LifecycleRequest, decision models.Decision) (*lifecycle.Outcome, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	f.processed = append(f.processed, req.ID)
	f.lastVerdict = decision
	return &lifecycle.Outcome{RequestID: req.ID, Type: req.Type, Decision: decision}, nil
}

func (f *fakeReview) RejectAll(context.Context, []models.LifecycleRequest) lifecycle.BulkOutcome {
	return f.rejectOutcome
}

type HandlerSuite struct {
	suite.Suite
	review *fakeReview
	store  *store.InMemoryStore
	server *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.review = &fakeReview{}
	s.store = store.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(s.review, s.store, logger)
	s.server = httptest.NewServer(NewRouter(handler, logger))
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func (s *HandlerSuite) postJSON(path string, body any) *http.Response {
	buf, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(buf))
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) TestPendingListsRequests() {
	s.review.pending = []models.LifecycleRequest{
		{ID: "req-1", Type: models.TypeIssuance, Status: models.StatusPending},
		{ID: "req-2", Type: models.TypeRevoke, Status: models.StatusPending},
	}

	resp, err := http.Get(s.server.URL + "/v1/requests/pending")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(2, body.Count)
}

func (s *HandlerSuite) TestDecisionProcessesMatchingRequest() {
	s.review.pending = []models.LifecycleRequest{
		{ID: "req-1", Type: models.TypeIssuance, Status: models.StatusPending},
	}

	resp := s.postJSON("/v1/requests/req-1/decision", decisionBody{Decision: models.DecisionApproved})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal([]string{"req-1"}, s.review.processed)
	s.Equal(models.DecisionApproved, s.review.lastVerdict)
}

func (s *HandlerSuite) TestDecisionUnknownRequestIs404() {
	resp := s.postJSON("/v1/requests/ghost/decision", decisionBody{Decision: models.DecisionRejected})
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Empty(s.review.processed)
}

func (s *HandlerSuite) TestDecisionRejectsBadVerdict() {
	resp := s.postJSON("/v1/requests/req-1/decision", map[string]string{"decision": "MAYBE"})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestDecisionConflictSurfacesAs409() {
	s.review.pending = []models.LifecycleRequest{{ID: "req-1", Status: models.StatusPending}}
	s.review.processErr = dErrors.New(dErrors.CodeConflict, "request has already been decided")

	resp := s.postJSON("/v1/requests/req-1/decision", decisionBody{Decision: models.DecisionApproved})
	defer resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *HandlerSuite) TestRejectAllReportsPartialFailure() {
	s.review.rejectOutcome = lifecycle.BulkOutcome{Rejected: 2, Failed: 1, Errors: []error{errors.New("conflict")}}

	resp := s.postJSON("/v1/requests/reject-all", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusMultiStatus, resp.StatusCode)

	var body map[string]int
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(2, body["rejected"])
	s.Equal(1, body["failed"])
}

func (s *HandlerSuite) TestRecordsRenderLifetimeExpiry() {
	record := models.IssuedCredentialRecord{
		ID:          models.NewRecordID(),
		VCID:        "vc-1",
		Status:      models.StatusApproved,
		ActiveUntil: models.LifetimeSentinel,
		HolderDID:   "did:web:holder.example.com",
		SchemaID:    "schema-diploma",
	}
	s.Require().NoError(s.store.PutRecord(context.Background(), record))

	resp, err := http.Get(s.server.URL + "/v1/records")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Records []recordView `json:"records"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().Len(body.Records, 1)
	s.Equal("Lifetime", body.Records[0].ActiveUntil)
}
