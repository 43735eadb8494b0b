package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"credrelay/internal/credential/models"
)

func (s *ProcessorSuite) TestFetchPendingMergesInTypeOrder() {
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeIssuance).
		Return([]models.LifecycleRequest{{ID: "iss-1"}, {ID: "iss-2"}}, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeRenewal).
		Return(nil, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeUpdate).
		Return([]models.LifecycleRequest{{ID: "upd-1"}}, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeRevoke).
		Return([]models.LifecycleRequest{{ID: "rev-1"}}, nil)

	requests, err := s.newProcessor().FetchPending(context.Background())
	s.Require().NoError(err)

	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
	}
	s.Equal([]string{"iss-1", "iss-2", "upd-1", "rev-1"}, ids)
}

func (s *ProcessorSuite) TestFetchPendingPropagatesFetchError() {
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeRenewal).
		Return(nil, errors.New("listing unavailable"))
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	_, err := s.newProcessor().FetchPending(context.Background())
	s.Error(err)
}

func (s *ProcessorSuite) TestFetchPendingAnnotatesSchemaInfo() {
	issuance := s.pendingRequest(models.TypeIssuance, map[string]any{
		"schema_id":      "schema-diploma",
		"schema_version": 2,
		"attributes":     map[string]any{"grade": "A"},
	})
	revoke := s.pendingRequest(models.TypeRevoke, map[string]any{
		"vc_id": "schema-diploma:3:did:web:holder.example.com:1700000000000",
	})

	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeIssuance).
		Return([]models.LifecycleRequest{issuance}, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeRevoke).
		Return([]models.LifecycleRequest{revoke}, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	requests, err := s.newProcessor().FetchPending(context.Background())
	s.Require().NoError(err)
	s.Require().Len(requests, 2)

	s.Equal("schema-diploma", requests[0].SchemaID)
	s.Equal(2, requests[0].SchemaVersion)
	s.Equal("schema-diploma", requests[1].SchemaID)
	s.Equal(3, requests[1].SchemaVersion)
}

func (s *ProcessorSuite) TestFetchPendingListsUnreadableBodyWithoutSchema() {
	// Addressed to someone else: the issuer key cannot open it.
	foreignEnv, err := s.codec.EncryptFor(map[string]any{
		"schema_id":      "schema-diploma",
		"schema_version": 2,
	}, s.holder.Public)
	s.Require().NoError(err)
	legacy := models.LifecycleRequest{
		ID:            "req-legacy",
		EncryptedBody: foreignEnv,
		Type:          models.TypeIssuance,
		Status:        models.StatusPending,
	}
	readable := s.pendingRequest(models.TypeIssuance, map[string]any{
		"schema_id":      "schema-diploma",
		"schema_version": 2,
	})

	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), models.TypeIssuance).
		Return([]models.LifecycleRequest{legacy, readable}, nil)
	s.boundary.EXPECT().
		PendingRequests(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	requests, err := s.newProcessor().FetchPending(context.Background())
	s.Require().NoError(err)
	s.Require().Len(requests, 2)

	s.Equal("req-legacy", requests[0].ID)
	s.Empty(requests[0].SchemaID)
	s.Zero(requests[0].SchemaVersion)
	s.Equal("schema-diploma", requests[1].SchemaID)
	s.Equal(2, requests[1].SchemaVersion)
}

func (s *ProcessorSuite) TestRejectAllTalliesFailuresAndContinues() {
	requests := []models.LifecycleRequest{
		{ID: "a", Type: models.TypeIssuance, Status: models.StatusPending},
		{ID: "b", Type: models.TypeUpdate, Status: models.StatusPending},
		{ID: "c", Type: models.TypeRevoke, Status: models.StatusPending},
		{ID: "d", Type: models.TypeRenewal, Status: models.StatusRejected},
	}
	s.boundary.EXPECT().RejectRequest(gomock.Any(), models.TypeIssuance, "a").Return(nil)
	s.boundary.EXPECT().RejectRequest(gomock.Any(), models.TypeUpdate, "b").Return(errors.New("conflict"))
	s.boundary.EXPECT().RejectRequest(gomock.Any(), models.TypeRevoke, "c").Return(nil)

	outcome := s.newProcessor().RejectAll(context.Background(), requests)
	s.Equal(2, outcome.Rejected)
	s.Equal(1, outcome.Failed)
	s.Len(outcome.Errors, 1)
}
