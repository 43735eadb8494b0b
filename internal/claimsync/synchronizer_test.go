package claimsync

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"credrelay/internal/credential/models"
	"credrelay/internal/credential/sign"
	"credrelay/internal/credential/store"
	"credrelay/internal/transport/api"
	id "credrelay/pkg/domain"
	dErrors "credrelay/pkg/domain-errors"
	"credrelay/pkg/secrets"
)

func (s *SyncSuite) encryptVC(vcID, claimID, source string) models.ClaimItem {
	vc := map[string]any{
		"id":     vcID,
		"type":   []string{"VerifiableCredential", "Diploma"},
		"issuer": "did:web:issuer.example.com",
		"credentialSubject": map[string]any{
			"id":    "did:web:holder.example.com",
			"grade": "A",
		},
		"validFrom": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	env, err := s.codec.EncryptFor(vc, s.holder.Public)
	s.Require().NoError(err)
	return models.ClaimItem{ClaimID: claimID, Source: source, EncryptedBody: env}
}

func (s *SyncSuite) TestFatalPreconditions() {
	s.Run("missing holder DID", func() {
		sync := New(s.boundary, s.codec, s.store, Config{AccessToken: "t", PrivateKey: s.holder.Private})
		_, err := sync.Run(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})

	s.Run("missing access token", func() {
		sync := New(s.boundary, s.codec, s.store, Config{HolderDID: "did:web:h", PrivateKey: s.holder.Private})
		_, err := sync.Run(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})

	s.Run("missing private key", func() {
		sync := New(s.boundary, s.codec, s.store, Config{HolderDID: "did:web:h", AccessToken: "t"})
		_, err := sync.Run(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	})
}

func (s *SyncSuite) TestSinglePageCycle() {
	item1 := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")
	item2 := s.encryptVC("diploma:2:did:web:holder.example.com:200", "c2", "changed_vcs")

	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:     []models.ClaimItem{item1, item2},
		ClaimedCount:   2,
		RemainingCount: 0,
		HasMore:        false,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(),
		[]api.ConfirmItem{{ClaimID: "c1", Source: "issued_vcs"}, {ClaimID: "c2", Source: "changed_vcs"}},
	).Return(&api.ConfirmResult{ConfirmedCount: 2, RequestedCount: 2}, nil)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)
	s.Equal(1, result.Pages)
	s.Equal(2, result.Claimed)
	s.Equal(2, result.Stored)
	s.Equal(0, result.Skipped)
	s.Equal(2, result.Confirmed)
	s.Len(result.Credentials, 2)

	stored, err := s.store.GetVCByID(context.Background(), "diploma:2:did:web:holder.example.com:100")
	s.Require().NoError(err)
	s.Equal("c1", stored.ClaimID)
	s.Equal("issued_vcs", stored.Source)
}

func (s *SyncSuite) TestSkipsUndeliverableItems() {
	good := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")
	garbage := models.ClaimItem{ClaimID: "c2", Source: "issued_vcs", EncryptedBody: "not-an-envelope"}

	// Valid envelope whose payload lacks a credential id.
	env, err := s.codec.EncryptFor(map[string]any{"name": "stray"}, s.holder.Public)
	s.Require().NoError(err)
	noID := models.ClaimItem{ClaimID: "c3", Source: "issued_vcs", EncryptedBody: env}

	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:   []models.ClaimItem{good, garbage, noID},
		ClaimedCount: 3,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(),
		[]api.ConfirmItem{{ClaimID: "c1", Source: "issued_vcs"}},
	).Return(&api.ConfirmResult{ConfirmedCount: 1, RequestedCount: 1}, nil)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)
	s.Equal(1, result.Stored)
	s.Equal(2, result.Skipped)
	s.Equal(1, result.Confirmed)
}

// faultyStore simulates a storage fault: writes succeed but reads miss.
type faultyStore struct {
	*store.InMemoryStore
}

func (f *faultyStore) GetVCByID(_ context.Context, _ string) (models.VerifiableCredential, error) {
	return models.VerifiableCredential{}, store.ErrNotFound
}

func (s *SyncSuite) TestVerifyFailureWithholdsConfirm() {
	item := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")
	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:   []models.ClaimItem{item},
		ClaimedCount: 1,
	}, nil)
	// No ConfirmBatch expectation: confirm must be withheld.

	sync := New(s.boundary, s.codec, &faultyStore{s.store}, Config{
		HolderDID:   "did:web:holder.example.com",
		PrivateKey:  s.holder.Private,
		AccessToken: "token",
	})
	_, err := sync.Run(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeStorageFault))
}

func (s *SyncSuite) TestMultiPageSequential() {
	page1 := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")
	page2 := s.encryptVC("diploma:2:did:web:holder.example.com:200", "c2", "issued_vcs")

	first := s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:     []models.ClaimItem{page1},
		ClaimedCount:   1,
		RemainingCount: 1,
		HasMore:        true,
	}, nil)
	firstConfirm := s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(),
		[]api.ConfirmItem{{ClaimID: "c1", Source: "issued_vcs"}},
	).Return(&api.ConfirmResult{ConfirmedCount: 1, RequestedCount: 1}, nil).After(first)
	second := s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:     []models.ClaimItem{page2},
		ClaimedCount:   1,
		RemainingCount: 0,
		HasMore:        false,
	}, nil).After(firstConfirm)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(),
		[]api.ConfirmItem{{ClaimID: "c2", Source: "issued_vcs"}},
	).Return(&api.ConfirmResult{ConfirmedCount: 1, RequestedCount: 1}, nil).After(second)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)
	s.Equal(2, result.Pages)
	s.Equal(2, result.Confirmed)
	s.Len(result.Credentials, 2)
}

func (s *SyncSuite) TestNoOpSyncReturnsExistingStore() {
	existing := models.VerifiableCredential{ID: "diploma:1:did:web:holder.example.com:50"}
	s.Require().NoError(s.store.PutVC(context.Background(), existing))

	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedCount:   0,
		RemainingCount: 0,
	}, nil)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)
	s.Equal(0, result.Claimed)
	s.Require().Len(result.Credentials, 1)
	s.Equal(existing.ID, result.Credentials[0].ID)
}

func (s *SyncSuite) TestConfirmShortfallIsError() {
	item := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")
	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:   []models.ClaimItem{item},
		ClaimedCount: 1,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&api.ConfirmResult{ConfirmedCount: 0, RequestedCount: 1}, nil)

	_, err := s.newSynchronizer().Run(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeBoundary))
}

func (s *SyncSuite) TestRedeliveryIsIdempotent() {
	item := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c1", "issued_vcs")

	// First run crashes conceptually after store: confirm reports zero.
	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:   []models.ClaimItem{item},
		ClaimedCount: 1,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&api.ConfirmResult{ConfirmedCount: 0, RequestedCount: 1}, nil)

	_, err := s.newSynchronizer().Run(context.Background())
	s.Require().Error(err)

	// Redelivery of the same item on the next run.
	redelivered := s.encryptVC("diploma:2:did:web:holder.example.com:100", "c9", "issued_vcs")
	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:   []models.ClaimItem{redelivered},
		ClaimedCount: 1,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&api.ConfirmResult{ConfirmedCount: 1, RequestedCount: 1}, nil)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)

	// Same credential id: exactly one record, no duplicates.
	s.Len(result.Credentials, 1)
}

func (s *SyncSuite) TestAllSkippedPageDoesNotLoop() {
	garbage := models.ClaimItem{ClaimID: "c1", Source: "issued_vcs", EncryptedBody: "junk"}
	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs:     []models.ClaimItem{garbage},
		ClaimedCount:   1,
		RemainingCount: 5,
		HasMore:        true,
	}, nil)

	result, err := s.newSynchronizer().Run(context.Background())
	s.Require().NoError(err)
	s.Equal(1, result.Skipped)
	s.Equal(0, result.Confirmed)
}

// staticKeySource hands out one fixed issuer verification key.
type staticKeySource struct {
	key []byte
}

func (k staticKeySource) SigningKey(_ context.Context, _ id.DID) ([]byte, error) {
	return k.key, nil
}

func (s *SyncSuite) TestProofCheckGatesStore() {
	pub, priv, err := secrets.GenerateSigningKey()
	s.Require().NoError(err)
	signer, err := sign.New("did:web:issuer.example.com", priv)
	s.Require().NoError(err)
	signedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	base := models.VerifiableCredential{
		ID:     "diploma:2:did:web:holder.example.com:100",
		Type:   []string{"VerifiableCredential", "Diploma"},
		Issuer: "did:web:issuer.example.com",
		CredentialSubject: map[string]any{
			"id":    "did:web:holder.example.com",
			"grade": "A",
		},
		ValidFrom: signedAt,
	}
	valid, err := signer.Sign(base, signedAt)
	s.Require().NoError(err)

	// Signed, then the subject content altered in transit.
	tampered := base
	tampered.ID = "diploma:2:did:web:holder.example.com:200"
	tampered, err = signer.Sign(tampered, signedAt)
	s.Require().NoError(err)
	tampered.CredentialSubject = map[string]any{
		"id":    "did:web:holder.example.com",
		"grade": "F",
	}

	validEnv, err := s.codec.EncryptFor(valid, s.holder.Public)
	s.Require().NoError(err)
	tamperedEnv, err := s.codec.EncryptFor(tampered, s.holder.Public)
	s.Require().NoError(err)

	s.boundary.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), 20).Return(&api.ClaimBatchResult{
		ClaimedVCs: []models.ClaimItem{
			{ClaimID: "c1", Source: "issued_vcs", EncryptedBody: validEnv},
			{ClaimID: "c2", Source: "issued_vcs", EncryptedBody: tamperedEnv},
		},
		ClaimedCount: 2,
	}, nil)
	s.boundary.EXPECT().ConfirmBatch(gomock.Any(), gomock.Any(),
		[]api.ConfirmItem{{ClaimID: "c1", Source: "issued_vcs"}},
	).Return(&api.ConfirmResult{ConfirmedCount: 1, RequestedCount: 1}, nil)

	sync := New(s.boundary, s.codec, s.store, Config{
		HolderDID:   "did:web:holder.example.com",
		PrivateKey:  s.holder.Private,
		AccessToken: "token",
	}, WithProofChecker(sign.NewChecker(staticKeySource{pub})))

	result, err := sync.Run(context.Background())
	s.Require().NoError(err)
	s.Equal(1, result.Stored)
	s.Equal(1, result.Skipped)
	s.Equal(1, result.Confirmed)

	_, err = s.store.GetVCByID(context.Background(), valid.ID)
	s.Require().NoError(err)
	_, err = s.store.GetVCByID(context.Background(), tampered.ID)
	s.ErrorIs(err, store.ErrNotFound)
}
