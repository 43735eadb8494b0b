package lifecycle

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"credrelay/internal/credential/models"
	"credrelay/internal/credential/sign"
	"credrelay/internal/transport/api"
	"credrelay/internal/vcid"
	dErrors "credrelay/pkg/domain-errors"
)

func (s *ProcessorSuite) TestAlreadyDecidedRequestConflicts() {
	req := s.pendingRequest(models.TypeIssuance, map[string]any{})
	req.Status = models.StatusDecided

	_, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ProcessorSuite) TestRejectionDelegatesToBoundary() {
	req := s.pendingRequest(models.TypeRenewal, map[string]any{"vc_id": "ignored"})
	s.boundary.EXPECT().RejectRequest(gomock.Any(), models.TypeRenewal, req.ID).Return(nil)

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionRejected)
	s.Require().NoError(err)
	s.Equal(models.DecisionRejected, outcome.Decision)
	s.Empty(outcome.VCID)
}

func (s *ProcessorSuite) TestMissingIssuerKeyIsFatal() {
	req := s.pendingRequest(models.TypeIssuance, map[string]any{})
	p := s.newProcessor()
	p.cfg.PrivateKey = nil

	_, err := p.Process(context.Background(), req, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
}

func (s *ProcessorSuite) TestUndecryptableBodyFails() {
	req := s.pendingRequest(models.TypeIssuance, map[string]any{})
	req.EncryptedBody = "bm90IGFuIGVudmVsb3Bl"

	_, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeUndecryptable))
}

func (s *ProcessorSuite) TestIssuanceSignsStoresAndSubmits() {
	req := s.pendingRequest(models.TypeIssuance, map[string]any{
		"schema_id":      "schema-diploma",
		"schema_version": 2,
		"attributes":     map[string]any{"degree": "BSc", "honours": true},
	})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2, ExpiredIn: 2}, nil)
	s.expectHolderKey()

	var submitted api.IssuanceDecision
	s.boundary.EXPECT().
		SubmitIssuance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d api.IssuanceDecision) error {
			submitted = d
			return nil
		})

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Require().NoError(err)
	s.Empty(outcome.Warning)

	s.Equal(models.DecisionApproved, submitted.Action)
	s.Equal(outcome.VCID, submitted.VCID)
	parsed, ok := vcid.Parse(submitted.VCID)
	s.Require().True(ok)
	s.Equal("schema-diploma", parsed.SchemaID)
	s.Equal(2, parsed.SchemaVersion)
	s.Require().NotNil(submitted.ExpiredAt)
	s.Equal(s.now.AddDate(2, 0, 0), submitted.ExpiredAt.UTC())

	var delivered struct {
		VC models.VerifiableCredential `json:"verifiable_credential"`
	}
	s.Require().NoError(s.codec.DecryptWith(submitted.EncryptedBody, s.holder.Private, &delivered))
	s.Equal(submitted.VCID, delivered.VC.ID)
	s.Contains(delivered.VC.Type, "Diploma")
	s.Equal("BSc", delivered.VC.CredentialSubject["degree"])
	s.Equal(testHolderDID, delivered.VC.CredentialSubject["id"])
	s.NoError(sign.Verify(delivered.VC, s.verifyKey))

	hash, err := sign.Hash(delivered.VC)
	s.Require().NoError(err)
	s.Equal(hash, submitted.VCHash)

	records, err := s.store.FindByVCID(context.Background(), submitted.VCID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(models.StatusApproved, records[0].Status)
	s.Require().NotNil(records[0].Head())
	s.Equal(submitted.VCID, records[0].Head().ID)
}

func (s *ProcessorSuite) TestUpdateSupersedesCredentialID() {
	head := s.issuedCredential("schema-diploma", 2, map[string]any{"degree": "BSc"}, s.now.Add(-48*time.Hour))
	record := s.seedRecord(head)

	req := s.pendingRequest(models.TypeUpdate, map[string]any{
		"vc_id":      head.ID,
		"attributes": map[string]any{"degree": "MSc"},
	})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2, ExpiredIn: 2}, nil)
	s.expectHolderKey()

	var submitted api.UpdateDecision
	s.boundary.EXPECT().
		SubmitUpdate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d api.UpdateDecision) error {
			submitted = d
			return nil
		})
	s.boundary.EXPECT().
		UpdateIssuedRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u api.RecordUpdate) error {
			s.Equal(record.ID, u.RecordID)
			return nil
		})

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Require().NoError(err)
	s.Empty(outcome.Warning)

	s.Equal(head.ID, submitted.OldVCID)
	s.NotEqual(head.ID, submitted.VCID)
	s.Equal("Diploma", submitted.VCType)

	updated, err := s.store.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(submitted.VCID, updated.VCID)
	s.Require().Len(updated.VCHistory, 2)
	s.Equal(submitted.VCID, updated.VCHistory[0].ID)
	s.Equal(head.ID, updated.VCHistory[1].ID)
	s.Equal("MSc", updated.VCHistory[0].CredentialSubject["degree"])
}

func (s *ProcessorSuite) TestRenewalKeepsCredentialID() {
	head := s.issuedCredential("schema-diploma", 2, map[string]any{"degree": "BSc"}, s.now.Add(-48*time.Hour))
	record := s.seedRecord(head)

	req := s.pendingRequest(models.TypeRenewal, map[string]any{"vc_id": head.ID})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2, ExpiredIn: 2}, nil)
	s.expectHolderKey()

	var submitted api.RenewalDecision
	s.boundary.EXPECT().
		SubmitRenewal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d api.RenewalDecision) error {
			submitted = d
			return nil
		})
	s.boundary.EXPECT().UpdateIssuedRecord(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Require().NoError(err)
	s.Empty(outcome.Warning)
	s.Equal(head.ID, submitted.VCID)
	s.Require().NotNil(submitted.ExpiredAt)
	s.Equal(s.now.AddDate(2, 0, 0), submitted.ExpiredAt.UTC())

	renewed, err := s.store.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(head.ID, renewed.VCID)
	s.Require().Len(renewed.VCHistory, 2)
	s.Equal("BSc", renewed.VCHistory[0].CredentialSubject["degree"])
}

func (s *ProcessorSuite) TestRenewalWithoutRecordFails() {
	req := s.pendingRequest(models.TypeRenewal, map[string]any{
		"vc_id": vcid.Derive("schema-diploma", 2, testHolderDID, s.now.Add(-time.Hour)),
	})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2}, nil)
	s.expectHolderKey()

	_, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ProcessorSuite) TestRevokeFlagsRecordAndKeepsHistory() {
	head := s.issuedCredential("schema-diploma", 2, map[string]any{"degree": "BSc"}, s.now.Add(-48*time.Hour))
	record := s.seedRecord(head)

	req := s.pendingRequest(models.TypeRevoke, map[string]any{"vc_id": head.ID})
	s.expectHolderKey()

	var submitted api.RevokeDecision
	s.boundary.EXPECT().
		SubmitRevoke(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d api.RevokeDecision) error {
			submitted = d
			return nil
		})
	s.boundary.EXPECT().UpdateIssuedRecord(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Require().NoError(err)
	s.Empty(outcome.Warning)
	s.Equal(head.ID, submitted.VCID)

	body := s.openHolderEnvelope(submitted.EncryptedBody)
	vcRef, ok := body["verifiable_credential"].(map[string]any)
	s.Require().True(ok)
	s.Equal(head.ID, vcRef["id"])
	s.Len(vcRef, 1)

	revoked, err := s.store.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, revoked.Status)
	s.Len(revoked.VCHistory, 1)

	var snapshot struct {
		VCStatus bool                          `json:"vc_status"`
		History  []models.VerifiableCredential `json:"verifiable_credentials"`
	}
	s.Require().NoError(s.codec.DecryptWith(revoked.EncryptedBody, s.issuer.Private, &snapshot))
	s.False(snapshot.VCStatus)
	s.Len(snapshot.History, 1)
}

func (s *ProcessorSuite) TestBoundaryFailureLeavesHistoryUntouched() {
	head := s.issuedCredential("schema-diploma", 2, map[string]any{"degree": "BSc"}, s.now.Add(-48*time.Hour))
	record := s.seedRecord(head)

	req := s.pendingRequest(models.TypeUpdate, map[string]any{
		"vc_id":      head.ID,
		"attributes": map[string]any{"degree": "MSc"},
	})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2}, nil)
	s.expectHolderKey()
	s.boundary.EXPECT().
		SubmitUpdate(gomock.Any(), gomock.Any()).
		Return(errors.New("upstream unavailable"))

	_, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Error(err)

	untouched, storeErr := s.store.GetRecord(context.Background(), record.ID)
	s.Require().NoError(storeErr)
	s.Equal(head.ID, untouched.VCID)
	s.Len(untouched.VCHistory, 1)
}

func (s *ProcessorSuite) TestHistoryPushFailureIsWarningOnly() {
	head := s.issuedCredential("schema-diploma", 2, map[string]any{"degree": "BSc"}, s.now.Add(-48*time.Hour))
	record := s.seedRecord(head)

	req := s.pendingRequest(models.TypeUpdate, map[string]any{
		"vc_id":      head.ID,
		"attributes": map[string]any{"degree": "MSc"},
	})
	s.boundary.EXPECT().
		GetSchema(gomock.Any(), "schema-diploma", 2).
		Return(models.Schema{ID: "schema-diploma", Name: "Diploma V2", Version: 2}, nil)
	s.expectHolderKey()
	s.boundary.EXPECT().SubmitUpdate(gomock.Any(), gomock.Any()).Return(nil)
	s.boundary.EXPECT().
		UpdateIssuedRecord(gomock.Any(), gomock.Any()).
		Return(errors.New("snapshot push failed"))

	outcome, err := s.newProcessor().Process(context.Background(), req, models.DecisionApproved)
	s.Require().NoError(err)
	s.NotEmpty(outcome.Warning)

	// The decision went through upstream, so the local record is left
	// on its previous head rather than advanced past a failed push.
	stale, storeErr := s.store.GetRecord(context.Background(), record.ID)
	s.Require().NoError(storeErr)
	s.Equal(head.ID, stale.VCID)
}

// issuedCredential builds and signs a credential as if it had been
// issued earlier, so records can be seeded with a realistic head.
func (s *ProcessorSuite) issuedCredential(schemaID string, version int, attrs map[string]any, issuedAt time.Time) models.VerifiableCredential {
	subject := map[string]any{"id": testHolderDID}
	for k, v := range attrs {
		subject[k] = v
	}
	vc := models.VerifiableCredential{
		ID:                vcid.Derive(schemaID, version, testHolderDID, issuedAt),
		Type:              []string{"VerifiableCredential", "Diploma"},
		Issuer:            testIssuerDID,
		IssuerName:        "Example University",
		CredentialSubject: subject,
		ValidFrom:         issuedAt.UTC(),
	}
	signed, err := s.signer.Sign(vc, issuedAt)
	s.Require().NoError(err)
	return signed
}
