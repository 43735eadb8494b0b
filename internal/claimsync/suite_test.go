package claimsync

//go:generate mockgen -source=synchronizer.go -destination=mocks/mocks.go -package=mocks Boundary,Decryptor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credrelay/internal/claimsync/mocks"
	"credrelay/internal/credential/store"
	"credrelay/internal/envelope"
	"credrelay/pkg/secrets"
)

// SyncSuite wires a real envelope codec and in-memory store around a
// mocked boundary, so decrypt and durability behavior is exercised for
// real while the network is scripted.
type SyncSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	boundary *mocks.MockBoundary
	store    *store.InMemoryStore
	codec    *envelope.Codec
	holder   secrets.KeyPair
}

func TestSyncSuite(t *testing.T) {
	suite.Run(t, new(SyncSuite))
}

func (s *SyncSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.boundary = mocks.NewMockBoundary(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.codec = envelope.New()

	kp, err := secrets.GenerateKeyPair()
	s.Require().NoError(err)
	s.holder = kp
}

func (s *SyncSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SyncSuite) newSynchronizer() *Synchronizer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s.boundary, s.codec, s.store, Config{
		HolderDID:   "did:web:holder.example.com",
		PrivateKey:  s.holder.Private,
		AccessToken: "token",
		PageSize:    20,
	}, WithLogger(logger))
}
