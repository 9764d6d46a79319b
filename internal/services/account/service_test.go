package account

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/skyduel/skyduel/internal/dependencies/mocks"
	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	clock   *mocks.MockClock
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.service = New(memory.New(), s.clock, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterAndAuthenticate() {
	err := s.service.Register(s.ctx, "alice", "alice@example.com", "hunter2")
	s.Require().NoError(err)

	identity, err := s.service.Authenticate(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(model.Identity("alice"), identity)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	s.Require().NoError(s.service.Register(s.ctx, "alice", "a@example.com", "pw"))

	err := s.service.Register(s.ctx, "alice", "b@example.com", "pw2")
	s.ErrorIs(err, model.ErrUsernameExists)
}

func (s *ServiceSuite) TestAuthenticateDoesNotMutateStoredAccount() {
	store := memory.New()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	service := New(store, s.clock, logger)

	s.Require().NoError(service.Register(s.ctx, "alice", "a@example.com", "pw"))

	before, err := store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().True(before.LastLogin.IsZero())

	s.clock.Advance(time.Hour)
	_, err = service.Authenticate(s.ctx, "alice", "pw")
	s.Require().NoError(err)

	// The login stamp goes through SaveAccount with a copy; the pointer
	// handed out earlier must not change under the caller
	s.True(before.LastLogin.IsZero())

	after, err := store.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(s.clock.CurrentTime, after.LastLogin)
}

func (s *ServiceSuite) TestAuthenticateWrongPassword() {
	s.Require().NoError(s.service.Register(s.ctx, "alice", "a@example.com", "pw"))

	_, err := s.service.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateUnknownUser() {
	_, err := s.service.Authenticate(s.ctx, "nobody", "pw")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestDeleteThenAuthenticate() {
	s.Require().NoError(s.service.Register(s.ctx, "alice", "a@example.com", "pw"))
	s.Require().NoError(s.service.Delete(s.ctx, "alice"))

	_, err := s.service.Authenticate(s.ctx, "alice", "pw")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestRecordResultUpdatesBoardsAndHistory() {
	err := s.service.RecordResult(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	err = s.service.RecordResult(s.ctx, "alice", "carol")
	s.Require().NoError(err)

	scores, err := s.service.TopByScore(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal("alice", scores[0].Username)
	s.Equal(2*WinScore, scores[0].Score)

	kills, err := s.service.TopByKills(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(kills, 1)
	s.Equal(2*WinKills, kills[0].Score)

	recent, err := s.service.RecentMatches(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(model.Identity("carol"), recent[0].Loser)
	s.Equal(s.clock.CurrentTime, recent[0].PlayedAt)
}
