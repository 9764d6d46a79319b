package invite

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/skyduel/skyduel/internal/model"
)

type ManagerSuite struct {
	suite.Suite
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.manager = NewManager(Config{Capacity: 3}, logger)
}

func (s *ManagerSuite) TestChallengeAndAccept() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))

	accepted, err := s.manager.Respond("alice", "bob", true)
	s.Require().NoError(err)
	s.True(accepted)
	s.Equal(0, s.manager.PendingCount())
}

func (s *ManagerSuite) TestChallengeAndReject() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))

	accepted, err := s.manager.Respond("alice", "bob", false)
	s.Require().NoError(err)
	s.False(accepted)
	s.Equal(0, s.manager.PendingCount())
}

func (s *ManagerSuite) TestChallengeSelf() {
	s.ErrorIs(s.manager.Challenge("alice", "alice"), model.ErrInviteSelf)
}

func (s *ManagerSuite) TestOnePendingInvitationPerInviter() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))
	s.ErrorIs(s.manager.Challenge("alice", "carol"), model.ErrInvitePending)

	// Resolving frees the inviter for a new challenge
	_, err := s.manager.Respond("alice", "bob", false)
	s.Require().NoError(err)
	s.NoError(s.manager.Challenge("alice", "carol"))
}

func (s *ManagerSuite) TestTableCapacity() {
	s.Require().NoError(s.manager.Challenge("a", "x"))
	s.Require().NoError(s.manager.Challenge("b", "x"))
	s.Require().NoError(s.manager.Challenge("c", "x"))

	s.ErrorIs(s.manager.Challenge("d", "x"), model.ErrInviteTableFull)
}

func (s *ManagerSuite) TestRespondRequiresExactPair() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))

	_, err := s.manager.Respond("alice", "carol", true)
	s.ErrorIs(err, model.ErrInviteNotFound)

	_, err = s.manager.Respond("bob", "alice", true)
	s.ErrorIs(err, model.ErrInviteNotFound)

	// The original pair still resolves
	_, err = s.manager.Respond("alice", "bob", true)
	s.NoError(err)
}

func (s *ManagerSuite) TestDuplicateRespondIsNoOp() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))

	_, err := s.manager.Respond("alice", "bob", true)
	s.Require().NoError(err)

	_, err = s.manager.Respond("alice", "bob", true)
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ManagerSuite) TestConcurrentRespondResolvesOnce() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.manager.Respond("alice", "bob", true); err == nil && ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), accepted.Load())
}

func (s *ManagerSuite) TestCancelInvolvingEitherSide() {
	s.Require().NoError(s.manager.Challenge("alice", "bob"))
	s.Require().NoError(s.manager.Challenge("carol", "bob"))
	s.Require().NoError(s.manager.Challenge("dave", "erin"))

	removed := s.manager.CancelInvolving("bob")
	s.Len(removed, 2)
	s.Equal(1, s.manager.PendingCount())

	_, err := s.manager.Respond("alice", "bob", true)
	s.ErrorIs(err, model.ErrInviteNotFound)
}
