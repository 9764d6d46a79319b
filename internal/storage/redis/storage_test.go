package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/skyduel/skyduel/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MaxHistory = 5

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSaveAndGetAccount() {
	account := &model.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}

	err := s.storage.SaveAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(account.Email, retrieved.Email)
	s.Equal(account.PasswordHash, retrieved.PasswordHash)
}

func (s *StorageSuite) TestCreateAccountDuplicate() {
	err := s.storage.CreateAccount(s.ctx, &model.Account{Username: "alice", Email: "alice@example.com"})
	s.Require().NoError(err)

	err = s.storage.CreateAccount(s.ctx, &model.Account{Username: "alice", Email: "other@example.com"})
	s.ErrorIs(err, model.ErrUsernameExists)

	// The losing create must not overwrite the stored account
	retrieved, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice@example.com", retrieved.Email)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestDeleteAccountClearsLeaderboards() {
	_ = s.storage.SaveAccount(s.ctx, &model.Account{Username: "alice"})
	_ = s.storage.IncrementScore(s.ctx, "alice", 3)
	_ = s.storage.IncrementKills(s.ctx, "alice", 1)

	err := s.storage.DeleteAccount(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.storage.GetAccount(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)

	top, err := s.storage.TopByScore(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *StorageSuite) TestTopByScoreOrdering() {
	_ = s.storage.IncrementScore(s.ctx, "alice", 6)
	_ = s.storage.IncrementScore(s.ctx, "bob", 9)
	_ = s.storage.IncrementScore(s.ctx, "carol", 3)

	top, err := s.storage.TopByScore(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("bob", top[0].Username)
	s.Equal(9, top[0].Score)
	s.Equal("alice", top[1].Username)
}

func (s *StorageSuite) TestTopByKillsAccumulates() {
	_ = s.storage.IncrementKills(s.ctx, "alice", 1)
	_ = s.storage.IncrementKills(s.ctx, "alice", 1)

	top, err := s.storage.TopByKills(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(2, top[0].Score)
}

func (s *StorageSuite) TestMatchHistoryNewestFirstAndTrimmed() {
	for i, winner := range []model.Identity{"a", "b", "c", "d", "e", "f", "g"} {
		err := s.storage.AppendMatchRecord(s.ctx, &model.MatchRecord{
			Winner:   winner,
			Loser:    "x",
			PlayedAt: time.Unix(int64(i), 0).UTC(),
		})
		s.Require().NoError(err)
	}

	// MaxHistory is 5 in this suite; the oldest two must have been trimmed
	recent, err := s.storage.RecentMatches(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 5)
	s.Equal(model.Identity("g"), recent[0].Winner)
	s.Equal(model.Identity("c"), recent[4].Winner)
}
