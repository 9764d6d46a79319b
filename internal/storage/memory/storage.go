package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*model.Account
	scores   map[string]int
	kills    map[string]int
	history  []*model.MatchRecord // newest first
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
		scores:   make(map[string]int),
		kills:    make(map[string]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Username]; ok {
		return model.ErrUsernameExists
	}
	s.accounts[account.Username] = account
	return nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Username] = account
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, username)
	delete(s.scores, username)
	delete(s.kills, username)
	return nil
}

// Leaderboard operations

func (s *Storage) IncrementScore(ctx context.Context, username string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[username] += delta
	return nil
}

func (s *Storage) IncrementKills(ctx context.Context, username string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kills[username] += delta
	return nil
}

func (s *Storage) TopByScore(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return topEntries(s.scores, n), nil
}

func (s *Storage) TopByKills(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return topEntries(s.kills, n), nil
}

// topEntries returns the n highest-valued entries, ties broken by username so
// ordering is stable.
func topEntries(counts map[string]int, n int) []model.ScoreEntry {
	entries := make([]model.ScoreEntry, 0, len(counts))
	for username, value := range counts {
		entries = append(entries, model.ScoreEntry{Username: username, Score: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Match history operations

func (s *Storage) AppendMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]*model.MatchRecord{record}, s.history...)
	if len(s.history) > maxHistory {
		s.history = s.history[:maxHistory]
	}
	return nil
}

func (s *Storage) RecentMatches(ctx context.Context, n int) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || n > len(s.history) {
		n = len(s.history)
	}
	out := make([]*model.MatchRecord, n)
	copy(out, s.history[:n])
	return out, nil
}

// maxHistory bounds the retained match history
const maxHistory = 100
