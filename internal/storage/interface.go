package storage

import (
	"context"

	"github.com/skyduel/skyduel/internal/model"
)

// Storage defines the interface for account and match-history persistence.
// Live game state (connections, invitations, matches) never touches storage;
// only the account store writes here.
type Storage interface {
	// Account operations
	// CreateAccount fails with model.ErrUsernameExists when the username is
	// taken; the check and the write are atomic.
	CreateAccount(ctx context.Context, account *model.Account) error
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	DeleteAccount(ctx context.Context, username string) error

	// Leaderboard operations
	IncrementScore(ctx context.Context, username string, delta int) error
	IncrementKills(ctx context.Context, username string, delta int) error
	TopByScore(ctx context.Context, n int) ([]model.ScoreEntry, error)
	TopByKills(ctx context.Context, n int) ([]model.ScoreEntry, error)

	// Match history operations
	AppendMatchRecord(ctx context.Context, record *model.MatchRecord) error
	RecentMatches(ctx context.Context, n int) ([]*model.MatchRecord, error)
}
