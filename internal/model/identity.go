package model

import "time"

// Identity is the authenticated username, the unit of matchmaking.
// Uniqueness is enforced by the account store.
type Identity string

// Account is a registered player account.
type Account struct {
	Username     string
	Email        string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	LastLogin    time.Time
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	Username string
	Score    int
}

// MatchRecord is one completed duel as persisted by the account store.
// Draws are never recorded.
type MatchRecord struct {
	Winner   Identity
	Loser    Identity
	PlayedAt time.Time
}
