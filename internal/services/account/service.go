package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/skyduel/skyduel/internal/dependencies/clock"
	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/storage"
)

// Points awarded when a match result is recorded.
const (
	WinScore = 3
	WinKills = 1
)

// Service owns persistent accounts, credentials and match history. The game
// core only ever calls through this service; it never touches storage
// directly.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new account service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Register creates a new account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	return s.storage.CreateAccount(ctx, &model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	})
}

// Authenticate verifies credentials and returns the identity on success.
// It also stamps the account's last login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Identity, error) {
	account, err := s.storage.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return "", model.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", model.ErrInvalidCredentials
	}

	// Stamp a copy; the pointer from storage may be shared with other readers
	updated := *account
	updated.LastLogin = s.clock.Now()
	if err := s.storage.SaveAccount(ctx, &updated); err != nil {
		// Login still succeeds; the stamp is best-effort
		s.logger.Warn("failed to stamp last login",
			slog.String("username", username),
			slog.String("error", err.Error()))
	}

	return model.Identity(account.Username), nil
}

// Delete removes an account and its leaderboard entries
func (s *Service) Delete(ctx context.Context, username string) error {
	return s.storage.DeleteAccount(ctx, username)
}

// RecordResult persists the outcome of a completed match. Draws are never
// passed here.
func (s *Service) RecordResult(ctx context.Context, winner, loser model.Identity) error {
	if err := s.storage.IncrementScore(ctx, string(winner), WinScore); err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	if err := s.storage.IncrementKills(ctx, string(winner), WinKills); err != nil {
		return fmt.Errorf("record kills: %w", err)
	}
	if err := s.storage.AppendMatchRecord(ctx, &model.MatchRecord{
		Winner:   winner,
		Loser:    loser,
		PlayedAt: s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// TopByScore returns the n highest-scoring players
func (s *Service) TopByScore(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	return s.storage.TopByScore(ctx, n)
}

// TopByKills returns the n players with the most kills
func (s *Service) TopByKills(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	return s.storage.TopByKills(ctx, n)
}

// RecentMatches returns up to n most recent match records, newest first
func (s *Service) RecentMatches(ctx context.Context, n int) ([]*model.MatchRecord, error) {
	return s.storage.RecentMatches(ctx, n)
}
