package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// SetNX makes the existence check and the write one atomic operation
	created, err := s.client.SetNX(ctx, accountKey(account.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUsernameExists
	}
	return nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, accountKey(account.Username), data, 0).Err()
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, username string) error {
	// Remove the account and its leaderboard entries together
	pipe := s.client.Pipeline()
	pipe.Del(ctx, accountKey(username))
	pipe.ZRem(ctx, scoreboardKey(), username)
	pipe.ZRem(ctx, killboardKey(), username)
	_, err := pipe.Exec(ctx)
	return err
}

// Leaderboard operations

func (s *Storage) IncrementScore(ctx context.Context, username string, delta int) error {
	return s.client.ZIncrBy(ctx, scoreboardKey(), float64(delta), username).Err()
}

func (s *Storage) IncrementKills(ctx context.Context, username string, delta int) error {
	return s.client.ZIncrBy(ctx, killboardKey(), float64(delta), username).Err()
}

func (s *Storage) TopByScore(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	return s.topEntries(ctx, scoreboardKey(), n)
}

func (s *Storage) TopByKills(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	return s.topEntries(ctx, killboardKey(), n)
}

func (s *Storage) topEntries(ctx context.Context, key string, n int) ([]model.ScoreEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.ScoreEntry, 0, len(zs))
	for _, z := range zs {
		username, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, model.ScoreEntry{
			Username: username,
			Score:    int(z.Score),
		})
	}
	return entries, nil
}

// Match history operations

func (s *Storage) AppendMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Push newest first and trim to the configured cap
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, historyKey(), data)
	pipe.LTrim(ctx, historyKey(), 0, int64(s.cfg.MaxHistory-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RecentMatches(ctx context.Context, n int) ([]*model.MatchRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	items, err := s.client.LRange(ctx, historyKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.MatchRecord, 0, len(items))
	for _, item := range items {
		var record model.MatchRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}
