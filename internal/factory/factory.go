package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/skyduel/skyduel/internal/api"
	"github.com/skyduel/skyduel/internal/dependencies/clock"
	"github.com/skyduel/skyduel/internal/dependencies/random"
	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/presence"
	"github.com/skyduel/skyduel/internal/protocol"
	"github.com/skyduel/skyduel/internal/protocol/wire"
	"github.com/skyduel/skyduel/internal/registry"
	"github.com/skyduel/skyduel/internal/services/account"
	"github.com/skyduel/skyduel/internal/services/invite"
	"github.com/skyduel/skyduel/internal/services/match"
	"github.com/skyduel/skyduel/internal/services/sim"
	"github.com/skyduel/skyduel/internal/storage"
	"github.com/skyduel/skyduel/internal/storage/memory"
	redisstorage "github.com/skyduel/skyduel/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game core
	Registry *registry.Registry
	Presence *presence.Directory
	Invites  *invite.Manager
	Engine   *match.Engine
	Accounts *account.Service
	Sim      *sim.Worker

	// Surfaces
	Hub        *api.Hub
	GameServer *protocol.Server
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// ProtocolConfig holds game protocol server settings
	ProtocolConfig protocol.Config
	// RegistryConfig bounds the connection registry
	RegistryConfig registry.Config
	// InviteConfig bounds the invitation table
	InviteConfig invite.Config
	// MatchConfig holds the duel arena tuning
	MatchConfig match.Config
	// SimConfig holds the simulation tick settings
	SimConfig sim.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	reg := registry.New(cfg.RegistryConfig, logger)
	hub := api.NewHub(logger)

	// Every presence change is pushed to connected players and observers.
	dir := presence.New(func(snapshot []model.Identity) {
		reg.Broadcast(wire.UpdateList(snapshot))
		hub.PresenceChanged(snapshot)
	})

	invites := invite.NewManager(cfg.InviteConfig, logger)
	engine := match.NewEngine(cfg.MatchConfig, rnd, logger)
	accounts := account.New(store, clk, logger)
	worker := sim.NewWorker(engine, reg, accounts, hub, clk, cfg.SimConfig, logger)
	gameServer := protocol.NewServer(cfg.ProtocolConfig, reg, dir, invites, engine, accounts, hub, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Registry:   reg,
		Presence:   dir,
		Invites:    invites,
		Engine:     engine,
		Accounts:   accounts,
		Sim:        worker,
		Hub:        hub,
		GameServer: gameServer,
	}
}
