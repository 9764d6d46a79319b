package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/presence"
	"github.com/skyduel/skyduel/internal/protocol/wire"
	"github.com/skyduel/skyduel/internal/registry"
	"github.com/skyduel/skyduel/internal/services/account"
	"github.com/skyduel/skyduel/internal/services/invite"
	"github.com/skyduel/skyduel/internal/services/match"
)

// maxLineLen bounds one inbound protocol line
const maxLineLen = 4096

// Observer receives lobby/match lifecycle events for read-only consumers.
// May be nil.
type Observer interface {
	MatchStarted(a, b model.Identity)
	MatchEnded(winner, loser model.Identity, draw bool)
}

// Config holds TCP server settings
type Config struct {
	// Addr is the listen address for the game protocol
	Addr string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{Addr: ":8080"}
}

// Server accepts client connections and runs one read-loop goroutine per
// connection, dispatching parsed commands into the game core.
type Server struct {
	cfg    Config
	logger *slog.Logger

	registry *registry.Registry
	presence *presence.Directory
	invites  *invite.Manager
	engine   *match.Engine
	accounts *account.Service
	observer Observer

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a protocol server. observer may be nil.
func NewServer(
	cfg Config,
	reg *registry.Registry,
	dir *presence.Directory,
	invites *invite.Manager,
	engine *match.Engine,
	accounts *account.Service,
	observer Observer,
	logger *slog.Logger,
) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		presence: dir,
		invites:  invites,
		engine:   engine,
		accounts: accounts,
		observer: observer,
	}
}

// Start listens and serves until Shutdown closes the listener
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("game server listening", slog.String("addr", listener.Addr().String()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Addr returns the bound listen address, or the configured one before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Shutdown stops accepting, closes every client connection and waits for the
// read loops to drain, honoring the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down game server")

	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	s.registry.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("game server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// handleConn is one client worker: it blocks only on its own connection's
// next read.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	handle, err := s.registry.Register(conn)
	if err != nil {
		// Capacity rejection is explicit rather than a silent close
		_, _ = conn.Write([]byte(wire.Error("server full") + "\n"))
		s.logger.Warn("connection rejected", slog.String("error", err.Error()))
		return
	}

	remote := conn.RemoteAddr().String()
	s.logger.Info("client connected", slog.String("remote", remote))

	defer s.disconnect(handle, remote)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), maxLineLen)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if !s.dispatch(context.Background(), handle, line) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Debug("read loop ended", slog.String("remote", remote), slog.String("error", err.Error()))
	}
}

// disconnect runs the cleanup path: forfeit any active match, drop pending
// invitations, leave presence and unregister the connection.
func (s *Server) disconnect(handle registry.Handle, remote string) {
	identity, bound := s.registry.Identity(handle)
	if bound {
		s.abandonIdentity(context.Background(), identity)
	}
	s.registry.Unregister(handle)
	s.logger.Info("client disconnected", slog.String("remote", remote))
}

// abandonIdentity detaches an identity from all live game state. The
// identity's own connection may already be gone; deliveries to it are
// skipped by the registry.
func (s *Server) abandonIdentity(ctx context.Context, identity model.Identity) {
	if outcome, ok := s.engine.Forfeit(identity); ok {
		_ = s.registry.SendTo(outcome.Winner, wire.GameOver(outcome.Winner))
		if err := s.accounts.RecordResult(ctx, outcome.Winner, outcome.Loser); err != nil {
			s.logger.Error("failed to record forfeited match",
				slog.String("winner", string(outcome.Winner)),
				slog.String("error", err.Error()))
		}
		if s.observer != nil {
			s.observer.MatchEnded(outcome.Winner, outcome.Loser, false)
		}
	}

	s.invites.CancelInvolving(identity)
	s.presence.Remove(identity)
}
