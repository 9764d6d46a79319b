package sim

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/skyduel/skyduel/internal/dependencies/mocks"
	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/services/match"
)

// fakeSender records lines per identity
type fakeSender struct {
	mu    sync.Mutex
	lines map[model.Identity][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{lines: make(map[model.Identity][]string)}
}

func (f *fakeSender) SendTo(identity model.Identity, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines[identity] = append(f.lines[identity], line)
	return nil
}

func (f *fakeSender) linesFor(identity model.Identity) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines[identity]...)
}

// fakeRecorder captures recorded results
type fakeRecorder struct {
	mu      sync.Mutex
	results [][2]model.Identity
}

func (f *fakeRecorder) RecordResult(ctx context.Context, winner, loser model.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, [2]model.Identity{winner, loser})
	return nil
}

type WorkerSuite struct {
	suite.Suite
	engine   *match.Engine
	cfg      match.Config
	sender   *fakeSender
	recorder *fakeRecorder
	clock    *mocks.MockClock
	worker   *Worker
	ctx      context.Context
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	s.cfg = match.DefaultConfig()
	s.engine = match.NewEngine(s.cfg, &mocks.MockRandom{}, logger)
	s.sender = newFakeSender()
	s.recorder = &fakeRecorder{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.worker = NewWorker(s.engine, s.sender, s.recorder, nil, s.clock, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *WorkerSuite) bobPos() model.Vec2 {
	return model.Vec2{X: s.cfg.FieldWidth - s.cfg.SpawnInset, Y: s.cfg.FieldHeight / 2}
}

func (s *WorkerSuite) TestTickBroadcastsStateToBothParticipants() {
	_, err := s.engine.Create("alice", "bob")
	s.Require().NoError(err)

	s.worker.Tick(s.ctx)

	for _, identity := range []model.Identity{"alice", "bob"} {
		lines := s.sender.linesFor(identity)
		s.Require().Len(lines, 1)
		s.Equal("STATE:|alice:100,bob:100|alice:100:240,bob:700:240", lines[0])
	}
}

func (s *WorkerSuite) TestHitEmittedBeforeState() {
	id, err := s.engine.Create("alice", "bob")
	s.Require().NoError(err)

	_, err = s.engine.ApplyFire(id, "alice", s.bobPos(), model.Vec2{})
	s.Require().NoError(err)

	s.worker.Tick(s.ctx)

	lines := s.sender.linesFor("bob")
	s.Require().Len(lines, 2)
	s.Equal("HIT:bob:75", lines[0])
	s.True(strings.HasPrefix(lines[1], "STATE:"))
	// The struck projectile must not appear in the snapshot
	s.Equal("STATE:|alice:100,bob:75|alice:100:240,bob:700:240", lines[1])
}

func (s *WorkerSuite) TestGameOverReplacesStateAndRecordsResult() {
	id, err := s.engine.Create("alice", "bob")
	s.Require().NoError(err)

	hits := s.cfg.MaxHealth / s.cfg.Damage
	for i := 0; i < hits; i++ {
		_, err = s.engine.ApplyFire(id, "alice", s.bobPos(), model.Vec2{})
		s.Require().NoError(err)
		s.worker.Tick(s.ctx)
	}

	aliceLines := s.sender.linesFor("alice")
	s.Require().NotEmpty(aliceLines)
	last := aliceLines[len(aliceLines)-1]
	s.Equal("GAME_OVER:alice", last)
	s.Equal("GAME_OVER:alice", s.sender.linesFor("bob")[len(s.sender.linesFor("bob"))-1])

	s.Require().Len(s.recorder.results, 1)
	s.Equal([2]model.Identity{"alice", "bob"}, s.recorder.results[0])

	// The match is retired; further ticks produce nothing new
	before := len(s.sender.linesFor("alice"))
	s.worker.Tick(s.ctx)
	s.Len(s.sender.linesFor("alice"), before)
}

func (s *WorkerSuite) TestDrawRecordsNothing() {
	id, err := s.engine.Create("alice", "bob")
	s.Require().NoError(err)

	alicePos := model.Vec2{X: s.cfg.SpawnInset, Y: s.cfg.FieldHeight / 2}
	hits := s.cfg.MaxHealth / s.cfg.Damage
	for i := 0; i < hits; i++ {
		_, err = s.engine.ApplyFire(id, "alice", s.bobPos(), model.Vec2{})
		s.Require().NoError(err)
		_, err = s.engine.ApplyFire(id, "bob", alicePos, model.Vec2{})
		s.Require().NoError(err)
		s.worker.Tick(s.ctx)
	}

	lines := s.sender.linesFor("alice")
	s.Equal("GAME_OVER:NONE", lines[len(lines)-1])
	s.Empty(s.recorder.results)
}

func (s *WorkerSuite) TestMatchesTickIndependently() {
	cfg := match.DefaultConfig()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := match.NewEngine(cfg, &mocks.MockRandom{}, logger)
	worker := NewWorker(engine, s.sender, s.recorder, nil, s.clock, DefaultConfig(), logger)

	_, err := engine.Create("alice", "bob")
	s.Require().NoError(err)
	_, err = engine.Create("carol", "dave")
	s.Require().NoError(err)

	worker.Tick(s.ctx)

	for _, identity := range []model.Identity{"alice", "bob", "carol", "dave"} {
		s.Len(s.sender.linesFor(identity), 1)
	}
}

// Run must take its tick source from the injected clock and stop it on
// cancellation.
func (s *WorkerSuite) TestRunTicksFromInjectedClock() {
	_, err := s.engine.Create("alice", "bob")
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.worker.Run(ctx)
	}()

	s.Require().Eventually(func() bool {
		return s.clock.LastTicker() != nil
	}, time.Second, time.Millisecond, "Run never asked the clock for a ticker")
	ticker := s.clock.LastTicker()

	// No wall time passes; each hand-driven tick is one simulation step.
	for i := 0; i < 2; i++ {
		ticker.C <- s.clock.Now()
		s.Require().Eventually(func() bool {
			return len(s.sender.linesFor("alice")) == i+1
		}, time.Second, time.Millisecond)
	}
	for _, line := range s.sender.linesFor("bob") {
		s.True(strings.HasPrefix(line, "STATE:"), line)
	}

	cancel()
	<-done

	select {
	case <-ticker.Stopped():
	case <-time.After(time.Second):
		s.Fail("ticker was not stopped on shutdown")
	}
}
