package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/skyduel/skyduel/internal/dependencies/clock"
	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/protocol/wire"
	"github.com/skyduel/skyduel/internal/services/match"
)

// Sender delivers one protocol line to an identity's connection. The
// connection registry satisfies it.
type Sender interface {
	SendTo(identity model.Identity, line string) error
}

// Recorder persists match outcomes. The account service satisfies it.
type Recorder interface {
	RecordResult(ctx context.Context, winner, loser model.Identity) error
}

// Observer receives match lifecycle events for read-only consumers. May be
// nil.
type Observer interface {
	MatchEnded(winner, loser model.Identity, draw bool)
}

// Config holds simulation tuning
type Config struct {
	// TickRate is the number of simulation steps per second
	TickRate int
}

// DefaultConfig returns the standard 60 Hz tick
func DefaultConfig() Config {
	return Config{TickRate: 60}
}

// Worker is the periodic simulation worker. Once per tick it steps every
// active match independently and pushes the resulting events to both
// participants. Missed wakeups are not compensated; each wakeup is exactly
// one fixed step.
type Worker struct {
	engine   *match.Engine
	sender   Sender
	recorder Recorder
	observer Observer
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config
}

// NewWorker creates a simulation worker. observer may be nil.
func NewWorker(engine *match.Engine, sender Sender, recorder Recorder, observer Observer, clk clock.Clock, cfg Config, logger *slog.Logger) *Worker {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	return &Worker{
		engine:   engine,
		sender:   sender,
		recorder: recorder,
		observer: observer,
		clock:    clk,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run ticks until the context is cancelled
func (w *Worker) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(time.Second / time.Duration(w.cfg.TickRate))
	defer ticker.Stop()

	w.logger.Info("simulation started", slog.Int("tick_rate", w.cfg.TickRate))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("simulation stopped")
			return
		case <-ticker.Chan():
			w.Tick(ctx)
		}
	}
}

// Tick performs one simulation pass over all active matches
func (w *Worker) Tick(ctx context.Context) {
	for _, id := range w.engine.ActiveMatches() {
		result, ok := w.engine.Step(id)
		if !ok {
			continue
		}
		w.deliver(ctx, result)
	}
}

// deliver pushes one match's step results to its participants. A failure to
// reach one recipient skips that recipient only.
func (w *Worker) deliver(ctx context.Context, result match.StepResult) {
	for _, hit := range result.Hits {
		w.sendBoth(result.Participants, wire.Hit(hit.Struck, hit.Health))
	}

	if result.Outcome.Over {
		winner := result.Outcome.Winner
		if result.Outcome.Draw {
			winner = ""
		}
		w.sendBoth(result.Participants, wire.GameOver(winner))

		if !result.Outcome.Draw {
			if err := w.recorder.RecordResult(ctx, result.Outcome.Winner, result.Outcome.Loser); err != nil {
				w.logger.Error("failed to record match result",
					slog.String("winner", string(result.Outcome.Winner)),
					slog.String("error", err.Error()))
			}
		}
		if w.observer != nil {
			w.observer.MatchEnded(result.Outcome.Winner, result.Outcome.Loser, result.Outcome.Draw)
		}
		return
	}

	w.sendBoth(result.Participants, wire.State(result.Snapshot))
}

func (w *Worker) sendBoth(participants [2]model.Identity, line string) {
	for _, p := range participants {
		if err := w.sender.SendTo(p, line); err != nil {
			w.logger.Debug("delivery skipped",
				slog.String("identity", string(p)),
				slog.String("error", err.Error()))
		}
	}
}
