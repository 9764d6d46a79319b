package match

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/skyduel/skyduel/internal/dependencies/random"
	"github.com/skyduel/skyduel/internal/model"
)

// ErrProjectileCap is returned by ApplyFire when either projectile cap is
// reached. The dispatcher drops the fire without surfacing an error to the
// client, matching the legacy protocol.
var ErrProjectileCap = errors.New("projectile cap reached")

// Config holds playfield geometry and match limits
type Config struct {
	// PoolSize bounds the number of simultaneous matches
	PoolSize int

	// Playfield dimensions
	FieldWidth  float64
	FieldHeight float64

	// SpawnInset is the distance from the field edge to each spawn point
	SpawnInset float64

	// BoundsMargin is how far past the horizontal field edges a projectile
	// may travel before it expires
	BoundsMargin float64

	// Combat tuning
	MaxHealth      int
	Damage         int
	PlayerSize     float64 // participant bounding-box edge length
	ProjectileSize float64 // projectile bounding-box edge length

	// Projectile caps
	PerOwnerProjectiles int // concurrent projectiles per participant
	MaxProjectiles      int // concurrent projectiles per match
}

// DefaultConfig returns the standard duel tuning
func DefaultConfig() Config {
	return Config{
		PoolSize:            32,
		FieldWidth:          800,
		FieldHeight:         480,
		SpawnInset:          100,
		BoundsMargin:        50,
		MaxHealth:           100,
		Damage:              25,
		PlayerSize:          64,
		ProjectileSize:      16,
		PerOwnerProjectiles: 3,
		MaxProjectiles:      16,
	}
}

// projectile is one in-flight shot, owned by exactly one match
type projectile struct {
	id     int
	pos    model.Vec2
	vel    model.Vec2
	owner  model.Identity
	active bool
}

// duel is one active match. Its mutex is the single lock domain for all
// mutation of participant positions, health and projectiles; client workers
// and the simulation tick both take it.
type duel struct {
	mu sync.Mutex

	active       bool
	participants [2]model.Identity
	pos          [2]model.Vec2
	health       [2]int
	projectiles  []projectile
	nextShotID   int
}

// FireAck is the acknowledgment payload for an accepted fire command
type FireAck struct {
	ID       int
	Owner    model.Identity
	Origin   model.Vec2
	Velocity model.Vec2
}

// Hit is one collision resolved during a step
type Hit struct {
	Struck model.Identity
	Health int
}

// Outcome describes the terminal state of a match, if any
type Outcome struct {
	Over   bool
	Draw   bool
	Winner model.Identity
	Loser  model.Identity
}

// StepResult is everything one simulation step produced for one match
type StepResult struct {
	Participants [2]model.Identity
	Hits         []Hit
	Outcome      Outcome
	// Snapshot is only populated when the match is still running
	Snapshot model.MatchSnapshot
}

// Engine owns the bounded pool of active matches. Slot allocation and the
// participant index are guarded by the engine lock; per-match state is
// guarded by each duel's own lock, so matches tick independently. The engine
// lock is never taken while a duel lock is held.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	random random.Random

	mu            sync.RWMutex
	slots         []*duel
	byParticipant map[model.Identity]model.MatchID
}

// NewEngine creates a match engine with an empty pool. A zero cfg means
// DefaultConfig.
func NewEngine(cfg Config, random random.Random, logger *slog.Logger) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultConfig().PoolSize
	}
	return &Engine{
		cfg:           cfg,
		logger:        logger,
		random:        random,
		slots:         make([]*duel, cfg.PoolSize),
		byParticipant: make(map[model.Identity]model.MatchID),
	}
}

// Create allocates a match slot for two distinct identities, spawning them at
// opposite ends of the playfield with full health. Which identity spawns on
// the left is random.
func (e *Engine) Create(a, b model.Identity) (model.MatchID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.byParticipant[a]; busy {
		return 0, model.ErrAlreadyInMatch
	}
	if _, busy := e.byParticipant[b]; busy {
		return 0, model.ErrAlreadyInMatch
	}

	slot := -1
	for i, d := range e.slots {
		if d == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, model.ErrMatchPoolFull
	}

	left, right := a, b
	if e.random.Bool() {
		left, right = b, a
	}

	midY := e.cfg.FieldHeight / 2
	d := &duel{
		active:       true,
		participants: [2]model.Identity{left, right},
		pos: [2]model.Vec2{
			{X: e.cfg.SpawnInset, Y: midY},
			{X: e.cfg.FieldWidth - e.cfg.SpawnInset, Y: midY},
		},
		health: [2]int{e.cfg.MaxHealth, e.cfg.MaxHealth},
	}

	id := model.MatchID(slot)
	e.slots[slot] = d
	e.byParticipant[a] = id
	e.byParticipant[b] = id

	e.logger.Info("match created",
		slog.Int("match", slot),
		slog.String("left", string(left)),
		slog.String("right", string(right)))
	return id, nil
}

// FindByParticipant returns the match an identity is currently playing in
func (e *Engine) FindByParticipant(identity model.Identity) (model.MatchID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byParticipant[identity]
	return id, ok
}

// Participants returns both identities of an active match
func (e *Engine) Participants(id model.MatchID) ([2]model.Identity, bool) {
	d := e.lookup(id)
	if d == nil {
		return [2]model.Identity{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return [2]model.Identity{}, false
	}
	return d.participants, true
}

// ActiveMatches returns the ids of all currently active matches
func (e *Engine) ActiveMatches() []model.MatchID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]model.MatchID, 0, len(e.slots))
	for i, d := range e.slots {
		if d != nil {
			ids = append(ids, model.MatchID(i))
		}
	}
	return ids
}

// ApplyMove overwrites a participant's position. Only field-bounds clamping
// is applied; movement speed is deliberately not validated, matching the
// legacy protocol's trust in the client.
func (e *Engine) ApplyMove(id model.MatchID, identity model.Identity, pos model.Vec2) error {
	d := e.lookup(id)
	if d == nil {
		return model.ErrMatchNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return model.ErrMatchNotFound
	}
	idx := d.indexOf(identity)
	if idx < 0 {
		return model.ErrNotParticipant
	}

	d.pos[idx] = model.Vec2{
		X: clamp(pos.X, 0, e.cfg.FieldWidth),
		Y: clamp(pos.Y, 0, e.cfg.FieldHeight),
	}
	return nil
}

// ApplyFire spawns a projectile for a participant, subject to the per-owner
// and per-match caps.
func (e *Engine) ApplyFire(id model.MatchID, identity model.Identity, origin, velocity model.Vec2) (FireAck, error) {
	d := e.lookup(id)
	if d == nil {
		return FireAck{}, model.ErrMatchNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return FireAck{}, model.ErrMatchNotFound
	}
	if d.indexOf(identity) < 0 {
		return FireAck{}, model.ErrNotParticipant
	}

	if len(d.projectiles) >= e.cfg.MaxProjectiles {
		return FireAck{}, ErrProjectileCap
	}
	owned := 0
	for _, p := range d.projectiles {
		if p.owner == identity {
			owned++
		}
	}
	if owned >= e.cfg.PerOwnerProjectiles {
		return FireAck{}, ErrProjectileCap
	}

	d.nextShotID++
	d.projectiles = append(d.projectiles, projectile{
		id:     d.nextShotID,
		pos:    origin,
		vel:    velocity,
		owner:  identity,
		active: true,
	})

	return FireAck{
		ID:       d.nextShotID,
		Owner:    identity,
		Origin:   origin,
		Velocity: velocity,
	}, nil
}

// Step advances one match by one fixed simulation step: projectile movement,
// collision and damage resolution, bounds expiry, compaction and the
// terminal check. A terminal match is retired before Step returns. The
// second return value is false when the match no longer exists.
func (e *Engine) Step(id model.MatchID) (StepResult, bool) {
	d := e.lookup(id)
	if d == nil {
		return StepResult{}, false
	}

	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return StepResult{}, false
	}

	result := StepResult{Participants: d.participants}

	// 1. Advance projectiles
	for i := range d.projectiles {
		p := &d.projectiles[i]
		p.pos.X += p.vel.X
		p.pos.Y += p.vel.Y
	}

	// 2. Collisions: first overlapping non-owner takes the hit and the
	// projectile is inert afterwards (single-hit semantics)
	for i := range d.projectiles {
		p := &d.projectiles[i]
		if !p.active {
			continue
		}
		for idx, participant := range d.participants {
			if participant == p.owner {
				continue
			}
			if !boxesOverlap(p.pos, e.cfg.ProjectileSize, d.pos[idx], e.cfg.PlayerSize) {
				continue
			}
			p.active = false
			d.health[idx] -= e.cfg.Damage
			if d.health[idx] < 0 {
				d.health[idx] = 0
			}
			result.Hits = append(result.Hits, Hit{
				Struck: participant,
				Health: d.health[idx],
			})
			break
		}
	}

	// 3. Expire projectiles past the horizontal bounds
	for i := range d.projectiles {
		p := &d.projectiles[i]
		if p.active && (p.pos.X < -e.cfg.BoundsMargin || p.pos.X > e.cfg.FieldWidth+e.cfg.BoundsMargin) {
			p.active = false
		}
	}

	// 4. Compact
	kept := d.projectiles[:0]
	for _, p := range d.projectiles {
		if p.active {
			kept = append(kept, p)
		}
	}
	d.projectiles = kept

	// 5. Terminal check
	dead0 := d.health[0] <= 0
	dead1 := d.health[1] <= 0
	if dead0 || dead1 {
		result.Outcome.Over = true
		switch {
		case dead0 && dead1:
			result.Outcome.Draw = true
		case dead0:
			result.Outcome.Winner = d.participants[1]
			result.Outcome.Loser = d.participants[0]
		default:
			result.Outcome.Winner = d.participants[0]
			result.Outcome.Loser = d.participants[1]
		}
		d.active = false
		d.mu.Unlock()

		e.retire(id, d.participants)
		return result, true
	}

	// 6. Snapshot for broadcast
	result.Snapshot = d.snapshotLocked()
	d.mu.Unlock()
	return result, true
}

// Forfeit ends the match an identity is part of, awarding the win to the
// other participant. Used by the disconnect-cleanup path.
func (e *Engine) Forfeit(identity model.Identity) (Outcome, bool) {
	id, ok := e.FindByParticipant(identity)
	if !ok {
		return Outcome{}, false
	}
	d := e.lookup(id)
	if d == nil {
		return Outcome{}, false
	}

	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return Outcome{}, false
	}
	idx := d.indexOf(identity)
	if idx < 0 {
		d.mu.Unlock()
		return Outcome{}, false
	}
	outcome := Outcome{
		Over:   true,
		Winner: d.participants[1-idx],
		Loser:  identity,
	}
	d.active = false
	participants := d.participants
	d.mu.Unlock()

	e.retire(id, participants)

	e.logger.Info("match forfeited",
		slog.Int("match", int(id)),
		slog.String("loser", string(identity)))
	return outcome, true
}

// lookup fetches the duel in a slot, or nil
func (e *Engine) lookup(id model.MatchID) *duel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(e.slots) {
		return nil
	}
	return e.slots[int(id)]
}

// retire frees a slot and clears the participant index. Callers must have
// already marked the duel inactive and released its lock.
func (e *Engine) retire(id model.MatchID, participants [2]model.Identity) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range participants {
		if e.byParticipant[p] == id {
			delete(e.byParticipant, p)
		}
	}
	e.slots[int(id)] = nil
}

func (d *duel) indexOf(identity model.Identity) int {
	for i, p := range d.participants {
		if p == identity {
			return i
		}
	}
	return -1
}

func (d *duel) snapshotLocked() model.MatchSnapshot {
	snap := model.MatchSnapshot{
		Projectiles: make([]model.ProjectileSnapshot, len(d.projectiles)),
	}
	for i, p := range d.projectiles {
		snap.Projectiles[i] = model.ProjectileSnapshot{ID: p.id, Pos: p.pos}
	}
	for i := range d.participants {
		snap.Participants[i] = model.ParticipantSnapshot{
			Identity: d.participants[i],
			Pos:      d.pos[i],
			Health:   d.health[i],
		}
	}
	return snap
}

// boxesOverlap tests axis-aligned bounding-box overlap for two boxes centered
// on their positions with the given edge lengths.
func boxesOverlap(aPos model.Vec2, aSize float64, bPos model.Vec2, bSize float64) bool {
	half := (aSize + bSize) / 2
	dx := aPos.X - bPos.X
	dy := aPos.Y - bPos.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx < half && dy < half
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
