package model

// MatchID identifies an active match slot in the match engine.
type MatchID int

// InviteState is the response state of a pending invitation.
type InviteState int

const (
	InvitePending InviteState = iota
	InviteAccepted
	InviteRejected
)

// Invitation is one pending duel challenge. It is discarded as soon as it
// resolves to accepted or rejected.
type Invitation struct {
	Inviter Identity
	Invitee Identity
	State   InviteState
}

// Vec2 is a 2D position or velocity on the playfield.
type Vec2 struct {
	X float64
	Y float64
}

// ProjectileSnapshot is one active projectile as seen in a state broadcast.
type ProjectileSnapshot struct {
	ID  int
	Pos Vec2
}

// ParticipantSnapshot is one duellist as seen in a state broadcast.
type ParticipantSnapshot struct {
	Identity Identity
	Pos      Vec2
	Health   int
}

// MatchSnapshot is the full per-tick view of one match, broadcast to both
// participants.
type MatchSnapshot struct {
	Projectiles  []ProjectileSnapshot
	Participants [2]ParticipantSnapshot
}
