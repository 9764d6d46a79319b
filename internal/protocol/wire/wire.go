// Package wire renders outbound protocol lines. The protocol is
// colon-delimited ASCII, one message per line; numeric fields are rendered
// without decimal places.
package wire

import (
	"fmt"
	"strings"

	"github.com/skyduel/skyduel/internal/model"
)

// Coord renders a position or velocity component as the wire's integer form
func Coord(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// UpdateList renders the presence broadcast. An empty snapshot renders an
// empty list, not a missing field.
func UpdateList(identities []model.Identity) string {
	parts := make([]string, len(identities))
	for i, id := range identities {
		parts[i] = string(id)
	}
	return "UPDATE_LIST:" + strings.Join(parts, ",")
}

// InviteRequest renders the challenge notification sent to the invitee
func InviteRequest(inviter, invitee model.Identity) string {
	return fmt.Sprintf("INVITE_REQUEST:%s:%s", inviter, invitee)
}

// InviteResult renders the resolution notification sent to both participants
func InviteResult(inviter model.Identity, accepted bool) string {
	verdict := "REJECTED"
	if accepted {
		verdict = "ACCEPTED"
	}
	return fmt.Sprintf("INVITE_RESULT:%s:%s", inviter, verdict)
}

// FireAck renders the acknowledgment for an accepted fire command
func FireAck(id int, owner model.Identity, origin, velocity model.Vec2) string {
	return fmt.Sprintf("FIRE_ACK:%d:%s:%s:%s:%s:%s",
		id, owner,
		Coord(origin.X), Coord(origin.Y),
		Coord(velocity.X), Coord(velocity.Y))
}

// Hit renders a collision notification
func Hit(struck model.Identity, health int) string {
	return fmt.Sprintf("HIT:%s:%d", struck, health)
}

// GameOver renders the match-end notification. An empty winner means a draw
// and renders as NONE.
func GameOver(winner model.Identity) string {
	if winner == "" {
		return "GAME_OVER:NONE"
	}
	return fmt.Sprintf("GAME_OVER:%s", winner)
}

// Chat renders a lobby chat broadcast
func Chat(from model.Identity, text string) string {
	return fmt.Sprintf("CHAT:%s:%s", from, text)
}

// Error renders a protocol rejection line
func Error(text string) string {
	return "ERROR:" + text
}

// QueryResult renders a leaderboard/history query response
func QueryResult(n int, text string) string {
	return fmt.Sprintf("QUERY%d_RESULT:%s", n, text)
}

// State renders the per-tick snapshot: projectiles, healths and positions,
// pipe-separated, each section comma-joined.
func State(snap model.MatchSnapshot) string {
	var b strings.Builder
	b.WriteString("STATE:")

	for i, p := range snap.Projectiles {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%s:%s", p.ID, Coord(p.Pos.X), Coord(p.Pos.Y))
	}
	b.WriteByte('|')

	for i, p := range snap.Participants {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%d", p.Identity, p.Health)
	}
	b.WriteByte('|')

	for i, p := range snap.Participants {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%s:%s", p.Identity, Coord(p.Pos.X), Coord(p.Pos.Y))
	}

	return b.String()
}
