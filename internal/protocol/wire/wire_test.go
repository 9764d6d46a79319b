package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyduel/skyduel/internal/model"
)

func TestUpdateList(t *testing.T) {
	assert.Equal(t, "UPDATE_LIST:", UpdateList(nil))
	assert.Equal(t, "UPDATE_LIST:alice,bob",
		UpdateList([]model.Identity{"alice", "bob"}))
}

func TestFireAckIntegerFormatting(t *testing.T) {
	line := FireAck(7, "alice",
		model.Vec2{X: 100.6, Y: 240.2}, model.Vec2{X: 10, Y: -0.4})
	assert.Equal(t, "FIRE_ACK:7:alice:101:240:10:-0", line)
}

func TestHit(t *testing.T) {
	assert.Equal(t, "HIT:bob:75", Hit("bob", 75))
}

func TestGameOver(t *testing.T) {
	assert.Equal(t, "GAME_OVER:alice", GameOver("alice"))
	assert.Equal(t, "GAME_OVER:NONE", GameOver(""))
}

func TestState(t *testing.T) {
	snap := model.MatchSnapshot{
		Projectiles: []model.ProjectileSnapshot{
			{ID: 1, Pos: model.Vec2{X: 110, Y: 238}},
			{ID: 2, Pos: model.Vec2{X: 700, Y: 240}},
		},
		Participants: [2]model.ParticipantSnapshot{
			{Identity: "alice", Pos: model.Vec2{X: 100, Y: 240}, Health: 100},
			{Identity: "bob", Pos: model.Vec2{X: 700, Y: 240}, Health: 75},
		},
	}

	assert.Equal(t,
		"STATE:1:110:238,2:700:240|alice:100,bob:75|alice:100:240,bob:700:240",
		State(snap))
}

func TestStateEmptyProjectiles(t *testing.T) {
	snap := model.MatchSnapshot{
		Participants: [2]model.ParticipantSnapshot{
			{Identity: "alice", Pos: model.Vec2{X: 100, Y: 240}, Health: 100},
			{Identity: "bob", Pos: model.Vec2{X: 700, Y: 240}, Health: 100},
		},
	}

	assert.Equal(t,
		"STATE:|alice:100,bob:100|alice:100:240,bob:700:240",
		State(snap))
}
