package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/skyduel/skyduel/internal/model"
	"github.com/skyduel/skyduel/internal/protocol/wire"
	"github.com/skyduel/skyduel/internal/registry"
	"github.com/skyduel/skyduel/internal/services/match"
)

// leaderboardSize is how many rows the QUERY commands return
const leaderboardSize = 5

// dispatch parses one inbound line and routes it. The return value is false
// when the connection should close (logout and account deletion).
func (s *Server) dispatch(ctx context.Context, handle registry.Handle, line string) bool {
	parts := strings.Split(line, ":")
	cmd := parts[0]

	switch cmd {
	case "REGISTER":
		s.handleRegister(ctx, handle, parts)
	case "LOGIN":
		s.handleLogin(ctx, handle, parts)
	case "LOGOUT":
		return s.handleLogout(ctx, handle, false)
	case "DELETE_ME":
		return s.handleLogout(ctx, handle, true)
	case "LIST":
		s.handleList(handle)
	case "CHAT":
		s.handleChat(handle, line)
	case "INVITE":
		s.handleInvite(handle, parts)
	case "INVITE_RESP":
		s.handleInviteResponse(handle, parts)
	case "MOVE":
		s.handleMove(handle, parts)
	case "FIRE":
		s.handleFire(handle, parts)
	case "QUERY1", "QUERY2", "QUERY3":
		s.handleQuery(ctx, handle, cmd)
	default:
		s.reply(handle, wire.Error("unknown command"))
	}
	return true
}

// reply sends one line back to the issuing connection
func (s *Server) reply(handle registry.Handle, line string) {
	if err := s.registry.Send(handle, line); err != nil {
		s.logger.Debug("reply failed", slog.String("error", err.Error()))
	}
}

// requireIdentity resolves the identity bound to a connection, rejecting the
// command (but keeping the connection open) when unauthenticated.
func (s *Server) requireIdentity(handle registry.Handle) (model.Identity, bool) {
	identity, ok := s.registry.Identity(handle)
	if !ok {
		s.reply(handle, wire.Error("login required"))
		return "", false
	}
	return identity, true
}

func (s *Server) handleRegister(ctx context.Context, handle registry.Handle, parts []string) {
	if len(parts) != 4 {
		s.reply(handle, wire.Error("missing parameters for REGISTER"))
		return
	}
	username, email, password := parts[1], parts[2], parts[3]

	if err := s.accounts.Register(ctx, username, email, password); err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			s.reply(handle, wire.Error("username already exists"))
		} else {
			s.logger.Error("registration failed", slog.String("error", err.Error()))
			s.reply(handle, wire.Error("registration failed"))
		}
		return
	}
	s.reply(handle, "Registration successful")
}

func (s *Server) handleLogin(ctx context.Context, handle registry.Handle, parts []string) {
	if len(parts) != 3 {
		s.reply(handle, wire.Error("missing parameters for LOGIN"))
		return
	}
	if _, bound := s.registry.Identity(handle); bound {
		s.reply(handle, wire.Error("already logged in"))
		return
	}

	identity, err := s.accounts.Authenticate(ctx, parts[1], parts[2])
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			s.reply(handle, wire.Error("invalid credentials"))
		} else {
			s.logger.Error("login failed", slog.String("error", err.Error()))
			s.reply(handle, wire.Error("login failed"))
		}
		return
	}

	if err := s.registry.Bind(handle, identity); err != nil {
		// Single session per identity
		s.reply(handle, wire.Error("already logged in elsewhere"))
		return
	}

	s.reply(handle, "Login successful")
	s.presence.Add(identity)
	s.logger.Info("identity authenticated", slog.String("identity", string(identity)))
}

// handleLogout serves both LOGOUT and DELETE_ME; the latter removes the
// account before tearing the session down. Returns false so the read loop
// closes the connection after LOGOUT_OK.
func (s *Server) handleLogout(ctx context.Context, handle registry.Handle, deleteAccount bool) bool {
	identity, ok := s.requireIdentity(handle)
	if !ok {
		return true
	}

	if deleteAccount {
		if err := s.accounts.Delete(ctx, string(identity)); err != nil {
			s.logger.Error("account deletion failed",
				slog.String("identity", string(identity)),
				slog.String("error", err.Error()))
			s.reply(handle, wire.Error("deletion failed"))
			return true
		}
	}

	s.abandonIdentity(ctx, identity)
	s.registry.Unbind(handle)
	s.reply(handle, "LOGOUT_OK")
	return false
}

func (s *Server) handleList(handle registry.Handle) {
	if _, ok := s.requireIdentity(handle); !ok {
		return
	}
	s.reply(handle, wire.UpdateList(s.presence.Snapshot()))
}

// handleChat rebroadcasts lobby chat. The sender field from the wire is
// ignored in favor of the bound identity.
func (s *Server) handleChat(handle registry.Handle, line string) {
	identity, ok := s.requireIdentity(handle)
	if !ok {
		return
	}
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		s.reply(handle, wire.Error("missing parameters for CHAT"))
		return
	}
	s.registry.Broadcast(wire.Chat(identity, parts[2]))
}

func (s *Server) handleInvite(handle registry.Handle, parts []string) {
	inviter, ok := s.requireIdentity(handle)
	if !ok {
		return
	}
	if len(parts) != 2 {
		s.reply(handle, wire.Error("missing parameters for INVITE"))
		return
	}
	invitee := model.Identity(parts[1])

	if !s.presence.Contains(invitee) {
		s.reply(handle, wire.Error(model.ErrInviteeOffline.Error()))
		return
	}
	if _, busy := s.engine.FindByParticipant(inviter); busy {
		s.reply(handle, wire.Error("you are already in a match"))
		return
	}
	if _, busy := s.engine.FindByParticipant(invitee); busy {
		s.reply(handle, wire.Error("player is already in a match"))
		return
	}

	if err := s.invites.Challenge(inviter, invitee); err != nil {
		s.logger.Info("challenge rejected",
			slog.String("inviter", string(inviter)),
			slog.String("invitee", string(invitee)),
			slog.String("reason", err.Error()))
		s.reply(handle, wire.Error(err.Error()))
		return
	}

	if err := s.registry.SendTo(invitee, wire.InviteRequest(inviter, invitee)); err != nil {
		s.logger.Debug("invite delivery failed", slog.String("error", err.Error()))
	}
}

func (s *Server) handleInviteResponse(handle registry.Handle, parts []string) {
	invitee, ok := s.requireIdentity(handle)
	if !ok {
		return
	}
	if len(parts) != 3 {
		s.reply(handle, wire.Error("missing parameters for INVITE_RESP"))
		return
	}
	inviter := model.Identity(parts[1])
	accept := parts[2] == "ACCEPT"

	accepted, err := s.invites.Respond(inviter, invitee, accept)
	if err != nil {
		// No matching pending invitation: deliberate no-op so duplicate
		// responses are harmless
		return
	}

	if !accepted {
		s.sendPair(inviter, invitee, wire.InviteResult(inviter, false))
		return
	}

	if _, err := s.engine.Create(inviter, invitee); err != nil {
		s.logger.Warn("match creation failed",
			slog.String("inviter", string(inviter)),
			slog.String("invitee", string(invitee)),
			slog.String("error", err.Error()))
		s.sendPair(inviter, invitee, wire.Error("match unavailable"))
		return
	}

	s.sendPair(inviter, invitee, wire.InviteResult(inviter, true))
	if s.observer != nil {
		s.observer.MatchStarted(inviter, invitee)
	}
}

func (s *Server) handleMove(handle registry.Handle, parts []string) {
	identity, ok := s.requireIdentity(handle)
	if !ok {
		return
	}
	if len(parts) != 3 {
		s.reply(handle, wire.Error("missing parameters for MOVE"))
		return
	}
	pos, err := parseVec(parts[1], parts[2])
	if err != nil {
		s.reply(handle, wire.Error("malformed MOVE"))
		return
	}

	matchID, playing := s.engine.FindByParticipant(identity)
	if !playing {
		s.reply(handle, wire.Error("not in a match"))
		return
	}
	// No ack; the next STATE broadcast reflects the move
	_ = s.engine.ApplyMove(matchID, identity, pos)
}

func (s *Server) handleFire(handle registry.Handle, parts []string) {
	identity, ok := s.requireIdentity(handle)
	if !ok {
		return
	}
	if len(parts) != 5 {
		s.reply(handle, wire.Error("missing parameters for FIRE"))
		return
	}
	origin, err := parseVec(parts[1], parts[2])
	if err != nil {
		s.reply(handle, wire.Error("malformed FIRE"))
		return
	}
	velocity, err := parseVec(parts[3], parts[4])
	if err != nil {
		s.reply(handle, wire.Error("malformed FIRE"))
		return
	}

	matchID, playing := s.engine.FindByParticipant(identity)
	if !playing {
		s.reply(handle, wire.Error("not in a match"))
		return
	}

	ack, err := s.engine.ApplyFire(matchID, identity, origin, velocity)
	if err != nil {
		// Cap rejections are silent drops per the legacy protocol
		if !errors.Is(err, match.ErrProjectileCap) {
			s.logger.Debug("fire rejected", slog.String("error", err.Error()))
		}
		return
	}

	participants, ok := s.engine.Participants(matchID)
	if !ok {
		return
	}
	line := wire.FireAck(ack.ID, ack.Owner, ack.Origin, ack.Velocity)
	s.sendPair(participants[0], participants[1], line)
}

func (s *Server) handleQuery(ctx context.Context, handle registry.Handle, cmd string) {
	if _, ok := s.requireIdentity(handle); !ok {
		return
	}

	switch cmd {
	case "QUERY1":
		entries, err := s.accounts.TopByScore(ctx, leaderboardSize)
		s.replyQuery(handle, 1, formatEntries("Score", entries), err)
	case "QUERY2":
		records, err := s.accounts.RecentMatches(ctx, leaderboardSize)
		s.replyQuery(handle, 2, formatRecords(records), err)
	case "QUERY3":
		entries, err := s.accounts.TopByKills(ctx, leaderboardSize)
		s.replyQuery(handle, 3, formatEntries("Kills", entries), err)
	}
}

func (s *Server) replyQuery(handle registry.Handle, n int, text string, err error) {
	if err != nil {
		s.logger.Error("query failed", slog.Int("query", n), slog.String("error", err.Error()))
		s.reply(handle, wire.Error(fmt.Sprintf("query%d failed", n)))
		return
	}
	s.reply(handle, wire.QueryResult(n, text))
}

// sendPair delivers one line to both sides of a duel or invitation,
// skipping unreachable recipients.
func (s *Server) sendPair(a, b model.Identity, line string) {
	for _, identity := range []model.Identity{a, b} {
		if err := s.registry.SendTo(identity, line); err != nil {
			s.logger.Debug("pair delivery failed",
				slog.String("identity", string(identity)),
				slog.String("error", err.Error()))
		}
	}
}

func parseVec(xs, ys string) (model.Vec2, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return model.Vec2{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return model.Vec2{}, err
	}
	return model.Vec2{X: x, Y: y}, nil
}

func formatEntries(label string, entries []model.ScoreEntry) string {
	if len(entries) == 0 {
		return "no results"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("User: %s, %s: %d", e.Username, label, e.Score)
	}
	return strings.Join(parts, "; ")
}

func formatRecords(records []*model.MatchRecord) string {
	if len(records) == 0 {
		return "no results"
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = fmt.Sprintf("Winner: %s, Loser: %s", r.Winner, r.Loser)
	}
	return strings.Join(parts, "; ")
}
