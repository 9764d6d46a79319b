package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Connection registry errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrRegistryFull       = errors.New("connection table is full")
	ErrIdentityBound      = errors.New("identity is already bound to a connection")

	// Invitation errors
	ErrInvitePending   = errors.New("inviter already has a pending invitation")
	ErrInviteNotFound  = errors.New("no matching pending invitation")
	ErrInviteTableFull = errors.New("invitation table is full")
	ErrInviteSelf      = errors.New("cannot invite yourself")
	ErrInviteeOffline  = errors.New("player not available")

	// Match errors
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchPoolFull  = errors.New("match pool is full")
	ErrAlreadyInMatch = errors.New("identity is already in an active match")
	ErrNotParticipant = errors.New("identity is not a participant in this match")
)
