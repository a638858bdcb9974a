package game

import "errors"

// Action errors. Every rejected action wraps exactly one of these so callers can
// branch with errors.Is while clients still get a readable message.
var (
	ErrNotFound        = errors.New("no active game")
	ErrWrongPhase      = errors.New("wrong phase")
	ErrUnauthorized    = errors.New("not allowed")
	ErrDuplicateAction = errors.New("already acted this round")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrPoolExhausted   = errors.New("game over")
)
