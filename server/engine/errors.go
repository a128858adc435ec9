package engine

import "errors"

// Rejections: the action was refused and no state changed. They are reported
// back to the requesting player, never treated as faults.
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrUnplayedSpecial   = errors.New("special card must be used first")
	ErrForcedDrawPending = errors.New("a forced draw is pending on another player")
	ErrInvalidTarget     = errors.New("target player does not exist or is inactive")
	ErrNoSpecialHeld     = errors.New("no special card in hand")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrMatchOver         = errors.New("match is over")
)
