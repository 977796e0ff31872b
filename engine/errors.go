package engine

import "errors"

// Every failing engine operation wraps exactly one of these. A failed
// operation never mutates the game.
var (
	// ErrInvalidState means the move is well formed but not legal right now:
	// an empty source, a card that does not fit the target, nothing to draw.
	ErrInvalidState = errors.New("invalid state")

	// ErrIllegalArgument means the request is malformed: a count that no
	// exposed run can satisfy, a move onto the deck, a source equal to the
	// target, an unknown holder.
	ErrIllegalArgument = errors.New("illegal argument")
)
