package interaction

import (
	"errors"

	"github.com/speevy/klondike/engine"
)

// Message is the user-facing text shown when an engine call fails.
type Message string

const (
	MsgInvalidMovement Message = "invalid movement"
	MsgIllegalMovement Message = "illegal movement"
	MsgUnknownError    Message = "unknown error"
)

// ErrEnginePanic wraps a panic recovered from an engine call.
var ErrEnginePanic = errors.New("engine panicked")

// Classify maps an engine error to the message shown for it.
func Classify(err error) Message {
	switch {
	case errors.Is(err, engine.ErrInvalidState):
		return MsgInvalidMovement
	case errors.Is(err, engine.ErrIllegalArgument):
		return MsgIllegalMovement
	default:
		return MsgUnknownError
	}
}
