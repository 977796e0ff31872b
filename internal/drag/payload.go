package drag

import (
	"errors"

	"github.com/speevy/klondike/internal/holder"
)

// ErrNoOrigin is returned by Resolve when a payload carries neither a
// reference nor any encoded text.
var ErrNoOrigin = errors.New("drag payload has no origin")

// Payload travels with a drag. Origin is the in-process reference and is
// authoritative when set; Encoded is the text fallback for receivers that
// cannot see the sender's memory.
type Payload struct {
	Origin  *holder.Move
	Encoded string
}

// Resolve returns the drag origin. The encoded text is only decoded when
// the reference is absent. Both paths yield the same Move for the same drag.
func (p Payload) Resolve(codec holder.Codec) (holder.Move, error) {
	if p.Origin != nil {
		return *p.Origin, nil
	}
	if p.Encoded == "" {
		return holder.Move{}, ErrNoOrigin
	}
	return codec.Decode(p.Encoded)
}

// EncodedOnly returns p without its in-process reference, as a receiver in
// another context would see it.
func (p Payload) EncodedOnly() Payload {
	return Payload{Encoded: p.Encoded}
}
