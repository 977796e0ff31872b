package holder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Wire tags for Kind. These are the values the drag payload carries, so
// they must stay stable across releases.
const (
	tagDeck       = "DECK"
	tagPile       = "PILE"
	tagFoundation = "FOUNDATION"
)

// ErrDecode matches every error returned by Codec.Decode.
var ErrDecode = errors.New("undecodable holder payload")

// DecodeError describes a payload that could not be turned into a Move.
// Callers treat it as "no usable origin" and decline the event.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode holder payload %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) hold for any *DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// wireHolder and wireMove are the JSON shapes of Address and Move.
type wireHolder struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`
}

type wireMove struct {
	CardHolder *wireHolder `json:"cardHolder"`
	Number     *int        `json:"number"`
}

// Codec converts a Move to and from the text payload attached to a drag.
// The zero Codec skips bounds checks on decode.
type Codec struct {
	Bounds Bounds
}

// NewCodec returns a Codec that rejects addresses outside b.
func NewCodec(b Bounds) Codec { return Codec{Bounds: b} }

// Encode returns the self-describing payload for m.
func (c Codec) Encode(m Move) string {
	idx := m.Holder.Index
	n := m.Count
	w := wireMove{
		CardHolder: &wireHolder{Type: kindTag(m.Holder.Kind), Index: &idx},
		Number:     &n,
	}
	// wireMove holds only strings and ints; Marshal cannot fail.
	b, _ := json.Marshal(w)
	return string(b)
}

// Decode parses a payload produced by Encode.
func (c Codec) Decode(s string) (Move, error) {
	fail := func(err error) (Move, error) {
		return Move{}, &DecodeError{Payload: s, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()

	var w wireMove
	if err := dec.Decode(&w); err != nil {
		return fail(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fail(errors.New("trailing data after payload"))
	}
	if w.CardHolder == nil {
		return fail(errors.New("missing cardHolder"))
	}
	if w.Number == nil {
		return fail(errors.New("missing number"))
	}

	kind, ok := tagKind(w.CardHolder.Type)
	if !ok {
		return fail(fmt.Errorf("unknown holder type %q", w.CardHolder.Type))
	}
	addr := Address{Kind: kind}
	if w.CardHolder.Index != nil {
		addr.Index = *w.CardHolder.Index
	} else if kind != KindDeck {
		return fail(fmt.Errorf("missing index for %s", kind))
	}
	if addr.Index < 0 || (kind == KindDeck && addr.Index != 0) {
		return fail(fmt.Errorf("%w: %s index %d", ErrOutOfBounds, kind, addr.Index))
	}
	if c.Bounds != (Bounds{}) {
		if err := c.Bounds.Check(addr); err != nil {
			return fail(err)
		}
	}

	m, err := NewMove(addr, *w.Number)
	if err != nil {
		return fail(err)
	}
	return m, nil
}

func kindTag(k Kind) string {
	switch k {
	case KindDeck:
		return tagDeck
	case KindPile:
		return tagPile
	case KindFoundation:
		return tagFoundation
	}
	return ""
}

func tagKind(tag string) (Kind, bool) {
	switch tag {
	case tagDeck:
		return KindDeck, true
	case tagPile:
		return KindPile, true
	case tagFoundation:
		return KindFoundation, true
	}
	return 0, false
}
