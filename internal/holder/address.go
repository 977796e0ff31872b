// Package holder identifies where a stack of cards lives on the board.
//
// An Address names a holder (the deck, one of the suit piles, or one of the
// foundation columns). A Move pairs an Address with the number of exposed
// cards taken from its top. Neither carries card identities: resolving what
// the cards are, and whether moving them is legal, is the engine's job.
package holder

import (
	"errors"
	"fmt"
)

// Kind is the variant tag of an Address.
type Kind uint8

const (
	KindDeck       Kind = iota // stock and waste; no index
	KindPile                   // suit piles
	KindFoundation             // foundation columns
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDeck:
		return "deck"
	case KindPile:
		return "pile"
	case KindFoundation:
		return "foundation"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Address is an immutable holder location. Two addresses are equal when
// kind and index match, so plain == comparison is structural.
type Address struct {
	Kind  Kind
	Index int // always 0 for KindDeck
}

// Deck returns the address of the stock/waste holder.
func Deck() Address { return Address{Kind: KindDeck} }

// Pile returns the address of suit pile i.
func Pile(i int) Address { return Address{Kind: KindPile, Index: i} }

// Foundation returns the address of foundation column i.
func Foundation(i int) Address { return Address{Kind: KindFoundation, Index: i} }

func (a Address) String() string {
	if a.Kind == KindDeck {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s[%d]", a.Kind, a.Index)
}

// ErrOutOfBounds is returned by Bounds.Check for an index outside the
// configured holder counts.
var ErrOutOfBounds = errors.New("holder address out of bounds")

// Bounds holds the number of piles and foundations of a game configuration.
type Bounds struct {
	Piles       int
	Foundations int
}

// Check reports whether a is a valid address under b.
func (b Bounds) Check(a Address) error {
	switch a.Kind {
	case KindDeck:
		if a.Index != 0 {
			return fmt.Errorf("%w: deck index %d", ErrOutOfBounds, a.Index)
		}
	case KindPile:
		if a.Index < 0 || a.Index >= b.Piles {
			return fmt.Errorf("%w: pile %d not in [0, %d)", ErrOutOfBounds, a.Index, b.Piles)
		}
	case KindFoundation:
		if a.Index < 0 || a.Index >= b.Foundations {
			return fmt.Errorf("%w: foundation %d not in [0, %d)", ErrOutOfBounds, a.Index, b.Foundations)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrOutOfBounds, uint8(a.Kind))
	}
	return nil
}

// MustCheck panics when a is not valid under b. Widget addresses are fixed
// when the board is built, so a bad one is a programming error.
func (b Bounds) MustCheck(a Address) {
	if err := b.Check(a); err != nil {
		panic(err)
	}
}

// All returns every address under b: the deck, then the piles, then the
// foundations.
func (b Bounds) All() []Address {
	out := make([]Address, 0, 1+b.Piles+b.Foundations)
	out = append(out, Deck())
	for i := 0; i < b.Piles; i++ {
		out = append(out, Pile(i))
	}
	for i := 0; i < b.Foundations; i++ {
		out = append(out, Foundation(i))
	}
	return out
}

// ErrZeroCount is returned by NewMove for a count below one.
var ErrZeroCount = errors.New("move count must be at least 1")

// Move is the top Count cards currently exposed at Holder.
type Move struct {
	Holder Address
	Count  int
}

// NewMove builds a Move, rejecting counts below one.
func NewMove(h Address, count int) (Move, error) {
	if count < 1 {
		return Move{}, fmt.Errorf("%w: got %d for %s", ErrZeroCount, count, h)
	}
	return Move{Holder: h, Count: count}, nil
}

// Single is NewMove(h, 1), which cannot fail.
func Single(h Address) Move { return Move{Holder: h, Count: 1} }

func (m Move) String() string { return fmt.Sprintf("%s x%d", m.Holder, m.Count) }
