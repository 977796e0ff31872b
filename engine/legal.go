package engine

import (
	"fmt"

	"github.com/speevy/klondike/internal/holder"
)

// run returns the top count exposed cards of from, bottom first.
// The returned slice aliases state; callers copy before mutating.
func (g *GameState) run(from holder.Address, count int) ([]Card, error) {
	switch from.Kind {
	case holder.KindDeck:
		if g.WasteLen == 0 {
			return nil, fmt.Errorf("%w: waste is empty", ErrInvalidState)
		}
		if count != 1 {
			return nil, fmt.Errorf("%w: only one waste card can move, got %d", ErrIllegalArgument, count)
		}
		return g.Waste[g.WasteLen-1 : g.WasteLen], nil

	case holder.KindPile:
		p := &g.Piles[from.Index]
		if p.Len == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidState, from)
		}
		if count != 1 {
			return nil, fmt.Errorf("%w: only one pile card can move, got %d", ErrIllegalArgument, count)
		}
		return p.Cards[p.Len-1 : p.Len], nil

	case holder.KindFoundation:
		f := &g.Foundations[from.Index]
		if f.Visible() == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidState, from)
		}
		if count > int(f.Visible()) {
			return nil, fmt.Errorf("%w: %s exposes %d cards, asked for %d", ErrIllegalArgument, from, f.Visible(), count)
		}
		return f.Cards[int(f.Len)-count : f.Len], nil
	}
	return nil, fmt.Errorf("%w: unknown holder %s", ErrIllegalArgument, from)
}

// accepts reports whether cards (bottom first) can be placed on to.
func (g *GameState) accepts(to holder.Address, cards []Card) error {
	bottom := cards[0]
	switch to.Kind {
	case holder.KindPile:
		if len(cards) != 1 {
			return fmt.Errorf("%w: a pile takes one card at a time", ErrInvalidState)
		}
		top := g.Piles[to.Index].Top()
		if top == EmptyCard {
			if bottom.Rank() != RankAce {
				return fmt.Errorf("%w: empty %s needs an ace, got %s", ErrInvalidState, to, bottom)
			}
			return nil
		}
		if bottom.Suit() != top.Suit() || bottom.Rank() != top.Rank()+1 {
			return fmt.Errorf("%w: %s does not follow %s on %s", ErrInvalidState, bottom, top, to)
		}
		return nil

	case holder.KindFoundation:
		top := g.Foundations[to.Index].Top()
		if top == EmptyCard {
			if bottom.Rank() != RankKing {
				return fmt.Errorf("%w: empty %s needs a king, got %s", ErrInvalidState, to, bottom)
			}
			return nil
		}
		if bottom.IsRed() == top.IsRed() || bottom.Rank()+1 != top.Rank() {
			return fmt.Errorf("%w: %s does not go on %s", ErrInvalidState, bottom, top)
		}
		return nil
	}
	return fmt.Errorf("%w: cards cannot be moved to %s", ErrIllegalArgument, to)
}

// checkMove validates a move without touching state and returns the run
// that would move.
func (g *GameState) checkMove(from, to holder.Address, count int) ([]Card, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count %d", ErrIllegalArgument, count)
	}
	if from == to {
		return nil, fmt.Errorf("%w: %s onto itself", ErrIllegalArgument, from)
	}
	bounds := holder.Bounds{Piles: NumPiles, Foundations: NumFoundations}
	if err := bounds.Check(from); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalArgument, err)
	}
	if err := bounds.Check(to); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalArgument, err)
	}
	if to.Kind == holder.KindDeck {
		return nil, fmt.Errorf("%w: cards cannot be moved to the deck", ErrIllegalArgument)
	}
	cards, err := g.run(from, count)
	if err != nil {
		return nil, err
	}
	if err := g.accepts(to, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// CanMoveCards reports whether MoveCards(from, to, count) would succeed.
// It never mutates the game.
func (g *Game) CanMoveCards(from, to holder.Address, count int) bool {
	_, err := g.State.checkMove(from, to, count)
	return err == nil
}
