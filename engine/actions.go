package engine

import (
	"fmt"

	"github.com/speevy/klondike/internal/holder"
)

// Take draws the top stock card onto the waste. With an empty stock it
// turns the waste back over, if the rules allow it.
func (g *Game) Take() error {
	s := &g.State
	if s.StockLen == 0 {
		if s.WasteLen == 0 {
			return fmt.Errorf("%w: stock and waste are both empty", ErrInvalidState)
		}
		if !s.Rules.RecycleWaste {
			return fmt.Errorf("%w: stock is empty and the waste cannot be recycled", ErrInvalidState)
		}
		g.checkpoint()
		// The first card drawn after recycling is the first card that was
		// drawn onto the waste.
		for i := uint8(0); i < s.WasteLen; i++ {
			s.Stock[i] = s.Waste[s.WasteLen-1-i]
		}
		for i := uint8(0); i < s.WasteLen; i++ {
			s.Waste[i] = EmptyCard
		}
		s.StockLen, s.WasteLen = s.WasteLen, 0
		return nil
	}

	g.checkpoint()
	s.StockLen--
	s.Waste[s.WasteLen] = s.Stock[s.StockLen]
	s.Stock[s.StockLen] = EmptyCard
	s.WasteLen++
	return nil
}

// MoveCards moves the top count exposed cards of from onto to.
func (g *Game) MoveCards(from, to holder.Address, count int) error {
	cards, err := g.State.checkMove(from, to, count)
	if err != nil {
		return err
	}
	moving := make([]Card, len(cards))
	copy(moving, cards)

	g.checkpoint()
	g.State.remove(from, len(moving))
	g.State.place(to, moving)
	return nil
}

// ToPile sends the top card of h to the first pile that accepts it.
func (g *Game) ToPile(h holder.Address) error {
	if h.Kind == holder.KindPile {
		return fmt.Errorf("%w: %s is already a pile", ErrIllegalArgument, h)
	}
	if err := g.Bounds().Check(h); err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalArgument, err)
	}
	if _, err := g.State.run(h, 1); err != nil {
		return err
	}
	for i := 0; i < NumPiles; i++ {
		to := holder.Pile(i)
		if _, err := g.State.checkMove(h, to, 1); err == nil {
			return g.MoveCards(h, to, 1)
		}
	}
	return fmt.Errorf("%w: no pile accepts %s from %s", ErrInvalidState, g.State.top(h), h)
}

// Undo restores the state before the last successful action. With no
// history it does nothing.
func (g *Game) Undo() error {
	n := len(g.History)
	if n == 0 {
		return nil
	}
	g.State.Restore(g.History[n-1])
	g.History = g.History[:n-1]
	return nil
}

// remove pops n cards from the top of h, flipping the next hidden
// foundation card when its visible run empties.
func (g *GameState) remove(h holder.Address, n int) {
	switch h.Kind {
	case holder.KindDeck:
		for i := 0; i < n; i++ {
			g.WasteLen--
			g.Waste[g.WasteLen] = EmptyCard
		}
	case holder.KindPile:
		p := &g.Piles[h.Index]
		for i := 0; i < n; i++ {
			p.Len--
			p.Cards[p.Len] = EmptyCard
		}
	case holder.KindFoundation:
		f := &g.Foundations[h.Index]
		for i := 0; i < n; i++ {
			f.Len--
			f.Cards[f.Len] = EmptyCard
		}
		if f.Len > 0 && f.Visible() == 0 {
			f.Hidden--
		}
	}
}

// top returns the top exposed card of h, or EmptyCard.
func (g *GameState) top(h holder.Address) Card {
	switch h.Kind {
	case holder.KindDeck:
		return g.WasteTop()
	case holder.KindPile:
		return g.Piles[h.Index].Top()
	case holder.KindFoundation:
		return g.Foundations[h.Index].Top()
	}
	return EmptyCard
}

// place pushes cards (bottom first) onto h.
func (g *GameState) place(h holder.Address, cards []Card) {
	switch h.Kind {
	case holder.KindPile:
		p := &g.Piles[h.Index]
		for _, c := range cards {
			p.Cards[p.Len] = c
			p.Len++
		}
	case holder.KindFoundation:
		f := &g.Foundations[h.Index]
		for _, c := range cards {
			f.Cards[f.Len] = c
			f.Len++
		}
	}
}
