package engine

import (
	"encoding/json"
	"fmt"

	"github.com/speevy/klondike/internal/holder"
)

// HolderStatus is what a renderer needs to draw one pile or foundation.
type HolderStatus struct {
	Hidden  int
	Visible []Card // top-most last
}

// Top returns the top visible card or EmptyCard.
func (h HolderStatus) Top() Card {
	if len(h.Visible) == 0 {
		return EmptyCard
	}
	return h.Visible[len(h.Visible)-1]
}

// DeckStatus describes the stock and the waste.
type DeckStatus struct {
	Stock    int
	Waste    int
	WasteTop Card // EmptyCard when the waste is empty
}

// Status is a read-only snapshot of the game used for rendering.
type Status struct {
	Deck        DeckStatus
	Piles       []HolderStatus
	Foundations []HolderStatus
	Won         bool
	CanUndo     bool
}

// Holder returns the status of a single holder. The deck reports its
// waste top as the only visible card.
func (s Status) Holder(a holder.Address) HolderStatus {
	switch a.Kind {
	case holder.KindPile:
		return s.Piles[a.Index]
	case holder.KindFoundation:
		return s.Foundations[a.Index]
	}
	if s.Deck.WasteTop == EmptyCard {
		return HolderStatus{}
	}
	return HolderStatus{Visible: []Card{s.Deck.WasteTop}}
}

// Bounds returns the holder counts present in s.
func (s Status) Bounds() holder.Bounds {
	return holder.Bounds{Piles: len(s.Piles), Foundations: len(s.Foundations)}
}

// Status returns a snapshot of the current game.
func (g *Game) Status() Status {
	st := &g.State
	out := Status{
		Deck: DeckStatus{
			Stock:    int(st.StockLen),
			Waste:    int(st.WasteLen),
			WasteTop: st.WasteTop(),
		},
		Piles:       make([]HolderStatus, NumPiles),
		Foundations: make([]HolderStatus, NumFoundations),
		Won:         st.IsWon(),
		CanUndo:     len(g.History) > 0,
	}
	for i := range st.Piles {
		p := &st.Piles[i]
		vis := make([]Card, p.Len)
		copy(vis, p.Cards[:p.Len])
		out.Piles[i] = HolderStatus{Visible: vis}
	}
	for i := range st.Foundations {
		f := &st.Foundations[i]
		vis := make([]Card, f.Visible())
		copy(vis, f.Cards[f.Hidden:f.Len])
		out.Foundations[i] = HolderStatus{Hidden: int(f.Hidden), Visible: vis}
	}
	return out
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// MarshalGame serializes the game including its undo history.
func MarshalGame(g *Game) ([]byte, error) {
	return json.Marshal(g)
}

// UnmarshalGame restores a game written by MarshalGame. The current state
// must hold each of the 52 cards exactly once.
func UnmarshalGame(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	if err := g.State.validate(); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}

// validate checks lengths and that every card appears exactly once.
func (g *GameState) validate() error {
	var seen [NumSuits * 16]bool
	count := 0
	mark := func(where string, cards []Card) error {
		for _, c := range cards {
			if !c.Valid() {
				return fmt.Errorf("%s holds invalid card %#x", where, uint8(c))
			}
			if seen[c] {
				return fmt.Errorf("%s holds duplicate card %s", where, c)
			}
			seen[c] = true
			count++
		}
		return nil
	}

	if int(g.StockLen) > DeckSize || int(g.WasteLen) > DeckSize {
		return fmt.Errorf("stock/waste length out of range")
	}
	if err := mark("stock", g.Stock[:g.StockLen]); err != nil {
		return err
	}
	if err := mark("waste", g.Waste[:g.WasteLen]); err != nil {
		return err
	}
	for i := range g.Piles {
		p := &g.Piles[i]
		if int(p.Len) > PileSize {
			return fmt.Errorf("pile %d length %d out of range", i, p.Len)
		}
		if err := mark(fmt.Sprintf("pile %d", i), p.Cards[:p.Len]); err != nil {
			return err
		}
	}
	for i := range g.Foundations {
		f := &g.Foundations[i]
		if int(f.Len) > FoundationSize || f.Hidden > f.Len || (f.Len > 0 && f.Hidden == f.Len) {
			return fmt.Errorf("foundation %d lengths out of range", i)
		}
		if err := mark(fmt.Sprintf("foundation %d", i), f.Cards[:f.Len]); err != nil {
			return err
		}
	}
	if count != DeckSize {
		return fmt.Errorf("game holds %d cards, want %d", count, DeckSize)
	}
	return nil
}
