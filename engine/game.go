// Package engine implements the Klondike solitaire rules.
//
// It is the rules collaborator of the interaction core: the core only
// calls Take, MoveCards, CanMoveCards, ToPile, Undo and Status. Naming
// follows the reference game: the four suit stacks built from Ace to King
// are "piles" and the seven dealt columns are "foundations".
package engine

import (
	"github.com/speevy/klondike/internal/holder"
)

const (
	NumPiles       = 4
	NumFoundations = 7
	DeckSize       = 52

	// PileSize is a full suit.
	PileSize = NumRanks
	// FoundationSize fits the deepest dealt column (6 hidden) plus a full
	// King-to-Ace run.
	FoundationSize = NumFoundations - 1 + NumRanks
)

// PileState holds one suit pile. Cards[Len-1] is the top.
type PileState struct {
	Cards [PileSize]Card
	Len   uint8
}

// Top returns the top card or EmptyCard.
func (p *PileState) Top() Card {
	if p.Len == 0 {
		return EmptyCard
	}
	return p.Cards[p.Len-1]
}

// FoundationState holds one column. Cards[:Hidden] are face down,
// Cards[Hidden:Len] are face up with the top last.
type FoundationState struct {
	Cards  [FoundationSize]Card
	Len    uint8
	Hidden uint8
}

// Visible returns the number of face-up cards.
func (f *FoundationState) Visible() uint8 { return f.Len - f.Hidden }

// Top returns the top card or EmptyCard.
func (f *FoundationState) Top() Card {
	if f.Len == 0 {
		return EmptyCard
	}
	return f.Cards[f.Len-1]
}

// GameState holds the complete, self-contained state of a Klondike game.
// It is a flat value type (no pointers, no slices), so a Snapshot is a
// plain struct copy.
type GameState struct {
	Stock       [DeckSize]Card
	StockLen    uint8
	Waste       [DeckSize]Card
	WasteLen    uint8
	Piles       [NumPiles]PileState
	Foundations [NumFoundations]FoundationState
	RNG         uint64
	Rules       Rules
}

// ---------------------------------------------------------------------------
// xorshift64 RNG, inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGameState initializes a GameState with the given seed and rules.
// The full deck sits in the stock, unshuffled.
func NewGameState(seed uint64, rules Rules) GameState {
	var g GameState
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Rules = rules

	idx := 0
	for suit := uint8(0); suit < NumSuits; suit++ {
		for rank := uint8(0); rank <= RankKing; rank++ {
			g.Stock[idx] = NewCard(suit, rank)
			idx++
		}
	}
	g.StockLen = DeckSize
	return g
}

// Deal shuffles the stock and deals the foundations: column i receives
// i face-down cards and one face-up card. The rest stays in the stock.
func (g *GameState) Deal() {
	// Fisher-Yates shuffle.
	for i := int(g.StockLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Stock[i], g.Stock[j] = g.Stock[j], g.Stock[i]
	}

	for col := 0; col < NumFoundations; col++ {
		f := &g.Foundations[col]
		for n := 0; n <= col; n++ {
			g.StockLen--
			f.Cards[f.Len] = g.Stock[g.StockLen]
			g.Stock[g.StockLen] = EmptyCard
			f.Len++
		}
		f.Hidden = uint8(col)
	}
}

// StockTop returns the next card Take would draw, or EmptyCard.
func (g *GameState) StockTop() Card {
	if g.StockLen == 0 {
		return EmptyCard
	}
	return g.Stock[g.StockLen-1]
}

// WasteTop returns the top waste card, or EmptyCard.
func (g *GameState) WasteTop() Card {
	if g.WasteLen == 0 {
		return EmptyCard
	}
	return g.Waste[g.WasteLen-1]
}

// IsWon is true when every pile holds a full suit.
func (g *GameState) IsWon() bool {
	for i := range g.Piles {
		if g.Piles[i].Len != PileSize {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of GameState for undo support.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }

// ---------------------------------------------------------------------------
// Game
// ---------------------------------------------------------------------------

// Game is a dealt GameState plus its undo history. It is not safe for
// concurrent use; callers serialize access.
type Game struct {
	State   GameState
	History []Snapshot
}

// NewGame returns a freshly dealt game.
func NewGame(seed uint64, rules Rules) *Game {
	g := &Game{State: NewGameState(seed, rules)}
	g.State.Deal()
	return g
}

// Reset replaces the game with a freshly dealt one and clears the history.
func (g *Game) Reset(seed uint64) {
	g.State = NewGameState(seed, g.State.Rules)
	g.State.Deal()
	g.History = nil
}

// Bounds returns the holder counts of this engine.
func (g *Game) Bounds() holder.Bounds {
	return holder.Bounds{Piles: NumPiles, Foundations: NumFoundations}
}

// checkpoint pushes the current state onto the undo history.
func (g *Game) checkpoint() {
	g.History = append(g.History, g.State.Save())
	if limit := int(g.State.Rules.MaxUndo); limit > 0 && len(g.History) > limit {
		g.History = g.History[len(g.History)-limit:]
	}
}
