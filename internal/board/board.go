// Package board maps the interactive widgets of one render to the holders
// they stand for.
//
// The mapping is built once per render and never edited afterwards. Every
// re-render calls Reset, which starts a new generation: ids handed out by
// earlier generations stop resolving, so stale pointer or drag events from
// widgets that no longer exist are ignored instead of acting on the wrong
// holder.
package board

import (
	"fmt"
	"sync"

	"github.com/speevy/klondike/engine"
	"github.com/speevy/klondike/internal/holder"
)

// WidgetID identifies a widget. IDs are never reused across generations.
type WidgetID uint64

// Role is what a widget does when touched or dropped on.
type Role uint8

const (
	RoleCard      Role = iota // draggable, double-tappable; carries a Move
	RoleContainer             // drop target for a whole holder
	RoleStock                 // tap to draw
)

func (r Role) String() string {
	switch r {
	case RoleCard:
		return "card"
	case RoleContainer:
		return "container"
	case RoleStock:
		return "stock"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Widget is one registered widget.
type Widget struct {
	ID     WidgetID
	Role   Role
	Holder holder.Address
	Count  int         // cards carried when dragged; RoleCard only
	Card   engine.Card // face shown; EmptyCard for containers and the stock
}

// Move returns the move this widget starts when dragged.
func (w Widget) Move() holder.Move {
	return holder.Move{Holder: w.Holder, Count: w.Count}
}

// Board is the widget registry of the current render. Safe for concurrent use.
type Board struct {
	mu         sync.RWMutex
	bounds     holder.Bounds
	generation uint64
	nextID     WidgetID
	widgets    map[WidgetID]Widget
	order      []WidgetID
}

// New returns an empty board for the given holder counts.
func New(bounds holder.Bounds) *Board {
	return &Board{
		bounds:  bounds,
		widgets: make(map[WidgetID]Widget),
	}
}

// Bounds returns the holder counts the board validates against.
func (b *Board) Bounds() holder.Bounds { return b.bounds }

// Generation returns the number of resets so far.
func (b *Board) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generation
}

// Reset drops every widget and starts a new generation.
func (b *Board) Reset() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.widgets = make(map[WidgetID]Widget)
	b.order = b.order[:0]
	return b.generation
}

func (b *Board) add(w Widget) WidgetID {
	b.bounds.MustCheck(w.Holder)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	w.ID = b.nextID
	b.widgets[w.ID] = w
	b.order = append(b.order, w.ID)
	return w.ID
}

// AddCard registers a draggable card carrying the top count cards of h.
// It panics on an out-of-range holder or a count below one.
func (b *Board) AddCard(h holder.Address, count int, face engine.Card) WidgetID {
	if count < 1 {
		panic(fmt.Sprintf("board: card widget for %s with count %d", h, count))
	}
	return b.add(Widget{Role: RoleCard, Holder: h, Count: count, Card: face})
}

// AddContainer registers a drop target for h.
func (b *Board) AddContainer(h holder.Address) WidgetID {
	return b.add(Widget{Role: RoleContainer, Holder: h, Card: engine.EmptyCard})
}

// AddStock registers the tap-to-draw stock widget.
func (b *Board) AddStock() WidgetID {
	return b.add(Widget{Role: RoleStock, Holder: holder.Deck(), Card: engine.EmptyCard})
}

// Lookup resolves an id from the current generation.
func (b *Board) Lookup(id WidgetID) (Widget, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.widgets[id]
	return w, ok
}

// Widgets returns the current widgets in registration order.
func (b *Board) Widgets() []Widget {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Widget, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.widgets[id])
	}
	return out
}

// Find returns the first widget with the given role and holder, and for
// cards the given count. Hosts that address widgets by name use it.
func (b *Board) Find(role Role, h holder.Address, count int) (Widget, bool) {
	for _, w := range b.Widgets() {
		if w.Role != role || w.Holder != h {
			continue
		}
		if role == RoleCard && w.Count != count {
			continue
		}
		return w, true
	}
	return Widget{}, false
}

// Build resets the board and registers the widgets for status: the stock,
// the waste top card, each pile's top card and container, and every
// visible foundation card (carrying itself plus the cards above it) with
// the foundation's container.
func (b *Board) Build(status engine.Status) uint64 {
	gen := b.Reset()

	b.AddStock()
	if status.Deck.WasteTop != engine.EmptyCard {
		b.AddCard(holder.Deck(), 1, status.Deck.WasteTop)
	}

	for i := 0; i < b.bounds.Piles && i < len(status.Piles); i++ {
		h := holder.Pile(i)
		if top := status.Piles[i].Top(); top != engine.EmptyCard {
			b.AddCard(h, 1, top)
		}
		b.AddContainer(h)
	}

	for i := 0; i < b.bounds.Foundations && i < len(status.Foundations); i++ {
		h := holder.Foundation(i)
		vis := status.Foundations[i].Visible
		for j, c := range vis {
			b.AddCard(h, len(vis)-j, c)
		}
		b.AddContainer(h)
	}
	return gen
}
