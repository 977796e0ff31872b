package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/speevy/klondike/engine"
	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/cardface"
	"github.com/speevy/klondike/internal/drag"
	"github.com/speevy/klondike/internal/interaction"
)

// textHost is the presentation side for a terminal: it prints renders,
// messages and drag feedback, and remembers the payload of the running drag.
type textHost struct {
	mu      sync.Mutex
	out     io.Writer
	payload *drag.Payload
}

func newTextHost(out io.Writer) *textHost {
	return &textHost{out: out}
}

func (h *textHost) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, format, args...)
}

// Render prints one line per holder, top card last.
func (h *textHost) Render(st engine.Status, _ *board.Board) {
	var b strings.Builder

	stock := cardface.Empty
	if st.Deck.Stock > 0 {
		stock = cardface.Back
	}
	fmt.Fprintf(&b, "stock %s (%d)  waste %s (%d)\n", stock, st.Deck.Stock, cardface.ID(st.Deck.WasteTop), st.Deck.Waste)

	for i, p := range st.Piles {
		fmt.Fprintf(&b, "pile:%d %s\n", i, cardface.ID(p.Top()))
	}
	for i, f := range st.Foundations {
		fmt.Fprintf(&b, "foundation:%d", i)
		for j := 0; j < f.Hidden; j++ {
			b.WriteString(" " + cardface.Back)
		}
		for _, c := range f.Visible {
			b.WriteString(" " + cardface.ID(c))
		}
		if f.Hidden == 0 && len(f.Visible) == 0 {
			b.WriteString(" " + cardface.Empty)
		}
		b.WriteByte('\n')
	}
	if st.Won {
		b.WriteString("you win\n")
	}

	h.printf("%s", b.String())
}

func (h *textHost) Notify(m interaction.Message) {
	h.printf("! %s\n", m)
}

func (h *textHost) StartDrag(s drag.Session, p drag.Payload) {
	h.mu.Lock()
	h.payload = &p
	h.mu.Unlock()
	h.printf("drag %s\n", s.Origin)
}

func (h *textHost) SetHidden(board.WidgetID, bool) {}

func (h *textHost) Paint(_ board.WidgetID, o drag.Overlay) {
	if o != drag.OverlayNone {
		h.printf("overlay %s\n", o)
	}
}

// dragPayload returns the payload of the running drag, or an empty one.
func (h *textHost) dragPayload() drag.Payload {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.payload == nil {
		return drag.Payload{}
	}
	return *h.payload
}

func (h *textHost) forgetDrag() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payload = nil
}
