// Package drag runs the drag session: it starts at most one drag at a
// time, previews drop targets against the engine's legality check, and
// hands accepted drops to the committer.
package drag

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/holder"
)

// Overlay is the feedback painted on a drop target.
type Overlay uint8

const (
	OverlayNone   Overlay = iota // no tint
	OverlayAccept                // the drop would be legal
	OverlayReject                // the drop would be refused
)

func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "none"
	case OverlayAccept:
		return "accept"
	case OverlayReject:
		return "reject"
	}
	return fmt.Sprintf("overlay(%d)", uint8(o))
}

// ErrSessionActive is returned by Start while another drag is running.
var ErrSessionActive = errors.New("a drag session is already active")

// Session is the single active drag.
type Session struct {
	ID        uuid.UUID
	Widget    board.WidgetID
	Origin    holder.Move
	Encoded   string
	StartedAt time.Time
}

// Payload returns the payload handed to the presenter for this session.
func (s Session) Payload() Payload {
	origin := s.Origin
	return Payload{Origin: &origin, Encoded: s.Encoded}
}

// Target is a widget a drag can enter, leave, or drop on.
type Target struct {
	Widget board.WidgetID
	Holder holder.Address
}

// Presenter is the rendering side of a drag.
type Presenter interface {
	StartDrag(s Session, p Payload)
	SetHidden(id board.WidgetID, hidden bool)
	Paint(id board.WidgetID, o Overlay)
}

// Previewer answers legality questions without mutating anything.
type Previewer interface {
	CanMoveCards(from, to holder.Address, count int) bool
}

// Committer performs a move and reports whether it succeeded.
type Committer interface {
	AttemptMove(from, to holder.Address, count int) bool
}

// Coordinator owns the drag session and the overlays painted for it.
type Coordinator struct {
	mu        sync.Mutex
	codec     holder.Codec
	presenter Presenter
	preview   Previewer
	commit    Committer
	clock     clock.Clock
	log       logrus.FieldLogger
	session   *Session
	painted   map[board.WidgetID]Overlay
	onEnd     func(s Session, dropped bool)
}

// New returns a coordinator with no active session.
func New(codec holder.Codec, p Presenter, preview Previewer, commit Committer, clk clock.Clock, log logrus.FieldLogger) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		codec:     codec,
		presenter: p,
		preview:   preview,
		commit:    commit,
		clock:     clk,
		log:       log.WithField("component", "drag"),
		painted:   make(map[board.WidgetID]Overlay),
	}
}

// OnEnd registers fn to run after every session ends.
func (c *Coordinator) OnEnd(fn func(s Session, dropped bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnd = fn
}

// Active returns the running session, if any.
func (c *Coordinator) Active() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Overlay returns what is currently painted on widget id.
func (c *Coordinator) Overlay(id board.WidgetID) Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.painted[id]
}

// Start opens a drag from widget id. The widget is hidden until the
// session ends without a drop.
func (c *Coordinator) Start(id board.WidgetID, origin holder.Move) (Session, error) {
	if _, err := holder.NewMove(origin.Holder, origin.Count); err != nil {
		return Session{}, err
	}

	c.mu.Lock()
	if c.session != nil {
		active := c.session.ID
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s", ErrSessionActive, active)
	}
	s := Session{
		ID:        uuid.New(),
		Widget:    id,
		Origin:    origin,
		Encoded:   c.codec.Encode(origin),
		StartedAt: c.clock.Now(),
	}
	c.session = &s
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"session": s.ID, "widget": id, "origin": origin}).Info("drag started")
	c.presenter.StartDrag(s, s.Payload())
	c.presenter.SetHidden(id, true)
	return s, nil
}

// resolve returns the origin carried by p, logging when it is unusable.
func (c *Coordinator) resolve(p Payload, t Target) (holder.Move, bool) {
	origin, err := p.Resolve(c.codec)
	if err != nil {
		c.log.WithFields(logrus.Fields{"widget": t.Widget, "holder": t.Holder}).WithError(err).Debug("drag event without usable origin")
		return holder.Move{}, false
	}
	return origin, true
}

// OnEnter paints t with the legality of dropping the origin on it. Entering
// the origin's own holder paints nothing and asks nothing.
func (c *Coordinator) OnEnter(p Payload, t Target) bool {
	origin, ok := c.resolve(p, t)
	if !ok {
		return false
	}
	if origin.Holder == t.Holder {
		return true
	}

	overlay := OverlayReject
	if c.preview.CanMoveCards(origin.Holder, t.Holder, origin.Count) {
		overlay = OverlayAccept
	}

	c.mu.Lock()
	c.painted[t.Widget] = overlay
	c.mu.Unlock()

	c.presenter.Paint(t.Widget, overlay)
	return true
}

// OnExit clears what OnEnter painted on t.
func (c *Coordinator) OnExit(p Payload, t Target) bool {
	origin, ok := c.resolve(p, t)
	if !ok {
		return false
	}
	if origin.Holder == t.Holder {
		return true
	}
	c.clear(t.Widget)
	return true
}

func (c *Coordinator) clear(id board.WidgetID) {
	c.mu.Lock()
	_, painted := c.painted[id]
	delete(c.painted, id)
	c.mu.Unlock()

	if painted {
		c.presenter.Paint(id, OverlayNone)
	}
}

// OnDrop commits the drop of the origin on t. A drop on the origin's own
// holder is declined and leaves the session running for the host's
// End(false). Any other drop ends the session, as dropped only when the
// move went through.
func (c *Coordinator) OnDrop(p Payload, t Target) bool {
	origin, ok := c.resolve(p, t)
	if !ok {
		return false
	}
	if origin.Holder == t.Holder {
		c.log.WithFields(logrus.Fields{"holder": t.Holder}).Debug("drop on origin declined")
		return false
	}
	c.clear(t.Widget)

	moved := c.commit.AttemptMove(origin.Holder, t.Holder, origin.Count)
	c.End(moved)
	return true
}

// End closes the active session. Without a drop the origin widget is shown
// again. Calling End with no active session does nothing.
func (c *Coordinator) End(dropped bool) {
	c.mu.Lock()
	s := c.session
	c.session = nil
	var stale []board.WidgetID
	for id := range c.painted {
		stale = append(stale, id)
	}
	c.painted = make(map[board.WidgetID]Overlay)
	onEnd := c.onEnd
	c.mu.Unlock()

	if s == nil {
		return
	}
	for _, id := range stale {
		c.presenter.Paint(id, OverlayNone)
	}
	if !dropped {
		c.presenter.SetHidden(s.Widget, false)
	}
	c.log.WithFields(logrus.Fields{
		"session":  s.ID,
		"dropped":  dropped,
		"duration": c.clock.Since(s.StartedAt),
	}).Info("drag ended")
	if onEnd != nil {
		onEnd(*s, dropped)
	}
}

// Reset forgets painted overlays after a re-render replaced the widgets.
// The session itself is left for End.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.painted = make(map[board.WidgetID]Overlay)
}
