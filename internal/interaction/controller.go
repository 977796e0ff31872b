// Package interaction turns user intents into engine calls. Every successful
// call re-renders the board; every failed one shows a classified message and
// leaves the board as it was.
//
// The controller is also the host's entry point: pointer and drag events
// arrive here by widget id and are routed to the gesture classifier and the
// drag coordinator.
package interaction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/engine"
	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/drag"
	"github.com/speevy/klondike/internal/gesture"
	"github.com/speevy/klondike/internal/holder"
)

// Engine is the rules engine the controller drives.
type Engine interface {
	Take() error
	MoveCards(from, to holder.Address, count int) error
	CanMoveCards(from, to holder.Address, count int) bool
	ToPile(h holder.Address) error
	Undo() error
	Status() engine.Status
}

// Resetter is implemented by engines that can deal a new game in place.
type Resetter interface {
	Reset(seed uint64)
}

// Renderer draws a status. The board already holds the widgets for it.
type Renderer interface {
	Render(status engine.Status, b *board.Board)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(m Message)
}

// ErrNotResettable is returned by NewGame when the engine cannot reset.
var ErrNotResettable = errors.New("engine does not support a new game")

// Options tunes a Controller. Zero values pick the defaults.
type Options struct {
	Gesture gesture.Config
	Clock   clock.Clock
	Log     logrus.FieldLogger
}

// Controller serializes engine access and keeps the board in step with it.
type Controller struct {
	engineMu sync.Mutex
	engine   Engine

	board    *board.Board
	codec    holder.Codec
	gestures *gesture.Classifier
	drags    *drag.Coordinator
	renderer Renderer
	notifier Notifier
	log      logrus.FieldLogger
}

// New wires a controller around e. Call Refresh once to draw the first board.
func New(e Engine, bounds holder.Bounds, r Renderer, n Notifier, p drag.Presenter, opts Options) (*Controller, error) {
	if opts.Gesture == (gesture.Config{}) {
		opts.Gesture = gesture.DefaultConfig()
	}
	if err := opts.Gesture.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	c := &Controller{
		engine:   e,
		board:    board.New(bounds),
		codec:    holder.NewCodec(bounds),
		renderer: r,
		notifier: n,
		log:      opts.Log.WithField("component", "interaction"),
	}
	c.gestures = gesture.New(opts.Gesture, opts.Clock, c, opts.Log)
	c.drags = drag.New(c.codec, p, c, c, opts.Clock, opts.Log)
	c.drags.OnEnd(func(s drag.Session, _ bool) {
		c.gestures.DragEnded(s.Widget)
	})
	return c, nil
}

// Board returns the widgets of the last render.
func (c *Controller) Board() *board.Board { return c.board }

// Codec returns the codec used for drag payloads.
func (c *Controller) Codec() holder.Codec { return c.codec }

// Gestures returns the gesture classifier.
func (c *Controller) Gestures() *gesture.Classifier { return c.gestures }

// Drags returns the drag coordinator.
func (c *Controller) Drags() *drag.Coordinator { return c.drags }

// Do runs fn with exclusive access to the engine.
func (c *Controller) Do(fn func(Engine) error) error {
	return c.call(fn)
}

// call runs fn under the engine lock, turning a panic into ErrEnginePanic.
func (c *Controller) call(fn func(Engine) error) (err error) {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEnginePanic, r)
		}
	}()
	return fn(c.engine)
}

// attempt runs an engine mutation and reacts to its outcome.
func (c *Controller) attempt(op string, fields logrus.Fields, fn func(Engine) error) bool {
	log := c.log.WithField("op", op).WithFields(fields)
	if err := c.call(fn); err != nil {
		msg := Classify(err)
		log.WithError(err).WithField("message", msg).Info("engine refused")
		c.notifier.Notify(msg)
		return false
	}
	log.Debug("engine accepted")
	c.Refresh()
	return true
}

// AttemptMove moves count cards from one holder to another.
func (c *Controller) AttemptMove(from, to holder.Address, count int) bool {
	return c.attempt("move", logrus.Fields{"from": from, "to": to, "count": count}, func(e Engine) error {
		return e.MoveCards(from, to, count)
	})
}

// AttemptTake draws from the stock.
func (c *Controller) AttemptTake() bool {
	return c.attempt("take", nil, func(e Engine) error {
		return e.Take()
	})
}

// AttemptAutoMove sends the top card of h to a suit pile.
func (c *Controller) AttemptAutoMove(h holder.Address) bool {
	return c.attempt("auto-move", logrus.Fields{"holder": h}, func(e Engine) error {
		return e.ToPile(h)
	})
}

// AttemptUndo reverts the last move. The board is redrawn whatever the
// outcome.
func (c *Controller) AttemptUndo() bool {
	ok := c.attempt("undo", nil, func(e Engine) error {
		return e.Undo()
	})
	if !ok {
		c.Refresh()
	}
	return ok
}

// CanMoveCards answers a drag preview. A panicking engine answers false.
func (c *Controller) CanMoveCards(from, to holder.Address, count int) bool {
	var ok bool
	err := c.call(func(e Engine) error {
		ok = e.CanMoveCards(from, to, count)
		return nil
	})
	if err != nil {
		c.log.WithError(err).Warn("preview failed")
		return false
	}
	return ok
}

// Status returns the current engine status.
func (c *Controller) Status() engine.Status {
	c.engineMu.Lock()
	defer c.engineMu.Unlock()
	return c.engine.Status()
}

// Refresh rebuilds the board from the engine and redraws it. Gesture
// records and drag overlays of the old widgets are discarded.
func (c *Controller) Refresh() {
	st := c.Status()
	gen := c.board.Build(st)
	c.gestures.Reset()
	c.drags.Reset()
	c.log.WithFields(logrus.Fields{"generation": gen, "widgets": len(c.board.Widgets())}).Debug("board rebuilt")
	if st.Won {
		c.log.Info("game won")
	}
	c.renderer.Render(st, c.board)
}

// NewGame deals a new game with seed and redraws.
func (c *Controller) NewGame(seed uint64) error {
	err := c.call(func(e Engine) error {
		r, ok := e.(Resetter)
		if !ok {
			return ErrNotResettable
		}
		r.Reset(seed)
		return nil
	})
	if err != nil {
		return err
	}
	c.drags.End(false)
	c.log.WithField("seed", seed).Info("new game")
	c.Refresh()
	return nil
}

// BeginDrag starts a drag from a card widget of the current render.
func (c *Controller) BeginDrag(id board.WidgetID, origin holder.Move) bool {
	if _, ok := c.board.Lookup(id); !ok {
		c.log.WithField("widget", id).Debug("drag from stale widget ignored")
		return false
	}
	if _, err := c.drags.Start(id, origin); err != nil {
		c.log.WithField("widget", id).WithError(err).Debug("drag not started")
		return false
	}
	return true
}

// MultiTap auto-moves the top card of h.
func (c *Controller) MultiTap(_ board.WidgetID, h holder.Address) {
	c.AttemptAutoMove(h)
}

// widget resolves id and logs ids the current render does not know.
func (c *Controller) widget(id board.WidgetID, event string) (board.Widget, bool) {
	w, ok := c.board.Lookup(id)
	if !ok {
		c.log.WithFields(logrus.Fields{"widget": id, "event": event}).Debug("unknown widget")
	}
	return w, ok
}

// PointerDown handles a press. Only card widgets react.
func (c *Controller) PointerDown(id board.WidgetID) {
	w, ok := c.widget(id, "down")
	if !ok || w.Role != board.RoleCard {
		return
	}
	c.gestures.Down(id, w.Move())
}

// PointerUp handles a release.
func (c *Controller) PointerUp(id board.WidgetID) {
	c.gestures.Up(id)
}

// PointerCancel handles an aborted press.
func (c *Controller) PointerCancel(id board.WidgetID) {
	c.gestures.Cancel(id)
}

// Tap handles a tap on the stock.
func (c *Controller) Tap(id board.WidgetID) bool {
	w, ok := c.widget(id, "tap")
	if !ok || w.Role != board.RoleStock {
		return false
	}
	return c.AttemptTake()
}

func (c *Controller) target(id board.WidgetID, event string) (drag.Target, bool) {
	w, ok := c.widget(id, event)
	if !ok || w.Role == board.RoleStock {
		return drag.Target{}, false
	}
	return drag.Target{Widget: id, Holder: w.Holder}, true
}

// DragEnter handles a drag entering widget id.
func (c *Controller) DragEnter(id board.WidgetID, p drag.Payload) bool {
	t, ok := c.target(id, "enter")
	if !ok {
		return false
	}
	return c.drags.OnEnter(p, t)
}

// DragExit handles a drag leaving widget id.
func (c *Controller) DragExit(id board.WidgetID, p drag.Payload) bool {
	t, ok := c.target(id, "exit")
	if !ok {
		return false
	}
	return c.drags.OnExit(p, t)
}

// Drop handles a drop on widget id and reports whether it was handled.
func (c *Controller) Drop(id board.WidgetID, p drag.Payload) bool {
	t, ok := c.target(id, "drop")
	if !ok {
		return false
	}
	return c.drags.OnDrop(p, t)
}

// DragEnd handles the end of the drag gesture.
func (c *Controller) DragEnd(dropped bool) {
	c.drags.End(dropped)
}
