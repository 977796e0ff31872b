// Package gesture turns raw pointer events on card widgets into taps,
// multi-taps and drag starts.
//
// A press arms a one-shot timer. If the timer fires before the pointer is
// released and before a second press arrives, the press becomes a drag.
// A second press inside the double-tap window suppresses the drag for good,
// and its release requests an auto-move.
package gesture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/holder"
)

// State is the classifier state of one widget.
type State uint8

const (
	StateIdle     State = iota // no press in progress
	StateArmed                 // pressed, waiting for the arm delay
	StateDragging              // a drag started from this widget
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Config holds the gesture timings.
type Config struct {
	DoubleTapWindow time.Duration // Wd: presses closer than this count as one multi-tap
	ArmDelay        time.Duration // Wa: hold time before a press becomes a drag
}

// DefaultConfig returns the reference timings.
func DefaultConfig() Config {
	return Config{
		DoubleTapWindow: 500 * time.Millisecond,
		ArmDelay:        200 * time.Millisecond,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid gesture timings")

// Validate requires 0 < ArmDelay <= DoubleTapWindow: the second press of a
// double tap must be able to arrive before the arm timer fires.
func (c Config) Validate() error {
	if c.ArmDelay <= 0 {
		return fmt.Errorf("%w: arm delay %s must be positive", ErrInvalidConfig, c.ArmDelay)
	}
	if c.ArmDelay > c.DoubleTapWindow {
		return fmt.Errorf("%w: arm delay %s exceeds double-tap window %s", ErrInvalidConfig, c.ArmDelay, c.DoubleTapWindow)
	}
	return nil
}

// Listener receives the classified gestures. It is called without the
// classifier lock held, so it may call back into the classifier.
type Listener interface {
	// BeginDrag is called from the timer goroutine once the arm delay
	// elapses. It reports whether a drag actually started.
	BeginDrag(id board.WidgetID, origin holder.Move) bool
	// MultiTap is called on the release that ends a multi-tap.
	MultiTap(id board.WidgetID, h holder.Address)
}

// Record is a read-only copy of a widget's gesture bookkeeping.
type Record struct {
	ArmedAt   time.Time
	TapCount  int
	Cancelled bool
	State     State
}

type record struct {
	armedAt   time.Time
	tapCount  int
	cancelled bool
	state     State
	origin    holder.Move
	timer     *clock.Timer
}

// cancel suppresses any pending drag start. Once set, cancelled stays set
// for the lifetime of the record.
func (r *record) cancel() {
	r.cancelled = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Classifier keeps one record per widget with a recent press.
type Classifier struct {
	mu         sync.Mutex
	cfg        Config
	clock      clock.Clock
	listener   Listener
	log        logrus.FieldLogger
	generation uint64
	records    map[board.WidgetID]*record
}

// New returns a classifier. cfg must be valid.
func New(cfg Config, clk clock.Clock, l Listener, log logrus.FieldLogger) *Classifier {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Classifier{
		cfg:      cfg,
		clock:    clk,
		listener: l,
		log:      log.WithField("component", "gesture"),
		records:  make(map[board.WidgetID]*record),
	}
}

// Down handles a press on widget id, which carries origin when dragged.
func (c *Classifier) Down(id board.WidgetID, origin holder.Move) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	rec := c.records[id]
	if rec != nil && now.Sub(rec.armedAt) <= c.cfg.DoubleTapWindow {
		rec.tapCount++
		rec.cancel()
		rec.state = StateArmed
		c.log.WithFields(logrus.Fields{"widget": id, "taps": rec.tapCount}).Debug("repeat press, drag suppressed")
		return
	}

	if rec != nil {
		rec.cancel()
	}
	rec = &record{
		armedAt:  now,
		tapCount: 1,
		state:    StateArmed,
		origin:   origin,
	}
	c.records[id] = rec
	gen := c.generation
	rec.timer = c.clock.AfterFunc(c.cfg.ArmDelay, func() {
		c.armTimeout(id, rec, gen)
	})
	c.log.WithFields(logrus.Fields{"widget": id, "origin": origin}).Debug("press armed")
}

// armTimeout runs on the timer goroutine.
func (c *Classifier) armTimeout(id board.WidgetID, rec *record, gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.records[id] != rec || rec.cancelled {
		c.mu.Unlock()
		return
	}
	rec.timer = nil
	rec.state = StateDragging
	origin := rec.origin
	c.mu.Unlock()

	if c.listener.BeginDrag(id, origin) {
		c.log.WithFields(logrus.Fields{"widget": id, "origin": origin}).Debug("drag started")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rec.cancelled = true
	if rec.state == StateDragging {
		rec.state = StateIdle
	}
}

// Up handles a release. A release always cancels a pending drag start;
// when it ends a multi-tap the listener gets a MultiTap.
func (c *Classifier) Up(id board.WidgetID) {
	c.mu.Lock()
	rec := c.records[id]
	if rec == nil {
		c.mu.Unlock()
		return
	}
	rec.cancel()
	rec.state = StateIdle
	taps := rec.tapCount
	h := rec.origin.Holder
	c.mu.Unlock()

	if taps > 1 {
		c.log.WithFields(logrus.Fields{"widget": id, "holder": h, "taps": taps}).Debug("multi-tap")
		c.listener.MultiTap(id, h)
	}
}

// Cancel handles a pointer cancel: the pending drag start is dropped and
// nothing is emitted.
func (c *Classifier) Cancel(id board.WidgetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec := c.records[id]; rec != nil {
		rec.cancel()
		rec.state = StateIdle
	}
}

// DragEnded returns a dragging widget to idle.
func (c *Classifier) DragEnded(id board.WidgetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec := c.records[id]; rec != nil {
		rec.cancel()
		rec.state = StateIdle
	}
}

// Reset forgets every record and stops their timers. It is called on each
// re-render, which replaces every widget.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		rec.cancel()
	}
	c.records = make(map[board.WidgetID]*record)
	c.generation++
}

// State returns the state of widget id; unknown widgets are idle.
func (c *Classifier) State(id board.WidgetID) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec := c.records[id]; rec != nil {
		return rec.state
	}
	return StateIdle
}

// Record returns a copy of the record for widget id.
func (c *Classifier) Record(id board.WidgetID) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.records[id]
	if rec == nil {
		return Record{}, false
	}
	return Record{
		ArmedAt:   rec.armedAt,
		TapCount:  rec.tapCount,
		Cancelled: rec.cancelled,
		State:     rec.state,
	}, true
}
