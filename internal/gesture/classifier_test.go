package gesture

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/holder"
)

// mockListener records gestures for assertions.
type mockListener struct {
	mu       sync.Mutex
	drags    []holder.Move
	taps     []holder.Address
	refuse   bool
	onTap    func()
	dragSeen chan struct{}
}

func newMockListener() *mockListener {
	return &mockListener{dragSeen: make(chan struct{}, 16)}
}

func (m *mockListener) BeginDrag(id board.WidgetID, origin holder.Move) bool {
	m.mu.Lock()
	m.drags = append(m.drags, origin)
	refuse := m.refuse
	m.mu.Unlock()
	m.dragSeen <- struct{}{}
	return !refuse
}

func (m *mockListener) MultiTap(id board.WidgetID, h holder.Address) {
	m.mu.Lock()
	m.taps = append(m.taps, h)
	fn := m.onTap
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *mockListener) dragCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drags)
}

func (m *mockListener) tapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.taps)
}

// waitDrag blocks until BeginDrag ran or fails the test.
func (m *mockListener) waitDrag(t *testing.T) {
	t.Helper()
	select {
	case <-m.dragSeen:
	case <-time.After(time.Second):
		t.Fatal("BeginDrag was not called")
	}
}

// settle gives a fired mock timer's goroutine time to run.
func settle() { time.Sleep(20 * time.Millisecond) }

const widget board.WidgetID = 7

var pileTwo = holder.Single(holder.Pile(2))

func setupClassifier(t *testing.T) (*Classifier, *clock.Mock, *mockListener) {
	t.Helper()
	mock := clock.NewMock()
	l := newMockListener()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return New(DefaultConfig(), mock, l, logger), mock, l
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{DoubleTapWindow: time.Second}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{DoubleTapWindow: 100 * time.Millisecond, ArmDelay: 200 * time.Millisecond}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{DoubleTapWindow: 200 * time.Millisecond, ArmDelay: 200 * time.Millisecond}.Validate())
}

// TestHoldStartsDrag verifies a press held past the arm delay starts a drag.
func TestHoldStartsDrag(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	assert.Equal(t, StateArmed, c.State(widget))

	mock.Add(199 * time.Millisecond)
	settle()
	assert.Equal(t, 0, l.dragCount(), "drag must not start before the arm delay")

	mock.Add(time.Millisecond)
	l.waitDrag(t)
	assert.Equal(t, []holder.Move{pileTwo}, l.drags)
	assert.Eventually(t, func() bool { return c.State(widget) == StateDragging }, time.Second, 5*time.Millisecond)

	c.DragEnded(widget)
	assert.Equal(t, StateIdle, c.State(widget))
}

// TestQuickReleaseIsSingleTap verifies a short tap neither drags nor auto-moves.
func TestQuickReleaseIsSingleTap(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	mock.Add(50 * time.Millisecond)
	c.Up(widget)
	mock.Add(time.Second)
	settle()

	assert.Equal(t, 0, l.dragCount())
	assert.Equal(t, 0, l.tapCount())
	rec, ok := c.Record(widget)
	require.True(t, ok)
	assert.True(t, rec.Cancelled)
	assert.Equal(t, 1, rec.TapCount)
	assert.Equal(t, StateIdle, rec.State)
}

// TestDoubleDownSuppressesDrag verifies Down, Down inside the window with no
// Up never starts a drag, even after the arm delay elapses.
func TestDoubleDownSuppressesDrag(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	mock.Add(100 * time.Millisecond)
	c.Down(widget, pileTwo)

	rec, ok := c.Record(widget)
	require.True(t, ok)
	assert.True(t, rec.Cancelled, "second press must cancel before the timer fires")
	assert.Equal(t, 2, rec.TapCount)

	mock.Add(time.Second)
	settle()
	assert.Equal(t, 0, l.dragCount())
}

// TestDoubleTapDispatchesOnce verifies Down, Up, Down, Up yields exactly one auto-move.
func TestDoubleTapDispatchesOnce(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	mock.Add(60 * time.Millisecond)
	c.Up(widget)
	mock.Add(60 * time.Millisecond)
	c.Down(widget, pileTwo)
	mock.Add(60 * time.Millisecond)
	c.Up(widget)
	mock.Add(time.Second)
	settle()

	assert.Equal(t, []holder.Address{holder.Pile(2)}, l.taps)
	assert.Equal(t, 0, l.dragCount())
}

// TestSlowSecondTapStartsFresh verifies a press after the window opens a new record.
func TestSlowSecondTapStartsFresh(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	mock.Add(50 * time.Millisecond)
	c.Up(widget)
	mock.Add(600 * time.Millisecond)

	c.Down(widget, pileTwo)
	rec, ok := c.Record(widget)
	require.True(t, ok)
	assert.Equal(t, 1, rec.TapCount)
	assert.False(t, rec.Cancelled)
	assert.Equal(t, mock.Now(), rec.ArmedAt)

	c.Up(widget)
	assert.Equal(t, 0, l.tapCount())
}

// TestCancelEmitsNothing verifies a cancelled press neither drags nor taps.
func TestCancelEmitsNothing(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	c.Cancel(widget)
	mock.Add(time.Second)
	settle()

	assert.Equal(t, 0, l.dragCount())
	assert.Equal(t, 0, l.tapCount())
	assert.Equal(t, StateIdle, c.State(widget))
}

// TestLateTimerIsNoop covers a timer that fired before Stop could win: the
// callback must still see the cancelled flag.
func TestLateTimerIsNoop(t *testing.T) {
	c, _, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	c.mu.Lock()
	rec := c.records[widget]
	gen := c.generation
	c.mu.Unlock()

	c.Up(widget)
	c.armTimeout(widget, rec, gen)
	assert.Equal(t, 0, l.dragCount())
}

// TestResetDropsRecords verifies a re-render clears every record and disarms timers.
func TestResetDropsRecords(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	c.Down(widget+1, holder.Single(holder.Foundation(0)))
	c.mu.Lock()
	rec := c.records[widget]
	gen := c.generation
	c.mu.Unlock()

	c.Reset()
	_, ok := c.Record(widget)
	assert.False(t, ok)

	mock.Add(time.Second)
	settle()
	assert.Equal(t, 0, l.dragCount())

	// A timer from the old generation is ignored even if it fires.
	c.armTimeout(widget, rec, gen)
	assert.Equal(t, 0, l.dragCount())
}

// TestRefusedDragReturnsToIdle verifies the widget goes idle when the listener declines.
func TestRefusedDragReturnsToIdle(t *testing.T) {
	c, mock, l := setupClassifier(t)
	l.refuse = true

	c.Down(widget, pileTwo)
	mock.Add(200 * time.Millisecond)
	l.waitDrag(t)

	assert.Eventually(t, func() bool { return c.State(widget) == StateIdle }, time.Second, 5*time.Millisecond)
	rec, _ := c.Record(widget)
	assert.True(t, rec.Cancelled)
}

// TestListenerMayReset verifies MultiTap runs without the lock held.
func TestListenerMayReset(t *testing.T) {
	c, mock, l := setupClassifier(t)
	l.onTap = c.Reset

	c.Down(widget, pileTwo)
	c.Up(widget)
	mock.Add(10 * time.Millisecond)
	c.Down(widget, pileTwo)
	c.Up(widget)

	assert.Equal(t, 1, l.tapCount())
	_, ok := c.Record(widget)
	assert.False(t, ok)
}

// TestWidgetsAreIndependent verifies records are kept per widget.
func TestWidgetsAreIndependent(t *testing.T) {
	c, mock, l := setupClassifier(t)

	c.Down(widget, pileTwo)
	mock.Add(50 * time.Millisecond)
	c.Down(widget+1, holder.Single(holder.Foundation(3)))

	rec, _ := c.Record(widget)
	assert.False(t, rec.Cancelled, "a press on another widget is not a double tap")

	c.Up(widget + 1)
	mock.Add(150 * time.Millisecond)
	l.waitDrag(t)
	assert.Equal(t, []holder.Move{pileTwo}, l.drags)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "armed", StateArmed.String())
	assert.Equal(t, "dragging", StateDragging.String())
}
