package interaction

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speevy/klondike/engine"
	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/drag"
	"github.com/speevy/klondike/internal/gesture"
	"github.com/speevy/klondike/internal/holder"
)

// --- fakes -----------------------------------------------------------------

type mockRenderer struct {
	mu      sync.Mutex
	renders int
	last    engine.Status
}

func (m *mockRenderer) Render(st engine.Status, _ *board.Board) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	m.last = st
}

func (m *mockRenderer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

type mockNotifier struct {
	mu       sync.Mutex
	messages []Message
}

func (m *mockNotifier) Notify(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockNotifier) all() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

type mockPresenter struct {
	mu      sync.Mutex
	hidden  map[board.WidgetID]bool
	overlay map[board.WidgetID]drag.Overlay
	shown   chan board.WidgetID
}

func newMockPresenter() *mockPresenter {
	return &mockPresenter{
		hidden:  make(map[board.WidgetID]bool),
		overlay: make(map[board.WidgetID]drag.Overlay),
		shown:   make(chan board.WidgetID, 4),
	}
}

func (m *mockPresenter) StartDrag(drag.Session, drag.Payload) {}

func (m *mockPresenter) SetHidden(id board.WidgetID, hidden bool) {
	m.mu.Lock()
	m.hidden[id] = hidden
	m.mu.Unlock()
	if hidden {
		m.shown <- id
	}
}

func (m *mockPresenter) Paint(id board.WidgetID, o drag.Overlay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlay[id] = o
}

func (m *mockPresenter) isHidden(id board.WidgetID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden[id]
}

// waitDragStart blocks until a drag hid its origin widget.
func (m *mockPresenter) waitDragStart(t *testing.T) board.WidgetID {
	t.Helper()
	select {
	case id := <-m.shown:
		return id
	case <-time.After(time.Second):
		t.Fatal("drag did not start")
	}
	return 0
}

// fakeEngine fails every mutation with err, or panics when panicky is set.
type fakeEngine struct {
	err      error
	panicky  bool
	calls    []string
	canMove  bool
	baseline engine.Status
}

func (f *fakeEngine) do(name string) error {
	f.calls = append(f.calls, name)
	if f.panicky {
		panic("engine exploded")
	}
	return f.err
}

func (f *fakeEngine) Take() error { return f.do("take") }
func (f *fakeEngine) MoveCards(from, to holder.Address, count int) error {
	return f.do(fmt.Sprintf("move %s->%s x%d", from, to, count))
}
func (f *fakeEngine) CanMoveCards(from, to holder.Address, count int) bool {
	if f.panicky {
		panic("engine exploded")
	}
	return f.canMove
}
func (f *fakeEngine) ToPile(h holder.Address) error { return f.do("to-pile " + h.String()) }
func (f *fakeEngine) Undo() error { return f.do("undo") }
func (f *fakeEngine) Status() engine.Status { return f.baseline }

// --- setup -----------------------------------------------------------------

var bounds = holder.Bounds{Piles: engine.NumPiles, Foundations: engine.NumFoundations}

type fixture struct {
	ctrl      *Controller
	mock      *clock.Mock
	renderer  *mockRenderer
	notifier  *mockNotifier
	presenter *mockPresenter
}

func setup(t *testing.T, e Engine) *fixture {
	t.Helper()
	f := &fixture{
		mock:      clock.NewMock(),
		renderer:  &mockRenderer{},
		notifier:  &mockNotifier{},
		presenter: newMockPresenter(),
	}
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ctrl, err := New(e, bounds, f.renderer, f.notifier, f.presenter, Options{Clock: f.mock, Log: logger})
	require.NoError(t, err)
	ctrl.Refresh()
	f.ctrl = ctrl
	return f
}

func card(s, r uint8) engine.Card { return engine.NewCard(s, r) }

// scenarioGame lays out a small board:
//
//	pile 0:        AS
//	foundation 1:  5S
//	foundation 3:  2S
//	foundation 6:  [KC] AH
//	stock:         3D
func scenarioGame() *engine.Game {
	g := engine.NewGame(1, engine.DefaultRules())
	s := &g.State
	s.StockLen, s.WasteLen = 0, 0
	for i := range s.Stock {
		s.Stock[i] = engine.EmptyCard
		s.Waste[i] = engine.EmptyCard
	}
	for i := range s.Piles {
		s.Piles[i] = engine.PileState{}
	}
	for i := range s.Foundations {
		s.Foundations[i] = engine.FoundationState{}
	}

	s.Piles[0].Cards[0] = card(engine.SuitSpades, engine.RankAce)
	s.Piles[0].Len = 1

	s.Foundations[1].Cards[0] = card(engine.SuitSpades, engine.RankFive)
	s.Foundations[1].Len = 1
	s.Foundations[3].Cards[0] = card(engine.SuitSpades, engine.RankTwo)
	s.Foundations[3].Len = 1
	s.Foundations[6].Cards[0] = card(engine.SuitClubs, engine.RankKing)
	s.Foundations[6].Cards[1] = card(engine.SuitHearts, engine.RankAce)
	s.Foundations[6].Len = 2
	s.Foundations[6].Hidden = 1

	s.Stock[0] = card(engine.SuitDiamonds, engine.RankThree)
	s.StockLen = 1
	return g
}

func (f *fixture) find(t *testing.T, role board.Role, h holder.Address, count int) board.WidgetID {
	t.Helper()
	w, ok := f.ctrl.Board().Find(role, h, count)
	require.True(t, ok, "no %s widget for %s", role, h)
	return w.ID
}

// startDrag presses id and holds it past the arm delay.
func (f *fixture) startDrag(t *testing.T, id board.WidgetID) drag.Session {
	t.Helper()
	f.ctrl.PointerDown(id)
	f.mock.Add(gesture.DefaultConfig().ArmDelay)
	require.Equal(t, id, f.presenter.waitDragStart(t))
	s, ok := f.ctrl.Drags().Active()
	require.True(t, ok)
	return s
}

// --- classification --------------------------------------------------------

func TestClassify(t *testing.T) {
	assert.Equal(t, MsgInvalidMovement, Classify(fmt.Errorf("%w: empty", engine.ErrInvalidState)))
	assert.Equal(t, MsgIllegalMovement, Classify(fmt.Errorf("%w: bad count", engine.ErrIllegalArgument)))
	assert.Equal(t, MsgUnknownError, Classify(errors.New("disk on fire")))
	assert.Equal(t, MsgUnknownError, Classify(fmt.Errorf("%w: boom", ErrEnginePanic)))
}

// TestFailuresNotifyWithoutRender covers every attempt against a failing engine.
func TestFailuresNotifyWithoutRender(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Message
	}{
		{"invalid state", fmt.Errorf("%w: x", engine.ErrInvalidState), MsgInvalidMovement},
		{"illegal argument", fmt.Errorf("%w: x", engine.ErrIllegalArgument), MsgIllegalMovement},
		{"other", errors.New("x"), MsgUnknownError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &fakeEngine{err: tt.err, baseline: engine.NewGame(1, engine.DefaultRules()).Status()}
			f := setup(t, e)
			renders := f.renderer.count()

			assert.False(t, f.ctrl.AttemptMove(holder.Foundation(0), holder.Pile(0), 1))
			assert.False(t, f.ctrl.AttemptTake())
			assert.False(t, f.ctrl.AttemptAutoMove(holder.Foundation(2)))
			assert.Equal(t, renders, f.renderer.count())
			assert.False(t, f.ctrl.AttemptUndo())
			assert.Equal(t, renders+1, f.renderer.count(), "undo redraws even when refused")

			assert.Equal(t, []Message{tt.want, tt.want, tt.want, tt.want}, f.notifier.all())
			assert.Equal(t, []string{"move foundation[0]->pile[0] x1", "take", "to-pile foundation[2]", "undo"}, e.calls)
		})
	}
}

func TestPanicIsUnknownError(t *testing.T) {
	e := &fakeEngine{panicky: true, baseline: engine.NewGame(1, engine.DefaultRules()).Status()}
	f := setup(t, e)

	assert.False(t, f.ctrl.AttemptTake())
	assert.Equal(t, []Message{MsgUnknownError}, f.notifier.all())
	assert.False(t, f.ctrl.CanMoveCards(holder.Deck(), holder.Pile(0), 1))

	// The engine lock was released by the recovered call.
	assert.False(t, f.ctrl.AttemptUndo())
}

func TestSuccessRenders(t *testing.T) {
	e := &fakeEngine{baseline: engine.NewGame(1, engine.DefaultRules()).Status()}
	f := setup(t, e)
	renders := f.renderer.count()

	assert.True(t, f.ctrl.AttemptTake())
	assert.Equal(t, renders+1, f.renderer.count())
	assert.Empty(t, f.notifier.all())
}

func TestNewRejectsBadTimings(t *testing.T) {
	_, err := New(&fakeEngine{}, bounds, &mockRenderer{}, &mockNotifier{}, newMockPresenter(), Options{
		Gesture: gesture.Config{DoubleTapWindow: 100 * time.Millisecond, ArmDelay: time.Second},
	})
	assert.ErrorIs(t, err, gesture.ErrInvalidConfig)
}

// --- end to end ------------------------------------------------------------

// TestScenarioLegalDrop drags the ace of column six onto an empty pile.
func TestScenarioLegalDrop(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()

	ace := f.find(t, board.RoleCard, holder.Foundation(6), 1)
	target := f.find(t, board.RoleContainer, holder.Pile(2), 0)
	s := f.startDrag(t, ace)

	assert.True(t, f.ctrl.DragEnter(target, s.Payload()))
	assert.Equal(t, drag.OverlayAccept, f.ctrl.Drags().Overlay(target))
	assert.True(t, f.ctrl.Drop(target, s.Payload()))
	f.ctrl.DragEnd(true)

	st := f.ctrl.Status()
	assert.Equal(t, card(engine.SuitHearts, engine.RankAce), st.Piles[2].Top())
	assert.Equal(t, card(engine.SuitClubs, engine.RankKing), st.Foundations[6].Top(), "hidden king flipped")
	assert.Equal(t, renders+1, f.renderer.count())
	assert.Empty(t, f.notifier.all())

	_, ok := f.ctrl.Drags().Active()
	assert.False(t, ok)
	_, ok = f.ctrl.Board().Lookup(ace)
	assert.False(t, ok, "the re-render replaced every widget")
}

// TestScenarioIllegalDrop drops the ace on a black five.
func TestScenarioIllegalDrop(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()

	ace := f.find(t, board.RoleCard, holder.Foundation(6), 1)
	target := f.find(t, board.RoleContainer, holder.Foundation(1), 0)
	s := f.startDrag(t, ace)

	assert.True(t, f.ctrl.DragEnter(target, s.Payload()))
	assert.Equal(t, drag.OverlayReject, f.ctrl.Drags().Overlay(target))
	assert.True(t, f.ctrl.Drop(target, s.Payload()))

	assert.Equal(t, []Message{MsgInvalidMovement}, f.notifier.all())
	assert.Equal(t, renders, f.renderer.count())
	assert.False(t, f.presenter.isHidden(ace), "the origin card is shown again")
	assert.Equal(t, gesture.StateIdle, f.ctrl.Gestures().State(ace))
	assert.Equal(t, card(engine.SuitHearts, engine.RankAce), f.ctrl.Status().Foundations[6].Top())
}

// TestScenarioReleaseOutside lets go of a drag over nothing.
func TestScenarioReleaseOutside(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()
	before := f.ctrl.Status()

	ace := f.find(t, board.RoleCard, holder.Foundation(6), 1)
	target := f.find(t, board.RoleContainer, holder.Pile(2), 0)
	s := f.startDrag(t, ace)

	f.ctrl.DragEnter(target, s.Payload())
	f.ctrl.DragExit(target, s.Payload())
	f.ctrl.DragEnd(false)

	assert.Equal(t, drag.OverlayNone, f.ctrl.Drags().Overlay(target))
	assert.False(t, f.presenter.isHidden(ace))
	assert.Equal(t, renders, f.renderer.count())
	assert.Equal(t, before, f.ctrl.Status())
	assert.Empty(t, f.notifier.all())
}

// TestDropWithEncodedPayload decodes the origin when only text travels.
func TestDropWithEncodedPayload(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)

	ace := f.find(t, board.RoleCard, holder.Foundation(6), 1)
	target := f.find(t, board.RoleContainer, holder.Pile(3), 0)
	s := f.startDrag(t, ace)

	assert.True(t, f.ctrl.Drop(target, s.Payload().EncodedOnly()))
	assert.Equal(t, card(engine.SuitHearts, engine.RankAce), f.ctrl.Status().Piles[3].Top())
}

// TestDoubleTapAutoMoves double-taps the two of spades onto its pile.
func TestDoubleTapAutoMoves(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()

	two := f.find(t, board.RoleCard, holder.Foundation(3), 1)
	f.ctrl.PointerDown(two)
	f.mock.Add(50 * time.Millisecond)
	f.ctrl.PointerUp(two)
	f.mock.Add(50 * time.Millisecond)
	f.ctrl.PointerDown(two)
	f.mock.Add(50 * time.Millisecond)
	f.ctrl.PointerUp(two)
	f.mock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)

	st := f.ctrl.Status()
	assert.Equal(t, card(engine.SuitSpades, engine.RankTwo), st.Piles[0].Top())
	assert.Empty(t, st.Foundations[3].Visible)
	assert.Equal(t, renders+1, f.renderer.count())
	_, ok := f.ctrl.Drags().Active()
	assert.False(t, ok, "a double tap never drags")
}

// TestDoubleTapFailureNotifies double-taps a card no pile accepts.
func TestDoubleTapFailureNotifies(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)

	five := f.find(t, board.RoleCard, holder.Foundation(1), 1)
	f.ctrl.PointerDown(five)
	f.ctrl.PointerUp(five)
	f.ctrl.PointerDown(five)
	f.ctrl.PointerUp(five)

	assert.Equal(t, []Message{MsgInvalidMovement}, f.notifier.all())
}

func TestTapStockTakes(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)

	stock := f.find(t, board.RoleStock, holder.Deck(), 0)
	assert.True(t, f.ctrl.Tap(stock))
	assert.Equal(t, card(engine.SuitDiamonds, engine.RankThree), f.ctrl.Status().Deck.WasteTop)

	waste := f.find(t, board.RoleCard, holder.Deck(), 1)
	assert.False(t, f.ctrl.Tap(waste), "only the stock draws")
}

func TestUndo(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	before := f.ctrl.Status()

	renders := f.renderer.count()
	assert.True(t, f.ctrl.AttemptUndo(), "undo with no history is a no-op")
	assert.Equal(t, renders+1, f.renderer.count())

	require.True(t, f.ctrl.AttemptTake())
	require.True(t, f.ctrl.AttemptUndo())
	assert.Equal(t, before.Deck, f.ctrl.Status().Deck)
	assert.Empty(t, f.notifier.all())
}

func TestStaleAndForeignWidgetsAreIgnored(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()

	stale := f.find(t, board.RoleCard, holder.Foundation(3), 1)
	f.ctrl.Refresh()
	renders++

	f.ctrl.PointerDown(stale)
	f.mock.Add(time.Second)
	assert.Equal(t, gesture.StateIdle, f.ctrl.Gestures().State(stale))
	assert.False(t, f.ctrl.Tap(stale))
	assert.False(t, f.ctrl.Drop(stale, drag.Payload{}))

	stock := f.find(t, board.RoleStock, holder.Deck(), 0)
	ref := holder.Single(holder.Foundation(6))
	assert.False(t, f.ctrl.DragEnter(stock, drag.Payload{Origin: &ref}), "the stock is not a drop target")

	assert.Equal(t, renders, f.renderer.count())
	assert.Empty(t, f.notifier.all())
}

func TestNewGame(t *testing.T) {
	g := scenarioGame()
	f := setup(t, g)
	renders := f.renderer.count()

	require.NoError(t, f.ctrl.NewGame(42))
	assert.Equal(t, renders+1, f.renderer.count())
	assert.Equal(t, engine.NewGame(42, engine.DefaultRules()).Status(), f.ctrl.Status())

	e := &fakeEngine{baseline: engine.NewGame(1, engine.DefaultRules()).Status()}
	assert.ErrorIs(t, setup(t, e).ctrl.NewGame(1), ErrNotResettable)
}
