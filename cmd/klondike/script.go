package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/speevy/klondike/internal/board"
	"github.com/speevy/klondike/internal/holder"
	"github.com/speevy/klondike/internal/interaction"
)

var errUnknownWidget = errors.New("unknown widget")

// driver plays a script of pointer and drag events against a controller.
type driver struct {
	ctrl *interaction.Controller
	host *textHost
	wait func(time.Duration)
	seed func() uint64
	log  logrus.FieldLogger
}

// run executes every line of in. Bad lines are reported and skipped.
func (d *driver) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := d.exec(strings.Fields(line)); err != nil {
			d.log.WithField("line", n).WithError(err).Warn("skipped")
			d.host.printf("? line %d: %v\n", n, err)
		}
	}
	return sc.Err()
}

func (d *driver) exec(f []string) error {
	arg := func() (string, error) {
		if len(f) < 2 {
			return "", fmt.Errorf("%s needs an argument", f[0])
		}
		return f[1], nil
	}

	switch f[0] {
	case "down", "up", "cancel", "tap", "enter", "exit", "drop":
		name, err := arg()
		if err != nil {
			return err
		}
		id, err := d.resolve(name)
		if err != nil {
			return err
		}
		d.pointer(f[0], id)
	case "wait":
		s, err := arg()
		if err != nil {
			return err
		}
		dur, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		d.wait(dur)
	case "end":
		d.ctrl.DragEnd(false)
		d.host.forgetDrag()
	case "undo":
		d.ctrl.AttemptUndo()
	case "new":
		seed := d.seed()
		if len(f) > 1 {
			v, err := strconv.ParseUint(f[1], 10, 64)
			if err != nil {
				return err
			}
			seed = v
		}
		return d.ctrl.NewGame(seed)
	case "show":
		d.ctrl.Refresh()
	default:
		return fmt.Errorf("unknown command %q", f[0])
	}
	return nil
}

func (d *driver) pointer(cmd string, id board.WidgetID) {
	switch cmd {
	case "down":
		d.ctrl.PointerDown(id)
	case "up":
		d.ctrl.PointerUp(id)
	case "cancel":
		d.ctrl.PointerCancel(id)
	case "tap":
		d.ctrl.Tap(id)
	case "enter":
		d.ctrl.DragEnter(id, d.host.dragPayload())
	case "exit":
		d.ctrl.DragExit(id, d.host.dragPayload())
	case "drop":
		dropped := d.ctrl.Drop(id, d.host.dragPayload())
		d.ctrl.DragEnd(dropped)
		d.host.forgetDrag()
	}
}

// resolve maps a widget name of the current render to its id:
// stock, waste, pile:<i>, foundation:<i> for containers and
// pile:<i>:<count> or foundation:<i>:<count> for cards.
func (d *driver) resolve(name string) (board.WidgetID, error) {
	b := d.ctrl.Board()
	var (
		w  board.Widget
		ok bool
	)
	switch name {
	case "stock":
		w, ok = b.Find(board.RoleStock, holder.Deck(), 0)
	case "waste":
		w, ok = b.Find(board.RoleCard, holder.Deck(), 1)
	default:
		parts := strings.Split(name, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("%w: %q", errUnknownWidget, name)
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errUnknownWidget, name)
		}
		var h holder.Address
		switch parts[0] {
		case "pile":
			h = holder.Pile(idx)
		case "foundation":
			h = holder.Foundation(idx)
		default:
			return 0, fmt.Errorf("%w: %q", errUnknownWidget, name)
		}
		if err := b.Bounds().Check(h); err != nil {
			return 0, err
		}
		if len(parts) == 2 {
			w, ok = b.Find(board.RoleContainer, h, 0)
			break
		}
		count, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errUnknownWidget, name)
		}
		w, ok = b.Find(board.RoleCard, h, count)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q is not on the board", errUnknownWidget, name)
	}
	return w.ID, nil
}
