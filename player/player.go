// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: player/player.go
// Summary: Plays a compiled presentation on a tcell screen.
// Usage: Used by the play command; tests drive it with a simulation screen.
// Notes: Row 0 is the menu bar, the canvas starts at row 1 and the status
// line sits below it. Stepping forward paints only the frame's changes;
// every other move rebuilds the grid and redraws everything.

package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelshow/internal/panics"
	"github.com/framegrace/texelshow/protocol"
)

const canvasOffset = 1

var (
	// ErrTerminalTooSmall is returned when the screen cannot hold the canvas
	// plus the menu and status rows.
	ErrTerminalTooSmall = errors.New("player: terminal too small")
	// ErrNoFrames is returned for a presentation without frames.
	ErrNoFrames = errors.New("player: presentation has no frames")
)

var (
	menuKeyStyle  = tcell.StyleDefault.Bold(true)
	menuTextStyle = tcell.StyleDefault.Dim(true)
	statusStyle   = tcell.StyleDefault.Dim(true)
)

// Player owns the playback state for one presentation.
type Player struct {
	screen   tcell.Screen
	pres     *protocol.PlayablePresentation
	keys     KeyMap
	grid     *protocol.Grid
	index    int
	tooSmall bool
}

// New prepares playback of p on screen, positioned on frame 0. The screen
// must already be initialised.
func New(screen tcell.Screen, p *protocol.PlayablePresentation, keys KeyMap) (*Player, error) {
	if p == nil || len(p.Frames) == 0 {
		return nil, ErrNoFrames
	}
	grid, err := protocol.ReplayTo(p, 0)
	if err != nil {
		return nil, err
	}
	return &Player{screen: screen, pres: p, keys: keys, grid: grid}, nil
}

// Play opens the terminal, plays p until the user quits or ctx is done and
// restores the terminal. guard may be nil; when set, a panic releases the
// screen before it is reported.
func Play(ctx context.Context, p *protocol.PlayablePresentation, keys KeyMap, guard *panics.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen failed: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen failed: %w", err)
	}
	defer screen.Fini()
	guard.OnPanic(screen.Fini)
	defer guard.Recover("player")
	screen.HideCursor()

	pl, err := New(screen, p, keys)
	if err != nil {
		return err
	}
	return pl.Run(ctx)
}

// Index returns the current frame index.
func (pl *Player) Index() int {
	return pl.index
}

// Grid returns the grid for the current frame.
func (pl *Player) Grid() *protocol.Grid {
	return pl.grid
}

func (pl *Player) requiredSize() (int, int) {
	return int(pl.pres.Contract.Width), int(pl.pres.Contract.Height) + 2
}

// CheckSize reports ErrTerminalTooSmall when the screen is smaller than the
// canvas plus the menu and status rows.
func (pl *Player) CheckSize() error {
	needW, needH := pl.requiredSize()
	w, h := pl.screen.Size()
	if w < needW || h < needH {
		return fmt.Errorf("%w: need %dx%d, have %dx%d", ErrTerminalTooSmall, needW, needH, w, h)
	}
	return nil
}

// Run draws the current frame and processes events until a quit key, the
// end of the event stream or ctx cancellation.
func (pl *Player) Run(ctx context.Context) error {
	if err := pl.CheckSize(); err != nil {
		return err
	}
	pl.redraw()

	events := make(chan tcell.Event, 32)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			ev := pl.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !pl.HandleEvent(ev) {
				return nil
			}
		}
	}
}

// HandleEvent applies one screen event. It returns false when playback
// should stop.
func (pl *Player) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		pl.screen.Sync()
		pl.redraw()
	case *tcell.EventKey:
		action := pl.keys.Lookup(ev)
		if action == ActionQuit {
			return false
		}
		pl.Do(action)
	}
	return true
}

// Do performs a navigation action and updates the screen.
func (pl *Player) Do(action Action) {
	last := len(pl.pres.Frames) - 1
	switch action {
	case ActionNext:
		if pl.index < last {
			pl.step()
		}
	case ActionPrev:
		if pl.index > 0 {
			pl.seek(pl.index - 1)
		}
	case ActionFirst:
		if pl.index != 0 {
			pl.seek(0)
		}
	case ActionLast:
		if pl.index != last {
			pl.seek(last)
		}
	}
}

func (pl *Player) step() {
	pl.index++
	frame := pl.pres.Frames[pl.index]
	pl.grid.Apply(frame)
	if pl.tooSmall {
		return
	}
	if frame.Kind == protocol.FrameFull {
		pl.redraw()
		return
	}
	for _, ch := range frame.Changes {
		pl.setCell(int(ch.X), int(ch.Y), ch.Cell)
	}
	pl.drawStatus()
	pl.screen.Show()
}

func (pl *Player) seek(n int) {
	grid, err := protocol.ReplayTo(pl.pres, n)
	if err != nil {
		return
	}
	pl.index = n
	pl.grid = grid
	pl.redraw()
}

func (pl *Player) redraw() {
	pl.screen.Clear()
	if err := pl.CheckSize(); err != nil {
		pl.tooSmall = true
		pl.drawText(0, 0, "Terminal too small: "+strings.TrimPrefix(err.Error(), ErrTerminalTooSmall.Error()+": "), statusStyle)
		pl.screen.Show()
		return
	}
	pl.tooSmall = false
	pl.drawMenu()
	for y, row := range pl.grid.Rows() {
		for x, c := range row {
			pl.setCell(x, y, c)
		}
	}
	pl.drawStatus()
	pl.screen.Show()
}

func (pl *Player) setCell(x, y int, c protocol.Cell) {
	ch := c.Ch
	if ch == 0 {
		ch = ' '
	}
	pl.screen.SetContent(x, y+canvasOffset, ch, nil, styleFromCell(c.Style))
}

func (pl *Player) drawMenu() {
	x := 1
	for _, a := range []Action{ActionPrev, ActionNext, ActionFirst, ActionLast, ActionQuit} {
		labels := pl.keys.Labels(a)
		if len(labels) == 0 {
			continue
		}
		for _, l := range labels {
			x = pl.drawText(x, 0, "["+l+"]", menuKeyStyle)
		}
		x = pl.drawText(x, 0, " "+a.String(), menuTextStyle)
		x += 2
	}
}

// MarkerLabel returns the label of the last marker at or before frame n.
func (pl *Player) MarkerLabel(n int) string {
	label := ""
	best := -1
	for _, m := range pl.pres.Markers {
		if m.FrameIndex <= n && m.FrameIndex >= best {
			best = m.FrameIndex
			label = m.Label
		}
	}
	return label
}

func (pl *Player) statusText() string {
	var b strings.Builder
	fmt.Fprintf(&b, " Frame %d/%d", pl.index+1, len(pl.pres.Frames))
	if label := pl.MarkerLabel(pl.index); label != "" {
		fmt.Fprintf(&b, " | %s", label)
	}
	b.WriteString(" | ←→: navigate | q: quit ")
	return b.String()
}

func (pl *Player) drawStatus() {
	y := int(pl.pres.Contract.Height) + canvasOffset
	w, _ := pl.screen.Size()
	for x := 0; x < w; x++ {
		pl.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
	pl.drawText(0, y, runewidth.Truncate(pl.statusText(), w, ""), statusStyle)
}

func (pl *Player) drawText(x, y int, text string, style tcell.Style) int {
	w, _ := pl.screen.Size()
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if x+rw > w {
			break
		}
		pl.screen.SetContent(x, y, r, nil, style)
		x += rw
	}
	return x
}
