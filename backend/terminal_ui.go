package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	ansiClearHome = "\x1b[2J\x1b[H"
	ansiCursor    = "\x1b[47m\x1b[30m"
	ansiReset     = "\x1b[0m"
)

const terminalHelp = "move: h/j/k/l or w/a/s/d, place: enter or \"x y\", r: reset, q: quit"

// TerminalUI plays on a line-oriented terminal. The cursor starts in the
// top-left corner; the game ends the loop once it has a result.
type TerminalUI struct {
	gc      *GameController
	in      *bufio.Scanner
	out     io.Writer
	cursorX int
	cursorY int
}

func NewTerminalUI(gc *GameController, in io.Reader, out io.Writer) *TerminalUI {
	return &TerminalUI{gc: gc, in: bufio.NewScanner(in), out: out}
}

func (t *TerminalUI) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		snapshot := t.gc.Snapshot()
		if err := t.Render(snapshot); err != nil {
			return err
		}
		if snapshot.Status != StatusRunning {
			return nil
		}
		if !t.in.Scan() {
			if err := t.in.Err(); err != nil {
				return fmt.Errorf("read terminal input: %w", err)
			}
			return nil
		}
		action := t.Translate(InputEvent{Key: t.in.Text()})
		switch action.Kind {
		case ActionQuit:
			return nil
		case ActionCursor:
			t.moveCursor(action.X, action.Y, snapshot.Board)
		default:
			if !applyAction(t.gc, action) && action.Kind == ActionPlace {
				log.Debug().Int("x", action.X).Int("y", action.Y).Msg("terminal-place-ignored")
			}
		}
	}
}

func (t *TerminalUI) Render(snapshot GameSnapshot) error {
	board := snapshot.Board
	var sb strings.Builder
	sb.WriteString(ansiClearHome)
	for y := 0; y < board.Height(); y++ {
		sb.WriteString(" ")
		for x := 0; x < board.Width(); x++ {
			mark := board.At(x, y).String()
			if x == t.cursorX && y == t.cursorY {
				sb.WriteString(ansiCursor + mark + ansiReset)
			} else {
				sb.WriteString(mark)
			}
			if x != board.Width()-1 {
				sb.WriteString(" | ")
			}
		}
		if y != board.Height()-1 {
			sb.WriteString("\r\n")
			sb.WriteString(rowSeparator(board.Width()))
		}
		sb.WriteString("\r\n")
	}
	if snapshot.Banner != "" {
		sb.WriteString(snapshot.Banner)
		sb.WriteString("\r\n")
	} else {
		sb.WriteString(terminalHelp)
		sb.WriteString("\r\n> ")
	}
	_, err := io.WriteString(t.out, sb.String())
	return err
}

func (t *TerminalUI) Translate(event InputEvent) Action {
	key := strings.ToLower(strings.TrimSpace(event.Key))
	switch key {
	case "", "enter":
		return Action{Kind: ActionPlace, X: t.cursorX, Y: t.cursorY}
	case "h", "a", "left":
		return Action{Kind: ActionCursor, X: -1}
	case "l", "d", "right":
		return Action{Kind: ActionCursor, X: 1}
	case "k", "w", "up":
		return Action{Kind: ActionCursor, Y: -1}
	case "j", "s", "down":
		return Action{Kind: ActionCursor, Y: 1}
	case "r", "reset":
		return Action{Kind: ActionReset}
	case "q", "quit", "esc", "exit":
		return Action{Kind: ActionQuit}
	}
	x, y, ok := parseCoordinates(key)
	if !ok || !t.gc.Board().InBounds(x, y) {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionPlace, X: x, Y: y}
}

func (t *TerminalUI) moveCursor(dx, dy int, board Board) {
	nx, ny := t.cursorX+dx, t.cursorY+dy
	if board.InBounds(nx, ny) {
		t.cursorX, t.cursorY = nx, ny
	}
}

// parseCoordinates accepts "x y" or "x,y".
func parseCoordinates(input string) (int, int, bool) {
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 2 {
		return 0, 0, false
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}
