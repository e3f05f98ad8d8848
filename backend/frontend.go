package main

import (
	"context"
	"fmt"
	"io"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionPlace plays a turn at (X, Y): the human move, then the engine reply.
	ActionPlace
	// ActionClick is ActionPlace, except that on a finished game it resets.
	ActionClick
	// ActionCursor moves the selection by (X, Y).
	ActionCursor
	ActionReset
	ActionQuit
)

type Action struct {
	Kind ActionKind
	X    int
	Y    int
}

// InputEvent is a raw event as an adapter receives it: a typed key or
// command for the terminal, a pointer position for the window.
type InputEvent struct {
	Key     string
	Pointer bool
	PX      int
	PY      int
}

// Frontend renders the game and turns raw input into actions. Adapters own
// their loop; Run returns when the user quits or ctx is done.
type Frontend interface {
	Render(GameSnapshot) error
	Translate(InputEvent) Action
	Run(ctx context.Context) error
}

// applyAction forwards an action to the controller and reports whether the
// game changed. Cursor and quit actions are handled by the adapter.
func applyAction(gc *GameController, action Action) bool {
	switch action.Kind {
	case ActionPlace:
		return gc.PlayTurn(action.X, action.Y)
	case ActionClick:
		return gc.Click(action.X, action.Y)
	case ActionReset:
		gc.Reset()
		return true
	default:
		return false
	}
}

func newFrontend(cfg Config, gc *GameController, in io.Reader, out io.Writer) (Frontend, error) {
	switch cfg.Mode {
	case ModeTerminal:
		return NewTerminalUI(gc, in, out), nil
	case ModeWindow:
		return NewWebUI(gc, cfg.Addr), nil
	default:
		return nil, fmt.Errorf("no front end for mode %q", cfg.Mode)
	}
}
