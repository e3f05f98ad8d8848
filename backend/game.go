package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

type GameStatus int

const (
	StatusRunning GameStatus = iota
	StatusXWon
	StatusOWon
	StatusDraw
)

// Game is one local session: the board, the engine answering for the
// opponent, and the moves played since the last reset.
type Game struct {
	board   Board
	engine  *Engine
	history MoveHistory
}

func NewGame(width, height int, engine *Engine) *Game {
	if engine == nil {
		engine = NewEngine()
	}
	return &Game{board: NewBoard(width, height), engine: engine}
}

// Board returns a copy; mutating it does not affect the game.
func (g *Game) Board() Board {
	return g.board.Clone()
}

func (g *Game) Engine() *Engine {
	return g.engine
}

func (g *Game) History() MoveHistory {
	return g.history
}

// Place marks (x, y) for the side to move. It reports false when the cell
// is occupied or the game is already over. Coordinates must be in bounds.
func (g *Game) Place(x, y int) bool {
	return g.apply(NewMove(x, y), false)
}

// PlayTurn places the human move and, if the game goes on, the engine's
// reply.
func (g *Game) PlayTurn(x, y int) bool {
	if !g.Place(x, y) {
		return false
	}
	g.EngineMove()
	return true
}

// Click is the pointer handler: any click on a finished game starts a new
// one, otherwise it plays a turn at (x, y).
func (g *Game) Click(x, y int) bool {
	if g.Status() != StatusRunning {
		g.Reset()
		return true
	}
	return g.PlayTurn(x, y)
}

func (g *Game) BestMove() (Move, bool) {
	return g.engine.BestMove(g.board)
}

// EngineMove applies the engine's best move for the side to move.
func (g *Game) EngineMove() (Move, bool) {
	move, ok := g.engine.BestMove(g.board)
	if !ok {
		return Move{}, false
	}
	g.apply(move, true)
	return move, true
}

func (g *Game) Reset() {
	g.board.Reset()
	g.history.Clear()
	log.Debug().Int("width", g.board.Width()).Int("height", g.board.Height()).Msg("game-reset")
}

func (g *Game) Status() GameStatus {
	switch g.board.CheckWinner() {
	case CellX:
		return StatusXWon
	case CellO:
		return StatusOWon
	}
	if g.board.IsFull() {
		return StatusDraw
	}
	return StatusRunning
}

// Banner is the end-of-game message, empty while the game runs.
func (g *Game) Banner() string {
	return statusBanner(g.Status())
}

func (g *Game) apply(move Move, isEngine bool) bool {
	if g.Status() != StatusRunning || !g.board.IsCellEmpty(move.X, move.Y) {
		return false
	}
	player := g.board.Turn()
	g.board.Place(move.X, move.Y)
	g.history.Push(HistoryEntry{Move: move, Player: player, IsEngine: isEngine})
	g.logMovePlayed(move, player, isEngine)
	return true
}

func (g *Game) logMovePlayed(move Move, player Cell, isEngine bool) {
	event := log.Debug().
		Str("player", player.String()).
		Int("x", move.X).
		Int("y", move.Y).
		Bool("engine", isEngine).
		Int("cache", g.engine.CacheLen()).
		Str("hash", fmt.Sprintf("0x%016x", g.board.Hash()))
	if status := g.Status(); status != StatusRunning {
		event = event.Str("result", statusToString(status))
	}
	event.Msg("move-played")
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusXWon:
		return "x_won"
	case StatusOWon:
		return "o_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func statusBanner(status GameStatus) string {
	switch status {
	case StatusXWon:
		return "X win!"
	case StatusOWon:
		return "O win!"
	case StatusDraw:
		return "Draw!"
	default:
		return ""
	}
}
