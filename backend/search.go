package main

import "math"

const (
	scoreXWins = 1
	scoreOWins = -1
	scoreDraw  = 0
)

// Engine computes exact minimax values. Its cache maps every expanded
// position to its value and is never evicted. An Engine is not safe for
// concurrent use.
type Engine struct {
	cache   map[BoardKey]int
	lookups uint64
	hits    uint64
}

type EngineStats struct {
	Entries int    `json:"entries"`
	Lookups uint64 `json:"lookups"`
	Hits    uint64 `json:"hits"`
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[BoardKey]int)}
}

// Evaluate returns +1 if X wins under perfect play, -1 if O wins and 0 for
// a draw. It does not prefer faster wins over slower ones.
func (e *Engine) Evaluate(board Board) int {
	key := board.Key()
	e.lookups++
	if score, ok := e.cache[key]; ok {
		e.hits++
		return score
	}

	if score, ok := terminalScore(board); ok {
		return score
	}

	maximizing := board.Turn() == CellX
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	for y := 0; y < board.Height(); y++ {
		for x := 0; x < board.Width(); x++ {
			if !board.IsCellEmpty(x, y) {
				continue
			}
			child := board.Clone()
			child.Place(x, y)
			score := e.Evaluate(child)
			if maximizing {
				best = max(best, score)
			} else {
				best = min(best, score)
			}
		}
	}

	e.cache[key] = best
	return best
}

// BestMove returns the first move in row-major order whose value is the
// best for the side to move. It reports false when the game is over.
func (e *Engine) BestMove(board Board) (Move, bool) {
	if board.IsTerminal() {
		return Move{}, false
	}

	maximizing := board.Turn() == CellX
	bestScore := math.MaxInt
	if maximizing {
		bestScore = math.MinInt
	}
	var best Move
	for y := 0; y < board.Height(); y++ {
		for x := 0; x < board.Width(); x++ {
			if !board.IsCellEmpty(x, y) {
				continue
			}
			child := board.Clone()
			child.Place(x, y)
			score := e.Evaluate(child)
			if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
				bestScore = score
				best = NewMove(x, y)
			}
		}
	}
	return best, true
}

func (e *Engine) CacheLen() int {
	return len(e.cache)
}

func (e *Engine) Stats() EngineStats {
	return EngineStats{Entries: len(e.cache), Lookups: e.lookups, Hits: e.hits}
}

func terminalScore(board Board) (int, bool) {
	switch board.CheckWinner() {
	case CellX:
		return scoreXWins, true
	case CellO:
		return scoreOWins, true
	}
	if board.IsFull() {
		return scoreDraw, true
	}
	return 0, false
}

func scoreToWinner(score int) Cell {
	switch {
	case score > 0:
		return CellX
	case score < 0:
		return CellO
	default:
		return CellEmpty
	}
}
