package main

import "testing"

// reachableBoards returns every position reachable from an empty board by
// alternating placement, stopping at finished games.
func reachableBoards(width, height int) []Board {
	seen := map[BoardKey]bool{}
	var boards []Board
	var walk func(Board)
	walk = func(board Board) {
		key := board.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		boards = append(boards, board)
		if board.IsTerminal() {
			return
		}
		for _, move := range emptyCells(board) {
			child := board.Clone()
			child.Place(move.X, move.Y)
			walk(child)
		}
	}
	walk(NewBoard(width, height))
	return boards
}

// rebuild places the marks of board onto a fresh board in reverse order.
func rebuild(board Board) Board {
	var xs, os []Move
	for y := board.Height() - 1; y >= 0; y-- {
		for x := board.Width() - 1; x >= 0; x-- {
			switch board.At(x, y) {
			case CellX:
				xs = append(xs, NewMove(x, y))
			case CellO:
				os = append(os, NewMove(x, y))
			}
		}
	}
	out := NewBoard(board.Width(), board.Height())
	for i := range xs {
		out.Place(xs[i].X, xs[i].Y)
		if i < len(os) {
			out.Place(os[i].X, os[i].Y)
		}
	}
	return out
}

func TestEvaluateTerminalPositions(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		want int
	}{
		{"x wins", []string{"XXX", "OO.", "..."}, scoreXWins},
		{"o wins", []string{"O..", "OX.", "OXX"}, scoreOWins},
		{"draw", []string{"XOX", "XOO", "OXX"}, scoreDraw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine()
			board := boardFromRows(t, tc.rows...)
			if got := engine.Evaluate(board); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
			if engine.CacheLen() != 0 {
				t.Fatalf("terminal positions must not be cached, cache has %d entries", engine.CacheLen())
			}
		})
	}
}

func TestEvaluateEmptyBoardIsDraw(t *testing.T) {
	engine := NewEngine()
	if got := engine.Evaluate(NewBoard(3, 3)); got != scoreDraw {
		t.Fatalf("expected perfect play to draw, got %d", got)
	}
	if engine.CacheLen() == 0 {
		t.Fatalf("expected non-terminal positions to be cached")
	}
}

func TestEvaluateDoesNotMutateBoard(t *testing.T) {
	engine := NewEngine()
	board := boardFromRows(t, "X..", ".O.", "...")
	before := board.Clone()
	engine.Evaluate(board)
	engine.BestMove(board)
	if !board.Equal(before) {
		t.Fatalf("board changed during search:\n%s", board)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	engine := NewEngine()
	board := NewBoard(3, 3)
	first := engine.Evaluate(board)
	entries := engine.CacheLen()
	hits := engine.Stats().Hits

	second := engine.Evaluate(board)

	if first != second {
		t.Fatalf("expected stable value, got %d then %d", first, second)
	}
	if engine.CacheLen() != entries {
		t.Fatalf("cache grew on repeated evaluation: %d -> %d", entries, engine.CacheLen())
	}
	if got := engine.Stats().Hits; got != hits+1 {
		t.Fatalf("expected one cache hit, hits went %d -> %d", hits, got)
	}
}

func TestEvaluateMatchesForIndependentlyBuiltBoards(t *testing.T) {
	shared := NewEngine()
	fresh := NewEngine()
	for _, board := range reachableBoards(3, 3) {
		copyBoard := rebuild(board)
		if copyBoard.Key() != board.Key() || copyBoard.Hash() != board.Hash() {
			t.Fatalf("rebuilt board differs:\n%s\nvs\n%s", copyBoard, board)
		}
		want := shared.Evaluate(board)
		if got := shared.Evaluate(copyBoard); got != want {
			t.Fatalf("shared engine gave %d then %d for\n%s", want, got, board)
		}
		if got := fresh.Evaluate(board.Clone()); got != want {
			t.Fatalf("fresh engine gave %d, shared %d for\n%s", got, want, board)
		}
	}
}

func TestEvaluateCacheCoversReachablePositions(t *testing.T) {
	engine := NewEngine()
	engine.Evaluate(NewBoard(3, 3))

	nonTerminal := 0
	for _, board := range reachableBoards(3, 3) {
		if !board.IsTerminal() {
			nonTerminal++
		}
	}
	if engine.CacheLen() != nonTerminal {
		t.Fatalf("expected one cache entry per non-terminal position (%d), got %d", nonTerminal, engine.CacheLen())
	}
}

func TestBestMoveOnEmptyBoard(t *testing.T) {
	engine := NewEngine()
	move, ok := engine.BestMove(NewBoard(3, 3))
	if !ok {
		t.Fatalf("expected a move on an empty board")
	}
	// Every opening draws, so the first cell in row-major order wins the tie.
	if !move.Equals(NewMove(0, 0)) {
		t.Fatalf("expected (0,0), got (%d,%d)", move.X, move.Y)
	}
}

func TestBestMoveKeepsValueAfterCenterAndCorner(t *testing.T) {
	engine := NewEngine()
	board := NewBoard(3, 3)
	board.Place(1, 1)
	board.Place(0, 0)

	move, ok := engine.BestMove(board)
	if !ok {
		t.Fatalf("expected a move")
	}
	child := board.Clone()
	child.Place(move.X, move.Y)
	if got := engine.Evaluate(child); got < scoreDraw {
		t.Fatalf("move (%d,%d) loses for X", move.X, move.Y)
	}
	if got, want := engine.Evaluate(child), engine.Evaluate(board); got != want {
		t.Fatalf("best move changes the value from %d to %d", want, got)
	}
}

func TestBestMoveTakesFirstOptimalMoveInScanOrder(t *testing.T) {
	engine := NewEngine()
	for _, board := range reachableBoards(3, 3) {
		if board.IsTerminal() {
			continue
		}
		maximizing := board.Turn() == CellX
		var want Move
		found := false
		bestScore := 0
		for _, candidate := range emptyCells(board) {
			child := board.Clone()
			child.Place(candidate.X, candidate.Y)
			score := engine.Evaluate(child)
			better := maximizing && score > bestScore || !maximizing && score < bestScore
			if !found || better {
				want, bestScore, found = candidate, score, true
			}
		}

		got, ok := engine.BestMove(board)
		if !ok || !got.Equals(want) {
			t.Fatalf("expected (%d,%d), got (%d,%d) ok=%v on\n%s", want.X, want.Y, got.X, got.Y, ok, board)
		}
		if bestScore != engine.Evaluate(board) {
			t.Fatalf("best child value %d differs from position value %d", bestScore, engine.Evaluate(board))
		}
	}
}

func TestBestMoveReportsFinishedGames(t *testing.T) {
	engine := NewEngine()
	for _, rows := range [][]string{
		{"XXX", "OO.", "..."},
		{"XOX", "XOO", "OXX"},
	} {
		if _, ok := engine.BestMove(boardFromRows(t, rows...)); ok {
			t.Fatalf("expected no move on finished board %v", rows)
		}
	}
}

func TestBestMoveBlocksImmediateThreat(t *testing.T) {
	engine := NewEngine()
	// X threatens the top row; O must take (2,0).
	board := boardFromRows(t, "XX.", ".O.", "...")
	move, ok := engine.BestMove(board)
	if !ok || !move.Equals(NewMove(2, 0)) {
		t.Fatalf("expected O to block at (2,0), got (%d,%d) ok=%v", move.X, move.Y, ok)
	}
}

func TestSelfPlayFromEmptyBoardDraws(t *testing.T) {
	engine := NewEngine()
	board := NewBoard(3, 3)
	moves := 0
	for {
		move, ok := engine.BestMove(board)
		if !ok {
			break
		}
		board.Place(move.X, move.Y)
		moves++
	}
	if board.CheckWinner() != CellEmpty || !board.IsFull() {
		t.Fatalf("expected a drawn full board after perfect play, got\n%s", board)
	}
	if moves != 9 {
		t.Fatalf("expected 9 moves, got %d", moves)
	}
}

func TestEvaluateSmallBoards(t *testing.T) {
	cases := []struct {
		width, height int
		want          int
	}{
		{1, 1, scoreDraw},
		{2, 2, scoreDraw},
		{3, 1, scoreDraw},
		{4, 1, scoreDraw},
		{3, 2, scoreDraw},
	}
	for _, tc := range cases {
		engine := NewEngine()
		if got := engine.Evaluate(NewBoard(tc.width, tc.height)); got != tc.want {
			t.Fatalf("%dx%d: expected %d, got %d", tc.width, tc.height, tc.want, got)
		}
	}
}

func TestScoreToWinner(t *testing.T) {
	if scoreToWinner(scoreXWins) != CellX || scoreToWinner(scoreOWins) != CellO || scoreToWinner(scoreDraw) != CellEmpty {
		t.Fatalf("unexpected winner mapping")
	}
}
