package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"
)

type SelfPlayGame struct {
	Opening  []Move
	Moves    []Move
	Expected int
	Score    int
}

func (g SelfPlayGame) Length() int {
	return len(g.Opening) + len(g.Moves)
}

type SelfPlayReport struct {
	Games      int     `json:"games"`
	XWins      int     `json:"x_wins"`
	OWins      int     `json:"o_wins"`
	Draws      int     `json:"draws"`
	MeanLength float64 `json:"mean_length"`
	StdLength  float64 `json:"std_length"`
	MaxLength  float64 `json:"max_length"`
}

// RunSelfPlay plays cfg.SelfPlayGames games: a few random opening plies,
// then the engine for both sides. Each worker owns one Engine. A game whose
// result differs from the engine's value of its post-opening position is
// an error.
func RunSelfPlay(ctx context.Context, cfg Config) (SelfPlayReport, []SelfPlayGame, error) {
	games := make([]SelfPlayGame, cfg.SelfPlayGames)
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range games {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < cfg.SelfPlayWorkers; w++ {
		worker := w
		g.Go(func() error {
			engine := NewEngine()
			for idx := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				game := playSelfPlayGame(engine, cfg.Width, cfg.Height, cfg.SelfPlayOpeningPly)
				if game.Score != game.Expected {
					return fmt.Errorf("selfplay game %d: result %d differs from evaluated %d after opening %v",
						idx, game.Score, game.Expected, game.Opening)
				}
				games[idx] = game
			}
			log.Debug().Int("worker", worker).Int("cache", engine.CacheLen()).Msg("selfplay-worker-done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SelfPlayReport{}, nil, err
	}
	report := summarizeSelfPlay(games)
	log.Info().
		Int("games", report.Games).
		Int("x_wins", report.XWins).
		Int("o_wins", report.OWins).
		Int("draws", report.Draws).
		Float64("mean_length", report.MeanLength).
		Float64("std_length", report.StdLength).
		Msg("selfplay-done")
	return report, games, nil
}

func playSelfPlayGame(engine *Engine, width, height, openingPlies int) SelfPlayGame {
	board := NewBoard(width, height)
	var game SelfPlayGame
	for i := 0; i < openingPlies && !board.IsTerminal(); i++ {
		empties := emptyCells(board)
		move := empties[frand.Intn(len(empties))]
		board.Place(move.X, move.Y)
		game.Opening = append(game.Opening, move)
	}
	game.Expected = engine.Evaluate(board)
	for {
		move, ok := engine.BestMove(board)
		if !ok {
			break
		}
		board.Place(move.X, move.Y)
		game.Moves = append(game.Moves, move)
	}
	game.Score, _ = terminalScore(board)
	return game
}

func emptyCells(board Board) []Move {
	moves := make([]Move, 0, board.EmptyCount())
	for y := 0; y < board.Height(); y++ {
		for x := 0; x < board.Width(); x++ {
			if board.IsCellEmpty(x, y) {
				moves = append(moves, NewMove(x, y))
			}
		}
	}
	return moves
}

func summarizeSelfPlay(games []SelfPlayGame) SelfPlayReport {
	report := SelfPlayReport{Games: len(games)}
	if len(games) == 0 {
		return report
	}
	lengths := make([]float64, len(games))
	for i, game := range games {
		lengths[i] = float64(game.Length())
		switch scoreToWinner(game.Score) {
		case CellX:
			report.XWins++
		case CellO:
			report.OWins++
		default:
			report.Draws++
		}
	}
	if len(lengths) == 1 {
		report.MeanLength = lengths[0]
	} else {
		report.MeanLength, report.StdLength = stat.MeanStdDev(lengths, nil)
	}
	report.MaxLength = floats.Max(lengths)
	return report
}
