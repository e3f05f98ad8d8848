package main

import "sync"

// GameController serializes access to one Game for front ends that handle
// input on several goroutines.
type GameController struct {
	mu       sync.Mutex
	game     *Game
	onChange func(GameSnapshot)
}

// GameSnapshot is a consistent copy of the session taken under the lock.
type GameSnapshot struct {
	Board   Board
	Status  GameStatus
	Banner  string
	History []HistoryEntry
	Stats   EngineStats
}

func NewGameController(game *Game) *GameController {
	return &GameController{game: game}
}

// SetChangePublisher registers a callback invoked after every state change.
func (gc *GameController) SetChangePublisher(publisher func(GameSnapshot)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.onChange = publisher
}

func (gc *GameController) Place(x, y int) bool {
	return gc.mutate(func(g *Game) bool { return g.Place(x, y) })
}

func (gc *GameController) PlayTurn(x, y int) bool {
	return gc.mutate(func(g *Game) bool { return g.PlayTurn(x, y) })
}

func (gc *GameController) Click(x, y int) bool {
	return gc.mutate(func(g *Game) bool { return g.Click(x, y) })
}

func (gc *GameController) EngineMove() (Move, bool) {
	var move Move
	applied := gc.mutate(func(g *Game) bool {
		var ok bool
		move, ok = g.EngineMove()
		return ok
	})
	return move, applied
}

func (gc *GameController) Reset() {
	gc.mutate(func(g *Game) bool {
		g.Reset()
		return true
	})
}

func (gc *GameController) BestMove() (Move, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.BestMove()
}

func (gc *GameController) Snapshot() GameSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.snapshotLocked()
}

func (gc *GameController) Board() Board {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Board()
}

func (gc *GameController) mutate(fn func(*Game) bool) bool {
	gc.mu.Lock()
	changed := fn(gc.game)
	publisher := gc.onChange
	var snapshot GameSnapshot
	if changed && publisher != nil {
		snapshot = gc.snapshotLocked()
	}
	gc.mu.Unlock()
	if changed && publisher != nil {
		publisher(snapshot)
	}
	return changed
}

func (gc *GameController) snapshotLocked() GameSnapshot {
	status := gc.game.Status()
	return GameSnapshot{
		Board:   gc.game.Board(),
		Status:  status,
		Banner:  statusBanner(status),
		History: gc.game.History().All(),
		Stats:   gc.game.Engine().Stats(),
	}
}
