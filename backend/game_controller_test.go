package main

import (
	"sync"
	"testing"
)

func TestGameControllerPublishesChanges(t *testing.T) {
	gc := NewGameController(NewGame(3, 3, nil))
	var snapshots []GameSnapshot
	gc.SetChangePublisher(func(s GameSnapshot) {
		snapshots = append(snapshots, s)
	})

	if !gc.Place(0, 0) {
		t.Fatalf("expected placement to apply")
	}
	if gc.Place(0, 0) {
		t.Fatalf("expected repeated placement to be ignored")
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected one published snapshot, got %d", len(snapshots))
	}
	if snapshots[0].Board.At(0, 0) != CellX || len(snapshots[0].History) != 1 {
		t.Fatalf("unexpected published snapshot %+v", snapshots[0])
	}

	gc.Reset()
	if len(snapshots) != 2 || !snapshots[1].Board.Equal(NewBoard(3, 3)) {
		t.Fatalf("expected reset to publish a fresh board")
	}
}

func TestGameControllerEngineMove(t *testing.T) {
	gc := NewGameController(NewGame(3, 3, nil))
	want, ok := gc.BestMove()
	if !ok {
		t.Fatalf("expected a best move on an empty board")
	}
	move, applied := gc.EngineMove()
	if !applied || !move.Equals(want) {
		t.Fatalf("expected engine to play (%d,%d), got (%d,%d) applied=%v", want.X, want.Y, move.X, move.Y, applied)
	}
	snapshot := gc.Snapshot()
	if snapshot.Board.At(move.X, move.Y) != CellX || !snapshot.History[0].IsEngine {
		t.Fatalf("unexpected snapshot after engine move %+v", snapshot)
	}
	if snapshot.Stats.Entries == 0 || snapshot.Stats.Lookups == 0 {
		t.Fatalf("expected engine stats in the snapshot, got %+v", snapshot.Stats)
	}
}

func TestGameControllerSnapshotBanner(t *testing.T) {
	gc := NewGameController(NewGame(3, 3, nil))
	for _, m := range []Move{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {1, 2}} {
		gc.Place(m.X, m.Y)
	}
	snapshot := gc.Snapshot()
	if snapshot.Status != StatusOWon || snapshot.Banner != "O win!" {
		t.Fatalf("expected O win, got %v %q", snapshot.Status, snapshot.Banner)
	}
	if !gc.Click(0, 2) {
		t.Fatalf("expected click to reset the finished game")
	}
	if gc.Snapshot().Status != StatusRunning {
		t.Fatalf("expected a running game after reset")
	}
}

func TestGameControllerConcurrentTurns(t *testing.T) {
	gc := NewGameController(NewGame(3, 3, nil))
	var wg sync.WaitGroup
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			wg.Add(1)
			go func(x, y int) {
				defer wg.Done()
				gc.PlayTurn(x, y)
			}(x, y)
		}
	}
	wg.Wait()

	snapshot := gc.Snapshot()
	xs, os := 0, 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			switch snapshot.Board.At(x, y) {
			case CellX:
				xs++
			case CellO:
				os++
			}
		}
	}
	if xs != os && xs != os+1 {
		t.Fatalf("marks out of balance after concurrent turns: %d X, %d O", xs, os)
	}
	if len(snapshot.History) != xs+os {
		t.Fatalf("history has %d entries for %d marks", len(snapshot.History), xs+os)
	}
}
