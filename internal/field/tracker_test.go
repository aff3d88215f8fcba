package field

import (
	"math/rand"
	"testing"

	"github.com/calebdsmith/battleboats/internal/wire"
)

func newTestTracker(seed int64) *Tracker {
	return NewTracker(rand.New(rand.NewSource(seed)))
}

func TestPlaceBoats(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		tr := newTestTracker(seed)
		if err := tr.PlaceBoats(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		if tr.OwnFleet() != 0b1111 {
			t.Fatalf("seed %d: fleet mask %04b after placement", seed, tr.OwnFleet())
		}

		var occupied int
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				switch tr.Own().Square(r, c) {
				case SquareSmallBoat, SquareMediumBoat, SquareLargeBoat, SquareHugeBoat:
					occupied++
				}
			}
		}
		want := BoatSmall.Size() + BoatMedium.Size() + BoatLarge.Size() + BoatHuge.Size()
		if occupied != want {
			t.Fatalf("seed %d: %d occupied squares, want %d", seed, occupied, want)
		}
	}
}

func TestPlaceBoatsDeterministicUnderSeed(t *testing.T) {
	a, b := newTestTracker(42), newTestTracker(42)
	if err := a.PlaceBoats(); err != nil {
		t.Fatalf("placement: %v", err)
	}
	if err := b.PlaceBoats(); err != nil {
		t.Fatalf("placement: %v", err)
	}
	if *a.Own() != *b.Own() {
		t.Fatalf("same seed produced different layouts")
	}
}

func TestNextGuessNeverRepeats(t *testing.T) {
	tr := newTestTracker(7)

	seen := make(map[[2]int]bool)
	for i := 0; i < Rows*Cols; i++ {
		row, col := tr.NextGuess()
		if seen[[2]int{row, col}] {
			t.Fatalf("guess %d repeated (%d,%d)", i, row, col)
		}
		seen[[2]int{row, col}] = true
		tr.UpdateKnowledge(row, col, wire.ResultMiss)
	}
	if len(seen) != Rows*Cols {
		t.Fatalf("covered %d squares, want %d", len(seen), Rows*Cols)
	}
}

func TestNextGuessTargetsAfterHit(t *testing.T) {
	tr := newTestTracker(7)

	row, col := 3, 5
	tr.UpdateKnowledge(row, col, wire.ResultHit)

	r, c := tr.NextGuess()
	if abs(r-row)+abs(c-col) != 1 {
		t.Fatalf("follow-up guess (%d,%d) not adjacent to hit (%d,%d)", r, c, row, col)
	}
}

func TestNextGuessStopsTargetingAfterSink(t *testing.T) {
	tr := newTestTracker(7)

	tr.UpdateKnowledge(3, 5, wire.ResultHit)
	tr.UpdateKnowledge(3, 6, wire.ResultSmallSunk)

	r, c := tr.NextGuess()
	if abs(r-3)+abs(c-5) == 1 || abs(r-3)+abs(c-6) == 1 {
		t.Fatalf("guess (%d,%d) still chasing a sunk boat", r, c)
	}
	if (r+c)%2 != 0 {
		t.Fatalf("hunt guess (%d,%d) off the search parity", r, c)
	}
}

func TestResetClearsEverything(t *testing.T) {
	tr := newTestTracker(7)
	if err := tr.PlaceBoats(); err != nil {
		t.Fatalf("placement: %v", err)
	}
	tr.UpdateKnowledge(2, 2, wire.ResultHit)
	tr.RegisterAttack(0, 0)

	tr.Reset()

	if *tr.Own() != *NewOwnBoard() {
		t.Fatalf("own board not reinitialized")
	}
	if *tr.Opp() != *NewOppBoard() {
		t.Fatalf("opponent knowledge not reinitialized")
	}
	if _, _, ok := tr.LastGuess(); ok {
		t.Fatalf("stale last guess survived reset")
	}

	// queued targets from the pre-reset hit must be gone
	r, c := tr.NextGuess()
	if abs(r-2)+abs(c-2) == 1 {
		t.Fatalf("guess (%d,%d) chased a hit from before the reset", r, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
