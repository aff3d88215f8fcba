package field

import (
	"math/rand"

	"github.com/calebdsmith/battleboats/internal/wire"
)

// placement retries before giving up; an empty board never needs anywhere
// near this many.
const maxPlaceAttempts = 1000

// Tracker bundles both boards with the shot-selection state for one session.
// It satisfies the session's Field contract.
type Tracker struct {
	own *Board
	opp *Board
	rng *rand.Rand

	// target-mode state: cells adjacent to unresolved hits, most recent last
	targets []coord
	last    coord
	hasLast bool
}

type coord struct{ row, col int }

// NewTracker seeds a fresh pair of boards. The RNG drives boat placement and
// nothing else, so a fixed seed gives reproducible layouts.
func NewTracker(rng *rand.Rand) *Tracker {
	t := &Tracker{rng: rng}
	t.Reset()
	return t
}

// Reset reinitializes both boards and forgets all targeting state.
func (t *Tracker) Reset() {
	t.own = NewOwnBoard()
	t.opp = NewOppBoard()
	t.targets = t.targets[:0]
	t.hasLast = false
}

func (t *Tracker) Own() *Board { return t.own }
func (t *Tracker) Opp() *Board { return t.opp }

// PlaceBoats scatters all four boats randomly, largest first so the big ones
// still have room. Bounded retry rather than recursion.
func (t *Tracker) PlaceBoats() error {
	for kind := BoatHuge; kind >= BoatSmall; kind-- {
		placed := false
		for attempt := 0; attempt < maxPlaceAttempts; attempt++ {
			row := t.rng.Intn(Rows)
			col := t.rng.Intn(Cols)
			dir := East
			if t.rng.Intn(2) == 0 {
				dir = South
			}
			if t.own.AddBoat(row, col, dir, kind) == nil {
				placed = true
				break
			}
		}
		if !placed {
			return ErrBoatPlacement
		}
	}
	return nil
}

func (t *Tracker) RegisterAttack(row, col int) wire.GuessResult {
	return t.own.RegisterAttack(row, col)
}

// UpdateKnowledge records the opponent's answer to our last shot and feeds
// the targeting heuristic: a plain hit queues the neighbors for follow-up, a
// sunk report ends the chase.
func (t *Tracker) UpdateKnowledge(row, col int, result wire.GuessResult) {
	t.opp.UpdateKnowledge(row, col, result)

	switch {
	case result.Sunk():
		t.targets = t.targets[:0]
	case result == wire.ResultHit:
		for _, d := range [4]coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			n := coord{row + d.row, col + d.col}
			if t.opp.Square(n.row, n.col) == SquareUnknown {
				t.targets = append(t.targets, n)
			}
		}
	}
}

func (t *Tracker) OwnFleet() uint8 { return t.own.BoatStates() }
func (t *Tracker) OppFleet() uint8 { return t.opp.BoatStates() }

// NextGuess picks the next shot: drain queued follow-up targets first, then
// hunt on a checkerboard parity (no boat is shorter than 2), then sweep
// whatever unknowns remain. Never repeats an attacked square.
func (t *Tracker) NextGuess() (row, col int) {
	for len(t.targets) > 0 {
		c := t.targets[len(t.targets)-1]
		t.targets = t.targets[:len(t.targets)-1]
		if t.opp.Square(c.row, c.col) == SquareUnknown {
			t.remember(c)
			return c.row, c.col
		}
	}

	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if (r+c)%2 == 0 && t.opp.Square(r, c) == SquareUnknown {
				t.remember(coord{r, c})
				return r, c
			}
		}
	}

	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if t.opp.Square(r, c) == SquareUnknown {
				t.remember(coord{r, c})
				return r, c
			}
		}
	}

	// Board exhausted; the game should have ended before this.
	return 0, 0
}

func (t *Tracker) remember(c coord) {
	t.last = c
	t.hasLast = true
}

// LastGuess reports the most recent NextGuess, for display layers.
func (t *Tracker) LastGuess() (row, col int, ok bool) {
	return t.last.row, t.last.col, t.hasLast
}
