// Package field owns the two game boards: the player's own boats and the
// accumulated knowledge of the opponent's grid.
package field

import (
	"errors"

	"github.com/calebdsmith/battleboats/internal/wire"
)

const (
	Rows = 6
	Cols = 10

	NumBoats = 4
)

var ErrBoatPlacement = errors.New("boat does not fit there")

// Square is the state of one grid cell.
type Square int

const (
	SquareEmpty Square = iota
	SquareUnknown
	SquareHit
	SquareMiss
	SquareSmallBoat
	SquareMediumBoat
	SquareLargeBoat
	SquareHugeBoat
	SquareInvalid
)

// BoatKind indexes the four boats, smallest first. The ordering fixes both
// the lives array and the bit positions of the alive mask.
type BoatKind int

const (
	BoatSmall BoatKind = iota
	BoatMedium
	BoatLarge
	BoatHuge
)

// boatSizes is the segment count per kind.
var boatSizes = [NumBoats]int{3, 4, 5, 6}

func (k BoatKind) Size() int { return boatSizes[k] }

func (k BoatKind) square() Square {
	return SquareSmallBoat + Square(k)
}

// SunkResult is the RES outcome code reporting this kind sunk.
func (k BoatKind) SunkResult() wire.GuessResult {
	return wire.ResultSmallSunk + wire.GuessResult(k)
}

type Direction int

const (
	East Direction = iota
	South
)

// Board is one 6x10 grid plus per-kind remaining lives. The alive mask is
// always derivable from the lives counters alone.
type Board struct {
	grid  [Rows][Cols]Square
	lives [NumBoats]int
}

// NewOwnBoard returns an empty board; lives fill in as boats are placed.
func NewOwnBoard() *Board {
	return &Board{}
}

// NewOppBoard returns a board of all-unknown squares with every boat assumed
// alive at full strength.
func NewOppBoard() *Board {
	b := &Board{}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			b.grid[r][c] = SquareUnknown
		}
	}
	for k := BoatSmall; k <= BoatHuge; k++ {
		b.lives[k] = k.Size()
	}
	return b
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Square returns the state at (row, col), or SquareInvalid out of bounds.
func (b *Board) Square(row, col int) Square {
	if !inBounds(row, col) {
		return SquareInvalid
	}
	return b.grid[row][col]
}

// SetSquare overwrites one cell and returns its previous state. Escape hatch
// for tests and manual placement; AddBoat is the checked path.
func (b *Board) SetSquare(row, col int, s Square) Square {
	if !inBounds(row, col) {
		return SquareInvalid
	}
	prev := b.grid[row][col]
	b.grid[row][col] = s
	return prev
}

func (b *Board) Lives(k BoatKind) int { return b.lives[k] }

// AddBoat places one boat with its pivot at (row, col) extending east or
// south. The run is checked for bounds and overlap before anything is
// written, so a failed add leaves the board untouched.
func (b *Board) AddBoat(row, col int, dir Direction, kind BoatKind) error {
	size := kind.Size()

	for i := 0; i < size; i++ {
		r, c := row, col
		if dir == South {
			r += i
		} else {
			c += i
		}
		if !inBounds(r, c) || b.grid[r][c] != SquareEmpty {
			return ErrBoatPlacement
		}
	}

	for i := 0; i < size; i++ {
		r, c := row, col
		if dir == South {
			r += i
		} else {
			c += i
		}
		b.grid[r][c] = kind.square()
	}
	b.lives[kind] += size
	return nil
}

// RegisterAttack resolves an incoming shot against this (own) board, marks
// the cell, decrements the hit boat's lives, and returns the outcome to send
// back. Out-of-bounds and already-attacked squares count as a miss so the
// exchange keeps moving.
func (b *Board) RegisterAttack(row, col int) wire.GuessResult {
	if !inBounds(row, col) {
		return wire.ResultMiss
	}

	switch s := b.grid[row][col]; s {
	case SquareSmallBoat, SquareMediumBoat, SquareLargeBoat, SquareHugeBoat:
		kind := BoatKind(s - SquareSmallBoat)
		b.grid[row][col] = SquareHit
		if b.lives[kind] > 0 {
			b.lives[kind]--
		}
		if b.lives[kind] == 0 {
			return kind.SunkResult()
		}
		return wire.ResultHit

	case SquareEmpty:
		b.grid[row][col] = SquareMiss
		return wire.ResultMiss

	default:
		return wire.ResultMiss
	}
}

// UpdateKnowledge folds the reported outcome of our own shot into this
// (opponent-knowledge) board. A sunk report zeroes that kind's lives; the
// per-segment count in between is unknowable from hit reports alone.
func (b *Board) UpdateKnowledge(row, col int, result wire.GuessResult) {
	if !inBounds(row, col) {
		return
	}

	switch {
	case result == wire.ResultHit || result.Sunk():
		b.grid[row][col] = SquareHit
	case result == wire.ResultMiss:
		b.grid[row][col] = SquareMiss
	}

	if result.Sunk() {
		b.lives[BoatKind(result-wire.ResultSmallSunk)] = 0
	}
}

// BoatStates packs boat liveness into a 4-bit mask, small boat at the least
// significant bit. Zero means the fleet is gone.
func (b *Board) BoatStates() uint8 {
	var mask uint8
	for k := BoatSmall; k <= BoatHuge; k++ {
		if b.lives[k] > 0 {
			mask |= 1 << uint(k)
		}
	}
	return mask
}
