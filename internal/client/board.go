package client

import (
	"naval-combat/internal/game"
	"naval-combat/internal/network"
)

// Board is the client's local picture of one grid. It is rebuilt from
// server frames and carries no authority.
type Board struct {
	cells [game.BoardSize][game.BoardSize]game.CellState
}

// Reset clears every cell
func (b *Board) Reset() {
	b.cells = [game.BoardSize][game.BoardSize]game.CellState{}
}

// Cell returns the state at (x, y); out of range reads as empty
func (b *Board) Cell(x, y int) game.CellState {
	if !(game.Coordinate{X: x, Y: y}).InBounds() {
		return game.CellEmpty
	}
	return b.cells[y][x]
}

// PlaceFleet marks the cells the server keeps for each ship: in-bounds, not
// already taken, at most game.MaxShipSize per ship
func (b *Board) PlaceFleet(ships [][]network.Coord) {
	for _, ship := range ships {
		kept := 0
		for _, c := range ship {
			if kept == game.MaxShipSize {
				break
			}
			if !c.ToCoordinate().InBounds() || b.cells[c[1]][c[0]] != game.CellEmpty {
				continue
			}
			b.cells[c[1]][c[0]] = game.CellShip
			kept++
		}
	}
}

// anyInBounds reports whether at least one cell of the fleet is on the board
func anyInBounds(ships [][]network.Coord) bool {
	for _, ship := range ships {
		for _, c := range ship {
			if c.ToCoordinate().InBounds() {
				return true
			}
		}
	}
	return false
}

// Mark records a shot result at (x, y)
func (b *Board) Mark(x, y int, result game.ShotResult) {
	if !(game.Coordinate{X: x, Y: y}).InBounds() {
		return
	}
	switch result {
	case game.ResultHit, game.ResultSunk:
		b.cells[y][x] = game.CellHit
	default:
		if b.cells[y][x] == game.CellEmpty {
			b.cells[y][x] = game.CellWaterHit
		}
	}
}
