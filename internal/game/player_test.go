package game_test

import (
	"testing"

	"naval-combat/internal/game"
)

func coords(pairs ...[2]int) []game.Coordinate {
	out := make([]game.Coordinate, len(pairs))
	for i, p := range pairs {
		out[i] = game.Coordinate{X: p[0], Y: p[1]}
	}
	return out
}

func TestShipName(t *testing.T) {
	tests := []struct {
		size int
		want string
	}{
		{5, "Portaaviones"},
		{4, "Destructor Acorazado"},
		{3, "Barco de Ataque"},
		{2, "Lancha Rapida"},
	}
	for _, tt := range tests {
		if got := game.ShipName(tt.size); got != tt.want {
			t.Errorf("ShipName(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestPlaceShip_DropsOutOfBounds(t *testing.T) {
	p := game.NewPlayer("p1")
	ship := p.PlaceShip(coords([2]int{8, 0}, [2]int{9, 0}, [2]int{10, 0}, [2]int{-1, 0}))
	if ship == nil {
		t.Fatal("expected a ship")
	}
	if ship.Size() != 2 {
		t.Errorf("ship size = %d, want 2", ship.Size())
	}
	if p.Cell(game.Coordinate{X: 8, Y: 0}) != game.CellShip || p.Cell(game.Coordinate{X: 9, Y: 0}) != game.CellShip {
		t.Error("in-bounds cells should be SHIP")
	}
}

func TestPlaceShip_AllOutOfBounds(t *testing.T) {
	p := game.NewPlayer("p1")
	if ship := p.PlaceShip(coords([2]int{10, 10}, [2]int{-1, 3})); ship != nil {
		t.Errorf("expected no ship, got %v", ship.Positions())
	}
	if len(p.Ships) != 0 {
		t.Errorf("fleet size = %d, want 0", len(p.Ships))
	}
}

func TestPlaceShip_CapsInBoundsCells(t *testing.T) {
	p := game.NewPlayer("p1")
	ship := p.PlaceShip(coords([2]int{5, 0}, [2]int{6, 0}, [2]int{7, 0}, [2]int{8, 0}, [2]int{9, 0}, [2]int{10, 0}))
	if ship == nil || ship.Size() != game.MaxShipSize || ship.Name() != "Portaaviones" {
		t.Fatalf("expected a 5-cell Portaaviones, got %v", ship)
	}

	long := p.PlaceShip(coords([2]int{0, 9}, [2]int{1, 9}, [2]int{2, 9}, [2]int{3, 9}, [2]int{4, 9}, [2]int{5, 9}, [2]int{6, 9}))
	if long == nil || long.Size() != game.MaxShipSize {
		t.Fatalf("expected the ship cut to %d cells, got %v", game.MaxShipSize, long)
	}
	if p.Cell(game.Coordinate{X: 5, Y: 9}) != game.CellEmpty || p.Cell(game.Coordinate{X: 6, Y: 9}) != game.CellEmpty {
		t.Error("cells past the size cap were marked as SHIP")
	}
}

func TestPlaceShip_OverlapKeepsFirstOwner(t *testing.T) {
	p := game.NewPlayer("p1")
	p.PlaceShip(coords([2]int{0, 0}, [2]int{1, 0}))
	second := p.PlaceShip(coords([2]int{1, 0}, [2]int{1, 1}))
	if second == nil || second.Size() != 1 {
		t.Fatalf("expected the overlapping cell to be dropped, got %v", second)
	}
	if second.Contains(game.Coordinate{X: 1, Y: 0}) {
		t.Error("overlapping cell assigned to two ships")
	}
}

func TestReceiveShot_Table(t *testing.T) {
	p := game.NewPlayer("p1")
	p.PlaceShips([][]game.Coordinate{coords([2]int{0, 0}, [2]int{1, 0})})

	tests := []struct {
		name     string
		at       game.Coordinate
		want     game.ShotResult
		wantCell game.CellState
	}{
		{"out of bounds left", game.Coordinate{X: -1, Y: 0}, game.ResultMiss, game.CellEmpty},
		{"out of bounds right", game.Coordinate{X: 10, Y: 0}, game.ResultMiss, game.CellEmpty},
		{"out of bounds top", game.Coordinate{X: 0, Y: -1}, game.ResultMiss, game.CellEmpty},
		{"out of bounds bottom", game.Coordinate{X: 0, Y: 10}, game.ResultMiss, game.CellEmpty},
		{"water", game.Coordinate{X: 5, Y: 5}, game.ResultMiss, game.CellWaterHit},
		{"water again", game.Coordinate{X: 5, Y: 5}, game.ResultMiss, game.CellWaterHit},
		{"hit", game.Coordinate{X: 0, Y: 0}, game.ResultHit, game.CellHit},
		{"hit again", game.Coordinate{X: 0, Y: 0}, game.ResultMiss, game.CellHit},
		{"sunk", game.Coordinate{X: 1, Y: 0}, game.ResultSunk, game.CellHit},
		{"sunk cell again", game.Coordinate{X: 1, Y: 0}, game.ResultMiss, game.CellHit},
	}
	for _, tt := range tests {
		got, _ := p.ReceiveShot(tt.at)
		if got != tt.want {
			t.Errorf("%s: result = %s, want %s", tt.name, got, tt.want)
		}
		if cell := p.Cell(tt.at); cell != tt.wantCell {
			t.Errorf("%s: cell = %s, want %s", tt.name, cell, tt.wantCell)
		}
	}
	if !p.AllShipsSunk() {
		t.Error("fleet should be sunk")
	}
}

func TestReceiveShot_SunkCarriesShip(t *testing.T) {
	p := game.NewPlayer("p1")
	p.PlaceShips([][]game.Coordinate{coords([2]int{5, 5}, [2]int{5, 6})})

	p.ReceiveShot(game.Coordinate{X: 5, Y: 5})
	result, ship := p.ReceiveShot(game.Coordinate{X: 5, Y: 6})
	if result != game.ResultSunk || ship == nil {
		t.Fatalf("result = %s ship = %v, want sunk with ship", result, ship)
	}
	info := ship.Info()
	if info.Name != "Lancha Rapida" || info.Size != 2 {
		t.Errorf("info = %+v", info)
	}
	want := coords([2]int{5, 5}, [2]int{5, 6})
	for i := range want {
		if info.Positions[i] != want[i] {
			t.Errorf("positions[%d] = %v, want %v", i, info.Positions[i], want[i])
		}
	}
}

func TestAllShipsSunk_EmptyFleet(t *testing.T) {
	p := game.NewPlayer("p1")
	if p.AllShipsSunk() {
		t.Error("empty fleet must not count as sunk")
	}
	p.PlaceShips(nil)
	if p.AllShipsSunk() {
		t.Error("empty placed fleet must not count as sunk")
	}
}

// Every cell is HIT exactly when some ship records a hit there, whatever the
// shot sequence.
func TestGridMatchesShipHits(t *testing.T) {
	p := game.NewPlayer("p1")
	p.PlaceShips([][]game.Coordinate{
		coords([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}),
		coords([2]int{4, 4}, [2]int{4, 5}),
		coords([2]int{9, 9}),
	})

	shots := coords(
		[2]int{0, 0}, [2]int{3, 3}, [2]int{4, 5}, [2]int{0, 0}, [2]int{9, 9},
		[2]int{-1, 4}, [2]int{2, 0}, [2]int{4, 4}, [2]int{7, 1}, [2]int{1, 0},
	)
	for _, s := range shots {
		p.ReceiveShot(s)
	}

	for y := 0; y < game.BoardSize; y++ {
		for x := 0; x < game.BoardSize; x++ {
			c := game.Coordinate{X: x, Y: y}
			hitOnShip := false
			for _, ship := range p.Ships {
				if ship.IsHit(c) {
					hitOnShip = true
				}
			}
			if (p.Cell(c) == game.CellHit) != hitOnShip {
				t.Errorf("cell %v = %s, ship hit = %v", c, p.Cell(c), hitOnShip)
			}
		}
	}
	if !p.AllShipsSunk() {
		t.Error("every footprint cell was shot, fleet should be sunk")
	}
}
