package game

// Ship is an immutable footprint plus the subset of it that has been hit
type Ship struct {
	footprint []Coordinate
	hits      map[Coordinate]bool
}

// NewShip creates a ship over the given cells. Duplicate cells are collapsed.
func NewShip(footprint []Coordinate) *Ship {
	seen := make(map[Coordinate]bool, len(footprint))
	cells := make([]Coordinate, 0, len(footprint))
	for _, c := range footprint {
		if seen[c] {
			continue
		}
		seen[c] = true
		cells = append(cells, c)
	}
	return &Ship{
		footprint: cells,
		hits:      make(map[Coordinate]bool),
	}
}

// Name returns the fleet name derived from the footprint size
func (s *Ship) Name() string { return ShipName(len(s.footprint)) }

// Size returns the number of cells in the footprint
func (s *Ship) Size() int { return len(s.footprint) }

// Positions returns a copy of the footprint in placement order
func (s *Ship) Positions() []Coordinate {
	out := make([]Coordinate, len(s.footprint))
	copy(out, s.footprint)
	return out
}

// Contains reports whether c is part of the footprint
func (s *Ship) Contains(c Coordinate) bool {
	for _, p := range s.footprint {
		if p == c {
			return true
		}
	}
	return false
}

// RegisterHit records a hit on c. Cells outside the footprint are ignored.
func (s *Ship) RegisterHit(c Coordinate) {
	if s.Contains(c) {
		s.hits[c] = true
	}
}

// IsHit reports whether c has been hit
func (s *Ship) IsHit(c Coordinate) bool { return s.hits[c] }

// HitCount returns the number of distinct cells hit
func (s *Ship) HitCount() int { return len(s.hits) }

// IsSunk reports whether every footprint cell has been hit
func (s *Ship) IsSunk() bool {
	return len(s.footprint) > 0 && len(s.hits) == len(s.footprint)
}

// Info returns the public description sent when the ship sinks
func (s *Ship) Info() *ShipInfo {
	return &ShipInfo{
		Name:      s.Name(),
		Size:      s.Size(),
		Positions: s.Positions(),
	}
}

// Player is the per-player record: grid, fleet and placement flag
type Player struct {
	ID          string
	ShipsPlaced bool
	Ships       []*Ship
	grid        [BoardSize][BoardSize]CellState
}

// NewPlayer creates an empty player record
func NewPlayer(id string) *Player {
	return &Player{ID: id}
}

// Reset clears the fleet, the grid and the placement flag
func (p *Player) Reset() {
	p.ShipsPlaced = false
	p.Ships = nil
	p.grid = [BoardSize][BoardSize]CellState{}
}

// Cell returns the state of c. Out-of-bounds cells read as empty.
func (p *Player) Cell(c Coordinate) CellState {
	if !c.InBounds() {
		return CellEmpty
	}
	return p.grid[c.Y][c.X]
}

// PlaceShip marks the in-bounds cells of footprint as SHIP and adds the ship.
// Out-of-bounds cells and cells already taken by another ship are dropped, so
// the ship may shrink; cells past the first MaxShipSize survivors are ignored.
// Returns nil when no cell survives.
func (p *Player) PlaceShip(footprint []Coordinate) *Ship {
	valid := make([]Coordinate, 0, MaxShipSize)
	for _, c := range footprint {
		if len(valid) == MaxShipSize {
			break
		}
		if !c.InBounds() || p.grid[c.Y][c.X] != CellEmpty {
			continue
		}
		p.grid[c.Y][c.X] = CellShip
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil
	}

	ship := NewShip(valid)
	p.Ships = append(p.Ships, ship)
	return ship
}

// PlaceShips replaces the whole fleet and marks the player as ready
func (p *Player) PlaceShips(footprints [][]Coordinate) {
	p.Reset()
	for _, fp := range footprints {
		p.PlaceShip(fp)
	}
	p.ShipsPlaced = true
}

// ReceiveShot resolves a shot at c against this player's grid. Shots out of
// bounds or at an already-shot cell are misses and change nothing. The
// returned ship is the one that was hit, or nil on a miss.
func (p *Player) ReceiveShot(c Coordinate) (ShotResult, *Ship) {
	if !c.InBounds() {
		return ResultMiss, nil
	}

	switch p.grid[c.Y][c.X] {
	case CellEmpty:
		p.grid[c.Y][c.X] = CellWaterHit
		return ResultMiss, nil
	case CellShip:
		p.grid[c.Y][c.X] = CellHit
		ship := p.shipAt(c)
		if ship == nil {
			return ResultHit, nil
		}
		ship.RegisterHit(c)
		if ship.IsSunk() {
			return ResultSunk, ship
		}
		return ResultHit, ship
	default:
		return ResultMiss, nil
	}
}

// AllShipsSunk reports whether the fleet is non-empty and fully sunk
func (p *Player) AllShipsSunk() bool {
	if len(p.Ships) == 0 {
		return false
	}
	for _, s := range p.Ships {
		if !s.IsSunk() {
			return false
		}
	}
	return true
}

func (p *Player) shipAt(c Coordinate) *Ship {
	for _, s := range p.Ships {
		if s.Contains(c) {
			return s
		}
	}
	return nil
}
