package game

import (
	"errors"
	"fmt"
)

// Board and session limits
const (
	BoardSize   = 10
	MaxPlayers  = 2
	MaxShipSize = 5
)

// Coordinate is a board cell. X is the column, Y the row, origin top-left.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the coordinate lies on the board
func (c Coordinate) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// CellState is the state of one cell of a player's own grid
type CellState int

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellWaterHit
)

func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "Empty"
	case CellShip:
		return "Ship"
	case CellHit:
		return "Hit"
	case CellWaterHit:
		return "WaterHit"
	default:
		return "Unknown"
	}
}

// Phase is the session-level state machine node
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlacement
	PhaseBattle
	PhaseGameOver
)

// String returns the wire literal of the phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting_players"
	case PhasePlacement:
		return "placement_phase"
	case PhaseBattle:
		return "battle_phase"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// ShotResult is the outcome of resolving one cell
type ShotResult string

const (
	ResultMiss ShotResult = "miss"
	ResultHit  ShotResult = "hit"
	ResultSunk ShotResult = "sunk"
)

// ShipName returns the fleet name for a footprint size
func ShipName(size int) string {
	switch size {
	case 5:
		return "Portaaviones"
	case 4:
		return "Destructor Acorazado"
	case 3:
		return "Barco de Ataque"
	case 2:
		return "Lancha Rapida"
	default:
		return "Barco"
	}
}

// ShipInfo describes a sunk ship
type ShipInfo struct {
	Name      string       `json:"name"`
	Size      int          `json:"size"`
	Positions []Coordinate `json:"positions"`
}

// ShotOutcome is one resolved cell of a shot or a volley
type ShotOutcome struct {
	X       int        `json:"x"`
	Y       int        `json:"y"`
	Result  ShotResult `json:"result"`
	Shooter string     `json:"shooter"`
	Target  string     `json:"target"`
	Ship    *ShipInfo  `json:"ship_info,omitempty"`

	// GameOver is set on the outcome that emptied the target's fleet
	GameOver bool `json:"-"`
}

// PlayerStatus is the public view of one player
type PlayerStatus struct {
	ID    string `json:"id"`
	Ready bool   `json:"ready"`
}

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	Phase       Phase          `json:"phase"`
	CurrentTurn string         `json:"current_turn"`
	Winner      string         `json:"winner,omitempty"`
	Players     []PlayerStatus `json:"players"`
}

// Session errors. The controller maps each one to a user-visible error frame.
var (
	ErrSessionFull      = errors.New("session is full")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrDuplicatePlayer  = errors.New("player already registered")
	ErrWrongPhase       = errors.New("action not valid in current phase")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyPlaced    = errors.New("ships already placed")
	ErrEmptyFleet       = errors.New("no ship cell inside the board")
	ErrNoTargets        = errors.New("volley without targets")
)
