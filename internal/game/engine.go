// Package game implements the naval-combat session state machine and shot
// resolution. It performs no I/O; callers serialise access to a Session.
package game

import (
	"fmt"
	"math/rand"
)

// Session is the single game table hosting up to two players.
//
// Phase moves WAITING -> PLACEMENT -> BATTLE -> GAME_OVER and falls back to
// WAITING whenever fewer than two players remain. CurrentTurn is set only
// during BATTLE.
type Session struct {
	players     map[string]*Player
	order       []string
	phase       Phase
	currentTurn string
	winner      string
	maxPlayers  int
	pickStarter func(ids []string) string
}

// NewSession creates an empty session in the WAITING phase
func NewSession() *Session {
	return &Session{
		players:     make(map[string]*Player),
		phase:       PhaseWaiting,
		maxPlayers:  MaxPlayers,
		pickStarter: randomStarter,
	}
}

// SetStarterPicker replaces the uniform random choice of the first player
func (s *Session) SetStarterPicker(pick func(ids []string) string) {
	if pick == nil {
		pick = randomStarter
	}
	s.pickStarter = pick
}

func randomStarter(ids []string) string {
	return ids[rand.Intn(len(ids))]
}

// Phase returns the current phase
func (s *Session) Phase() Phase { return s.phase }

// CurrentTurn returns the player allowed to shoot, or "" outside BATTLE
func (s *Session) CurrentTurn() string { return s.currentTurn }

// Winner returns the winner of the last finished game
func (s *Session) Winner() string { return s.winner }

// MaxPlayers returns the table capacity
func (s *Session) MaxPlayers() int { return s.maxPlayers }

// PlayerCount returns the number of registered players
func (s *Session) PlayerCount() int { return len(s.order) }

// IsFull reports whether no more players can join
func (s *Session) IsFull() bool { return len(s.order) >= s.maxPlayers }

// PlayerIDs returns the registered ids in join order
func (s *Session) PlayerIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Player returns the record registered under id
func (s *Session) Player(id string) *Player {
	return s.players[id]
}

// AddPlayer registers a new player
func (s *Session) AddPlayer(id string) (*Player, error) {
	if s.IsFull() {
		return nil, ErrSessionFull
	}
	if _, exists := s.players[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}

	p := NewPlayer(id)
	s.players[id] = p
	s.order = append(s.order, id)
	return p, nil
}

// RemovePlayer drops a player from the session. It reports whether a game in
// PLACEMENT or BATTLE was interrupted, in which case the remaining player has
// to be told. Removing an unknown id is a no-op.
func (s *Session) RemovePlayer(id string) (interrupted bool) {
	if _, exists := s.players[id]; !exists {
		return false
	}

	interrupted = len(s.order) == s.maxPlayers &&
		(s.phase == PhasePlacement || s.phase == PhaseBattle)

	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if len(s.order) < s.maxPlayers {
		s.reset()
	}
	return interrupted
}

// StartGame moves a full table into PLACEMENT. It is accepted in WAITING and,
// as a rematch, in GAME_OVER.
func (s *Session) StartGame() error {
	if s.phase != PhaseWaiting && s.phase != PhaseGameOver {
		return ErrWrongPhase
	}
	if len(s.order) != s.maxPlayers {
		return ErrNotEnoughPlayers
	}

	for _, p := range s.players {
		p.Reset()
	}
	s.winner = ""
	s.currentTurn = ""
	s.phase = PhasePlacement
	return nil
}

// PlaceShips installs the fleet of playerID. When both fleets are in place
// the session enters BATTLE and battleStarted is true.
func (s *Session) PlaceShips(playerID string, footprints [][]Coordinate) (battleStarted bool, err error) {
	p := s.players[playerID]
	if p == nil {
		return false, ErrUnknownPlayer
	}
	if s.phase != PhasePlacement {
		return false, ErrWrongPhase
	}
	if p.ShipsPlaced {
		return false, ErrAlreadyPlaced
	}
	if !anyInBounds(footprints) {
		return false, ErrEmptyFleet
	}

	p.PlaceShips(footprints)

	if !s.allPlaced() {
		return false, nil
	}
	s.startBattle()
	return true, nil
}

// Shoot resolves a single shot. A hit or a sunk ship keeps the turn; a miss
// passes it. Emptying the opponent's fleet ends the game.
func (s *Session) Shoot(shooterID string, target Coordinate) (ShotOutcome, error) {
	if err := s.checkTurn(shooterID); err != nil {
		return ShotOutcome{}, err
	}

	outcome := s.resolve(shooterID, target)
	if outcome.GameOver {
		return outcome, nil
	}
	if outcome.Result == ResultMiss {
		s.switchTurn()
	}
	return outcome, nil
}

// Volley resolves a bomb or air-strike target list in order. The turn passes
// at the end whatever the results; a volley that ends the game stops at the
// cell that sank the last ship.
func (s *Session) Volley(shooterID string, targets []Coordinate) ([]ShotOutcome, error) {
	if err := s.checkTurn(shooterID); err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	outcomes := make([]ShotOutcome, 0, len(targets))
	for _, t := range targets {
		outcome := s.resolve(shooterID, t)
		outcomes = append(outcomes, outcome)
		if outcome.GameOver {
			return outcomes, nil
		}
	}

	s.switchTurn()
	return outcomes, nil
}

// Snapshot returns a copy of the public session state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:       s.phase,
		CurrentTurn: s.currentTurn,
		Winner:      s.winner,
		Players:     make([]PlayerStatus, 0, len(s.order)),
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, PlayerStatus{
			ID:    id,
			Ready: s.players[id].ShipsPlaced,
		})
	}
	return snap
}

// Helper functions

func (s *Session) checkTurn(playerID string) error {
	if s.players[playerID] == nil {
		return ErrUnknownPlayer
	}
	if s.phase != PhaseBattle {
		return ErrWrongPhase
	}
	if s.currentTurn != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (s *Session) resolve(shooterID string, target Coordinate) ShotOutcome {
	opponent := s.getOpponent(shooterID)

	result, ship := opponent.ReceiveShot(target)
	outcome := ShotOutcome{
		X:       target.X,
		Y:       target.Y,
		Result:  result,
		Shooter: shooterID,
		Target:  opponent.ID,
	}
	if result == ResultSunk {
		outcome.Ship = ship.Info()
	}

	if opponent.AllShipsSunk() {
		outcome.GameOver = true
		s.endGame(shooterID)
	}
	return outcome
}

func anyInBounds(footprints [][]Coordinate) bool {
	for _, fp := range footprints {
		for _, c := range fp {
			if c.InBounds() {
				return true
			}
		}
	}
	return false
}

func (s *Session) allPlaced() bool {
	if len(s.order) != s.maxPlayers {
		return false
	}
	for _, p := range s.players {
		if !p.ShipsPlaced {
			return false
		}
	}
	return true
}

func (s *Session) startBattle() {
	s.phase = PhaseBattle
	s.currentTurn = s.pickStarter(s.PlayerIDs())
}

func (s *Session) endGame(winner string) {
	s.phase = PhaseGameOver
	s.winner = winner
	s.currentTurn = ""
}

func (s *Session) switchTurn() {
	if opponent := s.getOpponent(s.currentTurn); opponent != nil {
		s.currentTurn = opponent.ID
	}
}

func (s *Session) reset() {
	s.phase = PhaseWaiting
	s.currentTurn = ""
	s.winner = ""
	for _, p := range s.players {
		p.Reset()
	}
}

func (s *Session) getOpponent(playerID string) *Player {
	for _, id := range s.order {
		if id != playerID {
			return s.players[id]
		}
	}
	return nil
}
