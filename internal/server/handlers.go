package server

import (
	"errors"

	"naval-combat/internal/game"
	"naval-combat/internal/network"
)

// processMessage dispatches one inbound frame. The server lock is held for
// the whole handler, outbound frames included.
func (s *Server) processMessage(client *Client, data []byte) {
	msg, err := network.ParseClientMessage(data)
	if err != nil {
		s.logger.Warn("Dropping frame from %s: %v", client.ID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients[client.ID] != client {
		return
	}

	s.logger.Debug("Received %s from %s", msg.Type, client.ID)

	switch msg.Type {
	case network.MsgStartGame:
		s.handleStartGame(client)
	case network.MsgPlaceShips:
		s.handlePlaceShips(client, msg)
	case network.MsgShot:
		s.handleShot(client, msg)
	case network.MsgBombAttack:
		s.handleBombAttack(client, msg)
	case network.MsgAirStrike:
		s.handleAirStrike(client, msg)
	}
}

func (s *Server) handleStartGame(client *Client) {
	if err := s.session.StartGame(); err != nil {
		s.rejectAction(client, network.MsgStartGame, err)
		return
	}

	s.logger.Info("Game started by %s, placement phase", client.ID)
	s.broadcast(network.CreateGameStartMessage())
}

func (s *Server) handlePlaceShips(client *Client, msg *network.Message) {
	var req network.PlaceShipsRequest
	if err := msg.Bind(&req, s.validate); err != nil {
		s.rejectPayload(client, msg.Type, err)
		return
	}

	battleStarted, err := s.session.PlaceShips(client.ID, req.Footprints())
	if err != nil {
		s.rejectAction(client, msg.Type, err)
		return
	}

	s.logger.Info("Player %s placed %d ships", client.ID, len(s.session.Player(client.ID).Ships))

	if battleStarted {
		s.logger.Info("Battle started, %s shoots first", s.session.CurrentTurn())
		s.broadcast(network.CreateGameUpdateMessage(s.session.Snapshot()))
	}
}

func (s *Server) handleShot(client *Client, msg *network.Message) {
	var req network.ShotRequest
	if err := msg.Bind(&req, s.validate); err != nil {
		s.rejectPayload(client, msg.Type, err)
		return
	}

	outcome, err := s.session.Shoot(client.ID, req.Coordinate())
	if err != nil {
		s.rejectAction(client, msg.Type, err)
		return
	}

	s.publishOutcomes([]game.ShotOutcome{outcome})
}

func (s *Server) handleBombAttack(client *Client, msg *network.Message) {
	var req network.BombRequest
	if err := msg.Bind(&req, s.validate); err != nil {
		s.rejectPayload(client, msg.Type, err)
		return
	}
	s.fireVolley(client, msg.Type, req.Coordinates())
}

func (s *Server) handleAirStrike(client *Client, msg *network.Message) {
	var req network.AirStrikeRequest
	if err := msg.Bind(&req, s.validate); err != nil {
		s.rejectPayload(client, msg.Type, err)
		return
	}
	s.fireVolley(client, msg.Type, req.Coordinates())
}

func (s *Server) fireVolley(client *Client, kind network.MessageType, targets []game.Coordinate) {
	outcomes, err := s.session.Volley(client.ID, targets)
	if err != nil {
		s.rejectAction(client, kind, err)
		return
	}

	s.logger.Info("Player %s fired %s: %d of %d targets resolved", client.ID, kind, len(outcomes), len(targets))
	s.publishOutcomes(outcomes)
}

// publishOutcomes broadcasts one shot_result per resolved cell, followed by
// either the per-recipient game_over or a game_update with the new turn
func (s *Server) publishOutcomes(outcomes []game.ShotOutcome) {
	for _, outcome := range outcomes {
		s.logger.Debug("Shot %s -> %s at %s: %s", outcome.Shooter, outcome.Target,
			game.Coordinate{X: outcome.X, Y: outcome.Y}, outcome.Result)
		s.broadcast(network.CreateShotResultMessage(outcome))
	}

	if len(outcomes) > 0 && outcomes[len(outcomes)-1].GameOver {
		s.announceWinner(s.session.Winner())
		return
	}
	s.broadcast(network.CreateGameUpdateMessage(s.session.Snapshot()))
}

func (s *Server) announceWinner(winner string) {
	s.logger.Info("Game over, winner: %s", winner)
	for _, id := range s.session.PlayerIDs() {
		s.sendMessage(s.clients[id], network.CreateGameOverMessage(winner, id == winner))
	}
}

func (s *Server) rejectPayload(client *Client, kind network.MessageType, err error) {
	s.logger.Warn("Invalid %s payload from %s: %v", kind, client.ID, err)
	s.sendError(client, network.TextInvalidData)
}

func (s *Server) rejectAction(client *Client, kind network.MessageType, err error) {
	s.logger.Warn("Rejected %s from %s: %v", kind, client.ID, err)
	s.sendError(client, errorText(err))
}

// errorText maps a session error to the text shown to the player
func errorText(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return network.TextNotYourTurn
	case errors.Is(err, game.ErrWrongPhase):
		return network.TextWrongPhase
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return network.TextNotEnoughPlayers
	case errors.Is(err, game.ErrAlreadyPlaced):
		return network.TextAlreadyPlaced
	case errors.Is(err, game.ErrEmptyFleet):
		return network.TextEmptyFleet
	case errors.Is(err, game.ErrSessionFull):
		return network.TextServerFull
	default:
		return network.TextInvalidData
	}
}
