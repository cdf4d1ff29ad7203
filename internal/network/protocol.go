// Package network handles all network communication protocols
package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"naval-combat/internal/game"
)

// MessageType represents different types of messages
type MessageType string

const (
	// Server -> client
	MsgPlayerConnect    MessageType = "player_connect"
	MsgPlayersReady     MessageType = "players_ready"
	MsgGameStart        MessageType = "game_start"
	MsgGameUpdate       MessageType = "game_update"
	MsgShotResult       MessageType = "shot_result"
	MsgGameOver         MessageType = "game_over"
	MsgPlayerDisconnect MessageType = "player_disconnect"
	MsgError            MessageType = "error"

	// Client -> server
	MsgPlaceShips MessageType = "place_ships"
	MsgShot       MessageType = "shot"
	MsgBombAttack MessageType = "bomb_attack"
	MsgAirStrike  MessageType = "air_strike"
	MsgStartGame  MessageType = "start_game"
)

// IsClientMessage reports whether t is a type the server accepts
func (t MessageType) IsClientMessage() bool {
	switch t {
	case MsgPlaceShips, MsgShot, MsgBombAttack, MsgAirStrike, MsgStartGame:
		return true
	}
	return false
}

// User-visible texts
const (
	TextServerFull       = "Servidor lleno. Máximo 2 jugadores."
	TextNotYourTurn      = "No es tu turno"
	TextWrongPhase       = "Acción no válida en esta fase"
	TextNotEnoughPlayers = "Se necesitan 2 jugadores"
	TextAlreadyPlaced    = "Ya colocaste tus barcos"
	TextEmptyFleet       = "Ningún barco quedó dentro del tablero"
	TextInvalidData      = "Datos inválidos"
	TextGameStart        = "¡Ambos jugadores conectados! Coloca tus barcos."
	TextVictory          = "¡Victoria! Hundiste toda la flota enemiga."
	TextDefeat           = "Derrota. Tu flota ha sido hundida."
	TextOpponentLeft     = "Tu oponente se ha desconectado. Volviendo al menú."
)

var (
	// ErrInvalidUTF8 is returned for frames that are not valid UTF-8
	ErrInvalidUTF8 = errors.New("frame is not valid UTF-8")
	// ErrUnknownType is returned for frames with a type the server does not handle
	ErrUnknownType = errors.New("unknown message type")
)

// Message represents one frame exchanged between client and server
type Message struct {
	Type     MessageType            `json:"type"`
	PlayerID string                 `json:"player_id,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Coord is a coordinate on the wire: [x, y]
type Coord [2]int

// ToCoordinate converts a wire coordinate to a board coordinate
func (c Coord) ToCoordinate() game.Coordinate {
	return game.Coordinate{X: c[0], Y: c[1]}
}

// PlaceShipsRequest is the payload of place_ships. Footprint sizes are not
// checked here: off-board cells are dropped first and the board caps the rest.
type PlaceShipsRequest struct {
	Ships [][]Coord `json:"ships" validate:"required,min=1"`
}

// Footprints converts the request into board coordinates
func (r PlaceShipsRequest) Footprints() [][]game.Coordinate {
	out := make([][]game.Coordinate, len(r.Ships))
	for i, ship := range r.Ships {
		out[i] = toCoordinates(ship)
	}
	return out
}

// ShotRequest is the payload of shot
type ShotRequest struct {
	X *int `json:"x" validate:"required"`
	Y *int `json:"y" validate:"required"`
}

// Coordinate returns the target cell
func (r ShotRequest) Coordinate() game.Coordinate {
	return game.Coordinate{X: *r.X, Y: *r.Y}
}

// BombRequest is the payload of bomb_attack
type BombRequest struct {
	Targets []Coord `json:"targets" validate:"min=1,max=9"`
}

// AirStrikeRequest is the payload of air_strike
type AirStrikeRequest struct {
	Targets []Coord `json:"targets" validate:"min=1,max=10"`
}

// Coordinates converts the targets, keeping their order
func (r BombRequest) Coordinates() []game.Coordinate { return toCoordinates(r.Targets) }

// Coordinates converts the targets, keeping their order
func (r AirStrikeRequest) Coordinates() []game.Coordinate { return toCoordinates(r.Targets) }

// PlayerReadyInfo is the per-player entry of game_update
type PlayerReadyInfo struct {
	Ready bool `json:"ready"`
}

// ShipInfoPayload describes a sunk ship on the wire
type ShipInfoPayload struct {
	Name      string  `json:"name"`
	Size      int     `json:"size"`
	Positions []Coord `json:"positions"`
}

func toCoordinates(cs []Coord) []game.Coordinate {
	out := make([]game.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = c.ToCoordinate()
	}
	return out
}

// Helper functions for creating messages

// NewMessage creates a new message with an empty payload
func NewMessage(msgType MessageType, playerID string) *Message {
	return &Message{
		Type:     msgType,
		PlayerID: playerID,
		Data:     make(map[string]interface{}),
	}
}

// SetData sets data payload for a message
func (m *Message) SetData(key string, value interface{}) {
	if m.Data == nil {
		m.Data = make(map[string]interface{})
	}
	m.Data[key] = value
}

// GetData retrieves data from message payload
func (m *Message) GetData(key string) (interface{}, bool) {
	if m.Data == nil {
		return nil, false
	}
	value, exists := m.Data[key]
	return value, exists
}

// Bind decodes the payload into v and validates it
func (m *Message) Bind(v interface{}, validate *validator.Validate) error {
	raw, err := json.Marshal(m.Data)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", m.Type, err)
	}
	return nil
}

// ToJSON converts message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates message from JSON bytes
func FromJSON(data []byte) (*Message, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ParseClientMessage decodes a client frame and rejects unknown types
func ParseClientMessage(data []byte) (*Message, error) {
	msg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if !msg.Type.IsClientMessage() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// NewValidator returns the validator used for inbound payloads
func NewValidator() *validator.Validate {
	return validator.New()
}

// Server -> client messages

// CreatePlayerConnectMessage tells a new connection its identifier
func CreatePlayerConnectMessage(playerID string) *Message {
	msg := NewMessage(MsgPlayerConnect, "")
	msg.SetData("player_id", playerID)
	return msg
}

// CreatePlayersReadyMessage reports the connected population
func CreatePlayersReadyMessage(connected, maxPlayers int, phase game.Phase) *Message {
	msg := NewMessage(MsgPlayersReady, "")
	msg.SetData("connected_players", connected)
	msg.SetData("max_players", maxPlayers)
	msg.SetData("players_ready", connected == maxPlayers)
	msg.SetData("game_state", phase.String())
	return msg
}

// CreateGameStartMessage announces the placement phase
func CreateGameStartMessage() *Message {
	msg := NewMessage(MsgGameStart, "")
	msg.SetData("phase", "placement")
	msg.SetData("message", TextGameStart)
	msg.SetData("redirect_to_game", true)
	return msg
}

// CreateGameUpdateMessage carries phase, turn and readiness
func CreateGameUpdateMessage(snap game.Snapshot) *Message {
	msg := NewMessage(MsgGameUpdate, "")
	msg.SetData("phase", snap.Phase.String())
	if snap.CurrentTurn == "" {
		msg.SetData("current_turn", nil)
	} else {
		msg.SetData("current_turn", snap.CurrentTurn)
	}

	players := make(map[string]PlayerReadyInfo, len(snap.Players))
	for _, p := range snap.Players {
		players[p.ID] = PlayerReadyInfo{Ready: p.Ready}
	}
	msg.SetData("players", players)
	return msg
}

// CreateShotResultMessage reports one resolved cell
func CreateShotResultMessage(outcome game.ShotOutcome) *Message {
	msg := NewMessage(MsgShotResult, "")
	msg.SetData("x", outcome.X)
	msg.SetData("y", outcome.Y)
	msg.SetData("result", string(outcome.Result))
	msg.SetData("shooter", outcome.Shooter)
	msg.SetData("target", outcome.Target)

	if outcome.Result == game.ResultSunk && outcome.Ship != nil {
		positions := make([]Coord, len(outcome.Ship.Positions))
		for i, p := range outcome.Ship.Positions {
			positions[i] = Coord{p.X, p.Y}
		}
		msg.SetData("ship_info", ShipInfoPayload{
			Name:      outcome.Ship.Name,
			Size:      outcome.Ship.Size,
			Positions: positions,
		})
	}
	return msg
}

// CreateGameOverMessage builds the recipient-relative end of game notice
func CreateGameOverMessage(winner string, isWinner bool) *Message {
	msg := NewMessage(MsgGameOver, "")
	msg.SetData("winner", winner)
	msg.SetData("is_winner", isWinner)
	if isWinner {
		msg.SetData("message", TextVictory)
	} else {
		msg.SetData("message", TextDefeat)
	}
	return msg
}

// CreatePlayerDisconnectMessage tells the survivor the game was aborted
func CreatePlayerDisconnectMessage(disconnected string) *Message {
	msg := NewMessage(MsgPlayerDisconnect, "")
	msg.SetData("disconnected_player", disconnected)
	msg.SetData("message", TextOpponentLeft)
	msg.SetData("return_to_menu", true)
	return msg
}

// CreateErrorMessage creates error message
func CreateErrorMessage(text string) *Message {
	msg := NewMessage(MsgError, "")
	msg.SetData("error", text)
	return msg
}

// Client -> server messages

// CreateStartGameMessage asks the server to enter placement
func CreateStartGameMessage(playerID string) *Message {
	return NewMessage(MsgStartGame, playerID)
}

// CreatePlaceShipsMessage submits a fleet
func CreatePlaceShipsMessage(playerID string, ships [][]Coord) *Message {
	msg := NewMessage(MsgPlaceShips, playerID)
	msg.SetData("ships", ships)
	return msg
}

// CreateShotMessage fires at one cell
func CreateShotMessage(playerID string, x, y int) *Message {
	msg := NewMessage(MsgShot, playerID)
	msg.SetData("x", x)
	msg.SetData("y", y)
	return msg
}

// CreateVolleyMessage builds a bomb_attack or air_strike
func CreateVolleyMessage(msgType MessageType, playerID string, targets []Coord) *Message {
	msg := NewMessage(msgType, playerID)
	msg.SetData("targets", targets)
	return msg
}
