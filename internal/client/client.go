package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"naval-combat/internal/game"
	"naval-combat/internal/network"
	"naval-combat/pkg/logger"
)

// Client represents the game client
type Client struct {
	conn        net.Conn
	writer      *bufio.Writer
	frames      *network.FrameReader
	display     *Display
	input       *InputHandler
	logger      *logger.Logger
	serverAddr  string
	playerID    string
	phase       string
	currentTurn string
	ownBoard    Board
	enemyBoard  Board
	// pendingFleet is the fleet sent in place_ships, drawn on ownBoard once
	// the server starts the battle with it
	pendingFleet [][]network.Coord
	isConnected bool
	mu          sync.Mutex
	done        chan struct{}
}

// Payloads of the server frames the client renders
type (
	playersReadyPayload struct {
		ConnectedPlayers int    `json:"connected_players"`
		MaxPlayers       int    `json:"max_players"`
		PlayersReady     bool   `json:"players_ready"`
		GameState        string `json:"game_state"`
	}

	gameUpdatePayload struct {
		Phase       string  `json:"phase"`
		CurrentTurn *string `json:"current_turn"`
	}

	shotResultPayload struct {
		X        int                      `json:"x"`
		Y        int                      `json:"y"`
		Result   game.ShotResult          `json:"result"`
		Shooter  string                   `json:"shooter"`
		Target   string                   `json:"target"`
		ShipInfo *network.ShipInfoPayload `json:"ship_info"`
	}

	gameOverPayload struct {
		Winner   string `json:"winner"`
		IsWinner bool   `json:"is_winner"`
		Message  string `json:"message"`
	}
)

// NewClient creates a client reading commands from in and rendering to out
func NewClient(serverAddr string, in io.Reader, out io.Writer) *Client {
	display := NewDisplay(out)
	return &Client{
		display:    display,
		input:      NewInputHandler(in, display),
		logger:     logger.Client,
		serverAddr: serverAddr,
		done:       make(chan struct{}),
	}
}

// Start connects and runs the console loop until quit, end of input or
// loss of the connection
func (c *Client) Start() error {
	c.display.PrintBanner()

	if err := c.connectToServer(); err != nil {
		c.display.PrintError(fmt.Sprintf("Failed to connect to server: %v", err))
		return err
	}

	go c.messageHandler()

	return c.runInputLoop()
}

// connectToServer establishes TCP connection
func (c *Client) connectToServer() error {
	c.display.PrintInfo("Connecting to server...")

	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.writer = bufio.NewWriter(conn)
	c.frames = network.NewFrameReader(conn)
	c.isConnected = true

	c.display.PrintServerStatus("Connected to server")
	c.logger.Info("Connected to server at %s", c.serverAddr)
	return nil
}

func (c *Client) runInputLoop() error {
	commands := make(chan Command)
	inputErr := make(chan error, 1)

	go func() {
		for {
			cmd, err := c.input.NextCommand()
			if err != nil {
				inputErr <- err
				return
			}
			select {
			case commands <- cmd:
			case <-c.done:
				return
			}
		}
	}()

	for {
		select {
		case <-c.done:
			c.display.PrintError("Connection closed by server")
			return nil
		case err := <-inputErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case cmd := <-commands:
			if cmd.Kind == CmdQuit {
				c.display.PrintInfo("Thanks for playing!")
				return nil
			}
			if err := c.execute(cmd); err != nil {
				c.display.PrintError(fmt.Sprintf("Action failed: %v", err))
			}
		}
	}
}

// execute runs a local command or sends the matching frame
func (c *Client) execute(cmd Command) error {
	switch cmd.Kind {
	case CmdHelp:
		c.display.PrintHelp()
		return nil
	case CmdBoard:
		c.mu.Lock()
		c.display.PrintBoards(&c.ownBoard, &c.enemyBoard)
		c.mu.Unlock()
		return nil
	case CmdPlace:
		// The server keeps the first placement with a cell on the board and
		// refuses later ones with TextAlreadyPlaced.
		c.mu.Lock()
		if c.pendingFleet == nil && c.phase == game.PhasePlacement.String() && anyInBounds(cmd.Ships) {
			c.pendingFleet = cmd.Ships
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	id := c.playerID
	c.mu.Unlock()

	return c.sendMessage(cmd.Message(id))
}

// messageHandler processes incoming messages from server
func (c *Client) messageHandler() {
	defer close(c.done)

	for {
		data, err := c.frames.ReadFrame()
		if err != nil {
			if c.connected() {
				c.logger.Error("Lost connection to server: %v", err)
			}
			return
		}

		c.logger.Debug("Received raw message: %s", string(data))

		if err := c.processServerMessage(data); err != nil {
			c.logger.Error("Error processing server message: %v", err)
		}
	}
}

// processServerMessage handles incoming server messages
func (c *Client) processServerMessage(data []byte) error {
	msg, err := network.FromJSON(data)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Type {
	case network.MsgPlayerConnect:
		return c.handlePlayerConnect(msg)
	case network.MsgPlayersReady:
		return c.handlePlayersReady(msg)
	case network.MsgGameStart:
		return c.handleGameStart(msg)
	case network.MsgGameUpdate:
		return c.handleGameUpdate(msg)
	case network.MsgShotResult:
		return c.handleShotResult(msg)
	case network.MsgGameOver:
		return c.handleGameOver(msg)
	case network.MsgPlayerDisconnect:
		return c.handlePlayerDisconnect(msg)
	case network.MsgError:
		return c.handleError(msg)
	default:
		c.logger.Debug("Unhandled message type: %s", msg.Type)
	}
	return nil
}

func (c *Client) handlePlayerConnect(msg *network.Message) error {
	var payload struct {
		PlayerID string `json:"player_id"`
	}
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.playerID = payload.PlayerID
	c.display.PrintConnected(c.playerID)
	return nil
}

func (c *Client) handlePlayersReady(msg *network.Message) error {
	var payload playersReadyPayload
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.phase = payload.GameState
	c.display.PrintLobby(payload.ConnectedPlayers, payload.MaxPlayers, payload.PlayersReady)
	return nil
}

func (c *Client) handleGameStart(msg *network.Message) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.phase = game.PhasePlacement.String()
	c.currentTurn = ""
	c.pendingFleet = nil
	c.ownBoard.Reset()
	c.enemyBoard.Reset()
	c.display.PrintGameStart(payload.Message)
	return nil
}

func (c *Client) handleGameUpdate(msg *network.Message) error {
	var payload gameUpdatePayload
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.phase = payload.Phase
	c.currentTurn = ""
	if payload.CurrentTurn != nil {
		c.currentTurn = *payload.CurrentTurn
	}
	if c.phase == game.PhaseBattle.String() {
		if c.pendingFleet != nil {
			c.ownBoard.Reset()
			c.ownBoard.PlaceFleet(c.pendingFleet)
			c.pendingFleet = nil
		}
		c.display.PrintTurn(c.currentTurn == c.playerID)
	}
	return nil
}

func (c *Client) handleShotResult(msg *network.Message) error {
	var payload shotResultPayload
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}

	mine := payload.Shooter == c.playerID
	if mine {
		c.enemyBoard.Mark(payload.X, payload.Y, payload.Result)
	} else {
		c.ownBoard.Mark(payload.X, payload.Y, payload.Result)
	}

	shipName := ""
	if payload.ShipInfo != nil {
		shipName = payload.ShipInfo.Name
	}
	c.display.PrintShot(payload.X, payload.Y, payload.Result, mine, shipName)
	return nil
}

func (c *Client) handleGameOver(msg *network.Message) error {
	var payload gameOverPayload
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.phase = game.PhaseGameOver.String()
	c.currentTurn = ""
	c.display.PrintGameOver(payload.IsWinner, payload.Message)
	return nil
}

func (c *Client) handlePlayerDisconnect(msg *network.Message) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.phase = game.PhaseWaiting.String()
	c.currentTurn = ""
	c.pendingFleet = nil
	c.ownBoard.Reset()
	c.enemyBoard.Reset()
	c.display.PrintSeparator()
	c.display.PrintWarning(payload.Message)
	c.display.PrintSeparator()
	return nil
}

func (c *Client) handleError(msg *network.Message) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := msg.Bind(&payload, nil); err != nil {
		return err
	}
	c.display.PrintError(payload.Error)
	return nil
}

// Helper methods

func (c *Client) sendMessage(msg *network.Message) error {
	if msg == nil {
		return nil
	}
	if err := network.WriteFrame(c.writer, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return c.writer.Flush()
}

func (c *Client) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}

// Close closes the client connection
func (c *Client) Close() error {
	c.mu.Lock()
	c.isConnected = false
	c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
