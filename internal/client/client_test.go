package client

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/fatih/color"

	"naval-combat/internal/game"
	"naval-combat/internal/network"
)

func newTestClient(t *testing.T) (*Client, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	c := NewClient("127.0.0.1:0", strings.NewReader(""), &out)
	return c, &out
}

func feed(t *testing.T, c *Client, msg *network.Message) {
	t.Helper()
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if err := c.processServerMessage(data); err != nil {
		t.Fatalf("processServerMessage(%s): %v", msg.Type, err)
	}
}

func TestClientTracksSession(t *testing.T) {
	c, out := newTestClient(t)

	feed(t, c, network.CreatePlayerConnectMessage("P1"))
	if c.playerID != "P1" {
		t.Fatalf("playerID = %q", c.playerID)
	}

	feed(t, c, network.CreatePlayersReadyMessage(2, 2, game.PhaseWaiting))
	if !strings.Contains(out.String(), "type 'start'") {
		t.Errorf("lobby prompt missing: %q", out.String())
	}

	feed(t, c, network.CreateGameStartMessage())
	if c.phase != "placement_phase" {
		t.Errorf("phase = %q", c.phase)
	}

	feed(t, c, network.CreateGameUpdateMessage(game.Snapshot{Phase: game.PhaseBattle, CurrentTurn: "P1"}))
	if c.currentTurn != "P1" {
		t.Errorf("currentTurn = %q", c.currentTurn)
	}
	if !strings.Contains(out.String(), "Your turn") {
		t.Errorf("turn prompt missing: %q", out.String())
	}
}

func TestClientMarksBoards(t *testing.T) {
	c, out := newTestClient(t)
	feed(t, c, network.CreatePlayerConnectMessage("P1"))
	c.ownBoard.PlaceFleet([][]network.Coord{{{0, 0}, {1, 0}}})

	feed(t, c, network.CreateShotResultMessage(game.ShotOutcome{X: 5, Y: 5, Result: game.ResultHit, Shooter: "P1", Target: "P2"}))
	feed(t, c, network.CreateShotResultMessage(game.ShotOutcome{X: 9, Y: 9, Result: game.ResultMiss, Shooter: "P1", Target: "P2"}))
	feed(t, c, network.CreateShotResultMessage(game.ShotOutcome{X: 0, Y: 0, Result: game.ResultHit, Shooter: "P2", Target: "P1"}))
	feed(t, c, network.CreateShotResultMessage(game.ShotOutcome{
		X: 5, Y: 6, Result: game.ResultSunk, Shooter: "P1", Target: "P2",
		Ship: &game.ShipInfo{Name: "Lancha Rapida", Size: 2, Positions: []game.Coordinate{{X: 5, Y: 5}, {X: 5, Y: 6}}},
	}))

	tests := []struct {
		board *Board
		x, y  int
		want  game.CellState
	}{
		{&c.enemyBoard, 5, 5, game.CellHit},
		{&c.enemyBoard, 5, 6, game.CellHit},
		{&c.enemyBoard, 9, 9, game.CellWaterHit},
		{&c.ownBoard, 0, 0, game.CellHit},
		{&c.ownBoard, 1, 0, game.CellShip},
	}
	for _, tt := range tests {
		if got := tt.board.Cell(tt.x, tt.y); got != tt.want {
			t.Errorf("cell (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if !strings.Contains(out.String(), "Lancha Rapida sunk") {
		t.Errorf("sunk line missing: %q", out.String())
	}
}

func TestClientGameOverAndDisconnect(t *testing.T) {
	c, out := newTestClient(t)
	feed(t, c, network.CreatePlayerConnectMessage("P2"))

	feed(t, c, network.CreateGameOverMessage("P1", false))
	if c.phase != "game_over" {
		t.Errorf("phase = %q", c.phase)
	}
	if !strings.Contains(out.String(), "DEFEAT!") {
		t.Errorf("defeat line missing: %q", out.String())
	}

	c.enemyBoard.Mark(3, 3, game.ResultHit)
	feed(t, c, network.CreatePlayerDisconnectMessage("P1"))
	if c.phase != "waiting_players" || c.enemyBoard.Cell(3, 3) != game.CellEmpty {
		t.Errorf("disconnect did not reset local state")
	}
	if !strings.Contains(out.String(), network.TextOpponentLeft) {
		t.Errorf("disconnect notice missing: %q", out.String())
	}

	feed(t, c, network.CreateErrorMessage(network.TextNotYourTurn))
	if !strings.Contains(out.String(), "[ERROR] "+network.TextNotYourTurn) {
		t.Errorf("error line missing: %q", out.String())
	}
}

func TestClientSendsFrames(t *testing.T) {
	c, _ := newTestClient(t)
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	c.conn = local
	c.writer = bufio.NewWriter(local)
	c.playerID = "P1"
	c.phase = game.PhasePlacement.String()

	received := make(chan []byte, 1)
	go func() {
		frame, err := network.NewFrameReader(remote).ReadFrame()
		if err != nil {
			close(received)
			return
		}
		received <- frame
	}()

	cmd, _ := ParseCommand("place 0,0 1,0")
	if err := c.execute(cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := `{"type":"place_ships","player_id":"P1","data":{"ships":[[[0,0],[1,0]]]}}`
	if got := string(<-received); got != want {
		t.Errorf("frame = %s, want %s", got, want)
	}
	if c.ownBoard.Cell(1, 0) != game.CellEmpty {
		t.Error("fleet drawn before the server accepted it")
	}
	if len(c.pendingFleet) != 1 {
		t.Errorf("pendingFleet = %v", c.pendingFleet)
	}
}

func TestClientDrawsFleetWhenBattleStarts(t *testing.T) {
	c, out := newTestClient(t)
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	c.conn = local
	c.writer = bufio.NewWriter(local)

	go func() {
		frames := network.NewFrameReader(remote)
		for {
			if _, err := frames.ReadFrame(); err != nil {
				return
			}
		}
	}()

	feed(t, c, network.CreatePlayerConnectMessage("P1"))
	feed(t, c, network.CreateGameStartMessage())

	for _, line := range []string{"place 10,0 11,0", "place 0,0 1,0", "place 5,5 6,5"} {
		cmd, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("ParseCommand(%q): %v", line, err)
		}
		if err := c.execute(cmd); err != nil {
			t.Fatalf("execute(%q): %v", line, err)
		}
	}
	feed(t, c, network.CreateErrorMessage(network.TextAlreadyPlaced))

	if c.ownBoard.Cell(0, 0) != game.CellEmpty {
		t.Error("fleet drawn before the battle started")
	}

	feed(t, c, network.CreateGameUpdateMessage(game.Snapshot{Phase: game.PhaseBattle, CurrentTurn: "P2"}))

	tests := []struct {
		x, y int
		want game.CellState
	}{
		{0, 0, game.CellShip},
		{1, 0, game.CellShip},
		{5, 5, game.CellEmpty},
		{9, 0, game.CellEmpty},
	}
	for _, tt := range tests {
		if got := c.ownBoard.Cell(tt.x, tt.y); got != tt.want {
			t.Errorf("cell (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if c.pendingFleet != nil {
		t.Errorf("pendingFleet not cleared: %v", c.pendingFleet)
	}
	if !strings.Contains(out.String(), network.TextAlreadyPlaced) {
		t.Errorf("rejection not shown: %q", out.String())
	}
}

func TestClientDropsPendingFleetOnRestart(t *testing.T) {
	c, _ := newTestClient(t)
	feed(t, c, network.CreatePlayerConnectMessage("P1"))
	feed(t, c, network.CreateGameStartMessage())
	c.pendingFleet = [][]network.Coord{{{0, 0}}}

	feed(t, c, network.CreatePlayerDisconnectMessage("P2"))
	if c.pendingFleet != nil {
		t.Error("disconnect kept the pending fleet")
	}

	c.pendingFleet = [][]network.Coord{{{0, 0}}}
	feed(t, c, network.CreateGameStartMessage())
	if c.pendingFleet != nil {
		t.Error("game_start kept the pending fleet")
	}
}

func TestBoardIgnoresOutOfBounds(t *testing.T) {
	var b Board
	b.PlaceFleet([][]network.Coord{{{9, 9}, {10, 9}}})
	b.Mark(-1, 0, game.ResultHit)
	if b.Cell(9, 9) != game.CellShip || b.Cell(10, 9) != game.CellEmpty {
		t.Errorf("unexpected board state")
	}
}

func TestBoardKeepsServerShipSize(t *testing.T) {
	var b Board
	b.PlaceFleet([][]network.Coord{
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0}},
		{{0, 0}, {0, 1}},
	})
	if b.Cell(4, 0) != game.CellShip || b.Cell(5, 0) != game.CellEmpty {
		t.Errorf("ship not cut to %d cells", game.MaxShipSize)
	}
	if b.Cell(0, 1) != game.CellShip {
		t.Error("overlapping ship lost its free cell")
	}
}
