package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"naval-combat/internal/network"
)

// CommandKind identifies a console command
type CommandKind string

const (
	CmdStart CommandKind = "start"
	CmdPlace CommandKind = "place"
	CmdShot  CommandKind = "shot"
	CmdBomb  CommandKind = "bomb"
	CmdAir   CommandKind = "air"
	CmdBoard CommandKind = "board"
	CmdHelp  CommandKind = "help"
	CmdQuit  CommandKind = "quit"
)

// Command is one parsed console line
type Command struct {
	Kind    CommandKind
	Ships   [][]network.Coord
	Targets []network.Coord
}

var (
	errEmptyCommand   = errors.New("empty command")
	errUnknownCommand = errors.New("unknown command, type 'help'")
)

// ParseCommand turns a console line into a Command.
//
//	start
//	place 0,0 1,0; 5,5 5,6 5,7
//	shot 3 4
//	bomb 3 4   (2x2 block anchored at 3,4)
//	air 2 7    (3 cells of row 7 starting at x=2)
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errEmptyCommand
	}

	kind := CommandKind(strings.ToLower(fields[0]))
	args := fields[1:]

	switch kind {
	case CmdStart, CmdBoard, CmdHelp, CmdQuit:
		return Command{Kind: kind}, nil

	case CmdPlace:
		rest := strings.TrimSpace(line[strings.Index(line, fields[0])+len(fields[0]):])
		ships, err := parseFleet(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Ships: ships}, nil

	case CmdShot, CmdBomb, CmdAir:
		x, y, err := parseXY(args)
		if err != nil {
			return Command{}, err
		}
		cmd := Command{Kind: kind}
		switch kind {
		case CmdShot:
			cmd.Targets = []network.Coord{{x, y}}
		case CmdBomb:
			cmd.Targets = BombTargets(x, y)
		case CmdAir:
			cmd.Targets = AirStrikeTargets(x, y)
		}
		return cmd, nil
	}

	return Command{}, errUnknownCommand
}

// Message encodes the command as a client frame. Local commands return nil.
func (c Command) Message(playerID string) *network.Message {
	switch c.Kind {
	case CmdStart:
		return network.CreateStartGameMessage(playerID)
	case CmdPlace:
		return network.CreatePlaceShipsMessage(playerID, c.Ships)
	case CmdShot:
		return network.CreateShotMessage(playerID, c.Targets[0][0], c.Targets[0][1])
	case CmdBomb:
		return network.CreateVolleyMessage(network.MsgBombAttack, playerID, c.Targets)
	case CmdAir:
		return network.CreateVolleyMessage(network.MsgAirStrike, playerID, c.Targets)
	}
	return nil
}

// BombTargets returns the 2x2 block anchored at (x, y)
func BombTargets(x, y int) []network.Coord {
	return []network.Coord{{x, y}, {x + 1, y}, {x, y + 1}, {x + 1, y + 1}}
}

// AirStrikeTargets returns three consecutive cells of row y starting at x
func AirStrikeTargets(x, y int) []network.Coord {
	return []network.Coord{{x, y}, {x + 1, y}, {x + 2, y}}
}

func parseFleet(s string) ([][]network.Coord, error) {
	var ships [][]network.Coord
	for _, group := range strings.Split(s, ";") {
		cells := strings.Fields(group)
		if len(cells) == 0 {
			continue
		}
		ship := make([]network.Coord, 0, len(cells))
		for _, cell := range cells {
			c, err := parseCell(cell)
			if err != nil {
				return nil, err
			}
			ship = append(ship, c)
		}
		ships = append(ships, ship)
	}
	if len(ships) == 0 {
		return nil, errors.New("usage: place x,y x,y; x,y ...")
	}
	return ships, nil
}

func parseCell(s string) (network.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return network.Coord{}, fmt.Errorf("invalid cell %q, expected x,y", s)
	}
	x, y, err := parseXY(parts)
	if err != nil {
		return network.Coord{}, err
	}
	return network.Coord{x, y}, nil
}

func parseXY(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, errors.New("expected two coordinates: x y")
	}
	x, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q", args[1])
	}
	return x, y, nil
}

// InputHandler reads console commands
type InputHandler struct {
	scanner *bufio.Scanner
	display *Display
}

// NewInputHandler creates a new input handler over r
func NewInputHandler(r io.Reader, display *Display) *InputHandler {
	return &InputHandler{
		scanner: bufio.NewScanner(r),
		display: display,
	}
}

// NextCommand blocks until a valid command is read. It returns io.EOF when
// the input is exhausted.
func (ih *InputHandler) NextCommand() (Command, error) {
	for {
		ih.display.PrintPrompt()

		if !ih.scanner.Scan() {
			if err := ih.scanner.Err(); err != nil {
				return Command{}, err
			}
			return Command{}, io.EOF
		}

		cmd, err := ParseCommand(ih.scanner.Text())
		if errors.Is(err, errEmptyCommand) {
			continue
		}
		if err != nil {
			ih.display.PrintWarning(err.Error())
			continue
		}
		return cmd, nil
	}
}
