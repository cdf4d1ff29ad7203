// Package client implements the terminal debug client
package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"naval-combat/internal/game"
)

type Display struct {
	out          io.Writer
	serverColor  *color.Color
	connectColor *color.Color
	gameColor    *color.Color
	hitColor     *color.Color
	missColor    *color.Color
	sunkColor    *color.Color
	winColor     *color.Color
	loseColor    *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	shipColor    *color.Color
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:          out,
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		hitColor:     color.New(color.FgRed),
		missColor:    color.New(color.FgBlue),
		sunkColor:    color.New(color.FgRed, color.Bold),
		winColor:     color.New(color.FgGreen, color.Bold, color.BgBlack),
		loseColor:    color.New(color.FgRed, color.Bold, color.BgBlack),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgWhite),
		shipColor:    color.New(color.FgHiBlack),
	}
}

func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║          NAVAL COMBAT CLIENT          ║
║        2 players, 10x10 waters        ║
╚═══════════════════════════════════════╝
`
	d.gameColor.Fprintln(d.out, banner)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// PrintServerStatus displays server connection status
func (d *Display) PrintServerStatus(message string) {
	d.serverColor.Fprintf(d.out, "[%s] [SERVER] %s\n", timestamp(), message)
}

// PrintConnected shows the identifier the server assigned
func (d *Display) PrintConnected(playerID string) {
	d.connectColor.Fprintf(d.out, "[%s] [CONNECTED] you are player %s\n", timestamp(), playerID)
}

// PrintLobby shows the connected population
func (d *Display) PrintLobby(connected, maxPlayers int, ready bool) {
	if ready {
		d.connectColor.Fprintf(d.out, "[%s] [LOBBY] %d/%d players, type 'start' to begin\n", timestamp(), connected, maxPlayers)
		return
	}
	d.infoColor.Fprintf(d.out, "[%s] [LOBBY] %d/%d players, waiting for an opponent\n", timestamp(), connected, maxPlayers)
}

// PrintGameStart announces the placement phase
func (d *Display) PrintGameStart(message string) {
	d.gameColor.Fprintf(d.out, "[%s] [GAME START] %s\n", timestamp(), message)
	d.infoColor.Fprintln(d.out, "Place your fleet: place x,y x,y; x,y x,y x,y ...")
}

// PrintTurn shows whose turn it is
func (d *Display) PrintTurn(myTurn bool) {
	if myTurn {
		d.gameColor.Fprintf(d.out, "[%s] [TURN] Your turn: shot, bomb or air\n", timestamp())
		return
	}
	d.infoColor.Fprintf(d.out, "[%s] [TURN] Waiting for the opponent...\n", timestamp())
}

// PrintShot displays one resolved cell from the viewpoint of the local player
func (d *Display) PrintShot(x, y int, result game.ShotResult, mine bool, shipName string) {
	who := "Opponent fired"
	if mine {
		who = "You fired"
	}

	switch result {
	case game.ResultSunk:
		d.sunkColor.Fprintf(d.out, "[%s] [SUNK] %s at (%d,%d): %s sunk!\n", timestamp(), who, x, y, shipName)
	case game.ResultHit:
		d.hitColor.Fprintf(d.out, "[%s] [HIT] %s at (%d,%d)\n", timestamp(), who, x, y)
	default:
		d.missColor.Fprintf(d.out, "[%s] [MISS] %s at (%d,%d)\n", timestamp(), who, x, y)
	}
}

// PrintGameOver displays the recipient-relative result
func (d *Display) PrintGameOver(isWinner bool, message string) {
	d.PrintSeparator()
	if isWinner {
		d.winColor.Fprintf(d.out, "VICTORY! %s\n", message)
	} else {
		d.loseColor.Fprintf(d.out, "DEFEAT! %s\n", message)
	}
	d.PrintSeparator()
	d.infoColor.Fprintln(d.out, "Type 'start' for a rematch.")
}

// PrintBoards renders the local fleet next to the shots fired at the opponent
func (d *Display) PrintBoards(own, enemy *Board) {
	d.infoColor.Fprintf(d.out, "\n%-24s    %s\n", "YOUR FLEET", "ENEMY WATERS")

	header := "   " + strings.Repeat("%d ", game.BoardSize)
	cols := make([]interface{}, game.BoardSize)
	for i := range cols {
		cols[i] = i
	}
	h := fmt.Sprintf(header, cols...)
	d.infoColor.Fprintf(d.out, "%-24s    %s\n", h, h)

	for y := 0; y < game.BoardSize; y++ {
		d.infoColor.Fprintf(d.out, "%2d ", y)
		d.printRow(own, y, true)
		d.infoColor.Fprintf(d.out, "    %2d ", y)
		d.printRow(enemy, y, false)
		fmt.Fprintln(d.out)
	}
}

func (d *Display) printRow(b *Board, y int, showShips bool) {
	for x := 0; x < game.BoardSize; x++ {
		switch b.Cell(x, y) {
		case game.CellHit:
			d.hitColor.Fprint(d.out, "X ")
		case game.CellWaterHit:
			d.missColor.Fprint(d.out, "o ")
		case game.CellShip:
			if showShips {
				d.shipColor.Fprint(d.out, "# ")
			} else {
				d.infoColor.Fprint(d.out, ". ")
			}
		default:
			d.infoColor.Fprint(d.out, ". ")
		}
	}
}

// PrintHelp lists the console commands
func (d *Display) PrintHelp() {
	d.infoColor.Fprintln(d.out, "Commands:")
	d.infoColor.Fprintln(d.out, "  start                      start the game (or a rematch)")
	d.infoColor.Fprintln(d.out, "  place x,y x,y; x,y ...     place ships, separated by ';'")
	d.infoColor.Fprintln(d.out, "  shot x y                   fire at one cell")
	d.infoColor.Fprintln(d.out, "  bomb x y                   2x2 block anchored at x,y")
	d.infoColor.Fprintln(d.out, "  air x y                    3 cells of row y from x")
	d.infoColor.Fprintln(d.out, "  board                      show both boards")
	d.infoColor.Fprintln(d.out, "  help | quit")
}

func (d *Display) PrintPrompt() {
	fmt.Fprint(d.out, "> ")
}

// PrintError displays error messages
func (d *Display) PrintError(message string) {
	d.loseColor.Fprintf(d.out, "[ERROR] %s\n", message)
}

// PrintWarning displays warning messages
func (d *Display) PrintWarning(message string) {
	d.warningColor.Fprintf(d.out, "[WARNING] %s\n", message)
}

// PrintInfo displays informational messages
func (d *Display) PrintInfo(message string) {
	d.infoColor.Fprintf(d.out, "[INFO] %s\n", message)
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	d.infoColor.Fprintln(d.out, "═══════════════════════════════════════════════════════════════")
}
