package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/caravan-wars/game/world"
)

// HelpText lists the console commands.
const HelpText = `Commands:
  help                 show this help
  info                 show your caravan status
  price <CODE>         list prices at a location
  move <CODE>          travel to a neighbouring location (no default)
  buy <GOOD> [N]       buy N (default 1) of a good here
  sell <GOOD> [N]      sell N (default 1) of a good here
  speed <0|1|2>        pause, play or fast-forward`

// Exec parses and runs one console line on behalf of playerID. Unknown
// commands and codes are reported as error notifications and returned as
// errors; they never change state.
func (s *Simulation) Exec(playerID int, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if _, err := s.player(playerID); err != nil {
		return err
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "help", "?":
		s.notify(NoteInfo, playerID, "%s\nCodes: %s", HelpText, strings.Join(s.world.Codes(), ", "))
		return nil
	case "info", "status":
		return s.cmdInfo(playerID)
	case "price", "prices":
		return s.cmdPrice(playerID, args)
	case "move", "go":
		return s.cmdMove(playerID, args)
	case "buy":
		return s.cmdTrade(playerID, args, s.Buy)
	case "sell":
		return s.cmdTrade(playerID, args, s.Sell)
	case "speed":
		return s.cmdSpeed(playerID, args)
	}
	return s.fail(playerID, fmt.Errorf("%w: %s", ErrUnknownCommand, verb), "Unknown command: %s. Type help.", verb)
}

func (s *Simulation) cmdInfo(playerID int) error {
	p := s.players[playerID]
	where := s.locName(p.Location)
	if p.Moving {
		where = fmt.Sprintf("%s -> %s (%.0f%%)", s.locName(p.From), s.locName(p.To), p.Progress*100)
	}
	s.notify(NoteInfo, playerID, "Location: %s | Speed: %.1f | Tick: %d | Cargo: %d/%d | Gold: %d | Caravans: %d",
		where, p.Speed(), s.ticks, p.CargoUsed(), p.Capacity(), p.Gold, len(p.Units))
	return nil
}

func (s *Simulation) cmdPrice(playerID int, args []string) error {
	if len(args) == 0 {
		return s.fail(playerID, ErrUsage, "Usage: price <CODE>")
	}
	code := world.NormalizeCode(args[0])
	if !s.world.HasLocation(code) {
		return s.fail(playerID, fmt.Errorf("%w: %s", ErrUnknownLocation, code), "Unknown market code: %s", code)
	}

	parts := make([]string, 0, len(world.Goods()))
	for _, g := range world.Goods() {
		parts = append(parts, fmt.Sprintf("%s %d (stock %d)", g, s.market.PriceOf(code, g), s.market.StockOf(code, g)))
	}
	s.notify(NoteInfo, playerID, "Prices at %s: %s", s.locName(code), strings.Join(parts, ", "))
	return nil
}

func (s *Simulation) cmdMove(playerID int, args []string) error {
	// There is no default destination; a bare move is a usage error.
	if len(args) == 0 {
		return s.fail(playerID, ErrUsage, "Usage: move <CODE>")
	}
	code := world.NormalizeCode(args[0])
	if !s.world.HasLocation(code) {
		return s.fail(playerID, fmt.Errorf("%w: %s", ErrUnknownLocation, code), "Unknown code: %s", code)
	}
	return s.StartTravel(playerID, code)
}

func (s *Simulation) cmdTrade(playerID int, args []string, trade func(int, world.Good, int) error) error {
	if len(args) == 0 || len(args) > 2 {
		return s.fail(playerID, ErrUsage, "Usage: buy|sell <GOOD> [N]")
	}
	good, err := world.ParseGood(args[0])
	if err != nil {
		return s.fail(playerID, err, "Unknown good: %s", args[0])
	}
	amount := 1
	if len(args) == 2 {
		amount, err = strconv.Atoi(args[1])
		if err != nil {
			return s.fail(playerID, ErrUsage, "Amount must be a number: %s", args[1])
		}
	}
	return trade(playerID, good, amount)
}

func (s *Simulation) cmdSpeed(playerID int, args []string) error {
	if len(args) != 1 {
		return s.fail(playerID, ErrUsage, "Usage: speed <0|1|2>")
	}
	m, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return s.fail(playerID, ErrUsage, "Speed must be a number: %s", args[0])
	}
	if err := s.SetTimeMultiplier(m); err != nil {
		return s.fail(playerID, err, "Speed must be zero or positive.")
	}
	s.notify(NoteInfo, playerID, "Time speed set to %gx.", m)
	return nil
}
