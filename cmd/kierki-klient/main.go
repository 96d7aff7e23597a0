package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/client"
)

var CLI struct {
	Host  string `short:"h" required:"" help:"Server host"`
	Port  int    `short:"p" required:"" help:"Server port"`
	IPv4  bool   `name:"ipv4" short:"4" help:"Force IPv4"`
	IPv6  bool   `name:"ipv6" short:"6" help:"Force IPv6"`
	North bool   `short:"N" help:"Sit at the north seat"`
	East  bool   `short:"E" help:"Sit at the east seat"`
	South bool   `short:"S" help:"Sit at the south seat"`
	West  bool   `short:"W" help:"Sit at the west seat"`
	Auto  bool   `short:"a" help:"Play automatically without user input"`
	Debug bool   `short:"d" help:"Enable debug logging"`
}

func chosenSeat() (cards.Seat, error) {
	var seat cards.Seat
	count := 0
	for s, set := range map[cards.Seat]bool{
		cards.North: CLI.North,
		cards.East:  CLI.East,
		cards.South: CLI.South,
		cards.West:  CLI.West,
	} {
		if set {
			seat = s
			count++
		}
	}
	if count != 1 {
		return 0, errors.New("exactly one of -N, -E, -S, -W is required")
	}
	return seat, nil
}

func network() (string, error) {
	switch {
	case CLI.IPv4 && CLI.IPv6:
		return "", errors.New("-4 and -6 are mutually exclusive")
	case CLI.IPv4:
		return "tcp4", nil
	case CLI.IPv6:
		return "tcp6", nil
	default:
		return "tcp", nil
	}
}

func main() {
	// -h is the host flag, which rules out the built-in help flag.
	ctx := kong.Parse(&CLI, kong.NoDefaultHelp())

	seat, err := chosenSeat()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Exit(1)
	}
	net, err := network()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	if CLI.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	c := client.New(client.Config{
		Host:    CLI.Host,
		Port:    CLI.Port,
		Network: net,
		Seat:    seat,
		Auto:    CLI.Auto,
		Out:     os.Stdout,
		In:      os.Stdin,
		Trace:   os.Stdout,
	}, logger, quartz.NewReal())

	if err := c.Run(); err != nil {
		logger.Error("game ended with an error", "error", err)
		ctx.Exit(1)
	}
}
