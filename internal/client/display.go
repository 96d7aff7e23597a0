package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

var (
	redSuitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// display renders game events for a human player. All output goes to a
// single writer so it interleaves cleanly with the wire trace.
type display struct {
	out io.Writer
}

// styleCard tints hearts and diamonds red
func styleCard(c cards.Card) string {
	s := c.String()
	if c.Suit == cards.Hearts || c.Suit == cards.Diamonds {
		return redSuitStyle.Render(s)
	}
	return s
}

func styleCards(cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = styleCard(c)
	}
	return strings.Join(parts, ", ")
}

func dealTypeName(t game.DealType) string {
	switch t {
	case game.NoTricks:
		return "avoid tricks"
	case game.NoHearts:
		return "avoid hearts"
	case game.NoQueens:
		return "avoid queens"
	case game.NoKingsJacks:
		return "avoid kings and jacks"
	case game.NoKingOfHearts:
		return "avoid the king of hearts"
	case game.NoSeventhLastTrick:
		return "avoid the seventh and last trick"
	case game.Robber:
		return "avoid everything"
	default:
		return "unknown"
	}
}

func (d *display) deal(t game.DealType, first cards.Seat, hand []cards.Card) {
	fmt.Fprintf(d.out, "%s\n", headingStyle.Render(
		fmt.Sprintf("New deal %s (%s), %s starts", t, dealTypeName(t), first)))
	fmt.Fprintf(d.out, "Your cards: %s\n", styleCards(hand))
}

func (d *display) trickRequest(number int, table []cards.Card, available []cards.Card) {
	if len(table) == 0 {
		fmt.Fprintf(d.out, "Trick %d: you lead\n", number)
	} else {
		fmt.Fprintf(d.out, "Trick %d, on the table: %s\n", number, styleCards(table))
	}
	fmt.Fprintf(d.out, "Available: %s\n", styleCards(available))
}

func (d *display) trickTaken(number int, taken []cards.Card, winner cards.Seat, mine bool) {
	who := winner.String()
	if mine {
		who = "you"
	}
	fmt.Fprintf(d.out, "Trick %d taken by %s: %s\n", number, who, styleCards(taken))
}

func (d *display) wrong(number int) {
	fmt.Fprintf(d.out, "Play rejected in trick %d\n", number)
}

func (d *display) busy(seats []cards.Seat) {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = s.String()
	}
	fmt.Fprintf(d.out, "Seat taken, occupied: %s\n", strings.Join(parts, ", "))
}

func (d *display) pointsTable(title string, points map[cards.Seat]int) {
	fmt.Fprintf(d.out, "%s\n", headingStyle.Render(title))
	for _, s := range cards.Seats {
		fmt.Fprintf(d.out, "%s | %d\n", s, points[s])
	}
}

func (d *display) hand(hand []cards.Card) {
	if len(hand) == 0 {
		fmt.Fprintf(d.out, "%s\n", dimStyle.Render("No cards in hand"))
		return
	}
	fmt.Fprintf(d.out, "Your cards: %s\n", styleCards(hand))
}

func (d *display) tricks(taken [][]cards.Card) {
	if len(taken) == 0 {
		fmt.Fprintf(d.out, "%s\n", dimStyle.Render("No tricks taken this deal"))
		return
	}
	for _, trick := range taken {
		fmt.Fprintf(d.out, "%s\n", styleCards(trick))
	}
}

func (d *display) info(msg string) {
	fmt.Fprintf(d.out, "%s\n", dimStyle.Render(msg))
}
