// Package game holds the rule engine: deal definitions, trick resolution,
// play legality and penalty scoring. It knows nothing about sockets or the
// wire format.
package game

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
)

// DealType selects which cards or tricks carry penalty points in a deal.
type DealType int

const (
	NoTricks           DealType = iota + 1 // a point per trick taken
	NoHearts                               // a point per heart
	NoQueens                               // five points per queen
	NoKingsJacks                           // two points per king or jack
	NoKingOfHearts                         // eighteen points for the king of hearts
	NoSeventhLastTrick                     // ten points for the seventh and last trick
	Robber                                 // all of the above combined
)

// Valid reports whether t is one of the seven deal types
func (t DealType) Valid() bool {
	return t >= NoTricks && t <= Robber
}

// String returns the wire digit of the deal type
func (t DealType) String() string {
	return fmt.Sprintf("%d", int(t))
}

// Trick numbers run 1 through 13 within a deal.
const (
	FirstTrick = 1
	LastTrick  = 13
)

// DealConfig is one scripted deal: its type, the seat that leads the first
// trick, and the thirteen cards dealt to each seat.
type DealConfig struct {
	Type  DealType
	First cards.Seat
	Hands map[cards.Seat][]cards.Card
}

// LoadDeals reads the scripted game from a deal file. Each deal is five
// lines: a header of the deal type digit and the first seat's letter, then
// the hands of N, E, S and W as thirteen concatenated card tokens. Records
// follow each other back to back; a blank line is a malformed record, not
// a separator.
func LoadDeals(path string) ([]DealConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var deals []DealConfig
	for {
		header, ok := nextLine(sc)
		if !ok {
			break
		}
		deal, err := parseDeal(header, sc)
		if err != nil {
			return nil, fmt.Errorf("deal %d: %w", len(deals)+1, err)
		}
		deals = append(deals, deal)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, fmt.Errorf("deal file %s contains no deals", path)
	}
	return deals, nil
}

func parseDeal(header string, sc *bufio.Scanner) (DealConfig, error) {
	if len(header) != 2 {
		return DealConfig{}, fmt.Errorf("malformed header %q", header)
	}
	dealType := DealType(header[0] - '0')
	if !dealType.Valid() {
		return DealConfig{}, fmt.Errorf("invalid deal type %q", string(header[0]))
	}
	first, err := cards.ParseSeat(header[1])
	if err != nil {
		return DealConfig{}, err
	}

	deal := DealConfig{
		Type:  dealType,
		First: first,
		Hands: make(map[cards.Seat][]cards.Card, 4),
	}
	var all []cards.Card
	for _, seat := range cards.Seats {
		line, ok := nextLine(sc)
		if !ok {
			return DealConfig{}, fmt.Errorf("missing hand for seat %s", seat)
		}
		hand, err := cards.ParseCards(line)
		if err != nil {
			return DealConfig{}, fmt.Errorf("seat %s: %w", seat, err)
		}
		if len(hand) != 13 {
			return DealConfig{}, fmt.Errorf("seat %s: expected 13 cards, got %d", seat, len(hand))
		}
		deal.Hands[seat] = hand
		all = append(all, hand...)
	}
	if !cards.Distinct(all) {
		return DealConfig{}, fmt.Errorf("hands share a card")
	}
	return deal, nil
}

// nextLine returns the next line verbatim, or ok=false at end of input
func nextLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}
