// Package cards defines the playing-card primitives shared by the protocol
// codec, the rule engine and both binaries: suits, ranks, cards, seats and
// the rank-sorted Hand.
package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. The order matters only for keeping hands
// stable; trick resolution never compares across suits.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the wire letter of the suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Hearts:
		return "H"
	case Spades:
		return "S"
	default:
		return "?"
	}
}

// Rank represents a card rank. Two is lowest, Ace is highest.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the wire token of the rank ("2".."10", "J", "Q", "K", "A")
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// String returns the wire token of the card (e.g. "10C", "QS")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Less orders cards by (rank, suit). The suit tiebreak carries no game
// meaning; it only keeps hands in a stable display order.
func (c Card) Less(o Card) bool {
	if c.Rank != o.Rank {
		return c.Rank < o.Rank
	}
	return c.Suit < o.Suit
}

// ParseSuit parses a single suit letter
func ParseSuit(b byte) (Suit, error) {
	switch b {
	case 'C':
		return Clubs, nil
	case 'D':
		return Diamonds, nil
	case 'H':
		return Hearts, nil
	case 'S':
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit %q", string(b))
}

// ParseCard parses exactly one card token
func ParseCard(s string) (Card, error) {
	cs, err := ParseCards(s)
	if err != nil {
		return Card{}, err
	}
	if len(cs) != 1 {
		return Card{}, fmt.Errorf("expected one card, got %q", s)
	}
	return cs[0], nil
}

// ParseCards parses a string of concatenated card tokens, e.g. "10CQSAH".
// The whole string must be consumed; anything else is an error.
func ParseCards(s string) ([]Card, error) {
	cards := []Card{}
	for i := 0; i < len(s); {
		var rank Rank
		switch {
		case s[i] == '1':
			if i+1 >= len(s) || s[i+1] != '0' {
				return nil, fmt.Errorf("invalid card rank at %q", s[i:])
			}
			rank = Ten
			i += 2
		case s[i] >= '2' && s[i] <= '9':
			rank = Rank(s[i] - '0')
			i++
		case s[i] == 'J':
			rank = Jack
			i++
		case s[i] == 'Q':
			rank = Queen
			i++
		case s[i] == 'K':
			rank = King
			i++
		case s[i] == 'A':
			rank = Ace
			i++
		default:
			return nil, fmt.Errorf("invalid card rank at %q", s[i:])
		}
		if i >= len(s) {
			return nil, fmt.Errorf("missing suit in %q", s)
		}
		suit, err := ParseSuit(s[i])
		if err != nil {
			return nil, fmt.Errorf("invalid card suit at %q", s[i:])
		}
		i++
		cards = append(cards, Card{Rank: rank, Suit: suit})
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on error, for tests and literals
func MustParseCards(s string) []Card {
	cs, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cs
}

// CardsString renders cards as concatenated wire tokens
func CardsString(cs []Card) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.String())
	}
	return b.String()
}

// JoinCards renders cards separated by ", " for user-facing output
func JoinCards(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// Deck returns the full 52-card deck
func Deck() []Card {
	deck := make([]Card, 0, 52)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Distinct reports whether no card occurs twice
func Distinct(cs []Card) bool {
	seen := make(map[Card]struct{}, len(cs))
	for _, c := range cs {
		if _, dup := seen[c]; dup {
			return false
		}
		seen[c] = struct{}{}
	}
	return true
}
