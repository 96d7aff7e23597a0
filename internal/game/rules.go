package game

import "github.com/Andreluss/BlackLady-Network-Game/internal/cards"

// Points returns the penalty points the winner of a trick collects, given
// the four cards on the table, the deal type and the trick number. Robber
// deals score every category at once, including both trick bonuses.
func Points(taken []cards.Card, t DealType, trickNumber int) int {
	points := 0
	if t == NoTricks || t == Robber {
		points++
	}
	if t == NoHearts || t == Robber {
		for _, c := range taken {
			if c.Suit == cards.Hearts {
				points++
			}
		}
	}
	if t == NoQueens || t == Robber {
		for _, c := range taken {
			if c.Rank == cards.Queen {
				points += 5
			}
		}
	}
	if t == NoKingsJacks || t == Robber {
		for _, c := range taken {
			if c.Rank == cards.King || c.Rank == cards.Jack {
				points += 2
			}
		}
	}
	if t == NoKingOfHearts || t == Robber {
		for _, c := range taken {
			if c.Rank == cards.King && c.Suit == cards.Hearts {
				points += 18
			}
		}
	}
	if t == NoSeventhLastTrick || t == Robber {
		if trickNumber == 7 || trickNumber == LastTrick {
			points += 10
		}
	}
	return points
}

// TrickWinner returns the seat that takes the trick: the highest card in
// the suit led wins. table holds the plays in seating order starting from
// the leader.
func TrickWinner(leader cards.Seat, table []cards.Card) cards.Seat {
	winner := leader
	best := table[0]
	seat := leader
	for _, c := range table[1:] {
		seat = seat.Next()
		if c.Suit == best.Suit && c.Rank > best.Rank {
			best = c
			winner = seat
		}
	}
	return winner
}

// Legal reports whether playing c from hand is allowed given the cards
// already on the table: the card must be in hand, and the suit led must be
// followed when possible.
func Legal(hand *cards.Hand, c cards.Card, table []cards.Card) bool {
	if !hand.Contains(c) {
		return false
	}
	if len(table) == 0 {
		return true
	}
	lead := table[0].Suit
	return c.Suit == lead || !hand.HasSuit(lead)
}
