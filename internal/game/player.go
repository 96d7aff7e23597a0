package game

import "github.com/Andreluss/BlackLady-Network-Game/internal/cards"

// PlayerState tracks one seat's cards and score. DealPoints resets at every
// new deal; TotalPoints accumulates across the whole game.
type PlayerState struct {
	DealPoints  int
	TotalPoints int
	Hand        cards.Hand
	TricksTaken [][]cards.Card
	DealType    DealType
}

// StartDeal resets the per-deal state and installs the new hand
func (p *PlayerState) StartDeal(hand []cards.Card, t DealType) {
	p.DealType = t
	p.DealPoints = 0
	p.TricksTaken = nil
	p.Hand.Replace(hand)
}

// TakeTrick records a won trick and its penalty points
func (p *PlayerState) TakeTrick(table []cards.Card, points int) {
	taken := make([]cards.Card, len(table))
	copy(taken, table)
	p.TricksTaken = append(p.TricksTaken, taken)
	p.DealPoints += points
	p.TotalPoints += points
}

// CurrentTrickNumber derives the 1-based trick number from the hand size
func (p *PlayerState) CurrentTrickNumber() int {
	return LastTrick - p.Hand.Len() + 1
}
