package cards

import "sort"

// Hand is a set of cards kept sorted by (rank, suit). The zero value is an
// empty hand.
type Hand struct {
	cards []Card
}

// NewHand builds a hand from the given cards, dropping duplicates
func NewHand(cs ...Card) Hand {
	var h Hand
	for _, c := range cs {
		h.Add(c)
	}
	return h
}

// Len returns the number of cards in the hand
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns the cards in sorted order. The slice is a copy.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Contains reports whether the hand holds c
func (h *Hand) Contains(c Card) bool {
	_, ok := h.index(c)
	return ok
}

// HasSuit reports whether the hand holds any card of the given suit
func (h *Hand) HasSuit(s Suit) bool {
	for _, c := range h.cards {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// Add inserts c, keeping the hand sorted. Duplicates are ignored.
func (h *Hand) Add(c Card) {
	i, ok := h.index(c)
	if ok {
		return
	}
	h.cards = append(h.cards, Card{})
	copy(h.cards[i+1:], h.cards[i:])
	h.cards[i] = c
}

// Remove deletes c from the hand and reports whether it was present
func (h *Hand) Remove(c Card) bool {
	i, ok := h.index(c)
	if !ok {
		return false
	}
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return true
}

// Replace swaps the whole hand for the given cards
func (h *Hand) Replace(cs []Card) {
	h.cards = h.cards[:0]
	for _, c := range cs {
		h.Add(c)
	}
}

// String renders the hand as a comma-separated list
func (h *Hand) String() string {
	return JoinCards(h.cards)
}

func (h *Hand) index(c Card) (int, bool) {
	i := sort.Search(len(h.cards), func(i int) bool {
		return !h.cards[i].Less(c)
	})
	return i, i < len(h.cards) && h.cards[i] == c
}
