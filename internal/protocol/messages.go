// Package protocol implements the Kierki wire format: eight CRLF-terminated
// ASCII message kinds with bit-exact rendering and strict parsing.
package protocol

import (
	"strconv"
	"strings"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

// CRLF terminates every frame. No partial frame is ever acted on.
const CRLF = "\r\n"

// Message is one of the eight wire messages. Render returns the canonical
// frame including the trailing CRLF.
type Message interface {
	Render() string
}

// IAm is the seat handshake a client sends right after connecting
type IAm struct {
	Seat cards.Seat
}

func (m IAm) Render() string {
	return "IAM" + m.Seat.String() + CRLF
}

// Busy rejects a candidate whose seat is taken, listing the occupied seats
// in the order the server first saw them.
type Busy struct {
	Seats []cards.Seat
}

func (m Busy) Render() string {
	var b strings.Builder
	b.WriteString("BUSY")
	for _, s := range m.Seats {
		b.WriteString(s.String())
	}
	b.WriteString(CRLF)
	return b.String()
}

// Deal announces a new deal to one seat: the deal type, the seat leading the
// first trick and the receiver's 13 cards.
type Deal struct {
	Type  game.DealType
	First cards.Seat
	Cards []cards.Card
}

func (m Deal) Render() string {
	return "DEAL" + m.Type.String() + m.First.String() + cards.CardsString(m.Cards) + CRLF
}

// Trick is both the server's play request (0-3 cards already on the table)
// and the client's response (exactly one card).
type Trick struct {
	Number int
	Cards  []cards.Card
}

func (m Trick) Render() string {
	return "TRICK" + strconv.Itoa(m.Number) + cards.CardsString(m.Cards) + CRLF
}

// Wrong tells a client its last TRICK was not acceptable in the current
// trick.
type Wrong struct {
	Number int
}

func (m Wrong) Render() string {
	return "WRONG" + strconv.Itoa(m.Number) + CRLF
}

// Taken broadcasts a completed trick: the four cards in play order and the
// seat that takes them.
type Taken struct {
	Number int
	Cards  []cards.Card
	Winner cards.Seat
}

func (m Taken) Render() string {
	return "TAKEN" + strconv.Itoa(m.Number) + cards.CardsString(m.Cards) + m.Winner.String() + CRLF
}

// Score reports the points of each seat for the deal that just ended
type Score struct {
	Points map[cards.Seat]int
}

func (m Score) Render() string {
	return renderPoints("SCORE", m.Points)
}

// Total reports the accumulated points of each seat across all deals
type Total struct {
	Points map[cards.Seat]int
}

func (m Total) Render() string {
	return renderPoints("TOTAL", m.Points)
}

func renderPoints(verb string, points map[cards.Seat]int) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, s := range cards.Seats {
		b.WriteString(s.String())
		b.WriteString(strconv.Itoa(points[s]))
	}
	b.WriteString(CRLF)
	return b.String()
}
