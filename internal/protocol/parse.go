package protocol

import (
	"regexp"
	"strconv"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

// Grammars of the eight message kinds. Card tokens are rank "10" or one of
// "23456789JQKA" followed by a suit letter; trick numbers are 1-13 with no
// leading zeros.
var (
	reIAm   = regexp.MustCompile(`^IAM([NESW])\r\n$`)
	reBusy  = regexp.MustCompile(`^BUSY([NESW]+)\r\n$`)
	reDeal  = regexp.MustCompile(`^DEAL([1-7])([NESW])((?:(?:10|[23456789JQKA])[CDHS]){13})\r\n$`)
	reTrick = regexp.MustCompile(`^TRICK([1-9]|1[0-3])((?:(?:10|[23456789JQKA])[CDHS]){0,3})\r\n$`)
	reWrong = regexp.MustCompile(`^WRONG([1-9]|1[0-3])\r\n$`)
	reTaken = regexp.MustCompile(`^TAKEN([1-9]|1[0-3])((?:(?:10|[23456789JQKA])[CDHS]){4})([NESW])\r\n$`)
	reScore = regexp.MustCompile(`^SCORE([NESW])(\d+)([NESW])(\d+)([NESW])(\d+)([NESW])(\d+)\r\n$`)
	reTotal = regexp.MustCompile(`^TOTAL([NESW])(\d+)([NESW])(\d+)([NESW])(\d+)([NESW])(\d+)\r\n$`)
)

// Parse decodes a single frame (including its CRLF). It returns nil for any
// deviation from the grammars or semantic constraints (duplicate cards in
// DEAL, duplicate seats in BUSY, out-of-range numbers); it never panics.
func Parse(frame string) Message {
	switch {
	case reIAm.MatchString(frame):
		m := reIAm.FindStringSubmatch(frame)
		seat, _ := cards.ParseSeat(m[1][0])
		return IAm{Seat: seat}

	case reBusy.MatchString(frame):
		m := reBusy.FindStringSubmatch(frame)
		seats := make([]cards.Seat, 0, len(m[1]))
		seen := map[cards.Seat]bool{}
		for i := 0; i < len(m[1]); i++ {
			seat, _ := cards.ParseSeat(m[1][i])
			if seen[seat] {
				return nil
			}
			seen[seat] = true
			seats = append(seats, seat)
		}
		return Busy{Seats: seats}

	case reDeal.MatchString(frame):
		m := reDeal.FindStringSubmatch(frame)
		dealType := game.DealType(m[1][0] - '0')
		first, _ := cards.ParseSeat(m[2][0])
		cs, err := cards.ParseCards(m[3])
		if err != nil || !cards.Distinct(cs) {
			return nil
		}
		return Deal{Type: dealType, First: first, Cards: cs}

	case reTrick.MatchString(frame):
		m := reTrick.FindStringSubmatch(frame)
		number, _ := strconv.Atoi(m[1])
		cs, err := cards.ParseCards(m[2])
		if err != nil {
			return nil
		}
		return Trick{Number: number, Cards: cs}

	case reWrong.MatchString(frame):
		m := reWrong.FindStringSubmatch(frame)
		number, _ := strconv.Atoi(m[1])
		return Wrong{Number: number}

	case reTaken.MatchString(frame):
		m := reTaken.FindStringSubmatch(frame)
		number, _ := strconv.Atoi(m[1])
		cs, err := cards.ParseCards(m[2])
		if err != nil {
			return nil
		}
		winner, _ := cards.ParseSeat(m[3][0])
		return Taken{Number: number, Cards: cs, Winner: winner}

	case reScore.MatchString(frame):
		if points, ok := parsePoints(reScore.FindStringSubmatch(frame)); ok {
			return Score{Points: points}
		}
		return nil

	case reTotal.MatchString(frame):
		if points, ok := parsePoints(reTotal.FindStringSubmatch(frame)); ok {
			return Total{Points: points}
		}
		return nil
	}
	return nil
}

func parsePoints(m []string) (map[cards.Seat]int, bool) {
	points := make(map[cards.Seat]int, 4)
	for i := 0; i < 4; i++ {
		seat, _ := cards.ParseSeat(m[i*2+1][0])
		value, err := strconv.Atoi(m[i*2+2])
		if err != nil {
			return nil, false
		}
		points[seat] = value
	}
	return points, true
}
