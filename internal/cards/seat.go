package cards

import "fmt"

// Seat is one of the four table positions, ordered clockwise N, E, S, W.
type Seat int

const (
	North Seat = iota
	East
	South
	West
)

// Seats lists all seats in clockwise order
var Seats = [4]Seat{North, East, South, West}

// String returns the wire letter of the seat
func (s Seat) String() string {
	switch s {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// Next returns the seat clockwise from s
func (s Seat) Next() Seat {
	return (s + 1) % 4
}

// ParseSeat parses a single seat letter
func ParseSeat(b byte) (Seat, error) {
	switch b {
	case 'N':
		return North, nil
	case 'E':
		return East, nil
	case 'S':
		return South, nil
	case 'W':
		return West, nil
	}
	return 0, fmt.Errorf("invalid seat %q", string(b))
}
