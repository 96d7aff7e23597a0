package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

func TestRenderParseRoundTrip(t *testing.T) {
	hand := cards.MustParseCards("2C3C4C5C6C7C8C9C10CJCQCKCAC")

	messages := []Message{
		IAm{Seat: cards.North},
		Busy{Seats: []cards.Seat{cards.North, cards.West}},
		Deal{Type: game.NoSeventhLastTrick, First: cards.East, Cards: hand},
		Trick{Number: 1, Cards: []cards.Card{}},
		Trick{Number: 13, Cards: cards.MustParseCards("10H")},
		Trick{Number: 7, Cards: cards.MustParseCards("2C3DAH")},
		Wrong{Number: 4},
		Taken{Number: 2, Cards: cards.MustParseCards("2C3CAC5C"), Winner: cards.South},
		Score{Points: map[cards.Seat]int{cards.North: 0, cards.East: 13, cards.South: 5, cards.West: 120}},
		Total{Points: map[cards.Seat]int{cards.North: 1, cards.East: 2, cards.South: 3, cards.West: 4}},
	}

	for _, msg := range messages {
		frame := msg.Render()
		require.True(t, strings.HasSuffix(frame, CRLF), "frame %q must end with CRLF", frame)
		parsed := Parse(frame)
		require.NotNil(t, parsed, "frame %q did not parse", frame)
		assert.Equal(t, msg, parsed, "frame %q", frame)
	}
}

func TestRenderCanonical(t *testing.T) {
	assert.Equal(t, "IAMN\r\n", IAm{Seat: cards.North}.Render())
	assert.Equal(t, "BUSYNW\r\n", Busy{Seats: []cards.Seat{cards.North, cards.West}}.Render())
	assert.Equal(t, "TRICK1\r\n", Trick{Number: 1}.Render())
	assert.Equal(t, "WRONG13\r\n", Wrong{Number: 13}.Render())
	assert.Equal(t, "TAKEN12C3CAC5CS\r\n",
		Taken{Number: 1, Cards: cards.MustParseCards("2C3CAC5C"), Winner: cards.South}.Render())
	// SCORE renders seats in N, E, S, W order
	assert.Equal(t, "SCOREN0E13S5W120\r\n",
		Score{Points: map[cards.Seat]int{cards.North: 0, cards.East: 13, cards.South: 5, cards.West: 120}}.Render())
}

func TestParseTrickNumberDisambiguation(t *testing.T) {
	// "TRICK12C" is trick 1 with the 2C card, not trick 12
	msg := Parse("TRICK12C\r\n")
	require.IsType(t, Trick{}, msg)
	trick := msg.(Trick)
	assert.Equal(t, 1, trick.Number)
	assert.Equal(t, cards.MustParseCards("2C"), trick.Cards)

	// "TRICK13" has no valid card reading, so it is trick 13
	msg = Parse("TRICK13\r\n")
	require.IsType(t, Trick{}, msg)
	assert.Equal(t, 13, msg.(Trick).Number)
	assert.Empty(t, msg.(Trick).Cards)
}

func TestParseRejects(t *testing.T) {
	deck := cards.Deck()
	fullHand := cards.CardsString(deck[:13])
	dupHand := cards.CardsString(append(deck[:12:12], deck[0]))
	shortHand := cards.CardsString(deck[:12])

	frames := []struct {
		name  string
		frame string
	}{
		{"empty", "\r\n"},
		{"unknown verb", "HELLO\r\n"},
		{"missing crlf", "IAMN"},
		{"bare lf", "IAMN\n"},
		{"iam bad seat", "IAMX\r\n"},
		{"iam trailing garbage", "IAMN \r\n"},
		{"busy duplicate seat", "BUSYNN\r\n"},
		{"busy empty", "BUSY\r\n"},
		{"deal 12 cards", "DEAL1N" + shortHand + "\r\n"},
		{"deal duplicate card", "DEAL1N" + dupHand + "\r\n"},
		{"deal type 0", "DEAL0N" + fullHand + "\r\n"},
		{"deal type 8", "DEAL8N" + fullHand + "\r\n"},
		{"trick zero", "TRICK0\r\n"},
		{"trick fourteen", "TRICK14\r\n"},
		{"trick four cards", "TRICK12C3C4C5C\r\n"},
		{"trick bad card", "TRICK11C\r\n"},
		{"wrong zero", "WRONG0\r\n"},
		{"taken three cards", "TAKEN12C3C4CS\r\n"},
		{"taken no winner", "TAKEN12C3C4C5C\r\n"},
		{"score three seats", "SCOREN1E2S3\r\n"},
		{"score missing value", "SCORENE2S3W4\r\n"},
	}

	for _, tt := range frames {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Parse(tt.frame), "frame %q should not parse", tt.frame)
		})
	}
}

func TestParseScoreAnySeatOrder(t *testing.T) {
	msg := Parse("SCOREW4S3E2N1\r\n")
	require.IsType(t, Score{}, msg)
	assert.Equal(t, map[cards.Seat]int{
		cards.North: 1, cards.East: 2, cards.South: 3, cards.West: 4,
	}, msg.(Score).Points)
}
