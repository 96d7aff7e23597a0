// Package client implements the player side of the game: the connection
// state machine, the automatic strategy and the interactive command
// handling.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
	"github.com/Andreluss/BlackLady-Network-Game/internal/protocol"
)

// ErrSeatBusy is returned when the requested seat is already taken
var ErrSeatBusy = errors.New("seat busy")

// ErrDisconnected is returned when the server drops the connection in the
// middle of a deal.
var ErrDisconnected = errors.New("server disconnected mid-deal")

// Config is the fully resolved client configuration.
type Config struct {
	// Host and Port locate the server.
	Host string
	Port int

	// Network is "tcp", "tcp4" or "tcp6".
	Network string

	// Seat is the table position to claim.
	Seat cards.Seat

	// Auto plays the game without user input.
	Auto bool

	// Out receives human-readable renderings.
	Out io.Writer

	// In supplies user commands in interactive mode.
	In io.Reader

	// Trace receives raw-frame wire trace lines; nil disables tracing.
	Trace io.Writer
}

type state int

const (
	// stateWaitDeal is between deals; a server close here is a normal
	// game end.
	stateWaitDeal state = iota
	stateWaitTrick
	stateChoose
)

// Client plays one seat of a game. A single goroutine owns all state;
// reader and stdin pumps only feed it channels.
type Client struct {
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	disp   display

	nc     net.Conn
	local  string
	remote string

	state    state
	stats    game.PlayerState
	pending  protocol.Trick
	gotScore bool
	gotTotal bool
}

// New builds a client; the connection is made in Run.
func New(cfg Config, logger *log.Logger, clock quartz.Clock) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger.WithPrefix("client"),
		clock:  clock,
		disp:   display{out: cfg.Out},
	}
}

// Run connects, claims the seat and plays until the server ends the game.
// It returns nil on a normal game end, ErrSeatBusy on a BUSY response, and
// ErrDisconnected when the server drops mid-deal.
func (c *Client) Run() error {
	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	nc, err := net.Dial(c.cfg.Network, addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer nc.Close()
	c.nc = nc
	c.local = nc.LocalAddr().String()
	c.remote = nc.RemoteAddr().String()
	c.logger.Info("connected", "server", c.remote, "seat", c.cfg.Seat)

	if err := c.send(protocol.IAm{Seat: c.cfg.Seat}); err != nil {
		return err
	}

	frames := make(chan string, 64)
	go c.readPump(frames)

	lines := make(chan string, 16)
	if !c.cfg.Auto {
		go c.linePump(lines)
	}

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				if c.state == stateWaitDeal {
					c.disp.info("Game over")
					return nil
				}
				return ErrDisconnected
			}
			if err := c.handleFrame(frame); err != nil {
				return err
			}
		case line := <-lines:
			if err := c.handleCommand(line); err != nil {
				return err
			}
		}
	}
}

// readPump splits the inbound stream into frames and closes the channel on
// EOF or error.
func (c *Client) readPump(frames chan<- string) {
	sc := bufio.NewScanner(c.nc)
	sc.Buffer(make([]byte, 0, 1024), protocol.MaxFrameSize)
	sc.Split(protocol.ScanFrames)
	for sc.Scan() {
		frame := sc.Text()
		protocol.Trace(c.cfg.Trace, c.remote, c.local, c.clock.Now(), frame)
		frames <- frame
	}
	close(frames)
}

func (c *Client) linePump(lines chan<- string) {
	sc := bufio.NewScanner(c.cfg.In)
	for sc.Scan() {
		lines <- strings.TrimSpace(sc.Text())
	}
}

func (c *Client) send(m protocol.Message) error {
	frame := m.Render()
	protocol.Trace(c.cfg.Trace, c.local, c.remote, c.clock.Now(), frame)
	if _, err := io.WriteString(c.nc, frame); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (c *Client) handleFrame(frame string) error {
	switch m := protocol.Parse(frame).(type) {
	case protocol.Busy:
		c.disp.busy(m.Seats)
		return ErrSeatBusy
	case protocol.Deal:
		c.handleDeal(m)
	case protocol.Trick:
		return c.handleTrick(m)
	case protocol.Wrong:
		c.handleWrong(m)
	case protocol.Taken:
		c.handleTaken(m)
	case protocol.Score:
		c.disp.pointsTable("Points in this deal", m.Points)
		c.gotScore = true
		c.maybeEndDeal()
	case protocol.Total:
		c.disp.pointsTable("Total points", m.Points)
		c.gotTotal = true
		c.maybeEndDeal()
	default:
		c.logger.Debug("ignoring unexpected frame", "frame", strings.TrimSuffix(frame, protocol.CRLF))
	}
	return nil
}

func (c *Client) handleDeal(m protocol.Deal) {
	c.stats.StartDeal(m.Cards, m.Type)
	c.gotScore = false
	c.gotTotal = false
	c.state = stateWaitTrick
	c.disp.deal(m.Type, m.First, c.stats.Hand.Cards())
}

func (c *Client) handleTrick(m protocol.Trick) error {
	if c.state == stateWaitDeal {
		c.logger.Debug("ignoring trick request outside a deal", "trick", m.Number)
		return nil
	}
	if c.stats.Hand.Len() == 0 {
		c.logger.Debug("ignoring trick request with no cards left", "trick", m.Number)
		return nil
	}
	c.pending = m
	if c.cfg.Auto {
		return c.send(protocol.Trick{Number: m.Number, Cards: []cards.Card{c.pickCard(m.Cards)}})
	}
	c.disp.trickRequest(m.Number, m.Cards, c.available(m.Cards))
	c.state = stateChoose
	return nil
}

func (c *Client) handleWrong(m protocol.Wrong) {
	c.disp.wrong(m.Number)
	if !c.cfg.Auto && c.state == stateWaitTrick {
		// Let the user pick again for the still-pending request.
		c.disp.trickRequest(c.pending.Number, c.pending.Cards, c.available(c.pending.Cards))
		c.state = stateChoose
	}
}

// handleTaken applies a completed trick: the one table card we hold is our
// accepted play. Replayed TAKEN frames after a reseat remove nothing.
func (c *Client) handleTaken(m protocol.Taken) {
	for _, card := range m.Cards {
		c.stats.Hand.Remove(card)
	}
	if m.Winner == c.cfg.Seat {
		c.stats.TakeTrick(m.Cards, 0)
	}
	c.disp.trickTaken(m.Number, m.Cards, m.Winner, m.Winner == c.cfg.Seat)
	if c.state == stateChoose {
		c.state = stateWaitTrick
	}
}

func (c *Client) maybeEndDeal() {
	if c.gotScore && c.gotTotal {
		c.state = stateWaitDeal
	}
}

// available lists the cards legal to play on the given table
func (c *Client) available(table []cards.Card) []cards.Card {
	var out []cards.Card
	for _, card := range c.stats.Hand.Cards() {
		if game.Legal(&c.stats.Hand, card, table) {
			out = append(out, card)
		}
	}
	return out
}

// pickCard is the automatic strategy: the lowest card following the led
// suit, or the lowest card in hand when leading or out of suit.
func (c *Client) pickCard(table []cards.Card) cards.Card {
	hand := c.stats.Hand.Cards()
	if len(table) > 0 {
		lead := table[0].Suit
		for _, card := range hand {
			if card.Suit == lead {
				return card
			}
		}
	}
	return hand[0]
}

func (c *Client) handleCommand(line string) error {
	switch {
	case line == "cards":
		c.disp.hand(c.stats.Hand.Cards())
	case line == "tricks":
		c.disp.tricks(c.stats.TricksTaken)
	case strings.HasPrefix(line, "!"):
		return c.playCommand(line[1:])
	case line == "":
	default:
		c.disp.info("Commands: cards, tricks, !<card>")
	}
	return nil
}

func (c *Client) playCommand(token string) error {
	if c.state != stateChoose {
		c.disp.info("No play requested right now")
		return nil
	}
	card, err := cards.ParseCard(token)
	if err != nil {
		c.disp.info(fmt.Sprintf("Bad card %q", token))
		return nil
	}
	c.state = stateWaitTrick
	return c.send(protocol.Trick{Number: c.pending.Number, Cards: []cards.Card{card}})
}
