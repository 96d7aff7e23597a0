package server

import (
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
	"github.com/Andreluss/BlackLady-Network-Game/internal/protocol"
)

// maxConns bounds the number of live sockets (seated players plus
// candidates). Accepts beyond the limit are closed immediately.
const maxConns = 32

// player is one seat at the table. The seat identity persists across
// disconnects; conn is nil while the seat is unbound.
type player struct {
	seat        cards.Seat
	conn        *conn
	stats       game.PlayerState
	lastRequest time.Time
}

func (p *player) connected() bool {
	return p.conn != nil && !p.conn.broken
}

type candidateState int

const (
	awaitingIAM candidateState = iota
	rejecting
)

// candidate is a connected socket that has not yet completed the IAM
// handshake, or is draining a BUSY rejection.
type candidate struct {
	conn        *conn
	state       candidateState
	connectedAt time.Time
}

// state enumerates the session state machine. StartDeal and FinalizeDeal
// are actions taken on transitions rather than looped states.
type state int

const (
	stateStartTrick state = iota
	stateSendTrick
	stateAwaitPlay
)

// engine drives one game session. It is the only goroutine that touches
// game state; connections feed it through a single event channel.
type engine struct {
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	events chan event
	done   chan struct{}

	players    map[cards.Seat]*player
	candidates []*candidate
	seatOrder  []cards.Seat // seats in order of first seating, for BUSY

	dealIdx       int
	dealAnnounced bool
	trickNo       int
	table         []cards.Card
	current       cards.Seat
	lastWinner    cards.Seat
	takenHistory  []protocol.Taken

	state  state
	repoll bool
	over   bool
}

func newEngine(cfg Config, logger *log.Logger, clock quartz.Clock) *engine {
	e := &engine{
		cfg:     cfg,
		logger:  logger.WithPrefix("engine"),
		clock:   clock,
		events:  make(chan event, 4*maxConns),
		done:    make(chan struct{}),
		players: make(map[cards.Seat]*player, 4),
	}
	for _, seat := range cards.Seats {
		e.players[seat] = &player{seat: seat}
	}
	return e
}

// run plays the configured deals to completion. It returns once SCORE and
// TOTAL for the last deal have been flushed to all four seats.
func (e *engine) run() error {
	defer close(e.done)

	e.startDeal(0)
	e.state = stateStartTrick
	e.repoll = true

	for !e.over {
		if e.repoll {
			e.pump(e.pollInterval())
			e.awaitSeats()
		}
		e.repoll = true

		switch e.state {
		case stateStartTrick:
			e.stepStartTrick()
		case stateSendTrick:
			e.stepSendTrick()
		case stateAwaitPlay:
			e.stepAwaitPlay()
		}
	}

	e.shutdown()
	return nil
}

// pollInterval returns the sub-second granularity used for one pump round,
// derived from the response timeout.
func (e *engine) pollInterval() time.Duration {
	d := e.cfg.Timeout / 4
	if d > 500*time.Millisecond {
		d = 500 * time.Millisecond
	}
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}

// pump is the engine's only blocking point: it waits up to d for the first
// event, then drains whatever else is already queued.
func (e *engine) pump(d time.Duration) {
	timer := e.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case ev := <-e.events:
		e.handleEvent(ev)
	case <-timer.C:
		return
	}
	for {
		select {
		case ev := <-e.events:
			e.handleEvent(ev)
		default:
			return
		}
	}
}

func (e *engine) handleEvent(ev event) {
	switch ev.kind {
	case evAccept:
		e.admit(ev.nc)
	case evFrame:
		if !ev.c.broken {
			ev.c.inbox = append(ev.c.inbox, ev.frame)
		}
	case evClosed:
		ev.c.broken = true
	}
}

func (e *engine) liveConns() int {
	n := len(e.candidates)
	for _, p := range e.players {
		if p.conn != nil {
			n++
		}
	}
	return n
}

func (e *engine) admit(nc net.Conn) {
	if e.liveConns() >= maxConns {
		e.logger.Warn("connection table full, refusing candidate", "remote", nc.RemoteAddr())
		_ = nc.Close()
		return
	}
	c := newConn(nc, e.events, e.logger, e.clock, e.cfg.Trace)
	e.candidates = append(e.candidates, &candidate{
		conn:        c,
		state:       awaitingIAM,
		connectedAt: e.clock.Now(),
	})
	e.logger.Info("candidate connected", "remote", c.remote)
}

// awaitSeats loops pumping I/O until all four seats are bound and healthy.
// Any seat bound during the pass has already been replayed the deal history.
func (e *engine) awaitSeats() {
	for {
		e.reap()
		e.processCandidates()
		if e.allSeated() {
			return
		}
		e.pump(e.pollInterval())
	}
}

func (e *engine) allSeated() bool {
	for _, p := range e.players {
		if !p.connected() {
			return false
		}
	}
	return true
}

// reap unbinds players and drops candidates whose connections carry the
// sticky error flag.
func (e *engine) reap() {
	for _, seat := range cards.Seats {
		p := e.players[seat]
		if p.conn != nil && p.conn.broken {
			p.conn.closeNow()
			p.conn = nil
			e.logger.Info("player disconnected", "seat", seat)
		}
	}
	kept := e.candidates[:0]
	for _, cand := range e.candidates {
		if cand.conn.broken {
			cand.conn.closeNow()
			e.logger.Debug("candidate dropped", "remote", cand.conn.remote)
			continue
		}
		kept = append(kept, cand)
	}
	e.candidates = kept
}

func (e *engine) processCandidates() {
	kept := e.candidates[:0]
	for _, cand := range e.candidates {
		if !e.processCandidate(cand) {
			kept = append(kept, cand)
		}
	}
	e.candidates = kept
}

// processCandidate advances one candidate and reports whether it should be
// removed from the table (seated, rejected, or dropped).
func (e *engine) processCandidate(cand *candidate) bool {
	switch cand.state {
	case awaitingIAM:
		if e.clock.Since(cand.connectedAt) > e.cfg.Timeout {
			cand.conn.closeNow()
			e.logger.Info("candidate timed out before IAM", "remote", cand.conn.remote)
			return true
		}
		if !cand.conn.hasFrame() {
			return false
		}
		frame := cand.conn.takeFrame()
		iam, ok := protocol.Parse(frame).(protocol.IAm)
		if !ok {
			cand.conn.closeNow()
			e.logger.Info("candidate sent a non-IAM frame, dropping", "remote", cand.conn.remote)
			return true
		}
		if e.players[iam.Seat].connected() {
			cand.conn.enqueue(protocol.Busy{Seats: e.occupiedSeats()})
			cand.conn.closeAfterFlush()
			cand.state = rejecting
			e.logger.Info("seat busy, rejecting candidate", "seat", iam.Seat, "remote", cand.conn.remote)
			return false
		}
		e.seatCandidate(cand, iam.Seat)
		return true

	case rejecting:
		select {
		case <-cand.conn.writerDone:
			cand.conn.closeNow()
			return true
		default:
			return false
		}
	}
	return false
}

// occupiedSeats lists currently connected seats in the order the server
// first seated them.
func (e *engine) occupiedSeats() []cards.Seat {
	seats := make([]cards.Seat, 0, 4)
	for _, seat := range e.seatOrder {
		if e.players[seat].connected() {
			seats = append(seats, seat)
		}
	}
	return seats
}

// seatCandidate binds the candidate's connection to the seat. Mid-deal the
// new connection is replayed the DEAL (the seat's original hand) and every
// completed trick; at game start the first DEAL goes out once the fourth
// seat fills.
func (e *engine) seatCandidate(cand *candidate, seat cards.Seat) {
	p := e.players[seat]
	p.conn = cand.conn
	e.recordSeatOrder(seat)

	if e.dealAnnounced {
		deal := e.currentDeal()
		p.conn.enqueue(protocol.Deal{Type: deal.Type, First: deal.First, Cards: deal.Hands[seat]})
		for _, taken := range e.takenHistory {
			p.conn.enqueue(taken)
		}
		e.logger.Info("player seated mid-deal", "seat", seat, "replayedTricks", len(e.takenHistory))
		return
	}

	e.logger.Info("player seated", "seat", seat)
	if e.allSeated() {
		e.broadcastDeal()
		e.dealAnnounced = true
	}
}

func (e *engine) recordSeatOrder(seat cards.Seat) {
	for _, s := range e.seatOrder {
		if s == seat {
			return
		}
	}
	e.seatOrder = append(e.seatOrder, seat)
}

func (e *engine) currentDeal() *game.DealConfig {
	return &e.cfg.Deals[e.dealIdx]
}

// leaderSeat returns the seat that leads the current trick
func (e *engine) leaderSeat() cards.Seat {
	if e.trickNo == game.FirstTrick {
		return e.currentDeal().First
	}
	return e.lastWinner
}

func (e *engine) startDeal(idx int) {
	e.dealIdx = idx
	e.dealAnnounced = false
	e.takenHistory = nil
	deal := e.currentDeal()
	for seat, p := range e.players {
		p.stats.StartDeal(deal.Hands[seat], deal.Type)
	}
	e.trickNo = game.FirstTrick
	e.logger.Info("deal started", "deal", idx+1, "type", deal.Type, "first", deal.First)
}

func (e *engine) broadcastDeal() {
	deal := e.currentDeal()
	for _, seat := range cards.Seats {
		if p := e.players[seat]; p.conn != nil {
			p.conn.enqueue(protocol.Deal{Type: deal.Type, First: deal.First, Cards: deal.Hands[seat]})
		}
	}
}

func (e *engine) stepStartTrick() {
	e.table = e.table[:0]
	e.current = e.leaderSeat()
	e.state = stateSendTrick
	e.repoll = false
}

func (e *engine) stepSendTrick() {
	p := e.players[e.current]
	p.conn.enqueue(protocol.Trick{Number: e.trickNo, Cards: e.tableCopy()})
	p.lastRequest = e.clock.Now()
	e.state = stateAwaitPlay
	e.repoll = true
}

func (e *engine) stepAwaitPlay() {
	e.checkOtherPlayers()

	p := e.players[e.current]
	if p.connected() && p.conn.hasFrame() {
		e.handleCurrentPlayerFrame(p, p.conn.takeFrame())
		return
	}
	if e.clock.Since(p.lastRequest) > e.cfg.Timeout {
		e.logger.Warn("player did not respond in time, resending trick request", "seat", e.current)
		e.state = stateSendTrick
		e.repoll = false
	}
}

// checkOtherPlayers consumes one pending frame from every non-current seat:
// an out-of-turn TRICK earns a WRONG, anything else drops the seat.
func (e *engine) checkOtherPlayers() {
	for _, seat := range cards.Seats {
		p := e.players[seat]
		if seat == e.current || !p.connected() || !p.conn.hasFrame() {
			continue
		}
		frame := p.conn.takeFrame()
		if _, ok := protocol.Parse(frame).(protocol.Trick); ok {
			e.logger.Warn("out-of-turn trick", "seat", seat)
			p.conn.enqueue(protocol.Wrong{Number: e.trickNo})
		} else {
			e.logger.Warn("unexpected frame from seat, dropping connection", "seat", seat)
			p.conn.closeNow()
			p.conn = nil
		}
	}
}

func (e *engine) handleCurrentPlayerFrame(p *player, frame string) {
	trick, ok := protocol.Parse(frame).(protocol.Trick)
	if !ok {
		e.logger.Warn("unexpected frame from current player, dropping connection", "seat", p.seat)
		p.conn.closeNow()
		p.conn = nil
		return
	}
	if trick.Number != e.trickNo {
		e.logger.Warn("wrong trick number", "seat", p.seat, "got", trick.Number, "want", e.trickNo)
		p.conn.enqueue(protocol.Wrong{Number: e.trickNo})
		return
	}
	if len(trick.Cards) != 1 {
		e.logger.Warn("trick response must carry exactly one card", "seat", p.seat, "cards", len(trick.Cards))
		p.conn.enqueue(protocol.Wrong{Number: e.trickNo})
		return
	}
	if !game.Legal(&p.stats.Hand, trick.Cards[0], e.table) {
		e.logger.Warn("illegal play", "seat", p.seat, "card", trick.Cards[0])
		p.conn.enqueue(protocol.Wrong{Number: e.trickNo})
		return
	}
	e.applyPlay(p, trick.Cards[0])
}

func (e *engine) applyPlay(p *player, c cards.Card) {
	e.table = append(e.table, c)
	p.stats.Hand.Remove(c)

	if len(e.table) < 4 {
		e.current = e.current.Next()
		e.state = stateSendTrick
		return
	}

	winner := game.TrickWinner(e.leaderSeat(), e.table)
	points := game.Points(e.table, e.currentDeal().Type, e.trickNo)
	e.players[winner].stats.TakeTrick(e.table, points)

	taken := protocol.Taken{Number: e.trickNo, Cards: e.tableCopy(), Winner: winner}
	e.broadcast(taken)
	e.takenHistory = append(e.takenHistory, taken)
	e.lastWinner = winner
	e.logger.Info("trick taken", "trick", e.trickNo, "winner", winner, "points", points)

	if e.trickNo < game.LastTrick {
		e.trickNo++
		e.state = stateStartTrick
		return
	}
	e.finalizeDeal()
}

func (e *engine) finalizeDeal() {
	scores := make(map[cards.Seat]int, 4)
	totals := make(map[cards.Seat]int, 4)
	for seat, p := range e.players {
		scores[seat] = p.stats.DealPoints
		totals[seat] = p.stats.TotalPoints
	}
	e.broadcast(protocol.Score{Points: scores})
	e.broadcast(protocol.Total{Points: totals})

	if e.dealIdx+1 < len(e.cfg.Deals) {
		e.startDeal(e.dealIdx + 1)
		e.broadcastDeal()
		e.dealAnnounced = true
		e.state = stateStartTrick
		return
	}

	e.logger.Info("game over")
	e.over = true
}

// shutdown flushes and closes every connection. The per-connection wait is
// the one place the engine blocks outside pump.
func (e *engine) shutdown() {
	for _, seat := range cards.Seats {
		p := e.players[seat]
		if p.conn == nil {
			continue
		}
		p.conn.closeAfterFlush()
		p.conn.waitFlushed()
		p.conn = nil
		e.logger.Info("player disconnected at shutdown", "seat", seat)
	}
	for _, cand := range e.candidates {
		cand.conn.closeNow()
	}
	e.candidates = nil
}

// broadcast sends one message to every seated connection. A seat dropped
// moments earlier is skipped; its replacement catches up from the taken
// history on reseat.
func (e *engine) broadcast(m protocol.Message) {
	for _, seat := range cards.Seats {
		if p := e.players[seat]; p.conn != nil {
			p.conn.enqueue(m)
		}
	}
}

func (e *engine) tableCopy() []cards.Card {
	out := make([]cards.Card, len(e.table))
	copy(out, e.table)
	return out
}
