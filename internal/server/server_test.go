package server

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/client"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
	"github.com/Andreluss/BlackLady-Network-Game/internal/protocol"
)

func startServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := New(cfg, log.New(io.Discard), quartz.NewReal())
	require.NoError(t, err)
	return s
}

func serverPort(s *Server) int {
	return s.Addr().(*net.TCPAddr).Port
}

// rawPeer is a hand-driven client for exercising the server frame by frame
type rawPeer struct {
	t  *testing.T
	nc net.Conn
	sc *bufio.Scanner
}

func dialRaw(t *testing.T, port int) *rawPeer {
	t.Helper()
	nc, err := net.Dial("tcp", fmt.Sprintf("[::1]:%d", port))
	require.NoError(t, err)
	t.Cleanup(func() { _ = nc.Close() })
	sc := bufio.NewScanner(nc)
	sc.Buffer(make([]byte, 0, 1024), protocol.MaxFrameSize)
	sc.Split(protocol.ScanFrames)
	return &rawPeer{t: t, nc: nc, sc: sc}
}

func (r *rawPeer) send(frame string) {
	r.t.Helper()
	_, err := io.WriteString(r.nc, frame)
	require.NoError(r.t, err)
}

func (r *rawPeer) read() string {
	r.t.Helper()
	require.NoError(r.t, r.nc.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.True(r.t, r.sc.Scan(), "expected a frame, got end of stream")
	return r.sc.Text()
}

func (r *rawPeer) expectEOF() {
	r.t.Helper()
	require.NoError(r.t, r.nc.SetReadDeadline(time.Now().Add(5*time.Second)))
	assert.False(r.t, r.sc.Scan(), "expected end of stream, got %q", r.sc.Text())
}

// syncBuffer is a locked bytes.Buffer for capturing a client's wire trace
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func autoClient(port int, seat cards.Seat, trace io.Writer) *client.Client {
	return client.New(client.Config{
		Host:    "::1",
		Port:    port,
		Network: "tcp",
		Seat:    seat,
		Auto:    true,
		Out:     io.Discard,
		Trace:   trace,
	}, log.New(io.Discard), quartz.NewReal())
}

func TestSeatConflict(t *testing.T) {
	s := startServer(t, Config{Timeout: 2 * time.Second, Deals: singleDeal(game.NoTricks, cards.North)})
	go func() { _ = s.Run() }()

	first := dialRaw(t, serverPort(s))
	first.send("IAMN\r\n")
	time.Sleep(300 * time.Millisecond)

	second := dialRaw(t, serverPort(s))
	second.send("IAMN\r\n")
	assert.Equal(t, "BUSYN\r\n", second.read())
	second.expectEOF()
}

func TestBusySeatsInFirstSeenOrder(t *testing.T) {
	s := startServer(t, Config{Timeout: 2 * time.Second, Deals: singleDeal(game.NoTricks, cards.North)})
	go func() { _ = s.Run() }()

	west := dialRaw(t, serverPort(s))
	west.send("IAMW\r\n")
	time.Sleep(300 * time.Millisecond)

	east := dialRaw(t, serverPort(s))
	east.send("IAME\r\n")
	time.Sleep(300 * time.Millisecond)

	// The listing follows seating order, not N/E/S/W order.
	conflict := dialRaw(t, serverPort(s))
	conflict.send("IAMW\r\n")
	assert.Equal(t, "BUSYWE\r\n", conflict.read())
	conflict.expectEOF()
}

func TestFullGame(t *testing.T) {
	s := startServer(t, Config{Timeout: 2 * time.Second, Deals: singleDeal(game.NoTricks, cards.North)})

	var trace syncBuffer
	var g errgroup.Group
	g.Go(s.Run)
	g.Go(autoClient(serverPort(s), cards.North, &trace).Run)
	for _, seat := range []cards.Seat{cards.East, cards.South, cards.West} {
		c := autoClient(serverPort(s), seat, nil)
		g.Go(c.Run)
	}

	require.NoError(t, g.Wait())

	// North holds all clubs, so it wins every trick of the no-tricks deal.
	assert.Contains(t, trace.String(), "SCOREN13E0S0W0\r\n")
	assert.Contains(t, trace.String(), "TOTALN13E0S0W0\r\n")
}

func TestTwoDealGame(t *testing.T) {
	s := startServer(t, Config{Timeout: 2 * time.Second, Deals: twoDeals()})

	var trace syncBuffer
	var g errgroup.Group
	g.Go(s.Run)
	g.Go(autoClient(serverPort(s), cards.North, &trace).Run)
	for _, seat := range []cards.Seat{cards.East, cards.South, cards.West} {
		c := autoClient(serverPort(s), seat, nil)
		g.Go(c.Run)
	}

	require.NoError(t, g.Wait())

	// The second deal is broadcast after the first deal's SCORE/TOTAL.
	out := trace.String()
	assert.Contains(t, out, "DEAL1N")
	assert.Contains(t, out, "DEAL2E")
	assert.Less(t, strings.Index(out, "TOTALN13E0S0W0\r\n"), strings.Index(out, "DEAL2E"))

	// North takes every trick of deal 1, East every heart of deal 2.
	assert.Contains(t, out, "SCOREN13E0S0W0\r\n")
	assert.Contains(t, out, "SCOREN0E13S0W0\r\n")
	assert.Contains(t, out, "TOTALN13E13S0W0\r\n")
}

func TestTrickRetransmission(t *testing.T) {
	s := startServer(t, Config{Timeout: 300 * time.Millisecond, Deals: singleDeal(game.NoTricks, cards.North)})
	go func() { _ = s.Run() }()

	seats := []cards.Seat{cards.North, cards.East, cards.South, cards.West}
	peers := make([]*rawPeer, len(seats))
	for i, seat := range seats {
		peers[i] = dialRaw(t, serverPort(s))
		peers[i].send("IAM" + seat.String() + "\r\n")
	}

	north := peers[0]
	assert.True(t, strings.HasPrefix(north.read(), "DEAL1N"))
	assert.Equal(t, "TRICK1\r\n", north.read())

	// Staying silent past the timeout earns an identical repeat request.
	assert.Equal(t, "TRICK1\r\n", north.read())
	assert.Equal(t, "TRICK1\r\n", north.read())
}

func TestWrongThenAcceptedPlay(t *testing.T) {
	s := startServer(t, Config{Timeout: 5 * time.Second, Deals: singleDeal(game.NoTricks, cards.North)})

	var g errgroup.Group
	g.Go(s.Run)
	for _, seat := range []cards.Seat{cards.East, cards.South, cards.West} {
		c := autoClient(serverPort(s), seat, nil)
		g.Go(c.Run)
	}

	north := dialRaw(t, serverPort(s))
	north.send("IAMN\r\n")
	assert.True(t, strings.HasPrefix(north.read(), "DEAL1N"))
	assert.Equal(t, "TRICK1\r\n", north.read())

	// A card outside the hand and a stale trick number both get WRONG.
	north.send("TRICK12D\r\n")
	assert.Equal(t, "WRONG1\r\n", north.read())
	north.send("TRICK22C\r\n")
	assert.Equal(t, "WRONG1\r\n", north.read())

	north.send("TRICK12C\r\n")
	assert.Equal(t, "TAKEN12C2D2H2SN\r\n", north.read())

	// North keeps winning, so it leads every remaining trick.
	clubs := cards.Deck()[0:13]
	for n := 2; n <= 13; n++ {
		require.Equal(t, fmt.Sprintf("TRICK%d\r\n", n), north.read())
		north.send(fmt.Sprintf("TRICK%d%s\r\n", n, clubs[n-1]))
		taken := north.read()
		assert.True(t, strings.HasPrefix(taken, fmt.Sprintf("TAKEN%d", n)), "got %q", taken)
	}

	assert.Equal(t, "SCOREN13E0S0W0\r\n", north.read())
	assert.Equal(t, "TOTALN13E0S0W0\r\n", north.read())
	north.expectEOF()

	require.NoError(t, g.Wait())
}

func TestReseatReplay(t *testing.T) {
	s := startServer(t, Config{Timeout: 2 * time.Second, Deals: singleDeal(game.NoTricks, cards.North)})

	var g errgroup.Group
	g.Go(s.Run)
	for _, seat := range []cards.Seat{cards.East, cards.South, cards.West} {
		c := autoClient(serverPort(s), seat, nil)
		g.Go(c.Run)
	}

	// Play one trick, then drop off the table.
	north := dialRaw(t, serverPort(s))
	north.send("IAMN\r\n")
	assert.True(t, strings.HasPrefix(north.read(), "DEAL1N"))
	require.Equal(t, "TRICK1\r\n", north.read())
	north.send("TRICK12C\r\n")
	assert.Equal(t, "TAKEN12C2D2H2SN\r\n", north.read())
	_ = north.nc.Close()

	// The replacement catches up from the replayed history and finishes
	// the deal.
	var trace syncBuffer
	g.Go(autoClient(serverPort(s), cards.North, &trace).Run)
	require.NoError(t, g.Wait())

	lines := strings.Split(trace.String(), "\r\n")
	dealAt, takenAt, trickAt := -1, -1, -1
	for i, line := range lines {
		switch {
		case strings.Contains(line, "] DEAL1N") && dealAt < 0:
			dealAt = i
		case strings.Contains(line, "] TAKEN12C2D2H2SN") && takenAt < 0:
			takenAt = i
		case strings.Contains(line, "] TRICK2") && trickAt < 0:
			trickAt = i
		}
	}
	require.GreaterOrEqual(t, dealAt, 0, "replayed DEAL missing from trace")
	require.GreaterOrEqual(t, takenAt, 0, "replayed TAKEN missing from trace")
	require.GreaterOrEqual(t, trickAt, 0, "trick request missing from trace")
	assert.Less(t, dealAt, takenAt)
	assert.Less(t, takenAt, trickAt)
}
