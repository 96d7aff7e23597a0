package server

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/Andreluss/BlackLady-Network-Game/internal/protocol"
)

// outQueueSize bounds the outbound frame queue. Catch-up after a reseat is
// at most one DEAL plus thirteen TAKEN frames, so a stalled peer is the
// only way to fill it.
const outQueueSize = 256

type eventKind int

const (
	evAccept eventKind = iota
	evFrame
	evClosed
)

// event is one item on the engine's single event channel: a newly accepted
// socket, a complete inbound frame, or a terminal connection error.
type event struct {
	kind  eventKind
	nc    net.Conn // evAccept
	c     *conn    // evFrame, evClosed
	frame string   // evFrame
}

// conn binds one TCP connection to the engine. A reader goroutine posts
// complete CRLF frames to the engine's event channel and a writer goroutine
// drains the ordered outbound queue; everything else on the struct is owned
// by the engine goroutine.
type conn struct {
	nc         net.Conn
	events     chan<- event
	out        chan string
	outOnce    sync.Once
	closeOnce  sync.Once
	writerDone chan struct{}
	logger     *log.Logger
	clock      quartz.Clock
	trace      io.Writer
	local      string
	remote     string

	// engine-owned
	inbox   []string
	broken  bool
	closing bool
}

func newConn(nc net.Conn, events chan<- event, logger *log.Logger, clock quartz.Clock, trace io.Writer) *conn {
	c := &conn{
		nc:         nc,
		events:     events,
		out:        make(chan string, outQueueSize),
		writerDone: make(chan struct{}),
		logger:     logger,
		clock:      clock,
		trace:      trace,
		local:      nc.LocalAddr().String(),
		remote:     nc.RemoteAddr().String(),
	}
	go c.readLoop()
	go c.writeLoop()
	return c
}

func (c *conn) readLoop() {
	sc := bufio.NewScanner(c.nc)
	sc.Buffer(make([]byte, 0, 1024), protocol.MaxFrameSize)
	sc.Split(protocol.ScanFrames)
	for sc.Scan() {
		frame := sc.Text()
		protocol.Trace(c.trace, c.remote, c.local, c.clock.Now(), frame)
		c.events <- event{kind: evFrame, c: c, frame: frame}
	}
	c.events <- event{kind: evClosed, c: c}
}

func (c *conn) writeLoop() {
	defer close(c.writerDone)
	failed := false
	for frame := range c.out {
		if failed {
			continue
		}
		if _, err := io.WriteString(c.nc, frame); err != nil {
			failed = true
			c.events <- event{kind: evClosed, c: c}
		}
	}
	// Queue closed: everything enqueued before the close has been written,
	// which is what candidate rejection and shutdown rely on.
	c.closeOnce.Do(func() { _ = c.nc.Close() })
}

// enqueue appends a frame to the outbound queue. Called only from the
// engine goroutine.
func (c *conn) enqueue(m protocol.Message) {
	if c.broken || c.closing {
		return
	}
	frame := m.Render()
	select {
	case c.out <- frame:
		protocol.Trace(c.trace, c.local, c.remote, c.clock.Now(), frame)
	default:
		c.logger.Warn("outbound queue full, dropping connection", "remote", c.remote)
		c.broken = true
	}
}

// hasFrame reports whether a complete inbound frame is waiting. A broken
// connection never reports frames.
func (c *conn) hasFrame() bool {
	return !c.broken && len(c.inbox) > 0
}

// takeFrame removes and returns the oldest complete frame, CRLF included
func (c *conn) takeFrame() string {
	frame := c.inbox[0]
	c.inbox = c.inbox[1:]
	return frame
}

// closeNow tears the connection down immediately, discarding any frames
// still queued.
func (c *conn) closeNow() {
	c.closing = true
	c.closeOnce.Do(func() { _ = c.nc.Close() })
	c.outOnce.Do(func() { close(c.out) })
}

// closeAfterFlush closes the connection once the writer has drained the
// outbound queue. No further enqueues are accepted.
func (c *conn) closeAfterFlush() {
	c.closing = true
	c.outOnce.Do(func() { close(c.out) })
}

// waitFlushed blocks until the writer goroutine has finished. Used at
// graceful shutdown to guarantee final-message delivery.
func (c *conn) waitFlushed() {
	<-c.writerDone
}
