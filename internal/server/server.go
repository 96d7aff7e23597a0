package server

import (
	"errors"
	"net"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// Server owns the listening socket and the game engine. One Server plays
// exactly one scripted game and then stops.
type Server struct {
	cfg      Config
	logger   *log.Logger
	listener net.Listener
	engine   *engine
}

// New validates the configuration and binds the listening socket. The game
// does not start until Run is called.
func New(cfg Config, logger *log.Logger, clock quartz.Clock) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ln, err := listen(cfg.Port)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger.WithPrefix("server"),
		listener: ln,
		engine:   newEngine(cfg, logger, clock),
	}
	s.logger.Info("listening", "addr", ln.Addr())
	return s, nil
}

// Addr returns the bound listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run accepts connections and plays the configured deals. It returns once
// the final TOTAL has been delivered to all four seats.
func (s *Server) Run() error {
	var g errgroup.Group
	g.Go(s.acceptLoop)
	g.Go(func() error {
		err := s.engine.run()
		// Unblock Accept so the accept loop can observe engine completion.
		_ = s.listener.Close()
		return err
	})
	return g.Wait()
}

// acceptLoop hands accepted sockets to the engine. It never blocks on the
// engine forever: if the game ends first, the socket is closed instead.
func (s *Server) acceptLoop() error {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.engine.done:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		select {
		case s.engine.events <- event{kind: evAccept, nc: nc}:
		case <-s.engine.done:
			_ = nc.Close()
			return nil
		}
	}
}
