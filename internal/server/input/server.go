// Package input accepts host pointer event streams over TCP.
package input

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ReversedGames/dosbox-staging/hostinput"
)

type Server struct {
	config ServerConfig
	sink   hostinput.Sink
	logger *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
	ln        net.Listener

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
}

func New(config ServerConfig, sink hostinput.Sink, logger *slog.Logger) *Server {
	return &Server{
		config: config,
		sink:   sink,
		logger: logger,
		ready:  make(chan struct{}),
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds the listen address and handles incoming clients
// until Close is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("Input server listening", "addr", ln.Addr().String())
	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("Input server stopped")
				s.wg.Wait()
				return nil
			}
			s.logger.Error("Accept error", "error", err)
			continue
		}
		s.logger.Info("Input client connected", "remote", c.RemoteAddr())
		s.track(c, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(c, false)
			defer c.Close()
			if err := hostinput.HandleStream(s.idleConn(c), s.sink, s.logger); err != nil {
				if isClientDisconnect(err) {
					s.logger.Info("Input client disconnected", "error", err)
				} else {
					s.logger.Error("Input stream error", "error", err)
				}
			}
		}()
	}
}

// Ready returns a channel that is closed once the server has successfully bound
// to its listen address and is ready to accept connections.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address; only valid after Ready.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the listener and disconnects all clients.
func (s *Server) Close() error {
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()
	return err
}

func (s *Server) track(c net.Conn, add bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

func (s *Server) idleConn(c net.Conn) net.Conn {
	if s.config.IdleTimeout <= 0 {
		return c
	}
	return &idleConn{Conn: c, timeout: s.config.IdleTimeout}
}

// idleConn pushes the read deadline forward on every read.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	_ = c.SetReadDeadline(time.Now().Add(c.timeout))
	return c.Conn.Read(p)
}

func isClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errno, ok := opErr.Err.(syscall.Errno); ok && (errno == syscall.ECONNRESET || errno == syscall.EPIPE) {
			return true
		}
	}
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "connection reset by peer") || strings.Contains(e, "forcibly closed")
}
