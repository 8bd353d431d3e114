package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// ServerConfig holds the network terminal settings of the station.
type ServerConfig struct {
	Listen         string
	AllowedCIDRs   []string
	MaxConnections int
	IdleTimeout    time.Duration
}

// Server exposes the console shell as a plain-text TCP terminal, one shell
// per connection. All connections share the same Console.
type Server struct {
	console *Console
	cfg     ServerConfig
	allowed []*net.IPNet
	logger  *log.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]net.Conn
	wg       sync.WaitGroup
}

// NewServer checks the allowed networks and returns a server that is not
// listening yet.
func NewServer(c *Console, cfg ServerConfig, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 4
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}

	s := &Server{console: c, cfg: cfg, logger: logger, conns: make(map[string]net.Conn)}
	for _, cidr := range cfg.AllowedCIDRs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed network %q: %w", cidr, err)
		}
		s.allowed = append(s.allowed, n)
	}
	return s, nil
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts terminal connections on ln until ctx is done. Open
// connections are closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Printf("console: terminal listening on %s", ln.Addr())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		s.shutdown()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.logger.Printf("console: accept failed: %v", err)
			continue
		}

		if !s.isAllowed(conn) {
			s.logger.Printf("console: rejected terminal from %s (not in allowed networks)", conn.RemoteAddr())
			conn.Close()
			continue
		}
		if !s.track(conn) {
			fmt.Fprintln(conn, "Station busy.")
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	s.logger.Printf("console: terminal opened from %s", conn.RemoteAddr())
	ic := &idleConn{Conn: conn, timeout: s.cfg.IdleTimeout}
	if err := NewShell(s.console, ic, ic).Run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Printf("console: terminal %s ended: %v", conn.RemoteAddr(), err)
	}
}

// Addr returns the listen address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	for _, c := range s.conns {
		c.Close()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) >= s.cfg.MaxConnections {
		return false
	}
	s.conns[conn.RemoteAddr().String()] = conn
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn.RemoteAddr().String())
}

// isAllowed reports whether the peer is inside an allowed network. An empty
// list allows everyone.
func (s *Server) isAllowed(conn net.Conn) bool {
	if len(s.allowed) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range s.allowed {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// idleConn pushes the deadline forward on every read
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
