// Package ftp serves the FTP control channel.
//
// The server accepts TCP connections, decodes command lines with package
// command and answers each one with a fixed RFC 959 reply. There is no data
// channel and no authentication: USER/PASS always succeed.
//
// Admission is bounded by a session pool. Peers that keep sending oversized
// lines or garbage are refused for a while by a per-host circuit breaker.
package ftp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

var ErrServerClosed = errors.New("ftp: server closed")

// Server is an FTP control-channel server. Create it with NewServer.
type Server struct {
	config   Config
	logger   *slog.Logger
	sessions *sessionPool
	peers    *peerRegistry // nil when breakers are disabled
	stats    serverStatsCollector

	mu        sync.Mutex
	closed    bool
	done      chan struct{}
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup
}

// NewServer validates config and allocates the session pool.
// Zero config fields take their DefaultConfig value.
func NewServer(config Config) (*Server, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sessions, err := newSessionPool(config.MaxConnections, config.MaxLineSize, config.AcquireTimeout)
	if err != nil {
		return nil, fmt.Errorf("create session pool: %w", err)
	}

	s := &Server{
		config:    config,
		logger:    config.Logger,
		sessions:  sessions,
		done:      make(chan struct{}),
		listeners: make(map[net.Listener]struct{}),
		conns:     make(map[net.Conn]struct{}),
	}
	if !config.Breaker.Disabled {
		s.peers = newPeerRegistry(newPeerBreakerFunc(config.Breaker, config.Logger))
	}
	return s, nil
}

// ListenAndServe listens on Config.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Close is called, and
// serves each one in its own goroutine. ln is closed on return.
//
// Serve returns ErrServerClosed after Close and ctx.Err() after cancellation.
// Sessions already running keep going until Close.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.trackListener(ln) {
		_ = ln.Close()
		return ErrServerClosed
	}
	defer s.untrackListener(ln)

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	if s.peers != nil {
		go s.prunePeers(ctx)
	}

	s.logger.Info("serving", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.stats.recordAccepted()

		if !s.trackConn(conn) {
			_ = conn.Close()
			return ErrServerClosed
		}

		go func() {
			defer s.wg.Done()
			defer s.untrackConn(conn)
			s.handleConn(ctx, conn)
		}()
	}
}

// Close stops every Serve loop, closes live connections and waits for their
// sessions to end.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)

	var errs []error
	for ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.sessions.close()
	return errors.Join(errs...)
}

// Stats returns a snapshot of the server counters.
func (s *Server) Stats() ServerStats {
	stats := s.stats.snapshot()
	stats.ActiveSessions, stats.PooledSessions = s.sessions.stat()
	if s.peers != nil {
		stats.Peers = int32(s.peers.len())
	}
	return stats
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("remote", conn.RemoteAddr().String())
	run := func() (struct{}, error) {
		return struct{}{}, s.runSession(ctx, conn, logger)
	}

	var err error
	if s.peers != nil {
		_, err = s.peers.breaker(peerHost(conn.RemoteAddr())).Execute(run)
	} else {
		_, err = run()
	}

	switch {
	case err == nil:
		logger.Debug("session closed")
	case isRefused(err):
		s.stats.recordRefused()
		logger.Warn("connection refused", "error", err)
		writeReply(conn, codeNotAvailable, "Service not available, closing control connection.")
	case errors.Is(err, errNoSession):
	default:
		logger.Info("session ended", "error", err)
	}
}

func (s *Server) runSession(ctx context.Context, conn net.Conn, logger *slog.Logger) error {
	res, err := s.sessions.acquire(ctx)
	if err != nil {
		s.stats.recordRejected()
		logger.Warn("connection rejected", "error", err)
		writeReply(conn, codeNotAvailable, "Too many connections, try again later.")
		return err
	}

	sess := res.Value()
	sess.attach(conn, logger)
	defer func() {
		sess.reset()
		res.Release()
	}()

	return sess.serve(&s.config, &s.stats)
}

func (s *Server) prunePeers(ctx context.Context) {
	ticker := time.NewTicker(s.config.Breaker.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.peers.prune(); n > 0 {
				s.logger.Debug("pruned peers", "count", n)
			}
		}
	}
}

// writeReply answers a connection that has no session.
func writeReply(conn net.Conn, code int, text string) {
	_, _ = fmt.Fprintf(conn, "%d %s\r\n", code, text)
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) trackListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}

func (s *Server) untrackListener(ln net.Listener) {
	s.mu.Lock()
	delete(s.listeners, ln)
	s.mu.Unlock()
	_ = ln.Close()
}

// trackConn registers conn and adds it to the session wait group.
func (s *Server) trackConn(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
