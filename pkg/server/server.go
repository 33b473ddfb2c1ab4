// Package server owns the listening socket and dispatches every accepted
// connection to a fixed-size worker pool.
//
// The accept loop never handles a request itself. When all workers are busy,
// accepted connections wait in a bounded queue; when that is full too, the
// accept loop blocks and further clients wait in the socket backlog.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/pool"
	"github.com/rs/zerolog"
)

const maxAcceptBackoff = time.Second

// ConnHandler serves one accepted connection and closes it
type ConnHandler interface {
	Serve(conn net.Conn)
}

// Server accepts connections and hands them to workers
type Server struct {
	config   *config.Config
	handler  ConnHandler
	logger   zerolog.Logger
	listener net.Listener
	pool     *pool.Pool

	mu    sync.Mutex
	conns map[net.Conn]struct{} // accepted and not yet handled
}

// New creates a server; nothing is bound until Listen or Start is called
func New(cfg *config.Config, handler ConnHandler, logger zerolog.Logger) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start binds the listening socket and runs the accept loop until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the configured address with a backlog of twice the worker count
func (s *Server) Listen(ctx context.Context) error {
	ln, err := listen(ctx, s.config.Server.Host, s.config.Server.Port, s.config.Backlog())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ServerAddress(), err)
	}
	s.listener = ln

	s.logger.Info().
		Str("address", ln.Addr().String()).
		Int("workers", s.config.Server.MaxWorkers).
		Int("backlog", s.config.Backlog()).
		Msg("server is listening")
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop. Once ctx is cancelled it stops accepting and
// waits for dispatched connections; any still open after the shutdown timeout
// have their deadlines expired so their workers return.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	defer s.listener.Close()

	s.pool = pool.New(s.config.Server.MaxWorkers, s.config.PendingQueueSize(), s.logger)
	defer s.drain()

	// Closing the listener is what unblocks Accept
	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
	})
	defer stop()

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info().Msg("server stopped accepting connections")
				return nil
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.logger.Error().Err(err).Dur("retry_in", backoff).Msg("failed to accept connection")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if err := s.dispatch(ctx, conn); err != nil {
			s.logger.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("dropping connection")
			s.untrack(conn)
			conn.Close()
		}
	}
}

// dispatch queues conn for the next free worker, blocking while the queue is full
func (s *Server) dispatch(ctx context.Context, conn net.Conn) error {
	s.track(conn)
	return s.pool.Submit(ctx, func(workerID int) {
		defer s.untrack(conn)
		s.logger.Info().
			Int("worker", workerID).
			Str("remote", conn.RemoteAddr().String()).
			Msg("accepted incoming connection")
		s.handler.Serve(conn)
	})
}

// drain stops the pool, forcing the deadlines of open connections when the
// shutdown timeout passes first
func (s *Server) drain() {
	done := make(chan struct{})
	go func() {
		s.pool.Stop()
		close(done)
	}()

	timer := time.NewTimer(s.config.Server.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
	}

	n := s.expireConnections()
	s.logger.Warn().Int("connections", n).Msg("shutdown timeout reached, expiring open connections")
	<-done
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// expireConnections makes every pending read and write on open connections fail now
func (s *Server) expireConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for conn := range s.conns {
		_ = conn.SetDeadline(now)
	}
	return len(s.conns)
}
