// Package handler serves a single accepted connection: read the request, resolve
// the document, write the response and close.
package handler

import (
	"io"
	"net"
	"time"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/request"
	"github.com/ffarham/web-server/pkg/resource"
	"github.com/ffarham/web-server/pkg/response"
	"github.com/rs/zerolog"
)

// Resolver looks up the document for a request URI
type Resolver interface {
	Resolve(uri string) (*resource.Lookup, error)
}

// DefaultReadTimeout is how long a connection may stay silent before it is
// answered as carrying no request
const DefaultReadTimeout = 200 * time.Millisecond

// Options tune how a connection is read and written
type Options struct {
	ServerName     string
	ReadBufferSize int
	ReadTimeout    time.Duration // 0 means DefaultReadTimeout
	WriteTimeout   time.Duration // 0 disables the deadline
}

// OptionsFromConfig extracts handler options from the server section of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ServerName:     cfg.Server.Name,
		ReadBufferSize: cfg.Server.ReadBufferSize,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	}
}

// Handler runs the request pipeline. It holds no per-connection state and may
// be shared by any number of workers.
type Handler struct {
	resolver Resolver
	opts     Options
	logger   zerolog.Logger
}

// New creates a handler
func New(resolver Resolver, opts Options, logger zerolog.Logger) *Handler {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Handler{
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// Serve handles conn, which is both the read and the write side
func (h *Handler) Serve(conn net.Conn) {
	h.Handle(conn, conn)
}

// Handle reads one request from in and answers on out. Any failure along the
// way produces the 500 response instead. out is closed exactly once, on every path.
func (h *Handler) Handle(in io.Reader, out io.WriteCloser) {
	defer func() {
		if err := out.Close(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to close connection")
		}
	}()

	res, err := h.respond(in)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to process request")
		res = response.NewFailure()
	}

	h.write(out, res)
}

// respond parses, resolves and builds, stopping at the first failure.
// The read deadline bounds the wait for the request: a silent client is
// answered like an empty one instead of holding the worker.
func (h *Handler) respond(in io.Reader) (*response.Response, error) {
	if d, ok := in.(interface{ SetReadDeadline(time.Time) error }); ok {
		_ = d.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	}

	lines, err := request.ReadMessage(in, h.opts.ReadBufferSize)
	if err != nil {
		return nil, err
	}

	req, err := request.Parse(lines)
	if err != nil {
		return nil, err
	}
	h.logger.Debug().Str("method", req.Method).Str("uri", req.URI).Msg("request received")

	lookup, err := h.resolver.Resolve(req.URI)
	if err != nil {
		return nil, err
	}

	return response.New(lookup.Status, lookup.Content, h.opts.ServerName), nil
}

// write sends res; errors are logged since there is nobody left to tell
func (h *Handler) write(out io.Writer, res *response.Response) {
	if h.opts.WriteTimeout > 0 {
		if d, ok := out.(interface{ SetWriteDeadline(time.Time) error }); ok {
			_ = d.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
		}
	}

	n, err := res.WriteTo(out)
	if err != nil {
		h.logger.Error().Err(err).Int("status", res.Status.Code()).Msg("failed to write response")
		return
	}
	h.logger.Debug().Int("status", res.Status.Code()).Int64("bytes", n).Msg("response written")
}
