// Package client is a probe for the server: it sends one request line and
// reads the reply until the connection is closed.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/request"
	"github.com/ffarham/web-server/pkg/retry"
	"github.com/rs/zerolog"
)

// Client talks to a single server address
type Client struct {
	addr    string
	timeout time.Duration
	retry   retry.Options
	dialer  net.Dialer
	logger  zerolog.Logger
}

// New creates a client for addr. timeout bounds dialing and each exchange; 0 disables it.
func New(addr string, timeout time.Duration, retryOpts retry.Options, logger zerolog.Logger) *Client {
	return &Client{
		addr:    addr,
		timeout: timeout,
		retry:   retryOpts,
		dialer:  net.Dialer{Timeout: timeout},
		logger:  logger,
	}
}

// NewFromConfig creates a client from the client and retry sections of cfg
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Client {
	return New(cfg.Client.Addr, cfg.Client.Timeout, retry.FromConfig(cfg, logger), logger)
}

// Get requests uri with a well-formed GET request line and parses the reply
func (c *Client) Get(ctx context.Context, uri string) (*Reply, error) {
	raw, err := c.Do(ctx, fmt.Sprintf("%s %s %s\r\n\r\n", request.MethodGet, uri, request.Version11))
	if err != nil {
		return nil, err
	}
	return ParseReply(raw)
}

// Do sends text verbatim and returns everything the server wrote before closing
func (c *Client) Do(ctx context.Context, text string) (string, error) {
	conn, err := retry.Do(ctx, func() (net.Conn, error) {
		return c.dialer.DialContext(ctx, "tcp", c.addr)
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer conn.Close()

	if c.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}

	c.logger.Debug().Str("addr", c.addr).Int("bytes", len(text)).Msg("sending request")
	if _, err := io.WriteString(conn, text); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return string(reply), fmt.Errorf("failed to read reply: %w", err)
	}
	return string(reply), nil
}
