//go:build !unix

package server

import (
	"context"
	"net"
	"strconv"
)

// listen opens a TCP listener on host:port. The backlog cannot be chosen here and
// the platform default applies.
func listen(ctx context.Context, host string, port, backlog int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}
