package request

import (
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the largest request ReadMessage accepts when no size is given
const DefaultBufferSize = 8192

// ReadMessage performs exactly one Read on r and returns whatever it delivered as
// lines. A request split across several TCP segments is truncated to the first one;
// no attempt is made to wait for a terminator or a Content-Length.
//
// When r is a connection, the caller's read deadline decides how long "available"
// lasts: a Read that times out before delivering anything is ErrNoRequest.
func ReadMessage(r io.Reader, bufSize int) ([]string, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	buf := make([]byte, bufSize)
	n, err := r.Read(buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrNoRequest, err)
		}
		return nil, ErrNoRequest
	}

	// Data that arrived together with an error is still the request
	return SplitLines(string(buf[:n])), nil
}
