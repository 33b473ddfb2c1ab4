// Package response renders status, headers and body into HTTP/1.1 wire format.
package response

import (
	"fmt"
	"io"
	"strings"
)

const (
	protocol = "HTTP/1.1"
	crlf     = "\r\n"
)

// Failure is the exact byte sequence written when a request cannot be served
const Failure = protocol + " 500 Internal server error." + crlf

// Response is a fully built reply. Headers are kept in insertion order and are only appended to.
type Response struct {
	Status  Status
	Headers []string
	Body    string
}

// New builds a response with the fixed header set: Content-Type, charset and Server.
// The body is coerced to valid UTF-8.
func New(status Status, body, serverName string) *Response {
	r := &Response{
		Status: status,
		Body:   strings.ToValidUTF8(body, "�"),
	}
	r.AddHeader("Content-Type", "text/html")
	r.AddHeader("charset", "utf-8")
	r.AddHeader("Server", serverName)
	return r
}

// NewFailure returns the response sent for any failed request
func NewFailure() *Response {
	return &Response{Status: StatusInternalError}
}

// AddHeader appends a "name: value" header line
func (r *Response) AddHeader(name, value string) {
	r.Headers = append(r.Headers, name+": "+value+crlf)
}

// StatusLine returns the first line of the response without its terminator
func (r *Response) StatusLine() string {
	return fmt.Sprintf("%s %d %s", protocol, r.Status.Code(), r.Status.Text())
}

// String renders the response. The body is followed by CRLF and there is no
// Content-Length; the client reads until the connection closes.
// An internal error always renders as Failure.
func (r *Response) String() string {
	if r.Status == StatusInternalError {
		return Failure
	}

	var sb strings.Builder
	sb.WriteString(r.StatusLine())
	sb.WriteString(crlf)
	for _, h := range r.Headers {
		sb.WriteString(h)
	}
	sb.WriteString(crlf)
	sb.WriteString(r.Body)
	sb.WriteString(crlf)
	return sb.String()
}

// WriteTo writes the rendered response to w
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
