// Package request turns the bytes received on a connection into a validated
// HTTP/1.1 request line. Only GET requests for HTTP/1.1 are accepted; headers
// and bodies are ignored.
package request

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MethodGet is the only verb the server answers
	MethodGet = "GET"
	// Version11 is the only protocol version the server answers
	Version11 = "HTTP/1.1"
)

var (
	// ErrNoRequest is returned when nothing was received
	ErrNoRequest = errors.New("no request received")
	// ErrMalformedRequestLine is returned when the request line is not "<verb> <uri> <version>"
	ErrMalformedRequestLine = errors.New("malformed request line")
	// ErrUnsupportedMethod is returned for any verb other than GET
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrUnsupportedVersion is returned for any version other than HTTP/1.1
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
)

// Request is a parsed request line. It is never modified after Parse returns it.
type Request struct {
	Method string
	URI    string
}

// Parse validates the first of lines as a request line. All other lines are ignored.
func Parse(lines []string) (*Request, error) {
	if len(lines) == 0 {
		return nil, ErrNoRequest
	}

	fields := strings.Split(lines[0], " ")
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedRequestLine, len(fields))
	}
	method, uri, version := fields[0], fields[1], fields[2]

	if method != MethodGet {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if version != Version11 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	if !strings.HasPrefix(uri, "/") {
		return nil, fmt.Errorf("%w: uri %q does not start with /", ErrMalformedRequestLine, uri)
	}

	return &Request{Method: method, URI: uri}, nil
}

// ParseText splits text into lines and parses the request line
func ParseText(text string) (*Request, error) {
	return Parse(SplitLines(text))
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines splits text into lines ended by "\r\n", "\n" or a lone "\r".
// A final line terminator does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = lineEndings.Replace(text)
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
