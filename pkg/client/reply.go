package client

import (
	"fmt"
	"strconv"
	"strings"
)

// Reply is a response as received from the server
type Reply struct {
	Version string
	Status  int
	Phrase  string
	Headers []string // "Name: value" lines in the order received
	Body    string
}

// ParseReply splits a raw reply into status line, headers and body. The
// trailing CRLF the server appends to the body is removed.
func ParseReply(raw string) (*Reply, error) {
	head, body, hasBody := strings.Cut(raw, "\r\n\r\n")
	if !hasBody {
		head = strings.TrimSuffix(head, "\r\n")
	}

	lines := strings.Split(head, "\r\n")
	reply, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		if line != "" {
			reply.Headers = append(reply.Headers, line)
		}
	}
	reply.Body = strings.TrimSuffix(body, "\r\n")

	return reply, nil
}

// Header returns the value of the first header called name, compared case-insensitively
func (r *Reply) Header(name string) (string, bool) {
	for _, line := range r.Headers {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func parseStatusLine(line string) (*Reply, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid status line: %q", line)
	}

	status, err := strconv.Atoi(fields[1])
	if err != nil || status/100 < 1 || status/100 > 5 {
		return nil, fmt.Errorf("invalid status code: %q", fields[1])
	}

	return &Reply{
		Version: fields[0],
		Status:  status,
		Phrase:  fields[2],
	}, nil
}
