package response

import "fmt"

// Status is the closed set of outcomes the server can report
type Status int

const (
	// StatusOK means the requested resource was found
	StatusOK Status = iota
	// StatusRedirected means the fallback resource was served instead of the requested one.
	// It is reported as 301 but carries no Location header.
	StatusRedirected
	// StatusInternalError covers every failure and any code outside the set above
	StatusInternalError
)

var statusInfo = map[Status]struct {
	code int
	text string
}{
	StatusOK:            {200, "OK"},
	StatusRedirected:    {301, "Redirected"},
	StatusInternalError: {500, "Internal server error."},
}

// StatusFromCode maps a numeric code onto a Status. Unknown codes map to StatusInternalError.
func StatusFromCode(code int) Status {
	switch code {
	case 200:
		return StatusOK
	case 301:
		return StatusRedirected
	default:
		return StatusInternalError
	}
}

// Code returns the numeric status code
func (s Status) Code() int {
	if info, ok := statusInfo[s]; ok {
		return info.code
	}
	return statusInfo[StatusInternalError].code
}

// Text returns the reason phrase sent after the code
func (s Status) Text() string {
	if info, ok := statusInfo[s]; ok {
		return info.text
	}
	return statusInfo[StatusInternalError].text
}

func (s Status) String() string {
	return fmt.Sprintf("%d %s", s.Code(), s.Text())
}
