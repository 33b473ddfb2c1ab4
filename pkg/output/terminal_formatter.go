package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/quick"
	"github.com/fatih/color"
	"github.com/ffarham/web-server/pkg/client"
)

// TerminalFormatter renders probe replies for a terminal
type TerminalFormatter struct {
	useColor bool
	style    string
}

// NewTerminalFormatter creates a new terminal formatter
func NewTerminalFormatter(useColor bool) *TerminalFormatter {
	return &TerminalFormatter{
		useColor: useColor,
		style:    "monokai",
	}
}

// WriteReply writes the status line, the headers and the body of reply to w.
// With color enabled the status line is colored by class and the body is
// highlighted as HTML.
func (f *TerminalFormatter) WriteReply(w io.Writer, reply *client.Reply) error {
	statusLine := fmt.Sprintf("%s %d %s", reply.Version, reply.Status, reply.Phrase)
	if _, err := fmt.Fprintln(w, f.colorize(statusLine, statusColor(reply.Status))); err != nil {
		return err
	}

	for _, h := range reply.Headers {
		name, value, _ := strings.Cut(h, ":")
		line := f.colorize(name+":", color.New(color.FgCyan)) + value
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if reply.Body == "" {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return f.HighlightHTML(w, reply.Body)
}

// HighlightHTML writes body to w, syntax highlighted when color is enabled
func (f *TerminalFormatter) HighlightHTML(w io.Writer, body string) error {
	if f.useColor {
		var sb strings.Builder
		if err := quick.Highlight(&sb, body, "html", "terminal16m", f.style); err == nil {
			_, err := fmt.Fprintln(w, sb.String())
			return err
		}
	}
	_, err := fmt.Fprintln(w, body)
	return err
}

// colorize applies c to text if color is enabled
func (f *TerminalFormatter) colorize(text string, c *color.Color) string {
	if !f.useColor {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}

// statusColor picks a color by status class
func statusColor(status int) *color.Color {
	switch {
	case status >= 500:
		return color.New(color.FgRed, color.Bold)
	case status >= 300:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}
