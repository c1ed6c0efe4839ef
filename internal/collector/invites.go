package collector

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/playok/astermon/internal/execx"
)

// DefaultMarkers are the SIP lines counted in the Asterisk log.
var DefaultMarkers = []string{"INVITE", "180 Ringing", "200 OK"}

// InviteSource reports the cumulative number of matching log lines.
type InviteSource interface {
	Count(ctx context.Context) int
}

// InviteCounter counts log lines containing any marker by running grep
// against the log file.
type InviteCounter struct {
	runner  execx.Runner
	logPath string
	pattern string
	lastErr string
}

func NewInviteCounter(runner execx.Runner, logPath string, markers []string) *InviteCounter {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return &InviteCounter{
		runner:  runner,
		logPath: logPath,
		pattern: strings.Join(quoted, "|"),
	}
}

// Count returns the number of matching lines, or 0 when the search fails.
// grep exits 1 when nothing matches, which is not a failure.
func (c *InviteCounter) Count(ctx context.Context) int {
	out, err := c.runner.Output(ctx, "grep", "-E", "-e", c.pattern, c.logPath)
	if err != nil && out == "" {
		if execx.ExitCode(err) != 1 {
			c.noteErr(err.Error())
		}
		return 0
	}
	c.noteErr("")
	return countLines(out)
}

// noteErr logs search failures once per distinct error so a missing log file
// does not flood the log every tick.
func (c *InviteCounter) noteErr(msg string) {
	if msg == c.lastErr {
		return
	}
	if msg != "" {
		log.Printf("[process] invite search failed: %s", msg)
	} else {
		log.Printf("[process] invite search recovered")
	}
	c.lastErr = msg
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
