// Package asterisk queries a running Asterisk server through its remote
// console ("asterisk -rx") and parses the tabular text it prints.
package asterisk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playok/astermon/internal/execx"
)

// CLI queries issued every poll.
const (
	QueryCoreCalls    = "core show calls"
	QueryChannelStats = "pjsip show channelstats"
	QueryEndpoints    = "pjsip show endpoints"
)

// ErrNoData is returned when a CLI query produced no output.
var ErrNoData = errors.New("asterisk: no data")

// Client runs remote console commands.
type Client struct {
	runner execx.Runner
	binary string
}

// NewClient creates a client that invokes binary (default "asterisk").
func NewClient(runner execx.Runner, binary string) *Client {
	if binary == "" {
		binary = "asterisk"
	}
	return &Client{runner: runner, binary: binary}
}

// Command runs a single "-rx" query and returns its stdout.
func (c *Client) Command(ctx context.Context, query string) (string, error) {
	out, err := c.runner.Output(ctx, c.binary, "-rx", query)
	if err != nil {
		return "", fmt.Errorf("asterisk -rx %q: %w", query, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoData
	}
	return out, nil
}

// CoreCalls returns active and processed call counts.
func (c *Client) CoreCalls(ctx context.Context) (CallStats, error) {
	out, err := c.Command(ctx, QueryCoreCalls)
	if err != nil {
		return CallStats{}, err
	}
	return ParseCoreCalls(out), nil
}

// ChannelStats returns per-channel RTP statistics.
func (c *Client) ChannelStats(ctx context.Context) ([]ChannelStat, error) {
	out, err := c.Command(ctx, QueryChannelStats)
	if err != nil {
		return nil, err
	}
	return ParseChannelStats(out), nil
}

// Endpoints returns configured PJSIP endpoints and their state.
func (c *Client) Endpoints(ctx context.Context) ([]Endpoint, error) {
	out, err := c.Command(ctx, QueryEndpoints)
	if err != nil {
		return nil, err
	}
	return ParseEndpoints(out), nil
}
