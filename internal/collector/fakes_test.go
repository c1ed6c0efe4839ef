package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/playok/astermon/internal/asterisk"
	"github.com/playok/astermon/internal/model"
)

type fakeProbe struct {
	usage ProcessUsage
	err   error
}

func (f *fakeProbe) Lookup(context.Context, string) (ProcessUsage, error) {
	return f.usage, f.err
}

type fakeInvites struct {
	counts []int
	calls  int
}

func (f *fakeInvites) Count(context.Context) int {
	n := f.counts[len(f.counts)-1]
	if f.calls < len(f.counts) {
		n = f.counts[f.calls]
	}
	f.calls++
	return n
}

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

type fakeCallSource struct {
	calls     asterisk.CallStats
	stats     []asterisk.ChannelStat
	endpoints []asterisk.Endpoint
	err       error
}

func (f *fakeCallSource) CoreCalls(context.Context) (asterisk.CallStats, error) {
	return f.calls, f.err
}

func (f *fakeCallSource) ChannelStats(context.Context) ([]asterisk.ChannelStat, error) {
	return f.stats, f.err
}

func (f *fakeCallSource) Endpoints(context.Context) ([]asterisk.Endpoint, error) {
	return f.endpoints, f.err
}

type countingPoller struct {
	mu          sync.Mutex
	polls       int
	inFlight    int
	maxInFlight int
	delay       time.Duration
}

func (p *countingPoller) Name() string         { return "counting" }
func (p *countingPoller) Layout() model.Layout { return model.Layout{} }

func (p *countingPoller) Poll(ctx context.Context) model.Frame {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
		}
	}
	p.mu.Lock()
	p.polls++
	n := p.polls
	p.mu.Unlock()
	return model.Frame{
		Dashboard: "counting",
		Texts:     map[string]string{"n": strings.Repeat("x", n)},
		Samples:   []model.MetricSample{{MetricName: "polls", Value: float64(n)}},
	}
}

func (p *countingPoller) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(time.Second)
		return now
	}
}
