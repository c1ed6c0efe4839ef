package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playok/astermon/internal/chart"
	"github.com/playok/astermon/internal/model"
	"github.com/playok/astermon/internal/ring"
)

const (
	DashboardProcess = "process"

	// ProcessNotFoundText is shown instead of charts while the monitored
	// process is absent.
	ProcessNotFoundText = "Asterisk process not found"

	TextTotalInvites  = "total-invites"
	FigureCPU         = "live-graph-cpu"
	FigureMemory      = "live-graph-memory"
	FigureInvites     = "live-graph-invite"
	FigureInviteRate  = "live-graph-invite-rate"
	processFigureSize = 300
)

const timeLabelFormat = "15:04:05"

// ProcessPoller tracks resource usage and SIP signalling volume of one
// process. All rolling state lives here and is only touched from Poll, which
// the scheduler never runs concurrently.
type ProcessPoller struct {
	probe       ProcessProbe
	invites     InviteSource
	processName string
	interval    time.Duration
	now         func() time.Time

	times    *ring.Buffer[string]
	cpu      *ring.Buffer[float64]
	memory   *ring.Buffer[float64]
	total    *ring.Buffer[float64]
	rate     *ring.Buffer[float64]
	prevSeen int
	present  bool
}

// ProcessPollerOptions configures a ProcessPoller.
type ProcessPollerOptions struct {
	ProcessName string
	Capacity    int
	Interval    time.Duration
	Now         func() time.Time
}

func NewProcessPoller(probe ProcessProbe, invites InviteSource, opts ProcessPollerOptions) *ProcessPoller {
	if opts.ProcessName == "" {
		opts.ProcessName = "asterisk"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ProcessPoller{
		probe:       probe,
		invites:     invites,
		processName: opts.ProcessName,
		interval:    opts.Interval,
		now:         opts.Now,
		times:       ring.New[string](opts.Capacity),
		cpu:         ring.New[float64](opts.Capacity),
		memory:      ring.New[float64](opts.Capacity),
		total:       ring.New[float64](opts.Capacity),
		rate:        ring.New[float64](opts.Capacity),
	}
}

func (p *ProcessPoller) Name() string { return DashboardProcess }

func (p *ProcessPoller) Layout() model.Layout {
	return model.Layout{
		Title: "Asterisk Process Monitoring",
		Texts: []string{TextTotalInvites},
		Figures: []model.FigureSlot{
			{ID: FigureCPU, Height: processFigureSize},
			{ID: FigureMemory, Height: processFigureSize},
			{ID: FigureInvites, Height: processFigureSize},
			{ID: FigureInviteRate, Height: processFigureSize},
		},
		Interval: p.interval.Milliseconds(),
	}
}

// Poll samples the process once and renders the four time-series charts.
func (p *ProcessPoller) Poll(ctx context.Context) model.Frame {
	now := p.now()
	frame := model.Frame{
		Dashboard: DashboardProcess,
		Timestamp: now.Unix(),
		Texts:     map[string]string{},
		Figures: map[string]chart.Figure{
			FigureCPU:        {},
			FigureMemory:     {},
			FigureInvites:    {},
			FigureInviteRate: {},
		},
	}

	usage, err := p.probe.Lookup(ctx, p.processName)
	if err != nil {
		if p.present || !errors.Is(err, ErrProcessNotFound) {
			log.Printf("[process] %s: %v", p.processName, err)
		}
		p.present = false
		frame.Texts[TextTotalInvites] = ProcessNotFoundText
		return frame
	}
	if !p.present {
		log.Printf("[process] %s found (PID %d)", p.processName, usage.PID)
		p.present = true
	}

	memMB := float64(usage.RSSBytes) / (1024 * 1024)
	seen := p.invites.Count(ctx)
	rate := seen - p.prevSeen
	p.prevSeen = seen

	p.times.Push(now.Format(timeLabelFormat))
	p.cpu.Push(usage.CPUPercent)
	p.memory.Push(memMB)
	p.total.Push(float64(seen))
	p.rate.Push(float64(rate))

	x := p.times.Values()
	frame.Figures[FigureCPU] = chart.TimeSeries("CPU Usage Over Time", "CPU Usage (%)", "CPU Usage (%)", x, p.cpu.Values())
	frame.Figures[FigureMemory] = chart.TimeSeries("Memory Usage Over Time", "Memory Usage (MB)", "Memory Usage (MB)", x, p.memory.Values())
	frame.Figures[FigureInvites] = chart.TimeSeries("Total INVITE Packets Over Time", "Number of INVITE Packets", "Total INVITE Packets", x, p.total.Values())
	frame.Figures[FigureInviteRate] = chart.TimeSeries("INVITE Packets Per Second Over Time", "Packets Per Second", "INVITE Packets Per Second", x, p.rate.Values())
	frame.Texts[TextTotalInvites] = fmt.Sprintf("Total INVITE Packets: %d", seen)

	ts := now.Unix()
	frame.Samples = []model.MetricSample{
		makeSample(ts, DashboardProcess, "process.cpu_pct", usage.CPUPercent),
		makeSample(ts, DashboardProcess, "process.rss_mb", memMB),
		makeSample(ts, DashboardProcess, "sip.invites_total", float64(seen)),
		makeSample(ts, DashboardProcess, "sip.invites_rate", float64(rate)),
	}
	return frame
}
