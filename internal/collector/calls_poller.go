package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/playok/astermon/internal/asterisk"
	"github.com/playok/astermon/internal/chart"
	"github.com/playok/astermon/internal/model"
)

const (
	DashboardCalls = "calls"

	TextActiveCalls    = "total-active-calls"
	TextCallsProcessed = "total-calls-processed"
	FigureChannelStats = "channel-stats"
	FigureEndpoints    = "endpoint-status"
	FigureJitter       = "jitter-analysis"
	FigurePacketLoss   = "packet-loss-analysis"
	FigureTransRecv    = "trans-recv-analysis"
)

var callsFigures = []string{FigureChannelStats, FigureEndpoints, FigureJitter, FigurePacketLoss, FigureTransRecv}

// CallSource is the subset of the Asterisk CLI the calls dashboard reads.
type CallSource interface {
	CoreCalls(ctx context.Context) (asterisk.CallStats, error)
	ChannelStats(ctx context.Context) ([]asterisk.ChannelStat, error)
	Endpoints(ctx context.Context) ([]asterisk.Endpoint, error)
}

// CallsPoller rebuilds call, channel and endpoint charts from scratch on
// every tick. It keeps no history besides the last error per query, used to
// avoid repeating the same log line.
type CallsPoller struct {
	source   CallSource
	interval time.Duration
	now      func() time.Time
	lastErr  map[string]string
}

func NewCallsPoller(source CallSource, interval time.Duration) *CallsPoller {
	return &CallsPoller{
		source:   source,
		interval: interval,
		now:      time.Now,
		lastErr:  make(map[string]string),
	}
}

func (p *CallsPoller) Name() string { return DashboardCalls }

func (p *CallsPoller) Layout() model.Layout {
	slots := make([]model.FigureSlot, len(callsFigures))
	for i, id := range callsFigures {
		slots[i] = model.FigureSlot{ID: id}
	}
	return model.Layout{
		Title:    "Asterisk Monitoring Dashboard",
		Texts:    []string{TextActiveCalls, TextCallsProcessed},
		Figures:  slots,
		Interval: p.interval.Milliseconds(),
	}
}

// Poll queries the CLI three times and renders the calls dashboard.
func (p *CallsPoller) Poll(ctx context.Context) model.Frame {
	now := p.now()
	ts := now.Unix()

	calls, err := p.source.CoreCalls(ctx)
	p.noteErr(asterisk.QueryCoreCalls, err)
	if err != nil {
		calls = asterisk.CallStats{}
	}
	stats, err := p.source.ChannelStats(ctx)
	p.noteErr(asterisk.QueryChannelStats, err)
	if err != nil {
		stats = nil
	}
	endpoints, err := p.source.Endpoints(ctx)
	p.noteErr(asterisk.QueryEndpoints, err)
	if err != nil {
		endpoints = nil
	}

	frame := model.Frame{
		Dashboard: DashboardCalls,
		Timestamp: ts,
		Texts: map[string]string{
			TextActiveCalls:    fmt.Sprintf("Active Calls: %d", calls.Active),
			TextCallsProcessed: fmt.Sprintf("Total Calls Processed: %d", calls.Processed),
		},
		Figures: BuildCallFigures(stats, endpoints),
	}

	frame.Samples = append(frame.Samples,
		makeSample(ts, DashboardCalls, "calls.active", float64(calls.Active)),
		makeSample(ts, DashboardCalls, "calls.processed", float64(calls.Processed)),
		makeSample(ts, DashboardCalls, "endpoints.count", float64(len(endpoints))),
	)
	for _, st := range stats {
		frame.Samples = append(frame.Samples,
			labeledSample(ts, "channel.recv_count", float64(st.RecvCount), st.ChannelID),
			labeledSample(ts, "channel.lost_pct", st.LostPct, st.ChannelID),
			labeledSample(ts, "channel.recv_jitter", st.RecvJitter, st.ChannelID),
			labeledSample(ts, "channel.trans_count", float64(st.TransCount), st.ChannelID),
			labeledSample(ts, "channel.trans_jitter", st.TransJitter, st.ChannelID),
		)
	}
	return frame
}

// BuildCallFigures renders the five channel/endpoint charts. When there is
// neither channel nor endpoint data every figure is empty.
func BuildCallFigures(stats []asterisk.ChannelStat, endpoints []asterisk.Endpoint) map[string]chart.Figure {
	figs := make(map[string]chart.Figure, len(callsFigures))
	for _, id := range callsFigures {
		figs[id] = chart.Figure{}
	}
	if len(stats) == 0 && len(endpoints) == 0 {
		return figs
	}

	ids := make([]string, len(stats))
	recv := make([]float64, len(stats))
	trans := make([]float64, len(stats))
	lost := make([]float64, len(stats))
	rxJitter := make([]float64, len(stats))
	txJitter := make([]float64, len(stats))
	for i, st := range stats {
		ids[i] = st.ChannelID
		recv[i] = float64(st.RecvCount)
		trans[i] = float64(st.TransCount)
		lost[i] = st.LostPct
		rxJitter[i] = st.RecvJitter
		txJitter[i] = st.TransJitter
	}

	names := make([]string, len(endpoints))
	states := make([]string, len(endpoints))
	ones := make([]float64, len(endpoints))
	for i, ep := range endpoints {
		names[i] = ep.Name
		states[i] = ep.State
		ones[i] = 1
	}
	status := chart.Bar("Endpoint Status", names, ones, "")
	status.Text = states

	figs[FigureChannelStats] = chart.New("PJSIP Channel Stats", "ChannelId", "Value",
		chart.Bar("Recv Count", ids, recv, "blue"),
		chart.Bar("Trans Count", ids, trans, "red"),
	)
	figs[FigureEndpoints] = chart.New("PJSIP Endpoint Status", "Endpoint", "Status", status)
	figs[FigureJitter] = chart.New("Jitter Analysis", "ChannelId", "Jitter (ms)",
		chart.Scatter("Recv Jitter", ids, rxJitter, "green"),
		chart.Scatter("Trans Jitter", ids, txJitter, "orange"),
	)
	figs[FigurePacketLoss] = chart.New("Packet Loss Analysis", "ChannelId", "Loss Percentage (%)",
		chart.Scatter("Packet Loss %", ids, lost, "red"),
	)
	figs[FigureTransRecv] = chart.New("Transmitted and Received Packets Per Minute", "ChannelId", "Packet Count",
		chart.Scatter("Trans Count", ids, trans, "blue"),
		chart.Scatter("Recv Count", ids, recv, "green"),
	)
	return figs
}

func (p *CallsPoller) noteErr(query string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if p.lastErr[query] == msg {
		return
	}
	if msg != "" {
		log.Printf("[calls] %q: %s", query, msg)
	} else {
		log.Printf("[calls] %q: recovered", query)
	}
	p.lastErr[query] = msg
}

func labeledSample(ts int64, name string, value float64, label string) model.MetricSample {
	s := makeSample(ts, DashboardCalls, name, value)
	s.Labels = label
	return s
}
