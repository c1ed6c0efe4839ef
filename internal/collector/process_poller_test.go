package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessPoller(probe ProcessProbe, inv InviteSource, capacity int) *ProcessPoller {
	return NewProcessPoller(probe, inv, ProcessPollerOptions{
		Capacity: capacity,
		Interval: time.Second,
		Now:      fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)),
	})
}

func TestProcessPoller_NotFound(t *testing.T) {
	p := newTestProcessPoller(&fakeProbe{err: ErrProcessNotFound}, &fakeInvites{counts: []int{5}}, 0)

	frame := p.Poll(context.Background())

	assert.Equal(t, ProcessNotFoundText, frame.Texts[TextTotalInvites])
	assert.Equal(t, "Asterisk process not found", frame.Texts[TextTotalInvites])
	require.Len(t, frame.Figures, 4)
	for id, fig := range frame.Figures {
		assert.True(t, fig.Empty(), "figure %s should be empty", id)
	}
	assert.Empty(t, frame.Samples)
	assert.Equal(t, 0, p.times.Len())
}

func TestProcessPoller_ProbeErrorTreatedAsAbsent(t *testing.T) {
	p := newTestProcessPoller(&fakeProbe{err: errors.New("permission denied")}, &fakeInvites{counts: []int{1}}, 0)

	frame := p.Poll(context.Background())

	assert.Equal(t, ProcessNotFoundText, frame.Texts[TextTotalInvites])
	assert.True(t, frame.Figures[FigureCPU].Empty())
}

func TestProcessPoller_Found(t *testing.T) {
	probe := &fakeProbe{usage: ProcessUsage{PID: 42, CPUPercent: 12.5, RSSBytes: 64 * 1024 * 1024}}
	p := newTestProcessPoller(probe, &fakeInvites{counts: []int{7}}, 0)

	frame := p.Poll(context.Background())

	assert.Equal(t, "Total INVITE Packets: 7", frame.Texts[TextTotalInvites])
	cpu := frame.Figures[FigureCPU]
	require.Len(t, cpu.Data, 1)
	assert.Equal(t, []string{"10:00:00"}, cpu.Data[0].X)
	assert.Equal(t, []float64{12.5}, cpu.Data[0].Y)
	assert.Equal(t, "CPU Usage Over Time", cpu.Layout.Title.Text)
	assert.Equal(t, []float64{64}, frame.Figures[FigureMemory].Data[0].Y)
	assert.Equal(t, []float64{7}, frame.Figures[FigureInvites].Data[0].Y)
	// first rate is measured against a zero baseline
	assert.Equal(t, []float64{7}, frame.Figures[FigureInviteRate].Data[0].Y)
	assert.Len(t, frame.Samples, 4)
}

func TestProcessPoller_RateIsDeltaBetweenTicks(t *testing.T) {
	probe := &fakeProbe{usage: ProcessUsage{PID: 1}}
	p := newTestProcessPoller(probe, &fakeInvites{counts: []int{10, 15, 15, 22}}, 0)

	var frame = p.Poll(context.Background())
	for i := 0; i < 3; i++ {
		frame = p.Poll(context.Background())
	}

	assert.Equal(t, []float64{10, 15, 15, 22}, frame.Figures[FigureInvites].Data[0].Y)
	assert.Equal(t, []float64{10, 5, 0, 7}, frame.Figures[FigureInviteRate].Data[0].Y)
	assert.Equal(t, []string{"10:00:00", "10:00:01", "10:00:02", "10:00:03"}, frame.Figures[FigureCPU].Data[0].X)
}

func TestProcessPoller_AbsentTickKeepsBaseline(t *testing.T) {
	probe := &fakeProbe{usage: ProcessUsage{PID: 1}}
	inv := &fakeInvites{counts: []int{4, 9}}
	p := newTestProcessPoller(probe, inv, 0)

	p.Poll(context.Background())
	probe.err = ErrProcessNotFound
	p.Poll(context.Background())
	probe.err = nil
	frame := p.Poll(context.Background())

	assert.Equal(t, 2, inv.calls)
	assert.Equal(t, []float64{4, 5}, frame.Figures[FigureInviteRate].Data[0].Y)
}

func TestProcessPoller_BuffersBounded(t *testing.T) {
	probe := &fakeProbe{usage: ProcessUsage{PID: 1, CPUPercent: 1}}
	p := newTestProcessPoller(probe, &fakeInvites{counts: []int{1}}, 100)

	for i := 0; i < 150; i++ {
		p.Poll(context.Background())
	}
	frame := p.Poll(context.Background())

	for id, fig := range frame.Figures {
		require.Len(t, fig.Data, 1, id)
		assert.Len(t, fig.Data[0].X, 100, id)
		assert.Len(t, fig.Data[0].Y, 100, id)
	}
	// 151 ticks starting at 10:00:00; the oldest 51 were evicted
	assert.Equal(t, "10:00:51", frame.Figures[FigureCPU].Data[0].X[0])
}

func TestProcessPoller_Layout(t *testing.T) {
	p := newTestProcessPoller(&fakeProbe{}, &fakeInvites{counts: []int{0}}, 0)

	l := p.Layout()

	assert.Equal(t, "Asterisk Process Monitoring", l.Title)
	assert.Equal(t, []string{TextTotalInvites}, l.Texts)
	require.Len(t, l.Figures, 4)
	assert.Equal(t, FigureCPU, l.Figures[0].ID)
	assert.Equal(t, int64(1000), l.Interval)
}
