package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessNotFound is returned when no process matches the requested name.
var ErrProcessNotFound = errors.New("process not found")

// ProcessUsage is a point-in-time resource reading for one process.
type ProcessUsage struct {
	PID        int32
	CPUPercent float64
	RSSBytes   uint64
}

// ProcessProbe locates a process by exact name and reads its usage.
type ProcessProbe interface {
	Lookup(ctx context.Context, name string) (ProcessUsage, error)
}

// GopsutilProbe reads the host process table.
type GopsutilProbe struct {
	// CPUSample is the window CPU usage is measured over.
	CPUSample time.Duration
}

func NewGopsutilProbe(cpuSample time.Duration) *GopsutilProbe {
	return &GopsutilProbe{CPUSample: cpuSample}
}

// Lookup returns the first process whose name equals name. Individual reads
// that fail are reported as zero.
func (p *GopsutilProbe) Lookup(ctx context.Context, name string) (ProcessUsage, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return ProcessUsage{}, fmt.Errorf("list processes: %w", err)
	}
	for _, proc := range procs {
		n, err := proc.NameWithContext(ctx)
		if err != nil || n != name {
			continue
		}
		usage := ProcessUsage{PID: proc.Pid}
		if pct, err := proc.PercentWithContext(ctx, p.CPUSample); err == nil {
			usage.CPUPercent = pct
		}
		if mi, err := proc.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			usage.RSSBytes = mi.RSS
		}
		return usage, nil
	}
	return ProcessUsage{}, ErrProcessNotFound
}
