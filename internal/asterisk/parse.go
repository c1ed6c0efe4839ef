package asterisk

import (
	"math"
	"strconv"
	"strings"
)

// CallStats is the summary from "core show calls".
type CallStats struct {
	Active    int `json:"active"`
	Processed int `json:"processed"`
}

// ChannelStat is one row of "pjsip show channelstats".
type ChannelStat struct {
	ChannelID   string  `json:"channel_id"`
	RecvCount   int     `json:"recv_count"`
	LostPct     float64 `json:"lost_pct"`
	RecvJitter  float64 `json:"recv_jitter"`
	TransCount  int     `json:"trans_count"`
	TransJitter float64 `json:"trans_jitter"`
}

// Endpoint is one row of "pjsip show endpoints".
type Endpoint struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

const (
	noObjectsMarker    = "No objects found"
	endpointHeader     = "Endpoint:"
	channelStatsHeader = 3
	minChannelFields   = 10
)

// Token positions in a channelstats row.
const (
	fieldChannelID   = 1
	fieldRecvCount   = 4
	fieldLostPct     = 6
	fieldRecvJitter  = 7
	fieldTransCount  = 8
	fieldTransJitter = 11
)

// ParseCoreCalls extracts active and processed call counts. Lines whose
// leading token is not a number leave the corresponding count at 0.
func ParseCoreCalls(out string) CallStats {
	var cs CallStats
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "active call"):
			cs.Active = leadingInt(line)
		case strings.Contains(line, "calls processed"), strings.Contains(line, "call processed"):
			cs.Processed = leadingInt(line)
		}
	}
	return cs
}

// ParseChannelStats reads the channelstats table. The first three lines are
// headers. Rows with fewer than ten tokens, or too few to reach the transmit
// jitter column, or with non-numeric counters are skipped.
func ParseChannelStats(out string) []ChannelStat {
	if strings.Contains(out, noObjectsMarker) {
		return nil
	}
	lines := strings.Split(out, "\n")
	if len(lines) <= channelStatsHeader {
		return nil
	}
	var stats []ChannelStat
	for _, line := range lines[channelStatsHeader:] {
		fields := strings.Fields(line)
		if len(fields) < minChannelFields || len(fields) <= fieldTransJitter {
			continue
		}
		st, ok := parseChannelRow(fields)
		if !ok {
			continue
		}
		stats = append(stats, st)
	}
	return stats
}

func parseChannelRow(fields []string) (ChannelStat, bool) {
	recv, err := strconv.Atoi(fields[fieldRecvCount])
	if err != nil {
		return ChannelStat{}, false
	}
	lost, ok := parseFinite(fields[fieldLostPct])
	if !ok {
		return ChannelStat{}, false
	}
	rxJitter, ok := parseFinite(fields[fieldRecvJitter])
	if !ok {
		return ChannelStat{}, false
	}
	trans, err := strconv.Atoi(fields[fieldTransCount])
	if err != nil {
		return ChannelStat{}, false
	}
	txJitter, ok := parseFinite(fields[fieldTransJitter])
	if !ok {
		return ChannelStat{}, false
	}
	return ChannelStat{
		ChannelID:   fields[fieldChannelID],
		RecvCount:   recv,
		LostPct:     lost,
		RecvJitter:  rxJitter,
		TransCount:  trans,
		TransJitter: txJitter,
	}, true
}

// parseFinite rejects "nan" and "inf", which ParseFloat accepts but JSON
// cannot encode.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseEndpoints returns one row per line with at least two tokens, except
// lines starting with the "Endpoint:" header marker.
func ParseEndpoints(out string) []Endpoint {
	var eps []Endpoint
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] == endpointHeader {
			continue
		}
		eps = append(eps, Endpoint{Name: fields[0], State: fields[1]})
	}
	return eps
}

func leadingInt(line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
