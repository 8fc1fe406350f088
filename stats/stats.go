// stats/stats.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package stats collects the numbers behind the optional on-screen
// frame-rate display: redraw rate, allocation rate, and host CPU load.
package stats

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/kkakarots/geoview/log"
)

// Sampler accumulates frame counts and samples memory/CPU on demand.
type Sampler struct {
	startTime      time.Time
	frames         atomic.Int64
	startupMallocs uint64
	lg             *log.Logger
}

func NewSampler(lg *log.Logger) *Sampler {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &Sampler{
		startTime:      time.Now(),
		startupMallocs: mem.Mallocs,
		lg:             lg,
	}
}

// FrameRendered is called by the engine once per redraw.
func (s *Sampler) FrameRendered() {
	s.frames.Add(1)
}

type Stats struct {
	RedrawsPerSecond float64
	MallocsPerSecond float64
	ActiveMallocs    int64
	MemoryInUse      int64
	CPUPercent       float64
}

// Sample reads the current statistics. The CPU reading is the
// since-last-call average, so the first call reports 0.
func (s *Sampler) Sample() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	elapsed := time.Since(s.startTime).Seconds()

	st := Stats{
		RedrawsPerSecond: float64(s.frames.Load()) / elapsed,
		MallocsPerSecond: float64(mem.Mallocs-s.startupMallocs) / elapsed,
		ActiveMallocs:    int64(mem.Mallocs - mem.Frees),
		MemoryInUse:      int64(mem.HeapAlloc),
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	} else if err != nil {
		s.lg.Warnf("unable to sample CPU: %v", err)
	}

	return st
}

func (st Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("redraws_per_second", st.RedrawsPerSecond),
		slog.Float64("mallocs_per_second", st.MallocsPerSecond),
		slog.Int64("active_mallocs", st.ActiveMallocs),
		slog.Int64("memory_in_use", st.MemoryInUse),
		slog.Float64("cpu_percent", st.CPUPercent))
}
