package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SeriesCounter reports how many series are stored.
type SeriesCounter interface {
	CountSeries(ctx context.Context) (int64, error)
}

// SystemStats is a point-in-time snapshot of process and host health.
type SystemStats struct {
	Timestamp         time.Time `json:"timestamp"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
	GoVersion         string    `json:"go_version"`
	Goroutines        int       `json:"goroutines"`
	CPUCores          int       `json:"cpu_cores"`
	CPUPercent        float64   `json:"cpu_percent"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	MemoryTotalMB     float64   `json:"memory_total_mb"`
	HeapAllocMB       float64   `json:"heap_alloc_mb"`
	SeriesCount       int64     `json:"series_count"`
}

// SystemStatsService collects process and host metrics for the stats
// endpoint.
type SystemStatsService struct {
	counter   SeriesCounter
	logger    *slog.Logger
	startedAt time.Time
}

// NewSystemStatsService creates a stats service. A nil logger falls back to
// slog.Default so tests can construct it bare.
func NewSystemStatsService(counter SeriesCounter, logger *slog.Logger) *SystemStatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemStatsService{
		counter:   counter,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Collect samples CPU, memory, and runtime statistics. CPU usage is averaged
// over a one second window.
func (ss *SystemStatsService) Collect(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{
		Timestamp:     time.Now(),
		UptimeSeconds: time.Since(ss.startedAt).Seconds(),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUCores:      runtime.NumCPU(),
	}

	cpuPercent, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercent) > 0 {
		stats.CPUPercent = cpuPercent[0]
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}
	stats.MemoryUsedPercent = memInfo.UsedPercent
	stats.MemoryTotalMB = float64(memInfo.Total) / (1024 * 1024)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.HeapAllocMB = float64(memStats.HeapAlloc) / (1024 * 1024)

	if ss.counter != nil {
		count, err := ss.counter.CountSeries(ctx)
		if err != nil {
			ss.logger.Warn("Could not count series for stats", "error", err)
		} else {
			stats.SeriesCount = count
		}
	}

	return stats, nil
}
