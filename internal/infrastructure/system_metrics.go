package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a snapshot of the process, reported by the health
// endpoint.
type SystemStats struct {
	GoRoutines    int64         `json:"goroutines"`
	MemoryUsage   int64         `json:"memory_usage_bytes"`
	MemorySystem  int64         `json:"memory_system_bytes"`
	GCCount       uint32        `json:"gc_count"`
	CPUCount      int           `json:"cpu_count"`
	ProcessUptime time.Duration `json:"uptime_ns"`
	Timestamp     time.Time     `json:"timestamp"`
}

// CollectSystemStats reads the runtime statistics.
func CollectSystemStats(startTime time.Time) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		MemoryUsage:   int64(memStats.Alloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(startTime),
		Timestamp:     time.Now(),
	}
}

// RegisterSystemMetrics exposes goroutine count, heap size and uptime as
// observable gauges read at collection time.
func RegisterSystemMetrics(meter metric.Meter, startTime time.Time) error {
	goRoutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return err
	}

	memoryUsage, err := meter.Int64ObservableGauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap bytes in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := CollectSystemStats(startTime)
		o.ObserveInt64(goRoutines, stats.GoRoutines)
		o.ObserveInt64(memoryUsage, stats.MemoryUsage)
		o.ObserveFloat64(uptime, stats.ProcessUptime.Seconds())
		return nil
	}, goRoutines, memoryUsage, uptime)
	return err
}
