package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"netmobcli/internal/config"
	"netmobcli/internal/infrastructure"
)

// CorrespondenceCache reports the regions held in memory.
// *spatial.Registry implements it.
type CorrespondenceCache interface {
	Cached() []string
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	cache     CorrespondenceCache
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service. cache may be nil.
func NewHealthService(version string, paths *config.Paths, cache CorrespondenceCache, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("data_dir", paths.DataDir))

	return &HealthService{
		version:   version,
		paths:     paths,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the input trees are present and the output
// directory is usable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"traffic_data":    checkDirectory("traffic data", hs.paths.DataDir),
			"geometry":        checkDirectory("geometry", hs.paths.GeoDir),
			"output":          checkOutput(hs.paths.OutputDir),
			"correspondences": hs.checkCorrespondences(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: dependency not ready",
				slog.String("dependency", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.CollectSystemStats(hs.startTime)
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":       stats.ProcessUptime.Seconds(),
			"go_version":   runtime.Version(),
			"goroutines":   stats.GoRoutines,
			"memory_bytes": stats.MemoryUsage,
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// CachedRegions lists the correspondences held in memory, sorted.
func (hs *HealthService) CachedRegions() []string {
	if hs.cache == nil {
		return nil
	}
	regions := hs.cache.Cached()
	sort.Strings(regions)
	return regions
}

func (hs *HealthService) checkCorrespondences() ServiceHealth {
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d correspondences cached", len(hs.CachedRegions())),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func checkDirectory(name, dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s directory not found: %s", name, dir),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s path is not a directory: %s", name, dir),
		}
	}
	return ServiceHealth{Status: "ready"}
}

func checkOutput(dir string) ServiceHealth {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot create output directory: %v", err),
		}
	}
	return ServiceHealth{Status: "ready"}
}
