package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/files"
)

// AggregateJob is one (city, service, day) to convert from tile to zone
// level, both directions.
type AggregateJob struct {
	City    string
	Service string
	Day     time.Time
}

// Jobs lists every combination of the given cities, services and days.
func Jobs(cities, services []string, days []time.Time) []AggregateJob {
	jobs := make([]AggregateJob, 0, len(cities)*len(services)*len(days))
	for _, c := range cities {
		for _, s := range services {
			for _, d := range days {
				jobs = append(jobs, AggregateJob{City: c, Service: s, Day: d})
			}
		}
	}
	return jobs
}

// AggregateStats summarizes an aggregation run.
type AggregateStats struct {
	Written   int
	Skipped   int
	Rows      int
	Unmatched int
}

func (s *AggregateStats) add(o AggregateStats) {
	s.Written += o.Written
	s.Skipped += o.Skipped
	s.Rows += o.Rows
	s.Unmatched += o.Unmatched
}

// Aggregator rewrites tile-level counter files as zone-level files.
type Aggregator struct {
	paths     *config.Paths
	manager   *files.Manager
	locations Locator
	workers   int
	logger    *slog.Logger
}

// NewAggregator creates an aggregator. workers <= 0 runs one job at a time.
func NewAggregator(paths *config.Paths, manager *files.Manager, locations Locator, workers int, logger *slog.Logger) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{paths: paths, manager: manager, locations: locations, workers: workers, logger: logger}
}

// Run processes the jobs on the worker pool. Missing source files are
// skipped and counted; any other failure stops the run.
func (a *Aggregator) Run(ctx context.Context, jobs []AggregateJob) (AggregateStats, error) {
	results := make([]AggregateStats, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := a.aggregate(gctx, job)
			if err != nil {
				return fmt.Errorf("aggregate %s/%s/%s: %w", job.City, job.Service, job.Day.Format(config.DayLayout), err)
			}
			results[i] = stats
			return nil
		})
	}

	var total AggregateStats
	err := g.Wait()
	for _, r := range results {
		total.add(r)
	}
	return total, err
}

func (a *Aggregator) aggregate(ctx context.Context, job AggregateJob) (AggregateStats, error) {
	var stats AggregateStats

	corr, err := a.locations.Get(ctx, job.City)
	if err != nil {
		return stats, err
	}

	for _, kind := range []catalog.TrafficKind{catalog.Uplink, catalog.Downlink} {
		src := a.paths.TrafficFile(string(catalog.LevelTile), job.City, job.Service, job.Day, string(kind))
		raw, err := ParseTrafficFile(src, catalog.SlotsPerDay)
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.WarnContext(ctx, "tile counter file missing", slog.String("path", src))
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}

		zones, unmatched := AggregateToZones(raw, corr)
		dst := a.paths.TrafficFile(string(catalog.LevelIris), job.City, job.Service, job.Day, string(kind))
		if err := a.manager.WriteFile(dst, EncodeTraffic(zones)); err != nil {
			return stats, err
		}

		stats.Written++
		stats.Rows += zones.Len()
		stats.Unmatched += unmatched
	}
	return stats, nil
}
