package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"netmobcli/internal/cube"
	"netmobcli/internal/errors"
)

// Summarizer turns cube missing-value reports into per-slice summaries and
// writes them as CSV or JSON.
type Summarizer struct {
	logger    *slog.Logger
	threshold float64
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	// Threshold is the share of missing cells above which a summary is
	// logged as a warning. Zero warns on any missing cell.
	Threshold float64
}

// MissingSummary describes the substituted cells of one slice.
type MissingSummary struct {
	Level   string  `json:"level"`
	City    string  `json:"city"`
	Service string  `json:"service"`
	Day     string  `json:"day"`
	Kind    string  `json:"kind"`
	Missing int     `json:"missing"`
	Share   float64 `json:"share"`
}

// NewSummarizer creates a summarizer. A nil logger uses slog.Default.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger, threshold: config.Threshold}
}

// Summarize splits a report into per-slice summaries sorted by slice key.
// cellsPerSlice is the grid size of one slice, used for the share.
func (s *Summarizer) Summarize(ctx context.Context, report cube.MissingReport, cellsPerSlice int) []MissingSummary {
	keys := make([]string, 0, len(report.BySlice))
	for k := range report.BySlice {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MissingSummary, 0, len(keys))
	for _, k := range keys {
		sum := parseSliceKey(k)
		sum.Missing = report.BySlice[k]
		if cellsPerSlice > 0 {
			sum.Share = float64(sum.Missing) / float64(cellsPerSlice)
		}
		if sum.Share > s.threshold {
			s.logger.WarnContext(ctx, "slice has missing values",
				slog.String("slice", k),
				slog.Int("missing", sum.Missing),
				slog.Float64("share", sum.Share))
		}
		out = append(out, sum)
	}
	return out
}

// parseSliceKey splits "level/city/service/day/kind".
func parseSliceKey(k string) MissingSummary {
	parts := strings.SplitN(k, "/", 5)
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	return MissingSummary{Level: parts[0], City: parts[1], Service: parts[2], Day: parts[3], Kind: parts[4]}
}

// WriteCSV writes summaries to a CSV file.
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summaries []MissingSummary) error {
	s.logger.InfoContext(ctx, "writing missing value report to CSV",
		slog.String("path", path),
		slog.Int("slice_count", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV file for missing value report", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Level", "City", "Service", "Day", "Kind", "Missing", "Share"}
	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}

	for _, sum := range summaries {
		row := []string{
			sum.Level,
			sum.City,
			sum.Service,
			sum.Day,
			sum.Kind,
			fmt.Sprintf("%d", sum.Missing),
			fmt.Sprintf("%.4f", sum.Share),
		}
		if err := writer.Write(row); err != nil {
			return errors.NewStorageError("failed to write CSV data row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV file", err)
	}

	s.logger.InfoContext(ctx, "successfully wrote missing value report to CSV",
		slog.String("path", path))
	return nil
}

// WriteJSON writes summaries to a JSON file with metadata.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summaries []MissingSummary) error {
	s.logger.InfoContext(ctx, "writing missing value report to JSON",
		slog.String("path", path),
		slog.Int("slice_count", len(summaries)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	jsonData := map[string]interface{}{
		"slices":       summaries,
		"count":        len(summaries),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "missing_report_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file for missing value report", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode missing value report to JSON", err)
	}

	s.logger.InfoContext(ctx, "successfully wrote missing value report to JSON",
		slog.String("path", path))
	return nil
}
