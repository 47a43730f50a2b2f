package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"netmobcli/internal/config"
	"netmobcli/internal/cube"
	"netmobcli/internal/night"
)

// LocationHeader names the first column of table exports.
const LocationHeader = "location"

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// WriteTable writes a result table, one row per location.
func (w *CSVWriter) WriteTable(filePath string, t cube.Table) error {
	headers, records := tableRecords(t)
	return w.WriteSimpleCSV(filePath, headers, records)
}

// WriteProfile streams a time-of-day profile in long format. Profiles can be
// large, so rows are written as they are produced.
func (w *CSVWriter) WriteProfile(filePath string, p *night.Profile) error {
	stream, err := w.CreateStreamWriter(filePath, []string{LocationHeader, "time", "service", "value"})
	if err != nil {
		return err
	}
	for _, r := range p.Records() {
		if err := stream.WriteRecord([]string{r.Location, r.Time.String(), r.Service, formatFloat(r.Value)}); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write profile row: %w", err)
		}
	}
	return stream.Close()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// ReportPath returns where the writer would place filePath.
func (w *CSVWriter) ReportPath(filePath string) string {
	return w.resolvePath(filePath)
}

// resolvePath resolves a path to the appropriate directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	if strings.HasPrefix(filePath, "output/") {
		return filepath.Join(w.paths.OutputDir, strings.TrimPrefix(filePath, "output/"))
	}
	// Default to reports directory
	return w.paths.GetReportPath(filePath)
}

func tableRecords(t cube.Table) ([]string, [][]string) {
	headers := append([]string{LocationHeader}, t.Columns...)
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, row)
		for _, v := range t.Values[i] {
			rec = append(rec, formatFloat(v))
		}
		records[i] = rec
	}
	return headers, records
}
