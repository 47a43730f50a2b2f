package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"netmobcli/internal/cube"
)

// Sheet is one named worksheet of a workbook.
type Sheet struct {
	Name  string
	Table cube.Table
}

// XLSXWriter writes result tables as Excel workbooks.
type XLSXWriter struct {
	csv *CSVWriter
}

// NewXLSXWriter shares the path resolution of a CSV writer.
func NewXLSXWriter(csv *CSVWriter) *XLSXWriter {
	return &XLSXWriter{csv: csv}
}

// WriteWorkbook writes one worksheet per sheet, the first one active.
func (w *XLSXWriter) WriteWorkbook(filePath string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", filePath)
	}
	fullPath := w.csv.resolvePath(filePath)

	w.csv.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("sheet_count", len(sheets)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	x := excelize.NewFile()
	defer x.Close()

	defaultSheet := x.GetSheetName(0)
	keepDefault := false
	for _, s := range sheets {
		keepDefault = keepDefault || s.Name == defaultSheet
		if _, err := x.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(x, s); err != nil {
			return err
		}
	}
	if !keepDefault {
		if err := x.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}
	// indices shift after the delete
	if idx, err := x.GetSheetIndex(sheets[0].Name); err == nil && idx >= 0 {
		x.SetActiveSheet(idx)
	}

	if err := x.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(x *excelize.File, s Sheet) error {
	headers := append([]string{LocationHeader}, s.Table.Columns...)
	if err := x.SetSheetRow(s.Name, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.Name, err)
	}
	for r, row := range s.Table.Rows {
		cells := make([]interface{}, 0, len(s.Table.Columns)+1)
		cells = append(cells, row)
		for _, v := range s.Table.Values[r] {
			if math.IsNaN(v) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(s.Name, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r, s.Name, err)
		}
	}
	return nil
}
