// Package exporter writes analysis results to disk.
//
// This package contains two components:
//
// CSVWriter: core CSV writing with headers, appends and streaming, plus
// helpers for result tables and time-of-day profiles.
//
// XLSXWriter: Excel workbooks with one worksheet per result table.
//
// Relative paths land in the reports directory; "output/" prefixed paths in
// the output directory.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	err := w.WriteTable("night_Lyon.csv", totals)
//
//	x := exporter.NewXLSXWriter(w)
//	err = x.WriteWorkbook("night.xlsx", exporter.Sheet{Name: "Lyon", Table: totals})
package exporter
