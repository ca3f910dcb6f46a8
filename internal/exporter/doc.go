// Package exporter writes tabulation results to CSV and XLSX.
//
// Leveled column keys are flattened into one header row per level and row
// keys into leading index columns. CSV output is a plain grid; XLSX output
// puts each table on its own sheet and merges repeated upper-level headers.
//
//	w := exporter.NewCSVWriter(paths)
//	err := w.WriteTable("contact_by_region.csv", table)
//
//	err = exporter.NewXLSXWriter().Save("report.xlsx", tables)
package exporter
