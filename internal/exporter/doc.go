// Package exporter renders labeling results as a console table, CSV,
// an Excel workbook or JSON, and prints per-date anchor reports.
package exporter
