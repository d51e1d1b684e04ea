package exporter

import (
	"github.com/shopspring/decimal"

	"bnfcli/pkg/contracts/domain"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatJSON  = "json"
)

// TableColumns are the columns of the printed annotated table.
var TableColumns = []string{"Time", "Close", "Target Value", "Sell_Buy_CutPosition", "Difference", "Mark"}

// DetailColumns are the columns of file exports.
var DetailColumns = []string{"Date", "Ticker", "Time", "Close", "Target Value", "Sell_Buy_CutPosition", "Loss", "Difference", "Mark"}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatJSON:
		return "json"
	}
	return "txt"
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func tableRecord(r domain.AnnotatedRow) []string {
	return []string{
		r.Time.String(),
		r.Close.String(),
		nullString(r.TargetValue),
		r.Position.String(),
		nullString(r.PairDifference),
		r.Mark.String(),
	}
}

func detailRecord(r domain.AnnotatedRow) []string {
	return []string{
		r.DateString(),
		r.Ticker,
		r.Time.String(),
		r.Close.String(),
		nullString(r.TargetValue),
		r.Position.String(),
		nullString(r.Loss),
		nullString(r.PairDifference),
		r.Mark.String(),
	}
}

// DetailRecords returns one DetailColumns record per annotated row.
func DetailRecords(res *domain.Result) [][]string {
	records := make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		records = append(records, detailRecord(r))
	}
	return records
}
