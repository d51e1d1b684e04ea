package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"bnfcli/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
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

// WriteResultCSV writes the annotated rows with DetailColumns and a
// trailing total row.
func WriteResultCSV(w io.Writer, res *domain.Result, bom bool) error {
	records := DetailRecords(res)
	total := make([]string, len(DetailColumns))
	total[0] = "Total Difference"
	total[7] = res.TotalDifference.String()
	records = append(records, total)

	return WriteCSV(w, WriteOptions{
		Headers:   DetailColumns,
		Records:   records,
		BOMPrefix: bom,
	})
}
