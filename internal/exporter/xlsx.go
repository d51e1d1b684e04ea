package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bnfcli/pkg/contracts/domain"
)

const (
	sheetAnnotated = "Annotated"
	sheetSummary   = "Summary"
)

// WriteXLSX writes a workbook with the annotated rows and a summary sheet.
func WriteXLSX(w io.Writer, res *domain.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetAnnotated); err != nil {
		return err
	}
	if err := writeRows(f, sheetAnnotated, DetailColumns, DetailRecords(res)); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(DetailColumns))
	if err := f.SetCellStyle(sheetAnnotated, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if err := f.SetPanes(sheetAnnotated, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	summary := [][]string{
		{"Source", res.Source},
		{"Run ID", res.RunID},
		{"Total Difference", res.TotalDifference.String()},
		{"Pairs", fmt.Sprint(res.Pairs)},
		{},
	}
	for _, a := range res.Anchors {
		row := []string{a.DateString, fmt.Sprint(a.CERows), string(a.Skipped)}
		if a.Anchor != nil {
			row = append(row, a.Anchor.Time.String(), a.Anchor.Close.String(), fmt.Sprint(a.SliceLength))
		}
		summary = append(summary, row)
	}
	if err := writeRows(f, sheetSummary, nil, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "A4", bold); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, headers []string, records [][]string) error {
	row := 1
	if headers != nil {
		if err := setRow(f, sheet, row, headers); err != nil {
			return err
		}
		row++
	}
	for _, rec := range records {
		if err := setRow(f, sheet, row, rec); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}
