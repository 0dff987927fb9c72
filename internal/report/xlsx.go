package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

// xlsxSheet is the name of the only worksheet in the report workbook.
const xlsxSheet = "Summary"

// XLSXWriter writes the entries table (name, description, total, one
// column per group) as an Excel workbook. Quantities are numeric cells;
// groups without a quantity show "-".
type XLSXWriter struct{}

// Extension implements Writer.
func (XLSXWriter) Extension() string { return ".xlsx" }

// Write implements Writer.
func (XLSXWriter) Write(w io.Writer, out types.Output) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{headerObject, headerDimensions, headerTotal}
	for _, g := range out.Groups {
		header = append(header, g)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows(out) {
		record := []interface{}{r.key.Name, r.key.Description, r.total.Round(quantityPlaces).InexactFloat64()}
		for _, g := range out.Groups {
			if r.has(g) {
				record = append(record, r.groups[g].Round(quantityPlaces).InexactFloat64())
			} else {
				record = append(record, missingQuantity)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := styleHeader(f, len(header)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// styleHeader makes the header row bold, freezes it and widens the name
// column.
func styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(xlsxSheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	last, err := excelize.ColumnNumberToName(max(columns, 3))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 32); err != nil {
		return err
	}
	return f.SetColWidth(xlsxSheet, "B", last, 14)
}
