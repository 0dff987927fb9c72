// =============================================================================
// Takeoff Summary - XLSX Workbook Reader
// =============================================================================
//
// This module opens .xlsx workbooks with excelize and exposes each worksheet
// as a types.Grid: a rectangular grid of cells addressed by 1-based
// (row, column) inside the sheet's used range.
//
// CELL VALUES:
//   Every cell carries two renderings:
//   - Text:  the formatted display text ("1 250,5", "Воздуховод ø100"),
//            used for keyword and pattern matching
//   - Value: the raw stored value ("1250.5"), used when a cell is consumed
//            as a quantity so locale formatting never has to be re-parsed
//
// USED RANGE:
//   The sheet's <dimension> reference gives the start corner. The end corner
//   is the larger of the dimension and the data actually present, so a stale
//   dimension never hides rows.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

// Extension is the file extension handled by this package.
const Extension = ".xlsx"

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open .xlsx file.
type Workbook struct {
	path string
	f    *excelize.File
}

// Open opens the workbook at path.
//
// RETURNS:
//   - The open Workbook; the caller must Close it.
//   - An error if the file cannot be read or is not a valid workbook.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{path: path, f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Sheet loads one worksheet as a grid.
func (w *Workbook) Sheet(name string) (types.Grid, error) {
	text, err := w.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", name, err)
	}

	raw, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows of %q: %w", name, err)
	}

	ref, err := w.f.GetSheetDimension(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read dimension of %q: %w", name, err)
	}

	return types.NewMemoryGrid(name, usedRange(ref, text), text, raw), nil
}

// Sheets loads every worksheet in workbook order.
func (w *Workbook) Sheets() ([]types.Grid, error) {
	names := w.SheetNames()
	grids := make([]types.Grid, 0, len(names))
	for _, name := range names {
		g, err := w.Sheet(name)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// usedRange combines the sheet dimension reference with the rows present.
func usedRange(ref string, rows [][]string) types.Bounds {
	data := types.RowsBounds(rows)

	start, end, ok := parseRef(ref)
	if !ok {
		return data
	}

	b := types.Bounds{
		StartRow: start.row,
		StartCol: start.col,
		EndRow:   max(end.row, data.EndRow),
		EndCol:   max(end.col, data.EndCol),
	}
	return b
}

type coord struct {
	row, col int
}

// parseRef parses "A1:D10" or "A1" into its corners.
func parseRef(ref string) (coord, coord, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return coord{}, coord{}, false
	}

	parts := strings.SplitN(ref, ":", 2)
	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return coord{}, coord{}, false
	}
	start := coord{row: startRow, col: startCol}
	if len(parts) == 1 {
		return start, start, true
	}

	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return coord{}, coord{}, false
	}
	return start, coord{row: endRow, col: endCol}, true
}
