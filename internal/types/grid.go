package types

import "strings"

// Bounds is an inclusive, 1-based cell range.
type Bounds struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Empty reports whether the range holds no cells.
func (b Bounds) Empty() bool {
	return b.EndRow < b.StartRow || b.EndCol < b.StartCol
}

// Cell is one grid cell.
type Cell struct {
	// Text is the display text, used for matching.
	Text string

	// Value is the underlying typed value when the source distinguishes it
	// from the display text (e.g. an unformatted number). May be empty.
	Value string
}

// Grid is a worksheet consumed as a rectangular grid of cells.
type Grid interface {
	// Name is the worksheet name.
	Name() string

	// Bounds is the range the grid's content lies in.
	Bounds() Bounds

	// Cell returns the cell at (row, col); cells outside the stored data
	// are empty.
	Cell(row, col int) Cell
}

// MemoryGrid is a Grid held in memory. Rows and columns of the backing
// slices are addressed with 1-based absolute coordinates.
type MemoryGrid struct {
	name   string
	bounds Bounds
	text   [][]string
	raw    [][]string
}

// NewMemoryGrid builds a grid from display text and optional raw values.
// Both slices are indexed from row 1, column 1.
func NewMemoryGrid(name string, bounds Bounds, text, raw [][]string) *MemoryGrid {
	return &MemoryGrid{name: name, bounds: bounds, text: text, raw: raw}
}

// GridFromRows builds a grid whose bounds cover rows exactly.
func GridFromRows(name string, rows [][]string) *MemoryGrid {
	return NewMemoryGrid(name, RowsBounds(rows), rows, nil)
}

// RowsBounds returns the bounds covering every non-empty cell of rows,
// starting at (1, 1).
func RowsBounds(rows [][]string) Bounds {
	b := Bounds{StartRow: 1, StartCol: 1}
	for r, row := range rows {
		for c, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			if r+1 > b.EndRow {
				b.EndRow = r + 1
			}
			if c+1 > b.EndCol {
				b.EndCol = c + 1
			}
		}
	}
	return b
}

// Name implements Grid.
func (g *MemoryGrid) Name() string { return g.name }

// Bounds implements Grid.
func (g *MemoryGrid) Bounds() Bounds { return g.bounds }

// Cell implements Grid.
func (g *MemoryGrid) Cell(row, col int) Cell {
	return Cell{Text: at(g.text, row, col), Value: at(g.raw, row, col)}
}

func at(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}
