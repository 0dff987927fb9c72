// =============================================================================
// Takeoff Summary - CSV Parser Module
// =============================================================================
//
// This module reads specification tables exported as CSV and exposes them as
// a single-sheet types.Grid, so CSV inputs flow through the same row parsers
// as .xlsx workbooks.
//
// FEATURES:
//   - Configurable delimiter via CSVSettings (comma, semicolon, pipe, tab)
//   - Ragged rows (rows with differing column counts)
//   - Lazy quotes, leading space trimmed
//   - UTF-8 byte order mark stripped from the first cell
//
// The sheet is named after the file without its extension.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// Extension is the file extension handled by this package.
const Extension = ".csv"

const bom = "\uFEFF"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a grid.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV settings from the main configuration.
//
// RETURNS:
//   - A grid holding every row of the file.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (types.Grid, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return Read(name, file, settings)
}

// Read parses CSV content from r into a grid named name.
func Read(name string, r io.Reader, settings config.CSVSettings) (types.Grid, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], bom)
	}

	return types.GridFromRows(name, rows), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Exported tables are ragged (title rows, merged headers, notes).
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// Delimiter maps the configured delimiter name to its rune.
func Delimiter(setting string) rune {
	switch setting {
	case "\\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "", ",", "comma":
		return ','
	default:
		r := []rune(setting)
		return r[0]
	}
}
