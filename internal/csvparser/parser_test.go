package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardamoony/specification-table-summary/internal/config"
)

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ОВ-1.csv")
	content := "\uFEFFПоз.;Наименование;Ед.;Кол.\n" +
		"1;\"Воздуховод ø100; оцинк.\";м;12.5\n" +
		"2;Клапан\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := Parse(path, config.CSVSettings{Delimiter: ";"})
	require.NoError(t, err)

	assert.Equal(t, "ОВ-1", g.Name())
	assert.Equal(t, 3, g.Bounds().EndRow)
	assert.Equal(t, 4, g.Bounds().EndCol)
	assert.Equal(t, "Поз.", g.Cell(1, 1).Text)
	assert.Equal(t, "Воздуховод ø100; оцинк.", g.Cell(2, 2).Text)
	assert.Equal(t, "12.5", g.Cell(2, 4).Text)
	assert.Equal(t, "", g.Cell(3, 4).Text)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent.csv"), config.CSVSettings{})
	assert.Error(t, err)
}

func TestRead_Tab(t *testing.T) {
	g, err := Read("sheet", strings.NewReader("a\tb\n"), config.CSVSettings{Delimiter: "tab"})
	require.NoError(t, err)
	assert.Equal(t, "b", g.Cell(1, 2).Text)
}

func TestDelimiter(t *testing.T) {
	tests := map[string]rune{
		"":          ',',
		",":         ',',
		"semicolon": ';',
		";":         ';',
		"\\t":       '\t',
		"pipe":      '|',
		"#":         '#',
	}
	for in, want := range tests {
		assert.Equal(t, want, Delimiter(in), in)
	}
}
