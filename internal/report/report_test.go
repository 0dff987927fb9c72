package report

import (
	"bytes"
	"encoding/xml"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

var (
	ductKey   = types.EntryKey{Name: "Воздуховод", Description: "ø100"}
	rectKey   = types.EntryKey{Name: "Воздуховод", Description: "200x300"}
	damperKey = types.EntryKey{Name: "Клапан", Description: "[undefined]"}
	reviewKey = types.EntryKey{Name: "Клапан", Description: "[manual check] a.xlsx:ОВ row 7"}
)

func sampleOutput() types.Output {
	return types.Output{
		Entries: types.Aggregate{
			ductKey:   {"Корпус 1": 5, "Корпус 2": 3},
			rectKey:   {"Корпус 2": 12.25},
			damperKey: {"Корпус 1": 2},
			reviewKey: {"Корпус 1": 0},
		},
		Groups: []string{"Корпус 1", "Корпус 2", "Пусто"},
		Units:  map[types.EntryKey]string{ductKey: "м", rectKey: "м", damperKey: "шт"},
		Review: []types.ReviewItem{{
			File: "a.xlsx", Sheet: "ОВ", Row: 7, Name: "Клапан", Text: "Клапан КПУ",
			Description: reviewKey.Description,
		}},
	}
}

func render(t *testing.T, name string, out types.Output) string {
	t.Helper()
	w, err := DefaultRegistry().New(name)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, out))
	return buf.String()
}

func TestGroupsCSV(t *testing.T) {
	got := render(t, GroupsCSV, sampleOutput())

	want := strings.Join([]string{
		",Всего,Корпус 1,Корпус 2,Пусто",
		"Воздуховод 200x300,12.25,0,12.25,0",
		"Воздуховод ø100,8,5,3,0",
		"Клапан [undefined],2,2,0,0",
		"Клапан [manual check] a.xlsx:ОВ row 7,0,0,0,0",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestEntriesCSV(t *testing.T) {
	got := render(t, EntriesCSV, sampleOutput())

	want := strings.Join([]string{
		"Объект,Габариты,Всего,Корпус 1,Корпус 2,Пусто",
		"Воздуховод,200x300,12.25,-,12.25,-",
		"Воздуховод,ø100,8,5,3,-",
		"Клапан,[undefined],2,2,-,-",
		"Клапан,[manual check] a.xlsx:ОВ row 7,0,0,-,-",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestAreaCSV(t *testing.T) {
	out := types.Output{
		Entries: types.Aggregate{
			{Name: "Воздуховод", Description: "ø200"}:                         {"g": 1.885},
			{Name: "Воздуховод", Description: "300x400"}:                      {"g": 2.8},
			{Name: "Отвод", Description: "ø100"}:                              {"g": 0.5},
			{Name: "Отвод", Description: "[manual check] b.xlsx:Лист1 row 3"}: {"g": 0},
		},
		Groups: []string{"g"},
		Review: []types.ReviewItem{{Name: "Отвод", Description: "[manual check] b.xlsx:Лист1 row 3"}},
	}

	want := strings.Join([]string{
		"Объект,Всего",
		"Воздуховод,4.7",
		"Отвод,0.5",
		"Отвод,[manual check] b.xlsx:Лист1 row 3",
		"",
	}, "\n")
	assert.Equal(t, want, render(t, AreaCSV, out))
}

func TestXML(t *testing.T) {
	got := render(t, XML, sampleOutput())
	assert.True(t, strings.HasPrefix(got, xml.Header))

	var doc xmlTakeoff
	require.NoError(t, xml.Unmarshal([]byte(got), &doc))

	require.Len(t, doc.Groups, 3)
	require.Len(t, doc.Entries, 4)
	assert.Equal(t, "200x300", doc.Entries[0].Description)

	duct := doc.Entries[1]
	assert.Equal(t, "ø100", duct.Description)
	assert.Equal(t, "м", duct.Unit)
	assert.Equal(t, "8", duct.Total)
	assert.Equal(t, []xmlGroup{{Name: "Корпус 1", Quantity: "5"}, {Name: "Корпус 2", Quantity: "3"}}, duct.Groups)

	require.Len(t, doc.Review, 1)
	assert.Equal(t, 7, doc.Review[0].Row)
	assert.Equal(t, "Клапан КПУ", doc.Review[0].Text)
}

func TestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w, err := DefaultRegistry().New(XLSX)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", w.Extension())
	require.NoError(t, WriteFile(path, w, sampleOutput()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Объект", "Габариты", "Всего", "Корпус 1", "Корпус 2", "Пусто"}, rows[0])
	assert.Equal(t, []string{"Воздуховод", "ø100", "8", "5", "3", "-"}, rows[2])

	v, err := f.GetCellValue(xlsxSheet, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "12.25", v)
}

func TestRegistry_Unknown(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{AreaCSV, EntriesCSV, GroupsCSV, XLSX, XML}, r.Names())
	assert.True(t, r.Has(XML))

	_, err := r.New("pdf")
	assert.ErrorIs(t, err, ErrUnknownWriter)
}

func TestRows_DecimalTotals(t *testing.T) {
	out := types.Output{Entries: types.Aggregate{ductKey: {"a": 0.1, "b": 0.2}}}
	r := rows(out)
	require.Len(t, r, 1)
	assert.Equal(t, "0.3", formatQuantity(r[0].total))
}

func TestWriters_SkipNonFiniteQuantities(t *testing.T) {
	out := types.Output{
		Entries: types.Aggregate{
			ductKey: {"a": math.Inf(1), "b": 2},
			rectKey: {"a": math.NaN()},
		},
		Groups: []string{"a", "b"},
	}

	for _, name := range DefaultRegistry().Names() {
		assert.NotPanics(t, func() { render(t, name, out) }, name)
	}

	assert.Equal(t, "Объект,Габариты,Всего,a,b\nВоздуховод,ø100,2,-,2\n", render(t, EntriesCSV, out))
}
