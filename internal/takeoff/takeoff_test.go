package takeoff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/parser"
	"github.com/kardamoony/specification-table-summary/internal/report"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

const ductsProfile = `
name: ducts
output_type: entries_csv
include_keys:
  Duct: [воздуховод, duct]
  Damper: [клапан]
exclude_keys: [изоляция]
units_keys: [м, шт]
settings:
  diameter_patterns: ['ø\s*(\d+)']
  dimensions_patterns: ['(\d+)\s*[хx]\s*(\d+)']
`

func writeXLSX(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type fixture struct {
	main    *config.MainConfig
	profile *config.ProfileConfig
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "input")

	writeXLSX(t, filepath.Join(input, "Корпус 1", "ОВ-1.xlsx"), [][]interface{}{
		{"Поз.", "Наименование", "Ед.", "Кол."},
		{1, "Воздуховод ø100", "м", 5},
		{2, "Воздуховод ø100", "м", 3},
		{3, "Воздуховод ø100", "изоляция", "м", 40},
		{4, "Клапан", "шт"},
	})
	writeXLSX(t, filepath.Join(input, "Корпус 1", "ОВ-2.xlsx"), [][]interface{}{
		{"Воздуховод ø100", "м", 2},
		{"Duct 200x300", "м", 1.5},
	})
	writeFile(t, filepath.Join(input, "Корпус 1", "broken.xlsx"), "not a workbook")
	writeFile(t, filepath.Join(input, "Корпус 1", "~$ОВ-1.xlsx"), "lock")
	require.NoError(t, os.MkdirAll(filepath.Join(input, "Корпус 2"), 0o755))
	writeFile(t, filepath.Join(input, "loose.csv"), "Клапан;шт;4\nВоздуховод ø100;м;1\n")

	profile, err := config.ParseProfile([]byte(ductsProfile))
	require.NoError(t, err)

	return fixture{
		main: &config.MainConfig{
			InputDir:         input,
			OutputDir:        filepath.Join(dir, "output"),
			OutputNameFormat: "summary-{profile}",
			WriteSummary:     true,
			CSVSettings:      config.CSVSettings{Delimiter: ";"},
		},
		profile: profile,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	fx := newFixture(t)
	core, observed := observer.New(zapcore.InfoLevel)

	runner, err := New(Options{Main: fx.main, Profile: fx.profile, Logger: zap.New(core)})
	require.NoError(t, err)

	result, err := runner.Run()
	require.NoError(t, err)

	out := result.Output
	assert.Equal(t, []string{"loose", "Корпус 1", "Корпус 2"}, out.Groups)

	duct := types.EntryKey{Name: "Duct", Description: "ø100"}
	assert.Equal(t, map[string]float64{"Корпус 1": 10, "loose": 1}, out.Entries[duct])
	assert.Equal(t, "м", out.Units[duct])
	assert.Equal(t, map[string]float64{"Корпус 1": 1.5}, out.Entries[types.EntryKey{Name: "Duct", Description: "200x300"}])
	assert.Equal(t, map[string]float64{"loose": 4}, out.Entries[types.EntryKey{Name: "Damper", Description: "[undefined]"}])

	review := types.EntryKey{Name: "Damper", Description: "[manual check] ОВ-1.xlsx:Sheet1 row 5"}
	assert.Equal(t, map[string]float64{"Корпус 1": 0}, out.Entries[review])
	require.Len(t, out.Review, 1)
	assert.Equal(t, 5, out.Review[0].Row)

	assert.Equal(t, Stats{
		StartTime:       result.Stats.StartTime,
		EndTime:         result.Stats.EndTime,
		Groups:          3,
		TotalFiles:      4,
		SuccessfulFiles: 3,
		FailedFiles:     1,
		RowsMatched:     7,
		Entries:         4,
		ReviewMarkers:   1,
	}, result.Stats)

	var failed []string
	for _, f := range result.Files {
		if !f.Success {
			failed = append(failed, filepath.Base(f.Path))
			assert.Error(t, f.Error)
		}
	}
	assert.Equal(t, []string{"broken.xlsx"}, failed)
	assert.Equal(t, 1, observed.FilterMessage("skipping file").Len())

	assert.Equal(t, filepath.Join(fx.main.OutputDir, "summary-ducts.csv"), result.ReportFile)
	data, err := os.ReadFile(result.ReportFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Объект,Габариты,Всего,loose,Корпус 1,Корпус 2", lines[0])
	assert.Equal(t, "Duct,ø100,11,1,10,-", lines[1])

	assert.FileExists(t, result.ReviewFile)
	assert.FileExists(t, result.SummaryFile)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	fx := newFixture(t)

	runner, err := New(Options{Main: fx.main, Profile: fx.profile, DryRun: true})
	require.NoError(t, err)

	result, err := runner.Run()
	require.NoError(t, err)
	assert.Empty(t, result.ReportFile)
	assert.NotEmpty(t, result.Output.Entries)
	assert.NoDirExists(t, fx.main.OutputDir)
}

func TestRun_MissingInputDir(t *testing.T) {
	fx := newFixture(t)
	fx.main.InputDir = filepath.Join(t.TempDir(), "absent")

	runner, err := New(Options{Main: fx.main, Profile: fx.profile})
	require.NoError(t, err)

	_, err = runner.Run()
	assert.Error(t, err)
}

type panickingParser struct{}

func (panickingParser) ParseSheet(types.Grid, *zap.Logger) []types.RowResult {
	panic("boom")
}

func TestAggregate_PanicIsIsolated(t *testing.T) {
	fx := newFixture(t)
	parsers := parser.NewRegistry()
	parsers.Register(config.ParserEntries, func(*config.ProfileConfig, *zap.Logger) (parser.RowParser, error) {
		return panickingParser{}, nil
	})

	runner, err := New(Options{Main: fx.main, Profile: fx.profile, Parsers: parsers, DryRun: true})
	require.NoError(t, err)

	result, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.SuccessfulFiles)
	assert.Equal(t, 4, result.Stats.FailedFiles)
	assert.Empty(t, result.Output.Entries)
	assert.Len(t, result.Output.Groups, 3)
	assert.ErrorContains(t, result.Files[0].Error, "boom")
}

func TestNew_UnknownNames(t *testing.T) {
	fx := newFixture(t)

	fx.profile.OutputType = "pdf"
	_, err := New(Options{Main: fx.main, Profile: fx.profile})
	assert.ErrorIs(t, err, report.ErrUnknownWriter)

	fx.profile.OutputType = report.EntriesCSV
	fx.profile.ParserType = "tables"
	_, err = New(Options{Main: fx.main, Profile: fx.profile})
	assert.ErrorIs(t, err, parser.ErrUnknownParser)
}

func TestReadGrids_Unsupported(t *testing.T) {
	fx := newFixture(t)
	runner, err := New(Options{Main: fx.main, Profile: fx.profile})
	require.NoError(t, err)

	_, err = runner.readGrids("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}
