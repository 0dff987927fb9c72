package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverGroups(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Корпус 1", "ОВ-1.xlsx"))
	touch(t, filepath.Join(dir, "Корпус 1", "ОВ-2.CSV"))
	touch(t, filepath.Join(dir, "Корпус 1", "~$ОВ-1.xlsx"))
	touch(t, filepath.Join(dir, "Корпус 1", "notes.txt"))
	touch(t, filepath.Join(dir, "Корпус 1", "nested", "deep.xlsx"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Корпус 2"), 0o755))
	touch(t, filepath.Join(dir, "loose.xlsx"))
	touch(t, filepath.Join(dir, "readme.md"))

	fm := NewFileManager(dir, filepath.Join(dir, "out"), ".xlsx", ".csv")
	require.NoError(t, fm.CheckInputDir())

	groups, err := fm.DiscoverGroups()
	require.NoError(t, err)

	require.Len(t, groups, 3)
	assert.Equal(t, "loose", groups[0].Name)
	assert.Equal(t, []string{filepath.Join(dir, "loose.xlsx")}, groups[0].Files)

	assert.Equal(t, "Корпус 1", groups[1].Name)
	assert.Equal(t, []string{
		filepath.Join(dir, "Корпус 1", "ОВ-1.xlsx"),
		filepath.Join(dir, "Корпус 1", "ОВ-2.CSV"),
	}, groups[1].Files)

	assert.Equal(t, "Корпус 2", groups[2].Name)
	assert.Empty(t, groups[2].Files)
}

func TestDiscoverGroups_NameClashKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ОВ", "a.xlsx"))
	touch(t, filepath.Join(dir, "ОВ.xlsx"))
	touch(t, filepath.Join(dir, "ОВ.csv"))
	touch(t, filepath.Join(dir, "solo.csv"))

	groups, err := NewFileManager(dir, "", ".xlsx", ".csv").DiscoverGroups()
	require.NoError(t, err)

	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"solo", "ОВ", "ОВ.csv", "ОВ.xlsx"}, names)
	assert.Equal(t, []string{filepath.Join(dir, "ОВ.csv")}, groups[2].Files)
}

func TestCheckInputDir_Missing(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, fm.CheckInputDir())

	_, err := fm.DiscoverGroups()
	assert.Error(t, err)
}

func TestEnsureOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b")
	fm := NewFileManager("", out)
	require.NoError(t, fm.EnsureOutputDir())
	assert.True(t, FileExists(out))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("summary-{profile}-{timestamp}", ".csv", map[string]string{"profile": "ducts"})
	assert.Regexp(t, regexp.MustCompile(`^summary-ducts-\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\.csv$`), name)

	name = GenerateOutputFileName("{uuid}", ".xml", nil)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\.xml$`), name)

	assert.Equal(t, "fixed.xlsx", GenerateOutputFileName("fixed.xlsx", ".xlsx", nil))
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "summary.review.txt"), SidecarPath(filepath.Join("out", "summary.csv"), "review"))
}

func TestWriteReviewLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.txt")

	require.NoError(t, WriteReviewLog(nil, path))
	assert.False(t, FileExists(path))

	require.NoError(t, WriteReviewLog([]types.ReviewItem{
		{File: "a.xlsx", Sheet: "ОВ", Row: 12, Name: "Клапан", Text: "Клапан КПУ"},
	}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rows to check: 1")
	assert.Contains(t, string(data), "  Row:    12")
	assert.Contains(t, string(data), "  Text:   Клапан КПУ")
}

func TestWriteSummaryLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	require.NoError(t, WriteSummaryLog(RunSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		Profile:         "ducts",
		TotalFiles:      3,
		SuccessfulFiles: 2,
		FailedFiles:     1,
		FailedFilesList: []FailedFileInfo{{InputFile: "bad.xlsx", ErrorMessage: "zip: not a valid zip file"}},
	}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "  Profile:        ducts")
	assert.Contains(t, string(data), "  Duration:       2s")
	assert.Contains(t, string(data), "  Failed:         1")
	assert.Contains(t, string(data), "  File:  bad.xlsx")
}
