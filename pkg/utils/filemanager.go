// =============================================================================
// Takeoff Summary - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the takeoff run:
//   - Input directory checks and group discovery
//   - Output directory management
//   - Output file naming
//   - Run summary and manual review logs
//
// GROUPS:
//   Every subfolder of the input directory is a group named after the
//   folder; its spreadsheets are read non-recursively. A folder without any
//   spreadsheet is still a group (it becomes an empty report column).
//   Spreadsheets placed directly in the input directory are each a group of
//   their own, named by the file name without extension.
//
//   Office lock files ("~$name.xlsx") and files with other extensions are
//   ignored. Entries are visited in file-name order.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

const lockFilePrefix = "~$"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the takeoff run.
type FileManager struct {
	// InputDir is the directory scanned for groups.
	InputDir string

	// OutputDir is the directory where reports and logs are written.
	OutputDir string

	// Extensions lists accepted input extensions, lower-case with the dot.
	Extensions []string
}

// NewFileManager creates a FileManager accepting the given extensions.
func NewFileManager(inputDir, outputDir string, extensions ...string) *FileManager {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Extensions: exts,
	}
}

// Group is a named batch of input files.
type Group struct {
	Name  string
	Files []string
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// CheckInputDir verifies that the input directory exists.
func (fm *FileManager) CheckInputDir() error {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory %s is not a directory", fm.InputDir)
	}
	return nil
}

// EnsureOutputDir creates the output directory if it does not exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// GROUP DISCOVERY
// =============================================================================

// DiscoverGroups scans the input directory for groups.
//
// A loose file is named by its base name, unless a subfolder or another
// loose file has the same base name; then it keeps its extension ("ОВ" and
// "ОВ.xlsx").
//
// RETURNS:
//   - The groups in file-name order.
//   - An error if the input directory or one of its folders cannot be read.
func (fm *FileManager) DiscoverGroups() ([]Group, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	claims := make(map[string]int)
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			claims[entry.Name()]++
		case fm.accepts(entry.Name()):
			claims[BaseName(entry.Name())]++
		}
	}

	var groups []Group
	for _, entry := range entries {
		path := filepath.Join(fm.InputDir, entry.Name())

		if entry.IsDir() {
			files, err := fm.listInputs(path)
			if err != nil {
				return nil, err
			}
			groups = append(groups, Group{Name: entry.Name(), Files: files})
			continue
		}

		if fm.accepts(entry.Name()) {
			name := BaseName(entry.Name())
			if claims[name] > 1 {
				name = entry.Name()
			}
			groups = append(groups, Group{Name: name, Files: []string{path}})
		}
	}

	return groups, nil
}

// listInputs returns the accepted files directly inside dir.
func (fm *FileManager) listInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan group directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !fm.accepts(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// accepts reports whether name is a spreadsheet the run should read.
func (fm *FileManager) accepts(name string) bool {
	if strings.HasPrefix(name, lockFilePrefix) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range fm.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name, without extension.
//     Placeholders are {uuid} (a random UUID), {timestamp}
//     (YYYY-MM-DD-HH-MM-SS), {date} (YYYY-MM-DD) and any key of params,
//     e.g. {profile}.
//   - ext: The extension to append, with the dot.
//   - params: A map of placeholder values.
//
// EXAMPLE:
//
//	format: "summary-{profile}-{timestamp}"
//	params: {"profile": "ducts"}
//	output: "summary-ducts-2026-10-17-14-30-22.csv"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("2006-01-02-15-04-05"),
		"{date}":      now.Format("2006-01-02"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// SidecarPath returns the path of a log written next to reportPath, e.g.
// "out/summary.csv" + "review" -> "out/summary.review.txt".
func SidecarPath(reportPath, kind string) string {
	dir := filepath.Dir(reportPath)
	return filepath.Join(dir, BaseName(reportPath)+"."+kind+".txt")
}

// =============================================================================
// MANUAL REVIEW LOG
// =============================================================================

// WriteReviewLog writes the rows routed to manual review.
//
// RETURNS:
//   - An error if writing fails. Nothing is written when items is empty.
func WriteReviewLog(items []types.ReviewItem, path string) error {
	if len(items) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create review log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Takeoff Summary - Manual Review\n"+
		"Generated: %s\n"+
		"Rows to check: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(items))

	for i, item := range items {
		fmt.Fprintf(writer, "#%d\n"+
			"  File:   %s\n"+
			"  Sheet:  %s\n"+
			"  Row:    %d\n"+
			"  Entry:  %s\n",
			i+1, item.File, item.Sheet, item.Row, item.Name)
		if item.Text != "" {
			fmt.Fprintf(writer, "  Text:   %s\n", item.Text)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Review Log\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush review log: %w", err)
	}
	return nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a takeoff run.
type RunSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	Profile         string
	ReportFile      string
	Groups          int
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	RowsMatched     int
	Entries         int
	ReviewMarkers   int
	FailedFilesList []FailedFileInfo
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary to path.
func WriteSummaryLog(summary RunSummary, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Takeoff Summary - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Profile:        %s\n"+
		"  Report:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Groups:         %d\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Rows Matched:   %d\n"+
		"  Entries:        %d\n"+
		"  Review Markers: %d\n\n",
		summary.Profile,
		summary.ReportFile,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Groups,
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.RowsMatched,
		summary.Entries,
		summary.ReviewMarkers)

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
