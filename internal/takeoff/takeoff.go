// =============================================================================
// Takeoff Summary - Takeoff Runner
// =============================================================================
//
// This module drives one takeoff run, from group discovery to the written
// report.
//
// PIPELINE:
//   1. Check the input directory and create the output directory
//   2. Discover groups (subfolders, loose files)
//   3. For each file of each group, sequentially:
//      a. Open it as a workbook (.xlsx) or a single-sheet grid (.csv)
//      b. Run the profile's row parser over every worksheet
//      c. Fold the row results into the file's entries
//      d. Merge the file's entries into the group totals
//   4. Render the aggregate with the profile's report writer
//   5. Write the manual review log and, if enabled, the run summary
//
// FAILURE ISOLATION:
//   A file that cannot be opened or read, or whose processing panics, is
//   logged and skipped: its partial entries are discarded and the run goes
//   on with the next file. Only a missing input directory, an unusable
//   profile or a failure to write the report stops the run.
//
// =============================================================================

package takeoff

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/aggregate"
	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/csvparser"
	"github.com/kardamoony/specification-table-summary/internal/extract"
	"github.com/kardamoony/specification-table-summary/internal/logging"
	"github.com/kardamoony/specification-table-summary/internal/parser"
	"github.com/kardamoony/specification-table-summary/internal/report"
	"github.com/kardamoony/specification-table-summary/internal/types"
	"github.com/kardamoony/specification-table-summary/internal/xlsxparser"
	"github.com/kardamoony/specification-table-summary/pkg/utils"
)

// ErrUnsupportedFile is returned for inputs with an unknown extension.
var ErrUnsupportedFile = errors.New("unsupported input file")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a run.
type Result struct {
	// Output is the aggregate snapshot handed to the report writer.
	Output types.Output

	// ReportFile is the written report. Empty on a dry run.
	ReportFile string

	// ReviewFile is the manual review log, if any row needed review.
	ReviewFile string

	// SummaryFile is the run summary log, if enabled.
	SummaryFile string

	// Files lists the outcome of every input file in processing order.
	Files []FileResult

	// Stats contains run statistics.
	Stats Stats
}

// FileResult represents the outcome of processing one input file.
type FileResult struct {
	Group string
	Path  string

	// Success indicates whether the file contributed to the aggregate.
	Success bool

	// Error is set when the file was skipped.
	Error error

	Sheets         int
	RowsMatched    int
	Entries        int
	ReviewMarkers  int
	ProcessingTime time.Duration
}

// Stats contains run statistics.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	Groups          int
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	RowsMatched     int
	Entries         int
	ReviewMarkers   int
}

// =============================================================================
// RUNNER
// =============================================================================

// Options configures a Runner.
type Options struct {
	Main    *config.MainConfig
	Profile *config.ProfileConfig

	// Parsers and Writers default to the built-in registries.
	Parsers *parser.Registry
	Writers *report.Registry

	Logger *zap.Logger

	// DryRun aggregates without writing any file.
	DryRun bool
}

// Runner executes takeoff runs for one profile.
type Runner struct {
	main    *config.MainConfig
	profile *config.ProfileConfig
	parser  parser.RowParser
	writer  report.Writer
	files   *utils.FileManager
	policy  aggregate.Policy
	logger  *zap.Logger
	dryRun  bool
}

// New builds a runner, resolving the profile's parser and writer.
//
// RETURNS:
//   - An error wrapping parser.ErrUnknownParser or report.ErrUnknownWriter
//     when the profile names an unregistered implementation, or the
//     parser's construction error.
func New(opts Options) (*Runner, error) {
	logger := logging.OrNop(opts.Logger).With(zap.String("profile", opts.Profile.Name))

	parsers := opts.Parsers
	if parsers == nil {
		parsers = parser.DefaultRegistry()
	}
	writers := opts.Writers
	if writers == nil {
		writers = report.DefaultRegistry()
	}

	p, err := parsers.New(opts.Profile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	w, err := writers.New(opts.Profile.OutputType)
	if err != nil {
		return nil, fmt.Errorf("failed to build writer: %w", err)
	}

	return &Runner{
		main:    opts.Main,
		profile: opts.Profile,
		parser:  p,
		writer:  w,
		files:   utils.NewFileManager(opts.Main.InputDir, opts.Main.OutputDir, xlsxparser.Extension, csvparser.Extension),
		policy: aggregate.Policy{
			EmitUnresolved:    opts.Profile.Settings.ShouldEmitUnresolved(),
			ReviewDescription: opts.Profile.Settings.ReviewDescription,
		},
		logger: logger,
		dryRun: opts.DryRun,
	}, nil
}

// Run executes the pipeline.
//
// RETURNS:
//   - The run result. Per-file failures are reported in Result.Files, not
//     as an error.
//   - An error if the input directory is missing, or the output cannot be
//     written.
func (r *Runner) Run() (*Result, error) {
	result := &Result{Stats: Stats{StartTime: time.Now()}}

	// =========================================================================
	// STEP 1: DIRECTORIES
	// =========================================================================

	if err := r.files.CheckInputDir(); err != nil {
		return nil, err
	}
	if !r.dryRun {
		if err := r.files.EnsureOutputDir(); err != nil {
			return nil, err
		}
	}

	// =========================================================================
	// STEP 2: GROUP DISCOVERY
	// =========================================================================

	groups, err := r.files.DiscoverGroups()
	if err != nil {
		return nil, err
	}
	r.logger.Info("discovered input groups", zap.Int("groups", len(groups)))

	// =========================================================================
	// STEP 3: AGGREGATION
	// =========================================================================

	result.Output, result.Files = r.Aggregate(groups)
	result.Stats.Groups = len(groups)
	for _, f := range result.Files {
		result.Stats.TotalFiles++
		if f.Success {
			result.Stats.SuccessfulFiles++
			result.Stats.RowsMatched += f.RowsMatched
		} else {
			result.Stats.FailedFiles++
		}
	}
	result.Stats.Entries = len(result.Output.Entries)
	result.Stats.ReviewMarkers = len(result.Output.Review)
	r.warnOverflow(result.Output)

	if r.dryRun {
		result.Stats.EndTime = time.Now()
		return result, nil
	}

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	name := utils.GenerateOutputFileName(r.main.OutputNameFormat, r.writer.Extension(),
		map[string]string{"profile": r.profile.Name})
	result.ReportFile = filepath.Join(r.main.OutputDir, name)

	if err := report.WriteFile(result.ReportFile, r.writer, result.Output); err != nil {
		return nil, err
	}
	r.logger.Info("wrote report", zap.String("path", result.ReportFile))

	// =========================================================================
	// STEP 5: LOGS
	// =========================================================================

	if len(result.Output.Review) > 0 {
		result.ReviewFile = utils.SidecarPath(result.ReportFile, "review")
		if err := utils.WriteReviewLog(result.Output.Review, result.ReviewFile); err != nil {
			return nil, err
		}
		r.logger.Info("rows need manual check",
			zap.Int("rows", len(result.Output.Review)),
			zap.String("path", result.ReviewFile))
	}

	result.Stats.EndTime = time.Now()

	if r.main.WriteSummary {
		result.SummaryFile = utils.SidecarPath(result.ReportFile, "summary")
		if err := utils.WriteSummaryLog(r.summary(result), result.SummaryFile); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Aggregate processes every file of every group, in order, and returns the
// aggregate snapshot with the per-file outcomes.
func (r *Runner) Aggregate(groups []utils.Group) (types.Output, []FileResult) {
	agg := aggregate.New()
	var files []FileResult

	for _, g := range groups {
		agg.AddGroup(g.Name)
		if len(g.Files) == 0 {
			r.logger.Debug("group has no input files", zap.String("group", g.Name))
		}

		for _, path := range g.Files {
			fe, fr := r.processFile(g.Name, path)
			if fr.Success {
				agg.MergeFile(g.Name, fe)
			}
			files = append(files, fr)
		}
	}

	return agg.Snapshot(), files
}

// =============================================================================
// PER-FILE PROCESSING
// =============================================================================

// processFile reads one file into a fresh FileEntries. Any error or panic
// marks the file as failed and its entries are not returned.
func (r *Runner) processFile(group, path string) (fe *aggregate.FileEntries, fr FileResult) {
	start := time.Now()
	logger := r.logger.With(zap.String("group", group), zap.String("file", filepath.Base(path)))

	fr = FileResult{Group: group, Path: path}
	fe = aggregate.NewFileEntries(filepath.Base(path))

	defer func() {
		if rec := recover(); rec != nil {
			fr.Error = fmt.Errorf("panic while processing file: %v", rec)
			logger.Debug("panic stack", zap.ByteString("stack", debug.Stack()))
		}
		fr.ProcessingTime = time.Since(start)
		if fr.Error != nil {
			fr.Success = false
			fe = nil
			logger.Warn("skipping file", zap.Error(fr.Error))
			return
		}
		fr.Success = true
		logger.Info("processed file",
			zap.Int("sheets", fr.Sheets),
			zap.Int("rows_matched", fr.RowsMatched),
			zap.Int("entries", fr.Entries),
			zap.Int("review", fr.ReviewMarkers),
			zap.Duration("elapsed", fr.ProcessingTime))
	}()

	grids, err := r.readGrids(path)
	if err != nil {
		fr.Error = err
		return fe, fr
	}

	for _, grid := range grids {
		fr.Sheets++
		for _, res := range r.parser.ParseSheet(grid, logger) {
			fr.RowsMatched++
			if !fe.AddResult(res, r.policy) {
				continue
			}
			if res.Outcome == types.NeedsReview {
				fr.ReviewMarkers++
			}
		}
	}
	fr.Entries = fe.Len()

	return fe, fr
}

// readGrids loads every worksheet of a supported input file.
func (r *Runner) readGrids(path string) ([]types.Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case xlsxparser.Extension:
		wb, err := xlsxparser.Open(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.Sheets()

	case csvparser.Extension:
		grid, err := csvparser.Parse(path, r.main.CSVSettings)
		if err != nil {
			return nil, err
		}
		return []types.Grid{grid}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
}

// warnOverflow logs group totals that overflowed. Report writers leave them
// out.
func (r *Runner) warnOverflow(out types.Output) {
	for key, counts := range out.Entries {
		for group, q := range counts {
			if !extract.IsFinite(q) {
				r.logger.Warn("group total is out of range and is not reported",
					zap.String("entry", key.String()),
					zap.String("group", group))
			}
		}
	}
}

// summary converts a result for the summary log.
func (r *Runner) summary(result *Result) utils.RunSummary {
	s := utils.RunSummary{
		StartTime:       result.Stats.StartTime,
		EndTime:         result.Stats.EndTime,
		Profile:         r.profile.Name,
		ReportFile:      result.ReportFile,
		Groups:          result.Stats.Groups,
		TotalFiles:      result.Stats.TotalFiles,
		SuccessfulFiles: result.Stats.SuccessfulFiles,
		FailedFiles:     result.Stats.FailedFiles,
		RowsMatched:     result.Stats.RowsMatched,
		Entries:         result.Stats.Entries,
		ReviewMarkers:   result.Stats.ReviewMarkers,
	}
	for _, f := range result.Files {
		if !f.Success {
			s.FailedFilesList = append(s.FailedFilesList, utils.FailedFileInfo{
				InputFile:    f.Path,
				ErrorMessage: f.Error.Error(),
			})
		}
	}
	return s
}
