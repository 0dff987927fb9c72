package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/extract"
	"github.com/kardamoony/specification-table-summary/internal/logging"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// rules holds the matchers shared by every parser variant.
type rules struct {
	settings   config.Settings
	classifier *extract.Classifier
	units      *extract.UnitRecognizer
	normalizer *extract.Normalizer
	diameter   *extract.SingleExtractor
	dimensions *extract.PairExtractor
	logger     *zap.Logger
}

func newRules(profile *config.ProfileConfig, logger *zap.Logger) (*rules, error) {
	logger = logging.OrNop(logger)
	s := profile.Settings

	classifier, err := extract.NewClassifier(profile.IncludeKeys, profile.ExcludeKeys, s.MatchMode)
	if err != nil {
		return nil, err
	}

	normalizer, err := extract.NewNormalizer(profile.TextRules)
	if err != nil {
		return nil, fmt.Errorf("text_rules: %w", err)
	}

	r := &rules{
		settings:   s,
		classifier: classifier,
		units:      extract.NewUnitRecognizer(profile.UnitsKeys),
		normalizer: normalizer,
		logger:     logger,
	}

	if len(s.DiameterPatterns) > 0 {
		if r.diameter, err = extract.NewSingleExtractor(s.DiameterPatterns, nil, logger); err != nil {
			return nil, fmt.Errorf("diameter_patterns: %w", err)
		}
	}
	if len(s.DimensionsPatterns) > 0 {
		if r.dimensions, err = extract.NewPairExtractor(s.DimensionsPatterns, nil, nil, logger); err != nil {
			return nil, fmt.Errorf("dimensions_patterns: %w", err)
		}
	}

	for _, family := range s.DescriptionOrder {
		if family != config.FamilyDiameter && family != config.FamilyDimensions {
			return nil, fmt.Errorf("description_order: unknown family %q", family)
		}
	}

	return r, nil
}

// =============================================================================
// SIZE DESCRIPTION
// =============================================================================

// shape is a size attribute extracted from cell text.
type shape struct {
	family string
	a, b   float64
}

// describe tries the size pattern families in configured order and formats
// the first success.
func (r *rules) describe(text string) (shape, string, bool) {
	lower := extract.Lower(text)
	for _, family := range r.settings.DescriptionOrder {
		switch family {
		case config.FamilyDiameter:
			if r.diameter == nil {
				continue
			}
			if d, ok := r.diameter.TryExtract(lower); ok {
				return shape{family: family, a: d}, extract.FormatTemplate(r.settings.DiameterFormat, d), true
			}
		case config.FamilyDimensions:
			if r.dimensions == nil {
				continue
			}
			if a, b, ok := r.dimensions.TryExtract(lower); ok {
				return shape{family: family, a: a, b: b}, extract.FormatTemplate(r.settings.DimensionsFormat, a, b), true
			}
		}
	}
	return shape{}, "", false
}

// =============================================================================
// ROW SCAN
// =============================================================================

// rowScan is the state collected while walking one row left to right.
type rowScan struct {
	matched     bool
	name        string
	text        string
	described   bool
	shape       shape
	description string
	unit        string
	hasNumber   bool
	number      float64
}

// scanRow walks the cells of row. It returns false when an exclude keyword
// was hit, in which case the row yields nothing.
//
// Per cell, in priority order:
//
//  1. an empty cell is skipped
//  2. an exclude keyword aborts the row
//  3. a number while the unit flag is armed is consumed and clears the flag
//  4. an include keyword sets the canonical name and the size description,
//     both from that cell; a later include cell replaces them
//  5. a unit, while no number is captured, is recorded and arms the flag
//
// The unit flag stays armed across non-numeric cells until a number is
// consumed or the row ends.
func (r *rules) scanRow(grid types.Grid, row int) (rowScan, bool) {
	var (
		st    rowScan
		armed bool
	)

	b := grid.Bounds()
	for col := b.StartCol; col <= b.EndCol; col++ {
		cell := grid.Cell(row, col)
		text := r.normalizer.Apply(cell.Text)
		if text == "" {
			continue
		}

		if r.classifier.IsExcluded(text) {
			return rowScan{}, false
		}

		if armed {
			if v, ok := cellNumber(cell, text); ok {
				st.number = v
				st.hasNumber = true
				armed = false
				continue
			}
		}

		if name, ok := r.classifier.MatchInclude(text); ok {
			st.matched = true
			st.name = name
			st.text = text
			st.shape, st.description, st.described = r.describe(text)
		}

		if !st.hasNumber && r.units.IsUnit(text) {
			st.unit = text
			armed = true
		}
	}

	return st, true
}

// cellNumber reads a cell as a finite number, preferring the stored value
// over the display text.
func cellNumber(cell types.Cell, text string) (float64, bool) {
	if v, ok := extract.ParseNumber(cell.Value); ok {
		return v, true
	}
	return extract.ParseNumber(text)
}

// result starts a row result for a matched row.
func (st rowScan) result(grid types.Grid, row int) types.RowResult {
	return types.RowResult{
		Name:  st.name,
		Sheet: grid.Name(),
		Row:   row,
		Text:  st.text,
	}
}

// parseRows runs fn over every row of grid and collects its results.
func parseRows(grid types.Grid, fn func(row int) (types.RowResult, bool)) []types.RowResult {
	b := grid.Bounds()
	if b.Empty() {
		return nil
	}

	var results []types.RowResult
	for row := b.StartRow; row <= b.EndRow; row++ {
		if res, ok := fn(row); ok {
			results = append(results, res)
		}
	}
	return results
}
