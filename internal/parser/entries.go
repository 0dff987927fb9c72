package parser

import (
	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/logging"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// EntriesParser is the generic takeoff parser: the number after the unit
// cell is the row's quantity and the entry is described by its size.
type EntriesParser struct {
	*rules
}

// NewEntriesParser builds an entries parser from a profile.
func NewEntriesParser(profile *config.ProfileConfig, logger *zap.Logger) (RowParser, error) {
	r, err := newRules(profile, logger)
	if err != nil {
		return nil, err
	}
	return &EntriesParser{rules: r}, nil
}

// ParseSheet implements RowParser.
//
// OUTCOMES:
//   - NeedsReview: no quantity was found after a unit cell
//   - Unresolved: quantity found but no size pattern matched; described by
//     the undefined sentinel
//   - Resolved: quantity and size description both found
func (p *EntriesParser) ParseSheet(grid types.Grid, logger *zap.Logger) []types.RowResult {
	logger = logging.OrNop(logger).With(zap.String("sheet", grid.Name()))

	return parseRows(grid, func(row int) (types.RowResult, bool) {
		st, ok := p.scanRow(grid, row)
		if !ok || !st.matched {
			return types.RowResult{}, false
		}

		res := st.result(grid, row)
		res.Unit = st.unit

		switch {
		case !st.hasNumber:
			res.Outcome = types.NeedsReview
			logger.Warn("row needs manual check: no quantity",
				zap.Int("row", row),
				zap.String("text", st.text))
		case !st.described:
			res.Outcome = types.Unresolved
			res.Description = p.settings.UndefinedDescription
			res.Quantity = st.number
			logger.Debug("no size pattern matched",
				zap.Int("row", row),
				zap.String("text", st.text))
		default:
			res.Outcome = types.Resolved
			res.Description = st.description
			res.Quantity = st.number
		}
		return res, true
	})
}
