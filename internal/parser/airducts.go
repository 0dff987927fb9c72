package parser

import (
	"math"

	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/extract"
	"github.com/kardamoony/specification-table-summary/internal/logging"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// AirductsParser computes duct surface area. The number after the unit cell
// is the duct length; the area is derived from the extracted diameter or
// rectangular dimensions:
//
//	round:       π · d · l
//	rectangular: (h + w) · 2 · l
//
// Sizes are multiplied by the profile's area_scale first (mm to m by
// default) so the area comes out in area_unit.
type AirductsParser struct {
	*rules
}

// NewAirductsParser builds an airducts parser from a profile.
func NewAirductsParser(profile *config.ProfileConfig, logger *zap.Logger) (RowParser, error) {
	r, err := newRules(profile, logger)
	if err != nil {
		return nil, err
	}
	return &AirductsParser{rules: r}, nil
}

// ParseSheet implements RowParser. A matched row without a length, or
// without any size, needs manual review.
func (p *AirductsParser) ParseSheet(grid types.Grid, logger *zap.Logger) []types.RowResult {
	logger = logging.OrNop(logger).With(zap.String("sheet", grid.Name()))

	return parseRows(grid, func(row int) (types.RowResult, bool) {
		st, ok := p.scanRow(grid, row)
		if !ok || !st.matched {
			return types.RowResult{}, false
		}

		res := st.result(grid, row)
		if !st.hasNumber || !st.described {
			res.Outcome = types.NeedsReview
			logger.Warn("row needs manual check",
				zap.Int("row", row),
				zap.String("text", st.text),
				zap.Bool("has_length", st.hasNumber),
				zap.Bool("has_size", st.described))
			return res, true
		}

		area := Area(st.shape.family, st.shape.a, st.shape.b, st.number, p.settings.AreaScale)
		if !extract.IsFinite(area) {
			res.Outcome = types.NeedsReview
			logger.Warn("row needs manual check: area out of range",
				zap.Int("row", row),
				zap.String("text", st.text))
			return res, true
		}

		res.Outcome = types.Resolved
		res.Description = st.description
		res.Unit = p.settings.AreaUnit
		res.Quantity = area
		return res, true
	})
}

// Area returns the lateral surface area of a duct section. For the diameter
// family b is ignored.
func Area(family string, a, b, length, scale float64) float64 {
	if family == config.FamilyDiameter {
		return math.Pi * a * scale * length
	}
	return (a*scale + b*scale) * 2 * length
}
