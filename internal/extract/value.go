// =============================================================================
// Takeoff Summary - Pattern Value Extractor
// =============================================================================
//
// Extracts numeric size attributes from free cell text using an ordered list
// of regular expressions:
//   - SingleExtractor: one capture group (diameter, "ø125" -> 125)
//   - PairExtractor:   two capture groups (dimensions, "200х300" -> 200, 300)
//
// PRECEDENCE:
//   Patterns are tried in configured order. The first pattern whose regex
//   matches decides the outcome: if its captures do not parse as numbers the
//   extraction fails and later patterns are NOT tried.
//
// SYNTAX:
//   Patterns use Go RE2 syntax. Unicode escapes are written \x{00f8}.
//
// =============================================================================

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/logging"
)

// ParseFunc converts one captured substring into a number.
type ParseFunc func(string) (float64, error)

// ParseInvariant parses a decimal number with '.' as the separator,
// independent of any locale.
func ParseInvariant(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !IsFinite(v) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// compilePatterns compiles patterns and checks each has at least minGroups
// capture groups.
func compilePatterns(patterns []string, minGroups int) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d %q: %w", i, p, err)
		}
		if re.NumSubexp() < minGroups {
			return nil, fmt.Errorf("pattern %d %q: want %d capture group(s), got %d", i, p, minGroups, re.NumSubexp())
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// =============================================================================
// SINGLE VALUE
// =============================================================================

// SingleExtractor extracts one number from text.
type SingleExtractor struct {
	regexes []*regexp.Regexp
	parse   ParseFunc
	logger  *zap.Logger
}

// NewSingleExtractor compiles patterns that each carry one capture group.
// A nil parse function means ParseInvariant.
func NewSingleExtractor(patterns []string, parse ParseFunc, logger *zap.Logger) (*SingleExtractor, error) {
	regexes, err := compilePatterns(patterns, 1)
	if err != nil {
		return nil, err
	}
	if parse == nil {
		parse = ParseInvariant
	}
	return &SingleExtractor{regexes: regexes, parse: parse, logger: logging.OrNop(logger)}, nil
}

// TryExtract returns the value captured by the first matching pattern.
func (e *SingleExtractor) TryExtract(text string) (float64, bool) {
	for _, re := range e.regexes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		v, err := e.parse(m[1])
		if err != nil {
			e.logger.Warn("failed to parse captured value",
				zap.String("text", text),
				zap.String("pattern", re.String()),
				zap.Error(err))
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// =============================================================================
// VALUE PAIR
// =============================================================================

// PairExtractor extracts two ordered numbers from text.
type PairExtractor struct {
	regexes []*regexp.Regexp
	first   ParseFunc
	second  ParseFunc
	logger  *zap.Logger
}

// NewPairExtractor compiles patterns that each carry two capture groups.
// Nil parse functions mean ParseInvariant.
func NewPairExtractor(patterns []string, first, second ParseFunc, logger *zap.Logger) (*PairExtractor, error) {
	regexes, err := compilePatterns(patterns, 2)
	if err != nil {
		return nil, err
	}
	if first == nil {
		first = ParseInvariant
	}
	if second == nil {
		second = ParseInvariant
	}
	return &PairExtractor{regexes: regexes, first: first, second: second, logger: logging.OrNop(logger)}, nil
}

// TryExtract returns both values captured by the first matching pattern.
func (e *PairExtractor) TryExtract(text string) (float64, float64, bool) {
	for _, re := range e.regexes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		a, errA := e.first(m[1])
		b, errB := e.second(m[2])
		if errA != nil || errB != nil {
			e.logger.Warn("failed to parse captured values",
				zap.String("text", text),
				zap.String("pattern", re.String()),
				zap.NamedError("first", errA),
				zap.NamedError("second", errB))
			return 0, 0, false
		}
		return a, b, true
	}
	return 0, 0, false
}
