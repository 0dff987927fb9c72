// =============================================================================
// Takeoff Summary - Profile Validation
// =============================================================================
//
// This module checks takeoff profiles before any input file is read, so a
// broken profile fails the run up front instead of silently producing empty
// or mis-described reports.
//
// CHECKS:
//   Errors (the profile cannot be used):
//     - parser_type / output_type not registered
//     - unknown match_mode or description_order family
//     - size patterns that do not compile or lack capture groups
//     - format templates missing their {0}/{1} placeholders
//     - broken text_rules
//     - area_scale not positive (airducts)
//     - no include_keys
//   Warnings (the profile runs, but likely not as intended):
//     - include group without keywords
//     - no units_keys (every matched row would need manual review)
//     - no size patterns at all
//
// ERROR HANDLING:
//   - Problems are collected, not returned one at a time
//   - Each problem names the profile, the YAML field and the offending value
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/extract"
	"github.com/kardamoony/specification-table-summary/internal/parser"
	"github.com/kardamoony/specification-table-summary/internal/report"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single profile problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Profile is the name of the profile.
	Profile string

	// Field is the YAML path of the offending field.
	Field string

	// Value is the offending value, if any.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] profile '%s', field '%s': %s",
		strings.ToUpper(e.Severity),
		e.Profile,
		e.Field,
		e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validating one profile.
type ValidationResult struct {
	// IsValid is true if there are no errors (warnings allowed).
	IsValid bool

	// Errors contains all problems, including warnings.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks profiles against the registered parsers and writers.
type Validator struct {
	parsers *parser.Registry
	writers *report.Registry
}

// NewValidator creates a validator for the given registries.
func NewValidator(parsers *parser.Registry, writers *report.Registry) *Validator {
	return &Validator{parsers: parsers, writers: writers}
}

// profileCheck collects problems for one profile.
type profileCheck struct {
	profile string
	errors  []*ValidationError
}

func (c *profileCheck) add(severity, field, value, format string, args ...any) {
	c.errors = append(c.errors, &ValidationError{
		Severity: severity,
		Profile:  c.profile,
		Field:    field,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ValidateProfile checks one profile.
//
// PARAMETERS:
//   - profile: The profile with defaults applied.
//
// RETURNS:
//   - The validation result; IsValid is false when any error was found.
func (v *Validator) ValidateProfile(profile *config.ProfileConfig) *ValidationResult {
	c := &profileCheck{profile: profile.Name}
	s := profile.Settings

	if !v.parsers.Has(profile.ParserType) {
		c.add(SeverityError, "parser_type", profile.ParserType,
			"unknown parser type, expected one of %s", strings.Join(v.parsers.Names(), ", "))
	}
	if !v.writers.Has(profile.OutputType) {
		c.add(SeverityError, "output_type", profile.OutputType,
			"unknown output type, expected one of %s", strings.Join(v.writers.Names(), ", "))
	}

	validateKeywords(c, profile)
	validatePatterns(c, s)

	if _, err := extract.NewNormalizer(profile.TextRules); err != nil {
		c.add(SeverityError, "text_rules", "", "%v", err)
	}

	if profile.ParserType == config.ParserAirducts && s.AreaScale <= 0 {
		c.add(SeverityError, "settings.area_scale", fmt.Sprint(s.AreaScale), "must be positive")
	}

	return newResult(c.errors)
}

// validateKeywords checks include groups, units and the match mode.
func validateKeywords(c *profileCheck, profile *config.ProfileConfig) {
	if _, err := extract.NewClassifier(nil, nil, profile.Settings.MatchMode); err != nil {
		c.add(SeverityError, "settings.match_mode", profile.Settings.MatchMode,
			"expected %s or %s", config.MatchToken, config.MatchSubstring)
	}

	if len(profile.IncludeKeys) == 0 {
		c.add(SeverityError, "include_keys", "", "at least one include group is required")
	}

	seen := make(map[string]bool)
	for _, g := range profile.IncludeKeys {
		field := "include_keys." + g.Name
		if strings.TrimSpace(g.Name) == "" {
			c.add(SeverityError, "include_keys", "", "group name must not be empty")
		}
		if seen[g.Name] {
			c.add(SeverityWarning, field, g.Name, "group defined twice; only the first can match")
		}
		seen[g.Name] = true

		if countNonBlank(g.Keywords) == 0 {
			c.add(SeverityWarning, field, "", "group has no keywords and never matches")
		}
	}

	if countNonBlank(profile.UnitsKeys) == 0 {
		c.add(SeverityWarning, "units_keys", "", "no units configured; every matched row will need manual review")
	}
}

// validatePatterns checks size patterns, templates and the description order.
func validatePatterns(c *profileCheck, s config.Settings) {
	for i, p := range s.DiameterPatterns {
		if _, err := extract.NewSingleExtractor([]string{p}, nil, nil); err != nil {
			c.add(SeverityError, fmt.Sprintf("settings.diameter_patterns[%d]", i), p, "%v", err)
		}
	}
	for i, p := range s.DimensionsPatterns {
		if _, err := extract.NewPairExtractor([]string{p}, nil, nil, nil); err != nil {
			c.add(SeverityError, fmt.Sprintf("settings.dimensions_patterns[%d]", i), p, "%v", err)
		}
	}

	if len(s.DiameterPatterns) == 0 && len(s.DimensionsPatterns) == 0 {
		c.add(SeverityWarning, "settings", "", "no diameter or dimensions patterns; no entry will be described")
	}

	if !extract.HasPlaceholders(s.DiameterFormat, 1) {
		c.add(SeverityError, "settings.diameter_format", s.DiameterFormat, "must contain {0}")
	}
	if !extract.HasPlaceholders(s.DimensionsFormat, 2) {
		c.add(SeverityError, "settings.dimensions_format", s.DimensionsFormat, "must contain {0} and {1}")
	}

	seen := make(map[string]bool)
	for _, family := range s.DescriptionOrder {
		switch family {
		case config.FamilyDiameter, config.FamilyDimensions:
		default:
			c.add(SeverityError, "settings.description_order", family,
				"unknown family, expected %s or %s", config.FamilyDiameter, config.FamilyDimensions)
		}
		if seen[family] {
			c.add(SeverityWarning, "settings.description_order", family, "family listed twice")
		}
		seen[family] = true
	}
}

func countNonBlank(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func newResult(errors []*ValidationError) *ValidationResult {
	result := &ValidationResult{Errors: errors}
	for _, e := range errors {
		if e.Severity == SeverityError {
			result.ErrorCount++
		} else {
			result.WarningCount++
		}
	}
	result.IsValid = result.ErrorCount == 0
	return result
}

// ValidateAll checks every profile, in name order.
func (v *Validator) ValidateAll(profiles map[string]*config.ProfileConfig) *ValidationResult {
	var all []*ValidationError
	for _, name := range config.ProfileNames(profiles) {
		all = append(all, v.ValidateProfile(profiles[name]).Errors...)
	}
	return newResult(all)
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(FormatErrors(errors))
	return writer.Flush()
}
