// =============================================================================
// Takeoff Summary - Cell Text Normalizer
// =============================================================================
//
// Applies profile-level text rules to each cell before classification.
// Typical uses:
//   - Replacing look-alike symbols ("Ø" -> "ø", "⌀" -> "ø")
//   - Removing noise such as non-breaking spaces
//   - Rewriting supplier-specific notations with regex_replace
//
// Rules are applied in order. Every cell is trimmed and NFC-normalized
// before the rules run.
//
// =============================================================================

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/kardamoony/specification-table-summary/internal/config"
)

var spaceRun = regexp.MustCompile(`\s+`)

// compiledRule is a text rule with its regex compiled once.
type compiledRule struct {
	rule config.TextRule
	re   *regexp.Regexp
}

// Normalizer applies text rules to cell text.
type Normalizer struct {
	rules []compiledRule
}

// NewNormalizer validates and compiles the rules.
//
// RETURNS:
//   - A Normalizer ready for Apply.
//   - An error for an unknown rule type or an invalid regex.
func NewNormalizer(rules []config.TextRule) (*Normalizer, error) {
	n := &Normalizer{rules: make([]compiledRule, 0, len(rules))}

	for i, r := range rules {
		cr := compiledRule{rule: r}

		switch r.Type {
		case "trim", "lowercase", "collapse_spaces":
		case "replace":
			if r.Find == "" {
				return nil, fmt.Errorf("text rule %d: replace needs find", i)
			}
		case "regex_replace":
			if r.Find == "" {
				return nil, fmt.Errorf("text rule %d: regex_replace needs find", i)
			}
			re, err := regexp.Compile(r.Find)
			if err != nil {
				return nil, fmt.Errorf("text rule %d: invalid regex pattern: %w", i, err)
			}
			cr.re = re
		default:
			return nil, fmt.Errorf("text rule %d: unknown type %q", i, r.Type)
		}

		n.rules = append(n.rules, cr)
	}

	return n, nil
}

// Apply returns the normalized form of text.
func (n *Normalizer) Apply(text string) string {
	out := norm.NFC.String(strings.TrimSpace(text))
	if n == nil {
		return out
	}

	for _, cr := range n.rules {
		switch cr.rule.Type {
		case "trim":
			out = strings.TrimSpace(out)
		case "lowercase":
			out = cases.Lower(language.Und).String(out)
		case "collapse_spaces":
			out = spaceRun.ReplaceAllString(out, " ")
		case "replace":
			out = strings.ReplaceAll(out, cr.rule.Find, cr.rule.Value)
		case "regex_replace":
			out = cr.re.ReplaceAllString(out, cr.rule.Value)
		}
	}

	return strings.TrimSpace(out)
}
