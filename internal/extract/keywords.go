// =============================================================================
// Takeoff Summary - Keyword Classifier
// =============================================================================
//
// Decides, per cell text, whether the text is an exclusion signal and
// otherwise which include group (canonical name) it belongs to.
//
// MATCHING MODES:
//   - token:     the cell is split on spaces and commas; a keyword matches
//                when its own tokens appear as a contiguous run of cell
//                tokens ("клапан противопожарный" matches
//                "Клапан противопожарный КПУ-1", but "вод" does not match
//                "воздуховод").
//   - substring: a keyword matches when it is contained anywhere in the
//                cell text.
//   The chosen mode applies to include AND exclude keywords alike.
//
// All comparisons are caseless (Latin and Cyrillic).
//
// =============================================================================

package extract

import (
	"fmt"
	"strings"

	"github.com/kardamoony/specification-table-summary/internal/config"
)

// keyword is a pre-folded keyword.
type keyword struct {
	folded string
	tokens []string
}

type includeGroup struct {
	name     string
	keywords []keyword
}

// Classifier matches cell text against include groups and exclude keywords.
type Classifier struct {
	mode     string
	groups   []includeGroup
	excludes []keyword
}

// NewClassifier builds a classifier. Blank keywords are ignored.
func NewClassifier(groups config.IncludeGroups, excludes []string, mode string) (*Classifier, error) {
	switch mode {
	case "":
		mode = config.MatchToken
	case config.MatchToken, config.MatchSubstring:
	default:
		return nil, fmt.Errorf("unknown match mode %q", mode)
	}

	c := &Classifier{mode: mode}
	for _, g := range groups {
		ig := includeGroup{name: g.Name}
		for _, k := range g.Keywords {
			if kw, ok := newKeyword(k); ok {
				ig.keywords = append(ig.keywords, kw)
			}
		}
		c.groups = append(c.groups, ig)
	}
	for _, k := range excludes {
		if kw, ok := newKeyword(k); ok {
			c.excludes = append(c.excludes, kw)
		}
	}
	return c, nil
}

func newKeyword(k string) (keyword, bool) {
	folded := Fold(k)
	if folded == "" {
		return keyword{}, false
	}
	return keyword{folded: folded, tokens: Tokens(folded)}, true
}

// Mode returns the matching mode in effect.
func (c *Classifier) Mode() string {
	return c.mode
}

// IsExcluded reports whether text matches any exclude keyword.
func (c *Classifier) IsExcluded(text string) bool {
	folded := Fold(text)
	if folded == "" {
		return false
	}
	tokens := Tokens(folded)
	for _, kw := range c.excludes {
		if c.matches(folded, tokens, kw) {
			return true
		}
	}
	return false
}

// MatchInclude returns the canonical name of the first include group (in
// configured order) with a keyword matching text.
func (c *Classifier) MatchInclude(text string) (string, bool) {
	folded := Fold(text)
	if folded == "" {
		return "", false
	}
	tokens := Tokens(folded)
	for _, g := range c.groups {
		for _, kw := range g.keywords {
			if c.matches(folded, tokens, kw) {
				return g.name, true
			}
		}
	}
	return "", false
}

func (c *Classifier) matches(folded string, tokens []string, kw keyword) bool {
	if c.mode == config.MatchSubstring {
		return strings.Contains(folded, kw.folded)
	}
	return containsRun(tokens, kw.tokens)
}

// containsRun reports whether needle occurs as a contiguous run in haystack.
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, n := range needle {
			if haystack[i+j] != n {
				continue outer
			}
		}
		return true
	}
	return false
}
