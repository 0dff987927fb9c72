package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kardamoony/specification-table-summary/internal/config"
)

var (
	diameterPatterns   = []string{`ø\s*(\d+)`, `[dд]\s*=\s*(\d+)`}
	dimensionsPatterns = []string{`(\d+)\s*[хx]\s*(\d+)`}
)

func TestSingleExtractor(t *testing.T) {
	e, err := NewSingleExtractor(diameterPatterns, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"ø125", 125, true},
		{"воздуховод ø 250", 250, true},
		{"d=160", 160, true},
		{"воздуховод 200х300", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := e.TryExtract(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairExtractor_CyrillicAndLatinSeparator(t *testing.T) {
	e, err := NewPairExtractor(dimensionsPatterns, nil, nil, nil)
	require.NoError(t, err)

	a, b, ok := e.TryExtract("200х300") // Cyrillic х
	require.True(t, ok)
	assert.Equal(t, 200.0, a)
	assert.Equal(t, 300.0, b)

	a, b, ok = e.TryExtract("400 x 500") // Latin x
	require.True(t, ok)
	assert.Equal(t, 400.0, a)
	assert.Equal(t, 500.0, b)

	_, _, ok = e.TryExtract("ø125")
	assert.False(t, ok)
}

func TestSingleExtractor_FirstMatchingPatternDecides(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	failing := func(s string) (float64, error) {
		if s == "bad" {
			return 0, errors.New("not a number")
		}
		return ParseInvariant(s)
	}

	e, err := NewSingleExtractor([]string{`size=(\w+)`, `(\d+)`}, failing, zap.New(core))
	require.NoError(t, err)

	// The first pattern matches but its capture does not parse: the second
	// pattern, which would match "100", is never tried.
	_, ok := e.TryExtract("size=bad 100")
	assert.False(t, ok)
	assert.Equal(t, 1, observed.FilterMessage("failed to parse captured value").Len())

	v, ok := e.TryExtract("size=42")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}

func TestPairExtractor_ParseFailureIsLogged(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	e, err := NewPairExtractor([]string{`(\S+)\*(\S+)`}, nil, nil, zap.New(core))
	require.NoError(t, err)

	_, _, ok := e.TryExtract("abc*300")
	assert.False(t, ok)
	assert.Equal(t, 1, observed.Len())
}

func TestExtractor_PatternValidation(t *testing.T) {
	_, err := NewSingleExtractor([]string{`(\d+`}, nil, nil)
	assert.Error(t, err)

	_, err = NewSingleExtractor([]string{`\d+`}, nil, nil)
	assert.ErrorContains(t, err, "capture group")

	_, err = NewPairExtractor([]string{`(\d+)x\d+`}, nil, nil, nil)
	assert.ErrorContains(t, err, "capture group")
}

func testGroups() config.IncludeGroups {
	return config.IncludeGroups{
		{Name: "Воздуховод", Keywords: []string{"воздуховод", "air duct"}},
		{Name: "Клапан противопожарный", Keywords: []string{"клапан противопожарный"}},
		{Name: "Клапан", Keywords: []string{"клапан"}},
	}
}

func TestClassifier_TokenMode(t *testing.T) {
	c, err := NewClassifier(testGroups(), []string{"изоляция", "в комплекте"}, config.MatchToken)
	require.NoError(t, err)
	assert.Equal(t, config.MatchToken, c.Mode())

	tests := []struct {
		text string
		name string
		ok   bool
	}{
		{"Воздуховод ø125", "Воздуховод", true},
		{"Клапан Противопожарный", "Клапан противопожарный", true},
		{"клапан противопожарный", "Клапан противопожарный", true},
		{"КЛАПАН обратный", "Клапан", true},
		{"Air Duct, 200x300", "Воздуховод", true},
		{"воздуховоды", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, ok := c.MatchInclude(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}

	assert.True(t, c.IsExcluded("ИЗОЛЯЦИЯ"))
	assert.True(t, c.IsExcluded("крепеж в комплекте"))
	assert.False(t, c.IsExcluded("теплоизоляция"))
	assert.False(t, c.IsExcluded(""))
}

func TestClassifier_SubstringMode(t *testing.T) {
	c, err := NewClassifier(testGroups(), []string{"изоляц"}, config.MatchSubstring)
	require.NoError(t, err)

	name, ok := c.MatchInclude("Воздуховоды оцинкованные")
	require.True(t, ok)
	assert.Equal(t, "Воздуховод", name)

	assert.True(t, c.IsExcluded("Теплоизоляция"))
}

func TestClassifier_GroupOrderWins(t *testing.T) {
	groups := config.IncludeGroups{
		{Name: "Клапан", Keywords: []string{"клапан"}},
		{Name: "Клапан противопожарный", Keywords: []string{"клапан противопожарный"}},
	}
	c, err := NewClassifier(groups, nil, config.MatchToken)
	require.NoError(t, err)

	name, ok := c.MatchInclude("клапан противопожарный")
	require.True(t, ok)
	assert.Equal(t, "Клапан", name)
}

func TestClassifier_UnknownMode(t *testing.T) {
	_, err := NewClassifier(nil, nil, "fuzzy")
	assert.Error(t, err)
}

func TestUnitRecognizer(t *testing.T) {
	r := NewUnitRecognizer([]string{"шт", "М", "м2", " "})

	assert.True(t, r.IsUnit("ШТ"))
	assert.True(t, r.IsUnit(" м "))
	assert.True(t, r.IsUnit("м2"))
	assert.False(t, r.IsUnit("м²"))
	assert.False(t, r.IsUnit("шт."))
	assert.False(t, r.IsUnit("штука"))
	assert.False(t, r.IsUnit(""))
}

func TestNormalizer(t *testing.T) {
	n, err := NewNormalizer([]config.TextRule{
		{Type: "replace", Find: "Ø", Value: "ø"},
		{Type: "regex_replace", Find: `(\d+)\s*\*\s*(\d+)`, Value: "${1}x${2}"},
		{Type: "collapse_spaces"},
		{Type: "lowercase"},
	})
	require.NoError(t, err)

	assert.Equal(t, "воздуховод ø125", n.Apply("  Воздуховод   Ø125 "))
	assert.Equal(t, "300x400", n.Apply("300 * 400"))
}

func TestNormalizer_NilAppliesBaseNormalization(t *testing.T) {
	var n *Normalizer
	assert.Equal(t, "abc", n.Apply("  abc\t"))
}

func TestNormalizer_Errors(t *testing.T) {
	_, err := NewNormalizer([]config.TextRule{{Type: "explode"}})
	assert.Error(t, err)

	_, err = NewNormalizer([]config.TextRule{{Type: "regex_replace", Find: "("}})
	assert.Error(t, err)

	_, err = NewNormalizer([]config.TextRule{{Type: "replace"}})
	assert.Error(t, err)
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, []string{"клапан", "кпу-1", "200х300"}, Tokens("клапан, кпу-1  200х300"))
	assert.Equal(t, Fold("Клапан Противопожарный"), Fold("клапан противопожарный"))
	assert.Equal(t, "ø125", Lower(" Ø125 "))

	v, ok := ParseNumber(" 12.5 ")
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = ParseNumber("12,5")
	assert.False(t, ok)

	for _, s := range []string{"nan", "NaN", "inf", "+Inf", "-Infinity", "1e999"} {
		_, ok = ParseNumber(s)
		assert.False(t, ok, s)
	}
	_, err := ParseInvariant("NaN")
	assert.Error(t, err)

	assert.Equal(t, "200x300", FormatTemplate("{0}x{1}", 200, 300))
	assert.Equal(t, "ø12.5", FormatTemplate("ø{0}", 12.5))
	assert.True(t, HasPlaceholders("{0}x{1}", 2))
	assert.False(t, HasPlaceholders("{0}", 2))
}
