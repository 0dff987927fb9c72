// =============================================================================
// Takeoff Summary - Row Parser Registry
// =============================================================================
//
// A row parser turns one worksheet grid into a list of row results. The
// profile's parser_type selects the implementation by name from a Registry
// built once in the composition root:
//
//   entries   - generic takeoff: quantity read after the unit cell, entry
//               described by the extracted diameter or dimensions
//   airducts  - surface area takeoff: length read after the unit cell, area
//               computed from the diameter or the rectangular dimensions
//
// ADDING A PARSER:
//   1. Implement RowParser
//   2. Write a Factory for it
//   3. Register the factory under a new parser_type name
//
// =============================================================================

package parser

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// ErrUnknownParser is returned when no factory is registered for a name.
var ErrUnknownParser = errors.New("unknown parser type")

// RowParser scans worksheet rows.
type RowParser interface {
	// ParseSheet returns one result for every row that matched an include
	// keyword, in row order. Rows without a match, and rows hit by an
	// exclude keyword, produce nothing.
	ParseSheet(grid types.Grid, logger *zap.Logger) []types.RowResult
}

// Factory builds a parser for a profile.
type Factory func(profile *config.ProfileConfig, logger *zap.Logger) (RowParser, error)

// Registry maps parser_type names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(config.ParserEntries, NewEntriesParser)
	r.Register(config.ParserAirducts, NewAirductsParser)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the parser selected by the profile's parser_type.
func (r *Registry) New(profile *config.ProfileConfig, logger *zap.Logger) (RowParser, error) {
	f, ok := r.factories[profile.ParserType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownParser, profile.ParserType, r.Names())
	}
	return f(profile, logger)
}
