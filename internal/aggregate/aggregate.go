// =============================================================================
// Takeoff Summary - Entry Aggregator
// =============================================================================
//
// Folds row results into entries in two stages:
//
//   1. FileEntries: one per input file. Rows with the same key add into one
//      EntryDescription. If the file fails part way, its FileEntries is
//      dropped and nothing reaches the aggregate.
//   2. Aggregator: one per run. MergeFile adds a file's entries into the
//      per-group totals; several files of one group add up, never replace.
//
// MANUAL REVIEW:
//   A NeedsReview row becomes a zero-quantity entry whose description embeds
//   its location ("[manual check] a.xlsx:ОВ row 12"). The description makes
//   the key distinct, so review markers never merge into numeric totals.
//
// =============================================================================

package aggregate

import (
	"fmt"
	"maps"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

// Policy controls how row outcomes are folded.
type Policy struct {
	// EmitUnresolved keeps Unresolved rows (sentinel description).
	EmitUnresolved bool

	// ReviewDescription prefixes manual-review marker descriptions.
	ReviewDescription string
}

// ReviewDescription renders the marker description for a review row.
func ReviewDescription(marker, file, sheet string, row int) string {
	return fmt.Sprintf("%s %s:%s row %d", marker, file, sheet, row)
}

// =============================================================================
// PER-FILE ENTRIES
// =============================================================================

// FileEntries accumulates the entries of one input file.
type FileEntries struct {
	file    string
	order   []types.EntryKey
	entries map[types.EntryKey]*types.EntryDescription
	review  []types.ReviewItem
}

// NewFileEntries returns an empty accumulator for file.
func NewFileEntries(file string) *FileEntries {
	return &FileEntries{
		file:    file,
		entries: make(map[types.EntryKey]*types.EntryDescription),
	}
}

// Add inserts e, or adds its count to the entry already held for its key.
func (f *FileEntries) Add(e types.EntryDescription) {
	key := e.Key()
	if existing, ok := f.entries[key]; ok {
		existing.Count += e.Count
		if existing.Unit == "" {
			existing.Unit = e.Unit
		}
		return
	}

	f.entries[key] = &e
	f.order = append(f.order, key)
}

// AddResult folds one row result according to p. It reports whether the
// result produced an entry.
func (f *FileEntries) AddResult(res types.RowResult, p Policy) bool {
	switch res.Outcome {
	case types.Resolved:
		f.Add(types.EntryDescription{
			Name:        res.Name,
			Description: res.Description,
			Unit:        res.Unit,
			Count:       res.Quantity,
		})
		return true

	case types.Unresolved:
		if !p.EmitUnresolved {
			return false
		}
		f.Add(types.EntryDescription{
			Name:        res.Name,
			Description: res.Description,
			Unit:        res.Unit,
			Count:       res.Quantity,
		})
		return true

	case types.NeedsReview:
		desc := ReviewDescription(p.ReviewDescription, f.file, res.Sheet, res.Row)
		f.Add(types.EntryDescription{
			Name:        res.Name,
			Description: desc,
			Unit:        res.Unit,
		})
		f.review = append(f.review, types.ReviewItem{
			File:        f.file,
			Sheet:       res.Sheet,
			Row:         res.Row,
			Name:        res.Name,
			Text:        res.Text,
			Description: desc,
		})
		return true
	}
	return false
}

// Len returns the number of distinct keys.
func (f *FileEntries) Len() int {
	return len(f.order)
}

// Entries returns the entries in first-seen order.
func (f *FileEntries) Entries() []types.EntryDescription {
	out := make([]types.EntryDescription, 0, len(f.order))
	for _, key := range f.order {
		out = append(out, *f.entries[key])
	}
	return out
}

// Review returns the rows routed to manual review.
func (f *FileEntries) Review() []types.ReviewItem {
	return f.review
}

// =============================================================================
// CROSS-FILE AGGREGATE
// =============================================================================

// Aggregator owns the run-wide aggregate and group set. It is not safe for
// concurrent use.
type Aggregator struct {
	entries types.Aggregate
	units   map[types.EntryKey]string
	groups  []string
	known   map[string]struct{}
	review  []types.ReviewItem
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		entries: make(types.Aggregate),
		units:   make(map[types.EntryKey]string),
		known:   make(map[string]struct{}),
	}
}

// AddGroup registers a group name. Groups keep their first-registered order
// and appear as report columns even when they contribute nothing.
func (a *Aggregator) AddGroup(group string) {
	if _, ok := a.known[group]; ok {
		return
	}
	a.known[group] = struct{}{}
	a.groups = append(a.groups, group)
}

// MergeFile adds every entry of f into group's running totals.
func (a *Aggregator) MergeFile(group string, f *FileEntries) {
	a.AddGroup(group)

	for _, key := range f.order {
		e := f.entries[key]

		counts, ok := a.entries[key]
		if !ok {
			counts = make(map[string]float64)
			a.entries[key] = counts
		}
		counts[group] += e.Count

		if a.units[key] == "" && e.Unit != "" {
			a.units[key] = e.Unit
		}
	}

	a.review = append(a.review, f.review...)
}

// Groups returns the registered group names in order.
func (a *Aggregator) Groups() []string {
	return append([]string(nil), a.groups...)
}

// Snapshot returns a copy of the aggregate for report writers.
func (a *Aggregator) Snapshot() types.Output {
	entries := make(types.Aggregate, len(a.entries))
	for key, counts := range a.entries {
		entries[key] = maps.Clone(counts)
	}

	return types.Output{
		Entries: entries,
		Groups:  a.Groups(),
		Units:   maps.Clone(a.units),
		Review:  append([]types.ReviewItem(nil), a.review...),
	}
}
