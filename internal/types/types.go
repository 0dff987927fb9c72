// =============================================================================
// Takeoff Summary - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - parser     (produces RowResult values)
//   - aggregate  (folds RowResult values into entries)
//   - takeoff    (drives the run and builds the Output snapshot)
//   - report     (renders the Output snapshot)
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// ENTRY IDENTITY
// =============================================================================

// EntryKey identifies one aggregated line item.
// It is a comparable value type, so it can be used directly as a map key:
// two keys are equal when both Name and Description are equal.
type EntryKey struct {
	// Name is the canonical item category resolved by the keyword classifier.
	Name string

	// Description is the formatted dimension/diameter, the undefined
	// sentinel, or a manual-review marker. Never empty.
	Description string
}

// String renders the key the way the groups report labels its rows.
func (k EntryKey) String() string {
	return fmt.Sprintf("%s %s", k.Name, k.Description)
}

// EntryDescription is the mutable accumulation record for one key within a
// single file.
type EntryDescription struct {
	Name        string
	Description string
	Unit        string
	Count       float64
}

// Key returns the identity of the entry.
func (e *EntryDescription) Key() EntryKey {
	return EntryKey{Name: e.Name, Description: e.Description}
}

// =============================================================================
// ROW EXTRACTION RESULT
// =============================================================================

// Outcome is the tri-state result of scanning one row that matched a category.
type Outcome int

const (
	// Resolved means the row produced a description and a quantity.
	Resolved Outcome = iota + 1

	// Unresolved means the row produced a quantity but no pattern matched,
	// so the entry carries the undefined sentinel as its description.
	Unresolved

	// NeedsReview means the row matched a category but a required value
	// (quantity, length or shape) is missing.
	NeedsReview
)

// String returns a lower-case label for logs.
func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	case NeedsReview:
		return "needs_review"
	default:
		return "unknown"
	}
}

// RowResult is the immutable outcome of a single row that matched an include
// keyword. Rows that do not match (or are excluded) produce no RowResult.
type RowResult struct {
	Outcome Outcome

	// Name is the canonical name of the matched include group.
	Name string

	// Description is the formatted shape, or empty for Unresolved and
	// NeedsReview rows.
	Description string

	// Unit is the unit text recorded from the row (or the configured area
	// unit for area rows).
	Unit string

	// Quantity is the extracted quantity or computed area.
	Quantity float64

	// Sheet and Row locate the source row (Row is 1-based).
	Sheet string
	Row   int

	// Text is the cell text that produced the include match.
	Text string
}

// ReviewItem locates a row that needs manual reconciliation.
type ReviewItem struct {
	File  string
	Sheet string
	Row   int
	Name  string
	Text  string

	// Description is the marker the row was aggregated under.
	Description string
}

// =============================================================================
// AGGREGATE SNAPSHOT
// =============================================================================

// Aggregate maps each entry to its per-group accumulated quantity.
type Aggregate map[EntryKey]map[string]float64

// Total returns the sum of all group quantities for a key.
func (a Aggregate) Total(key EntryKey) float64 {
	var total float64
	for _, q := range a[key] {
		total += q
	}
	return total
}

// Output is the snapshot the takeoff run hands to a report writer.
type Output struct {
	// Entries is the cross-file aggregate.
	Entries Aggregate

	// Groups lists group names in discovery order; usable as column headers.
	Groups []string

	// Units maps each key to the unit recorded for it (first seen wins).
	Units map[EntryKey]string

	// Review lists every row routed to manual review.
	Review []ReviewItem
}
