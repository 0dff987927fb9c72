package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kardamoony/specification-table-summary/internal/extract"
	"github.com/kardamoony/specification-table-summary/internal/types"
)

// quantityPlaces is the precision quantities are rounded to when rendered.
const quantityPlaces = 3

// row is one aggregated entry prepared for rendering.
type row struct {
	key    types.EntryKey
	unit   string
	total  decimal.Decimal
	groups map[string]decimal.Decimal
}

// has reports whether group contributed to the entry.
func (r row) has(group string) bool {
	_, ok := r.groups[group]
	return ok
}

// rows converts the aggregate into rows ordered by total desc, then name
// and description. Totals are summed in decimal to avoid float drift in
// the rendered sums.
//
// Group quantities that are not finite (a sum that overflowed) cannot be
// rendered and are left out; an entry left without any group is dropped.
func rows(out types.Output) []row {
	result := make([]row, 0, len(out.Entries))
	for key, counts := range out.Entries {
		r := row{
			key:    key,
			unit:   out.Units[key],
			groups: make(map[string]decimal.Decimal, len(counts)),
		}
		for group, q := range counts {
			if !extract.IsFinite(q) {
				continue
			}
			d := decimal.NewFromFloat(q)
			r.groups[group] = d
			r.total = r.total.Add(d)
		}
		if len(r.groups) == 0 {
			continue
		}
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].total.Cmp(result[j].total); c != 0 {
			return c > 0
		}
		if result[i].key.Name != result[j].key.Name {
			return result[i].key.Name < result[j].key.Name
		}
		return result[i].key.Description < result[j].key.Description
	})
	return result
}

// formatQuantity renders a quantity without trailing zeros.
func formatQuantity(d decimal.Decimal) string {
	return d.Round(quantityPlaces).String()
}

// reviewDescriptions returns the set of descriptions used by review markers.
func reviewDescriptions(out types.Output) map[string]struct{} {
	set := make(map[string]struct{}, len(out.Review))
	for _, item := range out.Review {
		set[item.Description] = struct{}{}
	}
	return set
}
