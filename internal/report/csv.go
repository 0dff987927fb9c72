package report

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

const (
	headerTotal      = "Всего"
	headerObject     = "Объект"
	headerDimensions = "Габариты"
	missingQuantity  = "-"
	areaTotalsPlaces = 1
	csvFileExtension = ".csv"
)

// writeRecords writes records and flushes.
func writeRecords(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// =============================================================================
// GROUPS CSV
// =============================================================================

// GroupsCSVWriter writes ",Всего,<groups...>" tables with one row per entry
// labelled "<name> <description>". Groups without a quantity show 0.
type GroupsCSVWriter struct{}

// Extension implements Writer.
func (GroupsCSVWriter) Extension() string { return csvFileExtension }

// Write implements Writer.
func (GroupsCSVWriter) Write(w io.Writer, out types.Output) error {
	records := [][]string{append([]string{"", headerTotal}, out.Groups...)}

	for _, r := range rows(out) {
		record := []string{r.key.String(), formatQuantity(r.total)}
		for _, g := range out.Groups {
			record = append(record, formatQuantity(r.groups[g]))
		}
		records = append(records, record)
	}

	return writeRecords(w, records)
}

// =============================================================================
// ENTRIES CSV
// =============================================================================

// EntriesCSVWriter writes "Объект,Габариты,Всего,<groups...>" tables.
// Groups that did not contribute to an entry show "-".
type EntriesCSVWriter struct{}

// Extension implements Writer.
func (EntriesCSVWriter) Extension() string { return csvFileExtension }

// Write implements Writer.
func (EntriesCSVWriter) Write(w io.Writer, out types.Output) error {
	return writeRecords(w, entriesTable(out))
}

// entriesTable builds the name/description table shared by the CSV and
// XLSX writers.
func entriesTable(out types.Output) [][]string {
	records := [][]string{append([]string{headerObject, headerDimensions, headerTotal}, out.Groups...)}

	for _, r := range rows(out) {
		record := []string{r.key.Name, r.key.Description, formatQuantity(r.total)}
		for _, g := range out.Groups {
			if r.has(g) {
				record = append(record, formatQuantity(r.groups[g]))
			} else {
				record = append(record, missingQuantity)
			}
		}
		records = append(records, record)
	}
	return records
}

// =============================================================================
// AREA CSV
// =============================================================================

// AreaCSVWriter writes "Объект,Всего" with the total area per name, rounded
// to one decimal. Manual-review markers follow, one per row, with their
// description in place of a total.
type AreaCSVWriter struct{}

// Extension implements Writer.
func (AreaCSVWriter) Extension() string { return csvFileExtension }

// Write implements Writer.
func (AreaCSVWriter) Write(w io.Writer, out types.Output) error {
	review := reviewDescriptions(out)

	totals := make(map[string]decimal.Decimal)
	var names []string
	var markers []types.EntryKey

	for _, r := range rows(out) {
		if _, ok := review[r.key.Description]; ok {
			markers = append(markers, r.key)
			continue
		}
		if _, ok := totals[r.key.Name]; !ok {
			names = append(names, r.key.Name)
		}
		totals[r.key.Name] = totals[r.key.Name].Add(r.total)
	}

	sort.SliceStable(names, func(i, j int) bool {
		return totals[names[i]].Cmp(totals[names[j]]) > 0
	})

	records := [][]string{{headerObject, headerTotal}}
	for _, name := range names {
		records = append(records, []string{name, totals[name].StringFixed(areaTotalsPlaces)})
	}

	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Name != markers[j].Name {
			return markers[i].Name < markers[j].Name
		}
		return markers[i].Description < markers[j].Description
	})
	for _, key := range markers {
		records = append(records, []string{key.Name, key.Description})
	}

	return writeRecords(w, records)
}
