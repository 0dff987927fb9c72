// =============================================================================
// Takeoff Summary - Report Writers
// =============================================================================
//
// A report writer renders the aggregate snapshot of a run. The profile's
// output_type selects the writer by name from a Registry:
//
//   groups_csv   - one row per entry labelled "<name> <description>", a total
//                  column and one column per group
//   entries_csv  - name and description in separate columns, "-" where a
//                  group has no quantity
//   area_csv     - total area per name, followed by manual-review markers
//   xlsx         - the entries table as an Excel workbook
//   xml          - a <takeoff> document
//
// ROW ORDER:
//   Rows are ordered by total quantity, largest first, then by name and
//   description so the output is deterministic.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

// ErrUnknownWriter is returned when no writer is registered for a name.
var ErrUnknownWriter = errors.New("unknown output type")

// Registered writer names.
const (
	GroupsCSV  = "groups_csv"
	EntriesCSV = "entries_csv"
	AreaCSV    = "area_csv"
	XLSX       = "xlsx"
	XML        = "xml"
)

// Writer renders an aggregate snapshot.
type Writer interface {
	// Extension is the file extension of the rendered report, with the dot.
	Extension() string

	// Write renders out to w.
	Write(w io.Writer, out types.Output) error
}

// Factory builds a writer.
type Factory func() Writer

// Registry maps output_type names to writer factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in writers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GroupsCSV, func() Writer { return GroupsCSVWriter{} })
	r.Register(EntriesCSV, func() Writer { return EntriesCSVWriter{} })
	r.Register(AreaCSV, func() Writer { return AreaCSVWriter{} })
	r.Register(XLSX, func() Writer { return XLSXWriter{} })
	r.Register(XML, func() Writer { return DefaultXMLWriter() })
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

// New returns the writer registered under name.
func (r *Registry) New(name string) (Writer, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownWriter, name, r.Names())
	}
	return f(), nil
}

// WriteFile renders out into the file at path.
func WriteFile(path string, w Writer, out types.Output) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	if err := w.Write(file, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
