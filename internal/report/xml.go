package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/kardamoony/specification-table-summary/internal/types"
)

// XML STRUCTURE:
//
//	<takeoff>
//	  <groups>
//	    <group name="Корпус 1"/>
//	  </groups>
//	  <entry name="Воздуховод" description="ø100" unit="м" total="8">
//	    <group name="Корпус 1" quantity="8"/>
//	  </entry>
//	  <review file="a.xlsx" sheet="ОВ" row="12" name="Клапан"/>
//	</takeoff>
//
// An entry lists only the groups that contributed to it.

// XMLWriter writes the aggregate as an XML document.
type XMLWriter struct {
	// Indent is the string used for indentation. Empty writes one line.
	Indent string

	// IncludeXMLDeclaration prepends the standard XML declaration.
	IncludeXMLDeclaration bool
}

// DefaultXMLWriter returns an XMLWriter indenting by two spaces with a
// declaration.
func DefaultXMLWriter() XMLWriter {
	return XMLWriter{Indent: "  ", IncludeXMLDeclaration: true}
}

type xmlTakeoff struct {
	XMLName xml.Name    `xml:"takeoff"`
	Groups  []xmlGroup  `xml:"groups>group"`
	Entries []xmlEntry  `xml:"entry"`
	Review  []xmlReview `xml:"review"`
}

type xmlGroup struct {
	Name     string `xml:"name,attr"`
	Quantity string `xml:"quantity,attr,omitempty"`
}

type xmlEntry struct {
	Name        string     `xml:"name,attr"`
	Description string     `xml:"description,attr"`
	Unit        string     `xml:"unit,attr,omitempty"`
	Total       string     `xml:"total,attr"`
	Groups      []xmlGroup `xml:"group"`
}

type xmlReview struct {
	File  string `xml:"file,attr"`
	Sheet string `xml:"sheet,attr"`
	Row   int    `xml:"row,attr"`
	Name  string `xml:"name,attr"`
	Text  string `xml:",chardata"`
}

// Extension implements Writer.
func (XMLWriter) Extension() string { return ".xml" }

// Write implements Writer.
func (x XMLWriter) Write(w io.Writer, out types.Output) error {
	doc := xmlTakeoff{}
	for _, g := range out.Groups {
		doc.Groups = append(doc.Groups, xmlGroup{Name: g})
	}

	for _, r := range rows(out) {
		e := xmlEntry{
			Name:        r.key.Name,
			Description: r.key.Description,
			Unit:        r.unit,
			Total:       formatQuantity(r.total),
		}
		for _, g := range out.Groups {
			if r.has(g) {
				e.Groups = append(e.Groups, xmlGroup{Name: g, Quantity: formatQuantity(r.groups[g])})
			}
		}
		doc.Entries = append(doc.Entries, e)
	}

	for _, item := range out.Review {
		doc.Review = append(doc.Review, xmlReview{
			File:  item.File,
			Sheet: item.Sheet,
			Row:   item.Row,
			Name:  item.Name,
			Text:  item.Text,
		})
	}

	if x.IncludeXMLDeclaration {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", x.Indent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}
