package domain

import (
	"fmt"
	"strings"
)

// Labels used by the portal's metadata table.
const (
	LabelDocument     = "Documento"
	LabelNumberYear   = "Número Legislativo"
	LabelAuthors      = "Autor(es)"
	LabelSummary      = "Ementa"
	LabelPDFReference = "pdf_url"
)

// Placeholders returned when a detail row is absent.
const (
	DefaultDocumentType = "Tipo desconhecido"
	DefaultNumberYear   = "N/A"
	DefaultAuthors      = "Autor desconhecido"
	DefaultSummary      = "Sem ementa"
)

// BillIdentifier is the (number, year) pair users search by.
type BillIdentifier struct {
	Number string `json:"numero"`
	Year   string `json:"ano"`
}

// Validate only checks that both halves are present.
func (b BillIdentifier) Validate() error {
	if strings.TrimSpace(b.Number) == "" || strings.TrimSpace(b.Year) == "" {
		return fmt.Errorf("%w: bill number and year are required", ErrMalformedInput)
	}
	return nil
}

func (b BillIdentifier) String() string {
	return strings.TrimSpace(b.Number) + "/" + strings.TrimSpace(b.Year)
}

// BillReference points at the portal record found by a search.
type BillReference struct {
	InternalID string `json:"internal_id"`
	DetailURL  string `json:"detail_url"`
}

// DetailFields is the raw label -> value mapping read from a detail page.
type DetailFields map[string]string

// BillDetails wraps DetailFields with typed accessors and defaults.
type BillDetails struct {
	fields DetailFields
}

// NewBillDetails copies fields so later mutation of the map has no effect.
func NewBillDetails(fields DetailFields) BillDetails {
	copied := make(DetailFields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return BillDetails{fields: copied}
}

// Empty reports whether no field was extracted.
func (d BillDetails) Empty() bool {
	return len(d.fields) == 0
}

// Field returns a raw value by label.
func (d BillDetails) Field(label string) (string, bool) {
	v, ok := d.fields[label]
	return v, ok
}

// Fields returns a copy of every extracted row.
func (d BillDetails) Fields() DetailFields {
	copied := make(DetailFields, len(d.fields))
	for k, v := range d.fields {
		copied[k] = v
	}
	return copied
}

func (d BillDetails) valueOr(label, fallback string) string {
	if v, ok := d.fields[label]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func (d BillDetails) DocumentType() string {
	return d.valueOr(LabelDocument, DefaultDocumentType)
}

func (d BillDetails) LegislativeNumberYear() string {
	return d.valueOr(LabelNumberYear, DefaultNumberYear)
}

func (d BillDetails) Authors() string {
	return d.valueOr(LabelAuthors, DefaultAuthors)
}

func (d BillDetails) Summary() string {
	return d.valueOr(LabelSummary, DefaultSummary)
}

// PDFReference is the document link as found on the page, possibly relative.
func (d BillDetails) PDFReference() string {
	return strings.TrimSpace(d.fields[LabelPDFReference])
}

func (d BillDetails) HasPDF() bool {
	return d.PDFReference() != ""
}

// NumberYear splits the legislative number on the first "/".
func (d BillDetails) NumberYear() (string, string) {
	return SplitNumberYear(d.fields[LabelNumberYear])
}

// Headline renders "<type> <number>/<year>".
func (d BillDetails) Headline() string {
	number, year := d.NumberYear()
	return fmt.Sprintf("%s %s/%s", d.DocumentType(), number, year)
}

// SplitNumberYear parses "NUMBER/YEAR"; values without "/" yield ("N/A", "N/A").
func SplitNumberYear(value string) (string, string) {
	number, year, ok := strings.Cut(value, "/")
	if !ok {
		return DefaultNumberYear, DefaultNumberYear
	}
	return strings.TrimSpace(number), strings.TrimSpace(year)
}
