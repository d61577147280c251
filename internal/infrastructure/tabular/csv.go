package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"BillAnalyzer/internal/domain"
)

// Required input columns.
const (
	ColumnNumber = "numero"
	ColumnYear   = "ano"
)

const utf8BOM = "\ufeff"

// Table is a parsed batch input. Records keep every original column.
type Table struct {
	Header  []string
	Records [][]string

	numberCol int
	yearCol   int
}

// Output is the batch result ready to be written.
type Output struct {
	Header  []string
	Records [][]string
}

// ReadCSV parses a batch input. A missing numero or ano column is rejected
// before any row is read.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", domain.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrMalformedInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := &Table{Header: header, numberCol: -1, yearCol: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnNumber:
			if t.numberCol < 0 {
				t.numberCol = i
			}
		case ColumnYear:
			if t.yearCol < 0 {
				t.yearCol = i
			}
		}
	}
	if t.numberCol < 0 || t.yearCol < 0 {
		return nil, fmt.Errorf("%w: input must have %q and %q columns", domain.ErrMalformedInput, ColumnNumber, ColumnYear)
	}

	for {
		line := len(t.Records) + 2
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row %d: %w", domain.ErrMalformedInput, line, err)
		}
		fitted, err := fit(rec, len(header))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrMalformedInput, line, err)
		}
		t.Records = append(t.Records, fitted)
	}
	return t, nil
}

// Identifiers returns one identifier per record, in order.
func (t *Table) Identifiers() []domain.BillIdentifier {
	ids := make([]domain.BillIdentifier, len(t.Records))
	for i, rec := range t.Records {
		ids[i] = domain.BillIdentifier{
			Number: strings.TrimSpace(rec[t.numberCol]),
			Year:   strings.TrimSpace(rec[t.yearCol]),
		}
	}
	return ids
}

// Merge appends the analysis columns. rows must be aligned with Records;
// rows without an analysis get blank cells.
func (t *Table) Merge(rows []domain.BatchRow) (Output, error) {
	if len(rows) != len(t.Records) {
		return Output{}, fmt.Errorf("merge: %d rows for %d records", len(rows), len(t.Records))
	}

	keys := domain.AnalysisKeys()
	header := make([]string, 0, len(t.Header)+len(keys))
	header = append(header, t.Header...)
	header = append(header, keys...)

	out := Output{Header: header, Records: make([][]string, len(t.Records))}
	for i, rec := range t.Records {
		merged := make([]string, 0, len(header))
		merged = append(merged, rec...)
		if a := rows[i].Analysis; rows[i].Err == nil && a != nil {
			merged = append(merged, a.Values()...)
		} else {
			merged = append(merged, make([]string, len(keys))...)
		}
		out.Records[i] = merged
	}
	return out, nil
}

// WriteCSV writes the output as comma separated UTF-8.
func WriteCSV(w io.Writer, out Output) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(out.Header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	if err := writer.WriteAll(out.Records); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}
	return nil
}

// fit makes rec exactly n cells wide. Short rows are padded and trailing
// blank cells are dropped; any other extra cell is an error.
func fit(rec []string, n int) ([]string, error) {
	if len(rec) < n {
		return append(rec, make([]string, n-len(rec))...), nil
	}
	for i, v := range rec[n:] {
		if strings.TrimSpace(v) != "" {
			return nil, fmt.Errorf("%d cells for %d columns (extra value %q in column %d)", len(rec), n, v, n+i+1)
		}
	}
	return rec[:n], nil
}
