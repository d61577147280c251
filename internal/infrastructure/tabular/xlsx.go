package tabular

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"BillAnalyzer/internal/domain"
)

// SheetName is the worksheet holding batch results.
const SheetName = "Analises"

// WriteXLSX writes the output as a single-sheet workbook.
func WriteXLSX(w io.Writer, out Output) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for col, h := range out.Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	for i, rec := range out.Records {
		for col, v := range rec {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellStr(SheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", i+1, err)
			}
		}
	}

	// Analysis columns are prose; widen them.
	for col := len(out.Header) - len(domain.AnalysisFields) + 1; col <= len(out.Header); col++ {
		if col < 1 {
			continue
		}
		name, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(SheetName, name, name, 60)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteFile picks the format from the file extension (.csv or .xlsx).
func WriteFile(path string, out Output) error {
	var write func(io.Writer, Output) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		write = WriteCSV
	case ".xlsx":
		write = WriteXLSX
	default:
		return fmt.Errorf("%w: unsupported output format %q", domain.ErrMalformedInput, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile opens and parses a CSV batch input.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
