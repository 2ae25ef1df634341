// Package sheet reads contact import files and writes campaign export files
// in xlsx (via excelize) or csv form.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/munazzamapp/munazzam-server/internal/domain"
	domainerrors "github.com/munazzamapp/munazzam-server/internal/errors"
)

// Format identifies a spreadsheet file format.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name such as "xlsx" or ".csv".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", domainerrors.UnsupportedFormatf("unsupported file format %q: use .xlsx or .csv", s)
}

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", domainerrors.UnsupportedFormatf("file %q has no extension: use .xlsx or .csv", name)
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ReadImportRows parses an import file. The first row is a header and is
// skipped; the remaining rows are read positionally as name, phone, source.
// Missing trailing cells read as empty strings.
func ReadImportRows(r io.Reader, f Format) ([]domain.ImportRow, error) {
	var (
		records [][]string
		err     error
	)
	switch f {
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return nil, domainerrors.UnsupportedFormatf("unsupported file format %q", f)
	}
	if err != nil {
		return nil, err
	}

	if len(records) <= 1 {
		return []domain.ImportRow{}, nil
	}

	rows := make([]domain.ImportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, domain.ImportRow{
			Name:   cell(rec, 0),
			Phone:  cell(rec, 1),
			Source: cell(rec, 2),
		})
	}
	return rows, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnsupportedFormat, "could not read xlsx file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnsupportedFormat, "could not read xlsx rows")
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnsupportedFormat, "could not read csv file")
	}
	if len(records) > 0 && len(records[0]) > 0 {
		// Spreadsheet tools often prefix UTF-8 CSV with a byte order mark.
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// WriteExport writes the PhoneNumber,Message header followed by one row per
// line, in order.
func WriteExport(w io.Writer, f Format, lines []domain.ExportLine) error {
	switch f {
	case FormatXLSX:
		return writeXLSX(w, lines)
	case FormatCSV:
		return writeCSV(w, lines)
	}
	return domainerrors.UnsupportedFormatf("unsupported export format %q", f)
}

func writeCSV(w io.Writer, lines []domain.ExportLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range lines {
		if err := cw.Write([]string{l.Phone, l.Message}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const exportSheet = "Sheet1"

func writeXLSX(w io.Writer, lines []domain.ExportLine) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("new stream writer: %w", err)
	}

	header := make([]any, len(domain.ExportHeader))
	for i, h := range domain.ExportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, l := range lines {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// Phones are written as text so leading zeros survive.
		if err := sw.SetRow(axis, []any{l.Phone, l.Message}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
