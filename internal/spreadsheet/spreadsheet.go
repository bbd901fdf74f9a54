// Package spreadsheet renders and parses tabular exports. Every entity
// export/import goes through the same two formats: xlsx (excelize) and
// plain csv.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Normalize maps a user-supplied format string (query param or file
// extension) onto a supported format. Empty input defaults to xlsx.
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type to serve a generated file with.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName builds the attachment name for an export download.
func FileName(base, format string) string {
	return base + "." + format
}

// Write renders a header row plus data rows into the requested format.
func Write(format, sheetName string, headers []string, rows [][]string) ([]byte, error) {
	switch format {
	case FormatXLSX:
		return writeXLSX(sheetName, headers, rows)
	case FormatCSV:
		return writeCSV(headers, rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Read parses an uploaded file into raw string rows, header row
// included. Callers skip the first row themselves.
func Read(format string, r io.Reader) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeXLSX(sheetName string, headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	if err := setRow(f, sheetName, 1, headers); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, sheetName, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}
