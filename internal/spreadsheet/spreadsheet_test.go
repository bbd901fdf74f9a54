package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{"XLSX", FormatXLSX, false},
		{".xlsx", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{".CSV", FormatCSV, false},
		{"pdf", "", true},
		{"xls", "", true},
	}

	for _, tc := range testCases {
		format, err := Normalize(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, "input=%q", tc.input)
			continue
		}
		assert.NoError(t, err, "input=%q", tc.input)
		assert.Equal(t, tc.expected, format, "input=%q", tc.input)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	headers := []string{"id", "name", "price"}
	rows := [][]string{
		{"1", "Tomato Soup", "4500"},
		{"2", "Grilled Salmon", "18000"},
	}

	for _, format := range []string{FormatCSV, FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			data, err := Write(format, "foods", headers, rows)
			assert.NoError(t, err)
			assert.NotEmpty(t, data)

			parsed, err := Read(format, bytes.NewReader(data))
			assert.NoError(t, err)
			if assert.Len(t, parsed, 3) {
				assert.Equal(t, headers, parsed[0])
				assert.Equal(t, rows[0], parsed[1])
				assert.Equal(t, rows[1], parsed[2])
			}
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "transactions.csv", FileName("transactions", FormatCSV))
	assert.Equal(t, "users.xlsx", FileName("users", FormatXLSX))
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := Read("pdf", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
