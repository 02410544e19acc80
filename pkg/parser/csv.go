package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readTable parses delimited bytes into a header row and data rows.
// Input encoding is detected and normalized first. Rows with a column
// count different from the header are padded or truncated to fit; the
// curated tables this feeds are hand-edited and trailing-cell mistakes
// are common.
func readTable(data []byte, comma rune) (header []string, rows [][]string, err error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err = reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}

		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		} else if len(row) > len(header) {
			row = row[:len(header)]
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// columnIndex finds the position of a named column in a header row.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q in header %v", name, header)
}
