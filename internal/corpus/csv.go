package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVFile reads postings from a CSV file with a header row.
type CSVFile struct {
	Path string
}

func (s CSVFile) Load(_ context.Context) (*Table, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses CSV data into a table. Short rows leave missing cells unset.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	table := &Table{Columns: columns}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(table.Rows)+2, err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
