package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

const defaultTable = "postings"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads postings from a table of a SQLite database. Embeddings are
// stored as text in the same formats accepted from CSV.
type SQLite struct {
	DSN   string
	Table string
}

func (s SQLite) Load(ctx context.Context) (*Table, error) {
	table := s.Table
	if table == "" {
		table = defaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &Table{Columns: columns}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			switch v := values[i].(type) {
			case nil:
			case []byte:
				row[column] = string(v)
			default:
				row[column] = v
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}
