package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrEmptyTable     = errors.New("table has no header")
	ErrMissingColumn  = errors.New("missing required column")
	ErrMalformedTable = errors.New("malformed table")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is the persisted CSV before cleaning. Every cell is kept as the
// raw string; coercion happens in Normalize.
type RawTable struct {
	columns []string
	frame   dataframe.DataFrame
	rows    int
}

// ParseCSV reads a comma-separated table with a mandatory header row.
// Short rows (a line still being appended) are padded with empty cells;
// rows with more cells than the header make the whole table malformed.
func ParseCSV(data []byte) (*RawTable, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := uniqueNames(records[0])
	records[0] = header
	for _, required := range []string{ColumnTimestamp, ColumnTemperature} {
		if !contains(header, required) {
			return nil, fmt.Errorf("%s: %w", required, ErrMissingColumn)
		}
	}

	for i := 1; i < len(records); i++ {
		switch n := len(records[i]); {
		case n > len(header):
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d",
				ErrMalformedTable, i+1, n, len(header))
		case n < len(header):
			padded := make([]string, len(header))
			copy(padded, records[i])
			records[i] = padded
		}
	}

	table := &RawTable{
		columns: append([]string(nil), header...),
		rows:    len(records) - 1,
	}
	if table.rows == 0 {
		return table, nil
	}

	table.frame = dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if table.frame.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, table.frame.Err)
	}

	return table, nil
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return t.rows
}

// Columns returns the header names in file order.
func (t *RawTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the header contains name.
func (t *RawTable) HasColumn(name string) bool {
	return contains(t.columns, name)
}

// Column returns the raw cells of a column, or nil when it is absent.
func (t *RawTable) Column(name string) []string {
	if !t.HasColumn(name) {
		return nil
	}
	if t.rows == 0 {
		return []string{}
	}
	col := t.frame.Col(name)
	if col.Err != nil || col.Len() != t.rows {
		return make([]string, t.rows)
	}
	return col.Records()
}

// Rename returns a copy of the table with column oldName called newName.
// Renaming onto an existing column is refused and leaves the table as is.
func (t *RawTable) Rename(oldName, newName string) *RawTable {
	if !t.HasColumn(oldName) || t.HasColumn(newName) {
		return t
	}

	renamed := &RawTable{
		columns: t.Columns(),
		rows:    t.rows,
		frame:   t.frame,
	}
	for i, name := range renamed.columns {
		if name == oldName {
			renamed.columns[i] = newName
		}
	}
	if t.rows > 0 {
		renamed.frame = t.frame.Rename(newName, oldName)
	}
	return renamed
}

// uniqueNames keeps the first occurrence of a repeated header name and
// suffixes later ones with ".1", ".2" and so on. Blank names become
// "Unnamed: <index>".
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[candidate] = true
		names[i] = candidate
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
