package soql

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Table is a column-aligned view of a result set. Columns are the union of
// field names across all records in first-seen order; cells of fields a record
// does not carry hold the empty string as the missing-value marker.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows"    yaml:"rows"`
}

// Table materializes the aggregated records into tabular form.
func (a *AggregatedResult) Table() *Table {
	if a == nil {
		return &Table{}
	}

	return NewTable(a.Records, a.FieldOrder)
}

// NewTable builds a table from records. fieldOrder fixes the leading column
// order; fields found in the records but absent from fieldOrder are appended
// sorted by name, since record maps carry no order of their own.
func NewTable(records []Record, fieldOrder []string) *Table {
	table := &Table{
		Columns: unionColumns(records, fieldOrder),
	}

	if len(records) == 0 {
		return table
	}

	table.Rows = make([][]string, 0, len(records))

	for _, record := range records {
		row := make([]string, len(table.Columns))

		for i, column := range table.Columns {
			value, ok := record[column]
			if !ok {
				continue
			}

			row[i] = FormatValue(value)
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// unionColumns merges the ordered hint with any remaining field names found
// in the records.
func unionColumns(records []Record, hint []string) []string {
	var (
		columns []string
		seen    = make(map[string]bool)
	)

	for _, column := range hint {
		if !seen[column] {
			seen[column] = true

			columns = append(columns, column)
		}
	}

	var extras []string

	for _, record := range records {
		for field := range record {
			if !seen[field] {
				seen[field] = true

				extras = append(extras, field)
			}
		}
	}

	sort.Strings(extras)

	return append(columns, extras...)
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}

	return len(t.Columns)
}

// WriteCSV writes the table as UTF-8 CSV with a header row. Quoting follows
// RFC 4180. An empty table writes nothing.
func (t *Table) WriteCSV(w io.Writer) error {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)

	err := writer.Write(t.Columns)
	if err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range t.Rows {
		err := writer.Write(row)
		if err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()

	err = writer.Error()
	if err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	return nil
}

// CSVBytes returns the table encoded as CSV.
func (t *Table) CSVBytes() ([]byte, error) {
	var buf bytes.Buffer

	err := t.WriteCSV(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FormatValue renders a decoded JSON value as a display cell. Null becomes
// the empty string and nested objects or arrays become compact JSON.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
