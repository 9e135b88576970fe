package soql

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	t.Run("columns follow the field-order hint", func(t *testing.T) {
		records := []Record{
			{"Id": "001", "Name": "Acme", "attributes": map[string]interface{}{"type": "Account"}},
			{"Id": "002", "Name": "Globex", "attributes": map[string]interface{}{"type": "Account"}},
		}

		table := NewTable(records, []string{"attributes", "Id", "Name"})
		assert.Equal(t, []string{"attributes", "Id", "Name"}, table.Columns)
		require.Equal(t, 2, table.NumRows())
		assert.Equal(t, "001", table.Rows[0][1])
		assert.Equal(t, "Globex", table.Rows[1][2])
	})

	t.Run("fields outside the hint are appended sorted", func(t *testing.T) {
		records := []Record{
			{"Id": "001", "Zeta": "z", "Alpha": "a"},
		}

		table := NewTable(records, []string{"Id"})
		assert.Equal(t, []string{"Id", "Alpha", "Zeta"}, table.Columns)
	})

	t.Run("missing fields leave an empty cell", func(t *testing.T) {
		records := []Record{
			{"Id": "001", "Name": "Acme"},
			{"Id": "002", "Industry": "Energy"},
		}

		table := NewTable(records, []string{"Id", "Name", "Industry"})
		require.Equal(t, 2, table.NumRows())
		assert.Equal(t, []string{"001", "Acme", ""}, table.Rows[0])
		assert.Equal(t, []string{"002", "", "Energy"}, table.Rows[1])
	})

	t.Run("null values render as the missing marker", func(t *testing.T) {
		records := []Record{
			{"Id": "001", "Phone": nil},
		}

		table := NewTable(records, []string{"Id", "Phone"})
		assert.Equal(t, []string{"001", ""}, table.Rows[0])
	})

	t.Run("no records yields an empty table", func(t *testing.T) {
		table := NewTable(nil, nil)
		assert.True(t, table.Empty())
		assert.Equal(t, 0, table.NumRows())
		assert.Equal(t, 0, table.NumColumns())
	})
}

func TestAggregatedResult_Table(t *testing.T) {
	t.Run("nil aggregate", func(t *testing.T) {
		var aggregate *AggregatedResult

		table := aggregate.Table()
		require.NotNil(t, table)
		assert.True(t, table.Empty())
	})

	t.Run("uses the aggregated field order", func(t *testing.T) {
		aggregate := &AggregatedResult{
			Records:    []Record{{"Id": "001", "Name": "Acme"}},
			FieldOrder: []string{"Name", "Id"},
		}

		table := aggregate.Table()
		assert.Equal(t, []string{"Name", "Id"}, table.Columns)
		assert.Equal(t, []string{"Acme", "001"}, table.Rows[0])
	})
}

func TestTable_WriteCSV(t *testing.T) {
	t.Run("header row plus data rows", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Id", "Name"},
			Rows: [][]string{
				{"001", "Acme"},
				{"002", "Globex"},
			},
		}

		data, err := table.CSVBytes()
		require.NoError(t, err)
		assert.Equal(t, "Id,Name\n001,Acme\n002,Globex\n", string(data))
	})

	t.Run("quotes cells per RFC 4180", func(t *testing.T) {
		table := &Table{
			Columns: []string{"Id", "Description"},
			Rows: [][]string{
				{"001", `contains "quotes" and, commas`},
				{"002", "multi\nline"},
			},
		}

		data, err := table.CSVBytes()
		require.NoError(t, err)
		assert.Equal(t, "Id,Description\n001,\"contains \"\"quotes\"\" and, commas\"\n002,\"multi\nline\"\n", string(data))
	})

	t.Run("header still written when there are no rows", func(t *testing.T) {
		table := &Table{Columns: []string{"Id", "Name"}}

		data, err := table.CSVBytes()
		require.NoError(t, err)
		assert.Equal(t, "Id,Name\n", string(data))
	})

	t.Run("a table with no columns writes nothing", func(t *testing.T) {
		table := &Table{}

		data, err := table.CSVBytes()
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{
			name:     "nil",
			value:    nil,
			expected: "",
		},
		{
			name:     "string",
			value:    "Acme",
			expected: "Acme",
		},
		{
			name:     "bool",
			value:    true,
			expected: "true",
		},
		{
			name:     "whole number",
			value:    float64(2000),
			expected: "2000",
		},
		{
			name:     "decimal number",
			value:    float64(99.95),
			expected: "99.95",
		},
		{
			name:     "json number",
			value:    json.Number("12345678901234567890"),
			expected: "12345678901234567890",
		},
		{
			name:     "nested object",
			value:    map[string]interface{}{"type": "Account"},
			expected: `{"type":"Account"}`,
		},
		{
			name:     "nested array",
			value:    []interface{}{"a", "b"},
			expected: `["a","b"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.value))
		})
	}
}
