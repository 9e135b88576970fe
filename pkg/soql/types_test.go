package soql_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Get(t *testing.T) {
	t.Parallel()

	record := soql.Record{
		"Id":       "001",
		"Name":     "Acme",
		"Industry": nil,
	}

	value, ok := record.Get("Name")
	assert.True(t, ok)
	assert.Equal(t, "Acme", value)

	value, ok = record.Get("Industry")
	assert.True(t, ok)
	assert.Nil(t, value)

	_, ok = record.Get("Missing")
	assert.False(t, ok)
}

func TestRecord_StringValue(t *testing.T) {
	t.Parallel()

	record := soql.Record{
		"Name":      "Acme",
		"Employees": float64(250),
		"IsActive":  true,
		"Phone":     nil,
	}

	assert.Equal(t, "Acme", record.StringValue("Name"))
	assert.Equal(t, "250", record.StringValue("Employees"))
	assert.Equal(t, "true", record.StringValue("IsActive"))
	assert.Empty(t, record.StringValue("Phone"))
	assert.Empty(t, record.StringValue("Missing"))
}

func TestRecord_Attributes(t *testing.T) {
	t.Parallel()
	t.Run("with attributes", func(t *testing.T) {
		t.Parallel()

		record := soql.Record{
			"attributes": map[string]interface{}{
				"type": "Account",
				"url":  "/services/data/v60.0/sobjects/Account/001",
			},
			"Id": "001",
		}

		attrs := record.Attributes()
		require.NotNil(t, attrs)
		assert.Equal(t, "Account", attrs.Type)
		assert.Equal(t, "/services/data/v60.0/sobjects/Account/001", attrs.URL)
	})

	t.Run("without attributes", func(t *testing.T) {
		t.Parallel()

		record := soql.Record{"Id": "001"}
		assert.Nil(t, record.Attributes())
	})
}

func TestQueryResult_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	body := `{
		"totalSize": 2,
		"done": false,
		"records": [
			{"attributes": {"type": "Account"}, "Id": "001", "Name": "Acme"},
			{"attributes": {"type": "Account"}, "Id": "002", "Industry": "Energy"}
		],
		"nextRecordsUrl": "/services/data/v60.0/query/01g-2000"
	}`

	var page soql.QueryResult

	require.NoError(t, json.Unmarshal([]byte(body), &page))

	assert.Equal(t, 2, page.TotalSize)
	assert.False(t, page.Done)
	assert.True(t, page.HasMore())
	assert.Equal(t, "/services/data/v60.0/query/01g-2000", page.NextRecordsURL)

	require.Len(t, page.Records, 2)
	assert.Equal(t, "Acme", page.Records[0].StringValue("Name"))
	assert.Equal(t, "Energy", page.Records[1].StringValue("Industry"))

	// The raw body is retained verbatim for structured display.
	assert.JSONEq(t, body, string(page.Raw))

	// Field names are unioned across records in document order.
	assert.Equal(t, []string{"attributes", "Id", "Name", "Industry"}, page.FieldOrder)
}

func TestQueryResult_HasMore(t *testing.T) {
	t.Parallel()

	done := &soql.QueryResult{Done: true}
	assert.False(t, done.HasMore())

	more := &soql.QueryResult{Done: false, NextRecordsURL: "/services/data/v60.0/query/01g-2000"}
	assert.True(t, more.HasMore())
}

func TestAggregatedResult(t *testing.T) {
	t.Parallel()
	t.Run("empty aggregate", func(t *testing.T) {
		t.Parallel()

		var nilAggregate *soql.AggregatedResult

		assert.True(t, nilAggregate.Empty())
		assert.Equal(t, 0, nilAggregate.Len())
		assert.Equal(t, 0, nilAggregate.TotalSize())
		assert.Nil(t, nilAggregate.Raw())

		empty := &soql.AggregatedResult{}
		assert.True(t, empty.Empty())
	})

	t.Run("populated aggregate", func(t *testing.T) {
		t.Parallel()

		lastPage := &soql.QueryResult{
			TotalSize: 4000,
			Raw:       json.RawMessage(`{"totalSize": 4000}`),
		}

		aggregate := &soql.AggregatedResult{
			Records:  []soql.Record{{"Id": "001"}, {"Id": "002"}},
			Pages:    2,
			LastPage: lastPage,
		}

		assert.False(t, aggregate.Empty())
		assert.Equal(t, 2, aggregate.Len())
		assert.Equal(t, 4000, aggregate.TotalSize())
		assert.JSONEq(t, `{"totalSize": 4000}`, string(aggregate.Raw()))
	})
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel()

	type account struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	}

	records := []soql.Record{
		{"Id": "001", "Name": "Acme"},
		{"Id": "002", "Name": "Globex"},
	}

	accounts, err := soql.DecodeRecords[account](records)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, account{ID: "001", Name: "Acme"}, accounts[0])
	assert.Equal(t, account{ID: "002", Name: "Globex"}, accounts[1])
}

func TestQueryResponse_TypedDecoding(t *testing.T) {
	t.Parallel()

	type contact struct {
		ID    string `json:"Id"`
		Email string `json:"Email"`
	}

	body := `{
		"totalSize": 1,
		"done": true,
		"records": [{"Id": "003", "Email": "jo@example.org"}]
	}`

	var page soql.QueryResponse[contact]

	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, 1, page.TotalSize)
	assert.True(t, page.Done)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "jo@example.org", page.Records[0].Email)
}
