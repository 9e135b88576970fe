package soql

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Credentials holds the normalized authentication material for one org.
// InstanceURL always carries an explicit scheme.
type Credentials struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
	InstanceURL string `json:"instance_url" yaml:"instance_url"`
}

// Record is one row of query results. The field set is not statically fixed
// and may vary between records of the same result set; relationship fields
// appear only on rows that carry them.
type Record map[string]interface{}

// RecordAttributes is the per-record metadata object Salesforce attaches
// under the "attributes" field.
type RecordAttributes struct {
	Type string `json:"type" yaml:"type"`
	URL  string `json:"url"  yaml:"url"`
}

// Get returns the value of a field and whether the field is present.
func (r Record) Get(field string) (interface{}, bool) {
	value, ok := r[field]

	return value, ok
}

// StringValue returns the field rendered as a string, or the empty string if
// the field is absent or null.
func (r Record) StringValue(field string) string {
	value, ok := r[field]
	if !ok || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}

// Attributes extracts the record's "attributes" object, or nil when absent.
func (r Record) Attributes() *RecordAttributes {
	raw, ok := r["attributes"].(map[string]interface{})
	if !ok {
		return nil
	}

	attrs := &RecordAttributes{}
	if t, ok := raw["type"].(string); ok {
		attrs.Type = t
	}

	if u, ok := raw["url"].(string); ok {
		attrs.URL = u
	}

	return attrs
}

// QueryResult represents one page of query results as returned by the server.
type QueryResult struct {
	TotalSize      int      `json:"totalSize"                yaml:"totalSize"`
	Done           bool     `json:"done"                     yaml:"done"`
	Records        []Record `json:"records"                  yaml:"records"`
	NextRecordsURL string   `json:"nextRecordsUrl,omitempty" yaml:"nextRecordsUrl,omitempty"`

	// Raw is the page body exactly as received, retained for structured
	// display. Not part of the wire shape.
	Raw json.RawMessage `json:"-" yaml:"-"`

	// FieldOrder is the union of field names across this page's records in
	// document order. Go maps do not preserve key order, so it is captured
	// while decoding.
	FieldOrder []string `json:"-" yaml:"-"`
}

// UnmarshalJSON decodes the wire shape and captures the page body and the
// document-order field names of its records.
func (r *QueryResult) UnmarshalJSON(data []byte) error {
	type queryResultAlias QueryResult

	var alias queryResultAlias

	err := json.Unmarshal(data, &alias)
	if err != nil {
		return err
	}

	*r = QueryResult(alias)
	r.Raw = append(json.RawMessage(nil), data...)
	r.FieldOrder = recordFieldOrder(data)

	return nil
}

// HasMore reports whether the server supplied a continuation reference.
func (r *QueryResult) HasMore() bool {
	return r.NextRecordsURL != ""
}

// QueryResponse is a typed variant of QueryResult for callers that decode
// records into their own structs.
type QueryResponse[T any] struct {
	TotalSize      int    `json:"totalSize"                yaml:"totalSize"`
	Done           bool   `json:"done"                     yaml:"done"`
	Records        []T    `json:"records"                  yaml:"records"`
	NextRecordsURL string `json:"nextRecordsUrl,omitempty" yaml:"nextRecordsUrl,omitempty"`
}

// AggregatedResult is the concatenation of records across all fetched pages.
// Page order and record order within a page are preserved. Immutable once
// returned by the pagination engine.
type AggregatedResult struct {
	Records  []Record     `json:"records" yaml:"records"`
	Pages    int          `json:"pages"   yaml:"pages"`
	LastPage *QueryResult `json:"-"       yaml:"-"`

	// FieldOrder is the union of field names across all aggregated records
	// in first-seen document order.
	FieldOrder []string `json:"-" yaml:"-"`
}

// Empty reports whether the query aggregated zero records. This is the
// "no data" outcome, distinct from any error.
func (a *AggregatedResult) Empty() bool {
	return a == nil || len(a.Records) == 0
}

// Len returns the number of aggregated records.
func (a *AggregatedResult) Len() int {
	if a == nil {
		return 0
	}

	return len(a.Records)
}

// TotalSize returns the server-reported total result size, which may exceed
// Len when only the first page was fetched.
func (a *AggregatedResult) TotalSize() int {
	if a == nil || a.LastPage == nil {
		return 0
	}

	return a.LastPage.TotalSize
}

// Raw returns the last page body exactly as received, for JSON display.
func (a *AggregatedResult) Raw() json.RawMessage {
	if a == nil || a.LastPage == nil {
		return nil
	}

	return a.LastPage.Raw
}

// recordFieldOrder extracts the union of top-level field names across the
// records of a page body, in document order.
func recordFieldOrder(page []byte) []string {
	var envelope struct {
		Records []json.RawMessage `json:"records"`
	}

	err := json.Unmarshal(page, &envelope)
	if err != nil {
		return nil
	}

	var (
		order []string
		seen  = make(map[string]bool)
	)

	for _, raw := range envelope.Records {
		for _, key := range topLevelKeys(raw) {
			if !seen[key] {
				seen[key] = true

				order = append(order, key)
			}
		}
	}

	return order
}

// topLevelKeys returns the keys of a JSON object in document order, or nil if
// the value is not an object.
func topLevelKeys(raw []byte) []string {
	decoder := json.NewDecoder(bytes.NewReader(raw))

	token, err := decoder.Token()
	if err != nil {
		return nil
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil
		}

		key, ok := token.(string)
		if !ok {
			return nil
		}

		keys = append(keys, key)

		err = skipValue(decoder)
		if err != nil {
			return nil
		}
	}

	return keys
}

// skipValue consumes one complete JSON value from the decoder.
func skipValue(decoder *json.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}

	delim, ok := token.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}

	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		if delim, ok := token.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}

	return nil
}

// DecodeRecords converts loosely-typed records into a caller-supplied struct
// type via a JSON round trip.
func DecodeRecords[T any](records []Record) ([]T, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}

	var out []T

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	return out, nil
}
