package workitem

import (
	"fmt"
	"strconv"
)

// Well-known field reference names
const (
	FieldID          = "System.Id"
	FieldTitle       = "System.Title"
	FieldState       = "System.State"
	FieldDescription = "System.Description"
	FieldStackRank   = "Microsoft.VSTS.Common.StackRank"
)

// QueryResult is the outcome of a text query: identifiers in server order plus
// the snapshot marker the query was evaluated at.
type QueryResult struct {
	IDs  []int  `json:"ids"`
	AsOf string `json:"asOf"`
}

// Record is a single work item with the fields returned by the tracker.
// A field that the tracker did not return is absent from Fields.
type Record struct {
	ID     int                    `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// Field returns the raw value of a field and whether it was present
func (r Record) Field(name string) (interface{}, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the field value rendered as text.
// Numbers are printed without exponent so stack ranks stay readable.
func (r Record) String(name string) (string, bool) {
	v, ok := r.Field(name)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// StringOr returns the field as text, or fallback when it is missing or empty
func (r Record) StringOr(name, fallback string) string {
	s, ok := r.String(name)
	if !ok || s == "" {
		return fallback
	}
	return s
}
