package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yahsan2/srs-exporter/pkg/project"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// FormatType represents the output format type
type FormatType int

const (
	// FormatTable outputs tab-separated rows under a count header
	FormatTable FormatType = iota
	// FormatJSON outputs as JSON
	FormatJSON
	// FormatCSV outputs as CSV
	FormatCSV
)

// ParseFormat parses an output format name
func ParseFormat(s string) (FormatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatTable, fmt.Errorf("invalid output format '%s': must be table, json or csv", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	format FormatType
	writer io.Writer
	urls   *project.URLBuilder
}

// NewFormatterWithWriter creates a new formatter with custom writer
func NewFormatterWithWriter(format FormatType, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// WithURLs adds work item web links to JSON output
func (f *Formatter) WithURLs(urls *project.URLBuilder) *Formatter {
	f.urls = urls
	return f
}

// Header returns the count line printed above a listing
func Header(count int) string {
	return fmt.Sprintf("Query Results: %d items found", count)
}

// FormatRecords writes records using the given policy
func (f *Formatter) FormatRecords(records []workitem.Record, policy Policy) error {
	switch f.format {
	case FormatJSON:
		return f.formatRecordsJSON(records, policy)
	case FormatCSV:
		return f.formatRecordsCSV(records, policy)
	default:
		return f.formatRecordsTable(records, policy)
	}
}

// formatRecordsTable writes the header line followed by one tab-separated row per record
func (f *Formatter) formatRecordsTable(records []workitem.Record, policy Policy) error {
	if _, err := fmt.Fprintln(f.writer, Header(len(records))); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(f.writer, strings.Join(policy.Row(r), "\t")); err != nil {
			return err
		}
	}
	return nil
}

type jsonRecord struct {
	ID     int               `json:"id"`
	URL    string            `json:"url,omitempty"`
	Fields map[string]string `json:"fields"`
}

type jsonListing struct {
	Count  int          `json:"count"`
	Policy string       `json:"policy"`
	Items  []jsonRecord `json:"items"`
}

// formatRecordsJSON formats records as JSON
func (f *Formatter) formatRecordsJSON(records []workitem.Record, policy Policy) error {
	columns := policy.Columns()
	listing := jsonListing{
		Count:  len(records),
		Policy: policy.Name(),
		Items:  make([]jsonRecord, 0, len(records)),
	}

	for _, r := range records {
		row := policy.Row(r)
		item := jsonRecord{ID: r.ID, Fields: make(map[string]string, len(columns))}
		// id is already top level
		for i := 1; i < len(columns) && i < len(row); i++ {
			item.Fields[columns[i]] = row[i]
		}
		if f.urls != nil {
			item.URL = f.urls.GetWorkItemURL(r.ID)
		}
		listing.Items = append(listing.Items, item)
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(listing)
}

// formatRecordsCSV formats records as CSV
func (f *Formatter) formatRecordsCSV(records []workitem.Record, policy Policy) error {
	w := csv.NewWriter(f.writer)

	if err := w.Write(policy.Columns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(policy.Row(r)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// FormatError formats an error for output
func (f *Formatter) FormatError(err error) error {
	if f.format == FormatJSON {
		errorData := map[string]string{
			"error": err.Error(),
		}

		// If it's a FetchError, include more details
		var fetchErr *workitem.FetchError
		if errors.As(err, &fetchErr) {
			errorData["type"] = fetchErr.Type.String()
			if fetchErr.Suggestion != "" {
				errorData["suggestion"] = fetchErr.Suggestion
			}
		}

		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(errorData)
	}

	// For table and csv formats, just print the error
	_, printErr := fmt.Fprintln(f.writer, err.Error())
	return printErr
}
