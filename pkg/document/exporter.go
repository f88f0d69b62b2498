package document

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/yahsan2/srs-exporter/pkg/output"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// DefaultTag is the placeholder epic titles are inserted before
const DefaultTag = "<<EpicTitle>>"

// ExportFields are the fields requested for a document export
var ExportFields = []string{workitem.FieldID, workitem.FieldTitle, workitem.FieldDescription}

// TopItemsFetcher fetches the leading records of a query
type TopItemsFetcher interface {
	FetchTopItems(ctx context.Context, query string, fieldNames []string) ([]workitem.Record, error)
}

// Exporter writes work item titles into a document sink
type Exporter struct {
	fetcher TopItemsFetcher
	tag     string
	console io.Writer
	logger  zerolog.Logger
}

// NewExporter creates an exporter. An empty tag selects DefaultTag.
func NewExporter(fetcher TopItemsFetcher, tag string, console io.Writer, logger zerolog.Logger) *Exporter {
	if tag == "" {
		tag = DefaultTag
	}
	if console == nil {
		console = io.Discard
	}
	return &Exporter{
		fetcher: fetcher,
		tag:     tag,
		console: console,
		logger:  logger,
	}
}

// Export runs query and inserts each title, in result order, before the tag.
// The sink is flushed only when every replacement succeeded.
func (e *Exporter) Export(ctx context.Context, query string, sink Sink) (int, error) {
	records, err := e.fetcher.FetchTopItems(ctx, query, ExportFields)
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(e.console, output.Header(len(records)))

	for _, r := range records {
		title := r.StringOr(workitem.FieldTitle, "")
		fmt.Fprintln(e.console, title)

		if err := sink.ApplyReplacement(e.tag, title); err != nil {
			return 0, fmt.Errorf("failed to write work item %d: %w", r.ID, err)
		}
		e.logger.Debug().Int("id", r.ID).Str("tag", e.tag).Msg("inserted title")
	}

	if err := sink.Flush(); err != nil {
		return 0, err
	}

	return len(records), nil
}
