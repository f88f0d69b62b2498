package workitem

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLimit is the number of work items kept from a query result.
// Items beyond the limit are dropped without pagination.
const DefaultLimit = 10

// Session is an open connection to the tracker
type Session interface {
	// QueryByText runs a WIQL query and returns identifiers in server order
	QueryByText(ctx context.Context, query string) (QueryResult, error)
	// GetFields fetches the named fields for ids as of the given snapshot
	GetFields(ctx context.Context, ids []int, fields []string, asOf string) ([]Record, error)
	// Close releases the connection
	Close() error
}

// Connector opens tracker sessions
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Observer is notified once per fetch
type Observer interface {
	ObserveFetch(queried, returned int, elapsed time.Duration, err error)
}

// Fetcher runs bounded work item queries against a tracker
type Fetcher struct {
	connector Connector
	limit     int
	logger    zerolog.Logger
	observer  Observer
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithLimit sets the maximum number of records returned. Non-positive values keep the default.
func WithLimit(limit int) Option {
	return func(f *Fetcher) {
		if limit > 0 {
			f.limit = limit
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithObserver registers an observer for fetch outcomes
func WithObserver(o Observer) Option {
	return func(f *Fetcher) {
		f.observer = o
	}
}

// NewFetcher creates a new fetcher
func NewFetcher(connector Connector, opts ...Option) *Fetcher {
	f := &Fetcher{
		connector: connector,
		limit:     DefaultLimit,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Limit returns the configured cap
func (f *Fetcher) Limit() int {
	return f.limit
}

// FetchTopItems runs query, keeps the first Limit identifiers in server order
// and fetches fieldNames for them at the query's snapshot. An empty result is
// not an error. Any transport failure aborts the fetch with no partial result.
func (f *Fetcher) FetchTopItems(ctx context.Context, query string, fieldNames []string) (records []Record, err error) {
	start := time.Now()
	queried := 0
	defer func() {
		if f.observer != nil {
			f.observer.ObserveFetch(queried, len(records), time.Since(start), err)
		}
	}()

	session, err := f.connector.Connect(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to connect to tracker")
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			f.logger.Warn().Err(cerr).Msg("failed to close tracker session")
		}
	}()

	f.logger.Debug().Str("query", query).Msg("running work item query")

	result, err := session.QueryByText(ctx, query)
	if err != nil {
		return nil, WrapError(err, "failed to run work item query")
	}
	queried = len(result.IDs)

	if len(result.IDs) == 0 {
		f.logger.Debug().Msg("query returned no work items")
		return []Record{}, nil
	}

	ids := result.IDs
	if len(ids) >= f.limit {
		ids = ids[:f.limit]
		if queried > f.limit {
			f.logger.Debug().Int("found", queried).Int("limit", f.limit).Msg("truncating query result")
		}
	}

	records, err = session.GetFields(ctx, ids, fieldNames, result.AsOf)
	if err != nil {
		return nil, WrapError(err, "failed to fetch work item fields")
	}

	return orderByIDs(records, ids), nil
}

// orderByIDs returns records in the order of ids, whatever order the
// transport produced them in.
func orderByIDs(records []Record, ids []int) []Record {
	byID := make(map[int]Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	ordered := make([]Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}
