package workitem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type getFieldsCall struct {
	ids    []int
	fields []string
	asOf   string
}

type fakeSession struct {
	result      QueryResult
	queryErr    error
	fieldsErr   error
	missing     map[int][]string
	queries     []string
	fieldsCalls []getFieldsCall
	closed      int
}

func (s *fakeSession) QueryByText(ctx context.Context, query string) (QueryResult, error) {
	s.queries = append(s.queries, query)
	if s.queryErr != nil {
		return QueryResult{}, s.queryErr
	}
	return s.result, nil
}

func (s *fakeSession) GetFields(ctx context.Context, ids []int, fields []string, asOf string) ([]Record, error) {
	s.fieldsCalls = append(s.fieldsCalls, getFieldsCall{ids: append([]int(nil), ids...), fields: fields, asOf: asOf})
	if s.fieldsErr != nil {
		return nil, s.fieldsErr
	}
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		values := map[string]interface{}{}
		for _, f := range fields {
			values[f] = float64(id)
		}
		for _, f := range s.missing[id] {
			delete(values, f)
		}
		records = append(records, Record{ID: id, Fields: values})
	}
	return records, nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeConnector struct {
	session *fakeSession
	err     error
}

func (c *fakeConnector) Connect(ctx context.Context) (Session, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

type recordingObserver struct {
	queried, returned int
	err               error
	calls             int
}

func (o *recordingObserver) ObserveFetch(queried, returned int, elapsed time.Duration, err error) {
	o.calls++
	o.queried = queried
	o.returned = returned
	o.err = err
}

func sequence(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 1000 + n - i
	}
	return ids
}

func recordIDs(records []Record) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestFetchTopItems_Counts(t *testing.T) {
	tests := []struct {
		name  string
		found int
		limit int
		want  int
	}{
		{name: "empty result", found: 0, limit: 10, want: 0},
		{name: "below limit", found: 3, limit: 10, want: 3},
		{name: "exactly limit", found: 10, limit: 10, want: 10},
		{name: "above limit", found: 15, limit: 10, want: 10},
		{name: "custom limit", found: 8, limit: 5, want: 5},
		{name: "limit of one", found: 2, limit: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{result: QueryResult{IDs: sequence(tt.found), AsOf: "2024-01-02T03:04:05Z"}}
			f := NewFetcher(&fakeConnector{session: session}, WithLimit(tt.limit))

			records, err := f.FetchTopItems(context.Background(), "Select [System.Id] From WorkItems", []string{FieldTitle})
			require.NoError(t, err)
			require.NotNil(t, records)
			assert.Len(t, records, tt.want)

			if diff := cmp.Diff(sequence(tt.found)[:tt.want], recordIDs(records)); diff != "" {
				t.Errorf("record order mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, session.closed)
		})
	}
}

func TestFetchTopItems_TruncatesFifteenToFirstTen(t *testing.T) {
	ids := []int{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	session := &fakeSession{result: QueryResult{IDs: ids, AsOf: "2023-06-01T10:00:00.123Z"}}
	f := NewFetcher(&fakeConnector{session: session})

	fields := []string{FieldID, FieldTitle, FieldDescription, FieldStackRank}
	records, err := f.FetchTopItems(context.Background(), "q", fields)
	require.NoError(t, err)

	require.Len(t, session.fieldsCalls, 1)
	call := session.fieldsCalls[0]
	assert.Equal(t, ids[:10], call.ids)
	assert.Equal(t, fields, call.fields)
	assert.Equal(t, "2023-06-01T10:00:00.123Z", call.asOf)
	assert.Equal(t, ids[:10], recordIDs(records))
}

func TestFetchTopItems_EmptyResultSkipsFieldFetch(t *testing.T) {
	session := &fakeSession{result: QueryResult{AsOf: "2024-01-01T00:00:00Z"}}
	f := NewFetcher(&fakeConnector{session: session})

	records, err := f.FetchTopItems(context.Background(), "q", []string{FieldTitle})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, session.fieldsCalls)
	assert.Equal(t, 1, session.closed)
}

func TestFetchTopItems_MissingFieldStaysAbsent(t *testing.T) {
	session := &fakeSession{
		result:  QueryResult{IDs: []int{1, 2}},
		missing: map[int][]string{2: {FieldStackRank}},
	}
	f := NewFetcher(&fakeConnector{session: session})

	records, err := f.FetchTopItems(context.Background(), "q", []string{FieldTitle, FieldStackRank})
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, ok := records[0].Field(FieldStackRank)
	assert.True(t, ok)

	_, ok = records[1].Field(FieldStackRank)
	assert.False(t, ok)
	assert.NotContains(t, records[1].Fields, FieldStackRank)
}

func TestFetchTopItems_Failures(t *testing.T) {
	boom := NewNetworkError("connection refused", errors.New("dial tcp"))

	t.Run("connect failure", func(t *testing.T) {
		f := NewFetcher(&fakeConnector{err: boom})
		records, err := f.FetchTopItems(context.Background(), "q", nil)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("query failure closes session", func(t *testing.T) {
		session := &fakeSession{queryErr: NewPermissionError("unauthorized", nil)}
		f := NewFetcher(&fakeConnector{session: session})

		records, err := f.FetchTopItems(context.Background(), "q", nil)
		assert.Nil(t, records)
		assert.ErrorIs(t, err, ErrPermission)
		assert.Empty(t, session.fieldsCalls)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("field fetch failure returns no partial result", func(t *testing.T) {
		session := &fakeSession{
			result:    QueryResult{IDs: []int{1, 2, 3}},
			fieldsErr: boom,
		}
		f := NewFetcher(&fakeConnector{session: session})

		records, err := f.FetchTopItems(context.Background(), "q", []string{FieldTitle})
		assert.Nil(t, records)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "failed to fetch work item fields")
		assert.Equal(t, 1, session.closed)
	})

	t.Run("plain error becomes api error", func(t *testing.T) {
		session := &fakeSession{queryErr: errors.New("bad gateway")}
		f := NewFetcher(&fakeConnector{session: session})

		_, err := f.FetchTopItems(context.Background(), "q", nil)
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, ErrorTypeAPI, fetchErr.Type)
	})
}

func TestFetchTopItems_Observer(t *testing.T) {
	session := &fakeSession{result: QueryResult{IDs: sequence(12)}}
	obs := &recordingObserver{}
	f := NewFetcher(&fakeConnector{session: session}, WithObserver(obs), WithLimit(4))

	_, err := f.FetchTopItems(context.Background(), "q", []string{FieldTitle})
	require.NoError(t, err)
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, 12, obs.queried)
	assert.Equal(t, 4, obs.returned)
	assert.NoError(t, obs.err)
}

func TestNewFetcher_Limit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewFetcher(nil).Limit())
	assert.Equal(t, DefaultLimit, NewFetcher(nil, WithLimit(0)).Limit())
	assert.Equal(t, DefaultLimit, NewFetcher(nil, WithLimit(-3)).Limit())
	assert.Equal(t, 25, NewFetcher(nil, WithLimit(25)).Limit())
}

func TestOrderByIDs(t *testing.T) {
	records := []Record{{ID: 3}, {ID: 1}, {ID: 2}}
	got := orderByIDs(records, []int{1, 2, 3})
	assert.Equal(t, []int{1, 2, 3}, recordIDs(got))
}
