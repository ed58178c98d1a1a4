package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:    srv.URL,
		BaseID:     "appBase",
		ReadKey:    "read-key",
		WriteKey:   "write-key",
		RetryDelay: time.Millisecond,
	})
}

func TestFetchRecordsPaginates(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v0/appBase/Words (instance)", r.URL.Path)
		assert.Equal(t, "Bearer read-key", r.Header.Get("Authorization"))
		assert.Equal(t, `{Audio Source} = "intro"`, r.URL.Query().Get("filterByFormula"))

		switch r.URL.Query().Get("offset") {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec1", "fields": map[string]any{"Name": "one"}}},
				"offset":  "page2",
			})
		case "page2":
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{{"id": "rec2", "fields": map[string]any{"Name": "two"}}},
			})
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})

	records, err := client.FetchRecords(context.Background(), "Words (instance)", FieldEquals("Audio Source", "intro"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "two", records[1].String("Name"))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchRecordsRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"records":[]}`))
	})

	records, err := client.FetchRecords(context.Background(), "Days", "")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreateRecord(context.Background(), "Days", map[string]any{"Date": "2025-01-01"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchRecordNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NOT_FOUND"}`, http.StatusNotFound)
	})

	_, err := client.FetchRecord(context.Background(), "Audio Source", "recMissing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateAndDeleteUseWriteKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer write-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v0/appBase/Words (instance)/rec9", r.URL.Path)

		switch r.Method {
		case http.MethodPatch:
			var body struct {
				Fields map[string]any `json:"fields"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []any{"a", "b"}, body.Fields["BR issues"])
			json.NewEncoder(w).Encode(map[string]any{"id": "rec9", "fields": body.Fields})
		case http.MethodDelete:
			w.Write([]byte(`{"id":"rec9","deleted":true}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	rec, err := client.UpdateRecord(context.Background(), "Words (instance)", "rec9", map[string]any{"BR issues": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.Strings("BR issues"))

	require.NoError(t, client.DeleteRecord(context.Background(), "Words (instance)", "rec9"))
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.FetchRecords(context.Background(), "Days", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.CanWrite())

	readOnly := NewClient(Options{BaseID: "app1", ReadKey: "read"})
	assert.False(t, readOnly.CanWrite())
	_, err = readOnly.CreateRecord(context.Background(), "Words (instance)", map[string]any{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.True(t, NewClient(Options{BaseID: "app1", ReadKey: "read", WriteKey: "write"}).CanWrite())
}

func TestFormulaHelpers(t *testing.T) {
	assert.Equal(t, `{Name} = "say \"hi\""`, FieldEquals("Name", `say "hi"`))
	assert.Equal(t, `{word index} = 4`, FieldEqualsNumber("word index", 4))
	assert.Equal(t, `AND({a} = 1, {b} = 2)`, And(FieldEqualsNumber("a", 1), FieldEqualsNumber("b", 2)))
	assert.Equal(t, `RECORD_ID() = "rec1"`, RecordIDIn([]string{"rec1"}))
	assert.Equal(t, "", Or())
}

func TestRecordSum(t *testing.T) {
	rec := Record{Fields: map[string]any{
		"app starts": []any{1.0, 2.0, 3.0},
		"completed":  4.0,
	}}

	sum, ok := rec.Sum("app starts")
	assert.True(t, ok)
	assert.Equal(t, 6.0, sum)

	sum, ok = rec.Sum("completed")
	assert.True(t, ok)
	assert.Equal(t, 4.0, sum)

	_, ok = rec.Sum("MG paid")
	assert.False(t, ok)
}
