package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheet serves the subset of the Sheets values API the store uses.
type fakeSheet struct {
	mx     sync.Mutex
	values [][]any
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mx.Lock()
	defer f.mx.Unlock()

	rng := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(rng, "!A1:E1"):
		values := [][]any{}
		if len(f.values) > 0 {
			values = f.values[:1]
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values}) //nolint:errcheck // test
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": f.values}) //nolint:errcheck // test
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr) //nolint:errcheck // test
		f.values = append(f.values, vr.Values...)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id"}) //nolint:errcheck // test
	case r.Method == http.MethodPut:
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr) //nolint:errcheck // test

		var (
			col  string
			line int
		)
		if _, err := fmt.Sscanf(rng[strings.Index(rng, "!")+1:], "%1s%d", &col, &line); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for len(f.values) < line {
			f.values = append(f.values, []any{})
		}
		offset := int(col[0] - 'A')
		row := f.values[line-1]
		for len(row) < offset+len(vr.Values[0]) {
			row = append(row, "")
		}
		copy(row[offset:], vr.Values[0])
		f.values[line-1] = row
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id"}) //nolint:errcheck // test
	default:
		http.NotFound(w, r)
	}
}

func TestSheets(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheet{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewSheets(ctx, "sheet-id", "Sheet1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	require.NoError(t, store.EnsureHeader(ctx))
	require.NoError(t, store.EnsureHeader(ctx))
	require.Len(t, fake.values, 1)
	assert.Equal(t, "名前", fake.values[0][0])

	require.NoError(t, store.Append(ctx, Row{Name: "alice", DateJoined: "2025/03/09", TimeJoined: "09:00"}))
	require.NoError(t, store.Append(ctx, Row{Name: "bob", DateJoined: "2025/03/09", TimeJoined: "09:05"}))

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "alice", rows[0].Name)
	assert.Equal(t, int64(3), rows[1].ID)

	require.NoError(t, store.Complete(ctx, rows[1].ID, "10:05", "1時間0分0秒"))

	rows, err = store.Rows(ctx)
	require.NoError(t, err)
	assert.True(t, rows[0].IsOpen())
	assert.Equal(t, "10:05", rows[1].TimeLeft)
	assert.Equal(t, "1時間0分0秒", rows[1].Duration)

	assert.ErrorIs(t, store.Complete(ctx, 1, "10:05", "1秒"), ErrRowNotFound)
}
