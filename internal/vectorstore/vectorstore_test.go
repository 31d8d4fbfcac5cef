package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpsertAndSearch(t *testing.T) {
	var upserted []Point

	mux := http.NewServeMux()
	mux.HandleFunc("/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"collections":[]}}`))
	})
	mux.HandleFunc("/collections/idx_1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/collections/idx_1/index", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/collections/idx_1/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []Point `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		upserted = body.Points
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/collections/idx_1/points/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[{"id":"abc","score":0.9,"payload":{"path":"a.ts"}}]}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := New(srv.URL)
	ctx := context.Background()

	require.NoError(t, store.EnsureCollection(ctx, "idx_1", 768, false))
	require.NoError(t, store.UpsertPoints(ctx, "idx_1", []Point{
		{ID: "abc", Vector: []float32{0.1, 0.2}, Payload: map[string]any{"path": "a.ts"}},
	}))
	require.Len(t, upserted, 1)

	hits, err := store.Search(ctx, "idx_1", []float32{0.1, 0.2}, 10, "", 0.2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "a.ts", hits[0].Payload["path"])
}

func TestRetryOn5xx(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/collections/idx_1/points/count", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"result":{"count":3}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := New(srv.URL)
	store.client.Backoff = []time.Duration{0, 0, 0} // retry without waiting

	count, err := store.Count(context.Background(), "idx_1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.GreaterOrEqual(t, attempts, 2)
}
