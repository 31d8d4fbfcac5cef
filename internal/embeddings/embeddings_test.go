package embeddings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "nomic-embed-text")
	vec, err := c.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedTooLargeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "nomic-embed-text")
	_, err := c.Embed(context.Background(), "hello world")
	require.Error(t, err)
	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
}

func TestEmbedTooLargeContextLengthMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"context length exceeded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "nomic-embed-text")
	_, err := c.Embed(context.Background(), "hello world")
	require.Error(t, err)
	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
}
