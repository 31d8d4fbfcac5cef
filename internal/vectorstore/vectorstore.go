// Package vectorstore is a thin HTTP client over the external vector
// service, implementing exactly the Qdrant-flavored wire contract named in
// spec.md §6. Interface shape surveyed from other_examples' vectorstore
// adapters (fyrsmithlabs-contextd, sxueck-codebase) but the endpoints and
// payloads below are pinned to spec.md, not copied from either.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agentindex/codeindexd/internal/httpclient"
)

// Point is one vector-store entry: a deterministic UUID, its embedding, and
// a structured payload (see internal/chunker for payload construction).
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Hit is one search/scroll result row.
type Hit struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Store is a handle to one vector-store HTTP endpoint, shared across
// collections (the collection name is a parameter on every call).
type Store struct {
	baseURL string
	client  *httpclient.Client
}

// New returns a Store pointed at baseURL (e.g. http://localhost:6333).
func New(baseURL string) *Store {
	return &Store{baseURL: baseURL, client: httpclient.New()}
}

func (s *Store) url(path string) string {
	return s.baseURL + path
}

// EnsureCollection creates the named collection if absent (vectorSize,
// Cosine distance), then best-effort creates payload indexes on path (text),
// lang/file_hash/kind/symbol_kinds/unity_tags (keyword), and
// symbol_names/symbol_references (text). If reset, the collection is
// deleted first.
func (s *Store) EnsureCollection(ctx context.Context, name string, vectorSize int, reset bool) error {
	if reset {
		_, _, err := s.client.DoJSON(ctx, http.MethodDelete, s.url("/collections/"+name), nil)
		if err != nil {
			if _, ok := err.(*httpclient.PermanentError); !ok {
				return fmt.Errorf("delete collection %s: %w", name, err)
			}
		}
	}

	exists, err := s.collectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		body, _ := json.Marshal(map[string]any{
			"vectors": map[string]any{"size": vectorSize, "distance": "Cosine"},
		})
		if _, _, err := s.client.DoJSON(ctx, http.MethodPut, s.url("/collections/"+name), body); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}

	s.ensureIndex(ctx, name, "path", "text")
	for _, field := range []string{"lang", "file_hash", "kind", "symbol_kinds", "unity_tags"} {
		s.ensureIndex(ctx, name, field, "keyword")
	}
	for _, field := range []string{"symbol_names", "symbol_references"} {
		s.ensureIndex(ctx, name, field, "text")
	}
	return nil
}

func (s *Store) collectionExists(ctx context.Context, name string) (bool, error) {
	body, status, err := s.client.DoJSON(ctx, http.MethodGet, s.url("/collections"), nil)
	if err != nil {
		if pe, ok := err.(*httpclient.PermanentError); ok && pe.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("list collections: %w", err)
	}
	if status >= 400 {
		return false, nil
	}
	var parsed struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, nil
	}
	for _, c := range parsed.Result.Collections {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureIndex is best-effort: payload index creation failures never fail
// the sync, mirroring spec.md's "best-effort create payload indexes".
func (s *Store) ensureIndex(ctx context.Context, name, field, schema string) {
	body, _ := json.Marshal(map[string]any{
		"field_name":   field,
		"field_schema": schema,
	})
	_, _, _ = s.client.DoJSON(ctx, http.MethodPut, s.url("/collections/"+name+"/index"), body)
}

// UpsertPoints upserts points with wait semantics.
func (s *Store) UpsertPoints(ctx context.Context, name string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body, _ := json.Marshal(map[string]any{"points": points})
	_, _, err := s.client.DoJSON(ctx, http.MethodPut, s.url("/collections/"+name+"/points?wait=true"), body)
	if err != nil {
		return fmt.Errorf("upsert points in %s: %w", name, err)
	}
	return nil
}

// DeletePointsByPath deletes all points whose payload "path" equals path.
func (s *Store) DeletePointsByPath(ctx context.Context, name, path string) error {
	body, _ := json.Marshal(map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{{"key": "path", "match": map[string]any{"value": path}}},
		},
	})
	_, _, err := s.client.DoJSON(ctx, http.MethodPost, s.url("/collections/"+name+"/points/delete?wait=true"), body)
	if err != nil {
		return fmt.Errorf("delete points by path %s in %s: %w", path, name, err)
	}
	return nil
}

// GetExistingFileHash scrolls for one point with the given path and returns
// its recorded file_hash, used by the chunker's hash-gating step.
func (s *Store) GetExistingFileHash(ctx context.Context, name, path string) (string, bool, error) {
	hits, err := s.Scroll(ctx, name, map[string]any{
		"must": []map[string]any{{"key": "path", "match": map[string]any{"value": path}}},
	}, 1)
	if err != nil {
		return "", false, err
	}
	if len(hits) == 0 {
		return "", false, nil
	}
	hash, _ := hits[0].Payload["file_hash"].(string)
	return hash, hash != "", nil
}

// ListAllIndexedPaths pages through scroll accumulating unique payload paths.
func (s *Store) ListAllIndexedPaths(ctx context.Context, name string) ([]string, error) {
	const pageSize = 256
	seen := map[string]bool{}
	var offset any

	for {
		req := map[string]any{
			"filter":       map[string]any{},
			"with_payload": true,
			"limit":        pageSize,
		}
		if offset != nil {
			req["offset"] = offset
		}
		body, _ := json.Marshal(req)
		respBody, _, err := s.client.DoJSON(ctx, http.MethodPost, s.url("/collections/"+name+"/points/scroll"), body)
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", name, err)
		}
		var parsed struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("parse scroll response: %w", err)
		}
		for _, p := range parsed.Result.Points {
			if path, ok := p.Payload["path"].(string); ok {
				seen[path] = true
			}
		}
		if parsed.Result.NextPageOffset == nil || len(parsed.Result.Points) == 0 {
			break
		}
		offset = parsed.Result.NextPageOffset
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	return paths, nil
}

// Search issues a vector similarity search, optionally restricted to a path
// prefix via a payload filter.
func (s *Store) Search(ctx context.Context, name string, vector []float32, topK int, pathPrefix string, scoreThreshold float64) ([]Hit, error) {
	req := map[string]any{
		"vector":          vector,
		"limit":           topK,
		"with_payload":    true,
		"score_threshold": scoreThreshold,
	}
	if pathPrefix != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{{"key": "path", "match": map[string]any{"text": pathPrefix}}},
		}
	}
	body, _ := json.Marshal(req)
	respBody, _, err := s.client.DoJSON(ctx, http.MethodPost, s.url("/collections/"+name+"/points/search"), body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	var parsed struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	hits := make([]Hit, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		hits = append(hits, Hit{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

// Scroll returns up to limit points matching filter (a raw Qdrant filter
// object, e.g. {"must": [...]}).
func (s *Store) Scroll(ctx context.Context, name string, filter map[string]any, limit int) ([]Hit, error) {
	req := map[string]any{
		"filter":       filter,
		"with_payload": true,
		"limit":        limit,
	}
	body, _ := json.Marshal(req)
	respBody, _, err := s.client.DoJSON(ctx, http.MethodPost, s.url("/collections/"+name+"/points/scroll"), body)
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", name, err)
	}
	var parsed struct {
		Result struct {
			Points []struct {
				ID      string         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse scroll response: %w", err)
	}
	hits := make([]Hit, 0, len(parsed.Result.Points))
	for _, p := range parsed.Result.Points {
		hits = append(hits, Hit{ID: p.ID, Payload: p.Payload})
	}
	return hits, nil
}

// Count returns the exact point count for a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	body, _ := json.Marshal(map[string]any{"exact": true})
	respBody, _, err := s.client.DoJSON(ctx, http.MethodPost, s.url("/collections/"+name+"/points/count"), body)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	var parsed struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, fmt.Errorf("parse count response: %w", err)
	}
	return parsed.Result.Count, nil
}
