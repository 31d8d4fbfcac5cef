// Package embeddings is the HTTP client for the external embeddings
// backend, modeled on ziadkadry99-auto-doc/internal/embeddings's
// OllamaEmbedder shape but adapted from that file's batched /api/embed
// endpoint to the single-prompt /api/embeddings endpoint spec.md §6 pins.
package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agentindex/codeindexd/internal/httpclient"
)

// TooLargeError signals an embedding request that the backend rejected for
// exceeding its context/input length — not a failure, per spec.md §4.6: it
// triggers the chunker's adaptive split instead of being surfaced.
type TooLargeError struct {
	Body string
}

func (e *TooLargeError) Error() string { return "embedding rejected as too large: " + e.Body }

// Client calls an Ollama-compatible embeddings endpoint.
type Client struct {
	baseURL string
	model   string
	http    *httpclient.Client
	probe   *http.Client
}

// New returns a Client pointed at baseURL (e.g. http://localhost:11434)
// using the given embedding model name.
func New(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    httpclient.New(),
		probe:   &http.Client{Timeout: 2 * time.Second},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// tooLargeMarkers are substrings that indicate a context/input-length
// rejection per spec.md §6.
var tooLargeMarkers = []string{"context length", "input length"}

// Embed requests a single embedding for text. Returns *TooLargeError when
// the backend's response is empty/missing or mentions a length rejection.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	respBody, _, err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/api/embeddings", body)
	if err != nil {
		if pe, ok := err.(*httpclient.PermanentError); ok && isTooLarge(pe.Body) {
			return nil, &TooLargeError{Body: pe.Body}
		}
		return nil, fmt.Errorf("embed request: %w", err)
	}
	if isTooLarge(string(respBody)) {
		return nil, &TooLargeError{Body: string(respBody)}
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, &TooLargeError{Body: string(respBody)}
	}
	return parsed.Embedding, nil
}

func isTooLarge(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range tooLargeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Probe checks backend readiness with a short timeout (~2s per spec.md §5).
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return fmt.Errorf("probe embeddings backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe embeddings backend: status %d", resp.StatusCode)
	}
	return nil
}
