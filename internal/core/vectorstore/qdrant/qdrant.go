package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chiquinho-ai/chiquinho/internal/core"
)

// Store is a minimal REST client to Qdrant. It assumes cosine distance and
// one fixed collection per instance.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection when missing. An existing
// collection is never altered; its vector size is checked against dim.
func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	info, exists, err := s.getCollection(ctx)
	if err != nil {
		return err
	}
	if exists {
		if got := info.Result.Config.Params.Vectors.Size; got != dim {
			return fmt.Errorf("collection %q has size %d, embedder produced %d: %w",
				s.collection, got, dim, core.ErrDimensionMismatch)
		}
		return nil
	}
	return s.createCollection(ctx, dim)
}

// RecreateCollection drops the collection (ignoring a missing one) and
// creates it again with the given dimension.
func (s *Store) RecreateCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	if err := s.do(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil); err != nil {
		// 404 on a fresh deployment is fine; anything else is not.
		var se *statusError
		if !asStatus(err, &se) || se.code != http.StatusNotFound {
			return err
		}
	}
	return s.createCollection(ctx, dim)
}

func (s *Store) createCollection(ctx context.Context, dim int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil)
}

func (s *Store) getCollection(ctx context.Context) (*collectionInfo, bool, error) {
	var info collectionInfo
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, &info)
	if err != nil {
		var se *statusError
		if asStatus(err, &se) && se.code == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &info, true, nil
}

// Upsert writes points with create-or-replace semantics keyed by id.
// wait=true makes the batch durable before the call returns.
func (s *Store) Upsert(ctx context.Context, points []core.Point) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": payload}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil)
}

// Search returns up to limit hits ordered by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]core.SearchHit, error) {
	if limit <= 0 {
		limit = 4
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp)
	if err != nil {
		return nil, err
	}
	hits := make([]core.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, core.SearchHit{Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

type statusError struct {
	code   int
	method string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d", e.method, e.url, e.code)
}

func asStatus(err error, target **statusError) bool {
	se, ok := err.(*statusError)
	if ok {
		*target = se
	}
	return ok
}

func (s *Store) do(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, method: method, url: url}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ core.VectorStore = (*Store)(nil)
