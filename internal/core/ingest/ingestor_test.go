package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiquinho-ai/chiquinho/internal/core"
	"github.com/chiquinho-ai/chiquinho/internal/models"
)

type fakeEmbedder struct {
	dim      int
	failAll  bool
	failText string // texts containing this substring fail to embed
	calls    int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAll {
		return nil, errors.New("embedding backend down")
	}
	if f.failText != "" {
		for _, text := range texts {
			if strings.Contains(text, f.failText) {
				return nil, errors.New("poisoned batch")
			}
		}
	}
	dim := f.dim
	if dim == 0 {
		dim = 4
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, dim)
		out[i][0] = float32(len(texts[i]))
	}
	return out, nil
}

type fakeStore struct {
	points    map[string]core.Point
	ensured   int
	recreated int
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{points: make(map[string]core.Point)}
}

func (f *fakeStore) EnsureCollection(_ context.Context, _ int) error { f.ensured++; return nil }

func (f *fakeStore) RecreateCollection(_ context.Context, _ int) error {
	f.recreated++
	f.points = make(map[string]core.Point)
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, points []core.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, p := range points {
		f.points[p.ID] = p
	}
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, _ int) ([]core.SearchHit, error) {
	return nil, nil
}

func TestIngest_SplitsEmbedsAndWrites(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	ing := NewIngestor(embedder, store, Config{MaxChars: 3500})

	docs := []models.Document{{
		Title:       "Monitoria",
		URL:         "https://deg.unb.br/monitoria",
		Source:      "deg.unb.br",
		ContentText: strings.Repeat("x", 5000),
	}}

	summary, err := ing.Ingest(context.Background(), docs, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DocumentsIn)
	assert.Equal(t, 2, summary.ChunksTotal)
	assert.Equal(t, 2, summary.ChunksEmbedded)
	assert.Equal(t, 2, summary.PointsWritten)
	assert.Equal(t, 1, store.ensured)
	assert.Zero(t, store.recreated)
	require.Len(t, store.points, 2)

	var indexes []int
	for _, p := range store.points {
		assert.Equal(t, "Monitoria", p.Payload["title"])
		assert.Equal(t, "https://deg.unb.br/monitoria", p.Payload["url"])
		assert.Equal(t, "deg.unb.br", p.Payload["source"])
		assert.Equal(t, 2, p.Payload["total_chunks"])
		indexes = append(indexes, p.Payload["chunk_index"].(int))
	}
	assert.ElementsMatch(t, []int{0, 1}, indexes)
}

func TestIngest_IdempotentPointIDs(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	ing := NewIngestor(embedder, store, Config{})

	docs := []models.Document{{
		Title:       "Edital",
		URL:         "https://saa.unb.br/edital",
		Source:      "saa.unb.br",
		ContentText: "conteúdo do edital",
	}}

	_, err := ing.Ingest(context.Background(), docs, false)
	require.NoError(t, err)
	firstIDs := make([]string, 0, len(store.points))
	for id := range store.points {
		firstIDs = append(firstIDs, id)
	}

	_, err = ing.Ingest(context.Background(), docs, false)
	require.NoError(t, err)

	assert.Len(t, store.points, len(firstIDs))
	for _, id := range firstIDs {
		assert.Contains(t, store.points, id)
	}
}

func TestIngest_RecreateDropsCollection(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	ing := NewIngestor(embedder, store, Config{})

	docs := []models.Document{{URL: "https://deg.unb.br/a", Source: "deg.unb.br", ContentText: "a"}}

	_, err := ing.Ingest(context.Background(), docs, true)
	require.NoError(t, err)
	assert.Equal(t, 1, store.recreated)
	assert.Zero(t, store.ensured)
}

func TestIngest_AllEmbedsFail(t *testing.T) {
	embedder := &fakeEmbedder{failAll: true}
	store := newFakeStore()
	ing := NewIngestor(embedder, store, Config{})

	docs := []models.Document{{URL: "https://deg.unb.br/a", Source: "deg.unb.br", ContentText: "a"}}

	summary, err := ing.Ingest(context.Background(), docs, false)
	require.ErrorIs(t, err, ErrNoEmbeddings)
	assert.Equal(t, 1, summary.ChunksTotal)
	assert.Zero(t, summary.ChunksEmbedded)
	assert.Empty(t, store.points)
	assert.Zero(t, store.ensured)
}

func TestIngest_PartialEmbedFailureDropsChunk(t *testing.T) {
	// The poisoned document fails both in the batch call and the per-chunk
	// retry; the healthy one must still land in the index.
	embedder := &fakeEmbedder{failText: "veneno"}
	store := newFakeStore()
	ing := NewIngestor(embedder, store, Config{})

	docs := []models.Document{
		{URL: "https://deg.unb.br/ok", Source: "deg.unb.br", ContentText: "documento válido"},
		{URL: "https://deg.unb.br/bad", Source: "deg.unb.br", ContentText: "veneno"},
	}

	summary, err := ing.Ingest(context.Background(), docs, false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ChunksTotal)
	assert.Equal(t, 1, summary.ChunksEmbedded)
	assert.Equal(t, 1, summary.PointsWritten)
	require.Len(t, store.points, 1)
	for _, p := range store.points {
		assert.Equal(t, "https://deg.unb.br/ok", p.Payload["url"])
	}
}

func TestIngest_AllUpsertsFail(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	store.upsertErr = errors.New("index unreachable")
	ing := NewIngestor(embedder, store, Config{})

	docs := []models.Document{{URL: "https://deg.unb.br/a", Source: "deg.unb.br", ContentText: "a"}}

	summary, err := ing.Ingest(context.Background(), docs, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoEmbeddings)
	assert.Equal(t, 1, summary.ChunksEmbedded)
	assert.Zero(t, summary.PointsWritten)
}
