package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chiquinho-ai/chiquinho/internal/core"
	"github.com/chiquinho-ai/chiquinho/internal/models"
)

// ErrNoEmbeddings is returned when not a single chunk could be embedded.
// Ingestion fails loudly instead of leaving an empty-but-"successful"
// collection behind.
var ErrNoEmbeddings = errors.New("no chunks could be embedded, nothing to ingest")

// Config tunes the ingestion pipeline.
//
// MaxChars:    chunk size bound in runes (default 3500).
// EmbedBatch:  chunks per embedding request (default 16).
// UpsertBatch: points per index write (default 64).
type Config struct {
	MaxChars    int
	EmbedBatch  int
	UpsertBatch int
}

func (c *Config) applyDefaults() {
	if c.MaxChars <= 0 {
		c.MaxChars = 3500
	}
	if c.EmbedBatch <= 0 {
		c.EmbedBatch = 16
	}
	if c.UpsertBatch <= 0 {
		c.UpsertBatch = 64
	}
}

// Ingestor turns documents into embedded points in the vector index:
// chunk every document, embed the chunks (dropping individual failures),
// ensure the collection matches the embedding dimension, then upsert in
// bounded batches under deterministic ids.
type Ingestor struct {
	embedder core.EmbeddingProvider
	store    core.VectorStore
	cfg      Config
}

func NewIngestor(embedder core.EmbeddingProvider, store core.VectorStore, cfg Config) *Ingestor {
	cfg.applyDefaults()
	return &Ingestor{embedder: embedder, store: store, cfg: cfg}
}

type embeddedChunk struct {
	chunk  models.Chunk
	vector []float32
}

// Ingest runs the full pipeline over docs. With recreate the collection is
// dropped and rebuilt first (full reprocessing); otherwise points overwrite
// their previous versions in place.
//
// The collection is only touched after embedding, because its
// dimensionality is known once the embedder has produced a vector.
func (i *Ingestor) Ingest(ctx context.Context, docs []models.Document, recreate bool) (*models.IngestSummary, error) {
	summary := &models.IngestSummary{DocumentsIn: len(docs)}

	var chunks []models.Chunk
	for idx := range docs {
		docs[idx].EnsureID()
		chunks = append(chunks, SplitDocument(docs[idx], i.cfg.MaxChars)...)
	}
	summary.ChunksTotal = len(chunks)

	embedded := i.embedChunks(ctx, chunks)
	summary.ChunksEmbedded = len(embedded)
	if len(embedded) == 0 {
		return summary, ErrNoEmbeddings
	}

	dim := len(embedded[0].vector)
	if recreate {
		if err := i.store.RecreateCollection(ctx, dim); err != nil {
			return summary, fmt.Errorf("recreate collection: %w", err)
		}
	} else {
		if err := i.store.EnsureCollection(ctx, dim); err != nil {
			return summary, fmt.Errorf("ensure collection: %w", err)
		}
	}

	points := make([]core.Point, len(embedded))
	for n, e := range embedded {
		points[n] = core.Point{
			ID:      PointID(e.chunk.URL, e.chunk.ChunkIndex),
			Vector:  e.vector,
			Payload: pointPayload(e.chunk),
		}
	}

	var lastErr error
	for start := 0; start < len(points); start += i.cfg.UpsertBatch {
		end := start + i.cfg.UpsertBatch
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]
		if err := i.store.Upsert(ctx, batch); err != nil {
			// Point ids are deterministic, so a failed batch is safely
			// re-driven by re-running ingestion.
			log.Printf("ingest: upsert batch of %d failed: %v", len(batch), err)
			lastErr = err
			continue
		}
		summary.PointsWritten += len(batch)
	}
	if summary.PointsWritten == 0 && lastErr != nil {
		return summary, fmt.Errorf("all upsert batches failed: %w", lastErr)
	}

	log.Printf("ingest: %d docs -> %d chunks, %d embedded, %d points written",
		summary.DocumentsIn, summary.ChunksTotal, summary.ChunksEmbedded, summary.PointsWritten)
	return summary, nil
}

// embedChunks embeds chunks in batches. A failed batch call is retried one
// chunk at a time; chunks that still fail (or come back empty) are dropped
// and logged, never aborting the run.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []models.Chunk) []embeddedChunk {
	var out []embeddedChunk
	for start := 0; start < len(chunks); start += i.cfg.EmbedBatch {
		end := start + i.cfg.EmbedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for n := range batch {
			texts[n] = batch[n].Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil || len(vecs) != len(batch) {
			if err != nil {
				log.Printf("ingest: batch embed of %d failed, retrying per chunk: %v", len(batch), err)
			} else {
				log.Printf("ingest: embed size mismatch (got %d want %d), retrying per chunk", len(vecs), len(batch))
			}
			out = append(out, i.embedOneByOne(ctx, batch)...)
			continue
		}
		for n := range batch {
			if len(vecs[n]) == 0 {
				log.Printf("ingest: empty vector for chunk %d of %s, dropping", batch[n].ChunkIndex, batch[n].URL)
				continue
			}
			out = append(out, embeddedChunk{chunk: batch[n], vector: vecs[n]})
		}
	}
	return out
}

func (i *Ingestor) embedOneByOne(ctx context.Context, chunks []models.Chunk) []embeddedChunk {
	var out []embeddedChunk
	for _, ch := range chunks {
		vecs, err := i.embedder.EmbedTexts(ctx, []string{ch.Text})
		if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
			log.Printf("ingest: dropping chunk %d of %s: embed failed: %v", ch.ChunkIndex, ch.URL, err)
			continue
		}
		out = append(out, embeddedChunk{chunk: ch, vector: vecs[0]})
	}
	return out
}

func pointPayload(ch models.Chunk) map[string]any {
	payload := map[string]any{
		"text":         ch.Text,
		"title":        ch.Title,
		"url":          ch.URL,
		"source":       ch.Source,
		"excerpt":      ch.Excerpt,
		"content_text": ch.ContentText,
		"chunk_index":  ch.ChunkIndex,
		"total_chunks": ch.TotalChunks,
	}
	if ch.PublicationDate != nil {
		payload["publication_date"] = ch.PublicationDate.Format(time.RFC3339)
	}
	return payload
}
