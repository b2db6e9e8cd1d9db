package rag

import (
	"context"
	"fmt"
	"log"

	"github.com/chiquinho-ai/chiquinho/internal/core"
)

// Retriever embeds a query with the same provider used at ingestion time
// and runs a top-k nearest-neighbor search against the collection.
type Retriever struct {
	embedder core.EmbeddingProvider
	store    core.VectorStore
}

func NewRetriever(embedder core.EmbeddingProvider, store core.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the stored passage text of up to topK hits, most
// similar first. Index failures (unreachable, collection missing) degrade
// to an empty result set; a failed query embedding is a configuration
// problem and is surfaced as an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	vecs, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty vector")
	}

	hits, err := r.store.Search(ctx, vecs[0], topK)
	if err != nil {
		log.Printf("rag: search failed, answering without context: %v", err)
		return nil, nil
	}

	passages := make([]string, 0, len(hits))
	for _, h := range hits {
		if text, ok := h.Payload["text"].(string); ok && text != "" {
			passages = append(passages, text)
			continue
		}
		if text, ok := h.Payload["content_text"].(string); ok && text != "" {
			passages = append(passages, text)
		}
	}
	return passages, nil
}
