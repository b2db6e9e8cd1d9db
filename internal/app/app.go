package app

import (
	"context"
	"fmt"
	"log"

	"github.com/chiquinho-ai/chiquinho/internal/config"
	"github.com/chiquinho-ai/chiquinho/internal/core"
	"github.com/chiquinho-ai/chiquinho/internal/core/ingest"
	"github.com/chiquinho-ai/chiquinho/internal/core/llm"
	"github.com/chiquinho-ai/chiquinho/internal/core/rag"
	"github.com/chiquinho-ai/chiquinho/internal/core/vectorstore/pgvector"
	"github.com/chiquinho-ai/chiquinho/internal/core/vectorstore/qdrant"
)

// App is the dependency container built once at process start. All
// capability variants (embedder, generator, vector store) are selected
// here; nothing downstream holds global state.
type App struct {
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Store    core.VectorStore
	Ingestor *ingest.Ingestor
	RAG      *rag.Service
	Server   *Server

	pg *pgvector.Store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM: %w", err)
	}

	a := &App{Embedder: embedder, LLM: generator}

	switch cfg.VectorStore {
	case "pgvector":
		pg, err := pgvector.NewStore(ctx, cfg.DatabaseURL, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("pgvector store: %w", err)
		}
		a.pg = pg
		a.Store = pg
		log.Println("Vector store: pgvector")
	case "qdrant", "":
		a.Store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
		})
		log.Println("Vector store: qdrant")
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE %q", cfg.VectorStore)
	}

	a.Ingestor = ingest.NewIngestor(embedder, a.Store, ingest.Config{
		MaxChars:    cfg.MaxChars,
		EmbedBatch:  cfg.EmbedBatch,
		UpsertBatch: cfg.UpsertBatch,
	})
	a.RAG = rag.NewService(rag.NewRetriever(embedder, a.Store), generator, cfg.TopK)
	a.Server = NewServer(cfg, a.Ingestor, a.RAG)

	return a, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
}
