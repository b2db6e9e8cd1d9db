package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/chiquinho-ai/chiquinho/internal/core"
	"github.com/chiquinho-ai/chiquinho/internal/core/ingest"
	"github.com/chiquinho-ai/chiquinho/internal/models"
)

// DocumentIngestor is the slice of the ingestion pipeline the API needs.
type DocumentIngestor interface {
	Ingest(ctx context.Context, docs []models.Document, recreate bool) (*models.IngestSummary, error)
}

type IngestHandler struct {
	ingestor DocumentIngestor
}

func NewIngestHandler(ingestor DocumentIngestor) *IngestHandler {
	return &IngestHandler{ingestor: ingestor}
}

// Ingest accepts a JSON array of documents (the scraper job posts batches
// here) and runs the ingestion pipeline. `?recreate=true` drops and
// rebuilds the collection first.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var docs []models.Document
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		http.Error(w, "invalid request: expected a JSON array of documents", http.StatusBadRequest)
		return
	}
	if len(docs) == 0 {
		http.Error(w, "no documents to ingest", http.StatusBadRequest)
		return
	}
	for i := range docs {
		if docs[i].URL == "" || docs[i].Source == "" {
			http.Error(w, fmt.Sprintf("document %d: url and source are required", i), http.StatusBadRequest)
			return
		}
	}

	recreate := r.URL.Query().Get("recreate") == "true"

	summary, err := h.ingestor.Ingest(r.Context(), docs, recreate)
	if err != nil {
		log.Printf("ingest request failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ingest.ErrNoEmbeddings) {
			status = http.StatusUnprocessableEntity
		}
		if errors.Is(err, core.ErrDimensionMismatch) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
