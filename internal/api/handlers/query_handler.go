package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// Answerer is the slice of the RAG service the API needs.
type Answerer interface {
	Answer(ctx context.Context, query string) string
}

type QueryHandler struct {
	rag Answerer
}

func NewQueryHandler(rag Answerer) *QueryHandler {
	return &QueryHandler{rag: rag}
}

// Response answers a free-text question. The query parameter and response
// key keep the names the original browser/bot clients use.
func (h *QueryHandler) Response(w http.ResponseWriter, r *http.Request) {
	pergunta := r.URL.Query().Get("pergunta")
	if pergunta == "" {
		http.Error(w, "missing 'pergunta' query parameter", http.StatusBadRequest)
		return
	}

	log.Printf("query received: %q", pergunta)
	resposta := h.rag.Answer(r.Context(), pergunta)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"resposta": resposta})
}
