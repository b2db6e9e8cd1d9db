package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chiquinho-ai/chiquinho/internal/core"
)

// FallbackAnswer is returned to the end user whenever retrieval setup or
// generation fails; query answering always returns something readable.
const FallbackAnswer = "Desculpe, ocorreu um erro ao processar sua solicitação."

// PassageRetriever is the slice of the retriever the answer flow needs.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}

// Service orchestrates the RAG flow: retrieve grounding passages, build
// the prompt and delegate to the generation capability.
type Service struct {
	retriever PassageRetriever
	llm       core.LLMProvider
	topK      int
}

func NewService(retriever PassageRetriever, llm core.LLMProvider, topK int) *Service {
	if topK <= 0 {
		topK = 4
	}
	return &Service{retriever: retriever, llm: llm, topK: topK}
}

// Answer returns the generated answer for the query, or FallbackAnswer on
// failure. The prompt instructs the model to answer only from the
// retrieved context.
func (s *Service) Answer(ctx context.Context, query string) string {
	passages, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		log.Printf("rag: retrieve failed: %v", err)
		return FallbackAnswer
	}

	prompt := BuildPrompt(query, passages)

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("rag: generate failed: %v", err)
		return FallbackAnswer
	}
	return answer
}

// BuildPrompt assembles the fixed prompt template: system framing, the
// context block, the literal question and the answer-only-from-context
// instruction.
func BuildPrompt(query string, passages []string) string {
	context := strings.Join(passages, "\n\n")
	return fmt.Sprintf(`Você é um assistente que responde com base nestes documentos:
%s

Pergunta:
%s

Responda de forma clara e com base apenas nas informações acima.`, context, query)
}
