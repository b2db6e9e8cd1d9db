package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	passages []string
	err      error
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _ int) ([]string, error) {
	return s.passages, s.err
}

// echoLLM hands the prompt straight back so tests can inspect what the
// generator was given.
type echoLLM struct {
	err error
}

func (e *echoLLM) Generate(_ context.Context, prompt string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return prompt, nil
}

func TestAnswer_PromptCarriesContextAndQuestion(t *testing.T) {
	svc := NewService(&stubRetriever{passages: []string{"doc1", "doc2"}}, &echoLLM{}, 4)

	answer := svc.Answer(context.Background(), "Quando abrem as inscrições?")

	assert.Contains(t, answer, "doc1")
	assert.Contains(t, answer, "doc2")
	assert.Contains(t, answer, "Quando abrem as inscrições?")
	assert.Contains(t, answer, "com base apenas nas informações acima")
}

func TestAnswer_RetrieveFailure(t *testing.T) {
	svc := NewService(&stubRetriever{err: errors.New("embedder misconfigured")}, &echoLLM{}, 4)

	answer := svc.Answer(context.Background(), "pergunta")
	assert.Equal(t, FallbackAnswer, answer)
}

func TestAnswer_GenerateFailure(t *testing.T) {
	svc := NewService(&stubRetriever{passages: []string{"doc1"}}, &echoLLM{err: errors.New("quota exceeded")}, 4)

	answer := svc.Answer(context.Background(), "pergunta")
	assert.Equal(t, FallbackAnswer, answer)
}

func TestAnswer_NoPassagesStillAnswers(t *testing.T) {
	svc := NewService(&stubRetriever{}, &echoLLM{}, 4)

	answer := svc.Answer(context.Background(), "pergunta sem contexto")
	require.NotEqual(t, FallbackAnswer, answer)
	assert.Contains(t, answer, "pergunta sem contexto")
}

func TestBuildPrompt_JoinsPassages(t *testing.T) {
	prompt := BuildPrompt("qual o prazo?", []string{"primeiro trecho", "segundo trecho"})

	assert.Contains(t, prompt, "primeiro trecho\n\nsegundo trecho")
	assert.Contains(t, prompt, "Pergunta:\nqual o prazo?")
}
