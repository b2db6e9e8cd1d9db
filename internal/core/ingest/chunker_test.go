package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiquinho-ai/chiquinho/internal/models"
)

func TestSplitDocument_SingleChunk(t *testing.T) {
	doc := models.Document{
		Title:       "Edital de Monitoria",
		URL:         "https://deg.unb.br/edital-1",
		Source:      "deg.unb.br",
		ContentText: "Inscrições abertas até sexta-feira.",
	}

	chunks := SplitDocument(doc, 3500)
	require.Len(t, chunks, 1)

	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, "Edital de Monitoria\n\nInscrições abertas até sexta-feira.", chunks[0].Text)
	assert.Equal(t, doc.URL, chunks[0].URL)
	assert.Equal(t, doc.Source, chunks[0].Source)
}

func TestSplitDocument_PartitionReconstructs(t *testing.T) {
	doc := models.Document{
		Title:       "Resolução",
		URL:         "https://sei.unb.br/doc",
		ContentText: strings.Repeat("conteúdo acadêmico ", 500),
	}

	chunks := SplitDocument(doc, 1000)
	require.Greater(t, len(chunks), 1)

	var sb strings.Builder
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, len(chunks), ch.TotalChunks)
		sb.WriteString(ch.Text)
	}
	want := strings.TrimSpace(doc.Title + "\n\n" + doc.ContentText)
	assert.Equal(t, want, sb.String())
}

func TestSplitDocument_RuneBound(t *testing.T) {
	// Multi-byte text must be bounded in runes, not bytes, so no chunk
	// ever splits a character in half.
	doc := models.Document{
		Title:       "Ç",
		URL:         "https://saa.unb.br/doc",
		ContentText: strings.Repeat("ação", 1000),
	}

	chunks := SplitDocument(doc, 100)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 100)
		assert.True(t, strings.ContainsAny(ch.Text, "açãoÇ"))
	}
}

func TestSplitDocument_CeilCount(t *testing.T) {
	doc := models.Document{
		Title:       "Monitoria",
		URL:         "https://deg.unb.br/m",
		ContentText: strings.Repeat("x", 5000),
	}

	// "Monitoria\n\n" (11 runes) + 5000 runes body = 5011 → two chunks
	// under a 3500-rune bound.
	chunks := SplitDocument(doc, 3500)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
	assert.Equal(t, 2, chunks[0].TotalChunks)
	assert.Equal(t, 2, chunks[1].TotalChunks)
}

func TestSplitDocument_EmptyBodyStillYieldsChunk(t *testing.T) {
	doc := models.Document{URL: "https://deg.unb.br/empty"}

	chunks := SplitDocument(doc, 3500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}
