package ingest

import (
	"strings"

	"github.com/chiquinho-ai/chiquinho/internal/models"
)

// SplitDocument partitions the document's trimmed "title + blank line +
// body" text into contiguous slices of at most maxChars runes. The split
// is a pure partition: concatenating the chunks in index order restores
// the input exactly. Every document yields at least one chunk, even with
// an empty body, so ingestion counts reflect all discovered items.
func SplitDocument(doc models.Document, maxChars int) []models.Chunk {
	if maxChars <= 0 {
		maxChars = 3500
	}

	text := strings.TrimSpace(doc.Title + "\n\n" + doc.ContentText)
	runes := []rune(text)

	var parts []string
	if len(runes) <= maxChars {
		parts = []string{text}
	} else {
		for start := 0; start < len(runes); start += maxChars {
			end := start + maxChars
			if end > len(runes) {
				end = len(runes)
			}
			parts = append(parts, string(runes[start:end]))
		}
	}

	chunks := make([]models.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = models.Chunk{
			Text:            part,
			ChunkIndex:      i,
			TotalChunks:     len(parts),
			Title:           doc.Title,
			URL:             doc.URL,
			Source:          doc.Source,
			PublicationDate: doc.PublicationDate,
			Excerpt:         doc.Excerpt(),
			ContentText:     doc.ContentText,
		}
	}
	return chunks
}
