package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Attachment is a file (usually a PDF) referenced by a harvested page.
type Attachment struct {
	URL       string `json:"url"`
	Filename  string `json:"filename,omitempty"`
	MediaType string `json:"media_type"`
}

// Document is one harvested page/record from a source portal.
// URL and Source are always set; ContentText may be empty when the
// collector could not extract a body, the document is still counted.
type Document struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	URL             string         `json:"url"`
	Source          string         `json:"source"`
	ContentText     string         `json:"content_text"`
	PublicationDate *time.Time     `json:"publication_date,omitempty"`
	Attachments     []Attachment   `json:"attachments,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// EnsureID derives the document id from its URL when absent.
// The id is content-addressed by URL (MD5 hex), so the same page always
// maps to the same id across runs.
func (d *Document) EnsureID() {
	if d.ID == "" && d.URL != "" {
		d.ID = DocumentID(d.URL)
	}
}

// DocumentID returns the MD5 hex digest of the URL.
func DocumentID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Excerpt returns the excerpt stored in the document metadata, if any.
func (d *Document) Excerpt() string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata["excerpt"].(string); ok {
		return v
	}
	return ""
}

// Chunk is a bounded-size slice of one document's title+body text, the
// unit of embedding. Payload fields are copied from the document so a
// search hit can be displayed without loading the document again.
type Chunk struct {
	Text        string
	ChunkIndex  int
	TotalChunks int

	Title           string
	URL             string
	Source          string
	PublicationDate *time.Time
	Excerpt         string
	ContentText     string
}

// IngestSummary reports the outcome of one ingestion run.
type IngestSummary struct {
	DocumentsIn    int `json:"documents_in"`
	ChunksTotal    int `json:"chunks_total"`
	ChunksEmbedded int `json:"chunks_embedded"`
	PointsWritten  int `json:"points_written"`
}
