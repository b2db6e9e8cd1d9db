package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureID_DerivedFromURL(t *testing.T) {
	a := Document{URL: "https://deg.unb.br/edital-1"}
	b := Document{URL: "https://deg.unb.br/edital-1"}
	a.EnsureID()
	b.EnsureID()

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, a.ID, 32)
}

func TestEnsureID_KeepsExistingID(t *testing.T) {
	d := Document{ID: "fixed", URL: "https://deg.unb.br/edital-1"}
	d.EnsureID()
	assert.Equal(t, "fixed", d.ID)
}

func TestEnsureID_NoURL(t *testing.T) {
	d := Document{}
	d.EnsureID()
	assert.Empty(t, d.ID)
}

func TestDocumentID_DistinctURLs(t *testing.T) {
	assert.NotEqual(t, DocumentID("https://deg.unb.br/a"), DocumentID("https://deg.unb.br/b"))
}

func TestExcerpt(t *testing.T) {
	d := Document{Metadata: map[string]any{"excerpt": "resumo do edital"}}
	assert.Equal(t, "resumo do edital", d.Excerpt())

	assert.Empty(t, (&Document{}).Excerpt())
	assert.Empty(t, (&Document{Metadata: map[string]any{"excerpt": 42}}).Excerpt())
}
