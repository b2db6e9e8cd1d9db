package deg

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiquinho-ai/chiquinho/internal/models"
)

const searchPage = `<html><body>
<article class="elementor-post">
	<h3 class="elementor-post__title"><a href="%s/post">Edital de Monitoria 2024</a></h3>
	<span class="elementor-post-date">29 de agosto de 2024</span>
	<div class="elementor-post__excerpt"><p>Inscrições abertas para monitoria.</p></div>
</article>
</body></html>`

const postPage = `<html><body>
<article>
	<script>var tracker = 1;</script>
	<p>Texto do edital de monitoria, com prazos e requisitos.</p>
	<a href="/arquivos/edital.pdf">Edital em PDF</a>
</article>
<iframe class="embedpress-embed-document-pdf" src="https://deg.unb.br/viewer?file=https%%3A%%2F%%2Fdeg.unb.br%%2Fdocs%%2Fanexo.pdf"></iframe>
</body></html>`

func newPortal(t *testing.T) *httptest.Server {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/page/1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, searchPage, base)
	})
	mux.HandleFunc("/page/2/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, postPage)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	base = srv.URL
	return srv
}

func TestCollect(t *testing.T) {
	srv := newPortal(t)
	c := &Collector{
		client:     srv.Client(),
		baseURL:    srv.URL + "/",
		query:      "monitoria",
		pagesLimit: 2,
	}

	docs, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Edital de Monitoria 2024", doc.Title)
	assert.Equal(t, srv.URL+"/post", doc.URL)
	assert.Equal(t, "deg.unb.br", doc.Source)
	assert.Len(t, doc.ID, 32)

	require.NotNil(t, doc.PublicationDate)
	assert.Equal(t, time.Date(2024, time.August, 29, 0, 0, 0, 0, time.UTC), *doc.PublicationDate)

	assert.Contains(t, doc.ContentText, "Texto do edital de monitoria")
	assert.NotContains(t, doc.ContentText, "tracker")

	assert.Equal(t, "Inscrições abertas para monitoria.", doc.Metadata["excerpt"])
	assert.Equal(t, "monitoria", doc.Metadata["search_term"])

	require.Len(t, doc.Attachments, 2)
	assert.Equal(t, models.Attachment{
		URL:       "https://deg.unb.br/docs/anexo.pdf",
		Filename:  "Documento Embutido",
		MediaType: "application/pdf",
	}, doc.Attachments[0])
	assert.Equal(t, models.Attachment{
		URL:       srv.URL + "/arquivos/edital.pdf",
		Filename:  "Edital em PDF",
		MediaType: "application/pdf",
	}, doc.Attachments[1])
}

func TestCollect_SearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := &Collector{
		client:     &http.Client{Timeout: time.Second},
		baseURL:    srv.URL + "/",
		query:      "monitoria",
		pagesLimit: 1,
	}

	docs, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Empty(t, docs)
}
