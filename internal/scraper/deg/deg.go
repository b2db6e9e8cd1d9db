// Package deg harvests search results from the deg.unb.br portal
// (WordPress/Elementor pages).
package deg

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chiquinho-ai/chiquinho/internal/models"
	"github.com/chiquinho-ai/chiquinho/internal/scraper"
)

const defaultBaseURL = "https://deg.unb.br/"

type Collector struct {
	client     *http.Client
	baseURL    string
	query      string
	pagesLimit int
	delay      time.Duration
}

func New(query string, pagesLimit int) *Collector {
	if query == "" {
		query = "monitoria"
	}
	if pagesLimit <= 0 {
		pagesLimit = 1
	}
	return &Collector{
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		query:      query,
		pagesLimit: pagesLimit,
		delay:      time.Second,
	}
}

func (c *Collector) Name() string { return "DEG" }

func (c *Collector) Collect(ctx context.Context) ([]models.Document, error) {
	log.Printf("deg: scraping for %q", c.query)
	var documents []models.Document

	for p := 1; p <= c.pagesLimit; p++ {
		searchURL := fmt.Sprintf("%spage/%d/?s=%s", c.baseURL, p, url.QueryEscape(c.query))
		page, err := scraper.Get(ctx, c.client, searchURL)
		if err != nil {
			if len(documents) == 0 {
				return nil, fmt.Errorf("search page %d: %w", p, err)
			}
			break
		}

		articles := page.Find("article.elementor-post")
		if articles.Length() == 0 {
			break
		}

		var stop error
		articles.EachWithBreak(func(_ int, art *goquery.Selection) bool {
			if err := ctx.Err(); err != nil {
				stop = err
				return false
			}

			titleTag := art.Find("h3.elementor-post__title a").First()
			postURL, ok := titleTag.Attr("href")
			if !ok {
				return true
			}
			title := scraper.CleanText(titleTag.Text())
			dateStr := scraper.CleanText(art.Find("span.elementor-post-date").First().Text())
			excerpt := scraper.CleanText(art.Find("div.elementor-post__excerpt").First().Text())

			log.Printf("deg: processing %q", title)
			text, attachments := c.postDetails(ctx, postURL)

			doc := models.Document{
				Title:           title,
				URL:             postURL,
				Source:          "deg.unb.br",
				ContentText:     text,
				PublicationDate: scraper.ParsePTDate(dateStr),
				Attachments:     attachments,
				Metadata: map[string]any{
					"excerpt":     excerpt,
					"search_term": c.query,
				},
			}
			doc.EnsureID()
			documents = append(documents, doc)

			time.Sleep(c.delay)
			return true
		})
		if stop != nil {
			return documents, stop
		}
	}

	log.Printf("deg: done, %d documents", len(documents))
	return documents, nil
}

// postDetails extracts the article text and its PDF attachments, both
// embedded viewers (embedpress iframes carry the real file in the "file"
// query param) and direct links.
func (c *Collector) postDetails(ctx context.Context, postURL string) (string, []models.Attachment) {
	page, err := scraper.Get(ctx, c.client, postURL)
	if err != nil {
		log.Printf("deg: post %s: %v", postURL, err)
		return "", nil
	}

	article := page.Find("article").First()
	if article.Length() == 0 {
		return "", nil
	}
	article.Find("script, style, aside, nav").Remove()
	text := scraper.CleanText(article.Text())

	var attachments []models.Attachment
	seen := map[string]bool{}

	page.Find("iframe.embedpress-embed-document-pdf").Each(func(_ int, iframe *goquery.Selection) {
		src, ok := iframe.Attr("src")
		if !ok {
			return
		}
		parsed, err := url.Parse(src)
		if err != nil {
			return
		}
		fileParam := parsed.Query().Get("file")
		if fileParam == "" || seen[fileParam] {
			return
		}
		seen[fileParam] = true
		attachments = append(attachments, models.Attachment{
			URL:       fileParam,
			Filename:  "Documento Embutido",
			MediaType: "application/pdf",
		})
	})

	article.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !hasPDFSuffix(href) {
			return
		}
		fullURL := scraper.ResolveURL(c.baseURL, href)
		if seen[fullURL] {
			return
		}
		seen[fullURL] = true
		name := scraper.CleanText(a.Text())
		if name == "" {
			name = "Anexo PDF"
		}
		attachments = append(attachments, models.Attachment{
			URL:       fullURL,
			Filename:  name,
			MediaType: "application/pdf",
		})
	})

	return text, attachments
}

func hasPDFSuffix(href string) bool {
	if len(href) < 4 {
		return false
	}
	tail := href[len(href)-4:]
	return tail == ".pdf" || tail == ".PDF"
}
