// Package saa harvests the saa.unb.br undergraduate pages (Joomla site:
// link boxes and the dropdown menu on /graduacao).
package saa

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chiquinho-ai/chiquinho/internal/models"
	"github.com/chiquinho-ai/chiquinho/internal/scraper"
)

const baseURL = "https://saa.unb.br"

type Collector struct {
	client *http.Client
	delay  time.Duration
}

func New() *Collector {
	return &Collector{
		client: &http.Client{Timeout: 10 * time.Second},
		delay:  500 * time.Millisecond,
	}
}

func (c *Collector) Name() string { return "SAA" }

type target struct {
	url      string
	title    string
	category string
}

func (c *Collector) Collect(ctx context.Context) ([]models.Document, error) {
	log.Println("saa: scraping started")

	page, err := scraper.Get(ctx, c.client, baseURL+"/graduacao")
	if err != nil {
		return nil, fmt.Errorf("graduacao page: %w", err)
	}

	targets := collectTargets(page)

	processed := map[string]bool{}
	var documents []models.Document

	for _, t := range targets {
		if processed[t.url] {
			continue
		}
		processed[t.url] = true

		if err := ctx.Err(); err != nil {
			return documents, err
		}

		log.Printf("saa: processing %q", t.title)
		text, attachments := c.pageDetails(ctx, t.url)
		if text == "" {
			// pages without extractable content are skipped entirely
			continue
		}

		doc := models.Document{
			Title:       t.title,
			URL:         t.url,
			Source:      "saa.unb.br",
			ContentText: text,
			Attachments: attachments,
			Metadata: map[string]any{
				"category":       t.category,
				"original_title": t.title,
			},
		}
		doc.EnsureID()
		documents = append(documents, doc)

		time.Sleep(c.delay)
	}

	log.Printf("saa: done, %d documents", len(documents))
	return documents, nil
}

// collectTargets gathers candidate links from the blue link boxes and the
// graduation dropdown menu.
func collectTargets(page *goquery.Document) []target {
	var targets []target

	page.Find("div.moduletable h3.caixa_azul + ul.caixa_azul").Each(func(_ int, box *goquery.Selection) {
		category := scraper.CleanText(box.PrevFiltered("h3").Text())
		box.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			targets = append(targets, target{
				url:      scraper.ResolveURL(baseURL, href),
				title:    scraper.CleanText(a.Text()),
				category: category,
			})
		})
	})

	page.Find(`li.parent a[href="/graduacao"] + ul.dropdown-menu-principal`).First().
		Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			targets = append(targets, target{
				url:      scraper.ResolveURL(baseURL, href),
				title:    scraper.CleanText(a.Text()),
				category: "Menu Graduação",
			})
		})

	return targets
}

// pageDetails extracts the article body text and its PDF links.
func (c *Collector) pageDetails(ctx context.Context, pageURL string) (string, []models.Attachment) {
	page, err := scraper.Get(ctx, c.client, pageURL)
	if err != nil {
		log.Printf("saa: page %s: %v", pageURL, err)
		return "", nil
	}

	body := page.Find(`div[itemprop="articleBody"]`).First()
	if body.Length() == 0 {
		body = page.Find("div.mc-column").First()
	}
	if body.Length() == 0 {
		return "", nil
	}

	body.Find("script, style, aside, footer").Remove()
	text := scraper.CleanText(body.Text())

	var attachments []models.Attachment
	body.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}
		fullURL := scraper.ResolveURL(baseURL, href)
		name := scraper.CleanText(a.Text())
		if name == "" {
			parts := strings.Split(href, "/")
			name = parts[len(parts)-1]
		}
		attachments = append(attachments, models.Attachment{
			URL:       fullURL,
			Filename:  name,
			MediaType: "application/pdf",
		})
	})

	return text, attachments
}
