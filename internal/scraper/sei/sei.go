// Package sei harvests published documents (resolutions, notices) from the
// sei.unb.br publication search, a legacy form-driven interface served in
// ISO-8859-1.
package sei

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chiquinho-ai/chiquinho/internal/models"
	"github.com/chiquinho-ai/chiquinho/internal/scraper"
)

const (
	baseURL     = "https://sei.unb.br/sei/publicacoes/"
	endpointURL = baseURL + "controlador_publicacoes.php"

	// result rows per page, mirrored into the pagination offset
	pageSize = 20
)

// Series identifies one SEI document series to search.
type Series struct {
	ID      string
	DocType string
}

func DefaultSeries() []Series {
	return []Series{
		{ID: "239", DocType: "Resolução"},
		{ID: "844", DocType: "Edital"},
	}
}

type Collector struct {
	client     *http.Client
	series     []Series
	searchTerm string
	delay      time.Duration
}

func New(series []Series, searchTerm string) *Collector {
	if len(series) == 0 {
		series = DefaultSeries()
	}
	if searchTerm == "" {
		searchTerm = "FCTE ou FGA"
	}
	return &Collector{
		client:     &http.Client{Timeout: 15 * time.Second},
		series:     series,
		searchTerm: searchTerm,
		delay:      500 * time.Millisecond,
	}
}

func (c *Collector) Name() string { return "SEI" }

func (c *Collector) Collect(ctx context.Context) ([]models.Document, error) {
	log.Printf("sei: scraping for %q", c.searchTerm)
	var documents []models.Document

	for _, s := range c.series {
		docs, err := c.collectSeries(ctx, s)
		documents = append(documents, docs...)
		if err != nil {
			if ctx.Err() != nil {
				return documents, err
			}
			log.Printf("sei: series %s: %v", s.ID, err)
		}
	}

	log.Printf("sei: done, %d documents", len(documents))
	return documents, nil
}

func (c *Collector) collectSeries(ctx context.Context, s Series) ([]models.Document, error) {
	params := url.Values{
		"acao":                {"publicacao_pesquisar"},
		"acao_origem":         {"publicacao_pesquisar"},
		"id_orgao_publicacao": {"0"},
		"id_serie":            {s.ID},
		"rdo_data_publicacao": {"I"},
	}
	listURL := endpointURL + "?" + params.Encode()

	var documents []models.Document
	offset := 0

	for {
		form := url.Values{
			"hdnInfraTipoPagina":    {"1"},
			"sbmPesquisar":          {"Pesquisar"},
			"selOrgao[]":            {"0"},
			"txtInteiroTeor":        {c.searchTerm},
			"selSerie":              {s.ID},
			"rdoDataPublicacao":     {"I"},
			"hdnInfraNroItens":      {strconv.Itoa(pageSize)},
			"hdnInicio":             {strconv.Itoa(offset)},
			"txtResumo":             {""},
			"selUnidadeResponsavel": {""},
			"txtNumero":             {""},
			"txtProtocoloPesquisa":  {""},
			"selVeiculoPublicacao":  {""},
			"txtDataDocumento":      {""},
			"txtDataInicio":         {""},
			"txtDataFim":            {""},
		}

		page, err := scraper.PostFormLatin1(ctx, c.client, listURL, form)
		if err != nil {
			return documents, fmt.Errorf("result page at offset %d: %w", offset, err)
		}

		rows := page.Find(`tr[id^="trPublicacaoA"]`)
		if rows.Length() == 0 {
			log.Printf("sei: no more results for series %s", s.ID)
			return documents, nil
		}

		var stop error
		rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if err := ctx.Err(); err != nil {
				stop = err
				return false
			}

			cols := row.Find("td")
			if cols.Length() < 6 {
				return true
			}
			link := cols.Eq(1).Find("a").First()
			href, ok := link.Attr("href")
			if !ok {
				return true
			}

			docURL := scraper.ResolveURL(baseURL, href)
			title := scraper.CleanText(cols.Eq(2).Text())
			dateStr := scraper.CleanText(cols.Eq(4).Text()) // DD/MM/YYYY
			dept := scraper.CleanText(cols.Eq(5).Text())

			log.Printf("sei: processing %q", truncate(title, 50))
			text := c.documentText(ctx, docURL)

			doc := models.Document{
				Title:           title,
				URL:             docURL,
				Source:          "sei.unb.br",
				ContentText:     scraper.CleanText(text),
				PublicationDate: scraper.ParsePTDate(dateStr),
				Metadata: map[string]any{
					"type":       s.DocType,
					"department": dept,
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

		if !hasNextPage(page) {
			return documents, nil
		}
		offset += pageSize
		time.Sleep(time.Second)
	}
}

// documentText downloads a SEI document page and extracts the central
// text: everything between the centered heading (or the first table, when
// the heading is absent) and the unselectable footer marker.
func (c *Collector) documentText(ctx context.Context, docURL string) string {
	page, err := scraper.GetLatin1(ctx, c.client, docURL)
	if err != nil {
		log.Printf("sei: document %s: %v", docURL, err)
		return ""
	}

	start := page.Find("p.Texto_Centralizado_Maiusculas_Negrito").First()
	if start.Length() == 0 {
		start = page.Find("table").First()
	}
	if start.Length() == 0 {
		return ""
	}

	end := page.Find(`div[unselectable="on"]`).First()
	if end.Length() == 0 {
		return scraper.CleanText(start.Text())
	}
	endNode := end.Nodes[0]

	var parts []string
	if t := scraper.CleanText(start.Text()); t != "" {
		parts = append(parts, t)
	}
	for cur := start.Next(); cur.Length() > 0; cur = cur.Next() {
		if cur.Nodes[0] == endNode {
			break
		}
		switch goquery.NodeName(cur) {
		case "p", "table", "div", "span":
		default:
			continue
		}
		if t := scraper.CleanText(cur.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func hasNextPage(page *goquery.Document) bool {
	found := false
	page.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if scraper.CleanText(a.Text()) == "Próxima" {
			found = true
			return false
		}
		return true
	})
	return found
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
