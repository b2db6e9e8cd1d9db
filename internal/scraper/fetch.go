package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/charmap"
)

// Source servers are picky about anonymous clients; present a regular
// browser User-Agent like the original harvester did.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// Get fetches a page and parses it as UTF-8 HTML.
func Get(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	return fetch(ctx, client, http.MethodGet, pageURL, nil, false)
}

// GetLatin1 fetches a page served in ISO-8859-1 (the SEI portal) and
// decodes it before parsing.
func GetLatin1(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	return fetch(ctx, client, http.MethodGet, pageURL, nil, true)
}

// PostFormLatin1 submits a form and parses the ISO-8859-1 response.
func PostFormLatin1(ctx context.Context, client *http.Client, pageURL string, form url.Values) (*goquery.Document, error) {
	return fetch(ctx, client, http.MethodPost, pageURL, strings.NewReader(form.Encode()), true)
}

func fetch(ctx context.Context, client *http.Client, method, pageURL string, body io.Reader, latin1 bool) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, method, pageURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %s", method, pageURL, resp.Status)
	}

	var reader io.Reader = resp.Body
	if latin1 {
		reader = charmap.ISO8859_1.NewDecoder().Reader(resp.Body)
	}
	return goquery.NewDocumentFromReader(reader)
}

// ResolveURL resolves href against base, returning href unchanged when it
// cannot be parsed.
func ResolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
