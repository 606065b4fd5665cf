// Package content implements the Content Acquirer (section 4.1/C1): fetch a
// URL and extract a title, body text, and image metadata list for the
// Script Synthesizer's prompt assembly.
package content

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/scriptgen"
)

const fetchTimeout = 30 * time.Second

// Page is the raw acquisition result before it is handed to the script
// synthesizer as a PromptInput.
type Page struct {
	Title  string
	Body   string
	Images []scriptgen.ImageMetadata
}

// Fetcher retrieves and parses a single URL. It holds no state beyond its
// HTTP client, matching the teacher's stateless-service shape.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: fetchTimeout}}
}

// Fetch performs the HTTP GET, parses the HTML body with goquery, and
// extracts the page title, a whitespace-normalized body text, and the
// alt/title/aria-describedby metadata of every <img> element that has a src
// and survives extractBody's stripping, with its URL resolved against the
// page's base URL.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, models.NewContentFetchError(pageURL, "failed to build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewContentFetchError(pageURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewContentFetchError(pageURL, "unexpected status "+resp.Status, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, models.NewContentFetchError(pageURL, "failed to parse HTML", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, models.NewContentFetchError(pageURL, "failed to parse base URL", err)
	}

	body := extractBody(doc)
	if strings.TrimSpace(body) == "" {
		return nil, models.NewContentFetchError(pageURL, "page body is empty after extraction", nil)
	}

	return &Page{
		Title:  strings.TrimSpace(doc.Find("title").First().Text()),
		Body:   body,
		Images: extractImages(doc, base),
	}, nil
}

// extractBody strips script/style/nav/footer noise and joins the remaining
// block text, collapsing runs of whitespace.
func extractBody(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside").Remove()

	article := doc.Find("article").First()
	target := doc.Selection
	if article.Length() > 0 {
		target = article
	} else if main := doc.Find("main").First(); main.Length() > 0 {
		target = main
	}

	text := target.Text()
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

func extractImages(doc *goquery.Document, base *url.URL) []scriptgen.ImageMetadata {
	var images []scriptgen.ImageMetadata
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		resolved := src
		if u, err := url.Parse(src); err == nil {
			resolved = base.ResolveReference(u).String()
		}
		images = append(images, scriptgen.ImageMetadata{
			Src:             src,
			Alt:             s.AttrOr("alt", ""),
			Title:           s.AttrOr("title", ""),
			AriaDescribedBy: s.AttrOr("aria-describedby", ""),
			ResolvedURL:     resolved,
		})
	})
	return images
}
