// Package webpage fetches a bookmark's page and pulls out the fields the
// tagging pipeline wants: a title, a description, and readable text.
package webpage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// MaxContentLen caps extracted page text.
const MaxContentLen = 8192

const userAgent = "Mozilla/5.0 (compatible; bookmark-slack-bot/1.0)"

// Page is what the fetcher extracted from a URL.
type Page struct {
	URL         string
	Title       string
	Description string
	Content     string
}

// Fetcher retrieves and parses bookmark pages.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher. A nil client gets a 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: client}
}

// Fetch downloads targetURL and extracts its title, description, and text.
// A page without any usable title falls back to the URL itself.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("webpage: invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("webpage: url must be http or https")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("webpage: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpage: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webpage: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("webpage: parse html: %w", err)
	}

	fields := collect(doc)
	page := &Page{
		URL:         targetURL,
		Title:       fields.bestTitle(),
		Description: fields.bestDescription(),
		Content:     truncate(extractText(doc), MaxContentLen),
	}
	if page.Title == "" {
		page.Title = targetURL
	}
	return page, nil
}

// metaFields holds everything one pass over the document collects.
type metaFields struct {
	ogTitle       string
	twitterTitle  string
	h1            string
	title         string
	description   string
	ogDescription string
}

func collect(doc *html.Node) metaFields {
	var m metaFields
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var name, property, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = strings.ToLower(attr.Val)
					case "property":
						property = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}
				switch {
				case property == "og:title" && m.ogTitle == "":
					m.ogTitle = content
				case name == "twitter:title" && m.twitterTitle == "":
					m.twitterTitle = content
				case name == "description" && m.description == "":
					m.description = content
				case property == "og:description" && m.ogDescription == "":
					m.ogDescription = content
				}
			case "h1":
				if m.h1 == "" {
					m.h1 = extractText(n)
				}
			case "title":
				if m.title == "" && n.FirstChild != nil {
					m.title = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return m
}

// bestTitle prefers og:title, then twitter:title, then the first h1, then
// the <title> tag.
func (m metaFields) bestTitle() string {
	for _, candidate := range []string{m.ogTitle, m.twitterTitle, m.h1, m.title} {
		if t := strings.TrimSpace(candidate); t != "" {
			return t
		}
	}
	return ""
}

func (m metaFields) bestDescription() string {
	for _, candidate := range []string{m.description, m.ogDescription} {
		if d := strings.TrimSpace(candidate); d != "" {
			return d
		}
	}
	return ""
}

// extractText flattens the visible text under n, skipping script and style
// subtrees.
func extractText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
