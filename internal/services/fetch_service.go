package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	MaxFetchURLs  = 10
	maxPageBytes  = 2 << 20
	fetchParallel = 5
)

type FetchResult struct {
	URL         string `json:"url"`
	OK          bool   `json:"ok"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

type FetchReport struct {
	Results   []FetchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// FetchService reads the title and description of reference pages.
type FetchService struct {
	client *http.Client
}

func NewFetchService(client *http.Client) *FetchService {
	if client == nil {
		client = http.DefaultClient
	}
	return &FetchService{client: client}
}

// Fetch loads every URL concurrently. A failing URL is reported in its result
// and does not stop the others.
func (s *FetchService) Fetch(ctx context.Context, urls []string) (*FetchReport, error) {
	if len(urls) == 0 {
		return nil, invalidf("urls is required")
	}
	if len(urls) > MaxFetchURLs {
		return nil, invalidf("at most %d urls can be fetched at once", MaxFetchURLs)
	}

	results := make([]FetchResult, len(urls))
	var g errgroup.Group
	g.SetLimit(fetchParallel)
	for i, raw := range urls {
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	report := &FetchReport{Results: results}
	for _, r := range results {
		if r.OK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func (s *FetchService) fetchOne(ctx context.Context, raw string) FetchResult {
	result := FetchResult{URL: raw}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.Error = "invalid url"
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", "marketing-ops/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return result
	}

	title, description, err := ExtractPageMeta(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.OK = true
	result.Title = title
	result.Description = description
	return result
}

// ExtractPageMeta returns the document title and its meta description,
// falling back to og:title and og:description.
func ExtractPageMeta(r io.Reader) (title, description string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	var ogTitle, ogDescription string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key := strings.ToLower(attr(n, "name"))
				if key == "" {
					key = strings.ToLower(attr(n, "property"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "description":
					if description == "" {
						description = content
					}
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDescription = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title == "" {
		title = ogTitle
	}
	if description == "" {
		description = ogDescription
	}
	return title, description, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
