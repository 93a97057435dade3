package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	defaultSearchEndpoint = "https://html.duckduckgo.com/html/"
	defaultMaxResults     = 5
	userAgent             = "Mozilla/5.0 (compatible; content-agent/1.0)"
)

// Web holds the inbuilt web tools. The zero value is not usable, use NewWeb.
type Web struct {
	SearchEndpoint string
	Client         *http.Client
	Timeout        time.Duration
}

func NewWeb() *Web {
	return &Web{
		SearchEndpoint: defaultSearchEndpoint,
		Client:         &http.Client{Timeout: 30 * time.Second},
		Timeout:        30 * time.Second,
	}
}

type SearchWebInput struct {
	Query      string `json:"query" jsonschema_description:"Search terms" jsonschema:"required"`
	MaxResults int    `json:"max_results,omitempty" jsonschema_description:"Maximum number of results, default 5"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Search runs a query against an HTML search results page.
func (w *Web) Search(ctx context.Context, input SearchWebInput) ([]SearchResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	limit := input.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(w.Timeout)

	var results []SearchResult
	c.OnHTML(".result", func(e *colly.HTMLElement) {
		if len(results) >= limit {
			return
		}
		href := e.ChildAttr("a.result__a", "href")
		title := strings.TrimSpace(e.ChildText("a.result__a"))
		if href == "" || title == "" {
			return
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     resolveResultURL(e.Request.AbsoluteURL(href)),
			Snippet: strings.TrimSpace(e.ChildText(".result__snippet")),
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("search request failed with status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(w.SearchEndpoint + "?q=" + url.QueryEscape(query)); err != nil {
		return nil, err
	}
	if visitErr != nil {
		return nil, visitErr
	}
	return results, nil
}

// resolveResultURL unwraps redirect links of the form /l/?uddg=<target>.
func resolveResultURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

type ScrapePageInput struct {
	URL string `json:"url" jsonschema_description:"Absolute URL of the page to scrape" jsonschema:"required"`
}

type PageSection struct {
	Subheadline string `json:"subheadline,omitempty"`
	Text        string `json:"text"`
}

type Page struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Headline string        `json:"headline,omitempty"`
	Sections []PageSection `json:"sections"`
}

// Scrape fetches a page and reduces it to a headline and text sections.
// Every h2/h3 starts a new section, paragraphs are appended to the current one.
func (w *Web) Scrape(ctx context.Context, input ScrapePageInput) (Page, error) {
	if input.URL == "" {
		return Page{}, fmt.Errorf("url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("error fetching the page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("failed to load page, status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("error parsing HTML: %w", err)
	}

	page := Page{
		URL:   input.URL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	var current *PageSection
	doc.Find("article h1, article h2, article h3, article p, main h1, main h2, main h3, main p").Each(func(i int, s *goquery.Selection) {
		collectSection(&page, &current, s)
	})
	if len(page.Sections) == 0 && current == nil {
		doc.Find("h1, h2, h3, p").Each(func(i int, s *goquery.Selection) {
			collectSection(&page, &current, s)
		})
	}
	if current != nil && current.Text != "" {
		page.Sections = append(page.Sections, *current)
	}
	return page, nil
}

func collectSection(page *Page, current **PageSection, s *goquery.Selection) {
	text := strings.Join(strings.Fields(s.Text()), " ")
	if text == "" {
		return
	}
	switch goquery.NodeName(s) {
	case "h1":
		if page.Headline == "" {
			page.Headline = text
		}
	case "h2", "h3":
		if *current != nil && (*current).Text != "" {
			page.Sections = append(page.Sections, **current)
		}
		*current = &PageSection{Subheadline: text}
	case "p":
		if *current == nil {
			*current = &PageSection{}
		}
		if (*current).Text != "" {
			(*current).Text += "\n"
		}
		(*current).Text += text
	}
}
