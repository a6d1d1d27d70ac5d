// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/poiesic/webrag/core"
)

const (
	defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"
	defaultSearchTimeout = 15 * time.Second

	// Some providers block default client identifiers, so present a
	// realistic browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
)

// DuckDuckGo implements Provider by scraping DuckDuckGo's HTML endpoint,
// which requires no API key.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// DuckDuckGoOption configures a DuckDuckGo provider.
type DuckDuckGoOption func(*DuckDuckGo)

// WithBaseURL overrides the search endpoint. Used in tests.
func WithBaseURL(baseURL string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if client != nil {
			d.client = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDuckDuckGo creates a DuckDuckGo search provider.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		baseURL: defaultDuckDuckGoURL,
		client:  &http.Client{Timeout: defaultSearchTimeout},
		logger:  slog.Default().With("component", "duckduckgo"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the provider identifier.
func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// Search executes a query against the HTML endpoint and parses the result
// page. Fewer than limit results is not an error.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]core.Candidate, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	candidates := d.parseResults(doc, limit)
	d.logger.Debug("search completed", "query", query, "results", len(candidates))
	return candidates, nil
}

// parseResults extracts candidates from a DuckDuckGo HTML result page.
func (d *DuckDuckGo) parseResults(doc *goquery.Document, limit int) []core.Candidate {
	candidates := make([]core.Candidate, 0, limit)

	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if limit > 0 && len(candidates) >= limit {
			return false
		}

		anchor := sel.Find("a.result__a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return true
		}

		candidate := core.Candidate{
			URL:     resolveRedirect(href),
			Title:   strings.TrimSpace(anchor.Text()),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
		}
		if err := core.ValidateCandidate(&candidate); err != nil {
			d.logger.Warn("skipping malformed search result", "err", err)
			return true
		}

		candidates = append(candidates, candidate)
		return true
	})

	return candidates
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect links to the
// destination URL. Unrecognized hrefs are returned as-is.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		if target, err := url.QueryUnescape(uddg); err == nil {
			return target
		}
	}
	if parsed.Scheme == "" {
		// Protocol-relative redirect links
		return "https:" + href
	}
	return href
}
