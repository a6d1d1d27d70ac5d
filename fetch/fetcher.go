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


package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/webrag/ai"
	"github.com/poiesic/webrag/core"
)

const (
	// DefaultConcurrency bounds the number of in-flight fetches per batch.
	DefaultConcurrency = 5

	// DefaultTimeout is the per-request fetch timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxContentLength caps extracted text length in characters.
	DefaultMaxContentLength = 16_000

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
)

// Fetcher retrieves and extracts text content from URLs concurrently.
// A Fetcher is safe for concurrent use; each FetchAll call gets its own
// worker pool, torn down when the call returns.
type Fetcher struct {
	concurrency      int
	timeout          time.Duration
	maxContentLength int
	userAgent        string
	client           *http.Client
	summarizer       ai.Summarizer
	logger           *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithConcurrency sets the worker pool size per FetchAll call.
// Default is DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		f.concurrency = n
		return nil
	}
}

// WithTimeout sets the per-request timeout.
// Default is DefaultTimeout. One URL's timeout never cancels sibling fetches.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		f.timeout = d
		return nil
	}
}

// WithMaxContentLength sets the extracted-text length cap in characters.
// Default is DefaultMaxContentLength. Zero or negative disables the cap.
func WithMaxContentLength(n int) Option {
	return func(f *Fetcher) error {
		f.maxContentLength = n
		return nil
	}
}

// WithUserAgent overrides the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) error {
		if ua != "" {
			f.userAgent = ua
		}
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client. The default client follows
// redirects and relies on per-request context timeouts.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client != nil {
			f.client = client
		}
		return nil
	}
}

// WithSummarizer enables the optional summarization hook. When set, a
// document's extracted text is replaced by the hook's output when the hook
// succeeds; on failure the extracted text is kept. The hook never turns a
// successful fetch into a failure.
func WithSummarizer(s ai.Summarizer) Option {
	return func(f *Fetcher) error {
		f.summarizer = s
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a content fetcher.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		concurrency:      DefaultConcurrency,
		timeout:          DefaultTimeout,
		maxContentLength: DefaultMaxContentLength,
		userAgent:        defaultUserAgent,
		client:           &http.Client{},
		logger:           slog.Default().With("component", "fetcher"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// FetchAll retrieves content for the given URLs under bounded concurrency.
//
// Per-URL failures (timeout, network error, non-2xx status, parse error)
// are isolated: the failed URL is simply absent from the result and the
// failure is logged at warning level. FetchAll itself always returns,
// possibly with an empty slice, and never an error.
//
// Output order is completion order, not input order; callers needing a
// deterministic order must re-impose it.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []core.FetchedDocument {
	if len(urls) == 0 {
		return []core.FetchedDocument{}
	}

	pool, err := ants.NewPool(f.concurrency)
	if err != nil {
		f.logger.Error("failed to create fetch pool", "err", err)
		return []core.FetchedDocument{}
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		docs = make([]core.FetchedDocument, 0, len(urls))
		wg   sync.WaitGroup
	)

	for _, u := range urls {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			doc, err := f.fetchOne(ctx, u)
			if err != nil {
				f.logger.Warn("fetch failed", "url", u, "err", err)
				return
			}

			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			f.logger.Warn("fetch task rejected", "url", u, "err", submitErr)
		}
	}

	wg.Wait()
	return docs
}

// fetchOne retrieves a single URL, extracts its text, applies the length
// cap, and runs the optional summarization hook.
func (f *Fetcher) fetchOne(ctx context.Context, url string) (core.FetchedDocument, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return core.FetchedDocument{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return core.FetchedDocument{}, fmt.Errorf("timeout after %s: %w", f.timeout, err)
		}
		return core.FetchedDocument{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.FetchedDocument{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return core.FetchedDocument{}, fmt.Errorf("parse failed: %w", err)
	}

	text, truncated := Truncate(text, f.maxContentLength)

	if f.summarizer != nil {
		if summary := f.summarize(ctx, text); summary != "" {
			text = summary
		}
	}

	f.logger.Info("fetched", "url", url, "chars", len(text), "truncated", truncated,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return core.FetchedDocument{
		URL:       url,
		Text:      text,
		Truncated: truncated,
	}, nil
}

// summarize runs the summarization hook under its own timeout. Any failure
// yields "" so the caller keeps the extracted text.
func (f *Fetcher) summarize(ctx context.Context, text string) string {
	sumCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	summary, err := f.summarizer.Summarize(sumCtx, text)
	if err != nil {
		f.logger.Warn("summarization failed, keeping extracted text", "err", err)
		return ""
	}
	return summary
}
