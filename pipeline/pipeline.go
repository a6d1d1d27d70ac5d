package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/webrag/ai"
	"github.com/poiesic/webrag/core"
	"github.com/poiesic/webrag/fetch"
	"github.com/poiesic/webrag/rank"
	"github.com/poiesic/webrag/websearch"
)

const (
	// MaxNumResults bounds search breadth regardless of caller input,
	// keeping downstream embedding and fetch cost bounded.
	MaxNumResults = 20

	// DefaultNumResults is the search breadth used when the caller passes
	// a non-positive value.
	DefaultNumResults = 10

	// DefaultTopK is the fetch breadth used when the caller passes a
	// non-positive value.
	DefaultTopK = 5

	// DefaultScoreConcurrency bounds concurrent snippet embeddings.
	DefaultScoreConcurrency = 5
)

// Pipeline orchestrates the rank-and-fetch sequence: search the web for
// candidates, score them against the query in the embedding space, rank,
// fetch content for the top-k, and assemble an ordered result.
type Pipeline struct {
	provider         websearch.Provider
	embedder         ai.Embedder
	fetcher          *fetch.Fetcher
	monitor          Monitor
	deadline         time.Duration
	scoreConcurrency int
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMonitor sets a stage monitor.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithDeadline sets an end-to-end deadline for each Run call. When it
// expires, in-flight embedding and fetch work is cancelled and the partial
// result is returned with its Degraded flag set.
// Default is no pipeline-level deadline.
func WithDeadline(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			d = 0
		}
		p.deadline = d
		return nil
	}
}

// WithScoreConcurrency sets the worker pool size for snippet embeddings.
// Default is DefaultScoreConcurrency.
func WithScoreConcurrency(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.scoreConcurrency = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a retrieval pipeline. The embedder is an explicit
// dependency owned by the caller: its initialization (and failure) belongs
// to the construction path, not to the first query.
func NewPipeline(
	provider websearch.Provider,
	embedder ai.Embedder,
	fetcher *fetch.Fetcher,
	opts ...Option,
) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	p := &Pipeline{
		provider:         provider,
		embedder:         embedder,
		fetcher:          fetcher,
		monitor:          &noopMonitor{},
		scoreConcurrency: DefaultScoreConcurrency,
		logger:           slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run executes one pipeline invocation for the query.
//
// numResults is clamped to 1..MaxNumResults (non-positive values fall back
// to DefaultNumResults), then topK is clamped to at most numResults
// (non-positive values fall back to DefaultTopK). The clamp order is
// deliberate: topK can never exceed the candidate set it selects from.
//
// A provider failure or an unusable embedder aborts the invocation with an
// error; zero candidates from the provider is a valid outcome and yields an
// empty result. Per-candidate and per-URL failures never abort the run.
func (p *Pipeline) Run(ctx context.Context, query string, numResults, topK int) (*core.Result, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	if numResults <= 0 {
		numResults = DefaultNumResults
	}
	if numResults > MaxNumResults {
		numResults = MaxNumResults
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > numResults {
		topK = numResults
	}

	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	p.monitor.Start(query)

	// 1. Searching
	candidates, err := p.provider.Search(ctx, query, numResults)
	if err != nil {
		p.logger.Error("search provider failed", "provider", p.provider.Name(), "err", err)
		return nil, err
	}
	p.monitor.AfterSearch(candidates)

	if len(candidates) == 0 {
		result := &core.Result{Documents: []core.FetchedDocument{}}
		p.monitor.Finish(result)
		return result, nil
	}

	// 2. Scoring
	queryVec, err := p.embedder.EmbedText(ctx, query)
	if err != nil {
		p.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbedderUnavailable, err)
	}

	scored := p.scoreCandidates(ctx, queryVec, candidates)
	p.monitor.AfterScoring(scored)

	// 3. Ranking
	ranked := rank.Rank(scored)
	p.monitor.AfterRanking(ranked)

	top := rank.SelectTopK(ranked, topK)
	urls := make([]string, len(top))
	for i, candidate := range top {
		urls[i] = candidate.URL
	}

	// 4. Fetching
	docs := p.fetcher.FetchAll(ctx, urls)
	p.monitor.AfterFetch(docs)

	// 5. Assembling
	result := p.assemble(urls, docs)
	if ctx.Err() != nil {
		result.Degraded = true
		p.logger.Warn("pipeline deadline expired, returning partial result",
			"documents", len(result.Documents))
	}
	p.monitor.Finish(result)

	return result, nil
}

// scoreCandidates computes per-candidate similarity against the query
// vector on a bounded worker pool. Each worker writes only its own slot,
// so no score is ever written by two tasks.
//
// A candidate with no snippet, or whose embedding fails, keeps the 0.0
// sentinel with Scored=false; one bad candidate never aborts the batch.
func (p *Pipeline) scoreCandidates(ctx context.Context, queryVec []float32, candidates []core.Candidate) []core.ScoredCandidate {
	scored := make([]core.ScoredCandidate, len(candidates))

	poolSize := p.scoreConcurrency
	if poolSize > len(candidates) {
		poolSize = len(candidates)
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		p.logger.Error("failed to create scoring pool, falling back to sentinel scores", "err", err)
		for i, candidate := range candidates {
			scored[i] = core.ScoredCandidate{Candidate: candidate}
		}
		return scored
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		scored[i] = core.ScoredCandidate{Candidate: candidate}

		if candidate.Snippet == "" {
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			snippetVec, err := p.embedder.EmbedText(ctx, candidate.Snippet)
			if err != nil {
				p.logger.Warn("error embedding candidate snippet", "url", candidate.URL, "err", err)
				return
			}

			scored[i].Score = rank.Similarity(queryVec, snippetVec)
			scored[i].Scored = true
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Warn("scoring task rejected", "url", candidate.URL, "err", submitErr)
		}
	}
	wg.Wait()

	return scored
}

// assemble re-imposes rank order on fetch results, which complete in
// arbitrary order. URLs that failed to fetch are absent, not represented
// as placeholders.
func (p *Pipeline) assemble(rankedURLs []string, docs []core.FetchedDocument) *core.Result {
	byURL := make(map[string]core.FetchedDocument, len(docs))
	for _, doc := range docs {
		if _, ok := byURL[doc.URL]; !ok {
			byURL[doc.URL] = doc
		}
	}

	ordered := make([]core.FetchedDocument, 0, len(docs))
	for _, u := range rankedURLs {
		if doc, ok := byURL[u]; ok {
			ordered = append(ordered, doc)
		}
	}

	return &core.Result{Documents: ordered}
}
