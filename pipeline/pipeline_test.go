package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/webrag/ai/mock"
	"github.com/poiesic/webrag/core"
	"github.com/poiesic/webrag/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a canned websearch.Provider for tests.
type stubProvider struct {
	candidates []core.Candidate
	err        error
	lastLimit  int
}

func (s *stubProvider) Search(ctx context.Context, query string, limit int) ([]core.Candidate, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.candidates) > limit {
		return s.candidates[:limit], nil
	}
	return s.candidates, nil
}

func (s *stubProvider) Name() string { return "stub" }

// recordingMonitor captures every stage callback.
type recordingMonitor struct {
	mu      sync.Mutex
	queries []string
	scored  []core.ScoredCandidate
	ranked  []core.ScoredCandidate
	fetched []core.FetchedDocument
	results []*core.Result
}

func (m *recordingMonitor) Start(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
}
func (m *recordingMonitor) AfterSearch(_ []core.Candidate) {}
func (m *recordingMonitor) AfterScoring(scored []core.ScoredCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scored = scored
}
func (m *recordingMonitor) AfterRanking(ranked []core.ScoredCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranked = ranked
}
func (m *recordingMonitor) AfterFetch(docs []core.FetchedDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = docs
}
func (m *recordingMonitor) Finish(result *core.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

// orderedEmbedder returns vectors whose similarity to the query vector
// increases with the numeric suffix of the snippet ("snippet-0" scores
// lowest, "snippet-9" highest).
func orderedEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		var n int
		if _, err := fmt.Sscanf(text, "snippet-%d", &n); err == nil {
			return []float32{float32(n), 10}, nil
		}
		// Query vector: aligned with high-suffix snippets.
		return []float32{1, 0}, nil
	}
	return embedder
}

func newTestFetcher(t *testing.T) *fetch.Fetcher {
	t.Helper()
	f, err := fetch.NewFetcher(fetch.WithTimeout(5 * time.Second))
	require.NoError(t, err)
	return f
}

func TestNewPipeline(t *testing.T) {
	provider := &stubProvider{}
	embedder := mock.NewMockEmbedder()
	fetcher := newTestFetcher(t)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(provider, embedder, fetcher)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(nil, embedder, fetcher)
		assert.Equal(t, ErrProviderRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewPipeline(provider, nil, fetcher)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil fetcher", func(t *testing.T) {
		_, err := NewPipeline(provider, embedder, nil)
		assert.Equal(t, ErrFetcherRequired, err)
	})
}

func TestRun_TopKRankAndFetch(t *testing.T) {
	var (
		mu      sync.Mutex
		fetched []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetched = append(fetched, r.URL.Path)
		mu.Unlock()
		fmt.Fprintf(w, "<html><body><p>content of %s</p></body></html>", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	candidates := make([]core.Candidate, 10)
	for i := range candidates {
		candidates[i] = core.Candidate{
			URL:     fmt.Sprintf("%s/page-%d", srv.URL, i),
			Title:   fmt.Sprintf("Page %d", i),
			Snippet: fmt.Sprintf("snippet-%d", i),
		}
	}

	provider := &stubProvider{candidates: candidates}
	monitor := &recordingMonitor{}

	p, err := NewPipeline(provider, orderedEmbedder(), newTestFetcher(t), WithMonitor(monitor))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "rust borrow checker", 10, 3)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Exactly the 3 highest-scoring URLs were fetched.
	mu.Lock()
	assert.ElementsMatch(t, []string{"/page-9", "/page-8", "/page-7"}, fetched)
	mu.Unlock()

	// Result follows rank order regardless of fetch completion order.
	require.Len(t, result.Documents, 3)
	assert.Equal(t, srv.URL+"/page-9", result.Documents[0].URL)
	assert.Equal(t, srv.URL+"/page-8", result.Documents[1].URL)
	assert.Equal(t, srv.URL+"/page-7", result.Documents[2].URL)
	assert.False(t, result.Degraded)

	// Ranking saw all candidates, none dropped.
	assert.Len(t, monitor.ranked, 10)
	assert.Equal(t, []string{"rust borrow checker"}, monitor.queries)
}

func TestRun_ZeroCandidates(t *testing.T) {
	provider := &stubProvider{candidates: []core.Candidate{}}
	p, err := NewPipeline(provider, mock.NewMockEmbedder(), newTestFetcher(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "obscure query", 10, 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Documents)
	assert.False(t, result.Degraded)
}

func TestRun_ProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("backend down")}
	p, err := NewPipeline(provider, mock.NewMockEmbedder(), newTestFetcher(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "query", 10, 5)
	require.Error(t, err)
}

func TestRun_EmbedderUnavailable(t *testing.T) {
	provider := &stubProvider{candidates: []core.Candidate{
		{URL: "https://example.com", Snippet: "something"},
	}}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	}

	p, err := NewPipeline(provider, embedder, newTestFetcher(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "query", 10, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbedderUnavailable)
}

func TestRun_EmptyQuery(t *testing.T) {
	p, err := NewPipeline(&stubProvider{}, mock.NewMockEmbedder(), newTestFetcher(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "   ", 10, 5)
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestRun_SentinelScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>x</p></body></html>")
	}))
	t.Cleanup(srv.Close)

	candidates := []core.Candidate{
		{URL: srv.URL + "/no-snippet", Title: "No snippet"},
		{URL: srv.URL + "/broken", Snippet: "embed-fails"},
		{URL: srv.URL + "/good", Snippet: "snippet-5"},
	}

	embedder := orderedEmbedder()
	base := embedder.EmbedTextFunc
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "embed-fails" {
			return nil, errors.New("transient embedding failure")
		}
		return base(ctx, text)
	}

	monitor := &recordingMonitor{}
	p, err := NewPipeline(&stubProvider{candidates: candidates}, embedder, newTestFetcher(t),
		WithMonitor(monitor))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "query", 10, 3)
	require.NoError(t, err)

	// All three candidates survive scoring and ranking.
	require.Len(t, monitor.scored, 3)
	require.Len(t, monitor.ranked, 3)

	byURL := map[string]core.ScoredCandidate{}
	for _, sc := range monitor.scored {
		byURL[sc.URL] = sc
	}
	assert.False(t, byURL[srv.URL+"/no-snippet"].Scored)
	assert.Zero(t, byURL[srv.URL+"/no-snippet"].Score)
	assert.False(t, byURL[srv.URL+"/broken"].Scored)
	assert.Zero(t, byURL[srv.URL+"/broken"].Score)
	assert.True(t, byURL[srv.URL+"/good"].Scored)

	// The measured candidate ranks first.
	assert.Equal(t, srv.URL+"/good", monitor.ranked[0].URL)
	require.NotEmpty(t, result.Documents)
	assert.Equal(t, srv.URL+"/good", result.Documents[0].URL)
}

func TestRun_Clamping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>x</p></body></html>")
	}))
	t.Cleanup(srv.Close)

	candidates := make([]core.Candidate, 30)
	for i := range candidates {
		candidates[i] = core.Candidate{
			URL:     fmt.Sprintf("%s/page-%d", srv.URL, i),
			Snippet: fmt.Sprintf("snippet-%d", i),
		}
	}
	provider := &stubProvider{candidates: candidates}

	p, err := NewPipeline(provider, orderedEmbedder(), newTestFetcher(t))
	require.NoError(t, err)

	t.Run("numResults clamped to upper bound", func(t *testing.T) {
		_, err := p.Run(context.Background(), "query", 100, 5)
		require.NoError(t, err)
		assert.Equal(t, MaxNumResults, provider.lastLimit)
	})

	t.Run("topK clamped to numResults", func(t *testing.T) {
		result, err := p.Run(context.Background(), "query", 4, 50)
		require.NoError(t, err)
		assert.Equal(t, 4, provider.lastLimit)
		assert.LessOrEqual(t, len(result.Documents), 4)
	})

	t.Run("non-positive values use defaults", func(t *testing.T) {
		result, err := p.Run(context.Background(), "query", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, DefaultNumResults, provider.lastLimit)
		assert.Len(t, result.Documents, DefaultTopK)
	})
}

func TestRun_FailedFetchOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page-8" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		fmt.Fprintf(w, "<html><body><p>content of %s</p></body></html>", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	candidates := make([]core.Candidate, 10)
	for i := range candidates {
		candidates[i] = core.Candidate{
			URL:     fmt.Sprintf("%s/page-%d", srv.URL, i),
			Snippet: fmt.Sprintf("snippet-%d", i),
		}
	}

	p, err := NewPipeline(&stubProvider{candidates: candidates}, orderedEmbedder(), newTestFetcher(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "query", 10, 3)
	require.NoError(t, err)

	// page-8 failed: absent, no placeholder, order of the rest preserved.
	require.Len(t, result.Documents, 2)
	assert.Equal(t, srv.URL+"/page-9", result.Documents[0].URL)
	assert.Equal(t, srv.URL+"/page-7", result.Documents[1].URL)
}

func TestRun_DeadlineDegradesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "<html><body><p>slow</p></body></html>")
	}))
	t.Cleanup(srv.Close)

	candidates := []core.Candidate{
		{URL: srv.URL + "/slow", Snippet: "snippet-1"},
	}

	p, err := NewPipeline(&stubProvider{candidates: candidates}, orderedEmbedder(), newTestFetcher(t),
		WithDeadline(150*time.Millisecond))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "query", 10, 1)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Documents)
}
