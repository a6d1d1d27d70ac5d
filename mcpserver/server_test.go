package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/webrag/core"
)

// stubService is a canned RAGService for handler tests.
type stubService struct {
	result      *core.Result
	err         error
	docs        []core.FetchedDocument
	lastQuery   string
	lastNum     int
	lastTopK    int
	fetchedURLs []string
}

func (s *stubService) Search(ctx context.Context, query string, numResults, topK int) (*core.Result, error) {
	s.lastQuery = query
	s.lastNum = numResults
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) FetchURLs(ctx context.Context, urls []string) []core.FetchedDocument {
	s.fetchedURLs = urls
	return s.docs
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestRagSearchHandler(t *testing.T) {
	t.Run("returns documents as json", func(t *testing.T) {
		service := &stubService{result: &core.Result{Documents: []core.FetchedDocument{
			{URL: "https://example.com/a", Text: "alpha", Truncated: false},
			{URL: "https://example.com/b", Text: "beta", Truncated: true},
		}}}
		handler := ragSearchHandler(service)

		result, err := handler(context.Background(), callRequest(map[string]any{
			"query":       "rust borrow checker",
			"num_results": 10,
			"top_k":       2,
		}))
		require.NoError(t, err)

		var docs []core.FetchedDocument
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &docs))
		require.Len(t, docs, 2)
		assert.Equal(t, "https://example.com/a", docs[0].URL)
		assert.True(t, docs[1].Truncated)

		assert.Equal(t, "rust borrow checker", service.lastQuery)
		assert.Equal(t, 10, service.lastNum)
		assert.Equal(t, 2, service.lastTopK)
	})

	t.Run("missing optional arguments default to zero", func(t *testing.T) {
		service := &stubService{result: &core.Result{Documents: []core.FetchedDocument{}}}
		handler := ragSearchHandler(service)

		_, err := handler(context.Background(), callRequest(map[string]any{"query": "q"}))
		require.NoError(t, err)
		// The pipeline maps non-positive values to its own defaults.
		assert.Zero(t, service.lastNum)
		assert.Zero(t, service.lastTopK)
	})

	t.Run("pipeline failure becomes structured error object", func(t *testing.T) {
		service := &stubService{err: errors.New("embedder unavailable: model not loaded")}
		handler := ragSearchHandler(service)

		result, err := handler(context.Background(), callRequest(map[string]any{"query": "q"}))
		require.NoError(t, err, "precondition failures must not surface as protocol errors")

		var errObj map[string]string
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &errObj))
		assert.Contains(t, errObj["error"], "embedder unavailable")
	})
}

func TestFetchURLsHandler(t *testing.T) {
	service := &stubService{docs: []core.FetchedDocument{
		{URL: "https://example.com", Text: "content"},
	}}
	handler := fetchURLsHandler(service)

	result, err := handler(context.Background(), callRequest(map[string]any{
		"urls": []any{"https://example.com", "https://example.org"},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com", "https://example.org"}, service.fetchedURLs)

	var docs []core.FetchedDocument
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "content", docs[0].Text)
}

func TestNewRegistersTools(t *testing.T) {
	srv := New(&stubService{}, "test")
	assert.NotNil(t, srv)
}
