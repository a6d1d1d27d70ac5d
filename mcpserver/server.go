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


package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/poiesic/webrag/core"
	"github.com/poiesic/webrag/pipeline"
)

// RAGService is the pipeline surface exposed over MCP.
// *webrag.Service satisfies it.
type RAGService interface {
	// Search runs one retrieval pipeline invocation.
	Search(ctx context.Context, query string, numResults, topK int) (*core.Result, error)

	// FetchURLs retrieves content for URLs directly, bypassing ranking.
	FetchURLs(ctx context.Context, urls []string) []core.FetchedDocument
}

// errorResult is the structured error object returned to the calling agent
// when a pipeline precondition fails. Precondition failures are data, not
// protocol errors: the agent should be able to react programmatically.
type errorResult struct {
	Error string `json:"error"`
}

// New creates an MCP server exposing the rag_search and fetch_urls tools.
func New(service RAGService, version string) *server.MCPServer {
	srv := server.NewMCPServer("RAG Web Search", version)

	ragSearch := mcp.NewTool("rag_search",
		mcp.WithDescription("Search the web for a query and return the content of the most "+
			"semantically relevant pages, ranked by embedding similarity."),
		mcp.WithString("query", mcp.Required(),
			mcp.Description("The query to search for.")),
		mcp.WithNumber("num_results",
			mcp.Description(fmt.Sprintf("Number of search results to consider (default %d, max %d).",
				pipeline.DefaultNumResults, pipeline.MaxNumResults))),
		mcp.WithNumber("top_k",
			mcp.Description(fmt.Sprintf("Number of top-ranked results to fetch content for (default %d).",
				pipeline.DefaultTopK))),
	)
	srv.AddTool(ragSearch, ragSearchHandler(service))

	fetchURLs := mcp.NewTool("fetch_urls",
		mcp.WithDescription("Fetch and extract readable text content from a list of URLs concurrently."),
		mcp.WithArray("urls", mcp.Required(),
			mcp.Description("The URLs to fetch content from.")),
	)
	srv.AddTool(fetchURLs, fetchURLsHandler(service))

	return srv
}

// ragSearchHandler adapts the pipeline to the MCP tool contract.
func ragSearchHandler(service RAGService) server.ToolHandlerFunc {
	logger := slog.Default().With("component", "mcp-server")

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		query := cast.ToString(args["query"])
		numResults := cast.ToInt(args["num_results"])
		topK := cast.ToInt(args["top_k"])

		result, err := service.Search(ctx, query, numResults, topK)
		if err != nil {
			logger.Error("rag_search failed", "query", query, "err", err)
			return jsonResult(errorResult{Error: err.Error()})
		}

		return jsonResult(result.Documents)
	}
}

// fetchURLsHandler exposes the fetcher directly.
func fetchURLsHandler(service RAGService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := cast.ToStringSlice(req.GetArguments()["urls"])
		docs := service.FetchURLs(ctx, raw)
		return jsonResult(docs)
	}
}

// jsonResult serializes v as the tool's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(srv *server.MCPServer) error {
	return server.ServeStdio(srv)
}
