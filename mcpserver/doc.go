// Package mcpserver exposes the retrieval pipeline as MCP tools over a
// stdio transport, so any MCP-capable agent can call rag_search and
// fetch_urls.
//
// Pipeline precondition failures (embedding model unavailable, search
// backend down) are returned as a structured {"error": ...} object in the
// tool result rather than as protocol errors.
package mcpserver
