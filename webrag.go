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


package webrag

import (
	"context"
	"log/slog"

	"github.com/poiesic/webrag/ai"
	"github.com/poiesic/webrag/ai/openai"
	"github.com/poiesic/webrag/core"
	"github.com/poiesic/webrag/fetch"
	"github.com/poiesic/webrag/pipeline"
	"github.com/poiesic/webrag/websearch"
)

// Service wires a search provider, embedder, and fetcher into a ready
// retrieval pipeline. It owns the AI provider's lifecycle.
type Service struct {
	provider ai.AIProvider
	fetcher  *fetch.Fetcher
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig     *ai.Config
	search       websearch.Provider
	summarize    bool
	fetchOpts    []fetch.Option
	pipelineOpts []pipeline.Option
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithSearchProvider overrides the search backend.
// Default is the DuckDuckGo HTML provider.
func WithSearchProvider(provider websearch.Provider) ServiceOption {
	return func(o *serviceOptions) {
		if provider != nil {
			o.search = provider
		}
	}
}

// WithSummarization enables the summarization hook on fetched content.
// Default is off.
func WithSummarization(enabled bool) ServiceOption {
	return func(o *serviceOptions) {
		o.summarize = enabled
	}
}

// WithFetchOptions appends options for the content fetcher.
func WithFetchOptions(opts ...fetch.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.fetchOpts = append(o.fetchOpts, opts...)
	}
}

// WithPipelineOptions appends options for the pipeline.
func WithPipelineOptions(opts ...pipeline.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// NewService creates a fully wired retrieval service. The embedding model
// is probed during construction; an unavailable model fails here rather
// than on the first query.
func NewService(opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}

	fetchOpts := options.fetchOpts
	if options.summarize {
		fetchOpts = append(fetchOpts, fetch.WithSummarizer(provider.Summarizer()))
	}
	fetcher, err := fetch.NewFetcher(fetchOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	search := options.search
	if search == nil {
		search = websearch.NewDuckDuckGo()
	}

	pipe, err := pipeline.NewPipeline(search, provider.Embedder(), fetcher, options.pipelineOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &Service{
		provider: provider,
		fetcher:  fetcher,
		pipeline: pipe,
		logger:   slog.Default().With("component", "webrag"),
	}, nil
}

// Search runs one retrieval pipeline invocation.
func (s *Service) Search(ctx context.Context, query string, numResults, topK int) (*core.Result, error) {
	return s.pipeline.Run(ctx, query, numResults, topK)
}

// FetchURLs retrieves content for the given URLs directly, bypassing
// search and ranking.
func (s *Service) FetchURLs(ctx context.Context, urls []string) []core.FetchedDocument {
	return s.fetcher.FetchAll(ctx, urls)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	return s.provider.Close()
}
