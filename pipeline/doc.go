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


// Package pipeline orchestrates the retrieval-augmentation pipeline:
//
//	search → score → rank → fetch → assemble
//
// The pipeline coordinates concurrent embedding and fetch work, tolerates
// partial failure at the item level, and produces a deterministic final
// ordering (rank order) from concurrently completed work. Failures that
// make any result impossible — the search provider call failing outright,
// or the embedder being unusable for the query — abort the invocation with
// an error; everything else degrades gracefully.
//
// Every stage produces a new collection rather than mutating its input, so
// callers may retain references to intermediate data safely.
package pipeline
