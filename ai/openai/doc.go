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


// Package openai provides AI service implementations backed by
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, OpenAI, etc).
//
// The embedder and summarizer run against locally hosted models by default
// (http://localhost:11434/v1, Ollama's OpenAI-compatible endpoint), so the
// pipeline works without any cloud credentials.
package openai
