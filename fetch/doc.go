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


// Package fetch retrieves and normalizes web page content.
//
// The Fetcher runs a bounded worker pool per batch, applies an independent
// timeout to every request, extracts readable text (script and style
// content excluded, whitespace collapsed), and caps the result at a
// configurable length. Failures are contained per URL: a batch never
// returns an error, only the documents that succeeded.
//
// An optional summarization hook can condense extracted text; hook
// failures fall back to the extracted text.
package fetch
