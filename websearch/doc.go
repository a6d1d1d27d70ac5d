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


// Package websearch provides web search backends for the retrieval pipeline.
//
// A backend implements the Provider interface and returns raw candidates
// (url, title, snippet) for a query. The pipeline treats providers as
// opaque: an outright call failure aborts the invocation, while an empty
// result set flows through as a valid outcome.
//
// The default backend scrapes DuckDuckGo's HTML endpoint, which needs no
// API key or account.
package websearch
