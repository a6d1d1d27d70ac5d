package core

// Candidate is a single raw search result returned by a search provider,
// before any scoring has happened.
type Candidate struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ScoredCandidate pairs a Candidate with its similarity score against the
// query. Scores are comparable only within a single pipeline run.
//
// Scored distinguishes a measured score from the 0.0 sentinel assigned when
// scoring could not be performed (missing snippet, embedding failure).
type ScoredCandidate struct {
	Candidate
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`
}

// FetchedDocument is the extracted text content of a single URL.
// Text has script and style content removed and whitespace collapsed.
// Truncated is true when the content length cap was applied.
type FetchedDocument struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// Result is the final artifact of a pipeline run: documents for the
// top-ranked candidates that fetched successfully, in rank order.
//
// Degraded is true when an end-to-end deadline expired before all work
// completed and the result is a partial view.
type Result struct {
	Documents []FetchedDocument `json:"documents"`
	Degraded  bool              `json:"degraded,omitempty"`
}
