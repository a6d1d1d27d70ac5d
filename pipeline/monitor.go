package pipeline

import "github.com/poiesic/webrag/core"

// Monitor provides hooks to observe a pipeline run.
// Implement this interface to track intermediate stages and results.
type Monitor interface {
	Start(query string)
	AfterSearch(candidates []core.Candidate)
	AfterScoring(scored []core.ScoredCandidate)
	AfterRanking(ranked []core.ScoredCandidate)
	AfterFetch(docs []core.FetchedDocument)
	Finish(result *core.Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterSearch(_ []core.Candidate)        {}
func (n *noopMonitor) AfterScoring(_ []core.ScoredCandidate) {}
func (n *noopMonitor) AfterRanking(_ []core.ScoredCandidate) {}
func (n *noopMonitor) AfterFetch(_ []core.FetchedDocument)   {}
func (n *noopMonitor) Finish(_ *core.Result)                 {}
