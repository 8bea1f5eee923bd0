package search

import "github.com/poiesic/logscope/core"

// SearchMonitor provides hooks to observe the semantic search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(question string, filter core.Filter)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(results []*core.SearchResult)
	Finish(results []*core.SearchResult, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Filter)            {}
func (n *noopMonitor) AfterEmbedding(_ []float32)               {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult, _ error)   {}
