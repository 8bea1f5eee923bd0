package search

// Result caps for each retrieval path.
const (
	ProjectLimit       = 100
	DumpLimit          = 50
	UniqueLimit        = 1000
	SemanticLimit      = 15
	SemanticCandidates = 100
)
