package models

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	SourceFile string
	PageNumber int
	ChunkID    int
}

// RetrievedChunk is a chunk returned from the index with its
// per-query similarity score. The page label is carried as a string
// because loaded indexes may hold documents without page metadata.
type RetrievedChunk struct {
	Content    string
	SourceFile string
	PageLabel  string
	Score      float32
}

// AnswerResult is the output of the query pipeline. Plain mode fills
// Text; decision mode fills JSON, which is either a parsed decision
// object or the {"raw": ...} fallback when repair also failed.
type AnswerResult struct {
	Text    string
	JSON    map[string]any
	Sources []RetrievedChunk
}
