package rag

import (
	"time"

	"github.com/reddygtvs/Archived-News-RAG/retrieval"
)

// RAGResult is the caller-facing outcome of a grounded generation.
type RAGResult struct {
	Answer             string
	Sources            []retrieval.Summary
	RetrievalDuration  time.Duration
	GenerationDuration time.Duration
	ContextChars       int
}

// CombinedResult carries both answers produced by a single combined call.
type CombinedResult struct {
	Standard           string
	RAG                string
	Sources            []retrieval.Summary
	RetrievalDuration  time.Duration
	GenerationDuration time.Duration
	ContextChars       int
}
