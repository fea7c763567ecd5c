// Package chunker splits loaded documents into overlapping fixed-size
// windows sized for the embedding model and the prompt context budget.
package chunker

import (
	"log/slog"
	"strings"

	"policyrag/types"
)

// Chunker produces character windows of Size runes with Overlap runes
// shared between consecutive windows. No window spans two documents.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Overlap is clamped into [0, size) with a warning
// rather than failing: a misconfigured overlap should degrade chunk
// quality, not ingestion.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		slog.Warn("chunk overlap out of range, clamping", "size", size, "overlap", overlap)
		if overlap < 0 {
			overlap = 0
		} else {
			overlap = size - 1
		}
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split chunks every document in input order. Within a document the chunk
// Index starts at 0 and increases by window position, so concatenating a
// document's chunks in Index order with the overlap removed reconstructs
// its content. Deterministic: equal input gives equal output.
func (c *Chunker) Split(docs []types.Document) []types.Chunk {
	var chunks []types.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.splitOne(doc)...)
	}
	return chunks
}

func (c *Chunker) splitOne(doc types.Document) []types.Chunk {
	runes := []rune(doc.Content)
	if len(strings.TrimSpace(doc.Content)) == 0 {
		return nil
	}

	var chunks []types.Chunk
	step := c.size - c.overlap
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, types.Chunk{
			SourceID: doc.SourceID,
			Content:  string(runes[start:end]),
			Index:    idx,
		})
		idx++
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Join reassembles a document's content from its chunks, dropping the
// leading overlap of every chunk after the first. Chunks must belong to
// one document and be in Index order.
func (c *Chunker) Join(chunks []types.Chunk) string {
	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch.Content)
		if i == 0 {
			b.WriteString(ch.Content)
			continue
		}
		if len(runes) > c.overlap {
			b.WriteString(string(runes[c.overlap:]))
		}
	}
	return b.String()
}
