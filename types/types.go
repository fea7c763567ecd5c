package types

// Document is one loaded corpus file. SourceID is the file name, unique
// within a single load.
type Document struct {
	SourceID string
	Content  string
}

// Chunk is a contiguous slice of a document's content. Chunks of one
// document, concatenated in Index order with the overlap removed,
// reconstruct the document.
type Chunk struct {
	SourceID string
	Content  string
	Index    int
}

// EmbeddingCache is the persisted embedding record. ChunkTexts and
// Vectors are parallel arrays aligned to the chunk sequence of the corpus
// snapshot they were computed from.
type EmbeddingCache struct {
	ChunkTexts []string
	Vectors    [][]float32
}

// Valid reports whether the record can be reused for a corpus with the
// given chunk count. Count equality is the only staleness check: an edit
// that keeps the chunk count but changes content is not detected.
func (c *EmbeddingCache) Valid(chunkCount int) bool {
	return c != nil &&
		len(c.ChunkTexts) == chunkCount &&
		len(c.Vectors) == chunkCount
}

// Retrieved is a chunk paired with its relevance under the active index.
type Retrieved struct {
	Chunk Chunk
	Score float64
}

// AnswerKind classifies the outcome of an Answer call so that callers can
// distinguish failure modes programmatically while the text stays
// user-facing.
type AnswerKind string

const (
	AnswerOK         AnswerKind = "ok"
	AnswerEmptyQuery AnswerKind = "empty_query"
	AnswerNoResults  AnswerKind = "no_results"
	AnswerOverloaded AnswerKind = "overloaded"
	AnswerError      AnswerKind = "error"
)

// Answer is the terminal result of one answer call. Text is always safe
// to show to the end user; no answer path surfaces an error past the
// synthesizer boundary.
type Answer struct {
	Kind    AnswerKind `json:"kind"`
	Text    string     `json:"text"`
	Sources []Source   `json:"sources"`
}
