package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyrag/types"
)

func TestSplitWindowsAndOverlap(t *testing.T) {
	c := New(10, 3)
	doc := types.Document{SourceID: "a.txt", Content: strings.Repeat("abcdefg", 5)}

	chunks := c.Split([]types.Document{doc})
	require.NotEmpty(t, chunks)

	for i, ch := range chunks {
		assert.Equal(t, "a.txt", ch.SourceID)
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, len([]rune(ch.Content)), 10)
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		cur := []rune(chunks[i].Content)
		require.GreaterOrEqual(t, len(prev), 3)
		assert.Equal(t, string(prev[len(prev)-3:]), string(cur[:3]))
	}
}

func TestSplitJoinReconstructs(t *testing.T) {
	c := New(50, 10)
	content := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	chunks := c.Split([]types.Document{{SourceID: "doc", Content: content}})

	assert.Equal(t, content, c.Join(chunks))
}

func TestSplitDeterministic(t *testing.T) {
	c := New(100, 20)
	docs := []types.Document{
		{SourceID: "one", Content: strings.Repeat("alpha beta gamma ", 30)},
		{SourceID: "two", Content: strings.Repeat("delta epsilon ", 40)},
	}
	assert.Equal(t, c.Split(docs), c.Split(docs))
}

func TestSplitPerDocumentIndexes(t *testing.T) {
	c := New(10, 0)
	docs := []types.Document{
		{SourceID: "one", Content: strings.Repeat("x", 25)},
		{SourceID: "two", Content: strings.Repeat("y", 15)},
	}
	chunks := c.Split(docs)
	require.Len(t, chunks, 5)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, "two", chunks[3].SourceID)
	assert.Equal(t, 0, chunks[3].Index)
}

func TestSplitSkipsBlankDocuments(t *testing.T) {
	c := New(10, 2)
	chunks := c.Split([]types.Document{{SourceID: "blank", Content: "   \n\t "}})
	assert.Empty(t, chunks)
}

func TestSplitShortDocumentSingleChunk(t *testing.T) {
	c := New(1000, 200)
	chunks := c.Split([]types.Document{{SourceID: "s", Content: "short text"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
}

func TestNewClampsOverlap(t *testing.T) {
	chunks := New(10, 10).Split([]types.Document{{SourceID: "s", Content: strings.Repeat("z", 30)}})
	assert.NotEmpty(t, chunks)

	chunks = New(10, -5).Split([]types.Document{{SourceID: "s", Content: strings.Repeat("z", 30)}})
	require.Len(t, chunks, 3)
}

func TestSplitUnicodeBoundaries(t *testing.T) {
	c := New(4, 1)
	content := "héllö wörld ünïcödé"
	chunks := c.Split([]types.Document{{SourceID: "u", Content: content}})
	require.NotEmpty(t, chunks)
	assert.Equal(t, content, c.Join(chunks))
	for _, ch := range chunks {
		assert.True(t, len([]rune(ch.Content)) <= 4)
	}
}
