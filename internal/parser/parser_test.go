package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkContent_ShortContentSingleChunk(t *testing.T) {
	chunks := chunkContent("AC-1.1 Short policy text.", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "AC-1.1 Short policy text.", chunks[0])
}

func TestChunkContent_EmptyAndInvalid(t *testing.T) {
	assert.Nil(t, chunkContent("", 1000, 200))
	assert.Nil(t, chunkContent("   \n\t ", 1000, 200))
	assert.Nil(t, chunkContent("some text", 0, 0))
	assert.Nil(t, chunkContent("some text", -5, 0))
}

func TestChunkContent_OverlapBetweenChunks(t *testing.T) {
	content := strings.Repeat("policy word ", 100) // 1200 chars
	chunks := chunkContent(content, 300, 100)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share text because of the overlap window.
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1][len(chunks[i-1])-20:]
		assert.Contains(t, chunks[i], tail, "chunk %d carries the tail of chunk %d", i, i-1)
	}
	// All content is covered.
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "policy word")
}

func TestChunkContent_BreaksAtWordBoundary(t *testing.T) {
	content := strings.Repeat("alpha beta gamma delta ", 50)
	chunks := chunkContent(content, 100, 20)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		last := chunk[len(chunk)-1]
		assert.NotEqual(t, byte(' '), last, "chunks are trimmed")
	}
}

func TestChunkContent_ExcessiveOverlapClamped(t *testing.T) {
	content := strings.Repeat("x y z ", 200)
	// overlap >= maxChars would loop forever without the clamp
	chunks := chunkContent(content, 100, 100)
	assert.NotEmpty(t, chunks)
}

func TestGetChunks_TagsMetadata(t *testing.T) {
	p := New(50, 10)
	chunks := p.getChunks(strings.Repeat("policy text ", 20), "sop.pdf", 4)
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, "sop.pdf", chunk.SourceFile)
		assert.Equal(t, 4, chunk.PageNumber)
		assert.Equal(t, i+1, chunk.ChunkID)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestParseDir_NoPDFs(t *testing.T) {
	chunks, err := New(0, 0).ParseDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNew_Defaults(t *testing.T) {
	p := New(0, -1)
	assert.Equal(t, defaultChunkSize, p.chunkSize)
	assert.Equal(t, defaultChunkOverlap, p.chunkOverlap)
}
