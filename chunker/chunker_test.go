package chunker

import (
	"strings"
	"testing"

	"github.com/quarrylabs/corpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBoundaries(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks, err := Chunk(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Windows are [0,1000), [800,1800), [1600,2500).
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)
}

func TestChunkLosslessReconstruction(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2500; i++ {
		sb.WriteRune(rune('a' + i%26))
	}
	text := sb.String()

	chunks, err := Chunk(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Concatenating each chunk's non-overlapping span rebuilds the input.
	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[200:]
	}
	assert.Equal(t, text, rebuilt)
}

func TestChunkDropsWhitespaceOnlyWindows(t *testing.T) {
	text := strings.Repeat("x", 900) + strings.Repeat(" ", 900)

	chunks, err := Chunk(text, 1000, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	// The kept window is untrimmed.
	assert.Len(t, chunks[0], 1000)
}

func TestChunkShortText(t *testing.T) {
	chunks, err := Chunk("short", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestChunkEmptyText(t *testing.T) {
	chunks, err := Chunk("", 1000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkCountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("é", 10)

	chunks, err := Chunk(text, 4, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "éééé", chunks[0])
	assert.Equal(t, "éééé", chunks[1])
	assert.Equal(t, "éé", chunks[2])
}

func TestChunkDeterminism(t *testing.T) {
	text := strings.Repeat("deterministic input ", 200)

	first, err := Chunk(text, 256, 64)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Chunk(text, 256, 64)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestChunkInvalidParameters(t *testing.T) {
	_, err := Chunk("text", 0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Chunk("text", 100, 100)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Chunk("text", 100, 200)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Chunk("text", 100, -1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
