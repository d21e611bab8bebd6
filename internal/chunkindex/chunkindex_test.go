package chunkindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlefko/semindex/internal/model"
)

func sampleChunks() []model.EntityChunk {
	return []model.EntityChunk{
		{
			ID:         "chunk-impl-1",
			EntityName: "parseWidget",
			ChunkType:  model.ChunkImplementation,
			Content:    "func parseWidget(source []byte) (*Widget, error) { return decode(source) }",
			Metadata:   model.ChunkInfo{EntityType: model.EntityFunction, FilePath: "widget.go"},
		},
		{
			ID:         "chunk-meta-1",
			EntityName: "parseWidget",
			ChunkType:  model.ChunkMetadata,
			Content:    "Function parseWidget in widget.go",
			Metadata:   model.ChunkInfo{EntityType: model.EntityFunction, FilePath: "widget.go"},
		},
		{
			ID:         "chunk-impl-2",
			EntityName: "renderGizmo",
			ChunkType:  model.ChunkImplementation,
			Content:    "func renderGizmo(g *Gizmo) string { return g.Label }",
			Metadata:   model.ChunkInfo{EntityType: model.EntityFunction, FilePath: "gizmo.go"},
		},
	}
}

func TestIndexAndSearchFindsMatchingChunk(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Index(sampleChunks()))

	hits, err := idx.Search("parseWidget", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	var sawImpl, sawMeta bool
	for _, h := range hits {
		assert.Equal(t, "parseWidget", h.EntityName)
		if h.ChunkType == model.ChunkImplementation {
			sawImpl = true
		}
		if h.ChunkType == model.ChunkMetadata {
			sawMeta = true
		}
	}
	assert.True(t, sawImpl, "expected an implementation-tier hit")
	assert.True(t, sawMeta, "expected a metadata-tier hit")
}

func TestSearchMetadataOnlyRestrictsTier(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Index(sampleChunks()))

	hits, err := idx.SearchMetadataOnly("parseWidget", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, model.ChunkMetadata, h.ChunkType)
	}
}

func TestDeleteRemovesChunkFromIndex(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	chunks := sampleChunks()
	require.NoError(t, idx.Index(chunks))
	require.NoError(t, idx.Delete([]string{"chunk-impl-2"}))

	hits, err := idx.Search("renderGizmo", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexEmptyChunksIsNoop(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	assert.NoError(t, idx.Index(nil))
}
