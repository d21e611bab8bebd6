// Package chunkindex implements ChunkIndex: an in-process BM25 text index
// over emitted EntityChunks, giving the progressive-disclosure chunk store a
// queryable lexical surface. It is memory-only and never persisted to disk —
// a separate concern from the external embedding/vector backend.
package chunkindex

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/rlefko/semindex/internal/model"
)

// SearchHit is a single ranked match against the index.
type SearchHit struct {
	ChunkID    string
	EntityName string
	FilePath   string
	ChunkType  model.ChunkType
	Content    string
	Score      float64
	Highlights []string
}

// Index is an in-memory bleve index split into a metadata-chunk document
// type and an implementation-chunk document type, so a caller can restrict
// lexical search to the cheap tier before paying for the full-implementation
// tier.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

const (
	docTypeMetadata       = "metadata"
	docTypeImplementation = "implementation"
)

// New builds an empty in-memory ChunkIndex.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"
	content.Store = true
	content.Index = true
	content.IncludeTermVectors = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	stored := bleve.NewTextFieldMapping()
	stored.Analyzer = "keyword"
	stored.Store = true
	stored.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("entity_name", keyword)
	doc.AddFieldMappingsAt("file_path", keyword)
	doc.AddFieldMappingsAt("chunk_id", stored)
	doc.AddFieldMappingsAt("doc_type", keyword)

	im.DefaultMapping = doc
	return im
}

func docType(ct model.ChunkType) string {
	if ct == model.ChunkMetadata {
		return docTypeMetadata
	}
	return docTypeImplementation
}

type document struct {
	Type       string `json:"doc_type"`
	Content    string `json:"content"`
	EntityName string `json:"entity_name"`
	FilePath   string `json:"file_path"`
	ChunkID    string `json:"chunk_id"`
}

// Index adds or replaces chunks in the index, keyed by EntityChunk.ID.
func (x *Index) Index(chunks []model.EntityChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, c := range chunks {
		doc := document{
			Type:       docType(c.ChunkType),
			Content:    c.Content,
			EntityName: c.EntityName,
			FilePath:   c.Metadata.FilePath,
			ChunkID:    c.ID,
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("add chunk %s to batch: %w", c.ID, err)
		}
	}
	return x.index.Batch(batch)
}

// Delete removes chunks by ID, e.g. when a file is reparsed or removed.
func (x *Index) Delete(chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, id := range chunkIDs {
		batch.Delete(id)
	}
	return x.index.Batch(batch)
}

// Search runs a bleve query-string search across both chunk tiers, returning
// up to limit ranked hits with highlighted snippets.
func (x *Index) Search(query string, limit int) ([]SearchHit, error) {
	return x.search(query, limit, "")
}

// SearchMetadataOnly restricts the search to cheap metadata-tier chunks,
// the first step of progressive disclosure.
func (x *Index) SearchMetadataOnly(query string, limit int) ([]SearchHit, error) {
	return x.search(query, limit, docTypeMetadata)
}

func (x *Index) search(queryStr string, limit int, restrictType string) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 15
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	q := bleve.NewQueryStringQuery(queryStr)
	finalQuery := query.Query(q)
	if restrictType != "" {
		typeQuery := bleve.NewMatchQuery(restrictType)
		typeQuery.SetField("doc_type")
		finalQuery = bleve.NewConjunctionQuery(q, typeQuery)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	style := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &style
	req.Highlight.Fields = []string{"content"}
	req.Fields = []string{"content", "entity_name", "file_path", "chunk_id", "doc_type"}

	result, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Hits))
	for _, h := range result.Hits {
		chunkID, _ := h.Fields["chunk_id"].(string)
		content, _ := h.Fields["content"].(string)
		entityName, _ := h.Fields["entity_name"].(string)
		filePath, _ := h.Fields["file_path"].(string)
		typ, _ := h.Fields["doc_type"].(string)

		var highlights []string
		for _, snippets := range h.Fragments {
			highlights = append(highlights, snippets...)
			if len(highlights) >= 3 {
				break
			}
		}
		if len(highlights) > 3 {
			highlights = highlights[:3]
		}

		ct := model.ChunkImplementation
		if typ == docTypeMetadata {
			ct = model.ChunkMetadata
		}

		hits = append(hits, SearchHit{
			ChunkID:    chunkID,
			EntityName: entityName,
			FilePath:   filePath,
			ChunkType:  ct,
			Content:    content,
			Score:      h.Score,
			Highlights: highlights,
		})
	}
	return hits, nil
}

// Close releases the underlying bleve index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.index == nil {
		return nil
	}
	return x.index.Close()
}
