package langparser

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rlefko/semindex/internal/model"
)

// contentArrayKeys are the top-level array names that switch JSON parsing
// into content-collection mode: one DOCUMENTATION entity and implementation
// chunk per array item instead of the generic dotted-key walk.
var contentArrayKeys = []string{
	"topics", "posts", "articles", "comments", "messages", "threads",
	"forums", "site_pages", "items", "content", "chunks",
}

// JSONParser implements the JSON row of the per-language extraction matrix:
// no code entities, only a DOCUMENTATION entity per key path, plus special
// handling for package.json dependencies, tsconfig.json compiler options,
// and content-collection documents (§4.8).
type JSONParser struct{}

// NewJSON builds the JSON parser.
func NewJSON() *JSONParser { return &JSONParser{} }

func (p *JSONParser) Language() string             { return "json" }
func (p *JSONParser) SupportedExtensions() []string { return []string{".json"} }

func (p *JSONParser) CanParse(filePath string) bool {
	return strings.HasSuffix(filePath, ".json")
}

// Parse decodes source as JSON and emits one DOCUMENTATION entity per key
// path (arrays as "<path>[]"). package.json "dependencies"/"devDependencies"
// entries additionally produce IMPORTS relations tagged npm_dependency;
// tsconfig.json "compilerOptions" entries are surfaced as entities with a
// compiler_option metadata tag.
func (p *JSONParser) Parse(filePath string, source []byte) (result *model.ParseResult, err error) {
	start := time.Now()
	result = &model.ParseResult{FilePath: filePath}
	defer func() {
		if r := recover(); r != nil {
			result.AddError(fmt.Sprintf("panic parsing %s: %v", filePath, r))
		}
		result.ParsingTime = time.Since(start).Seconds()
	}()

	sum := sha256.Sum256(source)
	result.FileHash = hex.EncodeToString(sum[:])

	var doc any
	if err := json.Unmarshal(source, &doc); err != nil {
		result.AddError(fmt.Sprintf("invalid JSON: %v", err))
		return result, nil
	}

	base := filepath.Base(filePath)
	contentMode := false
	if m, ok := doc.(map[string]any); ok && hasContentArrays(m) {
		contentMode = true
		entities, chunks := p.extractContentItems(m, filePath, source)
		result.Entities = entities
		result.ImplementationChunks = chunks
	} else {
		p.walk(doc, "", filePath, result)
		if base == "package.json" {
			if m, ok := doc.(map[string]any); ok {
				p.emitDependencies(m, "dependencies", "npm_dependency", filePath, result)
				p.emitDependencies(m, "devDependencies", "npm_dependency", filePath, result)
			}
		}
	}

	fileMeta := map[string]any{"has_implementation": contentMode}
	if contentMode {
		fileMeta["content_type"] = "content_collection"
	}
	result.Entities = append([]model.Entity{{
		Name:       filePath,
		EntityType: model.EntityFile,
		FilePath:   filePath,
		LineNumber: 1,
		Metadata:   fileMeta,
	}}, result.Entities...)

	return result, nil
}

// hasContentArrays reports whether doc carries any of the content-collection
// array keys at the top level.
func hasContentArrays(m map[string]any) bool {
	for _, key := range contentArrayKeys {
		if _, ok := m[key].([]any); ok {
			return true
		}
	}
	return false
}

// extractContentItems implements §4.8's content-collection mode: every
// object in a content array becomes a DOCUMENTATION entity plus an
// implementation chunk holding its extracted text. Without a streaming
// callback (out of scope here), items are accumulated and returned; when no
// array yields a usable item, a single whole-file chunk is emitted instead.
func (p *JSONParser) extractContentItems(m map[string]any, filePath string, source []byte) ([]model.Entity, []model.EntityChunk) {
	var entities []model.Entity
	var chunks []model.EntityChunk
	count := 0
	for _, key := range contentArrayKeys {
		arr, ok := m[key].([]any)
		if !ok {
			continue
		}
		singular := strings.TrimSuffix(key, "s")
		for i, raw := range arr {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			content := contentItemText(item)
			if content == "" {
				continue
			}
			name := contentEntityName(singular, item, i)
			entities = append(entities, model.Entity{
				Name:         name,
				EntityType:   model.EntityDocumentation,
				FilePath:     filePath,
				LineNumber:   1,
				Observations: []string{fmt.Sprintf("%s: %s", capitalize(singular), name)},
				Metadata: map[string]any{
					"content_type": singular,
					"item_index":   i,
					"source_array": key,
				},
			})
			chunks = append(chunks, model.EntityChunk{
				ID:         model.ChunkID(filePath, model.EntityDocumentation, name, model.ChunkImplementation, 1, 1),
				EntityName: name,
				ChunkType:  model.ChunkImplementation,
				Content:    content,
				Metadata: model.ChunkInfo{
					EntityType: model.EntityDocumentation,
					FilePath:   filePath,
					StartLine:  1,
					EndLine:    1,
				},
			})
			count++
		}
	}
	if count == 0 {
		chunks = append(chunks, model.EntityChunk{
			ID:         model.ChunkID(filePath, model.EntityFile, filePath, model.ChunkImplementation, 1, 1),
			EntityName: filePath,
			ChunkType:  model.ChunkImplementation,
			Content:    string(source),
			Metadata: model.ChunkInfo{
				EntityType: model.EntityFile,
				FilePath:   filePath,
				StartLine:  1,
				EndLine:    1,
			},
		})
	}
	return entities, chunks
}

// contentEntityName mirrors the original's naming preference order: a
// chunk_number field, then title-like fields, then id-like fields, then a
// plain index fallback.
func contentEntityName(singular string, item map[string]any, index int) string {
	titleFields := []string{"title", "subject", "name", "headline"}
	if cn, ok := item["chunk_number"]; ok {
		for _, field := range titleFields {
			if s, ok := item[field].(string); ok {
				if t := cleanTitle(s); t != "" {
					return fmt.Sprintf("%s_%v_%s", singular, cn, t)
				}
			}
		}
		return fmt.Sprintf("%s_%v", singular, cn)
	}
	for _, field := range titleFields {
		if s, ok := item[field].(string); ok {
			if t := cleanTitle(s); t != "" {
				return fmt.Sprintf("%s_%d_%s", singular, index+1, t)
			}
		}
	}
	for _, field := range []string{"id", "_id", "post_id", "article_id"} {
		if v, ok := item[field]; ok {
			return fmt.Sprintf("%s_%v", singular, v)
		}
	}
	return fmt.Sprintf("%s_%d", singular, index+1)
}

func cleanTitle(s string) string {
	t := strings.ReplaceAll(s, "\n", " ")
	t = strings.ReplaceAll(t, "\r", "")
	t = strings.TrimSpace(t)
	if len(t) > 100 {
		t = t[:100]
	}
	return t
}

// contentItemText concatenates an item's primary content fields, prefixed by
// its title field if present. HTML stripping and author/nested-reply
// enrichment are not reproduced here (see DESIGN.md).
func contentItemText(item map[string]any) string {
	var parts []string
	for _, field := range []string{"title", "subject", "name", "headline"} {
		if s, ok := item[field].(string); ok {
			if t := strings.TrimSpace(s); t != "" {
				parts = append(parts, "Title: "+t)
				break
			}
		}
	}
	for _, field := range []string{"content", "body", "text", "message", "description"} {
		if s, ok := item[field].(string); ok {
			if t := strings.TrimSpace(s); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (p *JSONParser) walk(v any, path string, filePath string, result *model.ParseResult) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			p.emitKey(childPath, filePath, result, filepath.Base(filePath) == "tsconfig.json" && path == "compilerOptions")
			p.walk(t[k], childPath, filePath, result)
		}
	case []any:
		arrPath := path + "[]"
		p.emitKey(arrPath, filePath, result, false)
		for _, item := range t {
			p.walk(item, path, filePath, result)
		}
	}
}

func (p *JSONParser) emitKey(path, filePath string, result *model.ParseResult, isCompilerOption bool) {
	meta := map[string]any{}
	if isCompilerOption {
		meta["compiler_option"] = true
	}
	result.Entities = append(result.Entities, model.Entity{
		Name:       path,
		EntityType: model.EntityDocumentation,
		FilePath:   filePath,
		LineNumber: 1,
		Metadata:   meta,
	})
}

func (p *JSONParser) emitDependencies(m map[string]any, field, importType, filePath string, result *model.ParseResult) {
	deps, ok := m[field].(map[string]any)
	if !ok {
		return
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result.Relations = append(result.Relations, model.Relation{
			FromEntity:   filePath,
			ToEntity:     name,
			RelationType: model.RelationImports,
			Metadata:     map[string]any{"import_type": importType},
		})
	}
}
