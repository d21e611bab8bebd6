package langparser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/rlefko/semindex/internal/model"
	"github.com/rlefko/semindex/internal/observation"
)

// skipLoopNames mirrors the curly-brace matrix row's "skip common loop
// counters" rule for module-level VARIABLE extraction.
var skipLoopNames = map[string]struct{}{
	"i": {}, "j": {}, "k": {}, "index": {}, "item": {}, "key": {}, "value": {},
	"temp": {}, "tmp": {},
}

// mathAllowlist are one-character names kept despite the "skip 1-char names"
// rule because they read as meaningful in numeric code.
var mathAllowlist = map[string]struct{}{"x": {}, "y": {}, "z": {}, "n": {}}

// jsonLoaderCallees maps the typed/curly-brace row's dynamic JSON-loading
// callees to their import_type tag, per §4.8.
var jsonLoaderCallees = map[string]string{
	"fetch":      "json_fetch",
	"require":    "json_require",
	"JSON.parse": "json_parse",
}

// wellKnownExternal is a fast-reject list of standard/library names used to
// classify an unresolvable import specifier as external for the dynamic
// scripting language.
var wellKnownExternal = map[string]struct{}{
	"os": {}, "sys": {}, "re": {}, "json": {}, "typing": {}, "collections": {},
	"itertools": {}, "functools": {}, "pathlib": {}, "datetime": {}, "logging": {},
	"asyncio": {}, "subprocess": {}, "math": {}, "random": {}, "time": {},
	"numpy": {}, "pandas": {}, "requests": {}, "flask": {}, "django": {}, "pytest": {},
}

// Parser is a generic tree-sitter-backed LanguageParser. The same walk
// drives every language; LanguageConfig supplies the node-kind tables.
type Parser struct {
	cfg       LanguageConfig
	language  *sitter.Language
	extractor *observation.Extractor
}

// New builds a Parser for the given grammar and node-kind configuration.
func New(language *sitter.Language, cfg LanguageConfig) *Parser {
	return &Parser{cfg: cfg, language: language, extractor: observation.New()}
}

// Language reports the parser's language name.
func (p *Parser) Language() string { return p.cfg.Name }

// SupportedExtensions reports the file extensions this parser claims.
func (p *Parser) SupportedExtensions() []string { return p.cfg.Extensions }

// CanParse reports whether filePath's extension is one this parser handles.
func (p *Parser) CanParse(filePath string) bool {
	for _, ext := range p.cfg.Extensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}

// Parse walks source and produces entities, relations, and implementation
// chunks for filePath. globalEntityNames is consulted by the containment
// and calls linker downstream (§4.11), not here; Parse only emits the
// per-file contribution.
func (p *Parser) Parse(filePath string, source []byte) (result *model.ParseResult, err error) {
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

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		result.AddError("tree-sitter returned no parse tree")
		return result, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		result.AddWarning("source contains syntax errors; parse is partial")
	}

	hasImplementation := false

	p.walkTopLevel(root, source, func(n *sitter.Node) {
		kind := n.Kind()
		switch {
		case p.inSet(p.cfg.FunctionKinds, kind):
			if e, chunk, ok := p.extractFunction(n, source, filePath); ok {
				result.Entities = append(result.Entities, e)
				result.ImplementationChunks = append(result.ImplementationChunks, chunk)
				hasImplementation = true
				result.Relations = append(result.Relations, p.decoratorCalls(n, source, e.Name)...)
			}
		case p.inSet(p.cfg.ClassKinds, kind) || p.inSet(p.cfg.InterfaceKinds, kind):
			entityType := model.EntityClass
			if p.inSet(p.cfg.InterfaceKinds, kind) {
				entityType = model.EntityInterface
			}
			e, chunk, inherits, ok := p.extractClass(n, source, filePath, entityType)
			if !ok {
				return
			}
			result.Entities = append(result.Entities, e)
			result.ImplementationChunks = append(result.ImplementationChunks, chunk)
			hasImplementation = true
			for _, base := range inherits {
				result.Relations = append(result.Relations, model.Relation{
					FromEntity: e.Name, ToEntity: base, RelationType: model.RelationInherits,
				})
			}
			result.Relations = append(result.Relations, p.decoratorCalls(n, source, e.Name)...)
			p.walkNestedMethods(n, source, filePath, e.Name, result)
		case p.inSet(p.cfg.ImportKinds, kind):
			startLine := int(n.StartPosition().Row) + 1
			for _, rel := range p.extractImport(n, source, filePath) {
				result.Relations = append(result.Relations, rel)
				result.Entities = append(result.Entities, model.Entity{
					Name:       rel.ToEntity,
					EntityType: model.EntityImport,
					FilePath:   filePath,
					LineNumber: startLine,
					Metadata:   map[string]any{},
				})
			}
		case p.inSet(p.cfg.AssignKinds, kind):
			for _, v := range p.extractModuleVariables(n, source, filePath) {
				result.Entities = append(result.Entities, v)
			}
		}
	})

	if p.cfg.CallKind != "" {
		p.walkCalls(root, func(call *sitter.Node) {
			if rel, ok := p.fileOperationRelation(call, source, filePath); ok {
				result.Relations = append(result.Relations, rel)
			}
			if p.cfg.JSONLoaders {
				if rel, ok := p.jsonLoaderRelation(call, source, filePath); ok {
					result.Relations = append(result.Relations, rel)
				}
			}
		})
	}

	fileEntity := model.Entity{
		Name:          filePath,
		EntityType:    model.EntityFile,
		FilePath:      filePath,
		LineNumber:    1,
		EndLineNumber: int(root.EndPosition().Row) + 1,
		Metadata:      map[string]any{"has_implementation": hasImplementation},
	}
	result.Entities = append([]model.Entity{fileEntity}, result.Entities...)

	return result, nil
}

func (p *Parser) inSet(set map[string]struct{}, kind string) bool {
	if set == nil {
		return false
	}
	_, ok := set[kind]
	return ok
}

// walkTopLevel visits every descendant but stops descending into a matched
// function/class body, so nested functions don't also surface as top-level
// module members. Imports and assignments are only considered at the true
// module level.
func (p *Parser) walkTopLevel(n *sitter.Node, source []byte, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	kind := n.Kind()
	if p.inSet(p.cfg.FunctionKinds, kind) || p.inSet(p.cfg.ClassKinds, kind) || p.inSet(p.cfg.InterfaceKinds, kind) {
		visit(n)
		return
	}
	if p.inSet(p.cfg.ImportKinds, kind) || p.inSet(p.cfg.AssignKinds, kind) {
		visit(n)
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		p.walkTopLevel(n.Child(uint(i)), source, visit)
	}
}

// walkNestedMethods emits FUNCTION entities, their implementation chunks and
// decorator CALLS relations for methods declared directly inside a
// class/interface body. CONTAINS edges are added later by the linker.
func (p *Parser) walkNestedMethods(classNode *sitter.Node, source []byte, filePath, className string, result *model.ParseResult) {
	body := p.fieldOrKindChild(classNode, p.cfg.BlockKinds)
	if body == nil {
		return
	}
	count := int(body.ChildCount())
	for i := 0; i < count; i++ {
		child := body.Child(uint(i))
		if child == nil {
			continue
		}
		if !p.inSet(p.cfg.FunctionKinds, child.Kind()) {
			continue
		}
		e, chunk, ok := p.extractFunction(child, source, filePath)
		if !ok {
			continue
		}
		e.Name = className + "." + e.Name
		chunk.EntityName = e.Name
		result.Entities = append(result.Entities, e)
		result.ImplementationChunks = append(result.ImplementationChunks, chunk)
		result.Relations = append(result.Relations, p.decoratorCalls(child, source, e.Name)...)
	}
}

// walkCalls visits every call-expression node in the tree, including those
// nested inside function/class bodies that walkTopLevel does not descend
// into — file operations and dynamic JSON loaders are expected inside
// function bodies, not just at module scope.
func (p *Parser) walkCalls(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	if n.Kind() == p.cfg.CallKind {
		visit(n)
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		p.walkCalls(n.Child(uint(i)), visit)
	}
}

// matchFileOperation matches a call's callee text against the §4.8 table,
// either exactly (e.g. "open", "json.load") or by ".method" suffix for
// attribute/chained calls (e.g. "df.to_csv", "Path(p).open").
func matchFileOperation(table map[string]string, callee string) (string, bool) {
	if tag, ok := table[callee]; ok {
		return tag, true
	}
	for suffix, tag := range table {
		if strings.HasPrefix(suffix, ".") && strings.HasSuffix(callee, suffix) {
			return tag, true
		}
	}
	return "", false
}

// firstStringArg returns the first direct string-literal argument of a call,
// with its quotes stripped.
func firstStringArg(args *sitter.Node, source []byte) (string, bool) {
	if args == nil {
		return "", false
	}
	count := int(args.ChildCount())
	for i := 0; i < count; i++ {
		c := args.Child(uint(i))
		if c != nil && c.Kind() == "string" {
			return strings.Trim(nodeText(c, source), `"'`), true
		}
	}
	return "", false
}

// fileOperationRelation implements §4.8's file-operation detection: when a
// call's callee matches the table and its first string-literal argument
// isn't a file-mode token, it emits an IMPORTS relation tagged with the
// matched operation.
func (p *Parser) fileOperationRelation(call *sitter.Node, source []byte, filePath string) (model.Relation, bool) {
	if p.cfg.FileOperations == nil {
		return model.Relation{}, false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return model.Relation{}, false
	}
	tag, ok := matchFileOperation(p.cfg.FileOperations, nodeText(fn, source))
	if !ok {
		return model.Relation{}, false
	}
	literal, ok := firstStringArg(call.ChildByFieldName("arguments"), source)
	if !ok {
		return model.Relation{}, false
	}
	if _, isMode := fileModeTokens[literal]; isMode {
		return model.Relation{}, false
	}
	return model.Relation{
		FromEntity:   filePath,
		ToEntity:     literal,
		RelationType: model.RelationImports,
		Metadata:     map[string]any{"import_type": tag},
	}, true
}

// jsonLoaderRelation implements the curly-brace/typed row's dynamic
// fetch()/require()/JSON.parse() detection for ".json"-suffixed literals.
func (p *Parser) jsonLoaderRelation(call *sitter.Node, source []byte, filePath string) (model.Relation, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return model.Relation{}, false
	}
	tag, ok := jsonLoaderCallees[nodeText(fn, source)]
	if !ok {
		return model.Relation{}, false
	}
	literal, ok := firstStringArg(call.ChildByFieldName("arguments"), source)
	if !ok || !strings.HasSuffix(literal, ".json") {
		return model.Relation{}, false
	}
	return model.Relation{
		FromEntity:   filePath,
		ToEntity:     literal,
		RelationType: model.RelationImports,
		Metadata:     map[string]any{"import_type": tag},
	}, true
}

// decoratorCalls implements the typed variant's decorator-target CALLS
// relation: each decorator attached to targetNode becomes an edge from the
// decorated entity to the decorator's name.
func (p *Parser) decoratorCalls(targetNode *sitter.Node, source []byte, entityName string) []model.Relation {
	if p.cfg.DecoratorKind == "" {
		return nil
	}
	var rels []model.Relation
	for _, dec := range p.decoratorsOf(targetNode) {
		name := decoratorName(dec, source)
		if name == "" {
			continue
		}
		rels = append(rels, model.Relation{
			FromEntity: entityName, ToEntity: name, RelationType: model.RelationCalls,
		})
	}
	return rels
}

// decoratorsOf collects a node's own decorator children plus any contiguous
// decorator siblings immediately preceding it in its parent, covering both
// grammar shapes (decorators nested under the declaration, or flat siblings
// ahead of it).
func (p *Parser) decoratorsOf(n *sitter.Node) []*sitter.Node {
	var decorators []*sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if c := n.Child(uint(i)); c != nil && c.Kind() == p.cfg.DecoratorKind {
			decorators = append(decorators, c)
		}
	}
	parent := n.Parent()
	if parent == nil {
		return decorators
	}
	idx := -1
	pc := int(parent.ChildCount())
	for i := 0; i < pc; i++ {
		c := parent.Child(uint(i))
		if c != nil && c.StartByte() == n.StartByte() && c.EndByte() == n.EndByte() {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		c := parent.Child(uint(i))
		if c == nil || c.Kind() != p.cfg.DecoratorKind {
			break
		}
		decorators = append(decorators, c)
	}
	return decorators
}

// decoratorName extracts a decorator's target identifier, whether it wraps a
// bare identifier (@Component) or a call expression (@Component(...)).
func decoratorName(d *sitter.Node, source []byte) string {
	count := int(d.ChildCount())
	for i := 0; i < count; i++ {
		c := d.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "member_expression", "property_identifier":
			return nodeText(c, source)
		case "call_expression":
			if fn := c.ChildByFieldName("function"); fn != nil {
				return nodeText(fn, source)
			}
		}
	}
	return ""
}

func (p *Parser) fieldOrKindChild(n *sitter.Node, blockKinds map[string]struct{}) *sitter.Node {
	for _, field := range p.cfg.BodyFieldNames {
		if c := n.ChildByFieldName(field); c != nil {
			return c
		}
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(uint(i))
		if c == nil {
			continue
		}
		if _, ok := blockKinds[c.Kind()]; ok {
			return c
		}
	}
	return nil
}

func (p *Parser) extractFunction(n *sitter.Node, source []byte, filePath string) (model.Entity, model.EntityChunk, bool) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, source)
	if name == "" {
		name = fmt.Sprintf("anonymous_%d", n.StartPosition().Row+1)
	}
	startLine := int(n.StartPosition().Row) + 1
	endLine := int(n.EndPosition().Row) + 1

	obs := p.extractor.FunctionObservations(n, source)
	complexity := observation.Complexity(n)

	entity := model.Entity{
		Name:          name,
		EntityType:    model.EntityFunction,
		FilePath:      filePath,
		LineNumber:    startLine,
		EndLineNumber: endLine,
		Observations:  obs,
		Metadata:      map[string]any{},
	}

	chunk := p.buildChunk(filePath, model.EntityFunction, name, n, source, startLine, endLine, &model.SemanticMetadata{
		Calls:      extractCalleeNames(obs),
		Complexity: complexity,
	})

	return entity, chunk, true
}

func (p *Parser) extractClass(n *sitter.Node, source []byte, filePath string, entityType model.EntityType) (model.Entity, model.EntityChunk, []string, bool) {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, source)
	if name == "" {
		return model.Entity{}, model.EntityChunk{}, nil, false
	}
	startLine := int(n.StartPosition().Row) + 1
	endLine := int(n.EndPosition().Row) + 1

	obs := p.extractor.ClassObservations(n, source)
	inherits := inheritanceFromObservations(obs)

	entity := model.Entity{
		Name:          name,
		EntityType:    entityType,
		FilePath:      filePath,
		LineNumber:    startLine,
		EndLineNumber: endLine,
		Observations:  obs,
		Metadata:      map[string]any{},
	}

	chunk := p.buildChunk(filePath, entityType, name, n, source, startLine, endLine, &model.SemanticMetadata{
		Complexity: observation.Complexity(n),
	})

	return entity, chunk, inherits, true
}

func (p *Parser) buildChunk(filePath string, entityType model.EntityType, name string, n *sitter.Node, source []byte, startLine, endLine int, semantic *model.SemanticMetadata) model.EntityChunk {
	content := nodeText(n, source)
	id := model.ChunkID(filePath, entityType, name, model.ChunkImplementation, startLine, endLine)
	return model.EntityChunk{
		ID:         id,
		EntityName: name,
		ChunkType:  model.ChunkImplementation,
		Content:    content,
		Metadata: model.ChunkInfo{
			EntityType: entityType,
			FilePath:   filePath,
			StartLine:  startLine,
			EndLine:    endLine,
			Semantic:   semantic,
		},
	}
}

// extractImport builds IMPORTS relations from an import node, classifying
// each specifier internal or external per the relative-path / well-known
// fast-reject policy.
func (p *Parser) extractImport(n *sitter.Node, source []byte, filePath string) []model.Relation {
	var rels []model.Relation
	for _, spec := range importSpecifiers(n, source) {
		if spec == "" {
			continue
		}
		if !isInternalSpecifier(spec) {
			continue
		}
		rels = append(rels, model.Relation{
			FromEntity:   filePath,
			ToEntity:     spec,
			RelationType: model.RelationImports,
			Metadata:     map[string]any{"import_type": "module"},
		})
	}
	return rels
}

// importSpecifiers returns the first string/dotted-name/identifier literal
// among an import node's direct children, covering `import foo.bar`, `from .
// import x`, and `import "pkg"` shaped grammars without per-language
// branching. Nested nodes are not searched and later specifiers are dropped.
func importSpecifiers(n *sitter.Node, source []byte) []string {
	var specs []string
	walkCollect(n, func(c *sitter.Node) {
		switch c.Kind() {
		case "dotted_name", "identifier", "string", "string_fragment", "relative_import":
			specs = append(specs, strings.Trim(nodeText(c, source), `"'`))
		}
	})
	if len(specs) > 0 {
		return specs[:1]
	}
	return specs
}

func walkCollect(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		visit(child)
	}
}

func isInternalSpecifier(spec string) bool {
	if strings.HasPrefix(spec, ".") {
		return true
	}
	root := spec
	if idx := strings.IndexAny(spec, "./"); idx > 0 {
		root = spec[:idx]
	}
	if _, known := wellKnownExternal[root]; known {
		return false
	}
	return !strings.Contains(spec, "/") || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func (p *Parser) extractModuleVariables(n *sitter.Node, source []byte, filePath string) []model.Entity {
	var entities []model.Entity
	left := n.ChildByFieldName("left")
	if left == nil {
		left = n.ChildByFieldName("name")
	}
	var names []string
	if left != nil {
		names = identifierLeaves(left, source)
	} else if parent := n.Parent(); parent != nil && (parent.Kind() == "program" || parent.Kind() == "export_statement") {
		// JS/TS module-scope declarations name their targets on variable_declarator children.
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(uint(i)); c != nil && c.Kind() == "variable_declarator" && c.ChildByFieldName("name") != nil {
				names = append(names, identifierLeaves(c.ChildByFieldName("name"), source)...)
			}
		}
	}
	for _, name := range names {
		if p.cfg.SkipCommonVarNames {
			if _, skip := skipLoopNames[name]; skip {
				continue
			}
			if len(name) == 1 {
				if _, ok := mathAllowlist[name]; !ok {
					continue
				}
			}
		}
		entities = append(entities, model.Entity{
			Name:          name,
			EntityType:    model.EntityVariable,
			FilePath:      filePath,
			LineNumber:    int(n.StartPosition().Row) + 1,
			EndLineNumber: int(n.EndPosition().Row) + 1,
			Observations:  []string{"Module-level assignment"},
			Metadata:      map[string]any{},
		})
	}
	return entities
}

// identifierLeaves walks a (possibly destructured) assignment target and
// returns every leaf identifier name.
func identifierLeaves(n *sitter.Node, source []byte) []string {
	var names []string
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		names = append(names, nodeText(n, source))
		return names
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(uint(i))
		if c == nil {
			continue
		}
		if c.Kind() == "identifier" {
			names = append(names, nodeText(c, source))
			continue
		}
		names = append(names, identifierLeaves(c, source)...)
	}
	return names
}

func inheritanceFromObservations(obs []string) []string {
	for _, o := range obs {
		if strings.HasPrefix(o, "Inherits from: ") {
			return strings.Split(strings.TrimPrefix(o, "Inherits from: "), ", ")
		}
	}
	return nil
}

func extractCalleeNames(obs []string) []string {
	for _, o := range obs {
		if strings.HasPrefix(o, "Calls: ") {
			return strings.Split(strings.TrimPrefix(o, "Calls: "), ", ")
		}
	}
	return nil
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

