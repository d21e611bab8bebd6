// Package observation extracts best-effort semantic annotations (purpose,
// parameters, calls, complexity, ...) from a tree-sitter AST node. Every
// extraction step is independent and failures are swallowed: a broken
// heuristic should degrade the observation list, never fail the parse.
package observation

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var branchingKinds = map[string]struct{}{
	"if_statement":    {},
	"elif_clause":     {},
	"for_statement":   {},
	"while_statement": {},
	"try_statement":   {},
	"except_clause":   {},
	"with_statement":  {},
}

var builtinNames = map[string]struct{}{
	"print": {}, "len": {}, "str": {}, "int": {}, "float": {}, "bool": {},
	"list": {}, "dict": {}, "set": {}, "tuple": {}, "range": {}, "enumerate": {},
	"zip": {}, "map": {}, "filter": {}, "sum": {}, "min": {}, "max": {}, "abs": {},
	"isinstance": {}, "hasattr": {}, "getattr": {}, "setattr": {}, "delattr": {},
	"type": {}, "super": {}, "open": {}, "input": {}, "format": {}, "join": {},
	"split": {}, "strip": {}, "replace": {}, "find": {}, "append": {}, "extend": {},
	"insert": {}, "remove": {}, "pop": {}, "get": {}, "keys": {}, "values": {},
	"items": {}, "update": {}, "clear": {}, "copy": {}, "sort": {}, "reverse": {},
	"count": {}, "index": {},
}

// Extractor produces best-effort semantic observations from AST nodes. It
// holds no mutable state and is safe for concurrent use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor { return &Extractor{} }

// FunctionObservations extracts observations for a function/method node:
// purpose, parameters, returns, raised/handled exceptions, calls made,
// complexity, decorators, framework hints, and async usage.
func (e *Extractor) FunctionObservations(node *sitter.Node, source []byte) (obs []string) {
	defer func() {
		if r := recover(); r != nil {
			obs = nil
		}
	}()

	if docstring := extractDocstring(node, source); docstring != "" {
		if purpose := cleanPurpose(docstring); purpose != "" {
			obs = append(obs, "Purpose: "+purpose)
		}
	}

	if calls := extractCalls(node, source); len(calls) > 0 {
		obs = append(obs, "Calls: "+strings.Join(limitList(calls, 5), ", "))
	}

	if exceptions := extractHandledExceptions(node, source); len(exceptions) > 0 {
		obs = append(obs, "Handles: "+strings.Join(exceptions, ", "))
	}

	if returnType := extractReturnTypeAnnotation(node, source); returnType != "" {
		obs = append(obs, "-> "+returnType)
	}

	if returnInfo := extractReturnPattern(node, source); returnInfo != "" {
		obs = append(obs, "Returns: "+returnInfo)
	}

	if paramInfo := extractParameterPattern(node, source); paramInfo != "" {
		obs = append(obs, "Parameters: "+paramInfo)
	}

	for _, dec := range extractDecorators(node, source) {
		obs = append(obs, "Decorator: "+dec)
	}

	complexity := Complexity(node)
	switch {
	case complexity > 5:
		obs = append(obs, fmt.Sprintf("Complexity: %d (high)", complexity))
	case complexity >= 2:
		obs = append(obs, fmt.Sprintf("Complexity: %d (moderate)", complexity))
	}

	if frameworks := extractFrameworkPatterns(node, source); len(frameworks) > 0 {
		obs = append(obs, "Framework: "+strings.Join(frameworks, ", "))
	}

	if asyncPatterns := extractAsyncPatterns(node, source); len(asyncPatterns) > 0 {
		obs = append(obs, "Async: "+strings.Join(asyncPatterns, ", "))
	}

	return obs
}

// ClassObservations extracts observations for a class/interface node:
// responsibility (first docstring sentence), key methods, inheritance, and
// attributes.
func (e *Extractor) ClassObservations(node *sitter.Node, source []byte) (obs []string) {
	defer func() {
		if r := recover(); r != nil {
			obs = nil
		}
	}()

	if docstring := extractDocstring(node, source); docstring != "" {
		if sentence := firstSentence(docstring); sentence != "" {
			obs = append(obs, "Responsibility: "+sentence)
		}
	}

	if methods := extractClassMethods(node, source); len(methods) > 0 {
		obs = append(obs, "Key methods: "+strings.Join(limitList(methods, 5), ", "))
	}

	if inherits := extractInheritance(node, source); len(inherits) > 0 {
		obs = append(obs, "Inherits from: "+strings.Join(inherits, ", "))
	}

	if attrs := extractClassAttributes(node, source); len(attrs) > 0 {
		obs = append(obs, "Attributes: "+strings.Join(limitList(attrs, 3), ", "))
	}

	return obs
}

// Complexity counts 1 plus every branching node (if/elif/for/while/try/
// except/with) reachable from node.
func Complexity(node *sitter.Node) int {
	complexity := 1
	walk(node, func(n *sitter.Node) {
		if _, ok := branchingKinds[n.Kind()]; ok {
			complexity++
		}
	})
	return complexity
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		walk(n.Child(uint(i)), visit)
	}
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func limitList(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
