package observation

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var jsFunctionKinds = map[string]struct{}{
	"function_declaration": {},
	"arrow_function":       {},
	"function_expression":  {},
	"method_definition":    {},
}

func isJSFunctionNode(n *sitter.Node) bool {
	_, ok := jsFunctionKinds[n.Kind()]
	return ok
}

// extractDocstring finds the first string literal in a function/class body
// (Python convention) or the nearest preceding JSDoc comment (curly-brace
// convention).
func extractDocstring(node *sitter.Node, source []byte) string {
	if isJSFunctionNode(node) {
		return extractJSDocComment(node, source)
	}
	return extractPythonDocstring(node, source)
}

func extractPythonDocstring(node *sitter.Node, source []byte) string {
	raw := findFirstStringLiteral(node, source, 0)
	if raw == "" {
		return ""
	}
	doc := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(doc, `"""`) && strings.HasSuffix(doc, `"""`) && len(doc) >= 6:
		doc = doc[3 : len(doc)-3]
	case strings.HasPrefix(doc, "'''") && strings.HasSuffix(doc, "'''") && len(doc) >= 6:
		doc = doc[3 : len(doc)-3]
	case strings.HasPrefix(doc, `"`) && strings.HasSuffix(doc, `"`) && len(doc) >= 2:
		doc = doc[1 : len(doc)-1]
	case strings.HasPrefix(doc, "'") && strings.HasSuffix(doc, "'") && len(doc) >= 2:
		doc = doc[1 : len(doc)-1]
	}
	return strings.TrimSpace(doc)
}

func findFirstStringLiteral(n *sitter.Node, source []byte, depth int) string {
	if n == nil || depth > 3 {
		return ""
	}
	if n.Kind() == "string" {
		return nodeText(n, source)
	}

	switch n.Kind() {
	case "function_definition", "class_definition", "function_declaration", "method_definition":
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child.Kind() == "block" || child.Kind() == "statement_block" {
				bodyCount := int(child.ChildCount())
				for j := 0; j < bodyCount; j++ {
					stmt := child.Child(uint(j))
					if stmt.Kind() == "expression_statement" {
						if s := findFirstStringLiteral(stmt, source, depth+1); s != "" {
							return s
						}
					}
				}
			}
		}
	case "expression_statement":
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child.Kind() == "string" {
				return nodeText(child, source)
			}
		}
	default:
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			if s := findFirstStringLiteral(n.Child(uint(i)), source, depth+1); s != "" {
				return s
			}
		}
	}
	return ""
}

func extractJSDocComment(node *sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	text := nodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "@") {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

func cleanPurpose(docstring string) string {
	for _, sep := range []string{"\n\n", ".\n", ". "} {
		if idx := strings.Index(docstring, sep); idx > 0 {
			return strings.TrimSpace(docstring[:idx])
		}
	}
	return strings.TrimSpace(docstring)
}

func firstSentence(docstring string) string {
	parts := strings.SplitN(docstring, ".", 2)
	return strings.TrimSpace(parts[0])
}

// isMeaningfulByStructure mirrors the structural heuristics used to filter
// out noise calls without a symbol table: snake_case or CamelCase names, or
// names longer than 4 characters, are considered meaningful.
func isMeaningfulByStructure(name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(name, "_") {
		return true
	}
	if len(name) > 4 {
		return true
	}
	r := []rune(name)
	if len(r) == 0 || !isUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if isUpper(c) {
			return true
		}
	}
	return false
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isBuiltinOrCommon(name string) bool {
	_, ok := builtinNames[name]
	return ok
}

func extractCalls(node *sitter.Node, source []byte) []string {
	calls := map[string]struct{}{}
	js := isJSFunctionNode(node)

	walk(node, func(n *sitter.Node) {
		if n.Kind() != "call" && n.Kind() != "call_expression" {
			return
		}

		var funcNode *sitter.Node
		if js {
			if n.ChildCount() > 0 {
				funcNode = n.Child(0)
			}
		} else {
			funcNode = n.ChildByFieldName("function")
		}
		if funcNode == nil {
			return
		}
		funcText := nodeText(funcNode, source)
		funcName := funcText

		if strings.Contains(funcText, ".") {
			parts := strings.Split(funcText, ".")
			if len(parts) >= 2 {
				obj, method := parts[len(parts)-2], parts[len(parts)-1]
				if isMeaningfulByStructure(method) {
					if len(obj) < 10 {
						calls[obj+"."+method] = struct{}{}
					} else {
						calls[method] = struct{}{}
					}
				}
			}
			funcName = parts[len(parts)-1]
		}

		if js {
			if isMeaningfulByStructure(funcName) {
				calls[funcName] = struct{}{}
			}
			return
		}
		if !isBuiltinOrCommon(funcName) && isMeaningfulByStructure(funcName) {
			calls[funcName] = struct{}{}
		}
	})

	return sortedSet(calls)
}

func extractHandledExceptions(node *sitter.Node, source []byte) []string {
	exceptions := map[string]struct{}{}
	skipNames := map[string]struct{}{"as": {}, "except": {}, "e": {}, "err": {}, "error": {}, "ex": {}}

	walk(node, func(n *sitter.Node) {
		switch n.Kind() {
		case "except_clause":
			count := int(n.ChildCount())
			for i := 0; i < count; i++ {
				child := n.Child(uint(i))
				switch child.Kind() {
				case "identifier":
					name := nodeText(child, source)
					if _, skip := skipNames[name]; !skip && name != "" {
						exceptions[name] = struct{}{}
					}
				case "tuple":
					tc := int(child.ChildCount())
					for j := 0; j < tc; j++ {
						t := child.Child(uint(j))
						if t.Kind() == "identifier" {
							name := nodeText(t, source)
							if name != "as" && name != "except" {
								exceptions[name] = struct{}{}
							}
						}
					}
				case "attribute":
					text := nodeText(child, source)
					if strings.Contains(text, ".") && (strings.Contains(text, "Error") || strings.Contains(text, "Exception")) {
						parts := strings.Split(text, ".")
						exceptions[parts[len(parts)-1]] = struct{}{}
					}
				}
			}
		case "raise_statement":
			count := int(n.ChildCount())
			for i := 0; i < count; i++ {
				child := n.Child(uint(i))
				if child.Kind() == "call" {
					fn := child.ChildByFieldName("function")
					if fn != nil && fn.Kind() == "identifier" {
						name := nodeText(fn, source)
						if strings.Contains(name, "Error") || strings.Contains(name, "Exception") {
							exceptions[name] = struct{}{}
						}
					}
				} else if child.Kind() == "identifier" {
					name := nodeText(child, source)
					if strings.Contains(name, "Error") || strings.Contains(name, "Exception") {
						exceptions[name] = struct{}{}
					}
				}
			}
		case "throw_statement":
			count := int(n.ChildCount())
			for i := 0; i < count; i++ {
				child := n.Child(uint(i))
				if child.Kind() != "new_expression" {
					continue
				}
				nc := int(child.ChildCount())
				for j := 0; j < nc; j++ {
					newChild := child.Child(uint(j))
					if newChild.Kind() == "identifier" {
						name := nodeText(newChild, source)
						if strings.Contains(name, "Error") || strings.Contains(name, "Exception") {
							exceptions[name] = struct{}{}
						}
					} else if newChild.Kind() == "call_expression" {
						fn := newChild.ChildByFieldName("function")
						if fn != nil {
							text := nodeText(fn, source)
							if strings.Contains(text, "Error") || strings.Contains(text, "Exception") {
								parts := strings.Split(text, ".")
								exceptions[parts[len(parts)-1]] = struct{}{}
							}
						}
					}
				}
			}
		}
	})

	return sortedSet(exceptions)
}

func extractReturnPattern(node *sitter.Node, source []byte) string {
	returns := map[string]struct{}{}
	walk(node, func(n *sitter.Node) {
		if n.Kind() != "return_statement" {
			return
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child.Kind() == "return" || child.Kind() == "NEWLINE" {
				continue
			}
			text := nodeText(child, source)
			if text != "" {
				returns[text] = struct{}{}
			}
		}
	})

	if len(returns) == 0 {
		return ""
	}
	list := sortedSet(returns)
	if len(list) == 1 {
		v := list[0]
		if len(v) > 20 {
			v = v[:20] + "..."
		}
		return "single value (" + v + ")"
	}
	return "multiple patterns (" + itoa(len(list)) + " different)"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func extractParameterPattern(node *sitter.Node, source []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child.Kind() != "parameters" && child.Kind() != "formal_parameters" {
			continue
		}
		var names []string
		pc := int(child.ChildCount())
		for j := 0; j < pc; j++ {
			p := child.Child(uint(j))
			switch p.Kind() {
			case "identifier", "typed_parameter", "typed_default_parameter":
				names = append(names, nodeText(p, source))
			}
		}
		if len(names) > 0 {
			return itoa(len(names)) + " parameters: " + strings.Join(names, ", ")
		}
	}
	return ""
}

func extractReturnTypeAnnotation(node *sitter.Node, source []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child.Kind() == "type" {
			return nodeText(child, source)
		}
	}
	return ""
}

func extractDecorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child.Kind() == "decorator" {
			decorators = append(decorators, strings.Trim(nodeText(child, source), "@"))
		}
	}
	return decorators
}

func extractClassMethods(node *sitter.Node, source []byte) []string {
	methods := map[string]struct{}{}
	walk(node, func(n *sitter.Node) {
		if n.Kind() != "function_definition" {
			return
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child.Kind() == "identifier" {
				name := nodeText(child, source)
				if !strings.HasPrefix(name, "__") || name == "__init__" {
					methods[name] = struct{}{}
				}
				break
			}
		}
	})
	return sortedSet(methods)
}

func extractInheritance(node *sitter.Node, source []byte) []string {
	var parents []string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child.Kind() != "argument_list" {
			continue
		}
		ac := int(child.ChildCount())
		for j := 0; j < ac; j++ {
			arg := child.Child(uint(j))
			if arg.Kind() == "identifier" || arg.Kind() == "attribute" {
				parents = append(parents, nodeText(arg, source))
			}
		}
	}
	return parents
}

func extractClassAttributes(node *sitter.Node, source []byte) []string {
	attrs := map[string]struct{}{}
	walk(node, func(n *sitter.Node) {
		if n.Kind() != "assignment" {
			return
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child.Kind() == "attribute" {
				text := nodeText(child, source)
				if strings.HasPrefix(text, "self.") {
					attrs[strings.TrimPrefix(text, "self.")] = struct{}{}
				}
			}
		}
	})
	return sortedSet(attrs)
}

var frameworkMarkers = map[string]string{
	"@app.route":      "Flask",
	"@router.":        "FastAPI",
	"django.":         "Django",
	"React.":          "React",
	"useState":        "React",
	"useEffect":       "React",
	"express()":       "Express",
	"@Component":      "Angular",
	"@Injectable":     "Angular",
	"torch.":          "PyTorch",
	"tf.":             "TensorFlow",
	"numpy.":          "NumPy",
	"pandas.":         "pandas",
	"pytest.":         "pytest",
	"unittest.":       "unittest",
	"sqlalchemy.":     "SQLAlchemy",
	"boto3.":          "boto3",
}

func extractFrameworkPatterns(node *sitter.Node, source []byte) []string {
	text := nodeText(node, source)
	found := map[string]struct{}{}
	for marker, framework := range frameworkMarkers {
		if strings.Contains(text, marker) {
			found[framework] = struct{}{}
		}
	}
	return sortedSet(found)
}

func extractAsyncPatterns(node *sitter.Node, source []byte) []string {
	text := nodeText(node, source)
	found := map[string]struct{}{}
	if strings.Contains(text, "async def") || strings.Contains(text, "async function") || strings.Contains(text, "async (") {
		found["async function"] = struct{}{}
	}
	if strings.Contains(text, "await ") {
		found["await"] = struct{}{}
	}
	if strings.Contains(text, "asyncio.") {
		found["asyncio"] = struct{}{}
	}
	if strings.Contains(text, "Promise.") || strings.Contains(text, "new Promise") {
		found["Promise"] = struct{}{}
	}
	return sortedSet(found)
}
