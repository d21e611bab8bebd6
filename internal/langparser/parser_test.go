package langparser

import (
	"strings"
	"testing"

	"github.com/rlefko/semindex/internal/model"
)

func TestPythonParserExtractsFunctionAndClass(t *testing.T) {
	src := `"""Module docstring."""
import os
import requests

BASE_URL = "https://example.com"


class Greeter:
    """Says hello to people."""

    def greet(self, name):
        """Greets a person by name."""
        if name:
            print(name)
        return name
`
	p := NewPython()
	result, err := p.Parse("greeter.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, errors: %v", result.Errors)
	}

	var gotFile, gotClass, gotVar bool
	for _, e := range result.Entities {
		switch {
		case e.EntityType == model.EntityFile:
			gotFile = true
		case e.EntityType == model.EntityClass && e.Name == "Greeter":
			gotClass = true
		case e.EntityType == model.EntityVariable && e.Name == "BASE_URL":
			gotVar = true
		}
	}
	if !gotFile {
		t.Error("expected a FILE entity")
	}
	if !gotClass {
		t.Error("expected a Greeter CLASS entity")
	}
	if !gotVar {
		t.Error("expected a BASE_URL module-level VARIABLE entity")
	}

	var gotMethodChunk bool
	for _, c := range result.ImplementationChunks {
		if strings.HasSuffix(c.EntityName, "greet") {
			gotMethodChunk = true
			if c.Metadata.Semantic == nil {
				t.Error("expected semantic metadata on method chunk")
			}
		}
	}
	if !gotMethodChunk {
		t.Error("expected an implementation chunk for Greeter.greet")
	}

	var importRel bool
	for _, r := range result.Relations {
		if r.RelationType == model.RelationImports {
			importRel = true
		}
	}
	_ = importRel // well-known external imports (os, requests) are filtered out by design
}

func TestPythonParserKeepsRelativeImportAsInternal(t *testing.T) {
	src := "from . import helpers\n"
	p := NewPython()
	result, err := p.Parse("pkg/mod.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, r := range result.Relations {
		if r.RelationType == model.RelationImports {
			found = true
		}
	}
	if !found {
		t.Error("expected a relative import to be classified internal")
	}
}

func TestPythonParserDetectsFileOpen(t *testing.T) {
	src := "f = open('data.txt', 'r')\n"
	p := NewPython()
	result, err := p.Parse("loader.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var got model.Relation
	var found bool
	for _, r := range result.Relations {
		if r.ToEntity == "data.txt" {
			got, found = r, true
		}
	}
	if !found {
		t.Fatalf("expected an IMPORTS relation to data.txt, got %v", result.Relations)
	}
	if got.RelationType != model.RelationImports {
		t.Errorf("expected RelationImports, got %v", got.RelationType)
	}
	if got.Metadata["import_type"] != "file_open" {
		t.Errorf("expected import_type file_open, got %v", got.Metadata["import_type"])
	}
}

func TestPythonParserSkipsFileModeArgument(t *testing.T) {
	src := "f = open('r', 'data.txt')\n"
	p := NewPython()
	result, err := p.Parse("loader.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for _, r := range result.Relations {
		if r.Metadata["import_type"] == "file_open" {
			t.Errorf("did not expect a file_open relation when the first arg is a mode token, got %v", r)
		}
	}
}

func TestPythonParserDetectsPandasCSVRead(t *testing.T) {
	src := "df = pandas.read_csv('input.csv')\n"
	p := NewPython()
	result, err := p.Parse("loader.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, r := range result.Relations {
		if r.ToEntity == "input.csv" && r.Metadata["import_type"] == "pandas_csv_read" {
			found = true
		}
	}
	if !found {
		t.Error("expected a pandas_csv_read IMPORTS relation for input.csv")
	}
}

func TestPythonParserDoesNotSkipOneCharVariable(t *testing.T) {
	src := "i = 0\n"
	p := NewPython()
	result, err := p.Parse("module.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, e := range result.Entities {
		if e.EntityType == model.EntityVariable && e.Name == "i" {
			found = true
		}
	}
	if !found {
		t.Error("expected Python's module-level VARIABLE extraction to keep loop-counter-shaped names")
	}
}

func TestTypeScriptParserSkipsLoopCounterVariable(t *testing.T) {
	src := "const i = 0;\n"
	p := NewTypeScript()
	result, err := p.Parse("module.ts", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for _, e := range result.Entities {
		if e.EntityType == model.EntityVariable && e.Name == "i" {
			t.Error("did not expect the curly-brace row to keep a loop-counter-shaped module variable")
		}
	}
}

func TestTypeScriptParserDetectsJSONFetch(t *testing.T) {
	src := "async function load() {\n  const data = await fetch('config.json');\n  return data;\n}\n"
	p := NewTypeScript()
	result, err := p.Parse("loader.ts", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, r := range result.Relations {
		if r.ToEntity == "config.json" && r.Metadata["import_type"] == "json_fetch" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a json_fetch IMPORTS relation for config.json, got %v", result.Relations)
	}
}

func TestTypeScriptParserEmitsDecoratorCallsRelation(t *testing.T) {
	src := "@Component\nclass Widget {\n  render() {\n    return null;\n  }\n}\n"
	p := NewTypeScript()
	result, err := p.Parse("widget.ts", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, r := range result.Relations {
		if r.FromEntity == "Widget" && r.ToEntity == "Component" && r.RelationType == model.RelationCalls {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a CALLS relation from Widget to Component, got %v", result.Relations)
	}
}

func TestCanParseByExtension(t *testing.T) {
	p := NewPython()
	if !p.CanParse("foo.py") {
		t.Error("expected .py to be parseable")
	}
	if p.CanParse("foo.rs") {
		t.Error("did not expect .rs to be parseable by the python parser")
	}
}

func TestTypeScriptParserExtractsClassAndInterface(t *testing.T) {
	src := `interface Shape {
  area(): number;
}

class Circle implements Shape {
  area() {
    return 1;
  }
}
`
	p := NewTypeScript()
	result, err := p.Parse("shapes.ts", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var gotInterface, gotClass bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityInterface && e.Name == "Shape" {
			gotInterface = true
		}
		if e.EntityType == model.EntityClass && e.Name == "Circle" {
			gotClass = true
		}
	}
	if !gotInterface {
		t.Error("expected a Shape INTERFACE entity")
	}
	if !gotClass {
		t.Error("expected a Circle CLASS entity")
	}
}

func TestJSONParserEmitsDottedPaths(t *testing.T) {
	src := `{"a": {"b": 1}, "c": [1, 2]}`
	p := NewJSON()
	result, err := p.Parse("data.json", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	names := map[string]bool{}
	for _, e := range result.Entities {
		names[e.Name] = true
	}
	for _, want := range []string{"a", "a.b", "c", "c[]"} {
		if !names[want] {
			t.Errorf("expected entity %q, got %v", want, names)
		}
	}
}

func TestJSONParserPackageJSONDependencies(t *testing.T) {
	src := `{"dependencies": {"lodash": "^4.0.0"}}`
	p := NewJSON()
	result, err := p.Parse("package.json", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var found bool
	for _, r := range result.Relations {
		if r.ToEntity == "lodash" && r.Metadata["import_type"] == "npm_dependency" {
			found = true
		}
	}
	if !found {
		t.Error("expected an npm_dependency IMPORTS relation for lodash")
	}
}

func TestJSONParserExtractsContentCollectionItems(t *testing.T) {
	src := `{"posts": [
		{"title": "Hello World", "content": "first post body"},
		{"id": 42, "body": "second post body"}
	]}`
	p := NewJSON()
	result, err := p.Parse("forum.json", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var docEntities []model.Entity
	for _, e := range result.Entities {
		if e.EntityType == model.EntityDocumentation {
			docEntities = append(docEntities, e)
		}
	}
	if len(docEntities) != 2 {
		t.Fatalf("expected 2 DOCUMENTATION entities, got %d: %v", len(docEntities), docEntities)
	}
	for _, e := range docEntities {
		if e.Metadata["source_array"] != "posts" || e.Metadata["content_type"] != "post" {
			t.Errorf("unexpected metadata on %s: %v", e.Name, e.Metadata)
		}
	}

	if len(result.ImplementationChunks) != 2 {
		t.Fatalf("expected 2 implementation chunks, got %d", len(result.ImplementationChunks))
	}
	var gotTitle bool
	for _, c := range result.ImplementationChunks {
		if strings.Contains(c.Content, "Title: Hello World") {
			gotTitle = true
		}
	}
	if !gotTitle {
		t.Error("expected one chunk's content to include the title prefix")
	}
}

func TestJSONParserContentCollectionFallsBackWhenEmpty(t *testing.T) {
	src := `{"posts": []}`
	p := NewJSON()
	result, err := p.Parse("forum.json", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(result.ImplementationChunks) != 1 {
		t.Fatalf("expected a single whole-file fallback chunk, got %d", len(result.ImplementationChunks))
	}
	if result.ImplementationChunks[0].Content != src {
		t.Error("expected the fallback chunk to hold the raw file content")
	}
}

func TestMarkdownParserExtractsTopLevelHeadings(t *testing.T) {
	src := "# Title\n\nSome text.\n\n## Section\n\nmore text\n\n### Ignored\n"
	p := NewMarkdown()
	result, err := p.Parse("README.md", []byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	names := map[string]bool{}
	for _, e := range result.Entities {
		names[e.Name] = true
	}
	if !names["Title"] || !names["Section"] {
		t.Errorf("expected Title and Section headings, got %v", names)
	}
	if names["Ignored"] {
		t.Error("did not expect a level-3 heading to be extracted")
	}
}
