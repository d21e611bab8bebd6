package langparser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rlefko/semindex/internal/model"
)

// MarkdownParser implements the Markdown row of the per-language extraction
// matrix: headers of level <= 2 become DOCUMENTATION entities. The grouped
// implementation/metadata chunk pairs are a separate concern handled by
// internal/mdchunk's MarkdownChunker.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdown builds the Markdown parser.
func NewMarkdown() *MarkdownParser {
	return &MarkdownParser{md: goldmark.New()}
}

func (p *MarkdownParser) Language() string              { return "markdown" }
func (p *MarkdownParser) SupportedExtensions() []string { return []string{".md", ".markdown"} }

func (p *MarkdownParser) CanParse(filePath string) bool {
	return strings.HasSuffix(filePath, ".md") || strings.HasSuffix(filePath, ".markdown")
}

func (p *MarkdownParser) Parse(filePath string, source []byte) (result *model.ParseResult, err error) {
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

	reader := text.NewReader(source)
	root := p.md.Parser().Parse(reader)

	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > 2 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		title := strings.TrimSpace(buf.String())
		if title == "" {
			return ast.WalkContinue, nil
		}
		line := bytes.Count(source[:offsetOf(source, heading)], []byte("\n")) + 1
		result.Entities = append(result.Entities, model.Entity{
			Name:       title,
			EntityType: model.EntityDocumentation,
			FilePath:   filePath,
			LineNumber: line,
			Metadata:   map[string]any{"heading_level": heading.Level},
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		result.AddError(fmt.Sprintf("walk markdown AST: %v", err))
		err = nil
	}

	result.Entities = append([]model.Entity{{
		Name:       filePath,
		EntityType: model.EntityFile,
		FilePath:   filePath,
		LineNumber: 1,
		Metadata:   map[string]any{"has_implementation": false},
	}}, result.Entities...)

	return result, nil
}

// offsetOf approximates a node's byte offset using its first text segment,
// falling back to 0 for headings without direct text children (rare: image
// or inline-html-only headings).
func offsetOf(source []byte, n ast.Node) int {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
	}
	return 0
}
