// Package mdchunk implements the token-budgeted Markdown section chunker:
// header-delimited sections are merged, split, grouped for retrieval
// density, and overlapped, producing (implementation, metadata) EntityChunk
// pairs per group.
package mdchunk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rlefko/semindex/internal/model"
)

const (
	target               = 800
	maxTokens            = 1000
	minTokens            = 100
	minGrouping          = 100
	aggressiveBudget     = int(0.85 * float64(maxTokens))
	maxSectionsPerChunk  = 10
	overlapChars         = 200
	redistributeFloor    = 600
	redistributeMaxGroup = 8
)

var headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
var overlapMarkerPattern = regexp.MustCompile(`(?s)^\[Previous context: .*?\]\n\n`)

type section struct {
	level         int
	header        string
	displayHeader string
	body          string
	startLine     int
	endLine       int
	mergedHeaders int
}

func (s *section) headerWithLevel() string {
	if s.level == 0 {
		return s.displayHeader
	}
	return strings.Repeat("#", s.level) + " " + s.displayHeader
}

func estimateTokens(text string) int {
	return len(text) / 4
}

// Chunk runs the full sectionize → merge → split → group → overlap →
// emit pipeline and returns one (implementation, metadata) EntityChunk pair
// per resulting group, in document order.
func Chunk(source, filePath string) []model.EntityChunk {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	sections := sectionize(source)
	sections = forwardMergeEmpty(sections)
	sections = splitOversize(sections)
	groups := groupForDensity(sections)
	groups = redistributeUndersized(groups)
	addOverlap(groups)

	var chunks []model.EntityChunk
	for i, g := range groups {
		impl, meta := emitGroup(filePath, i, g)
		chunks = append(chunks, impl, meta)
	}
	return chunks
}

// sectionize walks lines; each #-prefixed line opens a section. A section's
// end is the next header of equal-or-higher level, except H1 sections which
// only end at the next H1 or H2 (the spec's H1-specific rule).
func sectionize(source string) []section {
	lines := strings.Split(source, "\n")
	var sections []section
	var cur *section

	flush := func(endLine int) {
		if cur != nil {
			cur.endLine = endLine
			sections = append(sections, *cur)
		}
	}

	for i, line := range lines {
		lineNum := i + 1
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			opensNew := cur == nil || endsSection(*cur, level)
			if opensNew {
				flush(lineNum - 1)
				cur = &section{level: level, header: m[2], displayHeader: m[2], startLine: lineNum}
				continue
			}
		}
		if cur == nil {
			cur = &section{level: 0, startLine: lineNum}
		}
		if cur.body == "" {
			cur.body = line
		} else {
			cur.body += "\n" + line
		}
	}
	flush(len(lines))
	return sections
}

// endsSection reports whether a header at newLevel would end the current
// open section.
func endsSection(cur section, newLevel int) bool {
	if cur.level == 1 {
		return newLevel <= 2
	}
	return newLevel <= cur.level
}

func forwardMergeEmpty(sections []section) []section {
	var out []section
	var pendingMerges int
	var pendingHeader string
	for _, s := range sections {
		if len(strings.TrimSpace(s.body)) <= 5 && s.header != "" {
			pendingMerges++
			if pendingHeader == "" {
				pendingHeader = s.header
			}
			continue
		}
		if pendingMerges > 0 {
			s.mergedHeaders += pendingMerges
			s.displayHeader = fmt.Sprintf("%s (+%d more)", s.header, pendingMerges)
			pendingMerges = 0
			pendingHeader = ""
		}
		out = append(out, s)
	}
	if pendingMerges > 0 && len(out) > 0 {
		last := &out[len(out)-1]
		last.mergedHeaders += pendingMerges
		last.displayHeader = fmt.Sprintf("%s (+%d more)", last.header, last.mergedHeaders)
	}
	_ = pendingHeader
	return out
}

func splitOversize(sections []section) []section {
	var out []section
	for _, s := range sections {
		full := s.headerWithLevel() + "\n\n" + s.body
		if estimateTokens(full) <= maxTokens {
			out = append(out, s)
			continue
		}
		out = append(out, splitSection(s)...)
	}
	return out
}

// splitSection breaks an oversize section at semantic boundaries (blank
// line runs) into parts labeled "<header> (Part k)", absorbing any small
// trailing part into the previous one.
func splitSection(s section) []section {
	paragraphs := regexp.MustCompile(`\n{2,}`).Split(s.body, -1)
	var parts []section
	var cur strings.Builder
	line := s.startLine

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		parts = append(parts, section{
			level: s.level, header: s.header, body: cur.String(), startLine: line,
		})
		cur.Reset()
	}

	for _, p := range paragraphs {
		candidate := cur.String()
		if candidate != "" {
			candidate += "\n\n"
		}
		candidate += p
		if estimateTokens(s.headerWithLevel()+"\n\n"+candidate) > maxTokens && cur.Len() > 0 {
			flush()
			cur.WriteString(p)
		} else {
			cur.Reset()
			cur.WriteString(candidate)
		}
	}
	flush()

	if len(parts) > 1 {
		last := estimateTokens(parts[len(parts)-1].body)
		if last < minTokens {
			parts[len(parts)-2].body += "\n\n" + parts[len(parts)-1].body
			parts = parts[:len(parts)-1]
		}
	}
	for i := range parts {
		parts[i].displayHeader = fmt.Sprintf("%s (Part %d)", s.header, i+1)
		parts[i].endLine = s.endLine
	}
	return parts
}

type group struct {
	sections []section
}

func groupTokens(g group) int {
	total := 0
	for _, s := range g.sections {
		total += estimateTokens(s.headerWithLevel() + "\n\n" + s.body)
	}
	return total
}

// groupForDensity scans sections in order, folding a section into the
// current group when doing so stays within budget and the group still
// looks "dense" by the spec's mixed size/nesting/count heuristics.
func groupForDensity(sections []section) []group {
	var groups []group
	var cur group
	curTokens := 0

	flush := func() {
		if len(cur.sections) > 0 {
			groups = append(groups, cur)
			cur = group{}
			curTokens = 0
		}
	}

	for _, s := range sections {
		tok := estimateTokens(s.headerWithLevel() + "\n\n" + s.body)
		substantial := tok >= minGrouping

		if len(cur.sections) == 0 {
			cur.sections = append(cur.sections, s)
			curTokens = tok
			continue
		}

		fits := curTokens+tok <= aggressiveBudget && len(cur.sections) < maxSectionsPerChunk
		densityOK := !substantial || s.level <= 3 && len(cur.sections) < 6 || len(cur.sections) < 3

		if fits && densityOK {
			cur.sections = append(cur.sections, s)
			curTokens += tok
			continue
		}

		flush()
		cur.sections = append(cur.sections, s)
		curTokens = tok
	}
	flush()
	return groups
}

func redistributeUndersized(groups []group) []group {
	changed := true
	for changed {
		changed = false
		for i := range groups {
			if groupTokens(groups[i]) >= redistributeFloor {
				continue
			}
			if i+1 < len(groups) && tryMerge(&groups, i, i+1) {
				changed = true
				break
			}
			if i > 0 && tryMerge(&groups, i-1, i) {
				changed = true
				break
			}
		}
	}
	return groups
}

func tryMerge(groups *[]group, a, b int) bool {
	g := *groups
	merged := group{sections: append(append([]section{}, g[a].sections...), g[b].sections...)}
	if groupTokens(merged) > maxTokens || len(merged.sections) > redistributeMaxGroup {
		return false
	}
	out := append([]group{}, g[:a]...)
	out = append(out, merged)
	out = append(out, g[b+1:]...)
	*groups = out
	return true
}

// addOverlap prepends a trailing slice of the previous group's final
// section body (stripped of any prior overlap marker) to every group after
// the first.
func addOverlap(groups []group) {
	for i := 1; i < len(groups); i++ {
		prevSections := groups[i-1].sections
		if len(prevSections) == 0 || len(groups[i].sections) == 0 {
			continue
		}
		prevBody := prevSections[len(prevSections)-1].body
		stripped := overlapMarkerPattern.ReplaceAllString(prevBody, "")
		if strings.TrimSpace(stripped) == "" {
			stripped = prevBody
		}
		tail := stripped
		if len(tail) > overlapChars {
			tail = tail[len(tail)-overlapChars:]
		}
		marker := fmt.Sprintf("[Previous context: %s]", strings.TrimSpace(tail))
		first := &groups[i].sections[0]
		first.body = marker + "\n\n" + first.body
	}
}

func emitGroup(filePath string, idx int, g group) (model.EntityChunk, model.EntityChunk) {
	var bodies []string
	var totalWords, totalLines int
	for _, s := range g.sections {
		bodies = append(bodies, s.headerWithLevel()+" \n\n "+s.body)
		totalWords += len(strings.Fields(s.body))
		totalLines += s.endLine - s.startLine + 1
	}
	content := strings.Join(bodies, "\n\n")
	startLine := g.sections[0].startLine
	endLine := g.sections[len(g.sections)-1].endLine
	name := fmt.Sprintf("%s#group-%d", filePath, idx)

	implID := model.ChunkID(filePath, model.EntityDocumentation, name, model.ChunkImplementation, startLine, endLine)
	impl := model.EntityChunk{
		ID:         implID,
		EntityName: name,
		ChunkType:  model.ChunkImplementation,
		Content:    content,
		Metadata: model.ChunkInfo{
			EntityType: model.EntityDocumentation,
			FilePath:   filePath,
			StartLine:  startLine,
			EndLine:    endLine,
		},
	}

	preview := content
	if len(preview) > 300 {
		preview = preview[:300]
	}
	metaContent := fmt.Sprintf(
		"Sections: %d | Tokens: %d | Preview: %s | Lines: %d | Words: %d\nBM25: %s",
		len(g.sections), estimateTokens(content), preview, totalLines, totalWords,
		bm25Representation(g),
	)
	metaID := model.ChunkID(filePath, model.EntityDocumentation, name, model.ChunkMetadata, startLine, endLine)
	meta := model.EntityChunk{
		ID:         metaID,
		EntityName: name,
		ChunkType:  model.ChunkMetadata,
		Content:    metaContent,
		Metadata: model.ChunkInfo{
			EntityType: model.EntityDocumentation,
			FilePath:   filePath,
			StartLine:  startLine,
			EndLine:    endLine,
		},
	}
	return impl, meta
}

// bm25Representation joins the group's section headers into one line,
// giving a keyword-dense alternate view for sparse (BM25-style) retrieval
// over a chunk that is otherwise headed by prose. Words from the section
// bodies are not included.
func bm25Representation(g group) string {
	var headers []string
	for _, s := range g.sections {
		if s.header != "" {
			headers = append(headers, s.header)
		}
	}
	return strings.Join(headers, " ")
}
