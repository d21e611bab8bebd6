package mdchunk

import (
	"strings"
	"testing"

	"github.com/rlefko/semindex/internal/model"
)

func TestChunkEmptySourceReturnsNil(t *testing.T) {
	if got := Chunk("   \n\n", "doc.md"); got != nil {
		t.Errorf("expected nil for blank source, got %v", got)
	}
}

func TestChunkProducesImplementationAndMetadataPairs(t *testing.T) {
	src := "# Title\n\nIntro text.\n\n## Section One\n\nSome body text here.\n\n## Section Two\n\nMore body text.\n"
	chunks := Chunk(src, "doc.md")
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk pair")
	}
	if len(chunks)%2 != 0 {
		t.Fatalf("expected an even number of chunks (impl+meta pairs), got %d", len(chunks))
	}
	for i := 0; i < len(chunks); i += 2 {
		if chunks[i].ChunkType != model.ChunkImplementation {
			t.Errorf("chunk %d: expected implementation chunk first, got %s", i, chunks[i].ChunkType)
		}
		if chunks[i+1].ChunkType != model.ChunkMetadata {
			t.Errorf("chunk %d: expected metadata chunk second, got %s", i+1, chunks[i+1].ChunkType)
		}
	}
}

func TestChunkOverlapPrependsPreviousContext(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Doc\n\n")
	for i := 0; i < 20; i++ {
		b.WriteString("## Section\n\n")
		b.WriteString(strings.Repeat("word ", 200))
		b.WriteString("\n\n")
	}
	chunks := Chunk(b.String(), "big.md")
	var implCount int
	var sawOverlap bool
	for _, c := range chunks {
		if c.ChunkType == model.ChunkImplementation {
			implCount++
			if implCount > 1 && strings.Contains(c.Content, "[Previous context:") {
				sawOverlap = true
			}
		}
	}
	if implCount < 2 {
		t.Skip("not enough groups produced to exercise overlap")
	}
	if !sawOverlap {
		t.Error("expected at least one non-first group to carry an overlap marker")
	}
}

func TestSectionizeH1OnlyEndsAtH1OrH2(t *testing.T) {
	src := "# Top\n\nIntro\n\n### Deep\n\nStill under top\n\n## Next\n\nNew section\n"
	secs := sectionize(src)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections (H1 absorbs H3, H2 starts new), got %d: %+v", len(secs), secs)
	}
	if secs[0].level != 1 || secs[1].level != 2 {
		t.Errorf("unexpected levels: %d, %d", secs[0].level, secs[1].level)
	}
}
