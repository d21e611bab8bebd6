package model

import "testing"

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("foo.py", EntityFunction, "bar", ChunkImplementation, 10, 20)
	b := ChunkID("foo.py", EntityFunction, "bar", ChunkImplementation, 10, 20)
	if a != b {
		t.Fatalf("expected deterministic id, got %q vs %q", a, b)
	}
}

func TestChunkIDVariesWithLineRange(t *testing.T) {
	a := ChunkID("foo.py", EntityFunction, "bar", ChunkImplementation, 10, 20)
	b := ChunkID("foo.py", EntityFunction, "bar", ChunkImplementation, 10, 21)
	if a == b {
		t.Fatalf("expected ids to differ when line range changes")
	}
}

func TestChunkIDHasReadablePrefix(t *testing.T) {
	id := ChunkID("pkg/mod.py", EntityClass, "Widget", ChunkMetadata, 1, 5)
	want := "pkg/mod.py::class::Widget::metadata::"
	if len(id) <= len(want) || id[:len(want)] != want {
		t.Fatalf("expected id to start with %q, got %q", want, id)
	}
}
