package linker

import (
	"testing"

	"github.com/rlefko/semindex/internal/model"
)

func TestContainsEmitsForCodeEntitiesNotDocumentation(t *testing.T) {
	result := &model.ParseResult{
		Entities: []model.Entity{
			{Name: "mod.py", EntityType: model.EntityFile},
			{Name: "helper", EntityType: model.EntityFunction},
			{Name: "Widget", EntityType: model.EntityClass},
			{Name: "mod.py::docs", EntityType: model.EntityDocumentation},
		},
	}
	Link(result, nil)

	want := map[string]bool{"helper": false, "Widget": false}
	for _, r := range result.Relations {
		if r.RelationType != model.RelationContains {
			continue
		}
		if r.FromEntity != "mod.py" {
			t.Errorf("expected CONTAINS from mod.py, got %s", r.FromEntity)
		}
		if _, ok := want[r.ToEntity]; ok {
			want[r.ToEntity] = true
		}
		if r.ToEntity == "mod.py::docs" {
			t.Error("did not expect CONTAINS for a DOCUMENTATION entity")
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected a CONTAINS relation to %s", name)
		}
	}
}

func TestCallsFiltersUnknownCallees(t *testing.T) {
	result := &model.ParseResult{
		Entities: []model.Entity{
			{Name: "mod.py", EntityType: model.EntityFile},
			{Name: "caller", EntityType: model.EntityFunction},
			{Name: "helper", EntityType: model.EntityFunction},
		},
		ImplementationChunks: []model.EntityChunk{
			{
				EntityName: "caller",
				Metadata: model.ChunkInfo{
					Semantic: &model.SemanticMetadata{Calls: []string{"helper", "unknown_thing", "caller"}},
				},
			},
		},
	}
	Link(result, map[string]struct{}{"external_known": {}})

	var gotHelper, gotUnknown, gotSelf bool
	for _, r := range result.Relations {
		if r.RelationType != model.RelationCalls {
			continue
		}
		switch r.ToEntity {
		case "helper":
			gotHelper = true
		case "unknown_thing":
			gotUnknown = true
		case "caller":
			gotSelf = true
		}
	}
	if !gotHelper {
		t.Error("expected CALLS to helper (known in-file entity)")
	}
	if gotUnknown {
		t.Error("did not expect CALLS to an unknown callee")
	}
	if gotSelf {
		t.Error("did not expect a self-referential CALLS edge")
	}
}

func TestCallsUsesGlobalEntityNames(t *testing.T) {
	result := &model.ParseResult{
		Entities: []model.Entity{
			{Name: "mod.py", EntityType: model.EntityFile},
			{Name: "caller", EntityType: model.EntityFunction},
		},
		ImplementationChunks: []model.EntityChunk{
			{
				EntityName: "caller",
				Metadata: model.ChunkInfo{
					Semantic: &model.SemanticMetadata{Calls: []string{"other_module_fn"}},
				},
			},
		},
	}
	Link(result, map[string]struct{}{"other_module_fn": {}})

	found := false
	for _, r := range result.Relations {
		if r.RelationType == model.RelationCalls && r.ToEntity == "other_module_fn" {
			found = true
		}
	}
	if !found {
		t.Error("expected CALLS to resolve against globalEntityNames")
	}
}
