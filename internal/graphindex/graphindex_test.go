package graphindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlefko/semindex/internal/model"
)

func TestAddResultBuildsContainmentAndCallPath(t *testing.T) {
	idx := New()

	idx.AddResult(&model.ParseResult{
		Entities: []model.Entity{
			{Name: "widget.py", EntityType: model.EntityFile},
			{Name: "main", EntityType: model.EntityFunction},
			{Name: "helper", EntityType: model.EntityFunction},
		},
		Relations: []model.Relation{
			{FromEntity: "widget.py", ToEntity: "main", RelationType: model.RelationContains},
			{FromEntity: "widget.py", ToEntity: "helper", RelationType: model.RelationContains},
			{FromEntity: "main", ToEntity: "helper", RelationType: model.RelationCalls},
		},
	})

	contained := idx.Containment("widget.py")
	assert.ElementsMatch(t, []string{"main", "helper"}, contained)

	path, ok := idx.CallPath("main", "helper")
	assert.True(t, ok)
	assert.Equal(t, []string{"main", "helper"}, path)

	stats := idx.Stats()
	assert.Equal(t, 3, stats.Vertices)
	assert.Equal(t, 3, stats.Edges)
}

func TestCallPathReturnsFalseWhenUnreachable(t *testing.T) {
	idx := New()
	idx.AddResult(&model.ParseResult{
		Entities: []model.Entity{
			{Name: "a", EntityType: model.EntityFunction},
			{Name: "b", EntityType: model.EntityFunction},
		},
	})

	_, ok := idx.CallPath("a", "b")
	assert.False(t, ok)
}

func TestContainmentEmptyForUnknownFile(t *testing.T) {
	idx := New()
	assert.Empty(t, idx.Containment("nonexistent.go"))
}

func TestAddResultNilIsNoop(t *testing.T) {
	idx := New()
	idx.AddResult(nil)
	stats := idx.Stats()
	assert.Equal(t, 0, stats.Vertices)
}
