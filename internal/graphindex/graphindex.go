// Package graphindex implements GraphIndex: an in-memory, run-scoped
// aggregation of per-file ParseResult entities/relations into a whole-
// project traversable graph (call chains, containment trees). It is built
// from the flat entities/relations arrays after the fact; it never replaces
// that shape as the on-disk or wire representation.
package graphindex

import (
	"github.com/dominikbraun/graph"

	"github.com/rlefko/semindex/internal/model"
)

// GraphStats summarizes the aggregated graph's size.
type GraphStats struct {
	Vertices int
	Edges    int
}

// Index aggregates ParseResults into a directed graph keyed by entity name,
// one vertex per entity and one edge per relation. Not safe for concurrent
// AddResult calls — it is a single-writer structure built sequentially after
// a parse wave completes.
type Index struct {
	g graph.Graph[string, string]

	// containment maps a file path to the names of entities it CONTAINS.
	containment map[string][]string
}

// New builds an empty GraphIndex.
func New() *Index {
	return &Index{
		g:           graph.New(graph.StringHash, graph.Directed()),
		containment: make(map[string][]string),
	}
}

// AddResult folds one file's entities and relations into the graph. Entities
// are added as vertices (duplicate adds are ignored); relations are added as
// edges, tolerating edges whose endpoints reference an entity not seen in
// this run (e.g. an external callee) by skipping them rather than failing.
func (x *Index) AddResult(r *model.ParseResult) {
	if r == nil {
		return
	}

	for _, e := range r.Entities {
		_ = x.g.AddVertex(e.Name)
	}

	for _, rel := range r.Relations {
		_ = x.g.AddEdge(rel.FromEntity, rel.ToEntity)
		if rel.RelationType == model.RelationContains {
			x.containment[rel.FromEntity] = append(x.containment[rel.FromEntity], rel.ToEntity)
		}
	}
}

// CallPath returns the shortest path of entity names from from to to,
// following any relation type as a traversable edge, and whether a path
// exists at all.
func (x *Index) CallPath(from, to string) ([]string, bool) {
	path, err := graph.ShortestPath(x.g, from, to)
	if err != nil {
		return nil, false
	}
	return path, true
}

// Containment returns the names of entities directly CONTAINed by file.
func (x *Index) Containment(file string) []string {
	return x.containment[file]
}

// Stats reports the current vertex and edge counts.
func (x *Index) Stats() GraphStats {
	order, _ := x.g.Order()
	size, _ := x.g.Size()
	return GraphStats{Vertices: order, Edges: size}
}
