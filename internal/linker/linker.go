// Package linker performs the two post-extraction relation synthesis steps
// every language parser hands off to: CONTAINS (file to every function,
// class, interface, variable and import entity; documentation entities get
// none) and CALLS (implementation-chunk callees filtered against a known-
// name universe). Running this as a separate pass, rather than inline
// during AST extraction, lets CALLS consult entity names gathered from
// other files in the same indexing run.
package linker

import "github.com/rlefko/semindex/internal/model"

var containable = map[model.EntityType]struct{}{
	model.EntityFunction:  {},
	model.EntityClass:     {},
	model.EntityInterface: {},
	model.EntityVariable:  {},
	model.EntityImport:    {},
}

// Link appends CONTAINS and CALLS relations to result.Relations.
// globalEntityNames supplies the project-wide name universe accumulated
// from files already parsed in this run; it may be nil for a first pass.
func Link(result *model.ParseResult, globalEntityNames map[string]struct{}) {
	result.Relations = append(result.Relations, contains(result)...)
	result.Relations = append(result.Relations, calls(result, globalEntityNames)...)
}

// contains emits CONTAINS(file, entity.name) for every FUNCTION, CLASS,
// INTERFACE, VARIABLE, and IMPORT entity in the result.
func contains(result *model.ParseResult) []model.Relation {
	var file string
	for _, e := range result.Entities {
		if e.EntityType == model.EntityFile {
			file = e.Name
			break
		}
	}
	if file == "" {
		return nil
	}
	var rels []model.Relation
	for _, e := range result.Entities {
		if _, ok := containable[e.EntityType]; ok {
			rels = append(rels, model.Relation{
				FromEntity: file, ToEntity: e.Name, RelationType: model.RelationContains,
			})
		}
	}
	return rels
}

// calls builds known_names = {entity names in this result} ∪
// globalEntityNames, then for every implementation chunk emits
// CALLS(chunk.entity_name, callee) for each callee in known_names other
// than the chunk's own entity name.
func calls(result *model.ParseResult, globalEntityNames map[string]struct{}) []model.Relation {
	known := make(map[string]struct{}, len(result.Entities)+len(globalEntityNames))
	for _, e := range result.Entities {
		known[e.Name] = struct{}{}
	}
	for n := range globalEntityNames {
		known[n] = struct{}{}
	}

	var rels []model.Relation
	for _, chunk := range result.ImplementationChunks {
		if chunk.Metadata.Semantic == nil {
			continue
		}
		for _, callee := range chunk.Metadata.Semantic.Calls {
			if callee == "" || callee == chunk.EntityName {
				continue
			}
			if _, ok := known[callee]; !ok {
				continue
			}
			rels = append(rels, model.Relation{
				FromEntity: chunk.EntityName, ToEntity: callee, RelationType: model.RelationCalls,
			})
		}
	}
	return rels
}

// EntityNames collects every entity name in result, for callers to
// accumulate into a cross-file globalEntityNames set.
func EntityNames(result *model.ParseResult) []string {
	names := make([]string, 0, len(result.Entities))
	for _, e := range result.Entities {
		names = append(names, e.Name)
	}
	return names
}
