// Package registry implements the ParserRegistry: extension-based parser
// dispatch in front of an optional content-hash ParseResultCache.
package registry

import (
	"fmt"
	"os"

	"github.com/rlefko/semindex/internal/langparser"
	"github.com/rlefko/semindex/internal/linker"
	"github.com/rlefko/semindex/internal/model"
	"github.com/rlefko/semindex/internal/parsecache"
)

// Registry selects a parser by file extension (first match wins) and, when
// a ParseResultCache is wired in, consults it before invoking the parser.
type Registry struct {
	parsers []langparser.LanguageParser
	cache   *parsecache.Cache
}

// New builds a Registry over parsers, consulting cache when non-nil.
func New(parsers []langparser.LanguageParser, cache *parsecache.Cache) *Registry {
	return &Registry{parsers: parsers, cache: cache}
}

// Default builds a Registry with every built-in language parser plus the
// JSON and Markdown format parsers.
func Default(cache *parsecache.Cache) *Registry {
	all := langparser.All()
	parsers := make([]langparser.LanguageParser, 0, len(all)+2)
	for _, p := range all {
		parsers = append(parsers, p)
	}
	parsers = append(parsers, langparser.NewJSON(), langparser.NewMarkdown())
	return New(parsers, cache)
}

func (r *Registry) selectParser(path string) langparser.LanguageParser {
	for _, p := range r.parsers {
		if p.CanParse(path) {
			return p
		}
	}
	return nil
}

// ParseFile reads path, dispatches to the first matching parser, and
// returns its ParseResult. When a ParseResultCache is wired in, a cache hit
// on the file's content hash short-circuits parsing entirely; a miss parses
// and stores the result under that hash. globalEntityNames, when supplied,
// is passed through to the CALLS linking step (§4.11) so this file's calls
// can resolve against entities already discovered elsewhere in the run.
func (r *Registry) ParseFile(path string, globalEntityNames map[string]struct{}) (*model.ParseResult, error) {
	parser := r.selectParser(path)
	if parser == nil {
		return nil, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if r.cache != nil {
		hash := parsecache.ComputeContentHash(string(source))
		if cached := r.cache.Get(hash); cached != nil {
			return cached, nil
		}
		result, err := parser.Parse(path, source)
		if err != nil {
			return nil, err
		}
		if result != nil {
			linker.Link(result, globalEntityNames)
			result.FileHash = hash
			if err := r.cache.Set(hash, result); err != nil {
				return result, err
			}
		}
		return result, nil
	}

	result, err := parser.Parse(path, source)
	if err != nil {
		return nil, err
	}
	if result != nil {
		linker.Link(result, globalEntityNames)
	}
	return result, nil
}
