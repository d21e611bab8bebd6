package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// NewPython builds the dynamic-typed scripting language parser.
func NewPython() *Parser {
	return New(sitter.NewLanguage(python.Language()), PythonConfig())
}

// NewTypeScript builds the typed-variant parser, also used for plain
// JavaScript (the curly-brace scripting row) since the TypeScript grammar
// parses untyped JS as a subset.
func NewTypeScript() *Parser {
	return New(sitter.NewLanguage(typescript.LanguageTypescript()), TypeScriptConfig())
}

// NewTSX builds a parser for .tsx sources using the JSX-aware grammar
// variant; it shares TypeScriptConfig's node-kind tables.
func NewTSX() *Parser {
	cfg := TypeScriptConfig()
	cfg.Name = "tsx"
	cfg.Extensions = []string{".tsx"}
	return New(sitter.NewLanguage(typescript.LanguageTSX()), cfg)
}

// NewJava builds the Java parser (curly-brace matrix row, generalized).
func NewJava() *Parser {
	return New(sitter.NewLanguage(java.Language()), JavaConfig())
}

// NewC builds the C parser (curly-brace matrix row, generalized; no
// classes, structs occupy the type-declaration slot).
func NewC() *Parser {
	return New(sitter.NewLanguage(c.Language()), CConfig())
}

// NewPHP builds the PHP parser (curly-brace matrix row, generalized).
func NewPHP() *Parser {
	return New(sitter.NewLanguage(php.LanguagePHP()), PHPConfig())
}

// NewRuby builds the Ruby parser (curly-brace matrix row, generalized to
// Ruby's do/end block shape).
func NewRuby() *Parser {
	return New(sitter.NewLanguage(ruby.Language()), RubyConfig())
}

// NewRust builds the Rust parser (curly-brace matrix row, generalized).
func NewRust() *Parser {
	return New(sitter.NewLanguage(rust.Language()), RustConfig())
}

// All returns one instance of every tree-sitter-backed language parser as a
// plain slice; each parser's SupportedExtensions lists the file extensions
// it claims.
func All() []*Parser {
	return []*Parser{
		NewPython(), NewTypeScript(), NewTSX(), NewJava(), NewC(), NewPHP(), NewRuby(), NewRust(),
	}
}
