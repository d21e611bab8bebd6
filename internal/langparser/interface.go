package langparser

import "github.com/rlefko/semindex/internal/model"

// LanguageParser is the contract every per-language (and per-format) parser
// satisfies: extension-based applicability plus a single-file parse.
type LanguageParser interface {
	Language() string
	SupportedExtensions() []string
	CanParse(filePath string) bool
	Parse(filePath string, source []byte) (*model.ParseResult, error)
}

var (
	_ LanguageParser = (*Parser)(nil)
	_ LanguageParser = (*JSONParser)(nil)
	_ LanguageParser = (*MarkdownParser)(nil)
)
