// Package semconfig implements the Config collaborator: a layered loader
// (flags > env > project file > defaults) for the indexer's runtime knobs.
package semconfig

// Config is the complete runtime configuration for an indexing run.
type Config struct {
	UseTSServer     bool     `mapstructure:"use_ts_server"`
	SpecialFiles    []string `mapstructure:"special_files"`
	ContentOnly     bool     `mapstructure:"content_only"`
	MaxContentItems int      `mapstructure:"max_content_items"`
	ProjectPath     string   `mapstructure:"project_path"`

	Paths    PathsConfig    `mapstructure:"paths"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Code   []string `mapstructure:"code"`
	Docs   []string `mapstructure:"docs"`
	Ignore []string `mapstructure:"ignore"`
}

// ChunkingConfig defines how documentation and code content is chunked.
type ChunkingConfig struct {
	DocChunkSize  int `mapstructure:"doc_chunk_size"`
	CodeChunkSize int `mapstructure:"code_chunk_size"`
	Overlap       int `mapstructure:"overlap"`
}

// LoggingConfig configures the Logger collaborator.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		UseTSServer:     false,
		SpecialFiles:    []string{"package.json", "tsconfig.json"},
		ContentOnly:     false,
		MaxContentItems: 50,
		ProjectPath:     ".",
		Paths: PathsConfig{
			Code: []string{
				"**/*.py", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
				"**/*.java", "**/*.c", "**/*.h", "**/*.php", "**/*.rb", "**/*.rs",
			},
			Docs: []string{"**/*.md"},
			Ignore: []string{
				"node_modules/**", "vendor/**", ".git/**", "dist/**",
				"build/**", "target/**", "__pycache__/**",
			},
		},
		Chunking: ChunkingConfig{
			DocChunkSize:  800,
			CodeChunkSize: 2000,
			Overlap:       100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
