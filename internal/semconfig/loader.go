package semconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader loads Config with priority flags > env > project file > defaults.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	flags   *cobra.Command
}

// NewLoader builds a Loader rooted at rootDir. flags, when non-nil, has its
// persistent flags bound into viper ahead of the project file and defaults,
// giving command-line overrides top priority.
func NewLoader(rootDir string, flags *cobra.Command) Loader {
	return &loader{rootDir: rootDir, flags: flags}
}

// Load reads .semindex/config.yml (or .toml) relative to rootDir, layers in
// SEMINDEX_* environment variables and any bound cobra flags, and falls back
// to Default() for anything left unset.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".semindex")
	v.SetConfigName("config")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("SEMINDEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if l.flags != nil {
		if err := v.BindPFlags(l.flags.Flags()); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := l.readProjectFile(v, configDir); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readProjectFile tries config.yml via viper first, then falls back to a
// hand-decoded config.toml (some retrieved projects favor TOML over YAML for
// this purpose, and viper's TOML support is opt-in per build).
func (l *loader) readProjectFile(v *viper.Viper, configDir string) error {
	v.SetConfigType("yaml")
	v.SetConfigFile(filepath.Join(configDir, "config.yml"))
	if err := v.ReadInConfig(); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read config file: %w", err)
	}

	tomlPath := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(tomlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", tomlPath, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", tomlPath, err)
	}
	return v.MergeConfigMap(raw)
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("use_ts_server", d.UseTSServer)
	v.SetDefault("special_files", d.SpecialFiles)
	v.SetDefault("content_only", d.ContentOnly)
	v.SetDefault("max_content_items", d.MaxContentItems)
	v.SetDefault("project_path", d.ProjectPath)

	v.SetDefault("paths.code", d.Paths.Code)
	v.SetDefault("paths.docs", d.Paths.Docs)
	v.SetDefault("paths.ignore", d.Paths.Ignore)

	v.SetDefault("chunking.doc_chunk_size", d.Chunking.DocChunkSize)
	v.SetDefault("chunking.code_chunk_size", d.Chunking.CodeChunkSize)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)

	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadFromDir is a convenience wrapper with no flag binding.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, nil).Load()
}
