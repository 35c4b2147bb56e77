// Package config loads and validates QFS configuration, layering hardcoded
// defaults, a user config file, a project config file, and environment
// variable overrides (spec §2.3).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete QFS configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	MultiGet   MultiGetConfig   `yaml:"multi_get" json:"multi_get"`
	Watch      WatchConfig      `yaml:"watch" json:"watch"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// PathsConfig configures where the index database and logs live.
type PathsConfig struct {
	// Database is the SQLite file path. Empty uses the default
	// per-project location resolved by (*Config).DatabasePath.
	Database string `yaml:"database" json:"database"`
	LogDir   string `yaml:"log_dir" json:"log_dir"`
}

// SearchConfig configures BM25/vector/hybrid search defaults.
type SearchConfig struct {
	// RRFConstant is the k in RRF's 1/(k+rank) formula.
	RRFConstant int     `yaml:"rrf_constant" json:"rrf_constant"`
	DefaultMode string  `yaml:"default_mode" json:"default_mode"`
	DefaultLimit int    `yaml:"default_limit" json:"default_limit"`
	MinScore    float64 `yaml:"min_score" json:"min_score"`
	IncludeBinary bool  `yaml:"include_binary" json:"include_binary"`
}

// EmbeddingsConfig configures the embedding provider used for vector search
// and indexing.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
}

// MultiGetConfig configures bulk-fetch defaults for multi_get and get.
type MultiGetConfig struct {
	MaxBytes int `yaml:"max_bytes" json:"max_bytes"`
	MaxLines int `yaml:"max_lines" json:"max_lines"`
}

// WatchConfig configures the filesystem watcher's debounce behavior.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_millis" json:"debounce_millis"`
}

// ServerConfig configures the RPC tool server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Database: "",
			LogDir:   "",
		},
		Search: SearchConfig{
			RRFConstant:   60,
			DefaultMode:   "hybrid",
			DefaultLimit:  20,
			MinScore:      0,
			IncludeBinary: false,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "",
			Model:      "",
			Dimensions: 384,
			BatchSize:  32,
			OllamaHost: "",
		},
		MultiGet: MultiGetConfig{
			MaxBytes: 10240,
			MaxLines: 0,
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file,
// honoring XDG_CONFIG_HOME.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "qfs", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "qfs", "config.yaml")
	}
	return filepath.Join(home, ".config", "qfs", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := Default()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves configuration for dir in order of increasing precedence:
//  1. hardcoded defaults
//  2. user config (~/.config/qfs/config.yaml)
//  3. project config (.qfs.yaml or .qfs.yml in dir)
//  4. QFS_* environment variables
func Load(dir string) (*Config, error) {
	cfg := Default()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".qfs.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".qfs.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.Database != "" {
		c.Paths.Database = other.Paths.Database
	}
	if other.Paths.LogDir != "" {
		c.Paths.LogDir = other.Paths.LogDir
	}

	if other.Search.RRFConstant != 0 {
		c.Search.RRFConstant = other.Search.RRFConstant
	}
	if other.Search.DefaultMode != "" {
		c.Search.DefaultMode = other.Search.DefaultMode
	}
	if other.Search.DefaultLimit != 0 {
		c.Search.DefaultLimit = other.Search.DefaultLimit
	}
	if other.Search.MinScore != 0 {
		c.Search.MinScore = other.Search.MinScore
	}
	if other.Search.IncludeBinary {
		c.Search.IncludeBinary = true
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}

	if other.MultiGet.MaxBytes != 0 {
		c.MultiGet.MaxBytes = other.MultiGet.MaxBytes
	}
	if other.MultiGet.MaxLines != 0 {
		c.MultiGet.MaxLines = other.MultiGet.MaxLines
	}

	if other.Watch.DebounceMillis != 0 {
		c.Watch.DebounceMillis = other.Watch.DebounceMillis
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies QFS_* environment variable overrides, the
// highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QFS_DATABASE"); v != "" {
		c.Paths.Database = v
	}
	if v := os.Getenv("QFS_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.RRFConstant = n
		}
	}
	if v := os.Getenv("QFS_SEARCH_MODE"); v != "" {
		c.Search.DefaultMode = v
	}
	if v := os.Getenv("QFS_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("QFS_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.MinScore = f
		}
	}
	if v := os.Getenv("QFS_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("QFS_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("QFS_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("QFS_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MultiGet.MaxBytes = n
		}
	}
	if v := os.Getenv("QFS_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("QFS_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Search.RRFConstant <= 0 {
		return fmt.Errorf("search.rrf_constant must be positive, got %d", c.Search.RRFConstant)
	}
	if c.Search.DefaultLimit < 0 {
		return fmt.Errorf("search.default_limit must be non-negative, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MinScore < 0 {
		return fmt.Errorf("search.min_score must be non-negative, got %f", c.Search.MinScore)
	}

	validModes := map[string]bool{"bm25": true, "vector": true, "hybrid": true}
	if !validModes[strings.ToLower(c.Search.DefaultMode)] {
		return fmt.Errorf("search.default_mode must be 'bm25', 'vector', or 'hybrid', got %s", c.Search.DefaultMode)
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"ollama": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama', 'static', or empty (auto-detect), got %s", c.Embeddings.Provider)
		}
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}

	if c.MultiGet.MaxBytes <= 0 {
		return fmt.Errorf("multi_get.max_bytes must be positive, got %d", c.MultiGet.MaxBytes)
	}

	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'sse', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML marshals the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads only the user/global config, defaults applied where
// absent. Used by CLI commands that inspect or edit the user config in
// isolation from any project.
func LoadUserConfig() (*Config, error) {
	cfg := Default()
	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FindProjectRoot walks up from startDir looking for a ".git" directory or
// a ".qfs.yaml"/".qfs.yml" project config file. Falls back to startDir
// (made absolute) if neither is found before reaching the filesystem root.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".qfs.yaml")) || fileExists(filepath.Join(currentDir, ".qfs.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// DatabasePath resolves the SQLite database path for root, honoring an
// explicit override and otherwise defaulting to "<root>/.qfs/qfs.db".
func (c *Config) DatabasePath(root string) string {
	if c.Paths.Database != "" {
		return c.Paths.Database
	}
	return filepath.Join(root, ".qfs", "qfs.db")
}
