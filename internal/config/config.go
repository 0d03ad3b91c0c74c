package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RefreshTarget names one node invocation the background refresher re-runs.
type RefreshTarget struct {
	Node string `yaml:"node" json:"node"`
	File string `yaml:"file" json:"file"`
}

// Config holds application configuration
type Config struct {
	// Storage
	CacheDir  string `yaml:"cache_dir" json:"cache_dir"`
	HistoryDB string `yaml:"history_db" json:"history_db"`

	// Model file locations
	CheckpointDirs []string `yaml:"checkpoint_dirs" json:"checkpoint_dirs"`
	LoraDirs       []string `yaml:"lora_dirs" json:"lora_dirs"`

	// Registry API
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
	APIKey     string `yaml:"api_key" json:"api_key"`

	// Fetch defaults, overridable per invocation. Retries is a pointer so
	// an explicit zero in a config file is distinct from unset.
	TopN           int    `yaml:"top_n" json:"top_n"`
	MaxPages       int    `yaml:"max_pages" json:"max_pages"`
	Sort           string `yaml:"sort" json:"sort"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	Retries        *int   `yaml:"retries" json:"retries"`

	// Server
	ServerPort int `yaml:"server_port" json:"server_port"`

	// Background refresh
	RefreshSchedule string          `yaml:"refresh_schedule" json:"refresh_schedule"`
	RefreshTargets  []RefreshTarget `yaml:"refresh_targets" json:"refresh_targets"`

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogJSON  bool   `yaml:"log_json" json:"log_json"`
}

// Load loads configuration with priority: file > env > defaults.
// An empty path checks the default config locations before falling back.
func Load(configPath string) (*Config, error) {
	var cfg *Config

	if configPath != "" {
		loaded, err := LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		homeDir, _ := os.UserHomeDir()
		candidates := []string{
			filepath.Join(homeDir, ".civitai-stats", "config.yaml"),
			filepath.Join(homeDir, ".civitai-stats", "config.yml"),
			filepath.Join(homeDir, ".civitai-stats", "config.json"),
			"config.yaml",
			"config.yml",
			"config.json",
		}
		for _, path := range candidates {
			if _, err := os.Stat(path); err == nil {
				loaded, err := LoadFromFile(path)
				if err != nil {
					return nil, err
				}
				cfg = loaded
				break
			}
		}
		if cfg == nil {
			cfg = &Config{}
			cfg.applyDefaults()
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Validate ensures the directories the pipeline writes to exist.
func (c *Config) Validate() error {
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if c.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(c.HistoryDB), 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".civitai-stats")

	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(baseDir, "cache")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(baseDir, "history.db")
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://civitai.com/api/v1"
	}
	if c.TopN == 0 {
		c.TopN = 20
	}
	if c.MaxPages == 0 {
		c.MaxPages = 3
	}
	if c.Sort == "" {
		c.Sort = "Most Reactions"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Retries == nil {
		retries := 2
		c.Retries = &retries
	}
	if c.ServerPort == 0 {
		c.ServerPort = 8650
	}
	if c.RefreshSchedule == "" {
		c.RefreshSchedule = "@every 12h"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := getEnv("CIVITAI_CACHE_DIR", ""); v != "" {
		c.CacheDir = v
	}
	if v := getEnv("CIVITAI_HISTORY_DB", ""); v != "" {
		c.HistoryDB = v
	}
	if v := getEnvList("CIVITAI_CHECKPOINT_DIRS"); len(v) > 0 {
		c.CheckpointDirs = v
	}
	if v := getEnvList("CIVITAI_LORA_DIRS"); len(v) > 0 {
		c.LoraDirs = v
	}
	if v := getEnv("CIVITAI_API_BASE_URL", ""); v != "" {
		c.APIBaseURL = v
	}
	if v := getEnv("CIVITAI_API_KEY", ""); v != "" {
		c.APIKey = v
	}
	if v := getEnvInt("CIVITAI_TOP_N", 0); v != 0 {
		c.TopN = v
	}
	if v := getEnvInt("CIVITAI_MAX_PAGES", 0); v != 0 {
		c.MaxPages = v
	}
	if v := getEnv("CIVITAI_SORT", ""); v != "" {
		c.Sort = v
	}
	if v := getEnvInt("CIVITAI_TIMEOUT", 0); v != 0 {
		c.TimeoutSeconds = v
	}
	if v := os.Getenv("CIVITAI_RETRIES"); v != "" {
		if retries, err := strconv.Atoi(v); err == nil {
			c.Retries = &retries
		}
	}
	if v := getEnvInt("CIVITAI_PORT", 0); v != 0 {
		c.ServerPort = v
	}
	if v := getEnv("CIVITAI_REFRESH_SCHEDULE", ""); v != "" {
		c.RefreshSchedule = v
	}
	if v := getEnv("CIVITAI_LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CIVITAI_LOG_JSON"); v != "" {
		c.LogJSON = getEnvBool("CIVITAI_LOG_JSON", false)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
