package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.TopN != 20 {
		t.Errorf("expected default top_n 20, got %d", cfg.TopN)
	}
	if cfg.MaxPages != 3 {
		t.Errorf("expected default max_pages 3, got %d", cfg.MaxPages)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Errorf("expected default timeout 10, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Retries == nil || *cfg.Retries != 2 {
		t.Errorf("expected default retries 2, got %v", cfg.Retries)
	}
	if cfg.Sort != "Most Reactions" {
		t.Errorf("expected default sort Most Reactions, got %q", cfg.Sort)
	}
	if cfg.APIBaseURL != "https://civitai.com/api/v1" {
		t.Errorf("unexpected API base URL: %q", cfg.APIBaseURL)
	}
	if cfg.CacheDir == "" || cfg.HistoryDB == "" {
		t.Error("cache dir and history db must have defaults")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		content := []byte("cache_dir: /tmp/civitai-cache\ntop_n: 50\nsort: Newest\nlora_dirs:\n  - /models/loras\n")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.CacheDir != "/tmp/civitai-cache" {
			t.Errorf("unexpected cache dir: %q", cfg.CacheDir)
		}
		if cfg.TopN != 50 {
			t.Errorf("unexpected top_n: %d", cfg.TopN)
		}
		if cfg.Sort != "Newest" {
			t.Errorf("unexpected sort: %q", cfg.Sort)
		}
		if len(cfg.LoraDirs) != 1 || cfg.LoraDirs[0] != "/models/loras" {
			t.Errorf("unexpected lora dirs: %v", cfg.LoraDirs)
		}
		// Unset fields still receive defaults.
		if cfg.MaxPages != 3 {
			t.Errorf("expected default max_pages, got %d", cfg.MaxPages)
		}
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		content := []byte(`{"max_pages": 7, "server_port": 9000}`)
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.MaxPages != 7 || cfg.ServerPort != 9000 {
			t.Errorf("unexpected values: %+v", cfg)
		}
	})

	t.Run("explicit zero retries is kept", func(t *testing.T) {
		path := filepath.Join(dir, "zero-retries.yaml")
		if err := os.WriteFile(path, []byte("retries: 0\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Retries == nil || *cfg.Retries != 0 {
			t.Errorf("retries 0 from file should survive defaulting, got %v", cfg.Retries)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("x = 1"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestEnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("top_n: 50\ncache_dir: /from/file\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("CIVITAI_TOP_N", "99")
	t.Setenv("CIVITAI_CACHE_DIR", "/from/env")
	t.Setenv("CIVITAI_SORT", "Most Comments")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TopN != 99 {
		t.Errorf("env should override file: got top_n %d", cfg.TopN)
	}
	if cfg.CacheDir != "/from/env" {
		t.Errorf("env should override file: got cache dir %q", cfg.CacheDir)
	}
	if cfg.Sort != "Most Comments" {
		t.Errorf("env should set sort: got %q", cfg.Sort)
	}
}

func TestValidateCreatesCacheDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		CacheDir:  filepath.Join(dir, "nested", "cache"),
		HistoryDB: filepath.Join(dir, "nested", "history.db"),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if _, err := os.Stat(cfg.CacheDir); err != nil {
		t.Errorf("cache dir was not created: %v", err)
	}
}
