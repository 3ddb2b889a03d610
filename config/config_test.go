package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benoitkugler/svgmerge/svgbg"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Canvas.Width != 1600 || cfg.Canvas.Height != 800 {
		t.Errorf("expected default canvas 1600x800, got %v", cfg.Canvas)
	}
	if cfg.Background != svgbg.Default() {
		t.Errorf("unexpected default background %v", cfg.Background)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %s", cfg.Fetch.Timeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr ':8080', got %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %s", err)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
}

func TestSave_And_Load(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Canvas.Width = 1024
	cfg.Background.Pattern = svgbg.Grid
	cfg.Fetch.Timeout = 3 * time.Second
	cfg.LogLevel = "debug"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
	if level, _ := loaded.Level(); level != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", level)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
canvas:
  width: 800
fetch:
  timeout: 2s
  user_agent: ""
server:
  addr: ""
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 800 {
		t.Errorf("unexpected canvas %v", cfg.Canvas)
	}
	if cfg.Fetch.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.UserAgent == "" || cfg.Server.Addr != ":8080" {
		t.Error("empty fields should get their default value")
	}
	if fc := cfg.FetcherConfig(); fc.Timeout != 2*time.Second || fc.MaxBytes != 5<<20 {
		t.Errorf("unexpected fetcher config %+v", fc)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"syntax":     "canvas: [",
		"level":      "log_level: loud",
		"background": "background:\n  color: blue",
		"canvas":     "canvas:\n  width: -3",
	} {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.yaml" {
		t.Errorf("expected the environment path, got %q", path)
	}
}
