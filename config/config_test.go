package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.REPL.DefaultWidth != 32 {
		t.Errorf("Expected DefaultWidth=32, got %d", cfg.REPL.DefaultWidth)
	}
	if cfg.REPL.HistorySize != 1000 {
		t.Errorf("Expected HistorySize=1000, got %d", cfg.REPL.HistorySize)
	}
	if !cfg.REPL.EchoResults {
		t.Error("Expected EchoResults=true")
	}

	if cfg.Display.NumberFormat != "hex" {
		t.Errorf("Expected NumberFormat=hex, got %s", cfg.Display.NumberFormat)
	}
	if !cfg.Display.ColorOutput {
		t.Error("Expected ColorOutput=true")
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected Port=8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.AllowedOrigin != "localhost" {
		t.Errorf("Expected AllowedOrigin=localhost, got %s", cfg.Server.AllowedOrigin)
	}

	if cfg.Inspect.PanelWidth != 40 {
		t.Errorf("Expected PanelWidth=40, got %d", cfg.Inspect.PanelWidth)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "bitcore" && path != "config.toml" {
			t.Errorf("Expected path in bitcore directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Error("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("Expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.REPL.DefaultWidth = 64
	cfg.REPL.HistorySize = 500
	cfg.Display.ColorOutput = false
	cfg.Server.Port = 9090

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.REPL.DefaultWidth != 64 {
		t.Errorf("Expected DefaultWidth=64, got %d", loaded.REPL.DefaultWidth)
	}
	if loaded.REPL.HistorySize != 500 {
		t.Errorf("Expected HistorySize=500, got %d", loaded.REPL.HistorySize)
	}
	if loaded.Display.ColorOutput {
		t.Error("Expected ColorOutput=false")
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("Expected Port=9090, got %d", loaded.Server.Port)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.REPL.DefaultWidth != 32 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[repl]
default_width = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
