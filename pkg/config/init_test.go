package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitConfig_Success(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	for _, section := range []string{"# binlayout configuration file", "logging:", "codec:", "registry:", "server:"} {
		if !strings.Contains(string(content), section) {
			t.Errorf("Generated config is missing %q", section)
		}
	}
}

func TestInitConfigToPath_AlreadyExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("keep: me\n"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := InitConfigToPath(path, false); err == nil {
		t.Fatal("Expected error for existing file")
	}
	content, _ := os.ReadFile(path)
	if string(content) != "keep: me\n" {
		t.Error("Existing file was modified")
	}

	if err := InitConfigToPath(path, true); err != nil {
		t.Fatalf("InitConfigToPath with force failed: %v", err)
	}
	content, _ = os.ReadFile(path)
	if strings.Contains(string(content), "keep: me") {
		t.Error("Force did not overwrite the file")
	}
}

func TestGeneratedConfigIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Codec.MaxInputSize != DefaultMaxInputSize {
		t.Errorf("Expected default max_input_size, got %v", cfg.Codec.MaxInputSize)
	}
}
