package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// withTempConfigHome points XDG_CONFIG_HOME at a temp directory so
// getConfigDir() resolves inside the test sandbox.
func withTempConfigHome(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Cleanup(func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	return tmpDir
}

func TestInitConfig_Success(t *testing.T) {
	withTempConfigHome(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	expectedSections := []string{
		"# JabaBox Configuration File",
		"logging:",
		"database:",
		"storage:",
		"api:",
		"bootstrap:",
	}

	for _, section := range expectedSections {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	// The generated file must be valid YAML
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}

	// The generated JWT secret must satisfy the minimum length
	if len(cfg.API.JWT.Secret) < 32 {
		t.Errorf("Generated JWT secret too short: %d characters", len(cfg.API.JWT.Secret))
	}
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	withTempConfigHome(t)

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	_, err := InitConfig(false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}
}

func TestInitConfig_Force(t *testing.T) {
	withTempConfigHome(t)

	first, err := InitConfig(false)
	if err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}
	firstContent, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	second, err := InitConfig(true)
	if err != nil {
		t.Fatalf("InitConfig with force failed: %v", err)
	}
	secondContent, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	// A new secret is generated on overwrite
	if string(firstContent) == string(secondContent) {
		t.Error("Expected force overwrite to regenerate the config")
	}
}

func TestInitConfigToPath_CustomPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	// The generated file must load and validate
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Generated config failed to load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.API.Port)
	}
}
