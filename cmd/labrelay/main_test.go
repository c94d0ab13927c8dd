package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bennettsmith-io/labrelay-core/internal/registry"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("LABRELAY_CONFIG")
	defer os.Setenv("LABRELAY_CONFIG", originalEnv)

	os.Setenv("LABRELAY_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("LABRELAY_CONFIG")
	defer os.Setenv("LABRELAY_CONFIG", originalEnv)
	os.Unsetenv("LABRELAY_CONFIG")

	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("LABRELAY_CONFIG")
	defer os.Setenv("LABRELAY_CONFIG", originalEnv)
	os.Setenv("LABRELAY_CONFIG", "/custom/config.yaml")

	if got := getConfigPath(); got != "/custom/config.yaml" {
		t.Errorf("getConfigPath() = %q, want /custom/config.yaml", got)
	}
}

func TestRegisterSystemObject(t *testing.T) {
	reg := registry.New()
	if err := registerSystemObject(reg, time.Now()); err != nil {
		t.Fatalf("registerSystemObject: %v", err)
	}

	for _, method := range []string{"ping", "uptime", "describe"} {
		if _, err := reg.Resolve("system", method); err != nil {
			t.Errorf("Resolve(system, %s): %v", method, err)
		}
	}
}

// TestRun_SuccessfulStartupAndShutdown starts a node on the in-process
// transport and verifies it shuts down cleanly on context cancellation.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
node:
  endpoint: test-node

transport:
  kind: memory

dispatch:
  mode: serial

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

influxdb:
  enabled: false

api:
  enabled: false

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("LABRELAY_CONFIG")
	defer os.Setenv("LABRELAY_CONFIG", originalEnv)
	os.Setenv("LABRELAY_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}
}
