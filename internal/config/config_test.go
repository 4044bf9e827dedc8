package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  listen_addr: "0.0.0.0:9090"
scheduler:
  worker_count: 8
  tick_interval: 250ms
transport:
  auth_token: "s3cr3t"
  allowed_origins:
    - "https://example.com"
  diagnostics_throttle: 50ms
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:9090" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, "0.0.0.0:9090")
	}
	if cfg.Scheduler.WorkerCount != 8 {
		t.Errorf("Scheduler.WorkerCount = %d, want 8", cfg.Scheduler.WorkerCount)
	}
	if cfg.Scheduler.TickInterval != 250*time.Millisecond {
		t.Errorf("Scheduler.TickInterval = %v, want 250ms", cfg.Scheduler.TickInterval)
	}
	if cfg.Transport.AuthToken != "s3cr3t" {
		t.Errorf("Transport.AuthToken = %q, want %q", cfg.Transport.AuthToken, "s3cr3t")
	}
	if len(cfg.Transport.AllowedOrigins) != 1 || cfg.Transport.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("Transport.AllowedOrigins = %v, want [https://example.com]", cfg.Transport.AllowedOrigins)
	}

	// A field left unset in the file should keep its default.
	if cfg.Transport.DiagnosticsSnapshot != 5*time.Second {
		t.Errorf("Transport.DiagnosticsSnapshot = %v, want default 5s", cfg.Transport.DiagnosticsSnapshot)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() on missing file should return error")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}

	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("Server.ListenAddr = %q, want default %q", cfg.Server.ListenAddr, DefaultListenAddr)
	}
	if cfg.Scheduler.WorkerCount != DefaultWorkerCount {
		t.Errorf("Scheduler.WorkerCount = %d, want default %d", cfg.Scheduler.WorkerCount, DefaultWorkerCount)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte(":::not valid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() with invalid YAML should return error")
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if len(tok) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("token length = %d, want 32", len(tok))
	}

	tok2, _ := GenerateToken()
	if tok == tok2 {
		t.Error("two generated tokens should not be identical")
	}
}
