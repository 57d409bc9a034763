package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ROBOCHESS_CONFIG",
		"ROBOCHESS_RECOVERY_FILE",
		"ROBOCHESS_ENGINE_PATH",
		"ROBOCHESS_ENGINE_DEPTH",
		"ROBOCHESS_ENGINE_TIMEOUT_SEC",
		"ROBOCHESS_REDIS_URL",
		"ROBOCHESS_DATABASE_URL",
		"ROBOCHESS_WATCHDOG_INTERVAL_SEC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecoveryFile != "recovery.json" {
		t.Errorf("recovery file default: %q", cfg.RecoveryFile)
	}
	if cfg.EngineDepth != 12 || cfg.EngineTimeout != 10*time.Second {
		t.Errorf("engine defaults: depth=%d timeout=%v", cfg.EngineDepth, cfg.EngineTimeout)
	}
	if cfg.WatchdogInterval != 5*time.Second {
		t.Errorf("watchdog default: %v", cfg.WatchdogInterval)
	}
	if cfg.EnginePath != "" || cfg.RedisURL != "" || cfg.DatabaseURL != "" {
		t.Errorf("optional collaborators should default empty")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROBOCHESS_RECOVERY_FILE", "/var/lib/robochess/recovery.json")
	t.Setenv("ROBOCHESS_ENGINE_PATH", "/usr/bin/stockfish")
	t.Setenv("ROBOCHESS_ENGINE_DEPTH", "18")
	t.Setenv("ROBOCHESS_ENGINE_TIMEOUT_SEC", "20")
	t.Setenv("ROBOCHESS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ROBOCHESS_WATCHDOG_INTERVAL_SEC", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecoveryFile != "/var/lib/robochess/recovery.json" {
		t.Errorf("recovery file: %q", cfg.RecoveryFile)
	}
	if cfg.EnginePath != "/usr/bin/stockfish" || cfg.EngineDepth != 18 || cfg.EngineTimeout != 20*time.Second {
		t.Errorf("engine settings: %q %d %v", cfg.EnginePath, cfg.EngineDepth, cfg.EngineTimeout)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("redis url: %q", cfg.RedisURL)
	}
	if cfg.WatchdogInterval != 2*time.Second {
		t.Errorf("watchdog interval: %v", cfg.WatchdogInterval)
	}
}

func TestLoadYAMLOverlayAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `recovery_file: /data/recovery.json
engine:
  path: /opt/engines/stockfish
  depth: 16
  timeout_sec: 15
watchdog:
  interval_sec: 3
endpoints:
  - name: left-arm
    base_url: http://10.0.0.10:8080
  - name: right-arm
    base_url: http://10.0.0.11:8080
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROBOCHESS_CONFIG", path)
	// env still wins over the file
	t.Setenv("ROBOCHESS_ENGINE_DEPTH", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecoveryFile != "/data/recovery.json" {
		t.Errorf("recovery file from yaml: %q", cfg.RecoveryFile)
	}
	if cfg.EnginePath != "/opt/engines/stockfish" || cfg.EngineTimeout != 15*time.Second {
		t.Errorf("engine overlay: %q %v", cfg.EnginePath, cfg.EngineTimeout)
	}
	if cfg.EngineDepth != 20 {
		t.Errorf("env should override the file, depth = %d", cfg.EngineDepth)
	}
	if cfg.WatchdogInterval != 3*time.Second {
		t.Errorf("watchdog overlay: %v", cfg.WatchdogInterval)
	}
	if len(cfg.Endpoints) != 2 || cfg.Endpoints[0].Name != "left-arm" ||
		cfg.Endpoints[1].BaseURL != "http://10.0.0.11:8080" {
		t.Errorf("endpoints overlay: %+v", cfg.Endpoints)
	}
}

func TestLoadRejectsBrokenInput(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROBOCHESS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Errorf("pointing at a missing file should fail loudly")
	}

	clearEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("recovery_file: [not, a, string"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROBOCHESS_CONFIG", bad)
	if _, err := Load(); err == nil {
		t.Errorf("unparseable yaml should fail loudly")
	}

	clearEnv(t)
	incomplete := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(incomplete, []byte("endpoints:\n  - name: left-arm\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROBOCHESS_CONFIG", incomplete)
	if _, err := Load(); err == nil {
		t.Errorf("an endpoint without a base_url should fail validation")
	}
}
