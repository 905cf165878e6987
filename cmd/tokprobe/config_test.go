package main

import (
	"os"
	"path/filepath"
	"testing"
)

type setFlags map[string]bool

func (s setFlags) IsSet(name string) bool { return s[name] }

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("models_dir: /srv/models\nmax_context: 256\ntop_k: 5\nlog_level: debug\nserver_address: 0.0.0.0:9000\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if cfg.ModelsDir != "/srv/models" || cfg.LogLevel != "debug" || cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MaxContext == nil || *cfg.MaxContext != 256 || cfg.TopK == nil || *cfg.TopK != 5 {
		t.Fatalf("unexpected numeric fields: %+v", cfg)
	}

	if _, err := loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

// The apply functions write package-level flag variables, so these tests
// run sequentially.
func TestApplyServeConfigRespectsFlags(t *testing.T) {
	ctx := int64(128)
	cfg := Config{ModelsDir: "/cfg/models", MaxContext: &ctx, ServerAddress: "0.0.0.0:1"}

	modelsPath, maxContext = "", 0
	addr := "127.0.0.1:8080"
	applyServeConfig(setFlags{}, cfg, &addr)
	if modelsPath != "/cfg/models" || maxContext != 128 || addr != "0.0.0.0:1" {
		t.Fatalf("defaults not applied: models=%q ctx=%d addr=%q", modelsPath, maxContext, addr)
	}

	modelsPath, maxContext = "/flag/models", 64
	addr = "127.0.0.1:8080"
	applyServeConfig(setFlags{"models-path": true, "max-context": true, "addr": true}, cfg, &addr)
	if modelsPath != "/flag/models" || maxContext != 64 || addr != "127.0.0.1:8080" {
		t.Fatalf("explicit flags overridden: models=%q ctx=%d addr=%q", modelsPath, maxContext, addr)
	}
	modelsPath, maxContext = "", 0
}

func TestApplyProbeAndLogConfig(t *testing.T) {
	k := int64(7)
	var topK int64
	applyProbeConfig(setFlags{}, Config{TopK: &k}, &topK)
	if topK != 7 {
		t.Fatalf("top_k default not applied: %d", topK)
	}
	topK = 2
	applyProbeConfig(setFlags{"top-k": true}, Config{TopK: &k}, &topK)
	if topK != 2 {
		t.Fatalf("explicit --top-k overridden: %d", topK)
	}

	logLevel, logFormat = "info", "pretty"
	applyLogConfig(setFlags{"log-format": true}, Config{LogLevel: "warn", LogFormat: "json"})
	if logLevel != "warn" || logFormat != "pretty" {
		t.Fatalf("log config: level=%q format=%q", logLevel, logFormat)
	}
	logLevel, logFormat = "info", "pretty"
}
