package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  env: staging
  server:
    cors: "http://a.test, ,http://b.test"
modules:
  passcode:
    ttl_seconds: 300
    max_attempts: 3
    reveal_failure_reason: true
instrument:
  trace_sample_ratio: 0.25
`

func TestViperFromBytes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	// Act & Assert
	if got := cfg.GetString("app.env"); got != "staging" {
		t.Fatalf("app.env=%q", got)
	}
	if got := cfg.GetSecond("modules.passcode.ttl_seconds"); got != 5*time.Minute {
		t.Fatalf("ttl=%s", got)
	}
	if got := cfg.GetInt("modules.passcode.max_attempts"); got != 3 {
		t.Fatalf("max_attempts=%d", got)
	}
	if !cfg.GetBool("modules.passcode.reveal_failure_reason") {
		t.Fatal("reveal_failure_reason should be true")
	}
	if got := cfg.GetFloat64("instrument.trace_sample_ratio"); got != 0.25 {
		t.Fatalf("ratio=%v", got)
	}
	if got := cfg.GetArray("app.server.cors"); len(got) != 2 || got[1] != "http://b.test" {
		t.Fatalf("cors=%v", got)
	}
	if got := cfg.GetArray("app.missing"); len(got) != 0 {
		t.Fatalf("missing array=%v", got)
	}
	if cfg.IsSet("modules.passcode.code_length") {
		t.Fatal("code_length should not be set")
	}
}

func TestViperFromBytes_TypeRequired(t *testing.T) {
	// Act
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))

	// Assert
	if !errors.Is(err, ErrConfigTypeRequired) {
		t.Fatalf("expected ErrConfigTypeRequired, got %v", err)
	}
}

func TestNewViper_File(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Act
	cfg, err := NewViper(file)

	// Assert
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	t.Cleanup(func() { _ = cfg.Close() })
	if got := cfg.GetMinute("modules.passcode.max_attempts"); got != 3*time.Minute {
		t.Fatalf("minutes=%s", got)
	}
}

func TestViper_GetArraySequence(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte("instrument:\n  log_mask_fields: [code, \" \", password]\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	// Act
	got := cfg.GetArray("instrument.log_mask_fields")

	// Assert
	if len(got) != 2 || got[0] != "code" || got[1] != "password" {
		t.Fatalf("mask fields=%v", got)
	}
}
