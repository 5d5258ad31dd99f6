package settings

import (
	"path/filepath"
	"testing"
)

func TestReadServerConfigurationMaterializesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	cfg, err := ReadServerConfiguration(path)
	if err != nil {
		t.Fatalf("ReadServerConfiguration: %v", err)
	}
	if cfg.Port != "8964" {
		t.Fatalf("got port %q, want 8964", cfg.Port)
	}
	if cfg.DNS != "8.8.8.8" {
		t.Fatalf("got dns %q, want 8.8.8.8", cfg.DNS)
	}

	again, err := ReadServerConfiguration(path)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if again.Port != cfg.Port {
		t.Fatal("expected materialized file to round-trip")
	}
}

func TestReadServerConfigurationHonorsSecretEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	t.Setenv("TUNNEL_SECRET", "from-env")
	cfg, err := ReadServerConfiguration(path)
	if err != nil {
		t.Fatalf("ReadServerConfiguration: %v", err)
	}
	if cfg.Secret != "from-env" {
		t.Fatalf("got secret %q, want from-env", cfg.Secret)
	}
}

func TestServerConfigurationValidateRejectsEmptySecret(t *testing.T) {
	cfg := DefaultServerConfiguration()
	cfg.Secret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for empty secret")
	}
}

func TestClientConfigurationValidateRejectsEmptyHost(t *testing.T) {
	cfg := DefaultClientConfiguration()
	cfg.Secret = "x"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for empty host")
	}
}
