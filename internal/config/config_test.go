package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_Validate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Approval.TTL() != 15*time.Minute {
		t.Fatalf("approval.ttl=%v, want 15m", cfg.Approval.TTL())
	}
}

func TestSecurityConfig_IsAccountAllowed(t *testing.T) {
	sec := SecurityConfig{}
	if !sec.IsAccountAllowed("12345") {
		t.Fatalf("expected allow-all when list is empty")
	}

	sec.AllowedAccountIDs = []string{"12345"}
	if !sec.IsAccountAllowed("12345") {
		t.Fatalf("expected allowlisted account to be allowed")
	}
	if sec.IsAccountAllowed("99999") {
		t.Fatalf("expected non-allowlisted account to be denied")
	}
}

func TestValidate_RejectsNonPositiveTTL(t *testing.T) {
	cfg := Default()
	cfg.Approval.TTLSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for ttl_seconds=0")
	}
}

func TestLoadFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv(envServerName, "My Server")
	t.Setenv(envApprovalTTL, "60")
	t.Setenv(envAllowedAccounts, "111,222")
	t.Setenv(envDisableMutations, "true")

	cfg.LoadFromEnv()

	if cfg.Server.Name != "My Server" {
		t.Fatalf("server.name=%q, want %q", cfg.Server.Name, "My Server")
	}
	if cfg.Approval.TTLSeconds != 60 {
		t.Fatalf("approval.ttl_seconds=%d, want %d", cfg.Approval.TTLSeconds, 60)
	}
	if len(cfg.Security.AllowedAccountIDs) != 2 || cfg.Security.AllowedAccountIDs[0] != "111" || cfg.Security.AllowedAccountIDs[1] != "222" {
		t.Fatalf("allowed_account_ids=%v, want [111 222]", cfg.Security.AllowedAccountIDs)
	}
	if !cfg.Security.DisableMutations {
		t.Fatalf("disable_mutations should be true")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	if err := os.WriteFile(path, []byte(`
[server]
name = "X"
version = "1.2.3"

[approval]
ttl_seconds = 120
max_pending = 8

[analytics]
base_url = "http://localhost:9999"
timeout_seconds = 5
requests_per_second = 2.5
burst = 4

[logging]
level = "info"
format = "json"
output = "stderr"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Name != "X" || cfg.Server.Version != "1.2.3" {
		t.Fatalf("server=%+v", cfg.Server)
	}
	if cfg.Approval.TTLSeconds != 120 || cfg.Approval.MaxPending != 8 {
		t.Fatalf("approval=%+v", cfg.Approval)
	}
	if cfg.Analytics.BaseURL != "http://localhost:9999" || cfg.Analytics.RequestsPerSecond != 2.5 {
		t.Fatalf("analytics=%+v", cfg.Analytics)
	}
}
