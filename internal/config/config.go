package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Approval  ApprovalConfig  `toml:"approval"`
	Analytics AnalyticsConfig `toml:"analytics"`
	Security  SecurityConfig  `toml:"security"`
	Logging   logging.Config  `toml:"logging"`
}

type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// ApprovalConfig tunes the guarded mutation pipeline.
type ApprovalConfig struct {
	// TTLSeconds is the confirmation window for an issued preview.
	TTLSeconds int `toml:"ttl_seconds"`

	// SweepIntervalSeconds bounds token store memory; 0 disables the sweep.
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`

	// MaxPending caps outstanding approvals; 0 means unlimited.
	MaxPending int `toml:"max_pending"`

	// RedisAddr switches the token store backing from the in-memory map to
	// Redis when non-empty (host:port).
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

func (a ApprovalConfig) TTL() time.Duration {
	return time.Duration(a.TTLSeconds) * time.Second
}

func (a ApprovalConfig) SweepInterval() time.Duration {
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}

// AnalyticsConfig describes the Google Analytics Admin API endpoint.
type AnalyticsConfig struct {
	// BaseURL of the Admin API; overridable for tests.
	BaseURL string `toml:"base_url"`

	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond throttles outbound Admin API calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`

	// TokenFile is the development fallback credential location used when a
	// request carries no oauthToken parameter.
	TokenFile string `toml:"token_file"`
}

func (a AnalyticsConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type SecurityConfig struct {
	// AllowedAccountIDs restricts mutations to specific GA4 accounts.
	// Empty means all accounts are allowed.
	AllowedAccountIDs []string `toml:"allowed_account_ids"`

	// DisableMutations turns every guarded tool into a hard failure,
	// leaving only read-only listings available.
	DisableMutations bool `toml:"disable_mutations"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "GA4 Admin MCP Server",
			Version: "0.3.0",
		},
		Approval: ApprovalConfig{
			TTLSeconds:           900,
			SweepIntervalSeconds: 60,
			MaxPending:           256,
		},
		Analytics: AnalyticsConfig{
			BaseURL:           "https://analyticsadmin.googleapis.com",
			TimeoutSeconds:    30,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Security: SecurityConfig{
			AllowedAccountIDs: nil, // allow all by default
			DisableMutations:  false,
		},
		Logging: logging.DefaultConfig(),
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if strings.TrimSpace(c.Server.Name) == "" {
		return fmt.Errorf("server.name is required")
	}
	if strings.TrimSpace(c.Server.Version) == "" {
		return fmt.Errorf("server.version is required")
	}

	if c.Approval.TTLSeconds <= 0 {
		return fmt.Errorf("approval.ttl_seconds must be > 0")
	}
	if c.Approval.SweepIntervalSeconds < 0 {
		return fmt.Errorf("approval.sweep_interval_seconds must be >= 0")
	}
	if c.Approval.MaxPending < 0 {
		return fmt.Errorf("approval.max_pending must be >= 0")
	}
	if c.Approval.RedisDB < 0 {
		return fmt.Errorf("approval.redis_db must be >= 0")
	}

	if strings.TrimSpace(c.Analytics.BaseURL) == "" {
		return fmt.Errorf("analytics.base_url is required")
	}
	if c.Analytics.TimeoutSeconds <= 0 {
		return fmt.Errorf("analytics.timeout_seconds must be > 0")
	}
	if c.Analytics.RequestsPerSecond <= 0 {
		return fmt.Errorf("analytics.requests_per_second must be > 0")
	}
	if c.Analytics.Burst <= 0 {
		return fmt.Errorf("analytics.burst must be > 0")
	}

	for _, id := range c.Security.AllowedAccountIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("security.allowed_account_ids contains an empty entry")
		}
	}

	if strings.EqualFold(strings.TrimSpace(c.Logging.Output), "file") && strings.TrimSpace(c.Logging.FilePath) == "" {
		return fmt.Errorf("logging.file_path is required when logging.output=file")
	}

	return nil
}

// IsAccountAllowed reports whether mutations may target the given account.
func (s SecurityConfig) IsAccountAllowed(accountID string) bool {
	if len(s.AllowedAccountIDs) == 0 {
		return true
	}
	for _, allowed := range s.AllowedAccountIDs {
		if strings.TrimSpace(allowed) == accountID {
			return true
		}
	}
	return false
}
