package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	envServerName    = "GA4_MCP_SERVER_NAME"
	envServerVersion = "GA4_MCP_VERSION"

	envApprovalTTL           = "GA4_MCP_APPROVAL_TTL"
	envApprovalSweepInterval = "GA4_MCP_APPROVAL_SWEEP_INTERVAL"
	envApprovalMaxPending    = "GA4_MCP_APPROVAL_MAX_PENDING"
	envApprovalRedisAddr     = "GA4_MCP_APPROVAL_REDIS_ADDR"
	envApprovalRedisPassword = "GA4_MCP_APPROVAL_REDIS_PASSWORD"
	envApprovalRedisDB       = "GA4_MCP_APPROVAL_REDIS_DB"

	envAnalyticsBaseURL = "GA4_MCP_ANALYTICS_BASE_URL"
	envAnalyticsTimeout = "GA4_MCP_ANALYTICS_TIMEOUT"
	envAnalyticsRPS     = "GA4_MCP_ANALYTICS_RPS"
	envAnalyticsBurst   = "GA4_MCP_ANALYTICS_BURST"
	envAnalyticsToken   = "GA4_MCP_TOKEN_FILE"

	envAllowedAccounts  = "GA4_MCP_ALLOWED_ACCOUNT_IDS"
	envDisableMutations = "GA4_MCP_DISABLE_MUTATIONS"

	envLogLevel  = "GA4_MCP_LOG_LEVEL"
	envLogFormat = "GA4_MCP_LOG_FORMAT"
	envLogOutput = "GA4_MCP_LOG_OUTPUT"
	envLogFile   = "GA4_MCP_LOG_FILE"
)

func (c *Config) LoadFromEnv() {
	if c == nil {
		return
	}

	if v := strings.TrimSpace(os.Getenv(envServerName)); v != "" {
		c.Server.Name = v
	}
	if v := strings.TrimSpace(os.Getenv(envServerVersion)); v != "" {
		c.Server.Version = v
	}

	if v, ok := readIntEnv(envApprovalTTL); ok {
		c.Approval.TTLSeconds = v
	}
	if v, ok := readIntEnv(envApprovalSweepInterval); ok {
		c.Approval.SweepIntervalSeconds = v
	}
	if v, ok := readIntEnv(envApprovalMaxPending); ok {
		c.Approval.MaxPending = v
	}
	if v := strings.TrimSpace(os.Getenv(envApprovalRedisAddr)); v != "" {
		c.Approval.RedisAddr = v
	}
	if v := os.Getenv(envApprovalRedisPassword); v != "" {
		c.Approval.RedisPassword = v
	}
	if v, ok := readIntEnv(envApprovalRedisDB); ok {
		c.Approval.RedisDB = v
	}

	if v := strings.TrimSpace(os.Getenv(envAnalyticsBaseURL)); v != "" {
		c.Analytics.BaseURL = v
	}
	if v, ok := readIntEnv(envAnalyticsTimeout); ok {
		c.Analytics.TimeoutSeconds = v
	}
	if v, ok := readFloatEnv(envAnalyticsRPS); ok {
		c.Analytics.RequestsPerSecond = v
	}
	if v, ok := readIntEnv(envAnalyticsBurst); ok {
		c.Analytics.Burst = v
	}
	if v := strings.TrimSpace(os.Getenv(envAnalyticsToken)); v != "" {
		c.Analytics.TokenFile = v
	}

	if v, ok := readCSVEnv(envAllowedAccounts); ok {
		c.Security.AllowedAccountIDs = v
	}
	if v := strings.TrimSpace(os.Getenv(envDisableMutations)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Security.DisableMutations = b
		}
	}

	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFormat)); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogOutput)); v != "" {
		c.Logging.Output = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFile)); v != "" {
		c.Logging.FilePath = v
	}
}

func readIntEnv(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func readFloatEnv(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func readCSVEnv(key string) ([]string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out, true
}
