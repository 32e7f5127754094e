// Package auth resolves the OAuth bearer credential a tool call runs with.
// No anonymous mutation path exists: a missing credential is a hard
// precondition failure for every operation in this server.
package auth

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

// Extractor resolves a bearer token per request: an explicit oauthToken tool
// parameter wins, then the GA4_OAUTH_TOKEN environment variable, then an
// optional token file (development fallback until the upstream gateway
// injects tokens on every request).
type Extractor struct {
	// TokenFile is the development fallback location; empty disables it.
	TokenFile string

	logger logging.Logger
	now    func() time.Time
}

// tokenFile is the on-disk development credential format.
type tokenFile struct {
	AccessToken string    `json:"accessToken"`
	ExpiryDate  time.Time `json:"expiryDate"`
}

const envOAuthToken = "GA4_OAUTH_TOKEN"

func NewExtractor(tokenFilePath string, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Extractor{
		TokenFile: tokenFilePath,
		logger:    logger,
		now:       time.Now,
	}
}

// Extract returns the bearer token for a request, or a MissingCredential
// error when none of the sources yield one.
func (e *Extractor) Extract(requestToken string) (string, error) {
	if tok := strings.TrimSpace(requestToken); tok != "" {
		return tok, nil
	}

	if tok := strings.TrimSpace(os.Getenv(envOAuthToken)); tok != "" {
		return tok, nil
	}

	if e.TokenFile != "" {
		if tok, ok := e.readTokenFile(); ok {
			return tok, nil
		}
	}

	return "", cerrors.ErrMissingCredential()
}

func (e *Extractor) readTokenFile() (string, bool) {
	data, err := os.ReadFile(e.TokenFile)
	if err != nil {
		e.logger.Debug("token file unavailable", "path", e.TokenFile, "error", err.Error())
		return "", false
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		e.logger.Error("token file is not valid JSON", "path", e.TokenFile, "error", err.Error())
		return "", false
	}
	if strings.TrimSpace(tf.AccessToken) == "" {
		return "", false
	}
	if !tf.ExpiryDate.IsZero() && !tf.ExpiryDate.After(e.now()) {
		e.logger.Warn("token file credential is expired", "path", e.TokenFile,
			"expiry_date", tf.ExpiryDate.UTC().Format(time.RFC3339))
		return "", false
	}
	return tf.AccessToken, true
}
