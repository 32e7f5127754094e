// Package analytics wraps the Google Analytics Admin API v1beta REST surface
// used by this server. The REST endpoints are called directly rather than via
// a generated client so tests can point BaseURL at a local fixture server.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

// AdminAPI is the Admin API surface the tools depend on. Every call carries
// the caller's bearer token; the client holds no credential of its own.
type AdminAPI interface {
	ListAccounts(ctx context.Context, token string) ([]Account, error)
	ListProperties(ctx context.Context, token, accountID string) ([]Property, error)
	ListDataStreams(ctx context.Context, token, propertyID string) ([]DataStream, error)

	CreateProperty(ctx context.Context, token string, req CreatePropertyRequest) (*Property, error)
	CreateDataStream(ctx context.Context, token string, req CreateDataStreamRequest) (*DataStream, error)
	CreateCustomDimension(ctx context.Context, token string, req CreateCustomDimensionRequest) (*CustomDimension, error)
	CreateCustomMetric(ctx context.Context, token string, req CreateCustomMetricRequest) (*CustomMetric, error)
	CreateConversionEvent(ctx context.Context, token string, req CreateConversionEventRequest) (*ConversionEvent, error)
	CreateGoogleAdsLink(ctx context.Context, token string, req CreateGoogleAdsLinkRequest) (*GoogleAdsLink, error)
}

type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            logging.Logger
}

// Client is a rate-limited HTTP client for the Admin API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
}

func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 10
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// apiError is the Google API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) ListAccounts(ctx context.Context, token string) ([]Account, error) {
	var out struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/v1beta/accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

func (c *Client) ListProperties(ctx context.Context, token, accountID string) ([]Property, error) {
	q := url.Values{}
	q.Set("filter", "parent:accounts/"+accountID)
	var out struct {
		Properties []Property `json:"properties"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/v1beta/properties", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Properties, nil
}

func (c *Client) ListDataStreams(ctx context.Context, token, propertyID string) ([]DataStream, error) {
	var out struct {
		DataStreams []DataStream `json:"dataStreams"`
	}
	path := fmt.Sprintf("/v1beta/properties/%s/dataStreams", propertyID)
	if err := c.do(ctx, token, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.DataStreams, nil
}

func (c *Client) CreateProperty(ctx context.Context, token string, req CreatePropertyRequest) (*Property, error) {
	body := Property{
		Parent:           "accounts/" + req.AccountID,
		DisplayName:      req.DisplayName,
		TimeZone:         req.TimeZone,
		CurrencyCode:     req.CurrencyCode,
		IndustryCategory: req.IndustryCategory,
	}
	var out Property
	if err := c.do(ctx, token, http.MethodPost, "/v1beta/properties", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDataStream(ctx context.Context, token string, req CreateDataStreamRequest) (*DataStream, error) {
	body := DataStream{
		Type:        req.Type,
		DisplayName: req.DisplayName,
	}
	if req.Type == "WEB_DATA_STREAM" && req.WebsiteURL != "" {
		body.WebStreamData = &WebStreamData{DefaultURI: req.WebsiteURL}
	}
	var out DataStream
	path := fmt.Sprintf("/v1beta/properties/%s/dataStreams", req.PropertyID)
	if err := c.do(ctx, token, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomDimension(ctx context.Context, token string, req CreateCustomDimensionRequest) (*CustomDimension, error) {
	body := CustomDimension{
		ParameterName: req.ParameterName,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Scope:         req.Scope,
	}
	var out CustomDimension
	path := fmt.Sprintf("/v1beta/properties/%s/customDimensions", req.PropertyID)
	if err := c.do(ctx, token, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomMetric(ctx context.Context, token string, req CreateCustomMetricRequest) (*CustomMetric, error) {
	body := CustomMetric{
		ParameterName:   req.ParameterName,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		MeasurementUnit: req.MeasurementUnit,
		Scope:           req.Scope,
	}
	var out CustomMetric
	path := fmt.Sprintf("/v1beta/properties/%s/customMetrics", req.PropertyID)
	if err := c.do(ctx, token, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateConversionEvent(ctx context.Context, token string, req CreateConversionEventRequest) (*ConversionEvent, error) {
	body := ConversionEvent{
		EventName:      req.EventName,
		CountingMethod: req.CountingMethod,
	}
	var out ConversionEvent
	path := fmt.Sprintf("/v1beta/properties/%s/conversionEvents", req.PropertyID)
	if err := c.do(ctx, token, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateGoogleAdsLink(ctx context.Context, token string, req CreateGoogleAdsLinkRequest) (*GoogleAdsLink, error) {
	body := GoogleAdsLink{
		CustomerID:                req.CustomerID,
		AdsPersonalizationEnabled: req.AdsPersonalizationEnabled,
	}
	var out GoogleAdsLink
	path := fmt.Sprintf("/v1beta/properties/%s/googleAdsLinks", req.PropertyID)
	if err := c.do(ctx, token, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("admin api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
			return fmt.Errorf("admin api %s %s: %s (%s)", method, path, ae.Error.Message, ae.Error.Status)
		}
		return fmt.Errorf("admin api %s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
