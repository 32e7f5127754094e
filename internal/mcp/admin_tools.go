package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/analytics"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/approval"
	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/vagueness"
)

// Guarded tool handlers share one shape: resolve the credential, run
// discovery when the target is missing, validate required parameters, screen
// for vagueness, then hand a dry-run and effect to runGuarded. The first
// fully-specified call returns the preview; the call that echoes the
// confirmation token executes.

type CreatePropertyInput struct {
	AccountID         string `json:"accountId,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	TimeZone          string `json:"timeZone,omitempty"`
	CurrencyCode      string `json:"currencyCode,omitempty"`
	IndustryCategory  string `json:"industryCategory,omitempty"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	OAuthToken        string `json:"oauthToken,omitempty"`
}

type CreatePropertyOutput struct {
	Discovery  *Discovery          `json:"discovery,omitempty"`
	Approval   *Approval           `json:"approval,omitempty"`
	Property   *analytics.Property `json:"property,omitempty"`
	SnapshotID string              `json:"snapshotId,omitempty"`
}

func (s *Server) handleCreateProperty(ctx context.Context, req *mcp.CallToolRequest, input CreatePropertyInput) (_ *mcp.CallToolResult, output CreatePropertyOutput, err error) {
	ctx, done := s.begin(ctx, "create_analytics_property", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.AccountID) == "" {
		disc, derr := s.discoverAccounts(ctx, token, 1, 2)
		if derr != nil {
			return nil, output, derr
		}
		output = CreatePropertyOutput{Discovery: disc}
		return nil, output, nil
	}

	if strings.TrimSpace(input.DisplayName) == "" {
		err = cerrors.ErrInvalidParams("displayName is required")
		return nil, output, err
	}
	if !s.cfg.Security.IsAccountAllowed(input.AccountID) {
		err = cerrors.New(cerrors.InvalidParams, "account is not in the allowed list for mutations").
			WithData("account_id", input.AccountID)
		return nil, output, err
	}

	timeZone := input.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}
	currency := input.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_analytics_property",
		InputText: fmt.Sprintf("create property %s in account %s", input.DisplayName, input.AccountID),
		InputParams: map[string]any{
			"accountId":   input.AccountID,
			"displayName": input.DisplayName,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "accounts/" + input.AccountID
	builder := approval.NewBuilder("create_analytics_property", serviceAnalytics, targetID).
		AddChange(createChange("property", "displayName", input.DisplayName)).
		AddChange(createChange("property", "timeZone", timeZone)).
		AddChange(createChange("property", "currencyCode", currency)).
		AddRisk("New properties start with default data retention and sharing settings")
	if input.IndustryCategory != "" {
		builder.AddChange(createChange("property", "industryCategory", input.IndustryCategory))
	}
	if input.TimeZone == "" || input.CurrencyCode == "" {
		builder.AddRecommendation("Time zone and currency default to UTC/USD when unset; pass timeZone and currencyCode to override")
	}
	dryRun, err := builder.Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreatePropertyRequest{
		AccountID:        input.AccountID,
		DisplayName:      input.DisplayName,
		TimeZone:         timeZone,
		CurrencyCode:     currency,
		IndustryCategory: input.IndustryCategory,
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_analytics_property", serviceAnalytics, targetID, apiReq)
		prop, aerr := s.admin.CreateProperty(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_analytics_property", aerr)
		}
		return prop, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreatePropertyOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreatePropertyOutput{Property: result.(*analytics.Property), SnapshotID: snapshotID}
	return nil, output, nil
}

type CreateDataStreamInput struct {
	AccountID         string `json:"accountId,omitempty"`
	PropertyID        string `json:"propertyId,omitempty"`
	Type              string `json:"type,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	WebsiteURL        string `json:"websiteUrl,omitempty"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	OAuthToken        string `json:"oauthToken,omitempty"`
}

type CreateDataStreamOutput struct {
	Discovery  *Discovery            `json:"discovery,omitempty"`
	Approval   *Approval             `json:"approval,omitempty"`
	DataStream *analytics.DataStream `json:"dataStream,omitempty"`
	SnapshotID string                `json:"snapshotId,omitempty"`
}

var validStreamTypes = map[string]bool{
	"WEB_DATA_STREAM":         true,
	"ANDROID_APP_DATA_STREAM": true,
	"IOS_APP_DATA_STREAM":     true,
}

func (s *Server) handleCreateDataStream(ctx context.Context, req *mcp.CallToolRequest, input CreateDataStreamInput) (_ *mcp.CallToolResult, output CreateDataStreamOutput, err error) {
	ctx, done := s.begin(ctx, "create_data_stream", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = CreateDataStreamOutput{Discovery: disc}
		return nil, output, nil
	}

	streamType := input.Type
	if streamType == "" {
		streamType = "WEB_DATA_STREAM"
	}
	if !validStreamTypes[streamType] {
		err = cerrors.ErrInvalidParams("type must be WEB_DATA_STREAM, ANDROID_APP_DATA_STREAM, or IOS_APP_DATA_STREAM")
		return nil, output, err
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		err = cerrors.ErrInvalidParams("displayName is required")
		return nil, output, err
	}
	if streamType == "WEB_DATA_STREAM" && strings.TrimSpace(input.WebsiteURL) == "" {
		err = cerrors.ErrInvalidParams("websiteUrl is required for WEB_DATA_STREAM")
		return nil, output, err
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_data_stream",
		InputText: fmt.Sprintf("create %s data stream %s on property %s", streamType, input.DisplayName, input.PropertyID),
		InputParams: map[string]any{
			"propertyId":  input.PropertyID,
			"displayName": input.DisplayName,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "properties/" + input.PropertyID
	builder := approval.NewBuilder("create_data_stream", serviceAnalytics, targetID).
		AddChange(createChange("dataStream", "type", streamType)).
		AddChange(createChange("dataStream", "displayName", input.DisplayName))
	if input.WebsiteURL != "" {
		builder.AddChange(createChange("dataStream", "websiteUrl", input.WebsiteURL)).
			AddRecommendation("Install the stream's measurement tag on the site after creation to start collecting data")
	}
	dryRun, err := builder.Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreateDataStreamRequest{
		PropertyID:  input.PropertyID,
		Type:        streamType,
		DisplayName: input.DisplayName,
		WebsiteURL:  input.WebsiteURL,
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_data_stream", serviceAnalytics, targetID, apiReq)
		ds, aerr := s.admin.CreateDataStream(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_data_stream", aerr)
		}
		return ds, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreateDataStreamOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreateDataStreamOutput{DataStream: result.(*analytics.DataStream), SnapshotID: snapshotID}
	return nil, output, nil
}

type CreateCustomDimensionInput struct {
	AccountID         string `json:"accountId,omitempty"`
	PropertyID        string `json:"propertyId,omitempty"`
	ParameterName     string `json:"parameterName,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	Description       string `json:"description,omitempty"`
	Scope             string `json:"scope,omitempty"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	OAuthToken        string `json:"oauthToken,omitempty"`
}

type CreateCustomDimensionOutput struct {
	Discovery       *Discovery                 `json:"discovery,omitempty"`
	Approval        *Approval                  `json:"approval,omitempty"`
	CustomDimension *analytics.CustomDimension `json:"customDimension,omitempty"`
	SnapshotID      string                     `json:"snapshotId,omitempty"`
}

func (s *Server) handleCreateCustomDimension(ctx context.Context, req *mcp.CallToolRequest, input CreateCustomDimensionInput) (_ *mcp.CallToolResult, output CreateCustomDimensionOutput, err error) {
	ctx, done := s.begin(ctx, "create_custom_dimension", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = CreateCustomDimensionOutput{Discovery: disc}
		return nil, output, nil
	}

	if strings.TrimSpace(input.ParameterName) == "" {
		err = cerrors.ErrInvalidParams("parameterName is required")
		return nil, output, err
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		err = cerrors.ErrInvalidParams("displayName is required")
		return nil, output, err
	}
	scope := input.Scope
	if scope == "" {
		scope = "EVENT"
	}
	if scope != "EVENT" && scope != "USER" {
		err = cerrors.ErrInvalidParams("scope must be EVENT or USER")
		return nil, output, err
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_custom_dimension",
		InputText: fmt.Sprintf("create custom dimension %s from parameter %s on property %s", input.DisplayName, input.ParameterName, input.PropertyID),
		InputParams: map[string]any{
			"propertyId":    input.PropertyID,
			"parameterName": input.ParameterName,
			"displayName":   input.DisplayName,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "properties/" + input.PropertyID
	builder := approval.NewBuilder("create_custom_dimension", serviceAnalytics, targetID).
		AddChange(createChange("customDimension", "parameterName", input.ParameterName)).
		AddChange(createChange("customDimension", "displayName", input.DisplayName)).
		AddChange(createChange("customDimension", "scope", scope)).
		AddRisk("Custom dimensions cannot be deleted, only archived; property-wide quota applies")
	if input.Description != "" {
		builder.AddChange(createChange("customDimension", "description", input.Description))
	}
	dryRun, err := builder.Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreateCustomDimensionRequest{
		PropertyID:    input.PropertyID,
		ParameterName: input.ParameterName,
		DisplayName:   input.DisplayName,
		Description:   input.Description,
		Scope:         scope,
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_custom_dimension", serviceAnalytics, targetID, apiReq)
		cd, aerr := s.admin.CreateCustomDimension(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_custom_dimension", aerr)
		}
		return cd, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreateCustomDimensionOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreateCustomDimensionOutput{CustomDimension: result.(*analytics.CustomDimension), SnapshotID: snapshotID}
	return nil, output, nil
}

type CreateCustomMetricInput struct {
	AccountID         string `json:"accountId,omitempty"`
	PropertyID        string `json:"propertyId,omitempty"`
	ParameterName     string `json:"parameterName,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	Description       string `json:"description,omitempty"`
	MeasurementUnit   string `json:"measurementUnit,omitempty"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	OAuthToken        string `json:"oauthToken,omitempty"`
}

type CreateCustomMetricOutput struct {
	Discovery    *Discovery              `json:"discovery,omitempty"`
	Approval     *Approval               `json:"approval,omitempty"`
	CustomMetric *analytics.CustomMetric `json:"customMetric,omitempty"`
	SnapshotID   string                  `json:"snapshotId,omitempty"`
}

func (s *Server) handleCreateCustomMetric(ctx context.Context, req *mcp.CallToolRequest, input CreateCustomMetricInput) (_ *mcp.CallToolResult, output CreateCustomMetricOutput, err error) {
	ctx, done := s.begin(ctx, "create_custom_metric", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = CreateCustomMetricOutput{Discovery: disc}
		return nil, output, nil
	}

	if strings.TrimSpace(input.ParameterName) == "" {
		err = cerrors.ErrInvalidParams("parameterName is required")
		return nil, output, err
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		err = cerrors.ErrInvalidParams("displayName is required")
		return nil, output, err
	}
	unit := input.MeasurementUnit
	if unit == "" {
		unit = "STANDARD"
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_custom_metric",
		InputText: fmt.Sprintf("create custom metric %s from parameter %s on property %s", input.DisplayName, input.ParameterName, input.PropertyID),
		InputParams: map[string]any{
			"propertyId":    input.PropertyID,
			"parameterName": input.ParameterName,
			"displayName":   input.DisplayName,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "properties/" + input.PropertyID
	builder := approval.NewBuilder("create_custom_metric", serviceAnalytics, targetID).
		AddChange(createChange("customMetric", "parameterName", input.ParameterName)).
		AddChange(createChange("customMetric", "displayName", input.DisplayName)).
		AddChange(createChange("customMetric", "measurementUnit", unit)).
		AddChange(createChange("customMetric", "scope", "EVENT")).
		AddRisk("Custom metrics cannot be deleted, only archived; property-wide quota applies")
	if input.Description != "" {
		builder.AddChange(createChange("customMetric", "description", input.Description))
	}
	dryRun, err := builder.Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreateCustomMetricRequest{
		PropertyID:      input.PropertyID,
		ParameterName:   input.ParameterName,
		DisplayName:     input.DisplayName,
		Description:     input.Description,
		MeasurementUnit: unit,
		Scope:           "EVENT",
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_custom_metric", serviceAnalytics, targetID, apiReq)
		cm, aerr := s.admin.CreateCustomMetric(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_custom_metric", aerr)
		}
		return cm, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreateCustomMetricOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreateCustomMetricOutput{CustomMetric: result.(*analytics.CustomMetric), SnapshotID: snapshotID}
	return nil, output, nil
}

type CreateConversionEventInput struct {
	AccountID         string `json:"accountId,omitempty"`
	PropertyID        string `json:"propertyId,omitempty"`
	EventName         string `json:"eventName,omitempty"`
	CountingMethod    string `json:"countingMethod,omitempty"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	OAuthToken        string `json:"oauthToken,omitempty"`
}

type CreateConversionEventOutput struct {
	Discovery       *Discovery                 `json:"discovery,omitempty"`
	Approval        *Approval                  `json:"approval,omitempty"`
	ConversionEvent *analytics.ConversionEvent `json:"conversionEvent,omitempty"`
	SnapshotID      string                     `json:"snapshotId,omitempty"`
}

func (s *Server) handleCreateConversionEvent(ctx context.Context, req *mcp.CallToolRequest, input CreateConversionEventInput) (_ *mcp.CallToolResult, output CreateConversionEventOutput, err error) {
	ctx, done := s.begin(ctx, "create_conversion_event", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = CreateConversionEventOutput{Discovery: disc}
		return nil, output, nil
	}

	if strings.TrimSpace(input.EventName) == "" {
		err = cerrors.ErrInvalidParams("eventName is required")
		return nil, output, err
	}
	counting := input.CountingMethod
	if counting == "" {
		counting = "ONCE_PER_EVENT"
	}
	if counting != "ONCE_PER_EVENT" && counting != "ONCE_PER_SESSION" {
		err = cerrors.ErrInvalidParams("countingMethod must be ONCE_PER_EVENT or ONCE_PER_SESSION")
		return nil, output, err
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_conversion_event",
		InputText: fmt.Sprintf("mark event %s as conversion on property %s", input.EventName, input.PropertyID),
		InputParams: map[string]any{
			"propertyId": input.PropertyID,
			"eventName":  input.EventName,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "properties/" + input.PropertyID
	dryRun, err := approval.NewBuilder("create_conversion_event", serviceAnalytics, targetID).
		AddChange(createChange("conversionEvent", "eventName", input.EventName)).
		AddChange(createChange("conversionEvent", "countingMethod", counting)).
		AddRisk("Conversion counting changes reporting and any bidding that imports these conversions").
		Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreateConversionEventRequest{
		PropertyID:     input.PropertyID,
		EventName:      input.EventName,
		CountingMethod: counting,
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_conversion_event", serviceAnalytics, targetID, apiReq)
		ce, aerr := s.admin.CreateConversionEvent(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_conversion_event", aerr)
		}
		return ce, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreateConversionEventOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreateConversionEventOutput{ConversionEvent: result.(*analytics.ConversionEvent), SnapshotID: snapshotID}
	return nil, output, nil
}

type CreateGoogleAdsLinkInput struct {
	AccountID                 string `json:"accountId,omitempty"`
	PropertyID                string `json:"propertyId,omitempty"`
	GoogleAdsCustomerID       string `json:"googleAdsCustomerId,omitempty"`
	AdsPersonalizationEnabled *bool  `json:"adsPersonalizationEnabled,omitempty"`
	ConfirmationToken         string `json:"confirmationToken,omitempty"`
	OAuthToken                string `json:"oauthToken,omitempty"`
}

type CreateGoogleAdsLinkOutput struct {
	Discovery     *Discovery               `json:"discovery,omitempty"`
	Approval      *Approval                `json:"approval,omitempty"`
	GoogleAdsLink *analytics.GoogleAdsLink `json:"googleAdsLink,omitempty"`
	SnapshotID    string                   `json:"snapshotId,omitempty"`
}

func (s *Server) handleCreateGoogleAdsLink(ctx context.Context, req *mcp.CallToolRequest, input CreateGoogleAdsLinkInput) (_ *mcp.CallToolResult, output CreateGoogleAdsLinkOutput, err error) {
	ctx, done := s.begin(ctx, "create_google_ads_link", input)
	defer func() { done(output, err) }()

	if err = s.checkMutationsEnabled(); err != nil {
		return nil, output, err
	}
	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = CreateGoogleAdsLinkOutput{Discovery: disc}
		return nil, output, nil
	}

	customerID := strings.ReplaceAll(strings.TrimSpace(input.GoogleAdsCustomerID), "-", "")
	if customerID == "" {
		err = cerrors.ErrInvalidParams("googleAdsCustomerId is required")
		return nil, output, err
	}
	personalization := true
	if input.AdsPersonalizationEnabled != nil {
		personalization = *input.AdsPersonalizationEnabled
	}

	if err = s.detector.Enforce(vagueness.Request{
		Operation: "create_google_ads_link",
		InputText: fmt.Sprintf("link property %s to ads customer %s", input.PropertyID, customerID),
		InputParams: map[string]any{
			"propertyId": input.PropertyID,
			"customerId": customerID,
		},
	}); err != nil {
		return nil, output, err
	}

	targetID := "properties/" + input.PropertyID
	dryRun, err := approval.NewBuilder("create_google_ads_link", serviceAnalytics, targetID).
		AddChange(createChange("googleAdsLink", "customerId", customerID)).
		AddChange(createChange("googleAdsLink", "adsPersonalizationEnabled", fmt.Sprintf("%t", personalization))).
		AddRisk("Linking shares GA4 conversion and audience data with the Google Ads account").
		AddRecommendation("Verify the Google Ads customer ID belongs to this client before confirming").
		Build()
	if err != nil {
		return nil, output, err
	}

	apiReq := analytics.CreateGoogleAdsLinkRequest{
		PropertyID:                input.PropertyID,
		CustomerID:                customerID,
		AdsPersonalizationEnabled: personalization,
	}
	var snapshotID string
	appr, result, err := s.runGuarded(ctx, input.ConfirmationToken, dryRun, func(ctx context.Context) (any, error) {
		snapshotID = s.snapshots.Capture("create_google_ads_link", serviceAnalytics, targetID, apiReq)
		link, aerr := s.admin.CreateGoogleAdsLink(ctx, token, apiReq)
		if aerr != nil {
			return nil, cerrors.ErrAnalyticsAPIFailed("create_google_ads_link", aerr)
		}
		return link, nil
	})
	if err != nil {
		return nil, output, err
	}
	if appr != nil {
		output = CreateGoogleAdsLinkOutput{Approval: appr}
		return nil, output, nil
	}

	output = CreateGoogleAdsLinkOutput{GoogleAdsLink: result.(*analytics.GoogleAdsLink), SnapshotID: snapshotID}
	return nil, output, nil
}

// createChange builds the standard create-type change row for new resources.
func createChange(resource, field, newValue string) approval.Change {
	return approval.Change{
		Resource:   resource,
		ResourceID: "(new)",
		Field:      field,
		NewValue:   newValue,
		Type:       approval.ChangeCreate,
	}
}
