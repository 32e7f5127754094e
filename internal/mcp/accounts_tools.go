package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/analytics"
	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
)

type ListAccountsInput struct {
	OAuthToken string `json:"oauthToken,omitempty" jsonschema:"OAuth bearer token for the Google Analytics Admin API. Falls back to server-side credentials when omitted."`
}

type ListAccountsOutput struct {
	Accounts []analytics.Account `json:"accounts"`
	Count    int                 `json:"count"`
}

func (s *Server) handleListAccounts(ctx context.Context, req *mcp.CallToolRequest, input ListAccountsInput) (_ *mcp.CallToolResult, output ListAccountsOutput, err error) {
	ctx, done := s.begin(ctx, "list_analytics_accounts", input)
	defer func() { done(output, err) }()

	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	accounts, err := s.admin.ListAccounts(ctx, token)
	if err != nil {
		return nil, output, cerrors.ErrAnalyticsAPIFailed("list_analytics_accounts", err)
	}

	output = ListAccountsOutput{Accounts: accounts, Count: len(accounts)}
	return nil, output, nil
}

type ListPropertiesInput struct {
	AccountID  string `json:"accountId,omitempty" jsonschema:"Numeric GA4 account ID. Omit to get a discovery listing of available accounts."`
	OAuthToken string `json:"oauthToken,omitempty" jsonschema:"OAuth bearer token for the Google Analytics Admin API."`
}

type ListPropertiesOutput struct {
	Discovery  *Discovery           `json:"discovery,omitempty"`
	Properties []analytics.Property `json:"properties,omitempty"`
	Count      int                  `json:"count"`
}

func (s *Server) handleListProperties(ctx context.Context, req *mcp.CallToolRequest, input ListPropertiesInput) (_ *mcp.CallToolResult, output ListPropertiesOutput, err error) {
	ctx, done := s.begin(ctx, "list_analytics_properties", input)
	defer func() { done(output, err) }()

	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.AccountID) == "" {
		disc, derr := s.discoverAccounts(ctx, token, 1, 2)
		if derr != nil {
			return nil, output, derr
		}
		output = ListPropertiesOutput{Discovery: disc}
		return nil, output, nil
	}

	properties, err := s.admin.ListProperties(ctx, token, input.AccountID)
	if err != nil {
		return nil, output, cerrors.ErrAnalyticsAPIFailed("list_analytics_properties", err)
	}

	output = ListPropertiesOutput{Properties: properties, Count: len(properties)}
	return nil, output, nil
}

type ListDataStreamsInput struct {
	AccountID  string `json:"accountId,omitempty" jsonschema:"Numeric GA4 account ID, used for property discovery when propertyId is omitted."`
	PropertyID string `json:"propertyId,omitempty" jsonschema:"Numeric GA4 property ID. Omit to walk account and property discovery."`
	OAuthToken string `json:"oauthToken,omitempty" jsonschema:"OAuth bearer token for the Google Analytics Admin API."`
}

type ListDataStreamsOutput struct {
	Discovery   *Discovery             `json:"discovery,omitempty"`
	DataStreams []analytics.DataStream `json:"dataStreams,omitempty"`
	Count       int                    `json:"count"`
}

func (s *Server) handleListDataStreams(ctx context.Context, req *mcp.CallToolRequest, input ListDataStreamsInput) (_ *mcp.CallToolResult, output ListDataStreamsOutput, err error) {
	ctx, done := s.begin(ctx, "list_data_streams", input)
	defer func() { done(output, err) }()

	token, err := s.extractor.Extract(input.OAuthToken)
	if err != nil {
		return nil, output, err
	}

	if strings.TrimSpace(input.PropertyID) == "" {
		disc, derr := s.discoverPropertyTarget(ctx, token, input.AccountID, 3)
		if derr != nil {
			return nil, output, derr
		}
		output = ListDataStreamsOutput{Discovery: disc}
		return nil, output, nil
	}

	streams, err := s.admin.ListDataStreams(ctx, token, input.PropertyID)
	if err != nil {
		return nil, output, cerrors.ErrAnalyticsAPIFailed("list_data_streams", err)
	}

	output = ListDataStreamsOutput{DataStreams: streams, Count: len(streams)}
	return nil, output, nil
}

// discoverAccounts builds the account-selection discovery step.
func (s *Server) discoverAccounts(ctx context.Context, token string, step, total int) (*Discovery, error) {
	accounts, err := s.admin.ListAccounts(ctx, token)
	if err != nil {
		return nil, cerrors.ErrAnalyticsAPIFailed("list_analytics_accounts", err)
	}
	items := make([]DiscoveryItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, DiscoveryItem{
			ID:     analytics.TrimResourceID(a.Name),
			Name:   a.DisplayName,
			Detail: a.Name,
		})
	}
	return newDiscovery(step, total,
		"Select a Google Analytics account",
		"Call again with accountId set to one of the IDs above.",
		"accountId", items), nil
}

// discoverPropertyTarget resolves the propertyId parameter in up to two
// discovery steps: accounts first, then properties under the chosen account.
func (s *Server) discoverPropertyTarget(ctx context.Context, token, accountID string, total int) (*Discovery, error) {
	if strings.TrimSpace(accountID) == "" {
		return s.discoverAccounts(ctx, token, 1, total)
	}

	properties, err := s.admin.ListProperties(ctx, token, accountID)
	if err != nil {
		return nil, cerrors.ErrAnalyticsAPIFailed("list_analytics_properties", err)
	}
	items := make([]DiscoveryItem, 0, len(properties))
	for _, p := range properties {
		items = append(items, DiscoveryItem{
			ID:     analytics.TrimResourceID(p.Name),
			Name:   p.DisplayName,
			Detail: p.Name,
		})
	}
	return newDiscovery(2, total,
		"Select a GA4 property",
		"Call again with propertyId set to one of the IDs above.",
		"propertyId", items), nil
}
