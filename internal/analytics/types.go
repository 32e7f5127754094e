package analytics

import "strings"

// Resource shapes mirror the Google Analytics Admin API v1beta wire format.
// The resource Name is the API path ("accounts/123", "properties/456");
// TrimResourceID strips the collection prefix for display.

// TrimResourceID returns the final path segment of a resource name, so
// "accounts/12345" becomes "12345". Bare IDs pass through unchanged.
func TrimResourceID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

type Account struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	RegionCode  string `json:"regionCode,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

type Property struct {
	Name             string `json:"name"`
	Parent           string `json:"parent,omitempty"`
	DisplayName      string `json:"displayName"`
	TimeZone         string `json:"timeZone,omitempty"`
	CurrencyCode     string `json:"currencyCode,omitempty"`
	IndustryCategory string `json:"industryCategory,omitempty"`
	CreateTime       string `json:"createTime,omitempty"`
}

type WebStreamData struct {
	MeasurementID string `json:"measurementId,omitempty"`
	DefaultURI    string `json:"defaultUri,omitempty"`
}

type DataStream struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	DisplayName   string         `json:"displayName"`
	WebStreamData *WebStreamData `json:"webStreamData,omitempty"`
	CreateTime    string         `json:"createTime,omitempty"`
}

type CustomDimension struct {
	Name          string `json:"name,omitempty"`
	ParameterName string `json:"parameterName"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description,omitempty"`
	Scope         string `json:"scope"`
}

type CustomMetric struct {
	Name            string `json:"name,omitempty"`
	ParameterName   string `json:"parameterName"`
	DisplayName     string `json:"displayName"`
	Description     string `json:"description,omitempty"`
	MeasurementUnit string `json:"measurementUnit"`
	Scope           string `json:"scope"`
}

type ConversionEvent struct {
	Name           string `json:"name,omitempty"`
	EventName      string `json:"eventName"`
	CountingMethod string `json:"countingMethod,omitempty"`
	Custom         bool   `json:"custom,omitempty"`
}

type GoogleAdsLink struct {
	Name                      string `json:"name,omitempty"`
	CustomerID                string `json:"customerId"`
	AdsPersonalizationEnabled bool   `json:"adsPersonalizationEnabled,omitempty"`
	CreateTime                string `json:"createTime,omitempty"`
}

// CreatePropertyRequest creates a property under "accounts/{accountID}".
type CreatePropertyRequest struct {
	AccountID        string
	DisplayName      string
	TimeZone         string
	CurrencyCode     string
	IndustryCategory string
}

// CreateDataStreamRequest creates a stream under "properties/{propertyID}".
type CreateDataStreamRequest struct {
	PropertyID  string
	Type        string // WEB_DATA_STREAM, ANDROID_APP_DATA_STREAM, IOS_APP_DATA_STREAM
	DisplayName string
	// WebsiteURL populates webStreamData for WEB_DATA_STREAM.
	WebsiteURL string
}

type CreateCustomDimensionRequest struct {
	PropertyID    string
	ParameterName string
	DisplayName   string
	Description   string
	Scope         string // EVENT or USER
}

type CreateCustomMetricRequest struct {
	PropertyID      string
	ParameterName   string
	DisplayName     string
	Description     string
	MeasurementUnit string
	Scope           string // EVENT only for custom metrics
}

type CreateConversionEventRequest struct {
	PropertyID     string
	EventName      string
	CountingMethod string
}

type CreateGoogleAdsLinkRequest struct {
	PropertyID                string
	CustomerID                string
	AdsPersonalizationEnabled bool
}
