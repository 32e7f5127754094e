package mcp

import "github.com/google/jsonschema-go/jsonschema"

// Hand-built input schemas for the guarded tools. No field is marked required
// at the protocol level: a missing target triggers discovery and missing
// required values come back as structured InvalidParams errors, both of which
// are more useful to a caller than a schema validation failure.

func guardedCommonProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"confirmationToken": {Type: "string", Description: "Token from a previous preview. Supplying it executes the previewed change."},
		"oauthToken":        {Type: "string", Description: "OAuth bearer token for the Google Analytics Admin API. Falls back to server-side credentials when omitted."},
	}
}

func propertyScopedProperties() map[string]*jsonschema.Schema {
	props := guardedCommonProperties()
	props["accountId"] = &jsonschema.Schema{Type: "string", Description: "Numeric GA4 account ID, used for property discovery when propertyId is omitted."}
	props["propertyId"] = &jsonschema.Schema{Type: "string", Description: "Numeric GA4 property ID. Omit for discovery."}
	return props
}

func buildCreatePropertyInputSchema() *jsonschema.Schema {
	props := guardedCommonProperties()
	props["accountId"] = &jsonschema.Schema{Type: "string", Description: "Numeric GA4 account ID the property is created under. Omit for a discovery listing of accounts."}
	props["displayName"] = &jsonschema.Schema{Type: "string", Description: "Display name for the new property."}
	props["timeZone"] = &jsonschema.Schema{Type: "string", Description: "Reporting time zone, e.g. America/New_York. Defaults to UTC."}
	props["currencyCode"] = &jsonschema.Schema{Type: "string", Description: "Reporting currency, e.g. USD. Defaults to USD."}
	props["industryCategory"] = &jsonschema.Schema{Type: "string", Description: "Optional industry category enum value."}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func buildCreateDataStreamInputSchema() *jsonschema.Schema {
	props := propertyScopedProperties()
	props["type"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Stream type. Defaults to WEB_DATA_STREAM.",
		Enum:        []any{"WEB_DATA_STREAM", "ANDROID_APP_DATA_STREAM", "IOS_APP_DATA_STREAM"},
	}
	props["displayName"] = &jsonschema.Schema{Type: "string", Description: "Display name for the new stream."}
	props["websiteUrl"] = &jsonschema.Schema{Type: "string", Description: "Site URL, required for WEB_DATA_STREAM."}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func buildCreateCustomDimensionInputSchema() *jsonschema.Schema {
	props := propertyScopedProperties()
	props["parameterName"] = &jsonschema.Schema{Type: "string", Description: "Event parameter (or user property) name the dimension reads from."}
	props["displayName"] = &jsonschema.Schema{Type: "string", Description: "Display name for the new dimension."}
	props["description"] = &jsonschema.Schema{Type: "string", Description: "Optional description."}
	props["scope"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Dimension scope. Defaults to EVENT.",
		Enum:        []any{"EVENT", "USER"},
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func buildCreateCustomMetricInputSchema() *jsonschema.Schema {
	props := propertyScopedProperties()
	props["parameterName"] = &jsonschema.Schema{Type: "string", Description: "Event parameter name the metric reads from."}
	props["displayName"] = &jsonschema.Schema{Type: "string", Description: "Display name for the new metric."}
	props["description"] = &jsonschema.Schema{Type: "string", Description: "Optional description."}
	props["measurementUnit"] = &jsonschema.Schema{Type: "string", Description: "Unit such as STANDARD, CURRENCY, METERS, SECONDS. Defaults to STANDARD."}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func buildCreateConversionEventInputSchema() *jsonschema.Schema {
	props := propertyScopedProperties()
	props["eventName"] = &jsonschema.Schema{Type: "string", Description: "Exact event name to mark as a conversion, e.g. purchase or sign_up."}
	props["countingMethod"] = &jsonschema.Schema{
		Type:        "string",
		Description: "How often the conversion counts. Defaults to ONCE_PER_EVENT.",
		Enum:        []any{"ONCE_PER_EVENT", "ONCE_PER_SESSION"},
	}
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func buildCreateGoogleAdsLinkInputSchema() *jsonschema.Schema {
	props := propertyScopedProperties()
	props["googleAdsCustomerId"] = &jsonschema.Schema{Type: "string", Description: "Google Ads customer ID to link, digits only (dashes are stripped)."}
	props["adsPersonalizationEnabled"] = &jsonschema.Schema{Type: "boolean", Description: "Enable personalized advertising on the link. Defaults to true."}
	return &jsonschema.Schema{Type: "object", Properties: props}
}
