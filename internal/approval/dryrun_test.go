package approval

import (
	"strings"
	"testing"
	"time"
)

func propertyChange(name string) Change {
	return Change{
		Resource:     "GA4 Property",
		ResourceID:   "new",
		Field:        "property",
		CurrentValue: "N/A (new property)",
		NewValue:     name,
		Type:         ChangeCreate,
	}
}

func TestBuilder_HashDeterminism(t *testing.T) {
	build := func() *DryRunResult {
		d, err := NewBuilder("create_analytics_property", "Google Analytics", "12345").
			AddChange(propertyChange(`"Site A" (UTC, USD)`)).
			AddChange(propertyChange(`"Site B" (UTC, USD)`)).
			Build()
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		return d
	}

	a, b := build(), build()
	if a.ContentHash == "" {
		t.Fatalf("ContentHash should not be empty")
	}
	if a.ContentHash != b.ContentHash {
		t.Fatalf("identical builds hash differently: %s vs %s", a.ContentHash, b.ContentHash)
	}
}

func TestBuilder_HashIsOrderSensitive(t *testing.T) {
	first, err := NewBuilder("create_analytics_property", "Google Analytics", "12345").
		AddChange(propertyChange("A")).
		AddChange(propertyChange("B")).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	second, err := NewBuilder("create_analytics_property", "Google Analytics", "12345").
		AddChange(propertyChange("B")).
		AddChange(propertyChange("A")).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if first.ContentHash == second.ContentHash {
		t.Fatalf("reordered changes should not collide")
	}
}

func TestBuilder_AdvisoryFieldsExcludedFromHash(t *testing.T) {
	base, err := NewBuilder("create_data_stream", "Google Analytics", "98765").
		AddChange(propertyChange("stream")).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	spend := 10.0
	annotated, err := NewBuilder("create_data_stream", "Google Analytics", "98765").
		AddChange(propertyChange("stream")).
		AddRisk("tracking gap until tag is installed").
		AddRecommendation("install the tag with the generated measurement ID").
		SetFinancialImpact(FinancialImpact{CurrentDailySpend: &spend}).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if base.ContentHash != annotated.ContentHash {
		t.Fatalf("advisory fields changed the hash: %s vs %s", base.ContentHash, annotated.ContentHash)
	}
}

func TestDryRunResult_HashRecomputesFromFields(t *testing.T) {
	d, err := NewBuilder("create_conversion_event", "Google Analytics", "55").
		AddChange(Change{
			Resource:     "Conversion Event",
			ResourceID:   "purchase",
			Field:        "is_conversion",
			CurrentValue: "false",
			NewValue:     "true",
			Type:         ChangeUpdate,
		}).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	original := d.ContentHash
	d.Changes[0].NewValue = "false"
	recomputed, err := d.Hash()
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if recomputed == original {
		t.Fatalf("tampered change set should hash differently")
	}
}

func TestFormatForDisplay_ContainsChangesAndInstructions(t *testing.T) {
	d, err := NewBuilder("create_analytics_property", "Google Analytics", "12345").
		AddChange(propertyChange(`"Client ABC" (America/New_York, USD)`)).
		AddRecommendation("add a data stream after creation").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	out := FormatForDisplay(d, 15*time.Minute)
	for _, want := range []string{
		"PREVIEW: create_analytics_property",
		"Target: 12345",
		"CHANGES (1):",
		"CREATE: GA4 Property new",
		`property: "Client ABC" (America/New_York, USD)`,
		"RECOMMENDATIONS:",
		"15 minutes",
		"confirmation token",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("preview missing %q; got:\n%s", want, out)
		}
	}
}

func TestFormatForDisplay_UpdateShowsBeforeAndAfter(t *testing.T) {
	d, err := NewBuilder("create_conversion_event", "Google Analytics", "55").
		AddChange(Change{
			Resource:     "Conversion Event",
			ResourceID:   "purchase",
			Field:        "is_conversion",
			CurrentValue: "false",
			NewValue:     "true",
			Type:         ChangeUpdate,
		}).
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	out := FormatForDisplay(d, time.Minute)
	if !strings.Contains(out, "is_conversion: false -> true") {
		t.Fatalf("update preview should show before/after; got:\n%s", out)
	}
}
