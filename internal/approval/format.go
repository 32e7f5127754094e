package approval

import (
	"fmt"
	"strings"
	"time"
)

// FormatForDisplay renders a dry-run result as the human-readable preview a
// caller reviews before confirming. The preview carries the same change set
// the content hash covers, plus the advisory sections.
func FormatForDisplay(d *DryRunResult, ttl time.Duration) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "PREVIEW: %s\n", d.Operation)
	fmt.Fprintf(&sb, "Service: %s\n", d.Service)
	fmt.Fprintf(&sb, "Target: %s\n\n", d.TargetID)

	if len(d.Changes) > 0 {
		fmt.Fprintf(&sb, "CHANGES (%d):\n", len(d.Changes))
		for i, c := range d.Changes {
			fmt.Fprintf(&sb, "  %d. %s: %s %s\n", i+1, strings.ToUpper(string(c.Type)), c.Resource, c.ResourceID)
			switch c.Type {
			case ChangeUpdate:
				fmt.Fprintf(&sb, "     %s: %s -> %s\n", c.Field, c.CurrentValue, c.NewValue)
			case ChangeCreate:
				fmt.Fprintf(&sb, "     %s: %s\n", c.Field, c.NewValue)
			case ChangeDelete:
				fmt.Fprintf(&sb, "     %s: %s (will be removed)\n", c.Field, c.CurrentValue)
			}
		}
		sb.WriteString("\n")
	}

	if impact := d.EstimatedImpact; impact != nil {
		sb.WriteString("FINANCIAL IMPACT:\n")
		if impact.CurrentDailySpend != nil {
			fmt.Fprintf(&sb, "  Current daily spend: $%.2f\n", *impact.CurrentDailySpend)
		}
		if impact.EstimatedNewDailySpend != nil {
			fmt.Fprintf(&sb, "  Estimated new daily spend: $%.2f\n", *impact.EstimatedNewDailySpend)
		}
		if impact.DailyDifference != nil {
			fmt.Fprintf(&sb, "  Daily difference: %+.2f\n", *impact.DailyDifference)
		}
		if impact.MonthlyDifference != nil {
			fmt.Fprintf(&sb, "  Monthly estimate: %+.2f\n", *impact.MonthlyDifference)
		}
		if impact.PercentageChange != nil {
			fmt.Fprintf(&sb, "  Percentage change: %+.1f%%\n", *impact.PercentageChange)
		}
		sb.WriteString("\n")
	}

	if len(d.Risks) > 0 {
		sb.WriteString("RISKS:\n")
		for _, r := range d.Risks {
			fmt.Fprintf(&sb, "  - %s\n", r)
		}
		sb.WriteString("\n")
	}

	if len(d.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS:\n")
		for _, r := range d.Recommendations {
			fmt.Fprintf(&sb, "  - %s\n", r)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "You have %s to confirm this operation.\n", formatTTL(ttl))
	sb.WriteString("To proceed, call the tool again with the confirmation token.\n")
	sb.WriteString("To cancel, simply do not confirm before the token expires.\n")

	return sb.String()
}

func formatTTL(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		m := int(ttl / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d seconds", int(ttl/time.Second))
}
