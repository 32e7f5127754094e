package mcp

import (
	"fmt"
	"strings"
)

// DiscoveryItem is one selectable resource in a discovery step.
type DiscoveryItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// Discovery is the guided-workflow response returned when a tool is called
// without enough parameters to act. Instead of failing, the tool enumerates
// the caller's options and names the parameter to supply next. A discovery
// response is a terminal outcome for the request: nothing was validated,
// previewed, or executed.
type Discovery struct {
	// Step is "N/M" within the tool's workflow.
	Step      string          `json:"step"`
	Title     string          `json:"title"`
	Items     []DiscoveryItem `json:"items"`
	Prompt    string          `json:"prompt"`
	NextParam string          `json:"nextParam"`
}

func newDiscovery(step, total int, title, prompt, nextParam string, items []DiscoveryItem) *Discovery {
	return &Discovery{
		Step:      fmt.Sprintf("%d/%d", step, total),
		Title:     title,
		Items:     items,
		Prompt:    prompt,
		NextParam: nextParam,
	}
}

// Format renders the discovery as a numbered list for display.
func (d *Discovery) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "STEP %s: %s\n\n", d.Step, d.Title)
	if len(d.Items) == 0 {
		sb.WriteString("  (no items found)\n")
	}
	for i, item := range d.Items {
		fmt.Fprintf(&sb, "  %d. %s (%s)", i+1, item.Name, item.ID)
		if item.Detail != "" {
			fmt.Fprintf(&sb, " - %s", item.Detail)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%s\n", d.Prompt)
	return sb.String()
}

// Approval is the preview response returned when a guarded tool has a valid,
// fully specified request but no confirmation token yet. The caller reviews
// the preview and repeats the call with ConfirmationToken set to execute.
type Approval struct {
	ConfirmationToken string `json:"confirmationToken"`
	Preview           string `json:"preview"`
	ExpiresInSeconds  int    `json:"expiresInSeconds"`
}
