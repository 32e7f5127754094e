// Package vagueness rejects under-specified mutation requests before a
// dry-run preview is even built. It is a heuristic gate: scores above the
// threshold block the operation until the caller restates it with exact
// values and identifiers.
package vagueness

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

// Request is one candidate mutation to screen.
type Request struct {
	Operation string
	// InputText is a human-readable summary of the intended action.
	InputText string
	// InputParams are the raw tool parameters.
	InputParams map[string]any
}

// Result is the detection outcome. Score runs 0-100; higher is vaguer.
type Result struct {
	IsVague                bool
	Score                  int
	VagueTerms             []string
	RequiredClarifications []string
	Suggestions            []string
}

// BlockThreshold is the score at or above which a request is rejected.
const BlockThreshold = 30

var (
	// Quantifiers without specifics.
	quantifierPatterns = compileAll(
		`\ball\b`,
		`\bevery\b`,
		`\beach\b`,
		`\bmost\b`,
		`\bsome\b`,
		`\bfew\b`,
		`\bmany\b`,
		`\bseveral\b`,
		`\ba (bunch|lot|few) of\b`,
	)

	// Relative terms without context.
	relativeTermPatterns = compileAll(
		`\bhigh(er)?\b`,
		`\blow(er)?\b`,
		`\bbig(ger)?\b`,
		`\bsmall(er)?\b`,
		`\bmore\b`,
		`\bless\b`,
		`\brecent(ly)?\b`,
		`\bold(er)?\b`,
	)

	// Indefinite references.
	indefiniteRefPatterns = compileAll(
		`\bit\b`,
		`\bthey\b`,
		`\bthem\b`,
		`\bthose\b`,
		`\bthese\b`,
		`\bstuff\b`,
		`\bthings\b`,
	)

	digitPattern = regexp.MustCompile(`\d+`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Detector screens requests. Construct once and share; it is stateless.
type Detector struct {
	logger logging.Logger
}

func NewDetector(logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Detector{logger: logger}
}

// Detect scores a request without blocking it.
func (d *Detector) Detect(req Request) Result {
	var res Result
	text := strings.ToLower(req.InputText)

	for _, p := range quantifierPatterns {
		if m := p.FindString(text); m != "" {
			res.VagueTerms = append(res.VagueTerms, m)
			res.Score += 15
			res.RequiredClarifications = append(res.RequiredClarifications,
				fmt.Sprintf("Specify exactly which items you want to %s", req.Operation))
		}
	}

	for _, p := range relativeTermPatterns {
		if m := p.FindString(text); m != "" && !digitPattern.MatchString(text) {
			res.VagueTerms = append(res.VagueTerms, m)
			res.Score += 20
			res.RequiredClarifications = append(res.RequiredClarifications,
				fmt.Sprintf("Specify exact values instead of relative terms like %q", m))
		}
	}

	for _, p := range indefiniteRefPatterns {
		if m := p.FindString(text); m != "" {
			res.VagueTerms = append(res.VagueTerms, m)
			res.Score += 25
			res.RequiredClarifications = append(res.RequiredClarifications,
				fmt.Sprintf("Specify what %q refers to (account ID, property ID, etc.)", m))
		}
	}

	d.checkMissingSpecifics(req, &res)

	if n := len(res.RequiredClarifications); n > 0 {
		res.Score += n * 10
		if res.Score > 100 {
			res.Score = 100
		}
	}

	res.IsVague = res.Score >= BlockThreshold
	if res.IsVague {
		d.logger.Warn("vague request detected",
			"operation", req.Operation,
			"vagueness_score", res.Score,
			"vague_terms", res.VagueTerms)
	}
	return res
}

// Enforce blocks a vague request with a VaguenessRejected error carrying the
// clarifications the caller must supply. Non-vague requests pass untouched.
func (d *Detector) Enforce(req Request) error {
	res := d.Detect(req)
	if !res.IsVague {
		return nil
	}
	return cerrors.ErrVaguenessRejected(req.Operation, res.Score, res.RequiredClarifications).
		WithData("vague_terms", res.VagueTerms).
		WithData("suggestions", res.Suggestions)
}

func (d *Detector) checkMissingSpecifics(req Request, res *Result) {
	params := req.InputParams

	// Target identification is always required for a mutation.
	if !hasAny(params, "accountId", "propertyId", "customerId") {
		res.RequiredClarifications = append(res.RequiredClarifications,
			"Specify which account or property to operate on")
		res.Suggestions = append(res.Suggestions,
			"Provide accountId or propertyId; use the listing tools to discover them")
	}

	// Budget and bid operations need exact amounts.
	if strings.Contains(req.Operation, "budget") || strings.Contains(req.Operation, "bid") {
		if !hasAny(params, "amount", "dailyAmountDollars", "newDailyAmountDollars") {
			res.RequiredClarifications = append(res.RequiredClarifications,
				"Specify the exact amount in dollars")
			res.Suggestions = append(res.Suggestions, `Example: "Set budget to $100/day"`)
		}
	}

	// Status changes must name the target status.
	if strings.Contains(req.Operation, "status") || strings.Contains(req.Operation, "pause") || strings.Contains(req.Operation, "enable") {
		if !hasAny(params, "status") {
			res.RequiredClarifications = append(res.RequiredClarifications,
				"Specify the target status (ENABLED, PAUSED, or REMOVED)")
		}
	}
}

func hasAny(params map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr {
			if strings.TrimSpace(s) != "" {
				return true
			}
			continue
		}
		if v != nil {
			return true
		}
	}
	return false
}
