package approval

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
)

// DryRunResult is a side-effect-free preview of what a mutation would do.
//
// Treat it as immutable once built: a confirmation token attests to the
// content hash, so any later edit to the hashed fields invalidates the token
// (which is exactly the tamper guard the pipeline relies on). Two results are
// equivalent iff their content hashes are equal; object identity is never
// compared.
type DryRunResult struct {
	Operation string `json:"operation"`
	Service   string `json:"service"`
	TargetID  string `json:"targetId"`

	Changes []Change `json:"changes"`

	// Risks and Recommendations are advisory text. They are deliberately
	// excluded from the content hash so editing them does not invalidate an
	// issued token.
	Risks           []string `json:"risks,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	EstimatedImpact *FinancialImpact `json:"estimatedImpact,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// ContentHash is computed at build time over (operation, service,
	// targetId, changes). Validation always recomputes via Hash() rather
	// than trusting this field.
	ContentHash string `json:"contentHash"`
}

// hashScope is the exact subset of DryRunResult covered by the content hash.
// Changes serialize in insertion order, so the hash is order-sensitive.
type hashScope struct {
	Operation string   `json:"operation"`
	Service   string   `json:"service"`
	TargetID  string   `json:"targetId"`
	Changes   []Change `json:"changes"`
}

// Hash computes the content hash over the hashed subset of the result.
// The serialization is canonical JSON (RFC 8785), so the hash does not depend
// on map ordering or encoder quirks.
func (d *DryRunResult) Hash() (string, error) {
	raw, err := json.Marshal(hashScope{
		Operation: d.Operation,
		Service:   d.Service,
		TargetID:  d.TargetID,
		Changes:   d.Changes,
	})
	if err != nil {
		return "", fmt.Errorf("serialize dry-run for hashing: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize dry-run for hashing: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Builder assembles a DryRunResult. Building performs no I/O and mutates no
// external resource; it is pure data assembly.
type Builder struct {
	operation string
	service   string
	targetID  string

	changes         []Change
	risks           []string
	recommendations []string
	impact          *FinancialImpact

	now func() time.Time
}

// NewBuilder starts a dry-run for one logical mutation attempt.
func NewBuilder(operation, service, targetID string) *Builder {
	return &Builder{
		operation: operation,
		service:   service,
		targetID:  targetID,
		now:       time.Now,
	}
}

// AddChange appends a change in insertion order. Order matters: the content
// hash is order-sensitive, so reordering upstream is detectable.
func (b *Builder) AddChange(c Change) *Builder {
	b.changes = append(b.changes, c)
	return b
}

func (b *Builder) AddRisk(risk string) *Builder {
	b.risks = append(b.risks, risk)
	return b
}

func (b *Builder) AddRecommendation(rec string) *Builder {
	b.recommendations = append(b.recommendations, rec)
	return b
}

func (b *Builder) SetFinancialImpact(impact FinancialImpact) *Builder {
	b.impact = &impact
	return b
}

// Build returns the assembled result with its content hash computed.
func (b *Builder) Build() (*DryRunResult, error) {
	d := &DryRunResult{
		Operation:       b.operation,
		Service:         b.service,
		TargetID:        b.targetID,
		Changes:         append([]Change(nil), b.changes...),
		Risks:           append([]string(nil), b.risks...),
		Recommendations: append([]string(nil), b.recommendations...),
		EstimatedImpact: b.impact,
		CreatedAt:       b.now().UTC(),
	}
	hash, err := d.Hash()
	if err != nil {
		return nil, err
	}
	d.ContentHash = hash
	return d, nil
}
