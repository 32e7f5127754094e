package approval

import (
	"context"
	"time"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
)

// EffectFunc performs the actual mutating API call once an approval is
// consumed. This layer never requires it to be idempotent; it only guarantees
// the approval itself is spent exactly once.
type EffectFunc func(ctx context.Context) (any, error)

// Enforcer orchestrates the preview -> confirm -> execute workflow.
//
// It holds only opaque token IDs; all token state transitions belong to the
// injected Store. Construct one per server at startup and pass it to each
// tool adapter.
type Enforcer struct {
	store  Store
	ttl    time.Duration
	logger logging.Logger
}

func NewEnforcer(store Store, ttl time.Duration, logger logging.Logger) *Enforcer {
	if ttl <= 0 {
		ttl = DefaultStoreOptions().TTL
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Enforcer{store: store, ttl: ttl, logger: logger}
}

// TTL returns the confirmation window previews advertise.
func (e *Enforcer) TTL() time.Duration { return e.ttl }

// CreateDryRun stores an approval for the given dry-run and returns the
// confirmation token the caller must echo back. Nothing is executed here;
// this call is a terminal outcome for the current request.
func (e *Enforcer) CreateDryRun(ctx context.Context, dryRun *DryRunResult) (string, error) {
	if dryRun == nil {
		return "", cerrors.ErrInvalidParams("dry-run result is required")
	}
	hash, err := dryRun.Hash()
	if err != nil {
		return "", cerrors.Wrap(cerrors.InternalError, "hash dry-run result", err)
	}

	tok, err := e.store.Issue(ctx, dryRun.Operation, hash)
	if err != nil {
		return "", err
	}

	e.logger.Info("dry-run preview created",
		"operation", dryRun.Operation,
		"target_id", dryRun.TargetID,
		"content_hash", hash,
		"expires_at", tok.ExpiresAt.UTC().Format(time.RFC3339))
	return tok.ID, nil
}

// FormatDryRunForDisplay renders the preview string returned to the caller.
func (e *Enforcer) FormatDryRunForDisplay(dryRun *DryRunResult) string {
	return FormatForDisplay(dryRun, e.ttl)
}

// ValidateAndExecute checks a confirmation token against a freshly supplied
// dry-run and, on success, consumes the token and invokes effect.
//
// Order is deliberate: lookup, status check, hash comparison, then the
// atomic pending -> consumed swap, and only after successful consumption the
// effect. Consuming before executing guarantees at-most-once execution per
// approval even if effect is slow or the process dies mid-call: a retry with
// the same token fails closed with TokenAlreadyConsumed.
//
// A consumed token is never refunded. If effect fails the approval is spent
// and the caller must run a fresh preview cycle; if ctx is cancelled after
// consumption the outcome is ambiguous and reported as such.
func (e *Enforcer) ValidateAndExecute(ctx context.Context, tokenID string, dryRun *DryRunResult, effect EffectFunc) (any, error) {
	if tokenID == "" {
		return nil, cerrors.ErrInvalidParams("confirmation token is required")
	}
	if dryRun == nil {
		return nil, cerrors.ErrInvalidParams("dry-run result is required")
	}
	if effect == nil {
		return nil, cerrors.ErrInvalidParams("effect function is required")
	}

	tok, found, err := e.store.Get(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, cerrors.ErrTokenNotFound(tokenID)
	}
	switch tok.Status {
	case StatusExpired:
		return nil, cerrors.ErrTokenExpired(tokenID, tok.ExpiresAt)
	case StatusConsumed:
		return nil, cerrors.ErrTokenAlreadyConsumed(tokenID)
	}

	// Anti bait-and-switch: the token only authorizes the change set it was
	// issued for. The hash is recomputed from the supplied dry-run, never
	// read from its ContentHash field.
	hash, err := dryRun.Hash()
	if err != nil {
		return nil, cerrors.Wrap(cerrors.InternalError, "hash dry-run result", err)
	}
	if hash != tok.BoundHash {
		e.logger.Error("dry-run hash mismatch, possible tampering",
			"operation", tok.Operation,
			"expected_hash", tok.BoundHash,
			"actual_hash", hash)
		return nil, cerrors.ErrDryRunMismatch(tok.BoundHash, hash)
	}

	// Exactly one concurrent caller gets past this point.
	if _, err := e.store.Consume(ctx, tokenID); err != nil {
		return nil, err
	}

	e.logger.Info("executing approved operation", "operation", tok.Operation, "content_hash", hash)

	result, err := effect(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Cancelled or timed out after consumption: the mutation may or
			// may not have landed. Surface that distinctly so the caller
			// verifies out-of-band instead of blindly re-approving.
			e.logger.Error("approved operation interrupted after consumption",
				"operation", tok.Operation, "error", err.Error())
			return nil, cerrors.ErrAmbiguousOutcome(tok.Operation, err)
		}
		e.logger.Error("approved operation failed during execution",
			"operation", tok.Operation, "error", err.Error())
		return nil, cerrors.ErrExecutionFailed(tok.Operation, err)
	}

	e.logger.Info("approved operation executed", "operation", tok.Operation)
	return result, nil
}
