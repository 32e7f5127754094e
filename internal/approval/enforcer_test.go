package approval

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
)

func testDryRun(t *testing.T, newValue string) *DryRunResult {
	t.Helper()
	d, err := NewBuilder("create_analytics_property", "Google Analytics", "12345").
		AddChange(Change{
			Resource:     "GA4 Property",
			ResourceID:   "new",
			Field:        "property",
			CurrentValue: "N/A (new property)",
			NewValue:     newValue,
			Type:         ChangeCreate,
		}).
		AddRecommendation("add a data stream after creation").
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return d
}

func newTestEnforcer(clock func() time.Time) *Enforcer {
	opts := StoreOptions{TTL: 15 * time.Minute}
	if clock != nil {
		opts.Clock = clock
	}
	return NewEnforcer(NewMemoryStore(opts), opts.TTL, nil)
}

func TestEnforcer_CreateDryRun_NoEffectUntilConfirmed(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()

	token, err := e.CreateDryRun(ctx, testDryRun(t, "A"))
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}
	if token == "" {
		t.Fatalf("confirmation token should not be empty")
	}
	// Creating the preview touches nothing mutable: the only observable
	// state is the pending token.
	if got := e.store.Pending(ctx); got != 1 {
		t.Fatalf("pending=%d, want 1", got)
	}
}

func TestEnforcer_ValidateAndExecute_HappyPath(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()
	dryRun := testDryRun(t, "A")

	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	var calls atomic.Int64
	result, err := e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		calls.Add(1)
		return "created", nil
	})
	if err != nil {
		t.Fatalf("ValidateAndExecute() failed: %v", err)
	}
	if result != "created" {
		t.Fatalf("result=%v, want %q", result, "created")
	}
	if calls.Load() != 1 {
		t.Fatalf("effect calls=%d, want 1", calls.Load())
	}
}

func TestEnforcer_Replay_FailsClosedWithoutEffect(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()
	dryRun := testDryRun(t, "A")

	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}
	if _, err := e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("first ValidateAndExecute() failed: %v", err)
	}

	var calls atomic.Int64
	_, err = e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	})
	if codeOf(t, err) != cerrors.TokenAlreadyConsumed {
		t.Fatalf("code=%v, want TokenAlreadyConsumed", codeOf(t, err))
	}
	if calls.Load() != 0 {
		t.Fatalf("effect should not run on replay")
	}
}

func TestEnforcer_ExpiredToken(t *testing.T) {
	now := time.Now()
	clock := now
	e := newTestEnforcer(func() time.Time { return clock })
	ctx := context.Background()
	dryRun := testDryRun(t, "A")

	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	clock = now.Add(16 * time.Minute)
	var calls atomic.Int64
	_, err = e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	})
	if codeOf(t, err) != cerrors.TokenExpired {
		t.Fatalf("code=%v, want TokenExpired", codeOf(t, err))
	}
	if calls.Load() != 0 {
		t.Fatalf("effect should not run for an expired token")
	}
}

func TestEnforcer_TamperedDryRun_Mismatch(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()

	token, err := e.CreateDryRun(ctx, testDryRun(t, "A"))
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	var calls atomic.Int64
	tampered := testDryRun(t, "B")
	_, err = e.ValidateAndExecute(ctx, token, tampered, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	})
	if codeOf(t, err) != cerrors.DryRunMismatch {
		t.Fatalf("code=%v, want DryRunMismatch", codeOf(t, err))
	}
	if calls.Load() != 0 {
		t.Fatalf("effect should never run on hash mismatch")
	}

	// The mismatch must not spend the token; the original change set is
	// still confirmable.
	if _, err := e.ValidateAndExecute(ctx, token, testDryRun(t, "A"), func(context.Context) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("original dry-run should still validate: %v", err)
	}
}

func TestEnforcer_EditedRecommendations_StillValidate(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()

	token, err := e.CreateDryRun(ctx, testDryRun(t, "A"))
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	reconstructed := testDryRun(t, "A")
	reconstructed.Recommendations = []string{"entirely different advice"}
	if _, err := e.ValidateAndExecute(ctx, token, reconstructed, func(context.Context) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("advisory edits must not invalidate the token: %v", err)
	}
}

func TestEnforcer_EffectFailure_TokenStaysConsumed(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()
	dryRun := testDryRun(t, "A")

	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	_, err = e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		return nil, cerrors.New(cerrors.AnalyticsAPIFailed, "quota exceeded")
	})
	if codeOf(t, err) != cerrors.ExecutionFailed {
		t.Fatalf("code=%v, want ExecutionFailed", codeOf(t, err))
	}

	// No refund: retrying with the same token fails closed.
	_, err = e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
		return nil, nil
	})
	if codeOf(t, err) != cerrors.TokenAlreadyConsumed {
		t.Fatalf("code=%v, want TokenAlreadyConsumed", codeOf(t, err))
	}
}

func TestEnforcer_CancelledAfterConsumption_AmbiguousOutcome(t *testing.T) {
	e := newTestEnforcer(nil)
	dryRun := testDryRun(t, "A")

	ctx, cancel := context.WithCancel(context.Background())
	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	_, err = e.ValidateAndExecute(ctx, token, dryRun, func(ctx context.Context) (any, error) {
		cancel()
		return nil, ctx.Err()
	})
	if codeOf(t, err) != cerrors.AmbiguousOutcome {
		t.Fatalf("code=%v, want AmbiguousOutcome", codeOf(t, err))
	}
}

func TestEnforcer_ConcurrentConfirmations_SingleExecution(t *testing.T) {
	e := newTestEnforcer(nil)
	ctx := context.Background()
	dryRun := testDryRun(t, "A")

	token, err := e.CreateDryRun(ctx, dryRun)
	if err != nil {
		t.Fatalf("CreateDryRun() failed: %v", err)
	}

	const n = 16
	var calls atomic.Int64
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.ValidateAndExecute(ctx, token, dryRun, func(context.Context) (any, error) {
				calls.Add(1)
				return nil, nil
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		if codeOf(t, err) != cerrors.TokenAlreadyConsumed {
			t.Fatalf("loser code=%v, want TokenAlreadyConsumed", codeOf(t, err))
		}
	}
	if wins != 1 {
		t.Fatalf("wins=%d, want exactly 1", wins)
	}
	if calls.Load() != 1 {
		t.Fatalf("effect calls=%d, want exactly 1", calls.Load())
	}
}

func TestEnforcer_UnknownToken(t *testing.T) {
	e := newTestEnforcer(nil)
	dryRun := testDryRun(t, "A")
	_, err := e.ValidateAndExecute(context.Background(), "deadbeef", dryRun, func(context.Context) (any, error) {
		return nil, nil
	})
	if codeOf(t, err) != cerrors.TokenNotFound {
		t.Fatalf("code=%v, want TokenNotFound", codeOf(t, err))
	}
}
