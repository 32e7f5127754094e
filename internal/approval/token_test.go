package approval

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
)

func codeOf(t *testing.T, err error) cerrors.Code {
	t.Helper()
	var cerr *cerrors.Error
	if !stderrors.As(err, &cerr) {
		t.Fatalf("expected structured error, got %T: %v", err, err)
	}
	return cerr.Code
}

func TestMemoryStore_IssueAndGet(t *testing.T) {
	s := NewMemoryStore(StoreOptions{TTL: time.Minute})
	ctx := context.Background()

	tok, err := s.Issue(ctx, "create_analytics_property", "hash-1")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if len(tok.ID) < 32 {
		t.Fatalf("token ID too short: %q", tok.ID)
	}
	if tok.Status != StatusPending {
		t.Fatalf("status=%v, want %v", tok.Status, StatusPending)
	}
	if got := tok.ExpiresAt.Sub(tok.IssuedAt); got != time.Minute {
		t.Fatalf("ttl=%v, want %v", got, time.Minute)
	}

	got, found, err := s.Get(ctx, tok.ID)
	if err != nil || !found {
		t.Fatalf("Get() found=%v err=%v, want found=true err=nil", found, err)
	}
	if got.BoundHash != "hash-1" {
		t.Fatalf("boundHash=%q, want %q", got.BoundHash, "hash-1")
	}
}

func TestMemoryStore_LazyExpiryOnRead(t *testing.T) {
	now := time.Now()
	clock := now
	s := NewMemoryStore(StoreOptions{TTL: 15 * time.Minute, Clock: func() time.Time { return clock }})
	ctx := context.Background()

	tok, err := s.Issue(ctx, "op", "h")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// 16 minutes later the token is expired even though never read before.
	clock = now.Add(16 * time.Minute)
	got, found, err := s.Get(ctx, tok.ID)
	if err != nil || !found {
		t.Fatalf("Get() found=%v err=%v", found, err)
	}
	if got.Status != StatusExpired {
		t.Fatalf("status=%v, want %v", got.Status, StatusExpired)
	}

	if _, err := s.Consume(ctx, tok.ID); codeOf(t, err) != cerrors.TokenExpired {
		t.Fatalf("Consume() code=%v, want TokenExpired", codeOf(t, err))
	}
}

func TestMemoryStore_ConsumeIsTerminal(t *testing.T) {
	s := NewMemoryStore(StoreOptions{TTL: time.Minute})
	ctx := context.Background()

	tok, err := s.Issue(ctx, "op", "h")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if _, err := s.Consume(ctx, tok.ID); err != nil {
		t.Fatalf("first Consume() failed: %v", err)
	}
	if _, err := s.Consume(ctx, tok.ID); codeOf(t, err) != cerrors.TokenAlreadyConsumed {
		t.Fatalf("second Consume() code=%v, want TokenAlreadyConsumed", codeOf(t, err))
	}
}

func TestMemoryStore_ConsumeUnknownToken(t *testing.T) {
	s := NewMemoryStore(StoreOptions{TTL: time.Minute})
	if _, err := s.Consume(context.Background(), "nope"); codeOf(t, err) != cerrors.TokenNotFound {
		t.Fatalf("code=%v, want TokenNotFound", codeOf(t, err))
	}
}

func TestMemoryStore_ConcurrentConsume_ExactlyOneWins(t *testing.T) {
	s := NewMemoryStore(StoreOptions{TTL: time.Minute})
	ctx := context.Background()

	tok, err := s.Issue(ctx, "op", "h")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.Consume(ctx, tok.ID)
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
}

func TestMemoryStore_Sweep(t *testing.T) {
	now := time.Now()
	clock := now
	s := NewMemoryStore(StoreOptions{TTL: time.Minute, Clock: func() time.Time { return clock }})
	ctx := context.Background()

	pending, err := s.Issue(ctx, "op", "h1")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	consumed, err := s.Issue(ctx, "op", "h2")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if _, err := s.Consume(ctx, consumed.ID); err != nil {
		t.Fatalf("Consume() failed: %v", err)
	}

	// Before expiry only the consumed token is collectable.
	if removed := s.Sweep(ctx, now.Add(30*time.Second)); removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
	if _, found, _ := s.Get(ctx, pending.ID); !found {
		t.Fatalf("pending token should survive an early sweep")
	}

	// Past expiry the pending token goes too.
	clock = now.Add(2 * time.Minute)
	if removed := s.Sweep(ctx, clock); removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
	if _, found, _ := s.Get(ctx, pending.ID); found {
		t.Fatalf("expired token should be swept")
	}
}

func TestMemoryStore_PendingLimit(t *testing.T) {
	s := NewMemoryStore(StoreOptions{TTL: time.Minute, MaxPending: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.Issue(ctx, "op", "h"); err != nil {
			t.Fatalf("Issue(%d) failed: %v", i, err)
		}
	}
	_, err := s.Issue(ctx, "op", "h")
	if codeOf(t, err) != cerrors.ApprovalLimitExceeded {
		t.Fatalf("code=%v, want ApprovalLimitExceeded", codeOf(t, err))
	}
	if got := s.Pending(ctx); got != 2 {
		t.Fatalf("Pending()=%d, want 2", got)
	}
}

func TestNewTokenID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := NewTokenID()
		if err != nil {
			t.Fatalf("NewTokenID() failed: %v", err)
		}
		if len(id) != 64 {
			t.Fatalf("len(id)=%d, want 64 hex chars", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate token ID generated")
		}
		seen[id] = true
	}
}
