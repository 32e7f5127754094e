package approval

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"hash/fnv"
	"sync"
	"time"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
)

// Status is the lifecycle state of a confirmation token.
//
// pending -> consumed happens exactly once, atomically, inside the store.
// pending -> expired happens lazily on any read once now > expiresAt.
// consumed and expired are terminal; no token is ever reused or reset.
type Status string

const (
	StatusPending  Status = "pending"
	StatusConsumed Status = "consumed"
	StatusExpired  Status = "expired"
)

// Token is a single-use credential binding an approved dry-run (by content
// hash) to permission to execute it once. Only the store mutates token state;
// callers hold the opaque ID string.
type Token struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	BoundHash string    `json:"boundHash"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Status    Status    `json:"status"`
}

// Store issues, looks up, and atomically consumes confirmation tokens.
// Implementations must make Consume a compare-and-swap on status so that
// under concurrent confirmations of the same token exactly one caller wins.
type Store interface {
	// Issue creates a pending token bound to a dry-run content hash.
	Issue(ctx context.Context, operation, boundHash string) (Token, error)

	// Get returns the token, lazily marking it expired when past its
	// deadline. The boolean reports whether the token exists at all.
	Get(ctx context.Context, id string) (Token, bool, error)

	// Consume transitions pending -> consumed. It fails with
	// TokenNotFound, TokenExpired, or TokenAlreadyConsumed; losing a race
	// to a concurrent caller reports TokenAlreadyConsumed.
	Consume(ctx context.Context, id string) (Token, error)

	// Sweep removes terminal and expired tokens to bound memory.
	// Correctness never depends on it; expiry is enforced on read.
	Sweep(ctx context.Context, now time.Time) int

	// Pending reports the number of pending tokens (for monitoring).
	Pending(ctx context.Context) int
}

// StoreOptions configure the in-memory store.
type StoreOptions struct {
	TTL time.Duration

	// MaxPending bounds outstanding approvals; 0 means unlimited.
	MaxPending int

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		TTL:        15 * time.Minute,
		MaxPending: 256,
	}
}

const shardCount = 16

type shard struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

// MemoryStore is the default Store backing: a sharded in-memory map.
// Tokens are independent, so sharding by token ID avoids one global lock
// across unrelated confirmations.
type MemoryStore struct {
	opts   StoreOptions
	shards [shardCount]*shard
	now    func() time.Time
}

func NewMemoryStore(opts StoreOptions) *MemoryStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultStoreOptions().TTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &MemoryStore{opts: opts, now: opts.Clock}
	for i := range s.shards {
		s.shards[i] = &shard{tokens: make(map[string]*Token)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// NewTokenID returns an opaque, URL-safe token identifier with 256 bits of
// entropy.
func NewTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", cerrors.Wrap(cerrors.InternalError, "generate confirmation token", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *MemoryStore) Issue(_ context.Context, operation, boundHash string) (Token, error) {
	if boundHash == "" {
		return Token{}, cerrors.ErrInvalidParams("bound hash is required")
	}

	id, err := NewTokenID()
	if err != nil {
		return Token{}, err
	}

	now := s.now()
	if max := s.opts.MaxPending; max > 0 && s.pendingCount(now) >= max {
		return Token{}, cerrors.ErrApprovalLimitExceeded(max)
	}

	tok := Token{
		ID:        id,
		Operation: operation,
		BoundHash: boundHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.TTL),
		Status:    StatusPending,
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	sh.tokens[id] = &tok
	sh.mu.Unlock()
	return tok, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Token, bool, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	tok, ok := sh.tokens[id]
	if !ok {
		return Token{}, false, nil
	}
	s.expireLocked(tok)
	return *tok, true, nil
}

func (s *MemoryStore) Consume(_ context.Context, id string) (Token, error) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	tok, ok := sh.tokens[id]
	if !ok {
		return Token{}, cerrors.ErrTokenNotFound(id)
	}
	s.expireLocked(tok)

	switch tok.Status {
	case StatusExpired:
		return Token{}, cerrors.ErrTokenExpired(id, tok.ExpiresAt)
	case StatusConsumed:
		return Token{}, cerrors.ErrTokenAlreadyConsumed(id)
	}

	tok.Status = StatusConsumed
	return *tok, nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, tok := range sh.tokens {
			if tok.Status == StatusConsumed || now.After(tok.ExpiresAt) {
				delete(sh.tokens, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

func (s *MemoryStore) Pending(_ context.Context) int {
	return s.pendingCount(s.now())
}

// StartSweep runs a periodic sweep until ctx is cancelled. Purely a memory
// bound; never required for correctness.
func (s *MemoryStore) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Sweep(ctx, s.now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *MemoryStore) pendingCount(now time.Time) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, tok := range sh.tokens {
			if tok.Status == StatusPending && !now.After(tok.ExpiresAt) {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// expireLocked lazily flips a pending token past its deadline to expired.
// Caller holds the shard lock.
func (s *MemoryStore) expireLocked(tok *Token) {
	if tok.Status == StatusPending && s.now().After(tok.ExpiresAt) {
		tok.Status = StatusExpired
	}
}
