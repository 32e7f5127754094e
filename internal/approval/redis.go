package approval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	cerrors "github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/errors"
)

// RedisStore keeps confirmation tokens in Redis so approvals survive process
// restarts and can be shared across replicas. Semantics match MemoryStore:
// single-use consumption is a compare-and-swap, implemented server-side as a
// Lua script so concurrent confirmations cannot both win.
type RedisStore struct {
	client *redis.Client
	opts   StoreOptions
	prefix string
	now    func() time.Time
}

// consumedRetention keeps consumed tokens around long enough that a replayed
// confirmation reports TokenAlreadyConsumed instead of TokenNotFound.
const consumedRetention = time.Hour

// consumeScript flips status pending -> consumed iff it is still pending.
// Returns the stored JSON on success, "consumed" or "missing" otherwise.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 'missing'
end
local tok = cjson.decode(raw)
if tok.status ~= 'pending' then
  return 'consumed'
end
tok.status = 'consumed'
local updated = cjson.encode(tok)
redis.call('SET', KEYS[1], updated, 'PX', tonumber(ARGV[1]))
return updated
`)

func NewRedisStore(client *redis.Client, opts StoreOptions) *RedisStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultStoreOptions().TTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &RedisStore{
		client: client,
		opts:   opts,
		prefix: "approval:token:",
		now:    opts.Clock,
	}
}

// NewRedisStoreFromConfig dials addr and wraps the client in a store.
func NewRedisStoreFromConfig(addr, password string, db int, opts StoreOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStore(client, opts)
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Issue(ctx context.Context, operation, boundHash string) (Token, error) {
	if boundHash == "" {
		return Token{}, cerrors.ErrInvalidParams("bound hash is required")
	}

	id, err := NewTokenID()
	if err != nil {
		return Token{}, err
	}

	now := s.now()
	tok := Token{
		ID:        id,
		Operation: operation,
		BoundHash: boundHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.TTL),
		Status:    StatusPending,
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		return Token{}, cerrors.Wrap(cerrors.InternalError, "serialize confirmation token", err)
	}
	// Pending entries live slightly past ExpiresAt so lookups can still
	// distinguish expired from unknown.
	if err := s.client.Set(ctx, s.key(id), raw, s.opts.TTL+consumedRetention).Err(); err != nil {
		return Token{}, cerrors.Wrap(cerrors.InternalError, "store confirmation token", err)
	}
	return tok, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Token, bool, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, cerrors.Wrap(cerrors.InternalError, "read confirmation token", err)
	}

	var tok Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return Token{}, false, cerrors.Wrap(cerrors.InternalError, "decode confirmation token", err)
	}
	if tok.Status == StatusPending && s.now().After(tok.ExpiresAt) {
		tok.Status = StatusExpired
	}
	return tok, true, nil
}

func (s *RedisStore) Consume(ctx context.Context, id string) (Token, error) {
	// Expiry is checked before the CAS so an expired-but-present token
	// reports TokenExpired rather than winning the script.
	tok, ok, err := s.Get(ctx, id)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, cerrors.ErrTokenNotFound(id)
	}
	switch tok.Status {
	case StatusExpired:
		return Token{}, cerrors.ErrTokenExpired(id, tok.ExpiresAt)
	case StatusConsumed:
		return Token{}, cerrors.ErrTokenAlreadyConsumed(id)
	}

	res, err := consumeScript.Run(ctx, s.client, []string{s.key(id)}, consumedRetention.Milliseconds()).Text()
	if err != nil {
		return Token{}, cerrors.Wrap(cerrors.InternalError, "consume confirmation token", err)
	}
	switch res {
	case "missing":
		return Token{}, cerrors.ErrTokenNotFound(id)
	case "consumed":
		return Token{}, cerrors.ErrTokenAlreadyConsumed(id)
	}

	var consumed Token
	if err := json.Unmarshal([]byte(res), &consumed); err != nil {
		return Token{}, cerrors.Wrap(cerrors.InternalError, "decode consumed token", err)
	}
	return consumed, nil
}

// Sweep is a no-op for Redis: entries carry their own TTL.
func (s *RedisStore) Sweep(context.Context, time.Time) int { return 0 }

func (s *RedisStore) Pending(ctx context.Context) int {
	var n int
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var tok Token
		if json.Unmarshal([]byte(raw), &tok) == nil && tok.Status == StatusPending && !s.now().After(tok.ExpiresAt) {
			n++
		}
	}
	return n
}
