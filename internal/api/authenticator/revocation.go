package authenticator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/pubsub"
)

// RevocationStore remembers logged-out token IDs until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocations keeps revoked IDs as expiring keys so every API
// instance sees the same list.
type RedisRevocations struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisRevocations(client *redis.Client, keyPrefix string) *RedisRevocations {
	if keyPrefix == "" {
		keyPrefix = "revoked_token:"
	}
	return &RedisRevocations{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.keyPrefix+jti, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.keyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// MemoryRevocations is the single-process fallback used when Redis is not configured.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if until.After(now) {
		m.revoked[jti] = until
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[jti]
	return ok && exp.After(m.now()), nil
}

// NewRevocationStore uses Redis when REDIS_ADDR is set and reachable.
func NewRevocationStore(ctx context.Context, conf *config.Config) RevocationStore {
	if conf.REDIS_ADDR == "" {
		slog.Info("Using in-memory token revocation list")
		return NewMemoryRevocations()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.REDIS_ADDR,
		Password: conf.REDIS_PASSWORD,
		DB:       conf.REDIS_DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unavailable, falling back to in-memory token revocation", slog.Any("error", err))
		_ = client.Close()
		return NewMemoryRevocations()
	}

	slog.Info("Using Redis token revocation list", slog.String("addr", conf.REDIS_ADDR))
	return NewRedisRevocations(client, "")
}

// RevocationBus carries revocations between API instances.
type RevocationBus interface {
	Publish(ctx context.Context, event pubsub.RevocationEvent) error
	Subscribe(handler pubsub.RevocationHandler)
}

// BroadcastRevocations keeps a local list and shares every revocation over
// a bus, so instances without Redis still reject each other's logged-out
// tokens.
type BroadcastRevocations struct {
	local *MemoryRevocations
	bus   RevocationBus
}

func NewBroadcastRevocations(local *MemoryRevocations, bus RevocationBus) *BroadcastRevocations {
	bus.Subscribe(func(ev pubsub.RevocationEvent) {
		_ = local.Revoke(context.Background(), ev.JTI, ev.Until)
	})
	return &BroadcastRevocations{local: local, bus: bus}
}

func (b *BroadcastRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	if err := b.local.Revoke(ctx, jti, until); err != nil {
		return err
	}
	if err := b.bus.Publish(ctx, pubsub.RevocationEvent{JTI: jti, Until: until}); err != nil {
		slog.WarnContext(ctx, "Unable to broadcast token revocation", slog.String("jti", jti), slog.Any("error", err))
	}
	return nil
}

func (b *BroadcastRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return b.local.IsRevoked(ctx, jti)
}
