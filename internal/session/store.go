package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/services/auth"
)

// Snapshot is what survives between dashboard runs.
type Snapshot struct {
	Token   string        `json:"token,omitempty"`
	Profile *auth.Profile `json:"profile,omitempty"`
	Theme   string        `json:"theme,omitempty"`
}

func (s *Snapshot) empty() bool {
	return s == nil || (s.Token == "" && s.Profile == nil && s.Theme == "")
}

// Store persists the session snapshot. Saving an empty snapshot erases it.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// FileStore keeps the snapshot in a JSON file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (f *FileStore) Save(_ context.Context, snap *Snapshot) error {
	if snap.empty() {
		err := os.Remove(f.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	raw, err := sonic.Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

// RedisStore keeps the snapshot under a single key, so several terminals
// can share one session.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "taskdesk:dashboard_session"
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap.empty() {
		return r.client.Del(ctx, r.key).Err()
	}

	raw, err := sonic.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, raw, 0).Err()
}

// NewStore picks the Redis store when SESSION_STORE is "redis" and Redis
// answers, and the file store otherwise.
func NewStore(ctx context.Context, conf *config.Config) Store {
	if conf.SESSION_STORE != "redis" || conf.REDIS_ADDR == "" {
		return NewFileStore(conf.SESSION_FILE)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.REDIS_ADDR,
		Password: conf.REDIS_PASSWORD,
		DB:       conf.REDIS_DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unavailable, keeping the session in a file", slog.String("path", conf.SESSION_FILE), slog.Any("error", err))
		_ = client.Close()
		return NewFileStore(conf.SESSION_FILE)
	}

	return NewRedisStore(client, "")
}
