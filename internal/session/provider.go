package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/posbok/storefront/pkg/logger"
	pkgredis "github.com/posbok/storefront/pkg/redis"
)

const (
	// StorageKey is the fixed key the anonymous identity is persisted under.
	StorageKey = "cart-session-id"

	// PlaceholderID marks a context with no usable persistent storage.
	// It must never be sent on a real cart-mutating request; the cart
	// engine refuses mutations carrying it.
	PlaceholderID = "detached-session"
)

// Provider returns the stable anonymous shopper identity. Implementations
// degrade to PlaceholderID instead of failing: a broken identity store must
// not take the storefront down.
type Provider interface {
	GetOrCreate(ctx context.Context) string
}

// IsPlaceholder reports whether id is the detached-storage sentinel.
func IsPlaceholder(id string) bool {
	return id == PlaceholderID
}

// FileStore persists the identity in a key file, the daemon's analogue of
// the browser's durable origin storage.
type FileStore struct {
	dir  string
	logg *logger.Logger
}

// NewFileStore builds a file-backed provider. An empty dir resolves to the
// user config dir at first use.
func NewFileStore(dir string, logg *logger.Logger) *FileStore {
	return &FileStore{dir: dir, logg: logg}
}

func (s *FileStore) GetOrCreate(ctx context.Context) string {
	dir := s.dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			s.warn(ctx, "no user config dir, degrading to placeholder session", err)
			return PlaceholderID
		}
		dir = filepath.Join(base, "posbok-storefront")
	}

	path := filepath.Join(dir, StorageKey)
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		s.warn(ctx, "cannot create session dir, degrading to placeholder session", err)
		return PlaceholderID
	}
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		s.warn(ctx, "cannot persist session id, degrading to placeholder session", err)
		return PlaceholderID
	}
	return id
}

func (s *FileStore) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}

type keyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SessionKey(id string) string
}

// RedisStore persists the identity in redis for deployments without a
// durable local disk.
type RedisStore struct {
	kv   keyValueStore
	logg *logger.Logger
}

func NewRedisStore(client *pkgredis.Client, logg *logger.Logger) *RedisStore {
	return &RedisStore{kv: client, logg: logg}
}

func (s *RedisStore) GetOrCreate(ctx context.Context) string {
	if s.kv == nil {
		return PlaceholderID
	}

	key := s.kv.SessionKey(StorageKey)
	id, err := s.kv.Get(ctx, key)
	switch {
	case err == nil && strings.TrimSpace(id) != "":
		return id
	case err != nil && err != pkgredis.ErrNotFound:
		s.warn(ctx, "session read failed, degrading to placeholder session", err)
		return PlaceholderID
	}

	id = uuid.NewString()
	if err := s.kv.Set(ctx, key, id, 0); err != nil {
		s.warn(ctx, "session write failed, degrading to placeholder session", err)
		return PlaceholderID
	}
	return id
}

func (s *RedisStore) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}
