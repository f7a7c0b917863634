package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenProvider yields the bearer credential for outgoing calls.
// ok is false when no credential is available; that is an expected state, not an error.
type TokenProvider interface {
	AccessToken(ctx context.Context) (token string, ok bool)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (string, bool)

// AccessToken implements TokenProvider.
func (f TokenProviderFunc) AccessToken(ctx context.Context) (string, bool) {
	return f(ctx)
}

// StaticProvider holds a token in memory, e.g. one taken from the environment.
type StaticProvider struct {
	mu    sync.RWMutex
	token string
}

// NewStaticProvider constructs a provider seeded with token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: strings.TrimSpace(token)}
}

// AccessToken implements TokenProvider.
func (p *StaticProvider) AccessToken(context.Context) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, p.token != ""
}

// Set replaces the stored token. An empty token signs the console out.
func (p *StaticProvider) Set(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = strings.TrimSpace(token)
}

// FileProvider reads the token from a file on every call so external logins are picked up.
type FileProvider struct {
	path   string
	logger *zap.Logger
}

// NewFileProvider constructs a provider reading path.
func NewFileProvider(path string, logger *zap.Logger) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{path: path, logger: logger}
}

// AccessToken implements TokenProvider.
func (p *FileProvider) AccessToken(context.Context) (string, bool) {
	if p.path == "" {
		return "", false
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("read token file", zap.String("path", p.path), zap.Error(err))
		}
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

// KeyReader is the subset of *redis.Client the redis provider needs.
type KeyReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisProvider reads the token from a Redis key shared with the login service.
type RedisProvider struct {
	client KeyReader
	key    string
	logger *zap.Logger
}

// NewRedisProvider constructs a provider reading key from client.
func NewRedisProvider(client KeyReader, key string, logger *zap.Logger) *RedisProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProvider{client: client, key: key, logger: logger}
}

// AccessToken implements TokenProvider.
func (p *RedisProvider) AccessToken(ctx context.Context) (string, bool) {
	if p.client == nil {
		return "", false
	}
	token, err := p.client.Get(ctx, p.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.logger.Warn("read token from redis", zap.String("key", p.key), zap.Error(err))
		}
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
