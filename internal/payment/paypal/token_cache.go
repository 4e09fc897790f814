package paypal

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"ticketly/internal/logger"
)

const accessTokenKey = "paypal:access_token"

// expirySlack is shaved off the provider TTL so a token is never used within
// seconds of expiring mid-request.
const expirySlack = 60

// TokenCache stores the OAuth access token between requests.
type TokenCache interface {
	Get(ctx context.Context) (string, bool)
	Put(ctx context.Context, token string, expiresIn int)
}

// RedisTokenCache shares one token across all instances of the service.
type RedisTokenCache struct {
	Client *redis.Client
	Logger *logger.Logger
}

func NewRedisTokenCache(client *redis.Client, log *logger.Logger) *RedisTokenCache {
	return &RedisTokenCache{Client: client, Logger: log}
}

func (c *RedisTokenCache) Get(ctx context.Context) (string, bool) {
	token, err := c.Client.Get(ctx, accessTokenKey).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Treat a cache failure as a miss; the client refetches.
		c.Logger.Warn("PAYPAL", "Token cache read failed: "+err.Error())
		return "", false
	}
	return token, true
}

func (c *RedisTokenCache) Put(ctx context.Context, token string, expiresIn int) {
	ttl := expiresIn - expirySlack
	if ttl <= 0 {
		return
	}
	if err := c.Client.Set(ctx, accessTokenKey, token, time.Duration(ttl)*time.Second).Err(); err != nil {
		c.Logger.Warn("PAYPAL", "Token cache write failed: "+err.Error())
	}
}

// MemoryTokenCache is the single-process fallback used when Redis is not
// configured, and by tests.
type MemoryTokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (c *MemoryTokenCache) Get(ctx context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *MemoryTokenCache) Put(ctx context.Context, token string, expiresIn int) {
	ttl := expiresIn - expirySlack
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
}
