package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache 以 redis string 保存第三方平台的 access token，到期由 redis 自動清除
type TokenCache struct {
	client  *redis.Client
	options tokenCacheOptions
}

type tokenCacheOptions struct {
	prefix string
	// skew 會從 ttl 扣除，避免 token 在使用途中過期
	skew time.Duration
}

type TokenCacheOption func(*tokenCacheOptions)

// WithTokenCachePrefix 設定 key 前綴
func WithTokenCachePrefix(prefix string) TokenCacheOption {
	return func(o *tokenCacheOptions) {
		o.prefix = prefix
	}
}

// WithTokenCacheSkew 設定提早過期的時間
func WithTokenCacheSkew(d time.Duration) TokenCacheOption {
	return func(o *tokenCacheOptions) {
		o.skew = d
	}
}

func NewTokenCache(client *redis.Client, opts ...TokenCacheOption) ITokenCache {
	options := tokenCacheOptions{
		prefix: "idbridge:token:",
		skew:   5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &TokenCache{
		client:  client,
		options: options,
	}
}

// Get 取得快取的 token，不存在時回傳 ok=false
func (c *TokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "redis.TokenCache.Get"

	token, err := c.client.Get(ctx, c.options.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[%s] Fail to get token, err=%w", op, err)
	}
	return token, true, nil
}

// Set 寫入 token，扣除 skew 後不足一秒的 token 不寫入
func (c *TokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	const op = "redis.TokenCache.Set"

	ttl -= c.options.skew
	if ttl < time.Second {
		return nil
	}

	if err := c.client.Set(ctx, c.options.prefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to set token, err=%w", op, err)
	}
	return nil
}

func (c *TokenCache) Delete(ctx context.Context, key string) error {
	const op = "redis.TokenCache.Delete"

	if err := c.client.Del(ctx, c.options.prefix+key).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to delete token, err=%w", op, err)
	}
	return nil
}
