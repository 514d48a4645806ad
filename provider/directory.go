package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"idbridge/directory"
)

// TokenFetcher 向平台取得 token 與有效時間
type TokenFetcher func(ctx context.Context) (string, time.Duration, error)

// CachedToken 先讀取 deps.Tokens，不存在才向平台取得並寫回。
// 快取讀寫失敗只記錄，不影響取得 token。
func CachedToken(ctx context.Context, deps Deps, key string, fetch TokenFetcher) (string, error) {
	logger := deps.logger()

	if deps.Tokens != nil {
		token, ok, err := deps.Tokens.Get(ctx, key)
		if err != nil {
			logger.Warn("Fail to read token cache", slog.String("key", key), slog.Any("error", err))
		}
		if ok {
			return token, nil
		}
	}

	token, ttl, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	if deps.Tokens != nil {
		if err := deps.Tokens.Set(ctx, key, token, ttl); err != nil {
			logger.Warn("Fail to write token cache", slog.String("key", key), slog.Any("error", err))
		}
	}
	return token, nil
}

// SyncDirectory 交給同步引擎執行，沒有注入引擎時回傳 ErrSyncUnsupported
func SyncDirectory(ctx context.Context, deps Deps, src directory.ISource) (int, error) {
	const op = "provider.SyncDirectory"

	if deps.Syncer == nil {
		return 0, fmt.Errorf("[%s] %w: %s", op, ErrSyncUnsupported, src.Name())
	}
	return deps.Syncer.Sync(ctx, src)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// LoggerFor 回傳帶有 caller 的 logger
func (d Deps) LoggerFor(caller string) *slog.Logger {
	return d.logger().With(slog.String("caller", caller))
}
