package api

import (
	"crypto"
	"time"
)

type ServerConfig struct {
	// ID 用於 consumer group 的 consumer 名稱
	ID       string
	Auth     AuthConfig
	DB       DBConfig
	Redis    RedisConfig
	Sync     SyncConfig
	Callback CallbackConfig
}

type AuthConfig struct {
	PrivateKey     crypto.Signer
	Issuer         string
	Audience       string
	ExpireDuration time.Duration
	CookieName     string
	// CookieSecure 本機開發時可以關閉
	CookieSecure bool
	// LoginRedirectURL 第三方登入完成後導向的頁面
	LoginRedirectURL string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	KeyPrefix     string
	ConsumerGroup string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	UserChange string
}

type SyncConfig struct {
	BatchSize int
	MaxDepth  int
	Workers   int
	// Schedule 是 cron 表示式，空字串代表不排程
	Schedule string
	// LockExpiry 是同步鎖的過期時間，持有期間會自動延長
	LockExpiry time.Duration
	// ConfigCacheTTL 是平台設定的記憶體快取時間
	ConfigCacheTTL time.Duration
	// Timeout 是單次全量同步的上限，0 使用 DefaultSyncTimeout
	Timeout time.Duration
}

type CallbackConfig struct {
	ProviderName string
}
