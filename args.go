package main

import (
	"crypto"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"idbridge/api"
	"idbridge/callback"
	"idbridge/directory"
)

func ParseArgs() (Args, error) {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("server-id", "", "consumer name in the redis consumer group, defaults to hostname")

	// log config
	pflag.String("log-level", "info", "debug, info, warn or error")
	pflag.Bool("log-json", false, "")

	// auth config
	pflag.String("auth-private-key-file", "", "PEM encoded PKCS#8 Ed25519 private key used to sign login tokens")
	pflag.String("auth-issuer", "idbridge", "")
	pflag.String("auth-audience", "idbridge", "")
	pflag.Duration("auth-expire-duration", 24*time.Hour, "")
	pflag.String("auth-cookie-name", api.DefaultCookieName, "")
	pflag.Bool("auth-cookie-secure", true, "")
	pflag.String("auth-login-redirect-url", "/", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "idbridge:", "")
	pflag.String("redis-consumer-group", "idbridge", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-user-change", "idbridge-user-change-stream", "")

	// sync config
	pflag.Int("sync-batch-size", directory.DefaultBatchSize, "")
	pflag.Int("sync-max-depth", directory.DefaultMaxDepth, "")
	pflag.Int("sync-workers", directory.DefaultWorkers, "")
	pflag.String("sync-schedule", "", "cron expression for the scheduled full sync, empty to disable")
	pflag.Duration("sync-lock-expiry", 0, "")
	pflag.Duration("sync-config-cache-ttl", 0, "")
	pflag.Duration("sync-timeout", api.DefaultSyncTimeout, "upper bound of a single full sync")

	// callback config
	pflag.String("callback-provider-name", callback.DefaultProviderName, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("IDBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	var privateKey crypto.Signer
	if path := viper.GetString("auth-private-key-file"); path != "" {
		key, err := loadPrivateKey(path)
		if err != nil {
			return Args{}, err
		}
		privateKey = key
	}

	serverID := viper.GetString("server-id")
	if serverID == "" {
		if hostname, err := os.Hostname(); err == nil {
			serverID = hostname
		} else {
			serverID = uuid.NewString()
		}
	}

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		LogLevel:  viper.GetString("log-level"),
		LogJSON:   viper.GetBool("log-json"),
		ServerConfig: api.ServerConfig{
			ID: serverID,
			Auth: api.AuthConfig{
				PrivateKey:       privateKey,
				Issuer:           viper.GetString("auth-issuer"),
				Audience:         viper.GetString("auth-audience"),
				ExpireDuration:   viper.GetDuration("auth-expire-duration"),
				CookieName:       viper.GetString("auth-cookie-name"),
				CookieSecure:     viper.GetBool("auth-cookie-secure"),
				LoginRedirectURL: viper.GetString("auth-login-redirect-url"),
			},
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					UserChange: viper.GetString("redis-stream-key-for-user-change"),
				},
			},
			Sync: api.SyncConfig{
				BatchSize:      viper.GetInt("sync-batch-size"),
				MaxDepth:       viper.GetInt("sync-max-depth"),
				Workers:        viper.GetInt("sync-workers"),
				Schedule:       viper.GetString("sync-schedule"),
				LockExpiry:     viper.GetDuration("sync-lock-expiry"),
				ConfigCacheTTL: viper.GetDuration("sync-config-cache-ttl"),
				Timeout:        viper.GetDuration("sync-timeout"),
			},
			Callback: api.CallbackConfig{
				ProviderName: viper.GetString("callback-provider-name"),
			},
		},
	}, nil
}

// loadPrivateKey 讀取 PKCS#8 格式的 Ed25519 私鑰
func loadPrivateKey(path string) (crypto.Signer, error) {
	const op = "loadPrivateKey"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to read private key file, err=%w", op, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("[%s] No PEM block found in %s", op, path)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse private key, err=%w", op, err)
	}
	signer, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("[%s] Private key is %T, want ed25519", op, key)
	}
	return signer, nil
}

// schemaPattern 限制 schema 為 postgres 的一般識別字，會直接組進 search_path 與 table prefix
var schemaPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

type Args struct {
	ServerURL    string
	LogLevel     string
	LogJSON      bool
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	c := args.ServerConfig
	return args.ServerURL != "" &&
		c.Auth.PrivateKey != nil && c.Auth.Issuer != "" && c.Auth.Audience != "" && c.Auth.ExpireDuration > 0 &&
		c.DB.Host != "" && c.DB.Database != "" && schemaPattern.MatchString(c.DB.Schema) &&
		c.Redis.Addr != "" && c.Redis.ConsumerGroup != "" && c.Redis.StreamKeys.UserChange != ""
}

func (args Args) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(args.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
