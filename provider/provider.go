// 第三方登入平台的抽象，各平台實作在子套件中
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	redisAdapter "idbridge/adapters/redis"
	"idbridge/adapters/transport"
	"idbridge/directory"
)

var (
	ErrConfigInvalid      = errors.New("provider unavailable: invalid configuration")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrIncompleteIdentity = errors.New("identity has no external identifier")
	ErrSyncUnsupported    = errors.New("provider does not support directory sync")
	ErrInvalidState       = errors.New("invalid authorization state")
)

// Config 是存放在 third_party_auth_configs.config 的憑證，欄位依平台使用其中一部分
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AppID        string `json:"app_id"`
	AppSecret    string `json:"app_secret"`
	CorpID       string `json:"corp_id"`
	AgentID      string `json:"agent_id"`
	RedirectURI  string `json:"redirect_uri"`
	// Token 與 AESKey 用於事件回調的簽章與加解密
	Token     string `json:"token"`
	AESKey    string `json:"aes_key"`
	IssuerURL string `json:"issuer_url"`
}

func ParseConfig(raw []byte) (Config, error) {
	const op = "provider.ParseConfig"

	var cfg Config
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("[%s] Fail to decode config, err=%w", op, err)
	}
	return cfg, nil
}

// AppKey 優先使用 client_id
func (c Config) AppKey() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.AppID
}

func (c Config) AppKeySecret() string {
	if c.ClientSecret != "" {
		return c.ClientSecret
	}
	return c.AppSecret
}

// Identity 是各平台使用者資訊正規化後的結果
type Identity struct {
	ExternalID string
	Email      string
	Username   string
	Phone      string
	Avatar     string
	Source     string
}

func (i *Identity) Validate() error {
	if i == nil || i.ExternalID == "" {
		return ErrIncompleteIdentity
	}
	return nil
}

// Deps 是建立平台實例時注入的共用元件
type Deps struct {
	Transport transport.ITransport
	Syncer    directory.ISyncer
	Tokens    redisAdapter.ITokenCache
	Logger    *slog.Logger
}

// Constructor 每次呼叫都建立新的實例，實例不在請求之間共用
type Constructor func(cfg Config, deps Deps) IProvider

// StateFor 產生授權流程的 state，回調時用來找回平台
func StateFor(name string) string {
	return name + stateSuffix
}

const stateSuffix = "_login"

func ResolveState(state string) (string, error) {
	name, ok := strings.CutSuffix(state, stateSuffix)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	return name, nil
}
