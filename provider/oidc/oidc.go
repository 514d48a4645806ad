// 通用 OpenID Connect 登入，不支援通訊錄同步
package oidc

import (
	"context"
	"fmt"
	"net/http"

	oidcAdapter "idbridge/adapters/oidc"
	"idbridge/provider"
)

const (
	Name        = "oidc"
	DisplayName = "OpenID Connect"
)

// HTTPClient 用於 discovery、JWKS 與換取 token，nil 時使用預設值
var HTTPClient *http.Client

type Provider struct {
	cfg      provider.Config
	deps     provider.Deps
	upstream *oidcAdapter.Provider
}

var _ provider.IProvider = (*Provider)(nil)

func New(cfg provider.Config, deps provider.Deps) provider.IProvider {
	return &Provider{cfg: cfg, deps: deps}
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }

func (p *Provider) ValidateConfig() bool {
	return p.cfg.IssuerURL != "" && p.cfg.AppKey() != "" && p.cfg.AppKeySecret() != "" && p.cfg.RedirectURI != ""
}

// discover 第一次使用時才讀取 issuer 的 discovery 文件
func (p *Provider) discover(ctx context.Context) (*oidcAdapter.Provider, error) {
	if p.upstream != nil {
		return p.upstream, nil
	}
	upstream, err := oidcAdapter.NewProvider(ctx, p.cfg.IssuerURL, oidcAdapter.ProvideClientInfo{
		ID:          p.cfg.AppKey(),
		Secret:      p.cfg.AppKeySecret(),
		RedirectURL: p.cfg.RedirectURI,
	}, HTTPClient)
	if err != nil {
		return nil, err
	}
	p.upstream = upstream
	return upstream, nil
}

func (p *Provider) AuthURL(ctx context.Context) (string, error) {
	const op = "oidc.Provider.AuthURL"

	upstream, err := p.discover(ctx)
	if err != nil {
		return "", fmt.Errorf("[%s] %w", op, err)
	}
	return upstream.AuthURL(provider.StateFor(Name), nil), nil
}

func (p *Provider) UserInfo(ctx context.Context, code string) (*provider.Identity, error) {
	const op = "oidc.Provider.UserInfo"

	upstream, err := p.discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}
	token, err := upstream.Exchange(ctx, code, HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}

	identity := &provider.Identity{
		ExternalID: token.Claims.Sub,
		Username:   token.Claims.DisplayName(),
		Phone:      token.Claims.PhoneNumber,
		Avatar:     token.Claims.Picture,
		Source:     Name,
	}
	// 未驗證的 email 不拿來比對既有帳號
	if token.Claims.EmailVerified {
		identity.Email = token.Claims.Email
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}
	return identity, nil
}

func (p *Provider) SyncUsers(ctx context.Context) (int, error) {
	return 0, fmt.Errorf("[oidc.Provider.SyncUsers] %w: %s", provider.ErrSyncUnsupported, Name)
}
