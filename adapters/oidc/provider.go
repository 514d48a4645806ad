package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var (
	ErrMissingIDToken = errors.New("no id_token field in oauth2 token")
)

var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email", "phone"}

type Provider struct {
	*oidc.Provider

	clientInfo ProvideClientInfo
}

type ProvideClientInfo struct {
	ID          string
	Secret      string
	RedirectURL string
}

// NewProvider 透過 issuer 的 discovery 文件建立 provider，httpClient 為 nil 時使用預設值
func NewProvider(ctx context.Context, issuerURL string, client ProvideClientInfo, httpClient *http.Client) (*Provider, error) {
	const op = "oidc.NewProvider"

	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create provider, err=%w", op, err)
	}
	return &Provider{
		Provider:   provider,
		clientInfo: client,
	}, nil
}

func (p *Provider) config(scopes []string) oauth2.Config {
	return oauth2.Config{
		ClientID:     p.clientInfo.ID,
		ClientSecret: p.clientInfo.Secret,
		Endpoint:     p.Endpoint(),
		RedirectURL:  p.clientInfo.RedirectURL,
		Scopes:       scopes,
	}
}

func (p *Provider) AuthURL(state string, scopes []string, opts ...oauth2.AuthCodeOption) string {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	config := p.config(scopes)
	return config.AuthCodeURL(state, opts...)
}

// Exchange 以授權碼換取 token，並驗證 id_token 的簽章、issuer 與 audience
func (p *Provider) Exchange(ctx context.Context, code string, httpClient *http.Client) (*ExchangeToken, error) {
	const op = "oidc.Provider.Exchange"

	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	config := p.config(nil)
	oauth2Token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to exchange token, err=%w", op, err)
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("[%s] %w", op, ErrMissingIDToken)
	}

	verifier := p.Verifier(&oidc.Config{ClientID: p.clientInfo.ID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to verify ID Token, err=%w", op, err)
	}

	token := &ExchangeToken{OAuth2Token: oauth2Token}
	if err := idToken.Claims(&token.Claims); err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse ID Token claims, err=%w", op, err)
	}
	return token, nil
}

type ExchangeToken struct {
	OAuth2Token *oauth2.Token
	Claims      Claims
}
