package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idbridge/provider"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(provider.Deps{})
	assert.Equal(t, []string{"dingtalk", "oidc", "wecom"}, r.Names())

	tests := []struct {
		name        string
		cfg         provider.Config
		displayName string
	}{
		{name: "dingtalk", cfg: provider.Config{ClientID: "k", ClientSecret: "s", RedirectURI: "https://r"}, displayName: "钉钉"},
		{name: "wecom", cfg: provider.Config{CorpID: "c", AppSecret: "s", RedirectURI: "https://r"}, displayName: "企业微信"},
		{name: "oidc", cfg: provider.Config{IssuerURL: "https://i", ClientID: "c", ClientSecret: "s", RedirectURI: "https://r"}, displayName: "OpenID Connect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Get(tt.name, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.displayName, p.DisplayName())

			_, err = r.Get(tt.name, provider.Config{})
			assert.ErrorIs(t, err, provider.ErrConfigInvalid)
		})
	}
}
