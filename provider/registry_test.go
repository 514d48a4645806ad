package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubProvider 依設定決定是否有效
type stubProvider struct {
	name string
	cfg  Config
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) DisplayName() string { return "Stub " + s.name }
func (s *stubProvider) ValidateConfig() bool { return s.cfg.ClientID != "" }
func (s *stubProvider) SyncUsers(context.Context) (int, error) { return 0, ErrSyncUnsupported }
func (s *stubProvider) AuthURL(context.Context) (string, error) {
	return "https://example.com/auth?state=" + StateFor(s.name), nil
}
func (s *stubProvider) UserInfo(context.Context, string) (*Identity, error) {
	return &Identity{ExternalID: "x", Source: s.name}, nil
}

func stubConstructor(name string) Constructor {
	return func(cfg Config, deps Deps) IProvider {
		return &stubProvider{name: name, cfg: cfg}
	}
}

func TestRegistry_Get(t *testing.T) {
	builtinCalls := 0
	r := NewRegistry(Deps{}, WithBuiltins(func(r *Registry) {
		builtinCalls++
		r.RegisterBuiltin("alpha", stubConstructor("alpha"))
	}))
	r.Register("beta", stubConstructor("beta"))

	tests := []struct {
		name    string
		key     string
		cfg     Config
		wantErr error
	}{
		{name: "builtin valid", key: "alpha", cfg: Config{ClientID: "id"}},
		{name: "registered valid", key: "beta", cfg: Config{ClientID: "id"}},
		{name: "invalid config", key: "alpha", cfg: Config{}, wantErr: ErrConfigInvalid},
		{name: "unknown", key: "gamma", cfg: Config{ClientID: "id"}, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Get(tt.key, tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, p.Name())
		})
	}

	assert.Equal(t, 1, builtinCalls)
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())
}

func TestRegistry_Get_FreshInstance(t *testing.T) {
	r := NewRegistry(Deps{})
	r.Register("alpha", stubConstructor("alpha"))

	p1, err := r.Get("alpha", Config{ClientID: "one"})
	require.NoError(t, err)
	p2, err := r.Get("alpha", Config{ClientID: "two"})
	require.NoError(t, err)

	assert.NotSame(t, p1, p2)
	assert.Equal(t, "one", p1.(*stubProvider).cfg.ClientID)
	assert.Equal(t, "two", p2.(*stubProvider).cfg.ClientID)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry(Deps{}, WithBuiltins(func(r *Registry) {
		r.RegisterBuiltin("alpha", stubConstructor("alpha"))
	}))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := r.Get("alpha", Config{ClientID: "id"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			r.Register(fmt.Sprintf("p%d", i), stubConstructor("p"))
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 21)
}

func TestRegistry_Authorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	authErr := errors.New("discovery failed")

	tests := []struct {
		name    string
		setup   func(p *MockIProvider)
		want    string
		wantErr error
	}{
		{
			name: "returns url",
			setup: func(p *MockIProvider) {
				p.EXPECT().ValidateConfig().Return(true)
				p.EXPECT().AuthURL(gomock.Any()).Return("https://example.com/auth", nil)
			},
			want: "https://example.com/auth",
		},
		{
			name: "auth url failure",
			setup: func(p *MockIProvider) {
				p.EXPECT().ValidateConfig().Return(true)
				p.EXPECT().AuthURL(gomock.Any()).Return("", authErr)
			},
			wantErr: authErr,
		},
		{
			name: "invalid config",
			setup: func(p *MockIProvider) {
				p.EXPECT().ValidateConfig().Return(false)
			},
			wantErr: ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockIProvider(ctrl)
			tt.setup(mock)

			r := NewRegistry(Deps{})
			r.Register("mock", func(Config, Deps) IProvider { return mock })

			url, err := r.Authorize(context.Background(), "mock", Config{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestResolveState(t *testing.T) {
	tests := []struct {
		state   string
		want    string
		wantErr bool
	}{
		{state: "dingtalk_login", want: "dingtalk"},
		{state: "wecom_login", want: "wecom"},
		{state: StateFor("oidc"), want: "oidc"},
		{state: "_login", wantErr: true},
		{state: "dingtalk", wantErr: true},
		{state: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			got, err := ResolveState(tt.state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"client_id":"cid","app_id":"aid","app_secret":"as","redirect_uri":"https://x/cb","aes_key":"k"}`))
	require.NoError(t, err)
	assert.Equal(t, "cid", cfg.AppKey())
	assert.Equal(t, "as", cfg.AppKeySecret())
	assert.Equal(t, "https://x/cb", cfg.RedirectURI)
	assert.Equal(t, "k", cfg.AESKey)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	_, err = ParseConfig([]byte(`{`))
	assert.Error(t, err)
}

func TestIdentity_Validate(t *testing.T) {
	assert.ErrorIs(t, (*Identity)(nil).Validate(), ErrIncompleteIdentity)
	assert.ErrorIs(t, (&Identity{Username: "a"}).Validate(), ErrIncompleteIdentity)
	assert.NoError(t, (&Identity{ExternalID: "u"}).Validate())
}
