package wecom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redisAdapter "idbridge/adapters/redis"
	"idbridge/adapters/transport"
	"idbridge/provider"
)

var validConfig = provider.Config{
	CorpID:      "corp",
	AppID:       "app",
	AppSecret:   "secret",
	RedirectURI: "https://idp.example.com/auth/third-party/callback",
}

func setupServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	token, byCode, get, depts, users := TokenEndpoint, UserIDByCodeEndpoint, GetUserEndpoint, ListDepartmentEndpoint, ListUserEndpoint
	TokenEndpoint = server.URL + "/cgi-bin/gettoken"
	UserIDByCodeEndpoint = server.URL + "/cgi-bin/user/getuserinfo"
	GetUserEndpoint = server.URL + "/cgi-bin/user/get"
	ListDepartmentEndpoint = server.URL + "/cgi-bin/department/list"
	ListUserEndpoint = server.URL + "/cgi-bin/user/list"
	t.Cleanup(func() {
		TokenEndpoint, UserIDByCodeEndpoint, GetUserEndpoint, ListDepartmentEndpoint, ListUserEndpoint = token, byCode, get, depts, users
	})
}

func newProvider(cfg provider.Config) *Provider {
	return New(cfg, provider.Deps{Transport: transport.NewClient(transport.WithTimeout(2 * time.Second))}).(*Provider)
}

func tokenHandler(t *testing.T, w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Path != "/cgi-bin/gettoken" {
		return false
	}
	assert.Equal(t, "corp", r.URL.Query().Get("corpid"))
	assert.Equal(t, "secret", r.URL.Query().Get("corpsecret"))
	_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok","access_token":"corp-token","expires_in":7200}`))
	return true
}

func TestProvider_ValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  provider.Config
		want bool
	}{
		{name: "app secret", cfg: validConfig, want: true},
		{name: "client secret", cfg: provider.Config{CorpID: "c", ClientSecret: "s", RedirectURI: "https://x"}, want: true},
		{name: "missing corp", cfg: provider.Config{AppSecret: "s", RedirectURI: "https://x"}, want: false},
		{name: "missing secret", cfg: provider.Config{CorpID: "c", RedirectURI: "https://x"}, want: false},
		{name: "missing redirect", cfg: provider.Config{CorpID: "c", AppSecret: "s"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.cfg, provider.Deps{}).ValidateConfig())
		})
	}
}

func TestProvider_AuthURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  provider.Config
		want string
	}{
		{
			name: "app id",
			cfg:  validConfig,
			want: "https://open.work.weixin.qq.com/wwopen/oauth2/authorize?appid=app&redirect_uri=https%3A%2F%2Fidp.example.com%2Fauth%2Fthird-party%2Fcallback&response_type=code&scope=snsapi_base&state=wecom_login#wechat_redirect",
		},
		{
			name: "corp id with agent",
			cfg:  provider.Config{CorpID: "corp", AgentID: "1000002", RedirectURI: "https://x/cb"},
			want: "https://open.work.weixin.qq.com/wwopen/oauth2/authorize?appid=corp&redirect_uri=https%3A%2F%2Fx%2Fcb&response_type=code&scope=snsapi_base&state=wecom_login&agentid=1000002#wechat_redirect",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.cfg, provider.Deps{}).AuthURL(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_UserInfo(t *testing.T) {
	tests := []struct {
		name    string
		byCode  string
		want    *provider.Identity
		wantErr error
	}{
		{
			name:   "legacy field",
			byCode: `{"errcode":0,"UserId":"zhangsan"}`,
			want: &provider.Identity{
				ExternalID: "zhangsan", Email: "zs@example.com", Username: "张三",
				Phone: "13800000000", Avatar: "https://img/zs", Source: "wecom",
			},
		},
		{
			name:   "new field",
			byCode: `{"errcode":0,"userid":"zhangsan"}`,
			want: &provider.Identity{
				ExternalID: "zhangsan", Email: "zs@example.com", Username: "张三",
				Phone: "13800000000", Avatar: "https://img/zs", Source: "wecom",
			},
		},
		{
			name:    "non member",
			byCode:  `{"errcode":0,"OpenId":"o-1"}`,
			wantErr: provider.ErrIncompleteIdentity,
		},
		{
			name:    "invalid code",
			byCode:  `{"errcode":40029,"errmsg":"invalid code"}`,
			wantErr: transport.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tokenHandler(t, w, r) {
					return
				}
				assert.Equal(t, "corp-token", r.URL.Query().Get("access_token"))
				switch r.URL.Path {
				case "/cgi-bin/user/getuserinfo":
					assert.Equal(t, "the-code", r.URL.Query().Get("code"))
					_, _ = w.Write([]byte(tt.byCode))
				case "/cgi-bin/user/get":
					assert.Equal(t, "zhangsan", r.URL.Query().Get("userid"))
					_, _ = w.Write([]byte(`{"errcode":0,"userid":"zhangsan","name":"张三","mobile":"13800000000","email":"zs@example.com","avatar":"https://img/zs","department":[1,2]}`))
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			})

			identity, err := newProvider(validConfig).UserInfo(context.Background(), "the-code")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity)
		})
	}
}

func TestProvider_ListSubDepartments(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"errcode":0,"department":[
			{"id":2,"name":"A","parentid":1,"order":1},
			{"id":4,"name":"C","parentid":2,"order":2},
			{"id":5,"name":"D","parentid":4,"order":1},
			{"id":6,"name":"E","parentid":2,"order":3}
		]}`))
	})

	depts, err := newProvider(validConfig).ListSubDepartments(context.Background(), "corp-token", "2")
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "4", depts[0].ExternalID)
	assert.Equal(t, "C", depts[0].Name)
	assert.Equal(t, "6", depts[1].ExternalID)
}

func TestProvider_ListDepartmentUsers(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi-bin/user/list", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("department_id"))
		_, _ = w.Write([]byte(`{"errcode":0,"userlist":[
			{"userid":"u1","name":"Alice","position":"PM","department":[3,4]},
			{"userid":"u2","name":"Bob"}
		]}`))
	})

	users, err := newProvider(validConfig).ListDepartmentUsers(context.Background(), "corp-token", "3")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "PM", users[0].Title)
	assert.Equal(t, []string{"3", "4"}, users[0].DeptIDs)
	assert.Equal(t, "u2", users[1].Key())
}

func TestProvider_CorpToken_Failure(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errcode":40013,"errmsg":"invalid corpid"}`))
	})

	_, err := newProvider(validConfig).CorpToken(context.Background())
	assert.ErrorIs(t, err, transport.ErrTransport)
}

func TestProvider_CorpToken_CacheKeyPerSecret(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		secret := r.URL.Query().Get("corpsecret")
		_, _ = w.Write([]byte(`{"errcode":0,"access_token":"token-` + secret + `","expires_in":7200}`))
	})

	other := validConfig
	other.AppSecret = "another-secret"

	ctrl := gomock.NewController(t)
	cache := redisAdapter.NewMockITokenCache(ctrl)
	keys := map[string]string{}
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil).Times(2)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), 7200*time.Second).
		DoAndReturn(func(_ context.Context, key, token string, _ time.Duration) error {
			keys[token] = key
			return nil
		}).Times(2)

	for _, cfg := range []provider.Config{validConfig, other} {
		p := New(cfg, provider.Deps{Transport: transport.NewClient(), Tokens: cache}).(*Provider)
		token, err := p.CorpToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-"+cfg.AppSecret, token)
	}

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys["token-secret"], keys["token-another-secret"])
	assert.True(t, strings.HasPrefix(keys["token-secret"], "wecom:corp:"))
	assert.True(t, strings.HasPrefix(keys["token-another-secret"], "wecom:corp:"))
}
