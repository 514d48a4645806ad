// 釘釘登入與通訊錄
package dingtalk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"idbridge/adapters/transport"
	"idbridge/directory"
	"idbridge/provider"
)

const (
	Name        = "dingtalk"
	DisplayName = "钉钉"

	rootDepartmentID   = "1"
	rootDepartmentName = "公司"
	pageSize           = 100
	// maxPages 避免平台回傳錯誤的 has_more 造成無限迴圈
	maxPages = 1000
)

// 測試時可替換
var (
	AuthorizeEndpoint       = "https://oapi.dingtalk.com/connect/oauth2/sns_authorize"
	UserAccessTokenEndpoint = "https://api.dingtalk.com/v1.0/oauth2/userAccessToken"
	SNSUserInfoEndpoint     = "https://oapi.dingtalk.com/sns/getuserinfo"
	CorpTokenEndpoint       = "https://oapi.dingtalk.com/gettoken"
	ListSubDeptEndpoint     = "https://oapi.dingtalk.com/topapi/v2/department/listsub"
	ListUserEndpoint        = "https://oapi.dingtalk.com/topapi/v2/user/list"
	GetUserEndpoint         = "https://oapi.dingtalk.com/topapi/v2/user/get"
)

type Provider struct {
	cfg    provider.Config
	deps   provider.Deps
	logger *slog.Logger
}

var (
	_ provider.IProvider       = (*Provider)(nil)
	_ directory.ISource        = (*Provider)(nil)
	_ provider.IQRCodeProvider = (*Provider)(nil)
)

func New(cfg provider.Config, deps provider.Deps) provider.IProvider {
	return &Provider{
		cfg:    cfg,
		deps:   deps,
		logger: deps.LoggerFor("dingtalk.Provider"),
	}
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }

// ValidateConfig 需要回調網址以及 client 或 app 其中一組完整憑證
func (p *Provider) ValidateConfig() bool {
	hasClient := p.cfg.ClientID != "" && p.cfg.ClientSecret != ""
	hasApp := p.cfg.AppID != "" && p.cfg.AppSecret != ""
	return p.cfg.RedirectURI != "" && (hasClient || hasApp)
}

// AuthURL 只有 redirect_uri 需要編碼，其餘參數依平台要求原樣帶入
func (p *Provider) AuthURL(ctx context.Context) (string, error) {
	params := []string{
		"appid=" + p.cfg.AppKey(),
		"response_type=code",
		"scope=snsapi_login",
		"state=" + provider.StateFor(Name),
		"redirect_uri=" + url.QueryEscape(p.cfg.RedirectURI),
	}
	return AuthorizeEndpoint + "?" + strings.Join(params, "&"), nil
}

// QRCodeURL 掃碼登入與網頁授權使用同一個網址
func (p *Provider) QRCodeURL(ctx context.Context) (string, error) {
	return p.AuthURL(ctx)
}

type userAccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpireIn    int64  `json:"expireIn"`
}

type snsUserInfoResponse struct {
	UserInfo struct {
		Nick    string `json:"nick"`
		UnionID string `json:"unionid"`
		OpenID  string `json:"openid"`
		Mobile  string `json:"mobile"`
	} `json:"user_info"`
}

// UserInfo 先以授權碼換取使用者 token，再取得使用者資訊，外部 ID 使用 unionid
func (p *Provider) UserInfo(ctx context.Context, code string) (*provider.Identity, error) {
	const op = "dingtalk.Provider.UserInfo"

	var token userAccessTokenResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    UserAccessTokenEndpoint,
		JSON: map[string]string{
			"clientId":     p.cfg.AppKey(),
			"clientSecret": p.cfg.AppKeySecret(),
			"code":         code,
			"grantType":    "authorization_code",
		},
	}, &token); err != nil {
		return nil, fmt.Errorf("[%s] Fail to get user access token, err=%w", op, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("[%s] Empty user access token", op)
	}

	var info snsUserInfoResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    SNSUserInfoEndpoint,
		Params: map[string]string{"sns_token": token.AccessToken},
	}, &info); err != nil {
		return nil, fmt.Errorf("[%s] Fail to get user info, err=%w", op, err)
	}

	identity := &provider.Identity{
		ExternalID: info.UserInfo.UnionID,
		Username:   info.UserInfo.Nick,
		Phone:      info.UserInfo.Mobile,
		Source:     Name,
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}
	return identity, nil
}

func (p *Provider) SyncUsers(ctx context.Context) (int, error) {
	return provider.SyncDirectory(ctx, p.deps, p)
}

func (p *Provider) Root() directory.Department {
	return directory.Department{ExternalID: rootDepartmentID, Name: rootDepartmentName, Source: Name}
}

type corpTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (p *Provider) CorpToken(ctx context.Context) (string, error) {
	const op = "dingtalk.Provider.CorpToken"

	token, err := provider.CachedToken(ctx, p.deps, Name+":"+p.cfg.AppKey(), func(ctx context.Context) (string, time.Duration, error) {
		var resp corpTokenResponse
		if err := p.deps.Transport.DoJSON(ctx, transport.Request{
			Method: http.MethodGet,
			URL:    CorpTokenEndpoint,
			Params: map[string]string{
				"appkey":    p.cfg.AppKey(),
				"appsecret": p.cfg.AppKeySecret(),
			},
		}, &resp); err != nil {
			return "", 0, err
		}
		if resp.AccessToken == "" {
			return "", 0, fmt.Errorf("empty access token")
		}
		return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to get corp token, err=%w", op, err)
	}
	return token, nil
}

type departmentResponse struct {
	Result []struct {
		DeptID   int64  `json:"dept_id"`
		Name     string `json:"name"`
		ParentID int64  `json:"parent_id"`
		Order    int    `json:"order"`
	} `json:"result"`
}

func (p *Provider) ListSubDepartments(ctx context.Context, token, parentID string) ([]directory.Department, error) {
	const op = "dingtalk.Provider.ListSubDepartments"

	deptID, err := strconv.ParseInt(parentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("[%s] Invalid department id %q, err=%w", op, parentID, err)
	}

	var resp departmentResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    ListSubDeptEndpoint,
		Params: map[string]string{"access_token": token},
		JSON:   map[string]any{"dept_id": deptID},
	}, &resp); err != nil {
		return nil, fmt.Errorf("[%s] Fail to list sub departments, parent=%s, err=%w", op, parentID, err)
	}

	depts := make([]directory.Department, 0, len(resp.Result))
	for _, d := range resp.Result {
		if d.DeptID == 0 || d.Name == "" {
			continue
		}
		depts = append(depts, directory.Department{
			ExternalID: strconv.FormatInt(d.DeptID, 10),
			Name:       d.Name,
			Order:      d.Order,
			Source:     Name,
		})
	}
	return depts, nil
}

type remoteUser struct {
	UserID     string  `json:"userid"`
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile"`
	Email      string  `json:"email"`
	UnionID    string  `json:"unionid"`
	Title      string  `json:"title"`
	Avatar     string  `json:"avatar"`
	DeptIDList []int64 `json:"dept_id_list"`
}

func (u remoteUser) record() directory.UserRecord {
	ids := make([]string, 0, len(u.DeptIDList))
	for _, id := range u.DeptIDList {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return directory.UserRecord{
		UserID:  u.UserID,
		Name:    u.Name,
		Mobile:  u.Mobile,
		Email:   u.Email,
		UnionID: u.UnionID,
		Title:   u.Title,
		Avatar:  u.Avatar,
		DeptIDs: ids,
	}
}

type userListResponse struct {
	Result struct {
		HasMore    bool         `json:"has_more"`
		NextCursor int64        `json:"next_cursor"`
		List       []remoteUser `json:"list"`
	} `json:"result"`
}

// ListDepartmentUsers 以 cursor 分頁取得部門的直屬成員
func (p *Provider) ListDepartmentUsers(ctx context.Context, token, deptID string) ([]directory.UserRecord, error) {
	const op = "dingtalk.Provider.ListDepartmentUsers"

	id, err := strconv.ParseInt(deptID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("[%s] Invalid department id %q, err=%w", op, deptID, err)
	}

	users := make([]directory.UserRecord, 0)
	var cursor int64
	for page := 0; page < maxPages; page++ {
		var resp userListResponse
		if err := p.deps.Transport.DoJSON(ctx, transport.Request{
			Method: http.MethodPost,
			URL:    ListUserEndpoint,
			Params: map[string]string{"access_token": token},
			JSON:   map[string]any{"dept_id": id, "cursor": cursor, "size": pageSize},
		}, &resp); err != nil {
			return nil, fmt.Errorf("[%s] Fail to list users, dept=%s, cursor=%d, err=%w", op, deptID, cursor, err)
		}

		for _, u := range resp.Result.List {
			users = append(users, u.record())
		}
		if !resp.Result.HasMore {
			return users, nil
		}
		cursor = resp.Result.NextCursor
	}

	p.logger.Warn("Stop paging at page limit", slog.String("departmentID", deptID), slog.Int("pages", maxPages))
	return users, nil
}

type getUserResponse struct {
	Result remoteUser `json:"result"`
}

func (p *Provider) GetUser(ctx context.Context, token, userID string) (*directory.UserRecord, error) {
	const op = "dingtalk.Provider.GetUser"

	var resp getUserResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    GetUserEndpoint,
		Params: map[string]string{"access_token": token},
		JSON:   map[string]string{"userid": userID},
	}, &resp); err != nil {
		return nil, fmt.Errorf("[%s] Fail to get user %s, err=%w", op, userID, err)
	}
	if resp.Result.UserID == "" {
		resp.Result.UserID = userID
	}

	record := resp.Result.record()
	return &record, nil
}
