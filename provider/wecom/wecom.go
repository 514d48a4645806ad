// 企業微信登入與通訊錄
package wecom

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
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
	Name        = "wecom"
	DisplayName = "企业微信"

	rootDepartmentID   = "1"
	rootDepartmentName = "公司"
)

// 測試時可替換
var (
	AuthorizeEndpoint      = "https://open.work.weixin.qq.com/wwopen/oauth2/authorize"
	TokenEndpoint          = "https://qyapi.weixin.qq.com/cgi-bin/gettoken"
	UserIDByCodeEndpoint   = "https://qyapi.weixin.qq.com/cgi-bin/user/getuserinfo"
	GetUserEndpoint        = "https://qyapi.weixin.qq.com/cgi-bin/user/get"
	ListDepartmentEndpoint = "https://qyapi.weixin.qq.com/cgi-bin/department/list"
	ListUserEndpoint       = "https://qyapi.weixin.qq.com/cgi-bin/user/list"
)

type Provider struct {
	cfg  provider.Config
	deps provider.Deps
}

var (
	_ provider.IProvider       = (*Provider)(nil)
	_ directory.ISource        = (*Provider)(nil)
	_ provider.IQRCodeProvider = (*Provider)(nil)
)

func New(cfg provider.Config, deps provider.Deps) provider.IProvider {
	return &Provider{cfg: cfg, deps: deps}
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }

func (p *Provider) appID() string {
	if p.cfg.AppID != "" {
		return p.cfg.AppID
	}
	return p.cfg.CorpID
}

func (p *Provider) secret() string {
	if p.cfg.AppSecret != "" {
		return p.cfg.AppSecret
	}
	return p.cfg.ClientSecret
}

func (p *Provider) ValidateConfig() bool {
	return p.cfg.RedirectURI != "" && p.cfg.CorpID != "" && p.secret() != ""
}

func (p *Provider) AuthURL(ctx context.Context) (string, error) {
	params := []string{
		"appid=" + p.appID(),
		"redirect_uri=" + url.QueryEscape(p.cfg.RedirectURI),
		"response_type=code",
		"scope=snsapi_base",
		"state=" + provider.StateFor(Name),
	}
	if p.cfg.AgentID != "" {
		params = append(params, "agentid="+p.cfg.AgentID)
	}
	return AuthorizeEndpoint + "?" + strings.Join(params, "&") + "#wechat_redirect", nil
}

// QRCodeURL 掃碼登入與網頁授權使用同一個網址
func (p *Provider) QRCodeURL(ctx context.Context) (string, error) {
	return p.AuthURL(ctx)
}

type userIDResponse struct {
	UserID    string `json:"UserId"`
	UserIDNew string `json:"userid"`
}

type remoteUser struct {
	UserID     string  `json:"userid"`
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile"`
	Email      string  `json:"email"`
	Position   string  `json:"position"`
	Avatar     string  `json:"avatar"`
	Department []int64 `json:"department"`
}

func (u remoteUser) record() directory.UserRecord {
	ids := make([]string, 0, len(u.Department))
	for _, id := range u.Department {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return directory.UserRecord{
		UserID:  u.UserID,
		Name:    u.Name,
		Mobile:  u.Mobile,
		Email:   u.Email,
		Title:   u.Position,
		Avatar:  u.Avatar,
		DeptIDs: ids,
	}
}

// UserInfo 依序取得企業 token、授權碼對應的 userid、成員詳細資料
func (p *Provider) UserInfo(ctx context.Context, code string) (*provider.Identity, error) {
	const op = "wecom.Provider.UserInfo"

	token, err := p.CorpToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}

	var who userIDResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    UserIDByCodeEndpoint,
		Params: map[string]string{"access_token": token, "code": code},
	}, &who); err != nil {
		return nil, fmt.Errorf("[%s] Fail to resolve user by code, err=%w", op, err)
	}
	userID := who.UserID
	if userID == "" {
		userID = who.UserIDNew
	}
	if userID == "" {
		return nil, fmt.Errorf("[%s] %w", op, provider.ErrIncompleteIdentity)
	}

	user, err := p.getUser(ctx, token, userID)
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}

	identity := &provider.Identity{
		ExternalID: user.UserID,
		Email:      user.Email,
		Username:   user.Name,
		Phone:      user.Mobile,
		Avatar:     user.Avatar,
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

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenCacheKey 同一企業的不同應用各自有 token，以 secret 摘要區分
func (p *Provider) tokenCacheKey() string {
	sum := sha256.Sum256([]byte(p.secret()))
	return Name + ":" + p.cfg.CorpID + ":" + hex.EncodeToString(sum[:8])
}

func (p *Provider) CorpToken(ctx context.Context) (string, error) {
	const op = "wecom.Provider.CorpToken"

	token, err := provider.CachedToken(ctx, p.deps, p.tokenCacheKey(), func(ctx context.Context) (string, time.Duration, error) {
		var resp tokenResponse
		if err := p.deps.Transport.DoJSON(ctx, transport.Request{
			Method: http.MethodGet,
			URL:    TokenEndpoint,
			Params: map[string]string{"corpid": p.cfg.CorpID, "corpsecret": p.secret()},
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

type departmentListResponse struct {
	Department []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		ParentID int64  `json:"parentid"`
		Order    int    `json:"order"`
	} `json:"department"`
}

// ListSubDepartments 平台回傳整棵子樹，這裡只保留直屬子部門
func (p *Provider) ListSubDepartments(ctx context.Context, token, parentID string) ([]directory.Department, error) {
	const op = "wecom.Provider.ListSubDepartments"

	parent, err := strconv.ParseInt(parentID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("[%s] Invalid department id %q, err=%w", op, parentID, err)
	}

	var resp departmentListResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    ListDepartmentEndpoint,
		Params: map[string]string{"access_token": token, "id": parentID},
	}, &resp); err != nil {
		return nil, fmt.Errorf("[%s] Fail to list departments, parent=%s, err=%w", op, parentID, err)
	}

	depts := make([]directory.Department, 0)
	for _, d := range resp.Department {
		if d.ParentID != parent || d.ID == parent {
			continue
		}
		depts = append(depts, directory.Department{
			ExternalID: strconv.FormatInt(d.ID, 10),
			Name:       d.Name,
			Order:      d.Order,
			Source:     Name,
		})
	}
	return depts, nil
}

type userListResponse struct {
	UserList []remoteUser `json:"userlist"`
}

// ListDepartmentUsers 取得部門直屬成員，平台一次回傳全部不分頁
func (p *Provider) ListDepartmentUsers(ctx context.Context, token, deptID string) ([]directory.UserRecord, error) {
	const op = "wecom.Provider.ListDepartmentUsers"

	var resp userListResponse
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    ListUserEndpoint,
		Params: map[string]string{"access_token": token, "department_id": deptID},
	}, &resp); err != nil {
		return nil, fmt.Errorf("[%s] Fail to list users, dept=%s, err=%w", op, deptID, err)
	}

	users := make([]directory.UserRecord, 0, len(resp.UserList))
	for _, u := range resp.UserList {
		users = append(users, u.record())
	}
	return users, nil
}

func (p *Provider) GetUser(ctx context.Context, token, userID string) (*directory.UserRecord, error) {
	user, err := p.getUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	record := user.record()
	return &record, nil
}

func (p *Provider) getUser(ctx context.Context, token, userID string) (*remoteUser, error) {
	const op = "wecom.Provider.getUser"

	var user remoteUser
	if err := p.deps.Transport.DoJSON(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    GetUserEndpoint,
		Params: map[string]string{"access_token": token, "userid": userID},
	}, &user); err != nil {
		return nil, fmt.Errorf("[%s] Fail to get user %s, err=%w", op, userID, err)
	}
	if user.UserID == "" {
		user.UserID = userID
	}
	return &user, nil
}
