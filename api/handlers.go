package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idbridge/adapters/transport"
	"idbridge/authconfig"
	"idbridge/callback"
	"idbridge/directory"
	"idbridge/identity"
	"idbridge/models"
	"idbridge/provider"
)

const (
	DefaultCookieName = "access_token"
	usernameCookie    = "username"
	maxCallbackBody   = 1 << 20

	DefaultSyncTimeout = 30 * time.Minute
)

type errorResponse struct {
	Message string `json:"message"`
}

type providerInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CorpID      string `json:"corp_id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	AuthURL     string `json:"auth_url,omitempty"`
	QRCodeURL   string `json:"qr_code_url,omitempty"`
}

type syncRequest struct {
	Provider string `json:"provider"`
}

func (impl *ServerImpl) RegisterHandlers(router gin.IRouter) {
	if impl.metrics != nil {
		router.Use(impl.metrics.GinMiddleware())
	}

	router.GET("/healthz", impl.GetHealthz)
	if impl.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(impl.gatherer, promhttp.HandlerOpts{})))
	}

	auth := router.Group("/auth")
	auth.GET("/providers", impl.GetAuthProviders)
	auth.GET("/third-party", impl.GetAuthThirdParty)
	auth.GET("/third-party/callback", impl.GetAuthThirdPartyCallback)
	auth.POST("/third-party/sync", impl.PostAuthThirdPartySync)

	router.POST("/dingtalk/callback/", impl.PostDingtalkCallback)
	router.GET("/dingtalk/callback/", impl.GetDingtalkCallback)
}

// statusFor 把錯誤對應到 HTTP 狀態碼與回應訊息
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, provider.ErrUnknownProvider), errors.Is(err, authconfig.ErrNotFound):
		return http.StatusNotFound, "provider not found"
	case errors.Is(err, provider.ErrConfigInvalid):
		return http.StatusBadRequest, provider.ErrConfigInvalid.Error()
	case errors.Is(err, provider.ErrSyncUnsupported):
		return http.StatusBadRequest, provider.ErrSyncUnsupported.Error()
	case errors.Is(err, provider.ErrInvalidState):
		return http.StatusBadRequest, provider.ErrInvalidState.Error()
	case errors.Is(err, directory.ErrSyncInProgress):
		return http.StatusConflict, directory.ErrSyncInProgress.Error()
	case errors.Is(err, identity.ErrUserInactive):
		return http.StatusForbidden, identity.ErrUserInactive.Error()
	case errors.Is(err, provider.ErrIncompleteIdentity), errors.Is(err, transport.ErrTransport):
		return http.StatusBadGateway, "fail to get user info"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (impl *ServerImpl) abortWithError(c *gin.Context, op string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		impl.logger.Error("Request failed", slog.String("op", op), slog.Any("error", err))
	} else {
		impl.logger.Warn("Request rejected", slog.String("op", op), slog.Int("status", status), slog.Any("error", err))
	}
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}

// (GET /healthz)
func (impl *ServerImpl) GetHealthz(c *gin.Context) {
	sqlDB, err := impl.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		impl.logger.Warn("Database is not reachable", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// List enabled third-party providers
// (GET /auth/providers)
func (impl *ServerImpl) GetAuthProviders(c *gin.Context) {
	const op = "GetAuthProviders"
	ctx := c.Request.Context()

	records, err := impl.configs.Enabled(ctx)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}

	providers := make([]providerInfo, 0, len(records))
	for _, record := range records {
		logger := impl.logger.With(slog.String("op", op), slog.String("provider", record.Name))
		cfg, err := provider.ParseConfig(record.Config)
		if err != nil {
			logger.Warn("Fail to parse provider config", slog.Any("error", err))
			continue
		}
		p, err := impl.registry.Get(record.Name, cfg)
		if err != nil {
			logger.Warn("Provider unavailable", slog.Any("error", err))
			continue
		}

		info := providerInfo{Name: record.Name, DisplayName: record.DisplayName}
		if info.DisplayName == "" {
			info.DisplayName = p.DisplayName()
		}
		// 釘釘由前端的 JS SDK 發起登入，不需要授權網址
		if record.Name == "dingtalk" {
			info.CorpID = cfg.CorpID
			info.ClientID = cfg.ClientID
		} else {
			info.AuthURL, err = p.AuthURL(ctx)
			if err != nil {
				logger.Warn("Fail to build auth url", slog.Any("error", err))
				continue
			}
			if qr, ok := p.(provider.IQRCodeProvider); ok {
				if info.QRCodeURL, err = qr.QRCodeURL(ctx); err != nil {
					logger.Warn("Fail to build qr code url", slog.Any("error", err))
				}
			}
		}
		providers = append(providers, info)
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// Redirect to the provider's authorization page
// (GET /auth/third-party?provider=<name>)
func (impl *ServerImpl) GetAuthThirdParty(c *gin.Context) {
	const op = "GetAuthThirdParty"
	ctx := c.Request.Context()

	name := c.Query("provider")
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "missing provider"})
		return
	}
	cfg, err := impl.configs.Load(ctx, name)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	url, err := impl.registry.Authorize(ctx, name, *cfg)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Exchange the authorization code and sign in the local user
// (GET /auth/third-party/callback?code&state)
func (impl *ServerImpl) GetAuthThirdPartyCallback(c *gin.Context) {
	const op = "GetAuthThirdPartyCallback"
	ctx := c.Request.Context()

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "missing code or state"})
		return
	}
	name, err := provider.ResolveState(state)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	cfg, err := impl.configs.Load(ctx, name)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	p, err := impl.registry.Get(name, *cfg)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}

	// 取得第三方使用者資訊並對應到本地使用者
	identityInfo, err := p.UserInfo(ctx, code)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	user, err := impl.resolver.Resolve(ctx, identityInfo)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}

	token, err := IssueJWT(impl.config.Auth, user, time.Now())
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	maxAge := int(impl.config.Auth.ExpireDuration.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(impl.cookieName(), token, maxAge, "/", "", impl.config.Auth.CookieSecure, true)
	c.SetCookie(usernameCookie, base64.StdEncoding.EncodeToString([]byte(user.Username)), maxAge, "/", "", impl.config.Auth.CookieSecure, false)

	impl.logger.Info("Third-party login succeeded", slog.String("provider", name), slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, gin.H{"redirect_url": impl.config.Auth.LoginRedirectURL})
}

// Run a full directory sync (admin only)
// (POST /auth/third-party/sync)
func (impl *ServerImpl) PostAuthThirdPartySync(c *gin.Context) {
	const op = "PostAuthThirdPartySync"
	ctx := c.Request.Context()

	admin, ok := impl.requireAdmin(c)
	if !ok {
		return
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Provider == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "missing provider"})
		return
	}
	cfg, err := impl.configs.Load(ctx, req.Provider)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	p, err := impl.registry.Get(req.Provider, *cfg)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}

	// 同步與連線的生命週期脫鉤，客戶端斷線時仍會寫完所有批次
	syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), impl.syncTimeout())
	defer cancel()
	count, err := p.SyncUsers(syncCtx)
	if err != nil {
		impl.abortWithError(c, op, err)
		return
	}
	impl.logger.Info("Directory sync finished",
		slog.String("provider", req.Provider),
		slog.String("admin", admin.Email),
		slog.Int("count", count),
	)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// requireAdmin 驗證 token 並確認使用者仍是啟用中的管理員，失敗時已寫入回應
func (impl *ServerImpl) requireAdmin(c *gin.Context) (*models.User, bool) {
	const op = "requireAdmin"

	tokenString := impl.accessToken(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "missing access token"})
		return nil, false
	}
	claims, err := ParseAndValidateJWT(tokenString, impl.config.Auth)
	if err != nil {
		impl.logger.Warn("Fail to parse and validate JWT", slog.String("op", op), slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "invalid access token"})
		return nil, false
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "invalid access token"})
		return nil, false
	}

	var user models.User
	if err := impl.db.WithContext(c.Request.Context()).Take(&user, "id = ?", userID).Error; err != nil {
		impl.logger.Warn("Fail to find token subject", slog.String("op", op), slog.Any("error", err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: "invalid access token"})
		return nil, false
	}
	if !user.IsAdmin || !user.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Message: "admin permission required"})
		return nil, false
	}
	return &user, true
}

// accessToken 優先讀取 Authorization header，其次是 cookie
func (impl *ServerImpl) accessToken(c *gin.Context) string {
	if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	token, _ := c.Cookie(impl.cookieName())
	return token
}

func (impl *ServerImpl) syncTimeout() time.Duration {
	if impl.config.Sync.Timeout > 0 {
		return impl.config.Sync.Timeout
	}
	return DefaultSyncTimeout
}

func (impl *ServerImpl) cookieName() string {
	if impl.config.Auth.CookieName != "" {
		return impl.config.Auth.CookieName
	}
	return DefaultCookieName
}

// Receive an event subscription callback
// (POST /dingtalk/callback/)
func (impl *ServerImpl) PostDingtalkCallback(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody))
	if err != nil {
		c.String(http.StatusBadRequest, callback.ReasonMissingParameters)
		return
	}

	result := impl.dispatcher.Dispatch(c.Request.Context(), callback.Inbound{
		Signature: c.Query("signature"),
		Timestamp: c.Query("timestamp"),
		Nonce:     c.Query("nonce"),
		Body:      body,
	})
	if result.State == callback.StateRejected {
		c.String(result.Status, result.Reason)
		return
	}
	c.JSON(result.Status, result.Body)
}

// Endpoint verification
// (GET /dingtalk/callback/)
func (impl *ServerImpl) GetDingtalkCallback(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
