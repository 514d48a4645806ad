// 對第三方開放平台的 JSON over HTTP 呼叫
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrTransport = errors.New("transport failure")
)

// Request 描述一次呼叫，Params 會附加在 URL query，JSON 不為 nil 時以 body 送出
type Request struct {
	Method  string
	URL     string
	Params  map[string]string
	JSON    any
	Headers map[string]string
}

// APIError 是平台以 errcode 回報的業務錯誤
type APIError struct {
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("errcode=%d, errmsg=%s", e.Code, e.Message)
}

type ITransport interface {
	Do(ctx context.Context, req Request) (map[string]any, error)
	DoJSON(ctx context.Context, req Request, out any) error
}

type Client struct {
	http    *http.Client
	logger  *slog.Logger
	maxBody int64
}

type clientOptions struct {
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	maxBody    int64
}

type ClientOption func(*clientOptions)

// WithTimeout 設定單次呼叫的逾時
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithHTTPClient 替換底層的 http.Client，會忽略 WithTimeout
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithMaxBodySize 限制回應 body 的大小
func WithMaxBodySize(n int64) ClientOption {
	return func(o *clientOptions) {
		o.maxBody = n
	}
}

func NewClient(opts ...ClientOption) *Client {
	options := clientOptions{
		timeout: 10 * time.Second,
		logger:  slog.Default(),
		maxBody: 4 << 20,
	}
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		http:    httpClient,
		logger:  options.logger.With(slog.String("caller", "transport.Client")),
		maxBody: options.maxBody,
	}
}

// Do 送出請求並回傳 JSON 物件，任何失敗都包裝 ErrTransport
func (c *Client) Do(ctx context.Context, req Request) (map[string]any, error) {
	body, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	result := map[string]any{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: response is not a json object: %v", ErrTransport, err)
	}
	return result, nil
}

// DoJSON 與 Do 相同，但把結果解析到 out
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	const op = "transport.Client.roundTrip"

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s] Fail to parse url, err=%v", ErrTransport, op, err)
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for k, v := range req.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if req.JSON != nil {
		raw, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: [%s] Fail to encode body, err=%v", ErrTransport, op, err)
		}
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s] Fail to build request, err=%v", ErrTransport, op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// url 可能含有 access_token，只記錄 host 與 path
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("host", u.Host),
			slog.String("path", u.Path),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: [%s] Fail to send request to %s, err=%v", ErrTransport, op, u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: [%s] Fail to read body, err=%v", ErrTransport, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("unexpected status",
			slog.String("method", method),
			slog.String("host", u.Host),
			slog.String("path", u.Path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s returned status %d", ErrTransport, u.Path, resp.StatusCode)
	}

	if apiErr := checkErrcode(body); apiErr != nil {
		return nil, fmt.Errorf("%w: %s %w", ErrTransport, u.Path, apiErr)
	}
	return body, nil
}

// checkErrcode 檢查釘釘與企業微信共用的 errcode/errmsg 欄位
func checkErrcode(body []byte) *APIError {
	var envelope struct {
		Errcode *json.Number `json:"errcode"`
		Errmsg  string       `json:"errmsg"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Errcode == nil {
		return nil
	}
	code, err := envelope.Errcode.Int64()
	if err != nil || code == 0 {
		return nil
	}
	return &APIError{Code: code, Message: envelope.Errmsg}
}
