package callback

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"idbridge/adapters/dingcrypto"
	"idbridge/provider"
)

const DefaultProviderName = "dingtalk"

type dispatcherOptions struct {
	providerName string
	handlers     map[string]IHandler
	metrics      IMetrics
	logger       *slog.Logger
	now          func() time.Time
}

type DispatcherOption func(*dispatcherOptions)

// WithProviderName 設定讀取回調設定時使用的平台名稱
func WithProviderName(name string) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.providerName = name
	}
}

// WithHandler 設定某個分類的事件處理器
func WithHandler(category string, h IHandler) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.handlers[category] = h
	}
}

func WithMetrics(m IMetrics) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// WithClock 替換產生確認時間戳的時鐘
func WithClock(now func() time.Time) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.now = now
	}
}

// Dispatcher 依序執行 解析信封、讀取設定、驗簽、解密、解析事件、分派，
// 每一步失敗都有各自的拒絕狀態碼。分派器本身不重試，由平台重送。
type Dispatcher struct {
	configs      IConfigLoader
	providerName string
	handlers     map[string]IHandler
	metrics      IMetrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewDispatcher(configs IConfigLoader, opts ...DispatcherOption) *Dispatcher {
	options := dispatcherOptions{
		providerName: DefaultProviderName,
		handlers:     make(map[string]IHandler),
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Dispatcher{
		configs:      configs,
		providerName: options.providerName,
		handlers:     options.handlers,
		metrics:      options.metrics,
		logger:       options.logger.With(slog.String("caller", "callback.Dispatcher")),
		now:          options.now,
	}
}

// run 保存單次分派過程中的中間結果
type run struct {
	state    State
	envelope Envelope
	codec    dingcrypto.Codec
	payload  []byte
	event    Event
	category string
}

func (d *Dispatcher) Dispatch(ctx context.Context, in Inbound) (result Result) {
	r := &run{state: StateReceivingRequest, category: CategoryUnknown}
	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveCallback(result.State, r.category)
		}
	}()

	for {
		var rejected *Result
		switch r.state {
		case StateReceivingRequest:
			rejected = d.parseEnvelope(r, in)
		case StateParsingEnvelope:
			rejected = d.loadConfig(ctx, r)
		case StateVerifyingSignature:
			rejected = d.verify(r)
		case StateDecrypting:
			rejected = d.decrypt(r)
		case StateParsingEvent:
			rejected = d.parseEvent(r)
		case StateRouting:
			return d.route(ctx, r)
		}
		if rejected != nil {
			return *rejected
		}
		r.state++
	}
}

func reject(status int, reason string) *Result {
	return &Result{State: StateRejected, Status: status, Reason: reason}
}

func (d *Dispatcher) parseEnvelope(r *run, in Inbound) *Result {
	var body struct {
		Encrypt string `json:"encrypt"`
	}
	if err := json.Unmarshal(in.Body, &body); err != nil {
		d.logger.Warn("Callback body is not json", slog.Any("error", err))
		return reject(http.StatusBadRequest, ReasonMissingParameters)
	}
	r.envelope = Envelope{
		Signature: in.Signature,
		Timestamp: in.Timestamp,
		Nonce:     in.Nonce,
		Encrypt:   body.Encrypt,
	}
	if !r.envelope.complete() {
		d.logger.Warn("Callback parameters missing",
			slog.Bool("signature", in.Signature != ""),
			slog.Bool("timestamp", in.Timestamp != ""),
			slog.Bool("nonce", in.Nonce != ""),
			slog.Bool("encrypt", body.Encrypt != ""),
		)
		return reject(http.StatusBadRequest, ReasonMissingParameters)
	}
	return nil
}

func (d *Dispatcher) loadConfig(ctx context.Context, r *run) *Result {
	cfg, err := d.configs.Load(ctx, d.providerName)
	if err != nil || cfg == nil {
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			d.logger.Error("Fail to load callback config", slog.String("provider", d.providerName), slog.Any("error", err))
		} else {
			d.logger.Error("Callback config not found", slog.String("provider", d.providerName))
		}
		return reject(http.StatusInternalServerError, ReasonConfigMissing)
	}
	r.codec = dingcrypto.Codec{
		Token:       cfg.Token,
		AESKey:      cfg.AESKey,
		ReceiverKey: cfg.AppKey(),
	}
	return nil
}

func (d *Dispatcher) verify(r *run) *Result {
	e := r.envelope
	if !r.codec.Verify(e.Timestamp, e.Nonce, e.Encrypt, e.Signature) {
		d.logger.Warn("Callback signature mismatch")
		return reject(http.StatusForbidden, ReasonSignatureMismatch)
	}
	return nil
}

func (d *Dispatcher) decrypt(r *run) *Result {
	payload, err := r.codec.Decrypt(r.envelope.Encrypt)
	if err != nil {
		d.logger.Warn("Fail to decrypt callback", slog.Any("error", err))
		return reject(http.StatusBadRequest, ReasonDecryptFailed)
	}
	r.payload = payload
	return nil
}

func (d *Dispatcher) parseEvent(r *run) *Result {
	var event Event
	if err := json.Unmarshal(r.payload, &event); err != nil || event == nil {
		d.logger.Warn("Callback payload is not a json object", slog.Any("error", err))
		return reject(http.StatusBadRequest, ReasonMalformedPayload)
	}
	r.event = event
	return nil
}

func (d *Dispatcher) route(ctx context.Context, r *run) Result {
	eventType := r.event.Type()
	r.category = Classify(eventType)
	logger := d.logger.With(slog.String("event_type", eventType), slog.String("category", r.category))

	if h, ok := d.handlers[r.category]; ok {
		if err := h.Handle(ctx, r.event); err != nil {
			logger.Error("Fail to handle callback event", slog.Any("error", err))
		}
	} else {
		logger.Info("No handler for callback event, acknowledged")
	}

	ack, err := d.acknowledge(r.codec)
	if err != nil {
		logger.Error("Fail to build acknowledgment", slog.Any("error", err))
		return *reject(http.StatusInternalServerError, ReasonAckFailed)
	}
	return Result{State: StateHandled, Status: http.StatusOK, Body: ack}
}

// acknowledge 沒有設定 token 或 aes_key 時回覆明文，否則回覆加密的 success
func (d *Dispatcher) acknowledge(codec dingcrypto.Codec) (any, error) {
	if !codec.Enabled() {
		return map[string]any{"errcode": 0, "errmsg": "ok"}, nil
	}
	timestamp := strconv.FormatInt(d.now().Unix(), 10)
	return codec.Encrypt(timestamp, []byte("success"))
}

// ConfigLoaderFunc 讓一般函式滿足 IConfigLoader
type ConfigLoaderFunc func(ctx context.Context, name string) (*provider.Config, error)

func (f ConfigLoaderFunc) Load(ctx context.Context, name string) (*provider.Config, error) {
	return f(ctx, name)
}
